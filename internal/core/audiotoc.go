package core

import "fmt"

// FramesPerSecond is the CD-DA frame rate (1 frame = 1/75 second = 1 sector).
const FramesPerSecond = 75

// LeadInFrames is the 2-second lead-in offset applied when converting an
// absolute TOC frame position to a CUE-sheet INDEX time.
const LeadInFrames = 150

// MSF is a Minutes:Seconds:Frames timecode, 75 frames per second.
type MSF struct {
	Minutes int
	Seconds int
	Frames  int
}

// FramesToMSF converts an absolute frame count to an MSF timecode.
func FramesToMSF(frames int) MSF {
	if frames < 0 {
		frames = 0
	}
	m := frames / (60 * FramesPerSecond)
	rem := frames % (60 * FramesPerSecond)
	s := rem / FramesPerSecond
	f := rem % FramesPerSecond
	return MSF{Minutes: m, Seconds: s, Frames: f}
}

// ToFrames converts an MSF timecode back to an absolute frame count.
func (m MSF) ToFrames() int {
	return m.Minutes*60*FramesPerSecond + m.Seconds*FramesPerSecond + m.Frames
}

// String renders the timecode as MM:SS:FF, zero-padded, as used in CUE
// sheet INDEX lines.
func (m MSF) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", m.Minutes, m.Seconds, m.Frames)
}

// AudioTrack describes one track entry from the table of contents.
type AudioTrack struct {
	Number     int
	StartFrame int // absolute frame offset, including lead-in
	Control    byte
	ISRC       string // 12-char ISRC, empty if not read / not valid

	// CD-TEXT, optional.
	Title      string
	Performer  string
}

// IsAudio reports whether the track's control bits mark it as audio data
// (bit 2 clear).
func (t AudioTrack) IsAudio() bool {
	return t.Control&0x04 == 0
}

// AudioToc is the parsed table of contents for an Audio CD.
type AudioToc struct {
	FirstTrack int
	LastTrack  int
	Tracks     []AudioTrack
	LeadOutFrame int

	// Optional CD-TEXT/subchannel enrichment for the album as a whole.
	AlbumTitle     string
	AlbumPerformer string
	MCN            string // 13-digit media catalog number
}

// EndLBA returns the sector count implied by the lead-out position minus
// the 2-second lead-in, per spec.md's end-LBA mapping table.
func (t AudioToc) EndLBA() uint32 {
	v := t.LeadOutFrame - LeadInFrames
	if v < 0 {
		v = 0
	}
	return uint32(v)
}

// AudioCDFallbackSectors is the 360000-sector (80 minute) guess used when
// a TOC can't be read and the caller has opted to proceed anyway (Bin
// output only — see DESIGN.md's Open Question decision).
const AudioCDFallbackSectors = 360000
