// Package chunker decides how a rip's output is split across files
// (spec.md §4.4): a single file, fixed-size parts, or a FAT-safe cap just
// under 4 GiB.
package chunker

import (
	"fmt"

	"github.com/discripper/discripper/internal/core"
)

// GiB is the gibibyte unit the spec's chunk-size options are expressed in.
const GiB = 1 << 30

// FATMaxFileSizeBits is the PC_FILESIZEBITS value FAT-family filesystems
// report; at or below this, files must stay under 4 GiB.
const FATMaxFileSizeBits = 33

// Plan is the computed rollover policy for one rip's output files. A
// ChunkBytes of 0 means the whole rip is written to a single file
// regardless of total size.
type Plan struct {
	ChunkBytes uint64
	Ext        string
}

// ShouldRollover reports whether the writer must close the current part and
// open chunkIdx's file before accepting a write landing at byteOffset.
// chunkIdx is the 0-based FileName index of the part about to start (1 for
// the first rollover, since part 0 is open from the start); the predicate
// is spec.md §4.4's "current write offset strictly exceeds chunk_idx ×
// chunk_bytes".
func (p Plan) ShouldRollover(byteOffset uint64, chunkIdx int) bool {
	if p.ChunkBytes == 0 {
		return false
	}
	return byteOffset > uint64(chunkIdx)*p.ChunkBytes
}

// FileName returns the output filename for part chunkIdx (0-based). A
// single-file plan (ChunkBytes == 0) leaves the first part unsuffixed; a
// chunked plan numbers every part including the first, ".part0" onward,
// matching the original's %s.part0%s naming (main.c) and spec.md §8
// scenario 5.
func (p Plan) FileName(baseName string, chunkIdx int) string {
	if p.ChunkBytes == 0 && chunkIdx == 0 {
		return fmt.Sprintf("%s.%s", baseName, p.Ext)
	}
	return fmt.Sprintf("%s.part%d.%s", baseName, chunkIdx, p.Ext)
}

// PartCount returns how many files a rip of totalBytes will produce under
// this plan.
func (p Plan) PartCount(totalBytes uint64) int {
	if p.ChunkBytes == 0 {
		return 1
	}
	n := int(totalBytes / p.ChunkBytes)
	if totalBytes%p.ChunkBytes != 0 {
		n++
	}
	if n == 0 {
		n = 1
	}
	return n
}

// Planner builds a Plan from resolved options, the identified profile, and
// the destination filesystem's file-size limit.
type Planner struct{}

// New returns a Planner. It carries no state; the type exists so callers
// read naturally alongside the rest of the pipeline's constructors.
func New() *Planner {
	return &Planner{}
}

// Plan implements spec.md §4.4's policy. readBlockBytes is the size of one
// ReadBlock, subtracted from the FAT cap so a chunk's last write can never
// itself cross the 4 GiB boundary.
func (pl *Planner) Plan(opts core.RipOptions, profile core.DiscProfile, fsMaxFileSizeBits int, readBlockBytes uint64) Plan {
	ext := extensionFor(profile, opts)

	if singleFileOverride(profile) {
		return Plan{ChunkBytes: 0, Ext: ext}
	}

	switch opts.ChunkSize {
	case core.ChunkSize1GB:
		return Plan{ChunkBytes: 2 * GiB, Ext: ext}
	case core.ChunkSize2GB:
		return Plan{ChunkBytes: 3 * GiB, Ext: ext}
	case core.ChunkSize3GB:
		return Plan{ChunkBytes: 4 * GiB, Ext: ext}
	default: // ChunkSizeMax
		if fsMaxFileSizeBits > 0 && fsMaxFileSizeBits <= FATMaxFileSizeBits {
			return Plan{ChunkBytes: 4*GiB - readBlockBytes - 1, Ext: ext}
		}
		return Plan{ChunkBytes: 0, Ext: ext}
	}
}

// singleFileOverride reports the profiles spec.md §4.4 always writes as one
// file regardless of the chunk_size option: GameCube, Datel, Wii mini, and
// Audio CD (whose CUE sheet references exactly one data file).
func singleFileOverride(profile core.DiscProfile) bool {
	switch {
	case profile.Kind == core.KindGameCube, profile.Kind == core.KindDatel:
		return true
	case profile.IsAudioCD():
		return true
	case profile.Kind == core.KindWii && profile.EndLBA == core.WiiD1Size:
		return true
	default:
		return false
	}
}

// extensionFor picks the data file's extension: WAV-family output for
// Audio CD, Bin for raw Audio CD reads, ISO for every disc profile.
func extensionFor(profile core.DiscProfile, opts core.RipOptions) string {
	if !profile.IsAudioCD() {
		return "iso"
	}
	if opts.AudioOutput == core.AudioBin {
		return "bin"
	}
	return "wav"
}
