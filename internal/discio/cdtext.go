package discio

import "github.com/discripper/discripper/internal/core"

// CD-TEXT pack types this engine understands (Block 0 / English only, per
// spec.md §4.1).
const (
	packTypeTitle     = 0x80
	packTypePerformer = 0x81
)

const cdTextPacketSize = 18

// applyCDTextPackets decodes a run of 18-byte CD-TEXT packets and merges
// the recovered title/performer fields into toc. Each packet carries
// PackType, TrackNumber, BlockNumber and 12 text bytes; a NUL terminates a
// field and auto-increments TrackNumber, matching the CD-TEXT pack
// sequencing rule in the Red Book / MMC specs. Only Block 0 is honored.
func applyCDTextPackets(data []byte, toc *core.AudioToc) {
	for off := 0; off+cdTextPacketSize <= len(data); off += cdTextPacketSize {
		pkt := data[off : off+cdTextPacketSize]
		packType := pkt[0]
		blockNumber := (pkt[2] >> 4) & 0x7
		if blockNumber != 0 {
			continue
		}
		if packType != packTypeTitle && packType != packTypePerformer {
			continue
		}

		trackNumber := int(pkt[1])
		text := pkt[4:16]

		fields := splitNULTerminated(text)
		track := trackNumber
		for _, field := range fields {
			assignCDTextField(toc, packType, track, field)
			track++
		}
	}
}

// splitNULTerminated splits a fixed-width text run into NUL-terminated
// fields, including a trailing partial field with no terminator.
func splitNULTerminated(data []byte) []string {
	var fields []string
	start := 0
	for i, b := range data {
		if b == 0 {
			fields = append(fields, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		fields = append(fields, string(data[start:]))
	}
	return fields
}

func assignCDTextField(toc *core.AudioToc, packType byte, track int, value string) {
	if value == "" {
		return
	}
	if track == 0 {
		switch packType {
		case packTypeTitle:
			toc.AlbumTitle = value
		case packTypePerformer:
			toc.AlbumPerformer = value
		}
		return
	}
	for i := range toc.Tracks {
		if toc.Tracks[i].Number != track {
			continue
		}
		switch packType {
		case packTypeTitle:
			toc.Tracks[i].Title = value
		case packTypePerformer:
			toc.Tracks[i].Performer = value
		}
		return
	}
}
