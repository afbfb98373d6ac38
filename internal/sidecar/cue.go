package sidecar

import (
	"fmt"
	"strings"

	"github.com/discripper/discripper/internal/core"
)

// cueFileType names the FILE line's type keyword for the audio output mode
// the CUE sheet references.
func cueFileType(audioBin bool) string {
	if audioBin {
		return "BINARY"
	}
	return "WAVE"
}

// BuildCUE renders the CUE sheet of spec.md §4.9: optional PERFORMER/TITLE/
// CATALOG header lines sourced from CD-TEXT/MCN, a FILE line naming the
// single data file this rip produced, and one TRACK/INDEX pair per TOC
// entry with the INDEX time shifted back by the 2-second lead-in. When no
// TOC was read at all, it falls back to a single untimed AUDIO track.
// Lines are CRLF-terminated, as spec.md §6 requires.
func BuildCUE(toc *core.AudioToc, fileName string, audioBin bool) string {
	var b strings.Builder
	crlf := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\r\n")
	}

	if toc != nil {
		if toc.AlbumPerformer != "" {
			crlf("PERFORMER %q", toc.AlbumPerformer)
		}
		if toc.AlbumTitle != "" {
			crlf("TITLE %q", toc.AlbumTitle)
		}
		if toc.MCN != "" {
			crlf("CATALOG %s", toc.MCN)
		}
	}

	crlf("FILE %q %s", fileName, cueFileType(audioBin))

	if toc == nil || len(toc.Tracks) == 0 {
		crlf("  TRACK 01 AUDIO")
		crlf("    INDEX 01 00:00:00")
		return b.String()
	}

	for _, t := range toc.Tracks {
		crlf("  TRACK %02d AUDIO", t.Number)
		if t.Title != "" {
			crlf("    TITLE %q", t.Title)
		}
		if t.Performer != "" {
			crlf("    PERFORMER %q", t.Performer)
		}
		if t.ISRC != "" {
			crlf("    ISRC %s", t.ISRC)
		}
		indexFrames := t.StartFrame - core.LeadInFrames
		if indexFrames < 0 {
			indexFrames = 0
		}
		crlf("    INDEX 01 %s", core.FramesToMSF(indexFrames))
	}
	return b.String()
}
