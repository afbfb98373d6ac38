// Package profiler classifies an inserted disc from its first sector (and,
// for Audio CD, its TOC) into a core.DiscProfile (spec.md §4.3).
package profiler

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/discio"
)

const (
	gameCubeMagicOffset = 0x1C
	gameCubeMagic       = 0xC2339F3D
	wiiMagicOffset      = 0x18
	wiiMagic            = 0x5D1C9EA3

	gameIDLen        = 6
	internalTitleOff = 32
	internalTitleLen = 512
)

// DiscProfiler reads the boot sector (and, for Audio CD, the TOC) of a
// SourceReader and builds the core.DiscProfile the rest of the pipeline
// plans around.
type DiscProfiler struct {
	src discio.SourceReader
}

// New wraps a SourceReader for identification.
func New(src discio.SourceReader) *DiscProfiler {
	return &DiscProfiler{src: src}
}

// Identify runs the classification algorithm of spec.md §4.3: read sector 0,
// extract game_id/internal_title, check the GameCube/Wii magic words, and
// fall back to a TOC-based Audio CD check. forced overrides automatic
// classification with a user (or rules-engine, see internal/profiler/rules)
// choice when automatic detection can't determine a console-specific kind.
// discCounter is used only when the sanitized game name would otherwise be
// empty.
func (p *DiscProfiler) Identify(opts core.RipOptions, forced core.ForcedProfile, discCounter int) (core.DiscProfile, error) {
	sector := make([]byte, core.SectorSizeISO)
	if err := p.src.Read(sector, len(sector), 0); err != nil {
		return core.DiscProfile{}, fmt.Errorf("profiler: read boot sector: %w", err)
	}

	gameID, multiDiscSuffix := parseGameID(sector)
	internalTitle := parseInternalTitle(sector)

	profile := core.DiscProfile{
		SectorSize:    core.SectorSizeISO,
		GameID:        SanitizeGameName(gameID+multiDiscSuffix, discCounter),
		InternalTitle: internalTitle,
	}

	switch {
	case binary.BigEndian.Uint32(sector[gameCubeMagicOffset:gameCubeMagicOffset+4]) == gameCubeMagic:
		profile.Kind = core.KindGameCube
		if strings.HasPrefix(gameID, "DTL") {
			profile.Kind = core.KindDatel
		}
		profile.EndLBA = core.NGCDiscSize
		return profile, nil

	case binary.BigEndian.Uint32(sector[wiiMagicOffset:wiiMagicOffset+4]) == wiiMagic:
		profile.Kind = core.KindWii
		profile.EndLBA = p.resolveWiiEndLBA(opts)
		return profile, nil
	}

	switch forced {
	case core.ForcedDvdVideoSL:
		profile.Kind = core.KindOther
		profile.Forced = forced
		profile.EndLBA = core.WiiD5Size
		return profile, nil
	case core.ForcedDvdVideoDL:
		profile.Kind = core.KindOther
		profile.Forced = forced
		profile.EndLBA = core.WiiD9Size
		return profile, nil
	case core.ForcedMiniDvd:
		profile.Kind = core.KindOther
		profile.Forced = forced
		profile.EndLBA = core.WiiD1Size
		return profile, nil
	case core.ForcedAudioCD:
		return p.identifyAudioCD(profile, discCounter)
	}

	toc, err := p.src.ReadTOC()
	if err != nil {
		profile.Kind = core.KindUnknown
		return profile, nil
	}
	if len(toc.Tracks) == 0 || toc.Tracks[0].IsAudio() {
		return p.identifyAudioCD(profile, discCounter)
	}

	profile.Kind = core.KindUnknown
	return profile, nil
}

// identifyAudioCD reads (and, when available, enriches) the TOC for a disc
// already known or forced to be Audio CD. When no TOC is readable at all it
// falls back to the spec's 360000-sector (80 minute) guess; RipSession
// decides whether that guess is usable for the selected audio output mode
// (see DESIGN.md's Open Question decision on ErrTOCRequired).
func (p *DiscProfiler) identifyAudioCD(profile core.DiscProfile, discCounter int) (core.DiscProfile, error) {
	profile.Kind = core.KindOther
	profile.Forced = core.ForcedAudioCD
	profile.SectorSize = core.SectorSizeCDDA

	toc, err := p.src.ReadTOC()
	if err != nil {
		profile.EndLBA = core.AudioCDFallbackSectors
		return profile, nil
	}

	_ = p.src.ReadCDText(&toc)
	if mcn, err := p.src.ReadSubchannel(0); err == nil {
		toc.MCN = mcn
	}

	profile.EndLBA = toc.EndLBA()
	if profile.EndLBA == 0 {
		profile.EndLBA = core.AudioCDFallbackSectors
	}
	if name := audioCDName(toc); name != "" {
		profile.GameID = SanitizeGameName(name, discCounter)
	}
	return profile, nil
}

// parseGameID extracts the 6-byte game_id and, if byte 6 is non-zero, the
// "-disc<n+1>" multi-disc suffix (spec.md §4.3 step 2). A non-zero byte 6
// encodes the zero-based disc index; disc 0 may legitimately store 0 or 1.
func parseGameID(sector []byte) (gameID string, suffix string) {
	gameID = string(sector[:gameIDLen])
	discByte := sector[gameIDLen]
	if discByte != 0 {
		suffix = fmt.Sprintf("-disc%d", int(discByte)+1)
	}
	return gameID, suffix
}

// GameID and InternalTitle expose the same boot-sector parsing Identify uses
// internally, so the raw fields can fill an internal/profiler/rules Context
// before or instead of automatic classification.
func GameID(sector []byte) string {
	id, suffix := parseGameID(sector)
	return id + suffix
}

func InternalTitle(sector []byte) string {
	return parseInternalTitle(sector)
}

// parseInternalTitle copies bytes 32..544 and clamps at the first NUL.
func parseInternalTitle(sector []byte) string {
	raw := sector[internalTitleOff : internalTitleOff+internalTitleLen]
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw)
}

// audioCDName builds "{performer} - {title}" from CD-TEXT album fields,
// falling back to whichever single field is present.
func audioCDName(toc core.AudioToc) string {
	switch {
	case toc.AlbumPerformer != "" && toc.AlbumTitle != "":
		return toc.AlbumPerformer + " - " + toc.AlbumTitle
	case toc.AlbumTitle != "":
		return toc.AlbumTitle
	case toc.AlbumPerformer != "":
		return toc.AlbumPerformer
	default:
		return ""
	}
}

// resolveWiiEndLBA runs the dual-layer probe (spec.md §4.3) when dual_layer
// is Auto, otherwise honors the user's explicit Mini/Single/Dual choice.
func (p *DiscProfiler) resolveWiiEndLBA(opts core.RipOptions) uint32 {
	switch opts.DualLayer {
	case core.DualLayerMini:
		return core.WiiD1Size
	case core.DualLayerSingle:
		return core.WiiD5Size
	case core.DualLayerDual:
		return core.WiiD9Size
	default:
		return p.probeDualLayer()
	}
}

// probeDualLayer attempts reads at the D1 and D5 byte boundaries, using the
// largest successful probe as the size tie-break (spec.md §4.3).
func (p *DiscProfiler) probeDualLayer() uint32 {
	buf := make([]byte, 64)
	best := core.WiiD1Size

	if err := p.src.Read(buf, len(buf), int64(core.WiiD1Size)*core.SectorSizeISO); err != nil {
		return best
	}
	best = core.WiiD5Size

	if err := p.src.Read(buf, len(buf), int64(core.WiiD5Size)*core.SectorSizeISO); err != nil {
		return best
	}
	return core.WiiD9Size
}
