package profiler

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// fakeSource is a hand-written SourceReader fake for exercising DiscProfiler
// without a real drive.
type fakeSource struct {
	sector      []byte
	okOffsets   map[int64]bool // offsets that succeed on Read (besides offset 0)
	toc         core.AudioToc
	tocErr      error
	cdTextTitle string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		sector:    make([]byte, core.SectorSizeISO),
		okOffsets: map[int64]bool{},
		tocErr:    riperr.ErrUnsupported,
	}
}

func (f *fakeSource) Read(dst []byte, length int, offsetBytes int64) error {
	if offsetBytes == 0 {
		copy(dst[:length], f.sector)
		return nil
	}
	if f.okOffsets[offsetBytes] {
		return nil
	}
	return riperr.ErrReadFailure
}

func (f *fakeSource) ReadBCA(buf []byte) (int, error) { return 0, riperr.ErrUnsupported }

func (f *fakeSource) ReadTOC() (core.AudioToc, error) {
	if f.tocErr != nil {
		return core.AudioToc{}, f.tocErr
	}
	return f.toc, nil
}

func (f *fakeSource) ReadCDText(toc *core.AudioToc) error {
	if f.cdTextTitle != "" {
		toc.AlbumTitle = f.cdTextTitle
	}
	return nil
}

func (f *fakeSource) ReadSubchannel(track int) (string, error) { return "", riperr.ErrUnsupported }

func (f *fakeSource) Close() error { return nil }

func setMagic(sector []byte, offset int, magic uint32) {
	binary.BigEndian.PutUint32(sector[offset:offset+4], magic)
}

func TestIdentifyGameCube(t *testing.T) {
	src := newFakeSource()
	copy(src.sector[0:6], []byte("GALE01"))
	setMagic(src.sector, gameCubeMagicOffset, gameCubeMagic)

	p := New(src)
	profile, err := p.Identify(core.DefaultRipOptions(), core.ForcedNone, 0)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if profile.Kind != core.KindGameCube {
		t.Errorf("Kind = %v, want GameCube", profile.Kind)
	}
	if profile.EndLBA != core.NGCDiscSize {
		t.Errorf("EndLBA = %d, want %d", profile.EndLBA, core.NGCDiscSize)
	}
	if profile.GameID != "GALE01" {
		t.Errorf("GameID = %q, want GALE01", profile.GameID)
	}
}

func TestIdentifyMultiDiscSuffix(t *testing.T) {
	src := newFakeSource()
	copy(src.sector[0:6], []byte("GXXE01"))
	src.sector[6] = 1 // second disc
	setMagic(src.sector, gameCubeMagicOffset, gameCubeMagic)

	p := New(src)
	profile, err := p.Identify(core.DefaultRipOptions(), core.ForcedNone, 0)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if profile.GameID != "GXXE01-disc2" {
		t.Errorf("GameID = %q, want GXXE01-disc2", profile.GameID)
	}
}

func TestIdentifyWiiAutoProbeSingleLayer(t *testing.T) {
	src := newFakeSource()
	setMagic(src.sector, wiiMagicOffset, wiiMagic)
	src.okOffsets[int64(core.WiiD1Size)*core.SectorSizeISO] = true
	// D5 probe fails -> single layer.

	p := New(src)
	opts := core.DefaultRipOptions()
	opts.DualLayer = core.DualLayerAuto
	profile, err := p.Identify(opts, core.ForcedNone, 0)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if profile.Kind != core.KindWii {
		t.Errorf("Kind = %v, want Wii", profile.Kind)
	}
	if profile.EndLBA != core.WiiD5Size {
		t.Errorf("EndLBA = %d, want WiiD5Size (%d)", profile.EndLBA, core.WiiD5Size)
	}
}

func TestIdentifyWiiAutoProbeDualLayer(t *testing.T) {
	src := newFakeSource()
	setMagic(src.sector, wiiMagicOffset, wiiMagic)
	src.okOffsets[int64(core.WiiD1Size)*core.SectorSizeISO] = true
	src.okOffsets[int64(core.WiiD5Size)*core.SectorSizeISO] = true

	p := New(src)
	profile, err := p.Identify(core.DefaultRipOptions(), core.ForcedNone, 0)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if profile.EndLBA != core.WiiD9Size {
		t.Errorf("EndLBA = %d, want WiiD9Size (%d)", profile.EndLBA, core.WiiD9Size)
	}
}

func TestIdentifyWiiAutoProbeMini(t *testing.T) {
	src := newFakeSource()
	setMagic(src.sector, wiiMagicOffset, wiiMagic)
	// Both probes fail -> mini.

	p := New(src)
	profile, err := p.Identify(core.DefaultRipOptions(), core.ForcedNone, 0)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if profile.EndLBA != core.WiiD1Size {
		t.Errorf("EndLBA = %d, want WiiD1Size (%d)", profile.EndLBA, core.WiiD1Size)
	}
}

func TestIdentifyWiiExplicitDualLayerOption(t *testing.T) {
	src := newFakeSource()
	setMagic(src.sector, wiiMagicOffset, wiiMagic)

	p := New(src)
	opts := core.DefaultRipOptions()
	opts.DualLayer = core.DualLayerDual
	profile, err := p.Identify(opts, core.ForcedNone, 0)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if profile.EndLBA != core.WiiD9Size {
		t.Errorf("EndLBA = %d, want WiiD9Size (%d) from explicit option", profile.EndLBA, core.WiiD9Size)
	}
}

func TestIdentifyAudioCDFromTOC(t *testing.T) {
	src := newFakeSource()
	src.tocErr = nil
	src.toc = core.AudioToc{
		Tracks:       []core.AudioTrack{{Number: 1, Control: 0x00}},
		LeadOutFrame: 1000,
	}
	src.cdTextTitle = "My Album"

	p := New(src)
	profile, err := p.Identify(core.DefaultRipOptions(), core.ForcedNone, 3)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if !profile.IsAudioCD() {
		t.Fatalf("expected Audio CD classification, got Kind=%v Forced=%v", profile.Kind, profile.Forced)
	}
	if profile.SectorSize != core.SectorSizeCDDA {
		t.Errorf("SectorSize = %d, want %d", profile.SectorSize, core.SectorSizeCDDA)
	}
	wantEndLBA := uint32(1000 - core.LeadInFrames)
	if profile.EndLBA != wantEndLBA {
		t.Errorf("EndLBA = %d, want %d", profile.EndLBA, wantEndLBA)
	}
	if profile.GameID != "My_Album" {
		t.Errorf("GameID = %q, want My_Album", profile.GameID)
	}
}

func TestIdentifyAudioCDNoTOCFallsBackToGuess(t *testing.T) {
	src := newFakeSource()
	p := New(src)

	opts := core.DefaultRipOptions()
	profile, err := p.Identify(opts, core.ForcedAudioCD, 0)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if profile.EndLBA != core.AudioCDFallbackSectors {
		t.Errorf("EndLBA = %d, want fallback %d", profile.EndLBA, core.AudioCDFallbackSectors)
	}
}

func TestIdentifyForcedDvdVideoProfiles(t *testing.T) {
	cases := []struct {
		forced  core.ForcedProfile
		wantLBA uint32
	}{
		{core.ForcedDvdVideoSL, core.WiiD5Size},
		{core.ForcedDvdVideoDL, core.WiiD9Size},
		{core.ForcedMiniDvd, core.WiiD1Size},
	}
	for _, c := range cases {
		t.Run(fmt.Sprint(c.forced), func(t *testing.T) {
			src := newFakeSource()
			p := New(src)
			profile, err := p.Identify(core.DefaultRipOptions(), c.forced, 0)
			if err != nil {
				t.Fatalf("Identify() error = %v", err)
			}
			if profile.EndLBA != c.wantLBA {
				t.Errorf("EndLBA = %d, want %d", profile.EndLBA, c.wantLBA)
			}
			if profile.Forced != c.forced {
				t.Errorf("Forced = %v, want %v", profile.Forced, c.forced)
			}
		})
	}
}

func TestIdentifyUnknownWithNoMagicOrTOC(t *testing.T) {
	src := newFakeSource()
	p := New(src)
	profile, err := p.Identify(core.DefaultRipOptions(), core.ForcedNone, 0)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if profile.Kind != core.KindUnknown {
		t.Errorf("Kind = %v, want Unknown", profile.Kind)
	}
}

func TestSanitizeGameNameIdempotent(t *testing.T) {
	cases := []string{"GALE 01!", "", "already_ok-01.bin", "日本語"}
	for _, in := range cases {
		once := SanitizeGameName(in, 7)
		twice := SanitizeGameName(once, 7)
		if once != twice {
			t.Errorf("sanitize(%q) = %q, sanitize(sanitize(%q)) = %q", in, once, in, twice)
		}
	}
}

func TestSanitizeGameNameEmptyFallsBackToCounter(t *testing.T) {
	got := SanitizeGameName("", 4)
	if got != "disc4" {
		t.Errorf("SanitizeGameName(\"\", 4) = %q, want disc4", got)
	}
}
