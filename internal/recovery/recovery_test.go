package recovery

import (
	"fmt"
	"testing"

	"github.com/discripper/discripper/internal/core"
)

// flakySource fails the first failAttempts reads at a given offset, then
// succeeds, filling the buffer with a marker byte so tests can tell
// recovered data from zero-fill.
type flakySource struct {
	failAttempts map[int64]int // offset -> remaining failures before success
	marker       byte
	reads        map[int64]int
}

func newFlakySource(marker byte) *flakySource {
	return &flakySource{failAttempts: map[int64]int{}, reads: map[int64]int{}, marker: marker}
}

func (f *flakySource) Read(dst []byte, length int, offsetBytes int64) error {
	f.reads[offsetBytes]++
	if n := f.failAttempts[offsetBytes]; n > 0 {
		f.failAttempts[offsetBytes] = n - 1
		return fmt.Errorf("flaky read failure")
	}
	for i := 0; i < length; i++ {
		dst[i] = f.marker
	}
	return nil
}

func (f *flakySource) ReadBCA(buf []byte) (int, error)          { return 0, nil }
func (f *flakySource) ReadTOC() (core.AudioToc, error)          { return core.AudioToc{}, nil }
func (f *flakySource) ReadCDText(toc *core.AudioToc) error      { return nil }
func (f *flakySource) ReadSubchannel(track int) (string, error) { return "", nil }
func (f *flakySource) Close() error                             { return nil }

func noSleep(attempt int) {}

func TestReadBlockSucceedsAfterRetryWithinBudget(t *testing.T) {
	src := newFlakySource(0xAB)
	src.failAttempts[0] = 2 // fails twice, succeeds on 3rd attempt (Wav budget = 6)
	badLog := &core.BadRangeLog{}

	c := New(src, core.AudioWav, badLog)
	c.sleep = noSleep

	dst := make([]byte, core.SectorSizeCDDA)
	c.ReadBlock(dst, 100, 1, core.SectorSizeCDDA, 0)

	for _, b := range dst {
		if b != 0xAB {
			t.Fatalf("expected recovered data, found unrecovered byte %x", b)
		}
	}
	if badLog.TotalSectors() != 0 {
		t.Errorf("TotalSectors() = %d, want 0 (block recovered)", badLog.TotalSectors())
	}
}

func TestReadBlockFallsBackSectorBySectorForWav(t *testing.T) {
	sectorSize := uint32(core.SectorSizeCDDA)
	src := newFlakySource(0xCD)
	// The whole-block read (offset 0) exhausts Wav's 6-attempt budget and
	// falls back to sector-by-sector; by then offset 0's failure count is
	// spent, so sector 0 recovers on its first retry. Sector 1's offset
	// fails forever and is zero-filled.
	src.failAttempts[0] = 6
	src.failAttempts[int64(sectorSize)] = 999

	badLog := &core.BadRangeLog{}
	c := New(src, core.AudioWav, badLog)
	c.sleep = noSleep

	dst := make([]byte, 2*sectorSize)
	c.ReadBlock(dst, 50, 2, sectorSize, 0)

	sector0 := dst[:sectorSize]
	for _, b := range sector0 {
		if b != 0xCD {
			t.Fatalf("expected sector 0 recovered, found byte %x", b)
		}
	}
	sector1 := dst[sectorSize:]
	for _, b := range sector1 {
		if b != 0 {
			t.Fatalf("expected sector 1 zero-filled, found byte %x", b)
		}
	}
	if badLog.TotalSectors() != 1 {
		t.Errorf("TotalSectors() = %d, want 1 unrecoverable sector", badLog.TotalSectors())
	}
	if !badLog.Contains(51) {
		t.Error("expected bad range to contain LBA 51")
	}
}

func TestReadBlockWavFastHasNoFallback(t *testing.T) {
	sectorSize := uint32(core.SectorSizeCDDA)
	src := newFlakySource(0xEE)
	src.failAttempts[0] = 999 // whole-block read never succeeds

	badLog := &core.BadRangeLog{}
	c := New(src, core.AudioWavFast, badLog)
	c.sleep = noSleep

	dst := make([]byte, 2*sectorSize)
	c.ReadBlock(dst, 10, 2, sectorSize, 0)

	for _, b := range dst {
		if b != 0 {
			t.Fatalf("expected whole block zero-filled (no fallback), found byte %x", b)
		}
	}
	if badLog.TotalSectors() != 2 {
		t.Errorf("TotalSectors() = %d, want 2 (whole block logged)", badLog.TotalSectors())
	}
}

func TestAllBlocksFailed(t *testing.T) {
	sectorSize := uint32(core.SectorSizeCDDA)
	src := newFlakySource(0xFF)
	src.failAttempts[0] = 999

	badLog := &core.BadRangeLog{}
	c := New(src, core.AudioWavFast, badLog)
	c.sleep = noSleep

	if c.AllBlocksFailed() {
		t.Error("AllBlocksFailed() must be false before any reads")
	}

	dst := make([]byte, sectorSize)
	c.ReadBlock(dst, 0, 1, sectorSize, 0)
	if !c.AllBlocksFailed() {
		t.Error("AllBlocksFailed() should be true once every attempted sector has failed")
	}
}

func TestDiagnosticFiresEvery64thUnrecoverableSector(t *testing.T) {
	sectorSize := uint32(core.SectorSizeCDDA)
	src := newFlakySource(0x11)
	// Make every individual sector read fail forever so the sector-by-sector
	// fallback logs every one of them as unrecoverable.
	for i := int64(0); i < 200; i++ {
		src.failAttempts[i*int64(sectorSize)] = 1 << 20
	}

	badLog := &core.BadRangeLog{}
	c := New(src, core.AudioWav, badLog)
	c.sleep = noSleep

	var diagCount int
	c.Diagnostic = func(lba uint32) { diagCount++ }

	const sectorCount = 130
	dst := make([]byte, sectorCount*int(sectorSize))
	c.ReadBlock(dst, 0, sectorCount, sectorSize, 0)

	if diagCount != 2 {
		t.Errorf("diagCount = %d, want 2 (130/64)", diagCount)
	}
}
