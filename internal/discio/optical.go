package discio

import (
	"fmt"
	"os"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// platformOps is the narrow set of operations that differ by OS. Linux
// gets a real ioctl-backed implementation (optical_linux.go); every other
// GOOS gets a stub that reports ErrUnsupported for the raw-audio and
// TOC/CD-TEXT/subchannel paths, since those require platform-specific
// passthrough commands the 2048-byte logical path doesn't need.
type platformOps interface {
	readRawCDDA(f *os.File, sectorIndex uint32, sectorCount int, dst []byte) error
	readTOC(f *os.File) (core.AudioToc, error)
	readCDText(f *os.File, toc *core.AudioToc) error
	readSubchannel(f *os.File, track int) (string, error)
	readBCA(f *os.File, buf []byte) (int, error)
	eject(f *os.File) error
}

// OpticalDrive reads from a raw block device or platform drive handle with
// shared read access, per spec.md §4.1.
type OpticalDrive struct {
	path       string
	f          *os.File
	sectorSize uint32
	plat       platformOps
}

// NewOpticalDrive opens path for shared reading. sectorSize selects which
// access path Read uses: core.SectorSizeISO for the 2048-byte logical path,
// core.SectorSizeCDDA for the 2352-byte raw-audio path.
func NewOpticalDrive(path string, sectorSize uint32) (*OpticalDrive, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, riperr.ErrNoMedium
		}
		return nil, fmt.Errorf("discio: open %s: %w", path, err)
	}
	return &OpticalDrive{path: path, f: f, sectorSize: sectorSize, plat: newPlatformOps()}, nil
}

func (d *OpticalDrive) Close() error {
	return d.f.Close()
}

// Eject opens the drive tray, when RipOptions.AutoEject is set.
func (d *OpticalDrive) Eject() error {
	return d.plat.eject(d.f)
}

// Read implements SourceReader.Read. For the 2048-byte path this is a
// plain seek+read that fails on any short read. For the 2352-byte CDDA
// path, large requests are split into sub-requests of at most
// cddaSubRequestSectors sectors to respect the driver's transfer cap; the
// logical read succeeds only if every sub-request succeeds.
func (d *OpticalDrive) Read(dst []byte, length int, offsetBytes int64) error {
	if d.sectorSize == core.SectorSizeCDDA {
		return d.readCDDA(dst, length, offsetBytes)
	}
	return d.readISO(dst, length, offsetBytes)
}

func (d *OpticalDrive) readISO(dst []byte, length int, offsetBytes int64) error {
	if length%core.SectorSizeISO != 0 {
		return fmt.Errorf("discio: length %d not a multiple of %d: %w", length, core.SectorSizeISO, riperr.ErrAlignment)
	}
	n, err := d.f.ReadAt(dst[:length], offsetBytes)
	if err != nil || n != length {
		return fmt.Errorf("discio: short read at %d (%d/%d bytes): %w", offsetBytes, n, length, riperr.ErrReadFailure)
	}
	return nil
}

func (d *OpticalDrive) readCDDA(dst []byte, length int, offsetBytes int64) error {
	if length%core.SectorSizeCDDA != 0 {
		return fmt.Errorf("discio: length %d not a multiple of %d: %w", length, core.SectorSizeCDDA, riperr.ErrAlignment)
	}
	totalSectors := length / core.SectorSizeCDDA
	startSector := uint32(offsetBytes / core.SectorSizeCDDA)

	done := 0
	for done < totalSectors {
		n := totalSectors - done
		if n > cddaSubRequestSectors {
			n = cddaSubRequestSectors
		}
		sub := dst[done*core.SectorSizeCDDA : (done+n)*core.SectorSizeCDDA]
		if err := d.plat.readRawCDDA(d.f, startSector+uint32(done), n, sub); err != nil {
			return fmt.Errorf("discio: raw CDDA read at sector %d: %w", startSector+uint32(done), err)
		}
		done += n
	}
	return nil
}

func (d *OpticalDrive) ReadBCA(buf []byte) (int, error) {
	if d.sectorSize == core.SectorSizeCDDA {
		return d.readSynthesizedBCA(buf)
	}
	return d.plat.readBCA(d.f, buf)
}

// readSynthesizedBCA builds MCN || concat(ISRC_i) for Audio CD, standing in
// for the physical BCA descriptor a DVD-family disc would return.
func (d *OpticalDrive) readSynthesizedBCA(buf []byte) (int, error) {
	toc, err := d.ReadTOC()
	if err != nil {
		return 0, err
	}
	mcn, err := d.ReadSubchannel(0)
	if err != nil {
		mcn = ""
	}
	out := []byte(mcn)
	for _, t := range toc.Tracks {
		isrc, err := d.ReadSubchannel(t.Number)
		if err != nil {
			continue
		}
		out = append(out, []byte(isrc)...)
	}
	n := copy(buf, out)
	return n, nil
}

func (d *OpticalDrive) ReadTOC() (core.AudioToc, error) {
	return d.plat.readTOC(d.f)
}

func (d *OpticalDrive) ReadCDText(toc *core.AudioToc) error {
	return d.plat.readCDText(d.f, toc)
}

// ReadSubchannel returns the MCN (track == 0) or a track's ISRC if the
// subchannel Q "valid" bit (bit 7 of the control byte) is set.
func (d *OpticalDrive) ReadSubchannel(track int) (string, error) {
	return d.plat.readSubchannel(d.f, track)
}

var _ SourceReader = (*OpticalDrive)(nil)
