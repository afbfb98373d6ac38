package discio

import (
	"fmt"
	"os"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// usbSectorSize is the block size UsbMassStorage requires all reads to be
// aligned to.
const usbSectorSize = 512

// UsbMassStorage reads a USB mass-storage block device presenting a raw
// disc image (e.g. an external drive enclosure). It supports only
// sector-aligned reads and none of OpticalDrive's disc-specific auxiliary
// operations.
type UsbMassStorage struct {
	f *os.File
}

// NewUsbMassStorage opens path for shared reading.
func NewUsbMassStorage(path string) (*UsbMassStorage, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, riperr.ErrNoMedium
		}
		return nil, fmt.Errorf("discio: open %s: %w", path, err)
	}
	return &UsbMassStorage{f: f}, nil
}

func (u *UsbMassStorage) Read(dst []byte, length int, offsetBytes int64) error {
	if offsetBytes%usbSectorSize != 0 || length%usbSectorSize != 0 {
		return fmt.Errorf("discio: unaligned USB read (offset=%d len=%d): %w", offsetBytes, length, riperr.ErrAlignment)
	}
	n, err := u.f.ReadAt(dst[:length], offsetBytes)
	if err != nil || n != length {
		return fmt.Errorf("discio: short USB read at %d (%d/%d bytes): %w", offsetBytes, n, length, riperr.ErrReadFailure)
	}
	return nil
}

func (u *UsbMassStorage) ReadBCA(buf []byte) (int, error) {
	return 0, riperr.ErrUnsupported
}

func (u *UsbMassStorage) ReadTOC() (core.AudioToc, error) {
	return core.AudioToc{}, riperr.ErrUnsupported
}

func (u *UsbMassStorage) ReadCDText(toc *core.AudioToc) error {
	return riperr.ErrUnsupported
}

func (u *UsbMassStorage) ReadSubchannel(track int) (string, error) {
	return "", riperr.ErrUnsupported
}

func (u *UsbMassStorage) Close() error {
	return u.f.Close()
}

var _ SourceReader = (*UsbMassStorage)(nil)
