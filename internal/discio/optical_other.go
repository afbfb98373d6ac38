//go:build !linux

package discio

import (
	"os"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// unsupportedOps is used on every GOOS without a raw CDROM ioctl surface.
// The 2048-byte logical read path (OpticalDrive.readISO) and
// UsbMassStorage don't depend on platformOps at all, so discripper still
// rips GameCube/Wii/DVD-Video images on these platforms; only the
// CDDA/TOC/CD-TEXT/subchannel/BCA paths are unavailable.
type unsupportedOps struct{}

func newPlatformOps() platformOps { return unsupportedOps{} }

func (unsupportedOps) readRawCDDA(f *os.File, sectorIndex uint32, sectorCount int, dst []byte) error {
	return riperr.ErrUnsupported
}

func (unsupportedOps) readTOC(f *os.File) (core.AudioToc, error) {
	return core.AudioToc{}, riperr.ErrUnsupported
}

func (unsupportedOps) readCDText(f *os.File, toc *core.AudioToc) error {
	return riperr.ErrUnsupported
}

func (unsupportedOps) readSubchannel(f *os.File, track int) (string, error) {
	return "", riperr.ErrUnsupported
}

func (unsupportedOps) readBCA(f *os.File, buf []byte) (int, error) {
	return 0, riperr.ErrUnsupported
}

func (unsupportedOps) eject(f *os.File) error {
	return riperr.ErrUnsupported
}
