//go:build linux

package discio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// Linux CDROM ioctl numbers and request structures, from linux/cdrom.h.
const (
	cdromReadTOCHdr   = 0x5305
	cdromReadTOCEntry = 0x5306
	cdromEject        = 0x5309
	cdromSubchnl      = 0x530b
	cdromReadAudio    = 0x530e
	cdromGetMCN       = 0x5311
)

const (
	cdromLBA    = 0x01
	cdromMSF    = 0x02
	cdromLeadOut = 0xAA
)

type cdromMSF0 struct {
	Minute byte
	Second byte
	Frame  byte
}

type cdromTOCHdr struct {
	TocFirstTrack byte
	TocLastTrack  byte
}

type cdromTOCEntry struct {
	Track        byte
	AdrCtrl      byte // adr:4 | ctrl:4
	Format       byte
	Addr         cdromMSF0
	_            byte
	DataMode     byte
	_            [2]byte
}

type cdromReadAudioReq struct {
	Addr       cdromMSF0
	AddrFormat byte
	_          [3]byte
	NFrames    int32
	Buf        *byte
}

type cdromSubchnlReq struct {
	Format    byte
	Addr0     byte
	Ctrladr   byte
	Track     byte
	Index     byte
	Absolute  cdromMSF0
	Relative  cdromMSF0
}

type cdromMCNReq struct {
	MCN [14]byte
}

type linuxOps struct{}

func newPlatformOps() platformOps { return linuxOps{} }

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (linuxOps) readRawCDDA(f *os.File, sectorIndex uint32, sectorCount int, dst []byte) error {
	msf := sectorToMSF(sectorIndex)
	reqArg := cdromReadAudioReq{
		Addr:       msf,
		AddrFormat: cdromMSF,
		NFrames:    int32(sectorCount),
		Buf:        &dst[0],
	}
	if err := ioctl(f.Fd(), cdromReadAudio, unsafe.Pointer(&reqArg)); err != nil {
		return fmt.Errorf("discio: CDROMREADAUDIO: %w: %v", riperr.ErrReadFailure, err)
	}
	return nil
}

func (linuxOps) readTOC(f *os.File) (core.AudioToc, error) {
	var hdr cdromTOCHdr
	if err := ioctl(f.Fd(), cdromReadTOCHdr, unsafe.Pointer(&hdr)); err != nil {
		return core.AudioToc{}, fmt.Errorf("discio: CDROMREADTOCHDR: %w", err)
	}

	toc := core.AudioToc{
		FirstTrack: int(hdr.TocFirstTrack),
		LastTrack:  int(hdr.TocLastTrack),
	}

	for tn := hdr.TocFirstTrack; tn <= hdr.TocLastTrack; tn++ {
		entry := cdromTOCEntry{Track: tn, Format: cdromMSF}
		if err := ioctl(f.Fd(), cdromReadTOCEntry, unsafe.Pointer(&entry)); err != nil {
			return core.AudioToc{}, fmt.Errorf("discio: CDROMREADTOCENTRY track %d: %w", tn, err)
		}
		toc.Tracks = append(toc.Tracks, core.AudioTrack{
			Number:     int(tn),
			StartFrame: msfToFrames(entry.Addr),
			Control:    entry.AdrCtrl & 0x0F,
		})
	}

	leadOut := cdromTOCEntry{Track: cdromLeadOut, Format: cdromMSF}
	if err := ioctl(f.Fd(), cdromReadTOCEntry, unsafe.Pointer(&leadOut)); err == nil {
		toc.LeadOutFrame = msfToFrames(leadOut.Addr)
	}

	return toc, nil
}

func (linuxOps) readCDText(f *os.File, toc *core.AudioToc) error {
	return readCDTextViaSGIO(f, toc)
}

func (linuxOps) readSubchannel(f *os.File, track int) (string, error) {
	if track == 0 {
		var mcn cdromMCNReq
		if err := ioctl(f.Fd(), cdromGetMCN, unsafe.Pointer(&mcn)); err != nil {
			return "", fmt.Errorf("discio: CDROM_GET_MCN: %w", err)
		}
		return nulTerminated(mcn.MCN[:]), nil
	}
	return readISRCSGIO(f, track)
}

func (linuxOps) readBCA(f *os.File, buf []byte) (int, error) {
	// BCA retrieval uses the MMC READ DISC STRUCTURE command (format 3),
	// also unavailable through the generic CDROM ioctl surface.
	return 0, riperr.ErrUnsupported
}

func (linuxOps) eject(f *os.File) error {
	return ioctl(f.Fd(), cdromEject, nil)
}

func sectorToMSF(sector uint32) cdromMSF0 {
	frames := int(sector) + core.LeadInFrames
	msf := core.FramesToMSF(frames)
	return cdromMSF0{Minute: byte(msf.Minutes), Second: byte(msf.Seconds), Frame: byte(msf.Frames)}
}

func msfToFrames(m cdromMSF0) int {
	msf := core.MSF{Minutes: int(m.Minute), Seconds: int(m.Second), Frames: int(m.Frame)}
	return msf.ToFrames()
}

func nulTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
