//go:build linux

package discio

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// Minimal Linux SG_IO (SCSI generic) passthrough, used only to issue
// READ TOC/PMA/ATIP format 5 (CD-TEXT) — a command the generic CDROM
// ioctl layer doesn't expose. Struct layout matches <scsi/sg.h>'s
// sg_io_hdr_t on 64-bit Linux.
const (
	sgIOIoctl       = 0x2285
	sgDxferFromDev  = -3
	sgInterfaceID   = 'S'
	readTOCOpcode   = 0x43
	readTOCFormatText = 0x05
)

type sgIOHdr struct {
	InterfaceID    int32
	DxferDirection int32
	CmdLen         uint8
	MxSbLen        uint8
	IovecCount     uint16
	DxferLen       uint32
	_              uint32 // padding to align pointer fields on amd64
	Dxferp         uintptr
	Cmdp           uintptr
	Sbp            uintptr
	Timeout        uint32
	Flags          uint32
	PackID         int32
	UsrPtr         uintptr
	Status         uint8
	MaskedStatus   uint8
	MsgStatus      uint8
	SbLenWr        uint8
	HostStatus     uint16
	DriverStatus   uint16
	Resid          int32
	Duration       uint32
	Info           uint32
}

// readCDTextSGIO issues READ TOC/PMA/ATIP format 5 and returns the raw
// CD-TEXT data block (stripped of the 4-byte data-length/reserved header),
// ready for applyCDTextPackets.
func readCDTextSGIO(f *os.File) ([]byte, error) {
	const allocLen = 2048
	buf := make([]byte, allocLen)
	sense := make([]byte, 32)

	cdb := [10]byte{}
	cdb[0] = readTOCOpcode
	cdb[2] = readTOCFormatText
	binary.BigEndian.PutUint16(cdb[7:9], uint16(allocLen))

	hdr := sgIOHdr{
		InterfaceID:    sgInterfaceID,
		DxferDirection: sgDxferFromDev,
		CmdLen:         uint8(len(cdb)),
		MxSbLen:        uint8(len(sense)),
		DxferLen:       uint32(len(buf)),
		Dxferp:         uintptr(unsafe.Pointer(&buf[0])),
		Cmdp:           uintptr(unsafe.Pointer(&cdb[0])),
		Sbp:            uintptr(unsafe.Pointer(&sense[0])),
		Timeout:        5000,
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), sgIOIoctl, uintptr(unsafe.Pointer(&hdr)))
	if errno != 0 {
		return nil, fmt.Errorf("discio: SG_IO READ TOC/PMA/ATIP: %w: %v", riperr.ErrReadFailure, errno)
	}
	if hdr.HostStatus != 0 || hdr.DriverStatus != 0 {
		return nil, fmt.Errorf("discio: SG_IO READ TOC/PMA/ATIP: %w", riperr.ErrUnsupported)
	}

	// First 4 bytes: data length (2 bytes, big-endian) + 2 reserved.
	if len(buf) < 4 {
		return nil, riperr.ErrUnsupported
	}
	dataLen := int(binary.BigEndian.Uint16(buf[0:2]))
	if dataLen+2 > len(buf) {
		dataLen = len(buf) - 2
	}
	return buf[4 : 2+dataLen], nil
}

func readCDTextViaSGIO(f *os.File, toc *core.AudioToc) error {
	data, err := readCDTextSGIO(f)
	if err != nil {
		return err
	}
	applyCDTextPackets(data, toc)
	return nil
}

const (
	readSubchannelOpcode = 0x42
	subQFormatISRC        = 3
)

// readISRCSGIO issues READ SUBCHANNEL sub-Q format 3 for track and returns
// its ISRC when the subchannel Q "valid" bit (TCVAL, bit 7 of byte 8) is
// set.
func readISRCSGIO(f *os.File, track int) (string, error) {
	const allocLen = 24
	buf := make([]byte, allocLen)
	sense := make([]byte, 32)

	cdb := [10]byte{}
	cdb[0] = readSubchannelOpcode
	cdb[2] = 1 << 6 // SUBQ bit: return subchannel data
	cdb[3] = subQFormatISRC
	cdb[6] = byte(track)
	binary.BigEndian.PutUint16(cdb[7:9], uint16(allocLen))

	hdr := sgIOHdr{
		InterfaceID:    sgInterfaceID,
		DxferDirection: sgDxferFromDev,
		CmdLen:         uint8(len(cdb)),
		MxSbLen:        uint8(len(sense)),
		DxferLen:       uint32(len(buf)),
		Dxferp:         uintptr(unsafe.Pointer(&buf[0])),
		Cmdp:           uintptr(unsafe.Pointer(&cdb[0])),
		Sbp:            uintptr(unsafe.Pointer(&sense[0])),
		Timeout:        5000,
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), sgIOIoctl, uintptr(unsafe.Pointer(&hdr)))
	if errno != 0 {
		return "", fmt.Errorf("discio: SG_IO READ SUBCHANNEL: %w: %v", riperr.ErrReadFailure, errno)
	}

	// Sub-Q format 3 response: 4-byte header, then format code (byte 4),
	// ADR/CONTROL (byte 5), track (byte 6), a reserved byte, the "valid"
	// flag in bit 7 of byte 8 (TCVAL), and the ISRC field from byte 9.
	if len(buf) < 9+12 {
		return "", riperr.ErrUnsupported
	}
	tcval := buf[8] & 0x80
	if tcval == 0 {
		return "", riperr.ErrUnsupported
	}
	isrc := nulTerminated(buf[9 : 9+12])
	if isrc == "" {
		return "", riperr.ErrUnsupported
	}
	return isrc, nil
}
