package sidecar

import "encoding/binary"

// rf64Threshold is the data size at which BuildHeader switches from a
// classic 44-byte RIFF/WAVE header to an RF64 header (spec.md §4.9).
const rf64Threshold = 1 << 32

// WAVFormat describes the PCM layout WAV/RF64 headers are built for. The
// engine always writes 16-bit PCM, per spec.md §6.
type WAVFormat struct {
	Channels   uint16
	SampleRate uint32
}

const (
	bitsPerSample = 16
	audioFormatPCM = 1
)

func (f WAVFormat) blockAlign() uint16 {
	return f.Channels * (bitsPerSample / 8)
}

func (f WAVFormat) byteRate() uint32 {
	return f.SampleRate * uint32(f.blockAlign())
}

// HeaderSize is the byte length of the classic 44-byte WAV header, i.e. the
// offset audio data starts at when RF64 is not used.
const HeaderSize = 44

// WAVHeader builds the 44-byte PCM RIFF/WAVE header for dataSize bytes of
// audio, emitted at offset 0 before any audio data (spec.md §4.9). Callers
// writing incrementally should call this once up front with dataSize=0 and
// overwrite it with BuildHeader's output once the final size is known.
func WAVHeader(f WAVFormat, dataSize uint32) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], 36+dataSize)
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], audioFormatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], f.Channels)
	binary.LittleEndian.PutUint32(buf[24:28], f.SampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], f.byteRate())
	binary.LittleEndian.PutUint16(buf[32:34], f.blockAlign())
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], dataSize)
	return buf
}

// RF64Header builds an RF64 header (spec.md §4.9) for a data size that does
// not fit a standard WAV 32-bit length field: "RF64" + 0xFFFFFFFF sentinel
// + "WAVE" + a "ds64" chunk carrying the real 64-bit RIFF/data sizes and
// sample count + "fmt " + a "data" chunk whose own length field is the
// 0xFFFFFFFF sentinel (the true size lives in ds64).
func RF64Header(f WAVFormat, dataSize uint64) []byte {
	sampleCount := uint64(0)
	if ba := f.blockAlign(); ba > 0 {
		sampleCount = dataSize / uint64(ba)
	}

	buf := make([]byte, 0, 92)
	buf = append(buf, "RF64"...)
	buf = appendUint32(buf, 0xFFFFFFFF)
	buf = append(buf, "WAVE"...)

	buf = append(buf, "ds64"...)
	buf = appendUint32(buf, 28) // ds64 chunk size: three uint64 fields + table length
	buf = appendUint64(buf, 36+dataSize) // riffSize
	buf = appendUint64(buf, dataSize)    // dataSize
	buf = appendUint64(buf, sampleCount) // sampleCount
	buf = appendUint32(buf, 0)           // table length (no CRC/aux table entries)

	buf = append(buf, "fmt "...)
	buf = appendUint32(buf, 16)
	buf = appendUint16(buf, audioFormatPCM)
	buf = appendUint16(buf, f.Channels)
	buf = appendUint32(buf, f.SampleRate)
	buf = appendUint32(buf, f.byteRate())
	buf = appendUint16(buf, f.blockAlign())
	buf = appendUint16(buf, bitsPerSample)

	buf = append(buf, "data"...)
	buf = appendUint32(buf, 0xFFFFFFFF)
	return buf
}

// BuildHeader picks RF64Header when dataSize crosses the 4 GiB boundary,
// WAVHeader otherwise.
func BuildHeader(f WAVFormat, dataSize uint64) []byte {
	if dataSize >= rf64Threshold {
		return RF64Header(f, dataSize)
	}
	return WAVHeader(f, uint32(dataSize))
}

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}
