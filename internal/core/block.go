package core

// BlockPoolSize is the number of ReadBlock buffers pre-allocated at session
// start (MSG_COUNT in the original dumper).
const BlockPoolSize = 8

// ReadBlock is one reusable acquisition buffer. It is allocated once at
// session start and cycled free_queue -> rip loop -> writer inbox ->
// free_queue for the life of the session. At any instant a ReadBlock is
// owned by exactly one queue or by the rip loop itself; ownership moves by
// passing the pointer through a channel, never by copying the backing
// array.
type ReadBlock struct {
	// Data is the fixed-capacity backing buffer, sized for the largest
	// read this session will issue (ReadSectors * SectorSize).
	Data []byte

	// Length is the number of valid bytes in Data for the last read (may
	// be shorter than cap(Data) for the final, short block of a disc).
	Length int

	// SectorStart and SectorCount describe the LBA range this block holds.
	SectorStart uint32
	SectorCount uint32
}

// NewReadBlock allocates a block with the given capacity in bytes.
func NewReadBlock(capacity int) *ReadBlock {
	return &ReadBlock{Data: make([]byte, capacity)}
}

// Bytes returns the valid portion of the block's data.
func (b *ReadBlock) Bytes() []byte {
	return b.Data[:b.Length]
}
