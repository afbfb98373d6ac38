// Package digest computes the rolling integrity checksums spec.md §4.6
// requires: CRC32 always, optionally MD5 and SHA-1, plus a CRC32 snapshot
// of exactly the first 1 MiB for the Datel mid-rip lookup.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"hash/crc32"
	"io"

	"github.com/discripper/discripper/internal/core"
)

// snapshotOffset is the byte offset at which crc100000 is captured
// (spec.md §4.6: "offset + len == 0x100000 exactly").
const snapshotOffset = 0x100000

// Pipeline feeds every written block through CRC32 (mandatory) and,
// optionally, MD5 and SHA-1, in a single pass per block via io.MultiWriter
// fan-out.
type Pipeline struct {
	crc32   hash.Hash32
	md5     hash.Hash
	sha1    hash.Hash
	fanout  io.Writer
	hasMore bool // true once calcChecksums requested MD5/SHA-1

	written      uint64
	crc100000    uint32
	hasCRC100000 bool
}

// NewPipeline builds a Pipeline. When calcChecksums is false only CRC32 is
// updated; MD5/SHA-1 are left zero-valued in the result.
func NewPipeline(calcChecksums bool) *Pipeline {
	p := &Pipeline{crc32: crc32.NewIEEE()}
	writers := []io.Writer{p.crc32}
	if calcChecksums {
		p.md5 = md5.New()
		p.sha1 = sha1.New()
		p.hasMore = true
		writers = append(writers, p.md5, p.sha1)
	}
	p.fanout = io.MultiWriter(writers...)
	return p
}

// Update feeds one block's bytes through every active hash, in LBA order.
// Digest updates happen in the rip loop before a block is handed to the
// writer, so digest ordering equals LBA ordering regardless of write
// timing (spec.md §5).
func (p *Pipeline) Update(data []byte) {
	// hash.Hash.Write never returns an error; MultiWriter preserves that.
	_, _ = p.fanout.Write(data)

	start := p.written
	p.written += uint64(len(data))
	if !p.hasCRC100000 && start+uint64(len(data)) == snapshotOffset {
		p.crc100000 = p.crc32.Sum32()
		p.hasCRC100000 = true
	}
}

// Result snapshots the current digest state. It may be called once at the
// end of a rip, or mid-rip to react to the crc100000 Datel lookup.
func (p *Pipeline) Result() core.DigestResult {
	res := core.DigestResult{
		CRC32:        p.crc32.Sum32(),
		CRC100000:    p.crc100000,
		HasCRC100000: p.hasCRC100000,
	}
	if p.hasMore {
		res.MD5 = hex.EncodeToString(p.md5.Sum(nil))
		res.SHA1 = hex.EncodeToString(p.sha1.Sum(nil))
	}
	return res
}
