package digest

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"hash/crc32"
	"testing"
)

func TestPipelineCRC32Always(t *testing.T) {
	data := []byte("hello world")
	p := NewPipeline(false)
	p.Update(data)
	res := p.Result()

	want := crc32.ChecksumIEEE(data)
	if res.CRC32 != want {
		t.Errorf("CRC32 = %08x, want %08x", res.CRC32, want)
	}
	if res.MD5 != "" || res.SHA1 != "" {
		t.Errorf("expected MD5/SHA1 empty when calcChecksums=false, got %q/%q", res.MD5, res.SHA1)
	}
}

func TestPipelineCalcChecksumsTrue(t *testing.T) {
	data := []byte("the quick brown fox")
	p := NewPipeline(true)
	p.Update(data)
	res := p.Result()

	h := md5.Sum(data)
	if res.MD5 != hex.EncodeToString(h[:]) {
		t.Errorf("MD5 = %q, want %q", res.MD5, hex.EncodeToString(h[:]))
	}
	sh := sha1.Sum(data)
	if res.SHA1 != hex.EncodeToString(sh[:]) {
		t.Errorf("SHA1 = %q, want %q", res.SHA1, hex.EncodeToString(sh[:]))
	}
}

func TestPipelineMultipleBlocksMatchWholeBuffer(t *testing.T) {
	full := bytes.Repeat([]byte("x"), 5000)
	p := NewPipeline(false)
	for i := 0; i < len(full); i += 777 {
		end := i + 777
		if end > len(full) {
			end = len(full)
		}
		p.Update(full[i:end])
	}
	res := p.Result()
	want := crc32.ChecksumIEEE(full)
	if res.CRC32 != want {
		t.Errorf("CRC32 over chunked updates = %08x, want %08x", res.CRC32, want)
	}
}

func TestPipelineCRC100000SnapshotAtExactBoundary(t *testing.T) {
	p := NewPipeline(false)
	first := bytes.Repeat([]byte("a"), snapshotOffset)
	p.Update(first)
	res := p.Result()
	if !res.HasCRC100000 {
		t.Fatal("expected HasCRC100000 after exactly 1 MiB written")
	}
	if res.CRC100000 != crc32.ChecksumIEEE(first) {
		t.Errorf("CRC100000 = %08x, want %08x", res.CRC100000, crc32.ChecksumIEEE(first))
	}

	// Further writes must not disturb the snapshot.
	p.Update([]byte("more data after the snapshot"))
	res2 := p.Result()
	if res2.CRC100000 != res.CRC100000 {
		t.Error("CRC100000 snapshot changed after the 1 MiB mark")
	}
}

func TestPipelineCRC100000NeverSetIfUnderOneMiB(t *testing.T) {
	p := NewPipeline(false)
	p.Update(bytes.Repeat([]byte("a"), snapshotOffset-1))
	res := p.Result()
	if res.HasCRC100000 {
		t.Error("HasCRC100000 must be false with under 1 MiB written")
	}
}

func TestPipelineCRC100000MissesUnalignedCrossing(t *testing.T) {
	// A block that straddles the 1 MiB mark without landing exactly on it
	// does not trigger the snapshot, matching the spec's "== exactly"
	// condition; callers are expected to size blocks so this doesn't happen
	// in practice (fixed-size ReadBlocks dividing evenly into 1 MiB).
	p := NewPipeline(false)
	p.Update(bytes.Repeat([]byte("a"), snapshotOffset-1))
	p.Update([]byte("zz"))
	res := p.Result()
	if res.HasCRC100000 {
		t.Error("expected no snapshot when the 1 MiB mark falls inside a block rather than at its end")
	}
}
