// Package datfile loads the on-disk checksum databases internal/verify
// looks up against: SPEC_FULL.md's default Database adapter for the
// Redump and Datel collaborators named in spec.md §6. Both ship as
// Logiqx-style XML DAT files — Redump's gzip-compressed, Datel's
// xz-compressed — differing only in which decompressor unwraps them
// before the shared XML parser runs.
package datfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/discripper/discripper/internal/core"
)

// index is the parsed, lookup-ready form of one DAT file: CRC32 and MD5
// keyed maps to the DAT's canonical game/disk name.
type index struct {
	byCRC32 map[uint32]string
	byMD5   map[string]string
}

func newIndex() *index {
	return &index{byCRC32: make(map[uint32]string), byMD5: make(map[string]string)}
}

// datafile mirrors the handful of Logiqx XML fields this engine needs: a
// game's name plus its rom/disk entries' crc and md5 attributes. Unlike a
// full ROM-management tool this package never round-trips or rebuilds a
// DAT, so header metadata, clone/merge bookkeeping and serial numbers are
// not modeled here.
type datafile struct {
	Games []struct {
		Name string `xml:"name,attr"`
		Roms []struct {
			CRC string `xml:"crc,attr"`
			MD5 string `xml:"md5,attr"`
		} `xml:"rom"`
		Disks []struct {
			MD5 string `xml:"md5,attr"`
		} `xml:"disk"`
	} `xml:"game"`
}

// parseIndex decodes a decompressed DAT stream and builds its lookup
// index. CRC values are hex without a "0x" prefix, as Logiqx DATs write
// them; entries missing a usable checksum are skipped.
func parseIndex(r io.Reader) (*index, error) {
	var df datafile
	if err := xml.NewDecoder(r).Decode(&df); err != nil {
		return nil, fmt.Errorf("datfile: decode: %w", err)
	}

	idx := newIndex()
	for _, g := range df.Games {
		for _, rom := range g.Roms {
			if rom.CRC != "" {
				if crc, ok := parseCRC32Hex(rom.CRC); ok {
					idx.byCRC32[crc] = g.Name
				}
			}
			if rom.MD5 != "" {
				idx.byMD5[strings.ToLower(rom.MD5)] = g.Name
			}
		}
		for _, disk := range g.Disks {
			if disk.MD5 != "" {
				idx.byMD5[strings.ToLower(disk.MD5)] = g.Name
			}
		}
	}
	return idx, nil
}

func parseCRC32Hex(s string) (uint32, bool) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) == 0 || len(s) > 8 {
		return 0, false
	}
	var v uint32
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		default:
			return 0, false
		}
	}
	return v, true
}

// Decompressor unwraps a DAT file's on-disk compression before XML
// parsing. GzipDecompressor and XZDecompressor (loader.go) adapt
// klauspost/compress/gzip and github.com/ulikunitz/xz respectively.
type Decompressor func(io.Reader) (io.Reader, error)

// Store loads and caches per-DiscKind DAT indexes from a source directory,
// satisfying internal/verify.Database. Loading is lazy (first lookup for
// a kind triggers it) and deduplicated across concurrent callers via
// dedup, mirroring the teacher's DiskCache + Deduplicator pairing.
type Store struct {
	open       func(kind core.DiscKind) (io.ReadCloser, bool)
	decompress Decompressor
	dedup      *dedup
	mu         sync.RWMutex
	loaded     map[core.DiscKind]*index
}

// NewStore builds a Store. open returns the raw (still-compressed) DAT
// file for a kind, or ok=false when no DAT is configured for that kind.
// decompress is applied to the stream before XML parsing.
func NewStore(open func(core.DiscKind) (io.ReadCloser, bool), decompress Decompressor) *Store {
	return &Store{
		open:       open,
		decompress: decompress,
		dedup:      newDedup(),
		loaded:     make(map[core.DiscKind]*index),
	}
}

func (s *Store) keyFor(kind core.DiscKind) string {
	return kind.String()
}

func (s *Store) get(kind core.DiscKind) (*index, bool) {
	s.mu.RLock()
	idx, ok := s.loaded[kind]
	s.mu.RUnlock()
	if ok {
		return idx, true
	}

	idx, err := s.dedup.do(s.keyFor(kind), func() (*index, error) {
		rc, ok := s.open(kind)
		if !ok {
			return nil, nil
		}
		defer rc.Close()

		stream, err := s.decompress(rc)
		if err != nil {
			return nil, fmt.Errorf("datfile: decompress %s DAT: %w", kind, err)
		}
		return parseIndex(stream)
	})
	if err != nil || idx == nil {
		return nil, false
	}

	s.mu.Lock()
	s.loaded[kind] = idx
	s.mu.Unlock()
	return idx, true
}

// IsAvailable reports whether a DAT for kind loaded successfully.
func (s *Store) IsAvailable(kind core.DiscKind) bool {
	_, ok := s.get(kind)
	return ok
}

// FindCRC32 looks up a checksum in the kind's loaded DAT.
func (s *Store) FindCRC32(crc uint32, kind core.DiscKind) (string, bool) {
	idx, ok := s.get(kind)
	if !ok {
		return "", false
	}
	name, ok := idx.byCRC32[crc]
	return name, ok
}

// FindMD5 looks up a checksum in the kind's loaded DAT. md5 is matched
// case-insensitively.
func (s *Store) FindMD5(md5 string, kind core.DiscKind) (string, bool) {
	idx, ok := s.get(kind)
	if !ok {
		return "", false
	}
	name, ok := idx.byMD5[strings.ToLower(md5)]
	return name, ok
}
