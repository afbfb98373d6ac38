package datfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/discripper/discripper/internal/core"
)

// GzipDecompressor unwraps a Redump-style gzip-compressed DAT.
func GzipDecompressor(r io.Reader) (io.Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("datfile: gzip: %w", err)
	}
	return gz, nil
}

// XZDecompressor unwraps a Datel-style xz-compressed DAT.
func XZDecompressor(r io.Reader) (io.Reader, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("datfile: xz: %w", err)
	}
	return xr, nil
}

// fileNameFor maps a DiscKind to the DAT filename convention both
// databases use: one file per console under the store's base directory.
func fileNameFor(kind core.DiscKind) (string, bool) {
	switch kind {
	case core.KindGameCube:
		return "gamecube.dat", true
	case core.KindWii:
		return "wii.dat", true
	case core.KindDatel:
		return "datel.dat", true
	default:
		return "", false
	}
}

// OpenDir returns a Store.open function backed by baseDir/<kind>.dat,
// with ext appended (".gz" for Redump, ".xz" for Datel).
func OpenDir(baseDir, ext string) func(core.DiscKind) (io.ReadCloser, bool) {
	return func(kind core.DiscKind) (io.ReadCloser, bool) {
		name, ok := fileNameFor(kind)
		if !ok {
			return nil, false
		}
		f, err := os.Open(filepath.Join(baseDir, name+ext))
		if err != nil {
			return nil, false
		}
		return f, true
	}
}

// NewRedumpStore builds a Store over baseDir's gzip-compressed per-console
// DAT files ("<kind>.dat.gz").
func NewRedumpStore(baseDir string) *Store {
	return NewStore(OpenDir(baseDir, ".gz"), GzipDecompressor)
}

// NewDatelStore builds a Store over baseDir's xz-compressed DAT file
// ("datel.dat.xz").
func NewDatelStore(baseDir string) *Store {
	return NewStore(OpenDir(baseDir, ".xz"), XZDecompressor)
}
