// Package sidecar emits the non-image artifacts spec.md §4.9 describes:
// BCA dumps, WAV/RF64 headers, CUE sheets, the dump-info report and the
// bad-sector manifest. Each artifact is built as a pure function over
// plain data (testable without touching a filesystem) and written to disk
// by the thin Writer wrapper RipSession drives.
package sidecar

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/discripper/discripper/internal/core"
)

// Writer emits sidecar artifacts alongside a rip's primary output, named
// "<dir>/<baseName>.<ext>".
type Writer struct {
	dir      string
	baseName string
}

// New builds a Writer rooted at dir, naming artifacts after baseName (the
// sanitized game/album name the profiler/chunker already derived).
func New(dir, baseName string) *Writer {
	return &Writer{dir: dir, baseName: baseName}
}

func (w *Writer) path(suffix string) string {
	return filepath.Join(w.dir, w.baseName+suffix)
}

// WriteBCA writes the raw 64-byte (or shorter) BCA descriptor to
// "<name>.bca" and its pretty-printed bit rendering to "<name>.bca.txt".
// Returns both paths in that order.
func (w *Writer) WriteBCA(data []byte) (rawPath, txtPath string, err error) {
	rawPath = w.path(".bca")
	if err = os.WriteFile(rawPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("sidecar: write %s: %w", rawPath, err)
	}
	txtPath = w.path(".bca.txt")
	if err = os.WriteFile(txtPath, []byte(BCABitString(data)), 0o644); err != nil {
		return rawPath, "", fmt.Errorf("sidecar: write %s: %w", txtPath, err)
	}
	return rawPath, txtPath, nil
}

// WriteCUE renders and writes the CUE sheet to "<name>.cue".
func (w *Writer) WriteCUE(toc *core.AudioToc, dataFileName string, audioBin bool) (string, error) {
	path := w.path(".cue")
	if err := os.WriteFile(path, []byte(BuildCUE(toc, dataFileName, audioBin)), 0o644); err != nil {
		return "", fmt.Errorf("sidecar: write %s: %w", path, err)
	}
	return path, nil
}

// WriteDumpInfo renders and writes the dump-info report to
// "<name>-dumpinfo.txt".
func (w *Writer) WriteDumpInfo(info DumpInfo) (string, error) {
	path := w.path("-dumpinfo.txt")
	if err := os.WriteFile(path, []byte(BuildDumpInfo(info)), 0o644); err != nil {
		return "", fmt.Errorf("sidecar: write %s: %w", path, err)
	}
	return path, nil
}

// WriteBadRangeLog renders and writes the bad-sector manifest to
// "<name>.bad". Returns "", nil without writing anything when log is empty,
// since an Audio CD rip with no unrecoverable sectors has nothing to
// report.
func (w *Writer) WriteBadRangeLog(log *core.BadRangeLog) (string, error) {
	if log == nil || len(log.Ranges) == 0 {
		return "", nil
	}
	path := w.path(".bad")
	if err := os.WriteFile(path, []byte(BuildBadRangeLog(log)), 0o644); err != nil {
		return "", fmt.Errorf("sidecar: write %s: %w", path, err)
	}
	return path, nil
}
