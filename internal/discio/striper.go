package discio

import (
	"fmt"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
)

// Striper fans reads across an ordered, non-empty list of SourceReaders on
// 1 MiB boundaries (spec.md §4.2). Drives have independent mechanical read
// queues, so striping overlaps their seek latencies. Read rejects requests
// larger than StripeBytes and sends each request whole to the drive its
// start offset maps to, even when the request extends past that stripe.
type Striper struct {
	drives []SourceReader
}

// NewStriper wraps an ordered, non-empty slice of drives.
func NewStriper(drives []SourceReader) (*Striper, error) {
	if len(drives) == 0 {
		return nil, fmt.Errorf("discio: striper requires at least one drive")
	}
	return &Striper{drives: drives}, nil
}

// DriveCount returns the number of drives in the stripe set.
func (s *Striper) DriveCount() int {
	return len(s.drives)
}

// DriveFor returns the drive index a given byte offset stripes to.
func (s *Striper) DriveFor(offsetBytes int64) int {
	return int((offsetBytes / StripeBytes) % int64(len(s.drives)))
}

// Read dispatches to the drive selected by (offsetBytes / StripeBytes) mod
// N. On failure the request is reported as failed without being rerouted
// to another drive — RecoveryController, not the striper, decides retries.
func (s *Striper) Read(dst []byte, length int, offsetBytes int64) error {
	if int64(length) > StripeBytes {
		return fmt.Errorf("discio: striper read of %d bytes exceeds stripe size %d: %w", length, StripeBytes, riperr.ErrAlignment)
	}
	idx := s.DriveFor(offsetBytes)
	return s.drives[idx].Read(dst, length, offsetBytes)
}

// ReadBCA, ReadTOC, ReadCDText and ReadSubchannel are delegated to drive 0:
// these are whole-disc queries, not striped ranges, and every drive in a
// set is expected to hold an identical copy of the same source disc.
func (s *Striper) ReadBCA(buf []byte) (int, error)            { return s.drives[0].ReadBCA(buf) }
func (s *Striper) ReadTOC() (core.AudioToc, error)            { return s.drives[0].ReadTOC() }
func (s *Striper) ReadCDText(toc *core.AudioToc) error        { return s.drives[0].ReadCDText(toc) }
func (s *Striper) ReadSubchannel(track int) (string, error)   { return s.drives[0].ReadSubchannel(track) }

func (s *Striper) Close() error {
	var firstErr error
	for _, d := range s.drives {
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ SourceReader = (*Striper)(nil)
