// Package discio abstracts optical and USB mass-storage disc sources
// (spec.md §4.1) and fans reads across multiple drives (§4.2).
package discio

import "github.com/discripper/discripper/internal/core"

// SourceReader abstracts one disc source: an optical drive handle or a USB
// mass-storage block device. Implementations translate a byte-range read
// into whatever platform primitive the underlying device needs.
type SourceReader interface {
	// Read fills dst[:length] with bytes starting at offsetBytes. length
	// must be a multiple of the implementation's sector size.
	Read(dst []byte, length int, offsetBytes int64) error

	// ReadBCA returns the Burst Cutting Area descriptor (DVD physical
	// format 3), with the 4-byte length header stripped. For Audio CD,
	// implementations synthesize MCN || concat(ISRC_i) instead.
	ReadBCA(buf []byte) (int, error)

	// ReadTOC returns the parsed table of contents. Only meaningful for
	// Audio CD sources; others return core.AudioToc{} and
	// riperr.ErrUnsupported.
	ReadTOC() (core.AudioToc, error)

	// ReadCDText enriches an already-read TOC with CD-TEXT Block 0
	// (English) album/track title and performer fields, when present.
	ReadCDText(toc *core.AudioToc) error

	// ReadSubchannel returns the MCN (track == 0) or a track's ISRC, when
	// the subchannel Q "valid" bit (bit 7) is set for that identifier.
	ReadSubchannel(track int) (string, error)

	// Close releases the underlying device handle.
	Close() error
}

// StripeBytes is the striping granularity DriveStriper uses to choose a
// drive for a given offset (spec.md §4.2). A single read must not exceed
// this size, since it must never cross a stripe boundary.
const StripeBytes = 1 << 20 // 1 MiB

// cddaSubRequestSectors is the maximum number of 2352-byte CDDA sectors a
// single raw-read control request may cover (~64 KiB), matching the
// transfer cap typical optical drive controllers impose.
const cddaSubRequestSectors = 27
