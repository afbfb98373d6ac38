// Package riperr defines the closed error taxonomy a RipSession classifies
// every failure into (spec.md §7). Errors are plain sentinels and wrapped
// values, following the teacher's fmt.Errorf("...: %w", err) idiom rather
// than a third-party errors package.
package riperr

import "errors"

// Sentinel errors. Use errors.Is to classify a returned error.
var (
	// ErrNoMedium is returned by a SourceReader when the drive reports no
	// disc present.
	ErrNoMedium = errors.New("riperr: no medium in drive")

	// ErrAlignment is returned when a caller's offset/length violates a
	// SourceReader's sector-alignment requirement (e.g. UsbMassStorage's
	// 512-byte alignment).
	ErrAlignment = errors.New("riperr: unaligned read request")

	// ErrUnsupported is returned for an operation a SourceReader
	// implementation doesn't provide (e.g. raw CDDA reads on a platform
	// with no ioctl path).
	ErrUnsupported = errors.New("riperr: unsupported operation")

	// ErrReadFailure is returned when a read fails outright; terminal
	// within a session for non-audio profiles (spec.md §7).
	ErrReadFailure = errors.New("riperr: read failure")

	// ErrAllAudioBlocksFailed is returned by RipSession when every audio
	// sector in the rip was unrecoverable.
	ErrAllAudioBlocksFailed = errors.New("riperr: all audio blocks failed")

	// ErrWriteFailure is returned when the writer observes a short write;
	// terminal within a session.
	ErrWriteFailure = errors.New("riperr: short write")

	// ErrFilesystem is returned when mounting/remounting the destination
	// fails.
	ErrFilesystem = errors.New("riperr: filesystem error")

	// ErrCancelled is returned when the user cancels mid-rip. Not a fatal
	// outcome: the partial file is kept and the session still reports
	// completion (spec.md §6 exit code 4).
	ErrCancelled = errors.New("riperr: cancelled")

	// ErrTOCRequired is returned when an Audio CD TOC can't be read and
	// the selected audio output mode requires one to emit a usable CUE
	// sheet (see DESIGN.md's Open Question decision).
	ErrTOCRequired = errors.New("riperr: audio TOC required for this output mode")
)

// Kind classifies an error for reporting/exit-code purposes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoMedium
	KindReadFailureData
	KindReadFailureAudio
	KindAllAudioBlocksFailed
	KindWriteFailure
	KindFilesystem
	KindCancelled
	KindVerificationMiss
	KindVerificationUnavailable
)

// Classify maps a returned error to its taxonomy Kind. isAudio tells it
// whether to report a read failure as the audio or non-audio variant.
func Classify(err error, isAudio bool) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNoMedium):
		return KindNoMedium
	case errors.Is(err, ErrAllAudioBlocksFailed):
		return KindAllAudioBlocksFailed
	case errors.Is(err, ErrWriteFailure):
		return KindWriteFailure
	case errors.Is(err, ErrFilesystem):
		return KindFilesystem
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrReadFailure):
		if isAudio {
			return KindReadFailureAudio
		}
		return KindReadFailureData
	default:
		return KindUnknown
	}
}

// IsTerminal reports whether a Kind ends the session fatally, per spec.md
// §7's propagation rule: only WriteFailure, non-audio ReadFailure and
// AllAudioBlocksFailed are terminal.
func (k Kind) IsTerminal() bool {
	switch k {
	case KindWriteFailure, KindReadFailureData, KindAllAudioBlocksFailed:
		return true
	default:
		return false
	}
}

// ExitCode maps a Kind to the conceptual process exit code from spec.md §6.
func (k Kind) ExitCode() int {
	switch k {
	case KindWriteFailure:
		return 1
	case KindReadFailureData:
		return 2
	case KindAllAudioBlocksFailed:
		return 3
	case KindCancelled:
		return 4
	default:
		return 0
	}
}
