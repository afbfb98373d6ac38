// Package ripsession implements RipSession, the orchestrator of spec.md
// §4.10: it resolves options, drives the DiscProfiler, plans output
// chunks, runs the concurrent acquire loop (rip goroutine + WriterTask),
// and finalizes digests, sidecars and verification. It is the one package
// that threads every other component together; per spec.md §9's guidance
// it holds no package-level mutable state; a Session is just a struct.
package ripsession

import (
	"time"

	"github.com/google/uuid"

	"github.com/discripper/discripper/internal/chunker"
	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/discio"
	"github.com/discripper/discripper/internal/profiler"
	"github.com/discripper/discripper/internal/verify"
)

// progressInterval is spec.md §4.10 step 10's "once per >=1000ms" cadence.
const progressInterval = 1000 * time.Millisecond

// Buttons mirrors spec.md §6's buttons_pressed() bitset. Only B (cancel)
// and Y (toggle checksum display) are consulted by the acquire loop; the
// rest exist so a UI adapter's single poll call can report the whole pad
// state.
type Buttons struct {
	A, B, Up, Down, Left, Right, Y, Start, Home bool
}

// Progress is the payload behind spec.md §6's progress_detailed call.
type Progress struct {
	Percent       float64
	RateText      string
	MBDone        float64
	MBTotal       float64
	DiscKindStr   string
	ShowChecksums bool
}

// UI is the external collaborator spec.md §6 names: live progress display,
// pad polling, and the yes/no prompt used for chunk-rollover device swaps
// and Datel mid-rip acknowledgement. The engine never calls the frame-
// drawing half of spec.md §6 (begin_frame/draw_box/...); that is the UI
// adapter's own render loop, driven by whatever it receives here.
type UI interface {
	ProgressDetailed(p Progress)
	ButtonsPressed() Buttons
	YesNo(title, sub string) bool
}

// Logger is the session-diagnostics sink; Run sends it one line for every
// 64th unrecoverable audio sector, with that sector's LBA. log.Logger satisfies this directly; no third-party
// logging library appears anywhere in the example corpus for this shape of
// plain diagnostic line (see DESIGN.md).
type Logger interface {
	Printf(format string, args ...any)
}

// FileOpener creates destination files for WriterTask. The default,
// OS-backed implementation lives in internal/cli; tests substitute an
// in-memory fake so Session never touches a real filesystem.
type FileOpener interface {
	Create(path string) (core.OutputFile, error)
}

// Config assembles everything one rip needs. Source is expected to already
// be a discio.Striper when multiple drives are in play (spec.md §4.2); a
// single-drive rip can pass the SourceReader directly.
type Config struct {
	Source      discio.SourceReader
	Options     core.RipOptions
	Forced      core.ForcedProfile
	DiscCounter int

	OutDir            string
	FSMaxFileSizeBits int

	Verifier   *verify.Verifier
	UI         UI
	Logger     Logger
	FileOpener FileOpener

	// ReadSectors overrides the computed sectors-per-block size; zero
	// means "derive it from the profiled sector size and the striping
	// granularity" (see deriveReadSectors).
	ReadSectors uint32
}

// Session is one rip's orchestrator, instantiated fresh per disc per
// spec.md §9's "explicit struct, not global state" guidance.
type Session struct {
	cfg     Config
	id      uuid.UUID
	profile core.DiscProfile
	plan    chunker.Plan
}

// New builds a Session. Identification/planning happen in Run, not here,
// so constructing a Session never touches the drive.
func New(cfg Config) *Session {
	return &Session{cfg: cfg, id: uuid.New()}
}

// ID returns the session's unique identifier (a new ambient concern;
// spec.md has no per-session identity). No output file name includes it.
func (s *Session) ID() string {
	return s.id.String()
}

// deriveReadSectors picks the ReadBlock size in sectors: as many whole
// sectors as fit in one striping unit (discio.StripeBytes). For 2048-byte
// sectors that is exactly one stripe, so each block maps to one stripe;
// 2352-byte CDDA blocks are slightly smaller than a stripe, so their
// start offsets drift and a block can straddle a stripe boundary.
func deriveReadSectors(sectorSize uint32) uint32 {
	n := discio.StripeBytes / int(sectorSize)
	if n < 1 {
		n = 1
	}
	return uint32(n)
}

// Result is Run's outcome.
type Result struct {
	Profile    core.DiscProfile
	Digest     core.DigestResult
	Verify     verify.Result
	BadRanges  core.BadRangeLog
	Cancelled  bool
	ImagePaths []string
	Sidecars   []string
}
