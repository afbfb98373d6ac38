package ripsession

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/discripper/discripper/internal/chunker"
	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/digest"
	"github.com/discripper/discripper/internal/profiler"
	"github.com/discripper/discripper/internal/recovery"
	"github.com/discripper/discripper/internal/riperr"
	"github.com/discripper/discripper/internal/sidecar"
	"github.com/discripper/discripper/internal/verify"
	"github.com/discripper/discripper/internal/writer"
)

// state carries the per-run scratch data acquire/finalize share, so Run
// itself stays a readable top-to-bottom state machine (spec.md §4.10:
// Idle -> Configure -> Profile -> Plan -> Acquire -> Finalize ->
// ReportVerify -> Idle').
type state struct {
	readSectors     uint32
	digestP         *digest.Pipeline
	badLog          core.BadRangeLog
	recCtl          *recovery.Controller
	datelMidRip     verify.Result
	datelMidRipDone bool
	imagePaths      []string
	baseName        string
	startTime       time.Time
	paused          time.Duration
	showCRC         bool
	totalBytes      uint64
}

// Run executes the full state machine for one disc and returns its
// outcome. ctx governs cancellation beyond the UI's own B-button poll
// (e.g. a parent process shutdown).
func (s *Session) Run(ctx context.Context) (Result, error) {
	// Profile.
	prof := profiler.New(s.cfg.Source)
	profile, err := prof.Identify(s.cfg.Options, s.cfg.Forced, s.cfg.DiscCounter)
	if err != nil {
		return Result{}, fmt.Errorf("ripsession: identify: %w", err)
	}
	s.profile = profile

	if profile.IsAudioCD() && profile.EndLBA == core.AudioCDFallbackSectors && s.cfg.Options.AudioOutput != core.AudioBin {
		return Result{Profile: profile}, fmt.Errorf("ripsession: %w", riperr.ErrTOCRequired)
	}

	// Plan.
	readSectors := s.cfg.ReadSectors
	if readSectors == 0 {
		readSectors = deriveReadSectors(profile.SectorSize)
	}
	readBlockBytes := uint64(readSectors) * uint64(profile.SectorSize)
	s.plan = chunker.New().Plan(s.cfg.Options, profile, s.cfg.FSMaxFileSizeBits, readBlockBytes)

	st := &state{
		readSectors: readSectors,
		digestP:     digest.NewPipeline(s.cfg.Options.CalcChecksums),
		baseName:    profile.GameID,
		startTime:   time.Now(),
	}
	if profile.IsAudioCD() {
		st.recCtl = recovery.New(s.cfg.Source, s.cfg.Options.AudioOutput, &st.badLog)
		if s.cfg.Logger != nil {
			st.recCtl.Diagnostic = func(lba uint32) {
				s.cfg.Logger.Printf("ripsession: unrecoverable audio sector at LBA %d", lba)
			}
		}
	}

	// Acquire.
	freeQueue := make(chan *core.ReadBlock, core.BlockPoolSize)
	for i := 0; i < core.BlockPoolSize; i++ {
		freeQueue <- core.NewReadBlock(int(readBlockBytes))
	}

	wtask := writer.NewTask(freeQueue)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return wtask.Run(gctx) })

	var cancelled bool
	group.Go(func() error {
		var err error
		cancelled, err = s.acquire(gctx, st, wtask, freeQueue)
		return err
	})

	waitErr := group.Wait()
	if waitErr != nil && !cancelled {
		return Result{Profile: profile, BadRanges: st.badLog}, waitErr
	}

	// Finalize + ReportVerify.
	return s.finalize(st, cancelled)
}

// openChunk opens chunkIdx's output file via the configured FileOpener and
// returns it along with the path used, relative to s.cfg.OutDir.
func (s *Session) openChunk(st *state, chunkIdx int) (core.OutputFile, string, error) {
	name := s.plan.FileName(st.baseName, chunkIdx)
	path := filepath.Join(s.cfg.OutDir, name)
	f, err := s.cfg.FileOpener.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("ripsession: open %s: %w", path, err)
	}
	return f, path, nil
}

// writeHeaderIfAudio writes the placeholder WAV/RF64 header a new audio
// output file starts with (spec.md §4.9: "emitted at offset 0 before
// audio data is written"). It is a no-op for non-audio profiles and for
// the Bin output mode, which has no header.
func (s *Session) writeHeaderIfAudio(f core.OutputFile) error {
	if !s.profile.IsAudioCD() || s.cfg.Options.AudioOutput == core.AudioBin {
		return nil
	}
	header := sidecar.WAVHeader(audioFormat(), 0)
	n, err := f.Write(header)
	if err != nil || n != len(header) {
		return fmt.Errorf("ripsession: write WAV header to %s: %w", f.Name(), riperr.ErrWriteFailure)
	}
	return nil
}

// audioFormat is the fixed PCM layout this engine writes for every Audio
// CD rip: 16-bit stereo at the CD-DA sample rate (spec.md §6).
func audioFormat() sidecar.WAVFormat {
	return sidecar.WAVFormat{Channels: 2, SampleRate: 44100}
}
