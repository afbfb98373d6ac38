package ripsession

import (
	"context"
	"fmt"
	"time"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/riperr"
	"github.com/discripper/discripper/internal/sidecar"
	"github.com/discripper/discripper/internal/verify"
	"github.com/discripper/discripper/internal/writer"
)

// acquire runs spec.md §4.10's Acquire loop. It returns cancelled=true
// only when the user pressed B or declined the next-volume prompt at a
// rollover; every other abort path is reported via the returned error,
// classified by internal/riperr.
func (s *Session) acquire(ctx context.Context, st *state, wtask *writer.Task, freeQueue chan *core.ReadBlock) (cancelled bool, err error) {
	profile := s.profile
	sectorSize := profile.SectorSize

	chunkIdx := 0

	file, path, err := s.openChunk(st, chunkIdx)
	if err != nil {
		return false, err
	}
	st.imagePaths = append(st.imagePaths, path)
	if err := s.writeHeaderIfAudio(file); err != nil {
		return false, err
	}
	if s.profile.IsAudioCD() && s.cfg.Options.AudioOutput != core.AudioBin {
		st.totalBytes += uint64(sidecar.HeaderSize)
	}
	wtask.Inbox() <- core.WriterCommand{Kind: core.CmdSetFile, File: file}

	lastProgress := st.startTime
	lastProgressBytes := st.totalBytes

	for sectorStart := uint32(0); sectorStart < profile.EndLBA; {
		var blk *core.ReadBlock
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-wtask.Failed():
			return false, fmt.Errorf("ripsession: %w", wtask.Err())
		case b, ok := <-freeQueue:
			if !ok || b == nil {
				return false, fmt.Errorf("ripsession: observed write failure token: %w", riperr.ErrWriteFailure)
			}
			blk = b
		}

		// Step 3: cross-chunk rollover.
		if s.plan.ShouldRollover(st.totalBytes, chunkIdx+1) {
			if proceed, rerr := s.rollover(st, wtask, &chunkIdx, &file); rerr != nil {
				return false, rerr
			} else if !proceed {
				return true, fmt.Errorf("ripsession: %w", riperr.ErrCancelled)
			}
		}

		curSectors := st.readSectors
		if remaining := profile.EndLBA - sectorStart; curSectors > remaining {
			curSectors = remaining
		}
		blk.SectorStart = sectorStart
		blk.SectorCount = curSectors
		blk.Length = int(curSectors) * int(sectorSize)
		offsetBytes := int64(sectorStart) * int64(sectorSize)

		if err := s.readInto(st, blk, offsetBytes); err != nil {
			return false, err
		}

		st.digestP.Update(blk.Bytes())
		wtask.Inbox() <- core.WriterCommand{Kind: core.CmdWrite, Block: blk}
		st.totalBytes += uint64(blk.Length)
		sectorStart += curSectors

		s.checkDatelMidRip(st)

		if s.cfg.UI != nil {
			buttons := s.cfg.UI.ButtonsPressed()
			if buttons.B {
				s.flushAndShutdown(wtask)
				return true, fmt.Errorf("ripsession: %w", riperr.ErrCancelled)
			}
			if buttons.Y {
				st.showCRC = !st.showCRC
			}
		}

		now := time.Now()
		if now.Sub(lastProgress) >= progressInterval {
			s.reportProgress(st, st.totalBytes, lastProgressBytes, now.Sub(lastProgress))
			lastProgress = now
			lastProgressBytes = st.totalBytes
		}
	}

	s.flushAndShutdown(wtask)
	return false, nil
}

// readInto performs one block's read: through RecoveryController for
// Audio CD, or a single non-recovering read for every other profile
// (spec.md §4.7: "For non-audio profiles a single read failure aborts the
// rip").
func (s *Session) readInto(st *state, blk *core.ReadBlock, offsetBytes int64) error {
	if st.recCtl != nil {
		st.recCtl.ReadBlock(blk.Data[:blk.Length], blk.SectorStart, blk.SectorCount, s.profile.SectorSize, offsetBytes)
		if st.recCtl.AllBlocksFailed() {
			return fmt.Errorf("ripsession: %w", riperr.ErrAllAudioBlocksFailed)
		}
		return nil
	}
	if err := s.cfg.Source.Read(blk.Data[:blk.Length], blk.Length, offsetBytes); err != nil {
		return fmt.Errorf("ripsession: read at %d: %w", offsetBytes, riperr.ErrReadFailure)
	}
	return nil
}

// checkDatelMidRip surfaces the crc100000 Datel lookup once the first MiB
// has been digested (spec.md §4.6/§4.10 step 8), pausing the session clock
// for the user's acknowledgement.
func (s *Session) checkDatelMidRip(st *state) {
	if s.profile.Kind != core.KindDatel || st.datelMidRipDone {
		return
	}
	res := st.digestP.Result()
	if !res.HasCRC100000 {
		return
	}
	st.datelMidRipDone = true
	if s.cfg.Verifier == nil {
		return
	}
	pauseStart := time.Now()
	st.datelMidRip = s.cfg.Verifier.VerifyDatelMidRip(res.CRC100000)
	if s.cfg.UI != nil {
		s.cfg.UI.YesNo("Datel checksum", datelMidRipMessage(st.datelMidRip))
	}
	st.paused += time.Since(pauseStart)
}

// datelMidRipMessage renders the prompt body for the mid-rip Datel
// acknowledgement: the canonical name on a match, otherwise the bare
// status ("not verified" / "not available").
func datelMidRipMessage(r verify.Result) string {
	if r.Status == verify.StatusVerified {
		return fmt.Sprintf("Matched: %s", r.CanonicalName)
	}
	return r.Status.String()
}

// rollover closes the current chunk, runs the new-file prompt, and opens
// the next part (spec.md §4.10 step 3). It returns proceed=false when the
// interactive prompt is declined, which the caller treats as a
// cancellation.
func (s *Session) rollover(st *state, wtask *writer.Task, chunkIdx *int, file *core.OutputFile) (bool, error) {
	ack := make(chan struct{})
	wtask.Inbox() <- core.WriterCommand{Kind: core.CmdFlush, FlushAck: ack}
	<-ack

	if err := (*file).Close(); err != nil {
		return false, fmt.Errorf("ripsession: close %s: %w", (*file).Name(), err)
	}

	if s.cfg.Options.NewDevicePerChunk == core.NewDeviceAsk && s.cfg.UI != nil {
		if !s.cfg.UI.YesNo("Insert next volume", "Ready to continue?") {
			return false, nil
		}
	}

	*chunkIdx++
	next, path, err := s.openChunk(st, *chunkIdx)
	if err != nil {
		return false, err
	}
	st.imagePaths = append(st.imagePaths, path)
	*file = next
	wtask.Inbox() <- core.WriterCommand{Kind: core.CmdSetFile, File: next}
	return true, nil
}

// flushAndShutdown drains every queued write before telling the writer to
// exit, so a normal or cancelled completion never truncates the part
// still open.
func (s *Session) flushAndShutdown(wtask *writer.Task) {
	ack := make(chan struct{})
	select {
	case wtask.Inbox() <- core.WriterCommand{Kind: core.CmdFlush, FlushAck: ack}:
		<-ack
	case <-wtask.Failed():
		return
	}
	select {
	case wtask.Inbox() <- core.WriterCommand{Kind: core.CmdShutdown}:
	case <-wtask.Failed():
	}
}

// reportProgress renders spec.md §4.10 step 10's cadence-limited progress
// update: instantaneous KiB/s derived from bytes written since the last
// report, and percent/MB totals against the planned disc size.
func (s *Session) reportProgress(st *state, written, lastBytes uint64, elapsed time.Duration) {
	if s.cfg.UI == nil {
		return
	}
	totalBytes := uint64(s.profile.EndLBA) * uint64(s.profile.SectorSize)
	var percent float64
	if totalBytes > 0 {
		percent = float64(written) / float64(totalBytes) * 100
	}
	rateKBs := 0.0
	if elapsed > 0 {
		rateKBs = float64(written-lastBytes) / 1024 / elapsed.Seconds()
	}
	s.cfg.UI.ProgressDetailed(Progress{
		Percent:       percent,
		RateText:      fmt.Sprintf("%.0f KiB/s", rateKBs),
		MBDone:        float64(written) / (1 << 20),
		MBTotal:       float64(totalBytes) / (1 << 20),
		DiscKindStr:   s.profile.Kind.String(),
		ShowChecksums: st.showCRC,
	})
}
