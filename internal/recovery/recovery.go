// Package recovery implements the Audio-CD read-retry and sector-level
// fallback policy of spec.md §4.7. It only runs for discs profiled as Audio
// CD; non-audio profiles fail a rip on the first read error.
package recovery

import (
	"log"
	"time"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/discio"
)

// policy is the per-audio-mode retry budget from spec.md §4.7's table.
type policy struct {
	attempts int
	fallback bool
}

var policies = map[core.AudioOutputMode]policy{
	core.AudioBin:     {attempts: 6, fallback: true},
	core.AudioWav:     {attempts: 6, fallback: true},
	core.AudioWavFast: {attempts: 3, fallback: false},
	core.AudioWavBest: {attempts: 10, fallback: true},
}

// diagnosticEvery controls how often an unrecoverable sector is logged
// (spec.md §4.7: "every 64th unrecoverable sector emits a diagnostic").
const diagnosticEvery = 64

// Controller runs the retry/fallback/zero-fill algorithm over a
// discio.SourceReader for the duration of one Audio CD rip.
type Controller struct {
	src    discio.SourceReader
	policy policy
	badLog *core.BadRangeLog

	// Diagnostic is called once per diagnosticEvery-th unrecoverable
	// sector, with that sector's LBA. Defaults to a plain log line; tests
	// and the UI layer can override it.
	Diagnostic func(lba uint32)

	sleep func(attempt int)

	sectorsAttempted uint64
	sectorsFailed    uint64
	sinceLastDiag    int
}

// New builds a Controller for the given audio output mode.
func New(src discio.SourceReader, mode core.AudioOutputMode, badLog *core.BadRangeLog) *Controller {
	return &Controller{
		src:        src,
		policy:     policies[mode],
		badLog:     badLog,
		Diagnostic: defaultDiagnostic,
		sleep:      backoffSleep,
	}
}

func defaultDiagnostic(lba uint32) {
	log.Printf("recovery: unrecoverable sector at LBA %d", lba)
}

// backoffSleep implements spec.md §4.7's "1000 + attempt * 500 microseconds"
// backoff between read attempts.
func backoffSleep(attempt int) {
	time.Sleep(time.Duration(1000+attempt*500) * time.Microsecond)
}

// ReadBlock fills dst[:sectorCount*sectorSize] starting at offsetBytes,
// applying the mode's retry budget and, on exhaustion, its sector-level
// fallback (or a whole-block zero-fill when fallback is disabled or the
// block is already a single sector).
func (c *Controller) ReadBlock(dst []byte, sectorStart, sectorCount, sectorSize uint32, offsetBytes int64) {
	c.sectorsAttempted += uint64(sectorCount)
	length := int(sectorCount) * int(sectorSize)

	if err := c.retryRead(dst[:length], length, offsetBytes); err == nil {
		return
	}

	if sectorCount > 1 && c.policy.fallback {
		c.recoverSectorBySector(dst, sectorStart, sectorCount, sectorSize, offsetBytes)
		return
	}

	zero(dst[:length])
	c.sectorsFailed += uint64(sectorCount)
	c.badLog.Add(sectorStart, sectorCount)
	for i := uint32(0); i < sectorCount; i++ {
		c.sinceLastDiag++
		if c.sinceLastDiag == diagnosticEvery {
			c.sinceLastDiag = 0
			if c.Diagnostic != nil {
				c.Diagnostic(sectorStart + i)
			}
		}
	}
}

// retryRead attempts a single read up to policy.attempts times, backing off
// between attempts.
func (c *Controller) retryRead(dst []byte, length int, offsetBytes int64) error {
	var err error
	for attempt := 1; attempt <= c.policy.attempts; attempt++ {
		if err = c.src.Read(dst, length, offsetBytes); err == nil {
			return nil
		}
		if attempt < c.policy.attempts {
			c.sleep(attempt)
		}
	}
	return err
}

// recoverSectorBySector retries each sector in the block individually,
// zero-filling and logging the ones that never succeed, coalescing
// contiguous unrecoverable runs into a single bad-range entry.
func (c *Controller) recoverSectorBySector(dst []byte, sectorStart, sectorCount, sectorSize uint32, offsetBytes int64) {
	var runStart, runLen uint32
	flush := func() {
		if runLen > 0 {
			c.badLog.Add(runStart, runLen)
			runLen = 0
		}
	}

	for i := uint32(0); i < sectorCount; i++ {
		sector := dst[i*sectorSize : (i+1)*sectorSize]
		sectorOffset := offsetBytes + int64(i)*int64(sectorSize)

		if err := c.retryRead(sector, int(sectorSize), sectorOffset); err != nil {
			zero(sector)
			c.sectorsFailed++
			lba := sectorStart + i
			if runLen == 0 {
				runStart = lba
			}
			runLen++

			c.sinceLastDiag++
			if c.sinceLastDiag == diagnosticEvery {
				c.sinceLastDiag = 0
				if c.Diagnostic != nil {
					c.Diagnostic(lba)
				}
			}
			continue
		}
		flush()
	}
	flush()
}

// AllBlocksFailed reports whether every sector read so far has failed
// (spec.md §4.7's AllAudioBlocksFailed condition). Callers should check
// this after each ReadBlock and abort the session via
// riperr.ErrAllAudioBlocksFailed once it turns true.
func (c *Controller) AllBlocksFailed() bool {
	return c.sectorsAttempted > 0 && c.sectorsFailed == c.sectorsAttempted
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
