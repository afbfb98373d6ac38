package ripsession

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/discripper/discripper/internal/core"
	"github.com/discripper/discripper/internal/sidecar"
	"github.com/discripper/discripper/internal/verify"
)

// finalize implements spec.md §4.10's Finalize/ReportVerify states: patch
// the audio header with its true size, run checksum-database verification,
// emit every sidecar artifact carrying that result, and rename on a match.
func (s *Session) finalize(st *state, cancelled bool) (Result, error) {
	digestResult := st.digestP.Result()

	if s.profile.IsAudioCD() && s.cfg.Options.AudioOutput != core.AudioBin && len(st.imagePaths) > 0 {
		dataSize := st.totalBytes - uint64(sidecar.HeaderSize)
		if err := patchWAVHeader(st.imagePaths[0], audioFormat(), dataSize); err != nil {
			return Result{Profile: s.profile, Digest: digestResult, BadRanges: st.badLog}, err
		}
	}

	result := Result{
		Profile:    s.profile,
		Digest:     digestResult,
		BadRanges:  st.badLog,
		Cancelled:  cancelled,
		ImagePaths: st.imagePaths,
	}
	if s.cfg.Verifier != nil {
		result.Verify = s.cfg.Verifier.VerifyFinal(s.profile, digestResult)
	}

	sidecars, err := s.writeSidecars(st, digestResult, result.Verify)
	if err != nil {
		return result, err
	}
	result.Sidecars = sidecars

	if result.Verify.Status != verify.StatusVerified {
		return result, nil
	}

	renamedImages, err := verify.RenameOnMatch(st.imagePaths, result.Verify.CanonicalName)
	if err != nil {
		return result, fmt.Errorf("ripsession: rename on verify match: %w", err)
	}
	result.ImagePaths = renamedImages

	renamedSidecars, err := verify.RenameOnMatch(sidecars, result.Verify.CanonicalName)
	if err != nil {
		return result, fmt.Errorf("ripsession: rename sidecars on verify match: %w", err)
	}
	result.Sidecars = renamedSidecars

	return result, nil
}

// writeSidecars emits every sidecar artifact this profile calls for
// (spec.md §4.9): a BCA dump for non-audio profiles, a CUE sheet for Audio
// CD, the dump-info report always, and the bad-range log when non-empty.
func (s *Session) writeSidecars(st *state, digestResult core.DigestResult, verifyResult verify.Result) ([]string, error) {
	w := sidecar.New(s.cfg.OutDir, st.baseName)
	var out []string

	if !s.profile.IsAudioCD() {
		bca := make([]byte, 64)
		n, err := s.cfg.Source.ReadBCA(bca)
		if err == nil && n > 0 {
			rawPath, txtPath, err := w.WriteBCA(bca[:n])
			if err != nil {
				return out, err
			}
			out = append(out, rawPath, txtPath)
		}
	}

	if s.profile.IsAudioCD() {
		toc, err := s.cfg.Source.ReadTOC()
		var tocPtr *core.AudioToc
		if err == nil && len(toc.Tracks) > 0 {
			_ = s.cfg.Source.ReadCDText(&toc)
			tocPtr = &toc
		}
		audioBin := s.cfg.Options.AudioOutput == core.AudioBin
		dataFileName := filepath.Base(firstOr(st.imagePaths, st.baseName))
		cuePath, err := w.WriteCUE(tocPtr, dataFileName, audioBin)
		if err != nil {
			return out, err
		}
		out = append(out, cuePath)
	}

	info := sidecar.DumpInfo{
		FileName:      filepath.Base(firstOr(st.imagePaths, st.baseName)),
		InternalTitle: s.profile.InternalTitle,
		Digest:        digestResult,
		CalcChecksums: s.cfg.Options.CalcChecksums,
		Verified:      verifyResult.Status == verify.StatusVerified,
		VerifiedName:  verifyResult.CanonicalName,
		Duration:      s.elapsed(st),
		Timestamp:     finalizeTimestamp(),
		TotalBytes:    st.totalBytes,
	}
	dumpInfoPath, err := w.WriteDumpInfo(info)
	if err != nil {
		return out, err
	}
	out = append(out, dumpInfoPath)

	badPath, err := w.WriteBadRangeLog(&st.badLog)
	if err != nil {
		return out, err
	}
	if badPath != "" {
		out = append(out, badPath)
	}

	return out, nil
}

// elapsed returns the rip's wall-clock duration, excluding any time spent
// paused for a Datel mid-rip acknowledgement (spec.md §4.10 step 8).
func (s *Session) elapsed(st *state) time.Duration {
	d := time.Since(st.startTime) - st.paused
	if d < 0 {
		d = 0
	}
	return d
}

// finalizeTimestamp is the only place real wall-clock time enters a
// sidecar artifact, kept to a single call site for testability.
func finalizeTimestamp() time.Time {
	return time.Now()
}

// firstOr returns ss[0], or fallback when ss is empty.
func firstOr(ss []string, fallback string) string {
	if len(ss) > 0 {
		return ss[0]
	}
	return fallback
}

// patchWAVHeader rewrites the 44-byte (or RF64) header at offset 0 of path
// once the true data size is known. It opens the file directly rather than
// through FileOpener, since patching an already-closed output file is an
// ambient finalize concern, not part of the write path FileOpener exists to
// make testable.
func patchWAVHeader(path string, f sidecar.WAVFormat, dataSize uint64) error {
	out, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("ripsession: reopen %s to patch header: %w", path, err)
	}
	defer out.Close()

	header := sidecar.BuildHeader(f, dataSize)
	if _, err := out.WriteAt(header, 0); err != nil {
		return fmt.Errorf("ripsession: patch header of %s: %w", path, err)
	}
	return nil
}
