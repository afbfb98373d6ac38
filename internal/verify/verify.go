// Package verify implements the checksum-database lookup of spec.md §4.8:
// Redump for GameCube/Wii images, Datel for Datel-profile images, keyed by
// MD5 when checksums were requested and by CRC32 otherwise.
package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/discripper/discripper/internal/core"
)

// Database is the collaborator a checksum index implements. A profile kind
// with no loaded database reports itself unavailable rather than erroring,
// matching spec.md's "not available" vs "not verified" distinction.
type Database interface {
	IsAvailable(kind core.DiscKind) bool
	FindCRC32(crc uint32, kind core.DiscKind) (name string, ok bool)
	FindMD5(md5 string, kind core.DiscKind) (name string, ok bool)
}

// Status is the outcome of a verification attempt.
type Status int

const (
	// StatusUnavailable means no database covers this profile kind.
	StatusUnavailable Status = iota
	// StatusMiss means a database was consulted but the checksum wasn't found.
	StatusMiss
	// StatusVerified means the checksum matched a known-good entry.
	StatusVerified
)

func (s Status) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusMiss:
		return "not verified"
	default:
		return "not available"
	}
}

// Result is the outcome reported in the dump-info sidecar and the session's
// final summary.
type Result struct {
	Status        Status
	CanonicalName string
}

// Verifier holds the two database collaborators spec.md §4.8 describes.
// Either may be nil, in which case that profile family always reports
// StatusUnavailable.
type Verifier struct {
	redump Database
	datel  Database
}

// New builds a Verifier. Passing nil for either database is valid: Redump
// covers GameCube/Wii, Datel covers Datel-profile discs, and a rip against
// a kind with no database loaded reports "not available".
func New(redump, datel Database) *Verifier {
	return &Verifier{redump: redump, datel: datel}
}

// dbFor picks the database that covers a profile's kind, or nil.
func (v *Verifier) dbFor(kind core.DiscKind) Database {
	if kind == core.KindDatel {
		return v.datel
	}
	return v.redump
}

// VerifyFinal compares the final digest against the database covering this
// profile's kind, per spec.md §4.8's MD5-if-requested-else-CRC32 keying.
func (v *Verifier) VerifyFinal(profile core.DiscProfile, digest core.DigestResult) Result {
	if !profile.CanVerifyAgainstDat() {
		return Result{Status: StatusUnavailable}
	}
	db := v.dbFor(profile.Kind)
	if db == nil || !db.IsAvailable(profile.Kind) {
		return Result{Status: StatusUnavailable}
	}

	var name string
	var ok bool
	if digest.MD5 != "" {
		name, ok = db.FindMD5(digest.MD5, profile.Kind)
	} else {
		name, ok = db.FindCRC32(digest.CRC32, profile.Kind)
	}
	if !ok {
		return Result{Status: StatusMiss}
	}
	return Result{Status: StatusVerified, CanonicalName: name}
}

// VerifyDatelMidRip looks up the Datel database by crc100000, the mid-rip
// identification key of spec.md §4.6/§4.10 step 8. It only ever consults
// the Datel database, regardless of the disc's classified kind, since the
// mid-rip check happens before the final profile decision matters for
// verification purposes.
func (v *Verifier) VerifyDatelMidRip(crc100000 uint32) Result {
	if v.datel == nil || !v.datel.IsAvailable(core.KindDatel) {
		return Result{Status: StatusUnavailable}
	}
	name, ok := v.datel.FindCRC32(crc100000, core.KindDatel)
	if !ok {
		return Result{Status: StatusMiss}
	}
	return Result{Status: StatusVerified, CanonicalName: name}
}

// RenameOnMatch renames the primary image, every additional chunk part, and
// any sidecar files to "<canonical>.<ext>", per spec.md §4.8. paths must
// share a common directory; each is renamed in place and the new path is
// returned in the same order. A rename failure aborts with the error but
// leaves files already renamed as they are — callers running this at
// Finalize have nothing more useful to attempt.
func RenameOnMatch(paths []string, canonical string) ([]string, error) {
	renamed := make([]string, 0, len(paths))
	for _, p := range paths {
		dir := filepath.Dir(p)
		ext := extWithParts(p)
		newPath := filepath.Join(dir, canonical+ext)
		if newPath == p {
			renamed = append(renamed, p)
			continue
		}
		if err := os.Rename(p, newPath); err != nil {
			return renamed, fmt.Errorf("verify: rename %s to %s: %w", p, newPath, err)
		}
		renamed = append(renamed, newPath)
	}
	return renamed, nil
}

// sidecarQualifiers lists the fixed compound suffixes RenameOnMatch must
// keep intact, checked most-specific first so ".bca.txt" isn't shadowed by
// ".bca". A base name's own "-disc2"-style multi-disc suffix (internal/profiler)
// is not one of these: a verify match replaces the whole base name, per the
// original's renameFile (new name + fixed ext), not just its extension.
var sidecarQualifiers = []string{"-dumpinfo.txt", ".bca.txt", ".bca", ".cue", ".bad"}

// extWithParts preserves a ".partN.ext" or known sidecar-qualifier suffix
// instead of just the final extension, so a rename keeps a chunked rip's
// part numbering and a sidecar's qualifier intact, without misreading an
// unrelated "-disc2"-style base-name suffix as part of the extension.
func extWithParts(path string) string {
	base := filepath.Base(path)
	for _, suf := range sidecarQualifiers {
		if strings.HasSuffix(base, suf) {
			return suf
		}
	}
	if i := partSuffixIndex(base); i >= 0 {
		return base[i:]
	}
	return filepath.Ext(base)
}

// partSuffixIndex finds the start of a ".partN.ext" suffix (N all-digit),
// or -1 if base doesn't carry one.
func partSuffixIndex(base string) int {
	i := strings.Index(base, ".part")
	if i < 0 {
		return -1
	}
	rest := base[i+len(".part"):]
	j := 0
	for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
		j++
	}
	if j == 0 || j >= len(rest) || rest[j] != '.' {
		return -1
	}
	return i
}
