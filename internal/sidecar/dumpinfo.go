package sidecar

import (
	"fmt"
	"strings"
	"time"

	"github.com/Xuanwo/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/discripper/discripper/internal/core"
)

// EngineVersion is the version string stamped into every dump-info report.
const EngineVersion = "discripper 1.0"

// DumpInfo is the summary spec.md §4.9 requires in "<name>-dumpinfo.txt".
type DumpInfo struct {
	FileName      string
	InternalTitle string
	Digest        core.DigestResult
	CalcChecksums bool
	Verified      bool
	VerifiedName  string
	Duration      time.Duration
	Timestamp     time.Time
	TotalBytes    uint64
}

// localePrinter resolves a message.Printer for the host's detected locale,
// falling back to English when detection fails (headless CI, minimal
// containers). BuildDumpInfo calls it afresh for every report.
func localePrinter() *message.Printer {
	tag, err := locale.Detect()
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// BuildDumpInfo renders the dump-info text sidecar: version, filename,
// internal title, checksums, verification status, duration and an
// ISO-8601 timestamp, CRLF-terminated per spec.md §6. TotalBytes is
// rendered through a locale-aware printer so large dumps get the host
// locale's grouping separators.
func BuildDumpInfo(info DumpInfo) string {
	p := localePrinter()

	var b strings.Builder
	crlf := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\r\n")
	}

	crlf("Version: %s", EngineVersion)
	crlf("File: %s", info.FileName)
	if info.InternalTitle != "" {
		crlf("Internal title: %s", info.InternalTitle)
	}

	if info.CalcChecksums {
		crlf("MD5: %s", info.Digest.MD5)
		crlf("SHA-1: %s", info.Digest.SHA1)
	}
	crlf("CRC32: %08X", info.Digest.CRC32)

	if info.Verified {
		crlf("Verified: yes (%s)", info.VerifiedName)
	} else {
		crlf("Verified: no")
	}

	mins := int(info.Duration / time.Minute)
	secs := int((info.Duration % time.Minute) / time.Second)
	crlf("Duration: %d min %d sec", mins, secs)
	crlf("Size: %s bytes", p.Sprintf("%d", info.TotalBytes))
	crlf("Timestamp: %s", info.Timestamp.UTC().Format(time.RFC3339))

	return b.String()
}
