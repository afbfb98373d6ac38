package sidecar

import (
	"fmt"
	"strings"

	"github.com/discripper/discripper/internal/core"
)

// BuildBadRangeLog renders a BadRangeLog as the ASCII "<name>.bad" manifest
// of spec.md §6: a '#' comment header followed by one "start_lba,length"
// line per coalesced range.
func BuildBadRangeLog(log *core.BadRangeLog) string {
	var b strings.Builder
	b.WriteString("# start_lba,length\n")
	for _, r := range log.Ranges {
		fmt.Fprintf(&b, "%d,%d\n", r.StartLBA, r.SectorCount)
	}
	return b.String()
}
