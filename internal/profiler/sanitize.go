package profiler

import (
	"fmt"
	"strings"
)

// SanitizeGameName keeps [A-Za-z0-9._-], replaces every other rune with '_',
// and falls back to "disc<counter>" if the result would otherwise be empty
// (spec.md §4.3). It is idempotent: sanitize(sanitize(x)) == sanitize(x).
func SanitizeGameName(name string, discCounter int) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		return fmt.Sprintf("disc%d", discCounter)
	}
	return out
}
