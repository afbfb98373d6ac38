package sidecar

import "strings"

// BCABitString renders a BCA (or synthesized Audio CD identifier) buffer as
// a pretty-printed bit string, one '|' per set bit and '_' per clear bit,
// 8 contiguous characters per source byte with no separator, per spec.md
// §4.9's ".bca.txt" sidecar.
func BCABitString(data []byte) string {
	var b strings.Builder
	for _, by := range data {
		for bit := 7; bit >= 0; bit-- {
			if by&(1<<uint(bit)) != 0 {
				b.WriteByte('|')
			} else {
				b.WriteByte('_')
			}
		}
	}
	return b.String()
}
