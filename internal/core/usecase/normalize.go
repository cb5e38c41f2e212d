package usecase

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeQuery canonicalizes free Bangla/English query text: NFC
// composition, zero-width/format character removal, trim. Zero-width
// joiners routinely leak into copy-pasted Bangla and break equality
// matching against graph fields.
func normalizeQuery(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
