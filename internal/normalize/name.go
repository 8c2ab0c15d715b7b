package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameFolder strips combining marks so accented artist names compare equal
// to their ASCII renderings.
var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldName canonicalizes an Instagram handle or artist full name for join
// keys: lowercased, diacritics stripped, leading @ removed, inner whitespace
// collapsed.
func FoldName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(nameFolder, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
