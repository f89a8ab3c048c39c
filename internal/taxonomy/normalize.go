// File: internal/taxonomy/normalize.go
package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
)

// Normalize lowercases the input and strips diacritics by decomposing to
// NFD and removing combining marks. "Čalouněné křeslo" and "calounene
// kreslo" normalize to the same string, which is what every search and
// region comparison in the catalog relies on.
func Normalize(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(foldTransformer, lowered)
	if err != nil {
		// Malformed input falls back to the lowercased original.
		return lowered
	}
	return folded
}
