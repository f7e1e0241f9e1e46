// Runtime building id synthesis. Directive-created buildings get a slug of
// their display name plus a random numeric suffix. The suffix makes
// collisions unlikely, not impossible; callers tolerate duplicates.
package world

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"
)

// Slugify lowercases a name and collapses everything that is not a letter
// or digit into single hyphens. Accented letters common in French names
// are folded to their ASCII base.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

var accentFold = map[rune]rune{
	'à': 'a', 'â': 'a', 'ä': 'a',
	'ç': 'c',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'î': 'i', 'ï': 'i',
	'ô': 'o', 'ö': 'o',
	'ù': 'u', 'û': 'u', 'ü': 'u',
}

// NewBuildingID synthesizes an id for a runtime-created building.
func NewBuildingID(name string, rng *rand.Rand) string {
	slug := Slugify(name)
	if slug == "" {
		slug = "batiment"
	}
	return fmt.Sprintf("%s-%04d", slug, rng.Intn(10000))
}
