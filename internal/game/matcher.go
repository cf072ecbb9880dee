package game

import (
	"strings"
	"unicode"
)

// Matches reports whether input equals any accepted answer once all whitespace
// has been removed from both sides. Comparison is case-sensitive.
func Matches(input string, accepted ...string) bool {
	in := stripSpace(input)
	for _, a := range accepted {
		if stripSpace(a) == in {
			return true
		}
	}
	return false
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
