package utils

import (
	"unicode"
)

func RunesEndWith(runes []rune, s string) bool {
	suffix := []rune(s)
	if len(runes) < len(suffix) {
		return false
	}

	offset := len(runes) - len(suffix)
	for i, c := range suffix {
		if runes[offset+i] != c {
			return false
		}
	}
	return true
}

// HasNoUpper reports whether none of the runes is an upper-case letter.
func HasNoUpper(runes []rune) bool {
	for _, r := range runes {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
