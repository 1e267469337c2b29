package placequiz

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	katakanaFirst = 'ァ' // U+30A1
	katakanaLast  = 'ン' // U+30F3
	kanaShift     = 'ァ' - 'ぁ'
)

// Normalize drops all whitespace and folds katakana to hiragana so a
// reading typed in either script compares equal. Nothing else is mapped;
// bytes that are not valid UTF-8 are copied through as they are.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteByte(s[i])
		case unicode.IsSpace(r):
		case r >= katakanaFirst && r <= katakanaLast:
			b.WriteRune(r - kanaShift)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

// Verify reports whether submitted is the canonical reading.
func Verify(submitted, canonical string) bool {
	return Normalize(submitted) == Normalize(canonical)
}
