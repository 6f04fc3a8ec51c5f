package thread

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitize removes codepoints that break terminal cell widths and control
// characters that could move the cursor. Specifically:
// - Skin tone modifiers (U+1F3FB..U+1F3FF) that create multi-codepoint emoji
// - Zero Width Joiner (U+200D) used in emoji sequences like family/couple emoji
// - Variation Selectors (U+FE00..U+FE0F, U+E0100..U+E01EF)
// - C0/C1 controls other than tab
// Newlines become spaces so one message stays on one line.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r == utf8.RuneError && size == 1:
			// Invalid byte.
		case isProblematicRune(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isProblematicRune(r rune) bool {
	switch {
	// Skin tone modifiers.
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	// Zero Width Joiner.
	case r == 0x200D:
		return true
	// Variation Selectors.
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	// Variation Selectors Supplement.
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	case r != '\t' && unicode.IsControl(r):
		return true
	default:
		return false
	}
}
