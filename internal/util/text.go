package util

import "strings"

// SanitizeName strips characters outside letters, digits and spaces, and
// trims surrounding whitespace. Used before interpolating plant names into
// external API prompts.
func SanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
