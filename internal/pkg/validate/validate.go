package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MaxLen counts runes, not bytes, so multibyte text is bounded fairly.
func MaxLen(value string, max int) bool {
	return len([]rune(value)) <= max
}
