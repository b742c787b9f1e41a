package normalize

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`[^0-9]`)

// cleanCode trims whitespace and the ".0" suffix that numeric-typed
// spreadsheet cells leave behind, then drops every non-digit.
// stripped reports whether anything other than the suffix was dropped.
func cleanCode(raw string) (digits string, stripped bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ".0")
	digits = nonDigit.ReplaceAllString(s, "")
	return digits, len(digits) != len(s)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Code normalizes a generic administrative code to at least width digits,
// left-padded with zeros. Returns nil when nothing numeric is left.
func Code(raw string, width int) *string {
	digits, _ := cleanCode(raw)
	if digits == "" {
		return nil
	}
	s := padLeft(digits, width)
	return &s
}

// FixedCode normalizes a code that must be exactly width digits. Longer
// values yield nil.
func FixedCode(raw string, width int) *string {
	digits, _ := cleanCode(raw)
	if digits == "" || len(digits) > width {
		return nil
	}
	s := padLeft(digits, width)
	return &s
}
