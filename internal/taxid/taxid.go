// Package taxid validates Spanish tax identifiers (CIF/NIF/NIE) by format.
// No checksum arithmetic is performed; the control character is only checked
// structurally.
package taxid

import (
	"regexp"
	"strings"
)

var (
	// CIF: organization letter + 7 digits + control character.
	cifPattern = regexp.MustCompile(`^[ABCDEFGHJNPQRSUVW]\d{7}[A-J0-9]$`)
	// NIF: 8 digits + control letter.
	nifPattern = regexp.MustCompile(`^\d{8}[A-Z]$`)
	// NIE: foreign-resident prefix + 7 digits + control letter.
	niePattern = regexp.MustCompile(`^[XYZ]\d{7}[A-Z]$`)
)

// Valid reports whether candidate matches one of the three identifier
// grammars. The candidate must already be normalized: upper-case, exactly
// 9 characters, no whitespace or hyphens. It never panics.
func Valid(candidate string) bool {
	if len(candidate) != 9 {
		return false
	}
	return cifPattern.MatchString(candidate) ||
		nifPattern.MatchString(candidate) ||
		niePattern.MatchString(candidate)
}

// Normalize strips whitespace and hyphens and upper-cases the candidate.
// The boolean is false when the cleaned value is not 9 characters long and
// therefore cannot be a valid identifier.
func Normalize(candidate string) (string, bool) {
	cleaned := strings.ToUpper(candidate)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	return cleaned, len(cleaned) == 9
}
