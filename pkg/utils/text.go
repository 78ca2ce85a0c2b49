package utils

import "strings"

// NormalizeHandle trims and upper-cases a handle for storage and comparison.
func NormalizeHandle(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}

// NormalizeEmail trims an email address. Case is preserved because lookups
// by contact address are exact.
func NormalizeEmail(input string) string {
	return strings.TrimSpace(input)
}
