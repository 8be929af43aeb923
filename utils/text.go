package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[\w.+-]+@([\w-]+\.)+[\w-]{2,}$`)

// IsValidEmail checks if the provided email address is valid according to a regex pattern.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail lowercases and trims an address for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Truncate cuts s to at most max runes and appends suffix only when it cut something.
func Truncate(s string, max int, suffix string) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + suffix
}
