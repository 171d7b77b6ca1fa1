package utils

import "strings"

// MaskEmail hides the local part of an email, keeping its first and last rune.
//
//	"user@example.com" -> "u**r@example.com"
//	"ab@example.com"   -> "a*@example.com"
//	"u@example.com"    -> "u@example.com"
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}

	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return MaskSecret(email)
	}
	return MaskSecret(email[:at]) + email[at:]
}

// MaskSecret keeps the first and last rune of s and stars out the rest.
// Two-rune values keep only the first rune.
func MaskSecret(s string) string {
	runes := []rune(strings.TrimSpace(s))
	switch n := len(runes); {
	case n <= 1:
		return string(runes)
	case n == 2:
		return string(runes[0]) + "*"
	default:
		return string(runes[0]) + strings.Repeat("*", n-2) + string(runes[n-1])
	}
}
