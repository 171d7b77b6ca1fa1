package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short SHA-256 based token for correlating log lines
// about the same visitor without writing their phone or email in clear.
func Fingerprint(input string) string {
	if input == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:6])
}
