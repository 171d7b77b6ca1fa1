package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	assert.Empty(t, Fingerprint(""))

	a := Fingerprint("+33612345678")
	assert.Len(t, a, 12)
	assert.Equal(t, a, Fingerprint("+33612345678"))
	assert.NotEqual(t, a, Fingerprint("+33612345679"))
	assert.NotContains(t, a, "612345678")
}
