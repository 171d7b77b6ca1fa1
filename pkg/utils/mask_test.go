package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"user@example.com", "u**r@example.com"},
		{"ab@example.com", "a*@example.com"},
		{"u@example.com", "u@example.com"},
		{"  john.doe@example.com ", "j******e@example.com"},
		{"weird", "w***d"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskEmail(tt.in), tt.in)
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "x", MaskSecret("x"))
	assert.Equal(t, "a*", MaskSecret("ab"))
	assert.Equal(t, "1*********9", MaskSecret("12345678909"))
}
