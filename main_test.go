package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUploadCmd(t *testing.T) {
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key123")
	t.Setenv("CLOUDINARY_API_SECRET", "abcd")
	t.Setenv("CLOUDINARY_FOLDER_ROOT", "klinova")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sign-upload", "--folder", "devis"})

	require.NoError(t, cmd.Execute())

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "klinova/devis", got["folder"])
	assert.Equal(t, "demo", got["cloudName"])
	assert.Len(t, got["signature"], 40)
}

func TestSignUploadCmd_NotConfigured(t *testing.T) {
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")
	t.Setenv("CLOUDINARY_API_KEY", "")
	t.Setenv("CLOUDINARY_API_SECRET", "")

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"sign-upload"})

	assert.Error(t, cmd.Execute())
}
