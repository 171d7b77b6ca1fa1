package cloudinary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		secret string
		want   string
	}{
		{
			name:   "upload params are sorted by key",
			params: map[string]string{"upload_preset": "ml_default", "timestamp": "1700000000", "folder": "klinova/demandes"},
			secret: "abcd",
			want:   "1fe2f49fbe7649be85b784a25418ef48fb2e1dbf",
		},
		{
			name:   "empty values are skipped",
			params: map[string]string{"timestamp": "1315060510", "public_id": "sample_image", "eager": ""},
			secret: "abcd",
			want:   "b4ad47fb4e25c7bf5f92a20089f9db59bc302313",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sign(tt.params, tt.secret))
		})
	}
}

func TestSignUpload(t *testing.T) {
	c := NewClient("demo", "key", "abcd", "", nil)
	got := c.SignUpload(UploadParams{Folder: "klinova/demandes", UploadPreset: "ml_default", Timestamp: 1700000000})
	assert.Equal(t, "1fe2f49fbe7649be85b784a25418ef48fb2e1dbf", got)
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/demo/auto/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.Equal(t, "1700000000", r.FormValue("timestamp"))
		assert.Equal(t, "klinova/demandes", r.FormValue("folder"))
		assert.Equal(t, "ml_default", r.FormValue("upload_preset"))
		assert.Equal(t, "1fe2f49fbe7649be85b784a25418ef48fb2e1dbf", r.FormValue("signature"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "hello.txt", hdr.Filename)
		assert.Equal(t, "hi", string(content))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"klinova/demandes/abc","secure_url":"https://res.cloudinary.com/x"}`))
	}))
	defer srv.Close()

	c := NewClient("demo", "key", "abcd", srv.URL, srv.Client())
	res, err := c.Upload(context.Background(),
		UploadParams{Folder: "klinova/demandes", UploadPreset: "ml_default", Timestamp: 1700000000},
		"hello.txt", []byte("hi"))

	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "klinova/demandes/abc", res.Response["public_id"])
}

func TestUpload_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad signature"))
	}))
	defer srv.Close()

	c := NewClient("demo", "key", "abcd", srv.URL, nil)
	res, err := c.Upload(context.Background(), UploadParams{Folder: "f", UploadPreset: "p", Timestamp: 1}, "a.txt", []byte("x"))

	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "bad signature", res.Response["raw"])
}
