package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultBaseURL is the public Cloudinary upload API.
const DefaultBaseURL = "https://api.cloudinary.com"

// Sign computes a Cloudinary API signature: SHA-1 over the parameters sorted by
// key, joined as "k=v&k=v", with the API secret appended. Empty values are skipped.
func Sign(params map[string]string, apiSecret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + apiSecret))
	return hex.EncodeToString(sum[:])
}

// UploadParams are the parameters a browser must send with a signed upload.
type UploadParams struct {
	Folder       string
	UploadPreset string
	Timestamp    int64
}

func (p UploadParams) values() map[string]string {
	return map[string]string{
		"folder":        p.Folder,
		"timestamp":     strconv.FormatInt(p.Timestamp, 10),
		"upload_preset": p.UploadPreset,
	}
}

// UploadResult is what Cloudinary answered to an upload.
type UploadResult struct {
	Status   int
	Response map[string]any
}

// OK reports a 2xx answer.
func (r UploadResult) OK() bool {
	return r.Status >= 200 && r.Status <= 299
}

// Client defines the interface for interacting with Cloudinary
type Client interface {
	CloudName() string
	APIKey() string
	SignUpload(p UploadParams) string
	Upload(ctx context.Context, p UploadParams, filename string, content []byte) (UploadResult, error)
}

type clientImpl struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Cloudinary client. An empty baseURL selects DefaultBaseURL.
func NewClient(cloudName, apiKey, apiSecret, baseURL string, httpClient *http.Client) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &clientImpl{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *clientImpl) CloudName() string { return c.cloudName }
func (c *clientImpl) APIKey() string    { return c.apiKey }

func (c *clientImpl) SignUpload(p UploadParams) string {
	return Sign(p.values(), c.apiSecret)
}

// Upload performs one signed multipart upload to /v1_1/<cloud>/auto/upload.
// A non-2xx answer is not an error; callers inspect UploadResult.Status.
func (c *clientImpl) Upload(ctx context.Context, p UploadParams, filename string, content []byte) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("error creating form file: %w", err)
	}
	if _, err := fw.Write(content); err != nil {
		return UploadResult{}, fmt.Errorf("error writing form file: %w", err)
	}

	fields := p.values()
	fields["api_key"] = c.apiKey
	fields["signature"] = c.SignUpload(p)
	for _, k := range []string{"api_key", "timestamp", "signature", "folder", "upload_preset"} {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return UploadResult{}, fmt.Errorf("error writing field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("error closing multipart body: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/v1_1/%s/auto/upload", c.baseURL, url.PathEscape(c.cloudName))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return UploadResult{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return UploadResult{}, fmt.Errorf("error uploading to Cloudinary: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("error reading response: %w", err)
	}

	result := UploadResult{Status: resp.StatusCode}
	if err := json.Unmarshal(body, &result.Response); err != nil {
		result.Response = map[string]any{"raw": string(body)}
	}
	return result, nil
}
