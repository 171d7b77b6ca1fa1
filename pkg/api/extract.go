package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/klinova/klinova-api/pkg/models"
)

const (
	maxBodyBytes      = 1 << 20
	maxMultipartBytes = 8 << 20
)

var errMalformedBody = errors.New("malformed request body")

// readSubmission decodes the request body with the adapter matching its
// Content-Type. JSON bodies go through submissionFromJSON; everything else is
// parsed as a form.
func readSubmission(c *gin.Context) (models.Submission, error) {
	if strings.Contains(c.ContentType(), "json") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			return models.Submission{}, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
		return submissionFromJSON(body), nil
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartBytes)
		if err := c.Request.ParseMultipartForm(maxMultipartBytes); err != nil {
			return models.Submission{}, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	} else {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		if err := c.Request.ParseForm(); err != nil {
			return models.Submission{}, fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	}
	return submissionFromForm(c.Request.PostForm), nil
}

// submissionFromForm maps multipart or URL-encoded fields to a Submission.
func submissionFromForm(values url.Values) models.Submission {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(values.Get(k)); v != "" {
				return v
			}
		}
		return ""
	}

	var photos []string
	for _, k := range []string{"photos[]", "photos"} {
		photos = appendNonEmpty(photos, values[k]...)
	}

	return models.Submission{
		FirstName:  first("prenom"),
		LastName:   first("nom"),
		Email:      first("email"),
		Phone:      first("telephone", "phone"),
		PhoneE164:  first("telephone_e164"),
		PostalCode: first("code_postal", "cp"),
		Surface:    first("surface"),
		Message:    first("message"),
		Source:     orDefault(first("source"), models.DefaultSource),
		Consent:    first("rgpd", "consent"),
		Photos:     photos,
		Honeypot:   first("website"),
	}
}

// submissionFromJSON maps a JSON object to a Submission. Scalars of any JSON
// type are accepted; photos may be an array or a single string.
func submissionFromJSON(body map[string]any) models.Submission {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(scalarString(body[k])); v != "" {
				return v
			}
		}
		return ""
	}

	var photos []string
	for _, k := range []string{"photos", "photos[]"} {
		switch v := body[k].(type) {
		case []any:
			for _, item := range v {
				photos = appendNonEmpty(photos, scalarString(item))
			}
		case string:
			photos = appendNonEmpty(photos, v)
		}
	}

	return models.Submission{
		FirstName:  first("prenom"),
		LastName:   first("nom"),
		Email:      first("email"),
		Phone:      first("telephone", "phone"),
		PhoneE164:  first("telephone_e164"),
		PostalCode: first("code_postal", "cp"),
		Surface:    first("surface"),
		Message:    first("message"),
		Source:     orDefault(first("source"), models.DefaultSource),
		Consent:    first("rgpd", "consent"),
		Photos:     photos,
		Honeypot:   first("website"),
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
