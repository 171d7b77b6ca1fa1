package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration values.
// It is built once at start and passed to the services and handlers that need it.
type Config struct {
	Port string
	Env  string

	ResendAPIKey  string
	ResendBaseURL string
	ResendFrom    string

	MailTo           string
	ThankYouRedirect string

	BrandName         string
	BrandEmail        string
	BrandPhoneDisplay string
	BrandPhoneE164    string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadPreset string
	CloudinaryFolder       string
	CloudinaryFolderRoot   string
	CloudinaryBaseURL      string

	CORSAllowOrigin string

	// Present records which optional variables were actually set, for diagnostics
	// that must report presence without values.
	Present map[string]bool
}

// DiagnosticKeys are the variables reported by presence checks.
var DiagnosticKeys = []string{
	"RESEND_API_KEY",
	"CLOUDINARY_CLOUD_NAME",
	"CLOUDINARY_API_KEY",
	"CLOUDINARY_API_SECRET",
	"CLOUDINARY_UPLOAD_PRESET",
	"CLOUDINARY_FOLDER_ROOT",
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from any key lookup function. Empty values fall back
// to the literal defaults.
func FromLookup(lookup func(string) (string, bool)) *Config {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
		return fallback
	}

	cfg := &Config{
		Port: get("PORT", "8080"),
		Env:  strings.ToLower(get("APP_ENV", "development")),

		ResendAPIKey:  get("RESEND_API_KEY", ""),
		ResendBaseURL: get("RESEND_API_URL", "https://api.resend.com"),

		MailTo:           get("MAIL_TO", "klinova.contact@gmail.com"),
		ThankYouRedirect: get("THANK_YOU_REDIRECT", "/contact"),

		BrandName:         get("BRAND_NAME", "Klinova"),
		BrandEmail:        get("BRAND_EMAIL", "onboarding@resend.dev"),
		BrandPhoneDisplay: get("BRAND_PHONE_DISPLAY", "06 76 73 86 61"),
		BrandPhoneE164:    get("BRAND_PHONE_E164", "+33676738661"),

		CloudinaryCloudName:    get("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:       get("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret:    get("CLOUDINARY_API_SECRET", ""),
		CloudinaryUploadPreset: get("CLOUDINARY_UPLOAD_PRESET", "ml_default"),
		CloudinaryFolder:       get("CLOUDINARY_FOLDER", "klinova/demandes"),
		CloudinaryFolderRoot:   strings.Trim(get("CLOUDINARY_FOLDER_ROOT", "klinova"), "/"),
		CloudinaryBaseURL:      get("CLOUDINARY_API_URL", "https://api.cloudinary.com"),

		CORSAllowOrigin: get("CORS_ALLOW_ORIGIN", "*"),
	}

	cfg.Present = make(map[string]bool, len(DiagnosticKeys))
	for _, key := range DiagnosticKeys {
		cfg.Present[key] = get(key, "") != ""
	}

	// The sender defaults to "Brand <brand email>" once the brand is known.
	cfg.ResendFrom = get("RESEND_FROM", fmt.Sprintf("%s <%s>", cfg.BrandName, cfg.BrandEmail))

	return cfg
}

// IsProduction reports whether debug-only routes must stay closed.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// MailConfigured reports whether the mail provider key is present.
func (c *Config) MailConfigured() bool {
	return c.ResendAPIKey != ""
}

// UploadConfigured reports whether all three upload credentials are present.
func (c *Config) UploadConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
