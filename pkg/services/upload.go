package services

import (
	"context"
	"errors"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/klinova/klinova-api/pkg/clients/cloudinary"
	"github.com/klinova/klinova-api/pkg/clients/resend"
	"github.com/klinova/klinova-api/pkg/config"
	"github.com/klinova/klinova-api/pkg/logger"
	"github.com/klinova/klinova-api/pkg/metrics"
	"github.com/klinova/klinova-api/pkg/models"
	"github.com/klinova/klinova-api/pkg/utils"
)

var (
	ErrUploadNotConfigured = errors.New("upload service credentials missing")
	ErrInvalidFolder       = errors.New("invalid upload folder")
	ErrMissingSecureURL    = errors.New("missing secure_url")
)

var folderPattern = regexp.MustCompile(`^[A-Za-z0-9_\-/]+$`)

const (
	selfTestFilename = "klinova-selftest.txt"
	selfTestContent  = "Hello from Klinova!"
	selfTestSubdir   = "uploads-preview"
)

// UploadSignature is everything a browser needs for a signed direct upload.
type UploadSignature struct {
	Signature    string `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	APIKey       string `json:"apiKey"`
	CloudName    string `json:"cloudName"`
	Folder       string `json:"folder"`
	UploadPreset string `json:"uploadPreset"`
}

// UploadStatus describes the upload configuration without revealing secrets.
type UploadStatus struct {
	Configured bool
	CloudName  string
}

// SelfTestReport is the outcome of a test upload.
type SelfTestReport struct {
	OK           bool
	Status       int
	Response     map[string]any
	Folder       string
	UploadPreset string
	APIKey       string
	CloudName    string
}

// UploadService signs direct uploads and relays upload notifications
type UploadService interface {
	Status() UploadStatus
	Sign(folderOverride string) (UploadSignature, error)
	NotifyUpload(ctx context.Context, notice models.UploadNotice) (DeliveryOutcome, error)
	SelfTest(ctx context.Context) (SelfTestReport, error)
}

type uploadServiceImpl struct {
	client   cloudinary.Client
	mailer   Mailer
	composer *Composer
	config   *config.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewUploadService creates a new upload service
func NewUploadService(
	client cloudinary.Client,
	mailer Mailer,
	composer *Composer,
	cfg *config.Config,
	log *logger.Logger,
	m *metrics.Metrics,
) UploadService {
	return &uploadServiceImpl{
		client:   client,
		mailer:   mailer,
		composer: composer,
		config:   cfg,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *uploadServiceImpl) Status() UploadStatus {
	return UploadStatus{
		Configured: s.config.UploadConfigured(),
		CloudName:  s.config.CloudinaryCloudName,
	}
}

// Sign returns a signature for the configured folder, or for folderOverride
// nested under the folder root.
func (s *uploadServiceImpl) Sign(folderOverride string) (UploadSignature, error) {
	if !s.config.UploadConfigured() {
		s.log.Errorw("upload credentials missing",
			"cloud_name", s.config.CloudinaryCloudName != "",
			"api_key", s.config.CloudinaryAPIKey != "",
			"api_secret", s.config.CloudinaryAPISecret != "",
		)
		return UploadSignature{}, ErrUploadNotConfigured
	}

	folder, err := s.resolveFolder(folderOverride)
	if err != nil {
		return UploadSignature{}, err
	}

	params := cloudinary.UploadParams{
		Folder:       folder,
		UploadPreset: s.config.CloudinaryUploadPreset,
		Timestamp:    s.now().Unix(),
	}
	sig := UploadSignature{
		Signature:    s.client.SignUpload(params),
		Timestamp:    params.Timestamp,
		APIKey:       s.client.APIKey(),
		CloudName:    s.client.CloudName(),
		Folder:       params.Folder,
		UploadPreset: params.UploadPreset,
	}

	s.metrics.ObserveSignature()
	return sig, nil
}

func (s *uploadServiceImpl) resolveFolder(override string) (string, error) {
	override = strings.Trim(strings.TrimSpace(override), "/")
	if override == "" {
		return s.config.CloudinaryFolder, nil
	}
	if !folderPattern.MatchString(override) {
		return "", ErrInvalidFolder
	}
	return path.Join(s.config.CloudinaryFolderRoot, override), nil
}

// NotifyUpload mails the team about a finished upload. A failed send is
// absorbed into the outcome; only a missing secure_url is an error.
func (s *uploadServiceImpl) NotifyUpload(ctx context.Context, notice models.UploadNotice) (DeliveryOutcome, error) {
	if strings.TrimSpace(notice.Cloudinary.SecureURL) == "" {
		return DeliveryOutcome{}, ErrMissingSecureURL
	}

	msg, err := s.composer.UploadNotice(notice)
	if err != nil {
		return DeliveryOutcome{}, err
	}

	email := resend.Email{
		From:    s.config.ResendFrom,
		To:      []string{s.config.MailTo},
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}
	if utils.IsEmail(notice.Form.Email) {
		email.ReplyTo = strings.TrimSpace(notice.Form.Email)
	}

	outcome := s.mailer.Send(context.WithoutCancel(ctx), KindUploadNotice, email)
	if !outcome.Delivered {
		logger.FromContext(ctx, s.log).Warnw("upload notice not delivered", "error", outcome.Err)
	}
	return outcome, nil
}

// SelfTest uploads a small text file into <root>/uploads-preview.
func (s *uploadServiceImpl) SelfTest(ctx context.Context) (SelfTestReport, error) {
	if !s.config.UploadConfigured() {
		return SelfTestReport{}, ErrUploadNotConfigured
	}

	params := cloudinary.UploadParams{
		Folder:       path.Join(s.config.CloudinaryFolderRoot, selfTestSubdir),
		UploadPreset: s.config.CloudinaryUploadPreset,
		Timestamp:    s.now().Unix(),
	}

	res, err := s.client.Upload(ctx, params, selfTestFilename, []byte(selfTestContent))
	if err != nil {
		return SelfTestReport{}, err
	}

	return SelfTestReport{
		OK:           res.OK(),
		Status:       res.Status,
		Response:     res.Response,
		Folder:       params.Folder,
		UploadPreset: params.UploadPreset,
		APIKey:       s.client.APIKey(),
		CloudName:    s.client.CloudName(),
	}, nil
}
