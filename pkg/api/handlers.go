package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/klinova/klinova-api/pkg/config"
	"github.com/klinova/klinova-api/pkg/logger"
	"github.com/klinova/klinova-api/pkg/metrics"
	"github.com/klinova/klinova-api/pkg/middleware"
	"github.com/klinova/klinova-api/pkg/models"
	"github.com/klinova/klinova-api/pkg/services"
	"github.com/klinova/klinova-api/pkg/utils"
)

const (
	msgUploadNotConfigured = "Configuration Cloudinary manquante"
	msgInvalidFolder       = "Dossier invalide"
	msgMissingSecureURL    = "missing secure_url"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	contactService services.ContactService
	uploadService  services.UploadService
	config         *config.Config
	metrics        *metrics.Metrics
	log            *logger.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	contactService services.ContactService,
	uploadService services.UploadService,
	cfg *config.Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *Handlers {
	return &Handlers{
		contactService: contactService,
		uploadService:  uploadService,
		config:         cfg,
		metrics:        m,
		log:            log,
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ContactHealth reports whether mail delivery is wired, without exposing secrets.
func (h *Handlers) ContactHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":               true,
		"brand":            h.config.BrandName,
		"mailTo":           utils.MaskEmail(h.config.MailTo),
		"resendConfigured": h.config.MailConfigured(),
	})
}

// HandleContact runs one contact-form submission through honeypot check,
// validation, mail dispatch, and answers with JSON or a redirect.
func (h *Handlers) HandleContact(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.log)

	sub, err := readSubmission(c)
	if err != nil {
		log.Errorw("cannot read contact submission", "error", err)
		h.metrics.ObserveSubmission(metrics.OutcomeError)
		h.respondInternalError(c)
		return
	}

	if sub.Honeypot != "" {
		log.Info("honeypot field filled, submission dropped")
		h.metrics.ObserveSubmission(metrics.OutcomeSpam)
		c.Status(http.StatusNoContent)
		return
	}

	validated, err := h.contactService.Validate(sub)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			log.Infow("contact submission rejected", "field", verr.Field)
			h.metrics.ObserveSubmission(metrics.OutcomeInvalid)
			h.respondClientError(c, verr.Message)
			return
		}
		log.Errorw("contact validation failed", "error", err)
		h.metrics.ObserveSubmission(metrics.OutcomeError)
		h.respondInternalError(c)
		return
	}

	report, err := h.contactService.Process(c.Request.Context(), validated)
	if err != nil {
		log.Errorw("contact processing failed", "error", err)
		h.metrics.ObserveSubmission(metrics.OutcomeError)
		h.respondInternalError(c)
		return
	}

	h.metrics.ObserveSubmission(metrics.OutcomeSuccess)
	log.Infow("contact submission accepted",
		"attempts", report.Attempts(),
		"notification_delivered", report.Notification.Delivered,
	)

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "photosCount": len(validated.Photos)})
		return
	}
	c.Redirect(http.StatusSeeOther, h.config.ThankYouRedirect)
}

// UploadSignatureStatus reports whether upload signing is configured.
func (h *Handlers) UploadSignatureStatus(c *gin.Context) {
	status := h.uploadService.Status()
	cloudName := status.CloudName
	if cloudName == "" {
		cloudName = "non-configuré"
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"endpoint":   "cloudinary-signature",
		"configured": status.Configured,
		"cloudName":  cloudName,
	})
}

// UploadSignature issues signed direct-upload parameters. The JSON body is
// optional and may carry a folder override.
func (h *Handlers) UploadSignature(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.log)

	var req struct {
		Folder string `json:"folder"`
	}
	if err := bindOptionalJSON(c, &req); err != nil {
		log.Errorw("cannot read signature request", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": middleware.InternalErrorMessage})
		return
	}

	sig, err := h.uploadService.Sign(req.Folder)
	switch {
	case errors.Is(err, services.ErrUploadNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": msgUploadNotConfigured})
		return
	case errors.Is(err, services.ErrInvalidFolder):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msgInvalidFolder})
		return
	case err != nil:
		log.Errorw("signature generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": middleware.InternalErrorMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"signature":    sig.Signature,
		"timestamp":    sig.Timestamp,
		"apiKey":       sig.APIKey,
		"cloudName":    sig.CloudName,
		"folder":       sig.Folder,
		"uploadPreset": sig.UploadPreset,
	})
}

// NotifyUpload mails the team about a file the browser uploaded directly.
func (h *Handlers) NotifyUpload(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.log)

	var notice models.UploadNotice
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(&notice); err != nil {
		log.Errorw("cannot read upload notice", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": middleware.InternalErrorMessage})
		return
	}

	outcome, err := h.uploadService.NotifyUpload(c.Request.Context(), notice)
	if errors.Is(err, services.ErrMissingSecureURL) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msgMissingSecureURL})
		return
	}
	if err != nil {
		log.Errorw("upload notice failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": middleware.InternalErrorMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "delivered": outcome.Delivered})
}

// TestEnv lists which variables are set. Values are never shown, and the
// route answers ok:false in production.
func (h *Handlers) TestEnv(c *gin.Context) {
	if h.config.IsProduction() {
		c.JSON(http.StatusOK, gin.H{
			"ok":   false,
			"note": "Route de test désactivée en production pour raisons de sécurité.",
		})
		return
	}

	vars := make(map[string]bool, len(config.DiagnosticKeys))
	for _, key := range config.DiagnosticKeys {
		vars[key] = h.config.Present[key]
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"note": "Test local uniquement — les valeurs ne sont pas affichées.",
		"vars": vars,
	})
}

// UploadSelfTest performs a real signed upload of a tiny text file.
// Not available in production.
func (h *Handlers) UploadSelfTest(c *gin.Context) {
	if h.config.IsProduction() {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
		return
	}

	report, err := h.uploadService.SelfTest(c.Request.Context())
	if errors.Is(err, services.ErrUploadNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Cloudinary credentials manquants"})
		return
	}
	if err != nil {
		logger.FromContext(c.Request.Context(), h.log).Errorw("upload self-test failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": middleware.InternalErrorMessage})
		return
	}

	status, message := http.StatusOK, "✅ Upload réussi"
	if !report.OK {
		status, message = http.StatusInternalServerError, "❌ Upload échoué"
	}
	c.JSON(status, gin.H{
		"ok":       report.OK,
		"status":   report.Status,
		"message":  message,
		"response": report.Response,
		"used": gin.H{
			"folder":       report.Folder,
			"uploadPreset": report.UploadPreset,
			"apiKey":       utils.MaskSecret(report.APIKey),
			"cloudName":    report.CloudName,
		},
	})
}

func (h *Handlers) respondClientError(c *gin.Context, message string) {
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": message})
		return
	}
	c.String(http.StatusBadRequest, message)
}

func (h *Handlers) respondInternalError(c *gin.Context) {
	if middleware.WantsJSON(c) {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": middleware.InternalErrorMessage})
		return
	}
	c.String(http.StatusInternalServerError, middleware.InternalErrorMessage)
}

// bindOptionalJSON decodes a JSON body into obj; an empty body is not an error.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
