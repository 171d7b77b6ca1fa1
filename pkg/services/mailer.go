package services

import (
	"context"
	"errors"

	"github.com/klinova/klinova-api/pkg/clients/resend"
	"github.com/klinova/klinova-api/pkg/logger"
	"github.com/klinova/klinova-api/pkg/metrics"
)

// Delivery kinds.
const (
	KindNotification   = "notification"
	KindAcknowledgment = "acknowledgment"
	KindUploadNotice   = "upload_notice"
)

// ErrMailDisabled is reported when no provider key is configured.
var ErrMailDisabled = errors.New("mail delivery disabled: RESEND_API_KEY not set")

// DeliveryOutcome is the result of one delivery attempt. Failures are values, not
// errors returned to the caller; Err only explains why Delivered is false.
type DeliveryOutcome struct {
	Kind      string
	Delivered bool
	MessageID string
	Err       error
}

// Mailer sends one email per call and never fails its caller.
type Mailer interface {
	Send(ctx context.Context, kind string, email resend.Email) DeliveryOutcome
}

type mailerImpl struct {
	client     resend.Client
	configured bool
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewMailer creates a mailer. With configured false every Send short-circuits
// without touching the network.
func NewMailer(client resend.Client, configured bool, log *logger.Logger, m *metrics.Metrics) Mailer {
	return &mailerImpl{
		client:     client,
		configured: configured,
		log:        log,
		metrics:    m,
	}
}

func (m *mailerImpl) Send(ctx context.Context, kind string, email resend.Email) DeliveryOutcome {
	log := logger.FromContext(ctx, m.log).With("kind", kind)
	outcome := DeliveryOutcome{Kind: kind}

	if !m.configured {
		outcome.Err = ErrMailDisabled
		m.metrics.ObserveDelivery(kind, metrics.ResultDisabled)
		log.Warn("mail provider not configured, skipping delivery")
		return outcome
	}

	id, err := m.client.SendEmail(ctx, email)
	if err != nil {
		outcome.Err = err
		m.metrics.ObserveDelivery(kind, metrics.ResultFailed)

		var apiErr *resend.APIError
		if errors.As(err, &apiErr) {
			log.Errorw("mail provider rejected email", "status", apiErr.Status, "body", apiErr.Body)
		} else {
			log.Errorw("mail delivery failed", "error", err)
		}
		return outcome
	}

	outcome.Delivered = true
	outcome.MessageID = id
	m.metrics.ObserveDelivery(kind, metrics.ResultSent)
	log.Infow("email sent", "message_id", id)
	return outcome
}
