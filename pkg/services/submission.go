package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/klinova/klinova-api/pkg/clients/resend"
	"github.com/klinova/klinova-api/pkg/config"
	"github.com/klinova/klinova-api/pkg/logger"
	"github.com/klinova/klinova-api/pkg/models"
	"github.com/klinova/klinova-api/pkg/utils"
)

// Messages shown to the visitor when a field is rejected.
const (
	MsgInvalidPhone      = "Téléphone invalide (ex: 06… ou +33…)"
	MsgInvalidPostalCode = "Code postal invalide (5 chiffres requis)"
	MsgInvalidEmail      = "Email invalide"
)

// DeliveryReport collects the outcomes of the sends made for one submission.
// Acknowledgment is nil when no acknowledgment was attempted.
type DeliveryReport struct {
	Notification   DeliveryOutcome
	Acknowledgment *DeliveryOutcome
}

// Attempts is the number of outbound sends made.
func (r DeliveryReport) Attempts() int {
	if r.Acknowledgment != nil {
		return 2
	}
	return 1
}

// ContactService validates contact submissions and relays them by email
type ContactService interface {
	Validate(sub models.Submission) (models.ValidatedSubmission, error)
	Process(ctx context.Context, sub models.ValidatedSubmission) (DeliveryReport, error)
}

type contactServiceImpl struct {
	mailer   Mailer
	composer *Composer
	config   *config.Config
	log      *logger.Logger
}

// NewContactService creates a new contact service
func NewContactService(mailer Mailer, composer *Composer, cfg *config.Config, log *logger.Logger) ContactService {
	return &contactServiceImpl{
		mailer:   mailer,
		composer: composer,
		config:   cfg,
		log:      log,
	}
}

// optionalFields are checked only when filled; declaration order is check order.
type optionalFields struct {
	PostalCode string `validate:"omitempty,cp5"`
	Email      string `validate:"omitempty,mailshape"`
}

// Validate checks the phone first, then postal code, then email, and returns a
// *models.ValidationError for the first failing field.
func (s *contactServiceImpl) Validate(sub models.Submission) (models.ValidatedSubmission, error) {
	phone, ok := resolvePhone(sub)
	if !ok {
		return models.ValidatedSubmission{}, &models.ValidationError{Field: "telephone", Message: MsgInvalidPhone}
	}

	err := utils.Validator().Struct(optionalFields{PostalCode: sub.PostalCode, Email: sub.Email})
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return models.ValidatedSubmission{}, err
		}
		switch verrs[0].Field() {
		case "PostalCode":
			return models.ValidatedSubmission{}, &models.ValidationError{Field: "code_postal", Message: MsgInvalidPostalCode}
		default:
			return models.ValidatedSubmission{}, &models.ValidationError{Field: "email", Message: MsgInvalidEmail}
		}
	}

	return models.ValidatedSubmission{
		Submission:      sub,
		NormalizedPhone: phone,
		HasEmail:        sub.Email != "",
	}, nil
}

// resolvePhone prefers the front-end's E.164 value when it normalizes, and
// falls back to the raw phone field otherwise.
func resolvePhone(sub models.Submission) (string, bool) {
	if sub.PhoneE164 != "" {
		if p, ok := utils.NormalizePhoneFR(sub.PhoneE164); ok {
			return p, true
		}
	}
	return utils.NormalizePhoneFR(sub.Phone)
}

// Process sends the internal notification and, when the visitor gave an email,
// the acknowledgment. Both sends run concurrently and are awaited. Delivery
// failures never turn into an error; only composing can fail.
func (s *contactServiceImpl) Process(ctx context.Context, sub models.ValidatedSubmission) (DeliveryReport, error) {
	// Lead notification must not be cut short if the visitor closes the tab.
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, s.log)

	notification, err := s.composer.Notification(sub)
	if err != nil {
		return DeliveryReport{}, err
	}

	var ack *ComposedMessage
	if sub.HasEmail {
		msg, err := s.composer.Acknowledgment(sub)
		if err != nil {
			return DeliveryReport{}, err
		}
		ack = &msg
	}

	log.Infow("dispatching contact submission",
		"phone", utils.Fingerprint(sub.NormalizedPhone),
		"email", utils.MaskEmail(sub.Email),
		"photos", len(sub.Photos),
		"source", sub.Source,
	)

	var (
		report DeliveryReport
		g      errgroup.Group
	)

	g.Go(func() error {
		email := resend.Email{
			From:    s.config.ResendFrom,
			To:      []string{s.config.MailTo},
			Subject: notification.Subject,
			Text:    notification.Text,
			HTML:    notification.HTML,
		}
		if sub.HasEmail {
			email.ReplyTo = sub.Email
		}
		report.Notification = s.mailer.Send(ctx, KindNotification, email)
		return nil
	})

	if ack != nil {
		g.Go(func() error {
			outcome := s.mailer.Send(ctx, KindAcknowledgment, resend.Email{
				From:    s.config.ResendFrom,
				To:      []string{sub.Email},
				Subject: ack.Subject,
				Text:    ack.Text,
				HTML:    ack.HTML,
			})
			report.Acknowledgment = &outcome
			return nil
		})
	}

	_ = g.Wait()

	s.absorbDeliveryFailures(log, report)
	return report, nil
}

// absorbDeliveryFailures is where failed sends are deliberately dropped: the lead
// has been captured, so a mail outage is logged and the visitor still gets success.
func (s *contactServiceImpl) absorbDeliveryFailures(log *logger.Logger, report DeliveryReport) {
	if !report.Notification.Delivered {
		log.Warnw("internal notification not delivered, lead kept as success", "error", report.Notification.Err)
	}
	if report.Acknowledgment != nil && !report.Acknowledgment.Delivered {
		log.Warnw("customer acknowledgment not delivered", "error", report.Acknowledgment.Err)
	}
}
