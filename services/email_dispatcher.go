package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
)

const noImagesText = "No images uploaded"

var ErrRelayNotConfigured = errors.New("email relay is not configured")

// EmailRelay delivers one templated message.
type EmailRelay interface {
	Name() string
	// Configured is false when credentials are missing; such a relay is
	// never called.
	Configured() bool
	Send(ctx context.Context, params models.EmailTemplateParams) error
}

type EmailDispatcher struct {
	relay   EmailRelay
	timeout time.Duration
}

func NewEmailDispatcher(relay EmailRelay, timeout time.Duration) *EmailDispatcher {
	if relay == nil {
		relay = disabledRelay{}
	}
	return &EmailDispatcher{relay: relay, timeout: timeout}
}

// NewEmailRelay picks the relay named by EMAIL_RELAY.
func NewEmailRelay(cfg config.EmailConfig) EmailRelay {
	switch cfg.Relay {
	case "smtp":
		return NewSMTPRelay(cfg.SMTP, cfg.SubjectLine)
	case "none":
		return disabledRelay{}
	default:
		return NewEmailJSRelay(cfg.EmailJS, nil)
	}
}

func (d *EmailDispatcher) Configured() bool { return d.relay.Configured() }

// Dispatch starts the send and returns at once. The send is detached from
// ctx cancellation so a finished HTTP request does not abort it.
func (d *EmailDispatcher) Dispatch(ctx context.Context, form models.SubmissionForm, imageURLs []string) *Settlement {
	name := "email via " + d.relay.Name()
	if !d.relay.Configured() {
		log.Printf("Warning: missing %s settings, skipping email send", d.relay.Name())
		return Skipped(name, ErrRelayNotConfigured)
	}

	params := BuildEmailParams(form, imageURLs)
	sendCtx := context.WithoutCancel(ctx)
	return BestEffort(sendCtx, name, func(ctx context.Context) error {
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}
		return d.relay.Send(ctx, params)
	})
}

// BuildEmailParams maps the form onto the template fields. Image links are
// newline-joined; attachment_url carries the first one.
func BuildEmailParams(form models.SubmissionForm, imageURLs []string) models.EmailTemplateParams {
	form = form.Trimmed()
	urls := nonEmpty(imageURLs)

	params := models.EmailTemplateParams{
		FullName:           form.Name,
		WhatsAppNumber:     form.ContactNumber,
		EmailAddress:       form.Email,
		ProductDescription: form.ProductDescription,
		QuantityNeeded:     form.Quantity,
		AdditionalNotes:    form.Notes,
		ImageLinks:         noImagesText,
	}
	if len(urls) > 0 {
		params.ImageLinks = strings.Join(urls, "\n")
		params.AttachmentURL = urls[0]
	}
	return params
}

type disabledRelay struct{}

func (disabledRelay) Name() string     { return "none" }
func (disabledRelay) Configured() bool { return false }

func (disabledRelay) Send(context.Context, models.EmailTemplateParams) error {
	return ErrRelayNotConfigured
}
