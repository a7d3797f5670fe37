package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
)

type sendMailFunc func(addr string, a sasl.Client, from string, to []string, r *bytes.Reader) error

// SMTPRelay sends the same template fields as a plain-text mail.
type SMTPRelay struct {
	cfg     config.SMTPConfig
	subject string
	send    sendMailFunc
}

func NewSMTPRelay(cfg config.SMTPConfig, subject string) *SMTPRelay {
	r := &SMTPRelay{cfg: cfg, subject: subject}
	if cfg.TLS {
		r.send = func(addr string, a sasl.Client, from string, to []string, body *bytes.Reader) error {
			return smtp.SendMailTLS(addr, a, from, to, body)
		}
	} else {
		// SendMail upgrades with STARTTLS when the server offers it.
		r.send = func(addr string, a sasl.Client, from string, to []string, body *bytes.Reader) error {
			return smtp.SendMail(addr, a, from, to, body)
		}
	}
	return r
}

func (r *SMTPRelay) Name() string { return "smtp" }

func (r *SMTPRelay) Configured() bool {
	return r.cfg.Host != "" && r.cfg.From != "" && len(r.cfg.To) > 0
}

func (r *SMTPRelay) Send(ctx context.Context, params models.EmailTemplateParams) error {
	if !r.Configured() {
		return ErrRelayNotConfigured
	}

	var auth sasl.Client
	if r.cfg.Username != "" {
		auth = sasl.NewPlainClient("", r.cfg.Username, r.cfg.Password)
	}
	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
	msg := r.compose(params, time.Now())

	// go-smtp has no context support; give up waiting on cancellation.
	errc := make(chan error, 1)
	go func() {
		errc <- r.send(addr, auth, r.cfg.From, r.cfg.To, bytes.NewReader(msg))
	}()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *SMTPRelay) compose(p models.EmailTemplateParams, now time.Time) []byte {
	subject := r.subject
	if p.FullName != "" {
		subject = fmt.Sprintf("%s from %s", subject, p.FullName)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", r.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(r.cfg.To, ", "))
	if p.EmailAddress != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", p.EmailAddress)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")

	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "%s: %s\r\n", label, value)
	}
	field("Full name", p.FullName)
	field("WhatsApp", p.WhatsAppNumber)
	field("Email", p.EmailAddress)
	field("Product", p.ProductDescription)
	field("Quantity", p.QuantityNeeded)
	field("Notes", p.AdditionalNotes)
	b.WriteString("\r\nImages:\r\n")
	b.WriteString(strings.ReplaceAll(p.ImageLinks, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}
