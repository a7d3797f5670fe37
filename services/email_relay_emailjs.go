package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
)

// EmailJSRelay posts to the EmailJS REST send endpoint.
type EmailJSRelay struct {
	cfg    config.EmailJSConfig
	client *http.Client
}

func NewEmailJSRelay(cfg config.EmailJSConfig, client *http.Client) *EmailJSRelay {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &EmailJSRelay{cfg: cfg, client: client}
}

func (r *EmailJSRelay) Name() string { return "emailjs" }

func (r *EmailJSRelay) Configured() bool {
	return r.cfg.ServiceID != "" && r.cfg.TemplateID != "" && r.cfg.PublicKey != ""
}

type emailJSRequest struct {
	ServiceID      string                     `json:"service_id"`
	TemplateID     string                     `json:"template_id"`
	UserID         string                     `json:"user_id"`
	AccessToken    string                     `json:"accessToken,omitempty"`
	TemplateParams models.EmailTemplateParams `json:"template_params"`
}

func (r *EmailJSRelay) Send(ctx context.Context, params models.EmailTemplateParams) error {
	if !r.Configured() {
		return ErrRelayNotConfigured
	}

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      r.cfg.ServiceID,
		TemplateID:     r.cfg.TemplateID,
		UserID:         r.cfg.PublicKey,
		AccessToken:    r.cfg.AccessToken,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("encode emailjs payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("emailjs returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
