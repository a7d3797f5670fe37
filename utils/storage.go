package utils

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
)

// UploadBackend stores one file and returns a world-readable URL for it.
type UploadBackend interface {
	Name() string
	Upload(ctx context.Context, file models.AttachmentCandidate) (models.UploadedAttachment, error)
}

type BackendType string

const (
	BackendNone       BackendType = "none"
	BackendDrive      BackendType = "drive"
	BackendGCS        BackendType = "gcs"
	BackendR2         BackendType = "r2"
	BackendAppsScript BackendType = "apps-script"
)

var ErrUploadsDisabled = errors.New("attachment uploads are disabled")

// NewUploadBackend builds the backend named by UPLOAD_BACKEND.
func NewUploadBackend(ctx context.Context, cfg *config.Config) (UploadBackend, error) {
	switch BackendType(cfg.Upload.Backend) {
	case BackendNone, "":
		return NoopBackend{}, nil
	case BackendDrive:
		return NewDriveBackend(ctx, cfg.Drive)
	case BackendGCS:
		return NewGCSBackend(ctx, cfg.GCS)
	case BackendR2:
		return NewR2Backend(ctx, cfg.R2)
	case BackendAppsScript:
		return NewAppsScriptBackend(cfg.AppsScript, nil)
	default:
		return nil, fmt.Errorf("unsupported upload backend: %s", cfg.Upload.Backend)
	}
}

// MustUploadBackend never fails: a backend that cannot be built is replaced
// by one that reports the configuration error on every call, so the proxy
// answers 500 and the quotation flow carries on without attachments.
func MustUploadBackend(ctx context.Context, cfg *config.Config) UploadBackend {
	b, err := NewUploadBackend(ctx, cfg)
	if err != nil {
		log.Printf("Warning: upload backend %q unavailable: %v", cfg.Upload.Backend, err)
		return MisconfiguredBackend{BackendName: cfg.Upload.Backend, Err: err}
	}
	log.Printf("Upload backend: %s", b.Name())
	return b
}

type NoopBackend struct{}

func (NoopBackend) Name() string { return string(BackendNone) }

func (NoopBackend) Upload(context.Context, models.AttachmentCandidate) (models.UploadedAttachment, error) {
	return models.UploadedAttachment{}, ErrUploadsDisabled
}

// MisconfiguredBackend stands in for a backend whose settings are incomplete.
type MisconfiguredBackend struct {
	BackendName string
	Err         error
}

func (m MisconfiguredBackend) Name() string { return m.BackendName }

func (m MisconfiguredBackend) Upload(context.Context, models.AttachmentCandidate) (models.UploadedAttachment, error) {
	return models.UploadedAttachment{}, &ConfigError{Err: m.Err}
}

// ConfigError marks failures caused by missing server configuration rather
// than by the storage service itself.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
