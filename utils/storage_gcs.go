package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
	"google.golang.org/api/option"
)

type GCSBackend struct {
	client        *storage.Client
	bucket        string
	prefix        string
	uniformAccess bool
}

// NewGCSBackend uses the service-account file from CREDENTIALS_FILE_LOCATION
// when set, application default credentials otherwise.
func NewGCSBackend(ctx context.Context, cfg config.GCSConfig) (*GCSBackend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("GCS_BUCKET is required for gcs uploads")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSBackend{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		uniformAccess: cfg.UniformAccess,
	}, nil
}

func (g *GCSBackend) Name() string { return string(BackendGCS) }

func (g *GCSBackend) Upload(ctx context.Context, file models.AttachmentCandidate) (models.UploadedAttachment, error) {
	objectName := ObjectName(g.prefix, file.Name, time.Now())
	obj := g.client.Bucket(g.bucket).Object(objectName).If(storage.Conditions{DoesNotExist: true})

	w := obj.NewWriter(ctx)
	w.ContentType = file.MimeType
	w.CacheControl = "public, max-age=86400"
	w.Metadata = map[string]string{"sourceFilename": file.Name}

	if _, err := io.Copy(w, bytes.NewReader(file.Data)); err != nil {
		_ = w.Close()
		return models.UploadedAttachment{}, fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.UploadedAttachment{}, fmt.Errorf("upload close: %w", err)
	}

	// Buckets with uniform access are made public at the bucket level.
	if !g.uniformAccess {
		if err := g.client.Bucket(g.bucket).Object(objectName).ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
			return models.UploadedAttachment{}, fmt.Errorf("make %s public: %w", objectName, err)
		}
	}

	publicURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectName)
	return models.UploadedAttachment{
		ID:             objectName,
		URL:            publicURL,
		SourceFilename: file.Name,
		WebContentLink: publicURL,
	}, nil
}

// Close releases the storage client.
func (g *GCSBackend) Close() error {
	return g.client.Close()
}
