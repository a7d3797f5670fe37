package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const driveFileFields = "id,name,webViewLink,webContentLink"

// DriveBackend uploads into one shared Drive folder as a service account and
// opens each file to anyone holding the link.
type DriveBackend struct {
	srv      *drive.Service
	folderID string
}

func NewDriveBackend(ctx context.Context, cfg config.DriveConfig) (*DriveBackend, error) {
	if cfg.ServiceAccountEmail == "" || cfg.PrivateKey == "" || cfg.FolderID == "" {
		return nil, errors.New("missing Google Drive env vars (GOOGLE_SERVICE_ACCOUNT_EMAIL, GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY, GOOGLE_DRIVE_FOLDER_ID)")
	}

	conf := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(UnescapePrivateKey(cfg.PrivateKey)),
		Scopes:     []string{drive.DriveScope},
		TokenURL:   google.JWTTokenURL,
	}
	srv, err := drive.NewService(ctx, option.WithTokenSource(conf.TokenSource(context.Background())))
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return &DriveBackend{srv: srv, folderID: cfg.FolderID}, nil
}

// UnescapePrivateKey turns the literal "\n" sequences that env files carry
// back into newlines.
func UnescapePrivateKey(raw string) string {
	return strings.ReplaceAll(raw, `\n`, "\n")
}

func (d *DriveBackend) Name() string { return string(BackendDrive) }

func (d *DriveBackend) Upload(ctx context.Context, file models.AttachmentCandidate) (models.UploadedAttachment, error) {
	created, err := d.srv.Files.Create(&drive.File{
		Name:    file.Name,
		Parents: []string{d.folderID},
	}).
		Media(bytes.NewReader(file.Data), googleapi.ContentType(file.MimeType)).
		Fields(driveFileFields).
		Context(ctx).
		Do()
	if err != nil {
		return models.UploadedAttachment{}, fmt.Errorf("drive create %s: %w", file.Name, err)
	}
	if created.Id == "" {
		return models.UploadedAttachment{}, fmt.Errorf("drive create %s: empty file id", file.Name)
	}

	_, err = d.srv.Permissions.Create(created.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return models.UploadedAttachment{}, fmt.Errorf("drive share %s: %w", created.Id, err)
	}

	meta, err := d.srv.Files.Get(created.Id).Fields(driveFileFields).Context(ctx).Do()
	if err != nil {
		// the file exists and is shared; fall back to what create returned
		meta = created
	}

	return models.UploadedAttachment{
		ID:             created.Id,
		URL:            DriveLink(created.Id, meta.WebViewLink, meta.WebContentLink),
		SourceFilename: file.Name,
		WebViewLink:    meta.WebViewLink,
		WebContentLink: meta.WebContentLink,
	}, nil
}

// DriveLink picks the best shareable link Drive reported for a file.
func DriveLink(fileID, webViewLink, webContentLink string) string {
	if webViewLink != "" {
		return webViewLink
	}
	if webContentLink != "" {
		return webContentLink
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID)
}
