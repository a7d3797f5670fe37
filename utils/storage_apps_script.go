package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
)

// AppsScriptBackend forwards the file as base64 JSON to a Google Apps Script
// web app that saves it to Drive and answers with the file link.
type AppsScriptBackend struct {
	url    string
	client *http.Client
}

func NewAppsScriptBackend(cfg config.AppsScriptConfig, client *http.Client) (*AppsScriptBackend, error) {
	if cfg.WebAppURL == "" {
		return nil, errors.New("missing GAS_WEB_APP_URL env var")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &AppsScriptBackend{url: cfg.WebAppURL, client: client}, nil
}

func (a *AppsScriptBackend) Name() string { return string(BackendAppsScript) }

type appsScriptRequest struct {
	Data     string `json:"data"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
}

type appsScriptReply struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	FileURL string `json:"fileUrl"`
	FileID  string `json:"fileId"`
	URL     string `json:"url"`
	Files   []struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		WebViewLink    string `json:"webViewLink"`
		WebContentLink string `json:"webContentLink"`
	} `json:"files"`
}

func (a *AppsScriptBackend) Upload(ctx context.Context, file models.AttachmentCandidate) (models.UploadedAttachment, error) {
	body, err := json.Marshal(appsScriptRequest{
		Data:     base64.StdEncoding.EncodeToString(file.Data),
		Filename: file.Name,
		MimeType: file.MimeType,
	})
	if err != nil {
		return models.UploadedAttachment{}, fmt.Errorf("encode %s: %w", file.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return models.UploadedAttachment{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return models.UploadedAttachment{}, fmt.Errorf("failed to reach Apps Script: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.UploadedAttachment{}, fmt.Errorf("read Apps Script reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.UploadedAttachment{}, fmt.Errorf("apps script returned status %d", resp.StatusCode)
	}

	var reply appsScriptReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return models.UploadedAttachment{}, fmt.Errorf("decode Apps Script reply: %w", err)
	}
	if reply.Success != nil && !*reply.Success {
		return models.UploadedAttachment{}, fmt.Errorf("apps script error: %s", reply.Error)
	}

	att := models.UploadedAttachment{SourceFilename: file.Name}
	switch {
	case len(reply.Files) > 0:
		f := reply.Files[0]
		att.ID = f.ID
		att.WebViewLink = f.WebViewLink
		att.WebContentLink = f.WebContentLink
		att.URL = DriveLink(f.ID, f.WebViewLink, f.WebContentLink)
	case reply.FileURL != "":
		att.ID = reply.FileID
		att.URL = reply.FileURL
		att.WebViewLink = reply.FileURL
	case reply.URL != "":
		att.ID = reply.FileID
		att.URL = reply.URL
		att.WebViewLink = reply.URL
	default:
		return models.UploadedAttachment{}, errors.New("apps script reply carried no file url")
	}
	return att, nil
}
