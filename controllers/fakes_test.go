package controllers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/haidershah700/china-pakistan-connect/models"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type recordingBackend struct {
	err error

	mu    sync.Mutex
	files []models.AttachmentCandidate
}

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) Upload(_ context.Context, f models.AttachmentCandidate) (models.UploadedAttachment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return models.UploadedAttachment{}, b.err
	}
	b.files = append(b.files, f)
	id := "id-" + f.Name
	return models.UploadedAttachment{
		ID:             id,
		URL:            "https://drive.example.com/" + id,
		WebViewLink:    "https://drive.example.com/" + id,
		SourceFilename: f.Name,
	}, nil
}

func (b *recordingBackend) Files() []models.AttachmentCandidate {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.AttachmentCandidate(nil), b.files...)
}

var errBackendDown = errors.New("backend down")

type filePart struct {
	field, name, mime string
	data              []byte
}

// multipartBody writes plain fields first, then the file parts in order.
func multipartBody(t *testing.T, fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		if f.mime != "" {
			h.Set("Content-Type", f.mime)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}
