package utils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appsScriptServer(t *testing.T, status int, reply string, seen *appsScriptRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAppsScriptUploadFileURLReply(t *testing.T) {
	var seen appsScriptRequest
	srv := appsScriptServer(t, http.StatusOK, `{"fileUrl":"https://drive.google.com/file/d/f1/view","fileId":"f1"}`, &seen)

	b, err := NewAppsScriptBackend(config.AppsScriptConfig{WebAppURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	att, err := b.Upload(context.Background(), models.AttachmentCandidate{
		Name: "photo.png", MimeType: "image/png", Data: []byte("hello"),
	})
	require.NoError(t, err)

	assert.Equal(t, "photo.png", seen.Filename)
	assert.Equal(t, "image/png", seen.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("hello")), seen.Data)

	assert.Equal(t, "f1", att.ID)
	assert.Equal(t, "https://drive.google.com/file/d/f1/view", att.URL)
	assert.Equal(t, "photo.png", att.SourceFilename)
}

func TestAppsScriptUploadFilesReply(t *testing.T) {
	srv := appsScriptServer(t, http.StatusOK, `{"success":true,"files":[{"id":"x","name":"a","webContentLink":"https://dl/x"}]}`, nil)
	b, err := NewAppsScriptBackend(config.AppsScriptConfig{WebAppURL: srv.URL}, srv.Client())
	require.NoError(t, err)

	att, err := b.Upload(context.Background(), models.AttachmentCandidate{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, "https://dl/x", att.URL)
	assert.Equal(t, "https://dl/x", att.WebContentLink)
}

func TestAppsScriptUploadFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		reply  string
		want   string
	}{
		{"non-2xx", http.StatusBadGateway, `{}`, "status 502"},
		{"success false", http.StatusOK, `{"success":false,"error":"quota"}`, "quota"},
		{"no url", http.StatusOK, `{"success":true}`, "no file url"},
		{"not json", http.StatusOK, `<html>`, "decode"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := appsScriptServer(t, tc.status, tc.reply, nil)
			b, err := NewAppsScriptBackend(config.AppsScriptConfig{WebAppURL: srv.URL}, srv.Client())
			require.NoError(t, err)

			_, err = b.Upload(context.Background(), models.AttachmentCandidate{Name: "a"})
			assert.ErrorContains(t, err, tc.want)
		})
	}
}
