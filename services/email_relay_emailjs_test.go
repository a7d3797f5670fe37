package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haidershah700/china-pakistan-connect/config"
	"github.com/haidershah700/china-pakistan-connect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emailJSConfig(endpoint string) config.EmailJSConfig {
	return config.EmailJSConfig{
		Endpoint:   endpoint,
		ServiceID:  "svc",
		TemplateID: "tpl",
		PublicKey:  "pub",
	}
}

func TestEmailJSRelaySendsTemplateParams(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	relay := NewEmailJSRelay(emailJSConfig(srv.URL), srv.Client())
	require.True(t, relay.Configured())

	err := relay.Send(context.Background(), models.EmailTemplateParams{
		FullName:   "Ali Khan",
		ImageLinks: "No images uploaded",
	})
	require.NoError(t, err)

	assert.Equal(t, "svc", got["service_id"])
	assert.Equal(t, "tpl", got["template_id"])
	assert.Equal(t, "pub", got["user_id"])
	assert.NotContains(t, got, "accessToken")
	params, ok := got["template_params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ali Khan", params["full_name"])
	assert.Equal(t, "No images uploaded", params["image_links"])
}

func TestEmailJSRelayReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The Public Key is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewEmailJSRelay(emailJSConfig(srv.URL), srv.Client()).
		Send(context.Background(), models.EmailTemplateParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Public Key is invalid")
}

func TestEmailJSRelayUnconfigured(t *testing.T) {
	cfg := emailJSConfig("http://127.0.0.1:1")
	cfg.TemplateID = ""
	relay := NewEmailJSRelay(cfg, nil)

	assert.False(t, relay.Configured())
	assert.ErrorIs(t, relay.Send(context.Background(), models.EmailTemplateParams{}), ErrRelayNotConfigured)
}
