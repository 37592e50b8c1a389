package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func googleTestVerifier(srv *httptest.Server) *GoogleVerifier {
	return &GoogleVerifier{
		clientID:   "client-123",
		endpoint:   srv.URL,
		httpClient: srv.Client(),
	}
}

func TestGoogleVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "raw-token", r.URL.Query().Get("id_token"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"aud":     "client-123",
			"sub":     "google-uid-9",
			"email":   "alice@example.com",
			"name":    "Alice",
			"picture": "https://lh3.example.com/pic.png",
		})
	}))
	defer srv.Close()

	p, err := googleTestVerifier(srv).Verify(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "google-uid-9", p.GoogleID)
	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "https://lh3.example.com/pic.png", p.AvatarURL)
}

func TestGoogleVerifyAudienceMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"aud":   "some-other-client",
			"sub":   "google-uid-9",
			"email": "alice@example.com",
		})
	}))
	defer srv.Close()

	_, err := googleTestVerifier(srv).Verify(context.Background(), "raw-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audience")
}

func TestGoogleVerifyRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := googleTestVerifier(srv).Verify(context.Background(), "bad")
	assert.Error(t, err)
}
