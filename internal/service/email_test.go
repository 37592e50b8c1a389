package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailSend(t *testing.T) {
	var gotAuth string
	var gotMsg EmailMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotMsg))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := &EmailClient{apiURL: srv.URL, apiKey: "relay-key", httpClient: srv.Client()}
	err := e.Send(context.Background(), EmailMessage{
		To:      "alice@example.com",
		Subject: "Verify your email",
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer relay-key", gotAuth)
	assert.Equal(t, "alice@example.com", gotMsg.To)
	assert.Equal(t, "Verify your email", gotMsg.Subject)
	assert.NotEmpty(t, gotMsg.Text) // fallback text is filled in
}

func TestEmailSendRelayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "smtp down"})
	}))
	defer srv.Close()

	e := &EmailClient{apiURL: srv.URL, apiKey: "relay-key", httpClient: srv.Client()}
	err := e.Send(context.Background(), EmailMessage{To: "x@example.com", Subject: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "smtp down")
}

func TestEmailSendContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	e := &EmailClient{apiURL: srv.URL, apiKey: "relay-key", httpClient: srv.Client()}
	err := e.Send(ctx, EmailMessage{To: "x@example.com", Subject: "s"})
	assert.Error(t, err)
}

func TestActionMailHTML(t *testing.T) {
	out := ActionMailHTML(MailVerifyRequest, "Verify Your Email", "Alice",
		"Verify Email", "https://example.com/verify?token=abc")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Verify Email")
	assert.Contains(t, out, "https://example.com/verify?token=abc")
}
