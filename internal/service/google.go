package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/iliyamo/feedback-board/internal/config"
)

// GoogleVerifier validates Google ID tokens posted by the sign-in widget.
type GoogleVerifier struct {
	clientID   string
	endpoint   string // override in tests
	httpClient *http.Client
}

// GoogleProfile is the identity extracted from a verified ID token.
type GoogleProfile struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// NewGoogleVerifier builds a verifier from config. Returns an error when the
// client id is missing so the sign-in endpoint can answer with a
// configuration error.
func NewGoogleVerifier(cfg *config.Config) (*GoogleVerifier, error) {
	if cfg.GoogleClientID == "" {
		return nil, fmt.Errorf("google sign-in is not configured")
	}
	return &GoogleVerifier{
		clientID:   cfg.GoogleClientID,
		endpoint:   "https://oauth2.googleapis.com/tokeninfo",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Verify checks an ID token with Google and returns the embedded profile.
// The token audience must match the configured client id.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	u := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create tokeninfo request: %w", err)
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tokeninfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google rejected the token")
	}

	var info struct {
		Aud     string `json:"aud"`
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parse tokeninfo response: %w", err)
	}
	if info.Aud != v.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("token payload incomplete")
	}
	return &GoogleProfile{
		GoogleID:  info.Sub,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}
