package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/iliyamo/feedback-board/internal/config"
)

// EmailClient delivers mail through an external HTTP relay. The relay holds
// the SMTP credentials; this service only posts JSON to it.
type EmailClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// EmailMessage is one outbound mail.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// NewEmailClient builds a client from config. Returns an error when the relay
// is not configured so callers can report it instead of posting to nowhere.
func NewEmailClient(cfg *config.Config) (*EmailClient, error) {
	if cfg.EmailAPIURL == "" || cfg.EmailAPIKey == "" {
		return nil, fmt.Errorf("email relay is not configured")
	}
	return &EmailClient{
		apiURL:     cfg.EmailAPIURL,
		apiKey:     cfg.EmailAPIKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Send posts one message to the relay.
func (e *EmailClient) Send(ctx context.Context, msg EmailMessage) error {
	if msg.Text == "" {
		msg.Text = "This is a fallback text message."
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Message == "" {
			body.Message = "unknown relay error"
		}
		return fmt.Errorf("email relay returned %d: %s", resp.StatusCode, body.Message)
	}
	return nil
}

// ActionMailKind selects the wording of an action mail.
type ActionMailKind string

const (
	MailVerifyRequest ActionMailKind = "verify-request"
	MailVerifyConfirm ActionMailKind = "verify-confirm"
	MailResetRequest  ActionMailKind = "reset-request"
	MailResetConfirm  ActionMailKind = "reset-confirm"
)

func actionMessage(kind ActionMailKind) string {
	switch kind {
	case MailResetRequest:
		return "A password reset request has been initiated for your account.<br>Click the button below to reset your password."
	case MailResetConfirm:
		return "Your password has been successfully reset.<br>You can now log in with your new password."
	case MailVerifyRequest:
		return "Your account has been successfully created.<br>Click the button below to verify your email and unlock all features."
	case MailVerifyConfirm:
		return "Your email has been successfully verified.<br>Welcome aboard!"
	default:
		return "This is a confirmation that your request was completed successfully.<br>Click the button below to continue."
	}
}

// ActionMailHTML renders the minimal transactional mail body used for
// verification and password-reset flows: greeting, explanation, link.
func ActionMailHTML(kind ActionMailKind, heading, name, buttonText, link string) string {
	heading = html.EscapeString(heading)
	name = html.EscapeString(name)
	buttonText = html.EscapeString(buttonText)
	return fmt.Sprintf(
		`<h2>%s</h2><p>Hello <strong>%s</strong>,</p><p>%s</p><p><a href="%s">%s</a></p><p>This link expires shortly.</p>`,
		heading, name, actionMessage(kind), link, buttonText)
}
