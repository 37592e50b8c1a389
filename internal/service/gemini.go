package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/feedback-board/internal/config"
)

// BotFilterName is matched against reply author names so the responder never
// learns tone from its own earlier replies.
const BotFilterName = "FEEDBACK AI BOT"

// BotDisplayName is the author name stored on automated replies.
const BotDisplayName = "Board Assistant"

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// GeminiClient calls the Gemini generateContent API to draft short replies
// to unanswered feedback.
type GeminiClient struct {
	apiKey     string
	model      string
	endpoint   string // override in tests
	httpClient *http.Client
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
	Temperature      float64         `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// replySchema constrains the model to a single JSON object holding the reply.
var replySchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"reply_text": {
			"type": "STRING",
			"description": "A short, friendly reply to the feedback. At most 20 words."
		}
	},
	"required": ["reply_text"]
}`)

// NewGeminiClient builds a client from config. Returns an error when no API
// key is set so the scheduler can skip its run instead of hammering the API.
func NewGeminiClient(cfg *config.Config) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini is not configured")
	}
	return &GeminiClient{
		apiKey:     cfg.GeminiAPIKey,
		model:      cfg.GeminiModel,
		endpoint:   fmt.Sprintf(geminiEndpoint, cfg.GeminiModel),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// GenerateReply drafts an automated reply to a piece of feedback. toneContext
// carries recent human replies the model should mimic; it may be empty.
func (g *GeminiClient) GenerateReply(ctx context.Context, feedbackText, userName string, toneContext []string) (string, error) {
	contextPrompt := "NO RECENT HUMAN ADMIN REPLIES FOUND. USE A FRIENDLY, LIGHTLY WITTY TONE."
	if len(toneContext) > 0 {
		contextPrompt = "RECENT HUMAN ADMIN REPLIES FOR TONE CONTEXT: " + strings.Join(toneContext, " ||| ")
	}

	system := "You are the feedback board's reply assistant. " +
		"Write one short reply to the user's feedback, at most 20 words. " +
		"Match the tone of the human admin replies given below. " +
		"Be warm with praise, constructive with criticism, and never insult the user. " +
		contextPrompt + " " +
		"Return only the JSON object with the reply text."

	prompt := fmt.Sprintf("Analyze and reply. USER: %s. FEEDBACK: %q", userName, feedbackText)

	reqBody := geminiRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   replySchema,
			Temperature:      0.8,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?key="+g.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error: %s", string(body))
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from gemini")
	}

	var out struct {
		ReplyText string `json:"reply_text"`
	}
	text := strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return "", fmt.Errorf("parse structured reply: %w", err)
	}
	if strings.TrimSpace(out.ReplyText) == "" {
		return "", fmt.Errorf("empty reply from gemini")
	}
	return out.ReplyText, nil
}
