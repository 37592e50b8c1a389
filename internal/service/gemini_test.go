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

func geminiTestClient(srv *httptest.Server) *GeminiClient {
	return &GeminiClient{
		apiKey:     "test-key",
		model:      "gemini-2.5-flash",
		endpoint:   srv.URL,
		httpClient: srv.Client(),
	}
}

func TestGenerateReply(t *testing.T) {
	var captured geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": `{"reply_text":"Thanks a lot, glad you liked it!"}`},
				}}},
			},
		})
	}))
	defer srv.Close()

	g := geminiTestClient(srv)
	reply, err := g.GenerateReply(context.Background(), "Love this site!", "Alice",
		[]string{"Thanks buddy!", "Appreciate it!"})
	require.NoError(t, err)
	assert.Equal(t, "Thanks a lot, glad you liked it!", reply)

	require.NotNil(t, captured.SystemInstruction)
	sys := captured.SystemInstruction.Parts[0].Text
	assert.Contains(t, sys, "RECENT HUMAN ADMIN REPLIES FOR TONE CONTEXT: Thanks buddy! ||| Appreciate it!")
	require.NotNil(t, captured.GenerationConfig)
	assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "Alice")
	assert.Contains(t, captured.Contents[0].Parts[0].Text, "Love this site!")
}

func TestGenerateReplyNoToneContext(t *testing.T) {
	var captured geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": `{"reply_text":"Noted!"}`},
				}}},
			},
		})
	}))
	defer srv.Close()

	g := geminiTestClient(srv)
	_, err := g.GenerateReply(context.Background(), "meh", "Bob", nil)
	require.NoError(t, err)
	assert.Contains(t, captured.SystemInstruction.Parts[0].Text, "NO RECENT HUMAN ADMIN REPLIES FOUND")
}

func TestGenerateReplyAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := geminiTestClient(srv)
	_, err := g.GenerateReply(context.Background(), "hi", "Bob", nil)
	assert.Error(t, err)
}

func TestGenerateReplyEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	g := geminiTestClient(srv)
	_, err := g.GenerateReply(context.Background(), "hi", "Bob", nil)
	assert.Error(t, err)
}
