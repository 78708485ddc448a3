package gemini

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meysamhadeli/ort-curator/token_management"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletionRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "summarize the scan")
		assert.Contains(t, string(body), "be an analyst")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"gemini report"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":90,"candidatesTokenCount":20,"totalTokenCount":110}}`))
	}))
	defer server.Close()

	tokens := token_management.NewTokenManagerWithWriter(&bytes.Buffer{})
	temperature := float32(0.3)
	provider, err := NewGeminiChatProvider(context.Background(), &GeminiConfig{
		BaseURL:         server.URL,
		Model:           "gemini-2.5-flash",
		ApiKey:          "test-key",
		Temperature:     &temperature,
		MaxTokens:       4000,
		TokenManagement: tokens,
		HTTPClient:      server.Client(),
	})
	require.NoError(t, err)

	var content string
	for response := range provider.ChatCompletionRequest(context.Background(), "summarize the scan", "be an analyst") {
		require.NoError(t, response.Err)
		content += response.Content
	}

	assert.Equal(t, "gemini report", content)
	total, input, output := tokens.GetCurrentTokenUsage()
	assert.Equal(t, 110, total)
	assert.Equal(t, 90, input)
	assert.Equal(t, 20, output)
}

func TestChatCompletionRequest_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid.","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	provider, err := NewGeminiChatProvider(context.Background(), &GeminiConfig{
		BaseURL:    server.URL,
		Model:      "gemini-2.5-flash",
		ApiKey:     "bad-key",
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	var gotErr error
	for response := range provider.ChatCompletionRequest(context.Background(), "hi", "system") {
		gotErr = response.Err
	}

	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "API key not valid.")
}
