package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meysamhadeli/ort-curator/providers/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ch <-chan models.StreamResponse) (string, error) {
	var content string
	for response := range ch {
		if response.Err != nil {
			return "", response.Err
		}
		content += response.Content
	}
	return content, nil
}

func TestChatCompletionRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var request models.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "gpt-4o-mini", request.Model)
		assert.False(t, request.Stream)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":5,"completion_tokens":1}}`))
	}))
	defer server.Close()

	provider := NewOpenAIChatProvider(&OpenAIConfig{
		BaseURL:    server.URL + "/v1",
		Model:      "gpt-4o-mini",
		ApiKey:     "sk-test",
		HTTPClient: server.Client(),
	})

	content, err := collect(provider.ChatCompletionRequest(context.Background(), "hi", "system"))
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestChatCompletionRequest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"structured error", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`, "API request failed with status code '429' - Rate limit reached"},
		{"plain body", http.StatusInternalServerError, "boom", "API request failed with status code '500' - boom"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "openai returned no choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := NewOpenAIChatProvider(&OpenAIConfig{BaseURL: server.URL, HTTPClient: server.Client()})
			_, err := collect(provider.ChatCompletionRequest(context.Background(), "hi", "system"))
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestNewOpenAIChatProvider_DefaultBaseURL(t *testing.T) {
	provider := NewOpenAIChatProvider(&OpenAIConfig{}).(*OpenAIConfig)
	assert.Equal(t, "https://api.openai.com/v1", provider.BaseURL)
}
