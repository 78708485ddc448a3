package ollama

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/meysamhadeli/ort-curator/providers/contracts"
	"github.com/meysamhadeli/ort-curator/providers/models"
	ollama_models "github.com/meysamhadeli/ort-curator/providers/ollama/models"
	contracts2 "github.com/meysamhadeli/ort-curator/token_management/contracts"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OllamaConfig implements the Provider interface for a local Ollama server.
type OllamaConfig struct {
	BaseURL         string
	Model           string
	Temperature     *float32
	MaxTokens       int
	TokenManagement contracts2.ITokenManagement
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

const (
	defaultBaseURL = "http://localhost:11434/api"
)

// NewOllamaChatProvider initializes a new Ollama provider.
func NewOllamaChatProvider(config *OllamaConfig) contracts.IChatAIProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OllamaConfig{
		BaseURL:         strings.TrimSuffix(baseURL, "/"),
		Model:           config.Model,
		Temperature:     config.Temperature,
		MaxTokens:       config.MaxTokens,
		TokenManagement: config.TokenManagement,
		HTTPClient:      httpClient,
		Logger:          logger.Named("ollama"),
	}
}

func (ollamaProvider *OllamaConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse, 2)

	go func() {
		defer close(responseChan)

		// Prepare the request body
		reqBody := ollama_models.OllamaChatCompletionRequest{
			Model: ollamaProvider.Model,
			Messages: []ollama_models.Message{
				{Role: "system", Content: prompt},
				{Role: "user", Content: userInput},
			},
			Stream: false,
			Options: ollama_models.Options{
				Temperature: ollamaProvider.Temperature,
				NumPredict:  ollamaProvider.MaxTokens,
			},
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error marshalling request body: %w", err)}
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/chat", ollamaProvider.BaseURL), bytes.NewBuffer(jsonData))
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error creating request: %w", err)}
			return
		}

		req.Header.Set("Content-Type", "application/json")

		startTime := time.Now()
		resp, err := ollamaProvider.HTTPClient.Do(req)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("request canceled: %w", err)}
				return
			}
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error sending request: %w", err)}
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error reading response: %w", err)}
			return
		}

		var response ollama_models.OllamaChatCompletionResponse
		if err := json.Unmarshal(body, &response); err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error decoding response (status %d): %w", resp.StatusCode, err)}
			return
		}

		if resp.StatusCode != http.StatusOK {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, response.Error)}
			return
		}

		ollamaProvider.Logger.Info("chat completion finished",
			zap.String("model", ollamaProvider.Model),
			zap.Duration("duration", time.Since(startTime)),
			zap.Int("prompt_tokens", response.PromptEvalCount),
			zap.Int("completion_tokens", response.EvalCount),
		)

		// Count total tokens usage
		if ollamaProvider.TokenManagement != nil && response.PromptEvalCount > 0 {
			ollamaProvider.TokenManagement.UsedTokens(response.PromptEvalCount, response.EvalCount)
		}

		responseChan <- models.StreamResponse{Content: response.Message.Content}
		responseChan <- models.StreamResponse{Done: true}
	}()

	return responseChan
}
