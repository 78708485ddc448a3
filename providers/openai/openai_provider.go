package openai

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
	contracts2 "github.com/meysamhadeli/ort-curator/token_management/contracts"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OpenAIConfig implements the Provider interface for OpenAI and compatible gateways.
type OpenAIConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	Temperature     *float32
	MaxTokens       int
	TokenManagement contracts2.ITokenManagement
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

const defaultBaseURL = "https://api.openai.com/v1"

// NewOpenAIChatProvider initializes a new OpenAI provider.
func NewOpenAIChatProvider(config *OpenAIConfig) contracts.IChatAIProvider {
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

	return &OpenAIConfig{
		BaseURL:         strings.TrimSuffix(baseURL, "/"),
		Model:           config.Model,
		ApiKey:          config.ApiKey,
		Temperature:     config.Temperature,
		MaxTokens:       config.MaxTokens,
		TokenManagement: config.TokenManagement,
		HTTPClient:      httpClient,
		Logger:          logger.Named("openai"),
	}
}

func (openAIProvider *OpenAIConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse, 2)

	go func() {
		defer close(responseChan)

		reqBody := models.ChatCompletionRequest{
			Model: openAIProvider.Model,
			Messages: []models.Message{
				{Role: "system", Content: prompt},
				{Role: "user", Content: userInput},
			},
			Temperature: openAIProvider.Temperature,
			MaxTokens:   openAIProvider.MaxTokens,
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error marshalling request body: %w", err)}
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIProvider.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error creating request: %w", err)}
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+openAIProvider.ApiKey)

		startTime := time.Now()
		resp, err := openAIProvider.HTTPClient.Do(req)
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

		if resp.StatusCode != http.StatusOK {
			var apiError models.AIError
			if err := json.Unmarshal(body, &apiError); err != nil || apiError.Error.Message == "" {
				responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, strings.TrimSpace(string(body)))}
				return
			}
			responseChan <- models.StreamResponse{Err: fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)}
			return
		}

		var completion models.ChatCompletionResponse
		if err := json.Unmarshal(body, &completion); err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error decoding response: %w", err)}
			return
		}
		if len(completion.Choices) == 0 {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("openai returned no choices")}
			return
		}

		openAIProvider.Logger.Info("chat completion finished",
			zap.String("model", openAIProvider.Model),
			zap.Duration("duration", time.Since(startTime)),
			zap.Int("prompt_tokens", completion.Usage.PromptTokens),
			zap.Int("completion_tokens", completion.Usage.CompletionTokens),
		)

		if openAIProvider.TokenManagement != nil {
			openAIProvider.TokenManagement.UsedTokens(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
		}

		responseChan <- models.StreamResponse{Content: completion.Choices[0].Message.Content}
		responseChan <- models.StreamResponse{Done: true}
	}()

	return responseChan
}
