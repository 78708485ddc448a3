package azure_openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/meysamhadeli/ort-curator/providers/contracts"
	"github.com/meysamhadeli/ort-curator/providers/models"
	contracts2 "github.com/meysamhadeli/ort-curator/token_management/contracts"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AzureOpenAIConfig implements the Provider interface for Azure OpenAI deployments.
type AzureOpenAIConfig struct {
	BaseURL         string
	Model           string
	ApiVersion      string
	ApiKey          string
	Temperature     *float32
	MaxTokens       int
	TokenManagement contracts2.ITokenManagement
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

const (
	defaultBaseURL    = "https://ltts-cariad-ddd-mvp-ai-foundry.cognitiveservices.azure.com"
	defaultApiVersion = "2025-01-01-preview"
)

// NewAzureOpenAIChatProvider initializes a new Azure OpenAI provider.
func NewAzureOpenAIChatProvider(config *AzureOpenAIConfig) contracts.IChatAIProvider {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiVersion := config.ApiVersion
	if apiVersion == "" {
		apiVersion = defaultApiVersion
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AzureOpenAIConfig{
		BaseURL:         strings.TrimSuffix(baseURL, "/"),
		Model:           config.Model,
		ApiVersion:      apiVersion,
		ApiKey:          config.ApiKey,
		Temperature:     config.Temperature,
		MaxTokens:       config.MaxTokens,
		TokenManagement: config.TokenManagement,
		HTTPClient:      httpClient,
		Logger:          logger.Named("azure-openai"),
	}
}

func (azureOpenAIProvider *AzureOpenAIConfig) endpoint() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		azureOpenAIProvider.BaseURL, url.PathEscape(azureOpenAIProvider.Model), url.QueryEscape(azureOpenAIProvider.ApiVersion))
}

func (azureOpenAIProvider *AzureOpenAIConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse, 2)

	go func() {
		defer close(responseChan)

		reqBody := models.ChatCompletionRequest{
			Messages: []models.Message{
				{Role: "system", Content: prompt},
				{Role: "user", Content: userInput},
			},
			Temperature: azureOpenAIProvider.Temperature,
			MaxTokens:   azureOpenAIProvider.MaxTokens,
			Stream:      false,
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error marshalling request body: %w", err)}
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, azureOpenAIProvider.endpoint(), bytes.NewBuffer(jsonData))
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error creating request: %w", err)}
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("api-key", azureOpenAIProvider.ApiKey)

		startTime := time.Now()
		resp, err := azureOpenAIProvider.HTTPClient.Do(req)
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
			responseChan <- models.StreamResponse{Err: apiError(resp.StatusCode, body)}
			return
		}

		var completion models.ChatCompletionResponse
		if err := json.Unmarshal(body, &completion); err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("error decoding response: %w", err)}
			return
		}

		if len(completion.Choices) == 0 {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("azure openai returned no choices")}
			return
		}

		azureOpenAIProvider.Logger.Info("chat completion finished",
			zap.String("deployment", azureOpenAIProvider.Model),
			zap.Duration("duration", time.Since(startTime)),
			zap.Int("prompt_tokens", completion.Usage.PromptTokens),
			zap.Int("completion_tokens", completion.Usage.CompletionTokens),
			zap.String("finish_reason", completion.Choices[0].FinishReason),
		)

		if azureOpenAIProvider.TokenManagement != nil {
			azureOpenAIProvider.TokenManagement.UsedTokens(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
		}

		responseChan <- models.StreamResponse{Content: completion.Choices[0].Message.Content}
		responseChan <- models.StreamResponse{Done: true}
	}()

	return responseChan
}

func apiError(statusCode int, body []byte) error {
	var aiError models.AIError
	if err := json.Unmarshal(body, &aiError); err != nil || aiError.Error.Message == "" {
		return fmt.Errorf("API request failed with status code '%d' - %s", statusCode, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("API request failed with status code '%d' - %s", statusCode, aiError.Error.Message)
}
