package gemini

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/meysamhadeli/ort-curator/providers/contracts"
	"github.com/meysamhadeli/ort-curator/providers/models"
	contracts2 "github.com/meysamhadeli/ort-curator/token_management/contracts"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig implements the Provider interface for the Gemini API.
type GeminiConfig struct {
	BaseURL         string
	Model           string
	ApiKey          string
	Temperature     *float32
	MaxTokens       int
	TokenManagement contracts2.ITokenManagement
	HTTPClient      *http.Client
	Logger          *zap.Logger

	client *genai.Client
}

// NewGeminiChatProvider builds the genai client. No request is sent until
// ChatCompletionRequest is called.
func NewGeminiChatProvider(ctx context.Context, config *GeminiConfig) (contracts.IChatAIProvider, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     config.ApiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: config.HTTPClient,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &GeminiConfig{
		BaseURL:         config.BaseURL,
		Model:           config.Model,
		ApiKey:          config.ApiKey,
		Temperature:     config.Temperature,
		MaxTokens:       config.MaxTokens,
		TokenManagement: config.TokenManagement,
		Logger:          logger.Named("gemini"),
		client:          client,
	}, nil
}

func (geminiProvider *GeminiConfig) ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse {
	responseChan := make(chan models.StreamResponse, 2)

	go func() {
		defer close(responseChan)

		generateConfig := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt, genai.RoleUser),
			Temperature:       geminiProvider.Temperature,
			MaxOutputTokens:   int32(geminiProvider.MaxTokens),
		}

		startTime := time.Now()
		resp, err := geminiProvider.client.Models.GenerateContent(ctx, geminiProvider.Model, genai.Text(userInput), generateConfig)
		if err != nil {
			responseChan <- models.StreamResponse{Err: fmt.Errorf("gemini request failed: %w", err)}
			return
		}

		var promptTokens, completionTokens int
		if resp.UsageMetadata != nil {
			promptTokens = int(resp.UsageMetadata.PromptTokenCount)
			completionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		}

		geminiProvider.Logger.Info("chat completion finished",
			zap.String("model", geminiProvider.Model),
			zap.Duration("duration", time.Since(startTime)),
			zap.Int("prompt_tokens", promptTokens),
			zap.Int("completion_tokens", completionTokens),
		)

		if geminiProvider.TokenManagement != nil {
			geminiProvider.TokenManagement.UsedTokens(promptTokens, completionTokens)
		}

		responseChan <- models.StreamResponse{Content: resp.Text()}
		responseChan <- models.StreamResponse{Done: true}
	}()

	return responseChan
}
