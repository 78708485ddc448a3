package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/meysamhadeli/ort-curator/providers/azure_openai"
	"github.com/meysamhadeli/ort-curator/providers/contracts"
	"github.com/meysamhadeli/ort-curator/providers/gemini"
	"github.com/meysamhadeli/ort-curator/providers/ollama"
	"github.com/meysamhadeli/ort-curator/providers/openai"
	contracts2 "github.com/meysamhadeli/ort-curator/token_management/contracts"
	"go.uber.org/zap"
)

const (
	AzureOpenAI = "azure-openai"
	OpenAI      = "openai"
	Ollama      = "ollama"
	Gemini      = "gemini"
)

// AIProviderConfig holds the settings shared by every chat provider.
type AIProviderConfig struct {
	Provider    string  `mapstructure:"provider"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	ApiVersion  string  `mapstructure:"api_version"`
	ApiKey      string  `mapstructure:"api_key"`
}

// RequiresApiKey reports whether the provider is a hosted service that needs a credential.
func (c *AIProviderConfig) RequiresApiKey() bool {
	return !strings.EqualFold(c.Provider, Ollama)
}

// IsAzure reports whether the provider targets an Azure OpenAI deployment.
func (c *AIProviderConfig) IsAzure() bool {
	provider := strings.ToLower(c.Provider)
	return provider == AzureOpenAI || provider == "azure"
}

// ChatProviderFactory creates a chat provider for the configured provider name.
func ChatProviderFactory(ctx context.Context, config *AIProviderConfig, tokenManagement contracts2.ITokenManagement, logger *zap.Logger) (contracts.IChatAIProvider, error) {
	temperature := config.Temperature

	switch strings.ToLower(config.Provider) {
	case AzureOpenAI, "azure":
		return azure_openai.NewAzureOpenAIChatProvider(&azure_openai.AzureOpenAIConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiVersion:      config.ApiVersion,
			ApiKey:          config.ApiKey,
			Temperature:     &temperature,
			MaxTokens:       config.MaxTokens,
			TokenManagement: tokenManagement,
			Logger:          logger,
		}), nil
	case OpenAI:
		return openai.NewOpenAIChatProvider(&openai.OpenAIConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          config.ApiKey,
			Temperature:     &temperature,
			MaxTokens:       config.MaxTokens,
			TokenManagement: tokenManagement,
			Logger:          logger,
		}), nil
	case Ollama:
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			Temperature:     &temperature,
			MaxTokens:       config.MaxTokens,
			TokenManagement: tokenManagement,
			Logger:          logger,
		}), nil
	case Gemini:
		return gemini.NewGeminiChatProvider(ctx, &gemini.GeminiConfig{
			BaseURL:         config.BaseURL,
			Model:           config.Model,
			ApiKey:          config.ApiKey,
			Temperature:     &temperature,
			MaxTokens:       config.MaxTokens,
			TokenManagement: tokenManagement,
			Logger:          logger,
		})
	default:
		return nil, fmt.Errorf("provider '%s' not found, supported: %s, %s, %s, %s", config.Provider, AzureOpenAI, OpenAI, Ollama, Gemini)
	}
}
