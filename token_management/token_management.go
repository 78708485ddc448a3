package token_management

import (
	"fmt"
	"io"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/meysamhadeli/ort-curator/constants/lipgloss"
	"github.com/meysamhadeli/ort-curator/embed_data"
	"github.com/meysamhadeli/ort-curator/token_management/contracts"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tokenManager accumulates usage reported by chat providers.
type tokenManager struct {
	mu              sync.Mutex
	usedToken       int
	usedInputToken  int
	usedOutputToken int
	out             io.Writer
}

type details struct {
	MaxTokens                      int     `json:"max_tokens"`
	MaxInputTokens                 int     `json:"max_input_tokens"`
	MaxOutputTokens                int     `json:"max_output_tokens"`
	InputCostPerMillionTokens      float64 `json:"input_cost_per_million_tokens,omitempty"`
	OutputCostPerMillionTokens     float64 `json:"output_cost_per_million_tokens,omitempty"`
	CacheReadInputMillionTokenCost float64 `json:"cache_read_input_million_token_cost,omitempty"`
	Mode                           string  `json:"mode"`
	SupportsFunctionCalling        bool    `json:"supports_function_calling,omitempty"`
}

type Models struct {
	ModelDetails map[string]details `json:"models"`
}

var (
	modelsOnce sync.Once
	modelTable Models
	modelsErr  error
)

// NewTokenManagerWithWriter creates a token manager printing to out.
func NewTokenManagerWithWriter(out io.Writer) contracts.ITokenManagement {
	return &tokenManager{out: out}
}

// UsedTokens accumulates the token count for the run.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

func (tm *tokenManager) DisplayTokens(chatProviderName string, chatModel string) {
	total, input, output := tm.GetCurrentTokenUsage()
	cost := tm.CalculateCost(chatProviderName, chatModel, input, output)

	tokenInfo := fmt.Sprintf("Token Used: %d (Input: %d, Output: %d) - Cost: %.6f $ - Chat Model: %s", total, input, output, cost, chatModel)

	fmt.Fprintln(tm.out, lipgloss.BoxStyle.Render(tokenInfo))
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) ClearToken() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}

func (tm *tokenManager) CalculateCost(providerName string, modelName string, inputToken int, outputToken int) float64 {
	modelDetails, err := getModelDetails(providerName, modelName)
	if err != nil {
		return 0
	}

	// Prices are per million tokens
	inputCost := float64(inputToken) * modelDetails.InputCostPerMillionTokens / 1000000.0
	outputCost := float64(outputToken) * modelDetails.OutputCostPerMillionTokens / 1000000.0

	return inputCost + outputCost
}

func loadModels() (Models, error) {
	modelsOnce.Do(func() {
		modelTable = Models{ModelDetails: make(map[string]details)}
		modelsErr = json.Unmarshal(embed_data.ModelDetails, &modelTable)
	})
	return modelTable, modelsErr
}

func getModelDetails(providerName string, modelName string) (details, error) {
	providerName = strings.ToLower(providerName)
	modelName = strings.ToLower(modelName)

	if strings.HasPrefix(providerName, "azure") {
		modelName = "azure/" + modelName
	}

	models, err := loadModels()
	if err != nil {
		return details{}, fmt.Errorf("failed to load model details: %w", err)
	}

	model, exists := models.ModelDetails[modelName]
	if !exists {
		return details{}, fmt.Errorf("model details price with name '%s' not found for provider '%s'", modelName, providerName)
	}

	return model, nil
}
