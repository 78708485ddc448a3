package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meysamhadeli/ort-curator/providers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Validate when a hosted provider has no credential.
var ErrMissingAPIKey = errors.New("AZURE_OPENAI_API_KEY environment variable not set")

// Config represents the structure of the configuration file
type Config struct {
	Version          string                      `mapstructure:"version"`
	InputFile        string                      `mapstructure:"input_file"`
	OutputDir        string                      `mapstructure:"output_dir"`
	OutputFormat     string                      `mapstructure:"output_format"`
	Preview          bool                        `mapstructure:"preview"`
	Theme            string                      `mapstructure:"theme"`
	AIProviderConfig *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
	Log              LogConfig                   `mapstructure:"log"`
}

// LogConfig configures the structured diagnostics logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:      "1.0.0",
	InputFile:    "ort-results/analyzer/analyzer-result.yml",
	OutputDir:    ".",
	OutputFormat: "markdown",
	Preview:      true,
	Theme:        "dracula",
	AIProviderConfig: &providers.AIProviderConfig{
		Provider:    providers.AzureOpenAI,
		BaseURL:     "https://ltts-cariad-ddd-mvp-ai-foundry.cognitiveservices.azure.com",
		Model:       "gpt-4.1-mini",
		Temperature: 0.3,
		MaxTokens:   4000,
		ApiVersion:  "2025-01-01-preview",
		ApiKey:      "",
	},
	Log: LogConfig{
		Level:      "warn",
		Format:     "console",
		File:       "",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   false,
	},
}

const (
	configFileName = "ort-curator-config"
	envPrefix      = "ORT_CURATOR"
)

// LoadConfigs layers defaults, the optional config file, environment variables
// and CLI flags (highest precedence) into a Config.
func LoadConfigs(v *viper.Viper, rootCmd *cobra.Command, cwd string) (*Config, error) {
	var config *Config

	// Set default values using Viper
	setDefaults(v)

	// ORT_CURATOR_INPUT_FILE, ORT_CURATOR_AI_PROVIDER_CONFIG_MODEL, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables to config keys
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	cfgFile, _ := rootCmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else if path := findConfigFile(cwd); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Bind CLI flags to override config values
	if err := bindFlags(v, rootCmd); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// The Azure endpoint default is meaningless to the other providers; they fall back to their own.
	if config.AIProviderConfig != nil && !config.AIProviderConfig.IsAzure() &&
		config.AIProviderConfig.BaseURL == DefaultConfig.AIProviderConfig.BaseURL {
		config.AIProviderConfig.BaseURL = ""
	}

	return config, nil
}

// Validate checks the settings that must be present before any request is sent.
func (c *Config) Validate() error {
	if c.AIProviderConfig == nil {
		return fmt.Errorf("ai_provider_config is missing")
	}
	if c.AIProviderConfig.RequiresApiKey() && strings.TrimSpace(c.AIProviderConfig.ApiKey) == "" {
		return ErrMissingAPIKey
	}
	if c.InputFile == "" {
		return fmt.Errorf("input_file must not be empty")
	}
	return nil
}

// findConfigFile looks for ort-curator-config.{yml,yaml,json} in dir.
func findConfigFile(dir string) string {
	for _, ext := range []string{".yml", ".yaml", ".json"} {
		path := filepath.Join(dir, configFileName+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("input_file", DefaultConfig.InputFile)
	v.SetDefault("output_dir", DefaultConfig.OutputDir)
	v.SetDefault("output_format", DefaultConfig.OutputFormat)
	v.SetDefault("preview", DefaultConfig.Preview)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	v.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	v.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	v.SetDefault("ai_provider_config.temperature", DefaultConfig.AIProviderConfig.Temperature)
	v.SetDefault("ai_provider_config.max_tokens", DefaultConfig.AIProviderConfig.MaxTokens)
	v.SetDefault("ai_provider_config.api_version", DefaultConfig.AIProviderConfig.ApiVersion)
	v.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
	v.SetDefault("log.level", DefaultConfig.Log.Level)
	v.SetDefault("log.format", DefaultConfig.Log.Format)
	v.SetDefault("log.file", DefaultConfig.Log.File)
	v.SetDefault("log.max_size", DefaultConfig.Log.MaxSize)
	v.SetDefault("log.max_backups", DefaultConfig.Log.MaxBackups)
	v.SetDefault("log.max_age", DefaultConfig.Log.MaxAge)
	v.SetDefault("log.compress", DefaultConfig.Log.Compress)
}

// bindEnv binds the Azure variables the CI pipeline exports, ahead of the prefixed ones.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"ai_provider_config.base_url": {"ORT_CURATOR_AI_PROVIDER_CONFIG_BASE_URL", "AZURE_OPENAI_ENDPOINT"},
		"ai_provider_config.api_key":  {"ORT_CURATOR_AI_PROVIDER_CONFIG_API_KEY", "AZURE_OPENAI_API_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// flagBindings maps CLI flags to configuration keys.
var flagBindings = map[string]string{
	"input":       "input_file",
	"output_dir":  "output_dir",
	"format":      "output_format",
	"preview":     "preview",
	"theme":       "theme",
	"provider":    "ai_provider_config.provider",
	"base_url":    "ai_provider_config.base_url",
	"model":       "ai_provider_config.model",
	"temperature": "ai_provider_config.temperature",
	"max_tokens":  "ai_provider_config.max_tokens",
	"api_version": "ai_provider_config.api_version",
	"api_key":     "ai_provider_config.api_key",
	"log_level":   "log.level",
	"log_file":    "log.file",
}

// bindFlags binds the CLI flags to configuration values. Only flags the user
// actually set override lower layers.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) error {
	for flagName, key := range flagBindings {
		flag := rootCmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().StringP("input", "i", DefaultConfig.InputFile, "Path to the ORT analyzer result (YAML or JSON).")
	rootCmd.PersistentFlags().StringP("output_dir", "o", DefaultConfig.OutputDir, "Directory the curation report is written to.")
	rootCmd.PersistentFlags().StringP("format", "f", DefaultConfig.OutputFormat, "Report format: 'markdown' or 'html'.")
	rootCmd.PersistentFlags().Bool("preview", DefaultConfig.Preview, "Print a preview of the generated report.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Chroma theme used for the report preview (e.g., 'dracula', 'monokai').")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	// AI Provider configuration
	rootCmd.PersistentFlags().String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider ('azure-openai', 'openai', 'ollama', 'gemini').")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The endpoint of the AI provider.")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AIProviderConfig.Model, "The model or Azure deployment name used for chat completions.")
	rootCmd.PersistentFlags().Float32("temperature", DefaultConfig.AIProviderConfig.Temperature, "Sampling temperature for the report generation.")
	rootCmd.PersistentFlags().Int("max_tokens", DefaultConfig.AIProviderConfig.MaxTokens, "Maximum number of tokens the model may generate.")
	rootCmd.PersistentFlags().String("api_version", DefaultConfig.AIProviderConfig.ApiVersion, "The Azure OpenAI API version.")
	rootCmd.PersistentFlags().String("api_key", DefaultConfig.AIProviderConfig.ApiKey, "The API key used to authenticate with the AI service provider.")

	// Diagnostics
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.Log.Level, "Diagnostics log level ('debug', 'info', 'warn', 'error').")
	rootCmd.PersistentFlags().String("log_file", DefaultConfig.Log.File, "Optional file receiving JSON diagnostics logs (rotated).")
}
