package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/meysamhadeli/ort-curator/config"
	"github.com/meysamhadeli/ort-curator/constants/lipgloss"
	"github.com/meysamhadeli/ort-curator/observability"
	"github.com/meysamhadeli/ort-curator/providers"
	"github.com/meysamhadeli/ort-curator/providers/contracts"
	"github.com/meysamhadeli/ort-curator/token_management"
	contracts2 "github.com/meysamhadeli/ort-curator/token_management/contracts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RootDependencies is everything a run needs once configuration is resolved.
type RootDependencies struct {
	Config              *config.Config
	Cwd                 string
	CurrentChatProvider contracts.IChatAIProvider
	TokenManagement     contracts2.ITokenManagement
	Logger              *zap.Logger
	Out                 io.Writer
}

// NewRootCmd builds the ort-curator command writing user-facing output to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ort-curator",
		Short: "Generate a license compliance curation report from ORT analyzer results.",
		Long: `ort-curator reads the result of an OSS Review Toolkit (ORT) analyzer run,
classifies it as SUCCESS, ERROR or INCOMPLETE, and asks a hosted language model to write
a curation report (or an error analysis) that is saved next to a fixed metadata header.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				fmt.Fprintf(out, "ort-curator version %s\n", config.DefaultConfig.Version)
				return nil
			}

			rootDependencies, err := handleRootCommand(cmd, out)
			if err != nil {
				return err
			}
			defer observability.Sync(rootDependencies.Logger)

			return handleReportCommand(cmd.Context(), rootDependencies)
		},
	}

	rootCmd.SetOut(out)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintln(out, lipgloss.Red.Render(fmt.Sprintf("Error: %v", err)))
		fmt.Fprintf(out, "Run '%s --help' for usage.\n", cmd.CommandPath())
		return err
	})
	config.InitFlags(rootCmd)

	return rootCmd
}

// Execute runs the root command. Any returned error means exit status 1.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return NewRootCmd(os.Stdout).ExecuteContext(ctx)
}

// handleRootCommand resolves configuration, validates credentials and wires the provider.
// Validation happens before the provider exists, so a missing key never reaches the network.
func handleRootCommand(cmd *cobra.Command, out io.Writer) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(out, lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		return nil, err
	}

	cfg, err := config.LoadConfigs(viper.New(), cmd, cwd)
	if err != nil {
		fmt.Fprintln(out, lipgloss.Red.Render(fmt.Sprintf("Error loading configuration: %v", err)))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintln(out, lipgloss.Red.Render("ERROR: AZURE_OPENAI_API_KEY environment variable not set!"))
			fmt.Fprintln(out, "Please set it in your environment or CI secrets, or pass --api_key.")
			return nil, err
		}
		fmt.Fprintln(out, lipgloss.Red.Render(fmt.Sprintf("Invalid configuration: %v", err)))
		return nil, err
	}

	logger := observability.NewStderrLogger(cfg.Log)
	tokenManagement := token_management.NewTokenManagerWithWriter(out)

	chatProvider, err := providers.ChatProviderFactory(cmd.Context(), cfg.AIProviderConfig, tokenManagement, logger)
	if err != nil {
		observability.Sync(logger)
		fmt.Fprintln(out, lipgloss.Red.Render(fmt.Sprintf("Error generating report: %v", err)))
		return nil, err
	}

	logger.Debug("configuration resolved",
		zap.String("provider", cfg.AIProviderConfig.Provider),
		zap.String("model", cfg.AIProviderConfig.Model),
		zap.String("input_file", cfg.InputFile),
		zap.String("output_format", cfg.OutputFormat),
	)

	return &RootDependencies{
		Config:              cfg,
		Cwd:                 cwd,
		CurrentChatProvider: chatProvider,
		TokenManagement:     tokenManagement,
		Logger:              logger,
		Out:                 out,
	}, nil
}
