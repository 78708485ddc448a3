package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/meysamhadeli/ort-curator/constants/lipgloss"
	"github.com/meysamhadeli/ort-curator/curation"
	"github.com/meysamhadeli/ort-curator/ort"
	"github.com/meysamhadeli/ort-curator/utils"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
)

const previewLength = 1000

// handleReportCommand runs load -> generate -> save and reports the outcome.
// Every failure is printed once and returned, which exits with status 1.
func handleReportCommand(ctx context.Context, rootDependencies *RootDependencies) error {
	out := rootDependencies.Out
	cfg := rootDependencies.Config
	logger := rootDependencies.Logger

	fail := func(err error) error {
		logger.Error("report generation failed", zap.Error(err))
		fmt.Fprintln(out, lipgloss.Red.Render(fmt.Sprintf("Error generating report: %v", err)))
		return err
	}

	format, err := curation.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return fail(err)
	}

	doc, err := ort.LoadScanDocument(cfg.InputFile)
	if err != nil {
		return fail(err)
	}
	logger.Info("scan document loaded", zap.String("path", cfg.InputFile), zap.String("digest", doc.Digest))

	generator := curation.NewGenerator(rootDependencies.CurrentChatProvider, format, curation.WithLogger(logger))

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100 * time.Millisecond).WithRemoveWhenDone(true)
	spinnerGenerate, _ := spinner.Start(fmt.Sprintf("%s is writing the curation report...", cfg.AIProviderConfig.Provider))

	report, err := generator.GenerateReport(ctx, doc)
	if spinnerGenerate != nil {
		_ = spinnerGenerate.Stop()
	}
	if err != nil {
		return fail(err)
	}

	outputPath := filepath.Join(cfg.OutputDir, curation.ReportFileName(format, report.GeneratedAt))
	if err := curation.SaveReport(report.Content, outputPath); err != nil {
		return fail(err)
	}
	fmt.Fprintf(out, "Report saved to: %s\n", outputPath)
	fmt.Fprintln(out, lipgloss.StatusStyle(report.Status.String()).Render(fmt.Sprintf("Analysis status: %s", report.Status)))

	if cfg.Preview {
		language := "markdown"
		if format == curation.FormatHTML {
			language = "html"
		}
		if err := utils.RenderPreview(out, curation.Preview(report.Content, previewLength), language, cfg.Theme); err != nil {
			// The report is already on disk; a broken preview is not a failed run.
			logger.Warn("preview rendering failed", zap.Error(err))
		}
	}

	rootDependencies.TokenManagement.DisplayTokens(cfg.AIProviderConfig.Provider, cfg.AIProviderConfig.Model)
	rootDependencies.TokenManagement.ClearToken()

	fmt.Fprintln(out, lipgloss.Green.Render(fmt.Sprintf("✔ Successfully generated: %s", outputPath)))
	if format == curation.FormatHTML {
		fmt.Fprintln(out, lipgloss.Info.Render("✔ Open the file in your browser to view the report"))
	}

	return nil
}
