package curation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meysamhadeli/ort-curator/ort"
	"github.com/meysamhadeli/ort-curator/providers/contracts"
	"go.uber.org/zap"
)

// ErrEmptyCompletion is returned when the provider answers without content.
var ErrEmptyCompletion = errors.New("model returned an empty report")

// Report is a finished curation report.
type Report struct {
	Status      ort.Status
	Info        ort.KeyInfo
	Format      Format
	GeneratedAt time.Time
	Content     string
}

// Generator turns scan documents into curation reports.
type Generator struct {
	provider contracts.IChatAIProvider
	format   Format
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Generator)

// WithClock overrides the time source used for the header.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

func NewGenerator(provider contracts.IChatAIProvider, format Format, opts ...Option) *Generator {
	g := &Generator{
		provider: provider,
		format:   format,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateReport classifies the scan, asks the model for the narrative and
// prepends the metadata header.
func (g *Generator) GenerateReport(ctx context.Context, doc *ort.ScanDocument) (*Report, error) {
	info := ort.ExtractKeyInfo(doc)
	status := ort.DetermineStatus(doc)

	g.logger.Info("scan document classified",
		zap.String("status", status.String()),
		zap.String("repository", info.RepositoryURL),
		zap.Int("projects", len(info.Projects)),
		zap.Int("packages", len(info.Packages)),
		zap.Int("issue_collections", len(info.Issues)),
		zap.Strings("package_managers", info.PackageManagers),
	)

	prompt := BuildPrompt(info, status, g.format)
	g.logger.Debug("prompt built", zap.Int("prompt_length", len(prompt)))

	body, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	generatedAt := g.now()
	report := &Report{
		Status:      status,
		Info:        info,
		Format:      g.format,
		GeneratedAt: generatedAt,
	}

	if g.format == FormatHTML {
		report.Content, err = WrapHTML(body, info, status, generatedAt)
		if err != nil {
			return nil, err
		}
		return report, nil
	}

	report.Content = MetadataHeader(info, status, generatedAt) + body
	return report, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	var responseBuilder strings.Builder

	responseChan := g.provider.ChatCompletionRequest(ctx, prompt, SystemPrompt(g.format))
	for response := range responseChan {
		if response.Err != nil {
			return "", fmt.Errorf("failed to get AI response: %w", response.Err)
		}
		if response.Done {
			break
		}
		responseBuilder.WriteString(response.Content)
	}

	if strings.TrimSpace(responseBuilder.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return responseBuilder.String(), nil
}
