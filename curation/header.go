package curation

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/meysamhadeli/ort-curator/embed_data"
	"github.com/meysamhadeli/ort-curator/ort"
)

const (
	generatedLayout = "2006-01-02 15:04:05"

	markdownRevisionLength = 8
	htmlRevisionLength     = 12
)

var htmlReportTemplate = template.Must(template.New("report").Parse(embed_data.HTMLReportTemplate))

var statusColors = map[ort.Status]string{
	ort.StatusSuccess:    "#10b981",
	ort.StatusError:      "#ef4444",
	ort.StatusIncomplete: "#f59e0b",
}

// MetadataHeader renders the fixed block every markdown report starts with.
func MetadataHeader(info ort.KeyInfo, status ort.Status, generatedAt time.Time) string {
	var header strings.Builder

	header.WriteString("# ORT Analysis Curation Report\n\n")
	// Trailing double spaces are markdown line breaks.
	header.WriteString(fmt.Sprintf("**Generated:** %s  \n", generatedAt.Format(generatedLayout)))
	header.WriteString(fmt.Sprintf("**Status:** %s  \n", status))
	header.WriteString(fmt.Sprintf("**Repository:** %s  \n", info.RepositoryURL))
	header.WriteString(fmt.Sprintf("**Revision:** %s...\n\n", info.ShortRevision(markdownRevisionLength)))
	header.WriteString("---\n\n")

	return header.String()
}

// StatusColor returns the badge color used in HTML reports.
func StatusColor(status ort.Status) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return "#6b7280"
}

// WrapHTML embeds the model's HTML fragment into a standalone page.
func WrapHTML(content string, info ort.KeyInfo, status ort.Status, generatedAt time.Time) (string, error) {
	data := struct {
		Generated   string
		Status      string
		StatusColor template.CSS
		Repository  string
		Revision    string
		Content     template.HTML
		Year        string
	}{
		Generated:   generatedAt.Format(generatedLayout),
		Status:      status.String(),
		StatusColor: template.CSS(StatusColor(status)),
		Repository:  info.RepositoryURL,
		Revision:    info.ShortRevision(htmlRevisionLength),
		// The fragment comes from the model and is rendered as-is.
		Content: template.HTML(content),
		Year:    generatedAt.Format("2006"),
	}

	var buf bytes.Buffer
	if err := htmlReportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.String(), nil
}
