package curation

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/meysamhadeli/ort-curator/embed_data"
	"github.com/meysamhadeli/ort-curator/ort"
)

const (
	// maxPromptPackages bounds the package listing sent to the model.
	maxPromptPackages = 10
	// maxIssueMessageLength bounds each issue message sent to the model.
	maxIssueMessageLength = 500
)

const markdownSystemPrompt = "You are an expert software compliance analyst specializing in open-source license compliance and dependency analysis. " +
	"You always produce well-formatted, valid markdown with proper heading hierarchy, blank lines, and consistent formatting."

const htmlSystemPrompt = "You are an expert software compliance analyst specializing in open-source license compliance and dependency analysis. " +
	"You generate clean HTML content (without html/head/body tags) with proper semantic structure and class names for styling."

const markdownReminder = "\n\nREMEMBER: Strictly follow proper markdown formatting with blank lines, proper heading hierarchy, and consistent indentation. " +
	"The output must be valid, well-formatted markdown."

const htmlReminder = "\n\nREMEMBER: Return ONLY content HTML without <html>, <head>, <body>, or <style> tags. " +
	"Use proper semantic HTML5 with class names for styling."

// SystemPrompt returns the analyst persona for the given format.
func SystemPrompt(format Format) string {
	if format == FormatHTML {
		return htmlSystemPrompt
	}
	return markdownSystemPrompt
}

// BuildPrompt renders the user prompt for one scan.
func BuildPrompt(info ort.KeyInfo, status ort.Status, format Format) string {
	var prompt strings.Builder

	prompt.WriteString("You are an expert software compliance analyst reviewing ORT (OSS Review Toolkit) analysis results.\n\n")
	prompt.WriteString(fmt.Sprintf("**Analysis Status**: %s\n\n", status))
	prompt.WriteString("**Repository Information**:\n")
	prompt.WriteString(fmt.Sprintf("- Repository: %s\n", info.RepositoryURL))
	prompt.WriteString(fmt.Sprintf("- Revision: %s\n", info.Revision))
	prompt.WriteString(fmt.Sprintf("- ORT Version: %s\n\n", info.OrtVersion))
	prompt.WriteString("**Scan Details**:\n")
	prompt.WriteString(fmt.Sprintf("- Start Time: %s\n", info.ScanStart))
	prompt.WriteString(fmt.Sprintf("- End Time: %s\n\n", info.ScanEnd))
	prompt.WriteString(fmt.Sprintf("**Projects Analyzed**: %d\n", len(info.Projects)))
	prompt.WriteString(fmt.Sprintf("**Packages Detected**: %d\n", len(info.Packages)))
	prompt.WriteString(fmt.Sprintf("**Issues Found**: %d\n\n", len(info.Issues)))

	if status == ort.StatusSuccess {
		prompt.WriteString("\n")
		prompt.WriteString(successTask(format))
		writePackages(&prompt, info.Packages)
	} else {
		// Incomplete scans get the error analysis too; there is nothing to curate.
		prompt.WriteString("\n")
		prompt.WriteString(errorTask(format))
		writeIssues(&prompt, info.Issues)
	}

	if format == FormatHTML {
		prompt.WriteString(htmlReminder)
	} else {
		prompt.WriteString(markdownReminder)
	}

	return prompt.String()
}

func successTask(format Format) string {
	if format == FormatHTML {
		return embed_data.HTMLSuccessTask
	}
	return embed_data.MarkdownSuccessTask
}

func errorTask(format Format) string {
	if format == FormatHTML {
		return embed_data.HTMLErrorTask
	}
	return embed_data.MarkdownErrorTask
}

func writePackages(prompt *strings.Builder, packages []ort.Package) {
	for i, pkg := range packages {
		if i >= maxPromptPackages {
			break
		}
		prompt.WriteString(fmt.Sprintf("\n- %s", pkg.DisplayID()))
		prompt.WriteString(fmt.Sprintf("\n  License: %s", strings.Join(pkg.DisplayLicenses(), ", ")))
		prompt.WriteString(fmt.Sprintf("\n  Homepage: %s", pkg.DisplayHomepage()))
	}
}

func writeIssues(prompt *strings.Builder, issues map[string][]ort.Issue) {
	for _, projectID := range slices.Sorted(maps.Keys(issues)) {
		prompt.WriteString(fmt.Sprintf("\n\nProject: %s", projectID))
		for _, issue := range issues[projectID] {
			prompt.WriteString(fmt.Sprintf("\n- Severity: %s", issue.DisplaySeverity()))
			prompt.WriteString(fmt.Sprintf("\n- Source: %s", issue.DisplaySource()))
			prompt.WriteString(fmt.Sprintf("\n- Message: %s...", truncate(issue.DisplayMessage(), maxIssueMessageLength)))
		}
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
