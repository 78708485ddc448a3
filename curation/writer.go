package curation

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const reportTimestampLayout = "20060102-150405"

// ReportFileName returns curation-report-YYYYMMDD-HHMMSS with the format's extension.
func ReportFileName(format Format, t time.Time) string {
	return fmt.Sprintf("curation-report-%s%s", t.Format(reportTimestampLayout), format.Extension())
}

// SaveReport writes the report to outputPath, creating missing directories.
func SaveReport(report string, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(outputPath, []byte(report), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", outputPath, err)
	}
	return nil
}

// Preview returns the first n characters of the report followed by an ellipsis.
func Preview(report string, n int) string {
	return truncate(report, n) + "..."
}
