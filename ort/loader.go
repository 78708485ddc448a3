package ort

import (
	"fmt"
	"os"

	"github.com/zeebo/xxh3"
	"gopkg.in/yaml.v3"
)

// LoadScanDocument reads an analyzer result file. YAML and JSON are both accepted.
func LoadScanDocument(filePath string) (*ScanDocument, error) {
	//nolint:gosec // G304: path is the configured analyzer result
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan document %s: %w", filePath, err)
	}

	return ParseScanDocument(data)
}

// ParseScanDocument decodes analyzer result bytes. An empty input yields an empty document.
func ParseScanDocument(data []byte) (*ScanDocument, error) {
	var doc ScanDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scan document: %w", err)
	}

	doc.Digest = fmt.Sprintf("%016x", xxh3.Hash(data))
	return &doc, nil
}
