package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "model": "gpt-4.1-mini",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "## Executive Summary\n\nAll 3 packages carry permissive licenses."}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 812, "completion_tokens": 240, "total_tokens": 1052}
}`

func clearCredentials(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AZURE_OPENAI_API_KEY",
		"AZURE_OPENAI_ENDPOINT",
		"ORT_CURATOR_AI_PROVIDER_CONFIG_API_KEY",
		"ORT_CURATOR_AI_PROVIDER_CONFIG_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

// fakeAzure serves chat completions and counts every request it receives.
func fakeAzure(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/openai/deployments/gpt-4.1-mini/chat/completions", r.URL.Path)
		assert.Equal(t, "2025-01-01-preview", r.URL.Query().Get("api-version"))
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd := NewRootCmd(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func fixture(name string) string {
	return filepath.Join("..", "ort", "testdata", name)
}

func TestRoot_MissingAPIKeyMakesNoRequest(t *testing.T) {
	clearCredentials(t)
	server, hits := fakeAzure(t, http.StatusOK, completionBody)
	t.Setenv("AZURE_OPENAI_ENDPOINT", server.URL)
	outputDir := t.TempDir()

	out, err := runRoot(t, "--input", fixture("analyzer-result-success.yml"), "--output_dir", outputDir)

	require.Error(t, err)
	assert.Contains(t, out, "ERROR: AZURE_OPENAI_API_KEY environment variable not set!")
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))

	entries, readErr := os.ReadDir(outputDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRoot_GeneratesMarkdownReport(t *testing.T) {
	clearCredentials(t)
	server, hits := fakeAzure(t, http.StatusOK, completionBody)
	t.Setenv("AZURE_OPENAI_ENDPOINT", server.URL)
	t.Setenv("AZURE_OPENAI_API_KEY", "test-key")
	outputDir := t.TempDir()

	out, err := runRoot(t, "--input", fixture("analyzer-result-success.yml"), "--output_dir", outputDir)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	matches, err := filepath.Glob(filepath.Join(outputDir, "curation-report-*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	report := string(content)
	assert.True(t, strings.HasPrefix(report, "# ORT Analysis Curation Report\n"))
	assert.Contains(t, report, "**Status:** SUCCESS")
	assert.Contains(t, report, "**Revision:** 3f5c2a9d...")
	assert.Contains(t, report, "All 3 packages carry permissive licenses.")

	assert.Contains(t, out, "Report saved to: "+matches[0])
	assert.Contains(t, out, "Report Preview:")
	assert.Contains(t, out, strings.Repeat("=", 80))
	assert.Contains(t, out, "Successfully generated: "+matches[0])
	assert.Contains(t, out, "Token Used: 1052 (Input: 812, Output: 240)")
	assert.NotContains(t, out, "Open the file in your browser")
}

func TestRoot_GeneratesHTMLErrorReport(t *testing.T) {
	clearCredentials(t)
	server, _ := fakeAzure(t, http.StatusOK, completionBody)
	t.Setenv("AZURE_OPENAI_ENDPOINT", server.URL)
	t.Setenv("AZURE_OPENAI_API_KEY", "test-key")
	outputDir := t.TempDir()

	out, err := runRoot(t, "--input", fixture("analyzer-result-error.yml"), "--output_dir", outputDir,
		"--format", "html", "--preview=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Open the file in your browser to view the report")

	matches, err := filepath.Glob(filepath.Join(outputDir, "curation-report-*.html"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	content, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "#ef4444")
	assert.Contains(t, string(content), "ERROR")
}

func TestRoot_ProviderErrorIsReported(t *testing.T) {
	clearCredentials(t)
	server, hits := fakeAzure(t, http.StatusUnauthorized, `{"error":{"code":"401","message":"Access denied due to invalid subscription key."}}`)
	t.Setenv("AZURE_OPENAI_ENDPOINT", server.URL)
	t.Setenv("AZURE_OPENAI_API_KEY", "test-key")
	outputDir := t.TempDir()

	out, err := runRoot(t, "--input", fixture("analyzer-result-success.yml"), "--output_dir", outputDir)

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.Contains(t, out, "Error generating report:")
	assert.Contains(t, out, "Access denied due to invalid subscription key.")

	entries, readErr := os.ReadDir(outputDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRoot_MissingInputFile(t *testing.T) {
	clearCredentials(t)
	server, hits := fakeAzure(t, http.StatusOK, completionBody)
	t.Setenv("AZURE_OPENAI_ENDPOINT", server.URL)
	t.Setenv("AZURE_OPENAI_API_KEY", "test-key")

	out, err := runRoot(t, "--input", filepath.Join(t.TempDir(), "missing.yml"), "--output_dir", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, out, "Error generating report:")
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestRoot_Version(t *testing.T) {
	clearCredentials(t)

	out, err := runRoot(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "ort-curator version")
}

func TestRoot_FlagErrorsArePrinted(t *testing.T) {
	clearCredentials(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--bogus"}, "unknown flag: --bogus"},
		{"misspelled flag", []string{"--inptu", "x.yml"}, "unknown flag: --inptu"},
		{"invalid number", []string{"--temperature", "warm"}, "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, tt.args...)

			require.Error(t, err)
			assert.NotEmpty(t, out)
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "Run 'ort-curator --help' for usage.")
		})
	}
}
