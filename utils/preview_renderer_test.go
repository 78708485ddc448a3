package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPreview(t *testing.T) {
	var buf bytes.Buffer

	err := RenderPreview(&buf, "# ORT Analysis Curation Report\n\n**Status:** SUCCESS...", "markdown", "dracula")
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\nReport Preview:\n"))
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("=", 80)))
	assert.Contains(t, out, "ORT Analysis Curation Report")
}

func TestRenderPreview_UnknownLexerFallsBack(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RenderPreview(&buf, "<section>ok</section>", "no-such-lexer", "no-such-theme"))
	assert.Contains(t, buf.String(), "ok")
}
