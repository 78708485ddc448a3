package utils

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

const previewRuleWidth = 80

// RenderPreview prints content between two rules, highlighted with chroma using
// the given lexer ("markdown", "html") and theme.
func RenderPreview(w io.Writer, content string, language string, theme string) error {
	rule := strings.Repeat("=", previewRuleWidth)

	fmt.Fprintln(w, "\nReport Preview:")
	fmt.Fprintln(w, rule)
	if err := quick.Highlight(w, content+"\n", language, "terminal256", theme); err != nil {
		return fmt.Errorf("error rendering preview: %w", err)
	}
	fmt.Fprintln(w, rule)
	return nil
}
