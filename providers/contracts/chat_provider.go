package contracts

import (
	"context"

	"github.com/meysamhadeli/ort-curator/providers/models"
)

// IChatAIProvider sends one chat completion request. The returned channel
// carries the completion followed by Done, or a single Err, and is then closed.
type IChatAIProvider interface {
	ChatCompletionRequest(ctx context.Context, userInput string, prompt string) <-chan models.StreamResponse
}
