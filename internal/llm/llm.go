// Package llm wraps the hosted models used to turn free text into recipes.
package llm

import (
	"context"
)

// Usage tracks the tokens consumed by a request.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// Request is a single-turn prompt. System carries the instructions and Input
// the user-provided text.
type Request struct {
	System      string
	Input       string
	Temperature float32
	// JSON asks the provider to constrain the response to a JSON object.
	JSON bool
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   Usage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, req Request) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
