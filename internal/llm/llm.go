package llm

import (
	"context"
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// Meta holds operational metadata for a single completion.
type Meta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// TextGenerator is an interface for generating text from a prompt.
// Implementations talk to one upstream provider with a fixed model and temperature.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
