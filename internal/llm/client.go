package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"goalfit/internal/config"
)

var (
	// ErrGenerationFailed is returned when the upstream call errors, times out
	// or returns an empty payload.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrUpstreamTimeout marks a generation failure caused by the bounded timeout.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrEmptyPrompt     = errors.New("prompt is empty")
)

// Recorder persists per-call metadata. *metrics.Store satisfies it.
type Recorder interface {
	RecordMeta(meta Meta) error
}

// Client wraps a TextGenerator with a bounded timeout, response trimming and
// usage recording. It never retries; retry policy belongs to the caller.
type Client struct {
	gen      TextGenerator
	timeout  time.Duration
	recorder Recorder
}

// NewClient creates a Client. A zero timeout disables the bound and a nil
// recorder disables metrics.
func NewClient(gen TextGenerator, timeout time.Duration, recorder Recorder) *Client {
	return &Client{gen: gen, timeout: timeout, recorder: recorder}
}

// Complete sends prompt upstream and returns the trimmed, non-empty text.
func (c *Client) Complete(ctx context.Context, agentName, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, prompt)
	latency := time.Since(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w after %s", ErrGenerationFailed, ErrUpstreamTimeout, c.timeout)
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if c.recorder != nil {
		if err := c.recorder.RecordMeta(Meta{AgentName: agentName, Usage: resp.Usage, Latency: latency}); err != nil {
			log.Printf("Warning: failed to record %s metrics: %v", agentName, err)
		}
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return text, nil
}

// NewGenerator builds the TextGenerator for the configured provider.
func NewGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.LLMAPIKey), nil
	case config.ProviderGroq:
		return NewGroqGenerator(cfg.LLMAPIKey), nil
	case config.ProviderGemini:
		g, err := NewGeminiGenerator(ctx, cfg.LLMAPIKey)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.LLMProvider)
	}
}
