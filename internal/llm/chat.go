package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	OpenAIURL   = "https://api.openai.com/v1/chat/completions"
	OpenAIModel = "gpt-4o"

	GroqURL   = "https://api.groq.com/openai/v1/chat/completions"
	GroqModel = "llama-3.3-70b-versatile"

	defaultTemperature = 0.7
)

// ChatGenerator talks to any OpenAI-compatible chat completions endpoint.
type ChatGenerator struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	HTTPClient  *http.Client
}

// NewOpenAIGenerator creates a generator for the OpenAI API.
func NewOpenAIGenerator(apiKey string) *ChatGenerator {
	return &ChatGenerator{
		BaseURL:     OpenAIURL,
		APIKey:      apiKey,
		Model:       OpenAIModel,
		Temperature: defaultTemperature,
		HTTPClient:  &http.Client{},
	}
}

// NewGroqGenerator creates a generator for the Groq API.
func NewGroqGenerator(apiKey string) *ChatGenerator {
	return &ChatGenerator{
		BaseURL:     GroqURL,
		APIKey:      apiKey,
		Model:       GroqModel,
		Temperature: defaultTemperature,
		HTTPClient:  &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateContent sends a prompt as a single user message and returns the first choice.
func (c *ChatGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	jsonBody, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.Temperature,
	})
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ContentResponse{}, fmt.Errorf("chat api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(out.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	model := out.Model
	if model == "" {
		model = c.Model
	}

	return ContentResponse{
		Content: out.Choices[0].Message.Content,
		Usage: TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
			Model:            model,
		},
	}, nil
}
