package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

const defaultTimeout = 30 * time.Second

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient  *http.Client
	Temperature float32
	Logger      *slog.Logger
}

// Chat sends a system and user message and returns the first reply.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, c.request(system, user, nil))
}

// ChatJSON asks for a reply matching schema and decodes it into out.
func (c *Client) ChatJSON(ctx context.Context, system, user, name string, schema *Schema, out interface{}) error {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   name,
			Strict: true,
			Schema: schema,
		},
	}
	content, err := c.complete(ctx, c.request(system, user, format))
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		c.logger().Warn("llm_parse_failed",
			"model", c.Model,
			"content", content,
			"error", err)
		return fmt.Errorf("llm: parse response: %w", err)
	}
	return nil
}

func (c *Client) request(system, user string, format *openai.ChatCompletionResponseFormat) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: c.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: format,
	}
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client().CreateChatCompletion(ctx, req)
	latency := time.Since(start)
	if err != nil {
		c.logger().Error("llm_request_failed",
			"model", c.Model,
			"error", err,
			"latency_ms", latency.Milliseconds())
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}

	c.logger().Debug("llm_request_done",
		"model", c.Model,
		"latency_ms", latency.Milliseconds(),
		"tokens_total", resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) client() *openai.Client {
	cfg := openai.DefaultConfig(c.APIKey)
	cfg.BaseURL = c.BaseURL
	if c.HTTPClient != nil {
		cfg.HTTPClient = c.HTTPClient
	}
	return openai.NewClientWithConfig(cfg)
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Schema is a JSON Schema fragment in the shape OpenAI's strict mode expects.
type Schema struct {
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	AdditionalProperties bool               `json:"additionalProperties"`
}

// MarshalJSON implements json.Marshaler; the alias type prevents recursion.
func (s *Schema) MarshalJSON() ([]byte, error) {
	type alias Schema
	return json.Marshal((*alias)(s))
}
