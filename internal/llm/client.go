package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Completer is the JSON-completion contract the orchestrator consumes.
type Completer interface {
	CompleteJSON(ctx context.Context, msgs []*schema.Message, maxTokens int, temperature float32) (map[string]any, error)
}

// Client wraps an eino chat model and expects JSON object replies.
type Client struct {
	model  model.ToolCallingChatModel
	repair bool
}

// Option configures a Client.
type Option func(*Client)

// WithRepair enables one model-assisted repair round when a reply cannot be
// parsed as JSON. Costs an extra call per failure.
func WithRepair() Option {
	return func(c *Client) { c.repair = true }
}

// NewClient creates a Client over the given chat model.
func NewClient(m model.ToolCallingChatModel, opts ...Option) *Client {
	c := &Client{model: m}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompleteJSON sends the messages and parses the reply as a JSON object.
// Transport failures and unparseable replies come back as errors; the
// caller treats both uniformly.
func (c *Client) CompleteJSON(ctx context.Context, msgs []*schema.Message, maxTokens int, temperature float32) (map[string]any, error) {
	reply, err := c.model.Generate(ctx, msgs,
		model.WithMaxTokens(maxTokens),
		model.WithTemperature(temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("model generate: %w", err)
	}

	out, err := ParseObject(reply.Content)
	if err == nil {
		return out, nil
	}
	if !c.repair {
		return nil, err
	}

	slog.Warn("model reply was not valid JSON, attempting repair", "error", err)
	return c.repairJSON(ctx, reply.Content, maxTokens)
}

// repairJSON asks the model to re-emit its own broken reply as valid JSON.
func (c *Client) repairJSON(ctx context.Context, broken string, maxTokens int) (map[string]any, error) {
	msgs := []*schema.Message{
		schema.SystemMessage("You fix malformed JSON. Re-emit the user's content as a single valid JSON object, preserving all data. Output ONLY the JSON object."),
		schema.UserMessage(broken),
	}
	reply, err := c.model.Generate(ctx, msgs, model.WithMaxTokens(maxTokens), model.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("repair generate: %w", err)
	}
	return ParseObject(reply.Content)
}
