// Package models constructs chat models from provider configuration.
package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"github.com/clombard/mailtriage/internal/config"
)

// Create builds a model.ToolCallingChatModel from a provider config.
func Create(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	switch strings.ToLower(cfg.Driver) {
	case "openai":
		return newOpenAI(ctx, cfg)
	case "claude", "anthropic":
		return newClaude(ctx, cfg)
	case "gemini":
		return newGemini(ctx, cfg)
	case "ollama":
		return newOllama(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown driver: %s", cfg.Driver)
	}
}

// ForName resolves a named provider from the models config, falling back to
// the default provider when name is empty.
func ForName(ctx context.Context, mc config.ModelsConfig, name string) (model.ToolCallingChatModel, error) {
	if name == "" {
		name = mc.Default
	}
	pc, ok := mc.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return Create(ctx, pc)
}
