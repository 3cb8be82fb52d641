package ai

import (
	"context"

	"github.com/pkg/errors"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/model/chat"
)

// Request is one call to the completion service.
type Request struct {
	Model       string
	Messages    []chat.Message
	MaxTokens   int
	Temperature float32
}

// Completer talks to a language-model completion service.
type Completer interface {
	// Complete blocks until the full reply is available.
	Complete(ctx context.Context, req Request) (string, error)
	// Stream reports reply fragments to onDelta as they arrive and returns the
	// concatenated reply.
	Stream(ctx context.Context, req Request, onDelta func(string)) (string, error)
	// Name identifies the provider in logs and failures.
	Name() string
}

// NewCompleter builds the completer selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg config.AIConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg.OpenAI), nil
	case config.ProviderArk:
		c, err := NewArk(ctx, cfg.Ark, cfg.Model)
		if err != nil {
			return nil, errors.Wrap(err, "create ark completer")
		}
		return c, nil
	default:
		return nil, errors.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

// RequestFromConfig fills the fixed call parameters around messages.
func RequestFromConfig(cfg config.AIConfig, messages []chat.Message) Request {
	return Request{
		Model:       cfg.Model,
		Messages:    messages,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}
