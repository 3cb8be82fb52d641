package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/model/chat"
)

// Ark is a Completer backed by an eino chain around the Volcengine Ark chat model.
type Ark struct {
	chain compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewArk builds the chat model and compiles the chain. The Ark endpoint id
// falls back to defaultModel when cfg.Model is empty.
func NewArk(ctx context.Context, cfg config.ArkConfig, defaultModel string) (*Ark, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:   cfg.BaseURL,
		Region:    cfg.Region,
		APIKey:    cfg.APIKey,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Model:     modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return newArkWithModel(ctx, chatModel)
}

func newArkWithModel(ctx context.Context, chatModel model.BaseChatModel) (*Ark, error) {
	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Ark{chain: runnable}, nil
}

func (a *Ark) Name() string { return config.ProviderArk }

func (a *Ark) Complete(ctx context.Context, req Request) (string, error) {
	response, err := a.chain.Invoke(ctx, toSchemaMessages(req.Messages), callOptions(req)...)
	if err != nil {
		return "", err
	}
	if response == nil {
		return "", ErrEmptyResponse
	}
	return response.Content, nil
}

func (a *Ark) Stream(ctx context.Context, req Request, onDelta func(string)) (string, error) {
	stream, err := a.chain.Stream(ctx, toSchemaMessages(req.Messages), callOptions(req)...)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	}

	if len(chunks) == 0 {
		return "", ErrEmptyResponse
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// callOptions forwards the per-request parameters to the chat model node.
// The model name is fixed by the Ark endpoint and is not overridden.
func callOptions(req Request) []compose.Option {
	var opts []model.Option
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	opts = append(opts, model.WithTemperature(req.Temperature))
	return []compose.Option{compose.WithChatModelOption(opts...)}
}

func toSchemaMessages(msgs []chat.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case chat.RoleSystem:
			out = append(out, schema.SystemMessage(msg.Content))
		case chat.RoleUser:
			out = append(out, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return out
}
