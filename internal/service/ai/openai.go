package ai

import (
	"context"
	"errors"
	"io"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/qabot/internal/config"
	"github.com/zhouzirui/qabot/internal/model/chat"
)

// OpenAI is a Completer backed by the OpenAI chat completions API.
type OpenAI struct {
	api *openaiapi.Client
}

// NewOpenAI creates the client. An empty API key is accepted; the provider
// rejects the call and the failure surfaces in the transcript.
func NewOpenAI(cfg config.OpenAIConfig) *OpenAI {
	clientCfg := openaiapi.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.OrgID != "" {
		clientCfg.OrgID = cfg.OrgID
	}
	return &OpenAI{api: openaiapi.NewClientWithConfig(clientCfg)}
}

func (c *OpenAI) Name() string { return config.ProviderOpenAI }

func (c *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, toAPIRequest(req, false))
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAI) Stream(ctx context.Context, req Request, onDelta func(string)) (string, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, toAPIRequest(req, true))
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var (
		builder strings.Builder
		chunks  int
	)
	for {
		resp, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		chunks++
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		builder.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	if chunks == 0 {
		return "", ErrEmptyResponse
	}
	return builder.String(), nil
}

func toAPIRequest(req Request, stream bool) openaiapi.ChatCompletionRequest {
	return openaiapi.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toAPIMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
}

func toAPIMessages(msgs []chat.Message) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return res
}
