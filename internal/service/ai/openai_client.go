package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/config"
	"github.com/zhouzirui/throne-room/backend/internal/model/chat"
)

// OpenAIClient calls an OpenAI-compatible Chat Completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAIClient creates a client for cfg with SDK retries disabled.
func NewOpenAIClient(cfg config.OpenAIConfig, log *zap.Logger, opts ...option.RequestOption) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: API key must not be empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model must not be empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	options := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		options = append(options, option.WithBaseURL(base))
	}
	options = append(options, opts...)

	client := openai.NewClient(options...)
	return &OpenAIClient{client: &client, model: cfg.Model, log: log.Named("openai")}, nil
}

// Complete implements Completer.
func (c *OpenAIClient) Complete(ctx context.Context, messages []chat.Message, params chat.Sampling) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("openai: no messages to send")
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(params.Temperature),
		MaxTokens:   openai.Int(int64(params.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response: %w", ErrEmptyResponse)
	}
	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("openai: empty message content: %w", ErrEmptyResponse)
	}

	c.log.Debug("completion received",
		zap.String("model", c.model),
		zap.Int("payload_messages", len(messages)),
		zap.Int("length", len(content)),
	)
	return content, nil
}

func toOpenAIMessages(messages []chat.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case chat.RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case chat.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		}
	}
	return out
}
