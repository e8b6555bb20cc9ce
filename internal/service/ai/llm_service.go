package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/model/chat"
)

var errMissingSystemMessage = errors.New("ai: payload must start with a system message")

// Service runs completions through an eino chain: a chat template that places
// the system prompt ahead of the full history, followed by the chat model.
type Service struct {
	log   *zap.Logger
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the chain around chatModel.
func NewService(ctx context.Context, chatModel model.BaseChatModel, log *zap.Logger) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("ai: chat model is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{log: log.Named("eino"), chain: runnable}, nil
}

// Complete implements Completer.
func (s *Service) Complete(ctx context.Context, messages []chat.Message, params chat.Sampling) (string, error) {
	input, err := buildChainInput(messages)
	if err != nil {
		return "", err
	}

	response, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(
		model.WithTemperature(float32(params.Temperature)),
		model.WithMaxTokens(params.MaxTokens),
	))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyResponse
	}

	s.log.Debug("generated response",
		zap.Int("payload_messages", len(messages)),
		zap.Int("length", len(response.Content)),
	)
	return response.Content, nil
}

func buildChainInput(messages []chat.Message) (map[string]any, error) {
	if len(messages) == 0 || messages[0].Role != chat.RoleSystem {
		return nil, errMissingSystemMessage
	}

	return map[string]any{
		"system":  messages[0].Content,
		"history": toSchemaMessages(messages[1:]),
	}, nil
}

func toSchemaMessages(messages []chat.Message) []*schema.Message {
	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		case chat.RoleSystem:
			history = append(history, schema.SystemMessage(msg.Content))
		}
	}
	return history
}
