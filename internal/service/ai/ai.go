package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/throne-room/backend/internal/config"
	"github.com/zhouzirui/throne-room/backend/internal/model/chat"
)

// ErrEmptyResponse reports a reply that carried no usable content.
var ErrEmptyResponse = errors.New("ai: completion returned no content")

// Completer sends one ordered payload to a chat-completion service and returns
// the reply text. messages[0] is the system message.
type Completer interface {
	Complete(ctx context.Context, messages []chat.Message, params chat.Sampling) (string, error)
}

// New builds the completer for the configured provider.
func New(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (Completer, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("ai: provider %s is not configured", cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		svc, err := NewService(ctx, chatModel, log)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case config.ProviderOpenAI:
		client, err := NewOpenAIClient(cfg.OpenAI, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("ai: unsupported provider %q", cfg.Provider)
	}
}
