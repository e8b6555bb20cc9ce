package chat

import "strings"

// Role tags who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Insertion order is display order; render
// time stamps are the shell's business and are not stored.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a user-authored message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-authored message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// SystemMessage builds the instruction message that heads every payload.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// IsBlank reports whether text carries nothing but whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Sampling holds the per-deployment generation constants sent with every call.
type Sampling struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// DefaultSampling mirrors the values the persona screens were tuned with.
func DefaultSampling() Sampling {
	return Sampling{Temperature: 0.7, MaxTokens: 500}
}
