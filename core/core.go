package core

// Role identifies the author of a chat message.
type Role string

const (
	// RoleSystem marks instructions and injected context.
	RoleSystem Role = "system"

	// RoleUser marks player input.
	RoleUser Role = "user"

	// RoleAssistant marks narrator responses.
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in the context window handed to the
// generation caller. This is the only message shape the SDK defines; the
// transport of the generation call itself lives in the engine package.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// TokenUsage tracks model token consumption for a run.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
