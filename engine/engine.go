// Package engine runs the conversational loop: it assembles the bounded
// context window from memory, calls the model, and records the completed
// exchange back into memory. Memory failures never interrupt the
// conversation.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/fablekeep/fable-go-sdk/core"
	"github.com/fablekeep/fable-go-sdk/memory"
)

// Config holds the generation parameters for an Engine.
type Config struct {
	// Model is the model identifier sent with every request.
	Model string

	// MaxTokens caps the response length.
	MaxTokens int64

	// SystemPrompt is the narrator persona. DefaultSystemPrompt when empty.
	SystemPrompt string

	// RecentWindow is how many recent turns (user+assistant pairs) of the
	// session history are sent verbatim alongside retrieved memories.
	RecentWindow int
}

// DefaultConfig is the engine configuration used when none is given.
var DefaultConfig = &Config{
	Model:        "claude-sonnet-4-20250514",
	MaxTokens:    4096,
	RecentWindow: 3,
}

// Engine drives the model with memory-assembled context.
type Engine struct {
	client *anthropic.Client
	mem    *memory.Manager
	config Config
}

// NewEngine creates an engine. A nil config uses DefaultConfig; the memory
// manager is required.
func NewEngine(client *anthropic.Client, mem *memory.Manager, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig
	}
	cfg := *config
	if cfg.Model == "" {
		cfg.Model = DefaultConfig.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultConfig.MaxTokens
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.RecentWindow == 0 {
		cfg.RecentWindow = DefaultConfig.RecentWindow
	}
	return &Engine{client: client, mem: mem, config: cfg}
}

// Memory returns the engine's memory manager.
func (e *Engine) Memory() *memory.Manager {
	return e.mem
}

// Input is one conversational exchange to run.
type Input struct {
	// Session carries the rolling history and current game state.
	Session *Session

	// UserMessage is the player's input for this turn.
	UserMessage string

	// StreamCallback, when set, receives response text incrementally.
	// It is called once more with done=true after the final chunk.
	StreamCallback func(chunk string, done bool)
}

// Output is the result of one exchange.
type Output struct {
	// Text is the narrator's reply.
	Text string

	// TurnIndex is the index the exchange was recorded under.
	TurnIndex int

	// Retrieved is how many distant memories were injected into context.
	Retrieved int

	// TokensUsed tracks model token consumption for this exchange.
	TokensUsed core.TokenUsage
}

// Run executes one turn: assemble context, call the model, append the
// exchange to the session, and index it into memory.
func (e *Engine) Run(ctx context.Context, input *Input) (*Output, error) {
	if input.Session == nil {
		return nil, fmt.Errorf("engine run: nil session")
	}
	if input.UserMessage == "" {
		return nil, fmt.Errorf("engine run: empty user message")
	}
	session := input.Session

	messages := e.mem.BuildMessages(
		e.config.SystemPrompt,
		session.State,
		input.UserMessage,
		e.config.RecentWindow,
		session.History,
	)
	system, apiMessages := toAnthropicParams(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.config.Model),
		MaxTokens: e.config.MaxTokens,
		Messages:  apiMessages,
		System:    system,
	}

	var resp *anthropic.Message
	var err error
	if input.StreamCallback != nil {
		resp, err = e.createMessageStreaming(ctx, params, input.StreamCallback)
	} else {
		resp, err = e.client.Messages.New(ctx, params)
	}
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if input.StreamCallback != nil {
		input.StreamCallback("", true)
	}

	turnIndex := session.Append(input.UserMessage, text)
	log.Printf("[ENGINE] Session %s turn %d complete (%d in, %d out tokens)",
		session.ID, turnIndex, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	// Index the completed exchange. The manager degrades internally; a
	// broken backend or store never fails the turn.
	e.mem.AddConversation(ctx, turnIndex, input.UserMessage, text, session.State)
	e.mem.Save(ctx)

	return &Output{
		Text:      text,
		TurnIndex: turnIndex,
		Retrieved: countRetrieved(messages),
		TokensUsed: core.TokenUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// createMessageStreaming handles streaming API calls.
func (e *Engine) createMessageStreaming(ctx context.Context, params anthropic.MessageNewParams, callback func(string, bool)) (*anthropic.Message, error) {
	stream := e.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()

		if err := message.Accumulate(event); err != nil {
			// Accumulation errors are non-fatal; the stream keeps going.
		}

		switch evt := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := evt.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				callback(delta.Text, false)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return &message, nil
}

// toAnthropicParams splits an assembled message list into the Message API
// shape: system-role messages become system blocks in order, the rest
// become user/assistant messages.
func toAnthropicParams(messages []core.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var api []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case core.RoleAssistant:
			api = append(api, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			api = append(api, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return system, api
}

// countRetrieved reports how many memory entries the assembled context
// carries, read back from the memory block for logging.
func countRetrieved(messages []core.Message) int {
	for _, msg := range messages {
		if msg.Role == core.RoleSystem && len(msg.Content) > 0 {
			if n := countMemoryLines(msg.Content); n > 0 {
				return n
			}
		}
	}
	return 0
}

func countMemoryLines(content string) int {
	const header = "RELEVANT PAST EVENTS:"
	if len(content) < len(header) || content[:len(header)] != header {
		return 0
	}
	n := 0
	for _, r := range content {
		if r == '\n' {
			n++
		}
	}
	return n
}

// DefaultSystemPrompt is the narrator persona used when none is configured.
const DefaultSystemPrompt = `You are the narrator of an ongoing fantasy role-play.

GUIDELINES:
- Stay in character as an omniscient but fair narrator
- Keep continuity with the CURRENT STATE and RELEVANT PAST EVENTS provided
- Describe consequences of the player's actions vividly but concisely
- Never contradict established events; if the player does, gently fold it
  into the story as a misremembering

RESPONSE SHAPE:
- Two to four paragraphs of narration
- End with the immediate situation the player must react to`
