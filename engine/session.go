package engine

import (
	"github.com/google/uuid"

	"github.com/fablekeep/fable-go-sdk/core"
)

// Session is the rolling state of one conversation: full message history,
// current game state, and the turn counter that keys memory entries.
// A Session is not safe for concurrent use; drive it from one goroutine.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// History is the full transcript, in order.
	History []core.Message

	// State is the current game state snapshot source.
	State core.GameState

	// TurnCount is the number of completed exchanges.
	TurnCount int
}

// NewSession creates an empty session with a fresh identity.
func NewSession() *Session {
	return &Session{ID: uuid.New().String()}
}

// Append records a completed exchange in the transcript and returns the
// turn index it occupies.
func (s *Session) Append(userMessage, assistantMessage string) int {
	s.History = append(s.History,
		core.UserMessage(userMessage),
		core.AssistantMessage(assistantMessage),
	)
	s.TurnCount++
	return s.TurnCount
}

// SetState replaces the session's game state.
func (s *Session) SetState(state core.GameState) {
	s.State = state
}
