package memory

import (
	"strings"
	"time"

	"github.com/fablekeep/fable-go-sdk/core"
	"github.com/fablekeep/fable-go-sdk/vector"
)

// StateSnapshot is the reduced projection of session state stored with a
// turn. Kept minimal on purpose: the full game state lives with the caller,
// the memory index only needs enough to anchor a recalled scene.
type StateSnapshot struct {
	Location        string `json:"location,omitempty"`
	Realm           string `json:"realm,omitempty"`
	Health          int    `json:"health"`
	Mana            int    `json:"mana"`
	GainedItems     bool   `json:"gained_items,omitempty"`
	GainedRelations bool   `json:"gained_relations,omitempty"`
}

// SnapshotState reduces a full GameState to the stored projection.
func SnapshotState(state core.GameState) StateSnapshot {
	return StateSnapshot{
		Location:        state.Location,
		Realm:           state.Realm,
		Health:          state.Health,
		Mana:            state.Mana,
		GainedItems:     len(state.ItemsGained) > 0,
		GainedRelations: len(state.RelationsGained) > 0,
	}
}

// IndexedTurn is one memory entry: a user/assistant exchange with its term
// vector, compact summary, and state snapshot. Turns are replaced wholesale
// on upsert, never mutated in place.
type IndexedTurn struct {
	TurnIndex        int            `json:"turn_index"`
	UserMessage      string         `json:"user_message"`
	AssistantMessage string         `json:"assistant_message"`
	Vector           vector.Vector  `json:"vector"`
	Summary          string         `json:"summary"`
	State            StateSnapshot  `json:"state"`
	InsertedAt       time.Time      `json:"inserted_at"`
}

// CombinedText is the text the turn was vectorized from, and the text the
// retriever re-derives a sparse vector from when the stored one is dense.
func (t *IndexedTurn) CombinedText() string {
	return t.UserMessage + "\n" + t.AssistantMessage
}

const (
	summaryKeywordCount = 5
	summaryActionLimit  = 60
)

// buildSummary derives the compact human-readable summary stored with a
// turn: a bounded preview of the player's action, the top keywords of the
// narrator's reply, and the location if one was captured.
func buildSummary(userMessage, assistantMessage string, state StateSnapshot) string {
	parts := []string{"action: " + truncate(strings.TrimSpace(userMessage), summaryActionLimit)}

	keywords := vector.ExtractKeywords(assistantMessage)
	if len(keywords) > summaryKeywordCount {
		keywords = keywords[:summaryKeywordCount]
	}
	if len(keywords) > 0 {
		terms := make([]string, len(keywords))
		for i, kw := range keywords {
			terms[i] = kw.Term
		}
		parts = append(parts, "keywords: "+strings.Join(terms, ", "))
	}

	if state.Location != "" {
		parts = append(parts, "location: "+state.Location)
	}

	return strings.Join(parts, " | ")
}

// truncate shortens s to at most maxRunes runes, appending "..." when cut.
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes < 3 {
		return "..."
	}
	return string(runes[:maxRunes-3]) + "..."
}
