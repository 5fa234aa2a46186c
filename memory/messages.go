package memory

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/fablekeep/fable-go-sdk/core"
)

// BuildMessages composes the bounded context window for one generation call.
//
// The order is fixed:
//  1. the system prompt, verbatim
//  2. a system message with a structured dump of the current state
//  3. a system message listing retrieved distant memories (omitted if none)
//  4. the last recentWindow turns (recentWindow*2 messages) of fullHistory,
//     in original order (omitted if recentWindow is 0 or history is empty)
//  5. the current user input
//
// A composition summary is logged; it is informational only.
func (m *Manager) BuildMessages(systemPrompt string, state core.GameState, queryText string, recentWindow int, fullHistory []core.Message) []core.Message {
	messages := []core.Message{
		core.SystemMessage(systemPrompt),
		core.SystemMessage(formatState(state)),
	}

	retrieved, _ := m.Retrieve(queryText, nil)
	if len(retrieved) > 0 {
		messages = append(messages, core.SystemMessage(formatMemories(retrieved)))
	}

	recentCount := 0
	if recentWindow > 0 && len(fullHistory) > 0 {
		n := recentWindow * 2
		if n > len(fullHistory) {
			n = len(fullHistory)
		}
		messages = append(messages, fullHistory[len(fullHistory)-n:]...)
		recentCount = n
	}

	messages = append(messages, core.UserMessage(queryText))

	omitted := 0.0
	if len(fullHistory) > 0 {
		omitted = 1 - float64(recentCount)/float64(len(fullHistory))
	}
	log.Printf("[MEMORY] Context assembled: system=2 retrieved=%d recent=%d current=1 (%.0f%% of history omitted)",
		len(retrieved), recentCount, omitted*100)

	return messages
}

// formatState renders the current state as a structured system message.
func formatState(state core.GameState) string {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "CURRENT STATE: (unavailable)"
	}
	return "CURRENT STATE:\n" + string(data)
}

// formatMemories renders retrieved turns as a numbered list of memories.
func formatMemories(retrieved []ScoredTurn) string {
	var b strings.Builder
	b.WriteString("RELEVANT PAST EVENTS:\n")
	for i, entry := range retrieved {
		fmt.Fprintf(&b, "%d. (turn %d, %.0f%% match) %s | %s\n",
			i+1,
			entry.Turn.TurnIndex,
			entry.Score*100,
			truncate(strings.TrimSpace(entry.Turn.UserMessage), summaryActionLimit),
			entry.Turn.Summary,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}
