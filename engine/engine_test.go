package engine

import (
	"testing"

	"github.com/fablekeep/fable-go-sdk/core"
)

func TestToAnthropicParams(t *testing.T) {
	messages := []core.Message{
		core.SystemMessage("persona"),
		core.SystemMessage("CURRENT STATE:\n{}"),
		core.SystemMessage("RELEVANT PAST EVENTS:\n1. (turn 2, 75% match) drew the blade | steel\n"),
		core.UserMessage("hello"),
		core.AssistantMessage("well met"),
		core.UserMessage("what now?"),
	}

	system, api := toAnthropicParams(messages)

	if len(system) != 3 {
		t.Fatalf("expected 3 system blocks, got %d", len(system))
	}
	if system[0].Text != "persona" {
		t.Errorf("system block order lost: %q", system[0].Text)
	}
	if len(api) != 3 {
		t.Fatalf("expected 3 api messages, got %d", len(api))
	}
	if api[0].Role != "user" || api[1].Role != "assistant" || api[2].Role != "user" {
		t.Errorf("role mapping wrong: %s/%s/%s", api[0].Role, api[1].Role, api[2].Role)
	}
}

func TestCountRetrieved(t *testing.T) {
	messages := []core.Message{
		core.SystemMessage("persona"),
		core.SystemMessage("RELEVANT PAST EVENTS:\n1. (turn 1, 80% match) a | b\n2. (turn 4, 50% match) c | d"),
		core.UserMessage("hello"),
	}
	if got := countRetrieved(messages); got != 2 {
		t.Errorf("countRetrieved = %d, want 2", got)
	}

	noMemories := []core.Message{core.SystemMessage("persona"), core.UserMessage("hello")}
	if got := countRetrieved(noMemories); got != 0 {
		t.Errorf("countRetrieved without memory block = %d, want 0", got)
	}
}

func TestSessionAppend(t *testing.T) {
	session := NewSession()
	if session.ID == "" {
		t.Fatal("session has no identity")
	}

	idx := session.Append("hello", "well met")
	if idx != 1 {
		t.Errorf("first turn index = %d, want 1", idx)
	}
	idx = session.Append("onward", "the road bends east")
	if idx != 2 {
		t.Errorf("second turn index = %d, want 2", idx)
	}

	if len(session.History) != 4 {
		t.Fatalf("history length = %d, want 4", len(session.History))
	}
	if session.History[2].Role != core.RoleUser || session.History[2].Content != "onward" {
		t.Errorf("history order wrong: %+v", session.History[2])
	}
}
