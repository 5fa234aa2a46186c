package memory_test

import (
	"context"
	"testing"

	"github.com/fablekeep/fable-go-sdk/core"
	"github.com/fablekeep/fable-go-sdk/memory"
	"github.com/fablekeep/fable-go-sdk/memory/vectorizer/mock"
	"github.com/fablekeep/fable-go-sdk/vector"
)

func TestRetrieveEmptyStore(t *testing.T) {
	mgr := memory.NewManager(nil)
	recent := []core.Message{core.UserMessage("hi"), core.AssistantMessage("well met")}

	retrieved, passthrough := mgr.Retrieve("anything at all", recent)
	if len(retrieved) != 0 {
		t.Errorf("empty store returned %d entries", len(retrieved))
	}
	if len(passthrough) != len(recent) {
		t.Fatalf("passthrough length changed: %d vs %d", len(passthrough), len(recent))
	}
	for i := range recent {
		if passthrough[i] != recent[i] {
			t.Errorf("passthrough entry %d changed: %+v vs %+v", i, passthrough[i], recent[i])
		}
	}
}

func TestRetrieveEmptyQueryVector(t *testing.T) {
	ctx := context.Background()
	mgr := memory.NewManager(nil)
	mgr.AddConversation(ctx, 1, "enter the forest", "trees everywhere", core.GameState{})

	// Punctuation only: the lexical query vector is empty.
	retrieved, _ := mgr.Retrieve("?! ... 123", nil)
	if len(retrieved) != 0 {
		t.Errorf("empty query vector returned %d entries", len(retrieved))
	}
}

func TestRetrieveFloorAndCap(t *testing.T) {
	ctx := context.Background()
	mgr := memory.NewManager(&memory.Config{MaxRetrieveCount: 2, MinSimilarity: 0.1})

	phrases := []string{
		"the hero walks the forest path",
		"the hero rests in the forest glade",
		"the hero maps the forest border",
		"the hero sings about the forest",
		"a merchant counts copper coins",
	}
	for i, phrase := range phrases {
		mgr.AddConversation(ctx, i+1, phrase, "so it goes", core.GameState{})
	}

	retrieved, _ := mgr.Retrieve("hero in the forest", nil)
	if len(retrieved) > 2 {
		t.Fatalf("cap violated: got %d entries, want <= 2", len(retrieved))
	}
	for i, entry := range retrieved {
		if entry.Score < 0.1 {
			t.Errorf("entry %d below floor: %v", i, entry.Score)
		}
		if i > 0 && retrieved[i-1].Score < entry.Score {
			t.Errorf("results not sorted descending at %d: %v then %v", i, retrieved[i-1].Score, entry.Score)
		}
	}
}

func TestRetrieveRanking(t *testing.T) {
	ctx := context.Background()
	mgr := memory.NewManager(&memory.Config{MaxRetrieveCount: 5, MinSimilarity: 0.1})

	mgr.AddConversation(ctx, 1, "the hero enters the forest", "", core.GameState{})
	mgr.AddConversation(ctx, 2, "the hero buys a sword in town", "", core.GameState{})

	retrieved, _ := mgr.Retrieve("hero in the forest", nil)
	if len(retrieved) == 0 {
		t.Fatal("expected at least one result")
	}
	if retrieved[0].Turn.TurnIndex != 1 {
		t.Errorf("expected forest turn ranked first, got turn %d", retrieved[0].Turn.TurnIndex)
	}
	for i, entry := range retrieved {
		if entry.Turn.TurnIndex == 2 && i == 0 {
			t.Error("town turn outranked forest turn")
		}
	}
}

func TestRetrieveDenseBackedTurns(t *testing.T) {
	ctx := context.Background()

	// Populate the store under the remote backend: stored vectors are dense.
	mgr := memory.NewManager(
		&memory.Config{Method: memory.MethodRemote, MinSimilarity: 0.1},
		memory.WithRemoteBackend(mock.New()),
	)
	mgr.AddConversation(ctx, 1, "the hero enters the forest", "mist curls between the trees", core.GameState{})

	if kind := mgr.Turns()[0].Vector.Kind(); kind != vector.KindDense {
		t.Fatalf("expected dense stored vector, got %q", kind)
	}

	// A lexical query must still find the turn: the retriever re-derives
	// a sparse vector from the turn's original text.
	retrieved, _ := mgr.Retrieve("hero in the forest", nil)
	if len(retrieved) == 0 {
		t.Fatal("lexical query found nothing in a dense-backed store")
	}
	if retrieved[0].Turn.TurnIndex != 1 {
		t.Errorf("expected turn 1, got %d", retrieved[0].Turn.TurnIndex)
	}

	// Retrieval is stable across repeated queries (cached derivation).
	again, _ := mgr.Retrieve("hero in the forest", nil)
	if len(again) != len(retrieved) || again[0].Score != retrieved[0].Score {
		t.Errorf("repeated query changed results: %v vs %v", again, retrieved)
	}
}
