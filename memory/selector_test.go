package memory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fablekeep/fable-go-sdk/core"
	"github.com/fablekeep/fable-go-sdk/memory"
	"github.com/fablekeep/fable-go-sdk/memory/vectorizer/mock"
	"github.com/fablekeep/fable-go-sdk/vector"
)

func TestSelectorFallbackOnBackendFailure(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		mgr  *memory.Manager
	}{
		{
			name: "remote call fails",
			mgr: memory.NewManager(
				&memory.Config{Method: memory.MethodRemote},
				memory.WithRemoteBackend(mock.NewFailing(errors.New("connection refused"))),
			),
		},
		{
			name: "on-device load fails",
			mgr: memory.NewManager(
				&memory.Config{Method: memory.MethodOnDevice},
				memory.WithOnDeviceBackend(memory.NewOnDevice(func(ctx context.Context) (memory.Pipeline, error) {
					return nil, errors.New("model file missing")
				})),
			),
		},
		{
			name: "backend not configured",
			mgr:  memory.NewManager(&memory.Config{Method: memory.MethodRemote}),
		},
		{
			name: "backend returns empty vector",
			mgr: memory.NewManager(
				&memory.Config{Method: memory.MethodRemote},
				memory.WithRemoteBackend(mock.NewEmpty()),
			),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tc.mgr.AddConversation(ctx, 1, "the hero enters the forest", "trees loom ahead", core.GameState{})

			turn := tc.mgr.Turns()[0]
			if turn.Vector.Kind() != vector.KindSparse {
				t.Fatalf("expected lexical fallback (sparse), got %q", turn.Vector.Kind())
			}
			if turn.Vector.IsZero() {
				t.Error("fallback produced an unusable vector for non-empty text")
			}
		})
	}
}

func TestSelectorUnknownMethod(t *testing.T) {
	ctx := context.Background()
	mgr := memory.NewManager(&memory.Config{Method: "quantum"})

	mgr.AddConversation(ctx, 1, "the hero meditates", "qi gathers slowly", core.GameState{})
	if kind := mgr.Turns()[0].Vector.Kind(); kind != vector.KindSparse {
		t.Errorf("unknown method should degrade to lexical, got %q", kind)
	}
}

type fakePipeline struct{}

func (fakePipeline) Extract(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.6, 0.8}, nil
}

func TestOnDeviceSharedSingleLoad(t *testing.T) {
	var loads atomic.Int32
	od := memory.NewOnDevice(func(ctx context.Context) (memory.Pipeline, error) {
		loads.Add(1)
		return fakePipeline{}, nil
	})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]vector.Vector, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = od.Vectorize(context.Background(), "the hero waits")
		}(i)
	}
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Errorf("pipeline loaded %d times, want 1", n)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if results[i].Kind() != vector.KindDense || len(results[i].Values()) != 2 {
			t.Errorf("caller %d got unexpected vector %+v", i, results[i])
		}
	}
}

func TestOnDeviceLoadFailureIsSticky(t *testing.T) {
	var loads atomic.Int32
	od := memory.NewOnDevice(func(ctx context.Context) (memory.Pipeline, error) {
		loads.Add(1)
		return nil, errors.New("no such model")
	})

	for i := 0; i < 3; i++ {
		if _, err := od.Vectorize(context.Background(), "hello there"); err == nil {
			t.Fatalf("call %d: expected error from failed load", i)
		}
	}
	if n := loads.Load(); n != 1 {
		t.Errorf("failed load retried %d times, want a single attempt", n)
	}
}
