package memory

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/fablekeep/fable-go-sdk/vector"
)

// Selector converts turn text into a vector using the configured backend,
// degrading to the lexical strategy on any failure. This is the core
// resilience boundary: Vectorize never fails to produce a usable vector for
// a non-empty text, whatever the backends do.
type Selector struct {
	mu       sync.RWMutex
	method   Method
	remote   Vectorizer
	onDevice Vectorizer
}

// NewSelector creates a selector for the given method. Backends for the
// remote and on-device methods are attached via the options; a method whose
// backend is missing degrades to lexical.
func NewSelector(method Method, opts ...SelectorOption) *Selector {
	s := &Selector{method: method}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithRemote attaches the remote embedding backend.
func WithRemote(v Vectorizer) SelectorOption {
	return func(s *Selector) { s.remote = v }
}

// WithOnDevice attaches the on-device neural backend.
func WithOnDevice(v Vectorizer) SelectorOption {
	return func(s *Selector) { s.onDevice = v }
}

// Method returns the currently selected backend method.
func (s *Selector) Method() Method {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.method
}

// SetMethod switches the backend at runtime.
func (s *Selector) SetMethod(method Method) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.method = method
}

// Vectorize produces a vector for text. Backend errors, unknown methods and
// empty backend output all fall back to the lexical strategy; failures are
// logged, never surfaced.
func (s *Selector) Vectorize(ctx context.Context, text string) vector.Vector {
	var (
		v   vector.Vector
		err error
	)

	switch method := s.Method(); method {
	case MethodLexical, "":
		v = vector.FromText(text)
	case MethodRemote:
		v, err = s.runBackend(ctx, s.remote, method, text)
	case MethodOnDevice:
		v, err = s.runBackend(ctx, s.onDevice, method, text)
	default:
		log.Printf("[MEMORY] Unknown embedding method %q, using lexical", method)
		v = vector.FromText(text)
	}

	if err != nil {
		log.Printf("[MEMORY] Backend failed, falling back to lexical: %v", err)
		return vector.FromText(text)
	}

	// Validity check runs regardless of backend: an empty sparse mapping or
	// empty dense sequence is as unusable as an error.
	if v.IsZero() {
		if v.Kind() == vector.KindDense {
			log.Printf("[MEMORY] Backend returned an empty vector, falling back to lexical")
		}
		return vector.FromText(text)
	}
	return v
}

func (s *Selector) runBackend(ctx context.Context, backend Vectorizer, method Method, text string) (vector.Vector, error) {
	if backend == nil {
		return vector.Vector{}, fmt.Errorf("%s backend not configured", method)
	}
	return backend.Vectorize(ctx, text)
}
