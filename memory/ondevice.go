package memory

import (
	"context"
	"fmt"

	"github.com/fablekeep/fable-go-sdk/vector"
)

// Pipeline is a loaded neural feature-extraction pipeline. Implementations
// return mean-pooled, unit-normalized features (see memory/vectorizer/onnx).
type Pipeline interface {
	Extract(ctx context.Context, text string) ([]float32, error)
}

// PipelineLoader constructs a Pipeline. Loading is expensive (model weights,
// runtime init), so OnDevice invokes it at most once per process.
type PipelineLoader func(ctx context.Context) (Pipeline, error)

// onDeviceInputLimit bounds the text handed to the pipeline.
const onDeviceInputLimit = 500

// OnDevice is the on-device neural Vectorizer. The pipeline is loaded
// lazily on first use; concurrent callers arriving before the load
// completes wait on the same in-flight load rather than triggering their
// own. A failed load is remembered and every subsequent call reports it,
// which the Selector resolves by falling back to lexical.
type OnDevice struct {
	load PipelineLoader

	loadOnce chan struct{} // closed once the load attempt finished
	start    chan struct{} // buffered 1: ticket for the single loader
	pipe     Pipeline
	loadErr  error
}

// NewOnDevice wraps a pipeline loader as a Vectorizer.
func NewOnDevice(load PipelineLoader) *OnDevice {
	start := make(chan struct{}, 1)
	start <- struct{}{}
	return &OnDevice{
		load:     load,
		loadOnce: make(chan struct{}),
		start:    start,
	}
}

// Vectorize runs feature extraction over a bounded prefix of text and
// returns the result as a dense vector.
func (o *OnDevice) Vectorize(ctx context.Context, text string) (vector.Vector, error) {
	pipe, err := o.pipeline(ctx)
	if err != nil {
		return vector.Vector{}, fmt.Errorf("load pipeline: %w", err)
	}

	features, err := pipe.Extract(ctx, truncate(text, onDeviceInputLimit))
	if err != nil {
		return vector.Vector{}, fmt.Errorf("extract features: %w", err)
	}

	values := make([]float64, len(features))
	for i, f := range features {
		values[i] = float64(f)
	}
	return vector.Dense(values), nil
}

// pipeline returns the memoized pipeline, performing the shared single load
// on first use.
func (o *OnDevice) pipeline(ctx context.Context) (Pipeline, error) {
	select {
	case <-o.start:
		// This caller won the ticket and performs the one load.
		o.pipe, o.loadErr = o.load(ctx)
		close(o.loadOnce)
	case <-o.loadOnce:
		// Load already finished.
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case <-o.loadOnce:
		return o.pipe, o.loadErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
