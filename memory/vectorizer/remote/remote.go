// Package remote implements the remote embedding backend against an
// OpenAI-compatible embeddings endpoint: POST <endpoint>/embeddings with a
// bearer credential, reading the dense vector from the standard response
// path. Every failure here is a hard failure for the single call; the
// memory selector resolves it by falling back to the lexical strategy.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/fablekeep/fable-go-sdk/vector"
)

const (
	// inputLimit bounds the text sent to the provider.
	inputLimit = 8000

	// requestTimeout bounds a single embeddings call. The source behavior
	// had no timeout; bounding it is safe because timeouts degrade to the
	// lexical fallback like any other failure.
	requestTimeout = 15 * time.Second
)

// DefaultModel is the embedding model requested from the provider.
const DefaultModel = openai.EmbeddingModelTextEmbedding3Small

// ErrDisabled is returned when the provider is configured off.
var ErrDisabled = errors.New("remote: embedding provider disabled")

// Config holds the recognized provider options.
type Config struct {
	// Enabled toggles the provider. When false every call fails with
	// ErrDisabled, which the selector treats like any backend failure.
	Enabled bool

	// Endpoint is the provider base URL. Empty uses the provider default.
	Endpoint string

	// APIKey is the bearer credential.
	APIKey string

	// Model overrides DefaultModel.
	Model openai.EmbeddingModel
}

// Vectorizer calls the remote embeddings endpoint.
type Vectorizer struct {
	client  *openai.Client
	enabled bool
	model   openai.EmbeddingModel
}

// New creates a remote vectorizer from config.
func New(cfg Config) *Vectorizer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Vectorizer{client: &client, enabled: cfg.Enabled, model: model}
}

// Vectorize embeds a bounded prefix of text and returns a dense vector.
func (v *Vectorizer) Vectorize(ctx context.Context, text string) (vector.Vector, error) {
	if !v.enabled {
		return vector.Vector{}, ErrDisabled
	}

	runes := []rune(text)
	if len(runes) > inputLimit {
		text = string(runes[:inputLimit])
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := v.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: v.model,
	})
	if err != nil {
		return vector.Vector{}, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return vector.Vector{}, fmt.Errorf("empty embedding response for model %s", v.model)
	}

	return vector.Dense(resp.Data[0].Embedding), nil
}
