//go:build onnx

// Package onnx implements the on-device feature-extraction pipeline on ONNX
// Runtime. It produces mean-pooled, unit-normalized sentence features from
// a BERT-style encoder (all-MiniLM-L6-v2 by default) and plugs into the
// memory selector through memory.NewOnDevice, which handles lazy loading.
//
// Build with -tags onnx and point Config.LibraryPath at the ONNX Runtime
// shared library.
package onnx

import (
	"context"
	"fmt"
	"math"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/fablekeep/fable-go-sdk/memory"
)

// DefaultModel is the model identifier the pipeline is built around.
const DefaultModel = "all-MiniLM-L6-v2"

// sequenceLength is the encoder's fixed input length.
const sequenceLength = 128

// Config configures the pipeline.
type Config struct {
	// ModelPath is the path to the .onnx model file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json vocabulary.
	TokenizerPath string

	// LibraryPath is the path to the ONNX Runtime shared library.
	LibraryPath string

	// Dimensions is the feature size (default 384 for all-MiniLM-L6-v2).
	Dimensions int
}

// FeaturePipeline runs the encoder and pools its output into one vector.
type FeaturePipeline struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
}

// Loader adapts New into the loader shape memory.NewOnDevice consumes, so
// the expensive session setup happens on first use, once per process.
func Loader(cfg Config) memory.PipelineLoader {
	return func(ctx context.Context) (memory.Pipeline, error) {
		return New(cfg)
	}
}

// New loads the tokenizer and creates the inference session.
func New(cfg Config) (*FeaturePipeline, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	tokenizer, err := loadWordPieceTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &FeaturePipeline{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
	}, nil
}

// Extract encodes text and returns mean-pooled, unit-normalized features.
func (p *FeaturePipeline) Extract(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputIDs, attentionMask := p.tokenizer.Encode(text, sequenceLength)
	tokenTypeIDs := make([]int64, sequenceLength)

	shape := ort.NewShape(1, sequenceLength)
	inputTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer inputTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := p.session.Run([]ort.Value{inputTensor, maskTensor, typeTensor}, outputs); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return nil, fmt.Errorf("no output tensor returned")
	}
	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	return p.pool(hidden, attentionMask)
}

// pool reduces the encoder output to a single feature vector: mean pooling
// over attended tokens, then unit normalization.
func (p *FeaturePipeline) pool(hidden *ort.Tensor[float32], attentionMask []int64) ([]float32, error) {
	data := hidden.GetData()
	shape := hidden.GetShape()

	features := make([]float32, p.dimensions)
	switch len(shape) {
	case 2:
		// Model pools internally; take the row as-is.
		if len(data) < p.dimensions {
			return nil, fmt.Errorf("output dimension mismatch: got %d, want %d", len(data), p.dimensions)
		}
		copy(features, data[:p.dimensions])
	case 3:
		seqLen, hiddenSize := int(shape[1]), int(shape[2])
		if shape[0] != 1 {
			return nil, fmt.Errorf("expected batch size 1, got %d", shape[0])
		}
		if hiddenSize != p.dimensions {
			return nil, fmt.Errorf("hidden size mismatch: got %d, want %d", hiddenSize, p.dimensions)
		}
		var attended float32
		for i := 0; i < seqLen; i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			row := data[i*hiddenSize : (i+1)*hiddenSize]
			for j, v := range row {
				features[j] += v
			}
		}
		if attended == 0 {
			return nil, fmt.Errorf("no attended tokens to pool")
		}
		for j := range features {
			features[j] /= attended
		}
	default:
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}

	normalize(features)
	return features, nil
}

// Close releases the inference session.
func (p *FeaturePipeline) Close() error {
	if p.session != nil {
		return p.session.Destroy()
	}
	return nil
}

// normalize scales vec to unit length in place.
func normalize(vec []float32) {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i := range vec {
		vec[i] /= norm
	}
}
