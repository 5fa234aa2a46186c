package vector

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind tags which representation a Vector carries.
type Kind string

const (
	// KindSparse is a term -> weight mapping.
	KindSparse Kind = "sparse"

	// KindDense is a fixed-order embedding.
	KindDense Kind = "dense"
)

// Vector is a tagged union over the two term-vector representations.
// The zero Vector is valid and compares as similarity 0 to everything.
type Vector struct {
	kind   Kind
	sparse map[string]float64
	dense  []float64
}

// Sparse wraps a term-weight mapping as a sparse vector.
func Sparse(terms map[string]float64) Vector {
	return Vector{kind: KindSparse, sparse: terms}
}

// Dense wraps an embedding as a dense vector.
func Dense(values []float64) Vector {
	return Vector{kind: KindDense, dense: values}
}

// Kind returns the representation tag, or "" for the zero Vector.
func (v Vector) Kind() Kind { return v.kind }

// Terms returns the sparse mapping (nil for non-sparse vectors).
func (v Vector) Terms() map[string]float64 { return v.sparse }

// Values returns the dense embedding (nil for non-dense vectors).
func (v Vector) Values() []float64 { return v.dense }

// IsZero reports whether the vector carries no usable content: the zero
// Vector, an empty sparse mapping, or an empty dense sequence.
func (v Vector) IsZero() bool {
	switch v.kind {
	case KindSparse:
		return len(v.sparse) == 0
	case KindDense:
		return len(v.dense) == 0
	default:
		return true
	}
}

// vectorJSON is the stored form of a Vector.
type vectorJSON struct {
	Kind   Kind               `json:"kind"`
	Sparse map[string]float64 `json:"terms,omitempty"`
	Dense  []float64          `json:"values,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(vectorJSON{Kind: v.kind, Sparse: v.sparse, Dense: v.dense})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw vectorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal vector: %w", err)
	}
	switch raw.Kind {
	case KindSparse, KindDense, "":
	default:
		return fmt.Errorf("unknown vector kind %q", raw.Kind)
	}
	*v = Vector{kind: raw.Kind, sparse: raw.Sparse, dense: raw.Dense}
	return nil
}

// Cosine computes cosine similarity in [0,1] between two vectors.
//
// Mismatched representations (one sparse, one dense) and absent inputs score
// 0 rather than erroring. The sparse path unions keys and treats missing keys
// as weight 0; the dense path compares over the common prefix length without
// padding. Either vector having a zero norm also scores 0.
func Cosine(a, b Vector) float64 {
	if a.kind == "" || b.kind == "" || a.kind != b.kind {
		return 0
	}

	var dot, normA, normB float64
	switch a.kind {
	case KindSparse:
		for term, wa := range a.sparse {
			normA += wa * wa
			if wb, ok := b.sparse[term]; ok {
				dot += wa * wb
			}
		}
		for _, wb := range b.sparse {
			normB += wb * wb
		}
	case KindDense:
		// Truncate to the common prefix length; norms are accumulated over
		// the same prefix so truncation stays a pure length adjustment.
		n := len(a.dense)
		if len(b.dense) < n {
			n = len(b.dense)
		}
		for i := 0; i < n; i++ {
			dot += a.dense[i] * b.dense[i]
			normA += a.dense[i] * a.dense[i]
			normB += b.dense[i] * b.dense[i]
		}
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Frequency weights cannot produce negative dot products; embedding
	// backends can in principle, so clamp to the documented range.
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
