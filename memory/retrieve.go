package memory

import (
	"log"
	"sort"

	"github.com/dgraph-io/ristretto"

	"github.com/fablekeep/fable-go-sdk/core"
	"github.com/fablekeep/fable-go-sdk/vector"
)

// ScoredTurn pairs a stored turn with its similarity to the current query.
// Retrieval results are recomputed per query, never persisted.
type ScoredTurn struct {
	Turn  *IndexedTurn
	Score float64
}

// Retriever finds the stored turns most relevant to the current user input.
//
// Queries are always vectorized lexically, regardless of which backend
// populated the store: a store filled under a richer backend must stay
// searchable by a lexical query vector. Dense stored vectors are re-derived
// as sparse from the turn's combined text to keep every comparison
// sparse-vs-sparse; the derivation is memoized in a small cache since the
// text of a stored turn never changes under the same key.
type Retriever struct {
	store *Store
	cache *ristretto.Cache
}

// NewRetriever creates a retriever over store.
func NewRetriever(store *Store) *Retriever {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 14,
		MaxCost:     1 << 22,
		BufferItems: 64,
	})
	if err != nil {
		// The cache is an optimization only; retrieval works without it.
		log.Printf("[MEMORY] Vector cache unavailable: %v", err)
		cache = nil
	}
	return &Retriever{store: store, cache: cache}
}

// Retrieve scores every stored turn against queryText and returns at most
// maxCount turns with similarity >= minSimilarity, descending. The recent
// history is passed through untouched: selecting the recent window is the
// assembler's job, not the retriever's.
func (r *Retriever) Retrieve(queryText string, recent []core.Message, maxCount int, minSimilarity float64) ([]ScoredTurn, []core.Message) {
	if r.store.Len() == 0 {
		return nil, recent
	}

	query := vector.FromText(queryText)
	if query.IsZero() {
		return nil, recent
	}

	var scored []ScoredTurn
	for _, turn := range r.store.Turns() {
		v := turn.Vector
		if v.Kind() == vector.KindDense {
			v = r.derivedSparse(turn)
		}
		score := vector.Cosine(query, v)
		if score >= minSimilarity {
			scored = append(scored, ScoredTurn{Turn: turn, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if maxCount >= 0 && len(scored) > maxCount {
		scored = scored[:maxCount]
	}

	log.Printf("[MEMORY] Retrieved %d/%d turns for query %q", len(scored), r.store.Len(), truncate(queryText, 40))
	return scored, recent
}

// derivedSparse re-derives a sparse vector from a dense-backed turn's
// original text, consulting the cache first.
func (r *Retriever) derivedSparse(turn *IndexedTurn) vector.Vector {
	text := turn.CombinedText()
	if r.cache != nil {
		if hit, ok := r.cache.Get(text); ok {
			if v, ok := hit.(vector.Vector); ok {
				return v
			}
		}
	}

	v := vector.FromText(text)
	if r.cache != nil {
		r.cache.Set(text, v, int64(len(v.Terms())+1))
	}
	return v
}
