package memory

import (
	"context"
	"errors"
	"time"

	"github.com/fablekeep/fable-go-sdk/vector"
)

// Method selects which vectorization backend the Selector uses.
type Method string

const (
	// MethodLexical uses sparse term-frequency vectors. Always available.
	MethodLexical Method = "lexical"

	// MethodRemote uses an API embedding provider.
	MethodRemote Method = "remote"

	// MethodOnDevice uses a locally loaded neural pipeline.
	MethodOnDevice Method = "on-device"
)

// Vectorizer converts a turn's text into a term vector.
// Implementations: remote.Vectorizer (API embeddings), OnDevice (local
// neural pipeline), mock.Vectorizer (testing). The lexical strategy is
// built into the Selector and needs no implementation here.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) (vector.Vector, error)
}

// Persistence is the durable local store boundary for session continuity.
// Implementations: sqlite.Store (local SDK).
//
// Load returns ErrNoArchive when nothing has been saved yet. The Manager,
// not the implementation, decides that persistence failures are non-fatal.
type Persistence interface {
	Save(ctx context.Context, archive *Archive) error
	Load(ctx context.Context) (*Archive, error)
	Close() error
}

// ErrNoArchive is returned by Persistence.Load when no archive exists.
var ErrNoArchive = errors.New("memory: no saved archive")

// ArchiveVersion is the serialized store schema version.
const ArchiveVersion = 1

// Archive is the whole-store blob written to and read from persistence.
type Archive struct {
	Version int            `json:"version"`
	SavedAt time.Time      `json:"saved_at"`
	Turns   []*IndexedTurn `json:"turns"`
}

// Config holds Manager configuration.
type Config struct {
	// Method selects the vectorization backend. Default: lexical.
	Method Method

	// MaxRetrieveCount caps how many distant memories a single query
	// may pull into the context window. Default: 5.
	MaxRetrieveCount int

	// MinSimilarity is the recall floor: stored turns scoring below it
	// are never surfaced. Default: 0.3.
	MinSimilarity float64
}

// DefaultConfig holds the defaults used when no config is given.
var DefaultConfig = &Config{
	Method:           MethodLexical,
	MaxRetrieveCount: 5,
	MinSimilarity:    0.3,
}
