package memory

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/fablekeep/fable-go-sdk/core"
)

// Manager is the memory context object for one conversational session:
// it owns the store, the backend selector, the retriever, and the optional
// persistence adapter. Construct one explicitly and pass it where needed;
// there is no shared global instance.
type Manager struct {
	mu     sync.RWMutex // guards the tunable config fields
	config Config

	store       *Store
	selector    *Selector
	retriever   *Retriever
	persistence Persistence
}

// Option configures a Manager.
type Option func(*Manager)

// WithRemoteBackend attaches the remote embedding backend used when the
// method is MethodRemote.
func WithRemoteBackend(v Vectorizer) Option {
	return func(m *Manager) { m.selector.remote = v }
}

// WithOnDeviceBackend attaches the on-device backend used when the method
// is MethodOnDevice.
func WithOnDeviceBackend(v Vectorizer) Option {
	return func(m *Manager) { m.selector.onDevice = v }
}

// WithPersistence attaches a durable local store for Save/Load.
func WithPersistence(p Persistence) Option {
	return func(m *Manager) { m.persistence = p }
}

// NewManager creates a Manager. A nil config uses DefaultConfig.
func NewManager(config *Config, opts ...Option) *Manager {
	if config == nil {
		config = DefaultConfig
	}
	cfg := *config
	if cfg.Method == "" {
		cfg.Method = MethodLexical
	}
	if cfg.MaxRetrieveCount == 0 {
		cfg.MaxRetrieveCount = DefaultConfig.MaxRetrieveCount
	}
	if cfg.MinSimilarity == 0 {
		cfg.MinSimilarity = DefaultConfig.MinSimilarity
	}

	store := NewStore()
	m := &Manager{
		config:    cfg,
		store:     store,
		selector:  NewSelector(cfg.Method),
		retriever: NewRetriever(store),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddConversation indexes one completed exchange under turnIndex, replacing
// any prior entry with the same index. Vectorization completes before the
// turn becomes visible; backend failures degrade to lexical inside the
// selector and are never surfaced here.
func (m *Manager) AddConversation(ctx context.Context, turnIndex int, userMessage, assistantMessage string, state core.GameState) {
	combined := userMessage + "\n" + assistantMessage
	vec := m.selector.Vectorize(ctx, combined)
	snapshot := SnapshotState(state)

	m.store.Upsert(&IndexedTurn{
		TurnIndex:        turnIndex,
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Vector:           vec,
		Summary:          buildSummary(userMessage, assistantMessage, snapshot),
		State:            snapshot,
		InsertedAt:       time.Now(),
	})

	log.Printf("[MEMORY] Indexed turn %d (%s vector, %d turns stored)", turnIndex, vec.Kind(), m.store.Len())
}

// Retrieve returns the most relevant stored turns for queryText, applying
// the configured similarity floor and retrieval cap. The recent history
// reference is passed through untouched.
func (m *Manager) Retrieve(queryText string, recent []core.Message) ([]ScoredTurn, []core.Message) {
	m.mu.RLock()
	maxCount := m.config.MaxRetrieveCount
	minSimilarity := m.config.MinSimilarity
	m.mu.RUnlock()

	return m.retriever.Retrieve(queryText, recent, maxCount, minSimilarity)
}

// Clear empties the in-memory store. Persistence is untouched until the
// next Save.
func (m *Manager) Clear() {
	m.store.Clear()
}

// Len returns the number of indexed turns.
func (m *Manager) Len() int {
	return m.store.Len()
}

// Turns returns the indexed turns in insertion order.
func (m *Manager) Turns() []*IndexedTurn {
	return m.store.Turns()
}

// Save writes the entire store to the persistence adapter, overwriting any
// prior archive. Best-effort: failures are logged and swallowed.
func (m *Manager) Save(ctx context.Context) {
	if m.persistence == nil {
		return
	}
	archive := &Archive{
		Version: ArchiveVersion,
		SavedAt: time.Now(),
		Turns:   m.store.Turns(),
	}
	if err := m.persistence.Save(ctx, archive); err != nil {
		log.Printf("[MEMORY] Save failed, continuing without persistence: %v", err)
		return
	}
	log.Printf("[MEMORY] Saved %d turns", len(archive.Turns))
}

// Load restores the store from the persistence adapter, replacing the
// in-memory contents wholesale. A missing archive leaves the store
// untouched. Best-effort: failures are logged and swallowed.
func (m *Manager) Load(ctx context.Context) {
	if m.persistence == nil {
		return
	}
	archive, err := m.persistence.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoArchive) {
			log.Printf("[MEMORY] Load failed, continuing with empty memory: %v", err)
		}
		return
	}
	m.store.replaceAll(archive.Turns)
	log.Printf("[MEMORY] Restored %d turns (saved %s)", len(archive.Turns), archive.SavedAt.Format(time.RFC3339))
}

// SetMethod switches the vectorization backend at runtime.
func (m *Manager) SetMethod(method Method) {
	m.mu.Lock()
	m.config.Method = method
	m.mu.Unlock()
	m.selector.SetMethod(method)
}

// SetMaxRetrieveCount adjusts the retrieval cap at runtime.
func (m *Manager) SetMaxRetrieveCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.MaxRetrieveCount = n
}

// SetMinSimilarity adjusts the recall floor at runtime.
func (m *Manager) SetMinSimilarity(threshold float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config.MinSimilarity = threshold
}
