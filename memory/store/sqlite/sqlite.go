// Package sqlite implements the durable local store behind memory
// persistence. One fixed table, one fixed record key holding the entire
// serialized archive. The adapter reports errors normally; deciding that
// persistence is best-effort is the memory.Manager's job.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fablekeep/fable-go-sdk/memory"
)

const (
	// tableName is the fixed collection holding archives.
	tableName = "memory_archives"

	// recordKey is the fixed key for the one archive blob.
	recordKey = "conversation_memory"
)

// schema is created lazily on first open.
const schema = `
CREATE TABLE IF NOT EXISTS ` + tableName + ` (
    key      TEXT PRIMARY KEY,
    version  INTEGER NOT NULL,
    payload  BLOB NOT NULL,
    saved_at INTEGER NOT NULL
);`

// Store is the sqlite-backed persistence adapter.
type Store struct {
	db *sql.DB
}

// Compile-time check that Store implements memory.Persistence.
var _ memory.Persistence = (*Store)(nil)

// New opens (creating if needed) the database at path.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single logical writer; one shared connection avoids sqlite writer
	// lock contention under concurrent goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		schema,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Save overwrites the stored archive with the given one.
func (s *Store) Save(ctx context.Context, archive *memory.Archive) error {
	payload, err := json.Marshal(archive)
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+tableName+` (key, version, payload, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET version=excluded.version, payload=excluded.payload, saved_at=excluded.saved_at`,
		recordKey, archive.Version, payload, archive.SavedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// Load reads the stored archive. memory.ErrNoArchive when nothing saved.
func (s *Store) Load(ctx context.Context) (*memory.Archive, error) {
	var (
		version int
		payload []byte
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, payload, saved_at FROM `+tableName+` WHERE key = ?`, recordKey,
	).Scan(&version, &payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, memory.ErrNoArchive
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	if version != memory.ArchiveVersion {
		return nil, fmt.Errorf("unsupported archive version %d", version)
	}

	var archive memory.Archive
	if err := json.Unmarshal(payload, &archive); err != nil {
		return nil, fmt.Errorf("unmarshal archive: %w", err)
	}
	if archive.SavedAt.IsZero() {
		archive.SavedAt = time.Unix(savedAt, 0)
	}
	return &archive, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
