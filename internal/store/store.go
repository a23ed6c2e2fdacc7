package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Dataset names used by the converter. Graph data and the mapping live side
// by side in one database and never see each other's quads.
const (
	DatasetData    = "data"
	DatasetMapping = "mapping"
)

// Defaults for Store tuning.
const (
	// DefaultPageSize is the number of rows fetched per round trip by Match.
	DefaultPageSize = 1000
	// DefaultBatchSize is the number of buffered quads committed per transaction.
	DefaultBatchSize = 500
)

// Store is the SQLite data access layer holding loaded quads.
type Store struct {
	db        *sql.DB
	pageSize  int
	batchSize int
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets how many rows Match reads per query. Values < 1 are ignored.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithBatchSize sets how many quads a Dataset buffers before committing.
// Values < 1 are ignored.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
// ":memory:" gives a private in-memory database.
func NewStore(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, pageSize: DefaultPageSize, batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS quads (
  id              INTEGER PRIMARY KEY,
  dataset         TEXT NOT NULL,
  subject_kind    INTEGER NOT NULL,
  subject         TEXT NOT NULL,
  predicate       TEXT NOT NULL,
  object_kind     INTEGER NOT NULL,
  object          TEXT NOT NULL,
  datatype        TEXT NOT NULL DEFAULT '',
  lang            TEXT NOT NULL DEFAULT '',
  context         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_quads_subject ON quads(dataset, subject_kind, subject);
CREATE INDEX IF NOT EXISTS idx_quads_predicate ON quads(dataset, predicate);
CREATE INDEX IF NOT EXISTS idx_quads_object ON quads(dataset, object_kind, object);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);
`

// Dataset returns a QuadStore view over the quads of one dataset.
func (s *Store) Dataset(name string) *Dataset {
	return &Dataset{store: s, name: name}
}

// DeleteDataset removes every quad of the named dataset. Used before
// reloading into a persistent database.
func (s *Store) DeleteDataset(name string) error {
	if _, err := s.db.Exec("DELETE FROM quads WHERE dataset = ?", name); err != nil {
		return fmt.Errorf("delete dataset %s: %w", name, err)
	}
	return nil
}

// GetMetadata returns the value stored under key, or "" if absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return v, nil
}

// SetMetadata upserts a metadata value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}
