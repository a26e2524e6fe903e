package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// SQLStore keeps one table per collection with a (id, document, updated_at) layout.
// Postgres stores the document as JSONB, SQLite as TEXT.
type SQLStore struct {
	db     *sqlx.DB
	closer io.Closer
	now    func() time.Time

	mu      sync.Mutex
	created map[string]bool
}

// NewSQLStore wraps an open database; closer (may be nil) is released by Close
func NewSQLStore(db *sqlx.DB, closer io.Closer) *SQLStore {
	return &SQLStore{
		db:      db,
		closer:  closer,
		now:     time.Now,
		created: make(map[string]bool),
	}
}

func (s *SQLStore) postgres() bool {
	return sqlx.BindType(s.db.DriverName()) == sqlx.DOLLAR
}

func (s *SQLStore) createTableSQL(table string) string {
	if s.postgres() {
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	document JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`, table)
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	document TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`, table)
}

func (s *SQLStore) upsertSQL(table string) string {
	value := "?"
	if s.postgres() {
		value = "CAST(? AS JSONB)"
	}
	return s.db.Rebind(fmt.Sprintf(`INSERT INTO %s (id, document, updated_at)
VALUES (?, %s, ?)
ON CONFLICT (id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		table, value))
}

// ensureCollection creates the collection table once per store
func (s *SQLStore) ensureCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.created[collection] {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, s.createTableSQL(pq.QuoteIdentifier(collection))); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collection, err)
	}
	s.created[collection] = true
	return nil
}

// Upsert writes doc under key, replacing any previous version
func (s *SQLStore) Upsert(ctx context.Context, collection, key string, doc *model.Project) error {
	if err := s.ensureCollection(ctx, collection); err != nil {
		return writeError(key, err)
	}

	body, err := encodeDocument(key, doc)
	if err != nil {
		return writeError(key, err)
	}

	query := s.upsertSQL(pq.QuoteIdentifier(collection))
	if _, err := s.db.ExecContext(ctx, query, key, string(body), s.now().UTC()); err != nil {
		return writeError(key, fmt.Errorf("failed to upsert into %s: %w", collection, err))
	}
	return nil
}

// Get returns the stored JSON document, or ok=false when the key is absent
func (s *SQLStore) Get(ctx context.Context, collection, key string) (doc []byte, ok bool, err error) {
	query := s.db.Rebind(fmt.Sprintf("SELECT document FROM %s WHERE id = ?", pq.QuoteIdentifier(collection)))

	var body string
	if err := s.db.GetContext(ctx, &body, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(body), true, nil
}

// Count returns the number of documents in a collection
func (s *SQLStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(collection))
	if err := s.db.GetContext(ctx, &n, query); err != nil {
		return 0, err
	}
	return n, nil
}

// Close releases the underlying connection
func (s *SQLStore) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return s.db.Close()
}
