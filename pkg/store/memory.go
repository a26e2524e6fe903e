package store

import (
	"context"
	"sync"

	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// MemoryStore keeps encoded documents in process; used for dry runs and tests
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
	// every Upsert call, including overwrites
	writes int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string][]byte)}
}

// Upsert stores the JSON encoding of doc under key
func (s *MemoryStore) Upsert(ctx context.Context, collection, key string, doc *model.Project) error {
	if err := ctx.Err(); err != nil {
		return writeError(key, err)
	}

	body, err := encodeDocument(key, doc)
	if err != nil {
		return writeError(key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string][]byte)
		s.docs[collection] = coll
	}
	coll[key] = body
	s.writes++
	return nil
}

// Get returns the stored JSON for key
func (s *MemoryStore) Get(collection, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.docs[collection][key]
	return body, ok
}

// Len returns the number of documents in a collection
func (s *MemoryStore) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[collection])
}

// Writes returns how many upserts were performed
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
