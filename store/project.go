package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easelkit/easel/state"
)

// ProjectRecord is one saved project: the serializable canvas projection
// plus a preview thumbnail. Live bitmaps are not stored; restore
// re-fetches assets by hash and regenerates mipmaps and caches.
type ProjectRecord struct {
	ID        string
	CreatedAt time.Time
	Thumbnail []byte // encoded PNG preview, may be nil
	State     state.ProjectState
}

// ProjectStore persists saved projects. Safe for concurrent use.
type ProjectStore interface {
	// Save stores the record, assigning an ID when empty, and returns
	// the stored copy.
	Save(rec ProjectRecord) (*ProjectRecord, error)

	// Load returns a saved project.
	Load(id string) (*ProjectRecord, error)

	// List returns all saved projects, newest first.
	List() []*ProjectRecord

	// Delete removes a saved project. Deleting a missing ID is not an
	// error.
	Delete(id string) error
}

// MemoryProjectStore is the in-memory ProjectStore.
type MemoryProjectStore struct {
	mu      sync.Mutex
	records map[string]*ProjectRecord
}

// NewMemoryProjectStore creates an empty store.
func NewMemoryProjectStore() *MemoryProjectStore {
	return &MemoryProjectStore{records: make(map[string]*ProjectRecord)}
}

func (s *MemoryProjectStore) Save(rec ProjectRecord) (*ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	cp := rec
	s.records[cp.ID] = &cp
	return &cp, nil
}

func (s *MemoryProjectStore) Load(id string) (*ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryProjectStore) List() []*ProjectRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ProjectRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.After(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (s *MemoryProjectStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}
