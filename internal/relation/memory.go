package relation

import "sync"

// MemoryStore is an in-process append-only triple log with a
// (subject, predicate) index. It backs ephemeral workspaces and tests.
//
// Writers append under a short exclusive lock; readers copy out result
// slices so a reader never observes a partially applied write. A read may
// miss the very latest append, which is acceptable for a best-effort
// recommendation store.
type MemoryStore struct {
	mu    sync.RWMutex
	log   []Triple
	index map[string][]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string][]string)}
}

func indexKey(subject, predicate string) string {
	return subject + "\x00" + predicate
}

// Add appends a triple. It never fails.
func (m *MemoryStore) Add(subject, predicate, object string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, Triple{Subject: subject, Predicate: predicate, Object: object})
	key := indexKey(subject, predicate)
	m.index[key] = append(m.index[key], object)
	return nil
}

// Get returns all objects for (subject, predicate) in insertion order.
func (m *MemoryStore) Get(subject, predicate string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	objects := m.index[indexKey(subject, predicate)]
	out := make([]string, len(objects))
	copy(out, objects)
	return out, nil
}

// All returns a snapshot of every stored triple in insertion order.
func (m *MemoryStore) All() ([]Triple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Triple, len(m.log))
	copy(out, m.log)
	return out, nil
}

// Len returns the number of stored triples.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.log)
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close() error { return nil }
