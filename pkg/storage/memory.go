package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

func (s *MemoryStore) Put(ctx context.Context, name string, data []byte) (Info, error) {
	_, info, err := Prepare(name, data)
	if err != nil {
		return Info{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[info.Hash]; ok {
		return d.Info, nil
	}
	s.docs[info.Hash] = &Document{Info: info, Data: slices.Clone(data)}
	return info, nil
}

func (s *MemoryStore) Get(ctx context.Context, hash string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[hash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	out := make([]Info, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.Info)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Info) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash, b.Hash)
	})
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ DocumentStore = (*MemoryStore)(nil)
