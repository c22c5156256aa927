package server

import (
	"context"
	"sort"
	"sync"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// MemoryStore is an in-process FlagStore. It backs tests and the shim's
// --memory mode, where no Postgres is available.
type MemoryStore struct {
	mu      sync.RWMutex
	content []types.FlagRecord
	links   []types.LinkFlagRecord
}

var _ FlagStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertContent(_ context.Context, rec *types.FlagRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = append(m.content, *rec)
	return nil
}

func (m *MemoryStore) ListContent(_ context.Context, q Query) ([]types.FlagRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.FlagRecord
	for _, rec := range m.content {
		if q.ID != "" && rec.ID != q.ID {
			continue
		}
		if q.HasPage && rec.PageKey != q.PageKey {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.OrderDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteContent(_ context.Context, id types.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.content[:0]
	for _, rec := range m.content {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	m.content = kept
	return nil
}

func (m *MemoryStore) ClearContent(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = nil
	return nil
}

func (m *MemoryStore) InsertLink(_ context.Context, rec *types.LinkFlagRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, *rec)
	return nil
}

func (m *MemoryStore) ListLink(_ context.Context, q Query) ([]types.LinkFlagRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.LinkFlagRecord
	for _, rec := range m.links {
		if q.ID != "" && rec.ID != q.ID {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.OrderDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteLink(_ context.Context, id types.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.links[:0]
	for _, rec := range m.links {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	m.links = kept
	return nil
}

func (m *MemoryStore) ClearLink(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = nil
	return nil
}

func (m *MemoryStore) Counts(_ context.Context) (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.content), len(m.links), nil
}
