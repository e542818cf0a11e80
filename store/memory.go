package store

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is the in-process Store, for tests and single-run tools.
type Memory struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{drafts: make(map[string]Draft)}
}

func (m *Memory) Save(_ context.Context, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts := now()
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = ts
	} else if existing, ok := m.drafts[d.ID]; ok {
		d.CreatedAt = existing.CreatedAt
	} else if d.CreatedAt.IsZero() {
		d.CreatedAt = ts
	}
	d.UpdatedAt = ts
	stored := *d
	stored.Values = maps.Clone(d.Values)
	m.drafts[d.ID] = stored
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	d.Values = maps.Clone(d.Values)
	return d, nil
}

func (m *Memory) List(_ context.Context, form string) ([]Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		if form != "" && d.Form != form {
			continue
		}
		d.Values = maps.Clone(d.Values)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drafts[id]; !ok {
		return ErrNotFound
	}
	delete(m.drafts, id)
	return nil
}
