package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store. It is the default when
// no DATABASE_URL is configured and the backend used throughout the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*CandidateProfile
	order    []string // ids in ingestion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*CandidateProfile)}
}

func (m *MemoryStore) Create(_ context.Context, p *CandidateProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[p.ID]; ok {
		return ErrDuplicateID
	}
	cp := p.Clone()
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	m.profiles[cp.ID] = cp
	m.order = append(m.order, cp.ID)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*CandidateProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, p *CandidateProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.profiles[p.ID]
	if !ok {
		return ErrNotFound
	}
	if p.Status.Rank() < cur.Status.Rank() {
		return ErrStatusRegression
	}
	cp := p.Clone()
	cp.UpdatedAt = time.Now().UTC()
	m.profiles[cp.ID] = cp
	return nil
}

func (m *MemoryStore) Latest(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.order) == 0 {
		return "", ErrNotFound
	}
	return m.order[len(m.order)-1], nil
}

func (m *MemoryStore) List(_ context.Context) ([]*CandidateProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*CandidateProfile, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.profiles[id].Clone())
	}
	return out, nil
}

func (m *MemoryStore) ListReady(_ context.Context) ([]*CandidateProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*CandidateProfile
	for _, p := range m.profiles {
		if p.Status == StatusReady {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
