package escrow

import (
	"context"
	"sort"
	"sync"
)

// memstore is a development-only in-memory store used when no Redis is
// configured, and by tests.
type memstore struct {
	mu     sync.RWMutex
	nextID uint64
	games  map[uint64]*Game
}

func NewMemoryStore() GameStore {
	return &memstore{games: make(map[uint64]*Game)}
}

func (m *memstore) Load(ctx context.Context, id uint64) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, notFound(id)
	}
	return g.clone(), nil
}

func (m *memstore) Save(ctx context.Context, g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g.clone()
	return nil
}

func (m *memstore) List(ctx context.Context) ([]*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		items = append(items, g.clone())
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *memstore) NextID(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}
