package presence

import (
	"context"
	"sync"

	"github.com/matheus3301/pairchat/internal/bus"
)

// MemoryStore keeps presence in process memory. Used when no Redis address
// is configured.
type MemoryStore struct {
	bus *bus.Bus

	mu       sync.RWMutex
	statuses map[string]Status
}

// NewMemoryStore creates an empty in-memory presence store.
func NewMemoryStore(b *bus.Bus) *MemoryStore {
	return &MemoryStore{bus: b, statuses: make(map[string]Status)}
}

func (m *MemoryStore) Set(_ context.Context, s Status) error {
	m.mu.Lock()
	m.statuses[s.ParticipantID] = s
	m.mu.Unlock()
	announce(m.bus, s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, participant string) (Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.statuses[participant]; ok {
		return s, nil
	}
	return unknown(participant), nil
}

func (m *MemoryStore) GetMany(ctx context.Context, participants []string) (map[string]Status, error) {
	out := make(map[string]Status, len(participants))
	for _, p := range participants {
		s, _ := m.Get(ctx, p)
		out[p] = s
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
