package store

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

// Memory keeps collections in process.
type Memory struct {
	mu   sync.RWMutex
	data map[ledger.Kind]ledger.Collection
}

func NewMemory() *Memory {
	return &Memory{data: make(map[ledger.Kind]ledger.Collection)}
}

func (m *Memory) Load(_ context.Context, kind ledger.Kind) (ledger.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.data[kind]
	if !ok {
		return ledger.Collection{Kind: kind}, nil
	}

	return c.Clone(), nil
}

func (m *Memory) Save(_ context.Context, c ledger.Collection) error {
	if _, err := Key(c.Kind); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[c.Kind] = c.Clone()

	return nil
}
