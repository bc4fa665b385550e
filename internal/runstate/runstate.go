// Package runstate keeps the outcome of recent host sync passes so the ops
// API can report them across restarts.
package runstate

import (
	"context"
	"sync"

	"github.com/diagnosis/visitor-hosts/internal/hostsync"
)

// historySize bounds how many past summaries are kept.
const historySize = 20

type Store interface {
	Save(ctx context.Context, s *hostsync.Summary) error
	// Last returns the most recent summary, or nil when no pass has finished.
	Last(ctx context.Context) (*hostsync.Summary, error)
	// History returns up to n summaries, newest first.
	History(ctx context.Context, n int) ([]hostsync.Summary, error)
}

// MemoryStore is the fallback when Redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	history []hostsync.Summary
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Save(ctx context.Context, s *hostsync.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]hostsync.Summary{*s}, m.history...)
	if len(m.history) > historySize {
		m.history = m.history[:historySize]
	}
	return nil
}

func (m *MemoryStore) Last(ctx context.Context) (*hostsync.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.history) == 0 {
		return nil, nil
	}
	s := m.history[0]
	return &s, nil
}

func (m *MemoryStore) History(ctx context.Context, n int) ([]hostsync.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n <= 0 || n > len(m.history) {
		n = len(m.history)
	}
	return append([]hostsync.Summary(nil), m.history[:n]...), nil
}
