package cache

import (
	"context"
	"sync"
	"time"

	"github.com/go-market-api/internal/domain"
)

// Memory is an in-process pending-notification store with per-key TTL.
// Suitable for single-instance deployments; multi-instance setups should
// use the Redis store so all instances see the same batches.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
}

type memoryEntry struct {
	list      []domain.PendingNotification
	expiresAt time.Time
}

func NewMemory() *Memory {
	m := &Memory{entries: make(map[string]memoryEntry), done: make(chan struct{})}
	go m.cleanup()
	return m
}

// Close stops the background janitor. The store stays usable afterwards:
// expired entries remain invisible to Get, they just stop being reclaimed.
func (m *Memory) Close() {
	close(m.done)
}

func (m *Memory) Get(_ context.Context, recipientID string) ([]domain.PendingNotification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[recipientID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	// Copy so callers can't mutate the stored batch in place.
	out := make([]domain.PendingNotification, len(e.list))
	copy(out, e.list)
	return out, nil
}

func (m *Memory) Put(_ context.Context, recipientID string, list []domain.PendingNotification, ttl time.Duration) error {
	stored := make([]domain.PendingNotification, len(list))
	copy(stored, list)
	m.mu.Lock()
	m.entries[recipientID] = memoryEntry{list: stored, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context, recipientID string) error {
	m.mu.Lock()
	delete(m.entries, recipientID)
	m.mu.Unlock()
	return nil
}

// cleanup removes expired entries every minute so abandoned batches don't
// accumulate between reads. Runs until Close.
func (m *Memory) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for k, e := range m.entries {
				if now.After(e.expiresAt) {
					delete(m.entries, k)
				}
			}
			m.mu.Unlock()
		}
	}
}
