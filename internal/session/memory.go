// internal/session/memory.go
package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryBackend is a process-local session backend. Expired sessions are
// collected by a janitor goroutine; Get never returns an expired session
// even before the janitor runs.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryBackend creates a memory backend with a janitor running at the
// given interval. A non-positive interval defaults to one minute.
func NewMemoryBackend(gcInterval time.Duration) *MemoryBackend {
	if gcInterval <= 0 {
		gcInterval = time.Minute
	}
	b := &MemoryBackend{
		sessions: make(map[string]memoryEntry),
		stop:     make(chan struct{}),
	}
	go b.janitor(gcInterval)
	return b
}

// Get returns the payload stored for the token, or ErrNotFound
func (b *MemoryBackend) Get(_ context.Context, token string) ([]byte, error) {
	b.mu.RLock()
	entry, ok := b.sessions[token]
	b.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, nil
}

// Put stores the payload for the token until expiresAt
func (b *MemoryBackend) Put(_ context.Context, token string, data []byte, expiresAt time.Time) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	b.mu.Lock()
	b.sessions[token] = memoryEntry{data: stored, expiresAt: expiresAt}
	b.mu.Unlock()
	return nil
}

// Delete removes the session for the token
func (b *MemoryBackend) Delete(_ context.Context, token string) error {
	b.mu.Lock()
	delete(b.sessions, token)
	b.mu.Unlock()
	return nil
}

// Close stops the janitor
func (b *MemoryBackend) Close() error {
	b.stopOnce.Do(func() { close(b.stop) })
	return nil
}

// Len returns the number of tracked sessions, expired ones included
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}

func (b *MemoryBackend) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case now := <-ticker.C:
			b.mu.Lock()
			for token, entry := range b.sessions {
				if now.After(entry.expiresAt) {
					delete(b.sessions, token)
				}
			}
			b.mu.Unlock()
		}
	}
}
