package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps session state in process. It backs single-instance
// deployments and runs in place of Redis when Redis is unreachable.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	subs    map[uuid.UUID]map[chan Event]struct{}
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		subs:    make(map[uuid.UUID]map[chan Event]struct{}),
		now:     time.Now,
	}
}

func (m *MemoryStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, id)
		}
	}
	m.revoked[jti] = now.Add(ttl)
	return nil
}

func (m *MemoryStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.revoked[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(exp) {
		delete(m.revoked, jti)
		return false, nil
	}
	return true, nil
}

// Publish never blocks; a subscriber with a full buffer misses the event
func (m *MemoryStore) Publish(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ch := range m.subs[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	m.mu.Lock()
	if m.subs[userID] == nil {
		m.subs[userID] = make(map[chan Event]struct{})
	}
	m.subs[userID][ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[userID], ch)
			if len(m.subs[userID]) == 0 {
				delete(m.subs, userID)
			}
			m.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel
}
