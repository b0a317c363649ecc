package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default single-replica session store. Entries expire
// after the configured TTL. The TTL is the refresh-token lifetime, not the
// access-token one, because an expired access token with a live refresh token
// must survive.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]memoryEntry

	obsMu     sync.Mutex
	observers map[int]func(sid string)
	nextObs   int
}

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// NewMemoryStore creates a store whose entries live for ttl after their last
// write. A non-positive ttl defaults to 7 days.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &MemoryStore{
		ttl:       ttl,
		entries:   make(map[string]memoryEntry),
		observers: make(map[int]func(sid string)),
	}
}

func (m *MemoryStore) Get(_ context.Context, sid string) (Session, error) {
	m.mu.RLock()
	e, ok := m.entries[sid]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return Session{}, ErrNotFound
	}
	return e.sess, nil
}

func (m *MemoryStore) Put(_ context.Context, sid string, s Session) error {
	m.mu.Lock()
	m.entries[sid] = memoryEntry{sess: s, expiresAt: time.Now().Add(m.ttl)}
	m.sweepLocked()
	m.mu.Unlock()

	m.notify(sid)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sid string) error {
	m.mu.Lock()
	_, existed := m.entries[sid]
	delete(m.entries, sid)
	m.mu.Unlock()

	if existed {
		m.notify(sid)
	}
	return nil
}

func (m *MemoryStore) Subscribe(fn func(sid string)) (cancel func()) {
	m.obsMu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.obsMu.Unlock()

	return func() {
		m.obsMu.Lock()
		delete(m.observers, id)
		m.obsMu.Unlock()
	}
}

func (m *MemoryStore) Close() error {
	m.obsMu.Lock()
	m.observers = make(map[int]func(sid string))
	m.obsMu.Unlock()
	return nil
}

func (m *MemoryStore) notify(sid string) {
	m.obsMu.Lock()
	fns := make([]func(string), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.obsMu.Unlock()

	for _, fn := range fns {
		fn(sid)
	}
}

// sweepLocked drops expired entries opportunistically on writes. The store
// is small (one entry per live browser session) so a full scan is fine.
func (m *MemoryStore) sweepLocked() {
	now := time.Now()
	for sid, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, sid)
		}
	}
}
