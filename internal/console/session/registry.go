package session

import (
	"log/slog"
	"sync"
	"time"
)

// Managers created for cookies that never authenticate are dropped after
// this long without a request. All durable state lives in the Store, so an
// evicted session is rebuilt on its next request.
const (
	managerIdleTTL    = 30 * time.Minute
	managerSweepEvery = time.Minute
)

// Managers hands out one Manager per live session ID. The gate attaches the
// right manager to every request context; handlers never construct their own.
// Any request can carry an unknown or forged cookie, so idle managers are
// evicted to keep the map from growing with traffic that never authenticates.
type Managers struct {
	store Store
	auth  AuthAPI
	log   *slog.Logger
	idle  time.Duration

	mu        sync.Mutex
	bySID     map[string]*managerEntry
	nextSweep time.Time
}

type managerEntry struct {
	m        *Manager
	lastSeen time.Time
}

func NewManagers(store Store, auth AuthAPI, log *slog.Logger) *Managers {
	return &Managers{
		store: store,
		auth:  auth,
		log:   log,
		idle:  managerIdleTTL,
		bySID: make(map[string]*managerEntry),
	}
}

// For returns the manager for sid, creating it on first use.
func (r *Managers) For(sid string) *Manager {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(now)
	if e, ok := r.bySID[sid]; ok {
		e.lastSeen = now
		return e.m
	}
	m := NewManager(sid, r.store, r.auth, r.log)
	r.bySID[sid] = &managerEntry{m: m, lastSeen: now}
	return m
}

// Drop closes and forgets the manager for sid. Called when a session ends;
// a later request with the same cookie simply gets a fresh, unauthenticated
// manager.
func (r *Managers) Drop(sid string) {
	r.mu.Lock()
	e, ok := r.bySID[sid]
	delete(r.bySID, sid)
	r.mu.Unlock()
	if ok {
		e.m.Close()
	}
}

// Close closes every manager.
func (r *Managers) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sid, e := range r.bySID {
		e.m.Close()
		delete(r.bySID, sid)
	}
}

// sweepLocked evicts managers that have not served a request within the
// idle TTL, at most once per sweep interval. The map is small relative to
// request volume so a full scan is fine.
func (r *Managers) sweepLocked(now time.Time) {
	if now.Before(r.nextSweep) {
		return
	}
	r.nextSweep = now.Add(managerSweepEvery)
	for sid, e := range r.bySID {
		if now.Sub(e.lastSeen) > r.idle {
			e.m.Close()
			delete(r.bySID, sid)
		}
	}
}
