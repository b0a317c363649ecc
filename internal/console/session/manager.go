package session

import (
	"context"
	"log/slog"
	"sync"
)

// AuthAPI is the slice of the auth client the manager drives. The client
// persists into the same Store the manager projects from, which is how a
// successful Login becomes visible to CheckAuth.
type AuthAPI interface {
	Login(ctx context.Context, sid, login, password string) (Session, error)
	Logout(ctx context.Context, sid string) error
	UpdateUser(ctx context.Context, sid string, patch UserPatch) (UserProfile, error)
}

// Snapshot is the only authentication surface page handlers may read.
type Snapshot struct {
	User            *UserProfile
	IsAuthenticated bool
	IsLoading       bool
}

// Manager is the reactive per-browser-session authentication state. It is a
// pure projection of the Store plus a transient loading flag, mutated only
// through Login, Logout, UpdateUser and CheckAuth. A store subscription
// re-runs CheckAuth when any other manager sharing the store mutates this
// session, so a logout in one browser tab propagates to the rest.
type Manager struct {
	sid   string
	store Store
	auth  AuthAPI
	log   *slog.Logger

	mu     sync.Mutex
	snap   Snapshot
	cancel func()
}

// NewManager builds a manager and performs the initial synchronous store
// read, so the first snapshot is correct-as-of-local-cache without any
// network traffic.
func NewManager(sid string, store Store, auth AuthAPI, log *slog.Logger) *Manager {
	m := &Manager{sid: sid, store: store, auth: auth, log: log}
	m.CheckAuth(context.Background())
	m.cancel = store.Subscribe(func(changed string) {
		if changed == m.sid {
			m.CheckAuth(context.Background())
		}
	})
	return m
}

// Snapshot returns the current projection.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// SID returns the session ID this manager projects.
func (m *Manager) SID() string { return m.sid }

// CheckAuth re-reads the store and re-projects the snapshot. It never talks
// to the network. Storage failures degrade to unauthenticated.
func (m *Manager) CheckAuth(ctx context.Context) Snapshot {
	sess, err := m.store.Get(ctx, m.sid)

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case err == nil && sess.LooksAuthenticated():
		user := sess.User
		m.snap = Snapshot{User: &user, IsAuthenticated: true, IsLoading: m.snap.IsLoading}
	default:
		if err != nil && err != ErrNotFound {
			m.log.Warn("session store unavailable, treating as unauthenticated",
				"error", err)
		}
		m.snap = Snapshot{IsLoading: m.snap.IsLoading}
	}
	return m.snap
}

// Login exchanges credentials through the auth client. On failure the error
// propagates and the snapshot returns to whatever the store still says, so
// no partial state is left behind.
func (m *Manager) Login(ctx context.Context, login, password string) error {
	m.setLoading(true)
	defer m.setLoading(false)

	if _, err := m.auth.Login(ctx, m.sid, login, password); err != nil {
		m.CheckAuth(ctx)
		return err
	}
	m.CheckAuth(ctx)
	return nil
}

// Logout clears the session. The auth client's server-side revocation is
// best-effort; the local state always ends up Unauthenticated.
func (m *Manager) Logout(ctx context.Context) {
	m.setLoading(true)
	defer m.setLoading(false)

	if err := m.auth.Logout(ctx, m.sid); err != nil {
		m.log.Warn("logout cleanup failed", "error", err)
	}
	m.CheckAuth(ctx)
}

// UpdateUser applies a local patch to the cached profile, then re-reads the
// merged user back out of the store to avoid drift between the mutation and
// the cached copy.
func (m *Manager) UpdateUser(ctx context.Context, patch UserPatch) (UserProfile, error) {
	if _, err := m.auth.UpdateUser(ctx, m.sid, patch); err != nil {
		return UserProfile{}, err
	}
	snap := m.CheckAuth(ctx)
	if snap.User == nil {
		return UserProfile{}, ErrNotFound
	}
	return *snap.User, nil
}

// Close detaches the manager from the store.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.snap.IsLoading = v
	m.mu.Unlock()
}
