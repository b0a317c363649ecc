// Package memory is an in-process store driver backed by maps. It exists for
// tests and for running the identity backend without a database file. Tx is
// implemented with copy-on-write snapshots under a single lock, so rotation
// semantics match the sqlite driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dentalops/clinicgate/internal/identity/domain"
	"github.com/dentalops/clinicgate/internal/identity/store"
)

type data struct {
	users  map[string]domain.User         // by id
	tokens map[string]domain.RefreshToken // by token hash
}

func (d *data) clone() *data {
	c := &data{
		users:  make(map[string]domain.User, len(d.users)),
		tokens: make(map[string]domain.RefreshToken, len(d.tokens)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.tokens {
		c.tokens[k] = v
	}
	return c
}

type Store struct {
	mu sync.Mutex
	d  *data
}

func NewStore() *Store {
	return &Store{d: &data{
		users:  make(map[string]domain.User),
		tokens: make(map[string]domain.RefreshToken),
	}}
}

func (s *Store) Users() store.Users { return &usersRepo{s: s, d: func() *data { return s.d }} }
func (s *Store) RefreshTokens() store.RefreshTokens {
	return &tokensRepo{s: s, d: func() *data { return s.d }}
}

func (s *Store) ApplyMigrations() error         { return nil }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }

// Tx snapshots the data and holds the store lock until Commit or Rollback.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	return &txStore{s: s, work: s.d.clone()}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type txStore struct {
	s    *Store
	work *data
	done bool
}

func (t *txStore) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.d = t.work
	t.s.mu.Unlock()
	return nil
}

func (t *txStore) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.mu.Unlock()
	return nil
}

func (t *txStore) Users() store.Users { return &usersRepo{d: func() *data { return t.work }} }
func (t *txStore) RefreshTokens() store.RefreshTokens {
	return &tokensRepo{d: func() *data { return t.work }}
}

func (t *txStore) ApplyMigrations() error         { return nil }
func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, store.ErrNotFound // nested tx not supported
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrNotFound // nested tx not supported
}

// usersRepo and tokensRepo resolve their data through a closure so the same
// repo code serves both the live store and a tx snapshot. Repos created from
// the live store take the lock per call; tx repos already hold it.

type usersRepo struct {
	s *Store // nil inside a tx
	d func() *data
}

func (r *usersRepo) lock() func() {
	if r.s == nil {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	defer r.lock()()
	u, ok := r.d().users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetUserByLogin(ctx context.Context, login string) (domain.User, error) {
	defer r.lock()()
	for _, u := range r.d().users {
		if u.Username == login || u.Email == login {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	defer r.lock()()
	d := r.d()
	if _, ok := d.users[u.ID]; ok {
		return store.ErrAlreadyExists
	}
	for _, existing := range d.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return store.ErrAlreadyExists
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	d.users[u.ID] = u
	return nil
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, name, email string) error {
	defer r.lock()()
	d := r.d()
	u, ok := d.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	// The sqlite driver rejects this through the UNIQUE constraint.
	for id, existing := range d.users {
		if id != userID && existing.Email == email {
			return store.ErrAlreadyExists
		}
	}
	u.Name, u.Email = name, email
	u.UpdatedAt = time.Now().UTC()
	d.users[userID] = u
	return nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	defer r.lock()()
	d := r.d()
	u, ok := d.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = newHash
	u.UpdatedAt = time.Now().UTC()
	d.users[userID] = u
	return nil
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	defer r.lock()()
	d := r.d()
	u, ok := d.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Active = active
	u.UpdatedAt = time.Now().UTC()
	d.users[userID] = u
	return nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	defer r.lock()()
	return len(r.d().users) == 0, nil
}

type tokensRepo struct {
	s *Store
	d func() *data
}

func (r *tokensRepo) lock() func() {
	if r.s == nil {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *tokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	defer r.lock()()
	d := r.d()
	if _, ok := d.tokens[t.TokenHash]; ok {
		return store.ErrAlreadyExists
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	d.tokens[t.TokenHash] = t
	return nil
}

func (r *tokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	defer r.lock()()
	t, ok := r.d().tokens[hash]
	if !ok {
		return domain.RefreshToken{}, store.ErrNotFound
	}
	return t, nil
}

func (r *tokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	defer r.lock()()
	d := r.d()
	t, ok := d.tokens[hash]
	if !ok {
		return store.ErrNotFound
	}
	t.Revoked = true
	t.UpdatedAt = time.Now().UTC()
	d.tokens[hash] = t
	return nil
}

func (r *tokensRepo) RevokeAllUserRefreshTokens(ctx context.Context, userID string) error {
	defer r.lock()()
	d := r.d()
	for hash, t := range d.tokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			t.UpdatedAt = time.Now().UTC()
			d.tokens[hash] = t
		}
	}
	return nil
}

func (r *tokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	defer r.lock()()
	d := r.d()
	now := time.Now()
	for hash, t := range d.tokens {
		if t.ExpiresAt.Before(now) {
			delete(d.tokens, hash)
		}
	}
	return nil
}
