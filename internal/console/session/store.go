package session

import (
	"context"
	"errors"
)

var (
	// ErrNotFound means no session exists for the given ID. Callers treat
	// this as "unauthenticated", not as a failure.
	ErrNotFound = errors.New("session: not found")

	// ErrUnavailable means the backing storage could not be reached.
	// Reads degrade to unauthenticated rather than failing the request.
	ErrUnavailable = errors.New("session: storage unavailable")
)

// Store persists sessions keyed by the opaque session cookie value. Only the
// auth client writes token fields; everything else reads.
//
// Subscribers are notified with the session ID after every mutation. The
// contract is deliberately weak: delivery is best-effort and eventually
// consistent, with no ordering guarantee. It exists so a logout performed
// through one manager propagates to every other manager sharing the store.
type Store interface {
	Get(ctx context.Context, sid string) (Session, error)
	Put(ctx context.Context, sid string, s Session) error
	Clear(ctx context.Context, sid string) error

	// Subscribe registers an observer for session mutations and returns a
	// cancel function. The callback must not block.
	Subscribe(fn func(sid string)) (cancel func())

	Close() error
}
