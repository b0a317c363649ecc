package session

import (
	"context"
	"net/http"
)

type ctxKey struct{}

// NewContext attaches a manager to the context. Only the gate does this.
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

// FromContext returns the manager attached by the gate. It panics when none
// is present: a handler reading authentication state outside the gated tree
// is a programming error, and silently returning an unauthenticated default
// would let auth-dependent pages render with no session backing.
func FromContext(ctx context.Context) *Manager {
	m, ok := ctx.Value(ctxKey{}).(*Manager)
	if !ok {
		panic("session: no manager in context; handler mounted outside the route guard")
	}
	return m
}

// FromRequest is shorthand for FromContext(r.Context()).
func FromRequest(r *http.Request) *Manager {
	return FromContext(r.Context())
}
