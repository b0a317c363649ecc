package gate

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dentalops/clinicgate/internal/console/routes"
	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/internal/platform/metrics"
	"github.com/dentalops/clinicgate/pkg/httpx"
	"github.com/dentalops/clinicgate/pkg/slogx"
)

// GuardAuth is the slice of the auth client the guard needs.
type GuardAuth interface {
	HasAccessToken(ctx context.Context, sid string) bool
	ValidateSession(ctx context.Context, sid string) bool
	Logout(ctx context.Context, sid string) error
}

// Guard is the authoritative authorization layer. Unlike the edge filter it
// reads the session store and, for every navigation to a non-public path,
// validates the access token against the identity backend. A rejected
// validation ends the session: store cleared, cookies expired, redirect to
// login (or a 401 for API requests).
//
// Concurrent navigations from the same session to the same path share a
// single backend validation. Each navigation also bumps a per-session
// generation counter; a navigation that has been superseded still answers for
// its own path but no longer refreshes the shared snapshot, so a stale
// resolution cannot leak into a newer navigation's state.
type Guard struct {
	routes   *routes.Table
	auth     GuardAuth
	sessions *session.Managers
	metrics  *metrics.Metrics
	secure   bool

	group singleflight.Group

	mu  sync.Mutex
	nav map[string]uint64
}

// NewGuard wires the guard. secure controls the Secure attribute on the
// cookies it clears when it ends a session.
func NewGuard(tbl *routes.Table, auth GuardAuth, sessions *session.Managers, m *metrics.Metrics, secure bool) *Guard {
	return &Guard{
		routes:   tbl,
		auth:     auth,
		sessions: sessions,
		metrics:  m,
		secure:   secure,
		nav:      make(map[string]uint64),
	}
}

// Middleware returns the guard as a chainable middleware. Every handler
// mounted behind it can rely on session.FromRequest.
func (g *Guard) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(w, r, next)
		})
	}
}

func (g *Guard) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	path := r.URL.Path
	if g.routes.Skip(path) {
		next.ServeHTTP(w, r)
		return
	}

	sid := session.SIDFromRequest(r)
	mgr := g.sessions.For(sid)
	ctx := session.NewContext(r.Context(), mgr)
	r = r.WithContext(ctx)
	log := slogx.FromContext(ctx)

	if g.routes.IsPublic(path) {
		// Signed-in users get bounced off the login screen. Local check
		// only; a stale session just means one extra round trip through
		// the dashboard's own validation.
		if path == g.routes.LoginPath && mgr.Snapshot().IsAuthenticated {
			g.metrics.GateRedirects.WithLabelValues("guard", "already_authenticated").Inc()
			http.Redirect(w, r, g.routes.DashboardPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
		return
	}

	// Everything else requires a live session. Fail closed. A flag cookie
	// that outlived its store entry would ping-pong between the edge
	// filter and the login redirect, so any leftover cookies are expired
	// before the deny.
	if sid == "" || !g.auth.HasAccessToken(ctx, sid) {
		g.metrics.GateRedirects.WithLabelValues("guard", "no_token").Inc()
		if sid != "" || session.AuthFlagFromRequest(r) {
			g.sessions.Drop(sid)
			session.ClearAuthCookies(w, g.secure)
		}
		g.deny(w, r, path)
		return
	}

	gen := g.beginNav(sid)
	v, _, _ := g.group.Do(sid+"\x00"+path, func() (any, error) {
		return g.auth.ValidateSession(ctx, sid), nil
	})
	if !v.(bool) {
		g.metrics.SessionValidations.WithLabelValues("rejected").Inc()
		log.Info("session validation rejected, ending session", "path", path)
		g.endSession(ctx, w, sid)
		g.deny(w, r, path)
		return
	}
	g.metrics.SessionValidations.WithLabelValues("ok").Inc()

	if g.currentNav(sid) == gen {
		mgr.CheckAuth(ctx)
	}
	next.ServeHTTP(w, r)
}

// endSession clears every trace of the session: server-side revocation
// (best-effort, inside Logout), the store record, the per-session manager and
// both cookies.
func (g *Guard) endSession(ctx context.Context, w http.ResponseWriter, sid string) {
	_ = g.auth.Logout(ctx, sid)
	g.sessions.Drop(sid)
	session.ClearAuthCookies(w, g.secure)
}

// deny answers an unauthenticated request: 401 for the API surface, a login
// redirect carrying the original destination for page navigations.
func (g *Guard) deny(w http.ResponseWriter, r *http.Request, path string) {
	if g.routes.IsAPI(path) {
		httpx.WriteMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}
	http.Redirect(w, r, loginURL(g.routes, path), http.StatusFound)
}

func (g *Guard) beginNav(sid string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nav[sid]++
	return g.nav[sid]
}

func (g *Guard) currentNav(sid string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nav[sid]
}
