package gate_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dentalops/clinicgate/internal/console/gate"
	"github.com/dentalops/clinicgate/internal/console/routes"
	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/internal/platform/metrics"
	"github.com/dentalops/clinicgate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

type guardAuthStub struct {
	hasToken  bool
	valid     bool
	validated int
	logouts   int
}

func (s *guardAuthStub) HasAccessToken(context.Context, string) bool { return s.hasToken }

func (s *guardAuthStub) ValidateSession(context.Context, string) bool {
	s.validated++
	return s.valid
}

func (s *guardAuthStub) Logout(context.Context, string) error {
	s.logouts++
	return nil
}

type nopAuthAPI struct{}

func (nopAuthAPI) Login(context.Context, string, string, string) (session.Session, error) {
	return session.Session{}, nil
}
func (nopAuthAPI) Logout(context.Context, string) error { return nil }
func (nopAuthAPI) UpdateUser(context.Context, string, session.UserPatch) (session.UserProfile, error) {
	return session.UserProfile{}, nil
}

type guardFixture struct {
	guard    *gate.Guard
	auth     *guardAuthStub
	store    *session.MemoryStore
	sessions *session.Managers
}

func newGuardFixture(t *testing.T, auth *guardAuthStub) *guardFixture {
	t.Helper()

	store := session.NewMemoryStore(time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManagers(store, nopAuthAPI{}, log)
	t.Cleanup(sessions.Close)

	return &guardFixture{
		guard:    gate.NewGuard(routes.Default(), auth, sessions, metrics.Nop(), false),
		auth:     auth,
		store:    store,
		sessions: sessions,
	}
}

func (f *guardFixture) do(path, sid string, next http.Handler) *httptest.ResponseRecorder {
	if next == nil {
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}
	h := f.guard.Middleware()(next)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: session.SIDCookie, Value: sid})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuardPublicPathSkipsBackend(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{})
	rec := f.do("/login", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, f.auth.validated)
}

func TestGuardAttachesManagerToContext(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{})
	var attached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, session.FromRequest(r))
		attached = true
		w.WriteHeader(http.StatusOK)
	})

	rec := f.do("/login", "", next)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, attached)
}

func TestGuardDeniesWithoutSession(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{})
	rec := f.do("/dashboard", "", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?redirect=%2Fdashboard", rec.Header().Get("Location"))
	require.Zero(t, f.auth.validated)
}

func TestGuardDeniesWithoutToken(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{hasToken: false})
	rec := f.do("/dashboard", "sid-1", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Zero(t, f.auth.validated)
}

func TestGuardValidatesAndPasses(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{hasToken: true, valid: true})
	rec := f.do("/dashboard", "sid-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.auth.validated)
	require.Zero(t, f.auth.logouts)
}

func TestGuardEndsSessionOnRejectedValidation(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{hasToken: true, valid: false})
	rec := f.do("/dashboard", "sid-1", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?redirect=%2Fdashboard", rec.Header().Get("Location"))
	require.Equal(t, 1, f.auth.logouts)

	// Both cookies are expired in the response.
	cookies := rec.Result().Cookies()
	expired := map[string]bool{}
	for _, c := range cookies {
		if c.MaxAge < 0 {
			expired[c.Name] = true
		}
	}
	require.True(t, expired[session.SIDCookie])
	require.True(t, expired[session.AuthFlagCookie])
}

func TestGuardClearsStaleCookiesOnDeny(t *testing.T) {
	t.Parallel()

	// A browser can hold both cookies while the store has lost the session,
	// for example after a gateway restart with the memory store. The first
	// denied navigation must expire the cookies, otherwise the edge filter
	// keeps bouncing the login screen back to the dashboard.
	f := newGuardFixture(t, &guardAuthStub{hasToken: false})
	h := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		gate.EdgeFilter(routes.Default(), metrics.Nop()),
		f.guard.Middleware(),
	)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.SIDCookie, Value: "sid-1"})
	req.AddCookie(&http.Cookie{Name: session.AuthFlagCookie, Value: "1"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login?redirect=%2Fdashboard", rec.Header().Get("Location"))

	expired := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			expired[c.Name] = true
		}
	}
	require.True(t, expired[session.SIDCookie])
	require.True(t, expired[session.AuthFlagCookie])

	// With the cookies gone the login screen renders instead of bouncing.
	req = httptest.NewRequest(http.MethodGet, "/login?redirect=%2Fdashboard", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardAnswersAPIWith401(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{})
	rec := f.do("/api/patients", "", nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, rec.Header().Get("Location"))
	require.Contains(t, rec.Body.String(), "authentication required")
}

func TestGuardBouncesAuthenticatedOffLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newGuardFixture(t, &guardAuthStub{hasToken: true, valid: true})
	require.NoError(t, f.store.Put(ctx, "sid-1", session.Session{
		AccessToken: "tok",
		ExpiresAt:   time.Now().Add(time.Minute),
		User:        session.UserProfile{ID: "u1", Active: true},
	}))

	rec := f.do("/login", "sid-1", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Zero(t, f.auth.validated)
}

func TestGuardValidatesUnclassifiedPaths(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{hasToken: true, valid: true})
	rec := f.do("/some-new-page", "sid-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.auth.validated)
}

func TestGuardSkipsOperationalPaths(t *testing.T) {
	t.Parallel()

	f := newGuardFixture(t, &guardAuthStub{})
	rec := f.do("/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, f.auth.validated)
}
