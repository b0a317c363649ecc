package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dentalops/clinicgate/internal/console/authclient"
	consolehttp "github.com/dentalops/clinicgate/internal/console/http"
	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/dentalops/clinicgate/internal/platform/metrics"
	"github.com/stretchr/testify/require"
)

// stubAuthAPI mimics the auth client: success persists into the shared store,
// a bad password comes back as a credential error.
type stubAuthAPI struct {
	store    session.Store
	password string
}

func (s *stubAuthAPI) Login(ctx context.Context, sid, login, password string) (session.Session, error) {
	if password != s.password {
		return session.Session{}, &authclient.CredentialError{
			Message:     "invalid credentials",
			Status:      http.StatusUnauthorized,
			FieldErrors: map[string]string{"password": "did not match"},
		}
	}
	sess := session.Session{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(15 * time.Minute),
		User:         session.UserProfile{ID: "u1", Name: "Alice", Email: login, Active: true},
	}
	return sess, s.store.Put(ctx, sid, sess)
}

func (s *stubAuthAPI) Logout(ctx context.Context, sid string) error {
	return s.store.Clear(ctx, sid)
}

func (s *stubAuthAPI) UpdateUser(ctx context.Context, sid string, patch session.UserPatch) (session.UserProfile, error) {
	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		return session.UserProfile{}, err
	}
	sess.User = patch.Apply(sess.User)
	return sess.User, s.store.Put(ctx, sid, sess)
}

type sessionFixture struct {
	handler *consolehttp.SessionHandler
	store   *session.MemoryStore
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	store := session.NewMemoryStore(time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManagers(store, &stubAuthAPI{store: store, password: "hunter22"}, log)
	t.Cleanup(sessions.Close)

	return &sessionFixture{
		handler: &consolehttp.SessionHandler{
			Sessions:   sessions,
			Metrics:    metrics.Nop(),
			Secure:     false,
			SessionTTL: time.Hour,
		},
		store: store,
	}
}

func postLogin(t *testing.T, f *sessionFixture, login, password string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"login": login, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.HandleLogin(rec, req)
	return rec
}

func TestHandleLogin(t *testing.T) {
	t.Parallel()

	t.Run("success sets both cookies together", func(t *testing.T) {
		f := newSessionFixture(t)
		rec := postLogin(t, f, "alice@clinic.local", "hunter22")

		require.Equal(t, http.StatusOK, rec.Code)

		var sid, flag *http.Cookie
		for _, c := range rec.Result().Cookies() {
			switch c.Name {
			case session.SIDCookie:
				sid = c
			case session.AuthFlagCookie:
				flag = c
			}
		}
		require.NotNil(t, sid)
		require.NotNil(t, flag)
		require.True(t, sid.HttpOnly)
		require.False(t, flag.HttpOnly)
		require.Equal(t, "1", flag.Value)

		// And the token really is behind the flag.
		stored, err := f.store.Get(context.Background(), sid.Value)
		require.NoError(t, err)
		require.True(t, stored.HasAccessToken())

		var snap struct {
			IsAuthenticated bool `json:"isAuthenticated"`
			User            *struct {
				Name string `json:"name"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		require.True(t, snap.IsAuthenticated)
		require.Equal(t, "Alice", snap.User.Name)
	})

	t.Run("rejected login sets no cookies", func(t *testing.T) {
		f := newSessionFixture(t)
		rec := postLogin(t, f, "alice@clinic.local", "wrong")

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, rec.Result().Cookies())

		var body struct {
			Message     string            `json:"message"`
			FieldErrors map[string]string `json:"fieldErrors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "invalid credentials", body.Message)
		require.Equal(t, "did not match", body.FieldErrors["password"])
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newSessionFixture(t)
		rec := postLogin(t, f, "", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGet(t *testing.T) {
	t.Parallel()

	t.Run("no cookie yields an anonymous snapshot", func(t *testing.T) {
		f := newSessionFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
		rec := httptest.NewRecorder()
		f.handler.HandleGet(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

		var snap struct {
			IsAuthenticated bool            `json:"isAuthenticated"`
			User            json.RawMessage `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		require.False(t, snap.IsAuthenticated)
		require.Equal(t, "null", string(snap.User))
	})

	t.Run("after login the snapshot is authenticated", func(t *testing.T) {
		f := newSessionFixture(t)
		loginRec := postLogin(t, f, "alice@clinic.local", "hunter22")

		req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
		for _, c := range loginRec.Result().Cookies() {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		f.handler.HandleGet(rec, req)

		var snap struct {
			IsAuthenticated bool `json:"isAuthenticated"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		require.True(t, snap.IsAuthenticated)
	})
}

func TestHandleLogout(t *testing.T) {
	t.Parallel()

	f := newSessionFixture(t)
	loginRec := postLogin(t, f, "alice@clinic.local", "hunter22")

	req := httptest.NewRequest(http.MethodDelete, "/api/session", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.HandleLogout(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	for _, c := range rec.Result().Cookies() {
		require.Negative(t, c.MaxAge)
	}

	// Logging out without any session is still a 204.
	rec = httptest.NewRecorder()
	f.handler.HandleLogout(rec, httptest.NewRequest(http.MethodDelete, "/api/session", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleUpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		f := newSessionFixture(t)

		body := bytes.NewReader([]byte(`{"name":"X"}`))
		req := httptest.NewRequest(http.MethodPatch, "/api/session/user", body)
		rec := httptest.NewRecorder()
		f.handler.HandleUpdateUser(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("patches the cached profile", func(t *testing.T) {
		f := newSessionFixture(t)
		loginRec := postLogin(t, f, "alice@clinic.local", "hunter22")

		body := bytes.NewReader([]byte(`{"name":"Alice Updated"}`))
		req := httptest.NewRequest(http.MethodPatch, "/api/session/user", body)
		req.Header.Set("Content-Type", "application/json")
		for _, c := range loginRec.Result().Cookies() {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		f.handler.HandleUpdateUser(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var user session.UserProfile
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.Equal(t, "Alice Updated", user.Name)
		require.Equal(t, "alice@clinic.local", user.Email)
	})
}
