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

	"github.com/dentalops/clinicgate/internal/identity/domain"
	httpapi "github.com/dentalops/clinicgate/internal/identity/http"
	"github.com/dentalops/clinicgate/internal/identity/service"
	"github.com/dentalops/clinicgate/internal/identity/store/drivers/memory"
	"github.com/dentalops/clinicgate/pkg/cryptox"
	"github.com/dentalops/clinicgate/pkg/idx"
	"github.com/dentalops/clinicgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T) *httpapi.Router {
	t.Helper()
	ctx := context.Background()

	codec, err := jwtx.NewHS256([]byte(testSecret), "identity-test")
	require.NoError(t, err)

	st := memory.NewStore()
	t.Cleanup(func() { _ = st.Close() })

	hash, err := cryptox.HashPassword("hunter22")
	require.NoError(t, err)
	require.NoError(t, st.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		Email:        "alice@clinic.local",
		Name:         "Alice Nguyen",
		PasswordHash: hash,
		Role:         domain.RoleStaff,
		Active:       true,
	}))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(codec, "test", st, log)
	router.AuthService = &service.AuthService{
		Signer:     codec,
		Verifier:   codec,
		Store:      st,
		Issuer:     "identity-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	router.UserService = &service.UserService{Store: st}
	router.ApplyRoutes()
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type tokenReply struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
	User         struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

func login(t *testing.T, router http.Handler) tokenReply {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "",
		map[string]string{"login": "alice", "password": "hunter22"})
	require.Equal(t, http.StatusOK, rec.Code)

	var reply tokenReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	return reply
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("success returns a token pair", func(t *testing.T) {
		router := newTestRouter(t)
		reply := login(t, router)

		require.NotEmpty(t, reply.AccessToken)
		require.NotEmpty(t, reply.RefreshToken)
		require.Equal(t, "Bearer", reply.TokenType)
		require.Equal(t, 900, reply.ExpiresIn)
		require.Equal(t, "alice", reply.User.Username)
		require.Equal(t, "staff", reply.User.Role)
	})

	t.Run("bad password", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "",
			map[string]string{"login": "alice", "password": "wrong"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields get field errors", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(t, router, http.MethodPost, "/v1/auth/login", "",
			map[string]string{"login": "alice"})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			FieldErrors map[string]string `json:"fieldErrors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, body.FieldErrors, "password")
	})
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid bearer", func(t *testing.T) {
		router := newTestRouter(t)
		reply := login(t, router)

		rec := doJSON(t, router, http.MethodGet, "/v1/auth/validate", reply.AccessToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing bearer", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(t, router, http.MethodGet, "/v1/auth/validate", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage bearer", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(t, router, http.MethodGet, "/v1/auth/validate", "garbage", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("rotation", func(t *testing.T) {
		router := newTestRouter(t)
		reply := login(t, router)

		rec := doJSON(t, router, http.MethodPost, "/v1/auth/refresh", "",
			map[string]string{"refreshToken": reply.RefreshToken})
		require.Equal(t, http.StatusOK, rec.Code)

		var next tokenReply
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
		require.NotEqual(t, reply.RefreshToken, next.RefreshToken)

		// The old token died in the rotation.
		rec = doJSON(t, router, http.MethodPost, "/v1/auth/refresh", "",
			map[string]string{"refreshToken": reply.RefreshToken})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token is a 400", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(t, router, http.MethodPost, "/v1/auth/refresh", "", map[string]string{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	reply := login(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/logout", reply.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Refresh tokens are revoked by logout.
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/refresh", "",
		map[string]string{"refreshToken": reply.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// A dead token logs out quietly.
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/logout", "garbage", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUsersMeEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("get me", func(t *testing.T) {
		router := newTestRouter(t)
		reply := login(t, router)

		rec := doJSON(t, router, http.MethodGet, "/v1/users/me", reply.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var user struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.Equal(t, "alice@clinic.local", user.Email)
	})

	t.Run("patch me", func(t *testing.T) {
		router := newTestRouter(t)
		reply := login(t, router)

		rec := doJSON(t, router, http.MethodPatch, "/v1/users/me", reply.AccessToken,
			map[string]string{"name": "Alice Updated"})
		require.Equal(t, http.StatusOK, rec.Code)

		var user struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		require.Equal(t, "Alice Updated", user.Name)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		router := newTestRouter(t)
		rec := doJSON(t, router, http.MethodGet, "/v1/users/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("change password", func(t *testing.T) {
		router := newTestRouter(t)
		reply := login(t, router)

		rec := doJSON(t, router, http.MethodPost, "/v1/users/me/password", reply.AccessToken,
			map[string]string{"currentPassword": "hunter22", "newPassword": "evenbetter23"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		// Old refresh token family is gone.
		rec = doJSON(t, router, http.MethodPost, "/v1/auth/refresh", "",
			map[string]string{"refreshToken": reply.RefreshToken})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong current password", func(t *testing.T) {
		router := newTestRouter(t)
		reply := login(t, router)

		rec := doJSON(t, router, http.MethodPost, "/v1/users/me/password", reply.AccessToken,
			map[string]string{"currentPassword": "wrong", "newPassword": "evenbetter23"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body.Status)
}
