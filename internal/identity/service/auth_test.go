package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dentalops/clinicgate/internal/identity/domain"
	"github.com/dentalops/clinicgate/internal/identity/service"
	"github.com/dentalops/clinicgate/internal/identity/store"
	"github.com/dentalops/clinicgate/internal/identity/store/drivers/memory"
	"github.com/dentalops/clinicgate/pkg/cryptox"
	"github.com/dentalops/clinicgate/pkg/idx"
	"github.com/dentalops/clinicgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthFixture(t *testing.T) (*service.AuthService, store.Store, domain.User) {
	t.Helper()
	ctx := context.Background()

	codec, err := jwtx.NewHS256([]byte(testSecret), "identity-test")
	require.NoError(t, err)

	st := memory.NewStore()
	t.Cleanup(func() { _ = st.Close() })

	hash, err := cryptox.HashPassword("hunter22")
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		Email:        "alice@clinic.local",
		Name:         "Alice Nguyen",
		PasswordHash: hash,
		Role:         domain.RoleStaff,
		Active:       true,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))

	svc := &service.AuthService{
		Signer:     codec,
		Verifier:   codec,
		Store:      st,
		Issuer:     "identity-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	return svc, st, u
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("by username", func(t *testing.T) {
		svc, _, u := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, 15*time.Minute, pair.ExpiresIn)
		require.Equal(t, u.ID, pair.User.ID)
	})

	t.Run("by email", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		_, err := svc.Login(ctx, "alice@clinic.local", "hunter22")
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		_, err := svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown user looks like wrong password", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		_, err := svc.Login(ctx, "mallory", "hunter22")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("disabled account with right password", func(t *testing.T) {
		svc, st, u := newAuthFixture(t)
		require.NoError(t, st.Users().SetActive(ctx, u.ID, false))

		_, err := svc.Login(ctx, "alice", "hunter22")
		require.ErrorIs(t, err, service.ErrAccountDisabled)
	})

	t.Run("access token carries identity claims", func(t *testing.T) {
		svc, _, u := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)

		claims, err := svc.Verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		require.Equal(t, "alice", claims.Username)
		require.Equal(t, domain.RoleStaff, claims.Role)
		require.NotEmpty(t, claims.SID)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotation mints a new pair", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)

		next, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, next.AccessToken)
		require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	})

	t.Run("session id survives rotation", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		first, err := svc.Verifier.Verify(pair.AccessToken)
		require.NoError(t, err)

		next, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		second, err := svc.Verifier.Verify(next.AccessToken)
		require.NoError(t, err)

		require.Equal(t, first.SID, second.SID)
	})

	t.Run("old token is dead after rotation", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	})

	t.Run("replay of a revoked token kills the whole family", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		next, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		// Replaying the rotated-away token signals a leak.
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidRefresh)

		// The descendant dies with it.
		_, err = svc.Refresh(ctx, next.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		_, err := svc.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	})

	t.Run("deactivated user cannot refresh", func(t *testing.T) {
		svc, st, u := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		require.NoError(t, st.Users().SetActive(ctx, u.ID, false))

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("live token and active user", func(t *testing.T) {
		svc, _, u := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)

		got, err := svc.Validate(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		_, err := svc.Validate(ctx, "garbage")
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("deactivation takes effect before token expiry", func(t *testing.T) {
		svc, st, u := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		require.NoError(t, st.Users().SetActive(ctx, u.ID, false))

		_, err = svc.Validate(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrInvalidToken)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("revokes every refresh token", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)

		pair, err := svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, pair.AccessToken))

		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	})

	t.Run("invalid token is not an error", func(t *testing.T) {
		svc, _, _ := newAuthFixture(t)
		require.NoError(t, svc.Logout(ctx, "garbage"))
	})
}
