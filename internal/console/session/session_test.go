package session_test

import (
	"testing"
	"time"

	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/stretchr/testify/require"
)

func TestLooksAuthenticated(t *testing.T) {
	t.Parallel()

	t.Run("no access token", func(t *testing.T) {
		require.False(t, session.Session{}.LooksAuthenticated())
	})

	t.Run("token without expiry", func(t *testing.T) {
		s := session.Session{AccessToken: "tok"}
		require.True(t, s.LooksAuthenticated())
	})

	t.Run("token with future expiry", func(t *testing.T) {
		s := session.Session{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Minute)}
		require.True(t, s.LooksAuthenticated())
	})

	t.Run("expired token", func(t *testing.T) {
		s := session.Session{AccessToken: "tok", ExpiresAt: time.Now().Add(-time.Minute)}
		require.False(t, s.LooksAuthenticated())
	})
}

func TestUserPatchApply(t *testing.T) {
	t.Parallel()

	base := session.UserProfile{
		ID:    "u1",
		Name:  "Alice Nguyen",
		Email: "alice@clinic.local",
		Role:  "staff",
	}

	t.Run("nil fields untouched", func(t *testing.T) {
		got := session.UserPatch{}.Apply(base)
		require.Equal(t, base, got)
	})

	t.Run("set fields replace", func(t *testing.T) {
		name := "Alice N."
		email := "an@clinic.local"
		got := session.UserPatch{Name: &name, Email: &email}.Apply(base)
		require.Equal(t, "Alice N.", got.Name)
		require.Equal(t, "an@clinic.local", got.Email)
		require.Equal(t, "staff", got.Role)
	})

	t.Run("empty string is a real value", func(t *testing.T) {
		empty := ""
		got := session.UserPatch{Name: &empty}.Apply(base)
		require.Empty(t, got.Name)
	})
}
