package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/dentalops/clinicgate/internal/console/session"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore(time.Hour)
	sess := session.Session{AccessToken: "a", RefreshToken: "r"}

	require.NoError(t, store.Put(ctx, "sid", sess))

	got, err := store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Equal(t, sess, got)

	require.NoError(t, store.Clear(ctx, "sid"))
	_, err = store.Get(ctx, "sid")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore(time.Millisecond)
	require.NoError(t, store.Put(ctx, "sid", session.Session{AccessToken: "a"}))

	time.Sleep(5 * time.Millisecond)

	_, err := store.Get(ctx, "sid")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStoreSubscribe(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := session.NewMemoryStore(time.Hour)

	var seen []string
	cancel := store.Subscribe(func(sid string) { seen = append(seen, sid) })

	require.NoError(t, store.Put(ctx, "sid-1", session.Session{AccessToken: "a"}))
	require.NoError(t, store.Clear(ctx, "sid-1"))

	// Clearing a session that does not exist is silent.
	require.NoError(t, store.Clear(ctx, "sid-2"))

	require.Equal(t, []string{"sid-1", "sid-1"}, seen)

	cancel()
	require.NoError(t, store.Put(ctx, "sid-3", session.Session{AccessToken: "a"}))
	require.Len(t, seen, 2)
}
