package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slh-community/slh-bot/internal/domain"
	"github.com/slh-community/slh-bot/internal/store"
	"github.com/slh-community/slh-bot/internal/store/memory"
	"github.com/slh-community/slh-bot/internal/usercache"
	rediswrap "github.com/slh-community/slh-bot/pkg/redis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	return NewService(memory.New(), usercache.NewCache(nil), testLogger())
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	identity := domain.Identity{ChatID: 10, Username: "alice", FirstName: "Alice"}

	first, err := svc.GetOrCreate(ctx, identity)
	require.NoError(t, err)

	second, err := svc.GetOrCreate(ctx, identity)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ChatID, second.ChatID)
}

func TestGetOrCreateRefreshesProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, domain.Identity{ChatID: 10, Username: "alice"})
	require.NoError(t, err)

	updated, err := svc.GetOrCreate(ctx, domain.Identity{ChatID: 10, Username: "alice_new", FirstName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice_new", updated.Username)
	assert.Equal(t, "Alice", updated.FirstName)
}

func TestGetOrCreateRejectsMissingChatID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetOrCreate(context.Background(), domain.Identity{Username: "ghost"})
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.GetOrCreate(ctx, domain.Identity{ChatID: 42, Username: "bob"})
	require.NoError(t, err)

	testCases := []struct {
		name   string
		target string
	}{
		{name: "by username", target: "bob"},
		{name: "by username with at", target: "@bob"},
		{name: "by chat id", target: "42"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Resolve(ctx, tc.target)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	}
}

func TestResolveUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Resolve(context.Background(), "@nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestResolveAtPrefixNeverMatchesChatID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.GetOrCreate(ctx, domain.Identity{ChatID: 777, Username: "carol"})
	require.NoError(t, err)

	// "@777" names a username, not chat id 777.
	_, err = svc.Resolve(ctx, "@777")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	got, err := svc.Resolve(ctx, "777")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

type failingUpsertStore struct {
	store.Store
	err error
}

func (f *failingUpsertStore) GetOrCreateUser(context.Context, domain.Identity) (*domain.User, error) {
	return nil, f.err
}

func TestGetOrCreateInvalidatesStaleCacheOnUpsertFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := rediswrap.New(context.Background(), rediswrap.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	cache := usercache.NewCache(client)

	st := memory.New()
	ctx := context.Background()

	_, err = NewService(st, cache, testLogger()).GetOrCreate(ctx, domain.Identity{ChatID: 10, Username: "alice"})
	require.NoError(t, err)

	cached, err := cache.Get(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, cached)

	broken := NewService(&failingUpsertStore{Store: st, err: errors.New("db down")}, cache, testLogger())
	_, err = broken.GetOrCreate(ctx, domain.Identity{ChatID: 10, Username: "alice_new"})
	require.Error(t, err)

	cached, err = cache.Get(ctx, 10)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
