package chatstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/farm-shop/internal/chat"
)

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()
	id := uuid.NewString()

	_, err := store.Load(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)

	user, err := store.LoadUser(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, user)

	state := chat.State{
		Phase:         chat.AwaitingOTP{Phone: "9876543210"},
		LoginAttempts: 2,
	}
	require.NoError(t, store.Save(ctx, id, state))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, chat.AwaitingOTP{Phone: "9876543210"}, loaded.Phase)
	assert.Equal(t, 2, loaded.LoginAttempts)

	sessions := Sessions(store, id)
	require.NoError(t, sessions.SaveUser(ctx, chat.SessionUser{ID: "c1", Username: "alice"}))
	user, err = sessions.LoadUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	require.NoError(t, sessions.ClearUser(ctx))
	user, err = sessions.LoadUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Load(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	clock := time.Now()
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Save(ctx, "s1", chat.State{Phase: chat.Idle{}}))
	require.NoError(t, store.SaveUser(ctx, "s1", chat.SessionUser{Username: "alice"}))

	clock = clock.Add(59 * time.Second)
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "s1", *loaded))

	clock = clock.Add(2 * time.Second)
	user, err := store.LoadUser(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, user, "writes within the window extend the session")

	clock = clock.Add(time.Minute)
	_, err = store.Load(ctx, "s1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_DoesNotAliasState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	user := &chat.SessionUser{Username: "alice"}
	require.NoError(t, store.Save(ctx, "s1", chat.State{Phase: chat.Idle{}, User: user}))

	user.Username = "mallory"
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.User.Username)
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), srv
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	exerciseStore(t, store)
}

func TestRedisStore_LiveServer(t *testing.T) {
	addr := os.Getenv("CHATSTORE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CHATSTORE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	exerciseStore(t, NewRedisStore(client, time.Minute))
}

func TestRedisStore_SaveRefreshesUserTTL(t *testing.T) {
	ctx := context.Background()
	store, srv := newRedisStore(t, time.Minute)

	require.NoError(t, store.SaveUser(ctx, "s1", chat.SessionUser{Username: "alice"}))
	require.NoError(t, store.Save(ctx, "s1", *chat.NewState()))
	assert.Equal(t, time.Minute, srv.TTL(stateKey("s1")))

	srv.FastForward(40 * time.Second)
	require.NoError(t, store.Save(ctx, "s1", *chat.NewState()))
	assert.Equal(t, time.Minute, srv.TTL(userKey("s1")))

	srv.FastForward(40 * time.Second)
	user, err := store.LoadUser(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	srv.FastForward(time.Minute)
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	user, err = store.LoadUser(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRedisStore_CorruptState(t *testing.T) {
	store, srv := newRedisStore(t, 0)
	require.NoError(t, srv.Set(stateKey("s1"), "{not json"))

	_, err := store.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
