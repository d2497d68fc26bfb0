package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) (*Redis, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return NewRedis(client), mr, cleanup
}

func TestRedisGetMiss(t *testing.T) {
	t.Parallel()
	c, _, cleanup := setupTest(t)
	defer cleanup()

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisSetGetRoundTrip(t *testing.T) {
	t.Parallel()
	c, _, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "k", []byte(`{"a":1}`), time.Hour))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), got)
}

func TestRedisTTLExpiry(t *testing.T) {
	t.Parallel()
	c, mr, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "k", []byte("v"), 100*time.Second))

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(101 * time.Second)

	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisDelete(t *testing.T) {
	t.Parallel()
	c, _, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	// Deleting an absent key is fine.
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestRedisIncrementRequiresExistingKey(t *testing.T) {
	t.Parallel()
	c, _, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	_, err := c.Increment(ctx, "counter", 1)
	assert.ErrorIs(t, err, ErrMiss, "increment must not create counters")

	require.NoError(t, c.SetWithTTL(ctx, "counter", []byte("5"), time.Hour))

	n, err := c.Increment(ctx, "counter", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	n, err = c.Increment(ctx, "counter", -8)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestRedisExists(t *testing.T) {
	t.Parallel()
	c, _, cleanup := setupTest(t)
	defer cleanup()
	ctx := context.Background()

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetWithTTL(ctx, "k", []byte("v"), time.Hour))

	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNoopNeverStores(t *testing.T) {
	t.Parallel()
	var c Cache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "k", []byte("v"), time.Hour))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Increment(ctx, "k", 1)
	assert.ErrorIs(t, err, ErrMiss)

	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestKeyLayout(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "comments:post:42", PostCommentsKey(42))
	assert.Equal(t, "post:comment_count:42", PostCommentCountKey(42))
}
