package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a reachable Redis; set REDIS_TEST_URL to run them.
func testClient(t *testing.T) *RedisClient {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	rc, err := NewRedisClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestLockIsExclusive(t *testing.T) {
	rc := testClient(t)
	ctx := context.Background()
	key := "test:lock:" + uuid.NewString()

	ok, err := rc.AcquireLock(ctx, key, "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rc.AcquireLock(ctx, key, "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// wrong token leaves the lock in place
	require.NoError(t, rc.ReleaseLock(ctx, key, "b"))
	ok, _ = rc.AcquireLock(ctx, key, "b", time.Minute)
	assert.False(t, ok)

	require.NoError(t, rc.ReleaseLock(ctx, key, "a"))
	ok, err = rc.AcquireLock(ctx, key, "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	_ = rc.Del(ctx, key)
}

func TestJSONRoundTripAndMiss(t *testing.T) {
	rc := testClient(t)
	ctx := context.Background()
	key := "test:json:" + uuid.NewString()

	var out []string
	assert.ErrorIs(t, rc.GetJSON(ctx, key, &out), ErrMiss)

	require.NoError(t, rc.SetJSON(ctx, key, []string{"a", "b"}, time.Minute))
	require.NoError(t, rc.GetJSON(ctx, key, &out))
	assert.Equal(t, []string{"a", "b"}, out)

	require.NoError(t, rc.DeletePattern(ctx, "test:json:*"))
	assert.ErrorIs(t, rc.GetJSON(ctx, key, &out), ErrMiss)
}

func TestIncrWindow(t *testing.T) {
	rc := testClient(t)
	ctx := context.Background()
	key := "test:rl:" + uuid.NewString()

	n, err := rc.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, _ = rc.IncrWindow(ctx, key, time.Minute)
	assert.Equal(t, int64(2), n)
	_ = rc.Del(ctx, key)
}
