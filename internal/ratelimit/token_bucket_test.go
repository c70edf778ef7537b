package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/teamgate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 20*time.Second, bucketTTL(1, 10))
	assert.Equal(t, 80*time.Second, bucketTTL(0.5, 20))
	// Never below one second, even for aggressive rates.
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestCastHelpers(t *testing.T) {
	assert.Equal(t, int64(3), castToInt(int64(3)))
	assert.Equal(t, int64(3), castToInt(3))
	assert.Equal(t, int64(3), castToInt(3.7))
	assert.Equal(t, int64(0), castToInt("3"))

	assert.Equal(t, 2.5, castToFloat(2.5))
	assert.Equal(t, 2.0, castToFloat(int64(2)))
	assert.Equal(t, 2.5, castToFloat("2.5"))
	assert.Equal(t, 0.0, castToFloat("garbage"))
	assert.Equal(t, 0.0, castToFloat(nil))
}

func TestLimiterDisabledWithoutRedis(t *testing.T) {
	l := NewAuthLimiter(config.Config{})
	require.Nil(t, l)
	assert.False(t, l.Enabled())

	// Disabled limiter fails open on every operation.
	res, err := l.AllowClient(context.Background(), "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.AllowInvite(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	token, acquired, err := l.TryLockInvite(context.Background(), "42", "a@example.com")
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.NoError(t, l.ReleaseInvite(context.Background(), "42", "a@example.com", token))
}
