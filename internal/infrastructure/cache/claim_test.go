package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClaimer(t *testing.T, ttl time.Duration) (*LoanClaimer, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c, err := OpenRedis(s.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewLoanClaimer(c, ttl), s
}

func TestLoanClaimer_Exclusive(t *testing.T) {
	cl, s := newClaimer(t, time.Minute)
	ctx := context.Background()

	release, ok, err := cl.Claim(ctx, "L1", "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, s.Exists("docgen:loan:L1"))
	assert.Equal(t, time.Minute, s.TTL("docgen:loan:L1"))

	_, ok, err = cl.Claim(ctx, "L1", "run-b")
	require.NoError(t, err)
	assert.False(t, ok)

	release(ctx)
	assert.False(t, s.Exists("docgen:loan:L1"))

	_, ok, err = cl.Claim(ctx, "L1", "run-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoanClaimer_ReleaseKeepsForeignClaim(t *testing.T) {
	cl, s := newClaimer(t, time.Minute)
	ctx := context.Background()

	release, ok, err := cl.Claim(ctx, "L2", "run-a")
	require.NoError(t, err)
	require.True(t, ok)

	// claim expired and another run took it
	s.FastForward(2 * time.Minute)
	_, ok, err = cl.Claim(ctx, "L2", "run-b")
	require.NoError(t, err)
	require.True(t, ok)

	release(ctx)
	v, err := s.Get("docgen:loan:L2")
	require.NoError(t, err)
	assert.Equal(t, "run-b", v)
}

func TestLoanClaimer_RedisDown(t *testing.T) {
	cl, s := newClaimer(t, time.Minute)
	s.Close()
	_, ok, err := cl.Claim(context.Background(), "L3", "run-a")
	assert.Error(t, err)
	assert.False(t, ok)
}
