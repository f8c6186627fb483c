package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Concurrency(t *testing.T) {
	c := NewController(Config{MaxConcurrentCalls: 2})
	assert.Equal(t, 2, c.Concurrency())

	// Acquire 2
	require.NoError(t, c.AcquireCall(context.Background()))
	require.NoError(t, c.AcquireCall(context.Background()))
	assert.Equal(t, int64(2), c.InFlight())

	// Try 3rd
	assert.False(t, c.TryAcquireCall())

	// Blocking acquire should time out
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireCall(ctx), context.DeadlineExceeded)

	// Release 1
	c.ReleaseCall()
	assert.Equal(t, int64(1), c.InFlight())

	// Try 3rd again
	assert.True(t, c.TryAcquireCall())
}

func TestController_Defaults(t *testing.T) {
	c := NewController(Config{})
	assert.Equal(t, DefaultMaxConcurrentCalls, c.Concurrency())

	var nilController *Controller
	assert.Equal(t, DefaultMaxConcurrentCalls, nilController.Concurrency())
	require.NoError(t, nilController.AcquireCall(context.Background()))
	assert.True(t, nilController.TryAcquireCall())
	nilController.ReleaseCall()
	require.NoError(t, nilController.AcquireIO(context.Background(), 1<<20))
}

func TestController_CallRate(t *testing.T) {
	c := NewController(Config{MaxConcurrentCalls: 4, CallsPerSecond: 1, Burst: 1})

	assert.True(t, c.TryAcquireCall())
	c.ReleaseCall()

	// Bucket is empty until the next token arrives.
	assert.False(t, c.TryAcquireCall())
	assert.Equal(t, int64(0), c.InFlight())
}

func TestController_IOLimitSplitsLargeRequests(t *testing.T) {
	c := NewController(Config{BytesPerSecond: 1 << 20})

	// Larger than the burst; must not fail with "exceeds burst".
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.AcquireIO(ctx, 1<<20+1))
}
