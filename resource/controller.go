// Package resource bounds the load the directory engine puts on a backing store.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultMaxConcurrentCalls is used when Config.MaxConcurrentCalls is not set.
const DefaultMaxConcurrentCalls = 8

// Config holds resource limits.
type Config struct {
	// MaxConcurrentCalls is the maximum number of backing store calls in flight.
	// If 0, defaults to DefaultMaxConcurrentCalls.
	MaxConcurrentCalls int64

	// CallsPerSecond limits the sustained backing store call rate.
	// If 0, unlimited.
	CallsPerSecond float64

	// Burst is the rate limiter bucket size. Defaults to MaxConcurrentCalls.
	Burst int

	// BytesPerSecond limits payload throughput for writes.
	// If 0, unlimited.
	BytesPerSecond int64
}

// Controller manages concurrency and rate limits for store calls.
type Controller struct {
	cfg Config

	callSem  *semaphore.Weighted
	inFlight atomic.Int64

	callLimiter *rate.Limiter // nil if unlimited
	ioLimiter   *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentCalls <= 0 {
		cfg.MaxConcurrentCalls = DefaultMaxConcurrentCalls
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.MaxConcurrentCalls)
	}

	c := &Controller{
		cfg:     cfg,
		callSem: semaphore.NewWeighted(cfg.MaxConcurrentCalls),
	}

	if cfg.CallsPerSecond > 0 {
		c.callLimiter = rate.NewLimiter(rate.Limit(cfg.CallsPerSecond), cfg.Burst)
	}

	if cfg.BytesPerSecond > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSecond), int(cfg.BytesPerSecond))
	}

	return c
}

// Concurrency returns the configured call concurrency.
// A nil Controller reports DefaultMaxConcurrentCalls.
func (c *Controller) Concurrency() int {
	if c == nil {
		return DefaultMaxConcurrentCalls
	}
	return int(c.cfg.MaxConcurrentCalls)
}

// AcquireCall reserves a call slot and waits for the rate limiter.
// Blocks until a slot is available or ctx is canceled.
func (c *Controller) AcquireCall(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.callSem.Acquire(ctx, 1); err != nil {
		return err
	}
	if c.callLimiter != nil {
		if err := c.callLimiter.Wait(ctx); err != nil {
			c.callSem.Release(1)
			return err
		}
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireCall attempts to reserve a call slot without blocking.
// The rate limiter is consulted without waiting.
func (c *Controller) TryAcquireCall() bool {
	if c == nil {
		return true
	}
	if !c.callSem.TryAcquire(1) {
		return false
	}
	if c.callLimiter != nil && !c.callLimiter.Allow() {
		c.callSem.Release(1)
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseCall releases a call slot.
func (c *Controller) ReleaseCall() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.callSem.Release(1)
}

// InFlight returns the number of calls currently holding a slot.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}
	// WaitN rejects requests above the burst size; split them.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
