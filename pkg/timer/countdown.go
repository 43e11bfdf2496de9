// Package timer provides a polling countdown that signals its expiry once.
package timer

import (
	"context"
	"sync"
	"time"
)

// Countdown tracks a wall-clock deadline. A periodic tick re-evaluates the
// deadline; the expiry callback fires at most once and never after Stop.
type Countdown struct {
	deadline time.Time
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	fired   bool
	stopped bool
	stop    chan struct{}
}

// NewCountdown creates a countdown towards deadline ticking every interval.
func NewCountdown(deadline time.Time, interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		deadline: deadline,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// WithClock replaces the clock used by Remaining, Expired and Run.
func (c *Countdown) WithClock(now func() time.Time) *Countdown {
	c.now = now
	return c
}

func (c *Countdown) Deadline() time.Time {
	return c.deadline
}

// Remaining returns the time left, never negative.
func (c *Countdown) Remaining() time.Duration {
	left := c.deadline.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}

func (c *Countdown) Expired() bool {
	return !c.now().Before(c.deadline)
}

// Tick evaluates the deadline at now and reports whether this call is the
// one that observed the expiry. Later calls, and calls after Stop, return false.
func (c *Countdown) Tick(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fired || c.stopped {
		return false
	}
	if now.Before(c.deadline) {
		return false
	}
	c.fired = true
	return true
}

// Run ticks until the deadline, Stop or ctx cancellation. onExpire runs on
// the calling goroutine when the deadline is reached.
func (c *Countdown) Run(ctx context.Context, onExpire func()) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		if c.Tick(c.now()) {
			onExpire()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the countdown. It is safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}
