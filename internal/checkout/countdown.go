package checkout

import (
	"context"
	"sync"
	"time"
)

const DefaultCountdownSeconds = 60

// Countdown ticks down once per interval and calls onExpire when it reaches
// zero. Each Start gets its own context so a stale ticker can never touch a
// restarted countdown.
type Countdown struct {
	mu        sync.Mutex
	total     int
	remaining int
	interval  time.Duration
	cancel    context.CancelFunc
	onExpire  func()
}

func NewCountdown(seconds int, interval time.Duration, onExpire func()) *Countdown {
	if seconds <= 0 {
		seconds = DefaultCountdownSeconds
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		total:     seconds,
		remaining: seconds,
		interval:  interval,
		onExpire:  onExpire,
	}
}

func (c *Countdown) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	if c.remaining <= 0 {
		c.remaining = c.total
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.run(ctx)
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Reset stops any running ticker and restores the full duration.
func (c *Countdown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.remaining = c.total
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Countdown) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Countdown) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.tick(ctx) {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		}
	}
}

func (c *Countdown) tick(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.stopLocked()
	return true
}
