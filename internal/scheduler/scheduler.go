// Package scheduler wraps cron into an explicit repeating-task handle: one
// function, run immediately on start and then at a fixed period, with an
// observable stop.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Cycle struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewCycle(interval time.Duration, fn func()) *Cycle {
	return &Cycle{interval: interval, fn: fn}
}

// Start runs the function once right away and then on every tick. Starting a
// running cycle is a no-op.
func (c *Cycle) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	cr := cron.New()
	if _, err := cr.AddFunc(fmt.Sprintf("@every %s", c.interval), c.fn); err != nil {
		return fmt.Errorf("schedule cycle: %w", err)
	}
	c.cron = cr
	c.running = true

	go c.fn()
	cr.Start()
	return nil
}

// Stop cancels future ticks. Ticks already in flight run to completion.
func (c *Cycle) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.cron.Stop()
	c.cron = nil
	c.running = false
}

func (c *Cycle) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
