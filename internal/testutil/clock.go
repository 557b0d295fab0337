package testutil

import (
	"sync"
	"time"
)

// Clock hands out strictly increasing timestamps, one step apart, starting at a fixed instant.
// Safe for concurrent use.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func NewClock() *Clock {
	return &Clock{
		now:  time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

// Now advances the clock by one step and returns the new instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}
