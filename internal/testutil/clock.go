// Package testutil holds deterministic stand-ins for the time and identity
// sources used by the runner, the history store and the timing utility.
package testutil

import (
	"sync"
	"time"
)

// Epoch is the wall time a DeterministicClock reports before its first tick.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a resettable logical clock. Next hands out 1, 2, 3...
// and Now maps the same counter onto wall time, advancing by Step per call,
// so code that measures durations sees exact multiples of Step.
//
// All methods are safe for concurrent use.
type DeterministicClock struct {
	mu   sync.Mutex
	seq  int64
	Step time.Duration
}

// NewDeterministicClock creates a clock at 0 with a one second step.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{Step: time.Second}
}

// Next increments and returns the sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Now advances the clock and returns Epoch + seq*Step. It has the shape of
// time.Now so it can be plugged into a timing.Timer.
func (c *DeterministicClock) Now() time.Time {
	seq := c.Next()
	c.mu.Lock()
	step := c.Step
	c.mu.Unlock()
	return Epoch.Add(time.Duration(seq) * step)
}

// Reset rewinds the clock to 0; the next call to Next returns 1.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
