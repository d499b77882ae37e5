package testutil

import (
	"sync"
	"time"

	"github.com/roach88/rksledger/internal/model"
)

// FixedClock is a settable wall clock for tests.
//
// The ledger reads "today" from its clock for renewal bases, default payment
// and RSVP dates, and active-membership checks. FixedClock pins that value so
// scenarios produce the same end dates on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock that reads noon local time on the given date.
func NewFixedClock(d model.Date) *FixedClock {
	c := &FixedClock{}
	c.SetDate(d)
	return c
}

// Now returns the pinned time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set pins the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// SetDate pins the clock to noon local time on d.
func (c *FixedClock) SetDate(d model.Date) {
	c.Set(time.Date(d.Time().Year(), d.Time().Month(), d.Time().Day(), 12, 0, 0, 0, time.Local))
}

// AdvanceDays moves the clock forward n days (backward when n is negative).
func (c *FixedClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

// Today returns the calendar date the clock reads.
func (c *FixedClock) Today() model.Date {
	return model.DateOf(c.Now())
}
