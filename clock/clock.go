package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time. Everything that makes month-boundary
// decisions (bill generation, the scheduler window) reads time through
// this interface so one process observes one notion of "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystem returns a wall clock pinned to the given location.
func NewSystem(loc *time.Location) Clock {
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Adjustable wraps a real clock with an optional virtual reference moment.
// While a reference is set, Now reports the reference plus the real time
// elapsed since it was set, so virtual time keeps advancing at wall-clock
// speed from the chosen offset.
type Adjustable struct {
	mu      sync.RWMutex
	real    Clock
	ref     time.Time
	setAt   time.Time
	virtual bool
}

func NewAdjustable(real Clock) *Adjustable {
	return &Adjustable{real: real}
}

func (c *Adjustable) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.virtual {
		return c.real.Now()
	}
	return c.ref.Add(c.real.Now().Sub(c.setAt))
}

// SetVirtual switches the clock to virtual mode starting at ref.
func (c *Adjustable) SetVirtual(ref time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ref = ref
	c.setAt = c.real.Now()
	c.virtual = true
}

// Reset returns the clock to real wall-clock time.
func (c *Adjustable) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.virtual = false
}

func (c *Adjustable) IsVirtual() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.virtual
}
