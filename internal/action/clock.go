package action

// Clock supplies the current simulation time in seconds.
// The scheduler reads it once per Tick.
type Clock interface {
	Now() float64
}

// ManualClock is a Clock advanced explicitly by the host loop or a test.
type ManualClock struct {
	now float64
}

// NewManualClock creates a clock starting at t.
func NewManualClock(t float64) *ManualClock {
	return &ManualClock{now: t}
}

// Now implements Clock.
func (c *ManualClock) Now() float64 { return c.now }

// Advance moves the clock forward by dt seconds. Negative steps are ignored.
func (c *ManualClock) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}

// Set jumps the clock to t.
func (c *ManualClock) Set(t float64) { c.now = t }
