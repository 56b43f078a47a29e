package clock

import "time"

// Countdown is a repeating scheduled task polled from a frame loop.
// At most one schedule is armed at a time: Restart replaces the previous one,
// so restarting a session can never leave two countdowns running.
type Countdown struct {
	interval   time.Duration
	next       time.Time
	active     bool
	generation uint64
}

// NewCountdown creates a stopped countdown firing every interval.
// Non-positive intervals default to one second.
func NewCountdown(interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{interval: interval}
}

// Restart cancels any pending schedule and arms a new one starting at now.
func (c *Countdown) Restart(now time.Time) {
	c.next = now.Add(c.interval)
	c.active = true
	c.generation++
}

// Stop cancels the pending schedule.
func (c *Countdown) Stop() {
	c.active = false
}

// Active reports whether a schedule is armed.
func (c *Countdown) Active() bool {
	return c.active
}

// Generation counts how many schedules have been armed.
func (c *Countdown) Generation() uint64 {
	return c.generation
}

// Due returns how many whole intervals elapsed since the last fire and
// advances the deadline past now. Each interval is reported exactly once.
func (c *Countdown) Due(now time.Time) int {
	if !c.active {
		return 0
	}
	n := 0
	for !now.Before(c.next) {
		n++
		c.next = c.next.Add(c.interval)
	}
	return n
}
