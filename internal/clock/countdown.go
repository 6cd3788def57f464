package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Tenth is the unit every clock field is counted in.
const Tenth = 100 * time.Millisecond

// countdown owns one recurring ticker. A nil ticker means stopped, so
// there is never more than one handle per clock.
type countdown struct {
	clk      clockwork.Clock
	interval time.Duration
	ticker   clockwork.Ticker
	last     time.Time
	// rem is the sub-tenth remainder held over while stopped.
	rem time.Duration
}

func (c *countdown) running() bool { return c.ticker != nil }

func (c *countdown) start() bool {
	if c.ticker != nil {
		return false
	}
	c.last = c.clk.Now().Add(-c.rem)
	c.rem = 0
	c.ticker = c.clk.NewTicker(c.interval)
	return true
}

// stop clears the ticker and returns the whole tenths elapsed since the
// last sample. The leftover fraction is kept for the next start.
func (c *countdown) stop() int {
	if c.ticker == nil {
		return 0
	}
	now := c.clk.Now()
	n := c.consume(now)
	c.rem = now.Sub(c.last)
	c.ticker.Stop()
	c.ticker = nil
	return n
}

// sample returns whole tenths elapsed since the previous sample. The
// mark only advances by what was consumed, so sub-tenth remainders
// carry into the next tick instead of being dropped.
func (c *countdown) sample() int {
	return c.consume(c.clk.Now())
}

func (c *countdown) consume(now time.Time) int {
	elapsed := now.Sub(c.last)
	if elapsed < Tenth {
		return 0
	}
	n := int(elapsed / Tenth)
	c.last = c.last.Add(time.Duration(n) * Tenth)
	return n
}

func (c *countdown) ticks() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.Chan()
}
