package engine

import (
	"context"
	"time"
)

// DefaultPollInterval is roughly one display frame.
const DefaultPollInterval = 16 * time.Millisecond

// tickGate decides whether a tick is due. The timestamp is reset to the
// current time after each tick rather than advanced by the interval, so a
// late poll never triggers a burst of catch-up ticks.
type tickGate struct {
	last time.Time
}

func (g *tickGate) due(now time.Time, interval time.Duration) bool {
	return now.Sub(g.last) >= interval
}

func (g *tickGate) reset(now time.Time) {
	g.last = now
}

// Ticker is what a Driver polls. *Engine satisfies it.
type Ticker interface {
	OnTick() bool
}

// Driver offers the engine scheduling opportunities at a fixed poll rate for
// hosts that have no frame loop of their own. The effective tick rate is
// capped by the poll rate.
type Driver struct {
	Target Ticker
	Poll   time.Duration
}

func NewDriver(target Ticker, poll time.Duration) *Driver {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Driver{Target: target, Poll: poll}
}

// Run polls until ctx is done and returns the number of ticks that fired.
func (d *Driver) Run(ctx context.Context) int {
	t := time.NewTicker(d.Poll)
	defer t.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return ticks
		case <-t.C:
			if d.Target.OnTick() {
				ticks++
			}
		}
	}
}
