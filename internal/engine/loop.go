// The wall-clock loop driver. The tick function itself is free of any
// ambient state, so it can run inline here or on whatever cadence an
// embedding chooses (a render callback, a test harness).
package engine

import (
	"log/slog"
	"time"
)

// Loop drives Store.Tick on a fixed real-time cadence.
type Loop struct {
	Store    *Store
	Interval time.Duration // base frame interval, default 50ms

	stop chan struct{}
}

// NewLoop creates a loop driver for a store.
func NewLoop(store *Store) *Loop {
	return &Loop{
		Store:    store,
		Interval: 50 * time.Millisecond,
		stop:     make(chan struct{}),
	}
}

// Run blocks, ticking the store until Stop is called. Elapsed real time is
// measured per frame and clamped by the store, so a stalled scheduler
// produces one bounded catch-up tick instead of a lurch.
func (l *Loop) Run() {
	slog.Info("simulation loop started", "interval", l.Interval)
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-l.stop:
			slog.Info("simulation loop stopped")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			l.Store.Tick(dt)
		}
	}
}

// Stop halts the loop.
func (l *Loop) Stop() {
	close(l.stop)
}
