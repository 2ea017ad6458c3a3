package pregen

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// IntervalTicker is a fixed-cadence tick source. Run drives whatever callback
// is currently installed; with nothing installed a tick does nothing.
type IntervalTicker struct {
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once

	mu sync.Mutex
	fn func(ctx context.Context)
}

// NewIntervalTicker creates a ticker firing every interval.
func NewIntervalTicker(interval time.Duration) *IntervalTicker {
	return &IntervalTicker{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Install sets the callback run on every tick.
func (t *IntervalTicker) Install(fn func(ctx context.Context)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fn = fn
	slog.Debug("tick callback installed", "interval", t.interval)
}

// Uninstall removes the callback. A tick already in flight may still run
// the previous callback once.
func (t *IntervalTicker) Uninstall() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fn = nil
	slog.Debug("tick callback uninstalled")
}

// Installed reports whether a callback is set.
func (t *IntervalTicker) Installed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fn != nil
}

// Run ticks until ctx is canceled or Stop is called (blocks).
func (t *IntervalTicker) Run(ctx context.Context) error {
	tc := time.NewTicker(t.interval)
	defer tc.Stop()

	slog.Info("generation ticker started", "interval", t.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("generation ticker stopping")
			return ctx.Err()

		case <-t.stopCh:
			slog.Info("generation ticker stopped")
			return nil

		case <-tc.C:
			t.mu.Lock()
			fn := t.fn
			t.mu.Unlock()
			if fn != nil {
				fn(ctx)
			}
		}
	}
}

// Stop stops Run. Safe to call more than once.
func (t *IntervalTicker) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}
