package machine

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// TimeoutGuard is a single-shot, restartable countdown bounding how long a
// customer may occupy the machine in an interactive state. At most one
// guard exists per controller; firing synthesizes the timeout symbol.
type TimeoutGuard struct {
	clk    clock.Clock
	window time.Duration

	mu    sync.Mutex
	timer *clock.Timer
}

// NewTimeoutGuard creates a stopped guard with a fixed window.
func NewTimeoutGuard(clk clock.Clock, window time.Duration) *TimeoutGuard {
	return &TimeoutGuard{clk: clk, window: window}
}

// Start arms the guard for a full window, replacing any running countdown.
func (g *TimeoutGuard) Start(onExpire func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
	g.timer = g.clk.AfterFunc(g.window, func() {
		g.mu.Lock()
		g.timer = nil
		g.mu.Unlock()
		onExpire()
	})
}

// Reset restarts the full window. A no-op when the guard is not running:
// activity only extends a session that is still alive.
func (g *TimeoutGuard) Reset(onExpire func()) {
	g.mu.Lock()
	running := g.timer != nil
	g.mu.Unlock()
	if running {
		g.Start(onExpire)
	}
}

// Stop disarms the guard.
func (g *TimeoutGuard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
}

func (g *TimeoutGuard) stopLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// IsActive reports whether a countdown is running.
func (g *TimeoutGuard) IsActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timer != nil
}
