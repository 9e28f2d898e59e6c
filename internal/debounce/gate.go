// Package debounce delays propagation of rapid edits until the edit stream
// has been quiet for a fixed window.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiescence period used for filter edits.
const DefaultWindow = 2 * time.Second

// Gate holds at most one pending timer. Each Edit supersedes the previous
// one; a superseded callback never runs, even if its timer had already
// expired and was waiting for the lock.
type Gate struct {
	mu       sync.Mutex
	window   time.Duration
	timer    *time.Timer
	gen      uint64
	deadline time.Time
	stopped  bool
}

// NewGate creates a gate with the given quiescence window.
func NewGate(window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{window: window}
}

// Window returns the quiescence period.
func (g *Gate) Window() time.Duration {
	return g.window
}

// Edit records an edit and (re)starts the window. fire runs on its own
// goroutine once no further Edit, Flush or Cancel arrives for a full window.
// Edits after Stop are ignored.
func (g *Gate) Edit(fire func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped {
		return
	}
	g.cancelLocked()

	gen := g.gen
	g.deadline = time.Now().Add(g.window)
	g.timer = time.AfterFunc(g.window, func() {
		g.mu.Lock()
		if g.gen != gen || g.stopped {
			g.mu.Unlock()
			return
		}
		g.timer = nil
		g.deadline = time.Time{}
		g.mu.Unlock()

		fire()
	})
}

// Flush cancels any pending edit and runs fire immediately on the calling
// goroutine. It is the bypass used by "clear filters".
func (g *Gate) Flush(fire func()) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.cancelLocked()
	g.mu.Unlock()

	fire()
}

// Cancel drops any pending edit without firing it.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
}

// Stop cancels any pending edit and makes the gate inert.
func (g *Gate) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelLocked()
	g.stopped = true
}

// Pending reports whether an edit is waiting for the window to elapse. This is
// the "user is still editing" signal.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timer != nil
}

// Remaining returns the time left before the pending edit fires, or zero.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer == nil {
		return 0
	}
	if left := time.Until(g.deadline); left > 0 {
		return left
	}
	return 0
}

func (g *Gate) cancelLocked() {
	g.gen++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.deadline = time.Time{}
}
