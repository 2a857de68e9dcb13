// Package autoscroll nudges a scrollable list while a drag hovers near its
// top or bottom edge.
//
// Ticks are gated by elapsed time rather than by event count: drag-over
// notifications may arrive far more often than the desired scroll cadence.
// The first event inside the border arms the gate; a tick fires each time
// at least Interval has passed since the gate was armed or last fired.
package autoscroll

import (
	"time"

	"github.com/dshills/treedrop/internal/geom"
)

// Target is the list being scrolled.
type Target interface {
	// ScrollBy moves the vertical offset by delta units. Negative scrolls up.
	ScrollBy(delta float64)
}

// Config configures autoscroll behavior.
type Config struct {
	// Border is the distance from the viewport top/bottom that triggers scrolling.
	Border float64

	// Step is the magnitude of a single scroll tick.
	Step float64

	// Interval is the minimum time between ticks.
	Interval time.Duration
}

// DefaultConfig returns the default autoscroll configuration.
func DefaultConfig() Config {
	return Config{
		Border:   10,
		Step:     12,
		Interval: 100 * time.Millisecond,
	}
}

// Autoscroller scrolls a Target on a throttled cadence.
// It is not safe for concurrent use.
type Autoscroller struct {
	target  Target
	config  Config
	enabled bool

	// last is the zero time while the gate is unset.
	last  time.Time
	ticks int
}

// New creates a disabled autoscroller for target.
func New(target Target, config Config) *Autoscroller {
	return &Autoscroller{
		target: target,
		config: config,
	}
}

// SetConfig replaces the configuration. The gate is left untouched.
func (a *Autoscroller) SetConfig(config Config) {
	a.config = config
}

// Config returns the current configuration.
func (a *Autoscroller) Config() Config {
	return a.config
}

// Enable turns autoscrolling on and unsets the gate.
func (a *Autoscroller) Enable() {
	a.enabled = true
	a.last = time.Time{}
}

// Disable turns autoscrolling off and unsets the gate.
// Calling Disable on a disabled autoscroller is a no-op.
func (a *Autoscroller) Disable() {
	a.enabled = false
	a.last = time.Time{}
}

// Enabled returns true while autoscrolling is on.
func (a *Autoscroller) Enabled() bool {
	return a.enabled
}

// Scroll nudges the target by delta immediately, ignoring the gate.
func (a *Autoscroller) Scroll(delta float64) {
	if a.target == nil || delta == 0 {
		return
	}
	a.target.ScrollBy(delta)
}

// Direction returns the signed step to apply for a pointer at p inside
// viewport: -Step near the top edge, +Step near the bottom edge, 0 otherwise.
func (a *Autoscroller) Direction(p geom.Point, viewport geom.Rect) float64 {
	switch {
	case p.Y < viewport.Y+a.config.Border:
		return -a.config.Step
	case p.Y > viewport.Bottom()-a.config.Border:
		return a.config.Step
	default:
		return 0
	}
}

// Tick scrolls by delta if the autoscroller is enabled and the gate allows it.
// It returns true when a scroll was performed.
func (a *Autoscroller) Tick(now time.Time, delta float64) bool {
	if !a.enabled || delta == 0 {
		return false
	}
	if a.last.IsZero() {
		a.last = now
		return false
	}
	if now.Sub(a.last) < a.config.Interval {
		return false
	}
	a.last = now
	a.ticks++
	a.Scroll(delta)
	return true
}

// Reset unsets the gate. Called when the pointer leaves the border zone.
func (a *Autoscroller) Reset() {
	a.last = time.Time{}
}

// Armed returns true while the gate is set.
func (a *Autoscroller) Armed() bool {
	return !a.last.IsZero()
}

// Ticks returns the number of gated scrolls performed since creation.
func (a *Autoscroller) Ticks() int {
	return a.ticks
}
