// Package adorner implements the insertion marker shown while a drag
// hovers near a row edge.
//
// An Adorner is a scoped resource: New attaches its visual to a Layer and
// Dispose detaches it. Dispose is idempotent. A Slot holds at most one live
// adorner and disposes the previous one before installing a replacement.
package adorner

import "github.com/dshills/treedrop/internal/geom"

// Anchor is the row an adorner is attached to.
type Anchor interface {
	// Bounds returns the anchor's rectangle in widget coordinates.
	Bounds() geom.Rect
}

// Layer is the rendering surface adorners attach to.
type Layer interface {
	// AddAdorner attaches the adorner's visual.
	AddAdorner(a *Adorner)

	// RemoveAdorner detaches the adorner's visual.
	RemoveAdorner(a *Adorner)
}

// Adorner is an insertion marker drawn at the top or bottom edge of an anchor.
type Adorner struct {
	layer     Layer
	anchor    Anchor
	before    bool
	thickness float64
	disposed  bool
}

// New creates an adorner and attaches it to layer. A nil layer is allowed;
// the adorner then only tracks its own lifecycle.
func New(layer Layer, anchor Anchor, before bool, thickness float64) *Adorner {
	a := &Adorner{
		layer:     layer,
		anchor:    anchor,
		before:    before,
		thickness: thickness,
	}
	if layer != nil {
		layer.AddAdorner(a)
	}
	return a
}

// Anchor returns the row the adorner marks.
func (a *Adorner) Anchor() Anchor {
	return a.anchor
}

// Before returns true if the marker sits on the anchor's top edge.
func (a *Adorner) Before() bool {
	return a.before
}

// Bounds returns the marker's own visual rectangle, centered on the edge.
func (a *Adorner) Bounds() geom.Rect {
	r := a.anchor.Bounds()
	y := r.Bottom()
	if a.before {
		y = r.Y
	}
	return geom.R(r.X, y-a.thickness/2, r.W, a.thickness)
}

// Contains reports whether p lies on the marker's visual.
func (a *Adorner) Contains(p geom.Point) bool {
	if a.disposed {
		return false
	}
	return a.Bounds().Contains(p)
}

// Disposed returns true once Dispose has run.
func (a *Adorner) Disposed() bool {
	return a.disposed
}

// Dispose detaches the visual. Subsequent calls do nothing.
func (a *Adorner) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	if a.layer != nil {
		a.layer.RemoveAdorner(a)
	}
}

// Slot owns at most one live adorner.
type Slot struct {
	current *Adorner
}

// Replace disposes the current adorner, if any, and installs a new one.
func (s *Slot) Replace(layer Layer, anchor Anchor, before bool, thickness float64) *Adorner {
	s.Clear()
	s.current = New(layer, anchor, before, thickness)
	return s.current
}

// Clear disposes the current adorner. Safe to call when empty.
func (s *Slot) Clear() {
	if s.current == nil {
		return
	}
	s.current.Dispose()
	s.current = nil
}

// Current returns the live adorner or nil.
func (s *Slot) Current() *Adorner {
	return s.current
}
