// Package geom provides the widget-local coordinate types shared by the
// drag-and-drop engine and its hosts.
//
// All values are in widget units. A host decides how units map to its
// display: the terminal tree view maps one cell to a configurable number of
// units so that insert margins can fall inside a single row.
package geom

import "fmt"

// Point is a position in widget-local units.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// String returns a compact representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Size is a width and height in widget units.
type Size struct {
	W float64
	H float64
}

// Rect is an axis-aligned rectangle. X and Y are the top-left corner.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Size returns the rectangle's size.
func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// Right returns the exclusive right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r. The top and left edges are
// inclusive, the bottom and right edges exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() &&
		p.Y >= r.Y && p.Y < r.Bottom()
}

// Local converts p into coordinates relative to the rectangle's origin.
func (r Rect) Local(p Point) Point {
	return p.Sub(r.Origin())
}

// Offset returns r translated by dx, dy.
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Inset returns a rectangle shrunk by the given amounts.
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	return Rect{
		X: r.X + left,
		Y: r.Y + top,
		W: r.W - left - right,
		H: r.H - top - bottom,
	}
}

// String returns a compact representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.X, r.Y, r.W, r.H)
}
