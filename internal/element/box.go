// Package element tracks the clickable targets under the virtual cursor.
package element

// Box is an axis-aligned rectangle in viewport coordinates.
type Box struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.Right - b.Left
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.Bottom - b.Top
}

// Center returns the box midpoint.
func (b Box) Center() (float64, float64) {
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

// Contains reports whether a point is inside the box (edges inclusive).
func (b Box) Contains(x, y float64) bool {
	return x >= b.Left && x <= b.Right && y >= b.Top && y <= b.Bottom
}

// Translate returns the box shifted by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	return Box{Left: b.Left + dx, Top: b.Top + dy, Right: b.Right + dx, Bottom: b.Bottom + dy}
}

// Intersects reports whether two boxes overlap at all.
func (b Box) Intersects(o Box) bool {
	return b.Left < o.Right && b.Right > o.Left && b.Top < o.Bottom && b.Bottom > o.Top
}
