package easel

import "math"

// Rect is an axis-aligned rectangle in float coordinates.
// A Rect with MaxX <= MinX or MaxY <= MinY is considered empty.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// RectFromCenter builds a rect of the given size centered at c.
func RectFromCenter(c Point, w, h float64) Rect {
	return Rect{
		MinX: c.X - w/2,
		MinY: c.Y - h/2,
		MaxX: c.X + w/2,
		MaxY: c.Y + h/2,
	}
}

// Width returns the rect width (may be negative for empty rects).
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the rect height (may be negative for empty rects).
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Center returns the rect's center point.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Contains reports whether p lies inside the rect (min inclusive,
// max exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// Expand grows the rect by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Union returns the smallest rect containing both r and s.
// If either rect is empty the other is returned.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{
		MinX: math.Min(r.MinX, s.MinX),
		MinY: math.Min(r.MinY, s.MinY),
		MaxX: math.Max(r.MaxX, s.MaxX),
		MaxY: math.Max(r.MaxY, s.MaxY),
	}
}

// Intersect returns the overlap of r and s, which may be empty.
func (r Rect) Intersect(s Rect) Rect {
	return Rect{
		MinX: math.Max(r.MinX, s.MinX),
		MinY: math.Max(r.MinY, s.MinY),
		MaxX: math.Min(r.MaxX, s.MaxX),
		MaxY: math.Min(r.MaxY, s.MaxY),
	}
}
