package easel

import "math"

// Matrix represents a 2D affine transformation as a 2x3 matrix in
// row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// which maps a point (x, y) to (A*x + B*y + C, D*x + E*y + F).
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale creates a scaling matrix. Negative factors mirror the
// corresponding axis, which is how layer flips are expressed.
func Scale(x, y float64) Matrix {
	return Matrix{A: x, E: y}
}

// Rotate creates a rotation matrix (angle in radians, clockwise in the
// screen coordinate system where Y grows downward).
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply returns m * other, so that the combined matrix applies other
// first and m second.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invert returns the inverse transformation. The second return value is
// false when the matrix is singular, in which case the identity is
// returned.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if det == 0 {
		return Identity(), false
	}
	inv := 1 / det
	return Matrix{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.E*m.C) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.D*m.C - m.A*m.F) * inv,
	}, true
}

// TransformRect returns the axis-aligned bounding box of the four
// transformed corners of r.
func (m Matrix) TransformRect(r Rect) Rect {
	p0 := m.TransformPoint(Pt(r.MinX, r.MinY))
	p1 := m.TransformPoint(Pt(r.MaxX, r.MinY))
	p2 := m.TransformPoint(Pt(r.MinX, r.MaxY))
	p3 := m.TransformPoint(Pt(r.MaxX, r.MaxY))
	return Rect{
		MinX: math.Min(math.Min(p0.X, p1.X), math.Min(p2.X, p3.X)),
		MinY: math.Min(math.Min(p0.Y, p1.Y), math.Min(p2.Y, p3.Y)),
		MaxX: math.Max(math.Max(p0.X, p1.X), math.Max(p2.X, p3.X)),
		MaxY: math.Max(math.Max(p0.Y, p1.Y), math.Max(p2.Y, p3.Y)),
	}
}
