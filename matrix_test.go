package easel

import (
	"math"
	"testing"
)

func pointNear(a, b Point, eps float64) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, -5), Pt(1, 1), Pt(11, -4)},
		{"scale", Scale(2, 3), Pt(4, 5), Pt(8, 15)},
		{"rotate 90", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"composed", Translate(100, 0).Multiply(Scale(2, 2)), Pt(5, 5), Pt(110, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !pointNear(got, tt.want, 1e-9) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
	}{
		{"identity", Identity()},
		{"translate", Translate(-7, 13)},
		{"scale", Scale(0.5, 4)},
		{"rotate", Rotate(1.2)},
		{"composed", Translate(10, 20).Multiply(Rotate(0.7)).Multiply(Scale(3, 0.25))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Invert()
			if !ok {
				t.Fatal("Invert reported singular")
			}
			p := Pt(12.5, -3)
			back := inv.TransformPoint(tt.m.TransformPoint(p))
			if !pointNear(back, p, 1e-9) {
				t.Errorf("inverse round trip = %v, want %v", back, p)
			}
		})
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("zero-determinant matrix inverted")
	}
}

func TestTransformRectContainsCorners(t *testing.T) {
	m := Translate(5, 5).Multiply(Rotate(math.Pi / 6))
	r := Rect{MinX: -10, MinY: -4, MaxX: 10, MaxY: 4}
	out := m.TransformRect(r)
	corners := []Point{
		{r.MinX, r.MinY}, {r.MaxX, r.MinY}, {r.MaxX, r.MaxY}, {r.MinX, r.MaxY},
	}
	for _, c := range corners {
		p := m.TransformPoint(c)
		if p.X < out.MinX-1e-9 || p.X > out.MaxX+1e-9 ||
			p.Y < out.MinY-1e-9 || p.Y > out.MaxY+1e-9 {
			t.Errorf("corner %v maps to %v outside %+v", c, p, out)
		}
	}
}
