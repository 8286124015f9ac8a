package easel

import (
	"math"
	"testing"
)

func TestRotatedBounds(t *testing.T) {
	tests := []struct {
		name   string
		center Point
		w, h   float64
		rot    float64
		want   Rect
	}{
		{"unrotated", Pt(50, 50), 40, 20, 0, Rect{30, 40, 70, 60}},
		{"quarter turn swaps extents", Pt(0, 0), 40, 20, 90, Rect{-10, -20, 10, 20}},
		{"half turn is identical", Pt(10, 10), 30, 10, 180, Rect{-5, 5, 25, 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotatedBounds(tt.center, tt.w, tt.h, tt.rot)
			if !rectNear(got, tt.want, 1e-9) {
				t.Errorf("RotatedBounds = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRotatedBoundsDiagonal(t *testing.T) {
	// A square rotated 45 degrees spans its diagonal on both axes.
	b := RotatedBounds(Pt(0, 0), 10, 10, 45)
	want := 10 * math.Sqrt2
	if math.Abs(b.Width()-want) > 1e-9 || math.Abs(b.Height()-want) > 1e-9 {
		t.Errorf("bounds %v x %v, want %v on both axes", b.Width(), b.Height(), want)
	}
}

func TestHandleOpposite(t *testing.T) {
	tests := []struct {
		h, want Handle
	}{
		{HandleTopLeft, HandleBottomRight},
		{HandleTopRight, HandleBottomLeft},
		{HandleBottomRight, HandleTopLeft},
		{HandleBottomLeft, HandleTopRight},
		{HandleRotate, HandleNone},
		{HandleNone, HandleNone},
	}
	for _, tt := range tests {
		if got := tt.h.Opposite(); got != tt.want {
			t.Errorf("%v.Opposite() = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestRotateHandleStaysScreenConstant(t *testing.T) {
	center := Pt(100, 100)
	// World-space offset shrinks as zoom grows, so the on-screen
	// distance is constant.
	for _, eff := range []float64{0.5, 1, 2, 4} {
		p := RotateHandlePos(center, 50, 0, eff)
		gotOffset := (center.Y - 25) - p.Y
		want := RotateHandleOffset / eff
		if math.Abs(gotOffset-want) > 1e-9 {
			t.Errorf("effScale %v: offset %v, want %v", eff, gotOffset, want)
		}
	}
}

func TestCornerHandlesOrder(t *testing.T) {
	c := CornerHandles(Pt(0, 0), 20, 10, 0)
	want := [4]Point{{-10, -5}, {10, -5}, {10, 5}, {-10, 5}}
	for i := range c {
		if c[i] != want[i] {
			t.Errorf("corner %d = %v, want %v", i, c[i], want[i])
		}
	}
}

func rectNear(a, b Rect, eps float64) bool {
	return math.Abs(a.MinX-b.MinX) < eps && math.Abs(a.MinY-b.MinY) < eps &&
		math.Abs(a.MaxX-b.MaxX) < eps && math.Abs(a.MaxY-b.MaxY) < eps
}
