package easel

import (
	"math"
	"testing"
)

func TestConstrainPan(t *testing.T) {
	vp := NewViewport(1000, 800)

	tests := []struct {
		name  string
		pan   Point
		scale float64
		want  Point
	}{
		{"fits at 100%", Pt(-50, -50), 1, Pt(0, 0)},
		{"zoomed in, within range", Pt(-500, -300), 2, Pt(-500, -300)},
		{"zoomed in, past left edge", Pt(-1500, 0), 2, Pt(-1000, 0)},
		{"zoomed in, positive pan", Pt(200, 100), 2, Pt(0, 0)},
		{"zoomed out forces centering", Pt(-123, 77), 0.5, Pt(250, 200)},
		{"zoomed out ignores user pan", Pt(0, 0), 0.5, Pt(250, 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vp.ConstrainPan(tt.pan, tt.scale)
			if got != tt.want {
				t.Errorf("ConstrainPan(%v, %v) = %v, want %v", tt.pan, tt.scale, got, tt.want)
			}
		})
	}
}

func TestConstrainPanBoundsAtScale2(t *testing.T) {
	vp := NewViewport(1000, 800)
	for x := -2000.0; x <= 1000; x += 250 {
		got := vp.ConstrainPan(Pt(x, 0), 2)
		if got.X < -1000 || got.X > 0 {
			t.Errorf("ConstrainPan x=%v: got %v, want within [-1000, 0]", x, got.X)
		}
	}
}

func TestViewWorldRoundTrip(t *testing.T) {
	vp := &Viewport{ViewW: 1000, ViewH: 800, Scale: 1.7, Pan: Pt(-120, 35), DPR: 2}
	pts := []Point{Pt(0, 0), Pt(512, 384), Pt(-10, 900)}
	for _, p := range pts {
		back := vp.ViewToWorld(vp.WorldToView(p))
		if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
			t.Errorf("round trip of %v = %v", p, back)
		}
	}
}

func TestDeviceToWorldAppliesDPR(t *testing.T) {
	vp := &Viewport{ViewW: 1000, ViewH: 800, Scale: 1, DPR: 2}
	got := vp.DeviceToWorld(Pt(100, 50))
	if got != Pt(200, 100) {
		t.Errorf("DeviceToWorld = %v, want (200, 100)", got)
	}
	if vp.EffectiveScale() != 2 {
		t.Errorf("EffectiveScale = %v, want 2", vp.EffectiveScale())
	}
}
