// Package interact drives the pointer gesture lifecycle: hit testing,
// drag/resize/rotate/erase/pan sessions, and the smoothed view
// animation. Gestures compute proposed changes and dispatch them as
// actions; they never mutate layers directly except through the brush
// engine's carved-out raster path.
package interact

import (
	"math"
	"time"

	"github.com/easelkit/easel"
)

const (
	// viewSmoothing is the per-frame exponential approach factor toward
	// the target pan/zoom.
	viewSmoothing = 0.25

	// panEpsilon and scaleEpsilon end the animation once the view is
	// close enough to its target.
	panEpsilon   = 0.05
	scaleEpsilon = 0.0005

	// Zoom values inside the snap band settle to exactly 100% after the
	// snap delay elapses with no further zoom input.
	zoomSnapBand  = 0.05
	zoomSnapDelay = 300 * time.Millisecond

	// MinZoom and MaxZoom bound user zoom.
	MinZoom = 0.1
	MaxZoom = 8.0
)

// View wraps a viewport with smoothed pan/zoom animation. The current
// Scale and Pan ease toward TargetScale and TargetPan a bit each frame;
// Step must be called from the frame loop while Animating reports true.
type View struct {
	*easel.Viewport

	TargetScale float64
	TargetPan   easel.Point

	animating bool
	snapAt    time.Time // zero when no zoom snap is pending
}

// NewView creates an animated view at 100% zoom.
func NewView(viewW, viewH float64) *View {
	vp := easel.NewViewport(viewW, viewH)
	return &View{
		Viewport:    vp,
		TargetScale: vp.Scale,
		TargetPan:   vp.Pan,
	}
}

// SetZoom sets the zoom target, keeping the world point under the given
// view position fixed. Targets within the snap band schedule a settle to
// exactly 100%; any further zoom input reschedules it.
func (v *View) SetZoom(scale float64, pivot easel.Point, now time.Time) {
	if scale < MinZoom {
		scale = MinZoom
	}
	if scale > MaxZoom {
		scale = MaxZoom
	}
	world := pivot.Sub(v.TargetPan).Mul(1 / v.TargetScale)
	v.TargetScale = scale
	v.TargetPan = v.ConstrainPan(pivot.Sub(world.Mul(scale)), scale)
	v.animating = true

	v.snapAt = time.Time{}
	if scale != 1 && math.Abs(scale-1) < zoomSnapBand {
		v.snapAt = now.Add(zoomSnapDelay)
	}
}

// PanBy shifts the pan target by a delta in view pixels, clamped so the
// content never detaches from the viewport.
func (v *View) PanBy(delta easel.Point) {
	v.TargetPan = v.ConstrainPan(v.TargetPan.Add(delta), v.TargetScale)
	v.animating = true
}

// Animating reports whether the view is still easing toward its target
// or has a zoom snap pending.
func (v *View) Animating() bool {
	return v.animating || !v.snapAt.IsZero()
}

// Step advances the animation one frame. Returns true if the view
// changed and a redraw is needed.
func (v *View) Step(now time.Time) bool {
	if !v.snapAt.IsZero() && !now.Before(v.snapAt) {
		v.snapAt = time.Time{}
		if math.Abs(v.TargetScale-1) < zoomSnapBand {
			world := easel.Pt(v.ViewW/2, v.ViewH/2).Sub(v.TargetPan).Mul(1 / v.TargetScale)
			v.TargetScale = 1
			v.TargetPan = v.ConstrainPan(easel.Pt(v.ViewW/2, v.ViewH/2).Sub(world), 1)
			v.animating = true
		}
	}
	if !v.animating {
		return false
	}

	v.Scale += (v.TargetScale - v.Scale) * viewSmoothing
	v.Pan = v.Pan.Add(v.TargetPan.Sub(v.Pan).Mul(viewSmoothing))

	if math.Abs(v.TargetScale-v.Scale) < scaleEpsilon &&
		v.TargetPan.Distance(v.Pan) < panEpsilon {
		v.Scale = v.TargetScale
		v.Pan = v.TargetPan
		v.animating = false
	}
	return true
}
