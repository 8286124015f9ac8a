package easel

// Viewport maps between world space (the project's master canvas, in
// pixels) and view space (the on-screen canvas backing store):
//
//	view = world*Scale + Pan
//
// DPR is the display-pixel-ratio correction between the canvas's display
// size and its backing store; pointer events arrive in display pixels and
// must be multiplied by DPR before entering view space.
type Viewport struct {
	ViewW, ViewH float64
	Scale        float64
	Pan          Point
	DPR          float64
}

// NewViewport creates a viewport at 100% zoom with no pan.
func NewViewport(viewW, viewH float64) *Viewport {
	return &Viewport{ViewW: viewW, ViewH: viewH, Scale: 1, DPR: 1}
}

// WorldToView maps a world-space point into view space.
func (v *Viewport) WorldToView(p Point) Point {
	return p.Mul(v.Scale).Add(v.Pan)
}

// ViewToWorld maps a view-space point back into world space.
func (v *Viewport) ViewToWorld(p Point) Point {
	return p.Sub(v.Pan).Mul(1 / v.Scale)
}

// DeviceToWorld maps a pointer position in display pixels into world
// space, applying the display-vs-backing-store correction first.
func (v *Viewport) DeviceToWorld(p Point) Point {
	return v.ViewToWorld(p.Mul(v.dpr()))
}

// EffectiveScale is the combined world-to-screen factor. Distances that
// must stay visually constant regardless of zoom (handle offsets, hit
// radii) are divided by this to obtain world units.
func (v *Viewport) EffectiveScale() float64 {
	return v.Scale * v.dpr()
}

func (v *Viewport) dpr() float64 {
	if v.DPR <= 0 {
		return 1
	}
	return v.DPR
}

// ConstrainPan clamps a candidate pan for the given scale.
//
// Below 100% zoom the shrunken content is force-centered; the user cannot
// pan it at all. At or above 100% the pan is clamped per axis to
// [-maxOffset, 0] where maxOffset = dimension*scale - dimension, so the
// content edge never moves inside the viewport.
func (v *Viewport) ConstrainPan(pan Point, scale float64) Point {
	constrain := func(p, dim float64) float64 {
		if scale < 1 {
			return dim * (1 - scale) / 2
		}
		maxOffset := dim*scale - dim
		if p < -maxOffset {
			p = -maxOffset
		}
		if p > 0 {
			p = 0
		}
		return p
	}
	return Point{
		X: constrain(pan.X, v.ViewW),
		Y: constrain(pan.Y, v.ViewH),
	}
}
