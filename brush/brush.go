// Package brush implements the raster edit engine: erase and un-erase
// strokes applied directly to a layer's base mipmap.
//
// Strokes are one of the two sanctioned direct-mutation paths (the other
// is segmentation): pixels change outside the reducer, then a
// ContentEdited action carries the metadata bump back through it.
package brush

import (
	"errors"
	"math"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

// Package errors.
var (
	ErrNotImage = errors.New("brush: layer is not an image")
	ErrLocked   = errors.New("brush: layer is locked")
)

// Params configures a stroke.
type Params struct {
	// Radius is the dab radius in raster texels of the base mipmap.
	Radius float64

	// Strength in (0, 1]. At 1 the dab is hard-edged; below 1 the dab is
	// a soft radial gradient whose solid core radius scales as
	// strength cubed.
	Strength float64

	// Erase selects erase (true) or un-erase (false).
	Erase bool
}

// Stroke is an in-progress brush gesture on one layer. Dab centers are
// interpolated between pointer samples so fast pointer motion leaves no
// gaps.
type Stroke struct {
	layer    *layer.Layer
	params   Params
	pristine *easel.Pixmap // original content for un-erase, may be nil
	last     *easel.Point  // previous dab center, raster coords
	dabs     int
}

// BeginStroke starts a stroke on an image layer. pristine supplies the
// original asset pixels for un-erase redraw; it must match the base
// mipmap dimensions (un-erase degrades to a no-op otherwise).
func BeginStroke(l *layer.Layer, pristine *easel.Pixmap, p Params) (*Stroke, error) {
	if l.Kind != layer.KindImage || l.Mipmaps == nil {
		return nil, ErrNotImage
	}
	if l.IsLocked {
		return nil, ErrLocked
	}
	if p.Strength <= 0 || p.Strength > 1 {
		p.Strength = 1
	}
	if p.Radius < 1 {
		p.Radius = 1
	}
	return &Stroke{layer: l, params: p, pristine: pristine}, nil
}

// RasterPoint maps a world-space position into the layer's base mipmap
// coordinate space: inverse rotate, inverse flip, then scale by
// mipmapWidth/renderWidth. The boolean reports whether the point landed
// inside the raster bounds.
func RasterPoint(l *layer.Layer, world easel.Point) (easel.Point, bool) {
	base := l.Mipmaps.Base()
	if base.Empty() || l.Size <= 0 {
		return easel.Point{}, false
	}
	local := world.Sub(easel.Pt(l.X, l.Y)).Rotate(-easel.Radians(l.Rot))
	if l.FlipX {
		local.X = -local.X
	}
	scale := float64(base.Width()) / l.Size
	r := easel.Point{
		X: local.X*scale + float64(base.Width())/2,
		Y: local.Y*scale + float64(base.Height())/2,
	}
	in := r.X >= 0 && r.X < float64(base.Width()) && r.Y >= 0 && r.Y < float64(base.Height())
	return r, in
}

// Move extends the stroke to a new pointer position in world space.
// Between the previous and current sample, dab centers are spaced at
// radius/3 for erase and radius/2 for un-erase. The layer's effect cache
// is invalidated so the next composite shows the stroke.
func (s *Stroke) Move(world easel.Point) {
	p, _ := RasterPoint(s.layer, world)

	if s.last == nil {
		s.dab(p)
	} else {
		step := s.params.Radius / 3
		if !s.params.Erase {
			step = s.params.Radius / 2
		}
		dist := s.last.Distance(p)
		n := int(dist/step) + 1
		for i := 1; i <= n; i++ {
			t := float64(i) / float64(n)
			s.dab(easel.Point{
				X: s.last.X + (p.X-s.last.X)*t,
				Y: s.last.Y + (p.Y-s.last.Y)*t,
			})
		}
	}

	s.last = &p
	s.layer.Invalidate()
}

// Layer returns the layer this stroke edits.
func (s *Stroke) Layer() *layer.Layer { return s.layer }

// End finishes the stroke: the mipmap chain regenerates from the mutated
// base and the caller is expected to dispatch a ContentEdited action for
// the metadata bump.
func (s *Stroke) End() {
	if s.dabs > 0 {
		s.layer.Mipmaps.Regenerate()
		s.layer.Invalidate()
	}
	easel.Logger().Debug("stroke finished", "layer", s.layer.ID, "dabs", s.dabs, "erase", s.params.Erase)
}

// dab stamps one brush dab centered at c in raster coordinates.
func (s *Stroke) dab(c easel.Point) {
	base := s.layer.Mipmaps.Base()
	r := s.params.Radius
	strength := s.params.Strength

	// The solid core shrinks sharply as strength drops.
	core := r * strength * strength * strength

	x0 := clampInt(int(c.X-r)-1, 0, base.Width())
	x1 := clampInt(int(c.X+r)+2, 0, base.Width())
	y0 := clampInt(int(c.Y-r)-1, 0, base.Height())
	y1 := clampInt(int(c.Y+r)+2, 0, base.Height())
	if x0 >= x1 || y0 >= y1 {
		return
	}

	data := base.Data()
	w := base.Width()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			d := c.Distance(easel.Pt(float64(x)+0.5, float64(y)+0.5))
			if d > r {
				continue
			}
			cov := strength
			if d > core && r > core {
				cov = strength * (1 - (d-core)/(r-core))
			}
			if cov <= 0 {
				continue
			}
			i := (y*w + x) * 4
			if s.params.Erase {
				// destination-out: subtract coverage from alpha.
				a := float64(data[i+3]) * (1 - cov)
				data[i+3] = uint8(a)
			} else {
				s.unerase(data, i, cov)
			}
		}
	}
	s.dabs++
}

// unerase redraws the pristine original at partial alpha under the dab.
// This is additive alpha blending, not a true undo of erase strokes, so
// repeated erase/un-erase cycles are lossy.
func (s *Stroke) unerase(data []uint8, i int, cov float64) {
	base := s.layer.Mipmaps.Base()
	if s.pristine == nil || s.pristine.Width() != base.Width() || s.pristine.Height() != base.Height() {
		return
	}
	pd := s.pristine.Data()
	sa := float64(pd[i+3]) / 255 * cov
	if sa <= 0 {
		return
	}
	da := float64(data[i+3]) / 255
	outA := sa + da*(1-sa)
	if outA <= 0 {
		return
	}
	for ch := 0; ch < 3; ch++ {
		sv := float64(pd[i+ch])
		dv := float64(data[i+ch])
		data[i+ch] = uint8((sv*sa + dv*da*(1-sa)) / outA)
	}
	data[i+3] = uint8(math.Min(outA*255, 255))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
