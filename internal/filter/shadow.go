package filter

import (
	"math"

	"github.com/easelkit/easel"
)

// DropShadow stamps a blurred, colorized silhouette of a source surface.
//
// The algorithm follows the classic raster shadow pipeline: extract the
// source alpha channel, gaussian-blur it, colorize with the shadow color,
// then composite. With Blur == 0 the silhouette is hard-edged, which is
// exactly what the synthetic outline border builds on.
type DropShadow struct {
	OffsetX float64
	OffsetY float64
	Blur    float64
	Color   easel.RGBA
}

// Bleed returns how far the shadow can extend beyond the source bounds.
// Cache surfaces are padded by this amount so shadows are never clipped.
func (s DropShadow) Bleed() float64 {
	return 2*s.Blur + math.Max(math.Abs(s.OffsetX), math.Abs(s.OffsetY))
}

// Stamp composites the shadow of src into dst, with src's top-left
// notionally at (x0, y0) in dst coordinates. Only the shadow is drawn;
// callers draw src itself afterwards.
func (s DropShadow) Stamp(dst, src *easel.Pixmap, x0, y0 int) {
	if dst.Empty() || src.Empty() || s.Color.A <= 0 {
		return
	}

	// Working plane sized to the blurred silhouette.
	pad := int(math.Ceil(2 * s.Blur))
	w := src.Width() + 2*pad
	h := src.Height() + 2*pad
	alpha := make([]uint8, w*h)
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			alpha[(y+pad)*w+(x+pad)] = src.AlphaAt(x, y)
		}
	}
	BlurAlpha(alpha, w, h, s.Blur)

	// Colorize and composite at the offset position.
	originX := x0 - pad + int(math.Round(s.OffsetX))
	originY := y0 - pad + int(math.Round(s.OffsetY))
	stamp := easel.NewPixmap(w, h)
	sr, sg, sb, _ := s.Color.Bytes()
	data := stamp.Data()
	for i, a := range alpha {
		if a == 0 {
			continue
		}
		data[i*4+0] = sr
		data[i*4+1] = sg
		data[i*4+2] = sb
		data[i*4+3] = uint8(float64(a) * s.Color.A)
	}
	dst.Blit(stamp, originX, originY)
}

// Outline is the synthetic border effect for image layers: a solid
// outline simulated by four zero-blur drop shadows offset in the
// cardinal directions.
type Outline struct {
	Width float64
	Color easel.RGBA
}

// Stamps expands the outline into its four constituent shadows.
func (o Outline) Stamps() []DropShadow {
	w := o.Width
	return []DropShadow{
		{OffsetX: -w, Color: o.Color},
		{OffsetX: w, Color: o.Color},
		{OffsetY: -w, Color: o.Color},
		{OffsetY: w, Color: o.Color},
	}
}
