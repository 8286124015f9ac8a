package easel

import "math"

// DrawPixmap draws src into p under the affine transform m, blended
// source-over with a global alpha multiplier. Sampling is bilinear and
// happens in premultiplied space so transparent texel borders do not
// bleed color into the result.
//
// This is the single blit primitive behind layer compositing: the
// compositor builds m from translate/rotate/flip/scale and hands the
// layer's effect cache here.
func (p *Pixmap) DrawPixmap(src *Pixmap, m Matrix, alpha float64) {
	if p.Empty() || src.Empty() || alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}

	inv, ok := m.Invert()
	if !ok {
		return
	}

	// Only walk destination pixels the transformed source can reach.
	bounds := m.TransformRect(Rect{MaxX: float64(src.width), MaxY: float64(src.height)})
	x0 := clampInt(int(math.Floor(bounds.MinX)), 0, p.width)
	y0 := clampInt(int(math.Floor(bounds.MinY)), 0, p.height)
	x1 := clampInt(int(math.Ceil(bounds.MaxX))+1, 0, p.width)
	y1 := clampInt(int(math.Ceil(bounds.MaxY))+1, 0, p.height)

	sw := float64(src.width)
	sh := float64(src.height)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sp := inv.TransformPoint(Pt(float64(x)+0.5, float64(y)+0.5))
			if sp.X < -0.5 || sp.X > sw+0.5 || sp.Y < -0.5 || sp.Y > sh+0.5 {
				continue
			}
			pr, pg, pb, pa := src.samplePremul(sp.X-0.5, sp.Y-0.5)
			pa *= alpha
			if pa <= 0 {
				continue
			}
			pr *= alpha
			pg *= alpha
			pb *= alpha
			p.blendPremul(x, y, pr, pg, pb, pa)
		}
	}
}

// Blit composites src over p with its top-left corner at (x0, y0).
// This is the axis-aligned fast path used by the scrub-mode composites.
func (p *Pixmap) Blit(src *Pixmap, x0, y0 int) {
	if p.Empty() || src.Empty() {
		return
	}
	for sy := 0; sy < src.height; sy++ {
		dy := y0 + sy
		if dy < 0 || dy >= p.height {
			continue
		}
		for sx := 0; sx < src.width; sx++ {
			dx := x0 + sx
			if dx < 0 || dx >= p.width {
				continue
			}
			si := (sy*src.width + sx) * 4
			sa := src.data[si+3]
			if sa == 0 {
				continue
			}
			af := float64(sa) / 255
			p.blendPremul(dx, dy,
				float64(src.data[si+0])/255*af,
				float64(src.data[si+1])/255*af,
				float64(src.data[si+2])/255*af,
				af)
		}
	}
}

// samplePremul bilinearly samples the pixmap at (x, y) in texel
// coordinates and returns premultiplied components in [0, 1].
// Out-of-bounds texels are transparent.
func (p *Pixmap) samplePremul(x, y float64) (r, g, b, a float64) {
	fx := math.Floor(x)
	fy := math.Floor(y)
	tx := x - fx
	ty := y - fy
	ix := int(fx)
	iy := int(fy)

	texel := func(px, py int) (float64, float64, float64, float64) {
		if px < 0 || px >= p.width || py < 0 || py >= p.height {
			return 0, 0, 0, 0
		}
		i := (py*p.width + px) * 4
		af := float64(p.data[i+3]) / 255
		return float64(p.data[i+0]) / 255 * af,
			float64(p.data[i+1]) / 255 * af,
			float64(p.data[i+2]) / 255 * af,
			af
	}

	r00, g00, b00, a00 := texel(ix, iy)
	r10, g10, b10, a10 := texel(ix+1, iy)
	r01, g01, b01, a01 := texel(ix, iy+1)
	r11, g11, b11, a11 := texel(ix+1, iy+1)

	lerp2 := func(v00, v10, v01, v11 float64) float64 {
		top := v00 + (v10-v00)*tx
		bot := v01 + (v11-v01)*tx
		return top + (bot-top)*ty
	}
	return lerp2(r00, r10, r01, r11),
		lerp2(g00, g10, g01, g11),
		lerp2(b00, b10, b01, b11),
		lerp2(a00, a10, a01, a11)
}

// blendPremul composites one premultiplied source sample over the pixel
// at (x, y) and stores the straight-alpha result.
func (p *Pixmap) blendPremul(x, y int, sr, sg, sb, sa float64) {
	i := (y*p.width + x) * 4
	da := float64(p.data[i+3]) / 255
	outA := sa + da*(1-sa)
	if outA <= 0 {
		p.data[i+0], p.data[i+1], p.data[i+2], p.data[i+3] = 0, 0, 0, 0
		return
	}
	dr := float64(p.data[i+0]) / 255 * da
	dg := float64(p.data[i+1]) / 255 * da
	db := float64(p.data[i+2]) / 255 * da

	outR := (sr + dr*(1-sa)) / outA
	outG := (sg + dg*(1-sa)) / outA
	outB := (sb + db*(1-sa)) / outA

	// Round, don't truncate: opaque src over anything must restore the
	// source bytes exactly, or the scrub-mode fast path drifts from a
	// full redraw.
	p.data[i+0] = uint8(clamp255(outR*255 + 0.5))
	p.data[i+1] = uint8(clamp255(outG*255 + 0.5))
	p.data[i+2] = uint8(clamp255(outB*255 + 0.5))
	p.data[i+3] = uint8(clamp255(outA*255 + 0.5))
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
