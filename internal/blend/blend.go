// Package blend implements the Porter-Duff compositing operators used by
// the compositor and the raster edit engine.
//
// Unlike GPU conventions, all operations here work on non-premultiplied
// 8-bit components, matching the Pixmap storage format. Each operator
// premultiplies internally, composites, and converts back.
package blend

// Mode identifies a Porter-Duff compositing operator.
type Mode uint8

const (
	// SrcOver is the default painting operator: source over destination.
	SrcOver Mode = iota

	// DstIn keeps destination pixels where the source is opaque. Used to
	// apply segmentation masks (the mask is the source).
	DstIn

	// DstOut removes destination alpha where the source is opaque. Used
	// by the eraser (the dab is the source).
	DstOut
)

// BlendFunc composites one source pixel over one destination pixel.
// All components are non-premultiplied, 0-255.
type BlendFunc func(sr, sg, sb, sa, dr, dg, db, da uint8) (r, g, b, a uint8)

// Func returns the blend function for a mode. Unknown modes fall back to
// SrcOver.
func Func(mode Mode) BlendFunc {
	switch mode {
	case DstIn:
		return dstIn
	case DstOut:
		return dstOut
	default:
		return srcOver
	}
}

// srcOver computes S + D*(1-Sa) in premultiplied space.
func srcOver(sr, sg, sb, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	if sa == 0 {
		return dr, dg, db, da
	}
	saf := float64(sa) / 255
	daf := float64(da) / 255
	outA := saf + daf*(1-saf)
	if outA == 0 {
		return 0, 0, 0, 0
	}
	blendCh := func(s, d uint8) uint8 {
		v := (float64(s)*saf + float64(d)*daf*(1-saf)) / outA
		return clampByte(v)
	}
	return blendCh(sr, dr), blendCh(sg, dg), blendCh(sb, db), clampByte(outA * 255)
}

// dstIn computes D*Sa: destination survives only under the source.
func dstIn(_, _, _, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	a := uint8(uint16(da) * uint16(sa) / 255)
	return dr, dg, db, a
}

// dstOut computes D*(1-Sa): destination is cut away under the source.
func dstOut(_, _, _, sa, dr, dg, db, da uint8) (uint8, uint8, uint8, uint8) {
	a := uint8(uint16(da) * uint16(255-sa) / 255)
	return dr, dg, db, a
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
