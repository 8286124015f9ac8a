package layer

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/easelkit/easel"
)

const (
	// MaxBaseDim caps the base mipmap dimension. Oversized uploads are
	// scaled down once so the eraser's working surface stays bounded.
	MaxBaseDim = 2048

	// MinLevelDim stops the chain once the next level would drop below
	// this on its smaller dimension.
	MinLevelDim = 32
)

// Chain is an ordered sequence of progressively half-sized raster
// surfaces, largest first. Level 0 is the working copy of the layer's
// content and the surface the eraser mutates.
type Chain struct {
	levels []*easel.Pixmap
}

// BuildChain creates a mipmap chain from decoded source pixels. The base
// is capped at MaxBaseDim (high-quality downscale); each further level is
// a 2x2 box-filtered half of its parent.
func BuildChain(src *easel.Pixmap) *Chain {
	if src == nil {
		return &Chain{levels: []*easel.Pixmap{easel.NewPixmap(0, 0)}}
	}
	base := capBase(src)
	c := &Chain{levels: []*easel.Pixmap{base}}
	c.Regenerate()
	return c
}

// capBase scales src down to fit MaxBaseDim if needed, otherwise clones.
func capBase(src *easel.Pixmap) *easel.Pixmap {
	w, h := src.Width(), src.Height()
	if w == 0 || h == 0 {
		return easel.NewPixmap(w, h)
	}
	longEdge := max(w, h)
	if longEdge <= MaxBaseDim {
		return src.Clone()
	}
	scale := float64(MaxBaseDim) / float64(longEdge)
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src.ToImage(), src.ToImage().Bounds(), xdraw.Over, nil)
	return easel.FromImage(dst)
}

// Base returns level 0.
func (c *Chain) Base() *easel.Pixmap {
	return c.levels[0]
}

// Level returns the mipmap at index i, or nil out of range.
func (c *Chain) Level(i int) *easel.Pixmap {
	if i < 0 || i >= len(c.levels) {
		return nil
	}
	return c.levels[i]
}

// Len returns the number of levels.
func (c *Chain) Len() int { return len(c.levels) }

// ForWidth returns the smallest level that is still at least the given
// width, for cheap thumbnailing. The base is returned when every level is
// smaller.
func (c *Chain) ForWidth(w float64) *easel.Pixmap {
	pick := c.levels[0]
	for _, lv := range c.levels[1:] {
		if float64(lv.Width()) < w {
			break
		}
		pick = lv
	}
	return pick
}

// Regenerate rebuilds levels 1..n from the (possibly mutated) base. Each
// level is downsampled from its immediate parent rather than from the
// original, keeping post-erase regeneration cheap.
func (c *Chain) Regenerate() {
	c.levels = c.levels[:1]
	for {
		parent := c.levels[len(c.levels)-1]
		nw, nh := parent.Width()/2, parent.Height()/2
		if min(nw, nh) < MinLevelDim {
			return
		}
		c.levels = append(c.levels, downsampleHalf(parent))
	}
}

// Clone deep-copies every level.
func (c *Chain) Clone() *Chain {
	out := &Chain{levels: make([]*easel.Pixmap, len(c.levels))}
	for i, lv := range c.levels {
		out.levels[i] = lv.Clone()
	}
	return out
}

// downsampleHalf produces a half-size surface with a 2x2 box filter.
func downsampleHalf(src *easel.Pixmap) *easel.Pixmap {
	sw, sh := src.Width(), src.Height()
	dw, dh := sw/2, sh/2
	dst := easel.NewPixmap(dw, dh)
	sdata := src.Data()
	ddata := dst.Data()
	for dy := 0; dy < dh; dy++ {
		for dx := 0; dx < dw; dx++ {
			sx, sy := dx*2, dy*2
			i00 := (sy*sw + sx) * 4
			i10 := i00 + 4
			i01 := i00 + sw*4
			i11 := i01 + 4
			di := (dy*dw + dx) * 4
			for ch := 0; ch < 4; ch++ {
				sum := uint16(sdata[i00+ch]) + uint16(sdata[i10+ch]) +
					uint16(sdata[i01+ch]) + uint16(sdata[i11+ch])
				ddata[di+ch] = uint8(sum / 4)
			}
		}
	}
	return dst
}
