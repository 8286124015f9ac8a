package interact

import (
	"fmt"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/brush"
	"github.com/easelkit/easel/cache"
	"github.com/easelkit/easel/layer"
)

const (
	// DragThreshold is the display-pixel distance a pointer must travel
	// before a press is reclassified from a click into a drag.
	DragThreshold = 3.0

	// AlignMargin is the world-space distance within which a layer's
	// rotated bounds count as snapped to a canvas edge.
	AlignMargin = 20.0

	// opaqueAlpha is the minimum alpha for a pixel to count as a hit.
	opaqueAlpha = 16

	// opacityGridDim caps the opacity index resolution per layer.
	opacityGridDim = 64
)

// HandleAt returns the transform handle under a world-space point on the
// given layer, or HandleNone. The rotate handle wins over corners when
// both are in range; hit radii stay visually constant regardless of
// zoom.
func HandleAt(vp *easel.Viewport, l *layer.Layer, world easel.Point) easel.Handle {
	eff := vp.EffectiveScale()
	radius := easel.HandleHitRadius / eff
	w, h := l.Metrics()
	center := l.Center()

	if world.Distance(easel.RotateHandlePos(center, h, l.Rot, eff)) <= radius {
		return easel.HandleRotate
	}
	corners := easel.CornerHandles(center, w, h, l.Rot)
	for i, c := range corners {
		if world.Distance(c) <= radius {
			return easel.HandleTopLeft + easel.Handle(i)
		}
	}
	return easel.HandleNone
}

// alphaGrid is a coarse opaque/transparent mask over a layer's base
// mipmap, sampled for pixel-accurate hit testing without touching full
// raster data on every pointer event.
type alphaGrid struct {
	gw, gh int
	bw, bh int // base mipmap dimensions the grid was built from
	bits   []bool
}

func buildAlphaGrid(base *easel.Pixmap) *alphaGrid {
	bw, bh := base.Width(), base.Height()
	gw, gh := bw, bh
	if gw > opacityGridDim || gh > opacityGridDim {
		if bw >= bh {
			gw = opacityGridDim
			gh = max(1, bh*opacityGridDim/bw)
		} else {
			gh = opacityGridDim
			gw = max(1, bw*opacityGridDim/bh)
		}
	}
	g := &alphaGrid{gw: gw, gh: gh, bw: bw, bh: bh, bits: make([]bool, gw*gh)}
	for gy := 0; gy < gh; gy++ {
		y0, y1 := gy*bh/gh, (gy+1)*bh/gh
		for gx := 0; gx < gw; gx++ {
			x0, x1 := gx*bw/gw, (gx+1)*bw/gw
			g.bits[gy*gw+gx] = cellOpaque(base, x0, y0, x1, y1)
		}
	}
	return g
}

func cellOpaque(p *easel.Pixmap, x0, y0, x1, y1 int) bool {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if p.AlphaAt(x, y) >= opaqueAlpha {
				return true
			}
		}
	}
	return false
}

func (g *alphaGrid) at(rx, ry float64) bool {
	gx := int(rx * float64(g.gw) / float64(g.bw))
	gy := int(ry * float64(g.gh) / float64(g.bh))
	if gx < 0 || gy < 0 || gx >= g.gw || gy >= g.gh {
		return false
	}
	return g.bits[gy*g.gw+gx]
}

// OpacityIndex caches per-layer opacity grids keyed by content version,
// so erase strokes and content swaps naturally refresh the index.
type OpacityIndex struct {
	grids *cache.Sharded[*alphaGrid]
}

// NewOpacityIndex creates an empty index.
func NewOpacityIndex() *OpacityIndex {
	return &OpacityIndex{grids: cache.New[*alphaGrid](0)}
}

// IsOpaque reports whether the layer has visible pixels at a world-space
// point. Text layers and layers without raster content fall back to
// bounds containment.
func (x *OpacityIndex) IsOpaque(l *layer.Layer, world easel.Point) bool {
	if l.Kind != layer.KindImage || l.Mipmaps == nil {
		return l.Bounds().Contains(world)
	}
	rp, in := brush.RasterPoint(l, world)
	if !in {
		return false
	}
	key := fmt.Sprintf("%s:%d", l.ID, l.Version())
	grid := x.grids.GetOrCreate(key, func() *alphaGrid {
		return buildAlphaGrid(l.Mipmaps.Base())
	})
	return grid.at(rp.X, rp.Y)
}

// HitTest scans layers top to bottom and returns the first whose actual
// pixels are opaque at the point, falling back to the first bounding-box
// hit so a transparent-but-bounded layer stays selectable. Returns nil
// when nothing is under the point.
func (x *OpacityIndex) HitTest(layers []*layer.Layer, world easel.Point) *layer.Layer {
	var boxHit *layer.Layer
	for _, l := range layers {
		if !l.Bounds().Contains(world) {
			continue
		}
		if boxHit == nil {
			boxHit = l
		}
		if x.IsOpaque(l, world) {
			return l
		}
	}
	return boxHit
}
