package layer

import (
	"math"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/internal/filter"
)

// RebuildCache renders the layer's fully effect-composited bitmap at
// content resolution and marks the cache valid. The pipeline order is
// fixed and matters: synthetic border shadows, then the drop shadow of
// the bordered content, then the color filters over everything, with the
// layer opacity applied to the final surface.
//
// Rebuilding is idempotent: with no intervening field change, two calls
// produce bit-identical bitmaps. Zero-area content yields a valid empty
// cache that renders nothing.
func (l *Layer) RebuildCache(fonts *FontRegistry) *easel.Pixmap {
	content := l.renderContent(fonts)
	if content.Empty() {
		l.cache = Cache{Bitmap: easel.NewPixmap(0, 0), Valid: true}
		return l.cache.Bitmap
	}

	pad := l.cachePadding()
	w := content.Width() + 2*pad
	h := content.Height() + 2*pad

	// Content plus outline, centered in the padded surface.
	inner := easel.NewPixmap(w, h)
	if l.Kind == KindImage && l.Border.Enabled && l.Border.Width > 0 {
		outline := filter.Outline{Width: l.Border.Width, Color: l.Border.Color}
		for _, stamp := range outline.Stamps() {
			stamp.Stamp(inner, content, pad, pad)
		}
	}
	inner.Blit(content, pad, pad)

	// Drop shadow goes under the bordered content.
	out := inner
	if l.Shadow.Enabled {
		out = easel.NewPixmap(w, h)
		shadow := filter.DropShadow{
			OffsetX: l.Shadow.OffsetX,
			OffsetY: l.Shadow.OffsetY,
			Blur:    l.Shadow.Blur,
			Color:   l.Shadow.Color,
		}
		shadow.Stamp(out, inner, 0, 0)
		out.Blit(inner, 0, 0)
	}

	// Color filters concatenate into one matrix pass.
	cm := filter.Brightness(l.Brightness).
		Then(filter.Saturation(l.Saturation)).
		Then(filter.Contrast(l.Contrast))
	cm.Apply(out)

	applyOpacity(out, l.Opacity)

	l.cache = Cache{Bitmap: out, Valid: true}
	easel.Logger().Debug("layer cache rebuilt", "layer", l.ID, "w", w, "h", h)
	return out
}

// EnsureCache returns the effect cache, rebuilding it first if stale.
func (l *Layer) EnsureCache(fonts *FontRegistry) *easel.Pixmap {
	if l.cache.Valid {
		return l.cache.Bitmap
	}
	return l.RebuildCache(fonts)
}

// CachePadding returns the bleed margin baked around the content in the
// cache bitmap, in content texels.
func (l *Layer) CachePadding() int { return l.cachePadding() }

func (l *Layer) cachePadding() int {
	p := 0.0
	if l.Shadow.Enabled {
		s := filter.DropShadow{
			OffsetX: l.Shadow.OffsetX,
			OffsetY: l.Shadow.OffsetY,
			Blur:    l.Shadow.Blur,
		}
		p += s.Bleed()
	}
	if l.Kind == KindImage && l.Border.Enabled {
		p += l.Border.Width * 2
	}
	return int(math.Ceil(p))
}

// renderContent produces the raw content surface: the base mipmap for
// images, a rasterized text block for text.
func (l *Layer) renderContent(fonts *FontRegistry) *easel.Pixmap {
	switch l.Kind {
	case KindImage:
		if l.Mipmaps == nil {
			return easel.NewPixmap(0, 0)
		}
		return l.Mipmaps.Base()
	default:
		pm := renderText(l, fonts)
		// Keep the measured block in sync with what was drawn.
		l.TextW = float64(pm.Width())
		l.TextH = float64(pm.Height())
		return pm
	}
}

func applyOpacity(p *easel.Pixmap, opacity float64) {
	if opacity >= 1 {
		return
	}
	if opacity < 0 {
		opacity = 0
	}
	data := p.Data()
	for i := 3; i < len(data); i += 4 {
		data[i] = uint8(float64(data[i])*opacity + 0.5)
	}
}
