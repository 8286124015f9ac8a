// Package compose draws ordered layer stacks into pixel surfaces.
//
// The compositor is resolution-parametric: the same draw routines serve
// the interactive view, the scrub-mode fast path and high-resolution
// export. Per-layer effect rendering lives in the layer package's cache
// builder; compose only places finished cache bitmaps.
package compose

import (
	"time"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

// Options parameterizes a composite pass.
type Options struct {
	// FinalExport disables the entrance animation and any interactive
	// shortcuts; output must be full quality.
	FinalExport bool

	// Now anchors entrance-animation progress. Zero means time.Now.
	Now time.Time
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// DrawLayers composites the ordered layer stack into dst. Layers[0] is
// topmost, so iteration runs from the end of the slice backward and the
// first element draws last.
//
// Stale effect caches are rebuilt on the way; zero-area caches draw
// nothing.
func DrawLayers(dst *easel.Pixmap, layers []*layer.Layer, fonts *layer.FontRegistry, opts Options) {
	for i := len(layers) - 1; i >= 0; i-- {
		DrawLayer(dst, layers[i], fonts, opts)
	}
}

// DrawLayer composites a single layer into dst.
func DrawLayer(dst *easel.Pixmap, l *layer.Layer, fonts *layer.FontRegistry, opts Options) {
	cache := l.EnsureCache(fonts)
	if cache.Empty() {
		return
	}

	alpha := 1.0
	entrance := 1.0
	if !opts.FinalExport {
		if p := l.EntranceProgress(opts.now()); p < 1 {
			alpha = p
			entrance = 0.95 + 0.05*p
		}
	}

	// Content-to-world scale: image caches are at base-mipmap resolution,
	// text caches are already at render resolution.
	scale := 1.0
	if l.Kind == layer.KindImage && l.Mipmaps != nil && !l.Mipmaps.Base().Empty() {
		scale = l.Size / float64(l.Mipmaps.Base().Width())
	}
	scale *= entrance

	sx := scale
	if l.FlipX {
		sx = -sx
	}

	cw := float64(cache.Width())
	ch := float64(cache.Height())
	m := easel.Translate(l.X, l.Y).
		Multiply(easel.Rotate(easel.Radians(l.Rot))).
		Multiply(easel.Scale(sx, scale)).
		Multiply(easel.Translate(-cw/2, -ch/2))

	dst.DrawPixmap(cache, m, alpha)
}
