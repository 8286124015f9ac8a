package easel

import (
	"image"
	"image/png"
	"io"

	"github.com/easelkit/easel/internal/blend"
)

// Pixmap is a rectangular pixel buffer in non-premultiplied RGBA order,
// 4 bytes per pixel. It is the rendering surface for layer caches, scrub
// composites and export targets.
//
// A Pixmap with zero width or height is valid and renders nothing; the
// degenerate case is deliberately not an error (empty text layers and
// fully-erased images produce such surfaces).
type Pixmap struct {
	width  int
	height int
	data   []uint8
}

// NewPixmap creates a transparent pixmap with the given dimensions.
// Negative dimensions are treated as zero.
func NewPixmap(width, height int) *Pixmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the pixmap width in pixels.
func (p *Pixmap) Width() int { return p.width }

// Height returns the pixmap height in pixels.
func (p *Pixmap) Height() int { return p.height }

// Empty reports whether the pixmap has zero area.
func (p *Pixmap) Empty() bool { return p == nil || p.width == 0 || p.height == 0 }

// Data returns the raw pixel data. The slice aliases the pixmap's
// backing store.
func (p *Pixmap) Data() []uint8 { return p.data }

// SetPixel sets a single pixel. Out-of-bounds writes are ignored.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0], p.data[i+1], p.data[i+2], p.data[i+3] = c.Bytes()
}

// GetPixel returns a single pixel. Out-of-bounds reads are transparent.
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	return RGBA{
		R: float64(p.data[i+0]) / 255,
		G: float64(p.data[i+1]) / 255,
		B: float64(p.data[i+2]) / 255,
		A: float64(p.data[i+3]) / 255,
	}
}

// AlphaAt returns the 8-bit alpha at (x, y), 0 outside the bounds.
// Hit testing and content-frame scans read only this channel.
func (p *Pixmap) AlphaAt(x, y int) uint8 {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return 0
	}
	return p.data[(y*p.width+x)*4+3]
}

// Clear fills the entire pixmap with a color.
func (p *Pixmap) Clear(c RGBA) {
	r, g, b, a := c.Bytes()
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = r
		p.data[i+1] = g
		p.data[i+2] = b
		p.data[i+3] = a
	}
}

// Clone returns a deep copy of the pixmap.
func (p *Pixmap) Clone() *Pixmap {
	c := NewPixmap(p.width, p.height)
	copy(c.data, p.data)
	return c
}

// Composite composites src over p pixel-by-pixel using the given blend
// mode. Both pixmaps must have identical dimensions; mismatched sizes are
// a no-op. This is the aligned fast path used for alpha masking
// (blend.DstIn) and erase compositing (blend.DstOut).
func (p *Pixmap) Composite(src *Pixmap, mode blend.Mode) {
	if src == nil || src.width != p.width || src.height != p.height {
		return
	}
	f := blend.Func(mode)
	for i := 0; i < len(p.data); i += 4 {
		r, g, b, a := f(
			src.data[i], src.data[i+1], src.data[i+2], src.data[i+3],
			p.data[i], p.data[i+1], p.data[i+2], p.data[i+3],
		)
		p.data[i], p.data[i+1], p.data[i+2], p.data[i+3] = r, g, b, a
	}
}

// ToImage converts the pixmap to an image.NRGBA sharing no storage.
func (p *Pixmap) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates a pixmap from any image.Image. NRGBA sources copy
// row-by-row; other formats go through the generic color interface.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pm := NewPixmap(w, h)

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(pm.data[y*w*4:(y+1)*w*4], src.Pix[si:si+w*4])
		}
		return pm
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pm.SetPixel(x, y, FromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)))
		}
	}
	return pm
}

// EncodePNG writes the pixmap as PNG.
func (p *Pixmap) EncodePNG(w io.Writer) error {
	return png.Encode(w, p.ToImage())
}
