package layer

import (
	"image"

	"github.com/easelkit/easel"
)

// ComputeContentFrame scans a surface for its tight bounding rectangle of
// non-transparent pixels. Fully transparent content yields the empty
// rectangle. The frame is always a sub-rectangle of the surface bounds.
func ComputeContentFrame(p *easel.Pixmap) image.Rectangle {
	if p.Empty() {
		return image.Rectangle{}
	}
	w, h := p.Width(), p.Height()
	minX, minY := w, h
	maxX, maxY := -1, -1
	data := p.Data()
	for y := 0; y < h; y++ {
		row := y * w * 4
		for x := 0; x < w; x++ {
			if data[row+x*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Crop returns a copy of the sub-rectangle r of p. Out-of-bounds parts of
// r are clipped; an empty intersection yields a zero-size pixmap.
func Crop(p *easel.Pixmap, r image.Rectangle) *easel.Pixmap {
	r = r.Intersect(image.Rect(0, 0, p.Width(), p.Height()))
	out := easel.NewPixmap(r.Dx(), r.Dy())
	if out.Empty() {
		return out
	}
	w := p.Width()
	src := p.Data()
	dst := out.Data()
	rowLen := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		si := ((r.Min.Y+y)*w + r.Min.X) * 4
		copy(dst[y*rowLen:(y+1)*rowLen], src[si:si+rowLen])
	}
	return out
}
