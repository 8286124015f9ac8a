package compose

import (
	"github.com/easelkit/easel"
	"github.com/easelkit/easel/internal/filter"
)

// DrawBackground draws the project background scaled to dst, applying
// the project-level rotation (0/90/180/270), horizontal flip and
// brightness/saturation adjustment. dst must already have the rotated
// dimensions (width and height swap at 90 and 270).
func DrawBackground(dst, bg *easel.Pixmap, rotation int, flipX bool, brightness, saturation float64) {
	if dst.Empty() || bg.Empty() {
		return
	}

	dw := float64(dst.Width())
	dh := float64(dst.Height())
	bw := float64(bg.Width())
	bh := float64(bg.Height())

	// At 90/270 the background's width maps onto the destination height.
	var sx, sy float64
	if rotation == 90 || rotation == 270 {
		sx = dh / bw
		sy = dw / bh
	} else {
		sx = dw / bw
		sy = dh / bh
	}
	if flipX {
		sx = -sx
	}

	m := easel.Translate(dw/2, dh/2).
		Multiply(easel.Rotate(easel.Radians(float64(rotation)))).
		Multiply(easel.Scale(sx, sy)).
		Multiply(easel.Translate(-bw/2, -bh/2))

	dst.DrawPixmap(bg, m, 1)

	cm := filter.Brightness(brightness).Then(filter.Saturation(saturation))
	cm.Apply(dst)
}
