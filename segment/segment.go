// Package segment glues an external segmentation service into the layer
// model: it turns a raw model mask into a sharpened alpha channel,
// applies it to a layer's working content, crops to the surviving
// pixels, and re-anchors the layer so nothing visually jumps.
package segment

import (
	"context"
	"errors"
	"image"

	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/internal/blend"
	"github.com/easelkit/easel/layer"
	"github.com/easelkit/easel/state"
)

var (
	// ErrNotImage is returned for text layers or layers without raster
	// content.
	ErrNotImage = errors.New("segment: layer has no raster content")

	// ErrEmptyMask is returned when the mask removes every pixel.
	ErrEmptyMask = errors.New("segment: mask left no visible content")
)

// Mask is a single-channel foreground probability map at the model's
// native output resolution. Values carry the model's raw range; Alpha
// normalizes them.
type Mask struct {
	W, H int
	Data []float64 // row-major, len == W*H
}

// Segmenter produces a foreground mask for an image. Implementations
// wrap an inference backend and may take arbitrarily long; they must
// respect ctx cancellation.
type Segmenter interface {
	Segment(ctx context.Context, img *easel.Pixmap) (*Mask, error)
}

// Alpha converts the mask into an 8-bit alpha plane. Values are
// normalized to [0, 1] by the observed min/max, then sharpened with a
// smoothstep curve (3v²-2v³) to firm up soft model edges.
func (m *Mask) Alpha() []uint8 {
	out := make([]uint8, len(m.Data))
	if len(m.Data) == 0 {
		return out
	}
	lo, hi := floats.Min(m.Data), floats.Max(m.Data)
	span := hi - lo
	for i, v := range m.Data {
		var t float64
		switch {
		case span > 0:
			t = (v - lo) / span
		case hi > 0:
			// Flat positive response: the whole plane is foreground.
			// Flat zero (or negative) means the model found nothing.
			t = 1
		}
		t = t * t * (3 - 2*t)
		out[i] = uint8(t*255 + 0.5)
	}
	return out
}

// RemoveBackground runs segmentation against the layer's original
// full-resolution asset and returns the single action that swaps in the
// masked, cropped content. The caller dispatches it; on a locked layer
// the dispatch fails there.
//
// The mask is computed from the original asset rather than the working
// proxy so edge quality does not depend on the proxy resolution, then
// resampled onto the proxy for compositing.
func RemoveBackground(ctx context.Context, seg Segmenter, l *layer.Layer, original *easel.Pixmap) (state.ReplaceLayerContent, error) {
	var zero state.ReplaceLayerContent
	if l.Kind != layer.KindImage || l.Mipmaps == nil {
		return zero, ErrNotImage
	}
	if original == nil {
		original = l.Mipmaps.Base()
	}

	mask, err := seg.Segment(ctx, original)
	if err != nil {
		return zero, err
	}

	base := l.Mipmaps.Base()
	masked := base.Clone()
	masked.Composite(maskPixmap(mask, base.Width(), base.Height()), blend.DstIn)

	frame := layer.ComputeContentFrame(masked)
	if frame.Empty() {
		return zero, ErrEmptyMask
	}
	crop := layer.Crop(masked, frame)

	// Keep the world-units-per-texel scale: the cropped content renders
	// at the same on-canvas scale, only smaller.
	texel := l.Size / float64(base.Width())
	newSize := float64(frame.Dx()) * texel

	// The crop's center lands where those pixels already were: shift the
	// layer position by the raster offset between the crop center and
	// the base center, carried through flip and rotation.
	shift := easel.Pt(
		(float64(frame.Min.X+frame.Max.X)/2-float64(base.Width())/2)*texel,
		(float64(frame.Min.Y+frame.Max.Y)/2-float64(base.Height())/2)*texel,
	)
	if l.FlipX {
		shift.X = -shift.X
	}
	shift = shift.Rotate(easel.Radians(l.Rot))

	chain := layer.BuildChain(crop)
	easel.Logger().Debug("background removed",
		"layer", l.ID,
		"frame", frame.String(),
		"size", newSize,
	)
	return state.ReplaceLayerContent{
		ID:           l.ID,
		Mipmaps:      chain,
		ContentFrame: layer.ComputeContentFrame(chain.Base()),
		X:            l.X + shift.X,
		Y:            l.Y + shift.Y,
		Size:         newSize,
	}, nil
}

// maskPixmap resamples the mask's alpha plane onto the target resolution
// with high-quality interpolation, as an all-white pixmap whose alpha is
// the mask.
func maskPixmap(m *Mask, w, h int) *easel.Pixmap {
	alpha := m.Alpha()

	src := image.NewNRGBA(image.Rect(0, 0, m.W, m.H))
	for i, a := range alpha {
		src.Pix[i*4+0] = 255
		src.Pix[i*4+1] = 255
		src.Pix[i*4+2] = 255
		src.Pix[i*4+3] = a
	}
	if m.W == w && m.H == h {
		return easel.FromImage(src)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return easel.FromImage(dst)
}
