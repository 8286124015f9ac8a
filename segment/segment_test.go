package segment

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

func solidPixmap(w, h int, c easel.RGBA) *easel.Pixmap {
	p := easel.NewPixmap(w, h)
	p.Clear(c)
	return p
}

// maskFunc adapts a function to the Segmenter interface.
type maskFunc func(ctx context.Context, img *easel.Pixmap) (*Mask, error)

func (f maskFunc) Segment(ctx context.Context, img *easel.Pixmap) (*Mask, error) {
	return f(ctx, img)
}

// leftHalfSegmenter keeps the left half of whatever it is given.
func leftHalfSegmenter() Segmenter {
	return maskFunc(func(_ context.Context, img *easel.Pixmap) (*Mask, error) {
		m := &Mask{W: img.Width(), H: img.Height(), Data: make([]float64, img.Width()*img.Height())}
		for y := 0; y < m.H; y++ {
			for x := 0; x < m.W/2; x++ {
				m.Data[y*m.W+x] = 1
			}
		}
		return m, nil
	})
}

func TestMaskAlpha(t *testing.T) {
	// Raw model range [-2, 6]: Alpha must normalize by the observed
	// min/max before sharpening.
	m := &Mask{W: 3, H: 1, Data: []float64{-2, 2, 6}}
	a := m.Alpha()
	if a[0] != 0 || a[2] != 255 {
		t.Errorf("endpoints = %d, %d; want 0, 255", a[0], a[2])
	}
	// Midpoint: smoothstep(0.5) = 0.5.
	if a[1] != 128 {
		t.Errorf("midpoint = %d, want 128", a[1])
	}
}

func TestMaskAlphaSharpensEdges(t *testing.T) {
	// With the observed min/max at the samples themselves, the pair
	// normalizes to the full range regardless of the raw values.
	m := &Mask{W: 2, H: 1, Data: []float64{0.25, 0.75}}
	a := m.Alpha()
	if a[0] != 0 || a[1] != 255 {
		t.Errorf("Alpha() = %v, want [0 255]", a)
	}
}

func TestMaskAlphaFlat(t *testing.T) {
	m := &Mask{W: 2, H: 1, Data: []float64{0.5, 0.5}}
	a := m.Alpha()
	if a[0] != 255 || a[1] != 255 {
		t.Errorf("flat mask Alpha() = %v, want all 255", a)
	}

	// A flat zero response means no foreground, not full coverage.
	z := &Mask{W: 2, H: 1, Data: []float64{0, 0}}
	a = z.Alpha()
	if a[0] != 0 || a[1] != 0 {
		t.Errorf("flat zero mask Alpha() = %v, want all 0", a)
	}
}

func TestRemoveBackgroundCropsAndReanchors(t *testing.T) {
	// 100x100 opaque layer rendered at size 200, centered at (500, 400).
	l := layer.NewImage("hash", solidPixmap(100, 100, easel.White), 500, 400, 200)

	act, err := RemoveBackground(context.Background(), leftHalfSegmenter(), l, nil)
	if err != nil {
		t.Fatal(err)
	}

	// The surviving left half is 50x100 raster pixels; at 2 world units
	// per texel that is a 100-wide layer.
	if got := act.Mipmaps.Base().Width(); got != 50 {
		t.Errorf("cropped width = %d, want 50", got)
	}
	if math.Abs(act.Size-100) > 1e-9 {
		t.Errorf("Size = %v, want 100", act.Size)
	}

	// Crop center sits 25 texels left of the base center: the layer
	// shifts by -50 world units so the kept pixels do not move.
	if math.Abs(act.X-450) > 1e-9 || math.Abs(act.Y-400) > 1e-9 {
		t.Errorf("position = (%v, %v), want (450, 400)", act.X, act.Y)
	}
	if act.ID != l.ID {
		t.Errorf("action targets %q, want %q", act.ID, l.ID)
	}
}

func TestRemoveBackgroundShiftFollowsRotation(t *testing.T) {
	l := layer.NewImage("hash", solidPixmap(100, 100, easel.White), 500, 400, 200)
	l.Rot = 90

	act, err := RemoveBackground(context.Background(), leftHalfSegmenter(), l, nil)
	if err != nil {
		t.Fatal(err)
	}
	// The raster shift (-50, 0) rotates with the layer: at 90 degrees it
	// becomes (0, -50) in world space.
	if math.Abs(act.X-500) > 1e-6 || math.Abs(act.Y-350) > 1e-6 {
		t.Errorf("position = (%v, %v), want (500, 350)", act.X, act.Y)
	}
}

func TestRemoveBackgroundShiftFollowsFlip(t *testing.T) {
	l := layer.NewImage("hash", solidPixmap(100, 100, easel.White), 500, 400, 200)
	l.FlipX = true

	act, err := RemoveBackground(context.Background(), leftHalfSegmenter(), l, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Mirrored horizontally, the kept half renders on the right.
	if math.Abs(act.X-550) > 1e-9 {
		t.Errorf("X = %v, want 550", act.X)
	}
}

func TestRemoveBackgroundMaskResampled(t *testing.T) {
	// The model returns its mask at a quarter of the asset resolution;
	// it must be scaled up onto the working content before compositing.
	seg := maskFunc(func(_ context.Context, img *easel.Pixmap) (*Mask, error) {
		w, h := img.Width()/4, img.Height()/4
		m := &Mask{W: w, H: h, Data: make([]float64, w*h)}
		for y := 0; y < h; y++ {
			for x := 0; x < w/2; x++ {
				m.Data[y*w+x] = 1
			}
		}
		return m, nil
	})
	l := layer.NewImage("hash", solidPixmap(128, 128, easel.White), 0, 0, 128)

	act, err := RemoveBackground(context.Background(), seg, l, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := act.Mipmaps.Base().Width()
	// Resampling softens the boundary by a few pixels either side; the
	// crop still lands near half width.
	if got < 56 || got > 76 {
		t.Errorf("cropped width = %d, want about 64", got)
	}
}

func TestRemoveBackgroundEmptyMask(t *testing.T) {
	seg := maskFunc(func(_ context.Context, img *easel.Pixmap) (*Mask, error) {
		return &Mask{W: img.Width(), H: img.Height(), Data: make([]float64, img.Width()*img.Height())}, nil
	})
	l := layer.NewImage("hash", solidPixmap(32, 32, easel.White), 0, 0, 32)
	if _, err := RemoveBackground(context.Background(), seg, l, nil); err != ErrEmptyMask {
		t.Errorf("err = %v, want ErrEmptyMask", err)
	}
}

func TestRemoveBackgroundRejectsText(t *testing.T) {
	l := layer.NewText("hi", "sans", 24, 0, 0)
	if _, err := RemoveBackground(context.Background(), leftHalfSegmenter(), l, nil); err != ErrNotImage {
		t.Errorf("err = %v, want ErrNotImage", err)
	}
}

func TestRemoveBackgroundPropagatesSegmenterError(t *testing.T) {
	boom := errors.New("inference backend down")
	seg := maskFunc(func(context.Context, *easel.Pixmap) (*Mask, error) { return nil, boom })
	l := layer.NewImage("hash", solidPixmap(32, 32, easel.White), 0, 0, 32)
	if _, err := RemoveBackground(context.Background(), seg, l, nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want segmenter error", err)
	}
}
