package interact

import (
	"testing"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

func solidPixmap(w, h int, c easel.RGBA) *easel.Pixmap {
	p := easel.NewPixmap(w, h)
	p.Clear(c)
	return p
}

// halfPixmap has opaque pixels only in its left half.
func halfPixmap(w, h int) *easel.Pixmap {
	p := easel.NewPixmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			p.SetPixel(x, y, easel.White)
		}
	}
	return p
}

func TestHandleAt(t *testing.T) {
	vp := easel.NewViewport(1000, 800)
	l := layer.NewImage("h", solidPixmap(100, 100, easel.White), 500, 400, 100)

	corners := easel.CornerHandles(l.Center(), 100, 100, 0)
	tests := []struct {
		name string
		p    easel.Point
		want easel.Handle
	}{
		{"top-left corner", corners[0], easel.HandleTopLeft},
		{"bottom-right corner", corners[2], easel.HandleBottomRight},
		{"near corner within radius", corners[1].Add(easel.Pt(5, -5)), easel.HandleTopRight},
		{"rotate handle", easel.Pt(500, 400-50-easel.RotateHandleOffset), easel.HandleRotate},
		{"center misses", easel.Pt(500, 400), easel.HandleNone},
		{"far away", easel.Pt(0, 0), easel.HandleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandleAt(vp, l, tt.p); got != tt.want {
				t.Errorf("HandleAt(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRotateHandleWinsOverCorners(t *testing.T) {
	vp := easel.NewViewport(1000, 800)
	// Tiny layer: the rotate handle offset keeps it clear of the top
	// edge, but with a small enough box corner radii overlap near the
	// top; the rotate handle must take priority at its own position.
	l := layer.NewImage("h", solidPixmap(16, 16, easel.White), 500, 400, 16)
	p := easel.RotateHandlePos(l.Center(), 16, 0, vp.EffectiveScale())
	if got := HandleAt(vp, l, p); got != easel.HandleRotate {
		t.Errorf("HandleAt(rotate pos) = %v, want rotate", got)
	}
}

func TestIsOpaquePerPixel(t *testing.T) {
	idx := NewOpacityIndex()
	l := layer.NewImage("h", halfPixmap(100, 100), 500, 400, 100)

	if !idx.IsOpaque(l, easel.Pt(480, 400)) {
		t.Error("left half should be opaque")
	}
	if idx.IsOpaque(l, easel.Pt(540, 400)) {
		t.Error("right half should be transparent")
	}
	if idx.IsOpaque(l, easel.Pt(0, 0)) {
		t.Error("outside the layer should not hit")
	}
}

func TestIsOpaqueTracksContentVersion(t *testing.T) {
	idx := NewOpacityIndex()
	l := layer.NewImage("h", solidPixmap(64, 64, easel.White), 0, 0, 64)

	if !idx.IsOpaque(l, easel.Pt(0, 0)) {
		t.Fatal("solid layer should hit")
	}

	// Erase everything, bump the version: the stale grid must not be
	// reused.
	l.Mipmaps.Base().Clear(easel.RGBA{})
	l.BumpVersion()
	if idx.IsOpaque(l, easel.Pt(0, 0)) {
		t.Error("index served a stale opacity grid after a content edit")
	}
}

// framePixmap has opaque edge strips and a transparent middle, so its
// content frame spans the full surface.
func framePixmap(w, h int) *easel.Pixmap {
	p := easel.NewPixmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/10 || x >= w-w/10 {
				p.SetPixel(x, y, easel.White)
			}
		}
	}
	return p
}

func TestHitTestPrefersPixelOpaque(t *testing.T) {
	idx := NewOpacityIndex()

	// Both bounding boxes cover the probe, but the top layer is
	// transparent there.
	top := layer.NewImage("h", framePixmap(100, 100), 500, 400, 100)
	bottom := layer.NewImage("h", solidPixmap(100, 100, easel.White), 520, 400, 100)
	stack := []*layer.Layer{top, bottom}

	probe := easel.Pt(500, 400) // hollow middle of top, solid bottom
	if got := idx.HitTest(stack, probe); got != bottom {
		t.Error("pixel-opaque lower layer should win over a transparent upper bbox")
	}

	// No pixel-opaque candidate: fall back to the first bounding-box
	// hit so a transparent-but-bounded layer stays selectable.
	alone := []*layer.Layer{top}
	if got := idx.HitTest(alone, probe); got != top {
		t.Error("expected bounding-box fallback")
	}

	if got := idx.HitTest(stack, easel.Pt(0, 0)); got != nil {
		t.Error("miss should return nil")
	}
}

func TestHitTestTopToBottom(t *testing.T) {
	idx := NewOpacityIndex()
	top := layer.NewImage("h", solidPixmap(50, 50, easel.White), 500, 400, 50)
	bottom := layer.NewImage("h", solidPixmap(50, 50, easel.White), 500, 400, 50)
	if got := idx.HitTest([]*layer.Layer{top, bottom}, easel.Pt(500, 400)); got != top {
		t.Error("overlapping opaque layers: topmost should win")
	}
}
