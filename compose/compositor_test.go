package compose

import (
	"bytes"
	"testing"
	"time"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
	"github.com/easelkit/easel/state"
)

// settled is far enough in the past that entrance animations are done.
var settled = time.Now().Add(-time.Hour)

func solidPixmap(w, h int, c easel.RGBA) *easel.Pixmap {
	p := easel.NewPixmap(w, h)
	p.Clear(c)
	return p
}

func settledImage(c easel.RGBA, x, y, size float64) *layer.Layer {
	l := layer.NewImage("h", solidPixmap(32, 32, c), x, y, size)
	l.CreatedAt = settled
	return l
}

func TestZOrderTopmostWins(t *testing.T) {
	fonts := layer.NewFontRegistry()
	red := settledImage(easel.RGB(1, 0, 0), 50, 50, 40)
	blue := settledImage(easel.RGB(0, 0, 1), 50, 50, 40)

	// Index 0 is topmost.
	dst := easel.NewPixmap(100, 100)
	DrawLayers(dst, []*layer.Layer{red, blue}, fonts, Options{})

	r, _, b, _ := dst.GetPixel(50, 50).Bytes()
	if r < 200 || b > 50 {
		t.Errorf("center pixel r=%d b=%d, want the topmost (red) layer on top", r, b)
	}
}

func TestScrubMatchesFullRedraw(t *testing.T) {
	fonts := layer.NewFontRegistry()
	back := settledImage(easel.RGB(0, 1, 0), 30, 30, 32)
	active := settledImage(easel.RGB(1, 0, 0), 50, 50, 32)
	front := settledImage(easel.RGB(0, 0, 1), 70, 70, 32)
	stack := []*layer.Layer{front, active, back}

	opts := Options{Now: time.Now()}

	s := BuildScrubCaches(100, 100, stack, active.ID, fonts, opts)
	if s == nil {
		t.Fatal("scrub caches not built")
	}

	// Move the active layer mid-gesture.
	active.X = 55
	active.Invalidate()

	scrubbed := easel.NewPixmap(100, 100)
	s.Draw(scrubbed, active, fonts, opts)

	full := easel.NewPixmap(100, 100)
	DrawLayers(full, stack, fonts, opts)

	if !bytes.Equal(scrubbed.Data(), full.Data()) {
		t.Error("scrub-mode frame differs from a full redraw")
	}
}

func TestBuildScrubCachesUnknownLayer(t *testing.T) {
	if s := BuildScrubCaches(10, 10, nil, "nope", layer.NewFontRegistry(), Options{}); s != nil {
		t.Error("expected nil for unknown active layer")
	}
}

func TestEntranceAnimationFades(t *testing.T) {
	fonts := layer.NewFontRegistry()
	l := layer.NewImage("h", solidPixmap(32, 32, easel.White), 50, 50, 40)

	halfway := l.CreatedAt.Add(layer.EntranceDuration / 2)
	dst := easel.NewPixmap(100, 100)
	DrawLayer(dst, l, fonts, Options{Now: halfway})

	a := dst.AlphaAt(50, 50)
	if a < 100 || a > 156 {
		t.Errorf("mid-entrance alpha = %d, want about 128", a)
	}

	// Export suppresses the animation entirely.
	export := easel.NewPixmap(100, 100)
	DrawLayer(export, l, fonts, Options{Now: halfway, FinalExport: true})
	if export.AlphaAt(50, 50) != 255 {
		t.Errorf("export alpha = %d, want 255", export.AlphaAt(50, 50))
	}
}

func TestDrawBackgroundRotationSwapsAxes(t *testing.T) {
	// 2x1 background: left red, right blue.
	bg := easel.NewPixmap(2, 1)
	bg.SetPixel(0, 0, easel.RGB(1, 0, 0))
	bg.SetPixel(1, 0, easel.RGB(0, 0, 1))

	// Unrotated: stretched across a 40x20 canvas.
	flat := easel.NewPixmap(40, 20)
	DrawBackground(flat, bg, 0, false, 1, 1)
	r, _, _, _ := flat.GetPixel(5, 10).Bytes()
	if r < 200 {
		t.Error("unrotated background: left side should be red")
	}

	// Rotated 90 degrees clockwise: red moves to the top of a portrait
	// canvas.
	tall := easel.NewPixmap(20, 40)
	DrawBackground(tall, bg, 90, false, 1, 1)
	r, _, b, _ := tall.GetPixel(10, 5).Bytes()
	if r < 200 || b > 50 {
		t.Errorf("rotated background top pixel r=%d b=%d, want red", r, b)
	}
}

func TestDrawBackgroundFlip(t *testing.T) {
	bg := easel.NewPixmap(2, 1)
	bg.SetPixel(0, 0, easel.RGB(1, 0, 0))
	bg.SetPixel(1, 0, easel.RGB(0, 0, 1))

	dst := easel.NewPixmap(40, 20)
	DrawBackground(dst, bg, 0, true, 1, 1)
	_, _, b, _ := dst.GetPixel(5, 10).Bytes()
	if b < 200 {
		t.Error("flipped background: left side should be blue")
	}
}

func TestExportScalesEverything(t *testing.T) {
	fonts := layer.NewFontRegistry()
	c := state.NewCanvas(1000, 500)
	c.Background = solidPixmap(10, 5, easel.RGB(0.2, 0.2, 0.2))
	l := settledImage(easel.RGB(1, 0, 0), 500, 250, 200)
	c.Layers = []*layer.Layer{l}

	out, err := Export(c, fonts, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width() != 2000 || out.Height() != 1000 {
		t.Fatalf("export size %dx%d, want 2000x1000", out.Width(), out.Height())
	}

	// The layer still sits at the canvas center, now at doubled scale.
	r, _, _, _ := out.GetPixel(1000, 500).Bytes()
	if r < 200 {
		t.Error("layer missing from export center")
	}
	// Original canvas state untouched.
	if l.Size != 200 || l.X != 500 {
		t.Error("export mutated the live layer")
	}
}

func TestExportKeepsImageEffectProportions(t *testing.T) {
	fonts := layer.NewFontRegistry()
	c := state.NewCanvas(100, 50)
	l := settledImage(easel.White, 50, 25, 40)
	l.Border = layer.Border{Enabled: true, Color: easel.White, Width: 10}
	c.Layers = []*layer.Layer{l}

	screen := easel.NewPixmap(100, 50)
	DrawLayers(screen, c.Layers, fonts, Options{Now: time.Now()})
	screenRun := opaqueRun(screen, 25)
	if screenRun == 0 {
		t.Fatal("bordered layer missing from screen render")
	}

	out, err := Export(c, fonts, 200)
	if err != nil {
		t.Fatal(err)
	}
	exportRun := opaqueRun(out, 50)

	// Image-layer border width is baked in content texels and the draw
	// transform carries the export factor, so a 2x export doubles the
	// bordered extent and no more.
	want := 2 * screenRun
	if exportRun < want-8 || exportRun > want+8 {
		t.Errorf("bordered extent = %dpx at 2x export, want about %dpx (screen %dpx)",
			exportRun, want, screenRun)
	}
}

func TestScaleForExportPerKind(t *testing.T) {
	img := settledImage(easel.White, 10, 10, 40)
	img.Shadow = layer.Shadow{Enabled: true, Blur: 4, OffsetX: 2, OffsetY: 2}
	img.Border = layer.Border{Enabled: true, Color: easel.White, Width: 3}
	si := scaleForExport(img, 2)
	if si.X != 20 || si.Size != 80 {
		t.Errorf("image geometry = (%v, size %v), want (20, size 80)", si.X, si.Size)
	}
	if si.Border.Width != 3 || si.Shadow.Blur != 4 || si.Shadow.OffsetX != 2 {
		t.Error("image effect texel parameters should not scale with the export")
	}

	txt := layer.NewText("hi", "", 24, 10, 10)
	txt.StrokeWidth = 2
	txt.Shadow = layer.Shadow{Enabled: true, Blur: 4, OffsetX: 2, OffsetY: 2}
	st := scaleForExport(txt, 2)
	if st.FontSize != 48 || st.StrokeWidth != 4 {
		t.Errorf("text metrics = (font %v, stroke %v), want (48, 4)", st.FontSize, st.StrokeWidth)
	}
	if st.Shadow.Blur != 8 || st.Shadow.OffsetX != 4 {
		t.Error("text shadow should scale with the rendered glyphs")
	}
}

// opaqueRun counts the solidly covered pixels along row y.
func opaqueRun(p *easel.Pixmap, y int) int {
	run := 0
	for x := 0; x < p.Width(); x++ {
		if p.AlphaAt(x, y) > 128 {
			run++
		}
	}
	return run
}

func TestExportEmptyCanvas(t *testing.T) {
	if _, err := Export(state.NewCanvas(0, 0), layer.NewFontRegistry(), 0); err == nil {
		t.Error("expected error for empty canvas")
	}
}
