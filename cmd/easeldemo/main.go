// Command easeldemo builds a small project with the compositing
// pipeline and exports it as a PNG: gradient background, one image
// layer with effects and an erase stroke, one text layer.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/brush"
	"github.com/easelkit/easel/compose"
	"github.com/easelkit/easel/layer"
	"github.com/easelkit/easel/state"
)

func main() {
	var (
		width  = flag.Float64("width", 1280, "canvas width")
		height = flag.Float64("height", 960, "canvas height")
		output = flag.String("output", "easel.png", "output file")
	)
	flag.Parse()

	d := state.NewDispatcher(state.NewCanvas(*width, *height))
	fonts := layer.NewFontRegistry()

	bg := gradientBackground(int(*width), int(*height))
	must(d.Dispatch(state.SetBackground{
		Hash:       "demo-bg",
		Background: bg,
		Width:      *width,
		Height:     *height,
	}))

	sticker := stickerArt(400)
	img := layer.NewImage("demo-sticker", sticker, *width/2, *height/2, 500)
	img.Rot = 12
	img.Shadow = layer.Shadow{
		Enabled: true,
		Color:   easel.NewRGBA(0, 0, 0, 0.5),
		Blur:    14,
		OffsetX: 8,
		OffsetY: 10,
	}
	img.Border = layer.Border{Enabled: true, Color: easel.White, Width: 8}
	must(d.Dispatch(state.AddLayer{Layer: img}))

	eraseStroke(d, img)

	txt := layer.NewText("easel demo", "", 96, *width/2, *height*0.82)
	txt.Color = easel.White
	txt.StrokeColor = easel.NewRGBA(0.1, 0.1, 0.2, 1)
	txt.StrokeWidth = 3
	must(d.Dispatch(state.AddLayer{Layer: txt}))

	out, err := compose.Export(d.Canvas(), fonts, compose.MaxExportEdge)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	defer f.Close()
	if err := out.EncodePNG(f); err != nil {
		log.Fatalf("encode: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d)", *output, out.Width(), out.Height())
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// gradientBackground fills a vertical blue gradient.
func gradientBackground(w, h int) *easel.Pixmap {
	p := easel.NewPixmap(w, h)
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h)
		c := easel.RGB(0.1+t*0.4, 0.2+t*0.3, 0.4+t*0.2)
		for x := 0; x < w; x++ {
			p.SetPixel(x, y, c)
		}
	}
	return p
}

// stickerArt draws a filled circle with a transparent margin, enough
// structure for the shadow, border and eraser to be visible.
func stickerArt(dim int) *easel.Pixmap {
	p := easel.NewPixmap(dim, dim)
	cx, cy := float64(dim)/2, float64(dim)/2
	r := float64(dim) * 0.42
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			d := easel.Pt(float64(x)-cx, float64(y)-cy).Length()
			if d <= r {
				t := d / r
				p.SetPixel(x, y, easel.RGB(1-0.4*t, 0.4+0.3*t, 0.3))
			}
		}
	}
	return p
}

// eraseStroke runs a short diagonal erase across the sticker.
func eraseStroke(d *state.Dispatcher, l *layer.Layer) {
	stroke, err := brush.BeginStroke(l, nil, brush.Params{Radius: 24, Strength: 0.8, Erase: true})
	if err != nil {
		log.Fatalf("stroke: %v", err)
	}
	for i := 0; i <= 10; i++ {
		t := float64(i) / 10
		stroke.Move(easel.Pt(
			l.X-180+360*t,
			l.Y-120+240*t,
		))
	}
	stroke.End()
	must(d.Dispatch(state.ContentEdited{ID: l.ID}))
}
