package layer

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/easelkit/easel"
)

// normalizeText brings text input to NFC so visually identical strings
// measure and compare identically regardless of input method.
func normalizeText(s string) string {
	return norm.NFC.String(s)
}

// FontRegistry maps face identifiers to parsed fonts. Unknown faces fall
// back to a builtin bitmap face so text layers always render something.
//
// A registry is safe for concurrent use; font parsing happens once at
// registration.
type FontRegistry struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
}

// NewFontRegistry creates an empty registry.
func NewFontRegistry() *FontRegistry {
	return &FontRegistry{fonts: make(map[string]*opentype.Font)}
}

// Register parses TTF/OTF bytes and stores them under name.
func (r *FontRegistry) Register(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", name, err)
	}
	r.mu.Lock()
	r.fonts[name] = f
	r.mu.Unlock()
	return nil
}

// Face returns a sized face for the named font. The size is in world
// pixels (rendered at 72 DPI so points equal pixels). Unregistered names
// return the builtin fallback face.
func (r *FontRegistry) Face(name string, size float64) font.Face {
	r.mu.RLock()
	f := r.fonts[name]
	r.mu.RUnlock()
	if f == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		easel.Logger().Warn("font face creation failed", "font", name, "err", err)
		return basicfont.Face7x13
	}
	return face
}

// TextMetrics describes a measured multi-line text block.
type TextMetrics struct {
	LineWidths  []float64
	LineHeight  float64
	Ascent      float64
	MaxWidth    float64
	TotalHeight float64
}

// MeasureText measures a multi-line string against a face. Empty input
// yields zero metrics.
func MeasureText(face font.Face, text string) TextMetrics {
	if text == "" {
		return TextMetrics{}
	}
	fm := face.Metrics()
	ascent := fixedToFloat(fm.Ascent)
	lineHeight := fixedToFloat(fm.Height)
	if lineHeight == 0 {
		lineHeight = ascent + fixedToFloat(fm.Descent)
	}

	lines := strings.Split(text, "\n")
	m := TextMetrics{
		LineWidths: make([]float64, len(lines)),
		LineHeight: lineHeight,
		Ascent:     ascent,
	}
	for i, line := range lines {
		w := fixedToFloat(font.MeasureString(face, line))
		m.LineWidths[i] = w
		if w > m.MaxWidth {
			m.MaxWidth = w
		}
	}
	m.TotalHeight = lineHeight * float64(len(lines))
	return m
}

// Measure refreshes the layer's cached text block size against the
// registry. No-op for image layers.
func (l *Layer) Measure(fonts *FontRegistry) {
	if l.Kind != KindText {
		return
	}
	face := fonts.Face(l.Font, l.FontSize)
	m := MeasureText(face, l.Text)
	l.TextW = m.MaxWidth + 2*l.StrokeWidth
	l.TextH = m.TotalHeight + 2*l.StrokeWidth
}

// renderText rasterizes the layer's text block at content resolution,
// lines centered horizontally, with an optional stroke drawn as offset
// stamps under the fill.
func renderText(l *Layer, fonts *FontRegistry) *easel.Pixmap {
	face := fonts.Face(l.Font, l.FontSize)
	m := MeasureText(face, l.Text)
	if m.MaxWidth <= 0 || m.TotalHeight <= 0 {
		return easel.NewPixmap(0, 0)
	}

	pad := l.StrokeWidth
	w := int(m.MaxWidth + 2*pad + 0.5)
	h := int(m.TotalHeight + 2*pad + 0.5)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	lines := strings.Split(l.Text, "\n")
	drawPass := func(c easel.RGBA, ox, oy float64) {
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c.Color()),
			Face: face,
		}
		for i, line := range lines {
			x := pad + (m.MaxWidth-m.LineWidths[i])/2 + ox
			y := pad + m.Ascent + float64(i)*m.LineHeight + oy
			d.Dot = fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)}
			d.DrawString(line)
		}
	}

	if l.StrokeWidth > 0 && l.StrokeColor.A > 0 {
		sw := l.StrokeWidth
		offsets := [8][2]float64{
			{-sw, 0}, {sw, 0}, {0, -sw}, {0, sw},
			{-sw, -sw}, {sw, -sw}, {-sw, sw}, {sw, sw},
		}
		for _, o := range offsets {
			drawPass(l.StrokeColor, o[0], o[1])
		}
	}
	drawPass(l.Color, 0, 0)

	return easel.FromImage(img)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v*64 + 0.5)
}
