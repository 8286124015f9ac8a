package state

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

// FormatVersion is the serialized project format version. Bump on
// incompatible changes to ProjectState or LayerRecord.
const FormatVersion = 1

// ProjectState is the serializable subset of the canvas: everything
// needed to reconstruct the document except the live bitmaps, which are
// re-fetched by hash and regenerated on restore.
type ProjectState struct {
	Version         int           `json:"version"`
	BackgroundHash  string        `json:"backgroundHash"`
	BgBrightness    float64       `json:"bgBrightness"`
	BgSaturation    float64       `json:"bgSaturation"`
	ProjectRotation int           `json:"projectRotation"`
	BackgroundFlipX bool          `json:"backgroundFlipX"`
	Width           float64       `json:"width"`
	Height          float64       `json:"height"`
	Layers          []LayerRecord `json:"layers"`
}

// LayerRecord is the plain-data projection of a layer. Image layers carry
// a base64 PNG proxy of their working-resolution content so peers and
// reloads can hydrate without the asset store.
type LayerRecord struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Rot   float64 `json:"rot"`
	FlipX bool    `json:"flipX"`

	Opacity    float64 `json:"opacity"`
	Brightness float64 `json:"brightness"`
	Saturation float64 `json:"saturation"`
	Contrast   float64 `json:"contrast"`

	ShadowEnabled bool    `json:"shadowEnabled"`
	ShadowColor   string  `json:"shadowColor,omitempty"`
	ShadowBlur    float64 `json:"shadowBlur,omitempty"`
	ShadowOffsetX float64 `json:"shadowOffsetX,omitempty"`
	ShadowOffsetY float64 `json:"shadowOffsetY,omitempty"`

	BorderEnabled bool    `json:"borderEnabled"`
	BorderColor   string  `json:"borderColor,omitempty"`
	BorderWidth   float64 `json:"borderWidth,omitempty"`

	IsLocked bool `json:"isLocked"`

	PropX    float64 `json:"propX"`
	PropY    float64 `json:"propY"`
	PropSize float64 `json:"propSize"`
	AlignX   string  `json:"alignX,omitempty"`
	AlignY   string  `json:"alignY,omitempty"`

	// Image fields.
	OriginalHash string  `json:"originalHash,omitempty"`
	Size         float64 `json:"size,omitempty"`
	IsOptimized  bool    `json:"isOptimized,omitempty"`
	Proxy        string  `json:"proxy,omitempty"`
	ContentFrame [4]int  `json:"contentFrame,omitempty"`

	// Text fields.
	Text        string  `json:"text,omitempty"`
	Font        string  `json:"font,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	Color       string  `json:"color,omitempty"`
	StrokeColor string  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Snapshot projects the canvas into its serializable form.
func Snapshot(c *Canvas) ProjectState {
	st := ProjectState{
		Version:         FormatVersion,
		BackgroundHash:  c.BackgroundHash,
		BgBrightness:    c.BgBrightness,
		BgSaturation:    c.BgSaturation,
		ProjectRotation: c.ProjectRotation,
		BackgroundFlipX: c.BackgroundFlipX,
		Width:           c.Width,
		Height:          c.Height,
		Layers:          make([]LayerRecord, 0, len(c.Layers)),
	}
	for _, l := range c.Layers {
		st.Layers = append(st.Layers, RecordFromLayer(l))
	}
	return st
}

// RecordFromLayer projects a single layer. Image layers inline their base
// mipmap as a PNG proxy.
func RecordFromLayer(l *layer.Layer) LayerRecord {
	rec := LayerRecord{
		ID:            l.ID,
		Kind:          l.Kind.String(),
		X:             l.X,
		Y:             l.Y,
		Rot:           l.Rot,
		FlipX:         l.FlipX,
		Opacity:       l.Opacity,
		Brightness:    l.Brightness,
		Saturation:    l.Saturation,
		Contrast:      l.Contrast,
		ShadowEnabled: l.Shadow.Enabled,
		ShadowColor:   l.Shadow.Color.Hex(),
		ShadowBlur:    l.Shadow.Blur,
		ShadowOffsetX: l.Shadow.OffsetX,
		ShadowOffsetY: l.Shadow.OffsetY,
		BorderEnabled: l.Border.Enabled,
		BorderColor:   l.Border.Color.Hex(),
		BorderWidth:   l.Border.Width,
		IsLocked:      l.IsLocked,
		PropX:         l.PropX,
		PropY:         l.PropY,
		PropSize:      l.PropSize,
		AlignX:        string(l.AlignX),
		AlignY:        string(l.AlignY),
	}
	switch l.Kind {
	case layer.KindImage:
		rec.OriginalHash = l.OriginalHash
		rec.Size = l.Size
		rec.IsOptimized = l.IsOptimized
		rec.ContentFrame = [4]int{
			l.ContentFrame.Min.X, l.ContentFrame.Min.Y,
			l.ContentFrame.Max.X, l.ContentFrame.Max.Y,
		}
		if l.Mipmaps != nil {
			if proxy, err := EncodePixmapPNG(l.Mipmaps.Base()); err == nil {
				rec.Proxy = proxy
			}
		}
	case layer.KindText:
		rec.Text = l.Text
		rec.Font = l.Font
		rec.FontSize = l.FontSize
		rec.Color = l.Color.Hex()
		rec.StrokeColor = l.StrokeColor.Hex()
		rec.StrokeWidth = l.StrokeWidth
	}
	return rec
}

// LayerFromRecord rebuilds a live layer from its projection. Image layers
// decode the inlined proxy and regenerate their mipmap chain; the layer
// comes back with the restored flag set so the entrance animation is
// suppressed.
func LayerFromRecord(rec LayerRecord) (*layer.Layer, error) {
	var l *layer.Layer
	switch rec.Kind {
	case "text":
		l = layer.NewText(rec.Text, rec.Font, rec.FontSize, rec.X, rec.Y)
		l.Color = easel.Hex(rec.Color)
		l.StrokeColor = easel.Hex(rec.StrokeColor)
		l.StrokeWidth = rec.StrokeWidth
	default:
		if rec.Proxy == "" {
			return nil, fmt.Errorf("layer %s: no proxy image", rec.ID)
		}
		pm, err := DecodePixmapPNG(rec.Proxy)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", rec.ID, err)
		}
		l = layer.NewImage(rec.OriginalHash, pm, rec.X, rec.Y, rec.Size)
		l.IsOptimized = rec.IsOptimized
		l.ContentFrame = image.Rect(
			rec.ContentFrame[0], rec.ContentFrame[1],
			rec.ContentFrame[2], rec.ContentFrame[3],
		)
		if l.ContentFrame.Empty() {
			l.ContentFrame = layer.ComputeContentFrame(l.Mipmaps.Base())
		}
	}

	l.ID = rec.ID
	l.Rot = rec.Rot
	l.FlipX = rec.FlipX
	l.Opacity = rec.Opacity
	l.Brightness = rec.Brightness
	l.Saturation = rec.Saturation
	l.Contrast = rec.Contrast
	l.Shadow = layer.Shadow{
		Enabled: rec.ShadowEnabled,
		Color:   easel.Hex(rec.ShadowColor),
		Blur:    rec.ShadowBlur,
		OffsetX: rec.ShadowOffsetX,
		OffsetY: rec.ShadowOffsetY,
	}
	l.Border = layer.Border{
		Enabled: rec.BorderEnabled,
		Color:   easel.Hex(rec.BorderColor),
		Width:   rec.BorderWidth,
	}
	l.IsLocked = rec.IsLocked
	l.PropX = rec.PropX
	l.PropY = rec.PropY
	l.PropSize = rec.PropSize
	l.AlignX = layer.Align(rec.AlignX)
	l.AlignY = layer.Align(rec.AlignY)
	l.Restored = true
	l.CreatedAt = time.Now()
	return l, nil
}

// RestoreCanvas rebuilds a document from its serialized state. Layers
// that fail to hydrate are skipped with a warning; a bad layer must not
// sink the whole project.
func RestoreCanvas(st ProjectState) *Canvas {
	c := NewCanvas(st.Width, st.Height)
	c.BackgroundHash = st.BackgroundHash
	c.BgBrightness = st.BgBrightness
	c.BgSaturation = st.BgSaturation
	c.ProjectRotation = st.ProjectRotation
	c.BackgroundFlipX = st.BackgroundFlipX
	for _, rec := range st.Layers {
		l, err := LayerFromRecord(rec)
		if err != nil {
			easel.Logger().Warn("skipping unrestorable layer", "layer", rec.ID, "err", err)
			continue
		}
		c.Layers = append(c.Layers, l)
	}
	return c
}

// EncodePixmapPNG encodes a surface as base64 PNG for wire and storage
// inlining.
func EncodePixmapPNG(p *easel.Pixmap) (string, error) {
	var buf bytes.Buffer
	if err := p.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encode proxy: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodePixmapPNG reverses EncodePixmapPNG.
func DecodePixmapPNG(s string) (*easel.Pixmap, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode proxy: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode proxy: %w", err)
	}
	return easel.FromImage(img), nil
}
