// Package layer defines the layer entities of a project: positioned,
// transformable image and text elements with derived render caches.
//
// A layer's effect cache is a pure function of its fields plus its raw
// content. Anything that changes visual output must call Invalidate so
// the next composite rebuilds the cache.
package layer

import (
	"image"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/easelkit/easel"
)

// Kind discriminates the layer tagged union.
type Kind uint8

const (
	KindImage Kind = iota
	KindText
)

// String returns the kind name used in serialized projects.
func (k Kind) String() string {
	if k == KindText {
		return "text"
	}
	return "image"
}

// Shadow holds the drop-shadow effect parameters.
type Shadow struct {
	Enabled bool
	Color   easel.RGBA
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// Border holds the outline effect parameters. Image layers only; text
// layers carry their own stroke fields instead.
type Border struct {
	Enabled bool
	Color   easel.RGBA
	Width   float64
}

// Align labels the informational edge-snap hints recorded at gesture end.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
	AlignTop    Align = "top"
	AlignMiddle Align = "middle"
	AlignBottom Align = "bottom"
)

// EntranceDuration is how long the fade/scale-in entrance animation runs
// after a layer is created. Layers restored from storage skip it.
const EntranceDuration = 400 * time.Millisecond

// Cache holds the fully effect-composited bitmap for a layer, with all
// filters, shadow and border baked in at content resolution. It must
// never be read while Valid is false.
type Cache struct {
	Bitmap *easel.Pixmap
	Valid  bool
}

// Layer is a single compositable element. Shared fields apply to both
// kinds; the image- and text-specific fields are populated according to
// Kind.
type Layer struct {
	ID   string
	Kind Kind

	// World-space center position and transform.
	X, Y  float64
	Rot   float64 // degrees, clockwise, about center
	FlipX bool

	// Filter parameters. Opacity in [0,1]; the others default to 1.
	Opacity    float64
	Brightness float64
	Saturation float64
	Contrast   float64

	Shadow Shadow
	Border Border

	IsLocked  bool
	CreatedAt time.Time
	Restored  bool

	// Proportional re-anchoring fields: position as fractions of canvas
	// width/height, size as a fraction of the geometric mean of the
	// canvas dimensions.
	PropX, PropY, PropSize float64

	// Edge-snap hints, informational only.
	AlignX, AlignY Align

	// Image fields.
	OriginalHash string
	Mipmaps      *Chain
	ContentFrame image.Rectangle // sub-rect of mipmap[0] holding visible pixels
	Size         float64         // rendered width of mipmap[0] in world units
	IsOptimized  bool

	// Text fields.
	Text        string
	Font        string
	FontSize    float64
	Color       easel.RGBA
	StrokeColor easel.RGBA
	StrokeWidth float64
	TextW       float64 // last-measured text block size
	TextH       float64

	version uint64
	cache   Cache
}

// NewImage creates an image layer centered at (x, y) from decoded source
// pixels. The mipmap chain and content frame are derived immediately.
func NewImage(hash string, src *easel.Pixmap, x, y, size float64) *Layer {
	l := newLayer(KindImage, x, y)
	l.OriginalHash = hash
	l.Mipmaps = BuildChain(src)
	l.ContentFrame = ComputeContentFrame(l.Mipmaps.Base())
	l.Size = size
	return l
}

// NewText creates a text layer centered at (x, y). The text is stored
// NFC-normalized; measurement happens lazily against a font registry.
func NewText(text, font string, fontSize, x, y float64) *Layer {
	l := newLayer(KindText, x, y)
	l.SetText(text)
	l.Font = font
	l.FontSize = fontSize
	l.Color = easel.Black
	return l
}

func newLayer(kind Kind, x, y float64) *Layer {
	return &Layer{
		ID:         uuid.NewString(),
		Kind:       kind,
		X:          x,
		Y:          y,
		Opacity:    1,
		Brightness: 1,
		Saturation: 1,
		Contrast:   1,
		CreatedAt:  time.Now(),
	}
}

// Clone returns a value snapshot of the layer for gesture bookkeeping and
// reducer copy-on-write. The effect cache rides along: its bitmap is
// never mutated after a rebuild, and every content or effect edit
// invalidates explicitly, so a position-only copy keeps rendering from
// the existing bitmap. The mipmap chain is shared.
func (l *Layer) Clone() *Layer {
	c := *l
	return &c
}

// Duplicate returns an independent copy with a fresh identity. Raster
// content is deep-copied so later erase strokes cannot affect the
// original.
func (l *Layer) Duplicate() *Layer {
	c := l.Clone()
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.Restored = false
	if l.Mipmaps != nil {
		c.Mipmaps = l.Mipmaps.Clone()
	}
	return c
}

// Invalidate marks the effect cache stale. Call after changing any field
// that affects visual output.
func (l *Layer) Invalidate() {
	l.cache.Valid = false
}

// BumpVersion records a raw-content change (erase stroke, segmentation
// crop, optimization swap) so dependent consumers such as texture caches
// know to re-upload, and invalidates the effect cache.
func (l *Layer) BumpVersion() {
	l.version++
	l.cache.Valid = false
}

// Version returns the content-version counter.
func (l *Layer) Version() uint64 { return l.version }

// CacheValid reports whether the effect cache may be read.
func (l *Layer) CacheValid() bool { return l.cache.Valid }

// CachedBitmap returns the effect cache bitmap. Callers must check
// CacheValid first and rebuild via RebuildCache when stale.
func (l *Layer) CachedBitmap() *easel.Pixmap { return l.cache.Bitmap }

// SetText replaces the text content, normalized to NFC, and invalidates
// the cache and last measurement.
func (l *Layer) SetText(text string) {
	l.Text = normalizeText(text)
	l.TextW, l.TextH = 0, 0
	l.Invalidate()
}

// contentScale is the world-units-per-texel factor for image layers.
func (l *Layer) contentScale() float64 {
	if l.Kind != KindImage || l.Mipmaps == nil {
		return 1
	}
	base := l.Mipmaps.Base()
	if base.Empty() {
		return 1
	}
	return l.Size / float64(base.Width())
}

// Metrics returns the un-rotated display width and height of the layer's
// visible content in world units. For images this tracks the content
// frame, not the loosely-cropped bounding canvas, so transform handles
// and hit testing follow visible pixels.
func (l *Layer) Metrics() (w, h float64) {
	switch l.Kind {
	case KindImage:
		s := l.contentScale()
		return float64(l.ContentFrame.Dx()) * s, float64(l.ContentFrame.Dy()) * s
	default:
		return l.TextW, l.TextH
	}
}

// ContentOffset returns the un-rotated world-space offset of the visible
// content's center from the layer center. Zero for text layers and for
// images whose content frame is centered.
func (l *Layer) ContentOffset() easel.Point {
	if l.Kind != KindImage || l.Mipmaps == nil {
		return easel.Point{}
	}
	base := l.Mipmaps.Base()
	if base.Empty() {
		return easel.Point{}
	}
	s := l.contentScale()
	fx := float64(l.ContentFrame.Min.X+l.ContentFrame.Max.X) / 2
	fy := float64(l.ContentFrame.Min.Y+l.ContentFrame.Max.Y) / 2
	return easel.Point{
		X: (fx - float64(base.Width())/2) * s,
		Y: (fy - float64(base.Height())/2) * s,
	}
}

// Center returns the world-space center of the visible content,
// accounting for rotation and flip of the content-frame offset.
func (l *Layer) Center() easel.Point {
	off := l.ContentOffset()
	if l.FlipX {
		off.X = -off.X
	}
	return off.Rotate(easel.Radians(l.Rot)).Add(easel.Pt(l.X, l.Y))
}

// Bounds returns the world-space axis-aligned bounds of the visible
// content under the layer's rotation.
func (l *Layer) Bounds() easel.Rect {
	w, h := l.Metrics()
	return easel.RotatedBounds(l.Center(), w, h, l.Rot)
}

// EntranceProgress returns the entrance animation progress in [0, 1] at
// the given time. Restored layers are always fully entered.
func (l *Layer) EntranceProgress(now time.Time) float64 {
	if l.Restored {
		return 1
	}
	elapsed := now.Sub(l.CreatedAt)
	if elapsed >= EntranceDuration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(EntranceDuration)
}

// SyncProportions records the layer's position and size as fractions of
// the canvas dimensions. Called at the end of every user-driven gesture;
// these fields are the source of truth when the canvas resolution
// changes.
func (l *Layer) SyncProportions(canvasW, canvasH float64) {
	if canvasW <= 0 || canvasH <= 0 {
		return
	}
	l.PropX = l.X / canvasW
	l.PropY = l.Y / canvasH
	mean := math.Sqrt(canvasW * canvasH)
	if l.Kind == KindImage {
		l.PropSize = l.Size / mean
	} else {
		l.PropSize = l.FontSize / mean
	}
}

// ApplyProportions re-anchors the layer from its proportional fields
// after a canvas resolution change.
func (l *Layer) ApplyProportions(canvasW, canvasH float64) {
	if canvasW <= 0 || canvasH <= 0 {
		return
	}
	l.X = l.PropX * canvasW
	l.Y = l.PropY * canvasH
	mean := math.Sqrt(canvasW * canvasH)
	if l.Kind == KindImage {
		l.Size = l.PropSize * mean
	} else {
		l.FontSize = l.PropSize * mean
		l.TextW, l.TextH = 0, 0
	}
	l.Invalidate()
}
