// Package state holds the canvas document, the action protocol and the
// pure reducer every mutation flows through.
//
// There is exactly one Canvas per open project. All structural changes
// (local gestures, remote collaboration actions, worker completions)
// enter through Reduce, so the document never shows partially applied
// state. The two sanctioned exceptions are raster pixel edits (eraser,
// segmentation) and cache rebuilds, which touch a single layer's private
// surfaces and report back via actions.
package state

import (
	"errors"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

// Package errors.
var (
	ErrLayerNotFound = errors.New("state: layer not found")
	ErrLayerLocked   = errors.New("state: layer is locked")
	ErrUnknownAction = errors.New("state: unknown action")
)

// Canvas is the document: a background plus an ordered layer stack.
// Layers[0] is topmost. ActiveID is a weak reference: the layer it names
// may have been deleted, and readers must tolerate that.
type Canvas struct {
	Width  float64
	Height float64

	BackgroundHash  string
	Background      *easel.Pixmap // live bitmap, not serialized
	BgBrightness    float64
	BgSaturation    float64
	ProjectRotation int // 0, 90, 180, 270
	BackgroundFlipX bool

	Layers   []*layer.Layer
	ActiveID string
}

// NewCanvas creates an empty project at the given resolution.
func NewCanvas(w, h float64) *Canvas {
	return &Canvas{
		Width:        w,
		Height:       h,
		BgBrightness: 1,
		BgSaturation: 1,
	}
}

// Dims returns the displayed canvas dimensions, swapping width and height
// when the project rotation is 90 or 270.
func (c *Canvas) Dims() (w, h float64) {
	if c.ProjectRotation == 90 || c.ProjectRotation == 270 {
		return c.Height, c.Width
	}
	return c.Width, c.Height
}

// Find returns the layer with the given id and its index, or nil and -1.
func (c *Canvas) Find(id string) (*layer.Layer, int) {
	for i, l := range c.Layers {
		if l.ID == id {
			return l, i
		}
	}
	return nil, -1
}

// Active resolves the active-layer reference. Returns nil when nothing is
// selected or the referenced layer no longer exists.
func (c *Canvas) Active() *layer.Layer {
	if c.ActiveID == "" {
		return nil
	}
	l, _ := c.Find(c.ActiveID)
	return l
}

// Clone returns a snapshot of the canvas with cloned layer values. Raster
// content is shared; snapshots exist for undo history and reducer
// copy-on-write, neither of which mutates pixels.
func (c *Canvas) Clone() *Canvas {
	out := *c
	out.Layers = make([]*layer.Layer, len(c.Layers))
	for i, l := range c.Layers {
		out.Layers[i] = l.Clone()
	}
	return &out
}
