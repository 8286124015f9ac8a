package state

import (
	"errors"
	"fmt"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

// ErrWrongKind is returned when a text action targets an image layer or
// vice versa.
var ErrWrongKind = errors.New("state: wrong layer kind")

// Reduce applies an action to a canvas and returns the resulting canvas.
// The input canvas is never mutated; layers touched by the action are
// cloned first, untouched layers are shared structurally.
//
// Reduce is pure and synchronous. Callers (the dispatcher) guarantee that
// no two reductions interleave.
func Reduce(c *Canvas, a Action) (*Canvas, error) {
	next := *c
	next.Layers = append([]*layer.Layer(nil), c.Layers...)

	switch act := a.(type) {
	case AddLayer:
		if act.Layer == nil {
			return nil, fmt.Errorf("add layer: %w", ErrLayerNotFound)
		}
		idx := clamp(act.Index, 0, len(next.Layers))
		l := act.Layer
		w, h := next.Dims()
		l.SyncProportions(w, h)
		next.Layers = append(next.Layers[:idx], append([]*layer.Layer{l}, next.Layers[idx:]...)...)
		next.ActiveID = l.ID

	case DeleteLayer:
		_, idx := next.Find(act.ID)
		if idx < 0 {
			return nil, fmt.Errorf("delete %s: %w", act.ID, ErrLayerNotFound)
		}
		next.Layers = append(next.Layers[:idx], next.Layers[idx+1:]...)
		if next.ActiveID == act.ID {
			next.ActiveID = ""
		}

	case DuplicateLayer:
		src, idx := next.Find(act.ID)
		if idx < 0 {
			return nil, fmt.Errorf("duplicate %s: %w", act.ID, ErrLayerNotFound)
		}
		dup := src.Duplicate()
		dup.X += 20
		dup.Y += 20
		w, h := next.Dims()
		dup.SyncProportions(w, h)
		next.Layers = append(next.Layers[:idx], append([]*layer.Layer{dup}, next.Layers[idx:]...)...)
		next.ActiveID = dup.ID

	case SelectLayer:
		if act.ID != "" {
			if _, idx := next.Find(act.ID); idx < 0 {
				return nil, fmt.Errorf("select %s: %w", act.ID, ErrLayerNotFound)
			}
		}
		next.ActiveID = act.ID

	case LayerTransformed:
		l, err := next.cloneLayer(act.ID, true)
		if err != nil {
			return nil, err
		}
		if act.X != nil {
			l.X = *act.X
		}
		if act.Y != nil {
			l.Y = *act.Y
		}
		if act.Rot != nil {
			l.Rot = *act.Rot
		}
		if act.FlipX != nil {
			l.FlipX = *act.FlipX
		}
		if act.Size != nil {
			if l.Kind != layer.KindImage {
				return nil, fmt.Errorf("transform %s: %w", act.ID, ErrWrongKind)
			}
			l.Size = *act.Size
		}
		if act.FontSize != nil {
			if l.Kind != layer.KindText {
				return nil, fmt.Errorf("transform %s: %w", act.ID, ErrWrongKind)
			}
			l.FontSize = *act.FontSize
			l.TextW, l.TextH = 0, 0
			// Position and size do not touch the cache bitmap; font size
			// changes the rendered content itself.
			l.Invalidate()
		}

	case FinalizeGesture:
		l, err := next.cloneLayer(act.ID, false)
		if err != nil {
			return nil, err
		}
		w, h := next.Dims()
		l.SyncProportions(w, h)
		l.AlignX = act.AlignX
		l.AlignY = act.AlignY

	case SetLayerEffects:
		l, err := next.cloneLayer(act.ID, false)
		if err != nil {
			return nil, err
		}
		if act.Opacity != nil {
			l.Opacity = clampF(*act.Opacity, 0, 1)
		}
		if act.Brightness != nil {
			l.Brightness = *act.Brightness
		}
		if act.Saturation != nil {
			l.Saturation = *act.Saturation
		}
		if act.Contrast != nil {
			l.Contrast = *act.Contrast
		}
		if act.Shadow != nil {
			l.Shadow = *act.Shadow
		}
		if act.Border != nil && l.Kind == layer.KindImage {
			l.Border = *act.Border
		}
		l.Invalidate()

	case SetLayerLocked:
		l, err := next.cloneLayer(act.ID, false)
		if err != nil {
			return nil, err
		}
		l.IsLocked = act.Locked

	case ReorderLayer:
		l, idx := next.Find(act.ID)
		if idx < 0 {
			return nil, fmt.Errorf("reorder %s: %w", act.ID, ErrLayerNotFound)
		}
		to := clamp(idx+act.Delta, 0, len(next.Layers)-1)
		next.Layers = append(next.Layers[:idx], next.Layers[idx+1:]...)
		next.Layers = append(next.Layers[:to], append([]*layer.Layer{l}, next.Layers[to:]...)...)

	case SetText:
		l, err := next.cloneLayer(act.ID, true)
		if err != nil {
			return nil, err
		}
		if l.Kind != layer.KindText {
			return nil, fmt.Errorf("set text %s: %w", act.ID, ErrWrongKind)
		}
		l.SetText(act.Text)

	case SetTextStyle:
		l, err := next.cloneLayer(act.ID, false)
		if err != nil {
			return nil, err
		}
		if l.Kind != layer.KindText {
			return nil, fmt.Errorf("text style %s: %w", act.ID, ErrWrongKind)
		}
		if act.Font != nil {
			l.Font = *act.Font
		}
		if act.FontSize != nil {
			l.FontSize = *act.FontSize
		}
		if act.Color != nil {
			l.Color = *act.Color
		}
		if act.StrokeColor != nil {
			l.StrokeColor = *act.StrokeColor
		}
		if act.StrokeWidth != nil {
			l.StrokeWidth = *act.StrokeWidth
		}
		l.TextW, l.TextH = 0, 0
		l.Invalidate()

	case ReplaceLayerContent:
		l, err := next.cloneLayer(act.ID, true)
		if err != nil {
			return nil, err
		}
		if l.Kind != layer.KindImage {
			return nil, fmt.Errorf("replace content %s: %w", act.ID, ErrWrongKind)
		}
		l.Mipmaps = act.Mipmaps
		l.ContentFrame = act.ContentFrame
		l.X = act.X
		l.Y = act.Y
		l.Size = act.Size
		if act.MarkOptimized {
			l.IsOptimized = true
		}
		w, h := next.Dims()
		l.SyncProportions(w, h)
		l.BumpVersion()

	case ContentEdited:
		l, err := next.cloneLayer(act.ID, false)
		if err != nil {
			return nil, err
		}
		l.BumpVersion()

	case SetBackground:
		next.BackgroundHash = act.Hash
		next.Background = act.Background
		if act.Width > 0 && act.Height > 0 {
			resized := act.Width != next.Width || act.Height != next.Height
			next.Width = act.Width
			next.Height = act.Height
			if resized {
				next.reanchorLayers()
			}
		}

	case SetBackgroundAdjust:
		if act.Brightness != nil {
			next.BgBrightness = *act.Brightness
		}
		if act.Saturation != nil {
			next.BgSaturation = *act.Saturation
		}

	case RotateProject:
		next.ProjectRotation = (next.ProjectRotation + 90) % 360
		next.reanchorLayers()

	case FlipBackground:
		next.BackgroundFlipX = !next.BackgroundFlipX

	case ClearProject:
		return NewCanvas(next.Width, next.Height), nil

	case RestoreProject:
		if act.Canvas == nil {
			return nil, fmt.Errorf("restore: %w", ErrUnknownAction)
		}
		return act.Canvas.Clone(), nil

	default:
		return nil, fmt.Errorf("%T: %w", a, ErrUnknownAction)
	}

	return &next, nil
}

// cloneLayer swaps the identified layer for a clone in the copied slice
// and returns it. With rejectLocked set, locked layers refuse the edit.
func (c *Canvas) cloneLayer(id string, rejectLocked bool) (*layer.Layer, error) {
	l, idx := c.Find(id)
	if idx < 0 {
		return nil, fmt.Errorf("layer %s: %w", id, ErrLayerNotFound)
	}
	if rejectLocked && l.IsLocked {
		return nil, fmt.Errorf("layer %s: %w", id, ErrLayerLocked)
	}
	cp := l.Clone()
	c.Layers[idx] = cp
	return cp, nil
}

// reanchorLayers re-lays-out every layer from its proportional fields and
// shifts any layer whose rotated bounds left the canvas entirely back to
// the nearest edge.
func (c *Canvas) reanchorLayers() {
	w, h := c.Dims()
	canvasRect := easel.Rect{MaxX: w, MaxY: h}
	for i, l := range c.Layers {
		cp := l.Clone()
		cp.ApplyProportions(w, h)
		if cp.Bounds().Intersect(canvasRect).Empty() {
			cp.X = clampF(cp.X, 0, w)
			cp.Y = clampF(cp.Y, 0, h)
			cp.SyncProportions(w, h)
		}
		c.Layers[i] = cp
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
