package state

import (
	"image"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

// Action is the tagged union of every document mutation. The reducer
// switches exhaustively over the concrete types; collaboration replays
// remote actions through the same types.
type Action interface {
	isAction()
}

// AddLayer inserts a layer at the given z-index (0 = topmost) and makes
// it active.
type AddLayer struct {
	Layer *layer.Layer
	Index int
}

// DeleteLayer removes a layer. Deleting the active layer clears the
// selection.
type DeleteLayer struct {
	ID string
}

// DuplicateLayer deep-copies a layer, offsets it slightly and selects the
// copy.
type DuplicateLayer struct {
	ID string
}

// SelectLayer changes the active-layer reference. An empty ID deselects.
// Selection is allowed on locked layers.
type SelectLayer struct {
	ID string
}

// LayerTransformed carries an incremental transform update from a
// gesture. Nil fields are untouched. Preview updates re-render but are
// not recorded in undo history; the gesture-end action is.
type LayerTransformed struct {
	ID       string
	X        *float64
	Y        *float64
	Rot      *float64
	FlipX    *bool
	Size     *float64 // image layers
	FontSize *float64 // text layers
	Preview  bool
}

// FinalizeGesture ends a transform gesture: re-syncs the proportional
// fields and records the inferred edge-alignment hints.
type FinalizeGesture struct {
	ID     string
	AlignX layer.Align
	AlignY layer.Align
}

// SetLayerEffects updates the filter/shadow/border fields. Nil fields are
// untouched.
type SetLayerEffects struct {
	ID         string
	Opacity    *float64
	Brightness *float64
	Saturation *float64
	Contrast   *float64
	Shadow     *layer.Shadow
	Border     *layer.Border
}

// SetLayerLocked toggles the lock flag.
type SetLayerLocked struct {
	ID     string
	Locked bool
}

// ReorderLayer moves a layer by delta in the z-order (negative = toward
// the top). The move clamps at the ends of the stack.
type ReorderLayer struct {
	ID    string
	Delta int
}

// SetText replaces a text layer's content.
type SetText struct {
	ID   string
	Text string
}

// SetTextStyle updates text styling fields. Nil fields are untouched.
type SetTextStyle struct {
	ID          string
	Font        *string
	FontSize    *float64
	Color       *easel.RGBA
	StrokeColor *easel.RGBA
	StrokeWidth *float64
}

// ReplaceLayerContent swaps an image layer's raster content and geometry
// in one atomic step. Dispatched by the segmentation path and by
// optimization-swap completions.
type ReplaceLayerContent struct {
	ID            string
	Mipmaps       *layer.Chain
	ContentFrame  image.Rectangle
	X, Y          float64
	Size          float64
	MarkOptimized bool
}

// ContentEdited notifies the reducer that a layer's raster content was
// mutated in place (eraser strokes). The pixels changed outside the
// reducer; this bumps the version and invalidates caches.
type ContentEdited struct {
	ID string
}

// SetBackground replaces the background image and, when the resolution
// changes, re-anchors every layer from its proportional fields.
type SetBackground struct {
	Hash       string
	Background *easel.Pixmap
	Width      float64
	Height     float64
}

// SetBackgroundAdjust updates the background filter values. Nil fields
// are untouched.
type SetBackgroundAdjust struct {
	Brightness *float64
	Saturation *float64
}

// RotateProject advances the project rotation by 90° clockwise, cycling
// 0→90→180→270→0.
type RotateProject struct{}

// FlipBackground toggles the horizontal background mirror.
type FlipBackground struct{}

// ClearProject resets to a safe empty document, dropping all layers and
// the background.
type ClearProject struct{}

// RestoreProject replaces the whole document, used by project load and by
// undo/redo.
type RestoreProject struct {
	Canvas *Canvas
}

func (AddLayer) isAction()            {}
func (DeleteLayer) isAction()         {}
func (DuplicateLayer) isAction()      {}
func (SelectLayer) isAction()         {}
func (LayerTransformed) isAction()    {}
func (FinalizeGesture) isAction()     {}
func (SetLayerEffects) isAction()     {}
func (SetLayerLocked) isAction()      {}
func (ReorderLayer) isAction()        {}
func (SetText) isAction()             {}
func (SetTextStyle) isAction()        {}
func (ReplaceLayerContent) isAction() {}
func (ContentEdited) isAction()       {}
func (SetBackground) isAction()       {}
func (SetBackgroundAdjust) isAction() {}
func (RotateProject) isAction()       {}
func (FlipBackground) isAction()      {}
func (ClearProject) isAction()        {}
func (RestoreProject) isAction()      {}

// transient reports whether an action should bypass undo history.
// Preview transform updates land every pointer move and selection is not
// a document edit.
func transient(a Action) bool {
	switch v := a.(type) {
	case SelectLayer:
		return true
	case LayerTransformed:
		return v.Preview
	case RestoreProject:
		return true
	default:
		return false
	}
}
