package interact

import (
	"math"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/brush"
	"github.com/easelkit/easel/compose"
	"github.com/easelkit/easel/layer"
	"github.com/easelkit/easel/state"
)

// GestureState names the pointer session's current phase.
type GestureState uint8

const (
	Idle GestureState = iota
	Dragging
	Resizing
	Rotating
	Erasing
	Panning
)

// String returns the state name.
func (s GestureState) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Rotating:
		return "rotating"
	case Erasing:
		return "erasing"
	case Panning:
		return "panning"
	default:
		return "idle"
	}
}

// Button identifies the pressed pointer button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonMiddle
)

// PristineFunc supplies the original asset pixels for un-erase strokes.
// Returning nil degrades un-erase to a no-op for that layer.
type PristineFunc func(*layer.Layer) *easel.Pixmap

// Session runs the pointer gesture state machine over a dispatcher. All
// methods must be called from the interactive thread; gesture moves
// dispatch preview actions, pointer-up dispatches the finalizing action
// that lands in undo history.
type Session struct {
	disp  *state.Dispatcher
	view  *View
	fonts *layer.FontRegistry

	opacity  *OpacityIndex
	pristine PristineFunc

	// Eraser tool arming. When armed, presses on the active image layer
	// start erase strokes instead of transform gestures.
	EraserArmed  bool
	EraserParams brush.Params

	state       GestureState
	downDevice  easel.Point
	dragStarted bool

	snapshot    *layer.Layer // pre-gesture value snapshot
	grabOffset  easel.Point  // pointer-to-position offset while dragging
	handle      easel.Handle
	anchor      easel.Point // fixed opposite corner during resize
	startHandle easel.Point
	startAngle  float64 // pointer angle at rotate start, radians

	stroke  *brush.Stroke
	scrub   *compose.ScrubCaches
	lastPan easel.Point // previous device point while panning
}

// NewSession creates a session over the dispatcher and view. pristine
// may be nil when un-erase is not offered.
func NewSession(d *state.Dispatcher, v *View, fonts *layer.FontRegistry, pristine PristineFunc) *Session {
	return &Session{
		disp:     d,
		view:     v,
		fonts:    fonts,
		opacity:  NewOpacityIndex(),
		pristine: pristine,
	}
}

// State returns the current gesture phase.
func (s *Session) State() GestureState { return s.state }

// Scrub returns the static composites for the active gesture, or nil
// when no gesture has crossed the drag threshold. Renderers use it for
// the fast redraw path.
func (s *Session) Scrub() *compose.ScrubCaches { return s.scrub }

// Active reports whether a gesture or view animation needs per-frame
// redraws.
func (s *Session) Active() bool {
	return s.state != Idle || s.view.Animating()
}

// PointerDown begins a gesture. Device coordinates are display pixels.
func (s *Session) PointerDown(device easel.Point, button Button) {
	if s.state != Idle {
		return
	}
	s.downDevice = device
	s.dragStarted = false
	world := s.view.DeviceToWorld(device)

	if button == ButtonMiddle {
		s.state = Panning
		s.lastPan = device
		return
	}

	c := s.disp.Canvas()
	if s.EraserArmed {
		s.beginErase(c.Active(), world)
		return
	}

	if active := c.Active(); active != nil && !active.IsLocked {
		if h := HandleAt(s.view.Viewport, active, world); h != easel.HandleNone {
			s.beginHandleGesture(active, h, world)
			return
		}
	}

	hit := s.opacity.HitTest(c.Layers, world)
	if hit == nil {
		if c.ActiveID != "" {
			_ = s.disp.Dispatch(state.SelectLayer{})
		}
		return
	}
	if hit.ID != c.ActiveID {
		_ = s.disp.Dispatch(state.SelectLayer{ID: hit.ID})
	}
	if hit.IsLocked {
		return
	}
	s.state = Dragging
	s.snapshot = hit.Clone()
	s.grabOffset = world.Sub(easel.Pt(hit.X, hit.Y))
}

func (s *Session) beginErase(l *layer.Layer, world easel.Point) {
	if l == nil || l.Kind != layer.KindImage || l.IsLocked || !l.Bounds().Contains(world) {
		return
	}
	var pristine *easel.Pixmap
	if s.pristine != nil {
		pristine = s.pristine(l)
	}
	stroke, err := brush.BeginStroke(l, pristine, s.EraserParams)
	if err != nil {
		easel.Logger().Warn("erase stroke rejected", "layer", l.ID, "err", err)
		return
	}
	s.state = Erasing
	s.stroke = stroke
	stroke.Move(world)
}

func (s *Session) beginHandleGesture(l *layer.Layer, h easel.Handle, world easel.Point) {
	s.snapshot = l.Clone()
	s.handle = h
	if h == easel.HandleRotate {
		s.state = Rotating
		d := world.Sub(l.Center())
		s.startAngle = math.Atan2(d.Y, d.X)
		return
	}
	s.state = Resizing
	w, hh := l.Metrics()
	corners := easel.CornerHandles(l.Center(), w, hh, l.Rot)
	s.startHandle = corners[h-easel.HandleTopLeft]
	s.anchor = corners[h.Opposite()-easel.HandleTopLeft]
}

// PointerMove advances the active gesture. Transform gestures dispatch
// preview actions once the drag threshold is crossed.
func (s *Session) PointerMove(device easel.Point) {
	world := s.view.DeviceToWorld(device)

	switch s.state {
	case Panning:
		delta := device.Sub(s.lastPan).Mul(s.view.DPR)
		s.lastPan = device
		s.view.PanBy(delta)

	case Erasing:
		s.stroke.Move(world)

	case Dragging, Resizing, Rotating:
		if !s.dragStarted {
			if device.Distance(s.downDevice) <= DragThreshold {
				return
			}
			s.dragStarted = true
			s.buildScrub()
		}
		switch s.state {
		case Dragging:
			s.moveDrag(world)
		case Resizing:
			s.moveResize(world)
		case Rotating:
			s.moveRotate(world)
		}
	}
}

// buildScrub renders the static composites once per gesture so every
// move redraw only recomposites the active layer.
func (s *Session) buildScrub() {
	c := s.disp.Canvas()
	w, h := c.Dims()
	s.scrub = compose.BuildScrubCaches(int(w), int(h), c.Layers, s.snapshot.ID, s.fonts, compose.Options{})
}

func (s *Session) moveDrag(world easel.Point) {
	pos := world.Sub(s.grabOffset)
	s.previewTransform(state.LayerTransformed{
		ID: s.snapshot.ID,
		X:  &pos.X,
		Y:  &pos.Y,
	})
}

// moveResize derives the scale factor by projecting the pointer onto the
// initial anchor-to-handle vector, then scales the pre-gesture position
// and size about the anchor so the opposite corner stays fixed.
func (s *Session) moveResize(world easel.Point) {
	axis := s.startHandle.Sub(s.anchor)
	den := axis.Dot(axis)
	if den == 0 {
		return
	}
	f := world.Sub(s.anchor).Dot(axis) / den
	if f < 0.05 {
		f = 0.05
	}
	pos := s.anchor.Add(easel.Pt(s.snapshot.X, s.snapshot.Y).Sub(s.anchor).Mul(f))

	a := state.LayerTransformed{ID: s.snapshot.ID, X: &pos.X, Y: &pos.Y}
	if s.snapshot.Kind == layer.KindImage {
		size := s.snapshot.Size * f
		a.Size = &size
	} else {
		fontSize := s.snapshot.FontSize * f
		a.FontSize = &fontSize
	}
	s.previewTransform(a)
}

func (s *Session) moveRotate(world easel.Point) {
	d := world.Sub(s.snapshot.Center())
	angle := math.Atan2(d.Y, d.X)
	rot := math.Mod(s.snapshot.Rot+easel.Degrees(angle-s.startAngle), 360)
	if rot < 0 {
		rot += 360
	}
	s.previewTransform(state.LayerTransformed{ID: s.snapshot.ID, Rot: &rot})
}

func (s *Session) previewTransform(a state.LayerTransformed) {
	a.Preview = true
	if err := s.disp.Dispatch(a); err != nil {
		easel.Logger().Warn("gesture preview rejected", "layer", a.ID, "err", err)
	}
}

// PointerUp finalizes the gesture and returns to idle. Transform
// gestures that crossed the drag threshold persist proportional fields
// and edge-alignment hints; plain clicks resolve as selection.
func (s *Session) PointerUp(device easel.Point) {
	world := s.view.DeviceToWorld(device)

	switch s.state {
	case Panning:
		// Target pan is already clamped; nothing to finalize.

	case Erasing:
		s.stroke.End()
		_ = s.disp.Dispatch(state.ContentEdited{ID: s.stroke.Layer().ID})
		s.stroke = nil

	case Dragging, Resizing, Rotating:
		if !s.dragStarted {
			s.clickSelect(world)
			break
		}
		c := s.disp.Canvas()
		if l, _ := c.Find(s.snapshot.ID); l != nil {
			ax, ay := alignmentHints(l, c)
			_ = s.disp.Dispatch(state.FinalizeGesture{ID: l.ID, AlignX: ax, AlignY: ay})
		}
	}

	s.state = Idle
	s.snapshot = nil
	s.scrub = nil
	s.handle = easel.HandleNone
}

func (s *Session) clickSelect(world easel.Point) {
	c := s.disp.Canvas()
	hit := s.opacity.HitTest(c.Layers, world)
	id := ""
	if hit != nil {
		id = hit.ID
	}
	if id != c.ActiveID {
		_ = s.disp.Dispatch(state.SelectLayer{ID: id})
	}
}

// alignmentHints infers which canvas edges the layer's rotated bounds
// sit against, within AlignMargin. Informational only; the geometry is
// not snapped.
func alignmentHints(l *layer.Layer, c *state.Canvas) (layer.Align, layer.Align) {
	w, h := c.Dims()
	b := l.Bounds()
	center := l.Center()

	var ax, ay layer.Align
	switch {
	case b.MinX <= AlignMargin:
		ax = layer.AlignLeft
	case b.MaxX >= w-AlignMargin:
		ax = layer.AlignRight
	case math.Abs(center.X-w/2) <= AlignMargin:
		ax = layer.AlignCenter
	}
	switch {
	case b.MinY <= AlignMargin:
		ay = layer.AlignTop
	case b.MaxY >= h-AlignMargin:
		ay = layer.AlignBottom
	case math.Abs(center.Y-h/2) <= AlignMargin:
		ay = layer.AlignMiddle
	}
	return ax, ay
}
