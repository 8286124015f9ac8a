package easel

import "math"

// Screen-space interaction distances, in display pixels. Divide by the
// viewport's EffectiveScale to convert to world units.
const (
	// RotateHandleOffset is how far the rotate handle sits above the top
	// edge of a layer's box, perpendicular to that edge.
	RotateHandleOffset = 28.0

	// HandleHitRadius is the pointer hit radius for transform handles.
	HandleHitRadius = 12.0
)

// Radians converts clockwise degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to clockwise degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// RotatedBounds returns the axis-aligned bounding box of a w×h box
// centered at center and rotated by rotDeg degrees. Used for edge-snap
// alignment hints and for shifting layers back in range after the canvas
// resolution changes.
func RotatedBounds(center Point, w, h, rotDeg float64) Rect {
	rad := Radians(rotDeg)
	hw, hh := w/2, h/2
	corners := [4]Point{
		{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := c.Rotate(rad).Add(center)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// Handle identifies one of the interactive transform handles on the
// active layer's box.
type Handle uint8

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomRight
	HandleBottomLeft
	HandleRotate
)

// String returns a short name for the handle.
func (h Handle) String() string {
	switch h {
	case HandleTopLeft:
		return "top-left"
	case HandleTopRight:
		return "top-right"
	case HandleBottomRight:
		return "bottom-right"
	case HandleBottomLeft:
		return "bottom-left"
	case HandleRotate:
		return "rotate"
	default:
		return "none"
	}
}

// Corner reports whether h is one of the four corner handles.
func (h Handle) Corner() bool {
	return h >= HandleTopLeft && h <= HandleBottomLeft
}

// Opposite returns the diagonally opposite corner handle. Resize gestures
// anchor on this corner. Non-corner handles return HandleNone.
func (h Handle) Opposite() Handle {
	switch h {
	case HandleTopLeft:
		return HandleBottomRight
	case HandleTopRight:
		return HandleBottomLeft
	case HandleBottomRight:
		return HandleTopLeft
	case HandleBottomLeft:
		return HandleTopRight
	default:
		return HandleNone
	}
}

// CornerHandles returns the world-space positions of the four corner
// handles of a w×h box centered at center, rotated by rotDeg. Order is
// top-left, top-right, bottom-right, bottom-left.
func CornerHandles(center Point, w, h, rotDeg float64) [4]Point {
	rad := Radians(rotDeg)
	hw, hh := w/2, h/2
	locals := [4]Point{
		{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh},
	}
	var out [4]Point
	for i, l := range locals {
		out[i] = l.Rotate(rad).Add(center)
	}
	return out
}

// RotateHandlePos returns the world-space position of the rotate handle:
// offset perpendicular from the top edge by RotateHandleOffset screen
// pixels, converted to world units by effScale so it stays visually
// constant regardless of zoom.
func RotateHandlePos(center Point, h, rotDeg, effScale float64) Point {
	if effScale <= 0 {
		effScale = 1
	}
	local := Point{X: 0, Y: -h/2 - RotateHandleOffset/effScale}
	return local.Rotate(Radians(rotDeg)).Add(center)
}
