package compose

import (
	"errors"
	"math"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
	"github.com/easelkit/easel/state"
)

// MaxExportEdge caps the long edge of an export render.
const MaxExportEdge = 4096

// ErrEmptyCanvas is returned when exporting a project with no dimensions.
var ErrEmptyCanvas = errors.New("compose: canvas has no dimensions")

// Export renders the flattened project at up to maxEdge pixels on the
// long edge (0 means MaxExportEdge). Effect parameters scale with the
// resolution factor so shadows and borders keep their proportions, and
// entrance animations are suppressed.
func Export(c *state.Canvas, fonts *layer.FontRegistry, maxEdge int) (*easel.Pixmap, error) {
	if maxEdge <= 0 {
		maxEdge = MaxExportEdge
	}
	dw, dh := c.Dims()
	if dw <= 0 || dh <= 0 {
		return nil, ErrEmptyCanvas
	}

	factor := float64(maxEdge) / math.Max(dw, dh)
	outW := int(math.Round(dw * factor))
	outH := int(math.Round(dh * factor))
	dst := easel.NewPixmap(outW, outH)

	if c.Background != nil {
		DrawBackground(dst, c.Background, c.ProjectRotation, c.BackgroundFlipX, c.BgBrightness, c.BgSaturation)
	}

	scaled := make([]*layer.Layer, len(c.Layers))
	for i, l := range c.Layers {
		scaled[i] = scaleForExport(l, factor)
	}
	DrawLayers(dst, scaled, fonts, Options{FinalExport: true})

	easel.Logger().Info("export rendered", "w", outW, "h", outH, "layers", len(c.Layers))
	return dst, nil
}

// scaleForExport clones a layer with its resolution-dependent parameters
// multiplied by the export factor, and invalidates the clone so effects
// re-render at export resolution.
//
// Image caches stay at base-mipmap resolution and the Size-derived draw
// transform already carries the factor, so their texel-space effect
// parameters stay untouched. Text caches render at world resolution, so
// the font metrics and shadow parameters scale with the output.
func scaleForExport(l *layer.Layer, factor float64) *layer.Layer {
	c := l.Clone()
	c.X *= factor
	c.Y *= factor
	c.Size *= factor
	if c.Kind == layer.KindText {
		c.FontSize *= factor
		c.StrokeWidth *= factor
		c.Shadow.Blur *= factor
		c.Shadow.OffsetX *= factor
		c.Shadow.OffsetY *= factor
		c.TextW, c.TextH = 0, 0
	}
	c.Invalidate()
	return c
}
