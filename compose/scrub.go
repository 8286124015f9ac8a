package compose

import (
	"github.com/easelkit/easel"
	"github.com/easelkit/easel/layer"
)

// ScrubCaches are the two static composites built once per gesture:
// everything behind the active layer and everything in front of it.
// While the gesture runs, each frame blits background, then the freshly
// transformed active layer, then foreground; no other layer's cache is
// touched. Ending the gesture and doing a full redraw must produce
// pixel-identical output.
type ScrubCaches struct {
	ActiveID   string
	Background *easel.Pixmap
	Foreground *easel.Pixmap
}

// BuildScrubCaches pre-renders the static composites for a gesture on
// the layer with the given id. Returns nil when the id is not in the
// stack.
func BuildScrubCaches(w, h int, layers []*layer.Layer, activeID string, fonts *layer.FontRegistry, opts Options) *ScrubCaches {
	activeIdx := -1
	for i, l := range layers {
		if l.ID == activeID {
			activeIdx = i
			break
		}
	}
	if activeIdx < 0 {
		return nil
	}

	s := &ScrubCaches{
		ActiveID:   activeID,
		Background: easel.NewPixmap(w, h),
		Foreground: easel.NewPixmap(w, h),
	}
	// Index 0 is topmost: layers after the active one are behind it.
	DrawLayers(s.Background, layers[activeIdx+1:], fonts, opts)
	DrawLayers(s.Foreground, layers[:activeIdx], fonts, opts)
	return s
}

// Draw composites one scrub-mode frame into dst.
func (s *ScrubCaches) Draw(dst *easel.Pixmap, active *layer.Layer, fonts *layer.FontRegistry, opts Options) {
	dst.Blit(s.Background, 0, 0)
	if active != nil {
		DrawLayer(dst, active, fonts, opts)
	}
	dst.Blit(s.Foreground, 0, 0)
}
