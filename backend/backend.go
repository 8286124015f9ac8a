// Package backend abstracts the renderer that turns canvas state into
// pixels, so GPU or worker-thread implementations can slot in behind
// the same interface. The built-in software backend composites on the
// CPU via the compose package.
package backend

import (
	"errors"

	"github.com/easelkit/easel"
	"github.com/easelkit/easel/compose"
	"github.com/easelkit/easel/layer"
	"github.com/easelkit/easel/state"
)

var (
	// ErrBackendNotAvailable is returned when no usable backend is
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when rendering before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Renderer produces frames from canvas state. Implementations own
// whatever surfaces and device state they need; Render must leave the
// canvas untouched apart from effect-cache rebuilds, which are
// idempotent.
type Renderer interface {
	// Name returns the backend identifier (e.g. "software").
	Name() string

	// Init prepares the backend. Must be called before Render.
	Init() error

	// Close releases backend resources.
	Close()

	// Render composites the full document into target: background with
	// project rotation/flip/filters, then every layer in z-order.
	Render(target *easel.Pixmap, c *state.Canvas, fonts *layer.FontRegistry, opts compose.Options) error
}

// Software is the CPU reference backend.
const Software = "software"

type softwareBackend struct {
	ready bool
}

func (b *softwareBackend) Name() string { return Software }

func (b *softwareBackend) Init() error {
	b.ready = true
	return nil
}

func (b *softwareBackend) Close() { b.ready = false }

func (b *softwareBackend) Render(target *easel.Pixmap, c *state.Canvas, fonts *layer.FontRegistry, opts compose.Options) error {
	if !b.ready {
		return ErrNotInitialized
	}
	if c.Background != nil {
		compose.DrawBackground(target, c.Background, c.ProjectRotation, c.BackgroundFlipX, c.BgBrightness, c.BgSaturation)
	}
	compose.DrawLayers(target, c.Layers, fonts, opts)
	return nil
}

func init() {
	Register(Software, func() Renderer { return &softwareBackend{} })
}
