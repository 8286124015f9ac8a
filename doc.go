// Package easel is a layered image compositing engine.
//
// easel provides the core of an interactive image editor: a layer model
// for image and text layers with cached effect renders, a compositor that
// stacks layers over a background, an interaction engine for pointer-driven
// drag/resize/rotate/erase gestures, and integration points for background
// removal, persistence and collaboration.
//
// The root package holds the shared primitives: points, affine matrices,
// colors, rectangles, pixel surfaces and the view transform. Higher-level
// behavior lives in subpackages:
//
//   - layer: the layer entities, mipmap chains and effect-cache builder
//   - state: the canvas document, action types and the pure reducer
//   - compose: layer compositing, scrub-mode caches and export rendering
//   - interact: the pointer gesture state machine and hit testing
//   - brush: the eraser/un-eraser raster edit engine
//   - segment: glue around an opaque background-removal service
//   - store: asset and project persistence boundaries
//   - collab: action broadcast over websockets
//   - task: the worker-goroutine boundary for slow jobs
//   - backend: the pluggable rendering backend registry
//
// All coordinates follow the convention view = world*scale + pan, with the
// world space being the project's master canvas in pixels.
package easel
