// Package filter implements the fixed per-layer effect set: gaussian
// blur, drop shadow, synthetic outline and 4x5 color matrix transforms
// (brightness, saturation, contrast).
package filter

import (
	"math"
	"sync"
)

// kernelCache memoizes 1D gaussian kernels by radius. Shadow blurs reuse
// the same few radii over and over while a layer is being edited.
var kernelCache sync.Map // float64 -> []float64

// GaussianKernel returns a normalized 1D gaussian kernel for the given
// radius. The kernel has 2*ceil(radius)+1 taps with sigma = radius/2.
// Radius <= 0 yields a single identity tap.
func GaussianKernel(radius float64) []float64 {
	if radius <= 0 {
		return []float64{1}
	}
	if k, ok := kernelCache.Load(radius); ok {
		return k.([]float64)
	}

	r := int(math.Ceil(radius))
	sigma := radius / 2
	twoSigmaSq := 2 * sigma * sigma
	kernel := make([]float64, 2*r+1)
	sum := 0.0
	for i := -r; i <= r; i++ {
		v := math.Exp(-float64(i*i) / twoSigmaSq)
		kernel[i+r] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	kernelCache.Store(radius, kernel)
	return kernel
}
