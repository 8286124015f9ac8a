package filter

// BlurAlpha applies a separable gaussian blur to a single-channel alpha
// plane in place. The two-pass separable form keeps the cost at
// O(w*h*radius) instead of O(w*h*radius²).
//
// Only the alpha channel is ever blurred here: shadows are built by
// extracting coverage, blurring it, and colorizing the result.
func BlurAlpha(alpha []uint8, w, h int, radius float64) {
	if radius <= 0 || w == 0 || h == 0 {
		return
	}
	kernel := GaussianKernel(radius)
	r := len(kernel) / 2
	tmp := make([]float64, w*h)

	// Horizontal pass: alpha -> tmp.
	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			sum := 0.0
			for k, kv := range kernel {
				sx := x + k - r
				if sx < 0 {
					sx = 0
				} else if sx >= w {
					sx = w - 1
				}
				sum += float64(alpha[row+sx]) * kv
			}
			tmp[row+x] = sum
		}
	}

	// Vertical pass: tmp -> alpha.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for k, kv := range kernel {
				sy := y + k - r
				if sy < 0 {
					sy = 0
				} else if sy >= h {
					sy = h - 1
				}
				sum += tmp[sy*w+x] * kv
			}
			v := sum + 0.5
			if v > 255 {
				v = 255
			}
			alpha[y*w+x] = uint8(v)
		}
	}
}
