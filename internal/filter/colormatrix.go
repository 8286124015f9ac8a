package filter

import (
	"github.com/easelkit/easel"
)

// ColorMatrix is a 4x5 color transformation in row-major order:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
//
// The fifth column is a bias in [0, 255] units. Brightness, saturation
// and contrast are each expressible as one matrix, and the whole stack
// concatenates into a single matrix so a layer's color filters apply in
// one pass over its cache bitmap.
type ColorMatrix [20]float64

// IdentityMatrix returns the pass-through color matrix.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness returns a matrix scaling RGB by factor.
// 0 = black, 1 = unchanged.
func Brightness(factor float64) ColorMatrix {
	return ColorMatrix{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast returns a matrix applying (v-128)*factor + 128 per channel.
// 0 = flat gray, 1 = unchanged.
func Contrast(factor float64) ColorMatrix {
	offset := 128 * (1 - factor)
	return ColorMatrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// Saturation returns the standard feColorMatrix saturate matrix.
// 0 = grayscale, 1 = unchanged. Luminance weights follow ITU-R BT.709.
func Saturation(s float64) ColorMatrix {
	const lr, lg, lb = 0.2126, 0.7152, 0.0722
	return ColorMatrix{
		lr + (1-lr)*s, lg - lg*s, lb - lb*s, 0, 0,
		lr - lr*s, lg + (1-lg)*s, lb - lb*s, 0, 0,
		lr - lr*s, lg - lg*s, lb + (1-lb)*s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Then returns the matrix applying m first and next second.
func (m ColorMatrix) Then(next ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += next[row*5+k] * m[k*5+col]
			}
			if col == 4 {
				sum += next[row*5+4]
			}
			out[row*5+col] = sum
		}
	}
	return out
}

// Identity reports whether applying m would be a no-op.
func (m ColorMatrix) Identity() bool {
	return m == IdentityMatrix()
}

// Apply transforms every pixel of p in place.
func (m ColorMatrix) Apply(p *easel.Pixmap) {
	if p.Empty() || m.Identity() {
		return
	}
	data := p.Data()
	for i := 0; i < len(data); i += 4 {
		r := float64(data[i+0])
		g := float64(data[i+1])
		b := float64(data[i+2])
		a := float64(data[i+3])

		nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
		ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
		nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
		na := m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19]

		data[i+0] = clampChannel(nr)
		data[i+1] = clampChannel(ng)
		data[i+2] = clampChannel(nb)
		data[i+3] = clampChannel(na)
	}
}

func clampChannel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
