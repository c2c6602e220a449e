// Package colorspace converts device RGB samples to CIE L*a*b* and measures
// perceptual colour difference with CIEDE2000.
package colorspace

import "math"

// D65 reference white (2° observer), Y normalised to 1.
const (
	whiteX = 0.95047
	whiteY = 1.00000
	whiteZ = 1.08883
)

// CIE constants for the f(t) nonlinearity.
const (
	epsilon = 216.0 / 24389.0 // (6/29)^3
	kappa   = 24389.0 / 27.0
)

// Lab is a colour in CIE L*a*b* space. L is in [0,100].
type Lab struct {
	L, A, B float64
}

// FromRGB converts an 8-bit sRGB sample to Lab referenced to D65.
func FromRGB(r, g, b uint8) Lab {
	rl := linearize(float64(r) / 255.0)
	gl := linearize(float64(g) / 255.0)
	bl := linearize(float64(b) / 255.0)

	// sRGB -> XYZ (D65)
	x := 0.4124564*rl + 0.3575761*gl + 0.1804375*bl
	y := 0.2126729*rl + 0.7151522*gl + 0.0721750*bl
	z := 0.0193339*rl + 0.1191920*gl + 0.9503041*bl

	fx := labF(x / whiteX)
	fy := labF(y / whiteY)
	fz := labF(z / whiteZ)

	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// linearize applies the inverse sRGB companding curve.
func linearize(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	if t > epsilon {
		return math.Cbrt(t)
	}
	return (kappa*t + 16) / 116
}

// Chroma returns the C*ab magnitude, used as a saturation proxy.
func (c Lab) Chroma() float64 {
	return math.Hypot(c.A, c.B)
}
