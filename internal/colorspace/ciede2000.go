package colorspace

import "math"

// Parametric weighting factors. 1 for graphic arts reference conditions.
const (
	kL = 1.0
	kC = 1.0
	kH = 1.0
)

var pow25to7 = math.Pow(25, 7)

// DeltaE2000 returns the CIEDE2000 colour difference between two Lab colours.
func DeltaE2000(c1, c2 Lab) float64 {
	cab1 := math.Hypot(c1.A, c1.B)
	cab2 := math.Hypot(c2.A, c2.B)
	cabMean := (cab1 + cab2) / 2

	cm7 := math.Pow(cabMean, 7)
	g := 0.5 * (1 - math.Sqrt(cm7/(cm7+pow25to7)))

	a1p := (1 + g) * c1.A
	a2p := (1 + g) * c2.A

	c1p := math.Hypot(a1p, c1.B)
	c2p := math.Hypot(a2p, c2.B)

	h1p := hueAngle(c1.B, a1p)
	h2p := hueAngle(c2.B, a2p)

	dLp := c2.L - c1.L
	dCp := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(dhp)/2)

	lpMean := (c1.L + c2.L) / 2
	cpMean := (c1p + c2p) / 2

	var hpMean float64
	switch {
	case c1p*c2p == 0:
		hpMean = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hpMean = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hpMean = (h1p + h2p + 360) / 2
	default:
		hpMean = (h1p + h2p - 360) / 2
	}

	t := 1 -
		0.17*math.Cos(radians(hpMean-30)) +
		0.24*math.Cos(radians(2*hpMean)) +
		0.32*math.Cos(radians(3*hpMean+6)) -
		0.20*math.Cos(radians(4*hpMean-63))

	dTheta := 30 * math.Exp(-math.Pow((hpMean-275)/25, 2))
	cpm7 := math.Pow(cpMean, 7)
	rc := 2 * math.Sqrt(cpm7/(cpm7+pow25to7))

	lm50 := (lpMean - 50) * (lpMean - 50)
	sl := 1 + 0.015*lm50/math.Sqrt(20+lm50)
	sc := 1 + 0.045*cpMean
	sh := 1 + 0.015*cpMean*t
	rt := -math.Sin(radians(2*dTheta)) * rc

	lTerm := dLp / (kL * sl)
	cTerm := dCp / (kC * sc)
	hTerm := dHp / (kH * sh)

	return math.Sqrt(lTerm*lTerm + cTerm*cTerm + hTerm*hTerm + rt*cTerm*hTerm)
}

// hueAngle returns atan2(b, a) in degrees within [0, 360).
func hueAngle(b, a float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
