package ies

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// angleEpsilon absorbs rounding in angles derived from direction vectors
const angleEpsilon = 1e-9

// MaxCandela returns the peak intensity in candela, multiplier applied
func (r *Record) MaxCandela() float64 {
	if len(r.CandelaValues) == 0 {
		return 0
	}
	return floats.Max(r.CandelaValues) * r.CandelaMultiplier
}

// IntensityAt returns the intensity in candela emitted along dir, given in
// the luminaire frame: nadir is -Z, horizontal angle 0 is +X and 90 is +Y.
// Only type C distributions are supported; other types return 0
func (r *Record) IntensityAt(dir mgl64.Vec3) float64 {
	length := dir.Len()
	if length == 0 || r.PhotometricType != PhotometricTypeC || !r.hasGrid() {
		return 0
	}
	d := dir.Mul(1 / length)

	vertical := mgl64.RadToDeg(math.Acos(mgl64.Clamp(-d.Z(), -1, 1)))
	horizontal := mgl64.RadToDeg(math.Atan2(d.Y(), d.X()))
	if horizontal < 0 {
		horizontal += 360
	}
	return r.Interpolate(horizontal, vertical)
}

// Interpolate bilinearly samples the candela grid at a horizontal and
// vertical angle in degrees, multiplier applied. The horizontal angle is
// folded into the measured range according to the record's symmetry.
// Vertical angles outside the measured range have zero intensity
func (r *Record) Interpolate(horizontal, vertical float64) float64 {
	if !r.hasGrid() {
		return 0
	}
	vFirst, vLast := r.VerticalAngles[0], r.VerticalAngles[r.VerticalAngleCount-1]
	if vertical < vFirst-angleEpsilon || vertical > vLast+angleEpsilon {
		return 0
	}
	v0, v1, tv := bracket(r.VerticalAngles, vertical)

	plane := func(h int) float64 {
		return lerp(r.Candela(h, v0), r.Candela(h, v1), tv)
	}

	h := r.foldHorizontal(horizontal)
	hLast := r.HorizontalAngles[r.HorizontalAngleCount-1]
	var value float64
	switch {
	case r.HorizontalAngleCount == 1 || r.IsAxiallySymmetric():
		value = plane(0)
	case h > hLast:
		// Gap between the last measured plane and 360, which wraps to plane 0
		t := (h - hLast) / (360 - hLast)
		value = lerp(plane(r.HorizontalAngleCount-1), plane(0), t)
	default:
		h0, h1, th := bracket(r.HorizontalAngles, h)
		value = lerp(plane(h0), plane(h1), th)
	}
	return value * r.CandelaMultiplier
}

// foldHorizontal maps an angle in degrees onto the measured horizontal range
func (r *Record) foldHorizontal(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	switch r.Symmetry() {
	case SymmetryAxial:
		return 0
	case SymmetryQuadrant:
		if h > 180 {
			h = 360 - h
		}
		if h > 90 {
			h = 180 - h
		}
	case SymmetryPlane:
		if h > 180 {
			h = 360 - h
		}
	}
	return h
}

// Flux estimates the total luminous flux in lumens by trapezoidal
// integration of I(v, h) sin(v) over the measured web, expanded to the full
// sphere by the record's symmetry. Only valid type C records are supported
func (r *Record) Flux() float64 {
	if r.PhotometricType != PhotometricTypeC || !r.IsValid() {
		return 0
	}

	theta := make([]float64, r.VerticalAngleCount)
	for i, v := range r.VerticalAngles {
		theta[i] = mgl64.DegToRad(v)
	}

	planeIntegral := func(h int) float64 {
		f := make([]float64, r.VerticalAngleCount)
		for i := range f {
			f[i] = r.Candela(h, i) * math.Sin(theta[i])
		}
		return integrate.Trapezoidal(theta, f)
	}

	if r.HorizontalAngleCount == 1 || r.IsAxiallySymmetric() {
		return 2 * math.Pi * planeIntegral(0) * r.CandelaMultiplier
	}

	phi := make([]float64, r.HorizontalAngleCount)
	g := make([]float64, r.HorizontalAngleCount)
	for h, angle := range r.HorizontalAngles {
		phi[h] = mgl64.DegToRad(angle)
		g[h] = planeIntegral(h)
	}
	if r.Symmetry() == SymmetryNone && phi[len(phi)-1] < 2*math.Pi {
		phi = append(phi, 2*math.Pi)
		g = append(g, g[0])
	}

	span := phi[len(phi)-1] - phi[0]
	if span == 0 {
		return 0
	}
	return integrate.Trapezoidal(phi, g) * (2 * math.Pi / span) * r.CandelaMultiplier
}

// hasGrid reports whether the arrays are consistent enough to index
func (r *Record) hasGrid() bool {
	return r.VerticalAngleCount >= 2 && r.HorizontalAngleCount >= 1 &&
		len(r.VerticalAngles) == r.VerticalAngleCount &&
		len(r.HorizontalAngles) == r.HorizontalAngleCount &&
		len(r.CandelaValues) == r.VerticalAngleCount*r.HorizontalAngleCount
}

// bracket finds the neighbours of x in sorted values and the interpolation
// weight between them. x outside the range clamps to the nearest end
func bracket(values []float64, x float64) (int, int, float64) {
	idx := sort.SearchFloat64s(values, x)
	switch {
	case idx == 0:
		return 0, 0, 0
	case idx == len(values):
		return len(values) - 1, len(values) - 1, 0
	}
	lo, hi := idx-1, idx
	span := values[hi] - values[lo]
	if span == 0 {
		return hi, hi, 0
	}
	return lo, hi, (x - values[lo]) / span
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
