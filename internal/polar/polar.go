// Package polar implements the 2-D polar vector type used to compose
// true wind, boat velocity and apparent wind.
package polar

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Polar is a magnitude/bearing vector. Results of Add/Sub carry their
// cartesian coordinates precomputed; for a value built with New, Add/Sub
// compute them on a copy each call, since both take value receivers.
type Polar struct {
	alphaRad float64
	mag      float64

	cartesian bool
	x, y      float64
}

// New builds a Polar from an angle in radians and a non-negative magnitude.
func New(alphaRad, mag float64) Polar {
	if mag < 0 {
		panic("polar: negative magnitude")
	}
	return Polar{alphaRad: alphaRad, mag: mag}
}

// AlphaRad returns the polar angle in radians.
func (p Polar) AlphaRad() float64 { return p.alphaRad }

// Mag returns the magnitude.
func (p Polar) Mag() float64 { return p.mag }

// makeCartesian computes and caches the (x, y) projection, using a
// 2-vector through gonum rather than two bare float64 multiplications.
func (p *Polar) makeCartesian() (x, y float64) {
	if p.cartesian {
		return p.x, p.y
	}
	v := mat.NewVecDense(2, []float64{math.Cos(p.alphaRad), math.Sin(p.alphaRad)})
	v.ScaleVec(p.mag, v)
	p.x, p.y = v.AtVec(0), v.AtVec(1)
	p.cartesian = true
	return p.x, p.y
}

// Add returns p+b as a new Polar, the vector sum of the two.
func (p Polar) Add(b Polar) Polar {
	px, py := p.makeCartesian()
	bx, by := b.makeCartesian()
	sum := mat.NewVecDense(2, []float64{px + bx, py + by})
	return fromCartesian(sum.AtVec(0), sum.AtVec(1), p.mag)
}

// Sub returns p-b as a new Polar, the vector difference of the two. This
// is how apparent wind is computed: true wind minus boat velocity.
func (p Polar) Sub(b Polar) Polar {
	px, py := p.makeCartesian()
	bx, by := b.makeCartesian()
	diff := mat.NewVecDense(2, []float64{px - bx, py - by})
	return fromCartesian(diff.AtVec(0), diff.AtVec(1), p.mag)
}

// fromCartesian builds the resulting Polar from summed/subtracted
// cartesian coordinates. origMag is the ORIGINAL (pre-combination)
// magnitude of the receiver, used only as the zero-vector fallback angle
// guard: the receiver's own magnitude is checked rather than the result's.
func fromCartesian(x, y, origMag float64) Polar {
	mag := math.Hypot(x, y)
	alpha := 0.0
	if origMag != 0 {
		alpha = math.Atan2(y, x)
	}
	return Polar{alphaRad: alpha, mag: mag, cartesian: true, x: x, y: y}
}
