// Package filter implements the small stateful scalar filters the
// control core chains together to turn raw sensor readings into stable
// measurements: running medians, sliding averages, a one-pole low pass,
// and wrappers that make any of them safe to run over a periodic
// (wraparound) input.
package filter

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Scalar is the shape every scalar filter in this package implements:
// feed in the next raw sample, get back the filtered value. ValidOutput
// reports whether the filter has been fed enough samples to have
// reached steady state. SetOutput warm-starts the filter's internal
// state as though y0 had always been its output, and Shift adds delta
// to that internal state — used by WrapAround to rebase its tracked
// continuous phase without disturbing the filters it wraps.
type Scalar interface {
	Filter(in float64) float64
	ValidOutput() bool
	SetOutput(y0 float64)
	Shift(delta float64)
}

// Median3 is a 3-tap running median.
type Median3 struct {
	buf [3]float64
	n   int
}

func (f *Median3) Filter(in float64) float64 {
	f.push(in)
	if f.n < 3 {
		return in
	}
	return median3(f.buf[0], f.buf[1], f.buf[2])
}

func (f *Median3) push(in float64) {
	f.buf[0], f.buf[1], f.buf[2] = f.buf[1], f.buf[2], in
	if f.n < 3 {
		f.n++
	}
}

func (f *Median3) ValidOutput() bool { return f.n >= 3 }

func (f *Median3) SetOutput(y0 float64) {
	f.buf[0], f.buf[1], f.buf[2] = y0, y0, y0
	f.n = 3
}

func (f *Median3) Shift(delta float64) {
	f.buf[0] += delta
	f.buf[1] += delta
	f.buf[2] += delta
}

func median3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return b
}

// Median5 is a 5-tap running median.
type Median5 struct {
	buf [5]float64
	n   int
}

func (f *Median5) ValidOutput() bool { return f.n >= 5 }

func (f *Median5) SetOutput(y0 float64) {
	for i := range f.buf {
		f.buf[i] = y0
	}
	f.n = 5
}

func (f *Median5) Shift(delta float64) {
	for i := range f.buf {
		f.buf[i] += delta
	}
}

func (f *Median5) Filter(in float64) float64 {
	for i := 0; i < 4; i++ {
		f.buf[i] = f.buf[i+1]
	}
	f.buf[4] = in
	if f.n < 5 {
		f.n++
		if f.n < 5 {
			return in
		}
	}
	var sorted [5]float64
	copy(sorted[:], f.buf[:])
	// insertion sort; 5 elements, not worth pulling in sort.Float64s
	for i := 1; i < 5; i++ {
		v := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > v {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = v
	}
	return sorted[2]
}

// SlidingAverage is a uniform moving average over the last n samples.
type SlidingAverage struct {
	n    int
	buf  []float64
	sum  float64
	fill int
	next int
}

// NewSlidingAverage builds a sliding average over a window of n samples.
func NewSlidingAverage(n int) *SlidingAverage {
	if n < 1 {
		panic("filter: SlidingAverage window must be >= 1")
	}
	return &SlidingAverage{n: n, buf: make([]float64, n)}
}

func (f *SlidingAverage) Filter(in float64) float64 {
	if f.fill < f.n {
		f.buf[f.next] = in
		f.sum += in
		f.fill++
		f.next = (f.next + 1) % f.n
		return f.sum / float64(f.fill)
	}
	f.sum -= f.buf[f.next]
	f.sum += in
	f.buf[f.next] = in
	f.next = (f.next + 1) % f.n
	return f.sum / float64(f.n)
}

func (f *SlidingAverage) ValidOutput() bool { return f.fill >= f.n }

func (f *SlidingAverage) SetOutput(y0 float64) {
	for i := range f.buf {
		f.buf[i] = y0
	}
	f.sum = y0 * float64(f.n)
	f.fill = f.n
}

func (f *SlidingAverage) Shift(delta float64) {
	for i := range f.buf {
		f.buf[i] += delta
	}
	f.sum += delta * float64(f.fill)
}

// QuickSlidingAverage behaves like SlidingAverage once its window is
// full, but reports valid sooner: ValidOutput turns true after n/2+1
// samples. While the window is filling, the running sum of the k samples
// seen so far is divided by k/2+1 (integer division) rather than by k,
// so those early outputs are not the plain mean of the samples.
type QuickSlidingAverage struct {
	n    int
	buf  []float64
	sum  float64
	fill int
	next int
}

func NewQuickSlidingAverage(n int) *QuickSlidingAverage {
	if n < 1 {
		panic("filter: QuickSlidingAverage window must be >= 1")
	}
	return &QuickSlidingAverage{n: n, buf: make([]float64, n)}
}

func (f *QuickSlidingAverage) Filter(in float64) float64 {
	if f.fill < f.n {
		f.buf[f.next] = in
		f.sum += in
		f.fill++
		f.next = (f.next + 1) % f.n
		return f.sum / float64(f.fill/2+1)
	}
	f.sum -= f.buf[f.next]
	f.sum += in
	f.buf[f.next] = in
	f.next = (f.next + 1) % f.n
	return f.sum / float64(f.n)
}

func (f *QuickSlidingAverage) ValidOutput() bool { return f.fill >= f.n/2+1 }

func (f *QuickSlidingAverage) SetOutput(y0 float64) {
	for i := range f.buf {
		f.buf[i] = y0
	}
	f.sum = y0 * float64(f.n)
	f.fill = f.n
}

func (f *QuickSlidingAverage) Shift(delta float64) {
	for i := range f.buf {
		f.buf[i] += delta
	}
	f.sum += delta * float64(f.fill)
}

// LowPass1 is a one-pole (first order) IIR low pass filter with time
// constant tau, sampled at the given sampling period. The filter
// coefficient is b1 = 1/tau_samples (tau expressed in samples, not
// seconds), matching a1 = 1 - 1/tau_samples for unity DC gain.
type LowPass1 struct {
	tauSamples float64
	alpha      float64
	value      float64
	n          int
	started    bool
}

// NewLowPass1 builds a one-pole low pass with time constant tau (seconds)
// run at the given sampling period (seconds).
func NewLowPass1(tau, period float64) *LowPass1 {
	if tau <= 0 || period <= 0 {
		panic("filter: LowPass1 requires positive tau and period")
	}
	tauSamples := tau / period
	return &LowPass1{tauSamples: tauSamples, alpha: 1 / tauSamples}
}

func (f *LowPass1) Filter(in float64) float64 {
	f.n++
	if !f.started {
		f.value = in
		f.started = true
		return f.value
	}
	f.value += f.alpha * (in - f.value)
	return f.value
}

func (f *LowPass1) ValidOutput() bool { return float64(f.n) >= f.tauSamples }

func (f *LowPass1) SetOutput(y0 float64) {
	f.value = y0
	f.started = true
	f.n = int(f.tauSamples)
}

func (f *LowPass1) Shift(delta float64) {
	f.value += delta
}

// WrapAround adapts any Scalar filter (designed for an unbounded linear
// input) to run safely over a periodic input in (-π, π], by tracking a
// continuous (unwrapped) phase and filtering that instead of the raw
// wrapped angle. This is how every angle-valued signal (wind direction,
// heading) is allowed to pass through a plain averaging filter without
// glitching across the -180/180 boundary.
type WrapAround struct {
	inner      Scalar
	continuous float64
	started    bool
}

// NewWrapAround wraps inner so it can safely filter a periodic radian
// input.
func NewWrapAround(inner Scalar) *WrapAround {
	return &WrapAround{inner: inner}
}

func (f *WrapAround) Filter(inRad float64) float64 {
	if !f.started {
		f.continuous = inRad
		f.started = true
	} else {
		f.continuous += deltaOldNewRad(f.continuous, inRad)
	}
	// Rebase occasionally so the unwrapped phase doesn't accumulate
	// unbounded magnitude (and lose float precision) over a long run.
	const period = 2 * math.Pi
	const limit = 2 * period
	if f.continuous > limit {
		f.Shift(-limit)
	} else if f.continuous < -limit {
		f.Shift(limit)
	}
	out := f.inner.Filter(f.continuous)
	return symmetricRad(out)
}

func (f *WrapAround) ValidOutput() bool { return f.inner.ValidOutput() }

func (f *WrapAround) SetOutput(y0 float64) {
	f.continuous = y0
	f.started = true
	f.inner.SetOutput(y0)
}

func (f *WrapAround) Shift(delta float64) {
	f.inner.Shift(delta)
	f.continuous += delta
}

// deltaOldNewRad/symmetricRad duplicate the tiny amount of angle math
// this package needs, so filter does not depend on the angle package for
// a two-line helper.
func deltaOldNewRad(oldRad, newRad float64) float64 {
	d := symmetricRad(newRad - oldRad)
	return d
}

func symmetricRad(rad float64) float64 {
	const twoPi = 6.283185307179586
	const pi = 3.141592653589793
	for rad <= -pi {
		rad += twoPi
	}
	for rad > pi {
		rad -= twoPi
	}
	return rad
}

// Polar wraps two independent Scalar filters (or WrapArounds) to filter a
// 2-D cartesian-projected quantity (apparent wind, boat velocity) axis by
// axis, recombining to magnitude/angle afterward.
type Polar struct {
	fx, fy Scalar
}

// NewPolar builds a Polar filter from two per-axis scalar filters; pass
// two distinct filter values so each axis keeps its own state.
func NewPolar(fx, fy Scalar) *Polar {
	return &Polar{fx: fx, fy: fy}
}

// Filter filters the cartesian components of a polar sample and returns
// the filtered magnitude and angle (radians).
func (f *Polar) Filter(alphaRad, mag float64) (outAlphaRad, outMag float64) {
	x := mag * math.Cos(alphaRad)
	y := mag * math.Sin(alphaRad)
	fx := f.fx.Filter(x)
	fy := f.fy.Filter(y)
	return math.Atan2(fy, fx), math.Hypot(fx, fy)
}

// ValidOutput reports whether both axis filters have reached steady
// state.
func (f *Polar) ValidOutput() bool { return f.fx.ValidOutput() && f.fy.ValidOutput() }

// RollingMean computes the arithmetic mean of a fixed slice (0 for an
// empty slice), summing through gonum/floats. No other code in this
// repository calls it.
func RollingMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Sum(xs) / float64(len(xs))
}
