package filter

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestMedian3RejectsSpike(t *testing.T) {
	f := &Median3{}
	f.Filter(1)
	f.Filter(1)
	got := f.Filter(100) // spike
	if got != 1 {
		t.Errorf("median3 spike rejection = %v, want 1", got)
	}
}

func TestMedian5RejectsSpike(t *testing.T) {
	f := &Median5{}
	for i := 0; i < 4; i++ {
		f.Filter(2)
	}
	got := f.Filter(500)
	if got != 2 {
		t.Errorf("median5 spike rejection = %v, want 2", got)
	}
}

func TestSlidingAverageConverges(t *testing.T) {
	f := NewSlidingAverage(4)
	var out float64
	for i := 0; i < 20; i++ {
		out = f.Filter(3)
	}
	if !approxEqual(out, 3, 1e-9) {
		t.Errorf("sliding average = %v, want 3", out)
	}
}

func TestLowPass1ConvergesToStep(t *testing.T) {
	f := NewLowPass1(1.0, 0.1)
	var out float64
	for i := 0; i < 200; i++ {
		out = f.Filter(5)
	}
	if !approxEqual(out, 5, 1e-6) {
		t.Errorf("low pass steady state = %v, want 5", out)
	}
}

func TestWrapAroundAcrossBoundary(t *testing.T) {
	inner := NewSlidingAverage(2)
	w := NewWrapAround(inner)
	a := w.Filter(math.Pi - 0.05)
	b := w.Filter(-math.Pi + 0.05) // crosses the +-pi seam, should be "close" to a
	if math.Abs(a-b) > 0.2 {
		t.Errorf("wraparound filter glitched across seam: a=%v b=%v", a, b)
	}
}

func TestMedian5ValidAfterFiveSamples(t *testing.T) {
	f := &Median5{}
	for i := 0; i < 5; i++ {
		if f.ValidOutput() {
			t.Fatalf("median5 reported valid after %d samples", i)
		}
		f.Filter(1)
	}
	if !f.ValidOutput() {
		t.Errorf("expected median5 valid after 5 samples")
	}
}

func TestSlidingAverageValidAfterWindow(t *testing.T) {
	f := NewSlidingAverage(4)
	for i := 0; i < 3; i++ {
		f.Filter(1)
	}
	if f.ValidOutput() {
		t.Fatalf("sliding average reported valid before filling its window")
	}
	f.Filter(1)
	if !f.ValidOutput() {
		t.Errorf("expected sliding average valid once its window is full")
	}
}

func TestLowPass1ValidAfterTauSamples(t *testing.T) {
	f := NewLowPass1(0.5, 0.1) // tau = 5 samples
	for i := 0; i < 4; i++ {
		f.Filter(1)
	}
	if f.ValidOutput() {
		t.Fatalf("low pass reported valid before tau samples")
	}
	f.Filter(1)
	if !f.ValidOutput() {
		t.Errorf("expected low pass valid after tau samples")
	}
}

func TestLowPass1SetOutputWarmStarts(t *testing.T) {
	f := NewLowPass1(0.5, 0.1)
	f.SetOutput(7)
	if !f.ValidOutput() {
		t.Errorf("expected SetOutput to warm-start straight into validity")
	}
	if got := f.Filter(7); got != 7 {
		t.Errorf("expected warm-started filter to hold steady at 7, got %v", got)
	}
}

func TestWrapAroundShiftRebasesContinuousPhase(t *testing.T) {
	inner := NewSlidingAverage(2)
	w := NewWrapAround(inner)
	w.Filter(0.1)
	before := w.continuous
	w.Shift(2 * math.Pi)
	if math.Abs(w.continuous-(before+2*math.Pi)) > 1e-9 {
		t.Errorf("expected Shift to rebase the continuous phase by the given delta")
	}
}

func TestPolarFilterRoundTrip(t *testing.T) {
	p := NewPolar(NewLowPass1(0.5, 0.1), NewLowPass1(0.5, 0.1))
	var alpha, mag float64
	for i := 0; i < 50; i++ {
		alpha, mag = p.Filter(0.3, 7)
	}
	if !approxEqual(mag, 7, 1e-3) {
		t.Errorf("mag = %v, want 7", mag)
	}
	if !approxEqual(alpha, 0.3, 1e-3) {
		t.Errorf("alpha = %v, want 0.3", alpha)
	}
}
