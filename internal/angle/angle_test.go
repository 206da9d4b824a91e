package angle

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestFromDegRoundTrip(t *testing.T) {
	cases := []float64{0, 1, 90, 179.999, 180, 270, 359.999, -179, -0.5}
	for _, deg := range cases {
		a := FromDeg(deg)
		want := deg
		if want < 0 {
			want += 360
		}
		if !approxEqual(a.Deg(), want, 1e-6) {
			t.Errorf("FromDeg(%v).Deg() = %v, want %v", deg, a.Deg(), want)
		}
	}
}

func TestAddWrapsAround(t *testing.T) {
	a := FromDeg(350)
	b := FromDeg(20)
	sum := a.Add(b)
	if !approxEqual(sum.Deg(), 10, 1e-6) {
		t.Errorf("350+20 wrapped = %v, want 10", sum.Deg())
	}
}

func TestSubWrapsAround(t *testing.T) {
	a := FromDeg(10)
	b := FromDeg(20)
	diff := a.Sub(b)
	if !approxEqual(diff.Deg(), 350, 1e-6) {
		t.Errorf("10-20 wrapped = %v, want 350", diff.Deg())
	}
}

func TestOpposite(t *testing.T) {
	a := FromDeg(30)
	if !approxEqual(a.Opposite().Deg(), 210, 1e-6) {
		t.Errorf("Opposite(30) = %v, want 210", a.Opposite().Deg())
	}
}

func TestSymmetricDeg(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0}, {180, 180}, {181, -179}, {360, 0}, {-360, 0}, {540, 180},
	}
	for _, c := range cases {
		got := SymmetricDeg(c.in)
		if !approxEqual(got, c.want, 1e-9) {
			t.Errorf("SymmetricDeg(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDeltaOldNewRad(t *testing.T) {
	// crossing the wrap boundary should take the short way
	old := angleDeg(350)
	new_ := angleDeg(10)
	d := DeltaOldNewRad(old, new_)
	if !approxEqual(d*180/math.Pi, 20, 1e-6) {
		t.Errorf("delta(350,10) = %v deg, want 20", d*180/math.Pi)
	}
}

func angleDeg(deg float64) float64 { return deg * math.Pi / 180 }

func TestNearerRad(t *testing.T) {
	target := angleDeg(185)
	a := angleDeg(170)
	b := angleDeg(-170) // i.e. 190
	chosen, choseB := NearerRad(target, a, b)
	if !choseB {
		t.Errorf("expected b (190deg) to be nearer to 185deg than a (170deg)")
	}
	_ = chosen
}

func TestFromDegPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range degrees")
		}
	}()
	FromDeg(360)
}
