package pointofsail

import (
	"math"
	"testing"
)

func TestBestSailableHeadingBeamReachUnaffected(t *testing.T) {
	alphaTrue := 0.0
	alphaStar := math.Pi / 2 // dead beam reach, well outside both dead zones
	heading, sector := BestSailableHeading(alphaStar, alphaStar, alphaTrue)
	if sector != ReachStar && sector != ReachPort {
		t.Errorf("expected a reach sector at 90deg off the wind, got %v", sector)
	}
	if math.Abs(heading-alphaStar) > 1e-9 {
		t.Errorf("beam reach heading should pass through unmodified, got %v want %v", heading, alphaStar)
	}
}

func TestBestSailableHeadingTackZoneSnaps(t *testing.T) {
	alphaTrue := 0.0
	alphaStar := 0.1 // dead upwind, inside the tack zone
	heading, sector := BestSailableHeading(alphaStar, alphaStar, alphaTrue)
	if sector != TackPort && sector != TackStar {
		t.Errorf("expected a tack sector heading dead upwind, got %v", sector)
	}
	if math.Abs(heading) < 0.01 {
		t.Errorf("heading should have been snapped off dead upwind, got %v", heading)
	}
}

func TestAntiWindGustNoCorrectionInLightAir(t *testing.T) {
	g := &AntiWindGust{}
	c := g.Correct(TackStar, 0.1, 0.2) // below the 0.5 m/s threshold
	if c != 0 {
		t.Errorf("expected zero correction in light air, got %v", c)
	}
}

func TestAntiWindGustZeroOnJibeSectors(t *testing.T) {
	g := &AntiWindGust{}
	c := g.Correct(JibeStar, 3.0, 5)
	if c != 0 {
		t.Errorf("expected zero correction on jibe sectors, got %v", c)
	}
}
