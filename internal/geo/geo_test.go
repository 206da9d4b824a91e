package geo

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestShortestPathNorth(t *testing.T) {
	from := FromDeg(0, 0)
	to := FromDeg(1, 0)
	bearing, dist := SphericalShortestPath(from, to)
	if !approxEqual(bearing, 0, 1e-6) {
		t.Errorf("bearing = %v, want 0 (due north)", bearing)
	}
	wantDist := 1 * math.Pi / 180 * EarthRadiusM
	if !approxEqual(dist, wantDist, 1) {
		t.Errorf("dist = %v, want %v", dist, wantDist)
	}
}

func TestMoveRoundTrip(t *testing.T) {
	from := FromDeg(40, -8)
	bearing := 0.7
	dist := 50000.0
	to := SphericalMove(from, bearing, dist)

	gotBearing, gotDist := SphericalShortestPath(from, to)
	if !approxEqual(gotBearing, bearing, 1e-4) {
		t.Errorf("round trip bearing = %v, want %v", gotBearing, bearing)
	}
	if !approxEqual(gotDist, dist, 1) {
		t.Errorf("round trip dist = %v, want %v", gotDist, dist)
	}
}

func TestMinDistanceBothStationary(t *testing.T) {
	d := MinDistance(0, 0, 0, 0, 0, 500, 900)
	if !approxEqual(d, 500, 1e-9) {
		t.Errorf("stationary min distance = %v, want 500", d)
	}
}

func TestMinDistanceClosingHeadOn(t *testing.T) {
	// a at origin heading toward b along aToB=0, b heading directly back at a (bearing = pi, relative to a_b+pi = 0)
	d := MinDistance(0, 5, math.Pi, 5, 0, 1000, 200)
	if d > 1000 {
		t.Errorf("closing ships should not end up further apart: got %v", d)
	}
}
