package polardiagram

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestReadPolarDiagramDeadZones(t *testing.T) {
	tack, jibe, speed := ReadPolarDiagram(20, 6)
	if !tack || jibe {
		t.Errorf("20deg should be in tack zone only, got tack=%v jibe=%v", tack, jibe)
	}
	if speed < 0 {
		t.Errorf("speed should be non-negative, got %v", speed)
	}

	tack, jibe, _ = ReadPolarDiagram(170, 6)
	if tack || !jibe {
		t.Errorf("170deg should be in jibe zone only, got tack=%v jibe=%v", tack, jibe)
	}
}

func TestReadPolarDiagramBeamReach(t *testing.T) {
	tack, jibe, speed := ReadPolarDiagram(90, 6)
	if tack || jibe {
		t.Errorf("90deg should not be in any dead zone")
	}
	if speed <= 0 {
		t.Errorf("beam reach speed should be positive, got %v", speed)
	}
}

func TestSpeedNeverExceedsClip(t *testing.T) {
	for _, wind := range []float64{5, 10, 20, 40, 100} {
		s := Speed(90, wind)
		if s > 2.6+1e-9 {
			t.Errorf("Speed(90, %v) = %v, exceeds 2.6 clip", wind, s)
		}
	}
}

func TestSpeedSymmetric(t *testing.T) {
	a := Speed(60, 6)
	b := Speed(-60, 6)
	if !approxEqual(a, b, 1e-9) {
		t.Errorf("speed should be symmetric in angle, got %v vs %v", a, b)
	}
}
