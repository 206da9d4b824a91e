package normalcontrol

import (
	"math"
	"testing"

	"github.com/avalonsailing/helmsman/internal/controllerio"
)

func TestIsJumpDetectsLargeChange(t *testing.T) {
	if !IsJump(0, math.Pi) {
		t.Errorf("expected a 180 degree change to register as a jump")
	}
	if IsJump(0, 0.01) {
		t.Errorf("expected a tiny change not to register as a jump")
	}
}

func TestEntrySeedsState(t *testing.T) {
	c := NewController(1, 0, 0, 1)
	filtered := controllerio.FilteredMeasurements{PhiZBoatRad: 0.5}
	c.Entry(filtered)
	if c.alphaStarRestrictedRad != 0.5 {
		t.Errorf("expected restricted heading seeded to 0.5, got %v", c.alphaStarRestrictedRad)
	}
	if c.ref.RunningPlan() {
		t.Errorf("a freshly entered controller should not have a plan running")
	}
}

func TestGiveUpCounterResetsOnMotion(t *testing.T) {
	c := NewController(1, 0, 0, 1)
	stalled := controllerio.FilteredMeasurements{MagBoatMS: 0.01}
	moving := controllerio.FilteredMeasurements{MagBoatMS: 1}
	for i := 0; i < 10; i++ {
		c.GiveUp(stalled)
	}
	if c.giveUpCounter == 0 {
		t.Fatalf("expected give-up counter to have accumulated")
	}
	c.GiveUp(moving)
	if c.giveUpCounter != 0 {
		t.Errorf("expected give-up counter reset after motion, got %v", c.giveUpCounter)
	}
}

func TestRunProducesBoundedRudder(t *testing.T) {
	c := NewController(0.5, 0, 0, 0.5)
	filtered := controllerio.FilteredMeasurements{
		PhiZBoatRad:  0,
		MagBoatMS:    2,
		AlphaTrueRad: math.Pi / 2,
		MagTrueMS:    6,
		AlphaAppRad:  math.Pi / 2,
		MagAppMS:     6,
	}
	c.Entry(filtered)
	var out controllerio.ControllerOutput
	c.Run(math.Pi/4, filtered, 0, &out)
	if math.Abs(out.DrivesReference.GammaRudderRad) > 0.5+1e-9 {
		t.Errorf("rudder exceeded configured limit: %v", out.DrivesReference.GammaRudderRad)
	}
}
