package vskipper

import (
	"testing"

	"github.com/avalonsailing/helmsman/internal/geo"
)

func TestRunNoContactsIsSafe(t *testing.T) {
	us := AvalonState{
		Position:    geo.FromDeg(0, 0),
		TargetDeg:   90,
		WindFromDeg: 0,
		WindSpeedMS: 6,
	}
	got := Run(us, nil)
	if got == NoWaySentinel {
		t.Errorf("expected a safe bearing with no AIS contacts")
	}
}

func TestDistanceDangerZeroBeyondSafeDistance(t *testing.T) {
	if distanceDanger(safeDistanceM+1) != 0 {
		t.Errorf("expected zero danger beyond the safe distance")
	}
}

func TestDistanceDangerMaxAtZero(t *testing.T) {
	if distanceDanger(0) != 1 {
		t.Errorf("expected maximum danger at zero distance")
	}
}

func TestWindFractionPPeaksAtOne(t *testing.T) {
	if windFractionP(1) != 1 {
		t.Errorf("expected wind fraction probability to peak at fraction=1")
	}
	if windFractionP(3) != 0 {
		t.Errorf("expected wind fraction probability to floor at zero far from 1")
	}
}

func TestRunCloseContactIncreasesRiskOfReroute(t *testing.T) {
	us := AvalonState{
		Position:    geo.FromDeg(0, 0),
		TargetDeg:   90,
		WindFromDeg: 0,
		WindSpeedMS: 6,
	}
	nearby := geo.SphericalMove(us.Position, 90*0.0174533, 50) // 50m dead ahead
	contacts := []AisInfo{{
		Position:   nearby,
		BearingDeg: 270, // heading back toward us
		SpeedMS:    3,
		ID:         "ship1",
	}}
	got := Run(us, contacts)
	if got == us.TargetDeg {
		t.Errorf("expected a contact 50m ahead to move the result off the target bearing %v", us.TargetDeg)
	}
}
