package helmsman

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/avalonsailing/helmsman/internal/controllerio"
	"github.com/avalonsailing/helmsman/internal/normalcontrol"
)

func newTestHelmsman() *Helmsman {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	normal := NewNormalAdapter(normalcontrol.NewController(2.0, 0.05, 0.5, 0.6))
	return New(logger, NewTestController(logger), NewInitialController(), normal, NewDockingController(), NewBrakeController())
}

func TestNewStartsInTest(t *testing.T) {
	h := newTestHelmsman()
	if h.CurrentState() != "test" {
		t.Fatalf("expected initial state test, got %s", h.CurrentState())
	}
}

func TestProbeTracksMean(t *testing.T) {
	var p Probe
	p.Measure(1)
	p.Measure(3)
	if p.Value() != 2 {
		t.Errorf("expected mean 2, got %v", p.Value())
	}
	p.Reset()
	if p.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", p.Value())
	}
}

func TestTickAdvancesThroughTestPhases(t *testing.T) {
	h := newTestHelmsman()
	in := controllerio.ControllerInput{}
	filtered := controllerio.FilteredMeasurements{Valid: true, ValidAppWind: true}

	// Enough ticks to pass homing, zero, every drive test, zero again and
	// the wind sensor check.
	for i := 0; i < 20000 && h.CurrentState() == "test"; i++ {
		h.Tick(in, filtered)
	}
	if h.CurrentState() == "test" {
		t.Fatalf("expected to leave the test state within 2000s of ticks")
	}
}

func TestInitialWaitsForStableBearingAndSpeed(t *testing.T) {
	c := NewInitialController()
	filtered := controllerio.FilteredMeasurements{Valid: true, PhiZBoatRad: 0.1, MagBoatMS: 1.0}
	c.Entry(filtered)
	for i := 0; i < minStableTicks+1; i++ {
		c.Run(controllerio.ControllerInput{}, filtered)
	}
	if !c.Done() {
		t.Errorf("expected InitialController to be done after stable ticks")
	}
}

func TestDockingStopsOnLowSpeed(t *testing.T) {
	c := NewDockingController()
	filtered := controllerio.FilteredMeasurements{PhiZBoatRad: 0, MagBoatMS: 0.0}
	c.Entry(filtered)
	for i := 0; i < dockingLowSpeedTicks+1; i++ {
		c.Run(controllerio.ControllerInput{}, filtered)
	}
	if !c.Done() {
		t.Errorf("expected DockingController to be done once speed drops")
	}
}

func TestBrakeStopsOnLowSpeed(t *testing.T) {
	c := NewBrakeController()
	filtered := controllerio.FilteredMeasurements{MagBoatMS: 0.0}
	c.Entry(filtered)
	for i := 0; i < brakeLowSpeedTicks+1; i++ {
		c.Run(controllerio.ControllerInput{}, filtered)
	}
	if !c.Done() {
		t.Errorf("expected BrakeController to be done once speed drops")
	}
}
