package skipper

import (
	"math"
	"testing"

	"github.com/avalonsailing/helmsman/internal/geo"
	"github.com/avalonsailing/helmsman/internal/windstrength"
)

func TestCascadeToDegEmpty(t *testing.T) {
	c := NewCascade(nil)
	got := c.ToDeg(geo.FromDeg(0, 0))
	if got != 225 {
		t.Errorf("expected 225 (no plan fallback), got %v", got)
	}
}

func TestCascadeAddRejectsOutsideCenter(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when adding a circle whose center is outside the previous one")
		}
	}()
	c := NewCascade(nil)
	c.Add(TargetCircle{Center: geo.FromDeg(0, 0), RadiusDeg: 1})
	c.Add(TargetCircle{Center: geo.FromDeg(50, 50), RadiusDeg: 0.1})
}

func TestCascadeTargetReached(t *testing.T) {
	c := NewCascade([]TargetCircle{{Center: geo.FromDeg(10, 10), RadiusDeg: 0.01}})
	if !c.TargetReached(geo.FromDeg(10, 10)) {
		t.Errorf("expected position at the circle center to count as reached")
	}
	if c.TargetReached(geo.FromDeg(20, 20)) {
		t.Errorf("expected a far position not to count as reached")
	}
}

func TestStateRunNoWindFallsBackToSouthwest(t *testing.T) {
	s := &State{}
	got := s.Run(geo.FromDeg(10, 10), math.NaN(), 5)
	if got != 225 {
		t.Errorf("expected 225 fallback on NaN wind, got %v", got)
	}
}

func TestStateRunLowWindFallsBack(t *testing.T) {
	s := &State{}
	got := s.Run(geo.FromDeg(10, 10), 90, 0.1)
	if got != 225 {
		t.Errorf("expected 225 fallback on very low wind, got %v", got)
	}
}

func TestStateRunStormLatchesTack(t *testing.T) {
	s := &State{WindStrength: windstrength.Normal}
	s.Run(geo.FromDeg(10, 10), 45, 25) // crosses into storm
	if !s.Storm {
		t.Fatalf("expected storm to latch at 25 m/s wind")
	}
	first := s.Run(geo.FromDeg(10, 10), 45, 25)
	second := s.Run(geo.FromDeg(10, 10), 45, 25)
	if first != second {
		t.Errorf("expected storm heading to stay fixed tick to tick: %v vs %v", first, second)
	}
}

func TestStateRunStormPicksTackClosestToPlan(t *testing.T) {
	// No plan set, so the fallback plan bearing is 225deg. With true wind
	// from 180deg, the two broad-reach options are 230deg (+50) and
	// 130deg (-50); 230 is closer to the 225 plan bearing, so storm entry
	// must latch onto 230, not pick a side from the sign of alpha_true.
	// The classifier starts in Normal so one 25 m/s reading enters storm.
	s := &State{WindStrength: windstrength.Normal}
	got := s.Run(geo.FromDeg(10, 10), 180, 25)
	if math.Abs(got-230) > 1e-9 {
		t.Errorf("expected storm heading 230, got %v", got)
	}
}
