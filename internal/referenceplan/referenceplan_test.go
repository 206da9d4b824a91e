package referenceplan

import (
	"math"
	"testing"
)

func TestNewPlanReachesTarget(t *testing.T) {
	r := New()
	r.SetReferenceValues(0, 0)
	r.NewPlan(math.Pi/2, 0.5, 3)

	var phi float64
	for i := 0; i < 10000 && r.RunningPlan(); i++ {
		phi, _, _ = r.GetReferenceValues()
	}
	if math.Abs(phi-math.Pi/2) > 1e-6 {
		t.Errorf("plan did not converge to target heading: got %v want %v", phi, math.Pi/2)
	}
}

func TestNewPlanMinimumDuration(t *testing.T) {
	r := New()
	r.SetReferenceValues(0, 0)
	r.NewPlan(0.01, 0.01, 3) // tiny turn, should still take at least the normal minimum duration
	ticks := 0
	for r.RunningPlan() && ticks < 10000 {
		r.GetReferenceValues()
		ticks++
	}
	minTicks := int(durationNormalS / samplingPeriodS)
	if ticks < minTicks {
		t.Errorf("plan finished in %d ticks, expected at least %d", ticks, minTicks)
	}
}

func TestRunningPlanFalseWhenIdle(t *testing.T) {
	r := New()
	if r.RunningPlan() {
		t.Errorf("a freshly constructed plan should not report running")
	}
}
