// Package referenceplan generates the smooth, bounded-acceleration
// reference trajectory a maneuver follows: accelerate, cruise, decelerate,
// then hold for a short stabilization period.
package referenceplan

import "math"

const (
	samplingPeriodS     = 0.1
	durationNormalS     = 4.0
	stabilizationPeriodS = 1.2
	omegaMaxSailRadS    = 0.3
)

// ReferenceValues tracks one in-progress (or idle) maneuver plan.
type ReferenceValues struct {
	phiZRad, phiZFinalRad         float64
	gammaSailRad, gammaSailFinalRad float64
	omegaRadS                     float64
	accRadS2                      float64
	omegaSailIncrementRad         float64

	tick            int
	allTicks        int
	stabilizationTicks int
}

// New builds an idle ReferenceValues.
func New() *ReferenceValues {
	r := &ReferenceValues{tick: 1_000_000}
	r.stabilizationTicks = int(math.Round((stabilizationPeriodS + samplingPeriodS/2) / samplingPeriodS))
	return r
}

// SetReferenceValues seeds the current and "final" cached state without
// starting a plan; used when (re)entering NormalController or re-seeding
// the plan's start point just before calling NewPlan.
func (r *ReferenceValues) SetReferenceValues(phiZRad, gammaSailRad float64) {
	r.phiZRad = phiZRad
	r.phiZFinalRad = phiZRad
	r.gammaSailRad = gammaSailRad
	r.gammaSailFinalRad = gammaSailRad
	r.tick = 1_000_000
}

// RunningPlan reports whether a maneuver plan is currently in progress
// (including its post-turn stabilization hold).
func (r *ReferenceValues) RunningPlan() bool {
	return r.tick < r.allTicks+r.stabilizationTicks
}

// NewPlan starts a new maneuver plan to reach phiZ1Rad (symmetric
// heading) while sweeping the sail by deltaGammaSailRad, sized for the
// boat's current speed.
func (r *ReferenceValues) NewPlan(phiZ1Rad, deltaGammaSailRad, speedMS float64) {
	phiZ1 := symmetricRad(phiZ1Rad)
	r.gammaSailFinalRad = r.gammaSailRad + deltaGammaSailRad
	r.phiZFinalRad = phiZ1

	deltaPhi := deltaOldNewRad(r.phiZRad, phiZ1)

	durationSail := math.Abs(deltaGammaSailRad) / omegaMaxSailRadS
	accMax := math.Max(0.25*speedMS*speedMS, 0.1)
	durationAcc := math.Sqrt(math.Abs(deltaPhi) / accMax * 36.0 / 5.0)

	duration := math.Max(durationNormalS, math.Max(durationSail, durationAcc))
	ticks := math.Ceil(duration / (6 * samplingPeriodS))
	duration = ticks * 6 * samplingPeriodS

	r.allTicks = int(6 * ticks)
	r.accRadS2 = deltaPhi * 36.0 / (5.0 * duration * duration)
	r.omegaSailIncrementRad = deltaGammaSailRad / float64(r.allTicks)
	r.tick = 0
}

// GetReferenceValues advances the plan by one tick and returns the
// instantaneous reference heading, turn rate and sail angle.
func (r *ReferenceValues) GetReferenceValues() (phiZStarRad, omegaZStarRadS, gammaSailStarRad float64) {
	if r.tick >= r.allTicks+r.stabilizationTicks {
		r.phiZRad = r.phiZFinalRad
		r.gammaSailRad = symmetricRad(r.gammaSailFinalRad)
		return r.phiZRad, 0, r.gammaSailRad
	}

	var a float64
	switch {
	case r.tick < r.allTicks/6:
		a = r.accRadS2
	case r.tick < r.allTicks*5/6:
		a = 0
	case r.tick < r.allTicks:
		a = -r.accRadS2
	default: // stabilization hold
		a = 0
		r.omegaRadS = 0
		r.omegaSailIncrementRad = 0
	}

	r.omegaRadS += a * samplingPeriodS
	r.phiZRad = symmetricRad(r.phiZRad + r.omegaRadS*samplingPeriodS)
	r.gammaSailRad += r.omegaSailIncrementRad

	if r.tick < 1_000_000 {
		r.tick++
	}

	return r.phiZRad, r.omegaRadS, symmetricRad(r.gammaSailRad)
}

func symmetricRad(rad float64) float64 {
	for rad <= -math.Pi {
		rad += 2 * math.Pi
	}
	for rad > math.Pi {
		rad -= 2 * math.Pi
	}
	return rad
}

func deltaOldNewRad(oldRad, newRad float64) float64 {
	return symmetricRad(newRad - oldRad)
}
