// Package normalcontrol implements the tactical control loop run once
// the helmsman is in its Normal state: it shapes the skipper's desired
// heading into a sailable one, detects and plans maneuvers, and drives
// the rudder and sail actuator references.
package normalcontrol

import (
	"math"

	"github.com/avalonsailing/helmsman/internal/controllerio"
	"github.com/avalonsailing/helmsman/internal/maneuver"
	"github.com/avalonsailing/helmsman/internal/pointofsail"
	"github.com/avalonsailing/helmsman/internal/referenceplan"
	"github.com/avalonsailing/helmsman/internal/ruddercontrol"
	"github.com/avalonsailing/helmsman/internal/sailcontrol"
)

const alphaStarRateLimitRadPerTick = 4 * math.Pi / 180 * 0.1 // 4 deg/s at a 100ms tick
const giveUpTicks = int(120.0 / 0.1)                          // 120s of near-zero speed

// Controller is the NormalController: it owns the reference-value
// planner, the anti-wind-gust filter, the rudder law, and the small bits
// of state (previous restricted heading, give-up counter) the original
// kept as instance fields rather than function statics.
type Controller struct {
	ref           *referenceplan.ReferenceValues
	antiWindGust  pointofsail.AntiWindGust
	rudder        *ruddercontrol.Controller

	prevAlphaStarRestrictedRad float64
	alphaStarRestrictedRad     float64

	giveUpCounter int
}

// NewController builds a NormalController with the given rudder gains.
func NewController(kp, ki, kd, maxRudderRad float64) *Controller {
	return &Controller{
		ref:    referenceplan.New(),
		rudder: ruddercontrol.NewController(kp, ki, kd, maxRudderRad),
	}
}

// Entry (re)seeds all rate-limited/restricted state to the boat's
// current heading and resets the rudder integrator and give-up counter,
// called once when the helmsman transitions into Normal.
func (c *Controller) Entry(filtered controllerio.FilteredMeasurements) {
	heading := symmetricRad(filtered.PhiZBoatRad)
	c.prevAlphaStarRestrictedRad = heading
	c.alphaStarRestrictedRad = heading
	c.ref.SetReferenceValues(heading, 0)
	c.giveUpCounter = 0
	c.rudder.Reset()
}

// IsJump reports whether the change from old to new restricted heading
// is large enough that it must be the result of a genuine new command
// (a maneuver) rather than ordinary tracking noise: a jump bigger than
// 1.8x the width of the jibe zone.
func IsJump(oldRad, newRad float64) bool {
	const jibeZoneRad = 165 * math.Pi / 180
	jibeZoneWidth := math.Pi - jibeZoneRad
	return math.Abs(deltaOldNewRad(oldRad, newRad)) > 1.8*jibeZoneWidth
}

// shapeAlphaStar rate-limits the skipper's requested heading, restricts
// it onto a sailable heading, and reports whether doing so produced a
// jump relative to the previously restricted heading.
func (c *Controller) shapeAlphaStar(alphaStarRad, alphaTrueRad float64) (restrictedRad float64, jump bool, sector pointofsail.Sector) {
	limited := limitRateWrapRad(c.alphaStarRestrictedRad, alphaStarRad, alphaStarRateLimitRadPerTick)
	restricted, sector := pointofsail.BestSailableHeading(limited, c.alphaStarRestrictedRad, alphaTrueRad)
	jump = IsJump(c.alphaStarRestrictedRad, restricted)
	c.alphaStarRestrictedRad = restricted
	return restricted, jump, sector
}

// Run executes one tick of the NormalController, producing actuator
// references and updating out.Status's tack/jibe counters.
func (c *Controller) Run(alphaStarRad float64, filtered controllerio.FilteredMeasurements, oldGammaSailRad float64, out *controllerio.ControllerOutput) {
	restricted, jump, sector := c.shapeAlphaStar(alphaStarRad, filtered.AlphaTrueRad)

	var phiStar, omegaStar, gammaSailStar float64

	switch {
	case !c.ref.RunningPlan() && jump:
		_, deltaGammaSail, mtype := maneuver.NextGammaSailWithOldGammaSail(oldGammaSailRad, c.prevAlphaStarRestrictedRad, restricted, filtered.AlphaTrueRad, filtered.MagTrueMS)
		switch mtype {
		case maneuver.Tack:
			out.Status.Tacks++
		case maneuver.Jibe:
			out.Status.Jibes++
		}
		c.ref.SetReferenceValues(c.prevAlphaStarRestrictedRad, oldGammaSailRad)
		c.ref.NewPlan(restricted, deltaGammaSail, filtered.MagBoatMS)
		phiStar, omegaStar, gammaSailStar = c.ref.GetReferenceValues()
	case c.ref.RunningPlan():
		phiStar, omegaStar, gammaSailStar = c.ref.GetReferenceValues()
	default:
		phiStar, omegaStar = restricted, 0
		gammaSailStar = sailcontrol.BestStabilizedGammaSail(filtered.AlphaAppRad, filtered.MagAppMS)
	}

	correction := c.antiWindGust.Correct(sector, filtered.AlphaAppRad, filtered.MagAppMS)
	phiStar = symmetricRad(phiStar + correction)

	positiveSpeed := math.Max(0.25, filtered.MagBoatMS)
	rudder := c.rudder.Control(phiStar, omegaStar, filtered.PhiZBoatRad, filtered.OmegaBoatRadS, positiveSpeed)

	out.DrivesReference.GammaRudderRad = rudder
	out.DrivesReference.GammaRudderLRad = rudder
	out.DrivesReference.GammaSailRad = gammaSailStar

	c.prevAlphaStarRestrictedRad = restricted
}

// GiveUp increments (or resets) the near-zero-speed counter and reports
// whether the boat has been stalled for more than 120 seconds, a signal
// the helmsman uses to fall back to a more conservative state.
func (c *Controller) GiveUp(filtered controllerio.FilteredMeasurements) bool {
	if filtered.MagBoatMS < 0.03 {
		c.giveUpCounter++
	} else {
		c.giveUpCounter = 0
	}
	return c.giveUpCounter > giveUpTicks
}

func limitRateWrapRad(prevRad, targetRad, maxStepRad float64) float64 {
	delta := deltaOldNewRad(prevRad, targetRad)
	if delta > maxStepRad {
		delta = maxStepRad
	} else if delta < -maxStepRad {
		delta = -maxStepRad
	}
	return symmetricRad(prevRad + delta)
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
