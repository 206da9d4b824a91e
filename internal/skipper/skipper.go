// Package skipper implements the strategic layer: following a cascade of
// nested target circles toward a plan, with an exponential-radius
// expansion fallback when the boat has drifted outside the whole plan,
// and a storm override that locks onto a fixed broad-reach tack.
package skipper

import (
	"math"

	"github.com/avalonsailing/helmsman/internal/angle"
	"github.com/avalonsailing/helmsman/internal/geo"
	"github.com/avalonsailing/helmsman/internal/windstrength"
)

// TargetCircle is a circular waypoint: reaching within RadiusDeg of
// Center counts as "arrived", advancing the cascade to the next circle
// toward the destination.
type TargetCircle struct {
	Center   geo.LatLon
	RadiusDeg float64
}

// In reports whether pos lies within the circle, scaled by expansion
// (expansion=1 is the nominal radius; >1 is used by the cascade's
// storm-drift fallback search).
func (c TargetCircle) In(pos geo.LatLon, expansion float64) bool {
	_, distM := geo.SphericalShortestPath(c.Center, pos)
	radiusM := c.RadiusDeg * math.Pi / 180 * geo.EarthRadiusM * expansion
	return distM <= radiusM
}

// ToDeg returns the bearing (degrees) from pos to the circle's center.
func (c TargetCircle) ToDeg(pos geo.LatLon) float64 {
	bearingRad, _ := geo.SphericalShortestPath(pos, c.Center)
	return bearingRad * 180 / math.Pi
}

// Cascade is an ordered chain of target circles, each one's center
// required to lie inside its predecessor. Index 0 is the final
// destination; later circles lead toward it from farther out.
type Cascade struct {
	circles []TargetCircle
}

// NewCascade builds a cascade from the given circles, final destination
// first. Each circle's center must lie inside the one before it
// (enforced by Add, not here, to keep simple fixture construction
// convenient in tests).
func NewCascade(circles []TargetCircle) *Cascade {
	return &Cascade{circles: circles}
}

// Add appends a circle one step farther from the destination. It panics
// if the new circle's center does not lie inside the previous circle,
// since that would make the chain impossible to walk monotonically.
func (c *Cascade) Add(next TargetCircle) {
	if len(c.circles) > 0 {
		prev := c.circles[len(c.circles)-1]
		if !prev.In(next.Center, 1) {
			panic("skipper: cascade circle center must lie inside the previous circle")
		}
	}
	c.circles = append(c.circles, next)
}

// TargetReached reports whether pos is inside the final destination
// circle (index 0) of the cascade.
func (c *Cascade) TargetReached(pos geo.LatLon) bool {
	if len(c.circles) == 0 {
		return false
	}
	return c.circles[0].In(pos, 1)
}

// ToDeg returns the bearing (degrees) to steer toward, given the boat's
// current position: the bearing to the center of the smallest-index
// circle the boat is inside. If the boat is outside every circle (blown
// off-plan), the whole chain's radii are progressively expanded until
// one contains the boat, and the bearing to the center of the
// smallest-index circle that then contains it is returned.
func (c *Cascade) ToDeg(pos geo.LatLon) float64 {
	if len(c.circles) == 0 {
		return 225 // "No plan! Going south west."
	}

	for i := range c.circles {
		if c.circles[i].In(pos, 1) {
			return c.circles[i].ToDeg(pos)
		}
	}

	for expand := 1.1; expand < 1e6; expand *= 1.1 {
		for i := range c.circles {
			if c.circles[i].In(pos, expand) {
				return c.circles[i].ToDeg(pos)
			}
		}
	}

	// Degenerate cascade: fall back to the bearing toward the nearest
	// circle's center.
	return c.nearestCircleBearing(pos)
}

func (c *Cascade) bearingTowardNextInner(pos geo.LatLon, index int) float64 {
	if index == 0 {
		return c.circles[0].ToDeg(pos)
	}
	return c.circles[index-1].ToDeg(pos)
}

func (c *Cascade) nearestCircleBearing(pos geo.LatLon) float64 {
	best := math.MaxFloat64
	bestBearing := 225.0
	for _, circle := range c.circles {
		_, distM := geo.SphericalShortestPath(pos, circle.Center)
		if distM < best {
			best = distM
			bestBearing = circle.ToDeg(pos)
		}
	}
	return bestBearing
}

// State is the single owned value carrying everything the strategic
// layer needs across ticks, rather than module-level global statics.
type State struct {
	OldAlphaStarDeg float64
	WindStrength    windstrength.Range
	Storm           bool
	StormSignPlus   bool
	Plan            *Cascade
}

// Run computes the next desired heading (degrees) given the boat's
// position and the true wind, walking the plan cascade and applying the
// storm override when the wind strength classifier has latched into
// Storm.
func (s *State) Run(pos geo.LatLon, alphaTrueDeg, windSpeedMS float64) (alphaStarDeg float64) {
	if math.IsNaN(alphaTrueDeg) || math.IsNaN(windSpeedMS) {
		return 225 // "No true wind info so far, going SW."
	}
	if math.IsNaN(pos.LatRad) || math.IsNaN(pos.LonRad) {
		return 225 // "No position info so far, going SW."
	}
	const knotsToMS = 0.514444
	if windSpeedMS < 1*knotsToMS {
		return 225 // "Not enough wind strength to get a reliable heading."
	}

	var planned float64
	if s.Plan != nil {
		planned = s.Plan.ToDeg(pos)
	} else {
		planned = 225
	}

	prevStrength := s.WindStrength
	s.WindStrength = windstrength.Classify(s.WindStrength, windSpeedMS)
	transitionToStorm := prevStrength != windstrength.Storm && s.WindStrength == windstrength.Storm
	if transitionToStorm {
		s.Storm = true
	} else if s.WindStrength != windstrength.Storm {
		s.Storm = false
	}

	// Broad reach at a fixed offset from the true wind, on whichever
	// tack is closest to the plan bearing at the moment the storm
	// begins, held fixed for the storm's duration so the boat doesn't
	// hunt for the plan bearing in heavy air.
	const broadReachOffsetDeg = 50
	if transitionToStorm {
		plus := angle.NormalizeDeg(alphaTrueDeg + broadReachOffsetDeg)
		minus := angle.NormalizeDeg(alphaTrueDeg - broadReachOffsetDeg)
		d1 := angle.DeltaOldNewDeg(planned, plus)
		d2 := angle.DeltaOldNewDeg(planned, minus)
		s.StormSignPlus = math.Abs(d1) < math.Abs(d2)
	}

	if s.Storm {
		if s.StormSignPlus {
			planned = angle.NormalizeDeg(alphaTrueDeg + broadReachOffsetDeg)
		} else {
			planned = angle.NormalizeDeg(alphaTrueDeg - broadReachOffsetDeg)
		}
	}

	s.OldAlphaStarDeg = planned
	return planned
}
