package helmsman

import (
	"github.com/avalonsailing/helmsman/internal/controllerio"
)

// InitialController waits for the compass and boat speed to settle after
// the drive self-test before handing control to Normal sailing.
type InitialController struct {
	bearing Probe
	ticks   int
	done    bool
}

// NewInitialController builds an idle InitialController.
func NewInitialController() *InitialController {
	return &InitialController{}
}

func (c *InitialController) Name() string { return "initial" }

func (c *InitialController) Entry(filtered controllerio.FilteredMeasurements) {
	c.bearing.Reset()
	c.ticks = 0
	c.done = false
}

func (c *InitialController) Exit() {}

func (c *InitialController) Done() bool { return c.done }

// bearingStableRad is the maximum spread tolerated between the running
// mean bearing and the current reading before the heading is considered
// stable enough to sail on.
const (
	bearingStableRad  = 3 * 3.14159265358979 / 180
	minStableSpeedMS  = 0.3
	minStableTicks    = 30 // 3s at 100ms
)

func (c *InitialController) Run(in controllerio.ControllerInput, filtered controllerio.FilteredMeasurements) controllerio.ControllerOutput {
	var out controllerio.ControllerOutput

	if !filtered.Valid {
		c.bearing.Reset()
		c.ticks = 0
		return out
	}

	c.bearing.Measure(filtered.PhiZBoatRad)
	stable := absf(filtered.PhiZBoatRad-c.bearing.Value()) < bearingStableRad
	if stable && filtered.MagBoatMS > minStableSpeedMS {
		c.ticks++
	} else {
		c.ticks = 0
	}
	if c.ticks >= minStableTicks {
		c.done = true
	}

	// Hold station (sail eased, rudder centered) while waiting.
	out.DrivesReference.GammaSailRad = 1.4 // roughly fully eased
	return out
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
