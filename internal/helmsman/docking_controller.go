package helmsman

import (
	"github.com/avalonsailing/helmsman/internal/controllerio"
	"github.com/avalonsailing/helmsman/internal/ruddercontrol"
)

// DockingController steers a fixed heading at reduced sail so the boat can
// be approached safely, then reports Done once speed has dropped below a
// station-keeping threshold.
type DockingController struct {
	rudder      *ruddercontrol.Controller
	targetRad   float64
	lowSpeedTicks int
	done        bool
}

const dockingLowSpeedMS = 0.2
const dockingLowSpeedTicks = 50 // 5s

// NewDockingController builds a DockingController with its own rudder loop.
func NewDockingController() *DockingController {
	return &DockingController{
		rudder: ruddercontrol.NewController(2.0, 0.05, 0.5, 0.6),
	}
}

func (c *DockingController) Name() string { return "docking" }

func (c *DockingController) Entry(filtered controllerio.FilteredMeasurements) {
	c.targetRad = filtered.PhiZBoatRad
	c.lowSpeedTicks = 0
	c.done = false
	c.rudder.Reset()
}

func (c *DockingController) Exit() {}

func (c *DockingController) Done() bool { return c.done }

func (c *DockingController) Run(in controllerio.ControllerInput, filtered controllerio.FilteredMeasurements) controllerio.ControllerOutput {
	var out controllerio.ControllerOutput

	positiveSpeed := filtered.MagBoatMS
	if positiveSpeed < 0.1 {
		positiveSpeed = 0.1
	}
	rudder := c.rudder.Control(c.targetRad, 0, filtered.PhiZBoatRad, filtered.OmegaBoatRadS, positiveSpeed)
	out.DrivesReference.GammaRudderRad = rudder
	out.DrivesReference.GammaRudderLRad = rudder
	out.DrivesReference.GammaSailRad = 1.4 // eased, minimal drive

	if filtered.MagBoatMS < dockingLowSpeedMS {
		c.lowSpeedTicks++
	} else {
		c.lowSpeedTicks = 0
	}
	if c.lowSpeedTicks >= dockingLowSpeedTicks {
		c.done = true
	}
	return out
}
