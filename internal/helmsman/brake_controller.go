package helmsman

import (
	"github.com/avalonsailing/helmsman/internal/controllerio"
)

// BrakeController eases the sail fully and centers the rudder to shed
// speed as quickly as possible, for emergencies or a commanded stop.
type BrakeController struct {
	lowSpeedTicks int
	done          bool
}

const brakeLowSpeedMS = 0.1
const brakeLowSpeedTicks = 100 // 10s

// NewBrakeController builds an idle BrakeController.
func NewBrakeController() *BrakeController {
	return &BrakeController{}
}

func (c *BrakeController) Name() string { return "brake" }

func (c *BrakeController) Entry(filtered controllerio.FilteredMeasurements) {
	c.lowSpeedTicks = 0
	c.done = false
}

func (c *BrakeController) Exit() {}

func (c *BrakeController) Done() bool { return c.done }

func (c *BrakeController) Run(in controllerio.ControllerInput, filtered controllerio.FilteredMeasurements) controllerio.ControllerOutput {
	var out controllerio.ControllerOutput
	out.DrivesReference.GammaSailRad = 1.571 // fully eased, spills all drive
	out.DrivesReference.GammaRudderRad = 0
	out.DrivesReference.GammaRudderLRad = 0

	if filtered.MagBoatMS < brakeLowSpeedMS {
		c.lowSpeedTicks++
	} else {
		c.lowSpeedTicks = 0
	}
	if c.lowSpeedTicks >= brakeLowSpeedTicks {
		c.done = true
	}
	return out
}
