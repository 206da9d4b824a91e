package helmsman

import (
	"github.com/avalonsailing/helmsman/internal/controllerio"
	"github.com/avalonsailing/helmsman/internal/normalcontrol"
)

// normalAdapter wraps normalcontrol.Controller so it satisfies the
// State/NormalState interfaces this package defines: normalcontrol's Run
// takes the skipper's heading and the previous sail angle as separate
// arguments rather than bundling them into ControllerInput, and it never
// reports itself Done (Normal only leaves on give-up or a docking/brake
// command, both handled directly by Helmsman.Tick).
type normalAdapter struct {
	controller   *normalcontrol.Controller
	lastFiltered controllerio.FilteredMeasurements
}

// NewNormalAdapter builds the State/NormalState view of a NormalController.
func NewNormalAdapter(controller *normalcontrol.Controller) NormalState {
	return &normalAdapter{controller: controller}
}

func (a *normalAdapter) Name() string { return "normal" }

func (a *normalAdapter) Entry(filtered controllerio.FilteredMeasurements) {
	a.controller.Entry(filtered)
}

func (a *normalAdapter) Exit() {}

func (a *normalAdapter) Done() bool { return false }

func (a *normalAdapter) Run(in controllerio.ControllerInput, filtered controllerio.FilteredMeasurements) controllerio.ControllerOutput {
	var out controllerio.ControllerOutput
	a.controller.Run(in.AlphaStarRad, filtered, in.Drives.GammaSailRad, &out)
	a.lastFiltered = filtered
	return out
}

// GiveUpReached advances and checks the stall counter against the most
// recent tick's filtered measurements. Must be called after Run for the
// same tick to see up-to-date state, which is exactly how Helmsman.Tick
// uses it.
func (a *normalAdapter) GiveUpReached() bool {
	return a.controller.GiveUp(a.lastFiltered)
}
