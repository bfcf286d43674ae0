package sim

import (
	"fmt"

	"github.com/toth-andor/drone/internal/control"
)

// Phase is one segment of a scripted flight plan: a pilot command held for a
// fixed duration.
type Phase struct {
	Duration float64 // seconds
	Throttle float64
	YawRate  float64
	Pitch    float64
	Roll     float64
}

// Plan is a scripted pilot. It plays its phases back to back and holds the
// last one once the script runs out, so a simulation may outlive its plan.
type Plan struct {
	phases []planPhase
	total  float64
}

type planPhase struct {
	until float64 // end of the phase on the plan timeline in seconds
	cmd   control.Command
}

// NewPlan validates the phases and compiles them into a Plan. Phase command
// axes go through the same validation as live pilot input, so a plan cannot
// inject values the controller would reject.
func NewPlan(phases []Phase) (Plan, error) {
	if len(phases) == 0 {
		return Plan{}, fmt.Errorf("sim: plan needs at least one phase")
	}

	p := Plan{phases: make([]planPhase, 0, len(phases))}
	for i, ph := range phases {
		if ph.Duration <= 0 {
			return Plan{}, fmt.Errorf("sim: plan phase %d: duration must be positive, got %v", i, ph.Duration)
		}

		cmd, err := control.NewCommand(ph.Throttle, ph.YawRate, ph.Pitch, ph.Roll)
		if err != nil {
			return Plan{}, fmt.Errorf("sim: plan phase %d: %w", i, err)
		}

		p.total += ph.Duration
		p.phases = append(p.phases, planPhase{until: p.total, cmd: cmd})
	}

	return p, nil
}

// At returns the command scripted for simulation time t. Times before the
// plan map to the first phase and times past its end to the last one.
func (p Plan) At(t float64) control.Command {
	for _, ph := range p.phases {
		if t < ph.until {
			return ph.cmd
		}
	}

	return p.phases[len(p.phases)-1].cmd
}

// Total returns the scripted duration in seconds.
func (p Plan) Total() float64 {
	return p.total
}
