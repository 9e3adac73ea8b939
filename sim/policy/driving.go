package policy

import (
	"fmt"
	"math/rand"

	"github.com/inference-sim/traffic-sim/sim"
)

// Policy maps an observation to the action for the next tick.
type Policy interface {
	Act(obs sim.Observation) sim.Action
}

// Idle never touches the controls.
type Idle struct{}

func (Idle) Act(sim.Observation) sim.Action { return sim.ActionNoop }

// Random picks uniformly from the action space.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a Random policy drawing from rng.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Act(sim.Observation) sim.Action {
	return sim.Action(r.rng.Intn(sim.NumActions))
}

// Sensor indices in sim.SensorOffsets order.
const (
	sensorFront      = 0
	sensorFrontLeft  = 1
	sensorLeft       = 2
	sensorFrontRight = 7
	sensorRight      = 6
)

// Cruise holds a target speed and dodges into the more open side when the
// road ahead closes in, braking when neither side is free.
type Cruise struct {
	TargetSpeed float64 // normalized, fraction of sim.MaxSpeed
	SafeFront   float64 // normalized front reading below which it reacts
	SideClear   float64 // normalized side reading needed to change lanes
}

// NewCruise returns a Cruise policy with tuned defaults.
func NewCruise() *Cruise {
	return &Cruise{TargetSpeed: 0.8, SafeFront: 0.75, SideClear: 0.35}
}

func (c *Cruise) Act(obs sim.Observation) sim.Action {
	if obs.Sensor(sensorFront) < c.SafeFront {
		left := obs.Sensor(sensorFrontLeft)
		right := obs.Sensor(sensorFrontRight)
		switch {
		case left >= right && left > obs.Sensor(sensorFront) && obs.Sensor(sensorLeft) > c.SideClear:
			return sim.ActionLeft
		case right > obs.Sensor(sensorFront) && obs.Sensor(sensorRight) > c.SideClear:
			return sim.ActionRight
		default:
			return sim.ActionBrake
		}
	}
	if obs.Speed() < c.TargetSpeed {
		return sim.ActionAccelerate
	}
	return sim.ActionNoop
}

// ValidPolicies is the set of recognized policy names.
var ValidPolicies = map[string]bool{"idle": true, "random": true, "cruise": true}

// NewPolicy creates a driving policy by name. rng feeds stochastic policies.
func NewPolicy(name string, rng *rand.Rand) (Policy, error) {
	switch name {
	case "idle":
		return Idle{}, nil
	case "random":
		return NewRandom(rng), nil
	case "cruise":
		return NewCruise(), nil
	default:
		return nil, fmt.Errorf("unknown policy %q; valid policies: [idle, random, cruise]", name)
	}
}
