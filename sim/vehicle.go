package sim

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Controlled vehicle kinematics, per tick.
const (
	MaxSpeed     = 15.0
	MinSpeed     = -5.0 // reverse floor, available to interactive control or AllowReverse
	Acceleration = 0.2
	BrakeRate    = 0.5
	RollingDecel = 0.1
	SteerStep    = 6.0

	// HeadingBiasDeg is the cosmetic tilt shown while steering. It never
	// affects sensors or the axis-aligned collision box.
	HeadingBiasDeg = 5.0

	// startOffsetY places the vehicle this far above the bottom edge.
	startOffsetY = 150.0

	// speedEpsilon snaps a speed onto its target to absorb float drift.
	speedEpsilon = 1e-9
)

// Heading is the discrete visual heading bias of the controlled vehicle.
type Heading int

const (
	HeadingStraight Heading = iota
	HeadingLeft
	HeadingRight
)

// Degrees returns the visual tilt: +5 left, -5 right, 0 straight.
func (h Heading) Degrees() float64 {
	switch h {
	case HeadingLeft:
		return HeadingBiasDeg
	case HeadingRight:
		return -HeadingBiasDeg
	}
	return 0
}

// ControlledVehicle is the single agent-driven car.
type ControlledVehicle struct {
	Position         r2.Vec
	Heading          Heading
	Speed            float64
	Width, Height    float64
	Alive            bool
	DistanceTraveled float64
	Sensors          [NumSensors]SensorReading
}

func newControlledVehicle(cfg Config) ControlledVehicle {
	v := ControlledVehicle{
		Position: r2.Vec{X: cfg.GameWidth / 2, Y: cfg.GameHeight - startOffsetY},
		Width:    cfg.CarWidth,
		Height:   cfg.CarHeight,
		Alive:    true,
	}
	for i := range v.Sensors {
		v.Sensors[i] = SensorReading{End: v.Position, Distance: SensorRange}
	}
	return v
}

// Rect is the axis-aligned bounding box centered on Position.
func (v *ControlledVehicle) Rect() Rect {
	return RectFromCenter(v.Position, v.Width, v.Height)
}

// applyControl integrates one tick of steering and throttle. floor is the
// lowest speed braking may reach. Dead vehicles ignore control.
func (v *ControlledVehicle) applyControl(a Action, floor float64) {
	if !v.Alive {
		return
	}
	switch a {
	case ActionLeft:
		v.Position.X -= SteerStep
		v.Heading = HeadingLeft
	case ActionRight:
		v.Position.X += SteerStep
		v.Heading = HeadingRight
	default:
		v.Heading = HeadingStraight
	}

	switch a {
	case ActionAccelerate:
		v.Speed = approach(v.Speed, MaxSpeed, Acceleration)
	case ActionBrake:
		// Below the floor (reverse left over from interactive control) braking holds speed.
		if v.Speed > floor {
			v.Speed = approach(v.Speed, floor, BrakeRate)
		}
	default:
		v.Speed = approach(v.Speed, 0, RollingDecel)
	}
}

// clampTo keeps the vehicle center inside [minX, maxX].
func (v *ControlledVehicle) clampTo(minX, maxX float64) {
	v.Position.X = lo.Clamp(v.Position.X, minX, maxX)
}

// approach moves v toward target by at most step, landing exactly on target
// once within speedEpsilon of it.
func approach(v, target, step float64) float64 {
	switch {
	case v < target:
		v = math.Min(v+step, target)
	case v > target:
		v = math.Max(v-step, target)
	}
	if math.Abs(target-v) < speedEpsilon {
		return target
	}
	return v
}
