package sim

import "github.com/samber/lo"

// Observation layout: NumSensors normalized sensor distances, then speed,
// then lateral position.
const (
	ObsSpeedIndex    = NumSensors
	ObsPositionIndex = NumSensors + 1
	ObservationSize  = NumSensors + 2
)

// Reward shaping.
const (
	CrashReward      = -100.0
	BaseReward       = 1.0
	SpeedRewardScale = 0.1
	StallSpeed       = 2.0 // below this the stall penalty applies
	StallPenalty     = 0.5
)

// Observation is the fixed-length, fixed-order state vector handed to a
// controller. Sensor entries lie in [0,1]; speed is speed/MaxSpeed (negative
// while reversing); position is the center's fraction of the road width.
type Observation [ObservationSize]float64

// Slice copies the observation into a new slice.
func (o Observation) Slice() []float64 {
	out := make([]float64, ObservationSize)
	copy(out, o[:])
	return out
}

// Float32 converts the observation for float32 consumers such as neural nets.
func (o Observation) Float32() []float32 {
	out := make([]float32, ObservationSize)
	for i, v := range o {
		out[i] = float32(v)
	}
	return out
}

// Sensor returns the normalized reading of ray i.
func (o Observation) Sensor(i int) float64 { return o[i] }

// Speed returns the normalized speed.
func (o Observation) Speed() float64 { return o[ObsSpeedIndex] }

// Position returns the normalized lateral position.
func (o Observation) Position() float64 { return o[ObsPositionIndex] }

// Observation returns the current state vector without advancing time.
func (e *Environment) Observation() Observation { return e.observe() }

func (e *Environment) observe() Observation {
	var o Observation
	for i, r := range e.vehicle.Sensors {
		o[i] = lo.Clamp(float64(r.Distance)/SensorRange, 0, 1)
	}
	o[ObsSpeedIndex] = e.vehicle.Speed / MaxSpeed
	o[ObsPositionIndex] = (e.vehicle.Position.X - e.road.X) / e.road.Width
	return o
}

// TickReward is the reward of a tick survived at the given speed.
func TickReward(speed float64) float64 {
	r := BaseReward + SpeedRewardScale*speed
	if speed < StallSpeed {
		r -= StallPenalty
	}
	return r
}

// reward returns the tick's reward and terminal flag. crashed is true only
// on the tick the collision was detected.
func (e *Environment) reward(crashed bool) (float64, bool) {
	switch {
	case crashed:
		return CrashReward, true
	case !e.vehicle.Alive:
		return 0, true
	default:
		return TickReward(e.vehicle.Speed), false
	}
}
