package sim

import "math"

// Car-following parameters.
const (
	SameLaneThreshold = 30.0  // |Δx| between centers below this means same lane
	EngagementRange   = 400.0 // gaps at or beyond this are ignored
	StrongBrakeGap    = 150.0
	MediumBrakeGap    = 250.0
	StrongBrake       = 0.8
	MediumBrake       = 0.4
	LightBrake        = 0.2
	TrafficAccel      = 0.1
)

// TrafficActor is a non-player vehicle. Its speed stays in [0, SpawnSpeed].
type TrafficActor struct {
	ID         int
	Lane       int
	Rect       Rect
	Speed      float64
	SpawnSpeed float64 // personal ceiling, fixed at spawn
	ColorSeed  int64   // render-only
}

// obstacle is the part of a vehicle the follower logic looks at.
type obstacle struct {
	rect  Rect
	speed float64
}

// leader finds the nearest obstacle ahead of actors[self] in its lane among
// the controlled vehicle and every other actor. Ahead means a smaller top
// edge, since forward is decreasing y.
func leader(self int, actors []TrafficActor, vehicle obstacle) (gap, speed float64, found bool) {
	me := actors[self].Rect
	cx := me.Center().X
	gap = math.Inf(1)

	consider := func(o obstacle) {
		if math.Abs(o.rect.Center().X-cx) >= SameLaneThreshold || o.rect.Y >= me.Y {
			return
		}
		if d := me.Y - o.rect.Bottom(); d < gap {
			gap, speed, found = d, o.speed, true
		}
	}

	consider(vehicle)
	for i := range actors {
		if i == self {
			continue
		}
		consider(obstacle{rect: actors[i].Rect, speed: actors[i].Speed})
	}
	return gap, speed, found
}

// brakeRate picks the deceleration tier for a gap inside EngagementRange.
func brakeRate(gap float64) float64 {
	switch {
	case gap < StrongBrakeGap:
		return StrongBrake
	case gap < MediumBrakeGap:
		return MediumBrake
	default:
		return LightBrake
	}
}

// follow updates actors[self].Speed with the car-following policy and then
// moves it in the frame of the controlled vehicle.
func follow(self int, actors []TrafficActor, vehicle obstacle) {
	a := &actors[self]
	gap, leadSpeed, found := leader(self, actors, vehicle)

	if found && gap < EngagementRange {
		limit := math.Max(0, leadSpeed-1)
		if a.Speed > limit {
			a.Speed = math.Max(a.Speed-brakeRate(gap), limit)
		}
	} else if a.Speed < a.SpawnSpeed {
		a.Speed = math.Min(a.Speed+TrafficAccel, a.SpawnSpeed)
	}

	a.Rect.Y += vehicle.speed - a.Speed
}
