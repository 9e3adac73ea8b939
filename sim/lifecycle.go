package sim

import (
	"math"
	"slices"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/inference-sim/traffic-sim/sim/trace"
)

// Spawn and cull parameters.
const (
	SpawnCooldownTicks = 40   // ticks after a spawn before the next trial
	SpawnProbability   = 0.05 // Bernoulli trial per tick once cooled down
	SpawnSpeedMin      = 5.0
	SpawnSpeedMax      = 12.0
	OvertakeMargin     = 5.0   // faster than the vehicle by this much spawns behind
	SpawnMargin        = 100.0 // off-screen distance of the spawn point
	SpawnSafetyGap     = 200.0 // min vertical gap to an actor already in the lane
	laneMatchTolerance = 10.0
	CullBehind         = 2000.0 // past the bottom edge
	CullAhead          = 300.0  // past the top edge
)

// updateLifecycle runs the spawn state machine for one tick.
func (e *Environment) updateLifecycle() {
	if e.vehicle.DistanceTraveled <= e.cfg.ActivationDistance {
		return
	}
	e.spawnCooldown++
	if e.spawnCooldown <= SpawnCooldownTicks || e.traffic.Float64() >= SpawnProbability {
		return
	}

	lane := e.traffic.Intn(e.road.NumLanes)
	speed := SpawnSpeedMin + e.traffic.Float64()*(SpawnSpeedMax-SpawnSpeedMin)

	// Faster traffic enters from behind and overtakes; the rest appears
	// ahead and is caught up with.
	edge, y := trace.EdgeAhead, -SpawnMargin
	if speed > e.vehicle.Speed+OvertakeMargin {
		edge, y = trace.EdgeBehind, e.road.Height+SpawnMargin
	}

	record := trace.SpawnRecord{Tick: e.tick, ActorID: -1, Lane: lane, Speed: speed, Edge: edge}
	if blocker, blocked := e.laneBlocked(lane, y); blocked {
		record.Reason = "lane occupied"
		e.trace.RecordSpawn(record)
		logrus.Debugf("[tick %07d] spawn in lane %d rejected: actor %d within %.0f", e.tick, lane, blocker, SpawnSafetyGap)
		return
	}

	record.ActorID = e.addActor(lane, y, speed)
	record.Accepted = true
	e.spawnCooldown = 0
	e.metrics.Spawns++
	e.trace.RecordSpawn(record)
	logrus.Debugf("[tick %07d] spawned actor %d in lane %d (%s) at speed %.2f", e.tick, record.ActorID, lane, edge, speed)
}

// laneBlocked reports the first actor in lane whose center lies within
// SpawnSafetyGap of centerY.
func (e *Environment) laneBlocked(lane int, centerY float64) (int, bool) {
	laneX := e.road.LaneCenter(lane)
	for i := range e.actors {
		c := e.actors[i].Rect.Center()
		if math.Abs(c.X-laneX) < laneMatchTolerance && math.Abs(c.Y-centerY) < SpawnSafetyGap {
			return e.actors[i].ID, true
		}
	}
	return 0, false
}

func (e *Environment) addActor(lane int, centerY, speed float64) int {
	id := e.nextActorID
	e.nextActorID++
	e.actors = append(e.actors, TrafficActor{
		ID:         id,
		Lane:       lane,
		Rect:       RectFromCenter(r2.Vec{X: e.road.LaneCenter(lane), Y: centerY}, e.cfg.CarWidth, e.cfg.CarHeight),
		Speed:      speed,
		SpawnSpeed: speed,
		ColorSeed:  e.palette.Int63(),
	})
	return id
}

// updateTraffic runs car-following and relative motion for each actor in
// index order, culling actors that can no longer re-enter the view.
func (e *Environment) updateTraffic() {
	lead := obstacle{rect: e.vehicle.Rect(), speed: e.vehicle.Speed}
	for i := 0; i < len(e.actors); {
		follow(i, e.actors, lead)
		a := e.actors[i]
		if a.Rect.Y > e.road.Height+CullBehind || a.Rect.Y < -CullAhead {
			e.actors = slices.Delete(e.actors, i, i+1)
			e.metrics.Culls++
			e.trace.RecordCull(trace.CullRecord{Tick: e.tick, ActorID: a.ID, Y: a.Rect.Y})
			logrus.Debugf("[tick %07d] culled actor %d at y=%.1f", e.tick, a.ID, a.Rect.Y)
			continue
		}
		i++
	}
}
