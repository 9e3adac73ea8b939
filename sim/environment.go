// sim/environment.go
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/traffic-sim/sim/trace"
)

// CrashSettleTicks is how long a crashed vehicle under interactive control
// stays down before the environment resets itself.
const CrashSettleTicks = 30

// StepResult is what one tick hands back to the caller.
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminal    bool
}

// Option customizes an Environment at construction.
type Option func(*Environment)

// WithRandomSource replaces the traffic RNG subsystem, typically with a
// scripted source that pins spawn decisions in tests.
func WithRandomSource(src RandomSource) Option {
	return func(e *Environment) { e.traffic = src }
}

// WithInputProvider sets the device polled when Step is called with a nil Control.
func WithInputProvider(p InputProvider) Option {
	return func(e *Environment) { e.input = p }
}

// WithTrace records spawn, cull and collision decisions into t.
func WithTrace(t *trace.EpisodeTrace) Option {
	return func(e *Environment) { e.trace = t }
}

// Environment is one independent simulation instance. It owns all mutable
// state; nothing is shared between instances.
//
// Thread-safety: NOT thread-safe. Drive each instance from one goroutine.
type Environment struct {
	cfg     Config
	road    Road
	statics []Rect // injected static obstacles, kept across resets

	vehicle ControlledVehicle
	actors  []TrafficActor

	laneOffset    float64
	spawnCooldown int
	crashTicks    int
	score         float64
	tick          int64 // ticks since construction
	episodeTick   int64
	episode       int
	nextActorID   int
	warnedDone    bool

	rng     *PartitionedRNG
	traffic RandomSource
	palette *rand.Rand
	input   InputProvider
	trace   *trace.EpisodeTrace
	metrics EpisodeMetrics

	obstacles []Rect // scratch buffer for sensor scans
}

// New validates cfg and returns an environment in the ALIVE state with no
// traffic, ready for its first Step.
func New(cfg Config, opts ...Option) (*Environment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	e := &Environment{
		cfg:     cfg,
		road:    NewRoad(cfg),
		rng:     rng,
		traffic: rng.ForSubsystem(SubsystemTraffic),
		palette: rng.ForSubsystem(SubsystemPalette),
		actors:  make([]TrafficActor, 0, 16),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	logrus.Debugf("environment created: %d lanes, road x=%.1f width=%.1f, seed=%d",
		e.road.NumLanes, e.road.X, e.road.Width, cfg.Seed)
	return e, nil
}

// Reset reinitializes the controlled vehicle, clears traffic and zeroes the
// counters and score. The RNG streams continue; they are not reseeded.
func (e *Environment) Reset() Observation {
	e.vehicle = newControlledVehicle(e.cfg)
	e.actors = e.actors[:0]
	e.laneOffset = 0
	e.spawnCooldown = 0
	e.crashTicks = 0
	e.score = 0
	e.episodeTick = 0
	e.warnedDone = false
	e.episode++
	e.metrics = newEpisodeMetrics(e.episode)
	logrus.Infof("[tick %07d] episode %d started", e.tick, e.episode)
	return e.observe()
}

// Step advances the simulation by one fixed tick. A nil Control polls the
// configured InputProvider as interactive input. Collisions are reported
// through StepResult.Terminal; errors only signal misuse.
func (e *Environment) Step(c Control) (StepResult, error) {
	if c == nil {
		c = DeviceControl{Provider: e.input}
	}
	a, err := c.Resolve()
	if err != nil {
		return StepResult{}, fmt.Errorf("resolving control: %w", err)
	}
	interactive := c.Interactive()

	e.tick++
	e.episodeTick++
	v := &e.vehicle

	v.applyControl(a, e.speedFloor(interactive))
	v.clampTo(e.road.DrivableRange(v.Width))
	crashed := e.checkCollision()
	v.Sensors = scanSensors(v.Position, e.collectObstacles())

	if v.Alive {
		v.DistanceTraveled += v.Speed
		e.scrollLanes()
		e.updateLifecycle()
		e.updateTraffic()
	} else if !crashed {
		e.crashTicks++
		if interactive && e.crashTicks > CrashSettleTicks {
			logrus.Infof("[tick %07d] episode %d settled after crash, resetting", e.tick, e.episode)
			return StepResult{Observation: e.Reset()}, nil
		}
		if !interactive && !e.warnedDone {
			logrus.Warnf("[tick %07d] stepping episode %d after it terminated; call Reset", e.tick, e.episode)
			e.warnedDone = true
		}
	}

	reward, terminal := e.reward(crashed)
	e.score += reward
	e.metrics.record(e, a)
	return StepResult{Observation: e.observe(), Reward: reward, Terminal: terminal}, nil
}

func (e *Environment) speedFloor(interactive bool) float64 {
	if interactive || e.cfg.AllowReverse {
		return MinSpeed
	}
	return 0
}

// checkCollision kills the vehicle if its box overlaps a wall, an injected
// obstacle or a traffic actor. It reports true only on the tick of the crash.
func (e *Environment) checkCollision() bool {
	v := &e.vehicle
	if !v.Alive {
		return false
	}
	box := v.Rect()
	kind, actorID := trace.CollisionKind(""), -1
	for _, w := range e.road.Walls {
		if box.Intersects(w) {
			kind = trace.CollisionWall
			break
		}
	}
	if kind == "" {
		for _, w := range e.statics {
			if box.Intersects(w) {
				kind = trace.CollisionWall
				break
			}
		}
	}
	if kind == "" {
		for i := range e.actors {
			if box.Intersects(e.actors[i].Rect) {
				kind, actorID = trace.CollisionActor, e.actors[i].ID
				break
			}
		}
	}
	if kind == "" {
		return false
	}

	v.Alive = false
	logrus.Debugf("[tick %07d] episode %d crashed into %s (actor %d) at speed %.2f",
		e.tick, e.episode, kind, actorID, v.Speed)
	e.trace.RecordCollision(trace.CollisionRecord{
		Tick: e.tick, Episode: e.episode, Kind: kind, ActorID: actorID, Speed: v.Speed,
	})
	return true
}

// collectObstacles fills the scratch buffer with every rectangle a sensor ray can hit.
func (e *Environment) collectObstacles() []Rect {
	e.obstacles = append(e.obstacles[:0], e.road.Walls...)
	e.obstacles = append(e.obstacles, e.statics...)
	for i := range e.actors {
		e.obstacles = append(e.obstacles, e.actors[i].Rect)
	}
	return e.obstacles
}

// scrollLanes advances the cosmetic lane offset, wrapping in both directions.
func (e *Environment) scrollLanes() {
	e.laneOffset = math.Mod(e.laneOffset+e.vehicle.Speed, LaneMarkPeriod)
	if e.laneOffset < 0 {
		e.laneOffset += LaneMarkPeriod
	}
}

// InjectActor places a traffic actor centered at centerY in lane, bypassing
// the spawn controller. It returns the new actor's ID.
func (e *Environment) InjectActor(lane int, centerY, speed float64) (int, error) {
	if lane < 0 || lane >= e.road.NumLanes {
		return 0, fmt.Errorf("lane %d out of range [0, %d)", lane, e.road.NumLanes)
	}
	if speed < 0 {
		return 0, fmt.Errorf("actor speed must be non-negative, got %v", speed)
	}
	return e.addActor(lane, centerY, speed), nil
}

// InjectObstacle adds a static rectangle that blocks sensors and kills the
// vehicle on contact like a wall. Obstacles survive Reset.
func (e *Environment) InjectObstacle(r Rect) error {
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("obstacle size must be positive, got %vx%v", r.W, r.H)
	}
	e.statics = append(e.statics, r)
	return nil
}

// === Read accessors (value snapshots) ===

// Config returns the construction config.
func (e *Environment) Config() Config { return e.cfg }

// Road returns the corridor geometry.
func (e *Environment) Road() Road { return e.road.clone() }

// Obstacles returns the injected static obstacles.
func (e *Environment) Obstacles() []Rect { return append([]Rect(nil), e.statics...) }

// Vehicle returns a copy of the controlled vehicle, sensors included.
func (e *Environment) Vehicle() ControlledVehicle { return e.vehicle }

// Actors returns a copy of the live traffic actors.
func (e *Environment) Actors() []TrafficActor { return append([]TrafficActor(nil), e.actors...) }

// Sensors returns the most recent sensor scan.
func (e *Environment) Sensors() [NumSensors]SensorReading { return e.vehicle.Sensors }

// LaneOffset is the lane-marking scroll position in [0, LaneMarkPeriod).
func (e *Environment) LaneOffset() float64 { return e.laneOffset }

// Score is the sum of rewards in the current episode.
func (e *Environment) Score() float64 { return e.score }

// Tick counts steps since construction.
func (e *Environment) Tick() int64 { return e.tick }

// EpisodeTick counts steps since the last reset.
func (e *Environment) EpisodeTick() int64 { return e.episodeTick }

// Episode is the 1-based index of the current episode.
func (e *Environment) Episode() int { return e.episode }

// Metrics returns the statistics of the current episode so far.
func (e *Environment) Metrics() EpisodeMetrics { return e.metrics }

// Key returns the SimulationKey the environment was seeded with.
func (e *Environment) Key() SimulationKey { return e.rng.Key() }
