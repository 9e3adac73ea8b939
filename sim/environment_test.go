package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/traffic-sim/sim/trace"
)

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumLanes = 0
	env, err := New(cfg)
	assert.Nil(t, env)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReset_InitialObservation(t *testing.T) {
	env := quietEnv(t)
	obs := env.Reset()

	for i := 0; i < NumSensors; i++ {
		assert.Equal(t, 1.0, obs.Sensor(i), "sensor %d", i)
	}
	assert.Equal(t, 0.0, obs.Speed())
	assert.Equal(t, 0.5, obs.Position())
	assert.Equal(t, 2, env.Episode())
	assert.Zero(t, env.EpisodeTick())
	assert.Zero(t, env.Score())
}

func TestStep_UnknownActionLeavesStateUntouched(t *testing.T) {
	env := quietEnv(t)
	_, err := env.Step(Action(7))
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Zero(t, env.Tick())
}

func TestStep_NilControlWithoutProvider(t *testing.T) {
	env := quietEnv(t)
	_, err := env.Step(nil)
	assert.ErrorIs(t, err, ErrNoInputProvider)
}

func TestStep_FirstTickReward(t *testing.T) {
	env := quietEnv(t)
	res := mustStep(t, env, ActionAccelerate)

	assert.False(t, res.Terminal)
	assert.InDelta(t, 1+0.1*0.2-0.5, res.Reward, 1e-12)
	assert.InDelta(t, 0.2/MaxSpeed, res.Observation.Speed(), 1e-12)
	assert.Equal(t, res.Reward, env.Score())
}

func TestStep_AccelerateReachesTopSpeedExactly(t *testing.T) {
	// GIVEN a vehicle at rest on an empty road
	env := quietEnv(t)

	// WHEN it accelerates for 75 ticks
	var res StepResult
	for i := 0; i < 75; i++ {
		res = mustStep(t, env, ActionAccelerate)
		require.LessOrEqual(t, env.Vehicle().Speed, MaxSpeed)
	}

	// THEN speed lands exactly on the cap and stays there
	assert.Equal(t, MaxSpeed, env.Vehicle().Speed)
	assert.Equal(t, 1.0, res.Observation.Speed())
	mustStep(t, env, ActionAccelerate)
	assert.Equal(t, MaxSpeed, env.Vehicle().Speed)
}

func TestStep_RollingDecayReachesZeroExactly(t *testing.T) {
	// GIVEN a vehicle cruising at top speed
	env := quietEnv(t)
	for i := 0; i < 75; i++ {
		mustStep(t, env, ActionAccelerate)
	}

	// WHEN no throttle is applied
	prev := env.Vehicle().Speed
	for i := 0; i < 150; i++ {
		mustStep(t, env, ActionNoop)
		got := env.Vehicle().Speed
		require.InDelta(t, prev-RollingDecel, got, 1e-9, "tick %d", i)
		prev = got
	}

	// THEN speed is exactly zero and stays there
	assert.Equal(t, 0.0, env.Vehicle().Speed)
	mustStep(t, env, ActionNoop)
	assert.Equal(t, 0.0, env.Vehicle().Speed)
}

func TestStep_ReverseFloor(t *testing.T) {
	tests := []struct {
		name    string
		reverse bool
		control Control
		want    float64
	}{
		{"programmatic stops at zero", false, ActionBrake, 0},
		{"programmatic with allow_reverse", true, ActionBrake, -BrakeRate},
		{"interactive may reverse", false, DeviceControl{Provider: holdKey(ActionBrake)}, -BrakeRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AllowReverse = tt.reverse
			env, err := New(cfg, WithRandomSource(&scriptedSource{}))
			require.NoError(t, err)

			mustStep(t, env, tt.control)

			assert.Equal(t, tt.want, env.Vehicle().Speed)
		})
	}
}

func TestStep_ProgrammaticBrakeAfterInteractiveReverse(t *testing.T) {
	// GIVEN a vehicle reversed to MinSpeed under interactive control
	env := quietEnv(t)
	reverse := DeviceControl{Provider: holdKey(ActionBrake)}
	for i := 0; i < 10; i++ {
		mustStep(t, env, reverse)
	}
	require.Equal(t, MinSpeed, env.Vehicle().Speed)

	// WHEN programmatic control without allow_reverse brakes
	mustStep(t, env, ActionBrake)

	// THEN speed is held, braking never speeds the vehicle up
	assert.Equal(t, MinSpeed, env.Vehicle().Speed)
}

func TestStep_NilControlPollsProvider(t *testing.T) {
	polls := 0
	provider := InputProviderFunc(func() Action {
		polls++
		return ActionLeft
	})
	env := quietEnv(t, WithInputProvider(provider))

	mustStep(t, env, nil)

	assert.Equal(t, 1, polls)
	assert.Equal(t, 244.0, env.Vehicle().Position.X)
}

func TestStep_LateralClamp(t *testing.T) {
	env := quietEnv(t)
	minX, maxX := env.Road().DrivableRange(env.Vehicle().Width)

	for i := 0; i < 40; i++ {
		res := mustStep(t, env, ActionLeft)
		require.False(t, res.Terminal, "side walls are out of reach once clamped")
	}
	assert.Equal(t, minX, env.Vehicle().Position.X)
	assert.InDelta(t, 20.0/240.0, mustStep(t, env, ActionNoop).Observation.Position(), 1e-12)

	for i := 0; i < 80; i++ {
		mustStep(t, env, ActionRight)
	}
	assert.Equal(t, maxX, env.Vehicle().Position.X)
}

func TestStep_CollisionIsDetectedOnContactTick(t *testing.T) {
	// GIVEN an obstacle whose left edge touches the right side of the vehicle after one step right
	tr := trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	env := quietEnv(t, WithTrace(tr))
	require.NoError(t, env.InjectObstacle(Rect{X: 276, Y: 400, W: 10, H: 20}))

	// WHEN the vehicle steps right once, touching edges only
	res := mustStep(t, env, ActionRight)

	// THEN it is still alive
	require.False(t, res.Terminal)
	require.True(t, env.Vehicle().Alive)

	// WHEN it steps right again into the obstacle
	res = mustStep(t, env, ActionRight)

	// THEN the crash happens on exactly this tick
	assert.True(t, res.Terminal)
	assert.Equal(t, CrashReward, res.Reward)
	assert.False(t, env.Vehicle().Alive)
	require.Len(t, tr.Collisions, 1)
	assert.Equal(t, int64(2), tr.Collisions[0].Tick)
	assert.Equal(t, trace.CollisionWall, tr.Collisions[0].Kind)
}

func TestStep_ActorOverlapIsImmediateCrash(t *testing.T) {
	env := quietEnv(t)
	id, err := env.InjectActor(1, 450, 0)
	require.NoError(t, err)

	res := mustStep(t, env, ActionNoop)

	assert.True(t, res.Terminal)
	assert.Equal(t, CrashReward, res.Reward)
	assert.True(t, env.Metrics().Crashed)
	assert.Equal(t, int64(1), env.Metrics().CrashTick)
	assert.Equal(t, id, env.Actors()[0].ID, "traffic freezes once the vehicle is down")
}

func TestStep_AfterTerminationProgrammatic(t *testing.T) {
	// GIVEN a crashed vehicle under programmatic control
	env := quietEnv(t)
	_, err := env.InjectActor(1, 450, 0)
	require.NoError(t, err)
	mustStep(t, env, ActionNoop)
	frozen := env.Vehicle()

	// WHEN it keeps being stepped
	for i := 0; i < 2*CrashSettleTicks; i++ {
		res := mustStep(t, env, ActionAccelerate)

		// THEN every step is terminal with zero reward and nothing moves
		require.True(t, res.Terminal)
		require.Equal(t, 0.0, res.Reward)
	}
	assert.Equal(t, 1, env.Episode(), "programmatic control never auto-resets")
	assert.Equal(t, frozen.Position, env.Vehicle().Position)
	assert.Equal(t, frozen.Speed, env.Vehicle().Speed)
	assert.Equal(t, CrashReward, env.Score())
}

func TestStep_InteractiveAutoReset(t *testing.T) {
	// GIVEN an interactive session that crashes on its first tick
	env := quietEnv(t, WithInputProvider(holdKey(ActionNoop)))
	require.NoError(t, env.InjectObstacle(Rect{X: 240, Y: 400, W: 20, H: 20}))
	res := mustStep(t, env, nil)
	require.True(t, res.Terminal)

	// WHEN the settle delay passes
	for i := 0; i < CrashSettleTicks; i++ {
		res = mustStep(t, env, nil)
		require.True(t, res.Terminal, "tick %d", i)
		require.Equal(t, 1, env.Episode())
	}
	res = mustStep(t, env, nil)

	// THEN the environment resets itself and hands back a fresh observation
	assert.False(t, res.Terminal)
	assert.Equal(t, 0.0, res.Reward)
	assert.Equal(t, 2, env.Episode())
	assert.True(t, env.Vehicle().Alive)
	assert.Equal(t, 0.5, res.Observation.Position())
	assert.Len(t, env.Obstacles(), 1, "injected obstacles survive reset")
}

func TestStep_FollowingActorSlowsBehindLeader(t *testing.T) {
	// GIVEN two actors in lane 0: a slow leader and a faster follower 170 behind it
	env := quietEnv(t)
	_, err := env.InjectActor(0, 100, 3)
	require.NoError(t, err)
	_, err = env.InjectActor(0, 390, 10)
	require.NoError(t, err)

	// WHEN the vehicle idles in lane 1
	prev := 10.0
	for i := 0; i < 40; i++ {
		mustStep(t, env, ActionNoop)
		actors := env.Actors()
		require.Len(t, actors, 2)
		leader, follower := actors[0], actors[1]

		// THEN the leader holds its speed and the follower brakes monotonically to leader-1
		require.Equal(t, 3.0, leader.Speed)
		require.True(t, follower.Speed < prev || follower.Speed == 2, "tick %d speed %v", i, follower.Speed)
		require.GreaterOrEqual(t, follower.Speed, 2.0)
		prev = follower.Speed
	}
	assert.Equal(t, 2.0, env.Actors()[1].Speed)
}

func TestStep_LaneOffsetWraps(t *testing.T) {
	env := quietEnv(t, WithInputProvider(holdKey(ActionAccelerate)))
	for i := 0; i < 200; i++ {
		mustStep(t, env, nil)
		off := env.LaneOffset()
		require.GreaterOrEqual(t, off, 0.0)
		require.Less(t, off, LaneMarkPeriod)
	}

	// Reversing scrolls the other way and still wraps into range.
	env = quietEnv(t, WithInputProvider(holdKey(ActionBrake)))
	for i := 0; i < 50; i++ {
		mustStep(t, env, nil)
		off := env.LaneOffset()
		require.GreaterOrEqual(t, off, 0.0)
		require.Less(t, off, LaneMarkPeriod)
	}
}

func TestStep_DistanceAccumulatesSpeed(t *testing.T) {
	env := quietEnv(t)
	want := 0.0
	for i := 0; i < 30; i++ {
		mustStep(t, env, ActionAccelerate)
		want += env.Vehicle().Speed
	}
	assert.InDelta(t, want, env.Vehicle().DistanceTraveled, 1e-9)
	assert.InDelta(t, want, env.Metrics().Distance, 1e-9)
}

func TestAccessors_ReturnCopies(t *testing.T) {
	env := quietEnv(t)
	_, err := env.InjectActor(0, 100, 5)
	require.NoError(t, err)
	require.NoError(t, env.InjectObstacle(Rect{X: 0, Y: 0, W: 1, H: 1}))

	env.Actors()[0].Speed = 99
	env.Obstacles()[0].W = 99
	env.Road().Walls[0].W = 99

	assert.Equal(t, 5.0, env.Actors()[0].Speed)
	assert.Equal(t, 1.0, env.Obstacles()[0].W)
	assert.Equal(t, 130.0, env.Road().Walls[0].W)
}

func TestInject_RejectsBadInput(t *testing.T) {
	env := quietEnv(t)
	_, err := env.InjectActor(3, 0, 5)
	assert.Error(t, err)
	_, err = env.InjectActor(0, 0, -1)
	assert.Error(t, err)
	assert.Error(t, env.InjectObstacle(Rect{W: 0, H: 5}))
}

func TestEnvironments_AreIndependent(t *testing.T) {
	a, b := quietEnv(t), quietEnv(t)
	for i := 0; i < 20; i++ {
		mustStep(t, a, ActionAccelerate)
	}
	assert.Zero(t, b.Tick())
	assert.Zero(t, b.Vehicle().Speed)
}

// === Properties over long randomized runs ===

// busyConfig spawns traffic from the first tick.
func busyConfig(seed int64) Config {
	cfg := DefaultConfig()
	cfg.ActivationDistance = 0
	cfg.Seed = seed
	return cfg
}

type tickLog struct {
	obs    Observation
	reward float64
	term   bool
}

// runRandom drives env with a seeded random controller for n ticks,
// resetting on termination, and calls check after every tick.
func runRandom(t *testing.T, env *Environment, seed int64, n int, check func(StepResult)) []tickLog {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	logs := make([]tickLog, 0, n)
	for i := 0; i < n; i++ {
		// Bias toward accelerating so traffic actually spawns.
		a := ActionAccelerate
		if rng.Float64() < 0.5 {
			a = Action(rng.Intn(NumActions))
		}
		res := mustStep(t, env, a)
		if check != nil {
			check(res)
		}
		logs = append(logs, tickLog{res.Observation, res.Reward, res.Terminal})
		if res.Terminal {
			env.Reset()
		}
	}
	return logs
}

func TestProperty_Determinism(t *testing.T) {
	// GIVEN two environments with the same seed and the same action stream
	a, err := New(busyConfig(11))
	require.NoError(t, err)
	b, err := New(busyConfig(11))
	require.NoError(t, err)

	// THEN observations, rewards and terminal flags match exactly
	la := runRandom(t, a, 5, 3000, nil)
	lb := runRandom(t, b, 5, 3000, nil)
	assert.Equal(t, la, lb)
}

func TestProperty_SeedsDiverge(t *testing.T) {
	ta := trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	tb := trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	a, err := New(busyConfig(1), WithTrace(ta))
	require.NoError(t, err)
	b, err := New(busyConfig(2), WithTrace(tb))
	require.NoError(t, err)

	runRandom(t, a, 5, 3000, nil)
	runRandom(t, b, 5, 3000, nil)

	require.NotEmpty(t, ta.Spawns)
	assert.NotEqual(t, ta.Spawns, tb.Spawns)
}

func TestProperty_Bounds(t *testing.T) {
	env, err := New(busyConfig(23))
	require.NoError(t, err)
	minX, maxX := env.Road().DrivableRange(env.Vehicle().Width)
	sawActors := false

	runRandom(t, env, 9, 5000, func(res StepResult) {
		v := env.Vehicle()
		require.GreaterOrEqual(t, v.Position.X, minX)
		require.LessOrEqual(t, v.Position.X, maxX)
		require.GreaterOrEqual(t, v.Speed, 0.0)
		require.LessOrEqual(t, v.Speed, MaxSpeed)

		for i, x := range res.Observation {
			require.GreaterOrEqual(t, x, 0.0, "obs[%d]", i)
			require.LessOrEqual(t, x, 1.0, "obs[%d]", i)
		}
		for _, s := range v.Sensors {
			require.GreaterOrEqual(t, s.Distance, 0)
			require.LessOrEqual(t, s.Distance, SensorRange)
		}
		for _, a := range env.Actors() {
			sawActors = true
			require.GreaterOrEqual(t, a.Speed, 0.0, "actor %d", a.ID)
			require.LessOrEqual(t, a.Speed, a.SpawnSpeed, "actor %d", a.ID)
		}
		require.GreaterOrEqual(t, env.LaneOffset(), 0.0)
		require.Less(t, env.LaneOffset(), LaneMarkPeriod)
	})
	assert.True(t, sawActors, "run should have produced traffic")
}

func TestProperty_ScoreIsSumOfRewards(t *testing.T) {
	env, err := New(busyConfig(4))
	require.NoError(t, err)
	sum := 0.0
	for i := 0; i < 500; i++ {
		res := mustStep(t, env, ActionAccelerate)
		sum += res.Reward
		if res.Terminal {
			break
		}
	}
	assert.InDelta(t, sum, env.Score(), 1e-9)
	assert.InDelta(t, sum, env.Metrics().Score, 1e-9)
}
