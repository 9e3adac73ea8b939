package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/traffic-sim/sim/trace"
)

func TestPartitionedRNG_TrafficUsesMasterSeed(t *testing.T) {
	// GIVEN seed 42
	rng := NewPartitionedRNG(NewSimulationKey(42))

	// WHEN the traffic stream is compared with a generator seeded with 42
	traffic := rng.ForSubsystem(SubsystemTraffic)
	direct := rand.New(rand.NewSource(42))

	// THEN they agree, so a config seed reproduces traffic without the RNG layer
	for i := 0; i < 10; i++ {
		require.Equal(t, direct.Float64(), traffic.Float64(), "draw %d", i)
	}
}

func TestPartitionedRNG_DeriveSeed_MatchesForSubsystem(t *testing.T) {
	for _, name := range []string{SubsystemTraffic, SubsystemPalette, SubsystemPolicy, SubsystemEpisode(3)} {
		t.Run(name, func(t *testing.T) {
			derived := rand.New(rand.NewSource(NewPartitionedRNG(NewSimulationKey(7)).DeriveSeed(name)))
			cached := NewPartitionedRNG(NewSimulationKey(7)).ForSubsystem(name)
			for i := 0; i < 5; i++ {
				require.Equal(t, derived.Int63(), cached.Int63(), "draw %d", i)
			}
		})
	}
}

func TestPartitionedRNG_DeriveSeed_EpisodesDiffer(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	seen := make(map[int64]int)
	for id := 0; id < 64; id++ {
		s := rng.DeriveSeed(SubsystemEpisode(id))
		prev, dup := seen[s]
		require.False(t, dup, "episodes %d and %d derived the same seed %d", prev, id, s)
		seen[s] = id
	}
	assert.NotContains(t, seen, int64(42), "no episode reuses the master seed")
}

func TestPartitionedRNG_PolicyDrawsLeaveTrafficAlone(t *testing.T) {
	// GIVEN two generators for the same key
	busy := NewPartitionedRNG(NewSimulationKey(9))
	idle := NewPartitionedRNG(NewSimulationKey(9))

	// WHEN one of them feeds a random policy for a while
	for i := 0; i < 500; i++ {
		busy.ForSubsystem(SubsystemPolicy).Intn(NumActions)
	}

	// THEN both traffic streams still start at the same place
	for i := 0; i < 20; i++ {
		require.Equal(t, idle.ForSubsystem(SubsystemTraffic).Float64(),
			busy.ForSubsystem(SubsystemTraffic).Float64(), "draw %d", i)
	}
	assert.NotEqual(t, busy.DeriveSeed(SubsystemPolicy), busy.DeriveSeed(SubsystemTraffic))
}

// spawnDecision strips actor identity from a spawn trial so runs can be
// compared on the traffic stream alone.
type spawnDecision struct {
	Tick     int64
	Lane     int
	Speed    float64
	Edge     trace.SpawnEdge
	Accepted bool
}

func driveAndTrace(t *testing.T, env *Environment, tr *trace.EpisodeTrace, ticks int) []spawnDecision {
	t.Helper()
	for i := 0; i < ticks; i++ {
		mustStep(t, env, ActionAccelerate)
	}
	out := make([]spawnDecision, 0, len(tr.Spawns))
	for _, s := range tr.Spawns {
		out = append(out, spawnDecision{s.Tick, s.Lane, s.Speed, s.Edge, s.Accepted})
	}
	return out
}

func TestEnvironment_PaletteDrawsDoNotShiftTraffic(t *testing.T) {
	// GIVEN two environments with the same seed, one of which has had its
	// actor color stream advanced before driving
	newTraced := func() (*Environment, *trace.EpisodeTrace) {
		tr := trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
		env, err := New(busyConfig(5), WithTrace(tr))
		require.NoError(t, err)
		return env, tr
	}
	plain, plainTrace := newTraced()
	shifted, shiftedTrace := newTraced()
	for i := 0; i < 1000; i++ {
		shifted.palette.Int63()
	}

	// WHEN both accelerate for the same number of ticks
	want := driveAndTrace(t, plain, plainTrace, 1500)
	got := driveAndTrace(t, shifted, shiftedTrace, 1500)

	// THEN spawn timing, lanes, speeds and edges are identical
	require.NotEmpty(t, want, "run should spawn traffic")
	assert.Equal(t, want, got)

	// AND only the cosmetic colors differ
	a, b := plain.Actors(), shifted.Actors()
	require.Equal(t, len(a), len(b))
	if len(a) > 0 {
		assert.NotEqual(t, a[0].ColorSeed, b[0].ColorSeed)
	}
}

func TestEnvironment_EpisodeSeedReproducesTraffic(t *testing.T) {
	// GIVEN the seed a headless run derives for episode 2
	seed := NewPartitionedRNG(NewSimulationKey(42)).DeriveSeed(SubsystemEpisode(2))

	// WHEN two environments are built from it
	run := func() []spawnDecision {
		tr := trace.NewEpisodeTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
		env, err := New(busyConfig(seed), WithTrace(tr))
		require.NoError(t, err)
		return driveAndTrace(t, env, tr, 1000)
	}

	// THEN they make the same spawn decisions
	assert.Equal(t, run(), run())
}
