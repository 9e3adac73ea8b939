package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two environments with the same SimulationKey, identical configuration and
// the same control sequence MUST produce bit-for-bit identical trajectories.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemTraffic drives spawn timing, lane and speed draws.
	// Uses the master seed directly.
	SubsystemTraffic = "traffic"

	// SubsystemPalette draws render-only actor color seeds. Kept apart from
	// SubsystemTraffic so cosmetic draws never shift traffic decisions.
	SubsystemPalette = "palette"

	// SubsystemPolicy seeds the built-in driving policy of a headless
	// episode, so random exploration never consumes traffic draws.
	SubsystemPolicy = "policy"
)

// SubsystemEpisode returns the subsystem name used to derive the seed of
// episode N in multi-episode runs.
func SubsystemEpisode(id int) string {
	return fmt.Sprintf("episode_%d", id)
}

// RandomSource is the randomness the traffic lifecycle consumes.
// *rand.Rand satisfies it; tests inject scripted sources to pin spawns.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemTraffic: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.DeriveSeed(name)))
	p.subsystems[name] = rng
	return rng
}

// DeriveSeed returns the seed ForSubsystem would use for name without
// creating or caching a generator.
func (p *PartitionedRNG) DeriveSeed(name string) int64 {
	if name == SubsystemTraffic {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
