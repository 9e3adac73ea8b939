package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures spawn, cull and collision decisions.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions
}

// EpisodeTrace collects decision records while an environment runs.
// Records accumulate across resets; each carries its own tick.
type EpisodeTrace struct {
	Config     TraceConfig
	Spawns     []SpawnRecord
	Culls      []CullRecord
	Collisions []CollisionRecord
}

// NewEpisodeTrace creates an EpisodeTrace ready for recording.
func NewEpisodeTrace(config TraceConfig) *EpisodeTrace {
	return &EpisodeTrace{
		Config:     config,
		Spawns:     make([]SpawnRecord, 0),
		Culls:      make([]CullRecord, 0),
		Collisions: make([]CollisionRecord, 0),
	}
}

// RecordSpawn appends a spawn decision record.
func (et *EpisodeTrace) RecordSpawn(record SpawnRecord) {
	if et == nil || !et.Config.Enabled() {
		return
	}
	et.Spawns = append(et.Spawns, record)
}

// RecordCull appends a cull record.
func (et *EpisodeTrace) RecordCull(record CullRecord) {
	if et == nil || !et.Config.Enabled() {
		return
	}
	et.Culls = append(et.Culls, record)
}

// RecordCollision appends a collision record.
func (et *EpisodeTrace) RecordCollision(record CollisionRecord) {
	if et == nil || !et.Config.Enabled() {
		return
	}
	et.Collisions = append(et.Collisions, record)
}
