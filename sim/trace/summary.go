package trace

// TraceSummary aggregates statistics from an EpisodeTrace.
type TraceSummary struct {
	SpawnAttempts    int
	SpawnsAccepted   int
	SpawnsRejected   int
	Culls            int
	Collisions       int
	MeanSpawnSpeed   float64               // over accepted spawns
	LaneDistribution map[int]int           // lane -> accepted spawns
	EdgeDistribution map[SpawnEdge]int     // edge -> accepted spawns
	CollisionKinds   map[CollisionKind]int // kind -> collisions
}

// Summarize computes aggregate statistics from an EpisodeTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *EpisodeTrace) *TraceSummary {
	summary := &TraceSummary{
		LaneDistribution: make(map[int]int),
		EdgeDistribution: make(map[SpawnEdge]int),
		CollisionKinds:   make(map[CollisionKind]int),
	}
	if et == nil {
		return summary
	}

	summary.SpawnAttempts = len(et.Spawns)
	totalSpeed := 0.0
	for _, s := range et.Spawns {
		if !s.Accepted {
			summary.SpawnsRejected++
			continue
		}
		summary.SpawnsAccepted++
		totalSpeed += s.Speed
		summary.LaneDistribution[s.Lane]++
		summary.EdgeDistribution[s.Edge]++
	}
	if summary.SpawnsAccepted > 0 {
		summary.MeanSpawnSpeed = totalSpeed / float64(summary.SpawnsAccepted)
	}

	summary.Culls = len(et.Culls)
	summary.Collisions = len(et.Collisions)
	for _, c := range et.Collisions {
		summary.CollisionKinds[c.Kind]++
	}

	return summary
}
