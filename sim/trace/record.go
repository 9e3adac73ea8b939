// Package trace provides decision-trace recording for episode analysis.
// It has no dependencies on sim/ and stores pure data types.
package trace

// SpawnEdge says which off-screen edge a traffic actor entered from.
type SpawnEdge string

const (
	// EdgeAhead is the top edge; the controlled vehicle closes in on the actor.
	EdgeAhead SpawnEdge = "ahead"
	// EdgeBehind is the bottom edge; the actor overtakes the controlled vehicle.
	EdgeBehind SpawnEdge = "behind"
)

// SpawnRecord captures a single spawn attempt that passed the Bernoulli trial.
type SpawnRecord struct {
	Tick     int64
	ActorID  int // -1 when rejected
	Lane     int
	Speed    float64
	Edge     SpawnEdge
	Accepted bool
	Reason   string
}

// CullRecord captures an actor removed after leaving the view for good.
type CullRecord struct {
	Tick    int64
	ActorID int
	Y       float64
}

// CollisionKind names what the controlled vehicle hit.
type CollisionKind string

const (
	CollisionWall  CollisionKind = "wall"
	CollisionActor CollisionKind = "actor"
)

// CollisionRecord captures the tick an episode ended in a crash.
type CollisionRecord struct {
	Tick    int64
	Episode int
	Kind    CollisionKind
	ActorID int // -1 for walls
	Speed   float64
}
