package sim

// LaneMarkPeriod is the repeat distance of the dashed lane markings; the
// lane-scroll offset wraps within [0, LaneMarkPeriod).
const LaneMarkPeriod = 40.0

// Road is the fixed corridor of equal-width lanes centered in the play area,
// bounded left and right by static walls.
type Road struct {
	NumLanes  int
	LaneWidth float64
	X         float64 // left edge of lane 0
	Width     float64 // NumLanes * LaneWidth
	Height    float64 // play area height
	Walls     []Rect  // static obstacles; the two side walls come first
}

// NewRoad lays out the corridor for a validated config.
func NewRoad(cfg Config) Road {
	width := cfg.RoadWidth()
	x := (cfg.GameWidth - width) / 2
	return Road{
		NumLanes:  cfg.NumLanes,
		LaneWidth: cfg.LaneWidth,
		X:         x,
		Width:     width,
		Height:    cfg.GameHeight,
		Walls: []Rect{
			{X: 0, Y: 0, W: x, H: cfg.GameHeight},
			{X: x + width, Y: 0, W: cfg.GameWidth - (x + width), H: cfg.GameHeight},
		},
	}
}

// LaneCenter returns the x coordinate of the middle of lane i.
func (r Road) LaneCenter(i int) float64 {
	return r.X + float64(i)*r.LaneWidth + r.LaneWidth/2
}

// LaneBoundaries returns the x coordinates of the interior lane dividers.
func (r Road) LaneBoundaries() []float64 {
	out := make([]float64, 0, r.NumLanes-1)
	for i := 1; i < r.NumLanes; i++ {
		out = append(out, r.X+float64(i)*r.LaneWidth)
	}
	return out
}

// DrivableRange returns the interval the center of a vehicle of the given
// width may occupy without leaving the road.
func (r Road) DrivableRange(carWidth float64) (minX, maxX float64) {
	return r.X + carWidth/2, r.X + r.Width - carWidth/2
}

func (r Road) clone() Road {
	c := r
	c.Walls = append([]Rect(nil), r.Walls...)
	return c
}
