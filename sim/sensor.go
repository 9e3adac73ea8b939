package sim

import (
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// NumSensors is the number of rays in the proximity array.
	NumSensors = 8
	// SensorRange caps every reading.
	SensorRange = 200
	// SensorStep is the distance the probe advances per march.
	SensorStep = 3.0
	// probeSize is the side of the square probe tested against obstacles.
	probeSize = 4.0
)

// SensorOffsets are the ray angles in degrees, measured counter-clockwise
// from screen-up. The basis never rotates with the heading bias.
var SensorOffsets = [NumSensors]float64{0, 45, 90, 135, 180, -135, -90, -45}

// SensorLabels names each ray for dashboards, in SensorOffsets order.
var SensorLabels = [NumSensors]string{"Front", "F-Left", "Left", "R-Left", "Rear", "R-Right", "Right", "F-Right"}

// SensorReading is where one ray stopped and how far that is from the
// vehicle center.
type SensorReading struct {
	End      r2.Vec
	Distance int
}

// sensorDirections holds the unit vectors for SensorOffsets, screen coordinates.
var sensorDirections = func() [NumSensors]r2.Vec {
	var dirs [NumSensors]r2.Vec
	for i, deg := range SensorOffsets {
		rad := (90 + deg) * math.Pi / 180
		dirs[i] = r2.Vec{X: math.Cos(rad), Y: -math.Sin(rad)}
	}
	return dirs
}()

// scanSensors casts all rays from origin against the obstacle rectangles.
// Only the stopping distance matters, so obstacle order is irrelevant.
func scanSensors(origin r2.Vec, obstacles []Rect) [NumSensors]SensorReading {
	var out [NumSensors]SensorReading
	for i, dir := range sensorDirections {
		out[i] = castRay(origin, dir, obstacles)
	}
	return out
}

// castRay marches a probe from origin along dir until it hits an obstacle or
// has traveled SensorRange.
func castRay(origin, dir r2.Vec, obstacles []Rect) SensorReading {
	// Drop obstacles outside the ray's swept box; results are unchanged.
	far := r2.Add(origin, r2.Scale(SensorRange+SensorStep, dir))
	swept := Rect{X: origin.X, Y: origin.Y, W: probeSize, H: probeSize}.
		Union(Rect{X: far.X, Y: far.Y, W: probeSize, H: probeSize})
	near := lo.Filter(obstacles, func(r Rect, _ int) bool { return r.Intersects(swept) })

	p := origin
	for length := 0.0; length < SensorRange; {
		p = r2.Add(p, r2.Scale(SensorStep, dir))
		length += SensorStep
		if probeHits(Rect{X: p.X, Y: p.Y, W: probeSize, H: probeSize}, near) {
			break
		}
	}
	dist := min(int(r2.Norm(r2.Sub(p, origin))), SensorRange)
	return SensorReading{End: p, Distance: dist}
}

func probeHits(probe Rect, obstacles []Rect) bool {
	for _, r := range obstacles {
		if r.Intersects(probe) {
			return true
		}
	}
	return false
}
