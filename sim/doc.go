// Package sim provides the deterministic fixed-timestep driving simulation
// kernel: a controlled vehicle on a walled multi-lane corridor, car-following
// traffic and an observation/reward contract for learning agents.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - environment.go: Environment construction, Reset, and the Step order
//   - vehicle.go: controlled-vehicle kinematics (steering, throttle, clamps)
//   - traffic.go: traffic actors and the car-following model
//   - lifecycle.go: spawn trials, safety gate and culling
//   - sensor.go: the 8-ray proximity array
//   - observation.go: the observation vector and reward shaping
//
// # Coordinates
//
// Screen convention: x grows right, y grows down, forward is decreasing y.
// Traffic moves in the frame of the controlled vehicle, which stays near the
// bottom of the view while the world scrolls past.
//
// # Determinism
//
// All randomness flows through PartitionedRNG (or an injected RandomSource).
// Two environments built from the same Config and fed the same controls
// produce bit-identical observations and rewards.
//
// # Sub-packages
//   - sim/trace/: spawn, cull and collision decision records
//   - sim/policy/: built-in controllers for headless runs
package sim
