package sim

import "testing"

// scriptedSource replays fixed draws so spawn decisions can be pinned.
// Once a script runs out it keeps returning values that never pass a
// spawn trial.
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float64() float64 {
	if s.fi >= len(s.floats) {
		return 0.99
	}
	v := s.floats[s.fi]
	s.fi++
	return v
}

func (s *scriptedSource) Intn(n int) int {
	if s.ii >= len(s.ints) {
		return 0
	}
	v := s.ints[s.ii] % n
	s.ii++
	return v
}

// quietEnv builds an environment whose spawner never fires.
func quietEnv(t *testing.T, opts ...Option) *Environment {
	t.Helper()
	opts = append([]Option{WithRandomSource(&scriptedSource{})}, opts...)
	env, err := New(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return env
}

// mustStep steps env and fails the test on error.
func mustStep(t *testing.T, env *Environment, c Control) StepResult {
	t.Helper()
	res, err := env.Step(c)
	if err != nil {
		t.Fatalf("Step(%v): %v", c, err)
	}
	return res
}

// holdKey is an InputProvider that always reports the same action.
func holdKey(a Action) InputProvider {
	return InputProviderFunc(func() Action { return a })
}
