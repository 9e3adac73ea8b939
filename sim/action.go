package sim

import (
	"errors"
	"fmt"
)

// Action is the abstract control vocabulary consumed by one tick.
// The numeric codes are the ones a learning agent emits.
type Action int

const (
	ActionNoop Action = iota
	ActionLeft
	ActionRight
	ActionAccelerate
	ActionBrake

	// NumActions is the size of the action space.
	NumActions = int(ActionBrake) + 1
)

var (
	// ErrUnknownAction is returned for action codes outside [0, NumActions).
	ErrUnknownAction = errors.New("unknown action")
	// ErrNoInputProvider is returned when Step is asked to poll a device but
	// the environment was built without one.
	ErrNoInputProvider = errors.New("no input provider configured")
)

var actionNames = [...]string{
	ActionNoop:       "noop",
	ActionLeft:       "left",
	ActionRight:      "right",
	ActionAccelerate: "accelerate",
	ActionBrake:      "brake",
}

func (a Action) String() string {
	if a.Valid() {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Valid reports whether a is a known action code.
func (a Action) Valid() bool {
	return a >= 0 && int(a) < NumActions
}

// ParseAction maps a name ("noop", "left", ...) to its Action.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownAction, name)
}

// Control resolves to exactly one Action per tick. Interactive controls
// come from a human at a device: they unlock reverse and let a crashed
// vehicle respawn after the settle delay.
type Control interface {
	Resolve() (Action, error)
	Interactive() bool
}

// Resolve makes an Action usable as a programmatic Control.
func (a Action) Resolve() (Action, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("%w: code %d", ErrUnknownAction, int(a))
	}
	return a, nil
}

// Interactive is false: a bare Action comes from an external controller.
func (a Action) Interactive() bool { return false }

// InputProvider translates a physical input device into the abstract
// vocabulary. Poll is called at most once per tick.
type InputProvider interface {
	Poll() Action
}

// InputProviderFunc adapts a plain function to InputProvider.
type InputProviderFunc func() Action

func (f InputProviderFunc) Poll() Action { return f() }

// DeviceControl reads the action for this tick from an InputProvider.
type DeviceControl struct {
	Provider InputProvider
}

func (d DeviceControl) Resolve() (Action, error) {
	if d.Provider == nil {
		return 0, ErrNoInputProvider
	}
	return d.Provider.Poll().Resolve()
}

func (d DeviceControl) Interactive() bool { return true }
