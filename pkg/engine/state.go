package engine

import "fmt"

// State is a playback state of the engine.
type State int32

const (
	StateInit State = iota
	StateInitialized
	StateReady
	StateStarted
	StatePaused
	StateStopped
	StateReleased
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateInitialized:
		return "initialized"
	case StateReady:
		return "ready"
	case StateStarted:
		return "started"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateReleased:
		return "released"
	case StateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

func (s State) in(lo, hi State) bool { return s >= lo && s <= hi }
