// Package scene defines the opaque scene handle the player works with
// and a small file-based scene format rendered by the canvas backend.
package scene

import (
	"time"

	"github.com/framecast/player/pkg/clock"
)

// Scene is an immutable, externally owned scene handle.
// The player only ever reads its duration and frame rate.
type Scene interface {
	Duration() time.Duration
	FrameRate() clock.Rational
}
