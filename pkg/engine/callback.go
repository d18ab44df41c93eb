package engine

import (
	"time"

	"github.com/framecast/player/pkg/scene"
)

// Callback receives engine events.
// All methods are called from the engine worker and must not block,
// issuing more commands from them is fine.
type Callback interface {
	OnStateChanged(s State)
	OnInitialized()
	OnReady()
	OnStarted()
	OnPaused()
	OnStopped()
	OnReleased()
	// OnSceneChanged reports a loaded scene (nil when cleared) and how long it took.
	OnSceneChanged(s scene.Scene, elapsed time.Duration)
	OnLoadSceneError(err error)
	OnPositionChanged(t time.Duration)
}

// NopCallback ignores every event.
// Embed it to handle only some of them.
type NopCallback struct{}

func (NopCallback) OnStateChanged(State)                      {}
func (NopCallback) OnInitialized()                            {}
func (NopCallback) OnReady()                                  {}
func (NopCallback) OnStarted()                                {}
func (NopCallback) OnPaused()                                 {}
func (NopCallback) OnStopped()                                {}
func (NopCallback) OnReleased()                               {}
func (NopCallback) OnSceneChanged(scene.Scene, time.Duration) {}
func (NopCallback) OnLoadSceneError(error)                    {}
func (NopCallback) OnPositionChanged(time.Duration)           {}
