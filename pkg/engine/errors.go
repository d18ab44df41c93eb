package engine

import (
	"errors"
	"fmt"

	"github.com/framecast/player/pkg/scene"
)

var (
	ErrConfiguration  = errors.New("engine configuration failed")
	ErrSceneLoad      = errors.New("scene load failed")
	ErrReleaseTimeout = errors.New("release timeout")
	ErrCanceled       = errors.New("command canceled")
	ErrDisposed       = errors.New("engine is disposed")
)

// ConfigurationError is returned by Init when the native context could
// not be set up. The engine stays in the Init state.
type ConfigurationError struct {
	Target Target
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v (%v): %v", ErrConfiguration, e.Target, e.Err)
}

func (e *ConfigurationError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }

// SceneLoadError is reported with Callback.OnLoadSceneError.
type SceneLoadError struct {
	Scene scene.Scene
	Err   error
}

func (e *SceneLoadError) Error() string   { return fmt.Sprintf("%v: %v", ErrSceneLoad, e.Err) }
func (e *SceneLoadError) Unwrap() []error { return []error{ErrSceneLoad, e.Err} }
