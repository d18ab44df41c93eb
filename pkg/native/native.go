// Package native describes the contract of a native rendering context.
//
// A context is created and used by exactly one goroutine, the player's
// worker. Nothing in here is safe for concurrent use.
package native

import (
	"errors"
	"fmt"
	"image"

	"github.com/framecast/player/pkg/scene"
)

type Backend int

const (
	BackendAuto Backend = iota
	BackendOpenGL
	BackendOpenGLES
	BackendVulkan
	BackendSoftware
)

func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendOpenGL:
		return "opengl"
	case BackendOpenGLES:
		return "opengles"
	case BackendVulkan:
		return "vulkan"
	case BackendSoftware:
		return "software"
	}
	return fmt.Sprintf("backend(%d)", int(b))
}

// ParseBackend returns a backend by its name.
func ParseBackend(name string) (Backend, error) {
	for b := BackendAuto; b <= BackendSoftware; b++ {
		if b.String() == name {
			return b, nil
		}
	}
	return BackendAuto, fmt.Errorf("unknown backend: %q", name)
}

// Status is a native call result, 0 is success.
type Status int

const (
	OK             Status = 0
	ErrGeneric     Status = -1
	ErrInvalidArg  Status = -2
	ErrInvalidData Status = -3
	ErrInvalidUse  Status = -4
	ErrUnsupported Status = -5
	ErrMemory      Status = -6
	ErrGraphics    Status = -7
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case ErrGeneric:
		return "generic error"
	case ErrInvalidArg:
		return "invalid argument"
	case ErrInvalidData:
		return "invalid data"
	case ErrInvalidUse:
		return "invalid usage"
	case ErrUnsupported:
		return "unsupported"
	case ErrMemory:
		return "memory error"
	case ErrGraphics:
		return "graphics error"
	}
	return fmt.Sprintf("status %d", int(s))
}

// ErrStatus is matched by every error made from a non-zero Status.
var ErrStatus = errors.New("native call failed")

type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string        { return fmt.Sprintf("%s: %v (%d)", e.Op, e.Status, int(e.Status)) }
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Err converts the status of the op call into an error, nil on success.
func (s Status) Err(op string) error {
	if s == OK {
		return nil
	}
	return &StatusError{Op: op, Status: s}
}

// Config holds the parameters of Context.Configure.
type Config struct {
	Backend Backend
	// Window is the target of an on-screen context.
	Window    Window
	Offscreen bool
	Width     int
	Height    int
	Samples   int
	// SwapInterval is passed to the windowing system, -1 keeps its default.
	SwapInterval int
	ClearColor   [4]float64
	// Capture receives every drawn frame when set.
	Capture func(img image.Image, t float64)
	Debug   bool
}

// Context is the native renderer.
type Context interface {
	Configure(conf Config) Status
	SetScene(s scene.Scene) Status
	ResetScene() Status
	// Draw renders the frame at t seconds.
	Draw(t float64) Status
	Resize(w, h int) Status
	// Release frees the context. It must be called only once.
	Release()
}

// Window is a platform window a context presents into.
type Window interface {
	Size() (w, h int)
	Present(img image.Image) error
	Release() error
}

// Surface is something a native Window can be created on.
type Surface interface {
	CreateWindow() (Window, error)
}
