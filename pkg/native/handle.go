package native

import (
	"errors"
	"fmt"

	"github.com/framecast/player/pkg/scene"
)

// ErrConfigure wraps every failed configuration.
var ErrConfigure = errors.New("native context configuration failed")

// Handle owns a configured Context.
// All calls after Release are rejected with ErrInvalidUse and the
// underlying context is released exactly once.
type Handle struct {
	ctx Context
}

// Open creates a context with newCtx and configures it with conf.
// The context is released when the configuration fails.
func Open(newCtx func() Context, conf Config) (*Handle, error) {
	ctx := newCtx()
	if ctx == nil {
		return nil, fmt.Errorf("%w: no context", ErrConfigure)
	}
	if st := ctx.Configure(conf); st != OK {
		ctx.Release()
		return nil, fmt.Errorf("%w: %w", ErrConfigure, st.Err("configure"))
	}
	return &Handle{ctx: ctx}, nil
}

func (h *Handle) Alive() bool { return h != nil && h.ctx != nil }

func (h *Handle) SetScene(s scene.Scene) Status {
	if !h.Alive() {
		return ErrInvalidUse
	}
	return h.ctx.SetScene(s)
}

func (h *Handle) ResetScene() Status {
	if !h.Alive() {
		return ErrInvalidUse
	}
	return h.ctx.ResetScene()
}

func (h *Handle) Draw(t float64) Status {
	if !h.Alive() {
		return ErrInvalidUse
	}
	return h.ctx.Draw(t)
}

func (h *Handle) Resize(w, hh int) Status {
	if !h.Alive() {
		return ErrInvalidUse
	}
	return h.ctx.Resize(w, hh)
}

// Release frees the context, it returns false if it was already released.
func (h *Handle) Release() bool {
	if !h.Alive() {
		return false
	}
	ctx := h.ctx
	h.ctx = nil
	ctx.Release()
	return true
}

// WindowHandle owns a Window created from a Surface.
type WindowHandle struct {
	w Window
}

func AcquireWindow(s Surface) (*WindowHandle, error) {
	if s == nil {
		return nil, errors.New("no surface")
	}
	w, err := s.CreateWindow()
	if err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return &WindowHandle{w: w}, nil
}

// Window returns the owned window or nil after Release.
func (h *WindowHandle) Window() Window {
	if h == nil {
		return nil
	}
	return h.w
}

// Release destroys the window once, later calls are no-op.
func (h *WindowHandle) Release() error {
	if h == nil || h.w == nil {
		return nil
	}
	w := h.w
	h.w = nil
	return w.Release()
}
