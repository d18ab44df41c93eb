package engine

import (
	"fmt"

	"github.com/framecast/player/pkg/native"
)

// Target is what an engine renders into.
type Target interface {
	// attach fills the config with the target and returns an owned
	// window if it has created one.
	attach(conf *native.Config) (*native.WindowHandle, error)
}

// Offscreen renders into a memory buffer of the given size.
type Offscreen struct{ W, H int }

func (o Offscreen) attach(conf *native.Config) (*native.WindowHandle, error) {
	conf.Offscreen, conf.Window = true, nil
	conf.Width, conf.Height = o.W, o.H
	return nil, nil
}

func (o Offscreen) String() string { return fmt.Sprintf("offscreen %vx%v", o.W, o.H) }

// Surface renders into a window created on the native surface.
type Surface struct{ native.Surface }

func (s Surface) attach(conf *native.Config) (*native.WindowHandle, error) {
	w, err := native.AcquireWindow(s.Surface)
	if err != nil {
		return nil, err
	}
	conf.Offscreen, conf.Window = false, w.Window()
	conf.Width, conf.Height = w.Window().Size()
	return w, nil
}

func (s Surface) String() string { return "surface" }
