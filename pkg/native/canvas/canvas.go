// Package canvas is a software native context drawn with gogpu/gg.
// The frames are presented into a native window when the context
// is configured with one.
package canvas

import (
	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/native"
	"github.com/framecast/player/pkg/scene"
	"github.com/gogpu/gg"
)

// Drawable is a scene the canvas knows how to render.
type Drawable interface {
	Draw(dc *gg.Context, t float64) error
}

type swapper interface {
	SetSwapInterval(interval int) error
}

type Canvas struct {
	dc     *gg.Context
	conf   native.Config
	clear  gg.RGBA
	scene  Drawable
	window native.Window
	log    *logger.Logger
}

func New(log *logger.Logger) *Canvas {
	return &Canvas{log: log.Extend(log.With().Str("m", "canvas"))}
}

func (c *Canvas) Configure(conf native.Config) native.Status {
	if c.dc != nil {
		return native.ErrInvalidUse
	}
	switch conf.Backend {
	case native.BackendAuto, native.BackendSoftware:
	default:
		c.log.Error().Msgf("backend %v is not supported", conf.Backend)
		return native.ErrUnsupported
	}
	if conf.Samples > 1 {
		c.log.Warn().Msgf("%v samples are ignored, the canvas has no multisampling", conf.Samples)
	}

	w, h := conf.Width, conf.Height
	if !conf.Offscreen {
		if conf.Window == nil {
			return native.ErrInvalidArg
		}
		w, h = conf.Window.Size()
		if sw, ok := conf.Window.(swapper); ok && conf.SwapInterval >= 0 {
			if err := sw.SetSwapInterval(conf.SwapInterval); err != nil {
				c.log.Warn().Err(err).Msgf("swap interval %v", conf.SwapInterval)
			}
		}
	}
	if w <= 0 || h <= 0 {
		return native.ErrInvalidArg
	}

	c.conf = conf
	c.window = conf.Window
	c.clear = gg.RGBA{R: conf.ClearColor[0], G: conf.ClearColor[1], B: conf.ClearColor[2], A: conf.ClearColor[3]}
	c.dc = gg.NewContext(w, h)
	c.log.Debug().Msgf("Canvas %vx%v, offscreen: %v", w, h, conf.Offscreen)
	return native.OK
}

func (c *Canvas) SetScene(s scene.Scene) native.Status {
	if c.dc == nil {
		return native.ErrInvalidUse
	}
	if s == nil {
		return native.ErrInvalidArg
	}
	d, ok := s.(Drawable)
	if !ok {
		return native.ErrInvalidData
	}
	c.scene = d
	return native.OK
}

func (c *Canvas) ResetScene() native.Status {
	if c.dc == nil {
		return native.ErrInvalidUse
	}
	c.scene = nil
	return native.OK
}

func (c *Canvas) Draw(t float64) native.Status {
	if c.dc == nil {
		return native.ErrInvalidUse
	}
	c.dc.ClearWithColor(c.clear)
	if c.scene != nil {
		if err := c.scene.Draw(c.dc, t); err != nil {
			c.log.Error().Err(err).Msgf("draw at %.3fs", t)
			return native.ErrGraphics
		}
	}
	if err := c.dc.FlushGPU(); err != nil {
		c.log.Error().Err(err).Msg("flush")
		return native.ErrGraphics
	}
	if c.window == nil && c.conf.Capture == nil {
		return native.OK
	}
	img := c.dc.Image()
	if c.window != nil {
		if err := c.window.Present(img); err != nil {
			c.log.Error().Err(err).Msg("present")
			return native.ErrGraphics
		}
	}
	if c.conf.Capture != nil {
		c.conf.Capture(img, t)
	}
	return native.OK
}

func (c *Canvas) Resize(w, h int) native.Status {
	if c.dc == nil {
		return native.ErrInvalidUse
	}
	if err := c.dc.Resize(w, h); err != nil {
		c.log.Warn().Err(err).Msg("resize")
		return native.ErrInvalidArg
	}
	return native.OK
}

func (c *Canvas) Release() {
	if c.dc == nil {
		return
	}
	if err := c.dc.Close(); err != nil {
		c.log.Error().Err(err).Msg("canvas close")
	}
	c.dc, c.scene, c.window = nil, nil, nil
}

// Size returns the current drawing size.
func (c *Canvas) Size() (int, int) {
	if c.dc == nil {
		return 0, 0
	}
	return c.dc.Width(), c.dc.Height()
}
