// Package sdl provides native windows backed by SDL2 with an OpenGL
// context used to present rendered frames.
package sdl

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/native"
	"github.com/framecast/player/pkg/thread"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/veandco/go-sdl2/sdl"
)

// Init initializes the SDL video subsystem.
// It should be called once per process before any window is created.
func Init() error {
	if err := thread.Call(func() error { return sdl.Init(sdl.INIT_VIDEO) }); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	return nil
}

// Quit shuts SDL down, all windows must be released before.
func Quit() { thread.Main(sdl.Quit) }

// Surface describes a window to create.
type Surface struct {
	Title string
	W, H  int
	Log   *logger.Logger
}

type Window struct {
	w   *sdl.Window
	ctx sdl.GLContext
	log *logger.Logger
	// scratch is used for images that are not RGBA already.
	scratch *image.RGBA
}

func (s Surface) CreateWindow() (native.Window, error) {
	if s.W <= 0 || s.H <= 0 {
		return nil, fmt.Errorf("bad window size %vx%v", s.W, s.H)
	}
	log := s.Log
	if log == nil {
		log = logger.Default()
	}
	log = log.Extend(log.With().Str("m", "sdl"))

	var win Window
	var err error
	// window creation must happen in the main thread on macOS
	thread.Main(func() {
		win.w, err = sdl.CreateWindow(s.Title,
			sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
			int32(s.W), int32(s.H),
			sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
		)
		if err != nil {
			err = fmt.Errorf("window: %w", err)
			return
		}
		if win.ctx, err = win.w.GLCreateContext(); err != nil {
			err1 := win.w.Destroy()
			err = fmt.Errorf("gl context: %w, destroy err: %w", err, err1)
		}
	})
	if err != nil {
		return nil, err
	}
	win.log = log

	// the context belongs to the calling thread from now on
	if err = win.bind(); err != nil {
		return nil, errors.Join(err, win.Release())
	}
	if err = gl.InitWithProcAddrFunc(sdl.GLGetProcAddress); err != nil {
		return nil, errors.Join(fmt.Errorf("gl: %w", err), win.Release())
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	log.Info().Msgf("Window %vx%v, GL %v", s.W, s.H, gl.GoStr(gl.GetString(gl.VERSION)))
	return &win, nil
}

func (w *Window) bind() error {
	if err := w.w.GLMakeCurrent(w.ctx); err != nil {
		return fmt.Errorf("gl bind: %w", err)
	}
	return nil
}

// Size returns the drawable size in pixels.
func (w *Window) Size() (int, int) {
	ww, hh := w.w.GLGetDrawableSize()
	return int(ww), int(hh)
}

// SetSwapInterval sets the vertical sync mode of the window.
func (w *Window) SetSwapInterval(interval int) error {
	return sdl.GLSetSwapInterval(interval)
}

// Present draws the frame image and swaps the buffers.
func (w *Window) Present(img image.Image) error {
	rgba := w.rgba(img)
	iw, ih := rgba.Rect.Dx(), rgba.Rect.Dy()
	dw, dh := w.Size()

	gl.Viewport(0, 0, int32(dw), int32(dh))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	// images are stored top-down, GL rasterizes bottom-up
	gl.RasterPos2f(-1, 1)
	gl.PixelZoom(float32(dw)/float32(iw), -float32(dh)/float32(ih))
	gl.DrawPixels(int32(iw), int32(ih), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error: 0x%X", code)
	}
	w.w.GLSwap()
	return nil
}

func (w *Window) rgba(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	w.scratch = toRGBA(img, w.scratch)
	return w.scratch
}

// toRGBA copies img into dst reallocating it when the size differs.
func toRGBA(img image.Image, dst *image.RGBA) *image.RGBA {
	b := img.Bounds()
	if dst == nil || dst.Rect.Dx() != b.Dx() || dst.Rect.Dy() != b.Dy() {
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// Release destroys the GL context and the window.
func (w *Window) Release() error {
	if w.w == nil {
		return nil
	}
	err := thread.Call(func() error {
		sdl.GLDeleteContext(w.ctx)
		return w.w.Destroy()
	})
	w.w = nil
	if err != nil {
		w.log.Error().Err(err).Msg("couldn't destroy the window")
	}
	return err
}
