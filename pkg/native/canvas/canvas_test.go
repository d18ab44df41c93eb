package canvas

import (
	"bytes"
	"errors"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/framecast/player/pkg/clock"
	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/native"
	"github.com/gogpu/gg"
)

type fill struct{ err error }

func (f fill) Duration() time.Duration   { return time.Second }
func (f fill) FrameRate() clock.Rational { return clock.DefaultFrameRate }
func (f fill) Draw(dc *gg.Context, _ float64) error {
	dc.ClearWithColor(gg.RGBA{R: 1, A: 1})
	return f.err
}

type blank struct{}

func (blank) Duration() time.Duration   { return 0 }
func (blank) FrameRate() clock.Rational { return clock.DefaultFrameRate }

type window struct {
	frames int
	last   image.Image
}

func (w *window) Size() (int, int)              { return 16, 8 }
func (w *window) Present(img image.Image) error { w.frames++; w.last = img; return nil }
func (w *window) Release() error                { return nil }

func TestConfigure(t *testing.T) {
	tests := []struct {
		name string
		conf native.Config
		want native.Status
	}{
		{name: "offscreen", conf: native.Config{Offscreen: true, Width: 4, Height: 4}, want: native.OK},
		{name: "no size", conf: native.Config{Offscreen: true}, want: native.ErrInvalidArg},
		{name: "no window", conf: native.Config{}, want: native.ErrInvalidArg},
		{name: "window", conf: native.Config{Window: &window{}}, want: native.OK},
		{name: "vulkan", conf: native.Config{Backend: native.BackendVulkan, Offscreen: true, Width: 1, Height: 1}, want: native.ErrUnsupported},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := New(logger.Nop())
			defer c.Release()
			if got := c.Configure(test.conf); got != test.want {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}
}

func TestSamplesIgnored(t *testing.T) {
	var buf bytes.Buffer
	c := New(logger.New(logger.Options{Json: true, Out: &buf}))
	defer c.Release()
	if st := c.Configure(native.Config{Offscreen: true, Width: 4, Height: 4, Samples: 4}); st != native.OK {
		t.Fatalf("configure: %v", st)
	}
	if !strings.Contains(buf.String(), "4 samples are ignored") {
		t.Errorf("no samples warning in %q", buf.String())
	}
}

func TestDrawCapture(t *testing.T) {
	var captured []float64
	var last image.Image
	c := New(logger.Nop())
	st := c.Configure(native.Config{
		Offscreen:  true,
		Width:      8,
		Height:     8,
		ClearColor: [4]float64{0, 0, 1, 1},
		Capture:    func(img image.Image, t float64) { captured = append(captured, t); last = img },
	})
	if st != native.OK {
		t.Fatalf("configure: %v", st)
	}
	defer c.Release()

	if st := c.Draw(0.5); st != native.OK {
		t.Fatalf("draw: %v", st)
	}
	if r, _, b, _ := last.At(4, 4).RGBA(); b < 0xf000 || r != 0 {
		t.Errorf("no clear color")
	}
	if st := c.SetScene(fill{}); st != native.OK {
		t.Fatalf("scene: %v", st)
	}
	if st := c.Draw(1); st != native.OK {
		t.Fatalf("draw: %v", st)
	}
	if r, _, b, _ := last.At(4, 4).RGBA(); r < 0xf000 || b != 0 {
		t.Errorf("scene is not drawn")
	}
	if len(captured) != 2 || captured[1] != 1 {
		t.Errorf("captured %v", captured)
	}
}

func TestWindowPresent(t *testing.T) {
	w := &window{}
	c := New(logger.Nop())
	if st := c.Configure(native.Config{Window: w}); st != native.OK {
		t.Fatalf("configure: %v", st)
	}
	defer c.Release()
	_ = c.Draw(0)
	if w.frames != 1 || w.last.Bounds().Dx() != 16 {
		t.Errorf("window frames %v", w.frames)
	}
	if st := c.Resize(32, 32); st != native.OK {
		t.Fatalf("resize: %v", st)
	}
	if st := c.Resize(0, 32); st != native.ErrInvalidArg {
		t.Errorf("resize to zero: %v", st)
	}
	_ = c.Draw(0)
	if w.last.Bounds().Dx() != 32 {
		t.Errorf("not resized")
	}
}

func TestErrors(t *testing.T) {
	c := New(logger.Nop())
	if st := c.Draw(0); st != native.ErrInvalidUse {
		t.Errorf("draw before configure: %v", st)
	}
	_ = c.Configure(native.Config{Offscreen: true, Width: 2, Height: 2})
	if st := c.SetScene(blank{}); st != native.ErrInvalidData {
		t.Errorf("scene without drawing: %v", st)
	}
	_ = c.SetScene(fill{err: errors.New("boom")})
	if st := c.Draw(0); st != native.ErrGraphics {
		t.Errorf("failed scene draw: %v", st)
	}
	if st := c.ResetScene(); st != native.OK {
		t.Errorf("reset: %v", st)
	}
	c.Release()
	c.Release()
	if st := c.Draw(0); st != native.ErrInvalidUse {
		t.Errorf("draw after release: %v", st)
	}
}
