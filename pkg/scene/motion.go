package scene

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/framecast/player/pkg/clock"
	"github.com/gogpu/gg"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoFrameRate = errors.New("scene frame rate must be positive")
	ErrBadShape    = errors.New("unsupported shape")
)

// Motion is a scene of shapes moving linearly between two keyframes.
// Positions and sizes are relative to the output size, so the scene
// renders the same at any resolution.
type Motion struct {
	Name       string  `yaml:"name"`
	Length     Span    `yaml:"duration"`
	Rate       Rate    `yaml:"framerate"`
	Background string  `yaml:"background"`
	Shapes     []Shape `yaml:"shapes"`
	Source     string  `yaml:"-"`

	bg     gg.RGBA
	colors []colors
}

type Shape struct {
	Kind     string   `yaml:"kind"`
	Color    string   `yaml:"color"`
	EndColor string   `yaml:"end_color"`
	Start    Keyframe `yaml:"start"`
	End      Keyframe `yaml:"end"`
}

type Keyframe struct {
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Size float64 `yaml:"size"`
}

type colors struct{ from, to gg.RGBA }

func (m *Motion) Duration() time.Duration   { return time.Duration(m.Length) }
func (m *Motion) FrameRate() clock.Rational { return clock.Rational(m.Rate) }
func (m *Motion) String() string            { return fmt.Sprintf("%v [%v@%v]", m.Name, m.Duration(), m.Rate) }

// Decode reads a motion scene document.
func Decode(r io.Reader) (*Motion, error) {
	var m Motion
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("scene decode: %w", err)
	}
	if err := m.prepare(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Open reads a motion scene from the file at path.
func Open(path string) (*Motion, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	m.Source = path
	return m, nil
}

func (m *Motion) prepare() error {
	if !clock.Rational(m.Rate).Valid() {
		return ErrNoFrameRate
	}
	if m.Length < 0 {
		return fmt.Errorf("negative scene duration %v", time.Duration(m.Length))
	}
	if m.Background == "" {
		m.Background = "#000"
	}
	m.bg = gg.Hex(m.Background)
	m.colors = make([]colors, len(m.Shapes))
	for i, s := range m.Shapes {
		switch s.Kind {
		case "circle", "square":
		default:
			return fmt.Errorf("%w: %q", ErrBadShape, s.Kind)
		}
		from := gg.Hex(s.Color)
		to := from
		if s.EndColor != "" {
			to = gg.Hex(s.EndColor)
		}
		m.colors[i] = colors{from: from, to: to}
	}
	return nil
}

// Draw renders the scene at t seconds into dc.
func (m *Motion) Draw(dc *gg.Context, t float64) error {
	w, h := float64(dc.Width()), float64(dc.Height())
	dc.ClearWithColor(m.bg)

	p := 0.0
	if d := m.Duration().Seconds(); d > 0 {
		p = math.Min(math.Max(t/d, 0), 1)
	}
	unit := math.Min(w, h)
	for i, s := range m.Shapes {
		x := lerp(s.Start.X, s.End.X, p) * w
		y := lerp(s.Start.Y, s.End.Y, p) * h
		size := lerp(s.Start.Size, s.End.Size, p) * unit
		dc.SetColor(m.colors[i].from.Lerp(m.colors[i].to, p).Color())
		switch s.Kind {
		case "circle":
			dc.DrawCircle(x, y, size/2)
		case "square":
			dc.DrawRectangle(x-size/2, y-size/2, size, size)
		}
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("shape %v: %w", i, err)
		}
	}
	return nil
}

func lerp(a, b, p float64) float64 { return a + (b-a)*p }

// Span is a duration written either as seconds or as a Go duration string.
type Span time.Duration

func (s *Span) UnmarshalYAML(n *yaml.Node) error {
	if v, err := strconv.ParseFloat(n.Value, 64); err == nil {
		*s = Span(math.Round(v * float64(time.Second)))
		return nil
	}
	d, err := time.ParseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: bad duration %q", n.Line, n.Value)
	}
	*s = Span(d)
	return nil
}

// Rate is a frame rate written as "num/den" or a whole number.
type Rate clock.Rational

func (r *Rate) UnmarshalYAML(n *yaml.Node) error {
	num, den, found := strings.Cut(n.Value, "/")
	if !found {
		den = "1"
	}
	a, err1 := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	b, err2 := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
	if err1 != nil || err2 != nil {
		return fmt.Errorf("line %d: bad frame rate %q", n.Line, n.Value)
	}
	*r = Rate{Num: a, Den: b}
	return nil
}

func (r Rate) String() string { return clock.Rational(r).String() }
