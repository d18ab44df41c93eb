// Package capture saves rendered frames as numbered PNG files.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/framecast/player/pkg/logger"
	pos "github.com/framecast/player/pkg/os"
	"golang.org/x/image/draw"
)

const frameFile = "f%07d.png"

type Options struct {
	Dir string
	// Every Nth frame is saved, 0 and 1 save all.
	Every int
	// Scale resizes frames, 0 keeps the size.
	Scale float64
	// Label prints the frame time in the corner.
	Label            bool
	CompressionLevel int
}

type Recorder struct {
	dir  string
	opts Options
	e    *png.Encoder
	seen atomic.Uint64
	id   atomic.Uint32
	wg   sync.WaitGroup
	log  *logger.Logger
}

type pool struct{ sync.Pool }

func pngBuf() *pool                      { return &pool{sync.Pool{New: func() any { return &png.EncoderBuffer{} }}} }
func (p *pool) Get() *png.EncoderBuffer  { return p.Pool.Get().(*png.EncoderBuffer) }
func (p *pool) Put(b *png.EncoderBuffer) { p.Pool.Put(b) }

func New(opts Options, log *logger.Logger) (*Recorder, error) {
	dir, err := pos.ExpandHome(opts.Dir)
	if err != nil {
		return nil, err
	}
	if err := pos.CheckCreateDir(dir); err != nil {
		return nil, fmt.Errorf("capture dir: %w", err)
	}
	if opts.Every < 1 {
		opts.Every = 1
	}
	return &Recorder{
		dir:  dir,
		opts: opts,
		e: &png.Encoder{
			CompressionLevel: png.CompressionLevel(opts.CompressionLevel),
			BufferPool:       pngBuf(),
		},
		log: log.Extend(log.With().Str("m", "capture")),
	}, nil
}

// Capture saves the frame drawn at t seconds, the image is copied so
// the caller may reuse it.
func (r *Recorder) Capture(img image.Image, t float64) {
	if (r.seen.Add(1)-1)%uint64(r.opts.Every) != 0 {
		return
	}
	frame := r.prepare(img, time.Duration(t*float64(time.Second)))
	name := fmt.Sprintf(frameFile, r.id.Add(1))
	r.wg.Add(1)
	go r.save(name, frame)
}

func (r *Recorder) prepare(img image.Image, t time.Duration) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if r.opts.Scale > 0 && r.opts.Scale != 1 {
		w, h = max(1, int(float64(w)*r.opts.Scale)), max(1, int(float64(h)*r.opts.Scale))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	}
	if r.opts.Label {
		AddLabel(dst, 0, 0, TimeFormat(t))
	}
	return dst
}

func (r *Recorder) save(name string, img image.Image) {
	defer r.wg.Done()
	var buf bytes.Buffer
	buf.Grow(img.Bounds().Dx() * img.Bounds().Dy() * 4)
	if err := r.e.Encode(&buf, img); err != nil {
		r.log.Error().Err(err).Msgf("encode %v", name)
		return
	}
	if err := os.WriteFile(filepath.Join(r.dir, name), buf.Bytes(), 0644); err != nil {
		r.log.Error().Err(err).Msgf("write %v", name)
	}
}

// Frames returns the number of saved frames.
func (r *Recorder) Frames() int { return int(r.id.Load()) }

// Close waits for the pending writes.
func (r *Recorder) Close() error {
	r.wg.Wait()
	r.log.Debug().Msgf("Captured %v frames into %v", r.Frames(), r.dir)
	return nil
}
