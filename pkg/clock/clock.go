// Package clock converts wall-clock time into discrete frame positions.
package clock

import "time"

type State int

const (
	Stopped State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	}
	return "unknown"
}

const unset int64 = -1

// Clock is a presentation clock.
// It has no I/O and no locking: the owner serializes all calls.
type Clock struct {
	rate     Rational
	duration time.Duration
	frame    int64
	looping  bool
	state    State

	// anchor is the timestamp of the first tick after a (re)start,
	// consumed is the number of frames already advanced since anchor.
	anchor   int64
	consumed int64

	onTick func(time.Duration)
}

func New() *Clock {
	return &Clock{rate: DefaultFrameRate, anchor: unset, onTick: func(time.Duration) {}}
}

// SetListener sets the function called with the current time
// on every tick, seek and step.
func (c *Clock) SetListener(fn func(time.Duration)) {
	if fn == nil {
		fn = func(time.Duration) {}
	}
	c.onTick = fn
}

// SetFrameRate replaces the frame rate.
// Invalid rates fall back to DefaultFrameRate.
func (c *Clock) SetFrameRate(r Rational) {
	if !r.Valid() {
		r = DefaultFrameRate
	}
	c.rate = r
	c.resetTicks()
	c.frame = c.clamp(c.frame)
}

// SetDuration replaces the duration, negative values are treated as zero.
func (c *Clock) SetDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.duration = d
	c.frame = c.clamp(c.frame)
}

func (c *Clock) SetLooping(v bool)       { c.looping = v }
func (c *Clock) Looping() bool           { return c.looping }
func (c *Clock) FrameRate() Rational     { return c.rate }
func (c *Clock) Duration() time.Duration { return c.duration }
func (c *Clock) FrameIndex() int64       { return c.frame }
func (c *Clock) State() State            { return c.state }
func (c *Clock) Time() time.Duration     { return c.rate.TimeOf(c.frame) }

// MaxFrameIndex returns ceil(duration * rate), at least 1.
func (c *Clock) MaxFrameIndex() int64 {
	if n := c.rate.FramesCeil(c.duration); n > 1 {
		return n
	}
	return 1
}

func (c *Clock) Play() {
	c.state = Playing
	c.resetTicks()
}

func (c *Clock) Pause() {
	c.state = Paused
	c.resetTicks()
}

func (c *Clock) Stop() {
	c.state = Stopped
	c.frame = 0
	c.resetTicks()
}

// Seek moves the clock to the frame containing t.
func (c *Clock) Seek(t time.Duration) {
	c.frame = c.clamp(c.rate.FramesIn(t))
	c.resetTicks()
	c.onTick(c.Time())
}

// Step moves the clock by n frames, never past the bounds, even when looping.
func (c *Clock) Step(n int) {
	c.frame = c.clamp(c.frame + int64(n))
	c.onTick(c.Time())
}

// OnTick advances the clock to the wall-clock time now (nanoseconds
// of a monotonic source). Only whole frames are consumed, the remainder
// carries over to the next tick.
func (c *Clock) OnTick(now int64) {
	if c.state == Playing {
		if c.anchor == unset {
			c.anchor, c.consumed = now, 0
		}
		total := c.rate.FramesIn(time.Duration(now - c.anchor))
		if n := total - c.consumed; n > 0 {
			c.consumed = total
			c.advance(n)
		}
	}
	c.onTick(c.Time())
}

func (c *Clock) advance(n int64) {
	max := c.MaxFrameIndex()
	if c.looping {
		c.frame = (c.frame + n%max) % max
		return
	}
	if c.frame+n > max || c.frame+n < 0 {
		c.frame = max
		return
	}
	c.frame += n
}

func (c *Clock) clamp(i int64) int64 {
	if i < 0 {
		return 0
	}
	if max := c.MaxFrameIndex(); i > max {
		return max
	}
	return i
}

func (c *Clock) resetTicks() { c.anchor, c.consumed = unset, 0 }
