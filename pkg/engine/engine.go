// Package engine plays scenes with a native rendering context.
//
// Every engine runs one worker goroutine locked to its OS thread. The
// worker owns the native context, the window and the presentation clock
// and processes commands one by one in the order they were sent,
// except that lifecycle commands jump the queue and newer commands
// replace the queued work they make obsolete. All public methods are
// safe to call from any goroutine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/framecast/player/pkg/clock"
	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/mailbox"
	"github.com/framecast/player/pkg/native"
	"github.com/framecast/player/pkg/scene"
	"github.com/framecast/player/pkg/vsync"
	"github.com/gofrs/uuid"
)

const DefaultReleaseTimeout = time.Second

type Engine struct {
	id    string
	mb    *mailbox.Mailbox[*command]
	state atomic.Int32
	pos   atomic.Int64
	now   atomic.Int64
	done  chan struct{}

	// worker only
	clock    *clock.Clock
	renderer *native.Handle
	window   *native.WindowHandle
	// assigned is the last scene set, scene is the one loaded into the context.
	assigned      scene.Scene
	scene         scene.Scene
	position      time.Duration
	playWhenReady bool
	callbacks     []Callback

	newContext     func() native.Context
	frames         vsync.Source
	conf           native.Config
	releaseTimeout time.Duration
	metrics        *Metrics
	log            *logger.Logger
}

type Option func(*Engine)

func WithLogger(log *logger.Logger) Option { return func(e *Engine) { e.log = log } }

// WithConfig sets the base native configuration, the target fields
// are filled on every Init.
func WithConfig(conf native.Config) Option { return func(e *Engine) { e.conf = conf } }

func WithReleaseTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.releaseTimeout = d
		}
	}
}

func WithMetrics(m *Metrics) Option         { return func(e *Engine) { e.metrics = m } }
func WithCallback(cb Callback) Option       { return func(e *Engine) { e.callbacks = append(e.callbacks, cb) } }
func WithLooping(v bool) Option             { return func(e *Engine) { e.clock.SetLooping(v) } }
func WithPlayWhenReady(v bool) Option       { return func(e *Engine) { e.playWhenReady = v } }
func WithID(id string) Option               { return func(e *Engine) { e.id = id } }
func WithFrameSource(s vsync.Source) Option { return func(e *Engine) { e.frames = s } }

// New starts an engine. The newContext function makes a native context
// on every Init, it is called from the engine worker.
func New(newContext func() native.Context, opts ...Option) *Engine {
	e := &Engine{
		id:             uuid.Must(uuid.NewV4()).String(),
		mb:             mailbox.New[*command](),
		done:           make(chan struct{}),
		clock:          clock.New(),
		position:       -1,
		newContext:     newContext,
		conf:           native.Config{SwapInterval: -1},
		releaseTimeout: DefaultReleaseTimeout,
		log:            logger.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.frames == nil {
		e.frames = vsync.NewTicker(60)
	}
	e.log = e.log.Extend(e.log.With().Str("m", "engine").Str("engine", e.id))
	e.pos.Store(-1)
	e.clock.SetListener(e.onClock)
	go e.run()
	return e
}

func (e *Engine) ID() string { return e.id }

// State returns the current state, it may change right after the call.
func (e *Engine) State() State { return State(e.state.Load()) }

// Position returns the time of the last drawn frame.
func (e *Engine) Position() time.Duration {
	if p := e.pos.Load(); p > 0 {
		return time.Duration(p)
	}
	return 0
}

// Time returns the clock time after the last processed command.
func (e *Engine) Time() time.Duration { return time.Duration(e.now.Load()) }

// Pending returns the number of queued commands.
func (e *Engine) Pending() int { return e.mb.Len() }

// Done is closed when the engine worker has stopped after Dispose.
func (e *Engine) Done() <-chan struct{} { return e.done }

// InitOffscreen sets up the engine to render into a w by h buffer.
// See Init.
func (e *Engine) InitOffscreen(ctx context.Context, w, h int) error {
	return e.Init(ctx, Offscreen{W: w, H: h})
}

// InitWithSurface sets up the engine to render into a window created
// on the surface. See Init.
func (e *Engine) InitWithSurface(ctx context.Context, s native.Surface) error {
	return e.Init(ctx, Surface{Surface: s})
}

// Init releases the current native context if any and configures a new
// one for the target. It waits until the configuration is done and
// returns a ConfigurationError if it has failed. The engine continues
// with loading of the current scene in the background.
func (e *Engine) Init(ctx context.Context, t Target) error {
	if t == nil {
		return &ConfigurationError{Err: errors.New("no target")}
	}
	c := newCommand(cmdInit).withDone()
	c.target = t
	if !e.put(c) {
		return ErrDisposed
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) Play()  { e.put(newCommand(cmdPlay)) }
func (e *Engine) Pause() { e.put(newCommand(cmdPause)) }
func (e *Engine) Stop()  { e.put(newCommand(cmdStop)) }

// SetScene replaces the current scene, nil clears it.
// The scene must stay valid until it is replaced or the engine released.
func (e *Engine) SetScene(s scene.Scene) {
	c := newCommand(cmdSetScene)
	c.scene = s
	e.put(c)
}

// Step pauses the playback and moves it by n frames.
func (e *Engine) Step(n int) {
	c := newCommand(cmdStep)
	c.n = n
	e.put(c)
}

// Seek moves the playback to the first frame at or after t.
func (e *Engine) Seek(t time.Duration) {
	c := newCommand(cmdSeek)
	c.t = t
	e.put(c)
}

func (e *Engine) Resize(w, h int) {
	c := newCommand(cmdResize)
	c.w, c.h = w, h
	e.put(c)
}

// Refresh re-reads the scene duration and frame rate and redraws the
// current frame.
func (e *Engine) Refresh() {
	e.put(newCommand(cmdRefreshDuration))
	e.put(newCommand(cmdDraw))
}

func (e *Engine) SetLooping(v bool) {
	c := newCommand(cmdSetLooping)
	c.flag = v
	e.put(c)
}

// SetPlayWhenReady makes the engine start the playback as soon as it
// gets ready. Setting it while ready plays or pauses right away.
func (e *Engine) SetPlayWhenReady(v bool) {
	c := newCommand(cmdSetPlayWhenReady)
	c.flag = v
	e.put(c)
}

// AddCallback registers cb, it must be comparable.
func (e *Engine) AddCallback(cb Callback) {
	c := newCommand(cmdAddCallback)
	c.cb = cb
	e.put(c)
}

func (e *Engine) RemoveCallback(cb Callback) {
	c := newCommand(cmdRemoveCallback)
	c.cb = cb
	e.put(c)
}

// Release frees the native context and the window.
// With wait it blocks until the engine is released or the release
// timeout is over. It must not be called with wait from a Callback.
func (e *Engine) Release(wait bool) {
	ack := make(chan struct{})
	c := newCommand(cmdRelease)
	c.acks = []chan struct{}{ack}
	e.put(c)
	if !wait {
		return
	}
	select {
	case <-ack:
	case <-time.After(e.releaseTimeout):
		e.log.Error().Err(ErrReleaseTimeout).Msgf("Release is not finished in %v, %v commands queued",
			e.releaseTimeout, e.mb.Len())
	}
}

// Dispose releases the engine and stops its worker.
// No command is accepted afterwards.
func (e *Engine) Dispose() { e.put(newCommand(cmdDispose)) }

// Sync waits until every command sent before it has been processed.
func (e *Engine) Sync(ctx context.Context) error {
	c := newCommand(cmdSync).withDone()
	if !e.put(c) {
		return ErrDisposed
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn on the engine worker.
func (e *Engine) call(fn func()) bool {
	c := newCommand(cmdCall)
	c.fn = fn
	return e.put(c)
}

func (e *Engine) tick(nanos int64) {
	c := newCommand(cmdTick)
	c.nanos = nanos
	e.put(c)
}

func (e *Engine) put(c *command) bool {
	dropped, ok := e.mb.Put(c, c.urgent(), func(q *command) bool {
		if !c.supersedes(q) {
			return false
		}
		// c is not visible to the worker yet
		c.acks = append(c.acks, q.acks...)
		q.acks = nil
		return true
	})
	if !ok {
		c.cancel(ErrDisposed)
		return false
	}
	for _, q := range dropped {
		e.metrics.drop(q.kind, "superseded")
		q.cancel(ErrCanceled)
	}
	return true
}

func (e *Engine) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.done)

	e.log.Debug().Msg("Engine worker started")
	for {
		c, ok := e.mb.Pop()
		if !ok {
			return
		}
		e.metrics.command(c.kind)
		e.process(c)
		e.now.Store(int64(e.clock.Time()))
		if c.kind == cmdDispose {
			for _, q := range e.mb.Close() {
				q.cancel(ErrDisposed)
			}
			e.log.Debug().Msg("Engine worker stopped")
			return
		}
	}
}

func (e *Engine) process(c *command) {
	switch c.kind {
	case cmdInit:
		e.init(c)
	case cmdPlay:
		if e.valid(c, StateReady, StatePaused) {
			e.play()
		}
	case cmdPause:
		if e.valid(c, StateReady, StatePaused) {
			e.pause()
		}
	case cmdStop:
		if e.valid(c, StateReady, StateStopped) {
			e.stop()
		}
	case cmdSetScene:
		e.assigned = c.scene
		if s := e.State(); !s.in(StateInitialized, StateStopped) {
			e.log.Debug().Msgf("Scene %v is kept until init, state %v", c.scene, s)
			return
		}
		e.setScene(c.scene)
	case cmdStep:
		if e.valid(c, StateReady, StatePaused) {
			e.pause()
			e.clock.Step(c.n)
		}
	case cmdSeek:
		if !e.valid(c, StateReady, StatePaused) {
			return
		}
		if e.scene == nil {
			e.metrics.drop(c.kind, "no_scene")
			e.log.Debug().Msg("Seek without a scene")
			return
		}
		e.clock.Seek(e.scene.FrameRate().Boundary(c.t))
	case cmdResize:
		if e.valid(c, StateReady, StatePaused) {
			if err := e.renderer.Resize(c.w, c.h).Err("resize"); err != nil {
				e.log.Warn().Err(err).Msgf("%vx%v", c.w, c.h)
			}
			e.draw(e.clock.Time())
		}
	case cmdTick:
		if e.valid(c, StateStarted, StatePaused) {
			e.clock.OnTick(c.nanos)
		}
	case cmdDraw:
		if e.valid(c, StateReady, StateStopped) {
			e.draw(e.clock.Time())
		}
	case cmdRefreshDuration:
		if e.valid(c, StateReady, StateStopped) {
			e.refreshDuration()
		}
	case cmdRelease:
		e.release()
		c.ack()
	case cmdDispose:
		e.release()
		e.setState(StateDisposed)
		c.ack()
	case cmdSetLooping:
		e.clock.SetLooping(c.flag)
	case cmdSetPlayWhenReady:
		e.playWhenReady = c.flag
		switch s := e.State(); {
		case c.flag && s == StateReady:
			e.play()
		case !c.flag && s == StateStarted:
			e.pause()
		}
	case cmdAddCallback:
		for _, cb := range e.callbacks {
			if cb == c.cb {
				return
			}
		}
		e.callbacks = append(e.callbacks, c.cb)
	case cmdRemoveCallback:
		for i, cb := range e.callbacks {
			if cb == c.cb {
				e.callbacks = append(e.callbacks[:i], e.callbacks[i+1:]...)
				return
			}
		}
	case cmdSync:
		c.done <- nil
	case cmdCall:
		c.fn()
	}
}

// valid tells whether the command may run in the current state,
// stale commands are dropped.
func (e *Engine) valid(c *command, lo, hi State) bool {
	if s := e.State(); !s.in(lo, hi) {
		e.metrics.drop(c.kind, "stale")
		e.log.Debug().Msgf("Stale %v in the %v state", c.kind, s)
		return false
	}
	return true
}

func (e *Engine) init(c *command) {
	if e.renderer != nil || e.window != nil {
		e.log.Debug().Msg("Tearing down the previous context")
		e.teardown()
	}

	conf := e.conf
	window, err := c.target.attach(&conf)
	if err == nil {
		e.renderer, err = native.Open(e.newContext, conf)
	}
	if err != nil {
		if err := window.Release(); err != nil {
			e.log.Error().Err(err).Msg("window release")
		}
		e.setState(StateInit)
		err = &ConfigurationError{Target: c.target, Err: err}
		e.log.Error().Err(err).Send()
		c.done <- err
		return
	}
	e.window = window
	e.log.Info().Msgf("Engine initialized with %v", c.target)
	e.setState(StateInitialized)
	c.done <- nil

	s := e.assigned
	elapsed, err := e.loadScene(s)
	if err != nil {
		e.failScene(s, err)
		return
	}
	if s != nil {
		e.notify(func(cb Callback) { cb.OnSceneChanged(s, elapsed) })
	}
	e.ready()
}

func (e *Engine) setScene(s scene.Scene) {
	elapsed, err := e.loadScene(s)
	if err != nil {
		e.failScene(s, err)
		return
	}
	e.log.Info().Msgf("Scene %v loaded in %v", s, elapsed)
	e.notify(func(cb Callback) { cb.OnSceneChanged(s, elapsed) })
	if e.State() == StateStopped {
		e.ready()
	}
}

func (e *Engine) ready() {
	e.setState(StateReady)
	if e.playWhenReady {
		e.play()
	}
}

// loadScene attaches s to the native context and draws its current frame.
func (e *Engine) loadScene(s scene.Scene) (elapsed time.Duration, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scene panic: %v", r)
		}
	}()

	if err := e.renderer.ResetScene().Err("reset scene"); err != nil {
		e.log.Warn().Err(err).Send()
	}
	e.scene, e.position = nil, -1
	if s == nil {
		e.clock.SetFrameRate(clock.DefaultFrameRate)
		e.clock.SetDuration(0)
		return time.Since(start), nil
	}

	rate := s.FrameRate()
	if !rate.Valid() {
		return 0, fmt.Errorf("frame rate %v", rate)
	}
	e.clock.SetFrameRate(rate)
	e.clock.SetDuration(s.Duration())
	if err := e.renderer.SetScene(s).Err("set scene"); err != nil {
		return 0, err
	}
	e.scene = s
	e.draw(e.clock.Time())
	return time.Since(start), nil
}

func (e *Engine) failScene(s scene.Scene, cause error) {
	err := &SceneLoadError{Scene: s, Err: cause}
	e.log.Warn().Err(err).Msgf("Scene %v", s)
	e.clock.Stop()
	e.frames.Unsubscribe()
	if err := e.renderer.ResetScene().Err("reset scene"); err != nil {
		e.log.Warn().Err(err).Send()
	}
	e.scene = nil
	e.notify(func(cb Callback) { cb.OnLoadSceneError(err) })
	e.setState(StateStopped)
}

func (e *Engine) refreshDuration() {
	if e.scene == nil {
		return
	}
	if r := e.scene.FrameRate(); r.Valid() && r != e.clock.FrameRate() {
		e.clock.SetFrameRate(r)
	}
	if d := e.scene.Duration(); d != e.clock.Duration() {
		e.clock.SetDuration(d)
	}
}

func (e *Engine) play() {
	if e.State() == StateStarted {
		return
	}
	// replay a finished scene
	if last := e.clock.MaxFrameIndex(); !e.clock.Looping() && e.clock.FrameIndex() >= last && e.scene != nil {
		e.clock.Seek(0)
	}
	e.clock.Play()
	e.frames.Subscribe(e.tick)
	e.setState(StateStarted)
}

func (e *Engine) pause() {
	if e.State() == StatePaused {
		return
	}
	e.clock.Pause()
	e.frames.Unsubscribe()
	e.setState(StatePaused)
}

func (e *Engine) stop() {
	e.clock.Stop()
	e.frames.Unsubscribe()
	e.setState(StateStopped)
}

func (e *Engine) release() {
	if s := e.State(); s == StateReleased || s == StateDisposed {
		return
	}
	e.teardown()
	e.setState(StateReleased)
}

// teardown frees the native resources, the assigned scene is kept
// for the next Init.
func (e *Engine) teardown() {
	e.clock.Stop()
	e.frames.Unsubscribe()
	if e.renderer.Alive() {
		if err := e.renderer.ResetScene().Err("reset scene"); err != nil {
			e.log.Warn().Err(err).Send()
		}
		e.renderer.Release()
		e.log.Debug().Msg("Native context released")
	}
	e.renderer = nil
	if err := e.window.Release(); err != nil {
		e.log.Error().Err(err).Msg("window release")
	}
	e.window = nil
	e.position = -1
}

func (e *Engine) onClock(t time.Duration) {
	if e.State().in(StateReady, StatePaused) {
		e.draw(t)
	}
}

func (e *Engine) draw(t time.Duration) {
	if !e.renderer.Alive() {
		return
	}
	st := e.renderer.Draw(t.Seconds())
	e.metrics.frame(st == native.OK)
	if st != native.OK {
		e.log.Warn().Err(st.Err("draw")).Msgf("Frame at %v", t)
		return
	}
	if t != e.position {
		e.position = t
		e.pos.Store(int64(t))
		e.notify(func(cb Callback) { cb.OnPositionChanged(t) })
	}
}

func (e *Engine) setState(s State) {
	old := State(e.state.Swap(int32(s)))
	if old == s {
		return
	}
	e.metrics.setState(s)
	e.log.Debug().Msgf("State %v -> %v", old, s)
	e.notify(func(cb Callback) {
		cb.OnStateChanged(s)
		switch s {
		case StateInitialized:
			cb.OnInitialized()
		case StateReady:
			cb.OnReady()
		case StateStarted:
			cb.OnStarted()
		case StatePaused:
			cb.OnPaused()
		case StateStopped:
			cb.OnStopped()
		case StateReleased:
			cb.OnReleased()
		}
	})
}

func (e *Engine) notify(fn func(cb Callback)) {
	for _, cb := range e.callbacks {
		fn(cb)
	}
}
