// Package remote controls a player over websocket connections
// and streams its events back to every connected client.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/framecast/player/pkg/config"
	"github.com/framecast/player/pkg/engine"
	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/network/httpx"
	"github.com/framecast/player/pkg/network/websocket"
	"github.com/framecast/player/pkg/os"
	"github.com/framecast/player/pkg/scene"
	"github.com/goccy/go-json"
)

const sceneLoadTimeout = 30 * time.Second

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNoLoader       = errors.New("scene loading is not available")
)

// Player is the part of the engine the remote drives.
type Player interface {
	ID() string
	State() engine.State
	Position() time.Duration
	Time() time.Duration
	Pending() int

	Play()
	Pause()
	Stop()
	Step(n int)
	Seek(t time.Duration)
	Resize(w, h int)
	Refresh()
	SetLooping(v bool)
	SetPlayWhenReady(v bool)
	SetScene(s scene.Scene)
}

// Loader opens a scene from a local path or URL.
type Loader func(ctx context.Context, src string) (scene.Scene, error)

// Control translates client requests into player commands.
// It is also an engine callback that broadcasts events.
type Control struct {
	player Player
	load   Loader

	mu       sync.RWMutex
	sessions map[string]*websocket.WS

	log *logger.Logger
}

func NewControl(player Player, load Loader, log *logger.Logger) *Control {
	return &Control{
		player:   player,
		load:     load,
		sessions: make(map[string]*websocket.WS),
		log:      log.Module("remote"),
	}
}

// Routes adds the websocket and status handlers to the mux.
func (c *Control) Routes(mux *httpx.Mux, path string) *httpx.Mux {
	return mux.
		HandleFunc(path, c.serveWS).
		HandleFunc("/status", c.serveStatus)
}

func (c *Control) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Upgrade(w, r, c.log)
	if err != nil {
		c.log.Error().Err(err).Msg("websocket upgrade")
		return
	}
	c.mu.Lock()
	c.sessions[ws.Id()] = ws
	c.mu.Unlock()
	c.log.Info().Str("session", ws.Id()).Msgf("Connected %v", r.RemoteAddr)

	ws.Start(func(message []byte) { c.handle(ws, message) })
	go func() {
		<-ws.Done()
		c.mu.Lock()
		delete(c.sessions, ws.Id())
		c.mu.Unlock()
		c.log.Info().Str("session", ws.Id()).Msg("Disconnected")
	}()
}

func (c *Control) serveStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(c.Status()); err != nil {
		c.log.Error().Err(err).Msg("status")
	}
}

// Status returns the current player snapshot.
func (c *Control) Status() Status {
	c.mu.RLock()
	n := len(c.sessions)
	c.mu.RUnlock()
	return Status{
		ID:       c.player.ID(),
		State:    c.player.State().String(),
		Position: seconds(c.player.Position()),
		Time:     seconds(c.player.Time()),
		Pending:  c.player.Pending(),
		Sessions: n,
	}
}

// Sessions is the number of connected clients.
func (c *Control) Sessions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *Control) handle(ws *websocket.WS, message []byte) {
	var req Request
	if err := json.Unmarshal(message, &req); err != nil {
		c.reply(ws, Event{Event: EventAck, Error: err.Error()})
		return
	}
	c.log.Debug().Str("session", ws.Id()).Msgf("cmd %v", req.Cmd)
	ack := Event{Event: EventAck, ID: req.ID}
	if err := c.Do(req); err != nil {
		ack.Error = err.Error()
	}
	c.reply(ws, ack)
}

// Do runs one request against the player.
func (c *Control) Do(req Request) error {
	p := c.player
	switch req.Cmd {
	case "play":
		p.Play()
	case "pause":
		p.Pause()
	case "stop":
		p.Stop()
	case "step":
		n := req.N
		if n == 0 {
			n = 1
		}
		p.Step(n)
	case "seek":
		p.Seek(duration(req.At))
	case "resize":
		p.Resize(req.W, req.H)
	case "refresh":
		p.Refresh()
	case "loop":
		p.SetLooping(req.On)
	case "autoplay":
		p.SetPlayWhenReady(req.On)
	case "scene":
		if req.Src == "" {
			p.SetScene(nil)
			return nil
		}
		if c.load == nil {
			return ErrNoLoader
		}
		ctx, cancel := context.WithTimeout(context.Background(), sceneLoadTimeout)
		defer cancel()
		s, err := c.load(ctx, req.Src)
		if err != nil {
			return err
		}
		p.SetScene(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, req.Cmd)
	}
	return nil
}

func (c *Control) reply(ws *websocket.WS, e Event) {
	b, err := json.Marshal(e)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal")
		return
	}
	ws.Write(b)
}

func (c *Control) broadcast(e Event) {
	b, err := json.Marshal(e)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal")
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ws := range c.sessions {
		ws.Write(b)
	}
}

func (c *Control) OnStateChanged(s engine.State) {
	c.broadcast(Event{Event: EventState, State: s.String(), Position: seconds(c.player.Position())})
}

func (c *Control) OnInitialized() {}
func (c *Control) OnReady()       {}
func (c *Control) OnStarted()     {}
func (c *Control) OnPaused()      {}
func (c *Control) OnStopped()     {}
func (c *Control) OnReleased()    {}

func (c *Control) OnSceneChanged(s scene.Scene, _ time.Duration) {
	e := Event{Event: EventScene}
	if s != nil {
		e.Scene = fmt.Sprint(s)
		e.Duration = seconds(s.Duration())
	}
	c.broadcast(e)
}

func (c *Control) OnLoadSceneError(err error) {
	c.broadcast(Event{Event: EventError, Error: err.Error()})
}

func (c *Control) OnPositionChanged(t time.Duration) {
	c.broadcast(Event{Event: EventPosition, Position: seconds(t)})
}

// Close disconnects all clients.
func (c *Control) Close() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ws := range c.sessions {
		ws.Close()
	}
}

// Server is the HTTP(S) front of a control.
type Server struct {
	*Control

	conf   config.Remote
	server *httpx.Server
}

func New(conf config.Remote, control *Control) (*Server, error) {
	opts := []httpx.Option{httpx.WithLogger(control.log)}
	if conf.Https {
		cache, err := os.ExpandHome(conf.Tls.Cache)
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpx.WithTLS(conf.Tls.Cert, conf.Tls.Key, conf.Tls.Domain, cache))
	}
	srv, err := httpx.NewServer(conf.Address, func(s *httpx.Server) httpx.Handler {
		return control.Routes(s.Mux(), conf.Path)
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &Server{Control: control, conf: conf, server: srv}, nil
}

func (s *Server) Run() {
	s.log.Info().Msgf("Starting remote control at %v", s.server.URL(s.conf.Path))
	s.server.Run()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	return s.server.Shutdown(ctx)
}

// Port is the port the server has actually bound.
func (s *Server) Port() int { return s.server.Port() }

func (s *Server) String() string { return "remote::" + s.conf.Address }
