package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/framecast/player/pkg/clock"
	"github.com/framecast/player/pkg/engine"
	"github.com/framecast/player/pkg/logger"
	"github.com/framecast/player/pkg/network/httpx"
	"github.com/framecast/player/pkg/scene"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type fakePlayer struct {
	mu    sync.Mutex
	calls []string
}

func (p *fakePlayer) add(f string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(f, args...))
}

func (p *fakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePlayer) ID() string              { return "test" }
func (p *fakePlayer) State() engine.State     { return engine.StatePaused }
func (p *fakePlayer) Position() time.Duration { return 1500 * time.Millisecond }
func (p *fakePlayer) Time() time.Duration     { return 1500 * time.Millisecond }
func (p *fakePlayer) Pending() int            { return 2 }
func (p *fakePlayer) Play()                   { p.add("play") }
func (p *fakePlayer) Pause()                  { p.add("pause") }
func (p *fakePlayer) Stop()                   { p.add("stop") }
func (p *fakePlayer) Step(n int)              { p.add("step:%v", n) }
func (p *fakePlayer) Seek(t time.Duration)    { p.add("seek:%v", t) }
func (p *fakePlayer) Resize(w, h int)         { p.add("resize:%vx%v", w, h) }
func (p *fakePlayer) Refresh()                { p.add("refresh") }
func (p *fakePlayer) SetLooping(v bool)       { p.add("loop:%v", v) }
func (p *fakePlayer) SetPlayWhenReady(v bool) { p.add("autoplay:%v", v) }
func (p *fakePlayer) SetScene(s scene.Scene)  { p.add("scene:%v", s) }

type testScene string

func (s testScene) Duration() time.Duration   { return 2 * time.Second }
func (s testScene) FrameRate() clock.Rational { return clock.Rational{Num: 30, Den: 1} }
func (s testScene) String() string            { return string(s) }

func load(_ context.Context, src string) (scene.Scene, error) {
	if src == "bad" {
		return nil, errors.New("no such scene")
	}
	return testScene(src), nil
}

func TestDo(t *testing.T) {
	p := &fakePlayer{}
	c := NewControl(p, load, logger.Nop())

	tests := []struct {
		req  Request
		call string
		err  error
	}{
		{req: Request{Cmd: "play"}, call: "play"},
		{req: Request{Cmd: "pause"}, call: "pause"},
		{req: Request{Cmd: "stop"}, call: "stop"},
		{req: Request{Cmd: "step"}, call: "step:1"},
		{req: Request{Cmd: "step", N: -3}, call: "step:-3"},
		{req: Request{Cmd: "seek", At: 1.25}, call: "seek:1.25s"},
		{req: Request{Cmd: "resize", W: 320, H: 200}, call: "resize:320x200"},
		{req: Request{Cmd: "refresh"}, call: "refresh"},
		{req: Request{Cmd: "loop", On: true}, call: "loop:true"},
		{req: Request{Cmd: "autoplay"}, call: "autoplay:false"},
		{req: Request{Cmd: "scene", Src: "a.yaml"}, call: "scene:a.yaml"},
		{req: Request{Cmd: "scene"}, call: "scene:<nil>"},
		{req: Request{Cmd: "scene", Src: "bad"}, err: errors.New("no such scene")},
		{req: Request{Cmd: "jump"}, err: ErrUnknownCommand},
	}

	for _, test := range tests {
		before := len(p.Calls())
		err := c.Do(test.req)
		if test.err != nil {
			if err == nil || !(errors.Is(err, test.err) || err.Error() == test.err.Error()) {
				t.Errorf("%v: expected error %v, got %v", test.req.Cmd, test.err, err)
			}
			if len(p.Calls()) != before {
				t.Errorf("%v: no call expected", test.req.Cmd)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v: unexpected error %v", test.req.Cmd, err)
			continue
		}
		calls := p.Calls()
		if len(calls) != before+1 || calls[before] != test.call {
			t.Errorf("%v: expected call %v, got %v", test.req.Cmd, test.call, calls[before:])
		}
	}

	if err := NewControl(p, nil, logger.Nop()).Do(Request{Cmd: "scene", Src: "a"}); !errors.Is(err, ErrNoLoader) {
		t.Errorf("expected %v, got %v", ErrNoLoader, err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		t.Fatalf("event %s: %v", b, err)
	}
	return e
}

func TestSession(t *testing.T) {
	p := &fakePlayer{}
	c := NewControl(p, load, logger.Nop())
	srv := httptest.NewServer(c.Routes(httpx.NewServeMux(""), "/ws"))
	defer srv.Close()
	defer c.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Request{ID: "1", Cmd: "seek", At: 0.5}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if e := readEvent(t, conn); e.Event != EventAck || e.ID != "1" || e.Error != "" {
		t.Errorf("unexpected ack %+v", e)
	}
	if calls := p.Calls(); len(calls) != 1 || calls[0] != "seek:500ms" {
		t.Errorf("unexpected calls %v", calls)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if e := readEvent(t, conn); e.Event != EventAck || e.Error == "" {
		t.Errorf("expected a decode error, got %+v", e)
	}

	if c.Sessions() != 1 {
		t.Errorf("expected 1 session, got %v", c.Sessions())
	}

	c.OnStateChanged(engine.StateStarted)
	if e := readEvent(t, conn); e.Event != EventState || e.State != "started" || e.Position != 1.5 {
		t.Errorf("unexpected state event %+v", e)
	}
	c.OnSceneChanged(testScene("intro"), time.Millisecond)
	if e := readEvent(t, conn); e.Event != EventScene || e.Scene != "intro" || e.Duration != 2 {
		t.Errorf("unexpected scene event %+v", e)
	}
	c.OnLoadSceneError(errors.New("broken"))
	if e := readEvent(t, conn); e.Event != EventError || e.Error != "broken" {
		t.Errorf("unexpected error event %+v", e)
	}
	c.OnPositionChanged(250 * time.Millisecond)
	if e := readEvent(t, conn); e.Event != EventPosition || e.Position != 0.25 {
		t.Errorf("unexpected position event %+v", e)
	}
}

func TestStatus(t *testing.T) {
	c := NewControl(&fakePlayer{}, nil, logger.Nop())
	srv := httptest.NewServer(c.Routes(httpx.NewServeMux("/player"), "/ws"))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/player/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var s Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Status{ID: "test", State: "paused", Position: 1.5, Time: 1.5, Pending: 2}
	if s != want {
		t.Errorf("expected %+v, got %+v", want, s)
	}
}
