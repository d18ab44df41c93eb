package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/framecast/player/pkg/logger"
)

func TestEcho(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := Upgrade(w, r, logger.Nop())
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ws.Start(func(m []byte) { ws.Write(append([]byte("echo "), m...)) })
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan string, 1)
	client, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), logger.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	client.Start(func(m []byte) { got <- string(m) })
	if client.Id() == "" {
		t.Errorf("no id")
	}

	if !client.Write([]byte("hi")) {
		t.Fatalf("message was dropped")
	}
	select {
	case m := <-got:
		if m != "echo hi" {
			t.Errorf("expected echo, got %q", m)
		}
	case <-ctx.Done():
		t.Fatalf("no echo")
	}

	client.Close()
	select {
	case <-client.Done():
	case <-ctx.Done():
		t.Fatalf("client pumps are still running")
	}
	if client.Write([]byte("late")) {
		t.Errorf("write after close should be dropped")
	}
}
