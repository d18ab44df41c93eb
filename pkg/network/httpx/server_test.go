package httpx

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/framecast/player/pkg/logger"
)

func TestServerPrefix(t *testing.T) {
	s, err := NewServer("127.0.0.1:0", func(s *Server) Handler {
		return s.Mux().HandleFunc("/ping", func(w ResponseWriter, _ *Request) { _, _ = w.Write([]byte("pong")) })
	}, WithPrefix("/api"), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	s.Run()
	defer func() { _ = s.Shutdown(context.Background()) }()

	if s.GetProtocol() != "http" {
		t.Errorf("protocol %v", s.GetProtocol())
	}

	resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(s.Port()) + "/api/ping")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "pong" {
		t.Errorf("expected pong, got %q", b)
	}
}
