// Package websocket runs gorilla websocket connections with
// separate read and write pumps.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/framecast/player/pkg/logger"
	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxMessageSize = 10 * 1024
	pingTime       = pongTime * 9 / 10
	pongTime       = 60 * time.Second
	writeWait      = 10 * time.Second
	sendQueue      = 64
)

type WS struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	done chan struct{}

	pingPong bool
	log      *logger.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	WriteBufferPool: &sync.Pool{},
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Upgrade makes a server-side connection with pings.
func Upgrade(w http.ResponseWriter, r *http.Request, log *logger.Logger) (*WS, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newSocket(conn, true, log), nil
}

// Dial makes a client connection.
func Dial(ctx context.Context, address string, log *logger.Logger) (*WS, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, address, nil)
	if err != nil {
		return nil, err
	}
	return newSocket(conn, false, log), nil
}

func newSocket(conn *websocket.Conn, pingPong bool, log *logger.Logger) *WS {
	id := uuid.Must(uuid.NewV4()).String()
	if log == nil {
		log = logger.Default()
	}
	return &WS{
		id:       id,
		conn:     conn,
		send:     make(chan []byte, sendQueue),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		pingPong: pingPong,
		log:      log.Extend(log.With().Str("ws", id[:8])),
	}
}

func (ws *WS) Id() string { return ws.id }

// Start runs the pumps. Every incoming message goes into onMessage
// from a single goroutine.
func (ws *WS) Start(onMessage func(message []byte)) {
	ws.wg.Add(2)
	go ws.writer()
	go ws.reader(onMessage)
	go func() {
		ws.wg.Wait()
		close(ws.done)
	}()
}

// Done is closed when both pumps have finished.
func (ws *WS) Done() <-chan struct{} { return ws.done }

// Write queues a text message. It never blocks
// and reports false when the message was dropped.
func (ws *WS) Write(data []byte) bool {
	select {
	case <-ws.quit:
		return false
	default:
	}
	select {
	case ws.send <- data:
		return true
	default:
		ws.log.Warn().Msg("send queue is full, message dropped")
		return false
	}
}

// Close sends a close message and stops the pumps.
func (ws *WS) Close() { ws.once.Do(func() { close(ws.quit) }) }

// reader pumps messages from the connection to the handler.
func (ws *WS) reader(onMessage func([]byte)) {
	defer func() {
		ws.Close()
		ws.wg.Done()
		ws.log.Debug().Msg("reader closed")
	}()
	ws.conn.SetReadLimit(maxMessageSize)
	if ws.pingPong {
		_ = ws.conn.SetReadDeadline(time.Now().Add(pongTime))
		ws.conn.SetPongHandler(func(string) error { return ws.conn.SetReadDeadline(time.Now().Add(pongTime)) })
	}
	for {
		_, message, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.Warn().Err(err).Msg("read")
			}
			return
		}
		onMessage(message)
	}
}

// writer pumps messages from the send queue to the connection.
func (ws *WS) writer() {
	var ping <-chan time.Time
	if ws.pingPong {
		ticker := time.NewTicker(pingTime)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer func() {
		_ = ws.conn.Close()
		ws.wg.Done()
		ws.log.Debug().Msg("writer closed")
	}()
	for {
		select {
		case message := <-ws.send:
			if err := ws.write(websocket.TextMessage, message); err != nil {
				ws.log.Warn().Err(err).Msg("write")
				ws.Close()
				return
			}
		case <-ping:
			if err := ws.write(websocket.PingMessage, nil); err != nil {
				ws.Close()
				return
			}
		case <-ws.quit:
			_ = ws.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (ws *WS) write(t int, message []byte) error {
	if err := ws.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return ws.conn.WriteMessage(t, message)
}
