package remote

import "time"

// Request is a control message sent by a client.
//
//	{"id": "1", "cmd": "seek", "at": 1.5}
type Request struct {
	ID  string  `json:"id,omitempty"`
	Cmd string  `json:"cmd"`
	At  float64 `json:"at,omitempty"`
	N   int     `json:"n,omitempty"`
	W   int     `json:"w,omitempty"`
	H   int     `json:"h,omitempty"`
	On  bool    `json:"on,omitempty"`
	Src string  `json:"src,omitempty"`
}

// Event is a message sent to clients, either a reply
// to a request with the same id or an engine event.
type Event struct {
	Event    string  `json:"event"`
	ID       string  `json:"id,omitempty"`
	State    string  `json:"state,omitempty"`
	Position float64 `json:"position"`
	Scene    string  `json:"scene,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Error    string  `json:"error,omitempty"`
}

const (
	EventAck      = "ack"
	EventState    = "state"
	EventPosition = "position"
	EventScene    = "scene"
	EventError    = "error"
)

// Status is the player snapshot served over HTTP.
type Status struct {
	ID       string  `json:"id"`
	State    string  `json:"state"`
	Position float64 `json:"position"`
	Time     float64 `json:"time"`
	Pending  int     `json:"pending"`
	Sessions int     `json:"sessions"`
}

func seconds(d time.Duration) float64 { return d.Seconds() }
func duration(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
