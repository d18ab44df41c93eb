package engine

import (
	"time"

	"github.com/framecast/player/pkg/scene"
)

type kind uint8

const (
	cmdInit kind = iota
	cmdPlay
	cmdPause
	cmdStop
	cmdSetScene
	cmdStep
	cmdSeek
	cmdResize
	cmdTick
	cmdDraw
	cmdRefreshDuration
	cmdRelease
	cmdDispose
	cmdSetLooping
	cmdSetPlayWhenReady
	cmdAddCallback
	cmdRemoveCallback
	cmdSync
	cmdCall
)

var kindNames = [...]string{
	cmdInit:             "init",
	cmdPlay:             "play",
	cmdPause:            "pause",
	cmdStop:             "stop",
	cmdSetScene:         "set_scene",
	cmdStep:             "step",
	cmdSeek:             "seek",
	cmdResize:           "resize",
	cmdTick:             "tick",
	cmdDraw:             "draw",
	cmdRefreshDuration:  "refresh_duration",
	cmdRelease:          "release",
	cmdDispose:          "dispose",
	cmdSetLooping:       "set_looping",
	cmdSetPlayWhenReady: "set_play_when_ready",
	cmdAddCallback:      "add_callback",
	cmdRemoveCallback:   "remove_callback",
	cmdSync:             "sync",
	cmdCall:             "call",
}

func (k kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// command is a message to the engine worker.
type command struct {
	kind   kind
	target Target
	scene  scene.Scene
	t      time.Duration
	n      int
	w, h   int
	nanos  int64
	flag   bool
	cb     Callback
	fn     func()
	// done gets the result of init and sync commands.
	done chan error
	// acks are closed when a release or dispose has finished.
	acks []chan struct{}
}

func newCommand(k kind) *command { return &command{kind: k} }

func (c *command) withDone() *command { c.done = make(chan error, 1); return c }

// urgent commands go ahead of the regular ones and keep their order
// among themselves. Callback changes are urgent so they stay in order
// with the lifecycle commands that report to the callbacks.
func (c *command) urgent() bool {
	switch c.kind {
	case cmdInit, cmdStop, cmdRelease, cmdDispose, cmdAddCallback, cmdRemoveCallback:
		return true
	}
	return false
}

// supersedes tells whether the queued command q becomes obsolete
// when c is enqueued.
func (c *command) supersedes(q *command) bool {
	switch c.kind {
	case cmdSetScene:
		return q.kind == cmdSetScene || q.kind == cmdSeek || q.kind == cmdTick || q.kind == cmdDraw
	case cmdSeek:
		return q.kind == cmdSeek || q.kind == cmdTick || q.kind == cmdDraw
	case cmdTick:
		return q.kind == cmdTick
	case cmdPause:
		return q.kind == cmdDraw || q.kind == cmdPause || q.kind == cmdPlay
	case cmdResize, cmdDraw:
		return q.kind == cmdDraw
	case cmdRefreshDuration:
		return q.kind == cmdRefreshDuration
	case cmdStop:
		return !q.survives(cmdInit, cmdRelease, cmdDispose)
	case cmdRelease:
		return !q.survives(cmdDispose)
	case cmdDispose:
		return true
	}
	return false
}

// survives tells whether c stays in a queue being cleared,
// the lifecycle kinds passed in outrank the clearing command.
func (c *command) survives(outrank ...kind) bool {
	switch c.kind {
	case cmdSetLooping, cmdSetPlayWhenReady, cmdAddCallback, cmdRemoveCallback, cmdSync, cmdCall:
		return true
	}
	for _, k := range outrank {
		if c.kind == k {
			return true
		}
	}
	return false
}

// cancel completes a command that will never run.
func (c *command) cancel(err error) {
	if c.done != nil {
		c.done <- err
	}
	c.ack()
}

func (c *command) ack() {
	for _, a := range c.acks {
		close(a)
	}
	c.acks = nil
}
