// Package thread pins window system calls to the main OS thread.
//
// SDL on macOS accepts window and event calls only from the thread that
// started the process, while the engine draws from its own goroutine.
// The main goroutine is handed to Wrap, every other goroutine goes
// through Main or Call. Elsewhere both run the function in place.
package thread

import (
	"runtime"
	"sync/atomic"

	"github.com/faiface/mainthread"
)

var (
	pinned  = runtime.GOOS == "darwin"
	running atomic.Bool
)

// Wrap serves main thread calls until f returns.
// It has to be called from the main goroutine of the program.
func Wrap(f func()) {
	running.Store(true)
	defer running.Store(false)
	if pinned {
		mainthread.Run(f)
		return
	}
	f()
}

// Running tells whether a Wrap call serves the main thread now.
func Running() bool { return running.Load() }

// Main calls f on the main thread and waits for it.
// Without Wrap there is no one to serve it, so f is called in place.
func Main(f func()) {
	if pinned && running.Load() {
		mainthread.Call(f)
		return
	}
	f()
}

// Call is Main for functions that fail.
func Call(f func() error) (err error) {
	Main(func() { err = f() })
	return
}
