package sdl

import (
	"github.com/framecast/player/pkg/thread"
	"github.com/veandco/go-sdl2/sdl"
)

// Input receives window events, nil handlers are skipped.
type Input struct {
	Resize func(w, h int)
	// Key gets SDL key names like "Space" or "Left".
	Key  func(name string)
	Quit func()
}

// PollEvents drains the SDL event queue on the main thread
// and calls the handlers afterwards on the caller's one.
func PollEvents(in Input) {
	var events []sdl.Event
	thread.Main(func() {
		for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
			events = append(events, ev)
		}
	})
	for _, ev := range events {
		dispatch(ev, in)
	}
}

func dispatch(ev sdl.Event, in Input) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		if in.Quit != nil {
			in.Quit()
		}
	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED && in.Resize != nil {
			in.Resize(int(e.Data1), int(e.Data2))
		}
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 && in.Key != nil {
			in.Key(sdl.GetKeyName(e.Keysym.Sym))
		}
	}
}
