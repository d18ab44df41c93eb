// Package vsync delivers periodic frame callbacks.
package vsync

import (
	"sync"
	"time"
)

// Source calls the subscribed function on every display frame with a
// monotonic timestamp in nanoseconds.
type Source interface {
	Subscribe(fn func(nanos int64))
	// Unsubscribe stops the callbacks, none is running when it returns.
	Unsubscribe()
}

// Ticker is a Source driven by a timer at a fixed refresh rate.
type Ticker struct {
	mu     sync.Mutex
	period time.Duration
	epoch  time.Time
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewTicker makes a ticker running at hz frames per second.
func NewTicker(hz float64) *Ticker {
	if hz <= 0 {
		hz = 60
	}
	return &Ticker{period: time.Duration(float64(time.Second) / hz), epoch: time.Now()}
}

func (t *Ticker) Period() time.Duration { return t.period }

// Subscribe replaces the current subscriber with fn.
func (t *Ticker) Subscribe(fn func(nanos int64)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
	t.done = make(chan struct{})
	t.wg.Add(1)
	go t.run(fn, t.done)
}

func (t *Ticker) Unsubscribe() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stop()
}

func (t *Ticker) stop() {
	if t.done == nil {
		return
	}
	close(t.done)
	t.done = nil
	t.wg.Wait()
}

func (t *Ticker) run(fn func(int64), done chan struct{}) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn(time.Since(t.epoch).Nanoseconds())
		case <-done:
			return
		}
	}
}

// Manual is a Source fired by hand.
type Manual struct {
	mu sync.Mutex
	fn func(int64)
}

func (m *Manual) Subscribe(fn func(nanos int64)) { m.mu.Lock(); m.fn = fn; m.mu.Unlock() }
func (m *Manual) Unsubscribe()                   { m.mu.Lock(); m.fn = nil; m.mu.Unlock() }

// Subscribed tells whether someone listens to the frames.
func (m *Manual) Subscribed() bool { m.mu.Lock(); defer m.mu.Unlock(); return m.fn != nil }

// Fire calls the subscriber if any.
func (m *Manual) Fire(nanos int64) {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		fn(nanos)
	}
}
