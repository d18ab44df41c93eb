// Package mailbox implements a multi-producer, single-consumer message queue
// with front insertion and replace-latest semantics.
package mailbox

import "sync"

type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int // number of leading front items
	closed bool
	wake   chan struct{}
}

func New[T any]() *Mailbox[T] { return &Mailbox[T]{wake: make(chan struct{}, 1)} }

// Push appends v to the end of the queue.
func (m *Mailbox[T]) Push(v T) bool { _, ok := m.Put(v, false, nil); return ok }

// PushFront inserts v after earlier front messages and before the rest.
func (m *Mailbox[T]) PushFront(v T) bool { _, ok := m.Put(v, true, nil); return ok }

// Put atomically removes every pending message matching drop and then
// inserts v at the front or at the back of the queue.
// Front messages keep their order between each other.
// It returns the removed messages and false if the mailbox is closed.
func (m *Mailbox[T]) Put(v T, front bool, drop func(T) bool) (dropped []T, ok bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, false
	}
	if drop != nil {
		dropped = m.filter(drop)
	}
	if front {
		m.items = append(m.items, v)
		copy(m.items[m.head+1:], m.items[m.head:])
		m.items[m.head] = v
		m.head++
	} else {
		m.items = append(m.items, v)
	}
	m.mu.Unlock()
	m.signal()
	return dropped, true
}

// Remove deletes every pending message matching fn.
func (m *Mailbox[T]) Remove(fn func(T) bool) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter(fn)
}

// Pop blocks until a message is available.
// It returns false when the mailbox is closed and drained.
func (m *Mailbox[T]) Pop() (v T, ok bool) {
	for {
		m.mu.Lock()
		if len(m.items) > 0 {
			v = m.items[0]
			var zero T
			m.items[0] = zero
			m.items = m.items[1:]
			if m.head > 0 {
				m.head--
			}
			m.mu.Unlock()
			return v, true
		}
		if m.closed {
			m.mu.Unlock()
			return v, false
		}
		m.mu.Unlock()
		<-m.wake
	}
}

func (m *Mailbox[T]) Len() int { m.mu.Lock(); defer m.mu.Unlock(); return len(m.items) }

// Close stops accepting messages and discards the pending ones,
// which are returned to the caller.
func (m *Mailbox[T]) Close() []T {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	rest := m.items
	m.items, m.head = nil, 0
	m.mu.Unlock()
	m.signal()
	return rest
}

func (m *Mailbox[T]) IsClosed() bool { m.mu.Lock(); defer m.mu.Unlock(); return m.closed }

func (m *Mailbox[T]) filter(fn func(T) bool) (removed []T) {
	kept, head := m.items[:0], m.head
	for i, it := range m.items {
		if fn(it) {
			removed = append(removed, it)
			if i < m.head {
				head--
			}
		} else {
			kept = append(kept, it)
		}
	}
	var zero T
	for i := len(kept); i < len(m.items); i++ {
		m.items[i] = zero
	}
	m.items, m.head = kept, head
	return
}

func (m *Mailbox[T]) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
