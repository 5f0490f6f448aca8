// internal/games/spectrum/mailbox.go

package spectrum

import "sync"

// mailbox runs posted functions one at a time in arrival order.
// Whoever posts into an idle mailbox drains it on its own goroutine, so a
// timer callback or socket read is processed inline unless another event is in flight.
type mailbox struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

func (m *mailbox) post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		next()
		m.mu.Lock()
	}
	m.draining = false
	m.mu.Unlock()
}

// call posts fn and waits for its result. Never call it from inside a posted function.
func (m *mailbox) call(fn func() error) error {
	done := make(chan error, 1)
	m.post(func() { done <- fn() })
	return <-done
}
