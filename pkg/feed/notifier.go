package feed

import "sync"

// Notifier is an explicit favorites-changed subject. Views subscribe a
// handler and receive a payload-free signal whenever any view rewrites
// the favorites document, so each can re-derive its own projection
// without re-fetching content.
type Notifier struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func()
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{handlers: make(map[int]func())}
}

// Subscribe registers a handler and returns its cancel function.
func (n *Notifier) Subscribe(fn func()) (cancel func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.handlers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.handlers, id)
		n.mu.Unlock()
	}
}

// Notify invokes every subscribed handler.
func (n *Notifier) Notify() {
	n.mu.Lock()
	handlers := make([]func(), 0, len(n.handlers))
	for _, fn := range n.handlers {
		handlers = append(handlers, fn)
	}
	n.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}
