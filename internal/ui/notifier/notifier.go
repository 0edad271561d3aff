// Package notifier broadcasts document reloads to connected feed clients.
package notifier

import "sync"

// Notifier fans a revision number out to every subscriber. Listeners only
// need the latest revision, so a slow listener drops older ones.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan uint64]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan uint64]struct{}),
	}
}

// Subscribe returns a channel receiving revisions.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan uint64 {
	ch := make(chan uint64, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan uint64) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Subscribers returns the number of listeners.
func (n *Notifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast sends revision to all listeners without blocking. A pending,
// unread revision is replaced.
func (n *Notifier) Broadcast(revision uint64) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- revision:
		default:
		}
	}
}
