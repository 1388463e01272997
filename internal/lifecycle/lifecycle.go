// Package lifecycle delivers "about to become inactive" notifications from
// the host environment to subscribers.
package lifecycle

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler is invoked each time the signal fires.
type Handler func()

// Subscription is returned by Subscribe. Cancel stops further deliveries and
// may be called more than once.
type Subscription interface {
	Cancel()
}

// Source is anything a handler can be registered against.
type Source interface {
	Subscribe(h Handler) Subscription
}

// DefaultSignals are the OS signals RelaySignals listens for when none are given.
var DefaultSignals = []os.Signal{syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT}

// Notifier is a repeatable in-process signal. The zero value is ready to use.
type Notifier struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
	order    []int
}

// Subscribe registers h. Handlers run in subscription order.
func (n *Notifier) Subscribe(h Handler) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.handlers == nil {
		n.handlers = make(map[int]Handler)
	}
	id := n.nextID
	n.nextID++
	n.handlers[id] = h
	n.order = append(n.order, id)

	return &subscription{notifier: n, id: id}
}

// Notify runs every live handler synchronously on the calling goroutine.
// Handlers may cancel subscriptions while being notified.
func (n *Notifier) Notify() {
	for _, h := range n.snapshot() {
		h()
	}
}

// snapshot copies the handler list so handlers run without the lock held.
func (n *Notifier) snapshot() []Handler {
	n.mu.Lock()
	defer n.mu.Unlock()

	hs := make([]Handler, 0, len(n.order))
	for _, id := range n.order {
		hs = append(hs, n.handlers[id])
	}
	return hs
}

// Len returns the number of live subscriptions.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.handlers)
}

func (n *Notifier) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.handlers[id]; !ok {
		return
	}
	delete(n.handlers, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

type subscription struct {
	notifier *Notifier
	id       int
	once     sync.Once
}

func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.notifier.remove(s.id)
	})
}

// RelaySignals calls Notify whenever one of sigs is delivered to the process.
// With no arguments DefaultSignals is used. The returned stop function
// unregisters the signals and waits for the relay goroutine to exit.
func (n *Notifier) RelaySignals(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = DefaultSignals
	}

	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	exited := make(chan struct{})
	signal.Notify(ch, sigs...)

	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case <-ch:
				n.Notify()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
			<-exited
		})
	}
}
