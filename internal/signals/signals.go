// Package signals turns process signals and users-file changes into the
// reload and shutdown events consumed by the accept loop.
package signals

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Event is a lifecycle request for the server.
type Event int

const (
	// EventReload asks the server to re-read the users file.
	EventReload Event = iota + 1

	// EventShutdown asks the server to stop accepting and exit.
	EventShutdown
)

func (e Event) String() string {
	switch e {
	case EventReload:
		return "reload"
	case EventShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// eventBuffer bounds how many undelivered events a source holds.
const eventBuffer = 8

// handled lists the signals Subscribe listens for.
var handled = []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM}

// Translate maps a signal to the event it requests.
func Translate(sig os.Signal) (Event, bool) {
	switch sig {
	case syscall.SIGHUP:
		return EventReload, true
	case syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM:
		return EventShutdown, true
	default:
		return 0, false
	}
}

// Subscription delivers signal events until closed.
type Subscription struct {
	sigCh  chan os.Signal
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Subscribe starts listening for SIGHUP (reload) and SIGINT, SIGQUIT and
// SIGTERM (shutdown). Once subscribed these signals no longer terminate the
// process by default; call Close to restore that.
func Subscribe(ctx context.Context) *Subscription {
	s := &Subscription{
		sigCh:  make(chan os.Signal, eventBuffer),
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	signal.Notify(s.sigCh, handled...)

	go s.run(ctx)
	return s
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.events)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case sig := <-s.sigCh:
			ev, ok := Translate(sig)
			if !ok {
				continue
			}
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}
}

// Events returns the event channel. It is closed after Close or when the
// subscription context ends.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close stops signal delivery. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		signal.Stop(s.sigCh)
		close(s.done)
	})
}

// Merge fans several event channels into one. The result is closed when
// every input is closed or ctx ends.
func Merge(ctx context.Context, chans ...<-chan Event) <-chan Event {
	out := make(chan Event, eventBuffer)

	var wg sync.WaitGroup
	for _, ch := range chans {
		if ch == nil {
			continue
		}
		wg.Add(1)
		go func(ch <-chan Event) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-ch:
					if !ok {
						return
					}
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
