// Package backend polls the hosting tmux server for state the agent
// cannot be notified about: the client work area (display changes) and
// whether the widget popup is actually mapped.
package backend

import (
	"context"
	"sync"
	"time"

	"github.com/bubblechat/bubblechat/internal/tmux"
)

// Kind represents the type of data emitted by the watcher.
type Kind int

const (
	KindWorkArea Kind = iota
	KindMapped
)

// Event conveys updated data or an error from a poll.
type Event struct {
	Kind Kind
	Data interface{}
	Err  error
}

// Watcher polls tmux at a fixed interval and publishes events.
type Watcher struct {
	runner   tmux.Runner
	surface  *tmux.PopupSurface
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher that polls tmux every interval.
func NewWatcher(runner tmux.Runner, surface *tmux.PopupSurface, interval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		runner:   runner,
		surface:  surface,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.startWorkAreaPoller()
	w.startMappedPoller()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns the channel of watcher events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. Pollers exit after their current fetch
// completes; use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until all poller goroutines have exited and the events
// channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) startWorkAreaPoller() {
	throttle := newThrottle(250 * time.Millisecond)
	w.wg.Add(1)
	go w.poll(KindWorkArea, func() (interface{}, error) {
		throttle.wait()
		return tmux.ClientWorkArea(w.runner)
	})
}

func (w *Watcher) startMappedPoller() {
	throttle := newThrottle(250 * time.Millisecond)
	w.wg.Add(1)
	go w.poll(KindMapped, func() (interface{}, error) {
		throttle.wait()
		return w.surface.Mapped(), nil
	})
}

func (w *Watcher) poll(kind Kind, fetch func() (interface{}, error)) {
	defer w.wg.Done()

	emit := func() bool {
		data, err := fetch()
		evt := Event{Kind: kind, Data: data, Err: err}
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- evt:
			return true
		}
	}

	if !emit() {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}
