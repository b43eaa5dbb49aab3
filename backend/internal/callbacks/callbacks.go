// Package callbacks is a named-event hook registry.
package callbacks

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/itchan-dev/filemsg/shared/logger"
)

type Priority int

const (
	PriorityHigh   Priority = -1000
	PriorityMedium Priority = 0
	PriorityLow    Priority = 1000
)

type Handler func(ctx context.Context, payload any) error

type entry struct {
	id       string
	priority Priority
	seq      int
	fn       Handler
}

type Registry struct {
	mu     sync.RWMutex
	events map[string][]entry
	seq    int
}

func New() *Registry {
	return &Registry{events: make(map[string][]entry)}
}

// Add registers fn for event under id, replacing an earlier handler with the
// same id. Handlers run in ascending priority, ties in registration order.
func (r *Registry) Add(event, id string, priority Priority, fn Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := slices.DeleteFunc(r.events[event], func(e entry) bool { return e.id == id })
	r.seq++
	handlers = append(handlers, entry{id: id, priority: priority, seq: r.seq, fn: fn})
	slices.SortFunc(handlers, func(a, b entry) int {
		return cmp.Or(cmp.Compare(a.priority, b.priority), cmp.Compare(a.seq, b.seq))
	})
	r.events[event] = handlers
}

func (r *Registry) Remove(event, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.events[event])
	r.events[event] = slices.DeleteFunc(r.events[event], func(e entry) bool { return e.id == id })
	return len(r.events[event]) != before
}

// Run calls every handler of event. A failing or panicking handler does not
// stop the chain; all failures are returned joined.
func (r *Registry) Run(ctx context.Context, event string, payload any) error {
	r.mu.RLock()
	handlers := slices.Clone(r.events[event])
	r.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := call(ctx, h.fn, payload); err != nil {
			logger.Log.Warn("callback failed",
				"component", "callbacks",
				"event", event,
				"callback", h.id,
				"error", err)
			errs = append(errs, fmt.Errorf("%s/%s: %w", event, h.id, err))
		}
	}
	return errors.Join(errs...)
}

func call(ctx context.Context, fn Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx, payload)
}
