// Package toolbox keeps the room toolbar actions and tells subscribers
// when the set changes.
package toolbox

import (
	"cmp"
	"slices"
	"sync"

	"github.com/itchan-dev/filemsg/shared/domain"
)

// Group is the kind of room an action is shown in.
type Group string

const (
	GroupChannel        Group = "channel"
	GroupPrivate        Group = "group"
	GroupLive           Group = "live"
	GroupDirect         Group = "direct"
	GroupDirectMultiple Group = "direct_multiple"
)

// GroupOf maps a room to its toolbar group.
func GroupOf(room *domain.Room) Group {
	switch room.Type {
	case domain.RoomTypeChannel:
		return GroupChannel
	case domain.RoomTypeLive:
		return GroupLive
	case domain.RoomTypeDirect:
		if room.IsDirectMultiple() {
			return GroupDirectMultiple
		}
		return GroupDirect
	default:
		return GroupPrivate
	}
}

type ActionConfig struct {
	Id       string
	Icon     string
	Title    string
	Full     bool
	Order    int
	Groups   []Group
	Hotkey   string
	Template string
}

// Action is either a static ActionConfig or a Hook deciding per room.
type Action interface {
	Resolve(room *domain.Room) *ActionConfig
}

func (c ActionConfig) Resolve(*domain.Room) *ActionConfig {
	return &c
}

// Hook computes the action for a room, nil hides it.
type Hook func(room *domain.Room) *ActionConfig

func (h Hook) Resolve(room *domain.Room) *ActionConfig {
	return h(room)
}

// Snapshot is a copy of the registered actions at one point in time.
type Snapshot map[string]Action

type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action

	subsMu  sync.Mutex
	subs    map[uint64]chan Snapshot
	nextSub uint64
}

func New() *Registry {
	return &Registry{
		actions: make(map[string]Action),
		subs:    make(map[uint64]chan Snapshot),
	}
}

// Add registers or replaces the action under id.
func (r *Registry) Add(id string, action Action) {
	r.mu.Lock()
	r.actions[id] = action
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snapshot)
}

// Delete removes the action under id and reports whether it existed.
// Subscribers are notified either way.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	_, ok := r.actions[id]
	delete(r.actions, id)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.notify(snapshot)
	return ok
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Subscribe returns a channel carrying the latest snapshot after every
// change. A slow reader only ever sees the most recent one.
func (r *Registry) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	r.subsMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	r.subsMu.Unlock()

	cancel := func() {
		r.subsMu.Lock()
		defer r.subsMu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// ForRoom resolves every action for room and keeps the ones shown in its
// group, ordered by Order then Id.
func (r *Registry) ForRoom(room *domain.Room) []ActionConfig {
	if room == nil {
		return nil
	}
	group := GroupOf(room)

	result := []ActionConfig{}
	for _, action := range r.Snapshot() {
		cfg := action.Resolve(room)
		if cfg == nil || !slices.Contains(cfg.Groups, group) {
			continue
		}
		result = append(result, *cfg)
	}
	slices.SortFunc(result, func(a, b ActionConfig) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.Id, b.Id))
	})
	return result
}

func (r *Registry) snapshotLocked() Snapshot {
	s := make(Snapshot, len(r.actions))
	for id, a := range r.actions {
		s[id] = a
	}
	return s
}

func (r *Registry) notify(snapshot Snapshot) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	for _, ch := range r.subs {
		// Replace an unread snapshot with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
