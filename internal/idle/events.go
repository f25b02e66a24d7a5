// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import "sync"

// =============================================================================
// EVENT KINDS
// =============================================================================

// EventKind identifies a kind of user-interaction event that counts as
// session activity.
type EventKind int

const (
	// EventPointerPress is a pointer button being pressed.
	EventPointerPress EventKind = iota
	// EventPointerMove is pointer movement.
	EventPointerMove
	// EventKeyPress is a key press (character input).
	EventKeyPress
	// EventKeyDown is a raw key-down.
	EventKeyDown
	// EventScroll is a scroll gesture.
	EventScroll
	// EventWheel is a wheel rotation.
	EventWheel
	// EventTouchStart is the start of a touch.
	EventTouchStart
	// EventClick is a completed click.
	EventClick
)

// String returns a string representation of the EventKind.
func (k EventKind) String() string {
	switch k {
	case EventPointerPress:
		return "pointer_press"
	case EventPointerMove:
		return "pointer_move"
	case EventKeyPress:
		return "key_press"
	case EventKeyDown:
		return "key_down"
	case EventScroll:
		return "scroll"
	case EventWheel:
		return "wheel"
	case EventTouchStart:
		return "touch_start"
	case EventClick:
		return "click"
	default:
		return "unknown"
	}
}

// DefaultEventKinds returns the fixed set of interaction events the
// monitor observes.
func DefaultEventKinds() []EventKind {
	return []EventKind{
		EventPointerPress,
		EventPointerMove,
		EventKeyPress,
		EventKeyDown,
		EventScroll,
		EventWheel,
		EventTouchStart,
		EventClick,
	}
}

// =============================================================================
// ACTIVITY SOURCE
// =============================================================================

// ActivitySource is a generic subscribe/unsubscribe abstraction over the
// host environment's interaction events. The returned function removes
// the subscription and is safe to call more than once.
type ActivitySource interface {
	Subscribe(kinds []EventKind, fn func()) (unsubscribe func())
}

// =============================================================================
// HUB
// =============================================================================

// Hub is an in-process ActivitySource. Hosts push interaction events
// into it with Emit and the monitor subscribes to the kinds it cares
// about. All methods are safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*hubSub
}

type hubSub struct {
	kinds map[EventKind]struct{}
	fn    func()
}

// NewHub creates an empty activity hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*hubSub)}
}

// Subscribe registers fn for the given event kinds.
func (h *Hub) Subscribe(kinds []EventKind, fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	set := make(map[EventKind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	h.subs[id] = &hubSub{kinds: set, fn: fn}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Emit delivers an interaction event of the given kind to all matching
// subscribers.
func (h *Hub) Emit(kind EventKind) {
	h.mu.Lock()
	fns := make([]func(), 0, len(h.subs))
	for _, s := range h.subs {
		if _, ok := s.kinds[kind]; ok {
			fns = append(fns, s.fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
