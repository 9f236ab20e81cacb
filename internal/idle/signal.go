// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import (
	"sync"
	"time"
)

// =============================================================================
// ACTIVITY SIGNALS
// =============================================================================

// SignalKind identifies one type of user interaction.
type SignalKind int

const (
	PointerDown SignalKind = iota
	PointerMove
	KeyPress
	KeyDown
	Scroll
	TouchStart
	Click
)

// ActivityKinds is the fixed set of signals that count as user activity.
var ActivityKinds = []SignalKind{
	PointerDown,
	PointerMove,
	KeyPress,
	KeyDown,
	Scroll,
	TouchStart,
	Click,
}

// String returns the DOM-style event name of the kind.
func (k SignalKind) String() string {
	switch k {
	case PointerDown:
		return "mousedown"
	case PointerMove:
		return "mousemove"
	case KeyPress:
		return "keypress"
	case KeyDown:
		return "keydown"
	case Scroll:
		return "scroll"
	case TouchStart:
		return "touchstart"
	case Click:
		return "click"
	default:
		return "unknown"
	}
}

// Signal is a single activity event.
type Signal struct {
	Kind SignalKind
	At   time.Time
}

// NewSignal returns a signal of kind k stamped with the current time.
func NewSignal(k SignalKind) Signal {
	return Signal{Kind: k, At: time.Now()}
}

// =============================================================================
// BUS
// =============================================================================

// Bus fans activity signals out to subscribers. It is the process-wide
// activity source the host feeds from its input events.
//
// Handlers run synchronously on the goroutine that calls Publish, which for
// watchdogs must be the event loop.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]subscription
}

type subscription struct {
	kinds map[SignalKind]struct{}
	fn    func(Signal)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]subscription)}
}

// Subscribe registers fn for the given kinds and returns a function that
// removes the subscription. The returned function is idempotent.
func (b *Bus) Subscribe(kinds []SignalKind, fn func(Signal)) (cancel func()) {
	set := make(map[SignalKind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscription{kinds: set, fn: fn}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers sig to every subscriber interested in its kind.
// Subscribers removed by an earlier handler in the same Publish are skipped.
func (b *Bus) Publish(sig Signal) {
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.subs))
	for id, s := range b.subs {
		if _, ok := s.kinds[sig.Kind]; ok {
			ids = append(ids, id)
		}
	}
	b.mu.Unlock()

	for _, id := range ids {
		b.mu.Lock()
		s, ok := b.subs[id]
		b.mu.Unlock()
		if ok {
			s.fn(sig)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
