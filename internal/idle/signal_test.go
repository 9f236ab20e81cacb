// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/receipta-tui/internal/idle"
)

func TestActivityKinds(t *testing.T) {
	assert.Len(t, idle.ActivityKinds, 7)

	names := map[string]bool{}
	for _, k := range idle.ActivityKinds {
		names[k.String()] = true
	}
	for _, want := range []string{"mousedown", "mousemove", "keypress", "keydown", "scroll", "touchstart", "click"} {
		assert.True(t, names[want], "missing %s", want)
	}
	assert.Equal(t, "unknown", idle.SignalKind(99).String())
}

func TestBus_FiltersByKind(t *testing.T) {
	bus := idle.NewBus()
	var keys, all int
	bus.Subscribe([]idle.SignalKind{idle.KeyDown}, func(idle.Signal) { keys++ })
	bus.Subscribe(idle.ActivityKinds, func(idle.Signal) { all++ })

	bus.Publish(idle.NewSignal(idle.KeyDown))
	bus.Publish(idle.NewSignal(idle.Scroll))

	assert.Equal(t, 1, keys)
	assert.Equal(t, 2, all)
}

func TestBus_CancelIsIdempotent(t *testing.T) {
	bus := idle.NewBus()
	calls := 0
	cancel := bus.Subscribe(idle.ActivityKinds, func(idle.Signal) { calls++ })
	other := bus.Subscribe(idle.ActivityKinds, func(idle.Signal) {})
	assert.Equal(t, 2, bus.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 1, bus.Subscribers())

	bus.Publish(idle.NewSignal(idle.Click))
	assert.Zero(t, calls)

	other()
	assert.Zero(t, bus.Subscribers())
}

func TestBus_CancelDuringPublish(t *testing.T) {
	bus := idle.NewBus()
	var second func()
	secondCalls := 0

	bus.Subscribe(idle.ActivityKinds, func(idle.Signal) {
		if second != nil {
			second()
		}
	})
	second = bus.Subscribe(idle.ActivityKinds, func(idle.Signal) { secondCalls++ })

	// Map order is random, so the second handler runs either before it is
	// cancelled or not at all. It must never run after cancellation.
	bus.Publish(idle.NewSignal(idle.Click))
	assert.LessOrEqual(t, secondCalls, 1)

	bus.Publish(idle.NewSignal(idle.Click))
	assert.LessOrEqual(t, secondCalls, 1)
	assert.Equal(t, 1, bus.Subscribers())
}
