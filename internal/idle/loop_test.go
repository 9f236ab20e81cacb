// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/receipta-tui/internal/idle"
)

func TestLoop_RunsInOrder(t *testing.T) {
	loop := idle.NewLoop()
	defer loop.Close()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		loop.Post(func() { got = append(got, i) })
	}
	loop.Do(func() {})

	assert.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestLoop_PostFromManyGoroutines(t *testing.T) {
	loop := idle.NewLoop()
	defer loop.Close()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				loop.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()
	loop.Do(func() {})
	assert.Equal(t, 1000, counter)
}

func TestLoop_CloseDropsWork(t *testing.T) {
	loop := idle.NewLoop()
	loop.Close()
	loop.Close()

	done := make(chan struct{})
	go func() {
		loop.Post(func() { t.Error("ran after Close") })
		loop.Do(func() {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post/Do blocked after Close")
	}
}

func TestExecutorFunc(t *testing.T) {
	ran := false
	var exec idle.Executor = idle.ExecutorFunc(func(fn func()) { fn() })
	exec.Post(func() { ran = true })
	assert.True(t, ran)
}
