// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import "time"

// =============================================================================
// CLOCK
// =============================================================================

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock supplies the time and one-shot timers.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemClock is the wall clock backed by the time package.
var SystemClock Clock = systemClock{}
