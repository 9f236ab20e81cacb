// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package idle implements the inactivity watchdog behind automatic logout.
//
// A Watchdog owns one sliding deadline. Every activity Signal published on
// its Bus pushes the deadline to now+timeout. When the deadline passes with
// no activity, the watchdog calls its idle callback exactly once, drops its
// subscriptions and stops for good.
//
// # Event Loop
//
// Watchdog state is not locked. All of it is touched from a single
// cooperative event loop: signals must be published from that loop, and
// timer expiry is handed to it through an Executor. The Bubble Tea host
// posts work as messages so it runs inside Update; headless hosts and tests
// use Loop.
//
// # Usage
//
//	loop := idle.NewLoop()
//	defer loop.Close()
//	bus := idle.NewBus()
//
//	var wd *idle.Watchdog
//	loop.Do(func() {
//	    wd, err = idle.Start(idle.Config{
//	        Timeout:  3 * time.Minute,
//	        Bus:      bus,
//	        Executor: loop,
//	    }, onIdle)
//	})
//
//	loop.Post(func() { bus.Publish(idle.NewSignal(idle.KeyDown)) })
//	loop.Do(wd.Stop)
package idle
