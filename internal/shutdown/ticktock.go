// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package shutdown implements the two-phase "tick/tock" handshake between
// main and the Flusher, and the bounded coordinator that drives the full
// shutdown sequence within a watchdog timeout.
package shutdown

import "sync"

// TickTock is a pair of one-shot signals: Tick is closed once by the sender
// to mean "please stop"; Tock is closed once by the receiver to mean "I have
// stopped". Both are plain close-once channels rather than a cancellation
// token, since the gateway only ever needs a single sender/receiver pair.
type TickTock struct {
	tick     chan struct{}
	tock     chan struct{}
	tickOnce sync.Once
	tockOnce sync.Once
}

// New returns a fresh, unsignaled TickTock.
func New() *TickTock {
	return &TickTock{
		tick: make(chan struct{}),
		tock: make(chan struct{}),
	}
}

// Tick is the channel closed when the stop signal fires.
func (t *TickTock) Tick() <-chan struct{} { return t.tick }

// Tock is the channel closed when the stopped acknowledgement fires.
func (t *TickTock) Tock() <-chan struct{} { return t.tock }

// SignalTick closes the tick channel. Safe to call more than once.
func (t *TickTock) SignalTick() {
	t.tickOnce.Do(func() { close(t.tick) })
}

// SignalTock closes the tock channel. Safe to call more than once.
func (t *TickTock) SignalTock() {
	t.tockOnce.Do(func() { close(t.tock) })
}
