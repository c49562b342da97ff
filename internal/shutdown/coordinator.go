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

package shutdown

import (
	"context"
	"fmt"
	"time"
)

// Watchdog is the default bound on phases 2-5 of the shutdown sequence
// (stop HTTP, signal flusher, final drain, drain producer). Expiry is a
// fatal shutdown error, not a retry.
const Watchdog = 5 * time.Second

// Flusher is the subset of flusher.Flusher the coordinator drives. Declared
// here (rather than imported) to avoid a shutdown -> flusher -> shutdown
// import cycle; flusher.Flusher satisfies it.
type Flusher interface {
	Stop()
	Stopped() <-chan struct{}
}

// Steps are the collaborators the coordinator drives in order. HTTPShutdown
// should block until every in-flight handler has returned (http.Server.Shutdown
// does this). CloseEgress closes the egress channel; ProducerDone must be
// closed once the Producer has drained it and exited.
type Steps struct {
	HTTPShutdown func(ctx context.Context) error
	Flusher      Flusher
	CloseEgress  func()
	ProducerDone <-chan struct{}
}

// Run executes the STOP_SIGNALED -> FINAL_DRAIN -> PRODUCER_DRAIN -> DONE
// sequence, racing the whole thing against Watchdog. It returns an error if
// any step fails or the watchdog expires before the producer finishes
// draining.
func Run(ctx context.Context, steps Steps) error {
	ctx, cancel := context.WithTimeout(ctx, Watchdog)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, steps)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("graceful shutdown timed out after %s", Watchdog)
	}
}

func run(ctx context.Context, steps Steps) error {
	// STOP_SIGNALED: stop accepting new HTTP work and await handler drain.
	if err := steps.HTTPShutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	// Signal the flusher; it performs FINAL_DRAIN and closes Stopped().
	steps.Flusher.Stop()
	select {
	case <-steps.Flusher.Stopped():
	case <-ctx.Done():
		return ctx.Err()
	}

	// PRODUCER_DRAIN: close egress so the producer exits once it has
	// consumed everything already queued, then wait for it.
	steps.CloseEgress()
	select {
	case <-steps.ProducerDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
