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

package flusher

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ingestgw/internal/core"
	"ingestgw/internal/egress"
)

func testStore(t *testing.T, maxLen int) *core.Store {
	t.Helper()
	return core.NewStore(core.StoreConfig{
		HostsToTopics:     map[string]string{"h1": "t1"},
		SensitiveHeaders:  map[string]struct{}{},
		SensitiveJSONKeys: map[string]struct{}{},
		MaxBytes:          1 << 20,
		MaxLen:            maxLen,
	})
}

func pushN(t *testing.T, s *core.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		req := core.Request{
			Timestamp: "2026-01-01T00:00:00Z",
			RemoteIP:  "1.2.3.4",
			Host:      "h1",
			Method:    "GET",
			Path:      "/x",
			Headers:   map[string]string{},
			Body:      core.Body{Data: "x"},
		}
		if _, err := s.Push(req); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
}

// TestFlusher_TicksDrainNonEmptyChunks verifies a tick drains whatever sits
// in the store and forwards it to the egress channel.
func TestFlusher_TicksDrainNonEmptyChunks(t *testing.T) {
	store := testStore(t, 1000)
	pushN(t, store, 3)

	out := egress.NewChannel()
	f := New(store, out, 10*time.Millisecond, zerolog.Nop())
	f.Start()
	defer f.Stop()

	select {
	case batch := <-out:
		if batch.Topic != "t1" || len(batch.Requests) != 3 {
			t.Fatalf("expected a batch of 3 for t1, got %+v", batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for ticked drain")
	}
}

// TestFlusher_EmptyTickForwardsNothing verifies an empty store produces no
// egress traffic on a tick.
func TestFlusher_EmptyTickForwardsNothing(t *testing.T) {
	store := testStore(t, 1000)
	out := egress.NewChannel()
	f := New(store, out, 5*time.Millisecond, zerolog.Nop())
	f.Start()
	defer f.Stop()

	select {
	case batch := <-out:
		t.Fatalf("expected no batch from an empty store, got %+v", batch)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestFlusher_StopPerformsExactlyOneFinalDrain verifies the stop sequence:
// pending data is drained exactly once, forwarded, and Stopped() closes
// after that drain completes.
func TestFlusher_StopPerformsExactlyOneFinalDrain(t *testing.T) {
	store := testStore(t, 1000)
	pushN(t, store, 2)

	out := egress.NewChannel()
	// A long period means the tick never fires on its own; only the final
	// drain on Stop should produce a batch.
	f := New(store, out, time.Hour, zerolog.Nop())
	f.Start()

	stopped := make(chan struct{})
	go func() {
		f.Stop()
		close(stopped)
	}()

	select {
	case batch := <-out:
		if len(batch.Requests) != 2 {
			t.Fatalf("expected final drain batch of 2, got %+v", batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for final drain")
	}

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop() did not return after final drain")
	}

	select {
	case <-f.Stopped():
	default:
		t.Fatalf("expected Stopped() to be closed once Stop() returns")
	}
}

// TestFlusher_StopOnEmptyStoreStillAcknowledges verifies the handshake
// completes even when the final drain has nothing to forward.
func TestFlusher_StopOnEmptyStoreStillAcknowledges(t *testing.T) {
	store := testStore(t, 1000)
	out := egress.NewChannel()
	f := New(store, out, time.Hour, zerolog.Nop())
	f.Start()

	done := make(chan struct{})
	go func() {
		f.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop() should return promptly with nothing to drain")
	}
	select {
	case <-f.Stopped():
	default:
		t.Fatalf("expected Stopped() closed")
	}
}
