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

// Package flusher implements the periodic drain task: on every tick it
// drains the Store and forwards each non-empty batch to the egress channel,
// and on stop it performs exactly one final drain before acknowledging.
package flusher

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ingestgw/internal/core"
	"ingestgw/internal/egress"
	"ingestgw/internal/shutdown"
)

// Flusher runs for process lifetime, ticking at a configured interval.
type Flusher struct {
	store  *core.Store
	out    egress.Channel
	period time.Duration
	log    zerolog.Logger

	handshake *shutdown.TickTock
	wg        sync.WaitGroup
}

// New constructs a Flusher draining store into out every period.
func New(store *core.Store, out egress.Channel, period time.Duration, log zerolog.Logger) *Flusher {
	return &Flusher{
		store:     store,
		out:       out,
		period:    period,
		log:       log,
		handshake: shutdown.New(),
	}
}

// Start launches the tick loop in its own goroutine.
func (f *Flusher) Start() {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.loop()
	}()
}

// Stop signals the flusher to perform its final drain and blocks until the
// goroutine has exited. It is the "tick" half of the shutdown handshake;
// Stopped reports the matching "tock". Safe to call once per Flusher.
func (f *Flusher) Stop() {
	f.handshake.SignalTick()
	f.wg.Wait()
}

// Stopped returns the channel closed once the flusher's final drain has
// completed — the "tock" half of the handshake.
func (f *Flusher) Stopped() <-chan struct{} {
	return f.handshake.Tock()
}

func (f *Flusher) loop() {
	ticker := time.NewTicker(f.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.drainOnce()
		case <-f.handshake.Tick():
			// Exactly one final drain between receiving stop and signaling
			// stopped, per the tick/tock contract.
			f.drainOnce()
			f.handshake.SignalTock()
			return
		}
	}
}

// drainOnce pops every non-empty chunk from the store and forwards each
// batch to the egress channel. Sends are issued concurrently; a failure on
// one send is logged but never aborts the others or the caller.
func (f *Flusher) drainOnce() {
	batches := f.store.PopAll()
	if len(batches) == 0 {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(batches))
	for _, batch := range batches {
		batch := batch
		go func() {
			defer wg.Done()
			defer func() {
				if recover() != nil {
					f.log.Error().Str("topic", batch.Topic).Int("records", len(batch.Requests)).Msg("forward drained batch: egress channel closed")
				}
			}()
			f.logBatch(batch)
			// A full channel blocks here by design: backpressure from a
			// slow or down Kafka cluster throttles the flusher rather than
			// accumulating unbounded batches in memory.
			f.out <- batch
		}()
	}
	wg.Wait()
}

func (f *Flusher) logBatch(batch core.Batch) {
	if !f.log.Debug().Enabled() {
		return
	}
	encoded, err := json.Marshal(batch.Requests)
	if err != nil {
		f.log.Debug().Str("topic", batch.Topic).Int("records", len(batch.Requests)).Msg("drained batch (unserializable for debug log)")
		return
	}
	f.log.Debug().Str("topic", batch.Topic).RawJSON("requests", encoded).Msg("drained batch")
}
