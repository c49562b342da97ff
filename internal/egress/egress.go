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

// Package egress connects the ingestion side (Store/Flusher) to the
// Kafka-producing task through a bounded channel, and adapts drained
// batches into published Kafka records.
package egress

import "ingestgw/internal/core"

// Capacity is the bounded queue's fixed size. A send blocks once the queue
// is full, which is the gateway's only backpressure mechanism: a slow or
// down Kafka cluster eventually makes HTTP handlers and the Flusher wait on
// a send to the Channel instead of accumulating unbounded batches in memory.
const Capacity = 32

// Channel is the bounded MPSC queue of Batches between ingestion and the
// single Producer consumer.
type Channel chan core.Batch

// NewChannel allocates a Channel at the fixed Capacity.
func NewChannel() Channel {
	return make(Channel, Capacity)
}
