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

package core

import (
	"sync"

	"ingestgw/internal/sanitize"
)

// Batch is an ephemeral value: the ordered contents of one sealed or drained
// Chunk, ready for egress.
type Batch struct {
	Topic    string
	Requests []Request
}

// StoreConfig carries the immutable, process-lifetime configuration a Store
// needs: topic routing, the sanitizer's denylists, and chunk bounds.
type StoreConfig struct {
	HostsToTopics     map[string]string
	SensitiveHeaders  map[string]struct{}
	SensitiveJSONKeys map[string]struct{}
	MaxBytes          int
	MaxLen            int
}

// Store is the concurrent, per-topic map of chunks. Exactly one mutex
// guards chunks; every method below does only pure in-memory work while
// holding it — no I/O, no channel sends, no awaits. That is what lets many
// HTTP handlers and the Flusher share it safely.
type Store struct {
	cfg StoreConfig

	mu     sync.Mutex
	chunks map[string]*chunk
}

// NewStore constructs a Store bound to cfg for the life of the process.
func NewStore(cfg StoreConfig) *Store {
	return &Store{
		cfg:    cfg,
		chunks: make(map[string]*chunk),
	}
}

// Push sanitizes req, resolves its destination topic, and accumulates it
// into that topic's chunk. It returns a non-nil Batch when the accumulation
// crossed a bound and had to seal: the request that triggered the seal is
// retained in the new, empty chunk rather than being included in the
// returned batch, so every emitted batch holds at most maxLen requests and
// at most maxBytes of deepSize, and no request is ever dropped on overflow.
// A single request whose own deepSize exceeds maxBytes is still accepted;
// it is later sealed alone, in a batch over maxBytes.
func (s *Store) Push(req Request) (*Batch, error) {
	req.Headers = sanitize.StripHeaders(req.Headers, s.cfg.SensitiveHeaders)
	req.Body.Data = sanitize.RedactBody(req.Body.Data, s.cfg.SensitiveJSONKeys)

	topic, ok := s.cfg.HostsToTopics[req.Host]
	if !ok {
		return nil, rejectf("host %s not supported", req.Host)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chunks[topic]
	if !ok {
		c = newChunk(s.cfg.MaxBytes, s.cfg.MaxLen)
		s.chunks[topic] = c
		c.push(req)
		return nil, nil
	}

	if c.isFullFor(req) {
		sealed := c.popAll()
		c.push(req)
		return &Batch{Topic: topic, Requests: sealed}, nil
	}

	c.push(req)
	return nil, nil
}

// PopAll drains every chunk in the store, returning one Batch per topic that
// had accumulated at least one request. Empty chunks are omitted.
func (s *Store) PopAll() []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Batch, 0, len(s.chunks))
	for topic, c := range s.chunks {
		if c.len() == 0 {
			continue
		}
		out = append(out, Batch{Topic: topic, Requests: c.popAll()})
	}
	return out
}
