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

// chunk is a bounded, ordered accumulator of Requests destined for one
// topic. It is never shared directly outside Store; every method below is
// called with Store's single mutex held, so chunk itself does no locking.
type chunk struct {
	requests []Request
	byteSize int

	maxBytes int
	maxLen   int
}

func newChunk(maxBytes, maxLen int) *chunk {
	return &chunk{maxBytes: maxBytes, maxLen: maxLen}
}

// isFullFor reports whether pushing r would overshoot either bound: total
// byte weight including r, or record count.
func (c *chunk) isFullFor(r Request) bool {
	if c.byteSize+deepSize(r) > c.maxBytes {
		return true
	}
	return len(c.requests) >= c.maxLen
}

// push appends r and accounts for its byte weight. Callers must have already
// checked isFullFor if they need the "would this overflow" answer; push
// itself never rejects.
func (c *chunk) push(r Request) {
	c.requests = append(c.requests, r)
	c.byteSize += deepSize(r)
}

// popAll takes ownership of the accumulated requests, resetting the chunk to
// empty. maxBytes/maxLen are untouched so the chunk can keep accumulating.
func (c *chunk) popAll() []Request {
	out := c.requests
	c.requests = nil
	c.byteSize = 0
	return out
}

func (c *chunk) len() int {
	return len(c.requests)
}
