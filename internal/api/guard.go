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

package api

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// PauseGuard is an optional, operator-driven kill switch: if a Redis key
// "gatewaypause:<host>" is set to "1", the gateway rejects further ingestion
// for that host without a redeploy. It is entirely optional — a nil guard
// (no service.redis_addr configured) always allows.
//
// Failures talking to Redis fail open: a guard the gateway can't reach must
// never itself become the reason requests are rejected.
type PauseGuard struct {
	client *redis.Client
}

// NewPauseGuard builds a Redis client for addr; the client opens connections
// lazily, on first use. Callers should only construct one when
// service.redis_addr is non-empty.
func NewPauseGuard(addr string) *PauseGuard {
	return &PauseGuard{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Allowed reports whether host is currently accepting traffic. It applies a
// short timeout so a slow Redis never meaningfully delays the hot path.
func (g *PauseGuard) Allowed(ctx context.Context, host string) bool {
	if g == nil || g.client == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 25*time.Millisecond)
	defer cancel()
	val, err := g.client.Get(ctx, "gatewaypause:"+host).Result()
	if err != nil {
		return true
	}
	return val != "1"
}

// Close releases the underlying Redis connection pool.
func (g *PauseGuard) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}
