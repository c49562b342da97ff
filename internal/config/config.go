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

// Package config loads the gateway's single YAML configuration file into
// typed structs. It is intentionally thin: one Load call, no hot reload, no
// layered sources beyond the INGESTGW_KAFKA_BROKERS environment override for secrets
// that operators don't want sitting in a checked-in file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the gateway's YAML configuration: server bind
// address and payload cap, service-level batching knobs and topic routing,
// and the Kafka producer's brokers/acks.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Service ServiceConfig `yaml:"service"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           uint16 `yaml:"port"`
	PayloadMaxSize int    `yaml:"payload_max_size"`
}

// ServiceConfig configures chunking, routing, and sanitization.
type ServiceConfig struct {
	MaxSizeChunk            int               `yaml:"max_size_chunk"`
	MaxLenChunk             int               `yaml:"max_len_chunk"`
	MaxCollectChunkDuration string            `yaml:"max_collect_chunk_duration"`
	HostsToTopics           map[string]string `yaml:"hosts_to_topics"`
	SensitiveHeaders        []string          `yaml:"sensitive_headers"`
	SensitiveJSONKeys       []string          `yaml:"sensitive_json_keys"`
	Request                 RequestConfig     `yaml:"request"`

	// RedisAddr, when non-empty, wires an optional distributed guard the
	// HTTP handler consults before accepting a request. Left empty, no
	// Redis client is constructed and the guard is skipped entirely.
	RedisAddr string `yaml:"redis_addr"`
}

// RequestConfig names the headers Request normalization reads remote_ip and
// host from, and the body truncation bound.
type RequestConfig struct {
	HostHeader  string `yaml:"host_header"`
	IPHeader    string `yaml:"ip_header"`
	BodyMaxSize int    `yaml:"body_max_size"`
}

// KafkaConfig configures the outbound producer.
type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	AckTimeout string   `yaml:"ack_timeout"`
}

// CollectDuration parses MaxCollectChunkDuration, the Flusher's tick period.
func (s ServiceConfig) CollectDuration() (time.Duration, error) {
	return time.ParseDuration(s.MaxCollectChunkDuration)
}

// AckTimeoutOr parses Kafka.AckTimeout, falling back to def when unset.
func (k KafkaConfig) AckTimeoutOr(def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(k.AckTimeout) == "" {
		return def, nil
	}
	return time.ParseDuration(k.AckTimeout)
}

// Load reads and parses the YAML file at path, then applies the
// INGESTGW_KAFKA_BROKERS environment override (comma-separated) if set, so
// operators can inject brokers via secret store without editing the file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if override := os.Getenv("INGESTGW_KAFKA_BROKERS"); override != "" {
		cfg.Kafka.Brokers = strings.Split(override, ",")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port must be set")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must not be empty")
	}
	if c.Service.MaxSizeChunk <= 0 || c.Service.MaxLenChunk <= 0 {
		return fmt.Errorf("service.max_size_chunk and max_len_chunk must be positive")
	}
	if _, err := c.Service.CollectDuration(); err != nil {
		return fmt.Errorf("service.max_collect_chunk_duration: %w", err)
	}
	if c.Service.Request.HostHeader == "" || c.Service.Request.IPHeader == "" {
		return fmt.Errorf("service.request.host_header and ip_header must be set")
	}
	return nil
}

// StringSet converts a slice of names (as read from YAML) into the set shape
// core.StoreConfig expects.
func StringSet(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}
