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

package egress

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"ingestgw/internal/core"
)

// KafkaProducer is the minimal surface the Producer adapter needs from a
// Kafka client. sarama.SyncProducer satisfies it directly; tests substitute
// a fake.
type KafkaProducer interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
	Close() error
}

// NewSaramaProducer builds a sarama.SyncProducer configured per the
// gateway's delivery contract: required acks = 1 (WaitForLocal), a
// configurable ack timeout, and successes returned synchronously (mandatory
// for SyncProducer).
func NewSaramaProducer(brokers []string, ackTimeout time.Duration) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Timeout = ackTimeout
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	return sarama.NewSyncProducer(brokers, cfg)
}

// Producer consumes Batches from a Channel and publishes one Kafka record
// per batch: the record value is the JSON array of the batch's Requests,
// the record key is unset, and the topic is the batch's topic.
//
// Serialization failures and Kafka send failures are both logged and the
// batch is dropped; neither ever stops the loop. The adapter exits once the
// channel is closed and drained, which is what the shutdown coordinator
// relies on for its final drain phase.
type Producer struct {
	client KafkaProducer
	in     Channel
	log    zerolog.Logger
}

// NewProducer wires client to in. log is expected to already carry a
// component field identifying the producer in structured output.
func NewProducer(client KafkaProducer, in Channel, log zerolog.Logger) *Producer {
	return &Producer{client: client, in: in, log: log}
}

// Run drains in until it is closed, publishing each batch in turn. It
// returns once the channel is closed and every buffered batch has been
// handled, which main's shutdown sequence waits on via a done channel.
func (p *Producer) Run() {
	for batch := range p.in {
		p.publish(batch)
	}
}

func (p *Producer) publish(batch core.Batch) {
	value, err := json.Marshal(batch.Requests)
	if err != nil {
		p.log.Error().Err(err).Str("topic", batch.Topic).Msg("marshal batch for kafka")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: batch.Topic,
		Value: sarama.ByteEncoder(value),
	}
	if _, _, err := p.client.SendMessage(msg); err != nil {
		p.log.Error().Err(err).Str("topic", batch.Topic).Int("records", len(batch.Requests)).Msg("kafka send failed")
		return
	}
	p.log.Debug().Str("topic", batch.Topic).Int("records", len(batch.Requests)).Msg("batch delivered")
}
