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

// gatewayd is the entry point for the HTTP ingestion gateway: it loads
// configuration, wires the Store/Flusher/Producer pipeline, serves HTTP
// traffic, and drives a bounded graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ingestgw/internal/api"
	"ingestgw/internal/config"
	"ingestgw/internal/core"
	"ingestgw/internal/egress"
	"ingestgw/internal/flusher"
	"ingestgw/internal/shutdown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "Path to the gateway's YAML configuration file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Str("component", "gatewayd").Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := core.NewStore(core.StoreConfig{
		HostsToTopics:     cfg.Service.HostsToTopics,
		SensitiveHeaders:  config.StringSet(cfg.Service.SensitiveHeaders),
		SensitiveJSONKeys: config.StringSet(cfg.Service.SensitiveJSONKeys),
		MaxBytes:          cfg.Service.MaxSizeChunk,
		MaxLen:            cfg.Service.MaxLenChunk,
	})

	collectPeriod, err := cfg.Service.CollectDuration()
	if err != nil {
		return fmt.Errorf("service.max_collect_chunk_duration: %w", err)
	}
	ackTimeout, err := cfg.Kafka.AckTimeoutOr(time.Second)
	if err != nil {
		return fmt.Errorf("kafka.ack_timeout: %w", err)
	}

	producerClient, err := egress.NewSaramaProducer(cfg.Kafka.Brokers, ackTimeout)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}

	out := egress.NewChannel()
	fl := flusher.New(store, out, collectPeriod, log.With().Str("task", "flusher").Logger())
	prod := egress.NewProducer(producerClient, out, log.With().Str("task", "producer").Logger())

	var guard *api.PauseGuard
	if cfg.Service.RedisAddr != "" {
		guard = api.NewPauseGuard(cfg.Service.RedisAddr)
	}

	reqCfg := core.RequestConfig{
		IPHeader:    cfg.Service.Request.IPHeader,
		HostHeader:  cfg.Service.Request.HostHeader,
		BodyMaxSize: cfg.Service.Request.BodyMaxSize,
	}
	srv := api.New(store, out, reqCfg, int64(cfg.Server.PayloadMaxSize), guard, log.With().Str("task", "http").Logger())

	fl.Start()
	producerDone := make(chan struct{})
	go func() {
		defer close(producerDone)
		prod.Run()
	}()

	serveErr := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		serveErr <- srv.ListenAndServe(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("http server exited unexpectedly")
		}
	}

	err = shutdown.Run(context.Background(), shutdown.Steps{
		HTTPShutdown: srv.Shutdown,
		Flusher:      fl,
		CloseEgress:  func() { close(out) },
		ProducerDone: producerDone,
	})
	_ = producerClient.Close()
	if guard != nil {
		_ = guard.Close()
	}
	if err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}
