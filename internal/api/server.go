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

// Package api implements the public-facing HTTP server: one catch-all
// ingestion route plus health and metrics endpoints.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ingestgw/internal/core"
	"ingestgw/internal/egress"
	"ingestgw/internal/telemetry/metrics"
)

// Server handles all HTTP traffic for the gateway.
type Server struct {
	store      *core.Store
	out        egress.Channel
	reqCfg     core.RequestConfig
	payloadMax int64
	guard      *PauseGuard
	log        zerolog.Logger
	httpServer *http.Server
}

// New constructs a Server bound to store and the egress channel sealed
// batches are forwarded to. guard may be nil.
func New(store *core.Store, out egress.Channel, reqCfg core.RequestConfig, payloadMax int64, guard *PauseGuard, log zerolog.Logger) *Server {
	return &Server{
		store:      store,
		out:        out,
		reqCfg:     reqCfg,
		payloadMax: payloadMax,
		guard:      guard,
		log:        log,
	}
}

// Mux builds the ServeMux: the catch-all ingestion handler plus the
// ambient health and metrics endpoints every service in this corpus carries.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", s.handleIngest)
	return mux
}

// ListenAndServe builds the http.Server with sane read/write/idle timeouts
// and starts serving addr. It returns once the server stops (cleanly via
// Shutdown, or with an error).
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Mux(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("gateway listening")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections and waits for in-flight handlers
// to finish, bounded by ctx. Requests arriving after this is called are
// refused at the TCP/HTTP layer, satisfying the "rejected after
// STOP_SIGNALED" contract.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleIngest is the single catch-all route: any method, any path. It
// normalizes the request, hands it to the Store, and maps the outcome to
// the gateway's three response codes (201/204/500).
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	host := r.Header.Get(s.reqCfg.HostHeader)
	metrics.Observe(host, r.Method, r.Header.Get(s.reqCfg.IPHeader), r.URL.Path)

	if !s.guard.Allowed(r.Context(), host) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, s.payloadMax+1))
	if err != nil {
		s.log.Error().Err(err).Msg("read request body")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	req, err := core.NewRequest(s.reqCfg, r, body)
	if err != nil {
		s.log.Warn().Err(err).Str("host", host).Str("path", r.URL.Path).Msg("request rejected")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	batch, err := s.store.Push(req)
	if err != nil {
		var pushErr *core.PushError
		if errors.As(err, &pushErr) && pushErr.Kind == core.ErrReject {
			s.log.Warn().Str("reason", pushErr.Msg).Msg("request rejected")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.log.Error().Err(err).Msg("internal error accepting request")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if batch != nil {
		if err := s.forward(*batch); err != nil {
			s.log.Error().Err(err).Str("topic", batch.Topic).Msg("forward sealed batch")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusCreated)
}

// forward sends a sealed batch to the egress channel, blocking on
// backpressure like any other producer. It reports a *core.PushError of
// kind ErrInternal only if the channel has been closed underneath it
// (shutdown racing a late handler), using the same error taxonomy
// Store.Push uses rather than silently dropping the batch.
func (s *Server) forward(batch core.Batch) (err error) {
	defer func() {
		if recover() != nil {
			err = core.InternalError("egress channel closed")
		}
	}()
	s.out <- batch
	return nil
}
