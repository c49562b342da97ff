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

// Package metrics exposes the gateway's single Prometheus counter.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// HTTPRequestsTotal counts every inbound request the gateway sees, labeled
// by host, method, remote ip, and path.
var HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total inbound HTTP requests seen by the ingestion gateway.",
}, []string{"host", "method", "ip", "path"})

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Observe increments the counter for one inbound request.
func Observe(host, method, ip, path string) {
	HTTPRequestsTotal.WithLabelValues(host, method, ip, path).Inc()
}
