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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testCfg() RequestConfig {
	return RequestConfig{IPHeader: "X-Real-Ip", HostHeader: "X-Gateway-Host", BodyMaxSize: 1024}
}

func newReq(t *testing.T, ip, host, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/anything", strings.NewReader(body))
	if ip != "" {
		r.Header.Set("X-Real-Ip", ip)
	}
	if host != "" {
		r.Header.Set("X-Gateway-Host", host)
	}
	return r
}

// TestNewRequest_MissingIPHeaderFails and the host variant cover the
// "remote_ip and host MUST be present" invariant.
func TestNewRequest_MissingIPHeaderFails(t *testing.T) {
	r := newReq(t, "", "h1", "body")
	if _, err := NewRequest(testCfg(), r, []byte("body")); err == nil {
		t.Fatalf("expected error for missing ip header")
	}
}

func TestNewRequest_MissingHostHeaderFails(t *testing.T) {
	r := newReq(t, "1.2.3.4", "", "body")
	if _, err := NewRequest(testCfg(), r, []byte("body")); err == nil {
		t.Fatalf("expected error for missing host header")
	}
}

// TestNewRequest_InvalidUTF8BodyFails covers "body.data MUST be valid UTF-8".
func TestNewRequest_InvalidUTF8BodyFails(t *testing.T) {
	r := newReq(t, "1.2.3.4", "h1", "")
	invalid := []byte{0xff, 0xfe, 0xfd}
	if _, err := NewRequest(testCfg(), r, invalid); err == nil {
		t.Fatalf("expected error for invalid utf-8 body")
	}
}

// TestNewRequest_TruncationLaw verifies: for any raw body longer than N,
// |body_handle(raw, N).data| == N and state == Trimmed.
func TestNewRequest_TruncationLaw(t *testing.T) {
	cfg := testCfg()
	cfg.BodyMaxSize = 5
	r := newReq(t, "1.2.3.4", "h1", "")
	req, err := NewRequest(cfg, r, []byte("hello world"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Body.Data) != 5 {
		t.Fatalf("expected trimmed body of length 5, got %d (%q)", len(req.Body.Data), req.Body.Data)
	}
	if req.Body.State != BodyTrimmed {
		t.Fatalf("expected Trimmed state, got %v", req.Body.State)
	}
}

// TestNewRequest_UnderLimitStaysOriginal verifies bodies within the bound
// are reported as Original and left byte-for-byte intact.
func TestNewRequest_UnderLimitStaysOriginal(t *testing.T) {
	cfg := testCfg()
	r := newReq(t, "1.2.3.4", "h1", "")
	req, err := NewRequest(cfg, r, []byte("short"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Body.State != BodyOriginal {
		t.Fatalf("expected Original state, got %v", req.Body.State)
	}
	if req.Body.Data != "short" {
		t.Fatalf("expected body unchanged, got %q", req.Body.Data)
	}
}

// TestNewRequest_NonUTF8HeaderValueBecomesEmpty verifies non-UTF-8 header
// values are mapped to the empty string rather than failing construction.
func TestNewRequest_NonUTF8HeaderValueBecomesEmpty(t *testing.T) {
	r := newReq(t, "1.2.3.4", "h1", "")
	r.Header["X-Binary"] = []string{string([]byte{0xff, 0xfe})}
	req, err := NewRequest(testCfg(), r, []byte("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Headers["X-Binary"] != "" {
		t.Fatalf("expected non-utf8 header value mapped to empty string, got %q", req.Headers["X-Binary"])
	}
}

// TestDeepSize_ConsistentAcrossCalls verifies deepSize is a pure function of
// its input, which the Chunk byte-accounting invariant depends on.
func TestDeepSize_ConsistentAcrossCalls(t *testing.T) {
	r := Request{
		Timestamp: "2026-01-01T00:00:00Z",
		RemoteIP:  "1.2.3.4",
		Host:      "h1",
		Method:    "GET",
		Path:      "/x",
		Headers:   map[string]string{"A": "b"},
		Body:      Body{Data: "hello"},
	}
	if deepSize(r) != deepSize(r) {
		t.Fatalf("deepSize must be deterministic")
	}
}
