// Copyright 2025 The slogdriver Authors
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

package slogdriver

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewHTTPRequestDerivesFields(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/items?q=1", nil)
	r.RemoteAddr = "203.0.113.9:4711"
	r.Header.Set("User-Agent", "test-agent/1.0")
	r.Header.Set("Referer", "http://example.com/prev")

	req := NewHTTPRequest(r)
	if req.RequestMethod != "GET" {
		t.Errorf("RequestMethod = %q", req.RequestMethod)
	}
	if !strings.Contains(req.RequestURL, "/items?q=1") {
		t.Errorf("RequestURL = %q", req.RequestURL)
	}
	if req.RemoteIP != "203.0.113.9" {
		t.Errorf("RemoteIP = %q, port must be stripped", req.RemoteIP)
	}
	if req.UserAgent != "test-agent/1.0" || req.Referer != "http://example.com/prev" {
		t.Errorf("headers = %q / %q", req.UserAgent, req.Referer)
	}
	if req.Protocol != "HTTP/1.1" {
		t.Errorf("Protocol = %q", req.Protocol)
	}
	if req.Request != nil {
		t.Error("live request must be detached after preparation")
	}
}

func TestHTTPRequestMap(t *testing.T) {
	req := &HTTPRequest{
		RequestMethod: "POST",
		RequestURL:    "/orders",
		RequestSize:   1024,
		Status:        503,
		ResponseSize:  77,
		Latency:       250 * time.Millisecond,
		RemoteIP:      "203.0.113.9",
		CacheLookup:   true,
		CacheHit:      true,
	}
	m := httpRequestMap(req)

	if m["requestMethod"] != "POST" || m["requestUrl"] != "/orders" {
		t.Errorf("map = %v", m)
	}
	if m["requestSize"] != "1024" || m["responseSize"] != "77" {
		t.Errorf("sizes must be decimal strings: %v / %v", m["requestSize"], m["responseSize"])
	}
	if m["status"] != 503 {
		t.Errorf("status = %v (%T), want int 503", m["status"], m["status"])
	}
	if m["latency"] != "0.250000000s" {
		t.Errorf("latency = %v, want %q", m["latency"], "0.250000000s")
	}
	if m["cacheLookup"] != true || m["cacheHit"] != true {
		t.Errorf("cache flags = %v / %v", m["cacheLookup"], m["cacheHit"])
	}
}

func TestHTTPRequestMapOmitsUnset(t *testing.T) {
	m := httpRequestMap(&HTTPRequest{RequestMethod: "GET"})
	if len(m) != 1 {
		t.Errorf("unset members must be omitted, got %v", m)
	}
	for _, absent := range []string{"status", "latency", "requestSize", "cacheHit"} {
		if _, ok := m[absent]; ok {
			t.Errorf("%s present for zero value", absent)
		}
	}
}

func TestHTTPRequestMapNil(t *testing.T) {
	if m := httpRequestMap(nil); m != nil {
		t.Errorf("nil request must render nil, got %v", m)
	}
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Second, "1.000000000s"},
		{1500 * time.Millisecond, "1.500000000s"},
		{time.Nanosecond, "0.000000001s"},
	}
	for _, tt := range tests {
		if got := formatLatency(tt.in); got != tt.want {
			t.Errorf("formatLatency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
