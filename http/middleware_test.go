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

package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kvarst/slogdriver"
)

func newTestLogger(buf *bytes.Buffer) *slogdriver.Logger {
	return slogdriver.New(
		slogdriver.WithWriter(buf),
		slogdriver.WithLevel(slogdriver.LevelDefault),
		slogdriver.WithSourceLocation(false),
		slogdriver.WithTraceCorrelation(false),
	)
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("bad entry: %v\n%s", err, buf.String())
	}
	return entry
}

func TestMiddlewareAccessLog(t *testing.T) {
	var buf bytes.Buffer
	handler := Middleware(
		WithLogger(newTestLogger(&buf)),
		WithOTel(false),
	)(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest("GET", "http://example.com/teapot", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry := lastEntry(t, &buf)
	httpReq, ok := entry["httpRequest"].(map[string]any)
	if !ok {
		t.Fatalf("httpRequest missing: %v", entry)
	}
	if httpReq["requestMethod"] != "GET" {
		t.Errorf("requestMethod = %v", httpReq["requestMethod"])
	}
	if httpReq["status"] != float64(stdhttp.StatusTeapot) {
		t.Errorf("status = %v, want 418", httpReq["status"])
	}
	if httpReq["responseSize"] != "15" {
		t.Errorf("responseSize = %v, want %q", httpReq["responseSize"], "15")
	}
	if lat, _ := httpReq["latency"].(string); !strings.HasSuffix(lat, "s") {
		t.Errorf("latency = %v", httpReq["latency"])
	}
	// 4xx responses log at WARNING.
	if entry["severity"] != "WARNING" {
		t.Errorf("severity = %v, want WARNING", entry["severity"])
	}
}

func TestMiddlewarePushesScope(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	handler := Middleware(
		WithLogger(logger),
		WithOTel(false),
		WithAccessLog(false),
	)(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		slogdriver.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
	}))

	req := httptest.NewRequest("POST", "http://example.com/orders", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := lastEntry(t, &buf)
	span, ok := entry["span"].(map[string]any)
	if !ok {
		t.Fatalf("span missing, request scope not pushed: %v", entry)
	}
	if span["name"] != "POST /orders" {
		t.Errorf("span name = %v", span["name"])
	}
	if span["http_method"] != "POST" {
		t.Errorf("span http_method = %v", span["http_method"])
	}
}

func TestMiddlewareLegacyTraceHeader(t *testing.T) {
	var buf bytes.Buffer
	handler := Middleware(
		WithLogger(newTestLogger(&buf)),
		WithProjectID("demo"),
		WithOTel(false),
	)(stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		slogdriver.FromContext(r.Context()).InfoContext(r.Context(), "traced")
	}))

	req := httptest.NewRequest("GET", "http://example.com/x", nil)
	req.Header.Set(XCloudTraceContextHeader, "4bf92f3577b34da6a3ce929d0e0e4736/1;o=1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	var handlerEntry map[string]any
	if err := json.Unmarshal([]byte(entries[0]), &handlerEntry); err != nil {
		t.Fatalf("bad entry: %v", err)
	}
	wantTrace := "projects/demo/traces/4bf92f3577b34da6a3ce929d0e0e4736"
	if handlerEntry[slogdriver.TraceKey] != wantTrace {
		t.Errorf("trace = %v, want %q", handlerEntry[slogdriver.TraceKey], wantTrace)
	}
	if handlerEntry[slogdriver.SpanKey] != "0000000000000001" {
		t.Errorf("spanId = %v", handlerEntry[slogdriver.SpanKey])
	}
	if handlerEntry[slogdriver.SampledKey] != true {
		t.Errorf("trace_sampled = %v", handlerEntry[slogdriver.SampledKey])
	}
}

func TestMiddlewareNilNext(t *testing.T) {
	var buf bytes.Buffer
	handler := Middleware(WithLogger(newTestLogger(&buf)), WithOTel(false))(nil)

	req := httptest.NewRequest("GET", "http://example.com/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != stdhttp.StatusNotFound {
		t.Errorf("status = %d, want 404 from the fallback handler", rec.Code)
	}
}

func TestParseXCloudTrace(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantTrace string
		wantSpan  string
		sampled   bool
		ok        bool
	}{
		{
			name:      "full header",
			header:    "4bf92f3577b34da6a3ce929d0e0e4736/10;o=1",
			wantTrace: "4bf92f3577b34da6a3ce929d0e0e4736",
			wantSpan:  "000000000000000a",
			sampled:   true,
			ok:        true,
		},
		{
			name:      "not sampled",
			header:    "4bf92f3577b34da6a3ce929d0e0e4736/10;o=0",
			wantTrace: "4bf92f3577b34da6a3ce929d0e0e4736",
			wantSpan:  "000000000000000a",
			ok:        true,
		},
		{
			name:      "trace only",
			header:    "4bf92f3577b34da6a3ce929d0e0e4736",
			wantTrace: "4bf92f3577b34da6a3ce929d0e0e4736",
			ok:        true,
		},
		{name: "bad trace id", header: "zzz/1;o=1"},
		{name: "empty", header: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ok := parseXCloudTrace(tt.header)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if sc.TraceID().String() != tt.wantTrace {
				t.Errorf("trace = %s", sc.TraceID())
			}
			if tt.wantSpan != "" && sc.SpanID().String() != tt.wantSpan {
				t.Errorf("span = %s, want %s", sc.SpanID(), tt.wantSpan)
			}
			if tt.wantSpan == "" && sc.HasSpanID() {
				t.Errorf("span = %s, want none", sc.SpanID())
			}
			if sc.IsSampled() != tt.sampled {
				t.Errorf("sampled = %v, want %v", sc.IsSampled(), tt.sampled)
			}
			if !sc.IsRemote() {
				t.Error("span context must be marked remote")
			}
		})
	}
}

func TestAccessLevel(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "INFO"},
		{302, "INFO"},
		{404, "WARN"},
		{500, "ERROR"},
	}
	for _, tt := range tests {
		if got := accessLevel(tt.status).String(); got != tt.want {
			t.Errorf("accessLevel(%d) = %s, want %s", tt.status, got, tt.want)
		}
	}
}
