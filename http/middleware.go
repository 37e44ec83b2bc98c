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
	"bufio"
	"log/slog"
	"net"
	stdhttp "net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/kvarst/slogdriver"
)

const instrumentationName = "github.com/kvarst/slogdriver/http"

// Middleware returns middleware that prepares each request for structured
// logging. Per request it: recovers legacy X-Cloud-Trace-Context headers
// when no OpenTelemetry span context arrived, pushes a request scope named
// after the method and path, attaches trace correlation attributes to a
// request-scoped logger stored in the context, and logs one completion entry
// carrying the httpRequest payload.
func Middleware(opts ...Option) func(stdhttp.Handler) stdhttp.Handler {
	cfg := applyOptions(opts)

	return func(next stdhttp.Handler) stdhttp.Handler {
		if next == nil {
			next = stdhttp.NotFoundHandler()
		}

		inner := stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			start := time.Now()
			ctx := r.Context()

			scopeName := cfg.scopeName
			if scopeName == "" {
				scopeName = r.Method + " " + r.URL.Path
			}
			ctx = slogdriver.WithScope(ctx, scopeName,
				slog.String("http_method", r.Method),
				slog.String("http_path", r.URL.Path),
			)

			requestLogger := cfg.logger
			if attrs, ok := slogdriver.TraceAttributes(ctx, cfg.projectID); ok {
				args := make([]any, len(attrs))
				for i, attr := range attrs {
					args[i] = attr
				}
				requestLogger = requestLogger.With(args...)
			}
			ctx = slogdriver.ContextWithLogger(ctx, requestLogger)
			r = r.WithContext(ctx)

			rec := &responseRecorder{ResponseWriter: w, status: stdhttp.StatusOK}
			next.ServeHTTP(rec, r)

			if cfg.accessLog {
				payload := slogdriver.NewHTTPRequest(r)
				payload.Status = rec.status
				payload.ResponseSize = rec.written
				payload.Latency = time.Since(start)
				requestLogger.LogAttrs(ctx, accessLevel(rec.status),
					"request completed",
					slog.Any(slogdriver.HTTPRequestKey, payload),
				)
			}
		})

		chain := stdhttp.Handler(inner)
		if cfg.enableOTel {
			chain = otelhttp.NewHandler(chain, instrumentationName)
		}

		return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
			ctx := r.Context()
			if !trace.SpanContextFromContext(ctx).IsValid() {
				if header := r.Header.Get(XCloudTraceContextHeader); header != "" {
					if sc, ok := parseXCloudTrace(header); ok {
						r = r.WithContext(trace.ContextWithRemoteSpanContext(ctx, sc))
					}
				}
			}
			chain.ServeHTTP(w, r)
		})
	}
}

// responseRecorder captures the status code and body size for the access log
// while delegating everything else to the wrapped writer.
type responseRecorder struct {
	stdhttp.ResponseWriter
	status      int
	written     int64
	wroteHeader bool
}

func (rec *responseRecorder) WriteHeader(status int) {
	if !rec.wroteHeader {
		rec.status = status
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *responseRecorder) Write(p []byte) (int, error) {
	rec.wroteHeader = true
	n, err := rec.ResponseWriter.Write(p)
	rec.written += int64(n)
	return n, err
}

// Flush forwards to the underlying writer when it supports streaming.
func (rec *responseRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(stdhttp.Flusher); ok {
		f.Flush()
	}
}

// Hijack forwards connection takeover for websockets and similar upgrades.
func (rec *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rec.ResponseWriter.(stdhttp.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, stdhttp.ErrNotSupported
}
