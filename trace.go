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
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

// Cloud Logging keys that correlate a log entry with Cloud Trace. The agent
// matches these strings exactly; they must never change.
const (
	// TraceKey holds the fully qualified trace resource name,
	// "projects/PROJECT_ID/traces/TRACE_ID".
	TraceKey = "logging.googleapis.com/trace"
	// SpanKey holds the 16-digit lowercase hex span ID.
	SpanKey = "logging.googleapis.com/spanId"
	// SampledKey holds the boolean sampling decision.
	SampledKey = "logging.googleapis.com/trace_sampled"
)

var projectIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

var (
	traceProjectEnvOnce sync.Once
	traceProjectEnvID   string
)

// ExtractTraceSpan reads the OpenTelemetry span context from ctx. When a
// valid trace is present it returns the raw 32-digit hex trace ID, the
// 16-digit hex span ID, and the sampling flag; when projectID is non-empty
// it also returns the formatted trace resource name. A context without a
// trace ID yields empty strings across the board. A trace without a span
// subdivision (possible with the legacy Cloud Trace header) returns an empty
// span ID; the all-zero placeholder is never rendered.
//
// The function only reads ctx. It never starts spans, parses headers, or
// mutates context; upstream middleware is expected to have populated the
// span context (via OTel propagators or the X-Cloud-Trace-Context helpers in
// the http subpackage) beforehand.
func ExtractTraceSpan(ctx context.Context, projectID string) (formattedTrace, rawTraceID, rawSpanID string, sampled bool, sc trace.SpanContext) {
	sc = trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return "", "", "", false, sc
	}

	rawTraceID = sc.TraceID().String()
	if sc.HasSpanID() {
		rawSpanID = sc.SpanID().String()
	}
	sampled = sc.IsSampled()

	if projectID != "" {
		formattedTrace = FormatTraceResource(projectID, rawTraceID)
	}
	return formattedTrace, rawTraceID, rawSpanID, sampled, sc
}

// FormatTraceResource returns the fully qualified Cloud Trace resource name:
//
//	projects/<projectID>/traces/<traceID>
func FormatTraceResource(projectID, traceID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)
}

// TraceAttributes builds the Cloud Logging correlation attributes for the
// span context carried by ctx. The returned attributes can be attached to a
// request-scoped logger so every record it emits carries the correlation
// fields even through handlers that do not pass the request context. The
// second return value reports whether a valid trace was found.
//
// When projectID is empty it falls back to the environment
// (SLOGDRIVER_TRACE_PROJECT_ID, SLOGDRIVER_PROJECT_ID, GOOGLE_CLOUD_PROJECT,
// GCLOUD_PROJECT); with no resolvable project no attributes are produced.
func TraceAttributes(ctx context.Context, projectID string) ([]slog.Attr, bool) {
	if ctx == nil {
		return nil, false
	}
	projectID = resolveTraceProject(projectID)
	if projectID == "" {
		return nil, false
	}

	formatted, _, rawSpan, sampled, sc := ExtractTraceSpan(ctx, projectID)
	if !sc.HasTraceID() {
		return nil, false
	}

	attrs := make([]slog.Attr, 0, 3)
	attrs = append(attrs, slog.String(TraceKey, formatted))
	if rawSpan != "" {
		attrs = append(attrs, slog.String(SpanKey, rawSpan))
	}
	attrs = append(attrs, slog.Bool(SampledKey, sampled))
	return attrs, true
}

// resolveTraceProject prefers the explicit project ID, falling back to the
// cached environment lookup.
func resolveTraceProject(projectID string) string {
	if trimmed := strings.TrimSpace(projectID); trimmed != "" {
		return trimmed
	}
	return cachedTraceProjectID()
}

// cachedTraceProjectID computes the environment-derived project ID at most
// once per process.
func cachedTraceProjectID() string {
	traceProjectEnvOnce.Do(func() {
		traceProjectEnvID = detectTraceProjectIDFromEnv()
	})
	return traceProjectEnvID
}

// detectTraceProjectIDFromEnv inspects the known environment variables in
// priority order and returns the first valid project identifier.
func detectTraceProjectIDFromEnv() string {
	candidates := []string{
		"SLOGDRIVER_TRACE_PROJECT_ID",
		"SLOGDRIVER_PROJECT_ID",
		"GOOGLE_CLOUD_PROJECT",
		"GCLOUD_PROJECT",
	}
	for _, name := range candidates {
		if normalized, ok := normalizeProjectID(os.Getenv(name)); ok {
			return normalized
		}
	}
	return ""
}

// normalizeProjectID trims, lowercases, and strips a "projects/" prefix from
// a project identifier, then validates the result against the project ID
// grammar. Identifiers containing a slash after stripping are rejected.
func normalizeProjectID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if strings.HasPrefix(strings.ToLower(s), "projects/") {
		s = strings.TrimSpace(s[len("projects/"):])
	}
	if strings.Contains(s, "/") {
		return "", false
	}
	s = strings.ToLower(s)
	if !projectIDPattern.MatchString(s) {
		return "", false
	}
	return s, true
}
