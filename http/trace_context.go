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
	"encoding/binary"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// XCloudTraceContextHeader is Google Cloud's legacy trace propagation
// header, "TRACE_ID/SPAN_ID;o=OPTIONS" with a 32-hex trace ID and a decimal
// span ID.
const XCloudTraceContextHeader = "X-Cloud-Trace-Context"

// parseXCloudTrace decodes the legacy header into a remote span context.
// A missing or unparseable span ID yields a context without one; the log
// correlation fields then omit spanId while keeping the trace.
func parseXCloudTrace(header string) (trace.SpanContext, bool) {
	idPart, options, _ := strings.Cut(header, ";")
	idPart = strings.TrimSpace(idPart)
	if idPart == "" {
		return trace.SpanContext{}, false
	}

	traceHex := idPart
	spanDecimal := ""
	if before, after, ok := strings.Cut(idPart, "/"); ok {
		traceHex = strings.TrimSpace(before)
		spanDecimal = strings.TrimSpace(after)
	}

	traceID, err := trace.TraceIDFromHex(traceHex)
	if err != nil || !traceID.IsValid() {
		return trace.SpanContext{}, false
	}

	var spanID trace.SpanID
	if spanDecimal != "" {
		if n, err := strconv.ParseUint(spanDecimal, 10, 64); err == nil {
			binary.BigEndian.PutUint64(spanID[:], n)
		}
	}

	var flags trace.TraceFlags
	if strings.Contains(options, "o=1") {
		flags = trace.FlagsSampled
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		Remote:     true,
	})
	return sc, sc.TraceID().IsValid()
}
