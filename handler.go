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
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Reserved attribute keys routed to fixed document locations instead of the
// generic payload.
const (
	// SeverityKey overrides the level-derived severity when its value is a
	// recognized severity token.
	SeverityKey = "severity"

	// LabelsPrefix marks attributes routed into the
	// logging.googleapis.com/labels map; values are stringified.
	LabelsPrefix = "labels."

	// InsertIDKey carries a caller-chosen deduplication ID, emitted under
	// logging.googleapis.com/insertId.
	InsertIDKey = "insert_id"

	// TargetKey names the producing subsystem for a single record,
	// overriding any handler-wide target.
	TargetKey = "target"
)

// Output keys with agent-defined meaning. Exact strings; never localized.
const (
	labelsOutputKey         = "logging.googleapis.com/labels"
	insertIDOutputKey       = "logging.googleapis.com/insertId"
	sourceLocationOutputKey = "logging.googleapis.com/sourceLocation"
)

// reservedTopLevel lists document member names the generic payload may not
// occupy; a generic field that would land on one of these is dropped rather
// than corrupting the schema.
var reservedTopLevel = map[string]struct{}{
	"time":                  {},
	"severity":              {},
	"message":               {},
	"target":                {},
	"span":                  {},
	httpRequestOutputKey:    {},
	labelsOutputKey:         {},
	insertIDOutputKey:       {},
	sourceLocationOutputKey: {},
	TraceKey:                {},
	SpanKey:                 {},
	SampledKey:              {},
}

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Buffers above this size are not returned to the pool.
const maxPooledBufferSize = 64 << 10

// Handler is a slog.Handler that renders each record as one Cloud
// Logging-structured JSON line. Use New or NewHandler to construct one.
//
// The handler itself is immutable; WithAttrs and WithGroup return copies.
// Concurrent Handle calls share only the output writer, which is guarded by a
// mutex so lines never interleave.
type Handler struct {
	cfg    *config
	attrs  []field
	prefix string
}

// NewHandler builds a Handler from opts. See the package documentation for
// the environment variables consulted when an option is not set explicitly.
func NewHandler(opts ...Option) *Handler {
	return &Handler{cfg: resolveConfig(opts)}
}

// Enabled reports whether records at level would be emitted.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.leveler.Level()
}

// WithAttrs returns a handler that includes attrs in every record. The
// attributes are flattened once here, so repeated Handle calls pay nothing.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	flattened := make([]field, len(h.attrs), len(h.attrs)+len(attrs))
	copy(flattened, h.attrs)
	for _, attr := range attrs {
		flattened = appendFlattened(flattened, h.prefix, attr)
	}
	return &Handler{cfg: h.cfg, attrs: flattened, prefix: h.prefix}
}

// WithGroup returns a handler that prefixes subsequent attribute keys with
// name, using the dotted-path convention so grouped keys nest in the output.
// Reserved keys lose their routing inside a group: "severity" under group "g"
// is the ordinary field "g.severity".
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{cfg: h.cfg, attrs: h.attrs, prefix: h.prefix + name + "."}
}

// routed holds the classified parts of one record before assembly.
type routed struct {
	severity    string
	target      string
	insertID    string
	hasInsertID bool
	httpReq     map[string]any
	labels      map[string]string

	trace      string
	spanID     string
	sampled    bool
	hasSampled bool

	generic      map[string]any
	genericOrder []string
}

// Handle renders record as a single JSON document and writes it to the
// configured sink. The write happens under a mutex in one call, so an error
// means nothing from this record reached the sink.
func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	r := routed{
		severity: severityForLevel(record.Level),
		target:   h.cfg.target,
	}

	for _, f := range h.attrs {
		h.route(&r, f)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields := appendFlattened(nil, h.prefix, attr)
		for _, f := range fields {
			h.route(&r, f)
		}
		return true
	})

	h.enrichTrace(ctx, &r)

	span := projectSpan(ScopeChain(ctx))
	src := h.sourceLocation(record.PC)

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if buf.Cap() <= maxPooledBufferSize {
			bufPool.Put(buf)
		}
	}()

	d := newDocument(buf)
	if !record.Time.IsZero() {
		d.writeField("time", record.Time.UTC().Format(time.RFC3339Nano))
	}
	d.writeField("severity", r.severity)
	if r.target != "" {
		d.writeField("target", r.target)
	}
	if len(r.httpReq) > 0 {
		d.writeField(httpRequestOutputKey, r.httpReq)
	}
	if len(r.labels) > 0 {
		d.writeField(labelsOutputKey, r.labels)
	}
	if r.hasInsertID {
		d.writeField(insertIDOutputKey, r.insertID)
	}
	if r.trace != "" {
		d.writeField(TraceKey, r.trace)
	}
	if r.spanID != "" {
		d.writeField(SpanKey, r.spanID)
	}
	if r.hasSampled {
		d.writeField(SampledKey, r.sampled)
	}
	if src != nil {
		d.writeField(sourceLocationOutputKey, src)
	}
	if span != nil {
		d.writeField("span", span)
	}
	for _, key := range r.genericOrder {
		if val, ok := r.generic[key]; ok {
			d.writeField(key, val)
		}
	}
	d.writeField("message", record.Message)
	if err := d.close(); err != nil {
		h.cfg.internal.LogAttrs(context.Background(), slog.LevelError,
			"log entry serialization failed", slog.Any("error", err))
		return err
	}

	h.cfg.mu.Lock()
	_, err := h.cfg.writer.Write(buf.Bytes())
	h.cfg.mu.Unlock()
	return err
}

// route classifies one flattened field into its document slot. Reserved
// routing keys match on the exact flattened key (dotted families on their
// first segment); everything else joins the generic payload in arrival order,
// later writes replacing earlier ones on the same path.
func (h *Handler) route(r *routed, f field) {
	switch {
	case f.key == SeverityKey:
		if sev, ok := severityOverride(f.value); ok {
			r.severity = sev
		}

	case f.key == TargetKey:
		if rv := f.value.Resolve(); rv.Kind() == slog.KindString {
			r.target = rv.String()
		}

	case f.key == InsertIDKey:
		if s, ok := stringifyValue(f.value); ok {
			r.insertID = s
			r.hasInsertID = true
		}

	case strings.HasPrefix(f.key, LabelsPrefix):
		name := f.key[len(LabelsPrefix):]
		if name == "" {
			return
		}
		if s, ok := stringifyValue(f.value); ok {
			if r.labels == nil {
				r.labels = make(map[string]string, 4)
			}
			r.labels[name] = s
		}

	case f.key == HTTPRequestKey:
		if req, ok := httpRequestFromValue(f.value); ok {
			if r.httpReq == nil {
				r.httpReq = make(map[string]any, 8)
			}
			for k, v := range httpRequestMap(req) {
				r.httpReq[k] = v
			}
		}

	case strings.HasPrefix(f.key, HTTPRequestKey+"."):
		rest := f.key[len(HTTPRequestKey)+1:]
		if rest == "" {
			return
		}
		if r.httpReq == nil {
			r.httpReq = make(map[string]any, 8)
		}
		nestField(r.httpReq, field{key: rest, value: f.value})

	case f.key == TraceKey:
		if rv := f.value.Resolve(); rv.Kind() == slog.KindString {
			r.trace = rv.String()
		}

	case f.key == SpanKey:
		if rv := f.value.Resolve(); rv.Kind() == slog.KindString {
			r.spanID = rv.String()
		}

	case f.key == SampledKey:
		if rv := f.value.Resolve(); rv.Kind() == slog.KindBool {
			r.sampled = rv.Bool()
			r.hasSampled = true
		}

	default:
		h.routeGeneric(r, f)
	}
}

// routeGeneric places f into the generic payload, tracking first-appearance
// order of top-level members so serialization stays deterministic.
func (h *Handler) routeGeneric(r *routed, f field) {
	top := f.key
	if idx := strings.IndexByte(top, '.'); idx >= 0 {
		top = top[:idx]
	}
	top = camelSegment(top)
	if _, reserved := reservedTopLevel[top]; reserved {
		return
	}

	if r.generic == nil {
		r.generic = make(map[string]any, 8)
	}
	if _, seen := r.generic[top]; !seen {
		r.genericOrder = append(r.genericOrder, top)
	}
	nestField(r.generic, f)
	// nestField drops nil values; keep the order slice consistent.
	if _, ok := r.generic[top]; !ok {
		r.genericOrder = r.genericOrder[:len(r.genericOrder)-1]
	}
}

// enrichTrace fills the correlation slots from the span context in ctx when
// trace correlation is configured and the record did not carry explicit
// correlation attributes.
func (h *Handler) enrichTrace(ctx context.Context, r *routed) {
	if h.cfg.projectID == "" || ctx == nil {
		return
	}
	if r.trace != "" || r.spanID != "" {
		return
	}

	formatted, _, rawSpan, sampled, sc := ExtractTraceSpan(ctx, h.cfg.projectID)
	if !sc.HasTraceID() {
		return
	}
	r.trace = formatted
	r.spanID = rawSpan
	r.sampled = sampled
	r.hasSampled = true
}

// sourceLocation resolves the record's program counter into the
// sourceLocation payload. The line number is a decimal string per the
// LogEntry schema.
func (h *Handler) sourceLocation(pc uintptr) map[string]string {
	if !h.cfg.addSource || pc == 0 {
		return nil
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return nil
	}
	src := map[string]string{
		"file": frame.File,
		"line": strconv.Itoa(frame.Line),
	}
	if frame.Function != "" {
		src["function"] = frame.Function
	}
	return src
}
