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

// Package slogdriver provides a [log/slog] handler that renders each record
// as a single line of Google Cloud Logging structured JSON.
//
// Every record becomes exactly one JSON object with the field layout the
// Cloud Logging agent indexes natively: a "severity" token drawn from the
// LogEntry vocabulary, camelCased payload keys, an "httpRequest" object,
// labels under "logging.googleapis.com/labels", and the Cloud Trace
// correlation keys ("logging.googleapis.com/trace",
// "logging.googleapis.com/spanId", "logging.googleapis.com/trace_sampled").
//
// Dotted attribute keys are nested:
//
//	slog.String("http_request.request_method", "GET")
//	slog.Int("http_request.status", 200)
//
// produces a single httpRequest object with requestMethod and status members.
// Snake_case key segments are converted to camelCase on the way out.
//
// A handful of attribute keys are reserved and routed to fixed locations
// instead of the generic payload:
//
//   - "severity": overrides the level-derived severity when it parses as a
//     Cloud Logging severity name (for example "NOTICE" or "ALERT").
//   - "labels.*": stringified and collected under
//     "logging.googleapis.com/labels".
//   - "insert_id": stringified and emitted as
//     "logging.googleapis.com/insertId".
//   - "http_request.*" (or an [*HTTPRequest] value under "http_request"):
//     merged into the top-level "httpRequest" object.
//
// Named scopes pushed onto a context with [WithScope] are projected into a
// "span" object carrying the innermost scope's name and the merged fields of
// the whole chain. When the context carries an OpenTelemetry span context and
// a project ID is configured, the three Cloud Trace correlation fields are
// added so log entries line up with traces in the Cloud Console.
//
// Basic usage:
//
//	logger := slog.New(slogdriver.NewHandler(
//		slogdriver.WithWriter(os.Stdout),
//		slogdriver.WithProjectID("my-project"),
//	))
//	logger.Info("checkout complete", "order_id", 42)
//
// The slogdriver/http and slogdriver/grpc subpackages provide middleware and
// interceptors that emit request logs in the same format and propagate trace
// context via OpenTelemetry.
package slogdriver
