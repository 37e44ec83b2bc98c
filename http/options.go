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
	"log/slog"

	"github.com/kvarst/slogdriver"
)

// Option configures the middleware.
type Option func(*config)

type config struct {
	logger     *slogdriver.Logger
	projectID  string
	enableOTel bool
	scopeName  string
	accessLog  bool
}

// WithLogger sets the logger used for the access log and stored in request
// contexts. Defaults to a logger over a default slogdriver handler.
func WithLogger(logger *slogdriver.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithProjectID sets the project ID used to build trace resource names for
// request-scoped correlation attributes. When empty, the environment
// detection used by the root package applies.
func WithProjectID(projectID string) Option {
	return func(c *config) { c.projectID = projectID }
}

// WithOTel toggles wrapping the handler chain in otelhttp instrumentation so
// each request runs inside a server span. Enabled by default.
func WithOTel(enabled bool) Option {
	return func(c *config) { c.enableOTel = enabled }
}

// WithScopeName overrides the name of the scope pushed for each request.
// Defaults to "METHOD path", such as "GET /orders".
func WithScopeName(name string) Option {
	return func(c *config) { c.scopeName = name }
}

// WithAccessLog toggles the per-request completion entry. Enabled by
// default; disable it when access logging happens elsewhere and only the
// request-scoped logger is wanted.
func WithAccessLog(enabled bool) Option {
	return func(c *config) { c.accessLog = enabled }
}

func applyOptions(opts []Option) *config {
	cfg := &config{enableOTel: true, accessLog: true}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slogdriver.New()
	}
	return cfg
}

// accessLevel maps a response status class to the severity of the access
// log entry.
func accessLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
