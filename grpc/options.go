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

package grpc

import (
	"log/slog"

	"google.golang.org/grpc/codes"
)

// Option configures the interceptors.
type Option func(*config)

type config struct {
	projectID       string
	logPayloads     bool
	maxPayloadBytes int
	levelFunc       func(codes.Code) slog.Level
}

// WithProjectID sets the project ID used to build trace resource names for
// per-call correlation attributes. When empty, the environment detection
// used by the root package applies.
func WithProjectID(projectID string) Option {
	return func(c *config) { c.projectID = projectID }
}

// WithPayloadLogging logs request and response messages at DEBUG severity,
// rendered with protojson. Payloads above the WithMaxPayloadSize limit are
// replaced by a size note. Off by default.
func WithPayloadLogging(enabled bool) Option {
	return func(c *config) { c.logPayloads = enabled }
}

// WithMaxPayloadSize caps the serialized size of logged payloads in bytes.
// The default is 8192.
func WithMaxPayloadSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPayloadBytes = n
		}
	}
}

// WithLevels overrides the mapping from final gRPC status code to the
// severity of the completion entry.
func WithLevels(f func(codes.Code) slog.Level) Option {
	return func(c *config) {
		if f != nil {
			c.levelFunc = f
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		maxPayloadBytes: 8192,
		levelFunc:       codeToLevel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// codeToLevel is the default status-to-severity mapping: expected
// client-side conditions stay at INFO, flow-control and precondition codes
// warn, server faults are errors.
func codeToLevel(code codes.Code) slog.Level {
	switch code {
	case codes.OK, codes.Canceled, codes.NotFound, codes.AlreadyExists,
		codes.InvalidArgument, codes.Unauthenticated:
		return slog.LevelInfo
	case codes.PermissionDenied, codes.ResourceExhausted, codes.FailedPrecondition,
		codes.Aborted, codes.OutOfRange, codes.Unavailable, codes.DeadlineExceeded:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
