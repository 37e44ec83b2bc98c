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
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/compute/metadata"
)

// Option configures a Handler. Options are applied in order; later options
// win. Settings left unset fall back to environment variables and then to
// the documented defaults.
type Option func(*settings)

// settings collects option values before resolution. Pointer fields
// distinguish "not set" from an explicit zero value so the environment
// fallback only fires for genuinely unset knobs.
type settings struct {
	writer       io.Writer
	leveler      slog.Leveler
	addSource    *bool
	projectID    *string
	traceEnabled *bool
	target       string
	internal     *slog.Logger
}

// config is the immutable resolved form shared by a Handler and all handlers
// derived from it via WithAttrs/WithGroup.
type config struct {
	writer    io.Writer
	mu        *sync.Mutex
	leveler   slog.Leveler
	addSource bool
	projectID string
	target    string
	internal  *slog.Logger
}

// WithWriter directs output to w. Defaults to os.Stdout, where the Cloud
// Logging agent picks up structured lines.
func WithWriter(w io.Writer) Option {
	return func(s *settings) { s.writer = w }
}

// WithLevel sets the minimum level that produces output.
func WithLevel(level Level) Option {
	return func(s *settings) { s.leveler = level }
}

// WithLeveler sets a dynamic minimum level, such as a *slog.LevelVar, so the
// threshold can change at runtime.
func WithLeveler(leveler slog.Leveler) Option {
	return func(s *settings) { s.leveler = leveler }
}

// WithSourceLocation controls emission of the
// logging.googleapis.com/sourceLocation field. Enabled by default; disable
// it in hot paths to skip the program counter resolution per record.
func WithSourceLocation(enabled bool) Option {
	return func(s *settings) { s.addSource = &enabled }
}

// WithProjectID enables trace correlation using the given Google Cloud
// project ID. The value is used verbatim in the trace resource name.
func WithProjectID(projectID string) Option {
	return func(s *settings) { s.projectID = &projectID }
}

// WithTraceCorrelation toggles trace correlation. Passing false suppresses
// the logging.googleapis.com/trace family even when a project ID could be
// detected from the environment.
func WithTraceCorrelation(enabled bool) Option {
	return func(s *settings) { s.traceEnabled = &enabled }
}

// WithTarget stamps every record with a "target" field identifying the
// producing subsystem. A record-level "target" attribute overrides it.
func WithTarget(target string) Option {
	return func(s *settings) { s.target = target }
}

// WithInternalLogger sets the logger used for the handler's own diagnostics,
// such as serialization failures. Defaults to a discarding logger.
func WithInternalLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.internal = logger }
}

func resolveConfig(opts []Option) *config {
	var s settings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	cfg := &config{
		writer:  s.writer,
		mu:      new(sync.Mutex),
		leveler: s.leveler,
		target:  s.target,
	}
	if cfg.writer == nil {
		cfg.writer = os.Stdout
	}
	if cfg.leveler == nil {
		cfg.leveler = levelFromEnv()
	}
	cfg.internal = s.internal
	if cfg.internal == nil {
		cfg.internal = slog.New(slog.DiscardHandler)
	}

	if s.addSource != nil {
		cfg.addSource = *s.addSource
	} else {
		cfg.addSource = sourceLocationFromEnv()
	}

	traceEnabled := true
	if s.traceEnabled != nil {
		traceEnabled = *s.traceEnabled
	}
	if traceEnabled {
		if s.projectID != nil {
			cfg.projectID = strings.TrimSpace(*s.projectID)
		} else {
			cfg.projectID = detectProjectID(cfg.internal)
		}
	}
	return cfg
}

// levelFromEnv reads LOG_LEVEL. It accepts both the Cloud Logging severity
// vocabulary (NOTICE, CRITICAL, ...) and bare integers in slog's scale.
// Unset or unparseable values mean LevelInfo.
func levelFromEnv() Level {
	raw := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if raw == "" {
		return LevelInfo
	}
	if lvl, ok := levelForSeverityName(raw); ok {
		return lvl
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return Level(n)
	}
	return LevelInfo
}

// levelForSeverityName maps a severity token (case-insensitive, WARN
// accepted) to its Level.
func levelForSeverityName(name string) (Level, bool) {
	sev, ok := ParseSeverity(name)
	if !ok {
		return 0, false
	}
	switch sev {
	case SeverityDefault:
		return LevelDefault, true
	case SeverityDebug:
		return LevelDebug, true
	case SeverityInfo:
		return LevelInfo, true
	case SeverityNotice:
		return LevelNotice, true
	case SeverityWarning:
		return LevelWarn, true
	case SeverityError:
		return LevelError, true
	case SeverityCritical:
		return LevelCritical, true
	case SeverityAlert:
		return LevelAlert, true
	default:
		return LevelEmergency, true
	}
}

// sourceLocationFromEnv reads LOG_SOURCE_LOCATION; source location is on
// unless explicitly disabled.
func sourceLocationFromEnv() bool {
	raw := strings.TrimSpace(os.Getenv("LOG_SOURCE_LOCATION"))
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return v
}

var (
	metadataProjectOnce sync.Once
	metadataProjectID   string
)

// detectProjectID resolves the project ID for trace correlation from the
// environment, then from the GCE metadata server when running on Google
// Cloud. Returns "" when nothing resolves; trace correlation then stays off.
func detectProjectID(internal *slog.Logger) string {
	for _, name := range []string{"SLOGDRIVER_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"} {
		if id, ok := normalizeProjectID(os.Getenv(name)); ok {
			return id
		}
	}
	metadataProjectOnce.Do(func() {
		if !metadata.OnGCE() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		id, err := metadata.ProjectIDWithContext(ctx)
		if err != nil {
			internal.LogAttrs(context.Background(), slog.LevelWarn,
				"metadata server project ID lookup failed", slog.Any("error", err))
			return
		}
		metadataProjectID = strings.TrimSpace(id)
	})
	return metadataProjectID
}
