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
	"log/slog"
	"runtime"
	"time"
)

// Logger wraps *slog.Logger with methods for the Cloud Logging severities
// slog has no name for (Notice, Critical, Alert, Emergency). The embedded
// logger is usable directly for the standard levels.
type Logger struct {
	*slog.Logger
}

// New builds a Logger backed by a Handler configured with opts.
func New(opts ...Option) *Logger {
	return &Logger{Logger: slog.New(NewHandler(opts...))}
}

// NewLogger wraps an existing *slog.Logger, typically one carrying
// request-scoped attributes derived from a slogdriver handler.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.New(NewHandler())
	}
	return &Logger{Logger: l}
}

// With returns a Logger whose records always include the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithGroup returns a Logger that nests subsequent attributes under name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(name)}
}

// Notice logs at NOTICE severity: normal but significant events.
func (l *Logger) Notice(msg string, args ...any) {
	l.log(context.Background(), LevelNotice, msg, args...)
}

// NoticeContext logs at NOTICE severity with trace and scope context.
func (l *Logger) NoticeContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelNotice, msg, args...)
}

// Critical logs at CRITICAL severity: events causing more severe problems
// than errors.
func (l *Logger) Critical(msg string, args ...any) {
	l.log(context.Background(), LevelCritical, msg, args...)
}

// CriticalContext logs at CRITICAL severity with trace and scope context.
func (l *Logger) CriticalContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelCritical, msg, args...)
}

// Alert logs at ALERT severity: a person must take action immediately.
func (l *Logger) Alert(msg string, args ...any) {
	l.log(context.Background(), LevelAlert, msg, args...)
}

// AlertContext logs at ALERT severity with trace and scope context.
func (l *Logger) AlertContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelAlert, msg, args...)
}

// Emergency logs at EMERGENCY severity: the system is unusable.
func (l *Logger) Emergency(msg string, args ...any) {
	l.log(context.Background(), LevelEmergency, msg, args...)
}

// EmergencyContext logs at EMERGENCY severity with trace and scope context.
func (l *Logger) EmergencyContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, LevelEmergency, msg, args...)
}

// log emits one record at the extended level, capturing the caller of the
// exported method as the source location.
func (l *Logger) log(ctx context.Context, level Level, msg string, args ...any) {
	h := l.Handler()
	if !h.Enabled(ctx, slog.Level(level)) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip Callers, log, and the exported wrapper
	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.Add(args...)
	_ = h.Handle(ctx, r)
}
