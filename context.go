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
	"sync"
)

type loggerKey struct{}

// ContextWithLogger stores logger in the context so request middleware can
// hand a pre-correlated logger to downstream handlers.
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored by ContextWithLogger, or a logger
// backed by a default Handler when none is present. The fallback keeps
// call sites total: logging never requires a nil check.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*Logger); ok && l != nil {
			return l
		}
	}
	return defaultLogger()
}

var (
	fallbackOnce   sync.Once
	fallbackLogger *Logger
)

// defaultLogger builds the process-wide fallback at most once.
func defaultLogger() *Logger {
	fallbackOnce.Do(func() { fallbackLogger = New() })
	return fallbackLogger
}
