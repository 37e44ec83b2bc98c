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
	"log/slog"
	"strings"
)

// Canonical LogEntry severity tokens, in ascending order.
// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#LogSeverity
const (
	SeverityDefault   = "DEFAULT"
	SeverityDebug     = "DEBUG"
	SeverityInfo      = "INFO"
	SeverityNotice    = "NOTICE"
	SeverityWarning   = "WARNING"
	SeverityError     = "ERROR"
	SeverityCritical  = "CRITICAL"
	SeverityAlert     = "ALERT"
	SeverityEmergency = "EMERGENCY"
)

// severityForLevel converts an slog.Level into the Cloud Logging severity
// token for the half-open interval it falls in. Levels at or below
// LevelDefault have no assigned severity and map to DEFAULT; levels above the
// named ladder clamp to EMERGENCY.
func severityForLevel(level slog.Level) string {
	switch {
	case level <= slog.Level(LevelDefault):
		return SeverityDefault
	case level <= slog.LevelDebug:
		return SeverityDebug
	case level <= slog.LevelInfo:
		return SeverityInfo
	case level <= slog.Level(LevelNotice):
		return SeverityNotice
	case level <= slog.LevelWarn:
		return SeverityWarning
	case level <= slog.LevelError:
		return SeverityError
	case level <= slog.Level(LevelCritical):
		return SeverityCritical
	case level <= slog.Level(LevelAlert):
		return SeverityAlert
	default:
		return SeverityEmergency
	}
}

// ParseSeverity matches s against the Cloud Logging severity vocabulary,
// ignoring case and surrounding whitespace. "WARN" is accepted as an alias
// for WARNING to match slog naming. It returns the canonical token and
// whether the input parsed.
func ParseSeverity(s string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case SeverityDefault:
		return SeverityDefault, true
	case SeverityDebug:
		return SeverityDebug, true
	case SeverityInfo:
		return SeverityInfo, true
	case SeverityNotice:
		return SeverityNotice, true
	case SeverityWarning, "WARN":
		return SeverityWarning, true
	case SeverityError:
		return SeverityError, true
	case SeverityCritical:
		return SeverityCritical, true
	case SeverityAlert:
		return SeverityAlert, true
	case SeverityEmergency:
		return SeverityEmergency, true
	default:
		return "", false
	}
}

// severityOverride extracts a severity token from an explicit "severity"
// field value. Only string-shaped values are considered; anything else, or a
// string outside the vocabulary, leaves the level-derived severity in force.
func severityOverride(v slog.Value) (string, bool) {
	rv := v.Resolve()
	switch rv.Kind() {
	case slog.KindString:
		return ParseSeverity(rv.String())
	case slog.KindAny:
		if s, ok := rv.Any().(interface{ String() string }); ok {
			return ParseSeverity(s.String())
		}
	}
	return "", false
}
