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
	"testing"
)

func TestSeverityForLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.Level(LevelDefault), SeverityDefault},
		{slog.Level(LevelDefault) - 4, SeverityDefault},
		{slog.LevelDebug, SeverityDebug},
		{slog.LevelDebug - 2, SeverityDebug},
		{slog.LevelInfo, SeverityInfo},
		{slog.LevelInfo + 1, SeverityNotice},
		{slog.Level(LevelNotice), SeverityNotice},
		{slog.LevelWarn, SeverityWarning},
		{slog.LevelError, SeverityError},
		{slog.Level(LevelCritical), SeverityCritical},
		{slog.Level(LevelAlert), SeverityAlert},
		{slog.Level(LevelEmergency), SeverityEmergency},
		{slog.Level(LevelEmergency) + 100, SeverityEmergency},
	}
	for _, tt := range tests {
		if got := severityForLevel(tt.level); got != tt.want {
			t.Errorf("severityForLevel(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"NOTICE", SeverityNotice, true},
		{"notice", SeverityNotice, true},
		{" Warning ", SeverityWarning, true},
		{"WARN", SeverityWarning, true},
		{"EMERGENCY", SeverityEmergency, true},
		{"default", SeverityDefault, true},
		{"not-a-level", "", false},
		{"", "", false},
		{"INFO2", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSeverity(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSeverity(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

type stringerSeverity string

func (s stringerSeverity) String() string { return string(s) }

func TestSeverityOverride(t *testing.T) {
	tests := []struct {
		name string
		in   slog.Value
		want string
		ok   bool
	}{
		{"string token", slog.StringValue("ALERT"), SeverityAlert, true},
		{"stringer token", slog.AnyValue(stringerSeverity("critical")), SeverityCritical, true},
		{"invalid string", slog.StringValue("nope"), "", false},
		{"numeric value", slog.IntValue(4), "", false},
		{"bool value", slog.BoolValue(true), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := severityOverride(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("severityOverride = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}
