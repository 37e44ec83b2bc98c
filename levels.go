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
	"fmt"
	"log/slog"
)

// Level extends slog.Level to cover the full Cloud Logging severity ladder.
// The integer values keep slog's ordering and spacing so a Level can be used
// anywhere an slog.Level is accepted.
type Level slog.Level

// Cloud Logging severities mapped onto slog.Level integer values. The
// standard slog levels keep their usual values; the additional severities
// slot into the gaps in order.
const (
	// LevelDefault maps to the DEFAULT severity (an entry with no assigned
	// severity). It sits below Debug.
	LevelDefault Level = -8

	// LevelDebug maps to DEBUG.
	LevelDebug Level = Level(slog.LevelDebug)

	// LevelInfo maps to INFO.
	LevelInfo Level = Level(slog.LevelInfo)

	// LevelNotice maps to NOTICE, between Info and Warn.
	LevelNotice Level = 2

	// LevelWarn maps to WARNING.
	LevelWarn Level = Level(slog.LevelWarn)

	// LevelError maps to ERROR.
	LevelError Level = Level(slog.LevelError)

	// LevelCritical maps to CRITICAL, above Error.
	LevelCritical Level = 12

	// LevelAlert maps to ALERT, above Critical.
	LevelAlert Level = 16

	// LevelEmergency maps to EMERGENCY, the highest severity.
	LevelEmergency Level = 20
)

// String returns the Cloud Logging severity name for exactly defined levels
// and "NAME+offset" for levels between them, mirroring slog.Level.String.
func (l Level) String() string {
	format := func(name string, offset Level) string {
		if offset == 0 {
			return name
		}
		return fmt.Sprintf("%s%+d", name, int(offset))
	}

	switch {
	case l < LevelDefault:
		return slog.Level(l).String()
	case l < LevelDebug:
		return format("DEFAULT", l-LevelDefault)
	case l < LevelInfo:
		return format("DEBUG", l-LevelDebug)
	case l < LevelNotice:
		return format("INFO", l-LevelInfo)
	case l < LevelWarn:
		return format("NOTICE", l-LevelNotice)
	case l < LevelError:
		return format("WARNING", l-LevelWarn)
	case l < LevelCritical:
		return format("ERROR", l-LevelError)
	case l < LevelAlert:
		return format("CRITICAL", l-LevelCritical)
	case l < LevelEmergency:
		return format("ALERT", l-LevelAlert)
	default:
		return format("EMERGENCY", l-LevelEmergency)
	}
}

// Level returns the underlying slog.Level so Level satisfies slog.Leveler.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}
