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
	"slices"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestEnsurePropagationInstallsComposite(t *testing.T) {
	EnsurePropagation()

	fields := otel.GetTextMapPropagator().Fields()
	for _, want := range []string{"traceparent", "tracestate", "baggage", "x-cloud-trace-context"} {
		if !slices.Contains(fields, want) {
			t.Errorf("propagator fields %v missing %q", fields, want)
		}
	}
}
