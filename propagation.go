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
	"os"
	"strconv"
	"strings"
	"sync"

	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var installPropagatorOnce sync.Once

func init() {
	EnsurePropagation()
}

// EnsurePropagation installs a composite OpenTelemetry text map propagator
// so incoming requests carry a span context the handler can correlate logs
// against. It accepts Google Cloud's legacy X-Cloud-Trace-Context header on
// extraction and W3C traceparent/tracestate in both directions, with Baggage
// last. Runs at most once per process; set
// SLOGDRIVER_DISABLE_PROPAGATOR_AUTOSET=true to opt out, and call
// otel.SetTextMapPropagator directly to override afterwards.
func EnsurePropagation() {
	installPropagatorOnce.Do(func() {
		if propagatorAutoSetDisabled() {
			return
		}
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			gcppropagator.CloudTraceOneWayPropagator{},
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	})
}

func propagatorAutoSetDisabled() bool {
	raw := strings.TrimSpace(os.Getenv("SLOGDRIVER_DISABLE_PROPAGATOR_AUTOSET"))
	if raw == "" {
		return false
	}
	disabled, err := strconv.ParseBool(raw)
	return err == nil && disabled
}
