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

package slogdriver_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/kvarst/slogdriver"
)

func Example() {
	logger := slogdriver.New(
		slogdriver.WithWriter(os.Stdout),
		slogdriver.WithSourceLocation(false),
		slogdriver.WithTraceCorrelation(false),
	)

	logger.Info("user signed in",
		"user_id", "u-123",
		"labels.tier", "gold",
	)
}

func ExampleWithScope() {
	logger := slogdriver.New(
		slogdriver.WithSourceLocation(false),
		slogdriver.WithTraceCorrelation(false),
	)

	ctx := slogdriver.WithScope(context.Background(), "checkout",
		slog.String("cart_id", "c-9"),
	)
	logger.InfoContext(ctx, "payment authorized")
}

func ExampleLogger_Notice() {
	logger := slogdriver.New(
		slogdriver.WithSourceLocation(false),
		slogdriver.WithTraceCorrelation(false),
	)
	logger.Notice("configuration reloaded")
}

func ExampleNewHTTPRequest() {
	logger := slogdriver.New(
		slogdriver.WithSourceLocation(false),
		slogdriver.WithTraceCorrelation(false),
	)

	req := &slogdriver.HTTPRequest{
		RequestMethod: "GET",
		RequestURL:    "/healthz",
		Status:        200,
	}
	logger.Info("request completed", slog.Any(slogdriver.HTTPRequestKey, req))
}
