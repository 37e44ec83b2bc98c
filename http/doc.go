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

// Package http provides net/http middleware that ties request handling to
// slogdriver: it opens a request scope, correlates logs with the active
// trace, stores a request-scoped logger in the context, and emits one access
// log entry per request with a Cloud Logging httpRequest payload.
//
// Wrap a handler like so:
//
//	logger := slogdriver.New(slogdriver.WithProjectID("my-project"))
//	mux := http.NewServeMux()
//	// ... register handlers ...
//	srv := &http.Server{
//		Handler: slogdriverhttp.Middleware(slogdriverhttp.WithLogger(logger))(mux),
//	}
//
// Handlers retrieve the request logger with slogdriver.FromContext(r.Context()).
package http
