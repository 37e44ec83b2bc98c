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

// Package grpc provides unary interceptors that give gRPC services the same
// structured logging treatment the http package gives web handlers: trace
// context extraction from incoming metadata, a per-call scope, a
// request-scoped logger in the context, and one completion entry per call
// with the method, status code, and latency.
//
// Install on a server:
//
//	logger := slogdriver.New(slogdriver.WithProjectID("my-project"))
//	srv := grpc.NewServer(
//		grpc.UnaryInterceptor(slogdrivergrpc.UnaryServerInterceptor(logger)),
//		grpc.StatsHandler(slogdrivergrpc.ServerStatsHandler()),
//	)
package grpc
