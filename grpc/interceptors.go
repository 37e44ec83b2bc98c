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

package grpc

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/stats"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/kvarst/slogdriver"
)

// UnaryServerInterceptor returns a unary server interceptor that extracts
// trace context from incoming metadata, opens a per-call scope named after
// the RPC method, stores a correlated logger in the handler context, and
// logs one completion entry with the method, peer, status code, and latency.
func UnaryServerInterceptor(logger *slogdriver.Logger, opts ...Option) grpc.UnaryServerInterceptor {
	cfg := applyOptions(opts)
	if logger == nil {
		logger = slogdriver.New()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = otel.GetTextMapPropagator().Extract(ctx, metadataCarrier{md: md})
		}

		service, method := splitMethodName(info.FullMethod)
		ctx = slogdriver.WithScope(ctx, info.FullMethod,
			slog.String("rpc_service", service),
			slog.String("rpc_method", method),
		)

		callLogger := logger
		if attrs, ok := slogdriver.TraceAttributes(ctx, cfg.projectID); ok {
			args := make([]any, len(attrs))
			for i, attr := range attrs {
				args[i] = attr
			}
			callLogger = callLogger.With(args...)
		}
		ctx = slogdriver.ContextWithLogger(ctx, callLogger)

		start := time.Now()
		resp, err := handler(ctx, req)
		st := status.Convert(err)

		attrs := []slog.Attr{
			slog.String("rpc.system", "grpc"),
			slog.String("rpc.service", service),
			slog.String("rpc.method", method),
			slog.String("rpc.code", st.Code().String()),
			slog.Duration("rpc.latency", time.Since(start)),
		}
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			attrs = append(attrs, slog.String("rpc.peer", p.Addr.String()))
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		if cfg.logPayloads {
			attrs = append(attrs,
				payloadAttr("rpc.request", req, cfg.maxPayloadBytes),
				payloadAttr("rpc.response", resp, cfg.maxPayloadBytes),
			)
		}

		callLogger.LogAttrs(ctx, cfg.levelFunc(st.Code()), "rpc completed", attrs...)
		return resp, err
	}
}

// UnaryClientInterceptor returns a unary client interceptor that logs one
// entry per outgoing call with the method, status code, and latency. Trace
// headers are injected by the otelgrpc stats handler, not here.
func UnaryClientInterceptor(logger *slogdriver.Logger, opts ...Option) grpc.UnaryClientInterceptor {
	cfg := applyOptions(opts)
	if logger == nil {
		logger = slogdriver.New()
	}

	return func(ctx context.Context, fullMethod string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, fullMethod, req, reply, cc, callOpts...)
		st := status.Convert(err)

		service, method := splitMethodName(fullMethod)
		attrs := []slog.Attr{
			slog.String("rpc.system", "grpc"),
			slog.String("rpc.service", service),
			slog.String("rpc.method", method),
			slog.String("rpc.code", st.Code().String()),
			slog.Duration("rpc.latency", time.Since(start)),
			slog.String("rpc.target", cc.CanonicalTarget()),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}
		if cfg.logPayloads {
			attrs = append(attrs,
				payloadAttr("rpc.request", req, cfg.maxPayloadBytes),
				payloadAttr("rpc.response", reply, cfg.maxPayloadBytes),
			)
		}

		logger.LogAttrs(ctx, cfg.levelFunc(st.Code()), "rpc call finished", attrs...)
		return err
	}
}

// ServerStatsHandler returns the otelgrpc stats handler that opens a server
// span per RPC. Pair it with UnaryServerInterceptor so the logged entries
// correlate with the span it creates.
func ServerStatsHandler(opts ...otelgrpc.Option) stats.Handler {
	return otelgrpc.NewServerHandler(opts...)
}

// ClientStatsHandler returns the otelgrpc stats handler that opens a client
// span per RPC and injects the propagation headers.
func ClientStatsHandler(opts ...otelgrpc.Option) stats.Handler {
	return otelgrpc.NewClientHandler(opts...)
}

// payloadAttr renders a proto message with protojson, replacing oversized or
// non-proto payloads with a descriptive placeholder.
func payloadAttr(key string, msg any, maxBytes int) slog.Attr {
	pm, ok := msg.(proto.Message)
	if !ok || pm == nil {
		return slog.String(key, "<non-proto payload>")
	}
	if size := proto.Size(pm); size > maxBytes {
		return slog.String(key, "<payload omitted: "+strconv.Itoa(size)+" bytes>")
	}
	rendered, err := protojson.Marshal(pm)
	if err != nil {
		return slog.String(key, "<payload marshal failed>")
	}
	return slog.String(key, string(rendered))
}

// splitMethodName splits "/package.Service/Method" into its parts.
func splitMethodName(fullMethod string) (service, method string) {
	name := strings.TrimPrefix(fullMethod, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}

// metadataCarrier adapts gRPC metadata to the OpenTelemetry TextMapCarrier
// interface for propagator extraction.
type metadataCarrier struct {
	md metadata.MD
}

func (c metadataCarrier) Get(key string) string {
	if vals := c.md.Get(strings.ToLower(key)); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func (c metadataCarrier) Set(key, value string) {
	c.md.Set(strings.ToLower(key), value)
}

func (c metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(c.md))
	for k := range c.md {
		keys = append(keys, k)
	}
	return keys
}
