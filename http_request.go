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
	"net"
	"net/http"
	"strconv"
	"time"
)

// HTTPRequestKey is the attribute key that routes a value into the
// document's httpRequest object. Dotted fields under the same prefix
// ("http_request.status") merge into that object as well.
const HTTPRequestKey = "http_request"

// httpRequestOutputKey is the emitted JSON member name.
const httpRequestOutputKey = "httpRequest"

// HTTPRequest mirrors the Cloud Logging HTTP request payload stored in
// LogEntry.httpRequest. Field meanings follow the
// google.logging.type.HttpRequest schema:
// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#HttpRequest
type HTTPRequest struct {
	// Request is the original HTTP request, used to derive method, URL,
	// headers, and protocol. The body is never read or logged.
	Request *http.Request

	// RequestMethod is the HTTP method. Populated from Request when unset.
	RequestMethod string

	// RequestURL is the full request URL string.
	RequestURL string

	// RequestSize is the request size in bytes; zero means unknown.
	RequestSize int64

	// Status is the HTTP response status code.
	Status int

	// ResponseSize is the response size in bytes; zero means unknown.
	ResponseSize int64

	// Latency is the server processing time from receipt to response.
	Latency time.Duration

	// RemoteIP is the client address, without a port.
	RemoteIP string

	// LocalIP is the address of the server that handled the request.
	LocalIP string

	// UserAgent is the client's User-Agent header.
	UserAgent string

	// Referer is the request's Referer header, if any.
	Referer string

	// Protocol is the request protocol, such as "HTTP/1.1".
	Protocol string

	// CacheHit reports whether the response was served from cache.
	CacheHit bool

	// CacheValidatedWithOriginServer reports whether a cached response was
	// validated with the origin server before being served.
	CacheValidatedWithOriginServer bool

	// CacheFillBytes is the number of response bytes inserted into cache.
	CacheFillBytes int64

	// CacheLookup reports whether a cache lookup was attempted.
	CacheLookup bool
}

// NewHTTPRequest builds an HTTPRequest from a standard library request,
// populating the derived fields immediately.
func NewHTTPRequest(r *http.Request) *HTTPRequest {
	if r == nil {
		return nil
	}
	req := &HTTPRequest{Request: r}
	req.prepare()
	return req
}

// prepare fills derived fields from the embedded request and detaches it so
// later serialization never touches the live request. Safe to call twice.
func (req *HTTPRequest) prepare() {
	if r := req.Request; r != nil {
		setIfEmpty(&req.RequestMethod, r.Method)
		if r.URL != nil {
			setIfEmpty(&req.RequestURL, r.URL.String())
		}
		setIfEmpty(&req.UserAgent, r.UserAgent())
		setIfEmpty(&req.Referer, r.Referer())
		setIfEmpty(&req.Protocol, r.Proto)
		if req.RequestSize == 0 && r.ContentLength > 0 {
			req.RequestSize = r.ContentLength
		}
		setIfEmpty(&req.RemoteIP, r.RemoteAddr)
		req.Request = nil
	}

	if host, _, err := net.SplitHostPort(req.RemoteIP); err == nil {
		req.RemoteIP = host
	}
}

// setIfEmpty assigns value to target only when target is blank.
func setIfEmpty(target *string, value string) {
	if *target == "" && value != "" {
		*target = value
	}
}

// httpRequestMap renders req as the httpRequest JSON object. Unset members
// are omitted; sizes are serialized as decimal strings per the LogEntry
// schema, and latency uses the duration form "0.000000000s".
func httpRequestMap(req *HTTPRequest) map[string]any {
	if req == nil {
		return nil
	}
	if req.Request != nil {
		clone := *req
		clone.prepare()
		req = &clone
	}

	m := make(map[string]any, 12)
	putString := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	putString("requestMethod", req.RequestMethod)
	putString("requestUrl", req.RequestURL)
	putString("userAgent", req.UserAgent)
	putString("referer", req.Referer)
	putString("protocol", req.Protocol)
	putString("remoteIp", req.RemoteIP)
	putString("serverIp", req.LocalIP)

	if req.RequestSize > 0 {
		m["requestSize"] = strconv.FormatInt(req.RequestSize, 10)
	}
	if req.ResponseSize > 0 {
		m["responseSize"] = strconv.FormatInt(req.ResponseSize, 10)
	}
	if req.Status > 0 {
		m["status"] = req.Status
	}
	if req.Latency > 0 {
		m["latency"] = formatLatency(req.Latency)
	}
	if req.CacheLookup {
		m["cacheLookup"] = true
	}
	if req.CacheHit {
		m["cacheHit"] = true
	}
	if req.CacheValidatedWithOriginServer {
		m["cacheValidatedWithOriginServer"] = true
	}
	if req.CacheFillBytes > 0 {
		m["cacheFillBytes"] = strconv.FormatInt(req.CacheFillBytes, 10)
	}
	return m
}

// formatLatency renders a duration in the seconds form Cloud Logging parses.
func formatLatency(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 9, 64) + "s"
}

// isHTTPRequestValue reports whether v carries an *HTTPRequest attached via
// slog.Any. Such values are routed whole rather than flattened.
func isHTTPRequestValue(v slog.Value) bool {
	if v.Kind() != slog.KindAny {
		return false
	}
	_, ok := v.Any().(*HTTPRequest)
	return ok
}

// httpRequestFromValue unwraps an *HTTPRequest attached via slog.Any.
func httpRequestFromValue(v slog.Value) (*HTTPRequest, bool) {
	if v.Kind() != slog.KindAny {
		return nil, false
	}
	req, ok := v.Any().(*HTTPRequest)
	return req, ok && req != nil
}
