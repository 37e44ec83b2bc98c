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
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// field is one flattened attribute: a dotted key and its resolved value.
// The handler preserves insertion order so that later writes win when keys
// collide during nesting.
type field struct {
	key   string
	value slog.Value
}

// appendFlattened resolves attr and appends it to out with prefix applied.
// Groups expand into dotted paths ("span" group member "id" becomes
// "span.id"); inline groups (empty key) expand in place. HTTPRequest values
// are kept whole so the router can treat them as a unit.
func appendFlattened(out []field, prefix string, attr slog.Attr) []field {
	if isHTTPRequestValue(attr.Value) {
		if attr.Key == "" {
			return out
		}
		return append(out, field{key: prefix + attr.Key, value: attr.Value})
	}

	v := attr.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		members := v.Group()
		childPrefix := prefix
		if attr.Key != "" {
			childPrefix = prefix + attr.Key + "."
		}
		for _, m := range members {
			out = appendFlattened(out, childPrefix, m)
		}
		return out
	}

	if attr.Key == "" {
		return out
	}
	return append(out, field{key: prefix + attr.Key, value: v})
}

// camelSegment converts one dotted-path segment from snake_case to
// camelCase: every "_x" becomes "X" and the first rune is lowercased. The
// conversion is idempotent, so already-camelCase segments pass through
// unchanged.
func camelSegment(seg string) string {
	if !strings.ContainsRune(seg, '_') && !startsUpper(seg) {
		return seg
	}

	var b strings.Builder
	b.Grow(len(seg))
	upperNext := false
	for _, r := range seg {
		switch {
		case r == '_':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if r, size := utf8.DecodeRuneInString(out); size > 0 && unicode.IsUpper(r) {
		out = string(unicode.ToLower(r)) + out[size:]
	}
	return out
}

// startsUpper reports whether s begins with an uppercase rune.
func startsUpper(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsUpper(r)
}

// camelPath normalizes every segment of a dotted path.
func camelPath(path string) string {
	if !strings.ContainsRune(path, '.') {
		return camelSegment(path)
	}
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		segments[i] = camelSegment(seg)
	}
	return strings.Join(segments, ".")
}

// nestField splits f.key on dots and writes the resolved value into root,
// creating intermediate objects named by the camelCased segments. Shared
// prefixes merge into one object; when a path lands on an existing
// non-object value (or an object where a scalar sits), the later write
// replaces the earlier one, so insertion order decides collisions between
// literal dotted keys and assembled paths.
func nestField(root map[string]any, f field) {
	val := resolveValue(f.value)
	if val == nil {
		return
	}

	curr := root
	rest := f.key
	for {
		idx := strings.IndexByte(rest, '.')
		if idx < 0 {
			curr[camelSegment(rest)] = val
			return
		}
		name := camelSegment(rest[:idx])
		rest = rest[idx+1:]
		child, ok := curr[name].(map[string]any)
		if !ok {
			child = make(map[string]any, 4)
			curr[name] = child
		}
		curr = child
	}
}

// resolveValue converts a resolved slog.Value into a JSON-ready Go value.
// The value domain is closed: strings, integers, floats, booleans, nested
// mappings, and errors (rendered as their message). Durations and times get
// their conventional string forms. Nil-valued attributes are dropped by
// returning nil.
func resolveValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindBool:
		return v.Bool()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindString:
		return v.String()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindGroup:
		return resolveGroup(v.Group())
	case slog.KindAny:
		return resolveAny(v.Any())
	default:
		return nil
	}
}

// resolveGroup renders group members as a nested mapping, omitting blanks.
func resolveGroup(attrs []slog.Attr) any {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		if attr.Key == "" {
			continue
		}
		if val := resolveValue(attr.Value.Resolve()); val != nil {
			m[attr.Key] = val
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// resolveAny unwraps values attached via slog.Any into JSON-friendly forms.
func resolveAny(val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case error:
		return v.Error()
	case *HTTPRequest:
		return httpRequestMap(v)
	default:
		return v
	}
}

// stringifyValue renders a value as the string form required for label and
// insertId emission. Numbers and booleans use their literal text; anything
// without a sensible string form reports false.
func stringifyValue(v slog.Value) (string, bool) {
	rv := v.Resolve()
	switch rv.Kind() {
	case slog.KindString:
		return rv.String(), true
	case slog.KindInt64:
		return strconv.FormatInt(rv.Int64(), 10), true
	case slog.KindUint64:
		return strconv.FormatUint(rv.Uint64(), 10), true
	case slog.KindFloat64:
		return strconv.FormatFloat(rv.Float64(), 'g', -1, 64), true
	case slog.KindBool:
		return strconv.FormatBool(rv.Bool()), true
	case slog.KindDuration:
		return rv.Duration().String(), true
	case slog.KindTime:
		return rv.Time().UTC().Format(time.RFC3339), true
	case slog.KindAny:
		return stringifyAny(rv.Any())
	default:
		return "", false
	}
}

// stringifyAny converts arbitrary attached values into strings when possible.
func stringifyAny(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case fmt.Stringer:
		return v.String(), true
	case error:
		return v.Error(), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}
