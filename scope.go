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
	"context"
	"log/slog"
)

// Scope is a named execution context carrying its own attributes. Scopes
// nest: each WithScope call pushes one onto the chain stored in the context,
// and every record logged under that context reports the chain as a "span"
// object.
type Scope struct {
	// Name identifies the scope, such as a request handler or job name.
	Name string

	// Attrs are the scope's fields. They are merged into the span object,
	// with inner scopes overriding same-named fields of their ancestors.
	Attrs []slog.Attr
}

type scopeChainKey struct{}

// WithScope returns a child context whose scope chain has a new innermost
// scope appended. The parent chain is copied, never mutated, so sibling
// contexts branching from the same parent see independent chains.
func WithScope(ctx context.Context, name string, attrs ...slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, _ := ctx.Value(scopeChainKey{}).([]Scope)
	chain := make([]Scope, len(parent)+1)
	copy(chain, parent)
	chain[len(parent)] = Scope{Name: name, Attrs: attrs}
	return context.WithValue(ctx, scopeChainKey{}, chain)
}

// ScopeChain returns the active scope chain, oldest ancestor first. The
// returned slice is shared; callers must not modify it.
func ScopeChain(ctx context.Context) []Scope {
	if ctx == nil {
		return nil
	}
	chain, _ := ctx.Value(scopeChainKey{}).([]Scope)
	return chain
}

// projectSpan renders the scope chain as a span object: the merged fields of
// every scope from oldest to innermost (inner wins on conflict) plus the
// innermost scope's name under "name". An empty chain yields nil so the
// document omits the span entirely.
func projectSpan(scopes []Scope) map[string]any {
	if len(scopes) == 0 {
		return nil
	}

	span := make(map[string]any, 8)
	for _, sc := range scopes {
		for _, attr := range sc.Attrs {
			if attr.Key == "" {
				continue
			}
			if val := resolveValue(attr.Value.Resolve()); val != nil {
				span[attr.Key] = val
			}
		}
	}
	// The name key is reserved for the scope name and wins over any field.
	span["name"] = scopes[len(scopes)-1].Name
	return span
}
