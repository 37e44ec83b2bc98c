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
	"bytes"
	"testing"
)

func TestDocumentPreservesKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	d := newDocument(&buf)
	d.writeField("z", 1)
	d.writeField("a", "two")
	d.writeField("m", true)
	if err := d.close(); err != nil {
		t.Fatalf("close() error: %v", err)
	}

	want := `{"z":1,"a":"two","m":true}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestDocumentEmpty(t *testing.T) {
	var buf bytes.Buffer
	d := newDocument(&buf)
	if err := d.close(); err != nil {
		t.Fatalf("close() error: %v", err)
	}
	if got := buf.String(); got != "{}\n" {
		t.Errorf("empty document = %q", got)
	}
}

func TestDocumentNoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	d := newDocument(&buf)
	d.writeField("url", "/search?q=a&b=<c>")
	if err := d.close(); err != nil {
		t.Fatalf("close() error: %v", err)
	}
	want := `{"url":"/search?q=a&b=<c>"}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestDocumentNestedValues(t *testing.T) {
	var buf bytes.Buffer
	d := newDocument(&buf)
	d.writeField("obj", map[string]any{"inner": "v"})
	if err := d.close(); err != nil {
		t.Fatalf("close() error: %v", err)
	}
	want := `{"obj":{"inner":"v"}}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("document = %q, want %q", got, want)
	}
}

func TestDocumentSerializationError(t *testing.T) {
	var buf bytes.Buffer
	d := newDocument(&buf)
	d.writeField("bad", func() {}) // funcs are not serializable
	d.writeField("after", "ignored")
	if err := d.close(); err == nil {
		t.Error("close() must report the serialization error")
	}
}
