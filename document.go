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
	"encoding/json"
)

// document accumulates one log entry as a JSON object with caller-controlled
// key order. encoding/json sorts map keys, which would scatter the schema
// fields; the Cloud Logging layout wants time and severity first and message
// last, so the top-level object is written field by field. Values still go
// through encoding/json, with HTML escaping off so URLs stay readable.
type document struct {
	buf *bytes.Buffer
	enc *json.Encoder
	n   int
	err error
}

// newDocument prepares a document that writes into buf.
func newDocument(buf *bytes.Buffer) *document {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &document{buf: buf, enc: enc}
}

// writeField appends one key/value pair, preserving call order.
func (d *document) writeField(key string, value any) {
	if d.err != nil {
		return
	}
	if d.n == 0 {
		d.buf.WriteByte('{')
	} else {
		d.buf.WriteByte(',')
	}
	d.n++

	if err := d.enc.Encode(key); err != nil {
		d.err = err
		return
	}
	d.trimNewline()
	d.buf.WriteByte(':')

	if err := d.enc.Encode(value); err != nil {
		d.err = err
		return
	}
	d.trimNewline()
}

// close terminates the object and appends the trailing newline that makes
// the entry one complete line. It reports the first serialization error.
func (d *document) close() error {
	if d.err != nil {
		return d.err
	}
	if d.n == 0 {
		d.buf.WriteByte('{')
	}
	d.buf.WriteString("}\n")
	return nil
}

// trimNewline drops the newline json.Encoder appends after every Encode.
func (d *document) trimNewline() {
	if n := d.buf.Len(); n > 0 && d.buf.Bytes()[n-1] == '\n' {
		d.buf.Truncate(n - 1)
	}
}
