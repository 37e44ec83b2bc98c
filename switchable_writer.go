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
	"io"
	"os"
	"sync"
)

// SwitchableWriter is an io.Writer whose destination can be swapped while
// handlers keep writing to it. Pass one to WithWriter when the sink must
// change at runtime, such as reopening a log file after rotation, without
// rebuilding the handler.
type SwitchableWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSwitchableWriter returns a SwitchableWriter initially writing to w.
// A nil w means io.Discard.
func NewSwitchableWriter(w io.Writer) *SwitchableWriter {
	if w == nil {
		w = io.Discard
	}
	return &SwitchableWriter{w: w}
}

// Write forwards p to the current destination. Safe for concurrent use.
func (sw *SwitchableWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	w := sw.w
	if w == nil {
		sw.mu.Unlock()
		return 0, os.ErrClosed
	}
	n, err := w.Write(p)
	sw.mu.Unlock()
	if err != nil {
		return n, fmt.Errorf("switchable writer: %w", err)
	}
	return n, nil
}

// Swap replaces the destination and returns the previous one. The caller
// owns the returned writer's lifecycle. A nil w means io.Discard.
func (sw *SwitchableWriter) Swap(w io.Writer) io.Writer {
	if w == nil {
		w = io.Discard
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()
	prev := sw.w
	sw.w = w
	return prev
}

// Close closes the current destination when it implements io.Closer and
// redirects further writes to io.Discard. Idempotent.
func (sw *SwitchableWriter) Close() error {
	sw.mu.Lock()
	prev := sw.w
	sw.w = io.Discard
	sw.mu.Unlock()

	if c, ok := prev.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close log destination: %w", err)
		}
	}
	return nil
}

var _ io.WriteCloser = (*SwitchableWriter)(nil)
