// Copyright 2024-2026 The Rubyflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import "fmt"

// Span is a byte offset range within a [File].
//
// The zero span is "nil-like": it belongs to no file. Use [Span.IsZero] to
// check for it.
type Span struct {
	file       *File
	start, end int
}

// Spanner is any type with a span, such as an AST node.
type Spanner interface {
	Span() Span
}

// Span implements [Spanner].
func (s Span) Span() Span {
	return s
}

// File returns the file this span belongs to, or nil for the zero span.
func (s Span) File() *File {
	return s.file
}

// IsZero reports whether this is the zero span.
func (s Span) IsZero() bool {
	return s.file == nil
}

// Offsets returns the start and end byte offsets of this span.
func (s Span) Offsets() (start, end int) {
	return s.start, s.end
}

// Text returns the text this span covers.
func (s Span) Text() string {
	if s.IsZero() {
		return ""
	}
	return s.file.text[s.start:s.end]
}

// Start returns the position of the first byte of this span.
func (s Span) Start() Position {
	if s.IsZero() {
		return Position{}
	}
	return s.file.Position(s.start)
}

// End returns the position one past the last byte of this span.
func (s Span) End() Position {
	if s.IsZero() {
		return Position{}
	}
	return s.file.Position(s.end)
}

// String implements [fmt.Stringer].
func (s Span) String() string {
	if s.IsZero() {
		return "<unknown>"
	}
	start := s.Start()
	return fmt.Sprintf("%s:%d:%d", s.file.name, start.Line, start.Column)
}

// Join returns the smallest span that contains all of the given spans.
//
// Zero spans are ignored; all non-zero spans must belong to the same file.
func Join(spans ...Spanner) Span {
	joined := Span{}
	for _, s := range spans {
		if s == nil {
			continue
		}
		span := s.Span()
		if span.IsZero() {
			continue
		}
		if joined.IsZero() {
			joined = span
			continue
		}
		if joined.file != span.file {
			panic("source: cannot join spans from different files")
		}
		joined.start = min(joined.start, span.start)
		joined.end = max(joined.end, span.end)
	}
	return joined
}
