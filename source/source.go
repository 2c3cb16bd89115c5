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

// Package source provides the source code model for the front end: files,
// byte-offset spans within them, and line/column positions.
package source

import (
	"strings"
	"sync"

	"github.com/rubyflow/rubyflow/internal/interval"
)

// File is an input source file.
//
// A File is immutable once created, and safe for concurrent use.
type File struct {
	name, text string

	once  sync.Once
	lines interval.Map[int, int] // byte range of a line -> 1-based line number
}

// NewFile creates a new source file with the given name and text.
func NewFile(name, text string) *File {
	return &File{name: name, text: text}
}

// Name returns the name of this file, as it should appear in diagnostics.
func (f *File) Name() string {
	return f.name
}

// Text returns the full text of this file.
func (f *File) Text() string {
	return f.text
}

// Span returns a span for the given byte offset range of this file.
//
// Offsets are clamped to the bounds of the file text.
func (f *File) Span(start, end int) Span {
	start = min(max(start, 0), len(f.text))
	end = min(max(end, start), len(f.text))
	return Span{file: f, start: start, end: end}
}

// EOF returns a zero-width span at the end of this file.
func (f *File) EOF() Span {
	return f.Span(len(f.text), len(f.text))
}

// Position resolves a byte offset to a line/column position.
//
// Lines and columns are 1-based; columns count runes, not bytes.
func (f *File) Position(offset int) Position {
	f.once.Do(f.index)

	offset = min(max(offset, 0), len(f.text))
	line := f.lines.Get(offset)
	if line.Value == nil {
		// Past the final newline; treat as one line beyond the last.
		return Position{Line: f.lines.Len() + 1, Column: 1, Offset: offset}
	}

	col := 1 + len([]rune(f.text[line.Start:offset]))
	return Position{Line: *line.Value, Column: col, Offset: offset}
}

// Line returns the full text of the 1-based line containing offset, without
// its trailing newline.
func (f *File) Line(offset int) string {
	f.once.Do(f.index)

	line := f.lines.Get(min(max(offset, 0), len(f.text)))
	if line.Value == nil {
		return ""
	}
	// The final line's interval ends at the EOF offset itself.
	end := min(line.End+1, len(f.text))
	return strings.TrimSuffix(f.text[line.Start:end], "\n")
}

// index builds the line lookup table.
func (f *File) index() {
	line := 1
	start := 0
	for i := range len(f.text) {
		if f.text[i] == '\n' {
			f.lines.Insert(start, i, line)
			start = i + 1
			line++
		}
	}
	// The final line includes the EOF offset, so that resolving an
	// end-of-file span terminates on the last line.
	f.lines.Insert(start, len(f.text), line)
}

// Position is a line/column position within a source file.
type Position struct {
	// 1-based line and column. The column counts runes.
	Line, Column int

	// The byte offset this position was resolved from.
	Offset int
}
