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

package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rubyflow/rubyflow/source"
)

func TestPosition(t *testing.T) {
	t.Parallel()

	f := source.NewFile("test.rfy", "ab\ncd\n")

	assert.Equal(t, source.Position{Line: 1, Column: 1, Offset: 0}, f.Position(0))
	assert.Equal(t, source.Position{Line: 1, Column: 3, Offset: 2}, f.Position(2))
	assert.Equal(t, source.Position{Line: 2, Column: 1, Offset: 3}, f.Position(3))
	assert.Equal(t, source.Position{Line: 2, Column: 2, Offset: 4}, f.Position(4))

	// The empty final line owns the EOF offset.
	assert.Equal(t, source.Position{Line: 3, Column: 1, Offset: 6}, f.Position(6))

	// Out-of-range offsets clamp.
	assert.Equal(t, 0, f.Position(-10).Offset)
	assert.Equal(t, 6, f.Position(100).Offset)
}

func TestPositionCountsRunes(t *testing.T) {
	t.Parallel()

	f := source.NewFile("test.rfy", "héllo\n")

	// 'é' is two bytes but one column.
	assert.Equal(t, 3, f.Position(3).Column)
	assert.Equal(t, 6, f.Position(6).Column)
}

func TestLine(t *testing.T) {
	t.Parallel()

	f := source.NewFile("test.rfy", "ab\ncd\nef")
	assert.Equal(t, "ab", f.Line(0))
	assert.Equal(t, "ab", f.Line(2))
	assert.Equal(t, "cd", f.Line(4))
	assert.Equal(t, "ef", f.Line(7))
}

func TestSpan(t *testing.T) {
	t.Parallel()

	f := source.NewFile("test.rfy", "ab\ncd\n")

	s := f.Span(3, 5)
	assert.Equal(t, "cd", s.Text())
	assert.Equal(t, "test.rfy:2:1", s.String())
	start, end := s.Offsets()
	assert.Equal(t, 3, start)
	assert.Equal(t, 5, end)

	// Offsets clamp to the file.
	s = f.Span(-5, 100)
	assert.Equal(t, f.Text(), s.Text())

	eof := f.EOF()
	assert.Equal(t, "", eof.Text())
	assert.Equal(t, 3, eof.Start().Line)

	assert.True(t, source.Span{}.IsZero())
	assert.Equal(t, "<unknown>", source.Span{}.String())
}

func TestJoin(t *testing.T) {
	t.Parallel()

	f := source.NewFile("test.rfy", "abcdef")

	joined := source.Join(f.Span(4, 5), f.Span(1, 2), source.Span{})
	start, end := joined.Offsets()
	assert.Equal(t, 1, start)
	assert.Equal(t, 5, end)

	assert.True(t, source.Join().IsZero())

	other := source.NewFile("other.rfy", "abcdef")
	assert.Panics(t, func() { source.Join(f.Span(0, 1), other.Span(0, 1)) })
}
