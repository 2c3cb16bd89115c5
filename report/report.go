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

package report

import (
	"cmp"
	"slices"

	"github.com/rubyflow/rubyflow/source"
)

// Report is a collection of diagnostics.
//
// A Report is not safe for concurrent mutation; producers running in
// parallel should collect into separate reports and merge them with
// [Report.Merge].
type Report struct {
	diagnostics []*Diagnostic
}

// ICE creates a new internal error diagnostic in this report.
func (r *Report) ICE(message string, options ...DiagnosticOption) *Diagnostic {
	return r.push(ICE, message, options)
}

// Error creates a new error diagnostic in this report.
func (r *Report) Error(message string, options ...DiagnosticOption) *Diagnostic {
	return r.push(Error, message, options)
}

// Warn creates a new warning diagnostic in this report.
func (r *Report) Warn(message string, options ...DiagnosticOption) *Diagnostic {
	return r.push(Warning, message, options)
}

// Remark creates a new remark diagnostic in this report.
func (r *Report) Remark(message string, options ...DiagnosticOption) *Diagnostic {
	return r.push(Remark, message, options)
}

// Diagnostics returns the diagnostics in this report, in insertion order
// (or sorted order, after a call to [Report.Sort]).
func (r *Report) Diagnostics() []*Diagnostic {
	return r.diagnostics
}

// Count returns the number of diagnostics of the given level.
func (r *Report) Count(level Level) int {
	var n int
	for _, d := range r.diagnostics {
		if d.level == level {
			n++
		}
	}
	return n
}

// Empty reports whether this report contains no diagnostics.
func (r *Report) Empty() bool {
	return len(r.diagnostics) == 0
}

// Merge appends all of other's diagnostics to this report.
func (r *Report) Merge(other *Report) {
	r.diagnostics = append(r.diagnostics, other.diagnostics...)
}

// Sort sorts the diagnostics in this report by file, then by span start,
// then by level. Sorting is stable, so diagnostics at the same position
// keep their insertion order.
func (r *Report) Sort() {
	slices.SortStableFunc(r.diagnostics, func(a, b *Diagnostic) int {
		as, bs := a.primary, b.primary
		if c := cmp.Compare(spanFile(as), spanFile(bs)); c != 0 {
			return c
		}
		aStart, _ := as.Offsets()
		bStart, _ := bs.Offsets()
		if c := cmp.Compare(aStart, bStart); c != 0 {
			return c
		}
		return cmp.Compare(a.level, b.level)
	})
}

func (r *Report) push(level Level, message string, options []DiagnosticOption) *Diagnostic {
	d := &Diagnostic{level: level, message: message}
	d.With(options...)
	r.diagnostics = append(r.diagnostics, d)
	return d
}

func spanFile(s source.Span) string {
	if s.IsZero() {
		return ""
	}
	return s.File().Name()
}
