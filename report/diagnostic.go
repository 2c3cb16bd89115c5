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

// Package report provides rich diagnostics for the front end.
//
// Diagnostics are not errors in the Go sense: the desugaring engine's query
// paths never fail, and everything reportable is a defect in a rule set,
// surfaced during validation. See [Report].
package report

import "github.com/rubyflow/rubyflow/source"

// Level represents the severity of a diagnostic message.
type Level int8

const (
	// ICE is an internal compiler error. Indicates a panic within the
	// front end.
	ICE Level = 1 + iota
	// Error indicates a semantic constraint violation.
	Error
	// Warning indicates something that probably should not be ignored.
	Warning
	// Remark is the diagnostics version of "info".
	Remark
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case ICE:
		return "internal error"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	default:
		return "unknown"
	}
}

// Tag is a diagnostic tag: a machine-readable identification for a
// diagnostic.
//
// Tags should be lowercase identifiers separated by dashes, e.g.
// my-error-tag. A package that generates tagged diagnostics should expose
// its tags as constants.
type Tag string

// Apply implements [DiagnosticOption].
func (t Tag) Apply(d *Diagnostic) {
	if d.tag != "" {
		panic("report: set diagnostic tag more than once")
	}
	d.tag = t
}

// Diagnostic is a rich diagnostic message with an optional source span and
// notes.
type Diagnostic struct {
	tag     Tag
	message string
	level   Level

	primary source.Span
	notes   []string
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
//
// Nil values passed to [Diagnostic.With] are ignored.
type DiagnosticOption interface {
	Apply(*Diagnostic)
}

// Level returns this diagnostic's level.
func (d *Diagnostic) Level() Level {
	return d.level
}

// Message returns this diagnostic's message.
func (d *Diagnostic) Message() string {
	return d.message
}

// Primary returns this diagnostic's primary span, which may be the zero
// span.
func (d *Diagnostic) Primary() source.Span {
	return d.primary
}

// Notes returns this diagnostic's notes.
func (d *Diagnostic) Notes() []string {
	return d.notes
}

// Is checks whether this diagnostic has a particular tag.
func (d *Diagnostic) Is(tag Tag) bool {
	return d.tag == tag
}

// With applies the given options to this diagnostic.
//
// Nil values are ignored.
func (d *Diagnostic) With(options ...DiagnosticOption) *Diagnostic {
	for _, option := range options {
		if option != nil {
			option.Apply(d)
		}
	}
	return d
}

// Snippet sets the primary span of a diagnostic.
func Snippet(at source.Spanner) DiagnosticOption {
	return option(func(d *Diagnostic) {
		d.primary = at.Span()
	})
}

// Note attaches an explanatory note to a diagnostic.
func Note(text string) DiagnosticOption {
	return option(func(d *Diagnostic) {
		d.notes = append(d.notes, text)
	})
}

type option func(*Diagnostic)

func (o option) Apply(d *Diagnostic) { o(d) }
