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

// Package synth desugars surface syntax into explicit form without ever
// rewriting the real AST.
//
// Ruby-family surface syntax hides a lot of evaluation under sugar: a bare
// identifier may be a method call on an implicit self, `x.f = v` is really
// a call to `f=`, `a += b` reads before it writes, a destructuring
// assignment indexes its right-hand side element by element, and a for
// loop is an `each` call with a block. Analyses want the explicit form;
// tooling wants the tree the user wrote. This package serves both by
// overlaying synthetic nodes on the real tree: an [Engine], bound to one
// [ast.File] and a set of [Rule] values, answers child, location, scope,
// and declared-variable queries over the union of real and synthetic
// nodes, represented uniformly as [AnyNode].
//
// Queries are referentially transparent. A synthetic node is identified by
// where it sits and what it is, not by when it was allocated, so asking
// the same question twice yields the same answer, pointer-identical, from
// any number of goroutines.
//
// [Validate] checks a rule set against a file; [DefaultRules] is the
// production set.
package synth
