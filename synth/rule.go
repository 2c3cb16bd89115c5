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

package synth

import "github.com/rubyflow/rubyflow/ast"

// Rule is one desugaring rule: a stateless producer of synthesis facts.
//
// A rule never mutates the real AST and holds no mutable state of its own;
// everything it asserts is a pure function of the bound file. The engine's
// total desugaring is the union of all its rules' facts, so any number of
// rules may contribute facts about the same node, as long as no two of
// them assert different children at the same slot. That situation is a
// rule-authoring bug, surfaced by [Validate]; the engine itself resolves
// it deterministically (first rule wins) rather than failing live
// consumers.
type Rule interface {
	// Name returns the rule's name, used in diagnostics.
	Name() string

	// Expand returns the facts this rule asserts about the real node n,
	// or nil if the rule does not apply to n.
	Expand(cx *Context, n ast.Node) *Expansion
}

// CallDemander is implemented by rules whose expansions synthesize method
// call nodes. The demanded (name, setter, arity) triples tell the engine
// which method call kinds must exist at all; the engine deduplicates, so
// two unrelated rules demanding the same triple resolve to one shared kind
// value.
type CallDemander interface {
	Rule

	// DemandCalls reports every method call kind this rule's expansions
	// can synthesize for the bound file.
	DemandCalls(cx *Context, demand func(name string, setter bool, arity int))
}

// ConstantDemander is implemented by rules whose expansions synthesize
// constant references.
type ConstantDemander interface {
	Rule

	// DemandConstants reports every constant reference kind this rule's
	// expansions can synthesize for the bound file.
	DemandConstants(cx *Context, demand func(qualified string))
}

// Context gives rules access to the engine they are bound to.
type Context struct {
	engine *Engine
}

// File returns the bound file.
func (cx *Context) File() *ast.File {
	return cx.engine.file
}

// Variable returns the synthetic variable with the given slot, anchored at
// the given real node.
//
// Variables are addressed structurally: every call with the same anchor
// and slot returns the same *ast.Variable, so a rule may name a temporary
// from Expand and again from a demand predicate without coordinating.
func (cx *Context) Variable(anchor ast.Node, slot int) *ast.Variable {
	return cx.engine.variable(anchor, slot)
}
