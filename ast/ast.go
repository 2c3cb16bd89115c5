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

// Package ast defines the real (parsed) syntax tree for the analyzed
// language: a dynamic, expression-oriented scripting language in the Ruby
// family.
//
// Nodes are produced once by a parser and are immutable thereafter. A
// [File] binds a tree: it records parent links, per-parent child indices,
// and resolves lexical scopes and variables.
//
// Child slots are index-addressed and stable: optional slots (such as a
// call's receiver) keep their index even when syntactically absent, in
// which case [Node.Child] returns nil for them. This is what allows the
// desugaring layer to fill an absent slot with a synthesized node without
// renumbering its siblings.
package ast

import "github.com/rubyflow/rubyflow/source"

// Node is a real AST node.
type Node interface {
	source.Spanner

	// NumChildren returns the number of child slots of this node.
	NumChildren() int

	// Child returns the child in the given slot, which may be nil for an
	// optional slot that is syntactically absent.
	//
	// Panics if i is out of range.
	Child(i int) Node

	isNode()
}

// Children collects the non-nil children of n.
func Children(n Node) []Node {
	var out []Node
	for i := range n.NumChildren() {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Op is a binary operator of the language.
type Op int8

// The operators that can appear in an operator assignment, plus AssignOp,
// the simple assignment operator itself.
const (
	InvalidOp Op = iota
	AssignOp
	AddOp
	SubOp
	MulOp
	DivOp
	ModOp
	PowOp
	LShiftOp
	RShiftOp
	BitAndOp
	BitOrOp
	BitXorOp
	AndOp
	OrOp
)

var opNames = [...]string{
	InvalidOp: "<invalid>",
	AssignOp:  "=",
	AddOp:     "+",
	SubOp:     "-",
	MulOp:     "*",
	DivOp:     "/",
	ModOp:     "%",
	PowOp:     "**",
	LShiftOp:  "<<",
	RShiftOp:  ">>",
	BitAndOp:  "&",
	BitOrOp:   "|",
	BitXorOp:  "^",
	AndOp:     "&&",
	OrOp:      "||",
}

// String implements [fmt.Stringer].
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[InvalidOp]
}
