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

import (
	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/source"
)

// DesugaredRoot is the reserved child index meaning "this synthetic node
// is itself the desugared form of its parent": a rule that declares a
// child at this index rewrites the parent wholesale, and consumers reach
// the replacement through [Engine.DesugaredForm].
const DesugaredRoot = -1

// Child is one declared child slot edge: either a recipe for synthesizing
// a fresh node, a reference to a pre-existing real node, or a reference to
// an already-synthesized node.
//
// The real and synthetic reference cases are deliberately distinct. A real
// reference resolves immediately, without re-entering rule evaluation; a
// synthetic recipe re-enters it. Collapsing the two into one lookup makes
// deeply nested expansions (an operator assignment of a tuple
// destructuring, say) accidentally superlinear.
type Child struct {
	kind     Kind
	children []Child
	loc      source.Span
	declares []int
	scoped   bool

	real ast.Node
	ref  *Node
}

// SynthChild declares a fresh synthetic node of the given kind, with the
// given children at slots 0..len(children)-1.
func SynthChild(kind Kind, children ...Child) Child {
	if kind.IsZero() {
		panic("synth: SynthChild requires a kind")
	}
	return Child{kind: kind, children: children}
}

// RealChildRef declares that a child slot is filled by an existing real
// node.
func RealChildRef(n ast.Node) Child {
	return Child{real: n}
}

// SynthChildRef declares that a child slot is filled by an existing
// synthetic node, shared with wherever that node was first synthesized.
func SynthChildRef(n *Node) Child {
	if n == nil {
		panic("synth: SynthChildRef requires a node")
	}
	return Child{ref: n}
}

// IsSynth reports whether this child is a fresh synthesis recipe.
func (c Child) IsSynth() bool { return !c.kind.IsZero() }

// IsReal reports whether this child references a real node.
func (c Child) IsReal() bool { return c.kind.IsZero() && c.ref == nil }

// IsRef reports whether this child references an existing synthetic node.
func (c Child) IsRef() bool { return c.ref != nil }

// Kind returns the kind of a synthesis recipe.
func (c Child) Kind() Kind { return c.kind }

// RealNode returns the referenced real node, which is nil unless IsReal.
func (c Child) RealNode() ast.Node { return c.real }

// Ref returns the referenced synthetic node, or nil.
func (c Child) Ref() *Node { return c.ref }

// At overrides the location of the synthesized node. Without it, the node
// inherits its structural parent's location.
func (c Child) At(span source.Span) Child {
	if !c.IsSynth() {
		panic("synth: At applies only to synthesized children")
	}
	c.loc = span
	return c
}

// Declaring records that the synthesized node introduces the fresh
// synthetic local variables with the given slots. Slots are scoped to the
// expansion's anchor node, so a single expansion introducing several
// temporaries numbers them 0, 1, 2, ...
func (c Child) Declaring(slots ...int) Child {
	if !c.IsSynth() {
		panic("synth: Declaring applies only to synthesized children")
	}
	c.declares = append(c.declares[:len(c.declares):len(c.declares)], slots...)
	return c
}

// Scoped records that the synthesized node introduces a fresh block scope.
// Synthetic variables declared anywhere in the node's expansion subtree
// (outside any nested Scoped node) belong to that scope.
func (c Child) Scoped() Child {
	if !c.IsSynth() {
		panic("synth: Scoped applies only to synthesized children")
	}
	c.scoped = true
	return c
}

// Slot pairs a child index with the child fact asserted at it.
type Slot struct {
	Index int
	Child Child
}

// Expansion is the set of facts a rule asserts about one real node: child
// slots to fill (including, possibly, the [DesugaredRoot] slot) and real
// nodes to hide from control-flow construction because a synthesized
// replacement fully supersedes them.
type Expansion struct {
	Slots   []Slot
	Exclude []ast.Node
}
