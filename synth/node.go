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
	"fmt"

	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/source"
)

// Node is a synthetic AST node.
//
// Synthetic nodes have structural identity, not allocation identity: a
// node is fully determined by its structural parent, its child index
// within it, and its kind, and the engine canonicalizes on that address.
// Asking the engine for the same child twice yields the same *Node.
type Node struct {
	kind   Kind
	parent AnyNode
	index  int

	// The remaining fields are the node's share of the rule template it
	// was materialized from; they are fixed before the node is published
	// and never written afterwards.
	children []Child
	loc      source.Span
	declares []int
	scope    *ast.Scope // non-nil iff the template was Scoped
	anchor   ast.Node   // the real node this expansion hangs off
}

// Kind returns this node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Parent returns this node's structural parent, which may be real or
// synthetic.
func (n *Node) Parent() AnyNode { return n.parent }

// Index returns this node's child index within its parent, or
// [DesugaredRoot] if this node is the parent's desugared form.
func (n *Node) Index() int { return n.index }

// NumChildren returns the number of child slots of this node.
func (n *Node) NumChildren() int { return len(n.children) }

// Anchor returns the real node whose expansion this node belongs to.
func (n *Node) Anchor() ast.Node { return n.anchor }

// String implements [fmt.Stringer].
func (n *Node) String() string {
	return fmt.Sprintf("~%v", n.kind)
}

// AnyNode is either a real AST node or a synthetic one.
//
// This is the node representation the engine's consumers (control-flow
// and data-flow construction) operate on; apart from
// [Engine.ExcludedFromControlFlow] and [Engine.DesugaredForm], they have
// no reason to distinguish the two cases.
//
// The zero AnyNode means "no node".
type AnyNode struct {
	real ast.Node
	syn  *Node
}

// RealNode wraps a real AST node.
func RealNode(n ast.Node) AnyNode {
	if n == nil {
		return AnyNode{}
	}
	return AnyNode{real: n}
}

// SyntheticNode wraps a synthetic node.
func SyntheticNode(n *Node) AnyNode {
	if n == nil {
		return AnyNode{}
	}
	return AnyNode{syn: n}
}

// IsZero reports whether this is the zero AnyNode.
func (n AnyNode) IsZero() bool { return n.real == nil && n.syn == nil }

// Real returns the real node, or nil if this node is synthetic or zero.
func (n AnyNode) Real() ast.Node { return n.real }

// Synthetic returns the synthetic node, or nil.
func (n AnyNode) Synthetic() *Node { return n.syn }

// String implements [fmt.Stringer].
func (n AnyNode) String() string {
	switch {
	case n.real != nil:
		return fmt.Sprintf("%T", n.real)
	case n.syn != nil:
		return n.syn.String()
	default:
		return "<none>"
	}
}
