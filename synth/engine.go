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
	"strconv"
	"sync"

	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/source"
)

// Engine answers desugaring queries for one bound file against a fixed
// rule set.
//
// Construction walks the file once, collecting each rule's expansions,
// control-flow exclusions, and demanded kinds; those facts are immutable
// afterwards. Synthetic nodes themselves are materialized lazily, on
// demand, and canonicalized by structural address, so queries are
// referentially transparent: the same question always yields the same
// (pointer-identical) answer. All query methods are safe for unbounded
// concurrent use.
type Engine struct {
	file  *ast.File
	rules []Rule

	calls  map[callSig]struct{}
	consts map[string]struct{}

	expansions map[ast.Node]*expansion
	excluded   map[ast.Node]bool

	// Rule evaluations that panicked during construction. The panicking
	// rule's facts for that node are dropped; Validate turns each entry
	// into an internal error diagnostic.
	panics []rulePanic

	memo sync.Map // nodeKey -> *Node
	vars sync.Map // varKey -> *ast.Variable
}

type callSig struct {
	name   string
	setter bool
	arity  int
}

// nodeKey is the structural address of a synthetic node: who its parent
// is, which slot it fills, and what kind it has. Materializing the same
// address twice yields the same node.
type nodeKey struct {
	parent any // ast.Node or *Node
	index  int
	kind   Kind
}

type varKey struct {
	anchor ast.Node
	slot   int
}

// expansion is the union of all rules' slot facts about one real node.
type expansion struct {
	slots map[int]slotFact

	// Facts that lost to an earlier rule's fact at the same index. The
	// query path ignores them; Validate reports them.
	conflicts []conflictFact
}

type slotFact struct {
	child Child
	rule  string
}

type conflictFact struct {
	index       int
	rule, prior string
}

type rulePanic struct {
	node  ast.Node
	rule  string
	value any
}

// NewEngine binds a rule set to a file.
func NewEngine(file *ast.File, rules ...Rule) *Engine {
	e := &Engine{
		file:       file,
		rules:      rules,
		calls:      make(map[callSig]struct{}),
		consts:     make(map[string]struct{}),
		expansions: make(map[ast.Node]*expansion),
		excluded:   make(map[ast.Node]bool),
	}
	cx := &Context{engine: e}

	for _, rule := range rules {
		if d, ok := rule.(CallDemander); ok {
			d.DemandCalls(cx, func(name string, setter bool, arity int) {
				e.calls[callSig{name, setter, arity}] = struct{}{}
			})
		}
		if d, ok := rule.(ConstantDemander); ok {
			d.DemandConstants(cx, func(qualified string) {
				e.consts[qualified] = struct{}{}
			})
		}
	}

	eachNode(file.Root(), func(n ast.Node) {
		for _, rule := range rules {
			if exp := e.expand(cx, rule, n); exp != nil {
				e.merge(n, rule.Name(), exp)
			}
		}
	})
	return e
}

// expand evaluates one rule on one node, converting a panic into a
// recorded defect instead of tearing down construction.
func (e *Engine) expand(cx *Context, rule Rule, n ast.Node) (exp *Expansion) {
	defer func() {
		if p := recover(); p != nil {
			e.panics = append(e.panics, rulePanic{node: n, rule: rule.Name(), value: p})
			exp = nil
		}
	}()
	return rule.Expand(cx, n)
}

// File returns the bound file.
func (e *Engine) File() *ast.File { return e.file }

// DesugaredForm returns the synthetic replacement for a real node whose
// rules declared a [DesugaredRoot] child, if any.
func (e *Engine) DesugaredForm(n ast.Node) (AnyNode, bool) {
	exp := e.expansions[n]
	if exp == nil {
		return AnyNode{}, false
	}
	fact, ok := exp.slots[DesugaredRoot]
	if !ok {
		return AnyNode{}, false
	}
	return e.resolve(RealNode(n), DesugaredRoot, fact.child), true
}

// ExcludedFromControlFlow reports whether a real node has been hidden from
// control-flow construction because a synthesized replacement fully
// supersedes it.
func (e *Engine) ExcludedFromControlFlow(n ast.Node) bool {
	return e.excluded[n]
}

// NumChildren returns the number of child slots of n.
func (e *Engine) NumChildren(n AnyNode) int {
	if r := n.real; r != nil {
		return r.NumChildren()
	}
	return n.syn.NumChildren()
}

// Child returns the child of n in the given slot. For a real parent, a
// slot filled by a rule's fact shadows the (necessarily absent) real
// child; otherwise the real child is returned as-is. The result is the
// zero AnyNode for an absent optional slot.
//
// Panics if i is out of range.
func (e *Engine) Child(n AnyNode, i int) AnyNode {
	if r := n.real; r != nil {
		if exp := e.expansions[r]; exp != nil {
			if fact, ok := exp.slots[i]; ok {
				return e.resolve(n, i, fact.child)
			}
		}
		return RealNode(r.Child(i))
	}
	s := n.syn
	if i < 0 || i >= len(s.children) {
		panic(fmt.Sprintf("synth: child index %d out of range for %v", i, s))
	}
	return e.resolve(n, i, s.children[i])
}

// Children returns the non-absent children of n, in slot order.
func (e *Engine) Children(n AnyNode) []AnyNode {
	var out []AnyNode
	for i := range e.NumChildren(n) {
		if c := e.Child(n, i); !c.IsZero() {
			out = append(out, c)
		}
	}
	return out
}

// Location returns the source location of n.
//
// A real node's location is its span. A synthetic node's location is the
// one its rule declared, or else it is inherited from the structural
// parent; the chain always terminates at the expansion's real anchor.
func (e *Engine) Location(n AnyNode) source.Span {
	for {
		if r := n.real; r != nil {
			return r.Span()
		}
		s := n.syn
		if !s.loc.IsZero() {
			return s.loc
		}
		n = s.parent
	}
}

// ScopeOf returns the lexical scope enclosing n.
//
// Real nodes are answered by the file's binding. A synthetic node belongs
// to the scope introduced by its nearest Scoped synthetic ancestor, or,
// absent one, to the scope of the real node its expansion is attached to.
func (e *Engine) ScopeOf(n AnyNode) *ast.Scope {
	if r := n.real; r != nil {
		return e.file.ScopeOf(r)
	}
	for p := n.syn.parent; ; {
		if r := p.real; r != nil {
			return e.file.ScopeOf(r)
		}
		if sc := p.syn.scope; sc != nil {
			return sc
		}
		p = p.syn.parent
	}
}

// DeclaredVariables returns the synthetic local variables introduced at n.
//
// Real nodes introduce no synthetic variables; their bindings live in the
// file's scopes.
func (e *Engine) DeclaredVariables(n AnyNode) []*ast.Variable {
	s := n.syn
	if s == nil || len(s.declares) == 0 {
		return nil
	}
	out := make([]*ast.Variable, len(s.declares))
	for i, slot := range s.declares {
		out[i] = e.variable(s.anchor, slot)
	}
	return out
}

// resolve turns a child fact at (parent, index) into a node.
func (e *Engine) resolve(parent AnyNode, index int, c Child) AnyNode {
	switch {
	case c.IsRef():
		// Already synthesized elsewhere; do not re-enter rule evaluation.
		return SyntheticNode(c.ref)
	case c.IsReal():
		return RealNode(c.real)
	default:
		return SyntheticNode(e.materialize(parent, index, c))
	}
}

// materialize returns the canonical synthetic node for the given
// structural address, creating it if this is the first query to reach it.
//
// Creation is idempotent under concurrent access: racing queries build
// identical candidates and all but the published one are discarded.
func (e *Engine) materialize(parent AnyNode, index int, tmpl Child) *Node {
	key := nodeKey{parent: parentKey(parent), index: index, kind: tmpl.kind}
	if got, ok := e.memo.Load(key); ok {
		return got.(*Node)
	}

	n := &Node{
		kind:     tmpl.kind,
		parent:   parent,
		index:    index,
		children: tmpl.children,
		loc:      tmpl.loc,
		declares: tmpl.declares,
		anchor:   anchorOf(parent),
	}
	if tmpl.scoped {
		n.scope = ast.NewBlockScope(e.ScopeOf(parent))
		e.bindScopedVariables(n.scope, n.anchor, tmpl)
	}

	got, _ := e.memo.LoadOrStore(key, n)
	return got.(*Node)
}

// bindScopedVariables populates a fresh block scope with every synthetic
// variable declared in tmpl's subtree, stopping at nested Scoped nodes,
// which own their own declarations.
func (e *Engine) bindScopedVariables(sc *ast.Scope, anchor ast.Node, tmpl Child) {
	for _, slot := range tmpl.declares {
		sc.Bind(e.variable(anchor, slot))
	}
	for _, c := range tmpl.children {
		if c.IsSynth() && !c.scoped {
			e.bindScopedVariables(sc, anchor, c)
		}
	}
}

// variable returns the canonical synthetic variable for (anchor, slot).
func (e *Engine) variable(anchor ast.Node, slot int) *ast.Variable {
	key := varKey{anchor: anchor, slot: slot}
	if got, ok := e.vars.Load(key); ok {
		return got.(*ast.Variable)
	}
	v := ast.NewSyntheticVariable("__synth_" + strconv.Itoa(slot))
	got, _ := e.vars.LoadOrStore(key, v)
	return got.(*ast.Variable)
}

func (e *Engine) merge(n ast.Node, rule string, exp *Expansion) {
	merged := e.expansions[n]
	if merged == nil {
		merged = &expansion{slots: make(map[int]slotFact)}
		e.expansions[n] = merged
	}
	for _, slot := range exp.Slots {
		if prior, ok := merged.slots[slot.Index]; ok {
			merged.conflicts = append(merged.conflicts, conflictFact{
				index: slot.Index,
				rule:  rule,
				prior: prior.rule,
			})
			continue
		}
		merged.slots[slot.Index] = slotFact{child: slot.Child, rule: rule}
	}
	for _, excluded := range exp.Exclude {
		e.excluded[excluded] = true
	}
}

func (e *Engine) demandedCall(name string, setter bool, arity int) bool {
	_, ok := e.calls[callSig{name, setter, arity}]
	return ok
}

func (e *Engine) demandedConst(qualified string) bool {
	_, ok := e.consts[qualified]
	return ok
}

func parentKey(p AnyNode) any {
	if p.real != nil {
		return p.real
	}
	return p.syn
}

func anchorOf(p AnyNode) ast.Node {
	if p.real != nil {
		return p.real
	}
	return p.syn.anchor
}

// eachNode visits n and all of its descendants in preorder.
func eachNode(n ast.Node, f func(ast.Node)) {
	f(n)
	for i := range n.NumChildren() {
		if c := n.Child(i); c != nil {
			eachNode(c, f)
		}
	}
}
