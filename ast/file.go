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

package ast

import (
	"github.com/rubyflow/rubyflow/source"
)

// File is a bound syntax tree: the root statement list of a source file,
// plus parent links, child indices, and resolved scopes for every node in
// it.
//
// A File is immutable once created, and safe for concurrent use.
type File struct {
	src  *source.File
	root *StmtList

	top     *Scope
	parents map[Node]Node
	indices map[Node]int
	scopes  map[Node]*Scope
}

// NewFile binds root into a File.
//
// Binding records each node's structural parent and child index, resolves
// every variable reference, and assigns every node its enclosing lexical
// scope.
func NewFile(src *source.File, root *StmtList) *File {
	f := &File{
		src:     src,
		root:    root,
		top:     newScope(TopScope, nil, nil),
		parents: make(map[Node]Node),
		indices: make(map[Node]int),
		scopes:  make(map[Node]*Scope),
	}
	f.bind(root, f.top)
	return f
}

// Source returns the source file this tree was parsed from.
func (f *File) Source() *source.File { return f.src }

// Name returns the source file's name.
func (f *File) Name() string { return f.src.Name() }

// Root returns the root statement list.
func (f *File) Root() *StmtList { return f.root }

// TopScope returns the file's top-level scope.
func (f *File) TopScope() *Scope { return f.top }

// Parent returns n's structural parent, or nil for the root.
func (f *File) Parent(n Node) Node { return f.parents[n] }

// ChildIndex returns n's index within its parent's child slots, or -1 for
// the root.
func (f *File) ChildIndex(n Node) int {
	if i, ok := f.indices[n]; ok {
		return i
	}
	return -1
}

// Contains reports whether n belongs to this file's bound tree.
func (f *File) Contains(n Node) bool {
	_, ok := f.scopes[n]
	return ok
}

// ScopeOf returns the lexical scope enclosing n.
func (f *File) ScopeOf(n Node) *Scope { return f.scopes[n] }

// SelfScopeOf returns the innermost self scope enclosing n.
func (f *File) SelfScopeOf(n Node) *Scope {
	if sc := f.scopes[n]; sc != nil {
		return sc.SelfScope()
	}
	return nil
}

// bind is the binding pass. sc is the scope n appears in.
func (f *File) bind(n Node, sc *Scope) {
	f.scopes[n] = sc
	for i := range n.NumChildren() {
		if c := n.Child(i); c != nil {
			f.parents[c] = n
			f.indices[c] = i
		}
	}

	switch n := n.(type) {
	case *MethodDef:
		inner := newScope(MethodScope, sc, n)
		for _, p := range n.params {
			f.scopes[p] = inner
			p.variable = inner.declare(p.name, LocalStorage, p)
		}
		f.bind(n.body, inner)

	case *ClassDef:
		f.bind(n.name, sc)
		f.bind(n.body, newScope(ClassScope, sc, n))

	case *BlockExpr:
		inner := newScope(BlockScope, sc, n)
		for _, p := range n.params {
			f.scopes[p] = inner
			p.variable = inner.declare(p.name, LocalStorage, p)
		}
		f.bind(n.body, inner)

	case *Assign:
		// The value binds before the target, but the target's variables
		// are declared before the target subtree is resolved.
		f.bind(n.rhs, sc)
		f.declareTarget(n.lhs, sc)
		f.bind(n.lhs, sc)

	case *OpAssign:
		f.bind(n.rhs, sc)
		f.declareTarget(n.lhs, sc)
		f.bind(n.lhs, sc)

	case *ForExpr:
		// A for loop is not a scope: its pattern binds in the enclosing
		// scope and stays visible after the loop.
		f.bind(n.iter, sc)
		f.declareTarget(n.pattern, sc)
		f.bind(n.pattern, sc)
		f.bind(n.body, sc)

	case *Ident:
		if n.variable == nil {
			n.variable = sc.Lookup(n.name)
		}

	case *IVarRef:
		n.variable = memberScope(sc).declare("@"+n.name, InstanceStorage, n)

	case *CVarRef:
		n.variable = memberScope(sc).declare("@@"+n.name, ClassStorage, n)

	case *GVarRef:
		n.variable = f.top.declare("$"+n.name, GlobalStorage, n)

	case *SelfRef:
		n.variable = sc.Self()

	default:
		for i := range n.NumChildren() {
			if c := n.Child(i); c != nil {
				f.bind(c, sc)
			}
		}
	}
}

// declareTarget declares the variables written by an assignment target.
func (f *File) declareTarget(target Node, sc *Scope) {
	switch target := target.(type) {
	case *Ident:
		if v := sc.Lookup(target.name); v != nil {
			target.variable = v
			return
		}
		target.variable = sc.declare(target.name, LocalStorage, target)

	case *TuplePattern:
		for _, e := range target.elems {
			f.declareTarget(e, sc)
		}

	case *SplatArg:
		f.declareTarget(target.pattern, sc)
	}
	// Call targets (attribute and element assignment) and the sigiled
	// variable references declare nothing here.
}

// memberScope returns the scope that owns instance and class variables:
// the nearest class or top-level scope.
func memberScope(sc *Scope) *Scope {
	for s := sc; s != nil; s = s.parent {
		if s.kind == ClassScope || s.kind == TopScope {
			return s
		}
	}
	return sc
}
