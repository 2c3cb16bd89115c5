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

// Storage classifies where a variable lives.
type Storage int8

// The storage classes of the language.
const (
	LocalStorage Storage = iota
	InstanceStorage
	ClassStorage
	GlobalStorage
	SelfStorage
)

// String implements [fmt.Stringer].
func (s Storage) String() string {
	switch s {
	case LocalStorage:
		return "local"
	case InstanceStorage:
		return "instance"
	case ClassStorage:
		return "class"
	case GlobalStorage:
		return "global"
	case SelfStorage:
		return "self"
	default:
		return "unknown"
	}
}

// Variable is a resolved variable: a named storage location.
//
// Real variables are created by [NewFile]'s binding pass and carry the
// scope that declares them. Synthetic variables are created by the
// desugaring layer with [NewSyntheticVariable]; their scope is a projection
// of the synthetic node that introduces them, so Scope returns nil for
// them.
type Variable struct {
	name      string
	storage   Storage
	scope     *Scope
	decl      Node
	synthetic bool
}

// NewSyntheticVariable creates a fresh variable that does not correspond
// to any name in the source text.
func NewSyntheticVariable(name string) *Variable {
	return &Variable{name: name, synthetic: true}
}

// Name returns the variable's name.
func (v *Variable) Name() string { return v.name }

// Storage returns the variable's storage class.
func (v *Variable) Storage() Storage { return v.storage }

// Scope returns the scope that declares this variable, or nil for a
// synthetic variable.
func (v *Variable) Scope() *Scope { return v.scope }

// Declaration returns the node whose binding declared this variable, or
// nil for self and synthetic variables.
func (v *Variable) Declaration() Node { return v.decl }

// IsSynthetic reports whether this variable was introduced by desugaring.
func (v *Variable) IsSynthetic() bool { return v.synthetic }

// ScopeKind classifies a lexical scope.
type ScopeKind int8

// The scope kinds of the language. Top-level, method, and class scopes are
// self scopes: they determine what an implicit receiver resolves to.
// Block scopes are not; they delegate to their parent.
const (
	TopScope ScopeKind = iota
	MethodScope
	ClassScope
	BlockScope
)

// Scope is a lexical scope: a set of named variables plus a link to the
// enclosing scope.
type Scope struct {
	kind   ScopeKind
	parent *Scope
	node   Node // the node introducing this scope; nil for top and synthetic scopes
	vars   []*Variable
	byName map[string]*Variable
	self   *Variable // non-nil exactly for self scopes
}

func newScope(kind ScopeKind, parent *Scope, node Node) *Scope {
	s := &Scope{
		kind:   kind,
		parent: parent,
		node:   node,
		byName: make(map[string]*Variable),
	}
	if kind != BlockScope {
		s.self = &Variable{name: "self", storage: SelfStorage, scope: s}
	}
	return s
}

// NewBlockScope creates a block scope nested in parent.
//
// This is exported for the desugaring layer, which introduces block scopes
// that have no corresponding real node.
func NewBlockScope(parent *Scope) *Scope {
	return newScope(BlockScope, parent, nil)
}

// Kind returns this scope's kind.
func (s *Scope) Kind() ScopeKind { return s.kind }

// Parent returns the enclosing scope, or nil for the top-level scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Node returns the node that introduced this scope, or nil.
func (s *Scope) Node() Node { return s.node }

// IsSelfScope reports whether this scope binds its own self.
func (s *Scope) IsSelfScope() bool { return s.self != nil }

// Self returns the self variable of the nearest enclosing self scope.
func (s *Scope) Self() *Variable {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.self != nil {
			return sc.self
		}
	}
	return nil
}

// SelfScope returns the nearest enclosing self scope, including s itself.
func (s *Scope) SelfScope() *Scope {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.self != nil {
			return sc
		}
	}
	return nil
}

// Variables returns the variables declared directly in this scope, in
// declaration order.
func (s *Scope) Variables() []*Variable { return s.vars }

// Lookup resolves name in this scope.
//
// Block scopes capture their environment, so lookup continues outward
// through them; it stops at the first method, class, or top-level scope,
// which do not see enclosing locals.
func (s *Scope) Lookup(name string) *Variable {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.byName[name]; ok {
			return v
		}
		if sc.kind != BlockScope {
			break
		}
	}
	return nil
}

// Bind declares a synthetic variable directly in this scope.
//
// This is exported for the desugaring layer; the binding pass uses
// declare.
func (s *Scope) Bind(v *Variable) {
	if !v.synthetic {
		panic("ast: Bind requires a synthetic variable")
	}
	s.vars = append(s.vars, v)
	s.byName[v.name] = v
}

func (s *Scope) declare(name string, storage Storage, decl Node) *Variable {
	if v, ok := s.byName[name]; ok {
		return v
	}
	v := &Variable{name: name, storage: storage, scope: s, decl: decl}
	s.vars = append(s.vars, v)
	s.byName[name] = v
	return v
}
