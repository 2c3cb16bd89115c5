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

import "github.com/rubyflow/rubyflow/source"

type node struct {
	span source.Span
}

// Span implements [source.Spanner].
func (n node) Span() source.Span { return n.span }

func (node) isNode() {}

type leaf struct{ node }

func (leaf) NumChildren() int { return 0 }

func (leaf) Child(int) Node { panic("ast: child index out of range") }

// StmtList is an ordered sequence of statements: a file body, a method
// body, a loop body.
type StmtList struct {
	node
	stmts []Node
}

// NewStmtList creates a new statement list.
func NewStmtList(span source.Span, stmts ...Node) *StmtList {
	return &StmtList{node{span}, stmts}
}

func (s *StmtList) NumChildren() int { return len(s.stmts) }
func (s *StmtList) Child(i int) Node { return s.stmts[i] }

// Stmts returns the statements in this list.
func (s *StmtList) Stmts() []Node { return s.stmts }

// Ident is a local variable reference.
//
// Whether a bare name is a variable reference or a receiverless call is
// decided by the parser; the parser only produces an Ident when the name is
// a local variable in scope (or a declaration target).
type Ident struct {
	leaf
	name     string
	variable *Variable // set when the file is bound
}

// NewIdent creates a new identifier.
func NewIdent(span source.Span, name string) *Ident {
	return &Ident{leaf: leaf{node{span}}, name: name}
}

// Name returns the identifier's name.
func (n *Ident) Name() string { return n.name }

// Variable returns the variable this identifier resolved to, or nil if the
// tree has not been bound or resolution failed.
func (n *Ident) Variable() *Variable { return n.variable }

// IVarRef is an instance variable reference (@x).
type IVarRef struct {
	leaf
	name     string
	variable *Variable
}

// NewIVarRef creates a new instance variable reference.
func NewIVarRef(span source.Span, name string) *IVarRef {
	return &IVarRef{leaf: leaf{node{span}}, name: name}
}

// Name returns the variable's name, without the @ sigil.
func (n *IVarRef) Name() string { return n.name }

// Variable returns the resolved variable; see [Ident.Variable].
func (n *IVarRef) Variable() *Variable { return n.variable }

// CVarRef is a class variable reference (@@x).
type CVarRef struct {
	leaf
	name     string
	variable *Variable
}

// NewCVarRef creates a new class variable reference.
func NewCVarRef(span source.Span, name string) *CVarRef {
	return &CVarRef{leaf: leaf{node{span}}, name: name}
}

// Name returns the variable's name, without the @@ sigil.
func (n *CVarRef) Name() string { return n.name }

// Variable returns the resolved variable; see [Ident.Variable].
func (n *CVarRef) Variable() *Variable { return n.variable }

// GVarRef is a global variable reference ($x).
type GVarRef struct {
	leaf
	name     string
	variable *Variable
}

// NewGVarRef creates a new global variable reference.
func NewGVarRef(span source.Span, name string) *GVarRef {
	return &GVarRef{leaf: leaf{node{span}}, name: name}
}

// Name returns the variable's name, without the $ sigil.
func (n *GVarRef) Name() string { return n.name }

// Variable returns the resolved variable; see [Ident.Variable].
func (n *GVarRef) Variable() *Variable { return n.variable }

// SelfRef is an explicit self expression.
type SelfRef struct {
	leaf
	variable *Variable
}

// NewSelfRef creates a new self expression.
func NewSelfRef(span source.Span) *SelfRef {
	return &SelfRef{leaf: leaf{node{span}}}
}

// Variable returns the self variable of the enclosing self scope.
func (n *SelfRef) Variable() *Variable { return n.variable }

// ConstRef is a constant reference, optionally qualified: Foo, Foo::Bar.
type ConstRef struct {
	node
	qualifier Node // nil or *ConstRef
	name      string
}

// NewConstRef creates a new constant reference. qualifier may be nil.
func NewConstRef(span source.Span, qualifier *ConstRef, name string) *ConstRef {
	c := &ConstRef{node: node{span}, name: name}
	if qualifier != nil {
		c.qualifier = qualifier
	}
	return c
}

func (n *ConstRef) NumChildren() int { return 1 }
func (n *ConstRef) Child(i int) Node {
	if i != 0 {
		panic("ast: child index out of range")
	}
	return n.qualifier
}

// Name returns the rightmost component of the reference.
func (n *ConstRef) Name() string { return n.name }

// Qualified reports whether this reference has a scope-resolution prefix.
func (n *ConstRef) Qualified() bool { return n.qualifier != nil }

// IntLit is an integer literal.
type IntLit struct {
	leaf
	value int64
}

// NewIntLit creates a new integer literal.
func NewIntLit(span source.Span, value int64) *IntLit {
	return &IntLit{leaf: leaf{node{span}}, value: value}
}

// Value returns the literal's value.
func (n *IntLit) Value() int64 { return n.value }

// StrLit is a string literal.
type StrLit struct {
	leaf
	value string
}

// NewStrLit creates a new string literal.
func NewStrLit(span source.Span, value string) *StrLit {
	return &StrLit{leaf: leaf{node{span}}, value: value}
}

// Value returns the literal's value.
func (n *StrLit) Value() string { return n.value }

// ArrayLit is an array literal: [a, b, c].
type ArrayLit struct {
	node
	elems []Node
}

// NewArrayLit creates a new array literal.
func NewArrayLit(span source.Span, elems ...Node) *ArrayLit {
	return &ArrayLit{node{span}, elems}
}

func (n *ArrayLit) NumChildren() int { return len(n.elems) }
func (n *ArrayLit) Child(i int) Node { return n.elems[i] }

// Elems returns the literal's elements.
func (n *ArrayLit) Elems() []Node { return n.elems }

// RangeLit is a range literal: a..b (inclusive) or a...b (exclusive).
type RangeLit struct {
	node
	low, high Node
	inclusive bool
}

// NewRangeLit creates a new range literal.
func NewRangeLit(span source.Span, low, high Node, inclusive bool) *RangeLit {
	return &RangeLit{node{span}, low, high, inclusive}
}

func (n *RangeLit) NumChildren() int { return 2 }
func (n *RangeLit) Child(i int) Node {
	switch i {
	case 0:
		return n.low
	case 1:
		return n.high
	}
	panic("ast: child index out of range")
}

// Low and High return the range endpoints.
func (n *RangeLit) Low() Node  { return n.low }
func (n *RangeLit) High() Node { return n.high }

// Inclusive reports whether the high endpoint is included.
func (n *RangeLit) Inclusive() bool { return n.inclusive }

// Call is a method call.
//
// Child slot 0 is always the receiver, even when it is syntactically
// absent (an implicit-self call); slots 1..len(args) are the arguments, and
// the trailing slot is the block, if any.
type Call struct {
	node
	recv  Node // nil for an implicit receiver
	name  string
	args  []Node
	block *BlockExpr // nil if absent
}

// NewCall creates a new method call. recv may be nil.
func NewCall(span source.Span, recv Node, name string, args ...Node) *Call {
	return &Call{node: node{span}, recv: recv, name: name, args: args}
}

// WithBlock returns a copy of this call carrying the given block.
func (n *Call) WithBlock(block *BlockExpr) *Call {
	c := *n
	c.block = block
	return &c
}

func (n *Call) NumChildren() int {
	num := 1 + len(n.args)
	if n.block != nil {
		num++
	}
	return num
}

func (n *Call) Child(i int) Node {
	switch {
	case i == 0:
		return n.recv
	case i <= len(n.args):
		return n.args[i-1]
	case i == len(n.args)+1 && n.block != nil:
		return n.block
	}
	panic("ast: child index out of range")
}

// Receiver returns the explicit receiver, or nil.
func (n *Call) Receiver() Node { return n.recv }

// Name returns the called method's name.
func (n *Call) Name() string { return n.name }

// Args returns the arguments.
func (n *Call) Args() []Node { return n.args }

// Arg returns argument i.
func (n *Call) Arg(i int) Node { return n.args[i] }

// Block returns the attached block, or nil.
func (n *Call) Block() *BlockExpr { return n.block }

// Assign is a simple assignment: target = value.
//
// The target may be a variable reference, a call (attribute or element
// assignment sugar), or a [TuplePattern] (destructuring).
type Assign struct {
	node
	lhs, rhs Node
}

// NewAssign creates a new assignment.
func NewAssign(span source.Span, lhs, rhs Node) *Assign {
	return &Assign{node{span}, lhs, rhs}
}

func (n *Assign) NumChildren() int { return 2 }
func (n *Assign) Child(i int) Node {
	switch i {
	case 0:
		return n.lhs
	case 1:
		return n.rhs
	}
	panic("ast: child index out of range")
}

// Lhs and Rhs return the assignment's target and value.
func (n *Assign) Lhs() Node { return n.lhs }
func (n *Assign) Rhs() Node { return n.rhs }

// OpAssign is a compound assignment: target ⊕= value.
type OpAssign struct {
	node
	op       Op
	lhs, rhs Node
}

// NewOpAssign creates a new compound assignment.
func NewOpAssign(span source.Span, op Op, lhs, rhs Node) *OpAssign {
	return &OpAssign{node{span}, op, lhs, rhs}
}

func (n *OpAssign) NumChildren() int { return 2 }
func (n *OpAssign) Child(i int) Node {
	switch i {
	case 0:
		return n.lhs
	case 1:
		return n.rhs
	}
	panic("ast: child index out of range")
}

// Op returns the underlying binary operator (never AssignOp).
func (n *OpAssign) Op() Op { return n.op }

// Lhs and Rhs return the assignment's target and value.
func (n *OpAssign) Lhs() Node { return n.lhs }
func (n *OpAssign) Rhs() Node { return n.rhs }

// TuplePattern is the left-hand side of a destructuring assignment:
// a, *b, c. At most one element is a [SplatArg].
type TuplePattern struct {
	node
	elems []Node
}

// NewTuplePattern creates a new tuple pattern.
func NewTuplePattern(span source.Span, elems ...Node) *TuplePattern {
	return &TuplePattern{node{span}, elems}
}

func (n *TuplePattern) NumChildren() int { return len(n.elems) }
func (n *TuplePattern) Child(i int) Node { return n.elems[i] }

// Elems returns the pattern's elements.
func (n *TuplePattern) Elems() []Node { return n.elems }

// RestIndex returns the index of the splat element, or -1 if there is
// none.
func (n *TuplePattern) RestIndex() int {
	for i, e := range n.elems {
		if _, ok := e.(*SplatArg); ok {
			return i
		}
	}
	return -1
}

// SplatArg is a splat: *x, capturing a variable-length portion of a
// sequence.
type SplatArg struct {
	node
	pattern Node
}

// NewSplatArg creates a new splat.
func NewSplatArg(span source.Span, pattern Node) *SplatArg {
	return &SplatArg{node{span}, pattern}
}

func (n *SplatArg) NumChildren() int { return 1 }
func (n *SplatArg) Child(i int) Node {
	if i != 0 {
		panic("ast: child index out of range")
	}
	return n.pattern
}

// Pattern returns the splatted pattern.
func (n *SplatArg) Pattern() Node { return n.pattern }

// ForExpr is a for loop: for pattern in iterable ... end.
//
// Unlike a block, a for loop does not introduce a lexical scope: its
// pattern variables are bound in the enclosing scope and remain visible
// after the loop.
type ForExpr struct {
	node
	pattern Node
	iter    Node
	body    *StmtList
}

// NewForExpr creates a new for loop.
func NewForExpr(span source.Span, pattern, iter Node, body *StmtList) *ForExpr {
	return &ForExpr{node{span}, pattern, iter, body}
}

func (n *ForExpr) NumChildren() int { return 3 }
func (n *ForExpr) Child(i int) Node {
	switch i {
	case 0:
		return n.pattern
	case 1:
		return n.iter
	case 2:
		return n.body
	}
	panic("ast: child index out of range")
}

// Pattern returns the loop pattern (an identifier or tuple pattern).
func (n *ForExpr) Pattern() Node { return n.pattern }

// Iterable returns the iterated expression.
func (n *ForExpr) Iterable() Node { return n.iter }

// Body returns the loop body.
func (n *ForExpr) Body() *StmtList { return n.body }

// BlockExpr is an explicit block: { |params| body }.
type BlockExpr struct {
	node
	params []*Ident
	body   *StmtList
}

// NewBlockExpr creates a new block.
func NewBlockExpr(span source.Span, params []*Ident, body *StmtList) *BlockExpr {
	return &BlockExpr{node{span}, params, body}
}

func (n *BlockExpr) NumChildren() int { return len(n.params) + 1 }
func (n *BlockExpr) Child(i int) Node {
	if i < len(n.params) {
		return n.params[i]
	}
	if i == len(n.params) {
		return n.body
	}
	panic("ast: child index out of range")
}

// Params returns the block's parameters.
func (n *BlockExpr) Params() []*Ident { return n.params }

// Body returns the block's body.
func (n *BlockExpr) Body() *StmtList { return n.body }

// MethodDef is a method definition.
type MethodDef struct {
	node
	name   string
	params []*Ident
	body   *StmtList
}

// NewMethodDef creates a new method definition.
func NewMethodDef(span source.Span, name string, params []*Ident, body *StmtList) *MethodDef {
	return &MethodDef{node{span}, name, params, body}
}

func (n *MethodDef) NumChildren() int { return len(n.params) + 1 }
func (n *MethodDef) Child(i int) Node {
	if i < len(n.params) {
		return n.params[i]
	}
	if i == len(n.params) {
		return n.body
	}
	panic("ast: child index out of range")
}

// Name returns the defined method's name.
func (n *MethodDef) Name() string { return n.name }

// Params returns the method's parameters.
func (n *MethodDef) Params() []*Ident { return n.params }

// Body returns the method's body.
func (n *MethodDef) Body() *StmtList { return n.body }

// ClassDef is a class definition.
type ClassDef struct {
	node
	name *ConstRef
	body *StmtList
}

// NewClassDef creates a new class definition.
func NewClassDef(span source.Span, name *ConstRef, body *StmtList) *ClassDef {
	return &ClassDef{node{span}, name, body}
}

func (n *ClassDef) NumChildren() int { return 2 }
func (n *ClassDef) Child(i int) Node {
	switch i {
	case 0:
		return n.name
	case 1:
		return n.body
	}
	panic("ast: child index out of range")
}

// Name returns the defined class's name.
func (n *ClassDef) Name() *ConstRef { return n.name }

// Body returns the class body.
func (n *ClassDef) Body() *StmtList { return n.body }
