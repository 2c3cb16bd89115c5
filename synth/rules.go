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

// DefaultRules returns the production desugaring rule set.
//
// The set is fixed: extending it means editing this function, not
// registering rules at runtime.
func DefaultRules() []Rule {
	return []Rule{
		implicitSelf{},
		setterAssign{},
		opAssignVariable{},
		opAssignCall{},
		destructuredAssign{},
		arrayLiteral{},
		forLoop{},
	}
}

// refVariable returns the variable read or written by a variable
// reference node, or nil if n is not one.
func refVariable(n ast.Node) *ast.Variable {
	switch n := n.(type) {
	case *ast.Ident:
		return n.Variable()
	case *ast.IVarRef:
		return n.Variable()
	case *ast.CVarRef:
		return n.Variable()
	case *ast.GVarRef:
		return n.Variable()
	case *ast.SelfRef:
		return n.Variable()
	}
	return nil
}

// receiverChild fills a synthesized call's receiver slot: the call's real
// receiver when it has one, and a synthesized self access otherwise.
func receiverChild(cx *Context, call *ast.Call) Child {
	if recv := call.Receiver(); recv != nil {
		return RealChildRef(recv)
	}
	return SynthChild(SelfKind(cx.File().ScopeOf(call).Self()))
}

// assignExpr synthesizes `target = value`.
func assignExpr(target, value Child) Child {
	return SynthChild(OperationKind(ast.AssignOp), target, value)
}

// implicitSelf injects the absent receiver of a receiverless call: the
// call's first child becomes a synthesized self access bound to the self
// variable of its innermost self scope.
//
// Only a syntactically absent receiver qualifies. Qualified references
// (scope-resolution-prefixed constants) are not calls and never get one.
type implicitSelf struct{}

func (implicitSelf) Name() string { return "implicit-self" }

func (implicitSelf) Expand(cx *Context, n ast.Node) *Expansion {
	call, ok := n.(*ast.Call)
	if !ok || call.Receiver() != nil {
		return nil
	}
	sc := cx.File().ScopeOf(call)
	if sc == nil {
		return nil
	}
	return &Expansion{
		Slots: []Slot{{Index: 0, Child: SynthChild(SelfKind(sc.Self()))}},
	}
}

// setterAssign desugars an assignment whose target is a call — an
// attribute assignment `recv.attr = v` or an element assignment
// `recv[i] = v` — into
//
//	recv.attr=(tmp = v); tmp
//
// so that the whole expression's value is v, not the setter's return
// value. The original target call never executes; only the synthesized
// setter call does.
type setterAssign struct{}

func (setterAssign) Name() string { return "setter-assign" }

func (setterAssign) Expand(cx *Context, n ast.Node) *Expansion {
	assign, ok := n.(*ast.Assign)
	if !ok {
		return nil
	}
	lhs, ok := assign.Lhs().(*ast.Call)
	if !ok {
		return nil
	}

	tmp := cx.Variable(n, 0)
	children := make([]Child, 0, len(lhs.Args())+2)
	children = append(children, receiverChild(cx, lhs))
	for _, arg := range lhs.Args() {
		children = append(children, RealChildRef(arg))
	}
	children = append(children, assignExpr(
		SynthChild(LocalVarAccessKind(tmp)),
		RealChildRef(assign.Rhs()),
	))

	seq := SynthChild(StmtSequenceKind(),
		SynthChild(MethodCallKind(lhs.Name()+"=", true, len(children)), children...),
		SynthChild(LocalVarAccessKind(tmp)).At(assign.Rhs().Span()),
	).Scoped().Declaring(0)

	return &Expansion{
		Slots:   []Slot{{Index: DesugaredRoot, Child: seq}},
		Exclude: []ast.Node{lhs},
	}
}

func (setterAssign) DemandCalls(cx *Context, demand func(name string, setter bool, arity int)) {
	eachNode(cx.File().Root(), func(n ast.Node) {
		assign, ok := n.(*ast.Assign)
		if !ok {
			return
		}
		if lhs, ok := assign.Lhs().(*ast.Call); ok {
			demand(lhs.Name()+"=", true, len(lhs.Args())+2)
		}
	})
}

// opAssignVariable desugars a compound assignment with a variable target,
// `x ⊕= y`, into `x = x ⊕ y`. Both synthesized accesses reuse x's own
// storage kind; no temporary is needed.
type opAssignVariable struct{}

func (opAssignVariable) Name() string { return "op-assign-variable" }

func (opAssignVariable) Expand(cx *Context, n ast.Node) *Expansion {
	oa, ok := n.(*ast.OpAssign)
	if !ok {
		return nil
	}
	v := refVariable(oa.Lhs())
	if v == nil {
		return nil
	}

	access := VarAccessKind(v)
	root := assignExpr(
		SynthChild(access),
		SynthChild(OperationKind(oa.Op()),
			SynthChild(access),
			RealChildRef(oa.Rhs())),
	)
	return &Expansion{Slots: []Slot{{Index: DesugaredRoot, Child: root}}}
}

// opAssignCall desugars a compound assignment with a call target,
// `recv[i] ⊕= y`, into
//
//	r = recv; a = i; old = r.[](a) ⊕ y; r.[]=(a, old); old
//
// capturing the receiver and every index argument exactly once, in
// left-to-right order.
type opAssignCall struct{}

func (opAssignCall) Name() string { return "op-assign-call" }

func (opAssignCall) Expand(cx *Context, n ast.Node) *Expansion {
	oa, ok := n.(*ast.OpAssign)
	if !ok {
		return nil
	}
	lhs, ok := oa.Lhs().(*ast.Call)
	if !ok {
		return nil
	}

	args := lhs.Args()
	k := len(args)
	recvTmp := cx.Variable(n, 0)
	argTmp := func(i int) *ast.Variable { return cx.Variable(n, 1+i) }
	old := cx.Variable(n, k+1)

	stmts := make([]Child, 0, k+4)
	declared := make([]int, 0, k+2)
	declared = append(declared, 0)

	stmts = append(stmts, assignExpr(
		SynthChild(LocalVarAccessKind(recvTmp)),
		receiverChild(cx, lhs),
	))
	for i, arg := range args {
		declared = append(declared, 1+i)
		stmts = append(stmts, assignExpr(
			SynthChild(LocalVarAccessKind(argTmp(i))),
			RealChildRef(arg),
		).At(arg.Span()))
	}
	declared = append(declared, k+1)

	getter := make([]Child, 0, k+1)
	getter = append(getter, SynthChild(LocalVarAccessKind(recvTmp)))
	for i := range args {
		getter = append(getter, SynthChild(LocalVarAccessKind(argTmp(i))))
	}
	stmts = append(stmts, assignExpr(
		SynthChild(LocalVarAccessKind(old)),
		SynthChild(OperationKind(oa.Op()),
			SynthChild(MethodCallKind(lhs.Name(), false, k+1), getter...),
			RealChildRef(oa.Rhs())),
	))

	setter := make([]Child, 0, k+2)
	setter = append(setter, SynthChild(LocalVarAccessKind(recvTmp)))
	for i := range args {
		setter = append(setter, SynthChild(LocalVarAccessKind(argTmp(i))))
	}
	setter = append(setter, SynthChild(LocalVarAccessKind(old)))
	stmts = append(stmts,
		SynthChild(MethodCallKind(lhs.Name()+"=", true, k+2), setter...),
		SynthChild(LocalVarAccessKind(old)),
	)

	seq := SynthChild(StmtSequenceKind(), stmts...).Scoped().Declaring(declared...)
	return &Expansion{
		Slots:   []Slot{{Index: DesugaredRoot, Child: seq}},
		Exclude: []ast.Node{lhs},
	}
}

func (opAssignCall) DemandCalls(cx *Context, demand func(name string, setter bool, arity int)) {
	eachNode(cx.File().Root(), func(n ast.Node) {
		oa, ok := n.(*ast.OpAssign)
		if !ok {
			return
		}
		if lhs, ok := oa.Lhs().(*ast.Call); ok {
			demand(lhs.Name(), false, len(lhs.Args())+1)
			demand(lhs.Name()+"=", true, len(lhs.Args())+2)
		}
	})
}

// destructuredAssign desugars a tuple destructuring assignment,
// `e0, *er, ek = w`, into a splat capture of the right-hand side followed
// by one element assignment per pattern element:
//
//	*tmp = w; e0 = tmp[0]; er = tmp[r..r-k]; ek = tmp[k-1-k]
//
// Elements before the rest index read positive indices, the rest element
// reads an inclusive range computed from its position and the element
// count, and elements after it read negative indices counted from the
// end.
type destructuredAssign struct{}

func (destructuredAssign) Name() string { return "destructured-assign" }

func (destructuredAssign) Expand(cx *Context, n ast.Node) *Expansion {
	assign, ok := n.(*ast.Assign)
	if !ok {
		return nil
	}
	lhs, ok := assign.Lhs().(*ast.TuplePattern)
	if !ok {
		return nil
	}

	tmp := cx.Variable(n, 0)
	access := func() Child { return SynthChild(LocalVarAccessKind(tmp)) }

	stmts := make([]Child, 0, len(lhs.Elems())+1)
	stmts = append(stmts, assignExpr(
		SynthChild(SplatKind(), access()),
		RealChildRef(assign.Rhs()),
	))
	stmts = tupleElementAssigns(stmts, lhs, access)

	seq := SynthChild(StmtSequenceKind(), stmts...).Scoped().Declaring(0)
	return &Expansion{Slots: []Slot{{Index: DesugaredRoot, Child: seq}}}
}

// tupleElementAssigns appends one `target = tmp[index]` statement per
// element of pattern, reading the captured sequence through access.
// Elements before the rest index read their own position, the rest
// element reads the inclusive range r..r-k, and elements after it read
// negative indices counted from the end.
func tupleElementAssigns(stmts []Child, pattern *ast.TuplePattern, access func() Child) []Child {
	elems := pattern.Elems()
	k := len(elems)
	r := pattern.RestIndex()
	for j, elem := range elems {
		var target, index Child
		switch {
		case j == r:
			target = RealChildRef(elem.(*ast.SplatArg).Pattern())
			index = SynthChild(RangeLitKind(true),
				SynthChild(IntLitKind(r)),
				SynthChild(IntLitKind(r-k)))
		case r >= 0 && j > r:
			target = RealChildRef(elem)
			index = SynthChild(IntLitKind(j - k))
		default:
			target = RealChildRef(elem)
			index = SynthChild(IntLitKind(j))
		}
		stmts = append(stmts, assignExpr(
			target,
			SynthChild(MethodCallKind("[]", false, 2), access(), index),
		).At(elem.Span()))
	}
	return stmts
}

func (destructuredAssign) DemandCalls(cx *Context, demand func(name string, setter bool, arity int)) {
	eachNode(cx.File().Root(), func(n ast.Node) {
		assign, ok := n.(*ast.Assign)
		if !ok {
			return
		}
		if _, ok := assign.Lhs().(*ast.TuplePattern); ok {
			demand("[]", false, 2)
		}
	})
}

// arrayLiteral desugars `[a, b, c]` into the constructor call
// `Array.[](a, b, c)`, so that control-flow and data-flow construction
// treat literal construction like any other call.
type arrayLiteral struct{}

func (arrayLiteral) Name() string { return "array-literal" }

func (arrayLiteral) Expand(_ *Context, n ast.Node) *Expansion {
	lit, ok := n.(*ast.ArrayLit)
	if !ok {
		return nil
	}

	children := make([]Child, 0, len(lit.Elems())+1)
	children = append(children, SynthChild(ConstRefKind("::Array")))
	for _, elem := range lit.Elems() {
		children = append(children, RealChildRef(elem))
	}
	root := SynthChild(MethodCallKind("[]", false, len(children)), children...)
	return &Expansion{Slots: []Slot{{Index: DesugaredRoot, Child: root}}}
}

func (arrayLiteral) DemandCalls(cx *Context, demand func(name string, setter bool, arity int)) {
	eachNode(cx.File().Root(), func(n ast.Node) {
		if lit, ok := n.(*ast.ArrayLit); ok {
			demand("[]", false, len(lit.Elems())+1)
		}
	})
}

func (arrayLiteral) DemandConstants(cx *Context, demand func(qualified string)) {
	eachNode(cx.File().Root(), func(n ast.Node) {
		if _, ok := n.(*ast.ArrayLit); ok {
			demand("::Array")
		}
	})
}

// forLoop desugars `for x in xs; body; end` into
//
//	xs.each { |tmp| x = tmp; body... }
//
// The synthesized block scopes only its own fresh parameter. The loop
// pattern variables are bound in the enclosing scope, so they stay
// visible after the loop; and the body statements are re-referenced, not
// copied, so they keep their own identities.
//
// A tuple pattern destructures the parameter elementwise, with the same
// index arithmetic as a destructured assignment; the real pattern node
// never appears in the desugared view.
type forLoop struct{}

func (forLoop) Name() string { return "for-loop" }

func (forLoop) Expand(cx *Context, n ast.Node) *Expansion {
	loop, ok := n.(*ast.ForExpr)
	if !ok {
		return nil
	}

	param := cx.Variable(n, 0)
	access := func() Child { return SynthChild(LocalVarAccessKind(param)) }

	var stmts []Child
	if tuple, ok := loop.Pattern().(*ast.TuplePattern); ok {
		stmts = tupleElementAssigns(stmts, tuple, access)
	} else {
		stmts = append(stmts, assignExpr(
			RealChildRef(loop.Pattern()),
			access(),
		).At(loop.Pattern().Span()))
	}
	for _, stmt := range loop.Body().Stmts() {
		stmts = append(stmts, RealChildRef(stmt))
	}

	block := SynthChild(BlockKind(),
		SynthChild(SimpleParameterKind()).Declaring(0),
		SynthChild(StmtSequenceKind(), stmts...).At(loop.Body().Span()),
	).Scoped()

	each := SynthChild(MethodCallKind("each", false, 2),
		RealChildRef(loop.Iterable()),
		block,
	)
	return &Expansion{
		Slots:   []Slot{{Index: DesugaredRoot, Child: each}},
		Exclude: []ast.Node{loop.Body()},
	}
}

func (forLoop) DemandCalls(cx *Context, demand func(name string, setter bool, arity int)) {
	eachNode(cx.File().Root(), func(n ast.Node) {
		loop, ok := n.(*ast.ForExpr)
		if !ok {
			return
		}
		demand("each", false, 2)
		if _, ok := loop.Pattern().(*ast.TuplePattern); ok {
			demand("[]", false, 2)
		}
	})
}
