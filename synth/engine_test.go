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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/source"
)

// loopFile builds `for x in xs; puts(x); end` with xs bound beforehand.
func loopFile(t *testing.T) (*ast.File, *ast.ForExpr) {
	t.Helper()

	src := source.NewFile("test.rfy", "for x in xs\n  puts(x)\nend\n")
	sp := func(start, end int) source.Span { return src.Span(start, end) }

	loop := ast.NewForExpr(sp(0, 25),
		ast.NewIdent(sp(4, 5), "x"),
		ast.NewIdent(sp(9, 11), "xs"),
		ast.NewStmtList(sp(14, 21),
			ast.NewCall(sp(14, 21), nil, "puts", ast.NewIdent(sp(19, 20), "x"))),
	)
	root := ast.NewStmtList(sp(0, 25),
		ast.NewAssign(sp(0, 1), ast.NewIdent(sp(0, 1), "xs"), ast.NewArrayLit(sp(0, 1))),
		loop,
	)
	return ast.NewFile(src, root), loop
}

func TestCanonicalIdentity(t *testing.T) {
	t.Parallel()

	file, loop := loopFile(t)
	e := NewEngine(file, DefaultRules()...)

	form1, ok := e.DesugaredForm(loop)
	require.True(t, ok)
	form2, _ := e.DesugaredForm(loop)
	assert.Same(t, form1.Synthetic(), form2.Synthetic())

	block1 := e.Child(form1, 1)
	block2 := e.Child(form2, 1)
	assert.Same(t, block1.Synthetic(), block2.Synthetic())

	param := e.Child(block1, 0)
	assert.Same(t, param.Synthetic(), e.Child(block2, 0).Synthetic())
	assert.Equal(t, SimpleParameterKindTag, param.Synthetic().Kind().Tag())
}

func TestConcurrentMaterialization(t *testing.T) {
	t.Parallel()

	file, loop := loopFile(t)
	e := NewEngine(file, DefaultRules()...)

	const goroutines = 32
	params := make([]*Node, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			form, _ := e.DesugaredForm(loop)
			block := e.Child(form, 1)
			params[i] = e.Child(block, 0).Synthetic()
		}()
	}
	wg.Wait()

	for i := range goroutines {
		require.NotNil(t, params[i])
		assert.Same(t, params[0], params[i])
	}
}

func TestChildOverlay(t *testing.T) {
	t.Parallel()

	file, loop := loopFile(t)
	e := NewEngine(file, DefaultRules()...)

	call := loop.Body().Stmts()[0].(*ast.Call)
	require.Nil(t, call.Receiver())

	// The receiver slot of a receiverless call is filled synthetically;
	// the argument slot stays real.
	n := RealNode(call)
	assert.Equal(t, 2, e.NumChildren(n))
	recv := e.Child(n, 0)
	require.NotNil(t, recv.Synthetic())
	assert.Equal(t, SelfKindTag, recv.Synthetic().Kind().Tag())
	assert.Same(t, call.Arg(0), e.Child(n, 1).Real())
}

func TestScopeProjection(t *testing.T) {
	t.Parallel()

	file, loop := loopFile(t)
	e := NewEngine(file, DefaultRules()...)

	form, _ := e.DesugaredForm(loop)
	block := e.Child(form, 1)
	param := e.Child(block, 0)
	body := e.Child(block, 1)

	// The block introduces a fresh scope; the param and body live in it,
	// the block and call themselves do not.
	sc := e.ScopeOf(param)
	require.NotNil(t, sc)
	assert.Equal(t, ast.BlockScope, sc.Kind())
	assert.Same(t, sc, e.ScopeOf(body))
	assert.Same(t, file.ScopeOf(loop), e.ScopeOf(block))
	assert.Same(t, file.ScopeOf(loop), e.ScopeOf(form))
	assert.Same(t, file.ScopeOf(loop), sc.Parent())

	declared := e.DeclaredVariables(param)
	require.Len(t, declared, 1)
	v := declared[0]
	assert.True(t, v.IsSynthetic())
	assert.Same(t, v, sc.Lookup(v.Name()))

	// Same anchor and slot means same variable, from any entry point.
	cx := &Context{engine: e}
	assert.Same(t, v, cx.Variable(loop, 0))

	// Real nodes declare nothing synthetically.
	assert.Nil(t, e.DeclaredVariables(RealNode(loop.Pattern())))
}

func TestLocationInheritance(t *testing.T) {
	t.Parallel()

	file, loop := loopFile(t)
	e := NewEngine(file, DefaultRules()...)

	form, _ := e.DesugaredForm(loop)

	// The call has no declared location, so it inherits the loop's span.
	assert.Equal(t, loop.Span(), e.Location(form))

	// The body sequence was pinned to the real body's span.
	block := e.Child(form, 1)
	body := e.Child(block, 1)
	assert.Equal(t, loop.Body().Span(), e.Location(body))

	// The pattern assignment inside it was pinned to the pattern.
	patternAssign := e.Child(body, 0)
	assert.Equal(t, loop.Pattern().Span(), e.Location(patternAssign))

	// Real nodes locate themselves.
	assert.Equal(t, loop.Iterable().Span(), e.Location(e.Child(form, 0)))
}

func TestExclusions(t *testing.T) {
	t.Parallel()

	file, loop := loopFile(t)
	e := NewEngine(file, DefaultRules()...)

	assert.True(t, e.ExcludedFromControlFlow(loop.Body()))
	assert.False(t, e.ExcludedFromControlFlow(loop))
	assert.False(t, e.ExcludedFromControlFlow(loop.Iterable()))
}

func TestSynthChildRefResolvesWithoutMaterializing(t *testing.T) {
	t.Parallel()

	file, loop := loopFile(t)
	e := NewEngine(file, DefaultRules()...)

	form, _ := e.DesugaredForm(loop)
	block := e.Child(form, 1).Synthetic()

	got := e.resolve(form, 7, SynthChildRef(block))
	assert.Same(t, block, got.Synthetic())

	// No node was memoized at the referencing address.
	_, loaded := e.memo.Load(nodeKey{parent: parentKey(form), index: 7, kind: block.Kind()})
	assert.False(t, loaded)
}

type panicRule struct{}

func (panicRule) Name() string { return "panicky" }

func (panicRule) Expand(_ *Context, n ast.Node) *Expansion {
	if _, ok := n.(*ast.IntLit); ok {
		panic("no literals today")
	}
	return nil
}

func TestRulePanicIsContained(t *testing.T) {
	t.Parallel()

	src := source.NewFile("test.rfy", "x = 1\n")
	lit := ast.NewIntLit(src.Span(4, 5), 1)
	root := ast.NewStmtList(src.Span(0, 5),
		ast.NewAssign(src.Span(0, 5), ast.NewIdent(src.Span(0, 1), "x"), lit))
	file := ast.NewFile(src, root)

	e := NewEngine(file, panicRule{})

	require.Len(t, e.panics, 1)
	assert.Equal(t, "panicky", e.panics[0].rule)
	assert.Same(t, lit, e.panics[0].node)

	// The panicking rule contributed no facts; queries still answer.
	_, ok := e.DesugaredForm(lit)
	assert.False(t, ok)
	assert.Empty(t, e.Children(RealNode(lit)))
}
