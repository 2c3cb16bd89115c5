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

package walk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/internal/asttest"
	"github.com/rubyflow/rubyflow/synth"
	"github.com/rubyflow/rubyflow/walk"
)

func loopEngine(t *testing.T) (*ast.File, *ast.ForExpr, *synth.Engine) {
	t.Helper()
	f := asttest.File(t, `
tree:
  stmts:
    - assign: {lhs: {ident: xs}, rhs: {array: []}}
    - for:
        pattern: {ident: x}
        in: {ident: xs}
        body:
          - call: {name: puts, args: [{ident: x}]}
`)
	loop, ok := f.Root().Stmts()[1].(*ast.ForExpr)
	require.True(t, ok)
	return f, loop, synth.NewEngine(f, synth.DefaultRules()...)
}

func TestFileReplacesDesugaredForms(t *testing.T) {
	t.Parallel()

	_, _, e := loopEngine(t)

	var sawEach, sawSelf bool
	walk.File(e, func(n synth.AnyNode) bool {
		switch n.Real().(type) {
		case *ast.ForExpr:
			t.Error("visited a rewritten for loop")
		case *ast.ArrayLit:
			t.Error("visited a rewritten array literal")
		}
		if s := n.Synthetic(); s != nil {
			switch s.Kind().Tag() {
			case synth.MethodCallKindTag:
				sawEach = sawEach || s.Kind().MethodName() == "each"
			case synth.SelfKindTag:
				sawSelf = true
			}
		}
		return true
	})

	assert.True(t, sawEach, "the each call never appeared")
	assert.True(t, sawSelf, "the implicit receiver never appeared")
}

func TestExcludedNodesAreInvisible(t *testing.T) {
	t.Parallel()

	_, loop, e := loopEngine(t)
	require.True(t, e.ExcludedFromControlFlow(loop.Body()))

	var visits int
	walk.Nodes(e, synth.RealNode(loop.Body()), func(synth.AnyNode) bool {
		visits++
		return true
	})
	assert.Zero(t, visits)
}

func TestPrune(t *testing.T) {
	t.Parallel()

	_, loop, e := loopEngine(t)

	var sawParam bool
	var exits int
	walk.NodesEnterAndExit(e, synth.RealNode(loop),
		func(n synth.AnyNode) bool {
			if s := n.Synthetic(); s != nil {
				switch s.Kind().Tag() {
				case synth.BlockKindTag:
					return false
				case synth.SimpleParameterKindTag:
					sawParam = true
				}
			}
			return true
		},
		func(synth.AnyNode) { exits++ })

	assert.False(t, sawParam, "pruning the block should skip its children")

	// Only the each call and its iterable are entered and exited; the
	// pruned block is neither.
	assert.Equal(t, 2, exits)
}

func TestEnterExitPairing(t *testing.T) {
	t.Parallel()

	_, loop, e := loopEngine(t)

	var entered, exited []synth.AnyNode
	walk.NodesEnterAndExit(e, synth.RealNode(loop),
		func(n synth.AnyNode) bool {
			entered = append(entered, n)
			return true
		},
		func(n synth.AnyNode) { exited = append(exited, n) })

	require.Len(t, exited, len(entered))

	// Exit order is child before parent; the root form exits last.
	first := entered[0]
	last := exited[len(exited)-1]
	assert.Equal(t, first, last)
	require.NotNil(t, first.Synthetic())
	assert.Equal(t, synth.MethodCallKindTag, first.Synthetic().Kind().Tag())
}
