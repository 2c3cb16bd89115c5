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

package synth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/internal/asttest"
	"github.com/rubyflow/rubyflow/synth"
)

func desugar(t *testing.T, fixture string) (*ast.File, *synth.Engine) {
	t.Helper()
	f := asttest.File(t, fixture)
	return f, synth.NewEngine(f, synth.DefaultRules()...)
}

func TestImplicitSelf(t *testing.T) {
	t.Parallel()

	f, e := desugar(t, `
tree:
  stmts:
    - call: {name: greet, args: [{str: hi}]}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  call greet
		    ~self
		    str "hi"
	`)
}

func TestSetterAssign(t *testing.T) {
	t.Parallel()

	// x.f = 5
	f, e := desugar(t, `
tree:
  stmts:
    - assign:
        lhs: {call: {recv: {ident: x}, name: f}}
        rhs: {int: 5}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  ~seq
		    ~call f=/2 setter
		      ident x
		      ~op =
		        ~local __synth_0
		        int 5
		    ~local __synth_0
	`)
}

func TestSetterAssignImplicitReceiver(t *testing.T) {
	t.Parallel()

	// f = 5 where f is an attribute of the implicit self.
	f, e := desugar(t, `
tree:
  stmts:
    - assign:
        lhs: {call: {name: f}}
        rhs: {int: 5}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  ~seq
		    ~call f=/2 setter
		      ~self
		      ~op =
		        ~local __synth_0
		        int 5
		    ~local __synth_0
	`)
}

func TestElementAssign(t *testing.T) {
	t.Parallel()

	// h[k] = 5
	f, e := desugar(t, `
tree:
  stmts:
    - assign:
        lhs: {call: {recv: {ident: h}, name: "[]", args: [{ident: k}]}}
        rhs: {int: 5}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  ~seq
		    ~call []=/3 setter
		      ident h
		      ident k
		      ~op =
		        ~local __synth_0
		        int 5
		    ~local __synth_0
	`)
}

func TestOpAssignVariable(t *testing.T) {
	t.Parallel()

	// x = 1; x += 2
	f, e := desugar(t, `
tree:
  stmts:
    - assign: {lhs: {ident: x}, rhs: {int: 1}}
    - op_assign: {op: "+", lhs: {ident: x}, rhs: {int: 2}}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  assign
		    ident x
		    int 1
		  ~op =
		    ~local x
		    ~op +
		      ~local x
		      int 2
	`)
}

func TestOpAssignInstanceVariable(t *testing.T) {
	t.Parallel()

	// @c += 1
	f, e := desugar(t, `
tree:
  stmts:
    - op_assign: {op: "+", lhs: {ivar: c}, rhs: {int: 1}}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  ~op =
		    ~ivar @c
		    ~op +
		      ~ivar @c
		      int 1
	`)
}

func TestOpAssignCall(t *testing.T) {
	t.Parallel()

	// a[0] += 1: the receiver and index evaluate exactly once.
	f, e := desugar(t, `
tree:
  stmts:
    - op_assign:
        op: "+"
        lhs: {call: {recv: {ident: a}, name: "[]", args: [{int: 0}]}}
        rhs: {int: 1}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  ~seq
		    ~op =
		      ~local __synth_0
		      ident a
		    ~op =
		      ~local __synth_1
		      int 0
		    ~op =
		      ~local __synth_2
		      ~op +
		        ~call []/2
		          ~local __synth_0
		          ~local __synth_1
		        int 1
		    ~call []=/3 setter
		      ~local __synth_0
		      ~local __synth_1
		      ~local __synth_2
		    ~local __synth_2
	`)
}

func TestDestructuredAssign(t *testing.T) {
	t.Parallel()

	// a, *b, c = xs: a reads tmp[0], b reads tmp[1..-2], c reads tmp[-1].
	f, e := desugar(t, `
tree:
  stmts:
    - assign:
        lhs:
          tuple:
            - {ident: a}
            - {splat: {ident: b}}
            - {ident: c}
        rhs: {ident: xs}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  ~seq
		    ~op =
		      ~splat
		        ~local __synth_0
		      ident xs
		    ~op =
		      ident a
		      ~call []/2
		        ~local __synth_0
		        ~int 0
		    ~op =
		      ident b
		      ~call []/2
		        ~local __synth_0
		        ~range ..
		          ~int 1
		          ~int -2
		    ~op =
		      ident c
		      ~call []/2
		        ~local __synth_0
		        ~int -1
	`)
}

func TestDestructuredAssignNoSplat(t *testing.T) {
	t.Parallel()

	// a, b = xs: plain positive indices.
	f, e := desugar(t, `
tree:
  stmts:
    - assign:
        lhs:
          tuple:
            - {ident: a}
            - {ident: b}
        rhs: {ident: xs}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  ~seq
		    ~op =
		      ~splat
		        ~local __synth_0
		      ident xs
		    ~op =
		      ident a
		      ~call []/2
		        ~local __synth_0
		        ~int 0
		    ~op =
		      ident b
		      ~call []/2
		        ~local __synth_0
		        ~int 1
	`)
}

func TestArrayLiteral(t *testing.T) {
	t.Parallel()

	f, e := desugar(t, `
tree:
  stmts:
    - array: [{int: 1}, {int: 2}]
    - array: []
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  ~call []/3
		    ~const ::Array
		    int 1
		    int 2
		  ~call []/1
		    ~const ::Array
	`)
}

func TestForLoop(t *testing.T) {
	t.Parallel()

	f, e := desugar(t, `
tree:
  stmts:
    - assign: {lhs: {ident: xs}, rhs: {array: []}}
    - for:
        pattern: {ident: x}
        in: {ident: xs}
        body:
          - call: {name: puts, args: [{ident: x}]}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  assign
		    ident xs
		    ~call []/1
		      ~const ::Array
		  ~call each/2
		    ident xs
		    ~block
		      ~param
		      ~seq
		        ~op =
		          ident x
		          ~local __synth_0
		        call puts
		          ~self
		          ident x
	`)

	// The loop variable belongs to the surrounding scope; the synthesized
	// block parameter does not escape.
	assert.NotNil(t, f.TopScope().Lookup("x"))
	assert.Nil(t, f.TopScope().Lookup("__synth_0"))
}

func TestForLoopTuplePattern(t *testing.T) {
	t.Parallel()

	// for a, *b in xs: the pattern destructures the block parameter
	// elementwise, so no tuple pattern survives in the desugared view.
	f, e := desugar(t, `
tree:
  stmts:
    - assign: {lhs: {ident: xs}, rhs: {array: []}}
    - for:
        pattern:
          tuple:
            - {ident: a}
            - {splat: {ident: b}}
        in: {ident: xs}
        body:
          - call: {name: puts, args: [{ident: a}]}
`)
	asttest.RequireDump(t, e, synth.RealNode(f.Root()), `
		stmts
		  assign
		    ident xs
		    ~call []/1
		      ~const ::Array
		  ~call each/2
		    ident xs
		    ~block
		      ~param
		      ~seq
		        ~op =
		          ident a
		          ~call []/2
		            ~local __synth_0
		            ~int 0
		        ~op =
		          ident b
		          ~call []/2
		            ~local __synth_0
		            ~range ..
		              ~int 1
		              ~int -1
		        call puts
		          ~self
		          ident a
	`)

	// Both pattern variables bind in the surrounding scope.
	assert.NotNil(t, f.TopScope().Lookup("a"))
	assert.NotNil(t, f.TopScope().Lookup("b"))
	assert.Nil(t, f.TopScope().Lookup("__synth_0"))

	// The element reads use a demanded kind.
	r, err := synth.Validate(context.Background(), e)
	require.NoError(t, err)
	assert.Empty(t, r.Diagnostics())
}

func TestDefaultRulesValidateClean(t *testing.T) {
	t.Parallel()

	_, e := desugar(t, `
tree:
  stmts:
    - class:
        name: C
        body:
          - def:
              name: bump
              params: [n]
              body:
                - op_assign: {op: "+", lhs: {ivar: count}, rhs: {ident: n}}
                - assign:
                    lhs: {call: {name: total}}
                    rhs: {ivar: count}
    - assign: {lhs: {ident: xs}, rhs: {array: [{int: 1}, {int: 2}]}}
    - assign:
        lhs:
          tuple:
            - {ident: a}
            - {splat: {ident: b}}
        rhs: {ident: xs}
    - for:
        pattern: {ident: x}
        in: {ident: xs}
        body:
          - op_assign:
              op: "+"
              lhs: {call: {recv: {ident: xs}, name: "[]", args: [{int: 0}]}}
              rhs: {ident: x}
`)

	r, err := synth.Validate(context.Background(), e)
	require.NoError(t, err)
	assert.Empty(t, r.Diagnostics())
}
