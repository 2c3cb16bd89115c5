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
	"github.com/rubyflow/rubyflow/report"
	"github.com/rubyflow/rubyflow/synth"
)

// expandFunc adapts a closure into a named rule.
type expandFunc struct {
	name string
	fn   func(*synth.Context, ast.Node) *synth.Expansion
}

func (r expandFunc) Name() string { return r.name }

func (r expandFunc) Expand(cx *synth.Context, n ast.Node) *synth.Expansion {
	return r.fn(cx, n)
}

// onLiterals runs template against every integer literal.
func onLiterals(name string, template func(cx *synth.Context, n ast.Node) *synth.Expansion) synth.Rule {
	return expandFunc{name: name, fn: func(cx *synth.Context, n ast.Node) *synth.Expansion {
		if _, ok := n.(*ast.IntLit); !ok {
			return nil
		}
		return template(cx, n)
	}}
}

func validate(t *testing.T, rules ...synth.Rule) *report.Report {
	t.Helper()
	f := asttest.File(t, `
tree:
  stmts:
    - {int: 1}
`)
	r, err := synth.Validate(context.Background(), synth.NewEngine(f, rules...))
	require.NoError(t, err)
	return r
}

func countTag(r *report.Report, tag report.Tag) int {
	var n int
	for _, d := range r.Diagnostics() {
		if d.Is(tag) {
			n++
		}
	}
	return n
}

func TestValidateConflict(t *testing.T) {
	t.Parallel()

	replace := func(*synth.Context, ast.Node) *synth.Expansion {
		return &synth.Expansion{Slots: []synth.Slot{
			{Index: synth.DesugaredRoot, Child: synth.SynthChild(synth.StmtSequenceKind())},
		}}
	}
	r := validate(t, onLiterals("first", replace), onLiterals("second", replace))

	require.Equal(t, 1, countTag(r, synth.TagConflictingChildren))
	assert.Contains(t, r.Diagnostics()[0].Message(), `"first"`)
	assert.Contains(t, r.Diagnostics()[0].Message(), `"second"`)
}

func TestValidateDanglingChild(t *testing.T) {
	t.Parallel()

	foreign := asttest.File(t, `
tree:
  stmts:
    - {int: 9}
`).Root().Stmts()[0]

	r := validate(t, onLiterals("dangler", func(_ *synth.Context, _ ast.Node) *synth.Expansion {
		return &synth.Expansion{Slots: []synth.Slot{
			{Index: synth.DesugaredRoot, Child: synth.SynthChild(synth.StmtSequenceKind(),
				synth.RealChildRef(nil),
				synth.RealChildRef(foreign),
			)},
		}}
	}))

	assert.Equal(t, 2, countTag(r, synth.TagDanglingChild))
}

func TestValidateUndemandedKinds(t *testing.T) {
	t.Parallel()

	r := validate(t, onLiterals("undemanding", func(_ *synth.Context, n ast.Node) *synth.Expansion {
		return &synth.Expansion{Slots: []synth.Slot{
			{Index: synth.DesugaredRoot, Child: synth.SynthChild(
				synth.MethodCallKind("frob", false, 1),
				synth.SynthChild(synth.ConstRefKind("::Frob")),
			)},
		}}
	}))

	assert.Equal(t, 2, countTag(r, synth.TagUndemandedKind))
}

// demandingRule demands frob/2 but synthesizes it with a single child.
type demandingRule struct{ synth.Rule }

func (demandingRule) DemandCalls(_ *synth.Context, demand func(string, bool, int)) {
	demand("frob", false, 2)
}

func TestValidateArityMismatch(t *testing.T) {
	t.Parallel()

	r := validate(t, demandingRule{onLiterals("lopsided", func(_ *synth.Context, n ast.Node) *synth.Expansion {
		return &synth.Expansion{Slots: []synth.Slot{
			{Index: synth.DesugaredRoot, Child: synth.SynthChild(
				synth.MethodCallKind("frob", false, 2),
				synth.RealChildRef(n),
			)},
		}}
	})})

	assert.Equal(t, 1, countTag(r, synth.TagArityMismatch))
	assert.Zero(t, countTag(r, synth.TagUndemandedKind))
}

func TestValidateIntOutOfRange(t *testing.T) {
	t.Parallel()

	r := validate(t, onLiterals("huge", func(*synth.Context, ast.Node) *synth.Expansion {
		return &synth.Expansion{Slots: []synth.Slot{
			{Index: synth.DesugaredRoot, Child: synth.SynthChild(synth.IntLitKind(1000))},
		}}
	}))

	assert.Equal(t, 1, countTag(r, synth.TagIntOutOfRange))
}

func TestValidateUnresolvedScope(t *testing.T) {
	t.Parallel()

	r := validate(t, onLiterals("scopeless", func(*synth.Context, ast.Node) *synth.Expansion {
		return &synth.Expansion{Slots: []synth.Slot{
			{Index: synth.DesugaredRoot, Child: synth.SynthChild(synth.StmtSequenceKind()).Declaring(0)},
		}}
	}))

	assert.Equal(t, 1, countTag(r, synth.TagUnresolvedScope))
}

func TestValidateBadSlot(t *testing.T) {
	t.Parallel()

	// An integer literal has no child slots at all.
	r := validate(t, onLiterals("misplaced", func(*synth.Context, ast.Node) *synth.Expansion {
		return &synth.Expansion{Slots: []synth.Slot{
			{Index: 5, Child: synth.SynthChild(synth.StmtSequenceKind())},
		}}
	}))

	assert.Equal(t, 1, countTag(r, synth.TagBadSlot))
}

func TestValidateRulePanic(t *testing.T) {
	t.Parallel()

	r := validate(t, onLiterals("explosive", func(*synth.Context, ast.Node) *synth.Expansion {
		panic("boom")
	}))

	require.Equal(t, 1, r.Count(report.ICE))
	d := r.Diagnostics()[0]
	assert.True(t, d.Is(synth.TagRulePanic))
	assert.Contains(t, d.Message(), "boom")
	assert.Contains(t, d.Message(), `"explosive"`)
}
