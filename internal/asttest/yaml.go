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

// Package asttest builds bound files for tests.
//
// There is no surface parser in this module, so tests describe trees as
// YAML fixtures instead, either inline or under testdata. The fixture
// grammar mirrors the node constructors one to one; see the nodeSpec
// field tags for the vocabulary.
package asttest

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/source"
)

// Fixture is the top level of a YAML tree fixture.
type Fixture struct {
	// Source is the pretend source text spans point into. When empty, a
	// blank text long enough for the loader's generated offsets is used.
	Source string `yaml:"source"`

	Tree *nodeSpec `yaml:"tree"`
}

// File builds a bound file from an inline YAML fixture.
func File(t *testing.T, fixture string) *ast.File {
	t.Helper()
	return build(t, t.Name()+".rfy", []byte(fixture))
}

// LoadFile builds a bound file from a YAML fixture on disk.
func LoadFile(t *testing.T, path string) *ast.File {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return build(t, path, data)
}

func build(t *testing.T, name string, data []byte) *ast.File {
	t.Helper()

	var fx Fixture
	require.NoError(t, yaml.Unmarshal(data, &fx))
	require.NotNil(t, fx.Tree, "fixture has no tree")

	text := fx.Source
	if text == "" {
		text = strings.Repeat(" ", 512)
	}
	b := &builder{t: t, src: source.NewFile(name, text)}

	root, ok := b.node(fx.Tree).(*ast.StmtList)
	require.True(t, ok, "fixture root must be a statement list")
	return ast.NewFile(b.src, root)
}

// nodeSpec is the YAML form of one node. Exactly one constructor field may
// be set per spec.
type nodeSpec struct {
	// At pins the node's span to [start, end) byte offsets. Without it,
	// leaves get fresh one-byte spans in construction order and interior
	// nodes cover their children.
	At []int `yaml:"at"`

	Stmts    []*nodeSpec   `yaml:"stmts"`
	Ident    string        `yaml:"ident"`
	IVar     string        `yaml:"ivar"`
	CVar     string        `yaml:"cvar"`
	GVar     string        `yaml:"gvar"`
	Self     bool          `yaml:"self"`
	Const    string        `yaml:"const"`
	Int      *int64        `yaml:"int"`
	Str      *string       `yaml:"str"`
	Array    []*nodeSpec   `yaml:"array"`
	Range    *rangeSpec    `yaml:"range"`
	Call     *callSpec     `yaml:"call"`
	Assign   *assignSpec   `yaml:"assign"`
	OpAssign *opAssignSpec `yaml:"op_assign"`
	Tuple    []*nodeSpec   `yaml:"tuple"`
	Splat    *nodeSpec     `yaml:"splat"`
	For      *forSpec      `yaml:"for"`
	Block    *blockSpec    `yaml:"block"`
	Def      *defSpec      `yaml:"def"`
	Class    *classSpec    `yaml:"class"`
}

type rangeSpec struct {
	Low       *nodeSpec `yaml:"low"`
	High      *nodeSpec `yaml:"high"`
	Exclusive bool      `yaml:"exclusive"`
}

type callSpec struct {
	Recv  *nodeSpec   `yaml:"recv"`
	Name  string      `yaml:"name"`
	Args  []*nodeSpec `yaml:"args"`
	Block *blockSpec  `yaml:"block"`
}

type assignSpec struct {
	Lhs *nodeSpec `yaml:"lhs"`
	Rhs *nodeSpec `yaml:"rhs"`
}

type opAssignSpec struct {
	Op  string    `yaml:"op"`
	Lhs *nodeSpec `yaml:"lhs"`
	Rhs *nodeSpec `yaml:"rhs"`
}

type forSpec struct {
	Pattern *nodeSpec   `yaml:"pattern"`
	In      *nodeSpec   `yaml:"in"`
	Body    []*nodeSpec `yaml:"body"`
}

type blockSpec struct {
	Params []string    `yaml:"params"`
	Body   []*nodeSpec `yaml:"body"`
}

type defSpec struct {
	Name   string      `yaml:"name"`
	Params []string    `yaml:"params"`
	Body   []*nodeSpec `yaml:"body"`
}

type classSpec struct {
	Name string      `yaml:"name"`
	Body []*nodeSpec `yaml:"body"`
}

var ops = map[string]ast.Op{
	"=":  ast.AssignOp,
	"+":  ast.AddOp,
	"-":  ast.SubOp,
	"*":  ast.MulOp,
	"/":  ast.DivOp,
	"%":  ast.ModOp,
	"**": ast.PowOp,
	"<<": ast.LShiftOp,
	">>": ast.RShiftOp,
	"&":  ast.BitAndOp,
	"|":  ast.BitOrOp,
	"^":  ast.BitXorOp,
	"&&": ast.AndOp,
	"||": ast.OrOp,
}

type builder struct {
	t    *testing.T
	src  *source.File
	next int
}

func (b *builder) node(s *nodeSpec) ast.Node {
	b.t.Helper()
	switch {
	case s == nil:
		return nil
	case s.Stmts != nil:
		stmts := b.nodes(s.Stmts)
		return ast.NewStmtList(b.span(s, stmts...), stmts...)
	case s.Ident != "":
		return ast.NewIdent(b.span(s), s.Ident)
	case s.IVar != "":
		return ast.NewIVarRef(b.span(s), s.IVar)
	case s.CVar != "":
		return ast.NewCVarRef(b.span(s), s.CVar)
	case s.GVar != "":
		return ast.NewGVarRef(b.span(s), s.GVar)
	case s.Self:
		return ast.NewSelfRef(b.span(s))
	case s.Const != "":
		return b.constRef(s)
	case s.Int != nil:
		return ast.NewIntLit(b.span(s), *s.Int)
	case s.Str != nil:
		return ast.NewStrLit(b.span(s), *s.Str)
	case s.Array != nil:
		elems := b.nodes(s.Array)
		return ast.NewArrayLit(b.span(s, elems...), elems...)
	case s.Range != nil:
		low, high := b.node(s.Range.Low), b.node(s.Range.High)
		return ast.NewRangeLit(b.span(s, low, high), low, high, !s.Range.Exclusive)
	case s.Call != nil:
		return b.call(s)
	case s.Assign != nil:
		lhs, rhs := b.node(s.Assign.Lhs), b.node(s.Assign.Rhs)
		return ast.NewAssign(b.span(s, lhs, rhs), lhs, rhs)
	case s.OpAssign != nil:
		op, ok := ops[s.OpAssign.Op]
		require.True(b.t, ok, "unknown operator %q", s.OpAssign.Op)
		lhs, rhs := b.node(s.OpAssign.Lhs), b.node(s.OpAssign.Rhs)
		return ast.NewOpAssign(b.span(s, lhs, rhs), op, lhs, rhs)
	case s.Tuple != nil:
		elems := b.nodes(s.Tuple)
		return ast.NewTuplePattern(b.span(s, elems...), elems...)
	case s.Splat != nil:
		pattern := b.node(s.Splat)
		return ast.NewSplatArg(b.span(s, pattern), pattern)
	case s.For != nil:
		pattern, iter := b.node(s.For.Pattern), b.node(s.For.In)
		body := b.stmtList(s.For.Body)
		return ast.NewForExpr(b.span(s, pattern, iter, body), pattern, iter, body)
	case s.Block != nil:
		return b.block(s, s.Block)
	case s.Def != nil:
		params := b.params(s.Def.Params)
		body := b.stmtList(s.Def.Body)
		return ast.NewMethodDef(b.span(s, body), s.Def.Name, params, body)
	case s.Class != nil:
		name := ast.NewConstRef(b.leafSpan(), nil, s.Class.Name)
		body := b.stmtList(s.Class.Body)
		return ast.NewClassDef(b.span(s, name, body), name, body)
	}
	b.t.Fatalf("empty node spec")
	return nil
}

func (b *builder) nodes(specs []*nodeSpec) []ast.Node {
	out := make([]ast.Node, len(specs))
	for i, s := range specs {
		out[i] = b.node(s)
	}
	return out
}

func (b *builder) stmtList(specs []*nodeSpec) *ast.StmtList {
	stmts := b.nodes(specs)
	var spanners []source.Spanner
	for _, s := range stmts {
		spanners = append(spanners, s)
	}
	span := b.leafSpan()
	if len(spanners) > 0 {
		span = source.Join(spanners...)
	}
	return ast.NewStmtList(span, stmts...)
}

func (b *builder) params(names []string) []*ast.Ident {
	out := make([]*ast.Ident, len(names))
	for i, name := range names {
		out[i] = ast.NewIdent(b.leafSpan(), name)
	}
	return out
}

func (b *builder) call(s *nodeSpec) ast.Node {
	recv := b.node(s.Call.Recv)
	args := b.nodes(s.Call.Args)
	all := append([]ast.Node{recv}, args...)
	call := ast.NewCall(b.span(s, all...), recv, s.Call.Name, args...)
	if s.Call.Block != nil {
		call = call.WithBlock(b.block(nil, s.Call.Block).(*ast.BlockExpr))
	}
	return call
}

func (b *builder) block(s *nodeSpec, spec *blockSpec) ast.Node {
	params := b.params(spec.Params)
	body := b.stmtList(spec.Body)
	return ast.NewBlockExpr(b.span(s, body), params, body)
}

// constRef builds a possibly qualified constant reference such as "A::B".
// A leading "::" anchors at the root and is dropped; qualification is
// positional either way.
func (b *builder) constRef(s *nodeSpec) ast.Node {
	span := b.span(s)
	parts := strings.Split(strings.TrimPrefix(s.Const, "::"), "::")
	var ref *ast.ConstRef
	for _, part := range parts {
		ref = ast.NewConstRef(span, ref, part)
	}
	return ref
}

// span computes a node's span: pinned by At, covering its non-nil
// children, or a fresh one-byte leaf span.
func (b *builder) span(s *nodeSpec, children ...ast.Node) source.Span {
	if s != nil && len(s.At) == 2 {
		return b.src.Span(s.At[0], s.At[1])
	}
	var spanners []source.Spanner
	for _, c := range children {
		if c != nil {
			spanners = append(spanners, c)
		}
	}
	if len(spanners) > 0 {
		return source.Join(spanners...)
	}
	return b.leafSpan()
}

func (b *builder) leafSpan() source.Span {
	start := b.next
	b.next++
	return b.src.Span(start, start+1)
}
