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

package asttest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/synth"
	"github.com/rubyflow/rubyflow/walk"
)

// Dump renders the desugared view of the subtree rooted at n as an
// indented one-node-per-line listing. Synthetic nodes render as their
// kind, prefixed with "~".
func Dump(e *synth.Engine, n synth.AnyNode) string {
	var sb strings.Builder
	depth := 0
	walk.NodesEnterAndExit(e, n,
		func(n synth.AnyNode) bool {
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(label(n))
			sb.WriteByte('\n')
			depth++
			return true
		},
		func(synth.AnyNode) { depth-- })
	return sb.String()
}

// RequireDump asserts that Dump(e, n) renders exactly as want, showing a
// unified diff on mismatch. want is dedented first, so tests can indent
// golden listings to match their surroundings.
func RequireDump(t *testing.T, e *synth.Engine, n synth.AnyNode, want string) {
	t.Helper()
	got := Dump(e, n)
	want = Dedent(want)
	if got == want {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	require.NoError(t, err)
	t.Fatalf("dump mismatch:\n%s", diff)
}

// Dedent strips one leading newline and the common leading whitespace of
// all non-blank lines.
func Dedent(s string) string {
	s = strings.TrimPrefix(s, "\n")
	lines := strings.Split(s, "\n")

	indent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return s
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

func label(n synth.AnyNode) string {
	if s := n.Synthetic(); s != nil {
		return s.String()
	}
	switch r := n.Real().(type) {
	case *ast.StmtList:
		return "stmts"
	case *ast.Ident:
		return "ident " + r.Name()
	case *ast.IVarRef:
		return "ivar " + r.Name()
	case *ast.CVarRef:
		return "cvar " + r.Name()
	case *ast.GVarRef:
		return "gvar " + r.Name()
	case *ast.SelfRef:
		return "self"
	case *ast.ConstRef:
		return "const " + r.Name()
	case *ast.IntLit:
		return fmt.Sprintf("int %d", r.Value())
	case *ast.StrLit:
		return fmt.Sprintf("str %q", r.Value())
	case *ast.ArrayLit:
		return "array"
	case *ast.RangeLit:
		if r.Inclusive() {
			return "range .."
		}
		return "range ..."
	case *ast.Call:
		return "call " + r.Name()
	case *ast.Assign:
		return "assign"
	case *ast.OpAssign:
		return "op_assign " + r.Op().String()
	case *ast.TuplePattern:
		return "tuple"
	case *ast.SplatArg:
		return "splat"
	case *ast.ForExpr:
		return "for"
	case *ast.BlockExpr:
		return "block"
	case *ast.MethodDef:
		return "def " + r.Name()
	case *ast.ClassDef:
		return "class " + r.Name().Name()
	default:
		return fmt.Sprintf("%T", n.Real())
	}
}
