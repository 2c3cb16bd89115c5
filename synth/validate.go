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
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/rubyflow/rubyflow/ast"
	"github.com/rubyflow/rubyflow/report"
)

// Diagnostic tags reported by [Validate].
const (
	// TagRulePanic marks a rule evaluation that panicked. The engine drops
	// the panicking rule's facts for that node and keeps serving queries.
	TagRulePanic report.Tag = "rule-panic"

	// TagConflictingChildren marks two rules asserting different children
	// at the same slot of the same node. The engine keeps the first rule's
	// fact.
	TagConflictingChildren report.Tag = "conflicting-children"

	// TagDanglingChild marks a real child reference to a nil node or to a
	// node outside the bound file.
	TagDanglingChild report.Tag = "dangling-child"

	// TagUndemandedKind marks a synthesized method call or constant
	// reference whose kind no rule demanded up front.
	TagUndemandedKind report.Tag = "undemanded-kind"

	// TagIntOutOfRange marks a synthesized integer literal outside
	// [MinSynthInt, MaxSynthInt].
	TagIntOutOfRange report.Tag = "int-out-of-range"

	// TagUnresolvedScope marks synthetic variable declarations with no
	// enclosing scoped node to bind them to.
	TagUnresolvedScope report.Tag = "unresolved-scope"

	// TagBadSlot marks a child fact at an index the parent cannot have.
	TagBadSlot report.Tag = "bad-slot"

	// TagArityMismatch marks a synthesized method call whose kind's arity
	// disagrees with its declared child count.
	TagArityMismatch report.Tag = "arity-mismatch"
)

// Validate checks every expansion the engine collected at construction
// and reports rule-authoring defects. A clean report means the engine's
// answers are internally consistent; consumers do not need to re-check.
//
// Expansions are validated in parallel, bounded by GOMAXPROCS.
func Validate(ctx context.Context, e *Engine) (*report.Report, error) {
	nodes := make([]ast.Node, 0, len(e.expansions))
	for n := range e.expansions {
		nodes = append(nodes, n)
	}

	workers := int64(runtime.GOMAXPROCS(0))
	sem := semaphore.NewWeighted(workers)
	reports := make([]*report.Report, len(nodes))
	for i, n := range nodes {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func() {
			defer sem.Release(1)
			reports[i] = e.validateNode(n)
		}()
	}
	if err := sem.Acquire(ctx, workers); err != nil {
		return nil, err
	}

	out := new(report.Report)
	for _, p := range e.panics {
		out.ICE(fmt.Sprintf("rule %q panicked: %v", p.rule, p.value),
			TagRulePanic, report.Snippet(p.node))
	}
	for _, r := range reports {
		out.Merge(r)
	}
	out.Sort()
	return out, nil
}

func (e *Engine) validateNode(n ast.Node) (r *report.Report) {
	r = new(report.Report)
	defer func() {
		if p := recover(); p != nil {
			r.ICE(fmt.Sprintf("panic while validating expansion: %v", p),
				TagRulePanic, report.Snippet(n))
		}
	}()

	exp := e.expansions[n]
	for _, c := range exp.conflicts {
		r.Error(fmt.Sprintf("rules %q and %q both fill child %d", c.prior, c.rule, c.index),
			TagConflictingChildren, report.Snippet(n))
	}
	for index, fact := range exp.slots {
		if index != DesugaredRoot && (index < 0 || index >= n.NumChildren()) {
			r.Error(fmt.Sprintf("rule %q fills impossible child %d", fact.rule, index),
				TagBadSlot, report.Snippet(n))
		}
		e.validateChild(r, n, fact.rule, fact.child, false)
	}
	return r
}

// validateChild checks one template subtree. scoped tracks whether some
// ancestor in the template (the child itself included) introduces a block
// scope that declarations can bind to.
func (e *Engine) validateChild(r *report.Report, anchor ast.Node, rule string, c Child, scoped bool) {
	switch {
	case c.IsRef():
		return
	case c.IsReal():
		if c.real == nil {
			r.Error(fmt.Sprintf("rule %q references a nil node", rule),
				TagDanglingChild, report.Snippet(anchor))
		} else if !e.file.Contains(c.real) {
			r.Error(fmt.Sprintf("rule %q references a node outside %s", rule, e.file.Name()),
				TagDanglingChild, report.Snippet(anchor))
		}
		return
	}

	scoped = scoped || c.scoped
	if len(c.declares) > 0 && !scoped {
		r.Error(fmt.Sprintf("rule %q declares variables outside any scoped node", rule),
			TagUnresolvedScope, report.Snippet(anchor))
	}

	switch k := c.kind; k.Tag() {
	case MethodCallKindTag:
		if !e.demandedCall(k.MethodName(), k.Setter(), k.Arity()) {
			r.Error(fmt.Sprintf("rule %q synthesizes undemanded kind %v", rule, k),
				TagUndemandedKind, report.Snippet(anchor))
		}
		if k.Arity() != len(c.children) {
			r.Error(fmt.Sprintf("rule %q synthesizes %v with %d children", rule, k, len(c.children)),
				TagArityMismatch, report.Snippet(anchor))
		}
	case ConstRefKindTag:
		if !e.demandedConst(k.MethodName()) {
			r.Error(fmt.Sprintf("rule %q synthesizes undemanded kind %v", rule, k),
				TagUndemandedKind, report.Snippet(anchor))
		}
	case IntLitKindTag:
		if v := k.Value(); v < MinSynthInt || v > MaxSynthInt {
			r.Error(fmt.Sprintf("rule %q synthesizes out-of-range literal %d", rule, v),
				TagIntOutOfRange, report.Snippet(anchor))
		}
	}

	for _, child := range c.children {
		e.validateChild(r, anchor, rule, child, scoped)
	}
}
