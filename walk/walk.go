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

// Package walk traverses the desugared view of a file.
//
// The walkers here see the tree the way control-flow construction does: a
// real node with a desugared form is transparently replaced by that form,
// and real nodes hidden from control flow are never visited. Callers that
// want the surface tree instead should range over [ast.Node] children
// directly.
package walk

import "github.com/rubyflow/rubyflow/synth"

// File walks the desugared view of the engine's whole file in preorder.
//
// If visit returns false, the subtree below the visited node is skipped.
func File(e *synth.Engine, visit func(synth.AnyNode) bool) {
	Nodes(e, synth.RealNode(e.File().Root()), visit)
}

// Nodes walks the desugared view of the subtree rooted at n in preorder.
//
// If visit returns false, the subtree below the visited node is skipped.
func Nodes(e *synth.Engine, n synth.AnyNode, visit func(synth.AnyNode) bool) {
	NodesEnterAndExit(e, n, visit, nil)
}

// NodesEnterAndExit walks the desugared view of the subtree rooted at n,
// calling enter before a node's children and exit after them.
//
// If enter returns false, the node's children and its exit call are both
// skipped. Either callback may be nil.
func NodesEnterAndExit(e *synth.Engine, n synth.AnyNode, enter func(synth.AnyNode) bool, exit func(synth.AnyNode)) {
	if n.IsZero() {
		return
	}
	if r := n.Real(); r != nil {
		if e.ExcludedFromControlFlow(r) {
			return
		}
		if form, ok := e.DesugaredForm(r); ok {
			NodesEnterAndExit(e, form, enter, exit)
			return
		}
	}

	if enter != nil && !enter(n) {
		return
	}
	for _, c := range e.Children(n) {
		NodesEnterAndExit(e, c, enter, exit)
	}
	if exit != nil {
		exit(n)
	}
}
