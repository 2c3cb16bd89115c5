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
	"fmt"

	"github.com/rubyflow/rubyflow/ast"
)

// KindTag discriminates the closed set of synthesizable node kinds.
type KindTag int8

// The synthesizable node kinds.
const (
	InvalidKind KindTag = iota
	OperationKindTag
	StmtSequenceKindTag
	BlockKindTag
	SimpleParameterKindTag
	SplatKindTag
	IntLitKindTag
	RangeLitKindTag
	MethodCallKindTag
	ConstRefKindTag
	LocalVarAccessKindTag
	InstanceVarAccessKindTag
	ClassVarAccessKindTag
	GlobalVarAccessKindTag
	SelfKindTag
)

// Bounds on the value of a synthesized integer literal.
//
// Synthesized integers only ever encode small structural offsets (tuple
// and array indices), so the range is deliberately narrow; rule-set
// validation rejects kinds outside of it. Widening it is a conscious
// decision, not a default.
const (
	MinSynthInt = -256
	MaxSynthInt = 256
)

// Kind is a value-parameterized tag fully describing what a synthetic node
// represents, independent of its position in the tree.
//
// Kinds are pure values: two requests for the same kind with the same
// parameters are equal, and Kind is comparable, so it can key maps. A Kind
// carries no identity beyond its tag and parameters.
type Kind struct {
	tag KindTag

	op   ast.Op        // OperationKindTag
	num  int           // IntLitKindTag value; MethodCallKindTag arity
	flag bool          // RangeLitKindTag inclusivity; MethodCallKindTag setter
	name string        // MethodCallKindTag method name; ConstRefKindTag qualified name
	v    *ast.Variable // variable access kinds and SelfKindTag
}

// OperationKind returns the kind of a synthesized operator expression,
// including the simple assignment operator [ast.AssignOp].
func OperationKind(op ast.Op) Kind {
	if op == ast.InvalidOp {
		panic("synth: operation kind requires a valid operator")
	}
	return Kind{tag: OperationKindTag, op: op}
}

// StmtSequenceKind returns the kind of a synthesized statement sequence.
func StmtSequenceKind() Kind {
	return Kind{tag: StmtSequenceKindTag}
}

// BlockKind returns the kind of a synthesized block.
func BlockKind() Kind {
	return Kind{tag: BlockKindTag}
}

// SimpleParameterKind returns the kind of a synthesized block parameter.
func SimpleParameterKind() Kind {
	return Kind{tag: SimpleParameterKindTag}
}

// SplatKind returns the kind of a synthesized splat.
func SplatKind() Kind {
	return Kind{tag: SplatKindTag}
}

// IntLitKind returns the kind of a synthesized integer literal.
//
// The value is not range-checked here; rule-set validation reports values
// outside [MinSynthInt, MaxSynthInt].
func IntLitKind(value int) Kind {
	return Kind{tag: IntLitKindTag, num: value}
}

// RangeLitKind returns the kind of a synthesized range literal.
func RangeLitKind(inclusive bool) Kind {
	return Kind{tag: RangeLitKindTag, flag: inclusive}
}

// MethodCallKind returns the kind of a synthesized method call.
//
// The arity counts all of the call's child slots: the receiver, the
// arguments, and the block, if any.
func MethodCallKind(name string, setter bool, arity int) Kind {
	return Kind{tag: MethodCallKindTag, name: name, flag: setter, num: arity}
}

// ConstRefKind returns the kind of a synthesized constant reference with
// the given fully qualified name.
func ConstRefKind(qualified string) Kind {
	return Kind{tag: ConstRefKindTag, name: qualified}
}

// LocalVarAccessKind returns the kind of a synthesized access to v.
func LocalVarAccessKind(v *ast.Variable) Kind {
	return varAccess(LocalVarAccessKindTag, v)
}

// InstanceVarAccessKind returns the kind of a synthesized access to v.
func InstanceVarAccessKind(v *ast.Variable) Kind {
	return varAccess(InstanceVarAccessKindTag, v)
}

// ClassVarAccessKind returns the kind of a synthesized access to v.
func ClassVarAccessKind(v *ast.Variable) Kind {
	return varAccess(ClassVarAccessKindTag, v)
}

// GlobalVarAccessKind returns the kind of a synthesized access to v.
func GlobalVarAccessKind(v *ast.Variable) Kind {
	return varAccess(GlobalVarAccessKindTag, v)
}

// SelfKind returns the kind of a synthesized self reference bound to the
// given self variable.
func SelfKind(v *ast.Variable) Kind {
	return varAccess(SelfKindTag, v)
}

// VarAccessKind returns the access kind matching v's storage class.
func VarAccessKind(v *ast.Variable) Kind {
	if v == nil {
		panic("synth: variable access kind requires a variable")
	}
	switch v.Storage() {
	case ast.LocalStorage:
		return LocalVarAccessKind(v)
	case ast.InstanceStorage:
		return InstanceVarAccessKind(v)
	case ast.ClassStorage:
		return ClassVarAccessKind(v)
	case ast.GlobalStorage:
		return GlobalVarAccessKind(v)
	case ast.SelfStorage:
		return SelfKind(v)
	}
	panic(fmt.Sprintf("synth: unknown storage class %v", v.Storage()))
}

func varAccess(tag KindTag, v *ast.Variable) Kind {
	if v == nil {
		panic("synth: variable access kind requires a variable")
	}
	return Kind{tag: tag, v: v}
}

// Tag returns this kind's tag.
func (k Kind) Tag() KindTag { return k.tag }

// IsZero reports whether this is the zero kind.
func (k Kind) IsZero() bool { return k.tag == InvalidKind }

// Op returns the operator of an operation kind.
func (k Kind) Op() ast.Op { return k.op }

// Value returns the value of an integer literal kind.
func (k Kind) Value() int { return k.num }

// Inclusive returns the inclusivity of a range literal kind.
func (k Kind) Inclusive() bool { return k.flag }

// MethodName returns the method name of a method call kind, or the
// qualified name of a constant reference kind.
func (k Kind) MethodName() string { return k.name }

// Setter returns whether a method call kind is a setter call.
func (k Kind) Setter() bool { return k.tag == MethodCallKindTag && k.flag }

// Arity returns the child count of a method call kind.
func (k Kind) Arity() int { return k.num }

// Variable returns the variable of a variable access or self kind.
func (k Kind) Variable() *ast.Variable { return k.v }

// String implements [fmt.Stringer].
//
// The rendering is stable; tests and diagnostics rely on it.
func (k Kind) String() string {
	switch k.tag {
	case OperationKindTag:
		return fmt.Sprintf("op %v", k.op)
	case StmtSequenceKindTag:
		return "seq"
	case BlockKindTag:
		return "block"
	case SimpleParameterKindTag:
		return "param"
	case SplatKindTag:
		return "splat"
	case IntLitKindTag:
		return fmt.Sprintf("int %d", k.num)
	case RangeLitKindTag:
		if k.flag {
			return "range .."
		}
		return "range ..."
	case MethodCallKindTag:
		if k.flag {
			return fmt.Sprintf("call %s/%d setter", k.name, k.num)
		}
		return fmt.Sprintf("call %s/%d", k.name, k.num)
	case ConstRefKindTag:
		return fmt.Sprintf("const %s", k.name)
	case LocalVarAccessKindTag:
		return fmt.Sprintf("local %s", k.v.Name())
	case InstanceVarAccessKindTag:
		return fmt.Sprintf("ivar %s", k.v.Name())
	case ClassVarAccessKindTag:
		return fmt.Sprintf("cvar %s", k.v.Name())
	case GlobalVarAccessKindTag:
		return fmt.Sprintf("gvar %s", k.v.Name())
	case SelfKindTag:
		return "self"
	default:
		return "<invalid>"
	}
}
