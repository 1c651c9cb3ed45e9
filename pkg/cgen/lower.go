// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cgen

import (
	"fmt"
	"strings"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen/code"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
)

// Lower translates a single instruction into an ordered sequence of target
// statements, along with an expression denoting the value computed by the
// instruction (or code.None if it computes no value).  The parallel flag
// indicates whether the enclosing routine is the parallel variant of a
// template, which determines whether writes to output signals must notify
// waiting readers.  Lowering is a pure function of its arguments.  Malformed
// instructions cause a panic carrying an *InvariantError.
func Lower(insn bucket.Instruction, producer *circuit.Producer, parallel bool) ([]code.Stmt, code.Expr) {
	var l = lowering{producer, parallel}
	//
	return l.lower(insn)
}

// LowerAll translates a sequence of instructions, concatenating their
// statements.  Values computed by the instructions are discarded.
func LowerAll(insns []bucket.Instruction, producer *circuit.Producer, parallel bool) []code.Stmt {
	var l = lowering{producer, parallel}
	//
	return l.lowerAll(insns)
}

// lowering holds the context threaded through a recursive lowering.
type lowering struct {
	producer *circuit.Producer
	parallel bool
}

func (l *lowering) lower(insn bucket.Instruction) ([]code.Stmt, code.Expr) {
	switch b := insn.(type) {
	case *bucket.Value:
		return l.lowerValue(b)
	case *bucket.Load:
		return l.lowerLoad(b)
	case *bucket.Store:
		return l.lowerStore(b), code.None
	case *bucket.Branch:
		return l.lowerBranch(b), code.None
	case *bucket.Loop:
		return l.lowerLoop(b), code.None
	case *bucket.Call:
		return l.lowerCall(b)
	case *bucket.CreateComponent:
		return l.lowerCreateComponent(b), code.None
	case *bucket.Assert:
		return l.lowerAssert(b), code.None
	case *bucket.Return:
		return l.lowerReturn(b), code.None
	case *bucket.Log:
		return l.lowerLog(b), code.None
	case nil:
		invariant(nil, "missing instruction")
	default:
		invariant(insn, "unknown instruction %T", insn)
	}
	// unreachable
	return nil, code.None
}

func (l *lowering) lowerAll(insns []bucket.Instruction) []code.Stmt {
	var stmts []code.Stmt
	//
	for _, insn := range insns {
		s, _ := l.lower(insn)
		stmts = append(stmts, s...)
	}
	//
	return stmts
}

// lowerValueOf lowers an instruction which must produce a value.
func (l *lowering) lowerValueOf(insn bucket.Instruction) ([]code.Stmt, code.Expr) {
	stmts, value := l.lower(insn)
	//
	if value.IsNone() {
		invariant(insn, "instruction produces no value")
	}
	//
	return stmts, value
}

func (l *lowering) lowerValue(b *bucket.Value) ([]code.Stmt, code.Expr) {
	switch b.Kind {
	case bucket.U32:
		return nil, code.Int(b.Value)
	case bucket.BIGINT:
		if b.Value >= uint(len(l.producer.FieldConstants)) {
			invariant(b, "unknown field constant %d", b.Value)
		}
		//
		return nil, code.Addr(code.Index(CIRCUIT_CONSTANTS, code.Int(b.Value)))
	default:
		invariant(b, "unknown value kind %d", b.Kind)
	}
	// unreachable
	return nil, code.None
}

func (l *lowering) lowerBranch(b *bucket.Branch) []code.Stmt {
	stmts, cond := l.lowerValueOf(b.Cond)
	//
	return append(stmts, &code.If{
		Cond: code.Call(FR_IS_TRUE, cond),
		Then: l.lowerAll(b.Then),
		Else: l.lowerAll(b.Else),
	})
}

// lowerLoop re-emits the statements computing the condition at the end of the
// body, since the condition may read state modified by the body.
func (l *lowering) lowerLoop(b *bucket.Loop) []code.Stmt {
	var (
		condStmts, cond = l.lowerValueOf(b.Cond)
		body            = l.lowerAll(b.Body)
		stmts           = make([]code.Stmt, 0, len(condStmts)+1)
	)
	// Condition again, so it is re-evaluated on each iteration.
	body = append(body, condStmts...)
	stmts = append(stmts, condStmts...)
	//
	return append(stmts, &code.While{Cond: code.Call(FR_IS_TRUE, cond), Body: body})
}

func (l *lowering) lowerAssert(b *bucket.Assert) []code.Stmt {
	var (
		stmts, cond = l.lowerValueOf(b.Cond)
		isTrue      = code.Call(FR_IS_TRUE, cond)
	)
	//
	return append(stmts,
		&code.If{Cond: code.Not(isTrue), Then: code.Stmts(failedAssertMessage(b.Line))},
		&code.Line{Expr: code.Call("assert", isTrue)})
}

// failedAssertMessage prints the source line and the trace of components
// leading to a failed assertion.
func failedAssertMessage(line uint) code.Stmt {
	return &code.Line{Expr: code.Expr(fmt.Sprintf(
		"std::cout << \"Failed assert in template/function \" << %s << \" line %d. \" << \"Followed trace of components: \" << %s << std::endl",
		MY_TEMPLATE_NAME, line, code.Call(code.Arrow(CTX, "getTrace"), MY_ID)))}
}

func (l *lowering) lowerReturn(b *bucket.Return) []code.Stmt {
	var stmts, value = l.lowerValueOf(b.Value)
	//
	stmts = append(code.Stmts(&code.Comment{Text: "return bucket"}), stmts...)
	//
	if b.Size > 1 {
		stmts = append(stmts, &code.Line{Expr: code.Call(FR_COPYN, DESTINATION, value, DESTINATION_SIZE)})
	} else {
		stmts = append(stmts, &code.Line{Expr: code.Call(FR_COPY, DESTINATION, value)})
	}
	//
	return append(stmts, &code.Return{})
}

// lowerLog prints each argument in turn, separated by spaces and terminated by
// a newline.
func (l *lowering) lowerLog(b *bucket.Log) []code.Stmt {
	var stmts []code.Stmt
	//
	for i, arg := range b.Args {
		switch a := arg.(type) {
		case *bucket.LogExpr:
			argStmts, value := l.lowerValueOf(a.Expr)
			stmts = append(stmts, argStmts...)
			stmts = append(stmts, &code.Block{Body: code.Stmts(
				&code.Decl{Type: "char*", Name: "temp", Init: code.Call(FR_ELEMENT_2_STR, value)},
				&code.Line{Expr: code.Call("printf", code.Str("%s"), "temp")},
				&code.Line{Expr: "delete [] temp"},
			)})
		case *bucket.LogString:
			if a.Id >= uint(len(l.producer.StringTable)) {
				invariant(b, "unknown string %d", a.Id)
			}
			//
			stmts = append(stmts, printf(l.producer.StringTable[a.Id]))
		default:
			invariant(b, "unknown log argument %T", arg)
		}
		//
		if i+1 != len(b.Args) {
			stmts = append(stmts, printf(" "))
		}
	}
	//
	return append(stmts, printf("\n"))
}

func printf(text string) code.Stmt {
	return &code.Line{Expr: code.Call("printf", code.Str(strings.ReplaceAll(text, "%", "%%")))}
}
