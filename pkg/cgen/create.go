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
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen/code"
)

// lowerCreateComponent creates each component of a (possibly sparse) array of
// subcomponents.  Dense arrays are traversed completely, whilst sparse arrays
// traverse exactly the recorded positions in order.  Components without inputs
// are run straight after creation, since no write can ever trigger them.
func (l *lowering) lowerCreateComponent(b *bucket.CreateComponent) []code.Stmt {
	var (
		stmts, first = l.lowerValueOf(b.SubcmpId)
		body         []code.Stmt
		loop         []code.Stmt
		slot         = code.Add("aux_create", "i")
		status       = code.Bool(b.Parallelism.IsParallel())
		args         = []code.Expr{"csoffset", "aux_cmp_num", CTX, "new_cmp_name", MY_ID}
		nPositions   = uint(len(b.Positions))
	)
	//
	if b.MixedArray && nPositions == 0 {
		invariant(b, "sparse component array without positions")
	} else if !b.MixedArray && b.Parallelism == bucket.DYNAMIC && nPositions != b.NumberOfCmp {
		invariant(b, "expected %d parallel flags, found %d", b.NumberOfCmp, nPositions)
	}
	//
	body = code.Stmts(
		&code.Decl{Type: "uint", Name: "aux_create", Init: first},
		&code.Decl{Type: "int", Name: "aux_cmp_num", Init: code.Add(code.Int(b.ComponentOffset), CTX_INDEX, "1")},
		&code.Decl{Type: "uint", Name: "csoffset", Init: code.Add(MY_SIGNAL_START, code.Int(b.SignalOffset))},
	)
	//
	if b.NumberOfCmp > 1 {
		body = append(body, &code.Decl{Type: "uint", Name: "aux_dimensions", Size: code.Int(uint(len(b.Dimensions))),
			Init: code.Ints(b.Dimensions)})
	}
	//
	if b.Parallelism == bucket.DYNAMIC {
		flags := make([]bool, nPositions)
		//
		for i, p := range b.Positions {
			flags[i] = p.Parallel
		}
		//
		body = append(body, &code.Decl{Type: "bool", Name: "aux_parallel", Size: code.Int(nPositions),
			Init: code.Bools(flags)})
		status = "status_parallel"
	}
	// Determine the loop variable
	var (
		counter = "i"
		bound   = code.Int(b.NumberOfCmp)
	)
	//
	if b.MixedArray {
		indexes := make([]uint, nPositions)
		//
		for i, p := range b.Positions {
			indexes[i] = p.Index
		}
		//
		body = append(body, &code.Decl{Type: "uint", Name: "aux_positions", Size: code.Int(nPositions),
			Init: code.Ints(indexes)})
		counter = "i_aux"
		bound = code.Int(nPositions)
		loop = append(loop, &code.Decl{Type: "uint", Name: "i", Init: code.Index("aux_positions", "i_aux")})
	}
	//
	if b.Parallelism == bucket.DYNAMIC {
		loop = append(loop, &code.Decl{Type: "bool", Name: "status_parallel",
			Init: code.Index("aux_parallel", code.Id(counter))})
	}
	// Name of the component
	var name = code.Str(b.Name)
	//
	if b.NumberOfCmp > 1 {
		position := code.Call(code.Arrow(CTX, GENERATE_POSITION_ARRAY), "aux_dimensions",
			code.Int(uint(len(b.Dimensions))), "i")
		name = code.Add(name, position)
	}
	//
	loop = append(loop, &code.Decl{Type: "std::string", Name: "new_cmp_name", Init: name})
	// Record parallelism of this slot, when not uniform across the whole array.
	if b.Parallelism == bucket.DYNAMIC || b.MixedParallel {
		loop = append(loop, &code.Assign{Lhs: code.Index(MY_SUBCOMPONENTS_PARALLEL, slot), Op: "=", Rhs: status})
	}
	//
	switch b.Parallelism {
	case bucket.DYNAMIC:
		loop = append(loop, &code.If{
			Cond: status,
			Then: code.Stmts(&code.Line{Expr: code.Call(code.Id(createRoutine(b.Symbol, true)), args...)}),
			Else: code.Stmts(&code.Line{Expr: code.Call(code.Id(createRoutine(b.Symbol, false)), args...)}),
		})
	default:
		loop = append(loop, &code.Line{Expr: code.Call(code.Id(createRoutine(b.Symbol, b.Parallelism.IsParallel())),
			args...)})
	}
	//
	loop = append(loop, &code.Assign{Lhs: code.Index(MY_SUBCOMPONENTS, slot), Op: "=", Rhs: "aux_cmp_num"})
	//
	if !b.HasInputs {
		loop = append(loop, runSubcomponent(b, b.Parallelism, runTarget{header: b.Symbol}, slot)...)
	}
	//
	loop = append(loop,
		&code.Assign{Lhs: "csoffset", Op: "+=", Rhs: code.Int(b.SignalOffsetJump)},
		&code.Assign{Lhs: "aux_cmp_num", Op: "+=", Rhs: code.Int(b.ComponentOffsetJump)})
	//
	body = append(body, &code.For{Var: counter, Bound: bound, Body: loop})
	//
	return append(stmts, &code.Block{Body: body})
}
