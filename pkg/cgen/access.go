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

// lowerLoad returns a pointer to the first element read.  Reading an output of
// a subcomponent which may run in parallel first waits for those outputs to be
// set.
func (l *lowering) lowerLoad(b *bucket.Load) ([]code.Stmt, code.Expr) {
	var (
		stmts []code.Stmt
		cmp   = code.None
	)
	//
	sub, isSub := b.Address.(*bucket.SubcomponentSignal)
	//
	if isSub {
		cmpStmts, index := l.lowerValueOf(sub.CmpAddress)
		stmts = append(stmts, cmpStmts...)
		cmp = index
	}
	//
	src := l.resolveLocation(b, b.Src, cmp, false)
	stmts = append(stmts, src.stmts...)
	//
	if isSub && sub.IsOutput {
		switch sub.Parallelism {
		case bucket.PARALLEL:
			stmts = append(stmts, awaitOutputs(cmp, src.offset, b.Size)...)
		case bucket.DYNAMIC:
			stmts = append(stmts, &code.If{
				Cond: code.Index(MY_SUBCOMPONENTS_PARALLEL, cmp),
				Then: awaitOutputs(cmp, src.offset, b.Size),
			})
		}
	}
	//
	return stmts, pointer(b, b.Address, cmp, src.offset)
}

// lowerStore copies the source value into the destination.
func (l *lowering) lowerStore(b *bucket.Store) []code.Stmt {
	return l.assign(b, b.Dest, func(dest code.Expr) []code.Stmt {
		var stmts, src = l.lowerValueOf(b.Src)
		//
		body := code.Stmts(
			&code.Decl{Type: T_P_FR_ELEMENT, Name: AUX_DEST.String(), Init: dest},
			&code.Comment{Text: "load src"},
		)
		body = append(body, stmts...)
		body = append(body, &code.Comment{Text: "end load src"}, copyElements(AUX_DEST, src, b.Dest.Size))
		//
		return code.Stmts(&code.Block{Body: body})
	})
}

// lowerCall stages the arguments into a fresh variable arena and then calls
// the function.  An intermediate result is placed in an expression slot,
// whilst a final result is written directly into its destination.
func (l *lowering) lowerCall(b *bucket.Call) ([]code.Stmt, code.Expr) {
	var (
		count  uint
		result = code.None
		args   = []code.Expr{CTX, LVAR_CALL, MY_ID}
		symbol = code.Id(b.Symbol)
		body   = code.Stmts(&code.Comment{Text: "start of call bucket"})
	)
	//
	if len(b.Arguments) != len(b.ArgumentSizes) {
		invariant(b, "%d arguments but %d argument sizes", len(b.Arguments), len(b.ArgumentSizes))
	}
	//
	for _, size := range b.ArgumentSizes {
		count += size
	}
	//
	if count > b.ArenaSize {
		invariant(b, "arguments require %d elements but arena holds %d", count, b.ArenaSize)
	}
	//
	body = append(body, &code.Decl{Type: T_FR_ELEMENT, Name: LVAR_CALL.String(), Size: code.Int(max(b.ArenaSize, 1))})
	count = 0
	//
	for i, arg := range b.Arguments {
		stmts, value := l.lowerValueOf(arg)
		//
		body = append(body, &code.Comment{Text: "copying argument " + code.Int(uint(i)).String()})
		body = append(body, stmts...)
		body = append(body, copyElements(code.Addr(code.Index(LVAR_CALL, code.Int(count))), value, b.ArgumentSizes[i]))
		body = append(body, &code.Comment{Text: "end copying argument " + code.Int(uint(i)).String()})
		count += b.ArgumentSizes[i]
	}
	//
	switch r := b.Return.(type) {
	case *bucket.Intermediate:
		result = code.Addr(code.Index(EXPAUX, code.Int(r.OpAux)))
		body = append(body, &code.Line{Expr: code.Call(symbol, append(args, result, code.Int(1))...)})
	case *bucket.Final:
		body = append(body, l.assign(b, r.Dest, func(dest code.Expr) []code.Stmt {
			return code.Stmts(&code.Line{Expr: code.Call(symbol, append(args, dest, code.Int(r.Dest.Size))...)})
		})...)
	default:
		invariant(b, "unknown return type %T", b.Return)
	}
	//
	return code.Stmts(&code.Block{Body: body}), result
}

// assign resolves a destination, writes into it using the given writer, and
// then performs the bookkeeping required by the destination: notifying readers
// of an output of the executing component, or supplying inputs to a
// subcomponent.  This is shared by stores and calls with a final result.
func (l *lowering) assign(insn bucket.Instruction, dest bucket.Destination,
	write func(code.Expr) []code.Stmt) []code.Stmt {
	var (
		stmts, inner []code.Stmt
		cmp          = code.None
	)
	//
	sub, isSub := dest.Address.(*bucket.SubcomponentSignal)
	//
	if isSub {
		cmpStmts, index := l.lowerValueOf(sub.CmpAddress)
		stmts = append(stmts, cmpStmts...)
		inner = append(inner, &code.Decl{Type: "uint", Name: CMP_INDEX_REF.String(), Init: index})
		cmp = CMP_INDEX_REF
	}
	//
	var (
		loc       = l.resolveLocation(insn, dest.Location, cmp, true)
		_, isMine = dest.Address.(*bucket.Signal)
		notify    = isMine && dest.IsOutput && l.parallel
		offset    = loc.offset
	)
	//
	inner = append(inner, loc.stmts...)
	// Keep the offset of an output, as its readers are notified afterwards.
	if notify {
		inner = append(inner, &code.Decl{Type: "uint", Name: AUX_DEST_INDEX.String(), Init: offset})
		offset = AUX_DEST_INDEX
	}
	//
	inner = append(inner, write(pointer(insn, dest.Address, cmp, offset))...)
	//
	if notify {
		inner = append(inner, notifyOutputs(AUX_DEST_INDEX, dest.Size)...)
	}
	//
	if isSub {
		if sub.IsOutput && sub.Input != bucket.NOT_INPUT {
			invariant(insn, "output signal of subcomponent cannot be an input")
		}
		//
		inner = append(inner, supplyInputs(insn, sub, loc.target, cmp, dest.Size)...)
	}
	//
	if isSub || notify {
		return append(stmts, &code.Block{Body: inner})
	}
	//
	return append(stmts, inner...)
}

// copyElements copies size field elements from src into dest.
func copyElements(dest code.Expr, src code.Expr, size uint) code.Stmt {
	if size > 1 {
		return &code.Line{Expr: code.Call(FR_COPYN, dest, src, code.Int(size))}
	}
	//
	return &code.Line{Expr: code.Call(FR_COPY, dest, src)}
}
