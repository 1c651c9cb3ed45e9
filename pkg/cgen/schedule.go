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

// ============================================================================
// Worker budget
// ============================================================================

// acquireWorker blocks until the number of active workers is below the
// configured maximum, and then claims a worker slot.  The counter is only
// accessed whilst holding its mutex.
func acquireWorker() []code.Stmt {
	var (
		numThread = code.Arrow(CTX, "numThread")
		maxThread = code.Arrow(CTX, "maxThread")
		wait      = code.Call(code.Dot(code.Arrow(CTX, "ntcvs"), "wait"), "lkt",
			code.Lambda([]code.Expr{CTX}, code.Lt(numThread, maxThread)))
	)
	//
	return code.Stmts(&code.Block{Body: code.Stmts(
		uniqueLock("lkt", code.Arrow(CTX, "numThreadMutex")),
		&code.Line{Expr: wait},
		&code.Line{Expr: code.Expr(numThread + "++")},
	)})
}

// releaseWorker gives up a worker slot, waking one spawner (or reader) waiting
// for a free slot.
func releaseWorker() []code.Stmt {
	return code.Stmts(
		&code.Block{Body: code.Stmts(
			lockGuard("lkt", code.Arrow(CTX, "numThreadMutex")),
			&code.Line{Expr: code.Expr(code.Arrow(CTX, "numThread") + "--")},
		)},
		&code.Line{Expr: code.Call(code.Dot(code.Arrow(CTX, "ntcvs"), "notify_one"))},
	)
}

func lockGuard(name string, mutex code.Expr) code.Stmt {
	return &code.Raw{Text: T_LOCK_GUARD + " " + name + "(" + mutex.String() + ");"}
}

func uniqueLock(name string, mutex code.Expr) code.Stmt {
	return &code.Raw{Text: T_UNIQUE_LOCK + " " + name + "(" + mutex.String() + ");"}
}

// ============================================================================
// Triggering subcomponents
// ============================================================================

// spawn starts the parallel run routine of the subcomponent held in a given
// slot on its own thread, once a worker slot is available.  The thread handle
// is kept in the executing component so it can be joined later.
func spawn(routine code.Expr, slot code.Expr) []code.Stmt {
	var (
		handle = code.Index(code.Dot(myComponent(), "sbct"), slot)
		thread = code.Call("std::thread", routine, subcomponent(slot), CTX)
	)
	//
	return append(acquireWorker(), &code.Assign{Lhs: handle, Op: "=", Rhs: thread})
}

// runSubcomponent invokes the run routine of the subcomponent held in a given
// slot.  The variant is chosen statically when its parallelism is known, and
// otherwise through the runtime flag recorded for that slot.
func runSubcomponent(insn bucket.Instruction, parallelism bucket.Parallelism, target runTarget,
	slot code.Expr) []code.Stmt {
	var (
		sequential = target.routine(false)
		parallel   = target.routine(true)
	)
	//
	if sequential.IsNone() {
		invariant(insn, "cannot trigger subcomponent of unknown template")
	}
	//
	var inline = code.Stmts(&code.Line{Expr: code.Call(sequential, subcomponent(slot), CTX)})
	//
	switch parallelism {
	case bucket.SEQUENTIAL:
		return inline
	case bucket.PARALLEL:
		return spawn(parallel, slot)
	case bucket.DYNAMIC:
		return code.Stmts(&code.If{
			Cond: code.Index(MY_SUBCOMPONENTS_PARALLEL, slot),
			Then: spawn(parallel, slot),
			Else: inline,
		})
	default:
		invariant(insn, "unknown parallelism %d", parallelism)
	}
	// unreachable
	return nil
}

// supplyInputs accounts for size input elements written into the subcomponent
// held in a given slot, triggering its execution once all inputs are
// available.  This is the single routine shared by stores and calls.
func supplyInputs(insn bucket.Instruction, address *bucket.SubcomponentSignal, target runTarget, slot code.Expr,
	size uint) []code.Stmt {
	var (
		counter  = code.Dot(component(subcomponent(slot)), "inputCounter")
		decrease = &code.Assign{Lhs: counter, Op: "-=", Rhs: code.Int(size)}
	)
	//
	switch address.Input {
	case bucket.NOT_INPUT:
		return nil
	case bucket.NOT_LAST_INPUT:
		return code.Stmts(
			&code.Comment{Text: "no need to run sub component"},
			decrease,
			&code.Line{Expr: code.Call("assert", code.Gt(counter, "0"))},
		)
	case bucket.LAST_INPUT:
		return append(code.Stmts(
			&code.Comment{Text: "need to run sub component"},
			decrease,
			&code.Line{Expr: code.Call("assert", code.Not(counter))},
		), runSubcomponent(insn, address.Parallelism, target, slot)...)
	case bucket.UNKNOWN_INPUT:
		return code.Stmts(
			&code.Comment{Text: "run sub component if needed"},
			&code.If{
				Cond: code.Not(code.Expr(counter + " -= " + code.Int(size))),
				Then: runSubcomponent(insn, address.Parallelism, target, slot),
			},
		)
	default:
		invariant(insn, "unknown input status %d", address.Input)
	}
	// unreachable
	return nil
}

// ============================================================================
// Output signals
// ============================================================================

// notifyOutputs marks size consecutive output signals of the executing
// component as set, waking any readers waiting on them.
func notifyOutputs(index code.Expr, size uint) []code.Stmt {
	if size == 1 {
		return notifyOutput(index)
	}
	//
	return code.Stmts(&code.For{Var: "i", Bound: code.Int(size), Body: notifyOutput(code.Add(index, "i"))})
}

func notifyOutput(index code.Expr) []code.Stmt {
	var self = myComponent()
	//
	return code.Stmts(
		&code.Block{Body: code.Stmts(
			lockGuard("lk", code.Index(code.Dot(self, "mutexes"), index)),
			&code.Assign{Lhs: code.Index(code.Dot(self, "outputIsSet"), index), Op: "=", Rhs: code.Bool(true)},
		)},
		&code.Line{Expr: code.Call(code.Dot(code.Index(code.Dot(self, "cvs"), index), "notify_all"))},
	)
}

// awaitOutputs blocks until size consecutive output signals of the
// subcomponent held in a given slot have been set.  The worker slot held by
// the reader is given up whilst it is blocked, and reclaimed afterwards.
func awaitOutputs(slot code.Expr, offset code.Expr, size uint) []code.Stmt {
	var (
		child = component(subcomponent("aux1"))
		index = code.Add("aux2", "i")
		isSet = code.Index(code.Dot(child, "outputIsSet"), index)
		wait  = code.Call(code.Dot(code.Index(code.Dot(child, "cvs"), index), "wait"), "lk",
			code.Lambda([]code.Expr{CTX, MY_SUBCOMPONENTS, "aux1", "aux2", "i"}, isSet))
		loop []code.Stmt
	)
	//
	loop = append(loop, releaseWorker()...)
	loop = append(loop, &code.Block{Body: code.Stmts(
		uniqueLock("lk", code.Index(code.Dot(child, "mutexes"), index)),
		&code.Line{Expr: wait},
	)})
	loop = append(loop, acquireWorker()...)
	//
	return code.Stmts(&code.Block{Body: code.Stmts(
		&code.Decl{Type: "uint", Name: "aux1", Init: slot},
		&code.Decl{Type: "uint", Name: "aux2", Init: offset},
		&code.For{Var: "i", Bound: code.Int(size), Body: loop},
	)})
}
