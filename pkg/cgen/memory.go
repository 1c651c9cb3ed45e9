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

// runTarget identifies the run routines of a subcomponent whose execution may
// be triggered by a write.  When the template header is known statically, the
// routines are called directly.  Otherwise, they are dispatched through the
// function tables using the subcomponent's runtime template id.
type runTarget struct {
	header     string
	templateId code.Expr
}

// routine returns the run routine to call.
func (p runTarget) routine(parallel bool) code.Expr {
	if p.header != "" {
		return code.Id(runRoutine(p.header, parallel))
	} else if p.templateId.IsNone() {
		return code.None
	} else if parallel {
		return code.Deref(code.Index(FUNCTION_TABLE_PARALLEL, p.templateId))
	}
	//
	return code.Deref(code.Index(FUNCTION_TABLE, p.templateId))
}

// resolved captures the outcome of resolving a location within an address
// space.
type resolved struct {
	// Statements which must execute before the offset is valid.
	stmts []code.Stmt
	// Offset within the address space.
	offset code.Expr
	// Run routines of the accessed subcomponent (if applicable).
	target runTarget
}

// resolveLocation lowers a location rule into an offset expression.  Here, cmp
// is the slot expression of the accessed subcomponent (or None when the address
// is not a subcomponent signal).  When staged holds, the indexes of a mapped
// location are first evaluated into a local array (which requires an enclosing
// scope).  Otherwise, they are folded inline.
func (l *lowering) resolveLocation(insn bucket.Instruction, location bucket.Location, cmp code.Expr,
	staged bool) resolved {
	switch loc := location.(type) {
	case *bucket.Indexed:
		stmts, offset := l.lowerValueOf(loc.Offset)
		return resolved{stmts, offset, runTarget{header: loc.TemplateHeader}}
	case *bucket.Mapped:
		if cmp.IsNone() {
			invariant(insn, "mapped location requires subcomponent address")
		}
		//
		return l.resolveMapped(loc, cmp, staged)
	case nil:
		invariant(insn, "missing location")
	default:
		invariant(insn, "unknown location %T", location)
	}
	// unreachable
	return resolved{}
}

// resolveMapped resolves a mapped location through the I/O table of the
// accessed subcomponent's template.  The indexes are folded from left to right,
// multiplying the accumulator by the length of the previous dimension before
// adding the next index.
func (l *lowering) resolveMapped(loc *bucket.Mapped, cmp code.Expr, staged bool) resolved {
	var (
		stmts      []code.Stmt
		templateId = code.Dot(component(subcomponent(cmp)), "templateId")
		def        = code.Index(code.Dot(code.Index(code.Arrow(CTX, IO_SIGNAL_INFO), templateId), "defs"),
			code.Int(loc.SignalCode))
		offset = code.Dot(def, "offset")
		acc    code.Expr
	)
	//
	if len(loc.Indexes) == 0 {
		return resolved{nil, offset, runTarget{templateId: templateId}}
	}
	//
	if staged {
		stmts = append(stmts, &code.Decl{Type: "uint", Name: MAP_INDEX_AUX.String(), Size: code.Int(uint(len(loc.Indexes)))})
	}
	//
	for i, index := range loc.Indexes {
		indexStmts, value := l.lowerValueOf(index)
		stmts = append(stmts, indexStmts...)
		//
		if staged {
			aux := code.Index(MAP_INDEX_AUX, code.Int(uint(i)))
			stmts = append(stmts, &code.Assign{Lhs: aux, Op: "=", Rhs: value})
			value = aux
		}
		//
		if i == 0 {
			acc = value
		} else {
			length := code.Index(code.Dot(def, "lengths"), code.Int(uint(i-1)))
			acc = code.Add(code.Mul(code.Paren(acc), length), value)
		}
	}
	//
	return resolved{stmts, code.Add(offset, acc), runTarget{templateId: templateId}}
}

// pointer returns a pointer to the first element at a given offset within an
// address space.  Here, cmp is the slot expression of the accessed
// subcomponent (if applicable).
func pointer(insn bucket.Instruction, address bucket.Address, cmp code.Expr, offset code.Expr) code.Expr {
	switch address.(type) {
	case *bucket.Variable:
		return code.Addr(code.Index(LVAR, offset))
	case *bucket.Signal:
		return code.Addr(code.Index(SIGNAL_VALUES, code.Add(MY_SIGNAL_START, offset)))
	case *bucket.SubcomponentSignal:
		start := code.Dot(component(subcomponent(cmp)), "signalStart")
		return code.Addr(code.Index(code.Arrow(CTX, "signalValues"), code.Add(start, offset)))
	case nil:
		invariant(insn, "missing address")
	default:
		invariant(insn, "unknown address %T", address)
	}
	// unreachable
	return code.None
}
