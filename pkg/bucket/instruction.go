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
package bucket

import (
	"fmt"
	"strings"
)

// Instruction represents a single node ("bucket") of the resolved circuit
// program.  The set of instructions is closed: every implementation lives in
// this package, and the translation into target code is a single exhaustive
// switch over the concrete types.  Instructions are immutable once built.
type Instruction interface {
	fmt.Stringer
	// Metadata returns the source line and the message identifier of the
	// template (or function) which owns this instruction.  These are used for
	// error reporting within the generated program.
	Metadata() Meta
	// seals the set of instructions.
	instruction()
}

// Meta holds the diagnostic information carried by every instruction.
type Meta struct {
	// Line in the original source file.
	Line uint
	// MessageId identifies the owning template (or function) in the list of
	// template messages.
	MessageId uint
}

// Metadata implementation for the Instruction interface.
func (p Meta) Metadata() Meta {
	return p
}

func (p Meta) String() string {
	return fmt.Sprintf("line:%d,template_id:%d", p.Line, p.MessageId)
}

// Walk visits each instruction in the given list, along with all of its nested
// instructions, in depth-first order.  Traversal of a subtree is skipped when
// the visitor returns false.
func Walk(insns []Instruction, visitor func(Instruction) bool) {
	for _, insn := range insns {
		walk(insn, visitor)
	}
}

func walk(insn Instruction, visitor func(Instruction) bool) {
	if insn == nil || !visitor(insn) {
		return
	}
	//
	switch b := insn.(type) {
	case *Value:
		// leaf
	case *Load:
		walkAddress(b.Address, visitor)
		walkLocation(b.Src, visitor)
	case *Store:
		walkAddress(b.Dest.Address, visitor)
		walkLocation(b.Dest.Location, visitor)
		walk(b.Src, visitor)
	case *Branch:
		walk(b.Cond, visitor)
		Walk(b.Then, visitor)
		Walk(b.Else, visitor)
	case *Loop:
		walk(b.Cond, visitor)
		Walk(b.Body, visitor)
	case *Call:
		Walk(b.Arguments, visitor)
		//
		if f, ok := b.Return.(*Final); ok {
			walkAddress(f.Dest.Address, visitor)
			walkLocation(f.Dest.Location, visitor)
		}
	case *CreateComponent:
		walk(b.SubcmpId, visitor)
	case *Assert:
		walk(b.Cond, visitor)
	case *Return:
		walk(b.Value, visitor)
	case *Log:
		for _, arg := range b.Args {
			if e, ok := arg.(*LogExpr); ok {
				walk(e.Expr, visitor)
			}
		}
	default:
		panic(fmt.Sprintf("unknown instruction %T", insn))
	}
}

func walkAddress(address Address, visitor func(Instruction) bool) {
	if s, ok := address.(*SubcomponentSignal); ok {
		walk(s.CmpAddress, visitor)
	}
}

func walkLocation(location Location, visitor func(Instruction) bool) {
	switch l := location.(type) {
	case *Indexed:
		walk(l.Offset, visitor)
	case *Mapped:
		Walk(l.Indexes, visitor)
	}
}

// String converts a sequence of instructions into a string, separating each
// instruction with the given separator.
func String(insns []Instruction, separator string) string {
	var builder strings.Builder
	//
	for _, insn := range insns {
		builder.WriteString(insn.String())
		builder.WriteString(separator)
	}
	//
	return builder.String()
}
