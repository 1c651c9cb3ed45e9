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

const (
	// DYNAMIC indicates the parallelism of a component is only known when the
	// generated program executes.
	DYNAMIC Parallelism = 0
	// SEQUENTIAL indicates a component is statically known to run inline.
	SEQUENTIAL Parallelism = 1
	// PARALLEL indicates a component is statically known to run on its own
	// worker thread.
	PARALLEL Parallelism = 2
)

// Parallelism captures whether the parallel-ness of a (sub)component is
// statically uniform and, if so, what its value is.
type Parallelism uint8

// Uniform constructs the parallelism corresponding to a statically known
// parallel flag.
func Uniform(parallel bool) Parallelism {
	if parallel {
		return PARALLEL
	}
	//
	return SEQUENTIAL
}

// IsStatic determines whether parallel-ness is known at compile time.
func (p Parallelism) IsStatic() bool {
	return p != DYNAMIC
}

// IsParallel determines whether this is statically parallel.
func (p Parallelism) IsParallel() bool {
	return p == PARALLEL
}

func (p Parallelism) String() string {
	switch p {
	case SEQUENTIAL:
		return "false"
	case PARALLEL:
		return "true"
	default:
		return "unknown"
	}
}

const (
	// NOT_INPUT indicates the accessed signal is not an input.
	NOT_INPUT InputStatus = 0
	// LAST_INPUT indicates the write supplies the last missing input of the
	// subcomponent, hence it must run afterwards.
	LAST_INPUT InputStatus = 1
	// NOT_LAST_INPUT indicates further inputs are expected after this write.
	NOT_LAST_INPUT InputStatus = 2
	// UNKNOWN_INPUT indicates that whether or not this is the last input can
	// only be determined at runtime.
	UNKNOWN_INPUT InputStatus = 3
)

// InputStatus classifies a write into a subcomponent input signal.
type InputStatus uint8

func (p InputStatus) String() string {
	switch p {
	case LAST_INPUT:
		return "Input(Last)"
	case NOT_LAST_INPUT:
		return "Input(NoLast)"
	case UNKNOWN_INPUT:
		return "Input(Unknown)"
	default:
		return "NoInput"
	}
}

// Address describes which memory an access refers to.
type Address interface {
	fmt.Stringer
	address()
}

// Variable is the address of a slot in the local variable stack.
type Variable struct{}

// Signal is the address of a signal of the executing component.
type Signal struct{}

// SubcomponentSignal is the address of a signal of one of the subcomponents of
// the executing component.
type SubcomponentSignal struct {
	// CmpAddress computes the index of the subcomponent in the slot array of
	// the executing component.
	CmpAddress Instruction
	// IsOutput holds when the accessed signal is an output of the
	// subcomponent.
	IsOutput bool
	// Parallelism of the subcomponent.
	Parallelism Parallelism
	// Input classifies writes into inputs of the subcomponent.
	Input InputStatus
}

func (*Variable) address()           {}
func (*Signal) address()             {}
func (*SubcomponentSignal) address() {}

func (*Variable) String() string {
	return "VARIABLE"
}

func (*Signal) String() string {
	return "SIGNAL"
}

func (p *SubcomponentSignal) String() string {
	return fmt.Sprintf("SUBCOMPONENT(cmp:%s,output:%t,parallel:%s,%s)", p.CmpAddress.String(), p.IsOutput,
		p.Parallelism, p.Input)
}

// Location determines how the offset of an access within its address space is
// computed.
type Location interface {
	fmt.Stringer
	location()
}

// Indexed is a location whose offset is given by a precomputed expression.
type Indexed struct {
	// Offset computes the offset of the access.
	Offset Instruction
	// TemplateHeader names the template of the accessed subcomponent (when
	// known).  This is required when a write into a subcomponent may trigger
	// its execution.
	TemplateHeader string
}

// Mapped is a location whose offset is resolved through the named I/O table
// of the accessed subcomponent's template.
type Mapped struct {
	// SignalCode identifies the signal within the I/O table.
	SignalCode uint
	// Indexes for each dimension of the accessed signal (outermost first).
	Indexes []Instruction
}

func (*Indexed) location() {}
func (*Mapped) location()  {}

func (p *Indexed) String() string {
	return fmt.Sprintf("INDEXED(%s)", p.Offset.String())
}

func (p *Mapped) String() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("MAPPED(code:%d,indexes:[", p.SignalCode))
	//
	for i, index := range p.Indexes {
		if i != 0 {
			builder.WriteString(",")
		}
		//
		builder.WriteString(index.String())
	}
	//
	builder.WriteString("])")
	//
	return builder.String()
}

// FoldIndex flattens a multi-dimensional index into a single offset using
// row-major accumulation from left to right: the accumulator starts with the
// first index and, for every subsequent dimension i, becomes
// acc*lengths[i-1] + indexes[i].
func FoldIndex(lengths []uint, indexes []uint) uint {
	var acc uint
	//
	for i, index := range indexes {
		if i == 0 {
			acc = index
		} else {
			acc = acc*lengths[i-1] + index
		}
	}
	//
	return acc
}

// Destination describes where a computed value is written, and how many field
// elements are affected.
type Destination struct {
	// Address space being written.
	Address Address
	// Location within the address space.
	Location Location
	// IsOutput holds when the destination is an output signal of the
	// executing component.
	IsOutput bool
	// Size is the number of field elements written.
	Size uint
}

func (p Destination) String() string {
	return fmt.Sprintf("dest_type:%s,dest:%s,size:%d", p.Address.String(), p.Location.String(), p.Size)
}
