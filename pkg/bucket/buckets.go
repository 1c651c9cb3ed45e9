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
	// U32 is a value which is used as a machine integer (e.g. an offset).
	U32 ValueKind = 0
	// BIGINT is a value which refers into the table of field constants.
	BIGINT ValueKind = 1
)

// ValueKind distinguishes machine integers from field constants.
type ValueKind uint8

func (p ValueKind) String() string {
	if p == U32 {
		return "U32"
	}
	//
	return "BigInt"
}

// Value is a constant.  For U32 it is the literal integer value, whilst for
// BIGINT it is an index into the circuit's table of field constants.
type Value struct {
	Meta
	Kind  ValueKind
	Value uint
	// OpAux is the expression-stack slot used when materialising a field
	// element.
	OpAux uint
}

// Load reads Size consecutive field elements from the given address and
// location.
type Load struct {
	Meta
	Address Address
	Src     Location
	Size    uint
}

// Store writes the value computed by Src into the given destination.
type Store struct {
	Meta
	Dest Destination
	Src  Instruction
}

// Branch executes one of two sequences depending on a field condition.
type Branch struct {
	Meta
	Cond Instruction
	Then []Instruction
	Else []Instruction
}

// Loop repeatedly executes its body whilst the condition holds.  The condition
// is re-evaluated before each iteration.
type Loop struct {
	Meta
	Cond Instruction
	Body []Instruction
}

// Call invokes a function symbol.
type Call struct {
	Meta
	Symbol string
	// Arguments passed, each copied into the callee's variable arena.
	Arguments []Instruction
	// ArgumentSizes gives the number of field elements for each argument.
	ArgumentSizes []uint
	// ArenaSize is the number of variable slots required by the callee.
	ArenaSize uint
	// Return determines where the result of the call is placed.
	Return ReturnType
}

// ReturnType determines how the result of a call is delivered.
type ReturnType interface {
	fmt.Stringer
	returnType()
}

// Intermediate indicates the result of a call is a single field element held
// in an expression-stack slot.
type Intermediate struct {
	OpAux uint
}

// Final indicates the result of a call is written directly into a
// destination.
type Final struct {
	Dest Destination
}

func (*Intermediate) returnType() {}
func (*Final) returnType()        {}

func (p *Intermediate) String() string {
	return fmt.Sprintf("Intermediate(%d)", p.OpAux)
}

func (p *Final) String() string {
	return fmt.Sprintf("Final(%s)", p.Dest.String())
}

// Position identifies a component of a sparse component array, along with its
// parallel flag.
type Position struct {
	Index    uint `json:"index"`
	Parallel bool `json:"parallel,omitempty"`
}

// CreateComponent allocates and initialises one or more subcomponents of a
// single template.  Components are either a dense range of NumberOfCmp
// entries, or a sparse set of positions when MixedArray holds.
type CreateComponent struct {
	Meta
	TemplateId uint
	// Symbol is the name of the template's create routine prefix.
	Symbol string
	// Name is the base name of the component (for diagnostics).
	Name string
	// SubcmpId computes the first slot index for this group.
	SubcmpId Instruction
	// Positions being created, used only for mixed (sparse) arrays.
	Positions []Position
	// Parallelism of the created components.
	Parallelism Parallelism
	// MixedArray holds when only the listed positions are created.
	MixedArray bool
	// MixedParallel holds when these components are part of an array whose
	// parallelism is not uniform, even though it is uniform for this group.
	// In such case, the parallel flag of each slot is recorded at runtime.
	MixedParallel bool
	// Dimensions of the component array.
	Dimensions []uint
	// SignalOffset is the offset of the first component's signals relative to
	// the executing component's signal start.
	SignalOffset uint
	// SignalOffsetJump is the number of signals between consecutive
	// components.
	SignalOffsetJump uint
	// ComponentOffset is the offset of the first component relative to the
	// executing component's memory index.
	ComponentOffset uint
	// ComponentOffsetJump is the number of components between consecutive
	// components (including their descendants).
	ComponentOffsetJump uint
	// NumberOfCmp is the number of components created.
	NumberOfCmp uint
	// HasInputs holds when the template has at least one input signal.
	HasInputs bool
}

// Assert checks a field condition holds at runtime.
type Assert struct {
	Meta
	Cond Instruction
}

// Return returns Size field elements computed by Value from a function.
type Return struct {
	Meta
	Size  uint
	Value Instruction
}

// Log prints a sequence of arguments at runtime.
type Log struct {
	Meta
	Args []LogArg
}

// LogArg is an argument of a log instruction.
type LogArg interface {
	fmt.Stringer
	logArg()
}

// LogExpr is a field expression printed in decimal form.
type LogExpr struct {
	Expr Instruction
}

// LogString is an entry of the circuit's string table.
type LogString struct {
	Id uint
}

func (*LogExpr) logArg()   {}
func (*LogString) logArg() {}

func (p *LogExpr) String() string {
	return p.Expr.String()
}

func (p *LogString) String() string {
	return fmt.Sprintf("STR(%d)", p.Id)
}

func (*Value) instruction()           {}
func (*Load) instruction()            {}
func (*Store) instruction()           {}
func (*Branch) instruction()          {}
func (*Loop) instruction()            {}
func (*Call) instruction()            {}
func (*CreateComponent) instruction() {}
func (*Assert) instruction()          {}
func (*Return) instruction()          {}
func (*Log) instruction()             {}

func (p *Value) String() string {
	return fmt.Sprintf("VALUE(%s,parse_as:%s,op_number:%d,value:%d)", p.Meta, p.Kind, p.OpAux, p.Value)
}

func (p *Load) String() string {
	return fmt.Sprintf("LOAD(%s,address_type:%s,src:%s,size:%d)", p.Meta, p.Address, p.Src, p.Size)
}

func (p *Store) String() string {
	return fmt.Sprintf("STORE(%s,%s,src:%s)", p.Meta, p.Dest, p.Src)
}

func (p *Branch) String() string {
	return fmt.Sprintf("IF(%s,cond:%s,if:[%s],else:[%s])", p.Meta, p.Cond, String(p.Then, ";"), String(p.Else, ";"))
}

func (p *Loop) String() string {
	return fmt.Sprintf("LOOP(%s,cond:%s,body:[%s])", p.Meta, p.Cond, String(p.Body, ";"))
}

func (p *Call) String() string {
	return fmt.Sprintf("CALL(%s,id:%s,return_type:%s,args:[%s])", p.Meta, p.Symbol, p.Return, String(p.Arguments, ";"))
}

func (p *CreateComponent) String() string {
	return fmt.Sprintf("CREATECMP(%s,cmp_id:%s,template_id:%d,name:%s,parallel:%s,number:%d,has_inputs:%t)", p.Meta,
		p.SubcmpId, p.TemplateId, p.Name, p.Parallelism, p.NumberOfCmp, p.HasInputs)
}

func (p *Assert) String() string {
	return fmt.Sprintf("ASSERT(%s,evaluate:%s)", p.Meta, p.Cond)
}

func (p *Return) String() string {
	return fmt.Sprintf("RETURN(%s,size:%d,value:%s)", p.Meta, p.Size, p.Value)
}

func (p *Log) String() string {
	var args = make([]string, len(p.Args))
	//
	for i, arg := range p.Args {
		args[i] = arg.String()
	}
	//
	return fmt.Sprintf("LOG(%s,args:[%s])", p.Meta, strings.Join(args, ";"))
}
