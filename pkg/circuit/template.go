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
package circuit

import (
	"fmt"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
)

// Template captures a single template instance of the circuit, along with the
// metadata needed to emit its create and run routines.
type Template struct {
	// Id is the ordinal of this template instance, used to index dispatch
	// tables.
	Id uint `json:"id"`
	// Header is the unique routine prefix for this instance.
	Header string `json:"header"`
	// Name is the (source) name of the template.
	Name string `json:"name"`
	// IsParallel holds when the template was annotated as parallel.
	IsParallel bool `json:"is_parallel"`
	// IsParallelComponent holds when some component of this template is
	// executed in parallel.
	IsParallelComponent bool `json:"is_parallel_component"`
	// IsNotParallelComponent holds when some component of this template is
	// executed sequentially.
	IsNotParallelComponent bool `json:"is_not_parallel_component"`
	// HasParallelSubcmp holds when at least one subcomponent of this template
	// may execute in parallel.
	HasParallelSubcmp bool `json:"has_parallel_sub_cmp"`
	// Number of (scalar) input signals.
	NumberOfInputs uint `json:"number_of_inputs"`
	// Number of (scalar) output signals.
	NumberOfOutputs uint `json:"number_of_outputs"`
	// Number of (scalar) intermediate signals.
	NumberOfIntermediates uint `json:"number_of_intermediates"`
	// Body of the template.
	Body []bucket.Instruction `json:"-"`
	// VarStackDepth is the number of local variable slots required.
	VarStackDepth uint `json:"var_stack_depth"`
	// ExpressionStackDepth is the number of temporary expression slots
	// required.
	ExpressionStackDepth uint `json:"expression_stack_depth"`
	// SignalStackDepth is the number of signals of this template.
	SignalStackDepth uint `json:"signal_stack_depth"`
	// NumberOfComponents is the number of subcomponent slots.
	NumberOfComponents uint `json:"number_of_components"`
}

// EmitsParallel determines whether the parallel variant of the create/run
// routines is emitted for this template.
func (p *Template) EmitsParallel() bool {
	return p.IsParallel || p.IsParallelComponent
}

// EmitsSequential determines whether the sequential variant of the create/run
// routines is emitted for this template.
func (p *Template) EmitsSequential() bool {
	return !p.IsParallel && p.IsNotParallelComponent
}

func (p *Template) String() string {
	return fmt.Sprintf("TEMPLATE(%s)(\n%s)", p.Header, bucket.String(p.Body, "\n"))
}

// Param describes a parameter of a function.
type Param struct {
	Name   string `json:"name"`
	Length []uint `json:"length"`
}

// Function captures a single (pure) function of the circuit.
type Function struct {
	// Header is the unique routine name for this function.
	Header string `json:"header"`
	// Name is the (source) name of the function.
	Name string `json:"name"`
	// Params of the function.
	Params []Param `json:"params"`
	// Returns gives the dimensions of the returned value.
	Returns []uint `json:"returns"`
	// Body of the function.
	Body []bucket.Instruction `json:"-"`
	// MaxNumberOfVars is the size of the variable arena required by a caller.
	MaxNumberOfVars uint `json:"max_number_of_vars"`
	// MaxNumberOfOpsInExpression is the number of temporary expression slots
	// required.
	MaxNumberOfOpsInExpression uint `json:"max_number_of_ops_in_expression"`
}

func (p *Function) String() string {
	return fmt.Sprintf("FUNCTION(%s)(\n%s)", p.Header, bucket.String(p.Body, "\n"))
}
