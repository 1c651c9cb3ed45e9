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
	"errors"
	"fmt"
	"slices"
)

// Circuit is the top-level unit of code generation.  Templates and functions
// are emitted in exactly the order given here.
type Circuit struct {
	// Producer holds the global metadata of the circuit.
	Producer Producer
	// Templates holds every template instance.
	Templates []*Template
	// Functions holds every function.
	Functions []*Function
}

// Producer holds the global metadata consulted during code generation.
type Producer struct {
	// Prime names the field (e.g. "m31") or gives its modulus in decimal.
	Prime string `json:"prime"`
	// MainHeader is the routine prefix of the main template.
	MainHeader string `json:"main_header"`
	// MainIsParallel holds when the main component runs in parallel.
	MainIsParallel bool `json:"main_is_parallel"`
	// MainInputs is the number of (scalar) inputs of the main component.
	MainInputs uint `json:"main_inputs"`
	// MainOutputs is the number of (scalar) outputs of the main component.
	MainOutputs uint `json:"main_outputs"`
	// TotalSignals is the number of signals in the whole circuit (including
	// the constant one signal).
	TotalSignals uint `json:"total_signals"`
	// NumberOfComponents in the whole circuit.
	NumberOfComponents uint `json:"number_of_components"`
	// FieldConstants holds the decimal value of every field constant.
	FieldConstants []string `json:"field_constants"`
	// StringTable holds the string literals used by log instructions.
	StringTable []string `json:"string_table"`
	// TemplateMessages holds the diagnostic message for each template (or
	// function), indexed by message identifier.
	TemplateMessages []string `json:"template_messages"`
	// WitnessToSignal maps each witness index to its signal.
	WitnessToSignal []uint `json:"witness_to_signal"`
	// IOMap gives, for each template id, the layout of its named I/O signals
	// indexed by signal code.
	IOMap map[uint][]IODef `json:"io_map"`
	// MainInputList holds the top-level inputs of the main component, in
	// declaration order.
	MainInputList []InputSignal `json:"main_input_list"`
}

// IODef describes the layout of a single named I/O signal of a template.
type IODef struct {
	// Offset of the signal relative to the component's signal start.
	Offset uint `json:"offset"`
	// Lengths of each dimension of the signal.
	Lengths []uint `json:"lengths"`
}

// InputSignal describes one input signal of the main component.
type InputSignal struct {
	Name   string `cbor:"name" json:"name"`
	Offset uint   `cbor:"offset" json:"offset"`
	Size   uint   `cbor:"size" json:"size"`
}

// MainInputStart returns the index of the first input signal of the main
// component.  Signal zero is the constant one, which is followed by the
// outputs of main.
func (p *Producer) MainInputStart() uint {
	return 1 + p.MainOutputs
}

// IOMapKeys returns the template ids in the I/O map in ascending order.
func (p *Producer) IOMapKeys() []uint {
	var keys = make([]uint, 0, len(p.IOMap))
	//
	for k := range p.IOMap {
		keys = append(keys, k)
	}
	//
	slices.Sort(keys)
	//
	return keys
}

// TemplateMessage returns the diagnostic message for a given identifier, or a
// placeholder if none is known.
func (p *Producer) TemplateMessage(id uint) string {
	if id < uint(len(p.TemplateMessages)) {
		return p.TemplateMessages[id]
	}
	//
	return fmt.Sprintf("template_%d", id)
}

// Validate checks the structural properties on which code generation relies.
// Specifically, template ids must be unique and dense (since they index the
// dispatch tables), the main template must exist with the required variant,
// and every template in the I/O map must exist.
func (p *Circuit) Validate() error {
	var (
		n       = uint(len(p.Templates))
		seen    = make([]bool, n)
		errs    []error
		hasMain bool
	)
	//
	for _, t := range p.Templates {
		if t.Id >= n {
			errs = append(errs, fmt.Errorf("template %s has id %d outside of [0,%d)", t.Header, t.Id, n))
		} else if seen[t.Id] {
			errs = append(errs, fmt.Errorf("duplicate template id %d (%s)", t.Id, t.Header))
		} else {
			seen[t.Id] = true
		}
		//
		if t.Header == p.Producer.MainHeader {
			hasMain = true
			//
			if p.Producer.MainIsParallel && !t.EmitsParallel() {
				errs = append(errs, fmt.Errorf("main template %s has no parallel variant", t.Header))
			} else if !p.Producer.MainIsParallel && !t.EmitsSequential() {
				errs = append(errs, fmt.Errorf("main template %s has no sequential variant", t.Header))
			}
		}
	}
	//
	if !hasMain {
		errs = append(errs, fmt.Errorf("unknown main template %q", p.Producer.MainHeader))
	}
	//
	for _, id := range p.Producer.IOMapKeys() {
		if id >= n {
			errs = append(errs, fmt.Errorf("i/o map refers to unknown template %d", id))
		}
	}
	//
	return errors.Join(errs...)
}

// TemplateById returns the template with the given id, or nil if none exists.
func (p *Circuit) TemplateById(id uint) *Template {
	for _, t := range p.Templates {
		if t.Id == id {
			return t
		}
	}
	//
	return nil
}
