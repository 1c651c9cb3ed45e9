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
	"io"
	"strings"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen/code"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
)

// Options configures the emission of a circuit.
type Options struct {
	// MaxThreads bounds the number of components running concurrently in the
	// generated program.
	MaxThreads uint
}

// DEFAULT_MAX_THREADS is the default bound on concurrently running components.
const DEFAULT_MAX_THREADS uint = 32

// Assemble lowers a complete circuit into the statements of a single source
// unit.  Templates and functions are emitted in the order given.  Malformed
// circuits are reported as an error, in which case no statements are returned.
func Assemble(c *circuit.Circuit, opts Options) (stmts []code.Stmt, err error) {
	if err = c.Validate(); err != nil {
		return nil, err
	}
	//
	defer recoverInvariant(&err)
	//
	stmts = append(stmts, prologue()...)
	stmts = append(stmts, forwardDeclarations(c)...)
	stmts = append(stmts, functionTables(c)...)
	stmts = append(stmts, accessors(c, opts)...)
	stmts = append(stmts, releaseMemoryComponent())
	stmts = append(stmts, &code.Comment{Text: "function declarations"})
	//
	for _, f := range c.Functions {
		stmts = append(stmts, LowerFunction(f, &c.Producer)...)
	}
	//
	stmts = append(stmts, &code.Comment{Text: "template declarations"})
	//
	for _, t := range c.Templates {
		stmts = append(stmts, LowerTemplate(t, &c.Producer)...)
	}
	//
	stmts = append(stmts, entry(&c.Producer))
	//
	return stmts, nil
}

// Generate lowers a complete circuit and writes the resulting source unit to
// the given sink.  Nothing is written if lowering fails.
func Generate(c *circuit.Circuit, opts Options, out io.Writer) error {
	stmts, err := Assemble(c, opts)
	//
	if err != nil {
		return err
	}
	//
	w := code.NewWriter(out)
	w.Write(stmts...)
	//
	return w.Flush()
}

func prologue() []code.Stmt {
	return code.Stmts(
		&code.Raw{Text: "#include <stdio.h>"},
		&code.Raw{Text: "#include <iostream>"},
		&code.Raw{Text: "#include <assert.h>"},
		&code.Raw{Text: "#include \"circom.hpp\""},
		&code.Raw{Text: "#include \"calcwit.hpp\""},
	)
}

// forwardDeclarations declares the routines of every template and function,
// since these refer to each other in arbitrary order.
func forwardDeclarations(c *circuit.Circuit) []code.Stmt {
	var (
		stmts   []code.Stmt
		declare = func(name string, params []string) {
			stmts = append(stmts, &code.Raw{Text: fmt.Sprintf("void %s(%s);", name, strings.Join(params, ","))})
		}
	)
	//
	for _, t := range c.Templates {
		for _, parallel := range variants(t) {
			declare(createRoutine(t.Header, parallel), PARAMS_CREATE)
			declare(runRoutine(t.Header, parallel), PARAMS_RUN)
		}
	}
	//
	for _, f := range c.Functions {
		declare(f.Header, PARAMS_FUNCTION)
	}
	//
	return stmts
}

// variants returns the variants emitted for a given template, in emission
// order.
func variants(t *circuit.Template) []bool {
	var vs []bool
	//
	if t.EmitsParallel() {
		vs = append(vs, true)
	}
	//
	if t.EmitsSequential() {
		vs = append(vs, false)
	}
	//
	return vs
}

// functionTables emits the sequential and parallel dispatch tables, indexed by
// template id.  Entries for variants which are not emitted are NULL.
func functionTables(c *circuit.Circuit) []code.Stmt {
	var (
		n          = uint(len(c.Templates))
		sequential = make([]code.Expr, n)
		parallel   = make([]code.Expr, n)
	)
	//
	for i := range sequential {
		sequential[i] = "NULL"
		parallel[i] = "NULL"
	}
	//
	for _, t := range c.Templates {
		if t.EmitsSequential() {
			sequential[t.Id] = code.Id(runRoutine(t.Header, false))
		}
		//
		if t.EmitsParallel() {
			parallel[t.Id] = code.Id(runRoutine(t.Header, true))
		}
	}
	//
	return code.Stmts(
		&code.Decl{Type: T_TEMPLATE_FUNCTION, Name: FUNCTION_TABLE.String(), Size: code.Int(n), Init: code.Init(sequential...)},
		&code.Decl{Type: T_TEMPLATE_FUNCTION, Name: FUNCTION_TABLE_PARALLEL.String(), Size: code.Int(n),
			Init: code.Init(parallel...)},
	)
}

// accessors emits the routines through which the runtime determines the
// dimensions of the circuit.
func accessors(c *circuit.Circuit, opts Options) []code.Stmt {
	var (
		p     = &c.Producer
		stmts []code.Stmt
		get   = func(name string, value uint) {
			stmts = append(stmts, &code.Func{Result: "uint", Name: name,
				Body: code.Stmts(&code.Return{Value: code.Int(value)})})
		}
		maxThreads = opts.MaxThreads
	)
	//
	if maxThreads == 0 {
		maxThreads = DEFAULT_MAX_THREADS
	}
	//
	get("get_main_input_signal_start", p.MainInputStart())
	get("get_main_input_signal_no", p.MainInputs)
	get("get_total_signal_no", p.TotalSignals)
	get("get_number_of_components", p.NumberOfComponents)
	get("get_size_of_input_hashmap", InputHashMapSize(uint(len(p.MainInputList))))
	get("get_size_of_witness", uint(len(p.WitnessToSignal)))
	get("get_size_of_constants", uint(len(p.FieldConstants)))
	get("get_size_of_io_map", uint(len(p.IOMap)))
	get("get_max_threads", maxThreads)
	//
	return stmts
}

// releaseMemoryComponent emits the helper freeing the memory held by a
// component once it has finished.
func releaseMemoryComponent() code.Stmt {
	var (
		self = component("pos")
		body []code.Stmt
	)
	//
	for _, field := range []string{"subcomponents", "subcomponentsParallel", "outputIsSet", "mutexes", "cvs", "sbct"} {
		member := code.Dot(self, field)
		body = append(body, &code.If{Cond: member, Then: code.Stmts(
			&code.Line{Expr: code.Expr("delete [] " + member)},
			&code.Assign{Lhs: member, Op: "=", Rhs: "nullptr"},
		)})
	}
	//
	return &code.Func{
		Result: "void",
		Name:   RELEASE_MEMORY_COMPONENT.String(),
		Params: []string{"Circom_CalcWit* ctx", "uint pos"},
		Body:   code.Stmts(&code.If{Cond: "pos != 0", Then: body}),
	}
}

// entry creates and runs the main component, using component index zero and
// a synthetic father of zero.  Its signals start after the constant one signal.
func entry(p *circuit.Producer) code.Stmt {
	var (
		args = []code.Expr{"1", "0", CTX, code.Str("main"), "0"}
		body []code.Stmt
	)
	//
	if p.MainIsParallel {
		body = append(body, acquireWorker()...)
	}
	//
	body = append(body,
		&code.Line{Expr: code.Call(code.Id(createRoutine(p.MainHeader, p.MainIsParallel)), args...)},
		&code.Line{Expr: code.Call(code.Id(runRoutine(p.MainHeader, p.MainIsParallel)), "0", CTX)},
	)
	//
	return &code.Func{Result: "void", Name: "run", Params: []string{"Circom_CalcWit* ctx"}, Body: body}
}
