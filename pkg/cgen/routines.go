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
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen/code"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	log "github.com/sirupsen/logrus"
)

// LowerTemplate emits the create and run routines of a template.  The parallel
// variants are emitted when the template (or some component of it) runs in
// parallel, and the sequential variants when some component of it does not.
func LowerTemplate(t *circuit.Template, producer *circuit.Producer) []code.Stmt {
	var stmts []code.Stmt
	//
	log.Debugf("lowering template %s (id %d)", t.Header, t.Id)
	//
	if t.EmitsParallel() {
		stmts = append(stmts, createFunction(t, true), runFunction(t, producer, true))
	}
	//
	if t.EmitsSequential() {
		stmts = append(stmts, createFunction(t, false), runFunction(t, producer, false))
	}
	//
	return stmts
}

// createFunction initialises the runtime record of a new component.
func createFunction(t *circuit.Template, parallel bool) *code.Func {
	var (
		self  = component("coffset")
		field = func(name string, value code.Expr) code.Stmt {
			return &code.Assign{Lhs: code.Dot(self, name), Op: "=", Rhs: value}
		}
		ncmps = code.Int(t.NumberOfComponents)
		nouts = code.Int(t.NumberOfOutputs)
		body  = code.Stmts(
			field("templateId", code.Int(t.Id)),
			field("templateName", code.Str(t.Name)),
			field("signalStart", "soffset"),
			field("inputCounter", code.Int(t.NumberOfInputs)),
			field("componentName", "componentName"),
			field("idFather", "componentFather"),
		)
	)
	//
	if t.NumberOfComponents > 0 {
		body = append(body, field("subcomponents", code.Expr("new uint["+ncmps+"]{0}")))
	} else {
		body = append(body, field("subcomponents", code.Expr("new uint["+ncmps+"]")))
	}
	//
	if t.HasParallelSubcmp {
		body = append(body,
			field("sbct", code.Expr("new std::thread["+ncmps+"]")),
			field("subcomponentsParallel", code.Expr("new bool["+ncmps+"]")))
	}
	//
	if parallel {
		body = append(body,
			field("outputIsSet", code.Expr("new bool["+nouts+"]()")),
			field("mutexes", code.Expr("new std::mutex["+nouts+"]")),
			field("cvs", code.Expr("new std::condition_variable["+nouts+"]")))
	}
	//
	return &code.Func{Result: "void", Name: createRoutine(t.Header, parallel), Params: PARAMS_CREATE, Body: body}
}

// runFunction executes the body of a component.  Afterwards, it waits for any
// subcomponents running on their own threads, and releases the memory of all
// its subcomponents.  The parallel variant also marks every output as set (in
// case some were never written) and gives up its worker slot.
func runFunction(t *circuit.Template, producer *circuit.Producer, parallel bool) *code.Func {
	var (
		self = myComponent()
		body = frame(t)
	)
	//
	body = append(body, LowerAll(t.Body, producer, parallel)...)
	//
	if parallel {
		body = append(body, &code.For{Var: "i", Bound: code.Int(t.NumberOfOutputs), Body: notifyOutput("i")})
		body = append(body, releaseWorker()...)
	}
	// Join children running on other threads, without holding a worker slot.
	if t.NumberOfComponents > 0 && t.HasParallelSubcmp {
		var (
			handle = code.Index(code.Dot(self, "sbct"), "i")
			join   = &code.For{Var: "i", Bound: code.Int(t.NumberOfComponents), Body: code.Stmts(&code.If{
				Cond: code.Call(code.Dot(handle, "joinable")),
				Then: code.Stmts(&code.Line{Expr: code.Call(code.Dot(handle, "join"))}),
			})}
		)
		//
		if parallel {
			body = append(body, join)
		} else {
			// The main thread holds no slot, so the counter dips below zero here and is restored after the join.
			body = append(body, releaseWorker()...)
			body = append(body, join)
			body = append(body, acquireWorker()...)
		}
	}
	// Release the memory of subcomponents
	body = append(body, &code.For{Var: "i", Bound: code.Int(t.NumberOfComponents), Body: code.Stmts(
		&code.Decl{Type: "uint", Name: "index_subc", Init: code.Index(code.Dot(self, "subcomponents"), "i")},
		&code.If{
			Cond: code.Expr("index_subc != 0"),
			Then: code.Stmts(&code.Line{Expr: code.Call(RELEASE_MEMORY_COMPONENT, CTX, "index_subc")}),
		},
	)})
	//
	return &code.Func{Result: "void", Name: runRoutine(t.Header, parallel), Params: PARAMS_RUN, Body: body}
}

// frame declares the locals available to the body of a template.
func frame(t *circuit.Template) []code.Stmt {
	var self = myComponent()
	//
	return code.Stmts(
		&code.Decl{Type: "FrElement*", Name: SIGNAL_VALUES.String(), Init: code.Arrow(CTX, "signalValues")},
		&code.Decl{Type: "u64", Name: MY_SIGNAL_START.String(), Init: code.Dot(self, "signalStart")},
		&code.Decl{Type: "std::string", Name: MY_TEMPLATE_NAME.String(), Init: code.Dot(self, "templateName")},
		&code.Decl{Type: "std::string", Name: "myComponentName", Init: code.Dot(self, "componentName")},
		&code.Decl{Type: "u64", Name: "myFather", Init: code.Dot(self, "idFather")},
		&code.Decl{Type: "u64", Name: MY_ID.String(), Init: CTX_INDEX},
		&code.Decl{Type: "uint*", Name: MY_SUBCOMPONENTS.String(), Init: code.Dot(self, "subcomponents")},
		&code.Decl{Type: "bool*", Name: MY_SUBCOMPONENTS_PARALLEL.String(),
			Init: code.Dot(self, "subcomponentsParallel")},
		&code.Decl{Type: "FrElement*", Name: CIRCUIT_CONSTANTS.String(), Init: code.Arrow(CTX, "circuitConstants")},
		&code.Decl{Type: "std::string*", Name: "listOfTemplateMessages",
			Init: code.Arrow(CTX, "listOfTemplateMessages")},
		&code.Decl{Type: T_FR_ELEMENT, Name: EXPAUX.String(), Size: code.Int(max(t.ExpressionStackDepth, 1))},
		&code.Decl{Type: T_FR_ELEMENT, Name: LVAR.String(), Size: code.Int(max(t.VarStackDepth, 1))},
		&code.Decl{Type: "uint", Name: "sub_component_aux"},
		&code.Decl{Type: "uint", Name: "index_multiple_eq"},
	)
}

// LowerFunction emits the routine implementing a function.  Functions never
// touch signals, hence are always lowered sequentially.
func LowerFunction(f *circuit.Function, producer *circuit.Producer) []code.Stmt {
	log.Debugf("lowering function %s", f.Header)
	//
	body := code.Stmts(
		&code.Decl{Type: "FrElement*", Name: CIRCUIT_CONSTANTS.String(), Init: code.Arrow(CTX, "circuitConstants")},
		&code.Decl{Type: T_FR_ELEMENT, Name: EXPAUX.String(), Size: code.Int(max(f.MaxNumberOfOpsInExpression, 1))},
		&code.Decl{Type: "std::string", Name: MY_TEMPLATE_NAME.String(), Init: code.Str(f.Name)},
		&code.Decl{Type: "u64", Name: MY_ID.String(), Init: COMPONENT_FATHER},
	)
	body = append(body, LowerAll(f.Body, producer, false)...)
	//
	return code.Stmts(&code.Func{Result: "void", Name: f.Header, Params: PARAMS_FUNCTION, Body: body})
}
