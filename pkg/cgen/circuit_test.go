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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/assert"
)

// twoTemplates constructs a circuit where the main template A has a single
// subcomponent of template B, which has exactly one input.  Template A writes
// its input into B, and then reads B's output into its own output.
func twoTemplates(parallelB bool) *circuit.Circuit {
	var (
		input  = subcomponentInput(bucket.Uniform(parallelB), bucket.LAST_INPUT)
		output = &bucket.SubcomponentSignal{CmpAddress: u32(0), IsOutput: true, Parallelism: bucket.Uniform(parallelB)}
		b      = &circuit.Template{
			Id:                     1,
			Header:                 "B_1",
			Name:                   "B",
			IsParallel:             parallelB,
			IsNotParallelComponent: !parallelB,
			NumberOfInputs:         1,
			NumberOfOutputs:        1,
			VarStackDepth:          0,
			ExpressionStackDepth:   1,
			SignalStackDepth:       2,
			Body: []bucket.Instruction{
				&bucket.Store{
					Dest: bucket.Destination{Address: &bucket.Signal{}, Location: &bucket.Indexed{Offset: u32(0)},
						IsOutput: true, Size: 1},
					Src: &bucket.Load{Address: &bucket.Signal{}, Src: &bucket.Indexed{Offset: u32(1)}, Size: 1},
				},
			},
		}
		a = &circuit.Template{
			Id:                     0,
			Header:                 "A_0",
			Name:                   "A",
			IsNotParallelComponent: true,
			HasParallelSubcmp:      parallelB,
			NumberOfInputs:         1,
			NumberOfOutputs:        1,
			VarStackDepth:          1,
			ExpressionStackDepth:   2,
			SignalStackDepth:       4,
			NumberOfComponents:     1,
			Body: []bucket.Instruction{
				&bucket.CreateComponent{TemplateId: 1, Symbol: "B_1", Name: "b", SubcmpId: u32(0),
					Parallelism: bucket.Uniform(parallelB), Dimensions: []uint{}, SignalOffset: 2, SignalOffsetJump: 2,
					ComponentOffsetJump: 1, NumberOfCmp: 1, HasInputs: true},
				storeInput(input, &bucket.Indexed{Offset: u32(1), TemplateHeader: "B_1"}),
				&bucket.Store{
					Dest: bucket.Destination{Address: &bucket.Signal{}, Location: &bucket.Indexed{Offset: u32(0)},
						IsOutput: true, Size: 1},
					Src: &bucket.Load{Address: output, Src: &bucket.Indexed{Offset: u32(0)}, Size: 1},
				},
			},
		}
		f = &circuit.Function{
			Header:                     "square_0",
			Name:                       "square",
			Params:                     []circuit.Param{{Name: "x"}},
			MaxNumberOfVars:            1,
			MaxNumberOfOpsInExpression: 1,
			Body:                       []bucket.Instruction{&bucket.Return{Size: 1, Value: variable(0)}},
		}
	)
	//
	return &circuit.Circuit{
		Producer: circuit.Producer{
			Prime:              "m31",
			MainHeader:         "A_0",
			MainInputs:         1,
			MainOutputs:        1,
			TotalSignals:       5,
			NumberOfComponents: 2,
			FieldConstants:     []string{"0", "1", "5"},
			WitnessToSignal:    []uint{0, 1, 2},
			IOMap:              map[uint][]circuit.IODef{1: {{Offset: 0}, {Offset: 1}}},
			MainInputList:      []circuit.InputSignal{{Name: "in", Offset: 2, Size: 1}},
		},
		Templates: []*circuit.Template{a, b},
		Functions: []*circuit.Function{f},
	}
}

func generate(t *testing.T, c *circuit.Circuit) string {
	var buffer bytes.Buffer
	//
	assert.NoError(t, Generate(c, Options{MaxThreads: 4}, &buffer))
	//
	return buffer.String()
}

func Test_Circuit_01(t *testing.T) {
	out := generate(t, twoTemplates(false))
	//
	assert.True(t, strings.HasPrefix(out, "#include <stdio.h>\n#include <iostream>\n#include <assert.h>\n"+
		"#include \"circom.hpp\"\n#include \"calcwit.hpp\"\n"))
	assert.Contains(t, out, "void A_0_create(uint soffset,uint coffset,Circom_CalcWit* ctx,"+
		"std::string componentName,uint componentFather);\n")
	assert.Contains(t, out, "void B_1_run(uint ctx_index,Circom_CalcWit* ctx);\n")
	assert.Contains(t, out, "void square_0(Circom_CalcWit* ctx,FrElement* lvar,uint componentFather,"+
		"FrElement* destination,int destination_size);\n")
	assert.Contains(t, out, "Circom_TemplateFunction _functionTable[2] = {A_0_run,B_1_run};\n")
	assert.Contains(t, out, "Circom_TemplateFunction _functionTableParallel[2] = {NULL,NULL};\n")
	assert.NotContains(t, out, "_parallel")
}

func Test_Circuit_02(t *testing.T) {
	out := generate(t, twoTemplates(false))
	//
	assert.Contains(t, out, "uint get_main_input_signal_start() {\n\treturn 2;\n}\n")
	assert.Contains(t, out, "uint get_main_input_signal_no() {\n\treturn 1;\n}\n")
	assert.Contains(t, out, "uint get_total_signal_no() {\n\treturn 5;\n}\n")
	assert.Contains(t, out, "uint get_number_of_components() {\n\treturn 2;\n}\n")
	assert.Contains(t, out, "uint get_size_of_input_hashmap() {\n\treturn 256;\n}\n")
	assert.Contains(t, out, "uint get_size_of_witness() {\n\treturn 3;\n}\n")
	assert.Contains(t, out, "uint get_size_of_constants() {\n\treturn 3;\n}\n")
	assert.Contains(t, out, "uint get_size_of_io_map() {\n\treturn 1;\n}\n")
	assert.Contains(t, out, "uint get_max_threads() {\n\treturn 4;\n}\n")
}

func Test_Circuit_03(t *testing.T) {
	out := generate(t, twoTemplates(false))
	// Functions are emitted before templates
	assert.True(t, strings.Index(out, "// function declarations") < strings.Index(out, "void square_0(Circom_CalcWit* ctx, "))
	assert.True(t, strings.Index(out, "void square_0(Circom_CalcWit* ctx, ") < strings.Index(out, "// template declarations"))
	assert.True(t, strings.Index(out, "// template declarations") < strings.Index(out, "void A_0_create(uint soffset, "))
	// Templates in the order given
	assert.True(t, strings.Index(out, "void A_0_run(uint ctx_index, ") < strings.Index(out, "void B_1_create(uint soffset, "))
	// Entry point
	assert.True(t, strings.HasSuffix(out, "void run(Circom_CalcWit* ctx) {\n"+
		"\tA_0_create(1,0,ctx,\"main\",0);\n"+
		"\tA_0_run(0,ctx);\n"+
		"}\n\n"))
}

// Supplying the only input of B decrements its counter and runs it, without
// any runtime test.
func Test_Circuit_04(t *testing.T) {
	out := generate(t, twoTemplates(false))
	//
	assert.Contains(t, out, "\t\t// need to run sub component\n"+
		"\t\tctx->componentMemory[mySubcomponents[cmp_index_ref]].inputCounter -= 1;\n"+
		"\t\tassert(!(ctx->componentMemory[mySubcomponents[cmp_index_ref]].inputCounter));\n"+
		"\t\tB_1_run(mySubcomponents[cmp_index_ref],ctx);\n")
}

func Test_Circuit_05(t *testing.T) {
	out := generate(t, twoTemplates(false))
	//
	assert.Contains(t, out, "void B_1_create(uint soffset, uint coffset, Circom_CalcWit* ctx, "+
		"std::string componentName, uint componentFather) {\n"+
		"\tctx->componentMemory[coffset].templateId = 1;\n"+
		"\tctx->componentMemory[coffset].templateName = \"B\";\n"+
		"\tctx->componentMemory[coffset].signalStart = soffset;\n"+
		"\tctx->componentMemory[coffset].inputCounter = 1;\n"+
		"\tctx->componentMemory[coffset].componentName = componentName;\n"+
		"\tctx->componentMemory[coffset].idFather = componentFather;\n"+
		"\tctx->componentMemory[coffset].subcomponents = new uint[0];\n"+
		"}\n")
	assert.Contains(t, out, "\tFrElement expaux[2];\n\tFrElement lvar[1];\n")
	assert.Contains(t, out, "\tFrElement expaux[1];\n\tFrElement lvar[1];\n")
	assert.Contains(t, out, "for (uint i = 0; i < 1; i++) {\n"+
		"\t\tuint index_subc = ctx->componentMemory[ctx_index].subcomponents[i];\n"+
		"\t\tif (index_subc != 0) {\n"+
		"\t\t\trelease_memory_component(ctx,index_subc);\n"+
		"\t\t}\n"+
		"\t}\n")
}

// A parallel subcomponent is spawned and joined, and its outputs awaited.
func Test_Circuit_06(t *testing.T) {
	out := generate(t, twoTemplates(true))
	//
	assert.Contains(t, out, "Circom_TemplateFunction _functionTable[2] = {A_0_run,NULL};\n")
	assert.Contains(t, out, "Circom_TemplateFunction _functionTableParallel[2] = {NULL,B_1_run_parallel};\n")
	assert.Contains(t, out, "void B_1_create_parallel(uint soffset, ")
	assert.NotContains(t, out, "void B_1_create(uint soffset, ")
	assert.Contains(t, out, "ctx->componentMemory[coffset].outputIsSet = new bool[1]();")
	assert.Contains(t, out, "ctx->componentMemory[coffset].sbct = new std::thread[1];")
	assert.Contains(t, out, "std::thread(B_1_run_parallel,mySubcomponents[cmp_index_ref],ctx);")
	assert.Contains(t, out, "ctx->componentMemory[mySubcomponents[aux1]].cvs[aux2+i].wait(lk,")
	assert.Contains(t, out, "if (ctx->componentMemory[ctx_index].sbct[i].joinable()) {\n"+
		"\t\t\tctx->componentMemory[ctx_index].sbct[i].join();\n")
	// The parallel run routine notifies its outputs
	assert.Contains(t, out, "ctx->componentMemory[ctx_index].cvs[aux_dest_index].notify_all();")
}

// Every acquisition of a worker slot is matched by a release in the parallel
// run routine, and all happen under the lock.
func Test_Circuit_07(t *testing.T) {
	out := generate(t, twoTemplates(true))
	//
	assert.Equal(t, strings.Count(out, "ctx->numThread--;"),
		strings.Count(out, "std::lock_guard<std::mutex> lkt(ctx->numThreadMutex);"))
	assert.Equal(t, strings.Count(out, "ctx->numThread++;"),
		strings.Count(out, "std::unique_lock<std::mutex> lkt(ctx->numThreadMutex);"))
}

func Test_Circuit_08(t *testing.T) {
	var c = twoTemplates(true)
	//
	c.Templates[0].IsParallel = true
	c.Templates[0].IsNotParallelComponent = false
	c.Producer.MainIsParallel = true
	//
	out := generate(t, c)
	assert.Contains(t, out, "void run(Circom_CalcWit* ctx) {\n"+
		"\t{\n"+
		"\t\tstd::unique_lock<std::mutex> lkt(ctx->numThreadMutex);\n"+
		"\t\tctx->ntcvs.wait(lkt,[ctx](){return ctx->numThread < ctx->maxThread;});\n"+
		"\t\tctx->numThread++;\n"+
		"\t}\n"+
		"\tA_0_create_parallel(1,0,ctx,\"main\",0);\n"+
		"\tA_0_run_parallel(0,ctx);\n"+
		"}\n")
}

func Test_Circuit_09(t *testing.T) {
	c := twoTemplates(false)
	//
	assert.Equal(t, generate(t, c), generate(t, c))
}

// Malformed instructions fail without producing any output.
func Test_Circuit_10(t *testing.T) {
	var (
		c      = twoTemplates(false)
		buffer bytes.Buffer
		ierr   *InvariantError
	)
	//
	c.Templates[1].Body = append(c.Templates[1].Body, &bucket.Store{
		Meta: bucket.Meta{Line: 12, MessageId: 1},
		Dest: bucket.Destination{Address: &bucket.Signal{}, Size: 1},
		Src:  constant(0),
	})
	//
	err := Generate(c, Options{}, &buffer)
	assert.True(t, errors.As(err, &ierr))
	assert.Equal(t, uint(12), ierr.Line)
	assert.Equal(t, 0, buffer.Len())
}

func Test_Circuit_11(t *testing.T) {
	var buffer bytes.Buffer
	//
	c := twoTemplates(false)
	c.Producer.MainHeader = "C_2"
	//
	assert.Error(t, Generate(c, Options{}, &buffer))
	assert.Equal(t, 0, buffer.Len())
}

func Test_Circuit_12(t *testing.T) {
	out := generate(t, twoTemplates(false))
	//
	assert.Contains(t, out, "void release_memory_component(Circom_CalcWit* ctx, uint pos) {\n"+
		"\tif (pos != 0) {\n"+
		"\t\tif (ctx->componentMemory[pos].subcomponents) {\n"+
		"\t\t\tdelete [] ctx->componentMemory[pos].subcomponents;\n"+
		"\t\t\tctx->componentMemory[pos].subcomponents = nullptr;\n"+
		"\t\t}\n")
	assert.Contains(t, out, "\t\tif (ctx->componentMemory[pos].sbct) {\n")
}

func Test_Circuit_13(t *testing.T) {
	out := generate(t, twoTemplates(false))
	//
	assert.Contains(t, out, "void square_0(Circom_CalcWit* ctx, FrElement* lvar, uint componentFather, "+
		"FrElement* destination, int destination_size) {\n"+
		"\tFrElement* circuitConstants = ctx->circuitConstants;\n"+
		"\tFrElement expaux[1];\n"+
		"\tstd::string myTemplateName = \"square\";\n"+
		"\tu64 myId = componentFather;\n"+
		"\t// return bucket\n"+
		"\tFr_copy(destination,&lvar[0]);\n"+
		"\treturn;\n"+
		"}\n")
}
