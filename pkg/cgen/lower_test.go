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
	"strings"
	"testing"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen/code"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/assert"
)

// ============================================================================
// Helpers
// ============================================================================

var testProducer = &circuit.Producer{
	Prime:          "m31",
	MainHeader:     "A_0",
	FieldConstants: []string{"0", "1", "5"},
	StringTable:    []string{"x=%d"},
}

func u32(v uint) bucket.Instruction {
	return &bucket.Value{Kind: bucket.U32, Value: v}
}

func constant(index uint) bucket.Instruction {
	return &bucket.Value{Kind: bucket.BIGINT, Value: index}
}

func variable(offset uint) bucket.Instruction {
	return &bucket.Load{Address: &bucket.Variable{}, Src: &bucket.Indexed{Offset: u32(offset)}, Size: 1}
}

func storeVariable(offset uint, src bucket.Instruction) bucket.Instruction {
	return &bucket.Store{
		Dest: bucket.Destination{Address: &bucket.Variable{}, Location: &bucket.Indexed{Offset: u32(offset)}, Size: 1},
		Src:  src,
	}
}

func subcomponentInput(parallelism bucket.Parallelism, status bucket.InputStatus) *bucket.SubcomponentSignal {
	return &bucket.SubcomponentSignal{CmpAddress: u32(0), Parallelism: parallelism, Input: status}
}

func storeInput(address *bucket.SubcomponentSignal, location bucket.Location) bucket.Instruction {
	return &bucket.Store{
		Dest: bucket.Destination{Address: address, Location: location, Size: 1},
		Src:  constant(2),
	}
}

func lower(insn bucket.Instruction, parallel bool) (string, code.Expr) {
	stmts, value := Lower(insn, testProducer, parallel)
	return code.Render(stmts...), value
}

func lowerInvariant(t *testing.T, insn bucket.Instruction) (err *InvariantError) {
	defer func() {
		r := recover()
		//
		if e, ok := r.(*InvariantError); ok {
			err = e
		} else {
			t.Fatalf("expected invariant error, got %v", r)
		}
	}()
	//
	Lower(insn, testProducer, false)
	//
	return nil
}

// ============================================================================
// Values
// ============================================================================

func Test_Lower_Value_01(t *testing.T) {
	out, value := lower(u32(7), false)
	assert.Equal(t, "", out)
	assert.Equal(t, code.Expr("7"), value)
}

func Test_Lower_Value_02(t *testing.T) {
	out, value := lower(constant(2), false)
	assert.Equal(t, "", out)
	assert.Equal(t, code.Expr("&circuitConstants[2]"), value)
}

func Test_Lower_Value_03(t *testing.T) {
	err := lowerInvariant(t, constant(3))
	assert.Contains(t, err.Reason, "unknown field constant 3")
}

// ============================================================================
// Loads
// ============================================================================

func Test_Lower_Load_01(t *testing.T) {
	out, value := lower(variable(4), false)
	assert.Equal(t, "", out)
	assert.Equal(t, code.Expr("&lvar[4]"), value)
}

func Test_Lower_Load_02(t *testing.T) {
	load := &bucket.Load{Address: &bucket.Signal{}, Src: &bucket.Indexed{Offset: u32(2)}, Size: 1}
	_, value := lower(load, false)
	assert.Equal(t, code.Expr("&signalValues[mySignalStart+2]"), value)
}

// Mapped locations fold indexes from left to right, multiplying by the length
// of the previous dimension.
func Test_Lower_Load_03(t *testing.T) {
	var (
		address = &bucket.SubcomponentSignal{CmpAddress: u32(0), Parallelism: bucket.SEQUENTIAL}
		src     = &bucket.Mapped{SignalCode: 2, Indexes: []bucket.Instruction{u32(2), u32(1), u32(3)}}
		load    = &bucket.Load{Address: address, Src: src, Size: 1}
		def     = "ctx->templateInsId2IOSignalInfo[ctx->componentMemory[mySubcomponents[0]].templateId].defs[2]"
	)
	//
	out, value := lower(load, false)
	assert.Equal(t, "", out)
	assert.Equal(t, code.Expr("&ctx->signalValues[ctx->componentMemory[mySubcomponents[0]].signalStart+"+
		def+".offset+((2)*"+def+".lengths[0]+1)*"+def+".lengths[1]+3]"), value)
	// Agrees with the static fold
	assert.Equal(t, uint(31), bucket.FoldIndex([]uint{3, 4}, []uint{2, 1, 3}))
}

// Reading the output of a parallel subcomponent waits for it, without holding
// a worker slot.
func Test_Lower_Load_04(t *testing.T) {
	var (
		address = &bucket.SubcomponentSignal{CmpAddress: u32(1), IsOutput: true, Parallelism: bucket.PARALLEL}
		load    = &bucket.Load{Address: address, Src: &bucket.Indexed{Offset: u32(0)}, Size: 2}
	)
	//
	out, _ := lower(load, false)
	assert.Contains(t, out, "uint aux1 = 1;")
	assert.Contains(t, out, "uint aux2 = 0;")
	assert.Contains(t, out, "for (uint i = 0; i < 2; i++) {")
	assert.Contains(t, out, "ctx->numThread--;")
	assert.Contains(t, out, "std::unique_lock<std::mutex> lk(ctx->componentMemory[mySubcomponents[aux1]].mutexes[aux2+i]);")
	assert.Contains(t, out, "ctx->componentMemory[mySubcomponents[aux1]].cvs[aux2+i].wait(lk,"+
		"[ctx,mySubcomponents,aux1,aux2,i](){return ctx->componentMemory[mySubcomponents[aux1]].outputIsSet[aux2+i];});")
	assert.Contains(t, out, "ctx->ntcvs.wait(lkt,[ctx](){return ctx->numThread < ctx->maxThread;});")
	assert.NotContains(t, out, "if (")
	// Release happens before the wait, and acquire afterwards.
	assert.True(t, strings.Index(out, "ctx->numThread--") < strings.Index(out, ".wait(lk,"))
	assert.True(t, strings.Index(out, ".wait(lk,") < strings.Index(out, "ctx->numThread++"))
}

func Test_Lower_Load_05(t *testing.T) {
	var (
		address = &bucket.SubcomponentSignal{CmpAddress: u32(1), IsOutput: true, Parallelism: bucket.DYNAMIC}
		load    = &bucket.Load{Address: address, Src: &bucket.Indexed{Offset: u32(0)}, Size: 1}
	)
	//
	out, _ := lower(load, false)
	assert.Contains(t, out, "if (mySubcomponentsParallel[1]) {")
	assert.Contains(t, out, "ctx->componentMemory[mySubcomponents[aux1]].outputIsSet[aux2+i]")
}

func Test_Lower_Load_06(t *testing.T) {
	var (
		address = &bucket.SubcomponentSignal{CmpAddress: u32(1), IsOutput: true, Parallelism: bucket.SEQUENTIAL}
		load    = &bucket.Load{Address: address, Src: &bucket.Indexed{Offset: u32(0)}, Size: 1}
	)
	//
	out, _ := lower(load, false)
	assert.Equal(t, "", out)
}

func Test_Lower_Load_07(t *testing.T) {
	load := &bucket.Load{Address: &bucket.Variable{}, Src: nil, Size: 1}
	err := lowerInvariant(t, load)
	assert.Contains(t, err.Reason, "missing location")
}

func Test_Lower_Load_08(t *testing.T) {
	load := &bucket.Load{Address: &bucket.Signal{}, Src: &bucket.Mapped{SignalCode: 0}, Size: 1}
	err := lowerInvariant(t, load)
	assert.Contains(t, err.Reason, "mapped location requires subcomponent address")
}

// ============================================================================
// Stores
// ============================================================================

func Test_Lower_Store_01(t *testing.T) {
	out, value := lower(storeVariable(3, constant(1)), false)
	//
	assert.True(t, value.IsNone())
	assert.Equal(t, "{\n"+
		"\tPFrElement aux_dest = &lvar[3];\n"+
		"\t// load src\n"+
		"\t// end load src\n"+
		"\tFr_copy(aux_dest,&circuitConstants[1]);\n"+
		"}\n", out)
}

// Supplying the last input of a single-input subcomponent runs it without any
// runtime test.
func Test_Lower_Store_02(t *testing.T) {
	var (
		address  = subcomponentInput(bucket.SEQUENTIAL, bucket.LAST_INPUT)
		location = &bucket.Indexed{Offset: u32(1), TemplateHeader: "B_1"}
	)
	//
	out, _ := lower(storeInput(address, location), false)
	assert.Equal(t, "{\n"+
		"\tuint cmp_index_ref = 0;\n"+
		"\t{\n"+
		"\t\tPFrElement aux_dest = &ctx->signalValues[ctx->componentMemory[mySubcomponents[cmp_index_ref]].signalStart+1];\n"+
		"\t\t// load src\n"+
		"\t\t// end load src\n"+
		"\t\tFr_copy(aux_dest,&circuitConstants[2]);\n"+
		"\t}\n"+
		"\t// need to run sub component\n"+
		"\tctx->componentMemory[mySubcomponents[cmp_index_ref]].inputCounter -= 1;\n"+
		"\tassert(!(ctx->componentMemory[mySubcomponents[cmp_index_ref]].inputCounter));\n"+
		"\tB_1_run(mySubcomponents[cmp_index_ref],ctx);\n"+
		"}\n", out)
	assert.NotContains(t, out, "if (")
}

func Test_Lower_Store_03(t *testing.T) {
	var (
		address  = subcomponentInput(bucket.SEQUENTIAL, bucket.NOT_LAST_INPUT)
		location = &bucket.Indexed{Offset: u32(1), TemplateHeader: "B_1"}
	)
	//
	out, _ := lower(storeInput(address, location), false)
	assert.Contains(t, out, "ctx->componentMemory[mySubcomponents[cmp_index_ref]].inputCounter -= 1;")
	assert.Contains(t, out, "assert(ctx->componentMemory[mySubcomponents[cmp_index_ref]].inputCounter > 0);")
	assert.NotContains(t, out, "B_1_run")
}

func Test_Lower_Store_04(t *testing.T) {
	var (
		address  = subcomponentInput(bucket.SEQUENTIAL, bucket.UNKNOWN_INPUT)
		location = &bucket.Indexed{Offset: u32(1), TemplateHeader: "B_1"}
	)
	//
	out, _ := lower(storeInput(address, location), false)
	assert.Contains(t, out, "if (!(ctx->componentMemory[mySubcomponents[cmp_index_ref]].inputCounter -= 1)) {\n"+
		"\t\tB_1_run(mySubcomponents[cmp_index_ref],ctx);\n\t}\n")
	assert.NotContains(t, out, "assert(")
}

// Parallel subcomponents are spawned on their own thread once a worker slot
// is available.
func Test_Lower_Store_05(t *testing.T) {
	var (
		address  = subcomponentInput(bucket.PARALLEL, bucket.LAST_INPUT)
		location = &bucket.Indexed{Offset: u32(1), TemplateHeader: "B_1"}
	)
	//
	out, _ := lower(storeInput(address, location), false)
	assert.Contains(t, out, "ctx->componentMemory[ctx_index].sbct[cmp_index_ref] = "+
		"std::thread(B_1_run_parallel,mySubcomponents[cmp_index_ref],ctx);")
	assert.True(t, strings.Index(out, "ctx->numThread++") < strings.Index(out, "std::thread("))
	assert.NotContains(t, out, "B_1_run(")
}

// Writes through the I/O map stage their indexes, and dispatch the run routine
// through the function tables.
func Test_Lower_Store_06(t *testing.T) {
	var (
		address  = subcomponentInput(bucket.DYNAMIC, bucket.UNKNOWN_INPUT)
		location = &bucket.Mapped{SignalCode: 1, Indexes: []bucket.Instruction{u32(2)}}
		tid      = "ctx->componentMemory[mySubcomponents[cmp_index_ref]].templateId"
	)
	//
	out, _ := lower(storeInput(address, location), false)
	assert.Contains(t, out, "uint map_index_aux[1];")
	assert.Contains(t, out, "map_index_aux[0] = 2;")
	assert.Contains(t, out, "ctx->templateInsId2IOSignalInfo["+tid+"].defs[1].offset+map_index_aux[0]")
	assert.Contains(t, out, "if (mySubcomponentsParallel[cmp_index_ref]) {")
	assert.Contains(t, out, "std::thread((*_functionTableParallel["+tid+"]),mySubcomponents[cmp_index_ref],ctx);")
	assert.Contains(t, out, "(*_functionTable["+tid+"])(mySubcomponents[cmp_index_ref],ctx);")
}

// Writes to outputs of a parallel component notify waiting readers.
func Test_Lower_Store_07(t *testing.T) {
	var store = &bucket.Store{
		Dest: bucket.Destination{Address: &bucket.Signal{}, Location: &bucket.Indexed{Offset: u32(0)}, IsOutput: true,
			Size: 1},
		Src: constant(1),
	}
	//
	out, _ := lower(store, true)
	assert.Contains(t, out, "uint aux_dest_index = 0;")
	assert.Contains(t, out, "PFrElement aux_dest = &signalValues[mySignalStart+aux_dest_index];")
	assert.Contains(t, out, "std::lock_guard<std::mutex> lk(ctx->componentMemory[ctx_index].mutexes[aux_dest_index]);")
	assert.Contains(t, out, "ctx->componentMemory[ctx_index].outputIsSet[aux_dest_index] = true;")
	assert.Contains(t, out, "ctx->componentMemory[ctx_index].cvs[aux_dest_index].notify_all();")
	// Sequential variant never notifies
	out, _ = lower(store, false)
	assert.NotContains(t, out, "notify_all")
}

func Test_Lower_Store_08(t *testing.T) {
	var store = &bucket.Store{
		Dest: bucket.Destination{Address: &bucket.Signal{}, Location: &bucket.Indexed{Offset: u32(4)}, IsOutput: true,
			Size: 3},
		Src: variable(0),
	}
	//
	out, _ := lower(store, true)
	assert.Contains(t, out, "Fr_copyn(aux_dest,&lvar[0],3);")
	assert.Contains(t, out, "for (uint i = 0; i < 3; i++) {")
	assert.Contains(t, out, "ctx->componentMemory[ctx_index].outputIsSet[aux_dest_index+i] = true;")
}

func Test_Lower_Store_09(t *testing.T) {
	address := subcomponentInput(bucket.SEQUENTIAL, bucket.LAST_INPUT)
	address.IsOutput = true
	//
	err := lowerInvariant(t, storeInput(address, &bucket.Indexed{Offset: u32(0), TemplateHeader: "B_1"}))
	assert.Contains(t, err.Reason, "cannot be an input")
}

func Test_Lower_Store_10(t *testing.T) {
	store := &bucket.Store{Dest: bucket.Destination{Address: &bucket.Variable{}, Location: nil, Size: 1},
		Src: constant(0)}
	err := lowerInvariant(t, store)
	assert.Contains(t, err.Reason, "missing location")
}

func Test_Lower_Store_11(t *testing.T) {
	store := &bucket.Store{Dest: bucket.Destination{Address: &bucket.Variable{}, Location: &bucket.Indexed{Offset: u32(0)},
		Size: 1}, Src: &bucket.Assert{Cond: constant(0)}}
	err := lowerInvariant(t, store)
	assert.Contains(t, err.Reason, "produces no value")
}

// ============================================================================
// Control flow
// ============================================================================

func Test_Lower_Branch_01(t *testing.T) {
	branch := &bucket.Branch{
		Cond: variable(0),
		Then: []bucket.Instruction{storeVariable(1, constant(1))},
		Else: []bucket.Instruction{storeVariable(1, constant(0))},
	}
	out, _ := lower(branch, false)
	assert.Contains(t, out, "if (Fr_isTrue(&lvar[0])) {")
	assert.Contains(t, out, "} else {")
	assert.Contains(t, out, "Fr_copy(aux_dest,&circuitConstants[1]);")
	assert.Contains(t, out, "Fr_copy(aux_dest,&circuitConstants[0]);")
}

func Test_Lower_Branch_02(t *testing.T) {
	branch := &bucket.Branch{Cond: variable(0), Then: []bucket.Instruction{storeVariable(1, constant(1))}}
	out, _ := lower(branch, false)
	assert.NotContains(t, out, "else")
}

// The condition of a loop is re-evaluated at the end of each iteration.
func Test_Lower_Loop_01(t *testing.T) {
	var (
		cond = &bucket.Call{
			Symbol:        "lt_0",
			Arguments:     []bucket.Instruction{variable(0)},
			ArgumentSizes: []uint{1},
			ArenaSize:     2,
			Return:        &bucket.Intermediate{OpAux: 0},
		}
		loop = &bucket.Loop{Cond: cond, Body: []bucket.Instruction{storeVariable(0, constant(1))}}
		call = "lt_0(ctx,lvarcall,myId,&expaux[0],1);"
	)
	//
	out, _ := lower(loop, false)
	assert.Count(t, 2, out, call)
	assert.Contains(t, out, "while (Fr_isTrue(&expaux[0])) {")
	// Once before the test, and again after the body.
	assert.True(t, strings.Index(out, call) < strings.Index(out, "while ("))
	assert.True(t, strings.Index(out, "Fr_copy(aux_dest,") < strings.LastIndex(out, call))
}

func Test_Lower_Assert_01(t *testing.T) {
	var insn = &bucket.Assert{Meta: bucket.Meta{Line: 7, MessageId: 1}, Cond: variable(2)}
	//
	out, _ := lower(insn, false)
	assert.Contains(t, out, "if (!(Fr_isTrue(&lvar[2]))) {")
	assert.Contains(t, out, "\" line 7. \"")
	assert.Contains(t, out, "ctx->getTrace(myId)")
	assert.Contains(t, out, "assert(Fr_isTrue(&lvar[2]));")
}

func Test_Lower_Return_01(t *testing.T) {
	out, _ := lower(&bucket.Return{Size: 1, Value: variable(0)}, false)
	assert.Equal(t, "// return bucket\nFr_copy(destination,&lvar[0]);\nreturn;\n", out)
}

func Test_Lower_Return_02(t *testing.T) {
	out, _ := lower(&bucket.Return{Size: 4, Value: variable(1)}, false)
	assert.Contains(t, out, "Fr_copyn(destination,&lvar[1],destination_size);")
}

func Test_Lower_Log_01(t *testing.T) {
	var insn = &bucket.Log{Args: []bucket.LogArg{&bucket.LogString{Id: 0}, &bucket.LogExpr{Expr: constant(2)}}}
	//
	out, _ := lower(insn, false)
	assert.Equal(t, "printf(\"x=%%d\");\n"+
		"printf(\" \");\n"+
		"{\n"+
		"\tchar* temp = Fr_element2str(&circuitConstants[2]);\n"+
		"\tprintf(\"%s\",temp);\n"+
		"\tdelete [] temp;\n"+
		"}\n"+
		"printf(\"\\n\");\n", out)
}

func Test_Lower_Log_02(t *testing.T) {
	err := lowerInvariant(t, &bucket.Log{Args: []bucket.LogArg{&bucket.LogString{Id: 1}}})
	assert.Contains(t, err.Reason, "unknown string 1")
}

// ============================================================================
// Calls
// ============================================================================

func Test_Lower_Call_01(t *testing.T) {
	var call = &bucket.Call{
		Symbol:        "f_0",
		Arguments:     []bucket.Instruction{variable(0), constant(1)},
		ArgumentSizes: []uint{2, 1},
		ArenaSize:     5,
		Return:        &bucket.Intermediate{OpAux: 3},
	}
	//
	out, value := lower(call, false)
	assert.Equal(t, code.Expr("&expaux[3]"), value)
	assert.Equal(t, "{\n"+
		"\t// start of call bucket\n"+
		"\tFrElement lvarcall[5];\n"+
		"\t// copying argument 0\n"+
		"\tFr_copyn(&lvarcall[0],&lvar[0],2);\n"+
		"\t// end copying argument 0\n"+
		"\t// copying argument 1\n"+
		"\tFr_copy(&lvarcall[2],&circuitConstants[1]);\n"+
		"\t// end copying argument 1\n"+
		"\tf_0(ctx,lvarcall,myId,&expaux[3],1);\n"+
		"}\n", out)
}

// A final result written into a subcomponent input follows the same input
// counter policy as a store.
func Test_Lower_Call_02(t *testing.T) {
	var (
		address = subcomponentInput(bucket.SEQUENTIAL, bucket.LAST_INPUT)
		dest    = bucket.Destination{Address: address, Location: &bucket.Indexed{Offset: u32(0), TemplateHeader: "B_1"},
			Size: 2}
		call = &bucket.Call{Symbol: "f_0", ArenaSize: 0, Return: &bucket.Final{Dest: dest}}
	)
	//
	out, value := lower(call, false)
	assert.True(t, value.IsNone())
	assert.Contains(t, out, "FrElement lvarcall[1];")
	assert.Contains(t, out, "f_0(ctx,lvarcall,myId,&ctx->signalValues[ctx->componentMemory[mySubcomponents[cmp_index_ref]]"+
		".signalStart+0],2);")
	assert.Contains(t, out, "ctx->componentMemory[mySubcomponents[cmp_index_ref]].inputCounter -= 2;")
	assert.Contains(t, out, "B_1_run(mySubcomponents[cmp_index_ref],ctx);")
}

func Test_Lower_Call_03(t *testing.T) {
	var call = &bucket.Call{
		Symbol:        "f_0",
		Arguments:     []bucket.Instruction{variable(0)},
		ArgumentSizes: []uint{3},
		ArenaSize:     2,
		Return:        &bucket.Intermediate{},
	}
	//
	err := lowerInvariant(t, call)
	assert.Contains(t, err.Reason, "arena holds 2")
}

// ============================================================================
// Determinism
// ============================================================================

func Test_Lower_Determinism_01(t *testing.T) {
	var insns = []bucket.Instruction{
		storeInput(subcomponentInput(bucket.DYNAMIC, bucket.UNKNOWN_INPUT),
			&bucket.Mapped{SignalCode: 1, Indexes: []bucket.Instruction{u32(2), variable(1)}}),
		&bucket.Loop{Cond: variable(0), Body: []bucket.Instruction{storeVariable(0, constant(1))}},
		&bucket.Log{Args: []bucket.LogArg{&bucket.LogString{Id: 0}}},
	}
	//
	first := code.Render(LowerAll(insns, testProducer, true)...)
	second := code.Render(LowerAll(insns, testProducer, true)...)
	//
	assert.Equal(t, first, second)
}
