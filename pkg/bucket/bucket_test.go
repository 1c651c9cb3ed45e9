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
	"testing"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/assert"
)

func Test_FoldIndex_01(t *testing.T) {
	assert.Equal(t, uint(0), FoldIndex(nil, nil))
	assert.Equal(t, uint(7), FoldIndex([]uint{9}, []uint{7}))
	// ((2*3)+1)*4+3
	assert.Equal(t, uint(31), FoldIndex([]uint{3, 4}, []uint{2, 1, 3}))
}

func Test_Parallelism_01(t *testing.T) {
	assert.Equal(t, PARALLEL, Uniform(true))
	assert.Equal(t, SEQUENTIAL, Uniform(false))
	assert.False(t, DYNAMIC.IsStatic())
	assert.True(t, SEQUENTIAL.IsStatic())
	assert.False(t, SEQUENTIAL.IsParallel())
	assert.True(t, PARALLEL.IsParallel())
	assert.Equal(t, "unknown", DYNAMIC.String())
}

func Test_String_01(t *testing.T) {
	var store = &Store{
		Meta: Meta{Line: 4, MessageId: 1},
		Dest: Destination{Address: &Signal{}, Location: &Indexed{Offset: &Value{Kind: U32, Value: 2}}, Size: 1},
		Src:  &Value{Kind: BIGINT, Value: 0, OpAux: 3},
	}
	//
	assert.Equal(t, "STORE(line:4,template_id:1,dest_type:SIGNAL,dest:INDEXED(VALUE(line:0,template_id:0,"+
		"parse_as:U32,op_number:0,value:2)),size:1,src:VALUE(line:0,template_id:0,parse_as:BigInt,op_number:3,"+
		"value:0))", store.String())
}

func Test_String_02(t *testing.T) {
	var load = &Load{
		Address: &SubcomponentSignal{CmpAddress: &Value{Value: 1}, IsOutput: true, Parallelism: PARALLEL},
		Src:     &Mapped{SignalCode: 2, Indexes: []Instruction{&Value{Value: 0}, &Value{Value: 1}}},
		Size:    1,
	}
	//
	assert.Contains(t, load.String(), "SUBCOMPONENT(cmp:VALUE(")
	assert.Contains(t, load.String(), "output:true,parallel:true,NoInput)")
	assert.Contains(t, load.String(), "MAPPED(code:2,indexes:[VALUE(")
	assert.Equal(t, "Input(Last)", LAST_INPUT.String())
}

func Test_String_03(t *testing.T) {
	var insns = []Instruction{&Assert{Cond: &Value{Value: 1}}, &Return{Size: 1, Value: &Value{Value: 0}}}
	//
	assert.Equal(t, insns[0].String()+"\n"+insns[1].String()+"\n", String(insns, "\n"))
	assert.Equal(t, "", String(nil, ";"))
}

func Test_Walk_01(t *testing.T) {
	var (
		cond  = &Value{Value: 1}
		index = &Value{Value: 2}
		arg   = &Value{Value: 3}
		cmp   = &Value{Value: 4}
		body  = []Instruction{
			&Branch{Cond: cond, Then: []Instruction{
				&Call{Symbol: "f", Arguments: []Instruction{arg}, Return: &Final{Dest: Destination{
					Address:  &SubcomponentSignal{CmpAddress: cmp},
					Location: &Mapped{Indexes: []Instruction{index}},
				}}},
			}},
		}
		seen []Instruction
	)
	//
	Walk(body, func(insn Instruction) bool {
		seen = append(seen, insn)
		return true
	})
	//
	assert.Equal(t, 6, len(seen))
	assert.True(t, seen[1] == Instruction(cond))
	assert.True(t, seen[3] == Instruction(arg))
	assert.True(t, seen[4] == Instruction(cmp))
	assert.True(t, seen[5] == Instruction(index))
}

func Test_Walk_02(t *testing.T) {
	var (
		body = []Instruction{
			&Loop{Cond: &Value{}, Body: []Instruction{&Assert{Cond: &Value{}}}},
			&Log{Args: []LogArg{&LogString{Id: 0}, &LogExpr{Expr: &Value{}}}},
		}
		count int
	)
	// Loops are not entered
	Walk(body, func(insn Instruction) bool {
		count++
		_, ok := insn.(*Loop)
		//
		return !ok
	})
	//
	assert.Equal(t, 3, count)
}
