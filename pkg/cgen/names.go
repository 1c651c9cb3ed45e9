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
)

// Identifiers shared between the generated code and the runtime support files.
var (
	CTX                       = code.Id("ctx")
	CTX_INDEX                 = code.Id("ctx_index")
	MY_ID                     = code.Id("myId")
	MY_SIGNAL_START           = code.Id("mySignalStart")
	MY_SUBCOMPONENTS          = code.Id("mySubcomponents")
	MY_SUBCOMPONENTS_PARALLEL = code.Id("mySubcomponentsParallel")
	MY_TEMPLATE_NAME          = code.Id("myTemplateName")
	SIGNAL_VALUES             = code.Id("signalValues")
	CIRCUIT_CONSTANTS         = code.Id("circuitConstants")
	LVAR                      = code.Id("lvar")
	LVAR_CALL                 = code.Id("lvarcall")
	EXPAUX                    = code.Id("expaux")
	DESTINATION               = code.Id("destination")
	DESTINATION_SIZE          = code.Id("destination_size")
	COMPONENT_FATHER          = code.Id("componentFather")
	FUNCTION_TABLE            = code.Id("_functionTable")
	FUNCTION_TABLE_PARALLEL   = code.Id("_functionTableParallel")
	IO_SIGNAL_INFO            = "templateInsId2IOSignalInfo"
	CMP_INDEX_REF             = code.Id("cmp_index_ref")
	AUX_DEST                  = code.Id("aux_dest")
	AUX_DEST_INDEX            = code.Id("aux_dest_index")
	MAP_INDEX_AUX             = code.Id("map_index_aux")
	FR_COPY                   = code.Id("Fr_copy")
	FR_COPYN                  = code.Id("Fr_copyn")
	FR_IS_TRUE                = code.Id("Fr_isTrue")
	FR_ELEMENT_2_STR          = code.Id("Fr_element2str")
	RELEASE_MEMORY_COMPONENT  = code.Id("release_memory_component")
	GENERATE_POSITION_ARRAY   = "generate_position_array"
	T_FR_ELEMENT              = "FrElement"
	T_P_FR_ELEMENT            = "PFrElement"
	T_CALC_WIT                = "Circom_CalcWit*"
	T_TEMPLATE_FUNCTION       = "Circom_TemplateFunction"
	T_UNIQUE_LOCK             = "std::unique_lock<std::mutex>"
	T_LOCK_GUARD              = "std::lock_guard<std::mutex>"
	PARAMS_CREATE             = []string{"uint soffset", "uint coffset", "Circom_CalcWit* ctx", "std::string componentName", "uint componentFather"}
	PARAMS_RUN                = []string{"uint ctx_index", "Circom_CalcWit* ctx"}
	PARAMS_FUNCTION           = []string{"Circom_CalcWit* ctx", "FrElement* lvar", "uint componentFather", "FrElement* destination", "int destination_size"}
)

// component returns the runtime record of the component at a given index.
func component(index code.Expr) code.Expr {
	return code.Index(code.Arrow(CTX, "componentMemory"), index)
}

// myComponent returns the runtime record of the executing component.
func myComponent() code.Expr {
	return component(CTX_INDEX)
}

// subcomponent returns the component index held in a given slot of the
// executing component.
func subcomponent(slot code.Expr) code.Expr {
	return code.Index(MY_SUBCOMPONENTS, slot)
}

// createRoutine returns the name of the create routine for a given template
// header.
func createRoutine(header string, parallel bool) string {
	if parallel {
		return header + "_create_parallel"
	}
	//
	return header + "_create"
}

// runRoutine returns the name of the run routine for a given template header.
func runRoutine(header string, parallel bool) string {
	if parallel {
		return header + "_run_parallel"
	}
	//
	return header + "_run"
}
