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

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
)

// InvariantError signals that an instruction tree violates a structural
// property on which lowering relies (e.g. an address / location combination
// which cannot arise from a correct producer).  Such errors are raised by
// panicking during lowering, and are converted into an error at the top-level
// entry points.
type InvariantError struct {
	// Line of the offending instruction.
	Line uint
	// MessageId of the offending instruction.
	MessageId uint
	// Reason explains the violation.
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invalid instruction (line %d, template %d): %s", e.Line, e.MessageId, e.Reason)
}

// invariant aborts lowering of the given instruction.
func invariant(insn bucket.Instruction, format string, args ...any) {
	var meta bucket.Meta
	//
	if insn != nil {
		meta = insn.Metadata()
	}
	//
	panic(&InvariantError{meta.Line, meta.MessageId, fmt.Sprintf(format, args...)})
}

// recoverInvariant converts a pending InvariantError panic into an error.
// Panics of any other kind are propagated.  This must be deferred directly.
func recoverInvariant(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(*InvariantError); ok {
			*err = e
			return
		}
		//
		panic(r)
	}
}
