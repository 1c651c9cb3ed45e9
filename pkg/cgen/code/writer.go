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
package code

import (
	"bufio"
	"io"
	"strings"
)

// Writer writes statements as indented target code.  The first error
// encountered is retained and all subsequent writes are ignored.
type Writer struct {
	out    *bufio.Writer
	indent int
	err    error
}

// NewWriter constructs a writer for a given output sink.
func NewWriter(out io.Writer) *Writer {
	return &Writer{bufio.NewWriter(out), 0, nil}
}

// Write writes zero or more statements at the current indentation level.
func (w *Writer) Write(stmts ...Stmt) {
	for _, stmt := range stmts {
		stmt.write(w)
	}
}

// Flush flushes any buffered output, returning the first error encountered
// whilst writing (if any).
func (w *Writer) Flush() error {
	if w.err == nil {
		w.err = w.out.Flush()
	}
	//
	return w.err
}

func (w *Writer) body(stmts []Stmt) {
	w.indent++
	w.Write(stmts...)
	w.indent--
}

func (w *Writer) blank() {
	w.emit("\n")
}

func (w *Writer) line(text string) {
	w.emit(strings.Repeat("\t", w.indent))
	w.emit(text)
	w.emit("\n")
}

func (w *Writer) emit(text string) {
	if w.err == nil {
		_, w.err = w.out.WriteString(text)
	}
}

// Render converts one or more statements into a string.
func Render(stmts ...Stmt) string {
	var (
		builder strings.Builder
		w       = NewWriter(&builder)
	)
	//
	w.Write(stmts...)
	// cannot fail for a strings.Builder
	_ = w.Flush()
	//
	return builder.String()
}
