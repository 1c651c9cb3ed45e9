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
	"fmt"
	"strings"
)

// Stmt is a single statement of target code.  The set of statements is closed.
type Stmt interface {
	fmt.Stringer
	// Children returns the nested statement lists of this statement (if any).
	Children() [][]Stmt
	// writes this statement using the given writer.
	write(w *Writer)
}

// Line is an expression evaluated for its side effects (e.g. a call).
type Line struct {
	Expr Expr
}

// Decl declares (and optionally initialises) a local variable.  When Size is
// not None, an array of that size is declared.
type Decl struct {
	Type string
	Name string
	Size Expr
	Init Expr
}

// Assign updates an lvalue using the given operator (e.g. "=" or "+=").
type Assign struct {
	Lhs Expr
	Op  string
	Rhs Expr
}

// Comment is a single line comment.
type Comment struct {
	Text string
}

// Block is a nested scope.
type Block struct {
	Body []Stmt
}

// If is a conditional, where the else branch is omitted when empty.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is a loop executing its body whilst the condition holds.
type While struct {
	Cond Expr
	Body []Stmt
}

// For is a counting loop over an unsigned index variable from zero up to (but
// not including) an upper bound.
type For struct {
	Var   string
	Bound Expr
	Body  []Stmt
}

// Return exits the current routine, optionally with a value.
type Return struct {
	Value Expr
}

// Raw is a line of target code emitted verbatim (e.g. a preprocessor
// directive).
type Raw struct {
	Text string
}

// Func is a routine definition.
type Func struct {
	Result string
	Name   string
	Params []string
	Body   []Stmt
}

// Stmts is a convenience for constructing a statement list.
func Stmts(stmts ...Stmt) []Stmt {
	return stmts
}

// Scoped wraps the given statements in a block, unless there are none.
func Scoped(stmts []Stmt) []Stmt {
	if len(stmts) == 0 {
		return nil
	}
	//
	return []Stmt{&Block{stmts}}
}

// Children implementation for Stmt interface.
func (p *Line) Children() [][]Stmt { return nil }

// Children implementation for Stmt interface.
func (p *Decl) Children() [][]Stmt { return nil }

// Children implementation for Stmt interface.
func (p *Assign) Children() [][]Stmt { return nil }

// Children implementation for Stmt interface.
func (p *Comment) Children() [][]Stmt { return nil }

// Children implementation for Stmt interface.
func (p *Block) Children() [][]Stmt { return [][]Stmt{p.Body} }

// Children implementation for Stmt interface.
func (p *If) Children() [][]Stmt { return [][]Stmt{p.Then, p.Else} }

// Children implementation for Stmt interface.
func (p *While) Children() [][]Stmt { return [][]Stmt{p.Body} }

// Children implementation for Stmt interface.
func (p *For) Children() [][]Stmt { return [][]Stmt{p.Body} }

// Children implementation for Stmt interface.
func (p *Return) Children() [][]Stmt { return nil }

// Children implementation for Stmt interface.
func (p *Raw) Children() [][]Stmt { return nil }

// Children implementation for Stmt interface.
func (p *Func) Children() [][]Stmt { return [][]Stmt{p.Body} }

func (p *Line) write(w *Writer) {
	w.line(fmt.Sprintf("%s;", p.Expr))
}

func (p *Decl) write(w *Writer) {
	var decl = fmt.Sprintf("%s %s", p.Type, p.Name)
	//
	if !p.Size.IsNone() {
		decl = fmt.Sprintf("%s[%s]", decl, p.Size)
	}
	//
	if !p.Init.IsNone() {
		decl = fmt.Sprintf("%s = %s", decl, p.Init)
	}
	//
	w.line(decl + ";")
}

func (p *Assign) write(w *Writer) {
	w.line(fmt.Sprintf("%s %s %s;", p.Lhs, p.Op, p.Rhs))
}

func (p *Comment) write(w *Writer) {
	w.line("// " + p.Text)
}

func (p *Block) write(w *Writer) {
	w.line("{")
	w.body(p.Body)
	w.line("}")
}

func (p *If) write(w *Writer) {
	w.line(fmt.Sprintf("if (%s) {", p.Cond))
	w.body(p.Then)
	//
	if len(p.Else) > 0 {
		w.line("} else {")
		w.body(p.Else)
	}
	//
	w.line("}")
}

func (p *While) write(w *Writer) {
	w.line(fmt.Sprintf("while (%s) {", p.Cond))
	w.body(p.Body)
	w.line("}")
}

func (p *For) write(w *Writer) {
	w.line(fmt.Sprintf("for (uint %s = 0; %s < %s; %s++) {", p.Var, p.Var, p.Bound, p.Var))
	w.body(p.Body)
	w.line("}")
}

func (p *Return) write(w *Writer) {
	if p.Value.IsNone() {
		w.line("return;")
	} else {
		w.line(fmt.Sprintf("return %s;", p.Value))
	}
}

func (p *Raw) write(w *Writer) {
	w.line(p.Text)
}

func (p *Func) write(w *Writer) {
	w.line(fmt.Sprintf("%s %s(%s) {", p.Result, p.Name, strings.Join(p.Params, ", ")))
	w.body(p.Body)
	w.line("}")
	w.blank()
}

func (p *Line) String() string    { return Render(p) }
func (p *Decl) String() string    { return Render(p) }
func (p *Assign) String() string  { return Render(p) }
func (p *Comment) String() string { return Render(p) }
func (p *Block) String() string   { return Render(p) }
func (p *If) String() string      { return Render(p) }
func (p *While) String() string   { return Render(p) }
func (p *For) String() string     { return Render(p) }
func (p *Return) String() string  { return Render(p) }
func (p *Raw) String() string     { return Render(p) }
func (p *Func) String() string    { return Render(p) }

// Walk visits every statement in the given list (and all nested statements)
// in textual order.  Nested statements are skipped when the visitor returns
// false.
func Walk(stmts []Stmt, visitor func(Stmt) bool) {
	for _, stmt := range stmts {
		if visitor(stmt) {
			for _, child := range stmt.Children() {
				Walk(child, visitor)
			}
		}
	}
}
