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

// Expr is a fragment of target code denoting a value.  Expressions are built
// only through the constructors below, which take care of operator grouping, so
// that no caller ever concatenates raw strings.
type Expr string

// None is the absent value, returned by lowering when an instruction produces
// no value.
const None Expr = ""

// IsNone determines whether this expression is absent.
func (e Expr) IsNone() bool {
	return e == None
}

func (e Expr) String() string {
	return string(e)
}

// Id constructs an identifier (or any other atomic term).
func Id(name string) Expr {
	return Expr(name)
}

// Int constructs an unsigned integer literal.
func Int(v uint) Expr {
	return Expr(fmt.Sprintf("%d", v))
}

// Bool constructs a boolean literal.
func Bool(v bool) Expr {
	if v {
		return "true"
	}
	//
	return "false"
}

// Str constructs a string literal, escaping as necessary.  Non-printable bytes
// are emitted as three digit octal escapes, so the literal is unaffected by
// whatever follows it.
func Str(s string) Expr {
	var builder strings.Builder
	//
	builder.WriteByte('"')
	//
	for i := 0; i < len(s); i++ {
		c := s[i]
		//
		switch c {
		case '"':
			builder.WriteString("\\\"")
		case '\\':
			builder.WriteString("\\\\")
		case '\n':
			builder.WriteString("\\n")
		case '\t':
			builder.WriteString("\\t")
		case '\r':
			builder.WriteString("\\r")
		default:
			if c < 0x20 || c >= 0x7f {
				builder.WriteString(fmt.Sprintf("\\%03o", c))
			} else {
				builder.WriteByte(c)
			}
		}
	}
	//
	builder.WriteByte('"')
	//
	return Expr(builder.String())
}

// Call constructs a call of the given routine.
func Call(fn Expr, args ...Expr) Expr {
	return Expr(fmt.Sprintf("%s(%s)", fn, List(args...)))
}

// List joins a number of expressions with commas.
func List(args ...Expr) string {
	var strs = make([]string, len(args))
	//
	for i, arg := range args {
		strs[i] = string(arg)
	}
	//
	return strings.Join(strs, ",")
}

// Init constructs a brace initialiser (e.g. "{1,2,3}").
func Init(args ...Expr) Expr {
	return Expr(fmt.Sprintf("{%s}", List(args...)))
}

// Ints constructs a brace initialiser from unsigned integers.
func Ints(vals []uint) Expr {
	var args = make([]Expr, len(vals))
	//
	for i, v := range vals {
		args[i] = Int(v)
	}
	//
	return Init(args...)
}

// Bools constructs a brace initialiser from booleans.
func Bools(vals []bool) Expr {
	var args = make([]Expr, len(vals))
	//
	for i, v := range vals {
		args[i] = Bool(v)
	}
	//
	return Init(args...)
}

// Addr takes the address of an lvalue.
func Addr(e Expr) Expr {
	return "&" + e
}

// Deref dereferences a pointer.
func Deref(e Expr) Expr {
	return Expr(fmt.Sprintf("(*%s)", e))
}

// Index constructs an array access.
func Index(base Expr, index Expr) Expr {
	return Expr(fmt.Sprintf("%s[%s]", base, index))
}

// Arrow constructs a member access through a pointer.
func Arrow(base Expr, field string) Expr {
	return Expr(fmt.Sprintf("%s->%s", base, field))
}

// Dot constructs a member access.
func Dot(base Expr, field string) Expr {
	return Expr(fmt.Sprintf("%s.%s", base, field))
}

// Add constructs the sum of one or more terms.
func Add(terms ...Expr) Expr {
	return binary("+", terms)
}

// Mul constructs the product of two terms.  Each term is parenthesised unless
// atomic.
func Mul(lhs Expr, rhs Expr) Expr {
	return Expr(fmt.Sprintf("%s*%s", group(lhs), group(rhs)))
}

// Lt constructs a less-than comparison.
func Lt(lhs Expr, rhs Expr) Expr {
	return Expr(fmt.Sprintf("%s < %s", lhs, rhs))
}

// Gt constructs a greater-than comparison.
func Gt(lhs Expr, rhs Expr) Expr {
	return Expr(fmt.Sprintf("%s > %s", lhs, rhs))
}

// Not constructs a logical negation.
func Not(e Expr) Expr {
	return Expr(fmt.Sprintf("!(%s)", e))
}

// Paren wraps an expression in parentheses.
func Paren(e Expr) Expr {
	return Expr(fmt.Sprintf("(%s)", e))
}

// Lambda constructs a lambda capturing the given variables and returning a
// single expression.
func Lambda(captures []Expr, body Expr) Expr {
	return Expr(fmt.Sprintf("[%s](){return %s;}", List(captures...), body))
}

func binary(op string, terms []Expr) Expr {
	var strs = make([]string, len(terms))
	//
	for i, t := range terms {
		strs[i] = string(t)
	}
	//
	return Expr(strings.Join(strs, op))
}

// group parenthesises any expression which is not an identifier, literal,
// access or call.
func group(e Expr) Expr {
	var (
		depth int
		s     = string(e)
	)
	//
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '-':
			if i+1 < len(s) && s[i+1] == '>' {
				// member access
				i++
			} else if depth == 0 {
				return Paren(e)
			}
		case '+', '*', '/', ' ', '?', '<', '>', '=', '!', '&':
			if depth == 0 {
				return Paren(e)
			}
		}
	}
	//
	return e
}
