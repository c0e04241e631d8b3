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
package sexp

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/consensys/go-analog/pkg/util/collection/stack"
)

// SExp is an S-Expression is either a List of zero or more S-Expressions, an
// Array of zero or more S-Expressions, or a Symbol.
type SExp interface {
	// AsList checks whether this S-Expression is a list and, if
	// so, returns it.  Otherwise, it returns nil.
	AsList() *List
	// AsArray checks whether this S-Expression is an array and, if so, returns
	// it.  Otherwise, it returns nil.
	AsArray() *Array
	// AsSymbol checks whether this S-Expression is a symbol and,
	// if so, returns it.  Otherwise, it returns nil.
	AsSymbol() *Symbol
	// String generates a string representation which may (may not) be quoted.
	// Quoting is used to manage symbol names which contain whitespace
	// characters and braces, etc.
	String(quote bool) string
}

// ===================================================================
// List
// ===================================================================

// List represents a list of zero or more S-Expressions.
type List struct {
	Elements []SExp
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*List)(nil)

// NewList creates a new list from a given array of S-Expressions.
func NewList(elements []SExp) *List {
	return &List{elements}
}

// NewTaggedList creates a new list whose first element is a symbol with a given
// tag, followed by zero or more S-Expressions.
func NewTaggedList(tag string, elements ...SExp) *List {
	items := make([]SExp, 1+len(elements))
	items[0] = NewSymbol(tag)
	copy(items[1:], elements)
	//
	return &List{items}
}

// AsArray returns nil for a list.
func (l *List) AsArray() *Array { return nil }

// AsList returns the given list.
func (l *List) AsList() *List { return l }

// AsSymbol returns nil for a list.
func (l *List) AsSymbol() *Symbol { return nil }

// Len gets the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

// Get the ith element of this list
func (l *List) Get(i int) SExp { return l.Elements[i] }

// Append a new element onto this list.
func (l *List) Append(element SExp) {
	l.Elements = append(l.Elements, element)
}

// Head returns the symbol at the start of this list, or the empty string if
// the list is empty or does not start with a symbol.
func (l *List) Head() string {
	if len(l.Elements) > 0 {
		if s := l.Elements[0].AsSymbol(); s != nil {
			return s.Value
		}
	}
	//
	return ""
}

func (l *List) String(quote bool) string {
	return render(l, quote)
}

// ===================================================================
// Array
// ===================================================================

// Array represents a sequence of zero or more S-Expressions, written with square
// brackets.  Arrays are used for flat data, such as breakpoint times.
type Array struct {
	Elements []SExp
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*Array)(nil)

// NewArray creates a new Array from a given array of S-Expressions.
func NewArray(elements []SExp) *Array {
	return &Array{elements}
}

// AsArray returns the given array.
func (a *Array) AsArray() *Array { return a }

// AsList returns nil for an Array.
func (a *Array) AsList() *List { return nil }

// AsSymbol returns nil for an Array.
func (a *Array) AsSymbol() *Symbol { return nil }

// Len gets the number of elements in this Array.
func (a *Array) Len() int { return len(a.Elements) }

// Get the ith element of this Array
func (a *Array) Get(i int) SExp { return a.Elements[i] }

func (a *Array) String(quote bool) string {
	return render(a, quote)
}

// ===================================================================
// Symbol
// ===================================================================

// Symbol represents a terminating symbol.
type Symbol struct {
	Value string
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*Symbol)(nil)

// NewSymbol creates a new symbol from a given string.
func NewSymbol(value string) *Symbol {
	return &Symbol{value}
}

// AsArray returns nil for a symbol.
func (s *Symbol) AsArray() *Array { return nil }

// AsList returns nil for a symbol.
func (s *Symbol) AsList() *List { return nil }

// AsSymbol returns the given symbol
func (s *Symbol) AsSymbol() *Symbol { return s }

func (s *Symbol) String(quote bool) string {
	if quote {
		// Check whether suitable symbol
		for _, r := range s.Value {
			if !isSymbolLetter(r) {
				return fmt.Sprintf("\"%s\"", s.Value)
			}
		}
	}
	// No quote required
	return s.Value
}

func isSymbolLetter(r rune) bool {
	return r != '(' && r != ')' && r != '[' && r != ']' && r != ';' && !unicode.IsSpace(r)
}

// ===================================================================
// Rendering
// ===================================================================

// A piece of output which is either a term still to be rendered, or some
// literal text.
type piece struct {
	term SExp
	text string
}

// Render an S-Expression on a single line.  Nested terms are expanded on an
// explicit worklist, hence arbitrarily deep terms can be rendered.
func render(root SExp, quote bool) string {
	var (
		builder  strings.Builder
		worklist = stack.NewStack[piece]()
	)
	//
	worklist.Push(piece{term: root})
	//
	for !worklist.IsEmpty() {
		switch next := worklist.Pop(); t := next.term.(type) {
		case nil:
			builder.WriteString(next.text)
		case *Symbol:
			builder.WriteString(t.String(quote))
		case *List:
			builder.WriteString("(")
			expand(worklist, t.Elements, ")", " ")
		case *Array:
			builder.WriteString("[")
			expand(worklist, t.Elements, "]", " ")
		}
	}
	//
	return builder.String()
}

// Schedule the elements of a list or array, separated by a given separator and
// followed by a given terminator.
func expand(worklist *stack.Stack[piece], elements []SExp, terminator string, separator string) {
	worklist.Push(piece{text: terminator})
	//
	for i := len(elements) - 1; i >= 0; i-- {
		worklist.Push(piece{term: elements[i]})
		//
		if i != 0 {
			worklist.Push(piece{text: separator})
		}
	}
}
