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
	"strings"

	"github.com/consensys/go-analog/pkg/util/collection/stack"
)

// Pretty renders an S-Expression across multiple lines, such that (where
// possible) no line exceeds a given width.  Lists which do not fit are broken
// after their head symbol, with remaining elements indented beneath.
func Pretty(root SExp, width uint) string {
	type line struct {
		term   SExp
		text   string
		indent uint
	}
	//
	var (
		builder  strings.Builder
		lengths  = measure(root)
		worklist = stack.NewStack[line]()
	)
	//
	worklist.Push(line{term: root})
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		if next.term == nil {
			builder.WriteString(next.text)
			continue
		}
		//
		list := next.term.AsList()
		// Check whether it fits (or cannot be broken)
		switch {
		case list == nil || next.indent+lengths[next.term] <= width || list.Len() < 2:
			builder.WriteString(next.term.String(true))
		default:
			indent := next.indent + 2
			//
			builder.WriteString("(")
			builder.WriteString(list.Get(0).String(true))
			worklist.Push(line{text: ")"})
			//
			for i := list.Len() - 1; i >= 1; i-- {
				worklist.Push(line{term: list.Get(i), indent: indent})
				worklist.Push(line{text: "\n" + strings.Repeat(" ", int(indent))})
			}
		}
	}
	//
	return builder.String()
}

// Determine the single-line width of every term within an S-Expression.
func measure(root SExp) map[SExp]uint {
	lengths := make(map[SExp]uint)
	//
	stack.MustFold(root, elements, func(term SExp, args []uint) uint {
		var n uint
		//
		if s := term.AsSymbol(); s != nil {
			n = uint(len(s.String(true)))
		} else {
			// brackets and separators
			n = 2 + uint(max(0, len(args)-1))
			//
			for _, arg := range args {
				n += arg
			}
		}
		//
		lengths[term] = n
		//
		return n
	})
	//
	return lengths
}

func elements(term SExp) []SExp {
	if l := term.AsList(); l != nil {
		return l.Elements
	} else if a := term.AsArray(); a != nil {
		return a.Elements
	}
	//
	return nil
}
