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
package waveform

import (
	"fmt"

	"github.com/consensys/go-analog/pkg/util/collection/stack"
)

// Visitor describes a bottom-up computation over waveforms.  There is exactly
// one method per waveform variant, each of which receives the results already
// computed for the node's child waveforms.  Scalars held by a node are not
// visited automatically.
type Visitor[T any] interface {
	Constant(*Constant) (T, error)
	Linear(*Linear) (T, error)
	Poly(*Poly) (T, error)
	Native(*Native) (T, error)
	Negative(node *Negative, inner T) (T, error)
	Add(node *Add, lhs T, rhs T) (T, error)
	Scale(node *Scale, inner T) (T, error)
	Slice(node *Slice, inner T) (T, error)
	Append(node *Append, parts []T) (T, error)
	Record(node *Record, inner T) (T, error)
	Sample(node *Sample, inner T) (T, error)
	Smooth(node *Smooth, inner T) (T, error)
	Aligned(node *Aligned, inner T) (T, error)
}

// Fold applies a visitor bottom-up over a given waveform, without recursion.
func Fold[T any](w Waveform, visitor Visitor[T]) (T, error) {
	return FoldWith(w, visitor, nil)
}

// FoldWith applies a visitor bottom-up over a given waveform, except that the
// children of any node for which opaque holds are not visited.  Instead, such
// nodes receive zero values for the results of their children.  A nil opaque
// function visits every node.
func FoldWith[T any](w Waveform, visitor Visitor[T], opaque func(Waveform) bool) (T, error) {
	children := Children
	//
	if opaque != nil {
		children = func(w Waveform) []Waveform {
			if opaque(w) {
				return nil
			}
			//
			return Children(w)
		}
	}
	//
	return stack.Fold(w, children, func(node Waveform, args []T) (T, error) {
		if len(args) == 0 {
			// Opaque (or leaf) node.
			args = make([]T, len(Children(node)))
		}
		//
		return dispatch(node, args, visitor)
	})
}

// Children returns the immediate child waveforms of a given waveform, in
// left-to-right order.
func Children(w Waveform) []Waveform {
	switch w := w.(type) {
	case *Constant, *Linear, *Poly, *Native:
		return nil
	case *Negative:
		return []Waveform{w.Waveform}
	case *Add:
		return []Waveform{w.Lhs, w.Rhs}
	case *Scale:
		return []Waveform{w.Waveform}
	case *Slice:
		return []Waveform{w.Waveform}
	case *Append:
		return w.Waveforms
	case *Record:
		return []Waveform{w.Waveform}
	case *Sample:
		return []Waveform{w.Waveform}
	case *Smooth:
		return []Waveform{w.Waveform}
	case *Aligned:
		return []Waveform{w.Waveform}
	default:
		panic(fmt.Sprintf("unknown waveform encountered: %T", w))
	}
}

// Walk visits every node of a given waveform (per occurrence) in pre-order.
func Walk(w Waveform, fn func(Waveform)) {
	worklist := stack.NewStack[Waveform]()
	worklist.Push(w)
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		fn(next)
		worklist.PushReversed(Children(next))
	}
}

func dispatch[T any](w Waveform, args []T, v Visitor[T]) (T, error) {
	switch w := w.(type) {
	case *Constant:
		return v.Constant(w)
	case *Linear:
		return v.Linear(w)
	case *Poly:
		return v.Poly(w)
	case *Native:
		return v.Native(w)
	case *Negative:
		return v.Negative(w, args[0])
	case *Add:
		return v.Add(w, args[0], args[1])
	case *Scale:
		return v.Scale(w, args[0])
	case *Slice:
		return v.Slice(w, args[0])
	case *Append:
		return v.Append(w, args)
	case *Record:
		return v.Record(w, args[0])
	case *Sample:
		return v.Sample(w, args[0])
	case *Smooth:
		return v.Smooth(w, args[0])
	case *Aligned:
		return v.Aligned(w, args[0])
	default:
		panic(fmt.Sprintf("unknown waveform encountered: %T", w))
	}
}
