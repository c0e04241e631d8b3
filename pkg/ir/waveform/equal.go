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
	"reflect"

	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/util/collection/stack"
)

// Equal determines whether two waveforms are structurally identical.  Native
// waveforms are equal only when they share a name, the same function and equal
// parameters.
func Equal(lhs Waveform, rhs Waveform) bool {
	type pair struct{ lhs, rhs Waveform }
	//
	worklist := stack.NewStack[pair]()
	worklist.Push(pair{lhs, rhs})
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		l, r := next.lhs, next.rhs
		//
		if l == r {
			continue
		} else if l.Hash() != r.Hash() || !equalAttributes(l, r) {
			return false
		}
		// Compare scalars held directly
		ls, rs := Scalars(l), Scalars(r)
		//
		if len(ls) != len(rs) {
			return false
		}
		//
		for i := range ls {
			if !scalar.Equal(ls[i], rs[i]) {
				return false
			}
		}
		// Compare children
		lc, rc := Children(l), Children(r)
		//
		if len(lc) != len(rc) {
			return false
		}
		//
		for i := range lc {
			worklist.Push(pair{lc[i], rc[i]})
		}
	}
	//
	return true
}

// Check two nodes have the same variant and agree on all attributes which are
// neither scalars nor child waveforms.
func equalAttributes(lhs Waveform, rhs Waveform) bool {
	switch l := lhs.(type) {
	case *Constant:
		_, ok := rhs.(*Constant)
		return ok
	case *Linear:
		_, ok := rhs.(*Linear)
		return ok
	case *Poly:
		r, ok := rhs.(*Poly)
		return ok && len(l.Coeffs) == len(r.Coeffs)
	case *Native:
		r, ok := rhs.(*Native)
		return ok && l.Name == r.Name && sameFunction(l.Fn, r.Fn)
	case *Negative:
		_, ok := rhs.(*Negative)
		return ok
	case *Add:
		_, ok := rhs.(*Add)
		return ok
	case *Scale:
		_, ok := rhs.(*Scale)
		return ok
	case *Slice:
		r, ok := rhs.(*Slice)
		return ok && (l.Interval.Start == nil) == (r.Interval.Start == nil) &&
			(l.Interval.Stop == nil) == (r.Interval.Stop == nil)
	case *Append:
		_, ok := rhs.(*Append)
		return ok
	case *Record:
		r, ok := rhs.(*Record)
		return ok && l.Var == r.Var && l.Side == r.Side
	case *Sample:
		r, ok := rhs.(*Sample)
		return ok && l.Interpolation == r.Interpolation
	case *Smooth:
		r, ok := rhs.(*Smooth)
		return ok && l.Kernel == r.Kernel
	case *Aligned:
		r, ok := rhs.(*Aligned)
		return ok && l.Alignment == r.Alignment && l.Value.IsBoundary() == r.Value.IsBoundary() &&
			(!l.Value.IsBoundary() || l.Value.Side == r.Value.Side)
	default:
		return false
	}
}

func sameFunction(lhs NativeFn, rhs NativeFn) bool {
	if lhs == nil || rhs == nil {
		return lhs == nil && rhs == nil
	}
	//
	return reflect.ValueOf(lhs).Pointer() == reflect.ValueOf(rhs).Pointer()
}
