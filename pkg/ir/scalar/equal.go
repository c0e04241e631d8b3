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
package scalar

import (
	"github.com/consensys/go-analog/pkg/util/collection/stack"
	"github.com/shopspring/decimal"
)

// Equal determines whether two scalar expressions are structurally identical.
// The operands of min and max are compared as sets, whilst all other
// composite expressions are compared as ordered tuples of children.  Literal
// values are compared numerically, so 1.0 and 1 are equal.
func Equal(lhs Scalar, rhs Scalar) bool {
	type pair struct{ lhs, rhs Scalar }
	//
	worklist := stack.NewStack[pair]()
	worklist.Push(pair{lhs, rhs})
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		l, r := next.lhs, next.rhs
		// Fast path (shared structure)
		if l == r {
			continue
		} else if l.Hash() != 0 && r.Hash() != 0 && l.Hash() != r.Hash() {
			return false
		}
		//
		switch l := l.(type) {
		case *Literal:
			if r, ok := r.(*Literal); !ok || !l.Value.Equal(r.Value) {
				return false
			}
		case *Variable:
			if r, ok := r.(*Variable); !ok || l.Name != r.Name {
				return false
			}
		case *AssignedVariable:
			if r, ok := r.(*AssignedVariable); !ok || l.Name != r.Name || !l.Value.Equal(r.Value) {
				return false
			}
		case *Min:
			if r, ok := r.(*Min); !ok || !equalSets(l.Exprs, r.Exprs) {
				return false
			}
		case *Max:
			if r, ok := r.(*Max); !ok || !equalSets(l.Exprs, r.Exprs) {
				return false
			}
		case *Slice:
			r, ok := r.(*Slice)
			if !ok || !sameShape(l.Interval.Start, r.Interval.Start) || !sameShape(l.Interval.Stop, r.Interval.Stop) {
				return false
			}
			//
			pushPairs(worklist, Children(l), Children(r), func(a, b Scalar) pair { return pair{a, b} })
		default:
			if !sameKind(l, r) {
				return false
			}
			//
			pushPairs(worklist, Children(l), Children(r), func(a, b Scalar) pair { return pair{a, b} })
		}
	}
	//
	return true
}

// EqualValues checks whether two decimal sequences hold numerically equal
// values.
func EqualValues(lhs []decimal.Decimal, rhs []decimal.Decimal) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !lhs[i].Equal(rhs[i]) {
			return false
		}
	}
	//
	return true
}

func pushPairs[P any](worklist *stack.Stack[P], lhs []Scalar, rhs []Scalar, mk func(Scalar, Scalar) P) {
	for i := range lhs {
		worklist.Push(mk(lhs[i], rhs[i]))
	}
}

func sameKind(lhs Scalar, rhs Scalar) bool {
	switch lhs.(type) {
	case *Negative:
		_, ok := rhs.(*Negative)
		return ok
	case *Add:
		_, ok := rhs.(*Add)
		return ok
	case *Mul:
		_, ok := rhs.(*Mul)
		return ok
	case *Div:
		_, ok := rhs.(*Div)
		return ok
	default:
		return false
	}
}

// Check optional bounds are either both present, or both absent.
func sameShape(lhs Scalar, rhs Scalar) bool {
	return (lhs == nil) == (rhs == nil)
}

func equalSets(lhs []Scalar, rhs []Scalar) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	// Operands are unique, hence matching one way suffices.
	for _, l := range lhs {
		if !contains(rhs, l) {
			return false
		}
	}
	//
	return true
}
