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
	"fmt"

	"github.com/consensys/go-analog/pkg/util/collection/stack"
)

// Visitor describes a bottom-up computation over scalar expressions.  There is
// exactly one method per scalar variant, each of which receives the results
// already computed for the node's children.  Adding a new variant therefore
// breaks the build of every pass which fails to handle it.
type Visitor[T any] interface {
	Literal(*Literal) (T, error)
	Variable(*Variable) (T, error)
	AssignedVariable(*AssignedVariable) (T, error)
	Negative(node *Negative, expr T) (T, error)
	Add(node *Add, lhs T, rhs T) (T, error)
	Mul(node *Mul, lhs T, rhs T) (T, error)
	Div(node *Div, lhs T, rhs T) (T, error)
	Min(node *Min, exprs []T) (T, error)
	Max(node *Max, exprs []T) (T, error)
	// Slice receives nil for any bound not present in the interval.
	Slice(node *Slice, expr T, start *T, stop *T) (T, error)
}

// Fold applies a visitor bottom-up over a given expression, without recursion.
func Fold[T any](expr Scalar, visitor Visitor[T]) (T, error) {
	return stack.Fold(expr, Children, func(node Scalar, args []T) (T, error) {
		return dispatch(node, args, visitor)
	})
}

// Children returns the immediate subexpressions of a given expression, in
// left-to-right order.  The children of a slice are its enclosed expression,
// followed by those bounds which are present.
func Children(expr Scalar) []Scalar {
	switch e := expr.(type) {
	case *Literal, *Variable, *AssignedVariable:
		return nil
	case *Negative:
		return []Scalar{e.Expr}
	case *Add:
		return []Scalar{e.Lhs, e.Rhs}
	case *Mul:
		return []Scalar{e.Lhs, e.Rhs}
	case *Div:
		return []Scalar{e.Lhs, e.Rhs}
	case *Min:
		return e.Exprs
	case *Max:
		return e.Exprs
	case *Slice:
		children := []Scalar{e.Expr}
		//
		if e.Interval.Start != nil {
			children = append(children, e.Interval.Start)
		}
		//
		if e.Interval.Stop != nil {
			children = append(children, e.Interval.Stop)
		}
		//
		return children
	default:
		panic(fmt.Sprintf("unknown scalar encountered: %T", expr))
	}
}

// Walk visits every node of a given expression exactly once (per occurrence),
// in pre-order.
func Walk(expr Scalar, fn func(Scalar)) {
	worklist := stack.NewStack[Scalar]()
	worklist.Push(expr)
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		fn(next)
		worklist.PushReversed(Children(next))
	}
}

func dispatch[T any](expr Scalar, args []T, v Visitor[T]) (T, error) {
	switch e := expr.(type) {
	case *Literal:
		return v.Literal(e)
	case *Variable:
		return v.Variable(e)
	case *AssignedVariable:
		return v.AssignedVariable(e)
	case *Negative:
		return v.Negative(e, args[0])
	case *Add:
		return v.Add(e, args[0], args[1])
	case *Mul:
		return v.Mul(e, args[0], args[1])
	case *Div:
		return v.Div(e, args[0], args[1])
	case *Min:
		return v.Min(e, args)
	case *Max:
		return v.Max(e, args)
	case *Slice:
		var start, stop *T
		//
		index := 1
		//
		if e.Interval.Start != nil {
			start = &args[index]
			index++
		}
		//
		if e.Interval.Stop != nil {
			stop = &args[index]
		}
		//
		return v.Slice(e, args[0], start, stop)
	default:
		panic(fmt.Sprintf("unknown scalar encountered: %T", expr))
	}
}
