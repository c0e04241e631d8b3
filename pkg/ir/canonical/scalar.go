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
package canonical

import (
	"fmt"

	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/shopspring/decimal"
)

// Rewrite a scalar node whose children have already been canonicalized.
// Assigned variables are treated as literals throughout.
func rewriteScalar(expr scalar.Scalar, args []scalar.Scalar) (scalar.Scalar, error) {
	switch e := expr.(type) {
	case *scalar.Literal, *scalar.Variable, *scalar.AssignedVariable:
		return e, nil
	case *scalar.Negative:
		return negative(args[0]), nil
	case *scalar.Add:
		return sum(args[0], args[1]), nil
	case *scalar.Mul:
		return product(args[0], args[1]), nil
	case *scalar.Div:
		return quotient(e, args[0], args[1])
	case *scalar.Min:
		return minimum(e, args)
	case *scalar.Max:
		return maximum(e, args)
	case *scalar.Slice:
		var start, stop scalar.Scalar
		//
		index := 1
		//
		if e.Interval.Start != nil {
			start = args[index]
			index++
		}
		//
		if e.Interval.Stop != nil {
			stop = args[index]
		}
		//
		return slice(e, args[0], scalar.NewInterval(start, stop))
	default:
		panic(fmt.Sprintf("unknown scalar encountered: %T", expr))
	}
}

func negative(expr scalar.Scalar) scalar.Scalar {
	if v, ok := scalar.ValueOf(expr); ok {
		return scalar.Lit(v.Neg())
	} else if e, ok := expr.(*scalar.Negative); ok {
		return e.Expr
	}
	//
	return scalar.Neg(expr)
}

func sum(lhs scalar.Scalar, rhs scalar.Scalar) scalar.Scalar {
	l, lok := scalar.ValueOf(lhs)
	r, rok := scalar.ValueOf(rhs)
	//
	switch {
	case lok && rok:
		return scalar.Lit(l.Add(r))
	case scalar.IsZero(lhs):
		return rhs
	case scalar.IsZero(rhs):
		return lhs
	case isNegationOf(rhs, lhs) || isNegationOf(lhs, rhs):
		return scalar.Zero
	}
	// -(a) + -(b) ==> -(a+b)
	if ln, ok := lhs.(*scalar.Negative); ok {
		if rn, ok := rhs.(*scalar.Negative); ok {
			return negative(sum(ln.Expr, rn.Expr))
		}
	}
	//
	return scalar.Sum(lhs, rhs)
}

func isNegationOf(expr scalar.Scalar, other scalar.Scalar) bool {
	e, ok := expr.(*scalar.Negative)
	return ok && scalar.Equal(e.Expr, other)
}

func product(lhs scalar.Scalar, rhs scalar.Scalar) scalar.Scalar {
	l, lok := scalar.ValueOf(lhs)
	r, rok := scalar.ValueOf(rhs)
	//
	switch {
	case lok && rok:
		return scalar.Lit(l.Mul(r))
	case scalar.IsZero(lhs) || scalar.IsZero(rhs):
		return scalar.Zero
	case scalar.IsOne(lhs):
		return rhs
	case scalar.IsOne(rhs):
		return lhs
	}
	//
	return scalar.Product(lhs, rhs)
}

func quotient(node scalar.Scalar, lhs scalar.Scalar, rhs scalar.Scalar) (scalar.Scalar, error) {
	l, lok := scalar.ValueOf(lhs)
	r, rok := scalar.ValueOf(rhs)
	//
	switch {
	case rok && r.IsZero():
		return nil, &failure.DivisionByZero{Expression: node.String()}
	case lok && rok:
		return scalar.Lit(l.Div(r)), nil
	case scalar.IsOne(rhs):
		return lhs, nil
	case scalar.IsZero(lhs):
		return scalar.Zero, nil
	}
	//
	return scalar.Quotient(lhs, rhs), nil
}

func minimum(node scalar.Scalar, args []scalar.Scalar) (scalar.Scalar, error) {
	if len(args) == 0 {
		return nil, failure.Malformedf(node, "minimum of no operands")
	}
	//
	members := flatten(args, decimal.Min, func(e scalar.Scalar) []scalar.Scalar {
		if m, ok := e.(*scalar.Min); ok {
			return m.Exprs
		}
		//
		return nil
	})
	//
	if result := scalar.Minimum(members...); len(result.Exprs) > 1 {
		return result, nil
	}
	//
	return members[0], nil
}

func maximum(node scalar.Scalar, args []scalar.Scalar) (scalar.Scalar, error) {
	if len(args) == 0 {
		return nil, failure.Malformedf(node, "maximum of no operands")
	}
	//
	members := flatten(args, decimal.Max, func(e scalar.Scalar) []scalar.Scalar {
		if m, ok := e.(*scalar.Max); ok {
			return m.Exprs
		}
		//
		return nil
	})
	//
	if result := scalar.Maximum(members...); len(result.Exprs) > 1 {
		return result, nil
	}
	//
	return members[0], nil
}

// Flatten the operands of a minimum or maximum, splicing in the operands of
// nested nodes of the same kind.  All constant operands are folded into a
// single literal, which is placed last.
func flatten(args []scalar.Scalar, fold func(decimal.Decimal, ...decimal.Decimal) decimal.Decimal,
	nested func(scalar.Scalar) []scalar.Scalar) []scalar.Scalar {
	var (
		members []scalar.Scalar
		values  []decimal.Decimal
	)
	//
	for _, arg := range args {
		operands := nested(arg)
		//
		if operands == nil {
			operands = []scalar.Scalar{arg}
		}
		//
		for _, e := range operands {
			if v, ok := scalar.ValueOf(e); ok {
				values = append(values, v)
			} else {
				members = append(members, e)
			}
		}
	}
	//
	if len(values) > 0 {
		members = append(members, scalar.Lit(fold(values[0], values[1:]...)))
	}
	//
	return members
}

// Rewrite a slice duration.  A slice over the full extent is the extent
// itself, whilst a slice with constant extent and bounds is folded.  Errors are
// reported against the given node.
func slice(node fmt.Stringer, expr scalar.Scalar, interval scalar.Interval) (scalar.Scalar, error) {
	if interval.IsFull() {
		return expr, nil
	}
	//
	extent, ok := scalar.ValueOf(expr)
	start, sok := bound(interval.Start)
	stop, eok := bound(interval.Stop)
	//
	if ok && sok && eok {
		v, err := scalar.SliceDuration(node, extent, start, stop)
		if err != nil {
			return nil, err
		}
		//
		return scalar.Lit(v), nil
	}
	//
	return scalar.SliceOf(expr, interval), nil
}

// Determine the value of an optional bound, where an absent bound is
// trivially constant.
func bound(expr scalar.Scalar) (*decimal.Decimal, bool) {
	if expr == nil {
		return nil, true
	} else if v, ok := scalar.ValueOf(expr); ok {
		return &v, true
	}
	//
	return nil, false
}
