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
	"maps"
	"slices"

	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/shopspring/decimal"
)

// Bindings maps variable names to their values.
type Bindings map[string]decimal.Decimal

// Clone returns a copy of these bindings, which can be safely extended.
func (p Bindings) Clone() Bindings {
	if p == nil {
		return make(Bindings)
	}
	//
	return maps.Clone(p)
}

// Names returns the bound names in sorted order.
func (p Bindings) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

// Evaluate computes the value of a given expression using exact decimal
// arithmetic, where free variables are resolved using a given set of bindings.
// This fails if a variable is unbound, if a divisor is zero, or if a slice is
// malformed.
func Evaluate(expr Scalar, bindings Bindings) (decimal.Decimal, error) {
	// Fast path for trivial expressions
	if v, ok := ValueOf(expr); ok {
		return v, nil
	}
	//
	return Fold[decimal.Decimal](expr, evaluator{bindings})
}

// MustEvaluate evaluates an expression which is known to be closed, panicking
// otherwise.
func MustEvaluate(expr Scalar) decimal.Decimal {
	v, err := Evaluate(expr, nil)
	if err != nil {
		panic(err.Error())
	}
	//
	return v
}

type evaluator struct {
	bindings Bindings
}

var _ Visitor[decimal.Decimal] = evaluator{}

func (p evaluator) Literal(e *Literal) (decimal.Decimal, error) {
	return e.Value, nil
}

func (p evaluator) Variable(e *Variable) (decimal.Decimal, error) {
	if v, ok := p.bindings[e.Name]; ok {
		return v, nil
	}
	//
	return decimal.Zero, &failure.UnboundVariable{Scalars: []string{e.Name}}
}

func (p evaluator) AssignedVariable(e *AssignedVariable) (decimal.Decimal, error) {
	return e.Value, nil
}

func (p evaluator) Negative(_ *Negative, expr decimal.Decimal) (decimal.Decimal, error) {
	return expr.Neg(), nil
}

func (p evaluator) Add(_ *Add, lhs decimal.Decimal, rhs decimal.Decimal) (decimal.Decimal, error) {
	return lhs.Add(rhs), nil
}

func (p evaluator) Mul(_ *Mul, lhs decimal.Decimal, rhs decimal.Decimal) (decimal.Decimal, error) {
	return lhs.Mul(rhs), nil
}

func (p evaluator) Div(e *Div, lhs decimal.Decimal, rhs decimal.Decimal) (decimal.Decimal, error) {
	if rhs.IsZero() {
		return decimal.Zero, &failure.DivisionByZero{Expression: e.String()}
	}
	//
	return lhs.Div(rhs), nil
}

func (p evaluator) Min(e *Min, exprs []decimal.Decimal) (decimal.Decimal, error) {
	if len(exprs) == 0 {
		return decimal.Zero, failure.Malformedf(e, "minimum of no operands")
	}
	//
	return decimal.Min(exprs[0], exprs[1:]...), nil
}

func (p evaluator) Max(e *Max, exprs []decimal.Decimal) (decimal.Decimal, error) {
	if len(exprs) == 0 {
		return decimal.Zero, failure.Malformedf(e, "maximum of no operands")
	}
	//
	return decimal.Max(exprs[0], exprs[1:]...), nil
}

func (p evaluator) Slice(e *Slice, extent decimal.Decimal, start *decimal.Decimal,
	stop *decimal.Decimal) (decimal.Decimal, error) {
	return SliceDuration(e, extent, start, stop)
}

// SliceDuration computes the duration of an interval [start,stop) taken from
// an enclosing extent [0,extent), where absent bounds default to the extent
// itself.  The node is used only for reporting errors.
func SliceDuration(node fmt.Stringer, extent decimal.Decimal, start *decimal.Decimal,
	stop *decimal.Decimal) (decimal.Decimal, error) {
	//
	lower, upper := decimal.Zero, extent
	//
	if start != nil {
		lower = *start
	}
	//
	if stop != nil {
		upper = *stop
	}
	//
	switch {
	case lower.IsNegative():
		return decimal.Zero, failure.Malformedf(node, "negative start %s", lower.String())
	case upper.IsNegative():
		return decimal.Zero, failure.Malformedf(node, "negative stop %s", upper.String())
	case lower.GreaterThan(upper):
		return decimal.Zero, failure.Malformedf(node, "start %s after stop %s", lower.String(), upper.String())
	case upper.GreaterThan(extent):
		return decimal.Zero, failure.Malformedf(node, "stop %s exceeds duration %s", upper.String(), extent.String())
	}
	//
	return upper.Sub(lower), nil
}
