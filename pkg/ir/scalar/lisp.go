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
	"github.com/consensys/go-analog/pkg/util/source/sexp"
)

// Lisp converts a given expression into an S-Expression, for example so it can
// be printed.  Assigned variables are rendered by name, since their values are
// reported separately in diagnostics.
func Lisp(expr Scalar) sexp.SExp {
	result, _ := Fold[sexp.SExp](expr, lispifier{})
	return result
}

// Render converts a given expression into a string.
func Render(expr Scalar) string {
	return Lisp(expr).String(false)
}

type lispifier struct{}

var _ Visitor[sexp.SExp] = lispifier{}

func (lispifier) Literal(e *Literal) (sexp.SExp, error) {
	return sexp.NewSymbol(e.Value.String()), nil
}

func (lispifier) Variable(e *Variable) (sexp.SExp, error) {
	return sexp.NewSymbol(e.Name), nil
}

func (lispifier) AssignedVariable(e *AssignedVariable) (sexp.SExp, error) {
	return sexp.NewSymbol(e.Name), nil
}

func (lispifier) Negative(_ *Negative, expr sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("-", expr), nil
}

func (lispifier) Add(_ *Add, lhs sexp.SExp, rhs sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("+", lhs, rhs), nil
}

func (lispifier) Mul(_ *Mul, lhs sexp.SExp, rhs sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("*", lhs, rhs), nil
}

func (lispifier) Div(_ *Div, lhs sexp.SExp, rhs sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("/", lhs, rhs), nil
}

func (lispifier) Min(_ *Min, exprs []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("min", exprs...), nil
}

func (lispifier) Max(_ *Max, exprs []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("max", exprs...), nil
}

func (lispifier) Slice(_ *Slice, expr sexp.SExp, start *sexp.SExp, stop *sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("slice", expr, orUnderscore(start), orUnderscore(stop)), nil
}

func orUnderscore(bound *sexp.SExp) sexp.SExp {
	if bound == nil {
		return sexp.NewSymbol("_")
	}
	//
	return *bound
}
