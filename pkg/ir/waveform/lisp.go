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
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/util/source/sexp"
)

// Lisp converts a given waveform into an S-Expression, for example so it can
// be printed.
func Lisp(w Waveform) sexp.SExp {
	result, _ := Fold[sexp.SExp](w, lispifier{})
	return result
}

// Render converts a given waveform into a string.
func Render(w Waveform) string {
	return Lisp(w).String(false)
}

type lispifier struct{}

var _ Visitor[sexp.SExp] = lispifier{}

func (lispifier) Constant(w *Constant) (sexp.SExp, error) {
	return sexp.NewTaggedList("constant", scalar.Lisp(w.Value), scalar.Lisp(w.Duration)), nil
}

func (lispifier) Linear(w *Linear) (sexp.SExp, error) {
	return sexp.NewTaggedList("linear", scalar.Lisp(w.Start), scalar.Lisp(w.Stop), scalar.Lisp(w.Duration)), nil
}

func (lispifier) Poly(w *Poly) (sexp.SExp, error) {
	coeffs := make([]sexp.SExp, len(w.Coeffs))
	//
	for i, c := range w.Coeffs {
		coeffs[i] = scalar.Lisp(c)
	}
	//
	return sexp.NewTaggedList("poly", sexp.NewList(coeffs), scalar.Lisp(w.Duration)), nil
}

func (lispifier) Native(w *Native) (sexp.SExp, error) {
	list := sexp.NewTaggedList("native", sexp.NewSymbol(w.Name), scalar.Lisp(w.Duration))
	//
	for _, p := range w.Params {
		list.Append(scalar.Lisp(p))
	}
	//
	return list, nil
}

func (lispifier) Negative(_ *Negative, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("-", inner), nil
}

func (lispifier) Add(_ *Add, lhs sexp.SExp, rhs sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("+", lhs, rhs), nil
}

func (lispifier) Scale(w *Scale, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("*", scalar.Lisp(w.Factor), inner), nil
}

func (lispifier) Slice(w *Slice, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("slice", inner, bound(w.Interval.Start), bound(w.Interval.Stop)), nil
}

func (lispifier) Append(_ *Append, parts []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("append", parts...), nil
}

func (lispifier) Record(w *Record, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("record", sexp.NewSymbol(w.Var), inner, sexp.NewSymbol(w.Side.String())), nil
}

func (lispifier) Sample(w *Sample, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("sample", inner, scalar.Lisp(w.Step), sexp.NewSymbol(w.Interpolation.String())), nil
}

func (lispifier) Smooth(w *Smooth, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("smooth", inner, scalar.Lisp(w.Radius), sexp.NewSymbol(w.Kernel.String())), nil
}

func (lispifier) Aligned(w *Aligned, inner sexp.SExp) (sexp.SExp, error) {
	var value sexp.SExp = sexp.NewSymbol(w.Value.Side.String())
	//
	if !w.Value.IsBoundary() {
		value = scalar.Lisp(w.Value.Value)
	}
	//
	return sexp.NewTaggedList("aligned", inner, sexp.NewSymbol(w.Alignment.String()), value), nil
}

func bound(expr scalar.Scalar) sexp.SExp {
	if expr == nil {
		return sexp.NewSymbol("_")
	}
	//
	return scalar.Lisp(expr)
}
