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
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/shopspring/decimal"
)

// Duration returns a scalar expression for the duration of a given waveform.
// The duration of a sum is the maximum of its operands, whilst that of a
// concatenation is the sum of its parts.
func Duration(w Waveform) scalar.Scalar {
	result, _ := Fold[scalar.Scalar](w, durationBuilder{})
	return result
}

// DurationOf computes the duration of a given waveform under a given set of
// bindings.
func DurationOf(w Waveform, bindings scalar.Bindings) (decimal.Decimal, error) {
	return Fold[decimal.Decimal](w, durationEvaluator{bindings})
}

// ============================================================================
// Symbolic
// ============================================================================

type durationBuilder struct{}

var _ Visitor[scalar.Scalar] = durationBuilder{}

func (durationBuilder) Constant(w *Constant) (scalar.Scalar, error) { return w.Duration, nil }

func (durationBuilder) Linear(w *Linear) (scalar.Scalar, error) { return w.Duration, nil }

func (durationBuilder) Poly(w *Poly) (scalar.Scalar, error) { return w.Duration, nil }

func (durationBuilder) Native(w *Native) (scalar.Scalar, error) { return w.Duration, nil }

func (durationBuilder) Negative(_ *Negative, inner scalar.Scalar) (scalar.Scalar, error) {
	return inner, nil
}

func (durationBuilder) Add(_ *Add, lhs scalar.Scalar, rhs scalar.Scalar) (scalar.Scalar, error) {
	return scalar.Maximum(lhs, rhs), nil
}

func (durationBuilder) Scale(_ *Scale, inner scalar.Scalar) (scalar.Scalar, error) {
	return inner, nil
}

func (durationBuilder) Slice(w *Slice, inner scalar.Scalar) (scalar.Scalar, error) {
	return scalar.SliceOf(inner, w.Interval), nil
}

func (durationBuilder) Append(_ *Append, parts []scalar.Scalar) (scalar.Scalar, error) {
	if len(parts) == 0 {
		return scalar.Zero, nil
	}
	//
	total := parts[0]
	//
	for _, p := range parts[1:] {
		total = scalar.Sum(total, p)
	}
	//
	return total, nil
}

func (durationBuilder) Record(_ *Record, inner scalar.Scalar) (scalar.Scalar, error) {
	return inner, nil
}

func (durationBuilder) Sample(_ *Sample, inner scalar.Scalar) (scalar.Scalar, error) {
	return inner, nil
}

func (durationBuilder) Smooth(_ *Smooth, inner scalar.Scalar) (scalar.Scalar, error) {
	return inner, nil
}

func (durationBuilder) Aligned(_ *Aligned, inner scalar.Scalar) (scalar.Scalar, error) {
	return inner, nil
}

// ============================================================================
// Numeric
// ============================================================================

type durationEvaluator struct {
	bindings scalar.Bindings
}

var _ Visitor[decimal.Decimal] = durationEvaluator{}

func (p durationEvaluator) Constant(w *Constant) (decimal.Decimal, error) {
	return p.leaf(w.Duration)
}

func (p durationEvaluator) Linear(w *Linear) (decimal.Decimal, error) {
	return p.leaf(w.Duration)
}

func (p durationEvaluator) Poly(w *Poly) (decimal.Decimal, error) {
	return p.leaf(w.Duration)
}

func (p durationEvaluator) Native(w *Native) (decimal.Decimal, error) {
	return p.leaf(w.Duration)
}

func (p durationEvaluator) Negative(_ *Negative, inner decimal.Decimal) (decimal.Decimal, error) {
	return inner, nil
}

func (p durationEvaluator) Add(_ *Add, lhs decimal.Decimal, rhs decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Max(lhs, rhs), nil
}

func (p durationEvaluator) Scale(_ *Scale, inner decimal.Decimal) (decimal.Decimal, error) {
	return inner, nil
}

func (p durationEvaluator) Slice(w *Slice, inner decimal.Decimal) (decimal.Decimal, error) {
	start, stop, err := Bounds(w, inner, p.bindings)
	if err != nil {
		return decimal.Zero, err
	}
	//
	return stop.Sub(start), nil
}

func (p durationEvaluator) Append(_ *Append, parts []decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	//
	for _, d := range parts {
		total = total.Add(d)
	}
	//
	return total, nil
}

func (p durationEvaluator) Record(_ *Record, inner decimal.Decimal) (decimal.Decimal, error) {
	return inner, nil
}

func (p durationEvaluator) Sample(_ *Sample, inner decimal.Decimal) (decimal.Decimal, error) {
	return inner, nil
}

func (p durationEvaluator) Smooth(_ *Smooth, inner decimal.Decimal) (decimal.Decimal, error) {
	return inner, nil
}

func (p durationEvaluator) Aligned(_ *Aligned, inner decimal.Decimal) (decimal.Decimal, error) {
	return inner, nil
}

func (p durationEvaluator) leaf(duration scalar.Scalar) (decimal.Decimal, error) {
	d, err := scalar.Evaluate(duration, p.bindings)
	if err != nil {
		return d, err
	} else if d.IsNegative() {
		return d, failure.Malformedf(duration, "negative duration %s", d.String())
	}
	//
	return d, nil
}

// Bounds evaluates the start and stop of a slice, given the duration of the
// sliced waveform.  Absent bounds default to zero and the duration
// respectively.  This fails if either bound is negative, if the start exceeds
// the stop, or if the stop exceeds the duration.
func Bounds(w *Slice, extent decimal.Decimal, bindings scalar.Bindings) (decimal.Decimal, decimal.Decimal, error) {
	var start, stop *decimal.Decimal
	//
	if w.Interval.Start != nil {
		v, err := scalar.Evaluate(w.Interval.Start, bindings)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		//
		start = &v
	}
	//
	if w.Interval.Stop != nil {
		v, err := scalar.Evaluate(w.Interval.Stop, bindings)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		//
		stop = &v
	}
	//
	length, err := scalar.SliceDuration(w, extent, start, stop)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	//
	if start == nil {
		return decimal.Zero, length, nil
	}
	//
	return *start, start.Add(length), nil
}
