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
package piecewise

import (
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/shopspring/decimal"
)

const (
	// LinearTarget names the piecewise-linear representation in diagnostics.
	LinearTarget = "piecewise-linear"
	// ConstantTarget names the piecewise-constant representation in
	// diagnostics.
	ConstantTarget = "piecewise-constant"
)

// LowerLinear converts a waveform into an equivalent piecewise-linear series,
// under a given set of bindings.  This fails if the waveform uses a construct
// which has no exact piecewise-linear representation, or if its segments do
// not join up.
func LowerLinear(w waveform.Waveform, bindings scalar.Bindings) (*Linear, error) {
	return waveform.FoldWith[*Linear](w, linearLowering{bindings}, opaque)
}

// LowerConstant converts a waveform into an equivalent piecewise-constant
// series, under a given set of bindings.  This fails if the waveform uses a
// construct which has no exact piecewise-constant representation.
func LowerConstant(w waveform.Waveform, bindings scalar.Bindings) (*Constant, error) {
	return waveform.FoldWith[*Constant](w, constantLowering{bindings}, opaque)
}

// Nodes whose children are never lowered directly.  Samples are evaluated from
// the original waveform, whilst the others cannot be lowered at all.
func opaque(w waveform.Waveform) bool {
	switch w.(type) {
	case *waveform.Sample, *waveform.Smooth:
		return true
	default:
		return false
	}
}

// ============================================================================
// Piecewise Linear
// ============================================================================

type linearLowering struct {
	bindings scalar.Bindings
}

func (p linearLowering) Constant(w *waveform.Constant) (*Linear, error) {
	values, duration, err := leaf(w, w.Duration, p.bindings, w.Value)
	if err != nil {
		return nil, err
	}
	//
	return segment(duration, values[0], values[0]), nil
}

func (p linearLowering) Linear(w *waveform.Linear) (*Linear, error) {
	values, duration, err := leaf(w, w.Duration, p.bindings, w.Start, w.Stop)
	if err != nil {
		return nil, err
	}
	//
	return segment(duration, values[0], values[1]), nil
}

func (p linearLowering) Poly(w *waveform.Poly) (*Linear, error) {
	coeffs, duration, err := leaf(w, w.Duration, p.bindings, w.Coeffs...)
	if err != nil {
		return nil, err
	}
	//
	switch degree(coeffs) {
	case -1:
		return segment(duration, decimal.Zero, decimal.Zero), nil
	case 0:
		return segment(duration, coeffs[0], coeffs[0]), nil
	case 1:
		return segment(duration, coeffs[0], coeffs[0].Add(coeffs[1].Mul(duration))), nil
	}
	//
	return nil, failure.Unsupportedf(w, LinearTarget, "polynomial of degree > 1 cannot become piecewise-linear")
}

func (p linearLowering) Native(w *waveform.Native) (*Linear, error) {
	return nil, failure.Unsupportedf(w, LinearTarget, "native function %s must be sampled first", w.Name)
}

func (p linearLowering) Negative(_ *waveform.Negative, inner *Linear) (*Linear, error) {
	return inner.Map(decimal.Decimal.Neg), nil
}

func (p linearLowering) Add(w *waveform.Add, lhs *Linear, rhs *Linear) (*Linear, error) {
	// Once the shorter operand finishes it contributes zero, which must not
	// introduce a jump.
	if short := shorter(lhs, rhs); short != nil {
		if last := short.Values[len(short.Values)-1]; !last.IsZero() {
			return nil, &failure.Discontinuity{Time: short.Duration(), Left: last.String(), LeftValue: last,
				Right: "0", RightValue: decimal.Zero}
		}
	}
	//
	var (
		times  = union(lhs.Times, rhs.Times)
		values = make([]decimal.Decimal, len(times))
	)
	//
	for i, t := range times {
		values[i] = lhs.Eval(t).Add(rhs.Eval(t))
	}
	//
	return &Linear{times, values}, nil
}

func (p linearLowering) Scale(w *waveform.Scale, inner *Linear) (*Linear, error) {
	factor, err := scalar.Evaluate(w.Factor, p.bindings)
	if err != nil {
		return nil, err
	}
	//
	return inner.Map(factor.Mul), nil
}

func (p linearLowering) Slice(w *waveform.Slice, inner *Linear) (*Linear, error) {
	start, stop, err := waveform.Bounds(w, inner.Duration(), p.bindings)
	if err != nil {
		return nil, err
	}
	//
	return inner.Slice(start, stop)
}

func (p linearLowering) Append(_ *waveform.Append, parts []*Linear) (*Linear, error) {
	var result *Linear
	//
	for _, part := range parts {
		var err error
		//
		switch {
		case result == nil:
			result = part
		case part.Duration().IsZero():
			continue
		case result.Duration().IsZero():
			result = part
		default:
			if result, err = result.Append(part); err != nil {
				return nil, err
			}
		}
	}
	//
	return result, nil
}

func (p linearLowering) Record(_ *waveform.Record, inner *Linear) (*Linear, error) {
	return inner, nil
}

func (p linearLowering) Sample(w *waveform.Sample, _ *Linear) (*Linear, error) {
	if w.Interpolation != waveform.LinearInterpolation {
		return nil, failure.Unsupportedf(w, LinearTarget, "%s interpolation cannot become piecewise-linear",
			w.Interpolation.String())
	}
	//
	times, values, err := waveform.SamplePoints(w, p.bindings)
	if err != nil {
		return nil, err
	}
	//
	return &Linear{times, values}, nil
}

func (p linearLowering) Smooth(w *waveform.Smooth, _ *Linear) (*Linear, error) {
	return nil, failure.Unsupportedf(w, LinearTarget, "smoothed waveform must be sampled first")
}

func (p linearLowering) Aligned(_ *waveform.Aligned, inner *Linear) (*Linear, error) {
	return inner, nil
}

// ============================================================================
// Piecewise Constant
// ============================================================================

type constantLowering struct {
	bindings scalar.Bindings
}

func (p constantLowering) Constant(w *waveform.Constant) (*Constant, error) {
	values, duration, err := leaf(w, w.Duration, p.bindings, w.Value)
	if err != nil {
		return nil, err
	}
	//
	return step(duration, values[0]), nil
}

func (p constantLowering) Linear(w *waveform.Linear) (*Constant, error) {
	values, duration, err := leaf(w, w.Duration, p.bindings, w.Start, w.Stop)
	if err != nil {
		return nil, err
	} else if !values[0].Equal(values[1]) && !duration.IsZero() {
		return nil, failure.Unsupportedf(w, ConstantTarget, "found non-constant Linear piece")
	}
	//
	return step(duration, values[0]), nil
}

func (p constantLowering) Poly(w *waveform.Poly) (*Constant, error) {
	coeffs, duration, err := leaf(w, w.Duration, p.bindings, w.Coeffs...)
	if err != nil {
		return nil, err
	}
	//
	switch n := degree(coeffs); {
	case n < 0:
		return step(duration, decimal.Zero), nil
	case n == 0 || duration.IsZero():
		return step(duration, coeffs[0]), nil
	}
	//
	return nil, failure.Unsupportedf(w, ConstantTarget, "found non-constant Poly piece")
}

func (p constantLowering) Native(w *waveform.Native) (*Constant, error) {
	return nil, failure.Unsupportedf(w, ConstantTarget, "native function %s must be sampled first", w.Name)
}

func (p constantLowering) Negative(_ *waveform.Negative, inner *Constant) (*Constant, error) {
	return inner.Map(decimal.Decimal.Neg), nil
}

func (p constantLowering) Add(_ *waveform.Add, lhs *Constant, rhs *Constant) (*Constant, error) {
	var (
		times  = union(lhs.Times, rhs.Times)
		values = make([]decimal.Decimal, len(times))
	)
	// Each step takes its value from the right of its breakpoint, such that an
	// operand contributes nothing from its end onwards.
	for i, t := range times {
		values[i] = lhs.Step(t).Add(rhs.Step(t))
	}
	//
	return flatTail(times, values), nil
}

func (p constantLowering) Scale(w *waveform.Scale, inner *Constant) (*Constant, error) {
	factor, err := scalar.Evaluate(w.Factor, p.bindings)
	if err != nil {
		return nil, err
	}
	//
	return inner.Map(factor.Mul), nil
}

func (p constantLowering) Slice(w *waveform.Slice, inner *Constant) (*Constant, error) {
	start, stop, err := waveform.Bounds(w, inner.Duration(), p.bindings)
	if err != nil {
		return nil, err
	}
	//
	return inner.Slice(start, stop)
}

func (p constantLowering) Append(_ *waveform.Append, parts []*Constant) (*Constant, error) {
	var result *Constant
	//
	for _, part := range parts {
		switch {
		case result == nil:
			result = part
		case part.Duration().IsZero():
			continue
		case result.Duration().IsZero():
			result = part
		default:
			result = result.Append(part)
		}
	}
	//
	return result, nil
}

func (p constantLowering) Record(_ *waveform.Record, inner *Constant) (*Constant, error) {
	return inner, nil
}

func (p constantLowering) Sample(w *waveform.Sample, _ *Constant) (*Constant, error) {
	if w.Interpolation != waveform.ConstantInterpolation {
		return nil, failure.Unsupportedf(w, ConstantTarget, "%s interpolation cannot become piecewise-constant",
			w.Interpolation.String())
	}
	//
	times, values, err := waveform.SamplePoints(w, p.bindings)
	if err != nil {
		return nil, err
	}
	//
	return &Constant{times, values}, nil
}

func (p constantLowering) Smooth(w *waveform.Smooth, _ *Constant) (*Constant, error) {
	return nil, failure.Unsupportedf(w, ConstantTarget, "smoothed waveform must be sampled first")
}

func (p constantLowering) Aligned(_ *waveform.Aligned, inner *Constant) (*Constant, error) {
	return inner, nil
}

// ============================================================================
// Helpers
// ============================================================================

// Evaluate the duration and parameters of a leaf waveform.
func leaf(w waveform.Waveform, duration scalar.Scalar, bindings scalar.Bindings,
	params ...scalar.Scalar) ([]decimal.Decimal, decimal.Decimal, error) {
	d, err := scalar.Evaluate(duration, bindings)
	if err != nil {
		return nil, decimal.Zero, err
	} else if d.IsNegative() {
		return nil, decimal.Zero, failure.Malformedf(w, "negative duration %s", d.String())
	}
	//
	values := make([]decimal.Decimal, len(params))
	//
	for i, param := range params {
		if values[i], err = scalar.Evaluate(param, bindings); err != nil {
			return nil, decimal.Zero, err
		}
	}
	//
	return values, d, nil
}

// Determine the degree of a polynomial from its evaluated coefficients,
// ignoring trailing zeros.  The zero polynomial has degree -1.
func degree(coeffs []decimal.Decimal) int {
	n := len(coeffs) - 1
	//
	for n >= 0 && coeffs[n].IsZero() {
		n--
	}
	//
	return n
}

func segment(duration decimal.Decimal, start decimal.Decimal, stop decimal.Decimal) *Linear {
	if duration.IsZero() {
		return &Linear{[]decimal.Decimal{decimal.Zero}, []decimal.Decimal{start}}
	}
	//
	return &Linear{[]decimal.Decimal{decimal.Zero, duration}, []decimal.Decimal{start, stop}}
}

func step(duration decimal.Decimal, value decimal.Decimal) *Constant {
	if duration.IsZero() {
		return &Constant{[]decimal.Decimal{decimal.Zero}, []decimal.Decimal{value}}
	}
	//
	return &Constant{[]decimal.Decimal{decimal.Zero, duration}, []decimal.Decimal{value, value}}
}

// Return whichever series is strictly shorter, or nil if they have the same
// duration.
func shorter(lhs *Linear, rhs *Linear) *Linear {
	switch lhs.Duration().Cmp(rhs.Duration()) {
	case -1:
		return lhs
	case 1:
		return rhs
	default:
		return nil
	}
}
