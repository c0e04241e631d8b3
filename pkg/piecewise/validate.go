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
	"github.com/consensys/go-analog/pkg/util/collection/stack"
	"github.com/shopspring/decimal"
)

// ValidateLinear checks whether a waveform can be lowered to a piecewise-linear
// series.  Unlike lowering, a discontinuity is reported in terms of the
// symbolic expressions either side of it, along with the variables they use.
func ValidateLinear(w waveform.Waveform, bindings scalar.Bindings) error {
	return validate(w, bindings, true)
}

// ValidateConstant checks whether a waveform can be lowered to a
// piecewise-constant series.
func ValidateConstant(w waveform.Waveform, bindings scalar.Bindings) error {
	return validate(w, bindings, false)
}

func validate(w waveform.Waveform, bindings scalar.Bindings, linear bool) error {
	v := &validator{bindings, linear, make(map[waveform.Waveform]summary)}
	//
	if _, err := waveform.FoldWith[summary](w, v, opaque); err != nil {
		return err
	} else if linear {
		return v.continuity(w)
	}
	//
	return nil
}

// Summarises a waveform by symbolic expressions for its values at either end,
// along with its evaluated duration.
type summary struct {
	start    scalar.Scalar
	stop     scalar.Scalar
	duration decimal.Decimal
	// Offset of the sliced region within its child (slices only).
	shift decimal.Decimal
}

type validator struct {
	bindings  scalar.Bindings
	linear    bool
	summaries map[waveform.Waveform]summary
}

func (p *validator) Constant(w *waveform.Constant) (summary, error) {
	return p.leaf(w, w.Duration, w.Value, w.Value)
}

func (p *validator) Linear(w *waveform.Linear) (summary, error) {
	s, err := p.leaf(w, w.Duration, w.Start, w.Stop)
	if err != nil || p.linear || s.duration.IsZero() {
		return s, err
	}
	//
	values, err := p.evaluate(w.Start, w.Stop)
	if err != nil {
		return s, err
	} else if !values[0].Equal(values[1]) {
		return s, failure.Unsupportedf(w, ConstantTarget, "found non-constant Linear piece")
	}
	//
	return s, nil
}

func (p *validator) Poly(w *waveform.Poly) (summary, error) {
	var (
		start scalar.Scalar = scalar.LitInt(0)
		stop  scalar.Scalar = scalar.LitInt(0)
		power scalar.Scalar = scalar.LitInt(1)
	)
	//
	for i, c := range w.Coeffs {
		if i == 0 {
			start, stop = c, c
		} else {
			power = scalar.Product(power, w.Duration)
			stop = scalar.Sum(stop, scalar.Product(c, power))
		}
	}
	//
	s, err := p.leaf(w, w.Duration, start, stop)
	if err != nil {
		return s, err
	}
	//
	coeffs, err := p.evaluate(w.Coeffs...)
	if err != nil {
		return s, err
	}
	//
	switch n := degree(coeffs); {
	case n <= 0:
		return s, nil
	case p.linear && n > 1:
		return s, failure.Unsupportedf(w, LinearTarget, "polynomial of degree > 1 cannot become piecewise-linear")
	case !p.linear && !s.duration.IsZero():
		return s, failure.Unsupportedf(w, ConstantTarget, "found non-constant Poly piece")
	}
	//
	return s, nil
}

func (p *validator) Native(w *waveform.Native) (summary, error) {
	return summary{}, failure.Unsupportedf(w, p.target(), "native function %s must be sampled first", w.Name)
}

func (p *validator) Negative(w *waveform.Negative, inner summary) (summary, error) {
	return p.record(w, summary{start: scalar.Neg(inner.start), stop: scalar.Neg(inner.stop),
		duration: inner.duration})
}

func (p *validator) Add(w *waveform.Add, lhs summary, rhs summary) (summary, error) {
	s := summary{start: scalar.Sum(lhs.start, rhs.start)}
	//
	switch lhs.duration.Cmp(rhs.duration) {
	case -1:
		s.stop, s.duration = rhs.stop, rhs.duration
	case 1:
		s.stop, s.duration = lhs.stop, lhs.duration
	default:
		s.stop, s.duration = scalar.Sum(lhs.stop, rhs.stop), lhs.duration
	}
	//
	return p.record(w, s)
}

func (p *validator) Scale(w *waveform.Scale, inner summary) (summary, error) {
	return p.record(w, summary{start: scalar.Product(w.Factor, inner.start),
		stop: scalar.Product(w.Factor, inner.stop), duration: inner.duration})
}

func (p *validator) Slice(w *waveform.Slice, inner summary) (summary, error) {
	start, stop, err := waveform.Bounds(w, inner.duration, p.bindings)
	if err != nil {
		return summary{}, err
	}
	//
	s := summary{start: inner.start, stop: inner.stop, duration: stop.Sub(start), shift: start}
	//
	if w.Interval.Start != nil {
		if s.start, err = p.valueAt(w.Waveform, w.Interval.Start); err != nil {
			return s, err
		}
	}
	//
	if w.Interval.Stop != nil {
		if s.stop, err = p.valueAt(w.Waveform, w.Interval.Stop); err != nil {
			return s, err
		}
	}
	//
	return p.record(w, s)
}

func (p *validator) Append(w *waveform.Append, parts []summary) (summary, error) {
	var s summary
	//
	for i, part := range parts {
		switch {
		case i == 0 || s.duration.IsZero():
			s.start, s.stop = part.start, part.stop
		case !part.duration.IsZero():
			s.stop = part.stop
		}
		//
		s.duration = s.duration.Add(part.duration)
	}
	//
	return p.record(w, s)
}

func (p *validator) Record(w *waveform.Record, inner summary) (summary, error) {
	return p.record(w, inner)
}

func (p *validator) Sample(w *waveform.Sample, _ summary) (summary, error) {
	var expected = waveform.LinearInterpolation
	//
	if !p.linear {
		expected = waveform.ConstantInterpolation
	}
	//
	if w.Interpolation != expected {
		return summary{}, failure.Unsupportedf(w, p.target(), "%s interpolation cannot become %s",
			w.Interpolation.String(), p.target())
	}
	//
	duration, err := waveform.DurationOf(w, p.bindings)
	if err != nil {
		return summary{}, err
	} else if p.linear {
		// Linear interpolation passes through the first and last samples,
		// which are taken at either end.
		s := summary{duration: duration}
		//
		if s.start, err = p.valueAt(w.Waveform, scalar.LitInt(0)); err != nil {
			return s, err
		} else if s.stop, err = p.valueAt(w.Waveform, waveform.Duration(w.Waveform)); err != nil {
			return s, err
		}
		//
		return p.record(w, s)
	}
	//
	s, err := p.sampled(w, duration)
	if err != nil {
		return s, err
	}
	//
	return p.record(w, s)
}

func (p *validator) Smooth(w *waveform.Smooth, _ summary) (summary, error) {
	return summary{}, failure.Unsupportedf(w, p.target(), "smoothed waveform must be sampled first")
}

func (p *validator) Aligned(w *waveform.Aligned, inner summary) (summary, error) {
	return p.record(w, inner)
}

// A waveform positioned at an absolute time.  Within a slice, only the window
// [lower,upper) of absolute times remains visible.
type placement struct {
	node    waveform.Waveform
	offset  decimal.Decimal
	clipped bool
	lower   decimal.Decimal
	upper   decimal.Decimal
}

// Position a child of this placement at a given absolute offset.
func (p placement) child(node waveform.Waveform, offset decimal.Decimal) placement {
	return placement{node, offset, p.clipped, p.lower, p.upper}
}

// Check whether a joint at a given absolute time is strictly inside the visible
// window.  Joints on the boundary of a slice do not separate two visible
// segments.
func (p placement) visible(time decimal.Decimal) bool {
	return !p.clipped || (time.GreaterThan(p.lower) && time.LessThan(p.upper))
}

// Check that adjacent segments join up, and that the shorter operand of any
// addition finishes at zero.  This proceeds top-down so that every check is
// reported at its absolute time.
func (p *validator) continuity(root waveform.Waveform) error {
	worklist := stack.NewStack[placement]()
	worklist.Push(placement{node: root, offset: decimal.Zero})
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		switch w := next.node.(type) {
		case *waveform.Negative:
			worklist.Push(next.child(w.Waveform, next.offset))
		case *waveform.Scale:
			worklist.Push(next.child(w.Waveform, next.offset))
		case *waveform.Record:
			worklist.Push(next.child(w.Waveform, next.offset))
		case *waveform.Aligned:
			worklist.Push(next.child(w.Waveform, next.offset))
		case *waveform.Slice:
			worklist.Push(p.window(next, w))
		case *waveform.Add:
			lhs, rhs := p.summaries[w.Lhs], p.summaries[w.Rhs]
			//
			if err := p.dropout(next, lhs, rhs); err != nil {
				return err
			}
			//
			worklist.Push(next.child(w.Rhs, next.offset))
			worklist.Push(next.child(w.Lhs, next.offset))
		case *waveform.Append:
			if err := p.joints(w, next, worklist); err != nil {
				return err
			}
		}
	}
	//
	return nil
}

// Restrict a placement to the window selected by a slice, positioning the
// sliced waveform such that its visible region starts at the slice's offset.
func (p *validator) window(next placement, w *waveform.Slice) placement {
	var (
		s     = p.summaries[w]
		lower = next.offset
		upper = next.offset.Add(s.duration)
	)
	//
	if next.clipped {
		lower = decimal.Max(lower, next.lower)
		upper = decimal.Min(upper, next.upper)
	}
	//
	return placement{w.Waveform, next.offset.Sub(s.shift), true, lower, upper}
}

// Check every visible joint of an append, scheduling its parts at their
// offsets.
func (p *validator) joints(w *waveform.Append, at placement, worklist *stack.Stack[placement]) error {
	var (
		previous *summary
		parts    []placement
		offset   = at.offset
	)
	//
	for _, part := range w.Waveforms {
		s := p.summaries[part]
		//
		parts = append(parts, at.child(part, offset))
		//
		if s.duration.IsZero() {
			continue
		} else if previous != nil && at.visible(offset) {
			if err := p.join(offset, previous.stop, s.start); err != nil {
				return err
			}
		}
		//
		previous = &s
		offset = offset.Add(s.duration)
	}
	// Earlier parts are checked first.
	worklist.PushReversed(parts)
	//
	return nil
}

func (p *validator) dropout(at placement, lhs summary, rhs summary) error {
	var shorter summary
	//
	switch lhs.duration.Cmp(rhs.duration) {
	case -1:
		shorter = lhs
	case 1:
		shorter = rhs
	default:
		return nil
	}
	//
	if time := at.offset.Add(shorter.duration); at.visible(time) {
		return p.join(time, shorter.stop, scalar.LitInt(0))
	}
	//
	return nil
}

// Check that the value either side of a given time agree.
func (p *validator) join(time decimal.Decimal, left scalar.Scalar, right scalar.Scalar) error {
	values, err := p.evaluate(left, right)
	if err != nil {
		return err
	} else if values[0].Equal(values[1]) {
		return nil
	}
	//
	return &failure.Discontinuity{
		Time:       time,
		Left:       left.String(),
		LeftValue:  values[0],
		Right:      right.String(),
		RightValue: values[1],
		Bindings:   p.bindingsOf(left, right),
	}
}

// Summarise a leaf waveform, after checking its duration.
func (p *validator) leaf(w waveform.Waveform, duration scalar.Scalar, start scalar.Scalar,
	stop scalar.Scalar) (summary, error) {
	d, err := scalar.Evaluate(duration, p.bindings)
	if err != nil {
		return summary{}, err
	} else if d.IsNegative() {
		return summary{}, failure.Malformedf(w, "negative duration %s", d.String())
	}
	//
	return p.record(w, summary{start: start, stop: stop, duration: d})
}

// Determine a symbolic expression for the value of a waveform at a given time.
// This is exact for leaves beneath any number of negations, scalings, records
// or alignments.  Other waveforms have no simple symbolic form, and their value
// is evaluated instead.
func (p *validator) valueAt(w waveform.Waveform, time scalar.Scalar) (scalar.Scalar, error) {
	var (
		node    = w
		factors []scalar.Scalar
		value   scalar.Scalar
	)
	//
	for value == nil {
		switch n := node.(type) {
		case *waveform.Negative:
			factors = append(factors, scalar.LitInt(-1))
			node = n.Waveform
		case *waveform.Scale:
			factors = append(factors, n.Factor)
			node = n.Waveform
		case *waveform.Record:
			node = n.Waveform
		case *waveform.Aligned:
			node = n.Waveform
		case *waveform.Constant:
			value = n.Value
		case *waveform.Linear:
			value = p.ramp(n, time)
		case *waveform.Poly:
			value = polynomial(n.Coeffs, time)
		default:
			return p.evaluated(w, time)
		}
	}
	//
	for i := len(factors) - 1; i >= 0; i-- {
		value = scalar.Product(factors[i], value)
	}
	//
	return value, nil
}

// Value of a linear waveform part way through, or its start value when it has
// no duration.
func (p *validator) ramp(w *waveform.Linear, time scalar.Scalar) scalar.Scalar {
	if scalar.IsZero(time) {
		return w.Start
	} else if scalar.Equal(time, w.Duration) {
		return w.Stop
	} else if d, err := scalar.Evaluate(w.Duration, p.bindings); err != nil || d.IsZero() {
		return w.Start
	}
	//
	slope := scalar.Quotient(scalar.Sub(w.Stop, w.Start), w.Duration)
	//
	return scalar.Sum(w.Start, scalar.Product(slope, time))
}

func polynomial(coeffs []scalar.Scalar, time scalar.Scalar) scalar.Scalar {
	var (
		value scalar.Scalar = scalar.LitInt(0)
		power scalar.Scalar
	)
	//
	for i, c := range coeffs {
		if i == 0 {
			value, power = c, scalar.LitInt(1)
		} else {
			power = scalar.Product(power, time)
			value = scalar.Sum(value, scalar.Product(c, power))
		}
	}
	//
	return value
}

func (p *validator) evaluated(w waveform.Waveform, time scalar.Scalar) (scalar.Scalar, error) {
	t, err := scalar.Evaluate(time, p.bindings)
	if err != nil {
		return nil, err
	}
	//
	v, err := waveform.ValueAt(w, t, p.bindings)
	if err != nil {
		return nil, err
	}
	//
	return scalar.Lit(v), nil
}

// Summarise a waveform whose end values have no simple symbolic form, by
// evaluating them.
func (p *validator) sampled(w waveform.Waveform, duration decimal.Decimal) (summary, error) {
	ev, err := waveform.NewEvaluator(w, p.bindings)
	if err != nil {
		return summary{}, err
	}
	//
	values, err := ev.ValuesAt([]decimal.Decimal{decimal.Zero, duration})
	if err != nil {
		return summary{}, err
	}
	//
	return summary{start: scalar.Lit(values[0]), stop: scalar.Lit(values[1]), duration: duration}, nil
}

func (p *validator) record(w waveform.Waveform, s summary) (summary, error) {
	p.summaries[w] = s
	//
	return s, nil
}

func (p *validator) evaluate(exprs ...scalar.Scalar) ([]decimal.Decimal, error) {
	var (
		values = make([]decimal.Decimal, len(exprs))
		err    error
	)
	//
	for i, e := range exprs {
		if values[i], err = scalar.Evaluate(e, p.bindings); err != nil {
			return nil, err
		}
	}
	//
	return values, nil
}

// Determine the value of every variable used in the given expressions.
func (p *validator) bindingsOf(exprs ...scalar.Scalar) []failure.Binding {
	var (
		bindings []failure.Binding
		seen     = make(map[string]bool)
	)
	//
	for _, e := range exprs {
		scalar.Walk(e, func(e scalar.Scalar) {
			var (
				name  string
				value decimal.Decimal
			)
			//
			switch e := e.(type) {
			case *scalar.Variable:
				name, value = e.Name, p.bindings[e.Name]
			case *scalar.AssignedVariable:
				name, value = e.Name, e.Value
			default:
				return
			}
			//
			if !seen[name] {
				seen[name] = true
				bindings = append(bindings, failure.Binding{Name: name, Value: value.String()})
			}
		})
	}
	//
	return bindings
}

func (p *validator) target() string {
	if p.linear {
		return LinearTarget
	}
	//
	return ConstantTarget
}
