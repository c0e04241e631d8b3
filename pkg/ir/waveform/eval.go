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
	"github.com/consensys/go-analog/pkg/util/collection/stack"
	"github.com/shopspring/decimal"
)

// ValueAt computes the value of a waveform at a given time under a given set
// of bindings.  Outside of its own duration, a waveform has value zero.
func ValueAt(w Waveform, time decimal.Decimal, bindings scalar.Bindings) (decimal.Decimal, error) {
	ev, err := NewEvaluator(w, bindings)
	if err != nil {
		return decimal.Zero, err
	}
	//
	return ev.ValueAt(time)
}

// Evaluator evaluates a waveform at many points in time, caching the duration
// of every node within the waveform.
type Evaluator struct {
	root      Waveform
	bindings  scalar.Bindings
	durations map[Waveform]decimal.Decimal
}

// NewEvaluator constructs an evaluator for a given waveform, computing the
// durations of all nodes within it.  This fails if any duration cannot be
// evaluated.
func NewEvaluator(w Waveform, bindings scalar.Bindings) (*Evaluator, error) {
	var (
		durations = make(map[Waveform]decimal.Decimal)
		visitor   = durationEvaluator{bindings}
	)
	//
	_, err := stack.Fold(w, Children, func(node Waveform, args []decimal.Decimal) (decimal.Decimal, error) {
		if d, ok := durations[node]; ok {
			return d, nil
		}
		//
		d, err := dispatch(node, args, visitor)
		durations[node] = d
		//
		return d, err
	})
	//
	if err != nil {
		return nil, err
	}
	//
	return &Evaluator{w, bindings, durations}, nil
}

// Bindings returns the bindings used by this evaluator.
func (p *Evaluator) Bindings() scalar.Bindings {
	return p.bindings
}

// Duration returns the duration of the root waveform.
func (p *Evaluator) Duration() decimal.Decimal {
	return p.durations[p.root]
}

// DurationOf returns the duration of a node within the root waveform.
func (p *Evaluator) DurationOf(node Waveform) decimal.Decimal {
	if d, ok := p.durations[node]; ok {
		return d
	}
	//
	panic("duration requested for unknown waveform " + node.String())
}

// ValueAt computes the value of the root waveform at a given time.
func (p *Evaluator) ValueAt(time decimal.Decimal) (decimal.Decimal, error) {
	return p.valueAt(p.root, time)
}

// ValuesAt computes the value of the root waveform at each of the given times.
func (p *Evaluator) ValuesAt(times []decimal.Decimal) ([]decimal.Decimal, error) {
	values := make([]decimal.Decimal, len(times))
	//
	for i, t := range times {
		v, err := p.valueAt(p.root, t)
		if err != nil {
			return nil, err
		}
		//
		values[i] = v
	}
	//
	return values, nil
}

// The value of a waveform at a point in time is a linear combination of the
// values of its leaves at (shifted) points in time.  Therefore, rather than
// recursing, terms are accumulated from a worklist.
func (p *Evaluator) valueAt(w Waveform, time decimal.Decimal) (decimal.Decimal, error) {
	type term struct {
		node  Waveform
		time  decimal.Decimal
		coeff decimal.Decimal
	}
	//
	var (
		total    = decimal.Zero
		worklist = stack.NewStack[term]()
	)
	//
	worklist.Push(term{w, time, decimal.NewFromInt(1)})
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		t, coeff := next.time, next.coeff
		// Outside domain contributes nothing
		if t.IsNegative() || t.GreaterThan(p.DurationOf(next.node)) {
			continue
		}
		//
		switch w := next.node.(type) {
		case *Constant, *Linear, *Poly, *Native, *Sample, *Smooth:
			v, err := p.leafAt(w, t)
			if err != nil {
				return decimal.Zero, err
			}
			//
			total = total.Add(coeff.Mul(v))
		case *Negative:
			worklist.Push(term{w.Waveform, t, coeff.Neg()})
		case *Add:
			worklist.Push(term{w.Lhs, t, coeff})
			worklist.Push(term{w.Rhs, t, coeff})
		case *Scale:
			factor, err := scalar.Evaluate(w.Factor, p.bindings)
			if err != nil {
				return decimal.Zero, err
			}
			//
			worklist.Push(term{w.Waveform, t, coeff.Mul(factor)})
		case *Slice:
			start, _, err := Bounds(w, p.DurationOf(w.Waveform), p.bindings)
			if err != nil {
				return decimal.Zero, err
			}
			//
			worklist.Push(term{w.Waveform, t.Add(start), coeff})
		case *Append:
			if part, offset, ok := p.route(w, t); ok {
				worklist.Push(term{part, t.Sub(offset), coeff})
			}
		case *Record:
			worklist.Push(term{w.Waveform, t, coeff})
		case *Aligned:
			worklist.Push(term{w.Waveform, t, coeff})
		}
	}
	//
	return total, nil
}

// Identify the part of an append covering a given time, along with its offset.
// Parts cover half-open intervals, except the last (non-empty) part which also
// covers its right edge.  Empty parts are never selected.
func (p *Evaluator) route(w *Append, t decimal.Decimal) (Waveform, decimal.Decimal, bool) {
	var (
		offset = decimal.Zero
		last   = -1
	)
	//
	for i, part := range w.Waveforms {
		if p.DurationOf(part).IsPositive() {
			last = i
		}
	}
	//
	for i, part := range w.Waveforms {
		d := p.DurationOf(part)
		//
		if d.IsZero() {
			continue
		}
		//
		end := offset.Add(d)
		//
		if t.LessThan(end) || (i == last && t.Equal(end)) {
			return part, offset, true
		}
		//
		offset = end
	}
	//
	return nil, offset, false
}

func (p *Evaluator) leafAt(w Waveform, t decimal.Decimal) (decimal.Decimal, error) {
	switch w := w.(type) {
	case *Constant:
		return scalar.Evaluate(w.Value, p.bindings)
	case *Linear:
		return p.linearAt(w, t)
	case *Poly:
		return p.polyAt(w, t)
	case *Native:
		params, err := p.evaluateAll(w.Params)
		if err != nil {
			return decimal.Zero, err
		}
		//
		return w.Fn(t, params), nil
	case *Sample:
		return p.sampleAt(w, t)
	case *Smooth:
		return p.smoothAt(w, t)
	default:
		panic("unexpected waveform " + w.String())
	}
}

func (p *Evaluator) linearAt(w *Linear, t decimal.Decimal) (decimal.Decimal, error) {
	values, err := p.evaluateAll([]scalar.Scalar{w.Start, w.Stop})
	if err != nil {
		return decimal.Zero, err
	}
	//
	return interpolate(decimal.Zero, values[0], p.DurationOf(w), values[1], t), nil
}

func (p *Evaluator) polyAt(w *Poly, t decimal.Decimal) (decimal.Decimal, error) {
	coeffs, err := p.evaluateAll(w.Coeffs)
	if err != nil {
		return decimal.Zero, err
	}
	// Horner's rule
	value := decimal.Zero
	//
	for i := len(coeffs) - 1; i >= 0; i-- {
		value = value.Mul(t).Add(coeffs[i])
	}
	//
	return value, nil
}

func (p *Evaluator) sampleAt(w *Sample, t decimal.Decimal) (decimal.Decimal, error) {
	times, values, err := p.samplePoints(w)
	if err != nil {
		return decimal.Zero, err
	}
	//
	i := rightmost(times, t)
	//
	if w.Interpolation == ConstantInterpolation || i+1 == len(times) {
		return values[i], nil
	}
	//
	return interpolate(times[i], values[i], times[i+1], values[i+1], t), nil
}

func (p *Evaluator) evaluateAll(exprs []scalar.Scalar) ([]decimal.Decimal, error) {
	values := make([]decimal.Decimal, len(exprs))
	//
	for i, e := range exprs {
		v, err := scalar.Evaluate(e, p.bindings)
		if err != nil {
			return nil, err
		}
		//
		values[i] = v
	}
	//
	return values, nil
}

// ============================================================================
// Sampling
// ============================================================================

// SamplePoints computes the explicit breakpoints of a sampled waveform.  These
// lie at every multiple of the sample step up to the duration, along with the
// duration itself.  Under constant interpolation, the final value is forced to
// equal the penultimate value.
func SamplePoints(w *Sample, bindings scalar.Bindings) ([]decimal.Decimal, []decimal.Decimal, error) {
	ev, err := NewEvaluator(w, bindings)
	if err != nil {
		return nil, nil, err
	}
	//
	return ev.samplePoints(w)
}

func (p *Evaluator) samplePoints(w *Sample) ([]decimal.Decimal, []decimal.Decimal, error) {
	step, err := scalar.Evaluate(w.Step, p.bindings)
	if err != nil {
		return nil, nil, err
	} else if !step.IsPositive() {
		return nil, nil, failure.Malformedf(w, "sample step %s is not positive", step.String())
	}
	//
	var (
		duration = p.DurationOf(w.Waveform)
		times    []decimal.Decimal
	)
	//
	for t := decimal.Zero; t.LessThan(duration); t = t.Add(step) {
		times = append(times, t)
	}
	//
	times = append(times, duration)
	//
	values := make([]decimal.Decimal, len(times))
	//
	for i, t := range times {
		if values[i], err = p.valueAt(w.Waveform, t); err != nil {
			return nil, nil, err
		}
	}
	//
	if n := len(values); w.Interpolation == ConstantInterpolation && n >= 2 {
		values[n-1] = values[n-2]
	}
	//
	return times, values, nil
}

// ============================================================================
// Helpers
// ============================================================================

// Compute the value at time t on the line through (t0,v0) and (t1,v1).
// Multiplication precedes division to keep results exact where possible.
func interpolate(t0, v0, t1, v1, t decimal.Decimal) decimal.Decimal {
	if t1.Equal(t0) {
		return v0
	}
	//
	return v0.Add(v1.Sub(v0).Mul(t.Sub(t0)).Div(t1.Sub(t0)))
}

// Find the index of the rightmost time less than or equal to a given time,
// clamped to zero.
func rightmost(times []decimal.Decimal, t decimal.Decimal) int {
	lo, hi := 0, len(times)
	// Invariant: times[j] <= t for j < lo, and times[j] > t for j >= hi
	for lo < hi {
		mid := (lo + hi) / 2
		//
		if times[mid].LessThanOrEqual(t) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	//
	return max(lo-1, 0)
}
