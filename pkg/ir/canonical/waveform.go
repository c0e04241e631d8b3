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

	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
)

// Rewrite a waveform node whose child waveforms have already been
// canonicalized.  Scalars held directly by the node are canonicalized here.
func (p *Canonicalizer) rewriteWaveform(w waveform.Waveform, args []waveform.Waveform) (waveform.Waveform, error) {
	switch w := w.(type) {
	case *waveform.Constant:
		xs, err := p.all(w.Value, w.Duration)
		if err != nil {
			return nil, err
		}
		//
		return waveform.Const(xs[0], xs[1]), nil
	case *waveform.Linear:
		xs, err := p.all(w.Start, w.Stop, w.Duration)
		if err != nil {
			return nil, err
		} else if scalar.Equal(xs[0], xs[1]) {
			return waveform.Const(xs[0], xs[2]), nil
		}
		//
		return waveform.Ramp(xs[0], xs[1], xs[2]), nil
	case *waveform.Poly:
		return p.poly(w)
	case *waveform.Native:
		xs, err := p.all(append([]scalar.Scalar{w.Duration}, w.Params...)...)
		if err != nil {
			return nil, err
		}
		//
		return waveform.NativeOf(w.Name, w.Fn, xs[0], xs[1:]...), nil
	case *waveform.Negative:
		return p.negate(args[0]), nil
	case *waveform.Add:
		return p.add(args[0], args[1])
	case *waveform.Scale:
		factor, err := p.Scalar(w.Factor)
		if err != nil {
			return nil, err
		}
		//
		return p.scale(factor, args[0])
	case *waveform.Slice:
		interval, err := p.interval(w.Interval)
		if err != nil {
			return nil, err
		}
		//
		return p.slice(args[0], interval)
	case *waveform.Append:
		return p.concat(args)
	case *waveform.Record:
		return waveform.RecordOf(w.Var, args[0], w.Side), nil
	case *waveform.Sample:
		step, err := p.Scalar(w.Step)
		if err != nil {
			return nil, err
		}
		//
		return waveform.SampleOf(args[0], step, w.Interpolation), nil
	case *waveform.Smooth:
		radius, err := p.Scalar(w.Radius)
		if err != nil {
			return nil, err
		}
		//
		return waveform.SmoothOf(args[0], radius, w.Kernel), nil
	case *waveform.Aligned:
		value, err := p.optional(w.Value.Value)
		if err != nil {
			return nil, err
		}
		//
		return waveform.Align(args[0], w.Alignment, waveform.AlignedValue{Value: value, Side: w.Value.Side}), nil
	default:
		panic(fmt.Sprintf("unknown waveform encountered: %T", w))
	}
}

// Canonical duration of a (canonical) waveform.
func (p *Canonicalizer) duration(w waveform.Waveform) (scalar.Scalar, error) {
	return p.Scalar(waveform.Duration(w))
}

// A polynomial of degree zero is a constant.
func (p *Canonicalizer) poly(w *waveform.Poly) (waveform.Waveform, error) {
	coeffs, err := p.all(w.Coeffs...)
	if err != nil {
		return nil, err
	}
	//
	duration, err := p.Scalar(w.Duration)
	if err != nil {
		return nil, err
	}
	//
	switch len(coeffs) {
	case 0:
		return waveform.ZeroOf(duration), nil
	case 1:
		return waveform.Const(coeffs[0], duration), nil
	default:
		return waveform.Polynomial(coeffs, duration), nil
	}
}

func (p *Canonicalizer) negate(w waveform.Waveform) waveform.Waveform {
	switch w := w.(type) {
	case *waveform.Negative:
		return w.Waveform
	case *waveform.Constant:
		return waveform.Const(negative(w.Value), w.Duration)
	case *waveform.Scale:
		if v, ok := scalar.ValueOf(w.Factor); ok && v.IsNegative() {
			// Cannot fail since neither zero nor one
			r, _ := p.scale(scalar.Lit(v.Neg()), w.Waveform)
			return r
		}
	}
	//
	return waveform.Negate(w)
}

func (p *Canonicalizer) scale(factor scalar.Scalar, w waveform.Waveform) (waveform.Waveform, error) {
	switch {
	case scalar.IsZero(factor):
		duration, err := p.duration(w)
		if err != nil {
			return nil, err
		}
		//
		return waveform.ZeroOf(duration), nil
	case scalar.IsOne(factor):
		return w, nil
	}
	//
	switch w := w.(type) {
	case *waveform.Scale:
		return p.scale(product(factor, w.Factor), w.Waveform)
	case *waveform.Constant:
		return waveform.Const(product(factor, w.Value), w.Duration), nil
	}
	//
	return waveform.Scaled(factor, w), nil
}

func (p *Canonicalizer) add(lhs waveform.Waveform, rhs waveform.Waveform) (waveform.Waveform, error) {
	if waveform.Equal(lhs, rhs) {
		return p.scale(scalar.LitInt(2), lhs)
	}
	// Drop redundant constants
	if ok, err := p.isRedundant(lhs, rhs); err != nil || ok {
		return rhs, err
	} else if ok, err := p.isRedundant(rhs, lhs); err != nil || ok {
		return lhs, err
	}
	//
	switch l := lhs.(type) {
	case *waveform.Constant:
		if r, ok := rhs.(*waveform.Constant); ok && scalar.Equal(l.Duration, r.Duration) {
			return waveform.Const(sum(l.Value, r.Value), l.Duration), nil
		}
	case *waveform.Scale:
		if r, ok := rhs.(*waveform.Scale); ok {
			if scalar.Equal(l.Factor, r.Factor) {
				inner, err := p.add(l.Waveform, r.Waveform)
				if err != nil {
					return nil, err
				}
				//
				return p.scale(l.Factor, inner)
			} else if waveform.Equal(l.Waveform, r.Waveform) {
				return p.scale(sum(l.Factor, r.Factor), l.Waveform)
			}
		} else if waveform.Equal(l.Waveform, rhs) {
			return p.scale(sum(l.Factor, scalar.One), rhs)
		}
	}
	//
	if r, ok := rhs.(*waveform.Scale); ok && waveform.Equal(r.Waveform, lhs) {
		return p.scale(sum(r.Factor, scalar.One), lhs)
	}
	//
	return waveform.Plus(lhs, rhs), nil
}

// Check whether one operand of an addition is a constant which can be dropped
// in favour of the other.  This holds for a constant of zero duration, and for
// a constant of zero value which does not outlast the other operand.
func (p *Canonicalizer) isRedundant(w waveform.Waveform, other waveform.Waveform) (bool, error) {
	c, ok := w.(*waveform.Constant)
	//
	switch {
	case !ok:
		return false, nil
	case scalar.IsZero(c.Duration):
		return true, nil
	case !scalar.IsZero(c.Value):
		return false, nil
	}
	//
	duration, err := p.duration(other)
	if err != nil {
		return false, err
	} else if scalar.Equal(c.Duration, duration) {
		return true, nil
	}
	//
	lhs, lok := scalar.ValueOf(c.Duration)
	rhs, rok := scalar.ValueOf(duration)
	//
	return lok && rok && lhs.LessThanOrEqual(rhs), nil
}

func (p *Canonicalizer) slice(w waveform.Waveform, interval scalar.Interval) (waveform.Waveform, error) {
	duration, err := p.duration(w)
	if err != nil {
		return nil, err
	} else if isIdentity(interval, duration) {
		return w, nil
	}
	//
	switch w := w.(type) {
	case *waveform.Scale:
		inner, err := p.slice(w.Waveform, interval)
		if err != nil {
			return nil, err
		}
		//
		return p.scale(w.Factor, inner)
	case *waveform.Negative:
		inner, err := p.slice(w.Waveform, interval)
		if err != nil {
			return nil, err
		}
		//
		return p.negate(inner), nil
	case *waveform.Constant:
		d, err := slice(waveform.SliceOf(w, interval), w.Duration, interval)
		if err != nil {
			return nil, err
		}
		//
		return waveform.Const(w.Value, d), nil
	}
	//
	return waveform.SliceOf(w, interval), nil
}

// Concatenate zero or more canonical waveforms.  Nested appends are spliced
// in, parts of zero duration dropped and adjacent constants of equal value
// merged.
func (p *Canonicalizer) concat(args []waveform.Waveform) (waveform.Waveform, error) {
	var parts []waveform.Waveform
	//
	for _, arg := range args {
		nested := []waveform.Waveform{arg}
		//
		if a, ok := arg.(*waveform.Append); ok {
			nested = a.Waveforms
		}
		//
		for _, part := range nested {
			duration, err := p.duration(part)
			if err != nil {
				return nil, err
			} else if scalar.IsZero(duration) {
				continue
			}
			//
			n := len(parts)
			// Merge with previous constant (if applicable)
			if n > 0 {
				if prev, ok := parts[n-1].(*waveform.Constant); ok {
					if next, ok := part.(*waveform.Constant); ok && scalar.Equal(prev.Value, next.Value) {
						parts[n-1] = waveform.Const(prev.Value, sum(prev.Duration, next.Duration))
						continue
					}
				}
			}
			//
			parts = append(parts, part)
		}
	}
	//
	switch len(parts) {
	case 0:
		return waveform.ZeroOf(scalar.Zero), nil
	case 1:
		return parts[0], nil
	default:
		return waveform.Concat(parts...), nil
	}
}
