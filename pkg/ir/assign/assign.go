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
package assign

import (
	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
)

// Scalar replaces every variable of an expression which has a binding with an
// assigned variable holding its value.  Variables without a binding are left
// as is.  This fails if an assigned variable has a binding.
func Scalar(expr scalar.Scalar, bindings Bindings) (scalar.Scalar, error) {
	return scalar.Fold[scalar.Scalar](expr, scalarAssigner{bindings.Scalars})
}

// Waveform assigns every scalar within a waveform (see Scalar).  Any record
// whose variable has a binding is dissolved into its enclosed waveform, since
// the recorded value is now known.
func Waveform(w waveform.Waveform, bindings Bindings) (waveform.Waveform, error) {
	return waveform.Fold[waveform.Waveform](w, waveformAssigner{bindings})
}

// Field assigns every waveform and spatial modulation of a field.  Run-time
// vectors with a binding become assigned vectors.
func Field(f *analog.Field, bindings Bindings) (*analog.Field, error) {
	var (
		changed bool
		drives  = make([]analog.Drive, len(f.Drives))
	)
	//
	for i, d := range f.Drives {
		target, err := modulation(d.Target, bindings)
		if err != nil {
			return nil, err
		}
		//
		w, err := Waveform(d.Waveform, bindings)
		if err != nil {
			return nil, err
		}
		//
		drives[i] = analog.Drive{Target: target, Waveform: w}
		changed = changed || target != d.Target || w != d.Waveform
	}
	//
	if !changed {
		return f, nil
	}
	//
	return analog.NewField(drives...), nil
}

// Pulse assigns every field of a pulse, along with the bounds of any slices.
func Pulse(pulse analog.PulseExpr, bindings Bindings) (analog.PulseExpr, error) {
	return analog.FoldPulse[analog.PulseExpr](pulse, pulseAssigner{bindings})
}

// Sequence assigns every pulse of a sequence, along with the bounds of any
// slices.
func Sequence(seq analog.SequenceExpr, bindings Bindings) (analog.SequenceExpr, error) {
	return analog.FoldSequence[analog.SequenceExpr](seq, sequenceAssigner{bindings})
}

// Circuit assigns the sequence of a circuit.
func Circuit(circuit *analog.Circuit, bindings Bindings) (*analog.Circuit, error) {
	seq, err := Sequence(circuit.Sequence, bindings)
	if err != nil {
		return nil, err
	}
	//
	return circuit.WithSequence(seq), nil
}

// ============================================================================
// Scalars
// ============================================================================

type scalarAssigner struct {
	bindings scalar.Bindings
}

var _ scalar.Visitor[scalar.Scalar] = scalarAssigner{}

func (p scalarAssigner) Literal(e *scalar.Literal) (scalar.Scalar, error) {
	return e, nil
}

func (p scalarAssigner) Variable(e *scalar.Variable) (scalar.Scalar, error) {
	if v, ok := p.bindings[e.Name]; ok {
		return scalar.Assigned(e.Name, v), nil
	}
	//
	return e, nil
}

func (p scalarAssigner) AssignedVariable(e *scalar.AssignedVariable) (scalar.Scalar, error) {
	if v, ok := p.bindings[e.Name]; ok {
		return nil, &failure.ReassignmentConflict{Name: e.Name, Existing: e.Value.String(), Attempted: v.String()}
	}
	//
	return e, nil
}

func (p scalarAssigner) Negative(e *scalar.Negative, expr scalar.Scalar) (scalar.Scalar, error) {
	if expr == e.Expr {
		return e, nil
	}
	//
	return scalar.Neg(expr), nil
}

func (p scalarAssigner) Add(e *scalar.Add, lhs scalar.Scalar, rhs scalar.Scalar) (scalar.Scalar, error) {
	if lhs == e.Lhs && rhs == e.Rhs {
		return e, nil
	}
	//
	return scalar.Sum(lhs, rhs), nil
}

func (p scalarAssigner) Mul(e *scalar.Mul, lhs scalar.Scalar, rhs scalar.Scalar) (scalar.Scalar, error) {
	if lhs == e.Lhs && rhs == e.Rhs {
		return e, nil
	}
	//
	return scalar.Product(lhs, rhs), nil
}

func (p scalarAssigner) Div(e *scalar.Div, lhs scalar.Scalar, rhs scalar.Scalar) (scalar.Scalar, error) {
	if lhs == e.Lhs && rhs == e.Rhs {
		return e, nil
	}
	//
	return scalar.Quotient(lhs, rhs), nil
}

func (p scalarAssigner) Min(e *scalar.Min, exprs []scalar.Scalar) (scalar.Scalar, error) {
	if identical(exprs, e.Exprs) {
		return e, nil
	}
	//
	return scalar.Minimum(exprs...), nil
}

func (p scalarAssigner) Max(e *scalar.Max, exprs []scalar.Scalar) (scalar.Scalar, error) {
	if identical(exprs, e.Exprs) {
		return e, nil
	}
	//
	return scalar.Maximum(exprs...), nil
}

func (p scalarAssigner) Slice(e *scalar.Slice, expr scalar.Scalar, start *scalar.Scalar,
	stop *scalar.Scalar) (scalar.Scalar, error) {
	//
	interval := scalar.NewInterval(deref(start), deref(stop))
	//
	if expr == e.Expr && interval == e.Interval {
		return e, nil
	}
	//
	return scalar.SliceOf(expr, interval), nil
}

func deref(expr *scalar.Scalar) scalar.Scalar {
	if expr == nil {
		return nil
	}
	//
	return *expr
}

func identical[T comparable](lhs []T, rhs []T) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if lhs[i] != rhs[i] {
			return false
		}
	}
	//
	return true
}

// Assign an optional scalar.
func optional(expr scalar.Scalar, bindings Bindings) (scalar.Scalar, error) {
	if expr == nil {
		return nil, nil
	}
	//
	return Scalar(expr, bindings)
}

// Assign a list of scalars, returning the original list when nothing changed.
func all(exprs []scalar.Scalar, bindings Bindings) ([]scalar.Scalar, error) {
	result := make([]scalar.Scalar, len(exprs))
	//
	for i, e := range exprs {
		var err error
		//
		if result[i], err = Scalar(e, bindings); err != nil {
			return nil, err
		}
	}
	//
	if identical(result, exprs) {
		return exprs, nil
	}
	//
	return result, nil
}

func interval(i scalar.Interval, bindings Bindings) (scalar.Interval, error) {
	start, err := optional(i.Start, bindings)
	if err != nil {
		return i, err
	}
	//
	stop, err := optional(i.Stop, bindings)
	//
	return scalar.NewInterval(start, stop), err
}

// ============================================================================
// Waveforms
// ============================================================================

type waveformAssigner struct {
	bindings Bindings
}

var _ waveform.Visitor[waveform.Waveform] = waveformAssigner{}

func (p waveformAssigner) Constant(w *waveform.Constant) (waveform.Waveform, error) {
	args, err := all([]scalar.Scalar{w.Value, w.Duration}, p.bindings)
	if err != nil {
		return nil, err
	} else if args[0] == w.Value && args[1] == w.Duration {
		return w, nil
	}
	//
	return waveform.Const(args[0], args[1]), nil
}

func (p waveformAssigner) Linear(w *waveform.Linear) (waveform.Waveform, error) {
	args, err := all([]scalar.Scalar{w.Start, w.Stop, w.Duration}, p.bindings)
	if err != nil {
		return nil, err
	} else if args[0] == w.Start && args[1] == w.Stop && args[2] == w.Duration {
		return w, nil
	}
	//
	return waveform.Ramp(args[0], args[1], args[2]), nil
}

func (p waveformAssigner) Poly(w *waveform.Poly) (waveform.Waveform, error) {
	coeffs, err := all(w.Coeffs, p.bindings)
	if err != nil {
		return nil, err
	}
	//
	duration, err := Scalar(w.Duration, p.bindings)
	if err != nil {
		return nil, err
	} else if identical(coeffs, w.Coeffs) && duration == w.Duration {
		return w, nil
	}
	//
	return waveform.Polynomial(coeffs, duration), nil
}

func (p waveformAssigner) Native(w *waveform.Native) (waveform.Waveform, error) {
	params, err := all(w.Params, p.bindings)
	if err != nil {
		return nil, err
	}
	//
	duration, err := Scalar(w.Duration, p.bindings)
	if err != nil {
		return nil, err
	} else if identical(params, w.Params) && duration == w.Duration {
		return w, nil
	}
	//
	return waveform.NativeOf(w.Name, w.Fn, duration, params...), nil
}

func (p waveformAssigner) Negative(w *waveform.Negative, inner waveform.Waveform) (waveform.Waveform, error) {
	if inner == w.Waveform {
		return w, nil
	}
	//
	return waveform.Negate(inner), nil
}

func (p waveformAssigner) Add(w *waveform.Add, lhs waveform.Waveform, rhs waveform.Waveform) (waveform.Waveform,
	error) {
	if lhs == w.Lhs && rhs == w.Rhs {
		return w, nil
	}
	//
	return waveform.Plus(lhs, rhs), nil
}

func (p waveformAssigner) Scale(w *waveform.Scale, inner waveform.Waveform) (waveform.Waveform, error) {
	factor, err := Scalar(w.Factor, p.bindings)
	if err != nil {
		return nil, err
	} else if factor == w.Factor && inner == w.Waveform {
		return w, nil
	}
	//
	return waveform.Scaled(factor, inner), nil
}

func (p waveformAssigner) Slice(w *waveform.Slice, inner waveform.Waveform) (waveform.Waveform, error) {
	bounds, err := interval(w.Interval, p.bindings)
	if err != nil {
		return nil, err
	} else if bounds == w.Interval && inner == w.Waveform {
		return w, nil
	}
	//
	return waveform.SliceOf(inner, bounds), nil
}

func (p waveformAssigner) Append(w *waveform.Append, parts []waveform.Waveform) (waveform.Waveform, error) {
	if identical(parts, w.Waveforms) {
		return w, nil
	}
	//
	return waveform.Concat(parts...), nil
}

func (p waveformAssigner) Record(w *waveform.Record, inner waveform.Waveform) (waveform.Waveform, error) {
	if _, ok := p.bindings.Scalars[w.Var]; ok {
		return inner, nil
	} else if inner == w.Waveform {
		return w, nil
	}
	//
	return waveform.RecordOf(w.Var, inner, w.Side), nil
}

func (p waveformAssigner) Sample(w *waveform.Sample, inner waveform.Waveform) (waveform.Waveform, error) {
	step, err := Scalar(w.Step, p.bindings)
	if err != nil {
		return nil, err
	} else if step == w.Step && inner == w.Waveform {
		return w, nil
	}
	//
	return waveform.SampleOf(inner, step, w.Interpolation), nil
}

func (p waveformAssigner) Smooth(w *waveform.Smooth, inner waveform.Waveform) (waveform.Waveform, error) {
	radius, err := Scalar(w.Radius, p.bindings)
	if err != nil {
		return nil, err
	} else if radius == w.Radius && inner == w.Waveform {
		return w, nil
	}
	//
	return waveform.SmoothOf(inner, radius, w.Kernel), nil
}

func (p waveformAssigner) Aligned(w *waveform.Aligned, inner waveform.Waveform) (waveform.Waveform, error) {
	value, err := optional(w.Value.Value, p.bindings)
	if err != nil {
		return nil, err
	} else if value == w.Value.Value && inner == w.Waveform {
		return w, nil
	}
	//
	return waveform.Align(inner, w.Alignment, waveform.AlignedValue{Value: value, Side: w.Value.Side}), nil
}

// ============================================================================
// Containers
// ============================================================================

func modulation(m analog.SpatialModulation, bindings Bindings) (analog.SpatialModulation, error) {
	switch m := m.(type) {
	case *analog.RunTimeVector:
		if values, ok := bindings.Vectors[m.Name]; ok {
			return analog.AssignedVector(m.Name, values), nil
		}
	case *analog.AssignedRunTimeVector:
		if values, ok := bindings.Vectors[m.Name]; ok {
			return nil, &failure.ReassignmentConflict{Name: m.Name, Existing: renderVector(m.Values),
				Attempted: renderVector(values)}
		}
	case *analog.ScaledLocations:
		var (
			changed   bool
			locations = make([]analog.Location, len(m.Locations))
		)
		//
		for i, l := range m.Locations {
			coeff, err := Scalar(l.Coeff, bindings)
			if err != nil {
				return nil, err
			}
			//
			locations[i] = analog.Location{Site: l.Site, Coeff: coeff}
			changed = changed || coeff != l.Coeff
		}
		//
		if changed {
			return analog.Scaled(locations...), nil
		}
	}
	//
	return m, nil
}

type pulseAssigner struct {
	bindings Bindings
}

func (p pulseAssigner) Pulse(pulse *analog.Pulse) (analog.PulseExpr, error) {
	var (
		changed bool
		fields  = make(map[analog.FieldName]*analog.Field)
	)
	//
	for name, f := range pulse.Fields {
		g, err := Field(f, p.bindings)
		if err != nil {
			return nil, err
		}
		//
		fields[name] = g
		changed = changed || g != f
	}
	//
	if !changed {
		return pulse, nil
	}
	//
	return analog.NewPulse(fields), nil
}

func (p pulseAssigner) AppendPulse(pulse *analog.AppendPulse, parts []analog.PulseExpr) (analog.PulseExpr, error) {
	if identical(parts, pulse.Pulses) {
		return pulse, nil
	}
	//
	return analog.ConcatPulses(parts...), nil
}

func (p pulseAssigner) SlicePulse(pulse *analog.SlicePulse, inner analog.PulseExpr) (analog.PulseExpr, error) {
	bounds, err := interval(pulse.Interval, p.bindings)
	if err != nil {
		return nil, err
	} else if bounds == pulse.Interval && inner == pulse.Pulse {
		return pulse, nil
	}
	//
	return analog.SlicePulseOf(inner, bounds), nil
}

func (p pulseAssigner) NamedPulse(pulse *analog.NamedPulse, inner analog.PulseExpr) (analog.PulseExpr, error) {
	if inner == pulse.Pulse {
		return pulse, nil
	}
	//
	return analog.NamePulse(pulse.Name, inner), nil
}

type sequenceAssigner struct {
	bindings Bindings
}

func (p sequenceAssigner) Sequence(seq *analog.Sequence) (analog.SequenceExpr, error) {
	var (
		changed bool
		pulses  = make(map[analog.LevelCoupling]analog.PulseExpr)
	)
	//
	for c, pulse := range seq.Pulses {
		q, err := Pulse(pulse, p.bindings)
		if err != nil {
			return nil, err
		}
		//
		pulses[c] = q
		changed = changed || q != pulse
	}
	//
	if !changed {
		return seq, nil
	}
	//
	return analog.NewSequence(pulses), nil
}

func (p sequenceAssigner) AppendSequence(seq *analog.AppendSequence,
	parts []analog.SequenceExpr) (analog.SequenceExpr, error) {
	if identical(parts, seq.Sequences) {
		return seq, nil
	}
	//
	return analog.ConcatSequences(parts...), nil
}

func (p sequenceAssigner) SliceSequence(seq *analog.SliceSequence,
	inner analog.SequenceExpr) (analog.SequenceExpr, error) {
	bounds, err := interval(seq.Interval, p.bindings)
	if err != nil {
		return nil, err
	} else if bounds == seq.Interval && inner == seq.Sequence {
		return seq, nil
	}
	//
	return analog.SliceSequenceOf(inner, bounds), nil
}

func (p sequenceAssigner) NamedSequence(seq *analog.NamedSequence,
	inner analog.SequenceExpr) (analog.SequenceExpr, error) {
	if inner == seq.Sequence {
		return seq, nil
	}
	//
	return analog.NameSequence(seq.Name, inner), nil
}
