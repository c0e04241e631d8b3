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
package codec

import (
	"fmt"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/piecewise"
	"github.com/consensys/go-analog/pkg/register"
	"github.com/consensys/go-analog/pkg/util/source/sexp"
	"github.com/shopspring/decimal"
)

// Encode converts an IR node into a tagged S-Expression, where every node is a
// list whose head identifies its variant.  Supported nodes are scalars,
// waveforms, spatial modulations, fields, pulses, sequences, circuits,
// register layouts and breakpoint series.  This fails for any waveform which
// embeds native code.
func Encode(node any) (sexp.SExp, error) {
	switch n := node.(type) {
	case scalar.Scalar:
		return encodeScalar(n), nil
	case waveform.Waveform:
		return encodeWaveform(n)
	case analog.SpatialModulation:
		return encodeModulation(n), nil
	case *analog.Field:
		return encodeField(n)
	case analog.PulseExpr:
		return analog.FoldPulse[sexp.SExp](n, pulseEncoder{})
	case analog.SequenceExpr:
		return analog.FoldSequence[sexp.SExp](n, sequenceEncoder{})
	case *analog.Circuit:
		return encodeCircuit(n)
	case register.Layout:
		return encodeRegister(n), nil
	case *piecewise.Linear:
		return encodeSeries("piecewise_linear", n.Times, n.Values), nil
	case *piecewise.Constant:
		return encodeSeries("piecewise_constant", n.Times, n.Values), nil
	default:
		panic(fmt.Sprintf("unknown node encountered: %T", node))
	}
}

// EncodeString converts an IR node into its textual tagged form.
func EncodeString(node any) (string, error) {
	term, err := Encode(node)
	if err != nil {
		return "", err
	}
	//
	return term.String(true), nil
}

// ============================================================================
// Scalars
// ============================================================================

func encodeScalar(expr scalar.Scalar) sexp.SExp {
	term, _ := scalar.Fold[sexp.SExp](expr, scalarEncoder{})
	return term
}

type scalarEncoder struct{}

var _ scalar.Visitor[sexp.SExp] = scalarEncoder{}

func (scalarEncoder) Literal(e *scalar.Literal) (sexp.SExp, error) {
	return sexp.NewTaggedList("literal", number(e.Value)), nil
}

func (scalarEncoder) Variable(e *scalar.Variable) (sexp.SExp, error) {
	return sexp.NewTaggedList("variable", sexp.NewSymbol(e.Name)), nil
}

func (scalarEncoder) AssignedVariable(e *scalar.AssignedVariable) (sexp.SExp, error) {
	return sexp.NewTaggedList("assigned_variable", sexp.NewSymbol(e.Name), number(e.Value)), nil
}

func (scalarEncoder) Negative(_ *scalar.Negative, expr sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("negative", expr), nil
}

func (scalarEncoder) Add(_ *scalar.Add, lhs sexp.SExp, rhs sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("add", lhs, rhs), nil
}

func (scalarEncoder) Mul(_ *scalar.Mul, lhs sexp.SExp, rhs sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("mul", lhs, rhs), nil
}

func (scalarEncoder) Div(_ *scalar.Div, lhs sexp.SExp, rhs sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("div", lhs, rhs), nil
}

func (scalarEncoder) Min(_ *scalar.Min, exprs []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("min", exprs...), nil
}

func (scalarEncoder) Max(_ *scalar.Max, exprs []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("max", exprs...), nil
}

func (scalarEncoder) Slice(_ *scalar.Slice, expr sexp.SExp, start *sexp.SExp, stop *sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("slice", expr, optional(start), optional(stop)), nil
}

// ============================================================================
// Waveforms
// ============================================================================

func encodeWaveform(w waveform.Waveform) (sexp.SExp, error) {
	return waveform.Fold[sexp.SExp](w, waveformEncoder{})
}

type waveformEncoder struct{}

var _ waveform.Visitor[sexp.SExp] = waveformEncoder{}

func (waveformEncoder) Constant(w *waveform.Constant) (sexp.SExp, error) {
	return sexp.NewTaggedList("constant_waveform", encodeScalar(w.Value), encodeScalar(w.Duration)), nil
}

func (waveformEncoder) Linear(w *waveform.Linear) (sexp.SExp, error) {
	return sexp.NewTaggedList("linear_waveform", encodeScalar(w.Start), encodeScalar(w.Stop),
		encodeScalar(w.Duration)), nil
}

func (waveformEncoder) Poly(w *waveform.Poly) (sexp.SExp, error) {
	coeffs := make([]sexp.SExp, len(w.Coeffs))
	//
	for i, c := range w.Coeffs {
		coeffs[i] = encodeScalar(c)
	}
	//
	return sexp.NewTaggedList("poly_waveform", sexp.NewArray(coeffs), encodeScalar(w.Duration)), nil
}

func (waveformEncoder) Native(w *waveform.Native) (sexp.SExp, error) {
	return nil, &failure.SerializationUnsupported{Node: w.String()}
}

func (waveformEncoder) Negative(_ *waveform.Negative, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("negative_waveform", inner), nil
}

func (waveformEncoder) Add(_ *waveform.Add, lhs sexp.SExp, rhs sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("add_waveform", lhs, rhs), nil
}

func (waveformEncoder) Scale(w *waveform.Scale, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("scale_waveform", encodeScalar(w.Factor), inner), nil
}

func (waveformEncoder) Slice(w *waveform.Slice, inner sexp.SExp) (sexp.SExp, error) {
	start, stop := encodeInterval(w.Interval)
	return sexp.NewTaggedList("slice_waveform", inner, start, stop), nil
}

func (waveformEncoder) Append(_ *waveform.Append, parts []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("append_waveform", parts...), nil
}

func (waveformEncoder) Record(w *waveform.Record, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("record_waveform", sexp.NewSymbol(w.Var), inner, sexp.NewSymbol(w.Side.String())), nil
}

func (waveformEncoder) Sample(w *waveform.Sample, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("sample_waveform", inner, encodeScalar(w.Step),
		sexp.NewSymbol(w.Interpolation.String())), nil
}

func (waveformEncoder) Smooth(w *waveform.Smooth, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("smooth_waveform", inner, encodeScalar(w.Radius),
		sexp.NewSymbol(w.Kernel.String())), nil
}

func (waveformEncoder) Aligned(w *waveform.Aligned, inner sexp.SExp) (sexp.SExp, error) {
	var value sexp.SExp = sexp.NewSymbol(w.Value.Side.String())
	//
	if !w.Value.IsBoundary() {
		value = encodeScalar(w.Value.Value)
	}
	//
	return sexp.NewTaggedList("aligned_waveform", inner, sexp.NewSymbol(w.Alignment.String()), value), nil
}

// ============================================================================
// Fields, Pulses & Sequences
// ============================================================================

func encodeModulation(m analog.SpatialModulation) sexp.SExp {
	switch m := m.(type) {
	case *analog.UniformModulation:
		return sexp.NewTaggedList("uniform")
	case *analog.RunTimeVector:
		return sexp.NewTaggedList("run_time_vector", sexp.NewSymbol(m.Name))
	case *analog.AssignedRunTimeVector:
		return sexp.NewTaggedList("assigned_run_time_vector", sexp.NewSymbol(m.Name), numbers(m.Values))
	case *analog.ScaledLocations:
		list := sexp.NewTaggedList("scaled_locations")
		//
		for _, l := range m.Locations {
			list.Append(sexp.NewTaggedList("location", sexp.NewSymbol(fmt.Sprint(l.Site)), encodeScalar(l.Coeff)))
		}
		//
		return list
	default:
		panic(fmt.Sprintf("unknown spatial modulation encountered: %T", m))
	}
}

func encodeField(f *analog.Field) (sexp.SExp, error) {
	list := sexp.NewTaggedList("field")
	//
	for _, d := range f.Drives {
		w, err := encodeWaveform(d.Waveform)
		if err != nil {
			return nil, err
		}
		//
		list.Append(sexp.NewTaggedList("drive", encodeModulation(d.Target), w))
	}
	//
	return list, nil
}

type pulseEncoder struct{}

func (pulseEncoder) Pulse(p *analog.Pulse) (sexp.SExp, error) {
	list := sexp.NewTaggedList("pulse")
	//
	for _, name := range p.Names() {
		field, err := encodeField(p.Fields[name])
		if err != nil {
			return nil, err
		}
		//
		list.Append(sexp.NewTaggedList(name.String(), field))
	}
	//
	return list, nil
}

func (pulseEncoder) AppendPulse(_ *analog.AppendPulse, parts []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("append_pulse", parts...), nil
}

func (pulseEncoder) SlicePulse(p *analog.SlicePulse, inner sexp.SExp) (sexp.SExp, error) {
	start, stop := encodeInterval(p.Interval)
	return sexp.NewTaggedList("slice_pulse", inner, start, stop), nil
}

func (pulseEncoder) NamedPulse(p *analog.NamedPulse, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("named_pulse", sexp.NewSymbol(p.Name), inner), nil
}

type sequenceEncoder struct{}

func (sequenceEncoder) Sequence(s *analog.Sequence) (sexp.SExp, error) {
	list := sexp.NewTaggedList("sequence")
	//
	for _, coupling := range s.Couplings() {
		pulse, err := analog.FoldPulse[sexp.SExp](s.Pulses[coupling], pulseEncoder{})
		if err != nil {
			return nil, err
		}
		//
		list.Append(sexp.NewTaggedList(coupling.String(), pulse))
	}
	//
	return list, nil
}

func (sequenceEncoder) AppendSequence(_ *analog.AppendSequence, parts []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("append_sequence", parts...), nil
}

func (sequenceEncoder) SliceSequence(s *analog.SliceSequence, inner sexp.SExp) (sexp.SExp, error) {
	start, stop := encodeInterval(s.Interval)
	return sexp.NewTaggedList("slice_sequence", inner, start, stop), nil
}

func (sequenceEncoder) NamedSequence(s *analog.NamedSequence, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("named_sequence", sexp.NewSymbol(s.Name), inner), nil
}

func encodeCircuit(c *analog.Circuit) (sexp.SExp, error) {
	seq, err := analog.FoldSequence[sexp.SExp](c.Sequence, sequenceEncoder{})
	if err != nil {
		return nil, err
	}
	//
	return sexp.NewTaggedList("circuit", encodeRegister(c.Register), seq), nil
}

// ============================================================================
// Registers & Series
// ============================================================================

// Layouts are encoded by their sites, hence a parallel register decodes as the
// equivalent flat register.
func encodeRegister(layout register.Layout) sexp.SExp {
	list := sexp.NewTaggedList("register")
	//
	for _, site := range layout.Sites() {
		tag := "site"
		//
		if !site.Filled {
			tag = "vacant"
		}
		//
		list.Append(sexp.NewTaggedList(tag, number(site.X), number(site.Y)))
	}
	//
	return list
}

func encodeSeries(tag string, times []decimal.Decimal, values []decimal.Decimal) sexp.SExp {
	return sexp.NewTaggedList(tag, numbers(times), numbers(values))
}

// ============================================================================
// Helpers
// ============================================================================

func encodeInterval(interval scalar.Interval) (sexp.SExp, sexp.SExp) {
	var start, stop *sexp.SExp
	//
	if interval.Start != nil {
		s := encodeScalar(interval.Start)
		start = &s
	}
	//
	if interval.Stop != nil {
		s := encodeScalar(interval.Stop)
		stop = &s
	}
	//
	return optional(start), optional(stop)
}

func optional(term *sexp.SExp) sexp.SExp {
	if term == nil {
		return sexp.NewSymbol(absent)
	}
	//
	return *term
}

func number(value decimal.Decimal) sexp.SExp {
	return sexp.NewSymbol(value.String())
}

func numbers(values []decimal.Decimal) sexp.SExp {
	terms := make([]sexp.SExp, len(values))
	//
	for i, v := range values {
		terms[i] = number(v)
	}
	//
	return sexp.NewArray(terms)
}
