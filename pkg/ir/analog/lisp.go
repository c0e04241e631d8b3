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
package analog

import (
	"fmt"
	"strconv"

	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/util/source/sexp"
)

// LispModulation converts a spatial modulation into an S-Expression.
func LispModulation(m SpatialModulation) sexp.SExp {
	switch m := m.(type) {
	case *UniformModulation:
		return sexp.NewSymbol("uniform")
	case *RunTimeVector:
		return sexp.NewTaggedList("vector", sexp.NewSymbol(m.Name))
	case *AssignedRunTimeVector:
		values := make([]sexp.SExp, len(m.Values))
		//
		for i, v := range m.Values {
			values[i] = sexp.NewSymbol(v.String())
		}
		//
		return sexp.NewTaggedList("vector", sexp.NewSymbol(m.Name), sexp.NewArray(values))
	case *ScaledLocations:
		list := sexp.NewTaggedList("scaled")
		//
		for _, l := range m.Locations {
			list.Append(sexp.NewList([]sexp.SExp{sexp.NewSymbol(strconv.FormatUint(uint64(l.Site), 10)),
				scalar.Lisp(l.Coeff)}))
		}
		//
		return list
	default:
		panic(fmt.Sprintf("unknown spatial modulation encountered: %T", m))
	}
}

func renderField(f *Field) sexp.SExp {
	list := sexp.NewTaggedList("field")
	//
	for _, d := range f.Drives {
		list.Append(sexp.NewList([]sexp.SExp{LispModulation(d.Target), waveform.Lisp(d.Waveform)}))
	}
	//
	return list
}

// LispPulse converts a pulse into an S-Expression.
func LispPulse(pulse PulseExpr) sexp.SExp {
	result, _ := FoldPulse[sexp.SExp](pulse, pulseLispifier{})
	return result
}

// RenderPulse converts a pulse into a string.
func RenderPulse(pulse PulseExpr) string {
	return LispPulse(pulse).String(false)
}

type pulseLispifier struct{}

func (pulseLispifier) Pulse(p *Pulse) (sexp.SExp, error) {
	list := sexp.NewTaggedList("pulse")
	//
	for _, name := range p.Names() {
		list.Append(sexp.NewTaggedList(name.String(), renderField(p.Fields[name])))
	}
	//
	return list, nil
}

func (pulseLispifier) AppendPulse(_ *AppendPulse, parts []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("append_pulse", parts...), nil
}

func (pulseLispifier) SlicePulse(p *SlicePulse, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("slice_pulse", inner, bound(p.Interval.Start), bound(p.Interval.Stop)), nil
}

func (pulseLispifier) NamedPulse(p *NamedPulse, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("named_pulse", sexp.NewSymbol(p.Name), inner), nil
}

// LispSequence converts a sequence into an S-Expression.
func LispSequence(seq SequenceExpr) sexp.SExp {
	result, _ := FoldSequence[sexp.SExp](seq, sequenceLispifier{})
	return result
}

// RenderSequence converts a sequence into a string.
func RenderSequence(seq SequenceExpr) string {
	return LispSequence(seq).String(false)
}

type sequenceLispifier struct{}

func (sequenceLispifier) Sequence(s *Sequence) (sexp.SExp, error) {
	list := sexp.NewTaggedList("sequence")
	//
	for _, c := range s.Couplings() {
		list.Append(sexp.NewTaggedList(c.String(), LispPulse(s.Pulses[c])))
	}
	//
	return list, nil
}

func (sequenceLispifier) AppendSequence(_ *AppendSequence, parts []sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("append_sequence", parts...), nil
}

func (sequenceLispifier) SliceSequence(s *SliceSequence, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("slice_sequence", inner, bound(s.Interval.Start), bound(s.Interval.Stop)), nil
}

func (sequenceLispifier) NamedSequence(s *NamedSequence, inner sexp.SExp) (sexp.SExp, error) {
	return sexp.NewTaggedList("named_sequence", sexp.NewSymbol(s.Name), inner), nil
}

func bound(expr scalar.Scalar) sexp.SExp {
	if expr == nil {
		return sexp.NewSymbol("_")
	}
	//
	return scalar.Lisp(expr)
}
