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
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/util/collection/stack"
	"github.com/shopspring/decimal"
)

// Scan computes the bindings introduced by record waveforms within a given
// circuit.  Records are visited left-to-right, and each record is evaluated
// under the bindings accumulated so far.  Thus, a record can refer to any
// variable recorded before it.  The tree itself is not modified.  The result
// includes the initial bindings.
func Scan(circuit *analog.Circuit, bindings Bindings) (Bindings, error) {
	return ScanSequence(circuit.Sequence, bindings)
}

// ScanSequence computes the bindings introduced by record waveforms within a
// given sequence (see Scan).
func ScanSequence(seq analog.SequenceExpr, bindings Bindings) (Bindings, error) {
	var (
		result = bindings.Clone()
		err    error
	)
	//
	for _, w := range waveformsOf(seq) {
		for _, r := range records(w) {
			if err = record(r, result); err != nil {
				return result, err
			}
		}
	}
	//
	return result, nil
}

// Evaluate the boundary value of a record and bind it.
func record(r *waveform.Record, bindings Bindings) error {
	var (
		time decimal.Decimal
		err  error
	)
	//
	if r.Side == waveform.Right {
		if time, err = waveform.DurationOf(r.Waveform, bindings.Scalars); err != nil {
			return err
		}
	}
	//
	value, err := waveform.ValueAt(r.Waveform, time, bindings.Scalars)
	if err != nil {
		return err
	}
	//
	return bindings.Bind(r.Var, value)
}

// Collect the records of a waveform in post-order, left-to-right.  Nested
// records are thus visited before their enclosing record.
func records(w waveform.Waveform) []*waveform.Record {
	var (
		result   []*waveform.Record
		worklist = stack.NewStack[waveform.Waveform]()
	)
	// Visit right-to-left in pre-order, then reverse.
	worklist.Push(w)
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		if r, ok := next.(*waveform.Record); ok {
			result = append(result, r)
		}
		//
		worklist.PushAll(waveform.Children(next))
	}
	//
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	//
	return result
}

// Collect every waveform of a sequence in left-to-right order.  Couplings,
// field names and drives are visited in their canonical order.
func waveformsOf(seq analog.SequenceExpr) []waveform.Waveform {
	var (
		result    []waveform.Waveform
		sequences = stack.NewStack[analog.SequenceExpr]()
	)
	//
	sequences.Push(seq)
	//
	for !sequences.IsEmpty() {
		next := sequences.Pop()
		//
		if s, ok := next.(*analog.Sequence); ok {
			for _, c := range s.Couplings() {
				result = append(result, pulseWaveformsOf(s.Pulses[c])...)
			}
		}
		//
		sequences.PushReversed(analog.SequenceChildren(next))
	}
	//
	return result
}

func pulseWaveformsOf(pulse analog.PulseExpr) []waveform.Waveform {
	var (
		result []waveform.Waveform
		pulses = stack.NewStack[analog.PulseExpr]()
	)
	//
	pulses.Push(pulse)
	//
	for !pulses.IsEmpty() {
		next := pulses.Pop()
		//
		if p, ok := next.(*analog.Pulse); ok {
			for _, name := range p.Names() {
				for _, d := range p.Fields[name].Drives {
					result = append(result, d.Waveform)
				}
			}
		}
		//
		pulses.PushReversed(analog.PulseChildren(next))
	}
	//
	return result
}
