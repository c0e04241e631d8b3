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
	"slices"

	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
)

// Flatten eliminates every append, slice and named wrapper from a sequence,
// producing a sequence of plain pulses where each channel holds a single
// waveform.  Appends are resolved channel by channel, such that a channel
// missing from some part is driven by zero for the duration of that part.
// Slices are pushed into the waveforms of each channel.  Flattening assumes
// every channel within a given part already has the same duration (e.g.
// because the sequence has been padded).
func Flatten(seq SequenceExpr) *Sequence {
	result, _ := FoldSequence[*Sequence](seq, sequenceFlattener{})
	return result
}

// FlattenPulse eliminates every append, slice and named wrapper from a pulse.
func FlattenPulse(pulse PulseExpr) *Pulse {
	result, _ := FoldPulse[*Pulse](pulse, pulseFlattener{})
	return result
}

// IsFlat checks whether a sequence consists only of plain pulses.
func IsFlat(seq SequenceExpr) bool {
	s, ok := seq.(*Sequence)
	if !ok {
		return false
	}
	//
	for _, p := range s.Pulses {
		if _, ok := p.(*Pulse); !ok {
			return false
		}
	}
	//
	return true
}

type sequenceFlattener struct{}

func (sequenceFlattener) Sequence(s *Sequence) (*Sequence, error) {
	pulses := make(map[LevelCoupling]PulseExpr)
	//
	for c, p := range s.Pulses {
		pulses[c] = FlattenPulse(p)
	}
	//
	return NewSequence(pulses), nil
}

func (sequenceFlattener) AppendSequence(_ *AppendSequence, parts []*Sequence) (*Sequence, error) {
	var (
		durations = make([]scalar.Scalar, len(parts))
		couplings []LevelCoupling
		pulses    = make(map[LevelCoupling]PulseExpr)
	)
	//
	for i, part := range parts {
		durations[i] = SequenceDuration(part)
		//
		for _, c := range part.Couplings() {
			if !slices.Contains(couplings, c) {
				couplings = append(couplings, c)
			}
		}
	}
	//
	for _, c := range couplings {
		column := make([]*Pulse, len(parts))
		//
		for i, part := range parts {
			if p, ok := part.Pulses[c]; ok {
				column[i] = p.(*Pulse)
			} else {
				column[i] = NewPulse(nil)
			}
		}
		//
		pulses[c] = appendFlat(column, durations)
	}
	//
	return NewSequence(pulses), nil
}

func (sequenceFlattener) SliceSequence(s *SliceSequence, inner *Sequence) (*Sequence, error) {
	pulses := make(map[LevelCoupling]PulseExpr)
	//
	for c, p := range inner.Pulses {
		pulses[c] = sliceFlat(p.(*Pulse), s.Interval)
	}
	//
	return NewSequence(pulses), nil
}

func (sequenceFlattener) NamedSequence(_ *NamedSequence, inner *Sequence) (*Sequence, error) {
	return inner, nil
}

type pulseFlattener struct{}

func (pulseFlattener) Pulse(p *Pulse) (*Pulse, error) {
	return p, nil
}

func (pulseFlattener) AppendPulse(_ *AppendPulse, parts []*Pulse) (*Pulse, error) {
	durations := make([]scalar.Scalar, len(parts))
	//
	for i, part := range parts {
		durations[i] = PulseDuration(part)
	}
	//
	return appendFlat(parts, durations), nil
}

func (pulseFlattener) SlicePulse(p *SlicePulse, inner *Pulse) (*Pulse, error) {
	return sliceFlat(inner, p.Interval), nil
}

func (pulseFlattener) NamedPulse(_ *NamedPulse, inner *Pulse) (*Pulse, error) {
	return inner, nil
}

// Concatenate flat pulses channel by channel, where the given durations are
// used to fill channels missing from any part.
func appendFlat(parts []*Pulse, durations []scalar.Scalar) *Pulse {
	var (
		names  []FieldName
		fields = make(map[FieldName]*Field)
	)
	//
	for _, part := range parts {
		for _, name := range part.Names() {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}
	//
	for _, name := range names {
		var targets []SpatialModulation
		//
		for _, part := range parts {
			if f, ok := part.Fields[name]; ok {
				for _, t := range f.Targets() {
					if !containsTarget(targets, t) {
						targets = append(targets, t)
					}
				}
			}
		}
		//
		drives := make([]Drive, len(targets))
		//
		for j, target := range targets {
			pieces := make([]waveform.Waveform, len(parts))
			//
			for i, part := range parts {
				pieces[i] = waveform.ZeroOf(durations[i])
				//
				if f, ok := part.Fields[name]; ok {
					if w, ok := f.Lookup(target); ok {
						pieces[i] = w
					}
				}
			}
			//
			drives[j] = Drive{target, waveform.Concat(pieces...)}
		}
		//
		fields[name] = NewField(drives...)
	}
	//
	return NewPulse(fields)
}

func sliceFlat(pulse *Pulse, interval scalar.Interval) *Pulse {
	fields := make(map[FieldName]*Field)
	//
	for name, f := range pulse.Fields {
		drives := make([]Drive, len(f.Drives))
		//
		for i, d := range f.Drives {
			drives[i] = Drive{d.Target, waveform.SliceOf(d.Waveform, interval)}
		}
		//
		fields[name] = NewField(drives...)
	}
	//
	return NewPulse(fields)
}

func containsTarget(items []SpatialModulation, item SpatialModulation) bool {
	for _, t := range items {
		if EqualModulation(t, item) {
			return true
		}
	}
	//
	return false
}
