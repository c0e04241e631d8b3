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
	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/analysis"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
)

// Field canonicalizes every drive of a field.  Drives for the same target are
// summed, whilst scaled locations driven by identical waveforms are merged
// into a single target (with coefficients summed for overlapping sites).
func (p *Canonicalizer) Field(f *analog.Field) (*analog.Field, error) {
	drives := make([]analog.Drive, len(f.Drives))
	//
	for i, d := range f.Drives {
		target, err := p.modulation(d.Target)
		if err != nil {
			return nil, err
		}
		//
		w, err := p.Waveform(d.Waveform)
		if err != nil {
			return nil, err
		}
		//
		drives[i] = analog.Drive{Target: target, Waveform: w}
	}
	// Merging one pair can enable merging another, so repeat until nothing
	// changes.  This terminates as each merge removes a drive.
	for changed := true; changed; {
		var err error
		//
		if drives, changed, err = p.mergeDrives(drives); err != nil {
			return nil, err
		}
	}
	//
	return analog.NewField(drives...), nil
}

// Merge the first pair of drives which either share a target, or are scaled
// locations sharing a waveform.
func (p *Canonicalizer) mergeDrives(drives []analog.Drive) ([]analog.Drive, bool, error) {
	for i := 0; i < len(drives); i++ {
		for j := i + 1; j < len(drives); j++ {
			var (
				merged analog.Drive
				ok     bool
				err    error
			)
			//
			if analog.EqualModulation(drives[i].Target, drives[j].Target) {
				merged.Target = drives[i].Target
				merged.Waveform, err = p.add(drives[i].Waveform, drives[j].Waveform)
				ok = true
			} else if waveform.Equal(drives[i].Waveform, drives[j].Waveform) {
				merged.Waveform = drives[i].Waveform
				merged.Target, ok, err = p.union(drives[i].Target, drives[j].Target)
			}
			//
			if err != nil {
				return nil, false, err
			} else if ok {
				result := append([]analog.Drive(nil), drives[:j]...)
				result[i] = merged
				//
				return append(result, drives[j+1:]...), true, nil
			}
		}
	}
	//
	return drives, false, nil
}

// Union two scaled locations, if that is possible.
func (p *Canonicalizer) union(lhs analog.SpatialModulation, rhs analog.SpatialModulation) (analog.SpatialModulation,
	bool, error) {
	l, lok := lhs.(*analog.ScaledLocations)
	r, rok := rhs.(*analog.ScaledLocations)
	//
	if !lok || !rok {
		return nil, false, nil
	}
	//
	locations := append(append([]analog.Location(nil), l.Locations...), r.Locations...)
	m, err := p.modulation(analog.Scaled(locations...))
	//
	return m, err == nil, err
}

// Canonicalize the coefficients of a scaled locations modulation, after
// merging duplicate sites.
func (p *Canonicalizer) modulation(m analog.SpatialModulation) (analog.SpatialModulation, error) {
	s, ok := m.(*analog.ScaledLocations)
	if !ok {
		return m, nil
	}
	// Scaled sums coefficients of duplicate sites
	s = analog.Scaled(s.Locations...)
	locations := make([]analog.Location, len(s.Locations))
	//
	for i, l := range s.Locations {
		coeff, err := p.Scalar(l.Coeff)
		if err != nil {
			return nil, err
		}
		//
		locations[i] = analog.Location{Site: l.Site, Coeff: coeff}
	}
	//
	return analog.Scaled(locations...), nil
}

// ============================================================================
// Pulses
// ============================================================================

type pulseRewriter struct {
	canonicalizer *Canonicalizer
}

func (p pulseRewriter) Pulse(pulse *analog.Pulse) (analog.PulseExpr, error) {
	fields := make(map[analog.FieldName]*analog.Field, len(pulse.Fields))
	//
	for name, f := range pulse.Fields {
		g, err := p.canonicalizer.Field(f)
		if err != nil {
			return nil, err
		}
		//
		fields[name] = g
	}
	//
	return analog.NewPulse(fields), nil
}

func (p pulseRewriter) AppendPulse(_ *analog.AppendPulse, args []analog.PulseExpr) (analog.PulseExpr, error) {
	var parts []analog.PulseExpr
	//
	for _, arg := range args {
		nested := []analog.PulseExpr{arg}
		//
		if a, ok := arg.(*analog.AppendPulse); ok {
			nested = a.Pulses
		}
		//
		parts = append(parts, nested...)
	}
	//
	parts, err := retain(p.canonicalizer, parts, analog.PulseDuration, pulseChannels)
	if err != nil {
		return nil, err
	}
	//
	switch len(parts) {
	case 0:
		return analog.NewPulse(nil), nil
	case 1:
		return parts[0], nil
	default:
		return analog.ConcatPulses(parts...), nil
	}
}

func (p pulseRewriter) SlicePulse(pulse *analog.SlicePulse, inner analog.PulseExpr) (analog.PulseExpr, error) {
	interval, err := p.canonicalizer.interval(pulse.Interval)
	if err != nil {
		return nil, err
	}
	//
	duration, err := p.canonicalizer.Scalar(analog.PulseDuration(inner))
	if err != nil {
		return nil, err
	} else if isIdentity(interval, duration) {
		return inner, nil
	}
	//
	return analog.SlicePulseOf(inner, interval), nil
}

func (p pulseRewriter) NamedPulse(pulse *analog.NamedPulse, inner analog.PulseExpr) (analog.PulseExpr, error) {
	return analog.NamePulse(pulse.Name, inner), nil
}

// ============================================================================
// Sequences
// ============================================================================

type sequenceRewriter struct {
	canonicalizer *Canonicalizer
}

func (p sequenceRewriter) Sequence(seq *analog.Sequence) (analog.SequenceExpr, error) {
	pulses := make(map[analog.LevelCoupling]analog.PulseExpr, len(seq.Pulses))
	//
	for coupling, pulse := range seq.Pulses {
		q, err := p.canonicalizer.Pulse(pulse)
		if err != nil {
			return nil, err
		}
		//
		pulses[coupling] = q
	}
	//
	return analog.NewSequence(pulses), nil
}

func (p sequenceRewriter) AppendSequence(_ *analog.AppendSequence,
	args []analog.SequenceExpr) (analog.SequenceExpr, error) {
	var parts []analog.SequenceExpr
	//
	for _, arg := range args {
		nested := []analog.SequenceExpr{arg}
		//
		if a, ok := arg.(*analog.AppendSequence); ok {
			nested = a.Sequences
		}
		//
		parts = append(parts, nested...)
	}
	//
	parts, err := retain(p.canonicalizer, parts, analog.SequenceDuration, analysis.Channels)
	if err != nil {
		return nil, err
	}
	//
	switch len(parts) {
	case 0:
		return analog.NewSequence(nil), nil
	case 1:
		return parts[0], nil
	default:
		return analog.ConcatSequences(parts...), nil
	}
}

func (p sequenceRewriter) SliceSequence(seq *analog.SliceSequence,
	inner analog.SequenceExpr) (analog.SequenceExpr, error) {
	interval, err := p.canonicalizer.interval(seq.Interval)
	if err != nil {
		return nil, err
	}
	//
	duration, err := p.canonicalizer.Scalar(analog.SequenceDuration(inner))
	if err != nil {
		return nil, err
	} else if isIdentity(interval, duration) {
		return inner, nil
	}
	//
	return analog.SliceSequenceOf(inner, interval), nil
}

func (p sequenceRewriter) NamedSequence(seq *analog.NamedSequence,
	inner analog.SequenceExpr) (analog.SequenceExpr, error) {
	return analog.NameSequence(seq.Name, inner), nil
}

// Drop the parts of an append which have zero duration, unless they are the only
// part using some channel.  Such parts contribute nothing to the waveforms, but
// their channels must survive until padding.
func retain[T any](p *Canonicalizer, parts []T, duration func(T) scalar.Scalar,
	channels func(T) []analog.ChannelKey) ([]T, error) {
	var (
		covered = hash.NewSet[analog.ChannelKey](16)
		empty   = make([]bool, len(parts))
		kept    []T
	)
	//
	for i, part := range parts {
		var err error
		//
		if empty[i], err = p.isEmpty(duration(part)); err != nil {
			return nil, err
		} else if !empty[i] {
			for _, c := range channels(part) {
				covered.Insert(c)
			}
		}
	}
	//
	for i, part := range parts {
		if empty[i] && !extends(covered, channels(part)) {
			continue
		}
		//
		kept = append(kept, part)
	}
	//
	return kept, nil
}

// Add any new channels to a covered set, returning true if there were some.
func extends(covered *hash.Set[analog.ChannelKey], channels []analog.ChannelKey) bool {
	var fresh bool
	//
	for _, c := range channels {
		fresh = !covered.Insert(c) || fresh
	}
	//
	return fresh
}

// Channels of a pulse, as used by some arbitrary coupling.
func pulseChannels(pulse analog.PulseExpr) []analog.ChannelKey {
	return analysis.Channels(analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{analog.Rydberg: pulse}))
}

// Check whether a duration canonicalizes to zero.
func (p *Canonicalizer) isEmpty(duration scalar.Scalar) (bool, error) {
	d, err := p.Scalar(duration)
	//
	return err == nil && scalar.IsZero(d), err
}
