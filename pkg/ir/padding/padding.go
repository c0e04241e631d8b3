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
package padding

import (
	"slices"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/analysis"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Channels describes the set of channels which every sequence must drive,
// grouped by level coupling and then by field.
type Channels map[analog.LevelCoupling]map[analog.FieldName][]analog.SpatialModulation

// NewChannels groups a given set of channel keys.  Every field of a coupling
// which is used at all is required, and fields without any given target are
// driven uniformly.
func NewChannels(keys []analog.ChannelKey) Channels {
	channels := make(Channels)
	//
	for coupling, group := range lo.GroupBy(keys, func(k analog.ChannelKey) analog.LevelCoupling { return k.Coupling }) {
		fields := lo.GroupBy(group, func(k analog.ChannelKey) analog.FieldName { return k.Field })
		targets := lo.MapValues(fields, func(ks []analog.ChannelKey, _ analog.FieldName) []analog.SpatialModulation {
			return lo.Map(ks, func(k analog.ChannelKey, _ int) analog.SpatialModulation { return k.Target })
		})
		//
		for _, name := range analog.FieldNames {
			if _, ok := targets[name]; !ok {
				targets[name] = []analog.SpatialModulation{analog.Uniform}
			}
		}
		//
		channels[coupling] = targets
	}
	//
	return channels
}

// Keys returns every channel key described by this set of channels, ordered by
// coupling and then by field.
func (p Channels) Keys() []analog.ChannelKey {
	var keys []analog.ChannelKey
	//
	for _, coupling := range sorted(lo.Keys(p)) {
		for _, name := range sorted(lo.Keys(p[coupling])) {
			for _, target := range p[coupling][name] {
				keys = append(keys, analog.ChannelKey{Coupling: coupling, Field: name, Target: target})
			}
		}
	}
	//
	return keys
}

// PadAll pads a sequence against the channels it uses itself (see Pad).
func PadAll(seq analog.SequenceExpr, bindings scalar.Bindings) (analog.SequenceExpr, error) {
	return Pad(seq, analysis.Channels(seq), bindings)
}

// Pad completes a sequence such that every level coupling drives every
// required field, and every field drives every required target.  Waveforms
// within a pulse are extended to the duration of the pulse, and the pulses of
// a sequence to the duration of the sequence.  Missing channels are driven by
// zero.  Durations are evaluated under the given bindings.
//
// Waveforms are extended with a trailing zero, except for aligned waveforms
// which are extended on the side opposite to their alignment using their
// alignment value.
func Pad(seq analog.SequenceExpr, keys []analog.ChannelKey, bindings scalar.Bindings) (analog.SequenceExpr, error) {
	padder := sequencePadder{NewChannels(keys), bindings}
	return analog.FoldSequence[analog.SequenceExpr](seq, padder)
}

// CheckDuration checks that the duration of a sequence does not exceed a
// given maximum.
func CheckDuration(seq analog.SequenceExpr, max decimal.Decimal, bindings scalar.Bindings) error {
	duration, err := scalar.Evaluate(analog.SequenceDuration(seq), bindings)
	if err != nil {
		return err
	} else if duration.GreaterThan(max) {
		return &failure.BoundsViolation{Channel: "duration", Time: duration, Value: duration, Min: decimal.Zero,
			Max: max}
	}
	//
	return nil
}

// ============================================================================
// Sequences
// ============================================================================

type sequencePadder struct {
	channels Channels
	bindings scalar.Bindings
}

func (p sequencePadder) Sequence(seq *analog.Sequence) (analog.SequenceExpr, error) {
	var (
		pulses    = make(map[analog.LevelCoupling]analog.PulseExpr)
		durations = make(map[analog.LevelCoupling]decimal.Decimal)
		total     decimal.Decimal
	)
	// Pad the pulses of each coupling independently
	for _, coupling := range couplingsOf(seq, p.channels) {
		var (
			pulse  analog.PulseExpr = analog.NewPulse(nil)
			padder                  = pulsePadder{coupling, p.channels[coupling], p.bindings}
			err    error
		)
		//
		if q, ok := seq.Pulses[coupling]; ok {
			pulse = q
		}
		//
		if pulses[coupling], err = analog.FoldPulse[analog.PulseExpr](pulse, padder); err != nil {
			return nil, err
		} else if durations[coupling], err = scalar.Evaluate(analog.PulseDuration(pulses[coupling]),
			p.bindings); err != nil {
			return nil, err
		}
		//
		total = decimal.Max(total, durations[coupling])
	}
	// Extend shorter pulses to the duration of the sequence
	for coupling, pulse := range pulses {
		if remainder := total.Sub(durations[coupling]); remainder.IsPositive() {
			zero := zeroPulse(p.channels[coupling], scalar.Lit(remainder))
			pulses[coupling] = analog.ConcatPulses(pulse, zero)
		}
	}
	//
	return analog.NewSequence(pulses), nil
}

func (p sequencePadder) AppendSequence(_ *analog.AppendSequence,
	parts []analog.SequenceExpr) (analog.SequenceExpr, error) {
	return analog.ConcatSequences(parts...), nil
}

func (p sequencePadder) SliceSequence(seq *analog.SliceSequence,
	inner analog.SequenceExpr) (analog.SequenceExpr, error) {
	return analog.SliceSequenceOf(inner, seq.Interval), nil
}

func (p sequencePadder) NamedSequence(seq *analog.NamedSequence,
	inner analog.SequenceExpr) (analog.SequenceExpr, error) {
	return analog.NameSequence(seq.Name, inner), nil
}

// Determine the couplings which a given sequence must drive, in order.
func couplingsOf(seq *analog.Sequence, channels Channels) []analog.LevelCoupling {
	couplings := append(seq.Couplings(), lo.Keys(channels)...)
	//
	return sorted(lo.Uniq(couplings))
}

// ============================================================================
// Pulses
// ============================================================================

type pulsePadder struct {
	coupling analog.LevelCoupling
	fields   map[analog.FieldName][]analog.SpatialModulation
	bindings scalar.Bindings
}

func (p pulsePadder) Pulse(pulse *analog.Pulse) (analog.PulseExpr, error) {
	var (
		names    = sorted(lo.Uniq(append(pulse.Names(), lo.Keys(p.fields)...)))
		duration decimal.Decimal
		fields   = make(map[analog.FieldName]*analog.Field)
	)
	// Determine the duration of this pulse
	for _, f := range pulse.Fields {
		for _, d := range f.Drives {
			wd, err := waveform.DurationOf(d.Waveform, p.bindings)
			if err != nil {
				return nil, err
			}
			//
			duration = decimal.Max(duration, wd)
		}
	}
	//
	for _, name := range names {
		var drives []analog.Drive
		//
		if f, ok := pulse.Fields[name]; ok {
			drives = f.Drives
		}
		//
		padded, err := p.padField(drives, p.fields[name], duration)
		if err != nil {
			return nil, err
		}
		//
		fields[name] = padded
	}
	//
	return analog.NewPulse(fields), nil
}

func (p pulsePadder) padField(drives []analog.Drive, targets []analog.SpatialModulation,
	duration decimal.Decimal) (*analog.Field, error) {
	var padded []analog.Drive
	//
	for _, d := range drives {
		w, err := p.padWaveform(d.Waveform, duration)
		if err != nil {
			return nil, err
		}
		//
		padded = append(padded, analog.Drive{Target: d.Target, Waveform: w})
	}
	// Add missing targets
	for _, target := range targets {
		if !lo.ContainsBy(drives, func(d analog.Drive) bool { return analog.EqualModulation(d.Target, target) }) {
			padded = append(padded, analog.Drive{Target: target, Waveform: waveform.ZeroOf(scalar.Lit(duration))})
		}
	}
	//
	return analog.NewField(padded...), nil
}

// Extend a waveform to a given duration.
func (p pulsePadder) padWaveform(w waveform.Waveform, duration decimal.Decimal) (waveform.Waveform, error) {
	var (
		aligned, isAligned = w.(*waveform.Aligned)
		inner              = w
		err                error
		current            decimal.Decimal
	)
	//
	if isAligned {
		inner = aligned.Waveform
	}
	//
	if current, err = waveform.DurationOf(inner, p.bindings); err != nil {
		return nil, err
	}
	//
	remainder := duration.Sub(current)
	//
	if !remainder.IsPositive() {
		return inner, nil
	} else if !isAligned {
		return waveform.Concat(inner, waveform.ZeroOf(scalar.Lit(remainder))), nil
	}
	// Determine padding value
	value, err := p.alignedValue(aligned, current)
	if err != nil {
		return nil, err
	}
	//
	padding := waveform.Const(value, scalar.Lit(remainder))
	//
	if aligned.Alignment == waveform.Left {
		return waveform.Concat(inner, padding), nil
	}
	//
	return waveform.Concat(padding, inner), nil
}

// Determine the value used to pad an aligned waveform, which is either given
// explicitly or taken from one edge of the waveform.
func (p pulsePadder) alignedValue(w *waveform.Aligned, duration decimal.Decimal) (scalar.Scalar, error) {
	if !w.Value.IsBoundary() {
		return w.Value.Value, nil
	}
	//
	time := decimal.Zero
	//
	if w.Value.Side == waveform.Right {
		time = duration
	}
	//
	v, err := waveform.ValueAt(w.Waveform, time, p.bindings)
	//
	return scalar.Lit(v), err
}

func (p pulsePadder) AppendPulse(_ *analog.AppendPulse, parts []analog.PulseExpr) (analog.PulseExpr, error) {
	return analog.ConcatPulses(parts...), nil
}

func (p pulsePadder) SlicePulse(pulse *analog.SlicePulse, inner analog.PulseExpr) (analog.PulseExpr, error) {
	return analog.SlicePulseOf(inner, pulse.Interval), nil
}

func (p pulsePadder) NamedPulse(pulse *analog.NamedPulse, inner analog.PulseExpr) (analog.PulseExpr, error) {
	return analog.NamePulse(pulse.Name, inner), nil
}

// Construct a pulse of zero value driving every given channel.
func zeroPulse(fields map[analog.FieldName][]analog.SpatialModulation, duration scalar.Scalar) *analog.Pulse {
	pulse := make(map[analog.FieldName]*analog.Field)
	//
	for name, targets := range fields {
		drives := lo.Map(targets, func(t analog.SpatialModulation, _ int) analog.Drive {
			return analog.Drive{Target: t, Waveform: waveform.ZeroOf(duration)}
		})
		//
		pulse[name] = analog.NewField(drives...)
	}
	//
	return analog.NewPulse(pulse)
}

func sorted[T ~uint8](items []T) []T {
	slices.Sort(items)
	return items
}
