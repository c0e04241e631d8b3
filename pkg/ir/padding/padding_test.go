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
	"testing"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Padding_01(t *testing.T) {
	// Missing fields are driven by zero.
	seq := sequence(analog.Rydberg, analog.RabiAmplitude, analog.Uniform, ramp("0", "1", "2"))
	padded := check_Padded(t, seq)
	pulse := padded.Pulses[analog.Rydberg].(*analog.Pulse)
	//
	require.Len(t, pulse.Fields, 3)
	//
	for _, name := range []analog.FieldName{analog.Detuning, analog.RabiPhase} {
		w, ok := pulse.Fields[name].Lookup(analog.Uniform)
		require.True(t, ok)
		assert.Equal(t, "(constant 0 2)", w.String())
	}
}

func Test_Padding_02(t *testing.T) {
	// Shorter waveforms get a trailing zero.
	field := analog.NewField(
		analog.Drive{Target: analog.Uniform, Waveform: ramp("0", "1", "3")},
		analog.Drive{Target: analog.Vector("mask"), Waveform: constant("2", "1")},
	)
	seq := analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{
		analog.Rydberg: analog.NewPulse(map[analog.FieldName]*analog.Field{analog.Detuning: field}),
	})
	padded := check_Padded(t, seq)
	w, ok := padded.Pulses[analog.Rydberg].(*analog.Pulse).Fields[analog.Detuning].Lookup(analog.Vector("mask"))
	//
	require.True(t, ok)
	check_Value(t, w, "0.5", "2")
	check_Value(t, w, "2", "0")
}

func Test_Padding_03(t *testing.T) {
	// Right-aligned waveforms are padded on the left.
	aligned := waveform.Align(constant("3", "1"), waveform.Right, waveform.BoundaryValue(waveform.Left))
	w := check_PadAgainst(t, aligned, ramp("0", "1", "3"))
	//
	assert.Equal(t, "(append (constant 3 2) (constant 3 1))", w.String())
}

func Test_Padding_04(t *testing.T) {
	// Left-aligned waveforms are padded on the right.
	aligned := waveform.Align(ramp("1", "2", "1"), waveform.Left, waveform.ExplicitValue(scalar.LitInt(5)))
	w := check_PadAgainst(t, aligned, ramp("0", "1", "2"))
	//
	assert.Equal(t, "(append (linear 1 2 1) (constant 5 1))", w.String())
}

func Test_Padding_05(t *testing.T) {
	// Aligned waveforms which need no padding are unwrapped.
	aligned := waveform.Align(ramp("1", "2", "2"), waveform.Left, waveform.BoundaryValue(waveform.Right))
	w := check_PadAgainst(t, aligned, ramp("0", "1", "2"))
	//
	assert.Equal(t, "(linear 1 2 2)", w.String())
}

func Test_Padding_06(t *testing.T) {
	// Couplings are padded to the duration of the sequence.
	long := analog.NewPulse(map[analog.FieldName]*analog.Field{
		analog.Detuning: analog.NewField(analog.Drive{Target: analog.Uniform, Waveform: constant("1", "4")}),
	})
	short := analog.NewPulse(map[analog.FieldName]*analog.Field{
		analog.RabiAmplitude: analog.NewField(analog.Drive{Target: analog.Uniform, Waveform: constant("1", "1")}),
	})
	seq := analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{analog.Rydberg: long, analog.Hyperfine: short})
	padded := check_Padded(t, seq)
	//
	for _, c := range analog.LevelCouplings {
		d := scalar.MustEvaluate(analog.PulseDuration(padded.Pulses[c]))
		assert.True(t, d.Equal(dec("4")), "coupling %s has duration %s", c, d)
	}
}

func Test_Padding_07(t *testing.T) {
	// Every part of an append is padded.
	lhs := sequence(analog.Rydberg, analog.Detuning, analog.Uniform, constant("1", "1"))
	rhs := sequence(analog.Rydberg, analog.RabiAmplitude, analog.Vector("mask"), constant("1", "2"))
	seq := analog.ConcatSequences(lhs, rhs)
	//
	result, err := PadAll(seq, nil)
	require.NoError(t, err)
	//
	parts := result.(*analog.AppendSequence).Sequences
	require.Len(t, parts, 2)
	//
	for _, part := range parts {
		pulse := part.(*analog.Sequence).Pulses[analog.Rydberg].(*analog.Pulse)
		_, ok := pulse.Fields[analog.RabiAmplitude].Lookup(analog.Vector("mask"))
		assert.True(t, ok)
		_, ok = pulse.Fields[analog.Detuning].Lookup(analog.Uniform)
		assert.True(t, ok)
	}
}

func Test_Padding_08(t *testing.T) {
	// Durations can depend on bindings.
	seq := sequence(analog.Rydberg, analog.Detuning, analog.Uniform,
		waveform.Const(scalar.LitInt(1), scalar.Var("t")))
	//
	_, err := PadAll(seq, nil)
	assert.Equal(t, failure.Unbound, failure.KindOf(err))
	//
	_, err = PadAll(seq, scalar.Bindings{"t": dec("2")})
	assert.NoError(t, err)
}

func Test_CheckDuration_01(t *testing.T) {
	seq := sequence(analog.Rydberg, analog.Detuning, analog.Uniform, constant("1", "4"))
	//
	assert.NoError(t, CheckDuration(seq, dec("4"), nil))
	//
	err := CheckDuration(seq, dec("3.5"), nil)
	assert.Equal(t, failure.OutOfBounds, failure.KindOf(err))
}

// ============================================================================
// Helpers
// ============================================================================

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func constant(value string, duration string) waveform.Waveform {
	return waveform.Const(scalar.MustCast(value), scalar.MustCast(duration))
}

func ramp(start string, stop string, duration string) waveform.Waveform {
	return waveform.Ramp(scalar.MustCast(start), scalar.MustCast(stop), scalar.MustCast(duration))
}

func sequence(coupling analog.LevelCoupling, name analog.FieldName, target analog.SpatialModulation,
	w waveform.Waveform) *analog.Sequence {
	field := analog.NewField(analog.Drive{Target: target, Waveform: w})
	pulse := analog.NewPulse(map[analog.FieldName]*analog.Field{name: field})
	//
	return analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{coupling: pulse})
}

// Pad a sequence and check every waveform within each pulse has equal
// duration.
func check_Padded(t *testing.T, seq analog.SequenceExpr) *analog.Sequence {
	t.Helper()
	//
	result, err := PadAll(seq, nil)
	require.NoError(t, err)
	//
	padded, ok := result.(*analog.Sequence)
	require.True(t, ok)
	//
	for _, c := range padded.Couplings() {
		pulse, ok := padded.Pulses[c].(*analog.Pulse)
		if !ok {
			continue
		}
		//
		duration := scalar.MustEvaluate(analog.PulseDuration(pulse))
		//
		for _, f := range pulse.Fields {
			for _, d := range f.Drives {
				wd, err := waveform.DurationOf(d.Waveform, nil)
				require.NoError(t, err)
				assert.True(t, wd.Equal(duration), "%s has duration %s, expected %s", d.Waveform, wd, duration)
			}
		}
	}
	//
	return padded
}

// Pad a waveform against another, returning the padded waveform.
func check_PadAgainst(t *testing.T, w waveform.Waveform, other waveform.Waveform) waveform.Waveform {
	t.Helper()
	//
	field := analog.NewField(
		analog.Drive{Target: analog.Uniform, Waveform: w},
		analog.Drive{Target: analog.Vector("other"), Waveform: other},
	)
	seq := analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{
		analog.Rydberg: analog.NewPulse(map[analog.FieldName]*analog.Field{analog.Detuning: field}),
	})
	padded := check_Padded(t, seq)
	result, ok := padded.Pulses[analog.Rydberg].(*analog.Pulse).Fields[analog.Detuning].Lookup(analog.Uniform)
	require.True(t, ok)
	//
	return result
}

func check_Value(t *testing.T, w waveform.Waveform, time string, expected string) {
	t.Helper()
	//
	v, err := waveform.ValueAt(w, dec(time), nil)
	require.NoError(t, err)
	assert.True(t, v.Equal(dec(expected)), "expected %s at %s, got %s", expected, time, v)
}
