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
package analysis

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

func Test_Scan_01(t *testing.T) {
	expr := scalar.Sum(scalar.Var("x"), scalar.Product(scalar.Var("y"), scalar.Var("x")))
	vars := Scan(expr)
	//
	assert.Equal(t, []string{"x", "y"}, vars.Scalars)
	assert.Empty(t, vars.Vectors)
	assert.Empty(t, vars.Assigned)
}

func Test_Scan_02(t *testing.T) {
	w := waveform.Concat(
		waveform.RecordOf("r", waveform.Const(scalar.Var("a"), scalar.Var("d")), waveform.Right),
		waveform.Ramp(scalar.Var("r"), scalar.Assigned("b", decimal.NewFromInt(1)), scalar.Var("d")))
	vars := Scan(w)
	//
	assert.Equal(t, []string{"a", "d", "r"}, vars.Scalars)
	assert.Equal(t, []string{"b"}, vars.Assigned)
	assert.Equal(t, []string{"r"}, vars.Recorded)
	assert.Equal(t, []string{"a", "d"}, vars.Free())
}

func Test_Scan_03(t *testing.T) {
	seq := analog.SliceSequenceOf(sequence(analog.Vector("mask"), constant("1", "4")),
		scalar.NewInterval(scalar.Var("start"), nil))
	vars := Scan(seq)
	//
	assert.Equal(t, []string{"start"}, vars.Scalars)
	assert.Equal(t, []string{"mask"}, vars.Vectors)
}

func Test_CheckAssigned_01(t *testing.T) {
	seq := sequence(analog.Uniform, waveform.Const(scalar.Var("x"), scalar.LitInt(1)))
	err := CheckAssigned(seq)
	//
	require.Error(t, err)
	assert.Equal(t, failure.Unbound, failure.KindOf(err))
	assert.Contains(t, err.Error(), "x")
}

func Test_CheckAssigned_02(t *testing.T) {
	seq := sequence(analog.Vector("mask"), constant("1", "1"))
	err := CheckAssigned(seq)
	//
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mask")
}

func Test_CheckAssigned_03(t *testing.T) {
	seq := sequence(analog.Uniform, waveform.Const(scalar.Assigned("x", decimal.NewFromInt(2)), scalar.LitInt(1)))
	assert.NoError(t, CheckAssigned(seq))
}

func Test_Channels_01(t *testing.T) {
	lhs := sequence(analog.Uniform, constant("1", "1"))
	rhs := sequence(analog.Vector("mask"), constant("1", "1"))
	channels := Channels(analog.ConcatSequences(lhs, rhs, lhs))
	//
	require.Len(t, channels, 2)
	assert.Equal(t, "rydberg.detuning[uniform]", channels[0].String())
	assert.Equal(t, "rydberg.detuning[mask]", channels[1].String())
}

// ============================================================================
// Helpers
// ============================================================================

func constant(value string, duration string) waveform.Waveform {
	return waveform.Const(scalar.MustCast(value), scalar.MustCast(duration))
}

func sequence(target analog.SpatialModulation, w waveform.Waveform) *analog.Sequence {
	field := analog.NewField(analog.Drive{Target: target, Waveform: w})
	pulse := analog.NewPulse(map[analog.FieldName]*analog.Field{analog.Detuning: field})
	//
	return analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{analog.Rydberg: pulse})
}
