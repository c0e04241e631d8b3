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
package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/assign"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/piecewise"
	"github.com/consensys/go-analog/pkg/register"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Compile
// ============================================================================

func Test_Compile_01(t *testing.T) {
	w := waveform.Concat(ramp("0", "1", "1"), constant("1", "2"))
	tasks := check_Compile(t, routine(t, circuit(analog.RabiAmplitude, analog.Uniform, w)), nil)
	// Missing fields are driven by zero.
	require.Len(t, tasks, 1)
	require.Len(t, tasks[0].Channels, 3)
	check_Channel(t, tasks[0].Channels[0], analog.Detuning, piecewise.LinearTarget, "0:0", "3:0")
	check_Channel(t, tasks[0].Channels[1], analog.RabiAmplitude, piecewise.LinearTarget, "0:0", "0.5:0.5",
		"1:1", "3:1")
	check_Channel(t, tasks[0].Channels[2], analog.RabiPhase, piecewise.ConstantTarget, "0:0", "3:0")
	assert.True(t, tasks[0].Duration.Equal(dec("3")))
}

func Test_Compile_02(t *testing.T) {
	w := waveform.Const(scalar.Var("omega"), num("1"))
	r := routine(t, circuit(analog.RabiAmplitude, analog.Uniform, w), scalars("omega", "1"), scalars("omega", "2.5"))
	tasks := check_Compile(t, r, nil)
	//
	require.Len(t, tasks, 2)
	//
	for i, expected := range []string{"1", "2.5"} {
		assert.Equal(t, i, tasks[i].Batch)
		check_Channel(t, tasks[i].Channels[1], analog.RabiAmplitude, piecewise.LinearTarget, "0:"+expected,
			"1:"+expected)
	}
}

func Test_Compile_03(t *testing.T) {
	w := waveform.Const(num("1"), scalar.Var("t"))
	r, err := NewRoutine(circuit(analog.Detuning, analog.Uniform, w), assign.NewBindings(), nil, []string{"t"})
	require.NoError(t, err)
	//
	tasks, err := Compile(context.Background(), r, []decimal.Decimal{dec("2")}, nil)
	require.NoError(t, err)
	assert.True(t, tasks[0].Duration.Equal(dec("2")))
	//
	_, err = Compile(context.Background(), r, nil, nil)
	assert.Error(t, err)
}

func Test_Compile_04(t *testing.T) {
	// Recorded values thread into later waveforms.
	w := waveform.Concat(waveform.RecordOf("x", ramp("0", "2", "1"), waveform.Right),
		waveform.Const(scalar.Var("x"), num("1")))
	tasks := check_Compile(t, routine(t, circuit(analog.Detuning, analog.Uniform, w)), nil)
	//
	check_Channel(t, tasks[0].Channels[0], analog.Detuning, piecewise.LinearTarget, "0:0", "1:2", "1.5:2", "2:2")
	assert.True(t, tasks[0].Bindings.Scalars["x"].Equal(dec("2")))
}

func Test_Compile_05(t *testing.T) {
	// Steps are permitted in the rabi phase.
	w := waveform.Concat(constant("1", "1"), constant("2", "1"))
	tasks := check_Compile(t, routine(t, circuit(analog.RabiPhase, analog.Uniform, w)), nil)
	//
	check_Channel(t, tasks[0].Channels[2], analog.RabiPhase, piecewise.ConstantTarget, "0:1", "0.5:1", "1:2",
		"1.5:2")
}

func Test_Compile_06(t *testing.T) {
	// Coefficients of a tiled register follow its base register.
	base := register.Chain(2, dec("4"))
	tiled, err := register.Parallelize(base, dec("6"), dec("25"), dec("5"))
	require.NoError(t, err)
	//
	target := analog.Scaled(analog.Location{Site: 1, Coeff: num("2")})
	c := analog.NewCircuit(tiled, sequence(analog.Detuning, target, constant("1", "1")))
	tasks := check_Compile(t, routine(t, c), nil)
	//
	assert.Len(t, tasks[0].Register, 6)
	assert.Len(t, tasks[0].Decoder, 6)
	//
	var channel *Channel
	//
	for i := range tasks[0].Channels {
		if analog.EqualModulation(tasks[0].Channels[i].Key.Target, target) {
			channel = &tasks[0].Channels[i]
		}
	}
	//
	require.NotNil(t, channel)
	assert.Equal(t, []string{"0", "2", "0", "2", "0", "2"}, render(channel.Coefficients))
}

func Test_Compile_07(t *testing.T) {
	// A channel driven by a run-time vector bound statically.
	static := assign.NewBindings()
	static.Vectors["mask"] = decs("0.5", "1")
	//
	c := analog.NewCircuit(register.Chain(2, dec("4")), sequence(analog.Detuning, analog.Vector("mask"),
		constant("1", "1")))
	r, err := NewRoutine(c, static, nil, nil)
	require.NoError(t, err)
	//
	tasks := check_Compile(t, r, nil)
	require.NotEmpty(t, tasks[0].Channels)
	assert.Equal(t, []string{"0.5", "1"}, render(tasks[0].Channels[0].Coefficients))
}

func Test_Compile_Invalid_01(t *testing.T) {
	w := waveform.Const(scalar.Var("omega"), num("1"))
	check_CompileFails(t, routine(t, circuit(analog.RabiAmplitude, analog.Uniform, w)), nil, failure.Unbound)
}

func Test_Compile_Invalid_02(t *testing.T) {
	w := waveform.Concat(constant("1", "1"), constant("2", "1"))
	check_CompileFails(t, routine(t, circuit(analog.Detuning, analog.Uniform, w)), nil, failure.Discontinuous)
}

func Test_Compile_Invalid_03(t *testing.T) {
	w := waveform.Concat(ramp("0", "1", "1"), ramp("1", "0", "1"))
	caps := &Capabilities{Rydberg: &Limits{RabiAmplitude: &Range{Min: bound("0"), Max: bound("0.5")}}}
	check_CompileFails(t, routine(t, circuit(analog.RabiAmplitude, analog.Uniform, w)), caps, failure.OutOfBounds)
}

func Test_Compile_Invalid_04(t *testing.T) {
	limit := bound("1")
	caps := &Capabilities{MaxTime: &limit}
	check_CompileFails(t, routine(t, circuit(analog.Detuning, analog.Uniform, constant("0", "2"))), caps,
		failure.OutOfBounds)
}

func Test_Compile_Invalid_05(t *testing.T) {
	// A polynomial of degree two cannot be lowered to piecewise linear.
	w := waveform.Polynomial([]scalar.Scalar{num("0"), num("0"), num("1")}, num("1"))
	check_CompileFails(t, routine(t, circuit(analog.Detuning, analog.Uniform, w)), nil, failure.Unsupported)
}

// ============================================================================
// Routine
// ============================================================================

func Test_Routine_Invalid_01(t *testing.T) {
	check_RoutineFails(t, assign.NewBindings(), nil, "t", "t")
}

func Test_Routine_Invalid_02(t *testing.T) {
	check_RoutineFails(t, scalars("t", "1"), nil, "t")
}

func Test_Routine_Invalid_03(t *testing.T) {
	check_RoutineFails(t, assign.NewBindings(), []assign.Bindings{scalars("t", "1")}, "t")
}

func Test_Routine_Invalid_04(t *testing.T) {
	// Vectors cannot be supplied as arguments.
	c := analog.NewCircuit(register.Chain(2, dec("4")), sequence(analog.Detuning, analog.Vector("mask"),
		constant("1", "1")))
	_, err := NewRoutine(c, assign.NewBindings(), nil, []string{"mask"})
	assert.Error(t, err)
}

func Test_Routine_Invalid_05(t *testing.T) {
	// Batches cannot rebind static parameters.
	check_RoutineFails(t, scalars("t", "1"), []assign.Bindings{scalars("t", "2")})
}

// ============================================================================
// Configuration
// ============================================================================

func Test_Job_01(t *testing.T) {
	dir := t.TempDir()
	//
	write(t, dir, "circuit.sexp", `(circuit (register (site 0 0) (site 4 0))
  (sequence (rydberg (pulse (rabi.amplitude (field (drive (uniform)
    (constant_waveform (variable omega) (literal 2)))))))))`)
	write(t, dir, "caps.yaml", `
max_time: 4
rydberg:
  rabi_amplitude: {min: 0, max: 3}
area: {width: 25, height: 5}
`)
	write(t, dir, "job.yaml", `
program: circuit.sexp
batch_params:
  - omega: 1
  - omega: "2.5"
capabilities: caps.yaml
cluster_spacing: 6
`)
	//
	job, err := LoadJob(filepath.Join(dir, "job.yaml"))
	require.NoError(t, err)
	caps, err := job.LoadCapabilities()
	require.NoError(t, err)
	r, err := job.Routine(caps)
	require.NoError(t, err)
	//
	tasks, err := Compile(context.Background(), r, nil, caps)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	// Three copies of the two site register fit the area.
	assert.Len(t, tasks[1].Register, 6)
	check_Channel(t, tasks[1].Channels[1], analog.RabiAmplitude, piecewise.LinearTarget, "0:2.5", "2:2.5")
}

func Test_Job_02(t *testing.T) {
	dir := t.TempDir()
	//
	write(t, dir, "job.yaml", `
program: (circuit (register (site 0 0)) (sequence (hyperfine (pulse (detuning (field (drive (uniform) (constant_waveform (variable d) (variable t)))))))))
static_params:
  d: 0.25
args: [t]
`)
	//
	job, err := LoadJob(filepath.Join(dir, "job.yaml"))
	require.NoError(t, err)
	r, err := job.Routine(nil)
	require.NoError(t, err)
	//
	tasks, err := Compile(context.Background(), r, decs("3"), nil)
	require.NoError(t, err)
	assert.True(t, tasks[0].Duration.Equal(dec("3")))
	assert.Equal(t, analog.Hyperfine, tasks[0].Channels[0].Key.Coupling)
}

func Test_Job_Invalid_01(t *testing.T) {
	dir := t.TempDir()
	// Unknown fields are rejected.
	write(t, dir, "job.yaml", "program: x.sexp\nprogramme: y.sexp\n")
	//
	_, err := LoadJob(filepath.Join(dir, "job.yaml"))
	assert.Error(t, err)
}

func Test_Job_Invalid_02(t *testing.T) {
	dir := t.TempDir()
	//
	write(t, dir, "job.yaml", "program: x.sexp\nstatic_params:\n  a: one\n")
	//
	_, err := LoadJob(filepath.Join(dir, "job.yaml"))
	assert.Error(t, err)
}

func Test_Job_Invalid_03(t *testing.T) {
	// Tiling requires an area.
	job := &Job{Program: "(circuit (register (site 0 0)) (sequence))", ClusterSpacing: &Decimal{dec("1")}}
	_, err := job.Routine(&Capabilities{})
	assert.Error(t, err)
}

// ============================================================================
// Test Helpers
// ============================================================================

func check_Compile(t *testing.T, r *Routine, caps *Capabilities) []*Task {
	tasks, err := Compile(context.Background(), r, nil, caps)
	require.NoError(t, err)
	//
	return tasks
}

func check_CompileFails(t *testing.T, r *Routine, caps *Capabilities, kind failure.Kind) {
	_, err := Compile(context.Background(), r, nil, caps)
	require.Error(t, err)
	assert.Equal(t, kind, failure.KindOf(err), err.Error())
}

func check_RoutineFails(t *testing.T, static assign.Bindings, batch []assign.Bindings, args ...string) {
	w := waveform.Const(num("1"), scalar.Var("t"))
	_, err := NewRoutine(circuit(analog.Detuning, analog.Uniform, w), static, batch, args)
	assert.Error(t, err)
}

// Check the field, series kind and values of a channel, where each point is
// given as "time:value".
func check_Channel(t *testing.T, channel Channel, field analog.FieldName, target string, points ...string) {
	assert.Equal(t, field, channel.Key.Field)
	//
	switch target {
	case piecewise.LinearTarget:
		assert.IsType(t, &piecewise.Linear{}, channel.Series)
	default:
		assert.IsType(t, &piecewise.Constant{}, channel.Series)
	}
	//
	for _, point := range points {
		time, value, _ := strings.Cut(point, ":")
		actual := channel.Series.Eval(dec(time))
		assert.True(t, actual.Equal(dec(value)), "%s at %s: expected %s, got %s", channel.Key.String(), time, value,
			actual.String())
	}
}

func routine(t *testing.T, c *analog.Circuit, batch ...assign.Bindings) *Routine {
	r, err := NewRoutine(c, assign.NewBindings(), batch, nil)
	require.NoError(t, err)
	//
	return r
}

func circuit(field analog.FieldName, target analog.SpatialModulation, w waveform.Waveform) *analog.Circuit {
	return analog.NewCircuit(register.Chain(2, dec("4")), sequence(field, target, w))
}

func sequence(field analog.FieldName, target analog.SpatialModulation, w waveform.Waveform) *analog.Sequence {
	pulse := analog.NewPulse(map[analog.FieldName]*analog.Field{field: analog.NewField(analog.Drive{
		Target: target, Waveform: w})})
	//
	return analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{analog.Rydberg: pulse})
}

func scalars(pairs ...string) assign.Bindings {
	bindings := assign.NewBindings()
	//
	for i := 0; i+1 < len(pairs); i += 2 {
		bindings.Scalars[pairs[i]] = dec(pairs[i+1])
	}
	//
	return bindings
}

func write(t *testing.T, dir string, name string, contents string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0600))
}

func render(values []decimal.Decimal) []string {
	result := make([]string, len(values))
	//
	for i, v := range values {
		result[i] = v.String()
	}
	//
	return result
}

func num(value string) scalar.Scalar {
	return scalar.Lit(dec(value))
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func bound(value string) Decimal {
	return Decimal{dec(value)}
}

func decs(values ...string) []decimal.Decimal {
	result := make([]decimal.Decimal, len(values))
	//
	for i, v := range values {
		result[i] = dec(v)
	}
	//
	return result
}

func constant(value string, duration string) waveform.Waveform {
	return waveform.Const(num(value), num(duration))
}

func ramp(start string, stop string, duration string) waveform.Waveform {
	return waveform.Ramp(num(start), num(stop), num(duration))
}
