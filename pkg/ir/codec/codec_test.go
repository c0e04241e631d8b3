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
	"testing"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/piecewise"
	"github.com/consensys/go-analog/pkg/register"
	"github.com/consensys/go-analog/pkg/util/source"
	"github.com/consensys/go-analog/pkg/util/source/sexp"
	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Codec_Golden_01(t *testing.T) {
	w := waveform.Concat(
		waveform.Ramp(num("0"), scalar.Var("x"), num("1")),
		waveform.Scaled(num("2"), waveform.Const(num("1"), scalar.Var("d"))))
	//
	check_Golden(t, "waveform", w)
}

func Test_Codec_Golden_02(t *testing.T) {
	check_Golden(t, "circuit", analog.NewCircuit(register.Chain(2, dec("5")).Vacate(1), sequence()))
}

func Test_Codec_Golden_03(t *testing.T) {
	series, err := piecewise.NewLinear(decs("0", "0.5", "1"), decs("0", "5", "10"))
	require.NoError(t, err)
	check_Golden(t, "series", series)
}

func Test_Codec_Scalar_01(t *testing.T) {
	check_Scalar(t, scalar.Sum(scalar.Var("x"), num("1.5")))
	check_Scalar(t, scalar.Neg(scalar.Quotient(scalar.Var("x"), scalar.Product(num("2"), scalar.Var("y")))))
	check_Scalar(t, scalar.Minimum(scalar.Var("x"), num("3"), scalar.Maximum(num("1"), scalar.Var("y"))))
	check_Scalar(t, scalar.Assigned("z", dec("-0.25")))
	check_Scalar(t, scalar.SliceOf(scalar.Var("d"), scalar.NewInterval(num("1"), nil)))
	check_Scalar(t, scalar.SliceOf(scalar.Var("d"), scalar.NewInterval(nil, scalar.Var("t"))))
}

func Test_Codec_Waveform_01(t *testing.T) {
	check_Waveform(t, waveform.Polynomial([]scalar.Scalar{num("1"), scalar.Var("a")}, num("2")))
	check_Waveform(t, waveform.Negate(waveform.Plus(constant("1", "2"), ramp("0", "1", "2"))))
	check_Waveform(t, waveform.SliceOf(ramp("0", "1", "2"), scalar.NewInterval(nil, num("1"))))
	check_Waveform(t, waveform.RecordOf("v", ramp("0", "1", "2"), waveform.Right))
}

func Test_Codec_Waveform_02(t *testing.T) {
	check_Waveform(t, waveform.SampleOf(ramp("0", "1", "2"), num("0.1"), waveform.ConstantInterpolation))
	check_Waveform(t, waveform.SmoothOf(ramp("0", "1", "2"), num("0.1"), waveform.Tricube))
	check_Waveform(t, waveform.Align(ramp("0", "1", "2"), waveform.Left, waveform.BoundaryValue(waveform.Right)))
	check_Waveform(t, waveform.Align(ramp("0", "1", "2"), waveform.Right, waveform.ExplicitValue(num("4"))))
}

func Test_Codec_Waveform_03(t *testing.T) {
	// Deep nesting
	w := constant("1", "1")
	//
	for range 10000 {
		w = waveform.Negate(w)
	}
	//
	check_Waveform(t, w)
}

func Test_Codec_Sequence_01(t *testing.T) {
	seq := analog.ConcatSequences(
		analog.NameSequence("first", sequence()),
		analog.SliceSequenceOf(sequence(), scalar.NewInterval(num("0.5"), nil)))
	//
	check_Sequence(t, seq)
}

func Test_Codec_Sequence_02(t *testing.T) {
	field := analog.NewField(
		analog.Drive{Target: analog.Scaled(analog.Location{Site: 0, Coeff: num("0.5")},
			analog.Location{Site: 2, Coeff: scalar.Var("c")}), Waveform: constant("1", "1")},
		analog.Drive{Target: analog.AssignedVector("mask", decs("1", "0.5")), Waveform: constant("2", "1")})
	pulse := analog.ConcatPulses(
		analog.NewPulse(map[analog.FieldName]*analog.Field{analog.RabiAmplitude: field}),
		analog.NamePulse("p", analog.SlicePulseOf(
			analog.NewPulse(map[analog.FieldName]*analog.Field{analog.RabiPhase: field}),
			scalar.NewInterval(nil, num("0.5")))))
	//
	check_Sequence(t, analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{analog.Hyperfine: pulse}))
}

func Test_Codec_Series_01(t *testing.T) {
	series, err := piecewise.NewConstant(decs("0", "1", "3"), decs("1", "2", "2"))
	require.NoError(t, err)
	//
	text, err := EncodeString(series)
	require.NoError(t, err)
	assert.Equal(t, "(piecewise_constant [0 1 3] [1 2 2])", text)
	//
	decoded, err := DecodeString[*piecewise.Constant](text)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(series))
}

func Test_Codec_Register_01(t *testing.T) {
	reg := register.Square(2, dec("4")).Vacate(3)
	text, err := EncodeString(reg)
	require.NoError(t, err)
	//
	decoded, err := DecodeString[*register.Register](text)
	require.NoError(t, err)
	assert.True(t, decoded.Equals(reg))
}

func Test_Codec_Invalid_01(t *testing.T) {
	double := func(t decimal.Decimal, _ []decimal.Decimal) decimal.Decimal { return t.Add(t) }
	w := waveform.Plus(constant("1", "1"), waveform.NativeOf("double", double, num("1")))
	//
	_, err := Encode(w)
	//
	var unsupported *failure.SerializationUnsupported
	//
	assert.Equal(t, failure.Unserializable, failure.KindOf(err))
	assert.True(t, errors.As(err, &unsupported))
}

func Test_Codec_Invalid_02(t *testing.T) {
	check_Invalid[scalar.Scalar](t, "(literal 1 2)")
	check_Invalid[scalar.Scalar](t, "(literal x)")
	check_Invalid[scalar.Scalar](t, "(unknown 1)")
	check_Invalid[scalar.Scalar](t, "()")
	check_Invalid[scalar.Scalar](t, "((literal 1) 2)")
	check_Invalid[scalar.Scalar](t, "(add (literal 1)")
	check_Invalid[waveform.Waveform](t, "(literal 1)")
	check_Invalid[waveform.Waveform](t, "(constant_waveform 1 2)")
	check_Invalid[waveform.Waveform](t, "(record_waveform x (constant_waveform (literal 1) (literal 1)) up)")
	check_Invalid[analog.SequenceExpr](t, "(sequence (detuning (pulse)))")
	check_Invalid[*piecewise.Linear](t, "(piecewise_linear [1 2] [0 1])")
}

func Test_Codec_Invalid_03(t *testing.T) {
	// Errors identify the offending term.
	srcfile := source.NewSourceFile("test", []byte("(add (literal 1) (literal one))"))
	_, err := Decode(srcfile)
	//
	var serr *source.SyntaxError
	//
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "one", string(srcfile.Contents()[serr.Span().Start():serr.Span().End()]))
}

// ============================================================================
// Test Helpers
// ============================================================================

func check_Golden(t *testing.T, name string, node any) {
	t.Helper()
	//
	term, err := Encode(node)
	require.NoError(t, err)
	//
	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, name, []byte(sexp.Pretty(term, 60)))
}

func check_Scalar(t *testing.T, expr scalar.Scalar) {
	t.Helper()
	//
	decoded := check_RoundTrip[scalar.Scalar](t, expr)
	assert.True(t, scalar.Equal(expr, decoded), "expected %s, got %s", expr.String(), decoded.String())
}

func check_Waveform(t *testing.T, w waveform.Waveform) {
	t.Helper()
	//
	decoded := check_RoundTrip[waveform.Waveform](t, w)
	assert.True(t, waveform.Equal(w, decoded))
}

func check_Sequence(t *testing.T, seq analog.SequenceExpr) {
	t.Helper()
	//
	decoded := check_RoundTrip[analog.SequenceExpr](t, seq)
	assert.True(t, analog.EqualSequence(seq, decoded), "expected %s, got %s", seq.String(), decoded.String())
}

func check_RoundTrip[T any](t *testing.T, node T) T {
	t.Helper()
	//
	text, err := EncodeString(node)
	require.NoError(t, err)
	//
	decoded, err := DecodeString[T](text)
	require.NoError(t, err, text)
	// Encoding is deterministic
	again, err := EncodeString(decoded)
	require.NoError(t, err)
	assert.Equal(t, text, again)
	//
	return decoded
}

func check_Invalid[T any](t *testing.T, text string) {
	t.Helper()
	//
	_, err := DecodeString[T](text)
	assert.Error(t, err, text)
}

func sequence() analog.SequenceExpr {
	field := analog.NewField(
		analog.Drive{Target: analog.Uniform, Waveform: constant("1", "2")},
		analog.Drive{Target: analog.Vector("mask"), Waveform: ramp("0", "1", "2")})
	//
	return analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{
		analog.Rydberg: analog.NewPulse(map[analog.FieldName]*analog.Field{analog.Detuning: field}),
	})
}

func num(value string) scalar.Scalar {
	return scalar.MustCast(value)
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
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
