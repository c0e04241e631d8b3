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
package waveform

import (
	"testing"

	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/shopspring/decimal"
)

func Test_Waveform_Render_01(t *testing.T) {
	check_Render(t, Const(num("1"), num("2")), "(constant 1 2)")
}

func Test_Waveform_Render_02(t *testing.T) {
	check_Render(t, Concat(Ramp(num("0"), scalar.Var("x"), num("1")), Negate(Const(num("1"), num("1")))),
		"(append (linear 0 x 1) (- (constant 1 1)))")
}

func Test_Waveform_Render_03(t *testing.T) {
	check_Render(t, SliceOf(Polynomial([]scalar.Scalar{num("1"), num("2")}, num("3")),
		scalar.NewInterval(nil, num("1"))), "(slice (poly (1 2) 3) _ 1)")
}

func Test_Waveform_Render_04(t *testing.T) {
	check_Render(t, Align(RecordOf("v", Const(num("1"), num("1")), Right), Left, BoundaryValue(Right)),
		"(aligned (record v (constant 1 1) right) left right)")
}

func Test_Waveform_Render_05(t *testing.T) {
	check_Render(t, SmoothOf(SampleOf(Const(num("1"), num("1")), num("0.1"), ConstantInterpolation),
		num("0.5"), Tricube), "(smooth (sample (constant 1 1) 0.1 constant) 0.5 tricube)")
}

// ============================================================================
// Duration
// ============================================================================

func Test_Waveform_Duration_01(t *testing.T) {
	check_Duration(t, Concat(Const(num("1"), num("1")), Ramp(num("1"), num("2"), num("0.5"))), nil, "1.5")
}

func Test_Waveform_Duration_02(t *testing.T) {
	check_Duration(t, Plus(Const(num("1"), num("1")), Const(num("1"), scalar.Var("d"))), binds("d", "3"), "3")
}

func Test_Waveform_Duration_03(t *testing.T) {
	check_Duration(t, SliceOf(Const(num("1"), num("4")), scalar.NewInterval(num("1"), nil)), nil, "3")
}

func Test_Waveform_Duration_04(t *testing.T) {
	check_Duration(t, Concat(), nil, "0")
}

func Test_Waveform_Duration_05(t *testing.T) {
	w := SliceOf(Concat(Const(num("1"), num("1")), Const(num("1"), scalar.Var("d"))), scalar.NewInterval(nil, num("2")))
	// Symbolic duration evaluates identically
	d, err := scalar.Evaluate(Duration(w), binds("d", "2"))
	//
	if err != nil {
		t.Error(err)
	} else if !d.Equal(dec("2")) {
		t.Errorf("expected 2, got %s", d.String())
	}
}

func Test_Waveform_Duration_Invalid_01(t *testing.T) {
	w := SliceOf(Const(num("1"), num("1")), scalar.NewInterval(nil, num("2")))
	//
	if _, err := DurationOf(w, nil); failure.KindOf(err) != failure.Malformed {
		t.Errorf("expected malformed slice, got %v", err)
	}
}

func Test_Waveform_Duration_Invalid_02(t *testing.T) {
	w := SliceOf(Const(num("1"), num("1")), scalar.NewInterval(num("0.75"), num("0.5")))
	//
	if _, err := DurationOf(w, nil); failure.KindOf(err) != failure.Malformed {
		t.Errorf("expected malformed slice, got %v", err)
	}
}

// ============================================================================
// Evaluation
// ============================================================================

func Test_Waveform_Eval_01(t *testing.T) {
	w := Ramp(num("0"), num("10"), num("1"))
	check_Values(t, w, nil, []string{"0", "0.25", "1"}, []string{"0", "2.5", "10"})
}

func Test_Waveform_Eval_02(t *testing.T) {
	// Half-open segments, except the last
	w := Concat(Const(num("1"), num("1")), Const(num("2"), num("1")))
	check_Values(t, w, nil, []string{"0", "0.5", "1", "2"}, []string{"1", "1", "2", "2"})
}

func Test_Waveform_Eval_03(t *testing.T) {
	// Shorter operand drops out
	w := Plus(Const(num("1"), num("2")), Const(num("1"), num("1")))
	check_Values(t, w, nil, []string{"0", "1", "1.5", "2"}, []string{"2", "2", "1", "1"})
}

func Test_Waveform_Eval_04(t *testing.T) {
	w := SliceOf(Ramp(num("0"), num("4"), num("4")), scalar.NewInterval(num("1"), num("3")))
	check_Values(t, w, nil, []string{"0", "1", "2"}, []string{"1", "2", "3"})
}

func Test_Waveform_Eval_05(t *testing.T) {
	w := Negate(Scaled(scalar.Var("a"), Polynomial([]scalar.Scalar{num("1"), num("0"), num("1")}, num("2"))))
	check_Values(t, w, binds("a", "2"), []string{"0", "1", "2"}, []string{"-2", "-4", "-10"})
}

func Test_Waveform_Eval_06(t *testing.T) {
	// Zero-duration parts are skipped
	w := Concat(Const(num("1"), num("1")), Const(num("5"), num("0")), Const(num("2"), num("1")))
	check_Values(t, w, nil, []string{"0.5", "1", "2"}, []string{"1", "2", "2"})
}

func Test_Waveform_Eval_07(t *testing.T) {
	w := NativeOf("double", double, num("1"), num("3"))
	check_Values(t, w, nil, []string{"0.5"}, []string{"3"})
}

func Test_Waveform_Eval_08(t *testing.T) {
	// Outside of the domain
	w := Const(num("1"), num("1"))
	check_Values(t, w, nil, []string{"-1", "2"}, []string{"0", "0"})
}

func Test_Waveform_Eval_09(t *testing.T) {
	// Deep nesting
	var w Waveform = Const(num("1"), num("1"))
	//
	for i := 0; i < 10_000; i++ {
		w = Concat(w, Const(num("2"), num("1")))
	}
	//
	check_Values(t, w, nil, []string{"0.5", "10000.5"}, []string{"1", "2"})
}

func Test_Waveform_Eval_10(t *testing.T) {
	w := SmoothOf(Const(num("2"), num("1")), num("0.1"), Gaussian)
	check_Values(t, w, nil, []string{"0.5"}, []string{"2"})
}

func Test_Waveform_Eval_Invalid_01(t *testing.T) {
	w := Const(scalar.Var("x"), num("1"))
	//
	if _, err := ValueAt(w, dec("0"), nil); failure.KindOf(err) != failure.Unbound {
		t.Errorf("expected unbound variable, got %v", err)
	}
}

// ============================================================================
// Sampling
// ============================================================================

func Test_Waveform_Sample_01(t *testing.T) {
	w := SampleOf(Ramp(num("0"), num("10"), num("1")), num("0.5"), LinearInterpolation)
	check_Sample(t, w, []string{"0", "0.5", "1"}, []string{"0", "5", "10"})
}

func Test_Waveform_Sample_02(t *testing.T) {
	w := SampleOf(Ramp(num("0"), num("10"), num("1")), num("0.4"), ConstantInterpolation)
	check_Sample(t, w, []string{"0", "0.4", "0.8", "1"}, []string{"0", "4", "8", "8"})
}

func Test_Waveform_Sample_03(t *testing.T) {
	w := SampleOf(Ramp(num("0"), num("10"), num("1")), num("0.4"), ConstantInterpolation)
	check_Values(t, w, nil, []string{"0.3", "0.4", "0.9", "1"}, []string{"0", "4", "8", "8"})
}

func Test_Waveform_Sample_04(t *testing.T) {
	w := SampleOf(Polynomial([]scalar.Scalar{num("0"), num("0"), num("1")}, num("1")), num("0.5"),
		LinearInterpolation)
	check_Values(t, w, nil, []string{"0.25", "0.75"}, []string{"0.125", "0.625"})
}

func Test_Waveform_Sample_Invalid_01(t *testing.T) {
	w := SampleOf(Const(num("1"), num("1")), num("0"), LinearInterpolation)
	//
	if _, _, err := SamplePoints(w, nil); failure.KindOf(err) != failure.Malformed {
		t.Errorf("expected malformed sample, got %v", err)
	}
}

// ============================================================================
// Equality
// ============================================================================

func Test_Waveform_Equal_01(t *testing.T) {
	check_Equal(t, Const(num("1"), num("1")), Const(num("1.0"), num("1")), true)
}

func Test_Waveform_Equal_02(t *testing.T) {
	check_Equal(t, Const(num("1"), num("1")), Ramp(num("1"), num("1"), num("1")), false)
}

func Test_Waveform_Equal_03(t *testing.T) {
	check_Equal(t, NativeOf("f", double, num("1")), NativeOf("f", double, num("1")), true)
}

func Test_Waveform_Equal_04(t *testing.T) {
	check_Equal(t, NativeOf("f", double, num("1")), NativeOf("f", halve, num("1")), false)
}

func Test_Waveform_Equal_05(t *testing.T) {
	check_Equal(t, RecordOf("x", Const(num("1"), num("1")), Left), RecordOf("x", Const(num("1"), num("1")), Right),
		false)
}

func Test_Waveform_Equal_06(t *testing.T) {
	check_Equal(t, Align(Const(num("1"), num("1")), Left, ExplicitValue(num("0"))),
		Align(Const(num("1"), num("1")), Left, BoundaryValue(Left)), false)
}

func Test_Waveform_Equal_07(t *testing.T) {
	lhs := Concat(Const(num("1"), num("1")), Plus(Const(num("1"), num("1")), Const(num("2"), num("1"))))
	rhs := Concat(Const(num("1"), num("1")), Plus(Const(num("1"), num("1")), Const(num("2"), num("1"))))
	check_Equal(t, lhs, rhs, true)
}

// ============================================================================
// Test Helpers
// ============================================================================

func double(_ decimal.Decimal, params []decimal.Decimal) decimal.Decimal {
	return params[0]
}

func halve(_ decimal.Decimal, params []decimal.Decimal) decimal.Decimal {
	return params[0].Div(decimal.NewFromInt(2))
}

func num(value string) scalar.Scalar {
	return scalar.Lit(dec(value))
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func binds(name string, value string) scalar.Bindings {
	return scalar.Bindings{name: dec(value)}
}

func check_Render(t *testing.T, w Waveform, expected string) {
	if actual := w.String(); actual != expected {
		t.Errorf("expected %s, got %s", expected, actual)
	}
}

func check_Duration(t *testing.T, w Waveform, env scalar.Bindings, expected string) {
	actual, err := DurationOf(w, env)
	//
	if err != nil {
		t.Error(err)
	} else if !actual.Equal(dec(expected)) {
		t.Errorf("duration of %s, expected %s got %s", w.String(), expected, actual.String())
	}
}

func check_Values(t *testing.T, w Waveform, env scalar.Bindings, times []string, expected []string) {
	ev, err := NewEvaluator(w, env)
	if err != nil {
		t.Fatal(err)
	}
	//
	for i, time := range times {
		actual, err := ev.ValueAt(dec(time))
		//
		if err != nil {
			t.Error(err)
		} else if !actual.Equal(dec(expected[i])) {
			t.Errorf("value at %s, expected %s got %s", time, expected[i], actual.String())
		}
	}
}

func check_Sample(t *testing.T, w *Sample, times []string, values []string) {
	ts, vs, err := SamplePoints(w, nil)
	//
	if err != nil {
		t.Fatal(err)
	} else if !scalar.EqualValues(ts, decimals(times)) {
		t.Errorf("expected times %v, got %v", times, ts)
	} else if !scalar.EqualValues(vs, decimals(values)) {
		t.Errorf("expected values %v, got %v", values, vs)
	}
}

func check_Equal(t *testing.T, lhs Waveform, rhs Waveform, expected bool) {
	if Equal(lhs, rhs) != expected || Equal(rhs, lhs) != expected {
		t.Errorf("expected Equal(%s,%s) == %t", lhs.String(), rhs.String(), expected)
	} else if expected && lhs.Hash() != rhs.Hash() {
		t.Errorf("equal waveforms %s and %s have different hashes", lhs.String(), rhs.String())
	}
}

func decimals(values []string) []decimal.Decimal {
	result := make([]decimal.Decimal, len(values))
	//
	for i, v := range values {
		result[i] = dec(v)
	}
	//
	return result
}
