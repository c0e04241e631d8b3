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
	"testing"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Scalars
// ============================================================================

func Test_Canonical_Scalar_01(t *testing.T) {
	check_Scalar(t, scalar.Sum(num("1"), num("2")), "3")
}

func Test_Canonical_Scalar_02(t *testing.T) {
	check_Scalar(t, scalar.Product(num("2"), num("2")), "4")
}

func Test_Canonical_Scalar_03(t *testing.T) {
	check_Scalar(t, scalar.Sub(scalar.Var("a"), scalar.Var("a")), "0")
}

func Test_Canonical_Scalar_04(t *testing.T) {
	check_Scalar(t, scalar.Sum(scalar.Var("x"), num("0")), "x")
	check_Scalar(t, scalar.Sum(num("0"), scalar.Var("x")), "x")
}

func Test_Canonical_Scalar_05(t *testing.T) {
	check_Scalar(t, scalar.Product(num("1"), scalar.Var("x")), "x")
	check_Scalar(t, scalar.Product(scalar.Var("x"), num("0")), "0")
	check_Scalar(t, scalar.Quotient(scalar.Var("x"), num("1")), "x")
	check_Scalar(t, scalar.Quotient(num("0"), scalar.Var("x")), "0")
}

func Test_Canonical_Scalar_06(t *testing.T) {
	check_Scalar(t, scalar.Neg(scalar.Neg(scalar.Var("x"))), "x")
	check_Scalar(t, scalar.Neg(num("2")), "-2")
}

func Test_Canonical_Scalar_07(t *testing.T) {
	check_Scalar(t, scalar.Sum(scalar.Neg(scalar.Var("a")), scalar.Neg(scalar.Var("b"))), "(- (+ a b))")
}

func Test_Canonical_Scalar_08(t *testing.T) {
	expr := scalar.Minimum(scalar.Var("x"), scalar.Minimum(scalar.Var("y"), num("3")), num("1"))
	check_Scalar(t, expr, "(min x y 1)")
}

func Test_Canonical_Scalar_09(t *testing.T) {
	check_Scalar(t, scalar.Maximum(num("1"), scalar.Maximum(num("3"), num("2"))), "3")
}

func Test_Canonical_Scalar_10(t *testing.T) {
	check_Scalar(t, scalar.Quotient(num("1"), num("4")), "0.25")
}

func Test_Canonical_Scalar_11(t *testing.T) {
	check_Scalar(t, scalar.SliceOf(num("4"), scalar.NewInterval(num("1"), nil)), "3")
	check_Scalar(t, scalar.SliceOf(scalar.Var("d"), scalar.NewInterval(nil, nil)), "d")
}

func Test_Canonical_Scalar_12(t *testing.T) {
	// Assigned variables are constants
	check_Scalar(t, scalar.Sum(scalar.Assigned("x", dec("2")), num("1")), "3")
}

func Test_Canonical_Scalar_Invalid_01(t *testing.T) {
	_, err := Scalar(scalar.Quotient(scalar.Var("x"), num("0")))
	//
	if failure.KindOf(err) != failure.ZeroDivision {
		t.Errorf("expected division by zero, got %v", err)
	}
}

func Test_Canonical_Scalar_Invalid_02(t *testing.T) {
	_, err := Scalar(scalar.SliceOf(num("1"), scalar.NewInterval(num("2"), nil)))
	//
	if failure.KindOf(err) != failure.Malformed {
		t.Errorf("expected malformed slice, got %v", err)
	}
}

func Test_Canonical_Scalar_Invalid_03(t *testing.T) {
	for _, expr := range []scalar.Scalar{scalar.Minimum(), scalar.Maximum()} {
		if _, err := Scalar(expr); failure.KindOf(err) != failure.Malformed {
			t.Errorf("expected malformed %s, got %v", expr.String(), err)
		}
	}
}

// ============================================================================
// Waveforms
// ============================================================================

func Test_Canonical_Waveform_01(t *testing.T) {
	check_Waveform(t, waveform.Concat(constant("1", "1"), constant("1", "1")), "(constant 1 2)")
}

func Test_Canonical_Waveform_02(t *testing.T) {
	w := waveform.Concat(constant("1", "1"), waveform.Concat(ramp("0", "1", "1"), constant("0", "0")))
	check_Waveform(t, w, "(append (constant 1 1) (linear 0 1 1))")
}

func Test_Canonical_Waveform_03(t *testing.T) {
	w := ramp("0", "1", "1")
	check_Waveform(t, waveform.Plus(w, w), "(* 2 (linear 0 1 1))")
}

func Test_Canonical_Waveform_04(t *testing.T) {
	w := waveform.Ramp(num("0"), num("1"), scalar.Var("d"))
	check_Waveform(t, waveform.Scaled(num("0"), w), "(constant 0 d)")
	check_Waveform(t, waveform.Scaled(num("1"), w), "(linear 0 1 d)")
}

func Test_Canonical_Waveform_05(t *testing.T) {
	w := ramp("0", "1", "1")
	check_Waveform(t, waveform.Scaled(num("2"), waveform.Scaled(num("3"), w)), "(* 6 (linear 0 1 1))")
}

func Test_Canonical_Waveform_06(t *testing.T) {
	check_Waveform(t, waveform.Negate(constant("2", "1")), "(constant -2 1)")
	check_Waveform(t, waveform.Negate(waveform.Negate(ramp("0", "1", "1"))), "(linear 0 1 1)")
}

func Test_Canonical_Waveform_07(t *testing.T) {
	w := ramp("0", "1", "1")
	check_Waveform(t, waveform.SliceOf(w, scalar.NewInterval(num("0"), num("1"))), "(linear 0 1 1)")
}

func Test_Canonical_Waveform_08(t *testing.T) {
	w := waveform.Scaled(num("2"), ramp("0", "1", "1"))
	check_Waveform(t, waveform.SliceOf(w, scalar.NewInterval(num("0.5"), nil)), "(* 2 (slice (linear 0 1 1) 0.5 _))")
}

func Test_Canonical_Waveform_09(t *testing.T) {
	w := ramp("0", "1", "1")
	check_Waveform(t, waveform.Plus(waveform.Scaled(num("2"), w), w), "(* 3 (linear 0 1 1))")
	check_Waveform(t, waveform.Plus(waveform.Scaled(num("2"), w), waveform.Scaled(num("0.5"), w)),
		"(* 2.5 (linear 0 1 1))")
}

func Test_Canonical_Waveform_10(t *testing.T) {
	check_Waveform(t, waveform.Plus(constant("0", "1"), ramp("0", "1", "2")), "(linear 0 1 2)")
	// Cannot drop a zero which outlasts the other operand
	check_Waveform(t, waveform.Plus(constant("0", "3"), ramp("0", "1", "2")), "(+ (constant 0 3) (linear 0 1 2))")
}

func Test_Canonical_Waveform_11(t *testing.T) {
	check_Waveform(t, waveform.Plus(constant("1", "2"), constant("2", "2")), "(constant 3 2)")
}

func Test_Canonical_Waveform_12(t *testing.T) {
	w := waveform.SliceOf(constant("1", "4"), scalar.NewInterval(num("1"), num("3")))
	check_Waveform(t, w, "(constant 1 2)")
}

func Test_Canonical_Waveform_Invalid_01(t *testing.T) {
	w := waveform.SliceOf(constant("1", "2"), scalar.NewInterval(num("1"), num("3")))
	//
	if _, err := Waveform(w); failure.KindOf(err) != failure.Malformed {
		t.Errorf("expected malformed slice, got %v", err)
	}
}

func Test_Canonical_Waveform_13(t *testing.T) {
	check_Waveform(t, waveform.Negate(waveform.Scaled(num("-2"), ramp("0", "1", "1"))), "(* 2 (linear 0 1 1))")
}

func Test_Canonical_Waveform_14(t *testing.T) {
	// Very deep appends
	var parts []waveform.Waveform
	//
	for i := 0; i < 1000; i++ {
		parts = append(parts, constant("1", "1"))
	}
	//
	w := parts[0]
	for _, p := range parts[1:] {
		w = waveform.Concat(w, p)
	}
	//
	check_Waveform(t, w, "(constant 1 1000)")
}

// ============================================================================
// Idempotence
// ============================================================================

func Test_Canonical_Idempotent_01(t *testing.T) {
	x, y := scalar.Var("x"), scalar.Var("y")
	exprs := []scalar.Scalar{
		scalar.Sum(x, scalar.Sum(num("1"), num("2"))),
		scalar.Sum(scalar.Neg(x), scalar.Neg(scalar.Product(y, num("1")))),
		scalar.Minimum(x, scalar.Minimum(y, num("3")), scalar.Minimum(num("1"), x)),
		scalar.Quotient(scalar.Product(x, y), scalar.Sum(num("1"), num("1"))),
		scalar.SliceOf(scalar.Maximum(x, num("2")), scalar.NewInterval(num("1"), nil)),
	}
	//
	for _, e := range exprs {
		check_IdempotentScalar(t, e)
	}
}

func Test_Canonical_Idempotent_02(t *testing.T) {
	w := ramp("0", "1", "1")
	d := waveform.Const(scalar.Var("v"), scalar.Var("d"))
	ws := []waveform.Waveform{
		waveform.Concat(w, waveform.Concat(constant("1", "1"), constant("1", "2")), d, d),
		waveform.Plus(waveform.Scaled(num("2"), w), waveform.Plus(w, w)),
		waveform.Negate(waveform.Scaled(num("-1"), waveform.SliceOf(d, scalar.NewInterval(num("1"), nil)))),
		waveform.SliceOf(waveform.Negate(waveform.Scaled(num("3"), w)), scalar.NewInterval(nil, num("0.5"))),
		waveform.Plus(waveform.Scaled(scalar.Var("s"), w), waveform.Scaled(scalar.Var("s"), d)),
		waveform.RecordOf("r", waveform.Concat(d, d), waveform.Left),
		waveform.SampleOf(waveform.Plus(w, constant("0", "0")), num("0.1"), waveform.LinearInterpolation),
	}
	//
	for _, w := range ws {
		check_IdempotentWaveform(t, w)
	}
}

// ============================================================================
// Containers
// ============================================================================

func Test_Canonical_Field_01(t *testing.T) {
	w := ramp("0", "1", "1")
	f := analog.NewField(
		analog.Drive{Target: analog.Scaled(analog.Location{Site: 0, Coeff: num("1")}), Waveform: w},
		analog.Drive{Target: analog.Scaled(analog.Location{Site: 1, Coeff: num("0.5")}), Waveform: w},
		analog.Drive{Target: analog.Scaled(analog.Location{Site: 1, Coeff: num("0.5")},
			analog.Location{Site: 2, Coeff: num("1")}), Waveform: w},
	)
	//
	g, err := Field(f)
	if err != nil {
		t.Fatal(err)
	} else if len(g.Drives) != 1 {
		t.Fatalf("expected single drive, got %s", g.String())
	}
	//
	target := g.Drives[0].Target.(*analog.ScaledLocations)
	expected := []string{"1", "1", "1"}
	//
	for i, l := range target.Locations {
		if l.Site != uint(i) || l.Coeff.String() != expected[i] {
			t.Errorf("unexpected location %d: %d => %s", i, l.Site, l.Coeff.String())
		}
	}
}

func Test_Canonical_Field_02(t *testing.T) {
	// Uniform and vectors cannot be merged
	w := ramp("0", "1", "1")
	f := analog.NewField(
		analog.Drive{Target: analog.Uniform, Waveform: w},
		analog.Drive{Target: analog.Vector("mask"), Waveform: w},
	)
	//
	if g, err := Field(f); err != nil {
		t.Fatal(err)
	} else if len(g.Drives) != 2 {
		t.Errorf("unexpected field %s", g.String())
	}
}

func Test_Canonical_Pulse_01(t *testing.T) {
	p1, p2, p3 := pulse(constant("1", "1")), pulse(constant("0", "0")), pulse(ramp("0", "1", "1"))
	result, err := Pulse(analog.ConcatPulses(p1, analog.ConcatPulses(p2, p3)))
	//
	if err != nil {
		t.Fatal(err)
	} else if a, ok := result.(*analog.AppendPulse); !ok || len(a.Pulses) != 2 {
		t.Errorf("unexpected pulse %s", result.String())
	}
}

func Test_Canonical_Pulse_02(t *testing.T) {
	p := pulse(ramp("0", "1", "2"))
	result, err := Pulse(analog.SlicePulseOf(p, scalar.NewInterval(num("0"), num("2"))))
	//
	if err != nil {
		t.Fatal(err)
	} else if !analog.EqualPulse(result, p) {
		t.Errorf("unexpected pulse %s", result.String())
	}
}

func Test_Canonical_Sequence_01(t *testing.T) {
	s := analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{
		analog.Rydberg: analog.ConcatPulses(pulse(constant("1", "1")), pulse(constant("1", "1"))),
	})
	seq := analog.ConcatSequences(analog.NameSequence("s", s))
	//
	first, err := Sequence(seq)
	if err != nil {
		t.Fatal(err)
	}
	//
	second, err := Sequence(first)
	if err != nil {
		t.Fatal(err)
	} else if !analog.EqualSequence(first, second) {
		t.Errorf("not idempotent: %s vs %s", first.String(), second.String())
	} else if _, ok := first.(*analog.NamedSequence); !ok {
		t.Errorf("expected singleton append to collapse: %s", first.String())
	}
}

func Test_Canonical_Pulse_03(t *testing.T) {
	// A zero-length part is kept when it alone uses some channel.
	amplitude := analog.NewField(analog.Drive{Target: analog.Uniform, Waveform: constant("0", "0")})
	p1 := pulse(constant("1", "1"))
	p2 := analog.NewPulse(map[analog.FieldName]*analog.Field{analog.RabiAmplitude: amplitude})
	p3 := pulse(constant("0", "0"))
	result, err := Pulse(analog.ConcatPulses(p1, p2, p3))
	//
	if err != nil {
		t.Fatal(err)
	} else if a, ok := result.(*analog.AppendPulse); !ok || len(a.Pulses) != 2 {
		t.Errorf("unexpected pulse %s", result.String())
	}
	// Otherwise it is dropped.
	result, err = Pulse(analog.ConcatPulses(p1, p3))
	//
	if err != nil {
		t.Fatal(err)
	} else if !analog.EqualPulse(result, p1) {
		t.Errorf("unexpected pulse %s", result.String())
	}
}

func Test_Canonical_Sequence_02(t *testing.T) {
	hyperfine := analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{
		analog.Hyperfine: pulse(constant("0", "0")),
	})
	rydberg := analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{
		analog.Rydberg: pulse(constant("1", "1")),
	})
	result, err := Sequence(analog.ConcatSequences(rydberg, hyperfine))
	//
	if err != nil {
		t.Fatal(err)
	} else if a, ok := result.(*analog.AppendSequence); !ok || len(a.Sequences) != 2 {
		t.Errorf("unexpected sequence %s", result.String())
	}
}

// ============================================================================
// Helpers
// ============================================================================

func num(value string) scalar.Scalar {
	return scalar.MustCast(value)
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func constant(value string, duration string) waveform.Waveform {
	return waveform.Const(num(value), num(duration))
}

func ramp(start string, stop string, duration string) waveform.Waveform {
	return waveform.Ramp(num(start), num(stop), num(duration))
}

func pulse(w waveform.Waveform) *analog.Pulse {
	field := analog.NewField(analog.Drive{Target: analog.Uniform, Waveform: w})
	return analog.NewPulse(map[analog.FieldName]*analog.Field{analog.Detuning: field})
}

func check_Scalar(t *testing.T, expr scalar.Scalar, expected string) {
	t.Helper()
	//
	result, err := Scalar(expr)
	if err != nil {
		t.Fatal(err)
	} else if result.String() != expected {
		t.Errorf("expected %s, got %s", expected, result.String())
	}
}

func check_Waveform(t *testing.T, w waveform.Waveform, expected string) {
	t.Helper()
	//
	result, err := Waveform(w)
	if err != nil {
		t.Fatal(err)
	} else if result.String() != expected {
		t.Errorf("expected %s, got %s", expected, result.String())
	}
}

func check_IdempotentScalar(t *testing.T, expr scalar.Scalar) {
	t.Helper()
	//
	first, err := Scalar(expr)
	if err != nil {
		t.Fatal(err)
	}
	// Use a fresh canonicalizer to avoid the cache
	second, err := Scalar(first)
	if err != nil {
		t.Fatal(err)
	} else if !scalar.Equal(first, second) {
		t.Errorf("not idempotent: %s vs %s", first.String(), second.String())
	}
}

func check_IdempotentWaveform(t *testing.T, w waveform.Waveform) {
	t.Helper()
	//
	first, err := Waveform(w)
	if err != nil {
		t.Fatal(err)
	}
	//
	second, err := Waveform(first)
	if err != nil {
		t.Fatal(err)
	} else if !waveform.Equal(first, second) {
		t.Errorf("not idempotent: %s vs %s", first.String(), second.String())
	}
}
