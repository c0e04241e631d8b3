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
	"testing"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/shopspring/decimal"
)

func Test_Assign_Scalar_01(t *testing.T) {
	check_Scalar(t, scalar.Sum(scalar.Var("x"), scalar.LitInt(1)), scalars("x", "2"), "3")
}

func Test_Assign_Scalar_02(t *testing.T) {
	// Partial assignment is legal.
	expr := scalar.Product(scalar.Var("x"), scalar.Var("y"))
	result, err := Scalar(expr, scalars("x", "2"))
	//
	if err != nil {
		t.Fatal(err)
	} else if result.String() != "(* x y)" {
		t.Errorf("unexpected result %s", result.String())
	} else if _, err := scalar.Evaluate(result, scalar.Bindings{}); failure.KindOf(err) != failure.Unbound {
		t.Errorf("expected unbound variable, got %v", err)
	}
}

func Test_Assign_Scalar_03(t *testing.T) {
	// Unchanged expressions are returned as is.
	expr := scalar.Sum(scalar.Var("x"), scalar.LitInt(1))
	result, err := Scalar(expr, scalars("y", "2"))
	//
	if err != nil {
		t.Fatal(err)
	} else if result != expr {
		t.Errorf("expected identical expression")
	}
}

func Test_Assign_Scalar_Invalid_01(t *testing.T) {
	expr := scalar.Sum(scalar.Assigned("x", dec("1")), scalar.LitInt(1))
	check_Conflict(t, expr, scalars("x", "2"))
}

func Test_Assign_Scalar_Invalid_02(t *testing.T) {
	// Even an equal value conflicts.
	expr := scalar.Assigned("x", dec("1"))
	check_Conflict(t, expr, scalars("x", "1"))
}

func Test_Assign_Waveform_01(t *testing.T) {
	w := waveform.Ramp(scalar.Var("a"), scalar.Var("b"), scalar.Var("d"))
	check_Waveform(t, w, scalars("a", "0", "b", "10", "d", "2"), "1", "5")
}

func Test_Assign_Waveform_02(t *testing.T) {
	w := waveform.Concat(waveform.Const(scalar.Var("a"), scalar.LitInt(1)),
		waveform.SliceOf(waveform.Ramp(scalar.LitInt(0), scalar.Var("b"), scalar.LitInt(4)),
			scalar.NewInterval(scalar.Var("s"), nil)))
	check_Waveform(t, w, scalars("a", "1", "b", "8", "s", "2"), "2", "6")
}

func Test_Assign_Waveform_03(t *testing.T) {
	// Records with a binding dissolve.
	inner := waveform.Const(scalar.LitInt(3), scalar.LitInt(1))
	w := waveform.RecordOf("r", inner, waveform.Right)
	result, err := Waveform(w, scalars("r", "3"))
	//
	if err != nil {
		t.Fatal(err)
	} else if result != inner {
		t.Errorf("expected record to dissolve, got %s", result.String())
	}
}

func Test_Assign_Waveform_04(t *testing.T) {
	// Records without a binding remain.
	w := waveform.RecordOf("r", waveform.Const(scalar.Var("x"), scalar.LitInt(1)), waveform.Right)
	result, err := Waveform(w, scalars("x", "3"))
	//
	if err != nil {
		t.Fatal(err)
	} else if _, ok := result.(*waveform.Record); !ok {
		t.Errorf("expected record, got %s", result.String())
	}
}

func Test_Assign_Field_01(t *testing.T) {
	f := analog.NewField(analog.Drive{Target: analog.Vector("mask"), Waveform: constant("1", "1")})
	b := NewBindings()
	b.Vectors["mask"] = []decimal.Decimal{dec("1"), dec("0.5")}
	result, err := Field(f, b)
	//
	if err != nil {
		t.Fatal(err)
	} else if _, ok := result.Drives[0].Target.(*analog.AssignedRunTimeVector); !ok {
		t.Errorf("expected assigned vector, got %s", result.String())
	}
	// Second assignment conflicts
	if _, err = Field(result, b); failure.KindOf(err) != failure.Reassignment {
		t.Errorf("expected reassignment conflict, got %v", err)
	}
}

func Test_Assign_Field_02(t *testing.T) {
	f := analog.NewField(analog.Drive{
		Target:   analog.Scaled(analog.Location{Site: 0, Coeff: scalar.Var("c")}),
		Waveform: constant("1", "1"),
	})
	result, err := Field(f, scalars("c", "0.5"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	locations := result.Drives[0].Target.(*analog.ScaledLocations).Locations
	//
	if v := scalar.MustEvaluate(locations[0].Coeff); !v.Equal(dec("0.5")) {
		t.Errorf("unexpected coefficient %s", v)
	}
}

func Test_Assign_Sequence_01(t *testing.T) {
	seq := analog.SliceSequenceOf(sequence(waveform.Const(scalar.Var("x"), scalar.LitInt(4))),
		scalar.NewInterval(scalar.LitInt(1), scalar.Var("stop")))
	result, err := Sequence(seq, scalars("x", "1", "stop", "3"))
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	duration, err := scalar.Evaluate(analog.SequenceDuration(result), nil)
	//
	if err != nil {
		t.Fatal(err)
	} else if !duration.Equal(dec("2")) {
		t.Errorf("unexpected duration %s", duration)
	}
}

// ============================================================================
// Bindings
// ============================================================================

func Test_Bindings_01(t *testing.T) {
	b := NewBindings()
	//
	if err := b.Bind("x", dec("1")); err != nil {
		t.Fatal(err)
	} else if err := b.Bind("x", dec("2")); failure.KindOf(err) != failure.Reassignment {
		t.Errorf("expected reassignment conflict, got %v", err)
	}
}

func Test_Bindings_02(t *testing.T) {
	lhs, rhs := scalars("x", "1"), scalars("y", "2")
	//
	merged, err := lhs.Merge(rhs)
	if err != nil {
		t.Fatal(err)
	} else if merged.Len() != 2 || !merged.Has("x") || !merged.Has("y") {
		t.Errorf("unexpected bindings %v", merged.Names())
	}
	//
	if _, err = merged.Merge(lhs); failure.KindOf(err) != failure.Reassignment {
		t.Errorf("expected reassignment conflict, got %v", err)
	}
}

// ============================================================================
// Record Scan
// ============================================================================

func Test_Scan_01(t *testing.T) {
	// Value at the right edge
	w := waveform.RecordOf("r", waveform.Ramp(scalar.LitInt(0), scalar.LitInt(5), scalar.LitInt(2)), waveform.Right)
	check_Scan(t, sequence(w), NewBindings(), "r", "5")
}

func Test_Scan_02(t *testing.T) {
	// Value at the left edge
	w := waveform.RecordOf("r", waveform.Ramp(scalar.LitInt(1), scalar.LitInt(5), scalar.LitInt(2)), waveform.Left)
	check_Scan(t, sequence(w), NewBindings(), "r", "1")
}

func Test_Scan_03(t *testing.T) {
	// Later records see earlier ones.
	first := waveform.RecordOf("a", waveform.Const(scalar.Var("x"), scalar.LitInt(1)), waveform.Right)
	second := waveform.RecordOf("b",
		waveform.Ramp(scalar.Var("a"), scalar.Product(scalar.LitInt(2), scalar.Var("a")), scalar.LitInt(1)),
		waveform.Right)
	w := waveform.Concat(first, second)
	check_Scan(t, sequence(w), scalars("x", "3"), "b", "6")
}

func Test_Scan_04(t *testing.T) {
	// Records then dissolve under assignment.
	w := waveform.Concat(
		waveform.RecordOf("a", waveform.Const(scalar.LitInt(2), scalar.LitInt(1)), waveform.Right),
		waveform.Ramp(scalar.Var("a"), scalar.LitInt(0), scalar.LitInt(1)))
	seq := sequence(w)
	b, err := ScanSequence(seq, NewBindings())
	//
	if err != nil {
		t.Fatal(err)
	}
	//
	result, err := Sequence(seq, b)
	if err != nil {
		t.Fatal(err)
	}
	//
	flat := analog.Flatten(result)
	drive := flat.Pulses[analog.Rydberg].(*analog.Pulse).Fields[analog.Detuning].Drives[0]
	//
	if _, ok := drive.Waveform.(*waveform.Append).Waveforms[0].(*waveform.Constant); !ok {
		t.Errorf("expected record to dissolve: %s", drive.Waveform.String())
	}
}

func Test_Scan_Invalid_01(t *testing.T) {
	w := waveform.Concat(
		waveform.RecordOf("a", constant("1", "1"), waveform.Right),
		waveform.RecordOf("a", constant("2", "1"), waveform.Right))
	//
	if _, err := ScanSequence(sequence(w), NewBindings()); failure.KindOf(err) != failure.Reassignment {
		t.Errorf("expected reassignment conflict, got %v", err)
	}
}

func Test_Scan_Invalid_02(t *testing.T) {
	w := waveform.RecordOf("a", constant("1", "1"), waveform.Right)
	//
	if _, err := ScanSequence(sequence(w), scalars("a", "1")); failure.KindOf(err) != failure.Reassignment {
		t.Errorf("expected reassignment conflict, got %v", err)
	}
}

func Test_Scan_Invalid_03(t *testing.T) {
	w := waveform.RecordOf("a", waveform.Const(scalar.Var("x"), scalar.LitInt(1)), waveform.Right)
	//
	if _, err := ScanSequence(sequence(w), NewBindings()); failure.KindOf(err) != failure.Unbound {
		t.Errorf("expected unbound variable, got %v", err)
	}
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

// Construct scalar bindings from name / value pairs.
func scalars(pairs ...string) Bindings {
	b := NewBindings()
	//
	for i := 0; i < len(pairs); i += 2 {
		b.Scalars[pairs[i]] = dec(pairs[i+1])
	}
	//
	return b
}

func sequence(w waveform.Waveform) *analog.Sequence {
	field := analog.NewField(analog.Drive{Target: analog.Uniform, Waveform: w})
	pulse := analog.NewPulse(map[analog.FieldName]*analog.Field{analog.Detuning: field})
	//
	return analog.NewSequence(map[analog.LevelCoupling]analog.PulseExpr{analog.Rydberg: pulse})
}

func check_Scalar(t *testing.T, expr scalar.Scalar, b Bindings, expected string) {
	t.Helper()
	//
	result, err := Scalar(expr, b)
	if err != nil {
		t.Fatal(err)
	}
	// Must now evaluate without any bindings
	if v, err := scalar.Evaluate(result, scalar.Bindings{}); err != nil {
		t.Error(err)
	} else if !v.Equal(dec(expected)) {
		t.Errorf("expected %s, got %s", expected, v)
	}
}

func check_Conflict(t *testing.T, expr scalar.Scalar, b Bindings) {
	t.Helper()
	//
	if _, err := Scalar(expr, b); failure.KindOf(err) != failure.Reassignment {
		t.Errorf("expected reassignment conflict, got %v", err)
	}
}

func check_Waveform(t *testing.T, w waveform.Waveform, b Bindings, time string, expected string) {
	t.Helper()
	//
	result, err := Waveform(w, b)
	if err != nil {
		t.Fatal(err)
	}
	//
	if v, err := waveform.ValueAt(result, dec(time), scalar.Bindings{}); err != nil {
		t.Error(err)
	} else if !v.Equal(dec(expected)) {
		t.Errorf("expected %s at %s, got %s", expected, time, v)
	}
}

func check_Scan(t *testing.T, seq analog.SequenceExpr, b Bindings, name string, expected string) {
	t.Helper()
	//
	result, err := ScanSequence(seq, b)
	if err != nil {
		t.Fatal(err)
	}
	//
	if v, ok := result.Scalars[name]; !ok {
		t.Errorf("variable %s not recorded", name)
	} else if !v.Equal(dec(expected)) {
		t.Errorf("expected %s = %s, got %s", name, expected, v)
	}
}
