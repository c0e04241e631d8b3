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
package scalar

import (
	"testing"

	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/shopspring/decimal"
)

func Test_Scalar_Render_01(t *testing.T) {
	check_Render(t, LitInt(1), "1")
}

func Test_Scalar_Render_02(t *testing.T) {
	check_Render(t, Sum(LitInt(1), Var("x")), "(+ 1 x)")
}

func Test_Scalar_Render_03(t *testing.T) {
	check_Render(t, Sub(Var("x"), Var("y")), "(+ x (- y))")
}

func Test_Scalar_Render_04(t *testing.T) {
	check_Render(t, Minimum(Var("x"), LitInt(2)), "(min x 2)")
}

func Test_Scalar_Render_05(t *testing.T) {
	check_Render(t, SliceOf(Var("d"), NewInterval(nil, LitInt(2))), "(slice d _ 2)")
}

func Test_Scalar_Render_06(t *testing.T) {
	check_Render(t, Quotient(Product(lit("0.5"), Var("x")), Assigned("y", decimal.NewFromInt(3))), "(/ (* 0.5 x) y)")
}

// ============================================================================
// Equality
// ============================================================================

func Test_Scalar_Equal_01(t *testing.T) {
	check_Equal(t, Lit(decimal.RequireFromString("1.0")), LitInt(1), true)
}

func Test_Scalar_Equal_02(t *testing.T) {
	check_Equal(t, Sum(Var("a"), Var("b")), Sum(Var("a"), Var("b")), true)
}

func Test_Scalar_Equal_03(t *testing.T) {
	check_Equal(t, Sum(Var("a"), Var("b")), Sum(Var("b"), Var("a")), false)
}

func Test_Scalar_Equal_04(t *testing.T) {
	check_Equal(t, Minimum(Var("a"), Var("b"), LitInt(1)), Minimum(LitInt(1), Var("b"), Var("a")), true)
}

func Test_Scalar_Equal_05(t *testing.T) {
	check_Equal(t, Maximum(Var("a"), Var("a"), Var("b")), Maximum(Var("b"), Var("a")), true)
}

func Test_Scalar_Equal_06(t *testing.T) {
	check_Equal(t, Minimum(Var("a"), Var("b")), Maximum(Var("a"), Var("b")), false)
}

func Test_Scalar_Equal_07(t *testing.T) {
	check_Equal(t, Var("a"), Assigned("a", decimal.NewFromInt(1)), false)
}

func Test_Scalar_Equal_08(t *testing.T) {
	check_Equal(t, SliceOf(Var("d"), NewInterval(nil, LitInt(1))),
		SliceOf(Var("d"), NewInterval(LitInt(1), nil)), false)
}

func Test_Scalar_Equal_09(t *testing.T) {
	check_Equal(t, SliceOf(Var("d"), NewInterval(LitInt(0), LitInt(1))),
		SliceOf(Var("d"), NewInterval(LitInt(0), LitInt(1))), true)
}

func Test_Scalar_Equal_10(t *testing.T) {
	// Deep chains must not exhaust the stack
	var lhs, rhs Scalar = Var("x"), Var("x")
	//
	for i := 0; i < 100_000; i++ {
		lhs = Sum(lhs, LitInt(1))
		rhs = Sum(rhs, LitInt(1))
	}
	//
	check_Equal(t, lhs, rhs, true)
}

// ============================================================================
// Evaluation
// ============================================================================

func Test_Scalar_Eval_01(t *testing.T) {
	check_Eval(t, Sum(LitInt(1), LitInt(2)), nil, "3")
}

func Test_Scalar_Eval_02(t *testing.T) {
	check_Eval(t, Product(Var("x"), lit("0.1")), bindings("x", "3"), "0.3")
}

func Test_Scalar_Eval_03(t *testing.T) {
	check_Eval(t, Quotient(LitInt(1), LitInt(4)), nil, "0.25")
}

func Test_Scalar_Eval_04(t *testing.T) {
	check_Eval(t, Minimum(Var("x"), LitInt(2), Neg(LitInt(1))), bindings("x", "-3"), "-3")
}

func Test_Scalar_Eval_05(t *testing.T) {
	check_Eval(t, Maximum(Var("x"), LitInt(2)), bindings("x", "-3"), "2")
}

func Test_Scalar_Eval_06(t *testing.T) {
	check_Eval(t, SliceOf(LitInt(5), NewInterval(LitInt(1), nil)), nil, "4")
}

func Test_Scalar_Eval_07(t *testing.T) {
	check_Eval(t, SliceOf(LitInt(5), NewInterval(nil, LitInt(2))), nil, "2")
}

func Test_Scalar_Eval_08(t *testing.T) {
	check_Eval(t, Sub(Assigned("a", decimal.NewFromInt(7)), LitInt(2)), nil, "5")
}

func Test_Scalar_Eval_Invalid_01(t *testing.T) {
	check_EvalFails(t, Quotient(LitInt(1), Sub(Var("x"), LitInt(1))), bindings("x", "1"), failure.ZeroDivision)
}

func Test_Scalar_Eval_Invalid_02(t *testing.T) {
	check_EvalFails(t, Sum(Var("x"), Var("y")), bindings("x", "1"), failure.Unbound)
}

func Test_Scalar_Eval_Invalid_03(t *testing.T) {
	check_EvalFails(t, SliceOf(LitInt(5), NewInterval(LitInt(3), LitInt(2))), nil, failure.Malformed)
}

func Test_Scalar_Eval_Invalid_04(t *testing.T) {
	check_EvalFails(t, SliceOf(LitInt(5), NewInterval(Neg(LitInt(1)), nil)), nil, failure.Malformed)
}

func Test_Scalar_Eval_Invalid_05(t *testing.T) {
	check_EvalFails(t, SliceOf(LitInt(5), NewInterval(nil, LitInt(6))), nil, failure.Malformed)
}

func Test_Scalar_Eval_Invalid_06(t *testing.T) {
	check_EvalFails(t, Minimum(), nil, failure.Malformed)
	check_EvalFails(t, Maximum(), nil, failure.Malformed)
}

// ============================================================================
// Misc
// ============================================================================

func Test_Scalar_Names_01(t *testing.T) {
	names := Names(Sum(Product(Var("b"), Var("a")), Sum(Assigned("c", decimal.Zero), Var("b"))))
	//
	if len(names) != 3 || names[0] != "b" || names[1] != "a" || names[2] != "c" {
		t.Errorf("unexpected names %v", names)
	}
}

func Test_Scalar_Cast_01(t *testing.T) {
	check_Equal(t, MustCast(0.1), lit("0.1"), true)
	check_Equal(t, MustCast("2.50"), lit("2.5"), true)
	check_Equal(t, MustCast(3), LitInt(3), true)
	//
	if _, err := Cast(struct{}{}); err == nil {
		t.Errorf("expected cast to fail")
	}
}

// ============================================================================
// Test Helpers
// ============================================================================

func lit(value string) *Literal {
	return Lit(decimal.RequireFromString(value))
}

func bindings(name string, value string) Bindings {
	return Bindings{name: decimal.RequireFromString(value)}
}

func check_Render(t *testing.T, expr Scalar, expected string) {
	if actual := expr.String(); actual != expected {
		t.Errorf("expected %s, got %s", expected, actual)
	}
}

func check_Equal(t *testing.T, lhs Scalar, rhs Scalar, expected bool) {
	if Equal(lhs, rhs) != expected {
		t.Errorf("expected Equal(%s,%s) == %t", lhs.String(), rhs.String(), expected)
	} else if Equal(rhs, lhs) != expected {
		t.Errorf("expected Equal(%s,%s) == %t", rhs.String(), lhs.String(), expected)
	} else if expected && lhs.Hash() != rhs.Hash() {
		t.Errorf("equal expressions %s and %s have different hashes", lhs.String(), rhs.String())
	}
}

func check_Eval(t *testing.T, expr Scalar, env Bindings, expected string) {
	actual, err := Evaluate(expr, env)
	//
	if err != nil {
		t.Error(err)
	} else if !actual.Equal(decimal.RequireFromString(expected)) {
		t.Errorf("evaluating %s, expected %s got %s", expr.String(), expected, actual.String())
	}
}

func check_EvalFails(t *testing.T, expr Scalar, env Bindings, kind failure.Kind) {
	_, err := Evaluate(expr, env)
	//
	if err == nil {
		t.Errorf("evaluating %s should have failed", expr.String())
	} else if failure.KindOf(err) != kind {
		t.Errorf("evaluating %s, expected %s got %s", expr.String(), kind.String(), err.Error())
	}
}
