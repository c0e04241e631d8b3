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
package sexp

import (
	"strings"
	"testing"

	"github.com/consensys/go-analog/pkg/util/source"
)

func Test_SExp_01(t *testing.T) {
	check_RoundTrip(t, "(add 1 2)")
}

func Test_SExp_02(t *testing.T) {
	check_RoundTrip(t, "(append_waveform (constant (literal 1) (literal 2)) (linear x y z))")
}

func Test_SExp_03(t *testing.T) {
	check_RoundTrip(t, "(piecewise_linear [0 0.5 1] [0 5 10])")
}

func Test_SExp_04(t *testing.T) {
	check_RoundTrip(t, "()")
}

func Test_SExp_05(t *testing.T) {
	// Comments and whitespace are discarded
	check_Parse(t, "(add ; first\n 1\t2)", "(add 1 2)")
}

func Test_SExp_Invalid_01(t *testing.T) {
	check_Invalid(t, "(add 1 2")
}

func Test_SExp_Invalid_02(t *testing.T) {
	check_Invalid(t, "(add 1 2]")
}

func Test_SExp_Invalid_03(t *testing.T) {
	check_Invalid(t, ")")
}

func Test_SExp_Invalid_04(t *testing.T) {
	check_Invalid(t, "(a) (b)")
}

func Test_SExp_ParseAll(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("(a) b [c d]"))
	terms, _, err := ParseAll(srcfile)
	//
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	} else if len(terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(terms))
	} else if terms[2].AsArray() == nil || terms[2].AsArray().Len() != 2 {
		t.Errorf("expected array of length 2, got %s", terms[2].String(false))
	}
}

func Test_SExp_Pretty(t *testing.T) {
	term := NewTaggedList("append_waveform",
		NewTaggedList("constant", NewSymbol("1"), NewSymbol("2")),
		NewTaggedList("constant", NewSymbol("3"), NewSymbol("4")))
	//
	expected := "(append_waveform\n  (constant 1 2)\n  (constant 3 4))"
	//
	if actual := Pretty(term, 20); actual != expected {
		t.Errorf("expected %q, got %q", expected, actual)
	}
	// Everything fits on one line
	if actual := Pretty(term, 80); actual != term.String(true) {
		t.Errorf("expected %q, got %q", term.String(true), actual)
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_RoundTrip(t *testing.T, input string) {
	check_Parse(t, input, input)
}

func check_Parse(t *testing.T, input string, expected string) {
	srcfile := source.NewSourceFile("test", []byte(input))
	term, srcmap, err := Parse(srcfile)
	//
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	} else if actual := term.String(false); actual != expected {
		t.Errorf("expected %s, got %s", expected, actual)
	} else if !srcmap.Has(term) {
		t.Errorf("missing source mapping for %s", actual)
	}
}

func check_Invalid(t *testing.T, input string) {
	srcfile := source.NewSourceFile("test", []byte(input))
	//
	if _, _, err := Parse(srcfile); err == nil {
		t.Errorf("expected error parsing %q", input)
	}
}

func Test_SExp_Deep(t *testing.T) {
	var builder strings.Builder
	// Nesting depth does not consume goroutine stack
	for range 100000 {
		builder.WriteString("(neg ")
	}
	//
	builder.WriteString("x")
	builder.WriteString(strings.Repeat(")", 100000))
	//
	srcfile := source.NewSourceFile("test", []byte(builder.String()))
	term, _, err := Parse(srcfile)
	//
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	} else if term.AsList() == nil || term.AsList().Head() != "neg" {
		t.Errorf("expected list headed by neg")
	}
}

func Test_SExp_Invalid_05(t *testing.T) {
	srcfile := source.NewSourceFile("test", []byte("(a [b)"))
	_, _, err := Parse(srcfile)
	//
	if err == nil {
		t.Fatalf("expected error")
	} else if err.Span().Start() != 5 || err.Message() != "unexpected end-of-list" {
		t.Errorf("unexpected error at %d: %s", err.Span().Start(), err.Message())
	}
}
