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
package piecewise

import (
	"fmt"
	"sort"
	"strings"

	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/shopspring/decimal"
)

// Series is a breakpoint series describing a function over [0,duration].
type Series interface {
	// Duration returns the time of the final breakpoint.
	Duration() decimal.Decimal
	// Eval returns the value at a given time, or zero outside the domain.
	Eval(t decimal.Decimal) decimal.Decimal
	// Breakpoints returns the times and values of every breakpoint.
	Breakpoints() ([]decimal.Decimal, []decimal.Decimal)
	// String returns a human-readable rendering of this series.
	String() string
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var (
	_ Series = (*Linear)(nil)
	_ Series = (*Constant)(nil)
)

// Linear is a piecewise-linear series of breakpoints.  Times are strictly
// increasing from zero, and the value between two breakpoints is given by
// linear interpolation.  The final breakpoint determines the duration of the
// series.
type Linear struct {
	Times  []decimal.Decimal
	Values []decimal.Decimal
}

// Constant is a piecewise-constant series of breakpoints.  Times are strictly
// increasing from zero, and the value at a breakpoint holds until the next
// breakpoint.  The final breakpoint determines the duration of the series, and
// its value always matches that of the penultimate breakpoint.
type Constant struct {
	Times  []decimal.Decimal
	Values []decimal.Decimal
}

// NewLinear constructs a piecewise-linear series, checking the times are
// well-formed.
func NewLinear(times []decimal.Decimal, values []decimal.Decimal) (*Linear, error) {
	if err := checkBreakpoints(times, values); err != nil {
		return nil, err
	}
	//
	return &Linear{times, values}, nil
}

// NewConstant constructs a piecewise-constant series, checking the times are
// well-formed.  The final value is made to match the penultimate value.
func NewConstant(times []decimal.Decimal, values []decimal.Decimal) (*Constant, error) {
	if err := checkBreakpoints(times, values); err != nil {
		return nil, err
	}
	//
	return flatTail(times, values), nil
}

// Duration returns the duration of this series.
func (p *Linear) Duration() decimal.Decimal {
	return p.Times[len(p.Times)-1]
}

// Breakpoints returns the times and values of every breakpoint.
func (p *Linear) Breakpoints() ([]decimal.Decimal, []decimal.Decimal) {
	return p.Times, p.Values
}

// Eval returns the value of this series at a given time, or zero outside of
// its domain.
func (p *Linear) Eval(t decimal.Decimal) decimal.Decimal {
	n := len(p.Times)
	//
	if t.IsNegative() || t.GreaterThan(p.Duration()) {
		return decimal.Zero
	} else if i := rightmost(p.Times, t); i+1 < n {
		return interpolate(p.Times[i], p.Values[i], p.Times[i+1], p.Values[i+1], t)
	}
	//
	return p.Values[n-1]
}

// Slice returns the portion of this series within [start,stop), shifted to
// begin at zero.  Values at the cut points are interpolated.
func (p *Linear) Slice(start decimal.Decimal, stop decimal.Decimal) (*Linear, error) {
	if err := checkSlice(p, start, stop, p.Duration()); err != nil {
		return nil, err
	}
	//
	times, values := sliceBreakpoints(p.Times, p.Values, start, stop)
	values[0] = p.Eval(start)
	values[len(values)-1] = p.Eval(stop)
	//
	return &Linear{times, values}, nil
}

// Append returns the concatenation of this series with another.  This fails
// if the final value of this series differs from the first value of the other.
func (p *Linear) Append(other *Linear) (*Linear, error) {
	var (
		n     = len(p.Values)
		left  = p.Values[n-1]
		right = other.Values[0]
	)
	//
	if !left.Equal(right) {
		return nil, &failure.Discontinuity{Time: p.Duration(), Left: left.String(), LeftValue: left,
			Right: right.String(), RightValue: right}
	}
	//
	times, values := appendBreakpoints(p.Times, p.Values, other.Times, other.Values)
	//
	return &Linear{times, values}, nil
}

// Map applies a function to every value of this series.
func (p *Linear) Map(fn func(decimal.Decimal) decimal.Decimal) *Linear {
	return &Linear{p.Times, mapValues(p.Values, fn)}
}

// Equal checks whether two series describe the same function.  That is, they
// have the same duration and agree at every breakpoint of either.
func (p *Linear) Equal(other *Linear) bool {
	return equalAt(p.Duration(), other.Duration(), p.Times, other.Times, p.Eval, other.Eval)
}

func (p *Linear) String() string {
	return render("linear", p.Times, p.Values)
}

// Duration returns the duration of this series.
func (p *Constant) Duration() decimal.Decimal {
	return p.Times[len(p.Times)-1]
}

// Breakpoints returns the times and values of every breakpoint.
func (p *Constant) Breakpoints() ([]decimal.Decimal, []decimal.Decimal) {
	return p.Times, p.Values
}

// Eval returns the value of this series at a given time, or zero outside of
// its domain.  At a breakpoint, this is the value of the step starting there,
// except at the final breakpoint where it is the value of the last step.
func (p *Constant) Eval(t decimal.Decimal) decimal.Decimal {
	if t.IsNegative() || t.GreaterThan(p.Duration()) {
		return decimal.Zero
	}
	//
	return p.Values[rightmost(p.Times, t)]
}

// Step returns the value of the step starting at a given time.  This is zero
// at (and beyond) the end of the series.
func (p *Constant) Step(t decimal.Decimal) decimal.Decimal {
	if t.IsNegative() || t.GreaterThanOrEqual(p.Duration()) {
		return decimal.Zero
	}
	//
	return p.Values[rightmost(p.Times, t)]
}

// Slice returns the portion of this series within [start,stop), shifted to
// begin at zero.
func (p *Constant) Slice(start decimal.Decimal, stop decimal.Decimal) (*Constant, error) {
	if err := checkSlice(p, start, stop, p.Duration()); err != nil {
		return nil, err
	}
	//
	times, values := sliceBreakpoints(p.Times, p.Values, start, stop)
	values[0] = p.Eval(start)
	//
	return flatTail(times, values), nil
}

// Append returns the concatenation of this series with another.  Steps can
// change value at the joint.
func (p *Constant) Append(other *Constant) *Constant {
	n := len(p.Values)
	// Drop the tail value of the first series, since the step starting at the
	// joint belongs to the second.
	times, values := appendBreakpoints(p.Times, p.Values, other.Times, other.Values)
	values[n-1] = other.Values[0]
	//
	return flatTail(times, values)
}

// Map applies a function to every value of this series.
func (p *Constant) Map(fn func(decimal.Decimal) decimal.Decimal) *Constant {
	return &Constant{p.Times, mapValues(p.Values, fn)}
}

// Equal checks whether two series describe the same function.  That is, they
// have the same duration and agree at every breakpoint of either.
func (p *Constant) Equal(other *Constant) bool {
	return equalAt(p.Duration(), other.Duration(), p.Times, other.Times, p.Eval, other.Eval)
}

func (p *Constant) String() string {
	return render("constant", p.Times, p.Values)
}

// ============================================================================
// Helpers
// ============================================================================

func checkBreakpoints(times []decimal.Decimal, values []decimal.Decimal) error {
	switch {
	case len(times) == 0:
		return failure.Malformedf(nil, "series has no breakpoints")
	case len(times) != len(values):
		return failure.Malformedf(nil, "series has %d times but %d values", len(times), len(values))
	case !times[0].IsZero():
		return failure.Malformedf(nil, "series starts at %s (not zero)", times[0].String())
	}
	//
	for i := 1; i < len(times); i++ {
		if !times[i].GreaterThan(times[i-1]) {
			return failure.Malformedf(nil, "series times not increasing at %s", times[i].String())
		}
	}
	//
	return nil
}

func checkSlice(series fmt.Stringer, start decimal.Decimal, stop decimal.Decimal, duration decimal.Decimal) error {
	if start.IsNegative() || start.GreaterThan(stop) || stop.GreaterThan(duration) {
		return failure.Malformedf(series, "invalid slice [%s,%s) of series with duration %s", start.String(),
			stop.String(), duration.String())
	}
	//
	return nil
}

// Extract the breakpoints within [start,stop), adding breakpoints at either
// end whose values must subsequently be determined by the caller.  The result
// is shifted to begin at zero.
func sliceBreakpoints(times []decimal.Decimal, values []decimal.Decimal, start decimal.Decimal,
	stop decimal.Decimal) ([]decimal.Decimal, []decimal.Decimal) {
	// Locate first breakpoint strictly after start, and first at or after stop.
	first := sort.Search(len(times), func(i int) bool { return times[i].GreaterThan(start) })
	last := sort.Search(len(times), func(i int) bool { return times[i].GreaterThanOrEqual(stop) })
	//
	rtimes := []decimal.Decimal{decimal.Zero}
	rvalues := []decimal.Decimal{decimal.Zero}
	//
	for i := first; i < last; i++ {
		rtimes = append(rtimes, times[i].Sub(start))
		rvalues = append(rvalues, values[i])
	}
	//
	if stop.GreaterThan(start) {
		rtimes = append(rtimes, stop.Sub(start))
		rvalues = append(rvalues, decimal.Zero)
	}
	//
	return rtimes, rvalues
}

// Concatenate two sets of breakpoints, shifting the second to start where the
// first ends and sharing the joint breakpoint (which takes the value from the
// first).
func appendBreakpoints(ltimes, lvalues, rtimes, rvalues []decimal.Decimal) ([]decimal.Decimal,
	[]decimal.Decimal) {
	var (
		offset = ltimes[len(ltimes)-1]
		times  = append([]decimal.Decimal(nil), ltimes...)
		values = append([]decimal.Decimal(nil), lvalues...)
	)
	//
	for i := 1; i < len(rtimes); i++ {
		times = append(times, rtimes[i].Add(offset))
		values = append(values, rvalues[i])
	}
	//
	return times, values
}

// Force the final value of a step series to match its penultimate value.
func flatTail(times []decimal.Decimal, values []decimal.Decimal) *Constant {
	if n := len(values); n >= 2 && !values[n-1].Equal(values[n-2]) {
		values = append([]decimal.Decimal(nil), values...)
		values[n-1] = values[n-2]
	}
	//
	return &Constant{times, values}
}

func mapValues(values []decimal.Decimal, fn func(decimal.Decimal) decimal.Decimal) []decimal.Decimal {
	result := make([]decimal.Decimal, len(values))
	//
	for i, v := range values {
		result[i] = fn(v)
	}
	//
	return result
}

func equalAt(ld, rd decimal.Decimal, ltimes, rtimes []decimal.Decimal, lhs, rhs func(decimal.Decimal) decimal.Decimal) bool {
	if !ld.Equal(rd) {
		return false
	}
	//
	for _, times := range [][]decimal.Decimal{ltimes, rtimes} {
		for _, t := range times {
			if !lhs(t).Equal(rhs(t)) {
				return false
			}
		}
	}
	//
	return true
}

// Merge two sorted sets of times, removing duplicates.
func union(lhs []decimal.Decimal, rhs []decimal.Decimal) []decimal.Decimal {
	var (
		result = make([]decimal.Decimal, 0, len(lhs)+len(rhs))
		i, j   int
	)
	//
	for i < len(lhs) || j < len(rhs) {
		var next decimal.Decimal
		//
		switch {
		case j == len(rhs) || (i < len(lhs) && lhs[i].LessThan(rhs[j])):
			next, i = lhs[i], i+1
		case i == len(lhs) || rhs[j].LessThan(lhs[i]):
			next, j = rhs[j], j+1
		default:
			next, i, j = lhs[i], i+1, j+1
		}
		//
		result = append(result, next)
	}
	//
	return result
}

// Compute the value at time t on the line through (t0,v0) and (t1,v1).
func interpolate(t0, v0, t1, v1, t decimal.Decimal) decimal.Decimal {
	return v0.Add(v1.Sub(v0).Mul(t.Sub(t0)).Div(t1.Sub(t0)))
}

// Find the index of the rightmost time less than or equal to a given time.
func rightmost(times []decimal.Decimal, t decimal.Decimal) int {
	i := sort.Search(len(times), func(i int) bool { return times[i].GreaterThan(t) })
	//
	return max(i-1, 0)
}

func render(kind string, times []decimal.Decimal, values []decimal.Decimal) string {
	var builder strings.Builder
	//
	builder.WriteString(kind)
	builder.WriteString("{")
	//
	for i := range times {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(fmt.Sprintf("(%s,%s)", times[i].String(), values[i].String()))
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}
