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
	"fmt"

	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
	"github.com/shopspring/decimal"
)

// Waveform represents a symbolic function of time over a finite duration.
// Waveforms are immutable and compared structurally (see Equal).  Every
// numeric parameter of a waveform (values, durations, bounds) is a scalar
// expression, hence waveforms may be parameterised by variables.  The set of
// variants is closed.
type Waveform interface {
	// Hash returns a structural hash of this waveform, such that equal
	// waveforms have equal hashes.
	Hash() uint64
	// String returns a human-readable rendering of this waveform.
	String() string
	// Marks the closed set of waveform variants.
	isWaveform()
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var (
	_ Waveform = (*Constant)(nil)
	_ Waveform = (*Linear)(nil)
	_ Waveform = (*Poly)(nil)
	_ Waveform = (*Native)(nil)
	_ Waveform = (*Negative)(nil)
	_ Waveform = (*Add)(nil)
	_ Waveform = (*Scale)(nil)
	_ Waveform = (*Slice)(nil)
	_ Waveform = (*Append)(nil)
	_ Waveform = (*Record)(nil)
	_ Waveform = (*Sample)(nil)
	_ Waveform = (*Smooth)(nil)
	_ Waveform = (*Aligned)(nil)
)

// ============================================================================
// Enumerations
// ============================================================================

// Side identifies one of the two boundaries of a waveform.
type Side uint8

const (
	// Left identifies the start of a waveform.
	Left Side = iota
	// Right identifies the end of a waveform.
	Right
)

func (p Side) String() string {
	if p == Left {
		return "left"
	}
	//
	return "right"
}

// Opposite returns the other side.
func (p Side) Opposite() Side {
	return 1 - p
}

// ParseSide converts a string into a side, returning false if this fails.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "left":
		return Left, true
	case "right":
		return Right, true
	default:
		return Left, false
	}
}

// Interpolation determines how sampled values are reconstructed between
// sample points.
type Interpolation uint8

const (
	// LinearInterpolation joins consecutive samples with straight lines.
	LinearInterpolation Interpolation = iota
	// ConstantInterpolation holds each sample until the next.
	ConstantInterpolation
)

func (p Interpolation) String() string {
	if p == LinearInterpolation {
		return "linear"
	}
	//
	return "constant"
}

// ParseInterpolation converts a string into an interpolation kind, returning
// false if this fails.
func ParseInterpolation(s string) (Interpolation, bool) {
	switch s {
	case "linear":
		return LinearInterpolation, true
	case "constant":
		return ConstantInterpolation, true
	default:
		return LinearInterpolation, false
	}
}

// AlignedValue determines the value used to extend an aligned waveform.  This
// is either an explicit scalar, or the boundary value of the waveform itself on
// a given side.
type AlignedValue struct {
	// Value is the explicit value, or nil when this is a side marker.
	Value scalar.Scalar
	// Side whose boundary value is used, when Value is nil.
	Side Side
}

// ExplicitValue constructs an aligned value from a given scalar.
func ExplicitValue(value scalar.Scalar) AlignedValue {
	return AlignedValue{value, Left}
}

// BoundaryValue constructs an aligned value referring to the boundary value of
// the aligned waveform on a given side.
func BoundaryValue(side Side) AlignedValue {
	return AlignedValue{nil, side}
}

// IsBoundary checks whether this refers to a boundary value.
func (p AlignedValue) IsBoundary() bool {
	return p.Value == nil
}

// Hash computes a structural hash for this value.
func (p AlignedValue) Hash() uint64 {
	if p.Value == nil {
		return hash.Mix(hash.Seed("side"), uint64(p.Side))
	}
	//
	return p.Value.Hash()
}

// Equals checks whether two aligned values are structurally identical.
func (p AlignedValue) Equals(other AlignedValue) bool {
	if p.Value == nil || other.Value == nil {
		return p.Value == nil && other.Value == nil && p.Side == other.Side
	}
	//
	return scalar.Equal(p.Value, other.Value)
}

func (p AlignedValue) String() string {
	if p.Value == nil {
		return p.Side.String()
	}
	//
	return p.Value.String()
}

// ============================================================================
// Leaves
// ============================================================================

// Constant holds a fixed value for a given duration.
type Constant struct {
	Value    scalar.Scalar
	Duration scalar.Scalar
	hash     uint64
}

// Const constructs a constant waveform.
func Const(value scalar.Scalar, duration scalar.Scalar) *Constant {
	return &Constant{value, duration, hash.MixAll(hash.Seed("constant"), value.Hash(), duration.Hash())}
}

// Hash implementation for Waveform interface.
func (p *Constant) Hash() uint64 { return p.hash }

func (p *Constant) String() string { return Render(p) }

func (p *Constant) isWaveform() {}

// Linear ramps from a start value to a stop value over a given duration.
type Linear struct {
	Start    scalar.Scalar
	Stop     scalar.Scalar
	Duration scalar.Scalar
	hash     uint64
}

// Ramp constructs a linear waveform.
func Ramp(start scalar.Scalar, stop scalar.Scalar, duration scalar.Scalar) *Linear {
	return &Linear{start, stop, duration,
		hash.MixAll(hash.Seed("linear"), start.Hash(), stop.Hash(), duration.Hash())}
}

// Hash implementation for Waveform interface.
func (p *Linear) Hash() uint64 { return p.hash }

func (p *Linear) String() string { return Render(p) }

func (p *Linear) isWaveform() {}

// Poly is a polynomial in time, given by coefficients in increasing order of
// degree (i.e. c0 + c1*t + c2*t^2 + ...).
type Poly struct {
	Coeffs   []scalar.Scalar
	Duration scalar.Scalar
	hash     uint64
}

// Polynomial constructs a polynomial waveform.
func Polynomial(coeffs []scalar.Scalar, duration scalar.Scalar) *Poly {
	h := hash.Seed("poly")
	//
	for _, c := range coeffs {
		h = hash.Mix(h, c.Hash())
	}
	//
	return &Poly{coeffs, duration, hash.Mix(h, duration.Hash())}
}

// Degree returns the formal degree of this polynomial, or -1 when it has no
// coefficients.
func (p *Poly) Degree() int {
	return len(p.Coeffs) - 1
}

// Hash implementation for Waveform interface.
func (p *Poly) Hash() uint64 { return p.hash }

func (p *Poly) String() string { return Render(p) }

func (p *Poly) isWaveform() {}

// NativeFn is a function supplied by host code, which computes the value of a
// waveform at a given time from the values of its captured parameters.
type NativeFn func(time decimal.Decimal, params []decimal.Decimal) decimal.Decimal

// Native is an opaque waveform whose values are computed by host code.  Native
// waveforms are never simplified arithmetically, cannot be serialised and can
// only be lowered by sampling.
type Native struct {
	Name     string
	Fn       NativeFn
	Duration scalar.Scalar
	Params   []scalar.Scalar
	hash     uint64
}

// NativeOf constructs a native waveform.
func NativeOf(name string, fn NativeFn, duration scalar.Scalar, params ...scalar.Scalar) *Native {
	h := hash.MixAll(hash.Seed("native"), hash.String(name), duration.Hash())
	//
	for _, p := range params {
		h = hash.Mix(h, p.Hash())
	}
	//
	return &Native{name, fn, duration, params, h}
}

// Hash implementation for Waveform interface.
func (p *Native) Hash() uint64 { return p.hash }

func (p *Native) String() string { return Render(p) }

func (p *Native) isWaveform() {}

// ============================================================================
// Arithmetic
// ============================================================================

// Negative negates a waveform pointwise.
type Negative struct {
	Waveform Waveform
	hash     uint64
}

// Negate constructs the negation of a waveform.
func Negate(w Waveform) *Negative {
	return &Negative{w, hash.Mix(hash.Seed("negative"), w.Hash())}
}

// Hash implementation for Waveform interface.
func (p *Negative) Hash() uint64 { return p.hash }

func (p *Negative) String() string { return Render(p) }

func (p *Negative) isWaveform() {}

// Add sums two waveforms pointwise.  The operands may have different
// durations, in which case the sum lasts as long as the longest and the
// shorter operand simply drops out after its own end.
type Add struct {
	Lhs  Waveform
	Rhs  Waveform
	hash uint64
}

// Plus constructs the sum of two waveforms.
func Plus(lhs Waveform, rhs Waveform) *Add {
	return &Add{lhs, rhs, hash.MixAll(hash.Seed("add"), lhs.Hash(), rhs.Hash())}
}

// Hash implementation for Waveform interface.
func (p *Add) Hash() uint64 { return p.hash }

func (p *Add) String() string { return Render(p) }

func (p *Add) isWaveform() {}

// Scale multiplies a waveform pointwise by a scalar.
type Scale struct {
	Factor   scalar.Scalar
	Waveform Waveform
	hash     uint64
}

// Scaled constructs a scaled waveform.
func Scaled(factor scalar.Scalar, w Waveform) *Scale {
	return &Scale{factor, w, hash.MixAll(hash.Seed("scale"), factor.Hash(), w.Hash())}
}

// Hash implementation for Waveform interface.
func (p *Scale) Hash() uint64 { return p.hash }

func (p *Scale) String() string { return Render(p) }

func (p *Scale) isWaveform() {}

// ============================================================================
// Time Manipulation
// ============================================================================

// Slice restricts a waveform to a window of time, given in the waveform's own
// clock, and shifts it such that the start of the window becomes time zero.
type Slice struct {
	Waveform Waveform
	Interval scalar.Interval
	hash     uint64
}

// SliceOf constructs a slice of a waveform.
func SliceOf(w Waveform, interval scalar.Interval) *Slice {
	return &Slice{w, interval, hash.MixAll(hash.Seed("slice"), w.Hash(), interval.Hash())}
}

// Hash implementation for Waveform interface.
func (p *Slice) Hash() uint64 { return p.hash }

func (p *Slice) String() string { return Render(p) }

func (p *Slice) isWaveform() {}

// Append concatenates a sequence of waveforms in time.
type Append struct {
	Waveforms []Waveform
	hash      uint64
}

// Concat constructs the concatenation of one or more waveforms.
func Concat(waveforms ...Waveform) *Append {
	h := hash.Seed("append")
	//
	for _, w := range waveforms {
		h = hash.Mix(h, w.Hash())
	}
	//
	return &Append{waveforms, h}
}

// Hash implementation for Waveform interface.
func (p *Append) Hash() uint64 { return p.hash }

func (p *Append) String() string { return Render(p) }

func (p *Append) isWaveform() {}

// Record behaves exactly as the enclosed waveform, but additionally defines a
// variable to hold the value of the enclosed waveform at one of its
// boundaries.  Such variables can be used by waveforms which come later.
type Record struct {
	Var      string
	Waveform Waveform
	Side     Side
	hash     uint64
}

// RecordOf constructs a record of a waveform.
func RecordOf(name string, w Waveform, side Side) *Record {
	return &Record{name, w, side, hash.MixAll(hash.Seed("record"), hash.String(name), w.Hash(), uint64(side))}
}

// Hash implementation for Waveform interface.
func (p *Record) Hash() uint64 { return p.hash }

func (p *Record) String() string { return Render(p) }

func (p *Record) isWaveform() {}

// Sample discretises a waveform at regular intervals of a given step, with
// values between sample points reconstructed by interpolation.
type Sample struct {
	Waveform      Waveform
	Step          scalar.Scalar
	Interpolation Interpolation
	hash          uint64
}

// SampleOf constructs a sampling of a waveform.
func SampleOf(w Waveform, step scalar.Scalar, interpolation Interpolation) *Sample {
	return &Sample{w, step, interpolation,
		hash.MixAll(hash.Seed("sample"), w.Hash(), step.Hash(), uint64(interpolation))}
}

// Hash implementation for Waveform interface.
func (p *Sample) Hash() uint64 { return p.hash }

func (p *Sample) String() string { return Render(p) }

func (p *Sample) isWaveform() {}

// Smooth applies kernel smoothing of a given radius to a waveform.
type Smooth struct {
	Waveform Waveform
	Radius   scalar.Scalar
	Kernel   Kernel
	hash     uint64
}

// SmoothOf constructs a smoothing of a waveform.
func SmoothOf(w Waveform, radius scalar.Scalar, kernel Kernel) *Smooth {
	return &Smooth{w, radius, kernel, hash.MixAll(hash.Seed("smooth"), w.Hash(), radius.Hash(), uint64(kernel))}
}

// Hash implementation for Waveform interface.
func (p *Smooth) Hash() uint64 { return p.hash }

func (p *Smooth) String() string { return Render(p) }

func (p *Smooth) isWaveform() {}

// Aligned behaves exactly as the enclosed waveform, but indicates to which side
// the waveform should be aligned when it is extended to a longer duration, and
// with what value the extension should be filled.  For example, a waveform
// aligned to the left is extended on the right.
type Aligned struct {
	Waveform  Waveform
	Alignment Side
	Value     AlignedValue
	hash      uint64
}

// Align constructs an aligned waveform.
func Align(w Waveform, alignment Side, value AlignedValue) *Aligned {
	return &Aligned{w, alignment, value, hash.MixAll(hash.Seed("aligned"), w.Hash(), uint64(alignment), value.Hash())}
}

// Hash implementation for Waveform interface.
func (p *Aligned) Hash() uint64 { return p.hash }

func (p *Aligned) String() string { return Render(p) }

func (p *Aligned) isWaveform() {}

// ============================================================================
// Helpers
// ============================================================================

// ZeroOf constructs a zero-valued waveform of a given duration.
func ZeroOf(duration scalar.Scalar) *Constant {
	return Const(scalar.Zero, duration)
}

// Scalars returns the scalar expressions held directly by a given waveform
// (i.e. not those held by its children), in a fixed order.  This is used by
// passes which need to visit every scalar in a waveform tree.
func Scalars(w Waveform) []scalar.Scalar {
	switch w := w.(type) {
	case *Constant:
		return []scalar.Scalar{w.Value, w.Duration}
	case *Linear:
		return []scalar.Scalar{w.Start, w.Stop, w.Duration}
	case *Poly:
		return append(append([]scalar.Scalar(nil), w.Coeffs...), w.Duration)
	case *Native:
		return append([]scalar.Scalar{w.Duration}, w.Params...)
	case *Negative, *Add, *Append, *Record:
		return nil
	case *Scale:
		return []scalar.Scalar{w.Factor}
	case *Slice:
		return optionals(w.Interval.Start, w.Interval.Stop)
	case *Sample:
		return []scalar.Scalar{w.Step}
	case *Smooth:
		return []scalar.Scalar{w.Radius}
	case *Aligned:
		return optionals(w.Value.Value)
	default:
		panic(fmt.Sprintf("unknown waveform encountered: %T", w))
	}
}

func optionals(exprs ...scalar.Scalar) []scalar.Scalar {
	var result []scalar.Scalar
	//
	for _, e := range exprs {
		if e != nil {
			result = append(result, e)
		}
	}
	//
	return result
}
