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
	"fmt"
	"strings"

	"github.com/consensys/go-analog/pkg/util/collection/hash"
	"github.com/shopspring/decimal"
)

// Scalar represents a symbolic arithmetic expression over decimal literals and
// named variables.  Scalars are immutable values compared structurally (see
// Equal), and must be constructed using the constructors of this package so
// that their structural hash is computed.  The set of scalar variants is
// closed: Literal, Variable, AssignedVariable, Negative, Add, Mul, Div, Min,
// Max and Slice.
type Scalar interface {
	// Hash returns a structural hash of this expression, such that equal
	// expressions have equal hashes.
	Hash() uint64
	// String returns a human-readable rendering of this expression.
	String() string
	// Marks the closed set of scalar variants.
	isScalar()
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var (
	_ Scalar = (*Literal)(nil)
	_ Scalar = (*Variable)(nil)
	_ Scalar = (*AssignedVariable)(nil)
	_ Scalar = (*Negative)(nil)
	_ Scalar = (*Add)(nil)
	_ Scalar = (*Mul)(nil)
	_ Scalar = (*Div)(nil)
	_ Scalar = (*Min)(nil)
	_ Scalar = (*Max)(nil)
	_ Scalar = (*Slice)(nil)
)

// Zero is the literal 0.
var Zero = Lit(decimal.Zero)

// One is the literal 1.
var One = Lit(decimal.NewFromInt(1))

// ============================================================================
// Leaves
// ============================================================================

// Literal is a constant decimal value.
type Literal struct {
	Value decimal.Decimal
	hash  uint64
}

// Lit constructs a literal from a given decimal value.
func Lit(value decimal.Decimal) *Literal {
	return &Literal{value, hash.Mix(hash.Seed("literal"), hash.String(value.String()))}
}

// LitInt constructs a literal from a given integer.
func LitInt(value int64) *Literal {
	return Lit(decimal.NewFromInt(value))
}

// LitString constructs a literal by parsing a decimal string (e.g. "0.25" or
// "1e-3").
func LitString(value string) (*Literal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, err
	}
	//
	return Lit(d), nil
}

// Hash implementation for Scalar interface.
func (p *Literal) Hash() uint64 { return p.hash }

func (p *Literal) String() string { return Render(p) }

func (p *Literal) isScalar() {}

// Variable is a named parameter whose value is supplied by assignment.
type Variable struct {
	Name string
	hash uint64
}

// Var constructs a (free) variable with a given name.
func Var(name string) *Variable {
	return &Variable{name, hash.Mix(hash.Seed("variable"), hash.String(name))}
}

// Hash implementation for Scalar interface.
func (p *Variable) Hash() uint64 { return p.hash }

func (p *Variable) String() string { return Render(p) }

func (p *Variable) isScalar() {}

// AssignedVariable is a variable which has been resolved to a given value, but
// which still remembers its name for diagnostic purposes.  Assigned variables
// cannot be assigned again.
type AssignedVariable struct {
	Name  string
	Value decimal.Decimal
	hash  uint64
}

// Assigned constructs an assigned variable.
func Assigned(name string, value decimal.Decimal) *AssignedVariable {
	h := hash.MixAll(hash.Seed("assigned_variable"), hash.String(name), hash.String(value.String()))
	return &AssignedVariable{name, value, h}
}

// Hash implementation for Scalar interface.
func (p *AssignedVariable) Hash() uint64 { return p.hash }

func (p *AssignedVariable) String() string { return Render(p) }

func (p *AssignedVariable) isScalar() {}

// ============================================================================
// Arithmetic
// ============================================================================

// Negative represents the negation of an expression.
type Negative struct {
	Expr Scalar
	hash uint64
}

// Neg constructs the negation of a given expression.
func Neg(expr Scalar) *Negative {
	return &Negative{expr, hash.Mix(hash.Seed("negative"), expr.Hash())}
}

// Hash implementation for Scalar interface.
func (p *Negative) Hash() uint64 { return p.hash }

func (p *Negative) String() string { return Render(p) }

func (p *Negative) isScalar() {}

// Add represents the sum of two expressions.
type Add struct {
	Lhs  Scalar
	Rhs  Scalar
	hash uint64
}

// Sum constructs the sum of two expressions.
func Sum(lhs Scalar, rhs Scalar) *Add {
	return &Add{lhs, rhs, hash.MixAll(hash.Seed("add"), lhs.Hash(), rhs.Hash())}
}

// Sub constructs the difference of two expressions, which is represented as the
// sum of the first and the negation of the second.
func Sub(lhs Scalar, rhs Scalar) *Add {
	return Sum(lhs, Neg(rhs))
}

// Hash implementation for Scalar interface.
func (p *Add) Hash() uint64 { return p.hash }

func (p *Add) String() string { return Render(p) }

func (p *Add) isScalar() {}

// Mul represents the product of two expressions.
type Mul struct {
	Lhs  Scalar
	Rhs  Scalar
	hash uint64
}

// Product constructs the product of two expressions.
func Product(lhs Scalar, rhs Scalar) *Mul {
	return &Mul{lhs, rhs, hash.MixAll(hash.Seed("mul"), lhs.Hash(), rhs.Hash())}
}

// Hash implementation for Scalar interface.
func (p *Mul) Hash() uint64 { return p.hash }

func (p *Mul) String() string { return Render(p) }

func (p *Mul) isScalar() {}

// Div represents the quotient of two expressions.
type Div struct {
	Lhs  Scalar
	Rhs  Scalar
	hash uint64
}

// Quotient constructs the division of one expression by another.
func Quotient(lhs Scalar, rhs Scalar) *Div {
	return &Div{lhs, rhs, hash.MixAll(hash.Seed("div"), lhs.Hash(), rhs.Hash())}
}

// Hash implementation for Scalar interface.
func (p *Div) Hash() uint64 { return p.hash }

func (p *Div) String() string { return Render(p) }

func (p *Div) isScalar() {}

// Min represents the minimum of a non-empty set of expressions.  The operands
// have set semantics: order is irrelevant and duplicates are removed.
type Min struct {
	Exprs []Scalar
	hash  uint64
}

// Minimum constructs the minimum of one or more expressions.
func Minimum(exprs ...Scalar) *Min {
	exprs = uniqueOf(exprs)
	//
	return &Min{exprs, hash.Unordered(hash.Seed("min"), hashesOf(exprs)...)}
}

// Hash implementation for Scalar interface.
func (p *Min) Hash() uint64 { return p.hash }

func (p *Min) String() string { return Render(p) }

func (p *Min) isScalar() {}

// Max represents the maximum of a non-empty set of expressions.  The operands
// have set semantics: order is irrelevant and duplicates are removed.
type Max struct {
	Exprs []Scalar
	hash  uint64
}

// Maximum constructs the maximum of one or more expressions.
func Maximum(exprs ...Scalar) *Max {
	exprs = uniqueOf(exprs)
	//
	return &Max{exprs, hash.Unordered(hash.Seed("max"), hashesOf(exprs)...)}
}

// Hash implementation for Scalar interface.
func (p *Max) Hash() uint64 { return p.hash }

func (p *Max) String() string { return Render(p) }

func (p *Max) isScalar() {}

// ============================================================================
// Slice
// ============================================================================

// Interval represents an optional start and an optional stop.  A missing start
// means "from zero", whilst a missing stop means "to the natural extent".
type Interval struct {
	Start Scalar
	Stop  Scalar
}

// NewInterval constructs an interval, where either bound may be nil.
func NewInterval(start Scalar, stop Scalar) Interval {
	return Interval{start, stop}
}

// IsFull checks whether neither bound is given.
func (p Interval) IsFull() bool {
	return p.Start == nil && p.Stop == nil
}

// Hash computes a structural hash for this interval.
func (p Interval) Hash() uint64 {
	h := hash.Seed("interval")
	//
	for _, b := range []Scalar{p.Start, p.Stop} {
		if b == nil {
			h = hash.Mix(h, 0)
		} else {
			h = hash.Mix(h, b.Hash())
		}
	}
	//
	return h
}

// Equals checks whether two intervals are structurally identical.
func (p Interval) Equals(other Interval) bool {
	return equalOptional(p.Start, other.Start) && equalOptional(p.Stop, other.Stop)
}

func (p Interval) String() string {
	return fmt.Sprintf("[%s:%s]", optionalString(p.Start), optionalString(p.Stop))
}

// Slice represents the duration of an interval cut out of an enclosing extent.
// Specifically, it evaluates to (stop - start), where start defaults to zero
// and stop defaults to the value of the enclosed expression (i.e. the natural
// extent).  This arises as the duration of a sliced waveform.
type Slice struct {
	Expr     Scalar
	Interval Interval
	hash     uint64
}

// SliceOf constructs a slice of a given extent.
func SliceOf(expr Scalar, interval Interval) *Slice {
	return &Slice{expr, interval, hash.MixAll(hash.Seed("slice"), expr.Hash(), interval.Hash())}
}

// Hash implementation for Scalar interface.
func (p *Slice) Hash() uint64 { return p.hash }

func (p *Slice) String() string { return Render(p) }

func (p *Slice) isScalar() {}

// ============================================================================
// Helpers
// ============================================================================

// ValueOf returns the value of an expression which is trivially constant (i.e.
// a literal or an assigned variable).
func ValueOf(expr Scalar) (decimal.Decimal, bool) {
	switch e := expr.(type) {
	case *Literal:
		return e.Value, true
	case *AssignedVariable:
		return e.Value, true
	default:
		return decimal.Zero, false
	}
}

// IsZero checks whether a given expression is trivially equal to zero.
func IsZero(expr Scalar) bool {
	v, ok := ValueOf(expr)
	return ok && v.IsZero()
}

// IsOne checks whether a given expression is trivially equal to one.
func IsOne(expr Scalar) bool {
	v, ok := ValueOf(expr)
	return ok && v.Equal(decimal.NewFromInt(1))
}

// Names returns the names of all variables (free or assigned) used within a
// given expression, in order of first occurrence.
func Names(expr Scalar) []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	//
	Walk(expr, func(e Scalar) {
		var name string
		//
		switch e := e.(type) {
		case *Variable:
			name = e.Name
		case *AssignedVariable:
			name = e.Name
		default:
			return
		}
		//
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	//
	return names
}

// Join renders a sequence of scalars separated by a given string.
func Join(exprs []Scalar, sep string) string {
	var parts = make([]string, len(exprs))
	//
	for i, e := range exprs {
		parts[i] = e.String()
	}
	//
	return strings.Join(parts, sep)
}

func uniqueOf(exprs []Scalar) []Scalar {
	var unique []Scalar
	//
	for _, e := range exprs {
		if !contains(unique, e) {
			unique = append(unique, e)
		}
	}
	//
	return unique
}

func contains(exprs []Scalar, expr Scalar) bool {
	for _, e := range exprs {
		if Equal(e, expr) {
			return true
		}
	}
	//
	return false
}

func hashesOf(exprs []Scalar) []uint64 {
	hashes := make([]uint64, len(exprs))
	//
	for i, e := range exprs {
		hashes[i] = e.Hash()
	}
	//
	return hashes
}

func equalOptional(lhs Scalar, rhs Scalar) bool {
	if lhs == nil || rhs == nil {
		return lhs == nil && rhs == nil
	}
	//
	return Equal(lhs, rhs)
}

func optionalString(expr Scalar) string {
	if expr == nil {
		return ""
	}
	//
	return expr.String()
}
