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
package analog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
	"github.com/consensys/go-analog/pkg/util/collection/stack"
)

// PulseExpr represents a pulse, or a composition of pulses.  The set of
// variants is closed.
type PulseExpr interface {
	// Hash returns a structural hash of this pulse.
	Hash() uint64
	// String returns a human-readable rendering of this pulse.
	String() string
	// Marks the closed set of pulse variants.
	isPulse()
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var (
	_ PulseExpr = (*Pulse)(nil)
	_ PulseExpr = (*AppendPulse)(nil)
	_ PulseExpr = (*SlicePulse)(nil)
	_ PulseExpr = (*NamedPulse)(nil)
)

// Pulse maps field names to fields.
type Pulse struct {
	Fields map[FieldName]*Field
	hash   uint64
}

// NewPulse constructs a pulse from a given mapping of fields.
func NewPulse(fields map[FieldName]*Field) *Pulse {
	if fields == nil {
		fields = make(map[FieldName]*Field)
	}
	//
	h := hash.Seed("pulse")
	//
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		h = hash.MixAll(h, uint64(name), fields[name].Hash())
	}
	//
	return &Pulse{fields, h}
}

// Names returns the names of all fields in this pulse, in order.
func (p *Pulse) Names() []FieldName {
	return slices.Sorted(maps.Keys(p.Fields))
}

// Field returns the field of a given name (if it exists).
func (p *Pulse) Field(name FieldName) (*Field, bool) {
	f, ok := p.Fields[name]
	return f, ok
}

// Hash implementation for PulseExpr interface.
func (p *Pulse) Hash() uint64 { return p.hash }

func (p *Pulse) String() string { return RenderPulse(p) }

func (p *Pulse) isPulse() {}

// AppendPulse concatenates pulses in time, channel by channel.
type AppendPulse struct {
	Pulses []PulseExpr
	hash   uint64
}

// ConcatPulses constructs the concatenation of one or more pulses.
func ConcatPulses(pulses ...PulseExpr) *AppendPulse {
	h := hash.Seed("append_pulse")
	//
	for _, p := range pulses {
		h = hash.Mix(h, p.Hash())
	}
	//
	return &AppendPulse{pulses, h}
}

// Hash implementation for PulseExpr interface.
func (p *AppendPulse) Hash() uint64 { return p.hash }

func (p *AppendPulse) String() string { return RenderPulse(p) }

func (p *AppendPulse) isPulse() {}

// SlicePulse restricts every channel of a pulse to a window of time.
type SlicePulse struct {
	Pulse    PulseExpr
	Interval scalar.Interval
	hash     uint64
}

// SlicePulseOf constructs a slice of a pulse.
func SlicePulseOf(pulse PulseExpr, interval scalar.Interval) *SlicePulse {
	return &SlicePulse{pulse, interval, hash.MixAll(hash.Seed("slice_pulse"), pulse.Hash(), interval.Hash())}
}

// Hash implementation for PulseExpr interface.
func (p *SlicePulse) Hash() uint64 { return p.hash }

func (p *SlicePulse) String() string { return RenderPulse(p) }

func (p *SlicePulse) isPulse() {}

// NamedPulse attaches a label to a pulse.
type NamedPulse struct {
	Name  string
	Pulse PulseExpr
	hash  uint64
}

// NamePulse constructs a named pulse.
func NamePulse(name string, pulse PulseExpr) *NamedPulse {
	return &NamedPulse{name, pulse, hash.MixAll(hash.Seed("named_pulse"), hash.String(name), pulse.Hash())}
}

// Hash implementation for PulseExpr interface.
func (p *NamedPulse) Hash() uint64 { return p.hash }

func (p *NamedPulse) String() string { return RenderPulse(p) }

func (p *NamedPulse) isPulse() {}

// ============================================================================
// Traversal
// ============================================================================

// PulseVisitor describes a bottom-up computation over pulses, with one method
// per pulse variant.
type PulseVisitor[T any] interface {
	Pulse(*Pulse) (T, error)
	AppendPulse(node *AppendPulse, parts []T) (T, error)
	SlicePulse(node *SlicePulse, inner T) (T, error)
	NamedPulse(node *NamedPulse, inner T) (T, error)
}

// FoldPulse applies a visitor bottom-up over a given pulse, without recursion.
func FoldPulse[T any](pulse PulseExpr, visitor PulseVisitor[T]) (T, error) {
	return stack.Fold(pulse, PulseChildren, func(node PulseExpr, args []T) (T, error) {
		switch p := node.(type) {
		case *Pulse:
			return visitor.Pulse(p)
		case *AppendPulse:
			return visitor.AppendPulse(p, args)
		case *SlicePulse:
			return visitor.SlicePulse(p, args[0])
		case *NamedPulse:
			return visitor.NamedPulse(p, args[0])
		default:
			panic(fmt.Sprintf("unknown pulse encountered: %T", node))
		}
	})
}

// PulseChildren returns the immediate child pulses of a given pulse.
func PulseChildren(pulse PulseExpr) []PulseExpr {
	switch p := pulse.(type) {
	case *Pulse:
		return nil
	case *AppendPulse:
		return p.Pulses
	case *SlicePulse:
		return []PulseExpr{p.Pulse}
	case *NamedPulse:
		return []PulseExpr{p.Pulse}
	default:
		panic(fmt.Sprintf("unknown pulse encountered: %T", pulse))
	}
}

// PulseDuration returns a scalar expression for the duration of a pulse.  The
// duration of a pulse is that of its longest field.
func PulseDuration(pulse PulseExpr) scalar.Scalar {
	result, _ := FoldPulse[scalar.Scalar](pulse, pulseDuration{})
	return result
}

type pulseDuration struct{}

func (pulseDuration) Pulse(p *Pulse) (scalar.Scalar, error) {
	return maximum(p.Names(), func(n FieldName) scalar.Scalar { return p.Fields[n].Duration() }), nil
}

func (pulseDuration) AppendPulse(_ *AppendPulse, parts []scalar.Scalar) (scalar.Scalar, error) {
	return sum(parts), nil
}

func (pulseDuration) SlicePulse(p *SlicePulse, inner scalar.Scalar) (scalar.Scalar, error) {
	return scalar.SliceOf(inner, p.Interval), nil
}

func (pulseDuration) NamedPulse(_ *NamedPulse, inner scalar.Scalar) (scalar.Scalar, error) {
	return inner, nil
}

// EqualPulse checks whether two pulses are structurally identical.
func EqualPulse(lhs PulseExpr, rhs PulseExpr) bool {
	type pair struct{ lhs, rhs PulseExpr }
	//
	worklist := stack.NewStack[pair]()
	worklist.Push(pair{lhs, rhs})
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		if next.lhs == next.rhs {
			continue
		} else if next.lhs.Hash() != next.rhs.Hash() {
			return false
		}
		//
		switch l := next.lhs.(type) {
		case *Pulse:
			r, ok := next.rhs.(*Pulse)
			if !ok || len(l.Fields) != len(r.Fields) {
				return false
			}
			//
			for name, f := range l.Fields {
				if g, ok := r.Fields[name]; !ok || !EqualField(f, g) {
					return false
				}
			}
		case *AppendPulse:
			r, ok := next.rhs.(*AppendPulse)
			if !ok || len(l.Pulses) != len(r.Pulses) {
				return false
			}
			//
			for i := range l.Pulses {
				worklist.Push(pair{l.Pulses[i], r.Pulses[i]})
			}
		case *SlicePulse:
			r, ok := next.rhs.(*SlicePulse)
			if !ok || !l.Interval.Equals(r.Interval) {
				return false
			}
			//
			worklist.Push(pair{l.Pulse, r.Pulse})
		case *NamedPulse:
			r, ok := next.rhs.(*NamedPulse)
			if !ok || l.Name != r.Name {
				return false
			}
			//
			worklist.Push(pair{l.Pulse, r.Pulse})
		default:
			panic(fmt.Sprintf("unknown pulse encountered: %T", next.lhs))
		}
	}
	//
	return true
}

func sum(exprs []scalar.Scalar) scalar.Scalar {
	if len(exprs) == 0 {
		return scalar.Zero
	}
	//
	total := exprs[0]
	//
	for _, e := range exprs[1:] {
		total = scalar.Sum(total, e)
	}
	//
	return total
}
