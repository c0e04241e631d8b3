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

// SequenceExpr represents a sequence, or a composition of sequences.  The set
// of variants is closed.
type SequenceExpr interface {
	// Hash returns a structural hash of this sequence.
	Hash() uint64
	// String returns a human-readable rendering of this sequence.
	String() string
	// Marks the closed set of sequence variants.
	isSequence()
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var (
	_ SequenceExpr = (*Sequence)(nil)
	_ SequenceExpr = (*AppendSequence)(nil)
	_ SequenceExpr = (*SliceSequence)(nil)
	_ SequenceExpr = (*NamedSequence)(nil)
)

// Sequence maps level couplings to pulses.
type Sequence struct {
	Pulses map[LevelCoupling]PulseExpr
	hash   uint64
}

// NewSequence constructs a sequence from a given mapping of pulses.
func NewSequence(pulses map[LevelCoupling]PulseExpr) *Sequence {
	if pulses == nil {
		pulses = make(map[LevelCoupling]PulseExpr)
	}
	//
	h := hash.Seed("sequence")
	//
	for _, c := range slices.Sorted(maps.Keys(pulses)) {
		h = hash.MixAll(h, uint64(c), pulses[c].Hash())
	}
	//
	return &Sequence{pulses, h}
}

// Couplings returns the level couplings used in this sequence, in order.
func (p *Sequence) Couplings() []LevelCoupling {
	return slices.Sorted(maps.Keys(p.Pulses))
}

// Pulse returns the pulse for a given level coupling (if it exists).
func (p *Sequence) Pulse(coupling LevelCoupling) (PulseExpr, bool) {
	pulse, ok := p.Pulses[coupling]
	return pulse, ok
}

// Hash implementation for SequenceExpr interface.
func (p *Sequence) Hash() uint64 { return p.hash }

func (p *Sequence) String() string { return RenderSequence(p) }

func (p *Sequence) isSequence() {}

// AppendSequence concatenates sequences in time, coupling by coupling.
type AppendSequence struct {
	Sequences []SequenceExpr
	hash      uint64
}

// ConcatSequences constructs the concatenation of one or more sequences.
func ConcatSequences(sequences ...SequenceExpr) *AppendSequence {
	h := hash.Seed("append_sequence")
	//
	for _, s := range sequences {
		h = hash.Mix(h, s.Hash())
	}
	//
	return &AppendSequence{sequences, h}
}

// Hash implementation for SequenceExpr interface.
func (p *AppendSequence) Hash() uint64 { return p.hash }

func (p *AppendSequence) String() string { return RenderSequence(p) }

func (p *AppendSequence) isSequence() {}

// SliceSequence restricts every pulse of a sequence to a window of time.
type SliceSequence struct {
	Sequence SequenceExpr
	Interval scalar.Interval
	hash     uint64
}

// SliceSequenceOf constructs a slice of a sequence.
func SliceSequenceOf(seq SequenceExpr, interval scalar.Interval) *SliceSequence {
	return &SliceSequence{seq, interval, hash.MixAll(hash.Seed("slice_sequence"), seq.Hash(), interval.Hash())}
}

// Hash implementation for SequenceExpr interface.
func (p *SliceSequence) Hash() uint64 { return p.hash }

func (p *SliceSequence) String() string { return RenderSequence(p) }

func (p *SliceSequence) isSequence() {}

// NamedSequence attaches a label to a sequence.
type NamedSequence struct {
	Name     string
	Sequence SequenceExpr
	hash     uint64
}

// NameSequence constructs a named sequence.
func NameSequence(name string, seq SequenceExpr) *NamedSequence {
	return &NamedSequence{name, seq, hash.MixAll(hash.Seed("named_sequence"), hash.String(name), seq.Hash())}
}

// Hash implementation for SequenceExpr interface.
func (p *NamedSequence) Hash() uint64 { return p.hash }

func (p *NamedSequence) String() string { return RenderSequence(p) }

func (p *NamedSequence) isSequence() {}

// ============================================================================
// Traversal
// ============================================================================

// SequenceVisitor describes a bottom-up computation over sequences, with one
// method per sequence variant.
type SequenceVisitor[T any] interface {
	Sequence(*Sequence) (T, error)
	AppendSequence(node *AppendSequence, parts []T) (T, error)
	SliceSequence(node *SliceSequence, inner T) (T, error)
	NamedSequence(node *NamedSequence, inner T) (T, error)
}

// FoldSequence applies a visitor bottom-up over a given sequence, without
// recursion.
func FoldSequence[T any](seq SequenceExpr, visitor SequenceVisitor[T]) (T, error) {
	return stack.Fold(seq, SequenceChildren, func(node SequenceExpr, args []T) (T, error) {
		switch s := node.(type) {
		case *Sequence:
			return visitor.Sequence(s)
		case *AppendSequence:
			return visitor.AppendSequence(s, args)
		case *SliceSequence:
			return visitor.SliceSequence(s, args[0])
		case *NamedSequence:
			return visitor.NamedSequence(s, args[0])
		default:
			panic(fmt.Sprintf("unknown sequence encountered: %T", node))
		}
	})
}

// SequenceChildren returns the immediate child sequences of a given sequence.
func SequenceChildren(seq SequenceExpr) []SequenceExpr {
	switch s := seq.(type) {
	case *Sequence:
		return nil
	case *AppendSequence:
		return s.Sequences
	case *SliceSequence:
		return []SequenceExpr{s.Sequence}
	case *NamedSequence:
		return []SequenceExpr{s.Sequence}
	default:
		panic(fmt.Sprintf("unknown sequence encountered: %T", seq))
	}
}

// SequenceDuration returns a scalar expression for the duration of a sequence,
// which is that of its longest pulse.
func SequenceDuration(seq SequenceExpr) scalar.Scalar {
	result, _ := FoldSequence[scalar.Scalar](seq, sequenceDuration{})
	return result
}

type sequenceDuration struct{}

func (sequenceDuration) Sequence(s *Sequence) (scalar.Scalar, error) {
	return maximum(s.Couplings(), func(c LevelCoupling) scalar.Scalar { return PulseDuration(s.Pulses[c]) }), nil
}

func (sequenceDuration) AppendSequence(_ *AppendSequence, parts []scalar.Scalar) (scalar.Scalar, error) {
	return sum(parts), nil
}

func (sequenceDuration) SliceSequence(s *SliceSequence, inner scalar.Scalar) (scalar.Scalar, error) {
	return scalar.SliceOf(inner, s.Interval), nil
}

func (sequenceDuration) NamedSequence(_ *NamedSequence, inner scalar.Scalar) (scalar.Scalar, error) {
	return inner, nil
}

// EqualSequence checks whether two sequences are structurally identical.
func EqualSequence(lhs SequenceExpr, rhs SequenceExpr) bool {
	type pair struct{ lhs, rhs SequenceExpr }
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
		case *Sequence:
			r, ok := next.rhs.(*Sequence)
			if !ok || len(l.Pulses) != len(r.Pulses) {
				return false
			}
			//
			for c, p := range l.Pulses {
				if q, ok := r.Pulses[c]; !ok || !EqualPulse(p, q) {
					return false
				}
			}
		case *AppendSequence:
			r, ok := next.rhs.(*AppendSequence)
			if !ok || len(l.Sequences) != len(r.Sequences) {
				return false
			}
			//
			for i := range l.Sequences {
				worklist.Push(pair{l.Sequences[i], r.Sequences[i]})
			}
		case *SliceSequence:
			r, ok := next.rhs.(*SliceSequence)
			if !ok || !l.Interval.Equals(r.Interval) {
				return false
			}
			//
			worklist.Push(pair{l.Sequence, r.Sequence})
		case *NamedSequence:
			r, ok := next.rhs.(*NamedSequence)
			if !ok || l.Name != r.Name {
				return false
			}
			//
			worklist.Push(pair{l.Sequence, r.Sequence})
		default:
			panic(fmt.Sprintf("unknown sequence encountered: %T", next.lhs))
		}
	}
	//
	return true
}
