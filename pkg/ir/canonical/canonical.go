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
	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
	"github.com/consensys/go-analog/pkg/util/collection/stack"
)

// Canonicalizer rewrites IR nodes into their canonical form.  Each node is
// rewritten bottom-up, such that the rules for a node are applied only once
// its children are canonical.  A canonicalizer remembers the result for every
// (structurally distinct) node it has seen, hence shared or repeated subtrees
// are rewritten once.  Canonicalization is idempotent: rewriting a canonical
// node returns a structurally equal node.
type Canonicalizer struct {
	scalars   *hash.Map[scalarKey, scalar.Scalar]
	waveforms *hash.Map[waveformKey, waveform.Waveform]
}

// New constructs a canonicalizer with an empty cache.
func New() *Canonicalizer {
	return &Canonicalizer{
		hash.NewMap[scalarKey, scalar.Scalar](64),
		hash.NewMap[waveformKey, waveform.Waveform](64),
	}
}

// Scalar canonicalizes a scalar expression using a fresh canonicalizer.
func Scalar(expr scalar.Scalar) (scalar.Scalar, error) {
	return New().Scalar(expr)
}

// Waveform canonicalizes a waveform using a fresh canonicalizer.
func Waveform(w waveform.Waveform) (waveform.Waveform, error) {
	return New().Waveform(w)
}

// Field canonicalizes a field using a fresh canonicalizer.
func Field(f *analog.Field) (*analog.Field, error) {
	return New().Field(f)
}

// Pulse canonicalizes a pulse using a fresh canonicalizer.
func Pulse(pulse analog.PulseExpr) (analog.PulseExpr, error) {
	return New().Pulse(pulse)
}

// Sequence canonicalizes a sequence using a fresh canonicalizer.
func Sequence(seq analog.SequenceExpr) (analog.SequenceExpr, error) {
	return New().Sequence(seq)
}

// Circuit canonicalizes the sequence of a circuit using a fresh
// canonicalizer.
func Circuit(circuit *analog.Circuit) (*analog.Circuit, error) {
	return New().Circuit(circuit)
}

// Scalar canonicalizes a scalar expression.  This can fail with a division by
// zero, or with a malformed slice.
func (p *Canonicalizer) Scalar(expr scalar.Scalar) (scalar.Scalar, error) {
	children := func(e scalar.Scalar) []scalar.Scalar {
		if p.scalars.ContainsKey(scalarKey{e}) {
			return nil
		}
		//
		return scalar.Children(e)
	}
	//
	return stack.Fold(expr, children, func(e scalar.Scalar, args []scalar.Scalar) (scalar.Scalar, error) {
		if r, ok := p.scalars.Get(scalarKey{e}); ok {
			return r, nil
		}
		//
		r, err := rewriteScalar(e, args)
		if err != nil {
			return nil, err
		}
		//
		p.scalars.Insert(scalarKey{e}, r)
		p.scalars.Insert(scalarKey{r}, r)
		//
		return r, nil
	})
}

// Waveform canonicalizes a waveform, including all scalars it contains.
func (p *Canonicalizer) Waveform(w waveform.Waveform) (waveform.Waveform, error) {
	children := func(w waveform.Waveform) []waveform.Waveform {
		if p.waveforms.ContainsKey(waveformKey{w}) {
			return nil
		}
		//
		return waveform.Children(w)
	}
	//
	return stack.Fold(w, children, func(w waveform.Waveform, args []waveform.Waveform) (waveform.Waveform, error) {
		if r, ok := p.waveforms.Get(waveformKey{w}); ok {
			return r, nil
		}
		//
		r, err := p.rewriteWaveform(w, args)
		if err != nil {
			return nil, err
		}
		//
		p.waveforms.Insert(waveformKey{w}, r)
		p.waveforms.Insert(waveformKey{r}, r)
		//
		return r, nil
	})
}

// Pulse canonicalizes a pulse, including all fields it contains.
func (p *Canonicalizer) Pulse(pulse analog.PulseExpr) (analog.PulseExpr, error) {
	return analog.FoldPulse[analog.PulseExpr](pulse, pulseRewriter{p})
}

// Sequence canonicalizes a sequence, including all pulses it contains.
func (p *Canonicalizer) Sequence(seq analog.SequenceExpr) (analog.SequenceExpr, error) {
	return analog.FoldSequence[analog.SequenceExpr](seq, sequenceRewriter{p})
}

// Circuit canonicalizes the sequence of a circuit.
func (p *Canonicalizer) Circuit(circuit *analog.Circuit) (*analog.Circuit, error) {
	seq, err := p.Sequence(circuit.Sequence)
	if err != nil {
		return nil, err
	}
	//
	return circuit.WithSequence(seq), nil
}

// Canonicalize an optional scalar.
func (p *Canonicalizer) optional(expr scalar.Scalar) (scalar.Scalar, error) {
	if expr == nil {
		return nil, nil
	}
	//
	return p.Scalar(expr)
}

// Canonicalize zero or more scalars.
func (p *Canonicalizer) all(exprs ...scalar.Scalar) ([]scalar.Scalar, error) {
	var (
		result = make([]scalar.Scalar, len(exprs))
		err    error
	)
	//
	for i, e := range exprs {
		if result[i], err = p.Scalar(e); err != nil {
			return nil, err
		}
	}
	//
	return result, nil
}

func (p *Canonicalizer) interval(i scalar.Interval) (scalar.Interval, error) {
	start, err := p.optional(i.Start)
	if err != nil {
		return i, err
	}
	//
	stop, err := p.optional(i.Stop)
	//
	return scalar.NewInterval(start, stop), err
}

// Check whether an (already canonical) interval covers the whole of an extent
// [0,duration).
func isIdentity(i scalar.Interval, duration scalar.Scalar) bool {
	if i.Start != nil && !scalar.IsZero(i.Start) {
		return false
	}
	//
	return i.Stop == nil || scalar.Equal(i.Stop, duration)
}

type scalarKey struct {
	scalar.Scalar
}

func (p scalarKey) Equals(other scalarKey) bool {
	return scalar.Equal(p.Scalar, other.Scalar)
}

type waveformKey struct {
	waveform.Waveform
}

func (p waveformKey) Equals(other waveformKey) bool {
	return waveform.Equal(p.Waveform, other.Waveform)
}
