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
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
)

// FieldName identifies one of the physical channels of a pulse.
type FieldName uint8

const (
	// Detuning channel.
	Detuning FieldName = iota
	// RabiAmplitude channel.
	RabiAmplitude
	// RabiPhase channel.
	RabiPhase
)

// FieldNames lists every field name, in order.
var FieldNames = []FieldName{Detuning, RabiAmplitude, RabiPhase}

func (p FieldName) String() string {
	switch p {
	case Detuning:
		return "detuning"
	case RabiAmplitude:
		return "rabi.amplitude"
	default:
		return "rabi.phase"
	}
}

// ParseFieldName converts a string into a field name, returning false if this
// fails.
func ParseFieldName(s string) (FieldName, bool) {
	for _, f := range FieldNames {
		if f.String() == s {
			return f, true
		}
	}
	//
	return Detuning, false
}

// LevelCoupling identifies a transition between two atomic levels.
type LevelCoupling uint8

const (
	// Rydberg couples the ground state with the Rydberg state.
	Rydberg LevelCoupling = iota
	// Hyperfine couples the two hyperfine ground states.
	Hyperfine
)

// LevelCouplings lists every level coupling, in order.
var LevelCouplings = []LevelCoupling{Rydberg, Hyperfine}

func (p LevelCoupling) String() string {
	if p == Rydberg {
		return "rydberg"
	}
	//
	return "hyperfine"
}

// ParseLevelCoupling converts a string into a level coupling, returning false
// if this fails.
func ParseLevelCoupling(s string) (LevelCoupling, bool) {
	switch s {
	case "rydberg":
		return Rydberg, true
	case "hyperfine":
		return Hyperfine, true
	default:
		return Rydberg, false
	}
}

// Drive pairs a spatial modulation with the waveform driving it.
type Drive struct {
	Target   SpatialModulation
	Waveform waveform.Waveform
}

// Field maps spatial modulations to waveforms.  No modulation occurs more than
// once, and the order of drives is irrelevant.
type Field struct {
	Drives []Drive
	hash   uint64
}

// NewField constructs a field from zero or more drives, where waveforms given
// for the same modulation are summed.
func NewField(drives ...Drive) *Field {
	var merged []Drive
	//
	for _, d := range drives {
		if i := indexOf(merged, d.Target); i >= 0 {
			merged[i].Waveform = waveform.Plus(merged[i].Waveform, d.Waveform)
		} else {
			merged = append(merged, d)
		}
	}
	//
	hashes := make([]uint64, len(merged))
	//
	for i, d := range merged {
		hashes[i] = hash.Mix(d.Target.Hash(), d.Waveform.Hash())
	}
	//
	return &Field{merged, hash.Unordered(hash.Seed("field"), hashes...)}
}

// Lookup returns the waveform driving a given modulation (if any).
func (p *Field) Lookup(target SpatialModulation) (waveform.Waveform, bool) {
	if i := indexOf(p.Drives, target); i >= 0 {
		return p.Drives[i].Waveform, true
	}
	//
	return nil, false
}

// Targets returns the modulations driven by this field.
func (p *Field) Targets() []SpatialModulation {
	targets := make([]SpatialModulation, len(p.Drives))
	//
	for i, d := range p.Drives {
		targets[i] = d.Target
	}
	//
	return targets
}

// Duration returns the duration of this field, which is the largest duration of
// any drive (or zero if there are none).
func (p *Field) Duration() scalar.Scalar {
	return maximum(p.Drives, func(d Drive) scalar.Scalar { return waveform.Duration(d.Waveform) })
}

// Hash returns a structural hash of this field.
func (p *Field) Hash() uint64 {
	return p.hash
}

func (p *Field) String() string {
	return renderField(p).String(false)
}

// EqualField checks whether two fields have equal drives, irrespective of
// their order.
func EqualField(lhs *Field, rhs *Field) bool {
	if lhs == rhs {
		return true
	} else if lhs.hash != rhs.hash || len(lhs.Drives) != len(rhs.Drives) {
		return false
	}
	//
	for _, d := range lhs.Drives {
		if w, ok := rhs.Lookup(d.Target); !ok || !waveform.Equal(d.Waveform, w) {
			return false
		}
	}
	//
	return true
}

func indexOf(drives []Drive, target SpatialModulation) int {
	for i, d := range drives {
		if EqualModulation(d.Target, target) {
			return i
		}
	}
	//
	return -1
}

func maximum[T any](items []T, fn func(T) scalar.Scalar) scalar.Scalar {
	switch len(items) {
	case 0:
		return scalar.Zero
	case 1:
		return fn(items[0])
	}
	//
	exprs := make([]scalar.Scalar, len(items))
	//
	for i, item := range items {
		exprs[i] = fn(item)
	}
	//
	return scalar.Maximum(exprs...)
}
