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

	"github.com/consensys/go-analog/pkg/register"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
)

// Circuit pairs a sequence with the register of atoms it drives.
type Circuit struct {
	Register register.Layout
	Sequence SequenceExpr
}

// NewCircuit constructs a new circuit.
func NewCircuit(reg register.Layout, seq SequenceExpr) *Circuit {
	return &Circuit{reg, seq}
}

// WithSequence returns a copy of this circuit with a different sequence.
func (p *Circuit) WithSequence(seq SequenceExpr) *Circuit {
	return &Circuit{p.Register, seq}
}

// Hash returns a structural hash of this circuit.
func (p *Circuit) Hash() uint64 {
	return hash.MixAll(hash.Seed("circuit"), p.Register.Hash(), p.Sequence.Hash())
}

func (p *Circuit) String() string {
	return fmt.Sprintf("(circuit %s %s)", p.Register.String(), p.Sequence.String())
}

// EqualCircuit checks whether two circuits are structurally identical.
func EqualCircuit(lhs *Circuit, rhs *Circuit) bool {
	return lhs.Register.Hash() == rhs.Register.Hash() && lhs.Register.String() == rhs.Register.String() &&
		EqualSequence(lhs.Sequence, rhs.Sequence)
}

// ChannelKey identifies a single channel of a circuit, namely a spatial
// modulation of a given field of a given level coupling.
type ChannelKey struct {
	Coupling LevelCoupling
	Field    FieldName
	Target   SpatialModulation
}

// Equals implementation for hash.Hasher interface.
func (p ChannelKey) Equals(other ChannelKey) bool {
	return p.Coupling == other.Coupling && p.Field == other.Field && EqualModulation(p.Target, other.Target)
}

// Hash implementation for hash.Hasher interface.
func (p ChannelKey) Hash() uint64 {
	return hash.MixAll(hash.Seed("channel"), uint64(p.Coupling), uint64(p.Field), p.Target.Hash())
}

func (p ChannelKey) String() string {
	return fmt.Sprintf("%s.%s[%s]", p.Coupling.String(), p.Field.String(), p.Target.String())
}
