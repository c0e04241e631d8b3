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
package assign

import (
	"maps"
	"slices"
	"strings"

	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/shopspring/decimal"
)

// Bindings map variable names to values.  Scalar variables are bound to single
// values, whilst run-time vectors are bound to one value per site.
type Bindings struct {
	Scalars scalar.Bindings
	Vectors map[string][]decimal.Decimal
}

// NewBindings constructs an empty set of bindings.
func NewBindings() Bindings {
	return Bindings{make(scalar.Bindings), make(map[string][]decimal.Decimal)}
}

// Clone returns a copy of these bindings which can be safely extended.
func (p Bindings) Clone() Bindings {
	vectors := make(map[string][]decimal.Decimal)
	//
	for name, values := range p.Vectors {
		vectors[name] = slices.Clone(values)
	}
	//
	return Bindings{p.Scalars.Clone(), vectors}
}

// Has checks whether a given name is bound (either as scalar or vector).
func (p Bindings) Has(name string) bool {
	_, isScalar := p.Scalars[name]
	_, isVector := p.Vectors[name]
	//
	return isScalar || isVector
}

// Len returns the number of bound names.
func (p Bindings) Len() int {
	return len(p.Scalars) + len(p.Vectors)
}

// Names returns all bound names, in sorted order.
func (p Bindings) Names() []string {
	names := slices.Collect(maps.Keys(p.Scalars))
	names = slices.AppendSeq(names, maps.Keys(p.Vectors))
	//
	slices.Sort(names)
	//
	return names
}

// Bind binds a scalar variable, failing if the name is already bound.
func (p Bindings) Bind(name string, value decimal.Decimal) error {
	if existing, ok := p.Scalars[name]; ok {
		return &failure.ReassignmentConflict{Name: name, Existing: existing.String(), Attempted: value.String()}
	} else if existing, ok := p.Vectors[name]; ok {
		return &failure.ReassignmentConflict{Name: name, Existing: renderVector(existing), Attempted: value.String()}
	}
	//
	p.Scalars[name] = value
	//
	return nil
}

// Merge returns the union of two sets of bindings, which fails if any name is
// bound in both.
func (p Bindings) Merge(other Bindings) (Bindings, error) {
	merged := p.Clone()
	//
	for _, name := range slices.Sorted(maps.Keys(other.Scalars)) {
		if err := merged.Bind(name, other.Scalars[name]); err != nil {
			return merged, err
		}
	}
	//
	for _, name := range slices.Sorted(maps.Keys(other.Vectors)) {
		if merged.Has(name) {
			return merged, &failure.ReassignmentConflict{Name: name, Existing: merged.render(name),
				Attempted: renderVector(other.Vectors[name])}
		}
		//
		merged.Vectors[name] = slices.Clone(other.Vectors[name])
	}
	//
	return merged, nil
}

func (p Bindings) render(name string) string {
	if v, ok := p.Scalars[name]; ok {
		return v.String()
	}
	//
	return renderVector(p.Vectors[name])
}

func renderVector(values []decimal.Decimal) string {
	parts := make([]string, len(values))
	//
	for i, v := range values {
		parts[i] = v.String()
	}
	//
	return "[" + strings.Join(parts, " ") + "]"
}
