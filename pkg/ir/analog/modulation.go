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
	"slices"
	"strings"

	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
	"github.com/shopspring/decimal"
)

// SpatialModulation determines the per-site coefficient with which a field
// drives each site of a register.  The set of variants is closed.
type SpatialModulation interface {
	// Hash returns a structural hash of this modulation.
	Hash() uint64
	// String returns a human-readable rendering of this modulation.
	String() string
	// Marks the closed set of modulation variants.
	isModulation()
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var (
	_ SpatialModulation = (*UniformModulation)(nil)
	_ SpatialModulation = (*RunTimeVector)(nil)
	_ SpatialModulation = (*AssignedRunTimeVector)(nil)
	_ SpatialModulation = (*ScaledLocations)(nil)
)

// UniformModulation drives every site with weight one.
type UniformModulation struct{}

// Uniform is the (unique) uniform modulation.
var Uniform = &UniformModulation{}

// Hash implementation for SpatialModulation interface.
func (p *UniformModulation) Hash() uint64 { return hash.Seed("uniform") }

func (p *UniformModulation) String() string { return "uniform" }

func (p *UniformModulation) isModulation() {}

// RunTimeVector drives each site with a coefficient taken from a named vector
// whose values are supplied by assignment.
type RunTimeVector struct {
	Name string
}

// Vector constructs a run-time vector modulation.
func Vector(name string) *RunTimeVector {
	return &RunTimeVector{name}
}

// Hash implementation for SpatialModulation interface.
func (p *RunTimeVector) Hash() uint64 { return hash.Mix(hash.Seed("vector"), hash.String(p.Name)) }

func (p *RunTimeVector) String() string { return p.Name }

func (p *RunTimeVector) isModulation() {}

// AssignedRunTimeVector is a run-time vector which has been given values, but
// which still remembers its name.
type AssignedRunTimeVector struct {
	Name   string
	Values []decimal.Decimal
}

// AssignedVector constructs an assigned run-time vector.
func AssignedVector(name string, values []decimal.Decimal) *AssignedRunTimeVector {
	return &AssignedRunTimeVector{name, values}
}

// Hash implementation for SpatialModulation interface.
func (p *AssignedRunTimeVector) Hash() uint64 {
	h := hash.Mix(hash.Seed("assigned_vector"), hash.String(p.Name))
	//
	for _, v := range p.Values {
		h = hash.Mix(h, hash.String(v.String()))
	}
	//
	return h
}

func (p *AssignedRunTimeVector) String() string {
	var values = make([]string, len(p.Values))
	//
	for i, v := range p.Values {
		values[i] = v.String()
	}
	//
	return fmt.Sprintf("%s[%s]", p.Name, strings.Join(values, " "))
}

func (p *AssignedRunTimeVector) isModulation() {}

// Location pairs a site index with a coefficient.
type Location struct {
	Site  uint
	Coeff scalar.Scalar
}

// ScaledLocations drives an explicit set of sites, each with its own
// coefficient.  Sites not listed are not driven.  Locations are held in
// increasing order of site, with each site at most once.
type ScaledLocations struct {
	Locations []Location
	hash      uint64
}

// Scaled constructs a scaled locations modulation.  Locations given for the
// same site more than once have their coefficients summed.
func Scaled(locations ...Location) *ScaledLocations {
	var merged []Location
	//
	for _, l := range locations {
		if i := slices.IndexFunc(merged, func(m Location) bool { return m.Site == l.Site }); i >= 0 {
			merged[i].Coeff = scalar.Sum(merged[i].Coeff, l.Coeff)
		} else {
			merged = append(merged, l)
		}
	}
	//
	slices.SortFunc(merged, func(l, r Location) int { return int(l.Site) - int(r.Site) })
	//
	h := hash.Seed("scaled")
	//
	for _, l := range merged {
		h = hash.MixAll(h, uint64(l.Site), l.Coeff.Hash())
	}
	//
	return &ScaledLocations{merged, h}
}

// Coeff returns the coefficient of a given site, or nil if it is not driven.
func (p *ScaledLocations) Coeff(site uint) scalar.Scalar {
	for _, l := range p.Locations {
		if l.Site == site {
			return l.Coeff
		}
	}
	//
	return nil
}

// Hash implementation for SpatialModulation interface.
func (p *ScaledLocations) Hash() uint64 { return p.hash }

func (p *ScaledLocations) String() string {
	var parts = make([]string, len(p.Locations))
	//
	for i, l := range p.Locations {
		parts[i] = fmt.Sprintf("%d:%s", l.Site, l.Coeff.String())
	}
	//
	return fmt.Sprintf("{%s}", strings.Join(parts, " "))
}

func (p *ScaledLocations) isModulation() {}

// EqualModulation checks whether two spatial modulations are structurally
// identical.
func EqualModulation(lhs SpatialModulation, rhs SpatialModulation) bool {
	if lhs.Hash() != rhs.Hash() {
		return false
	}
	//
	switch l := lhs.(type) {
	case *UniformModulation:
		_, ok := rhs.(*UniformModulation)
		return ok
	case *RunTimeVector:
		r, ok := rhs.(*RunTimeVector)
		return ok && l.Name == r.Name
	case *AssignedRunTimeVector:
		r, ok := rhs.(*AssignedRunTimeVector)
		return ok && l.Name == r.Name && scalar.EqualValues(l.Values, r.Values)
	case *ScaledLocations:
		r, ok := rhs.(*ScaledLocations)
		if !ok || len(l.Locations) != len(r.Locations) {
			return false
		}
		//
		for i, loc := range l.Locations {
			if loc.Site != r.Locations[i].Site || !scalar.Equal(loc.Coeff, r.Locations[i].Coeff) {
				return false
			}
		}
		//
		return true
	default:
		panic(fmt.Sprintf("unknown spatial modulation encountered: %T", lhs))
	}
}

// Coefficients computes the coefficient of every site for a register of a given
// size.  Assigned vectors must match the register size exactly.
func Coefficients(m SpatialModulation, sites uint, bindings scalar.Bindings) ([]decimal.Decimal, error) {
	coeffs := make([]decimal.Decimal, sites)
	//
	switch m := m.(type) {
	case *UniformModulation:
		for i := range coeffs {
			coeffs[i] = decimal.NewFromInt(1)
		}
	case *RunTimeVector:
		return nil, &failure.UnboundVariable{Vectors: []string{m.Name}}
	case *AssignedRunTimeVector:
		if uint(len(m.Values)) != sites {
			return nil, failure.Malformedf(m, "%d values given for register of %d sites", len(m.Values), sites)
		}
		//
		copy(coeffs, m.Values)
	case *ScaledLocations:
		for _, l := range m.Locations {
			if l.Site >= sites {
				return nil, failure.Malformedf(m, "site %d out of bounds for register of %d sites", l.Site, sites)
			}
			//
			v, err := scalar.Evaluate(l.Coeff, bindings)
			if err != nil {
				return nil, err
			}
			//
			coeffs[l.Site] = v
		}
	default:
		panic(fmt.Sprintf("unknown spatial modulation encountered: %T", m))
	}
	//
	return coeffs, nil
}
