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
package register

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-analog/pkg/util/collection/hash"
	"github.com/shopspring/decimal"
)

// Position identifies the location of an atom site, in micrometres.
type Position struct {
	X decimal.Decimal
	Y decimal.Decimal
}

// At constructs a position from its coordinates.
func At(x decimal.Decimal, y decimal.Decimal) Position {
	return Position{x, y}
}

// Shift returns this position translated by a given offset.
func (p Position) Shift(offset Position) Position {
	return Position{p.X.Add(offset.X), p.Y.Add(offset.Y)}
}

func (p Position) String() string {
	return fmt.Sprintf("(%s,%s)", p.X.String(), p.Y.String())
}

// Site is a position which is either filled with an atom, or left vacant.
type Site struct {
	Position
	Filled bool
}

// Layout describes an arrangement of atom sites.
type Layout interface {
	// Len returns the number of sites in this layout.
	Len() uint
	// Sites returns every site of this layout, in order.
	Sites() []Site
	// Hash returns a structural hash of this layout.
	Hash() uint64
	// String returns a human-readable rendering of this layout.
	String() string
}

// Register is an ordered list of atom sites, some of which may be vacant.
type Register struct {
	positions []Position
	vacancies *bitset.BitSet
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ Layout = (*Register)(nil)

// New constructs a register where every site is filled.
func New(positions ...Position) *Register {
	return &Register{positions, bitset.New(uint(len(positions)))}
}

// Chain constructs a one-dimensional register of n sites with a given spacing.
func Chain(n uint, spacing decimal.Decimal) *Register {
	positions := make([]Position, n)
	//
	for i := range n {
		positions[i] = At(spacing.Mul(decimal.NewFromInt(int64(i))), decimal.Zero)
	}
	//
	return New(positions...)
}

// Square constructs an n x n square lattice with a given spacing, in row-major
// order.
func Square(n uint, spacing decimal.Decimal) *Register {
	positions := make([]Position, 0, n*n)
	//
	for j := range n {
		for i := range n {
			x := spacing.Mul(decimal.NewFromInt(int64(i)))
			y := spacing.Mul(decimal.NewFromInt(int64(j)))
			positions = append(positions, At(x, y))
		}
	}
	//
	return New(positions...)
}

// Vacate returns a copy of this register where the given sites are vacant.
func (p *Register) Vacate(indices ...uint) *Register {
	vacancies := p.vacancies.Clone()
	//
	for _, i := range indices {
		if i >= uint(len(p.positions)) {
			panic(fmt.Sprintf("site %d out of bounds", i))
		}
		//
		vacancies.Set(i)
	}
	//
	return &Register{p.positions, vacancies}
}

// Len returns the number of sites in this register.
func (p *Register) Len() uint {
	return uint(len(p.positions))
}

// Position returns the position of a given site.
func (p *Register) Position(i uint) Position {
	return p.positions[i]
}

// Filled checks whether a given site holds an atom.
func (p *Register) Filled(i uint) bool {
	return !p.vacancies.Test(i)
}

// NumFilled returns the number of filled sites.
func (p *Register) NumFilled() uint {
	return p.Len() - p.vacancies.Count()
}

// Sites returns every site of this register, in order.
func (p *Register) Sites() []Site {
	sites := make([]Site, len(p.positions))
	//
	for i, pos := range p.positions {
		sites[i] = Site{pos, p.Filled(uint(i))}
	}
	//
	return sites
}

// Bounds returns the lower-left and upper-right corners of the smallest box
// enclosing every site.
func (p *Register) Bounds() (Position, Position) {
	if len(p.positions) == 0 {
		return Position{}, Position{}
	}
	//
	lo, hi := p.positions[0], p.positions[0]
	//
	for _, pos := range p.positions[1:] {
		lo = Position{decimal.Min(lo.X, pos.X), decimal.Min(lo.Y, pos.Y)}
		hi = Position{decimal.Max(hi.X, pos.X), decimal.Max(hi.Y, pos.Y)}
	}
	//
	return lo, hi
}

// Hash implementation for Layout interface.
func (p *Register) Hash() uint64 {
	h := hash.Seed("register")
	//
	for i, pos := range p.positions {
		h = hash.MixAll(h, hash.String(pos.X.String()), hash.String(pos.Y.String()))
		//
		if !p.Filled(uint(i)) {
			h = hash.Mix(h, 1)
		}
	}
	//
	return h
}

// Equals checks whether two registers have the same sites, in the same order.
func (p *Register) Equals(other *Register) bool {
	if len(p.positions) != len(other.positions) || !p.vacancies.Equal(other.vacancies) {
		return false
	}
	//
	for i, pos := range p.positions {
		if !pos.X.Equal(other.positions[i].X) || !pos.Y.Equal(other.positions[i].Y) {
			return false
		}
	}
	//
	return true
}

func (p *Register) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, pos := range p.positions {
		if i != 0 {
			builder.WriteString(",")
		}
		//
		builder.WriteString(pos.String())
		//
		if !p.Filled(uint(i)) {
			builder.WriteString("_")
		}
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}
