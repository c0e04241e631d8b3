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

	"github.com/consensys/go-analog/pkg/util/collection/hash"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Mapping identifies how one site of a parallel register corresponds to a site
// of its base register.
type Mapping struct {
	// Cluster index of the copy holding this site.
	Cluster uint
	// Global index of the site in the parallel register.
	Global uint
	// Local index of the site in the base register.
	Local uint
}

// ParallelRegister tiles copies of a base register across a rectangular area,
// such that the same program can be run on every copy at once.
type ParallelRegister struct {
	// Base register being tiled.
	Base *Register
	// Spacing between adjacent copies.
	Spacing decimal.Decimal
	// Offsets of each copy relative to the lower-left corner of the area.
	offsets []Position
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ Layout = (*ParallelRegister)(nil)

// Parallelize tiles as many copies of a base register as fit within an area of
// a given width and height, where adjacent copies are separated by a given
// spacing.  Copies are ordered row by row, starting from the lower-left
// corner.  This fails if not even one copy fits.
func Parallelize(base *Register, spacing decimal.Decimal, width decimal.Decimal,
	height decimal.Decimal) (*ParallelRegister, error) {
	//
	if !spacing.IsPositive() {
		return nil, errors.Errorf("cluster spacing %s must be positive", spacing.String())
	} else if base.Len() == 0 {
		return nil, errors.New("cannot parallelize empty register")
	}
	//
	var (
		lo, hi  = base.Bounds()
		extentX = hi.X.Sub(lo.X)
		extentY = hi.Y.Sub(lo.Y)
		nx      = copies(extentX, spacing, width)
		ny      = copies(extentY, spacing, height)
		offsets []Position
	)
	//
	if nx == 0 || ny == 0 {
		return nil, errors.Errorf("register of extent %s x %s does not fit within %s x %s", extentX.String(),
			extentY.String(), width.String(), height.String())
	}
	//
	for j := range ny {
		for i := range nx {
			x := extentX.Add(spacing).Mul(decimal.NewFromInt(int64(i))).Sub(lo.X)
			y := extentY.Add(spacing).Mul(decimal.NewFromInt(int64(j))).Sub(lo.Y)
			offsets = append(offsets, At(x, y))
		}
	}
	//
	return &ParallelRegister{base, spacing, offsets}, nil
}

// Determine how many copies of a given extent fit within a given length, when
// separated by a given spacing.
func copies(extent decimal.Decimal, spacing decimal.Decimal, length decimal.Decimal) uint {
	if extent.GreaterThan(length) {
		return 0
	}
	// 1 + floor((length - extent) / (extent + spacing))
	n := length.Sub(extent).Div(extent.Add(spacing)).Floor()
	//
	return uint(n.IntPart()) + 1
}

// Clusters returns the number of copies of the base register.
func (p *ParallelRegister) Clusters() uint {
	return uint(len(p.offsets))
}

// Len returns the total number of sites across all copies.
func (p *ParallelRegister) Len() uint {
	return p.Clusters() * p.Base.Len()
}

// Sites returns the sites of every copy, cluster by cluster.
func (p *ParallelRegister) Sites() []Site {
	var (
		base  = p.Base.Sites()
		sites = make([]Site, 0, p.Len())
	)
	//
	for _, offset := range p.offsets {
		for _, s := range base {
			sites = append(sites, Site{s.Position.Shift(offset), s.Filled})
		}
	}
	//
	return sites
}

// Decoder returns the mapping of every site back to its cluster and base site.
func (p *ParallelRegister) Decoder() []Mapping {
	var (
		n        = p.Base.Len()
		mappings = make([]Mapping, 0, p.Len())
	)
	//
	for c := range p.Clusters() {
		for l := range n {
			mappings = append(mappings, Mapping{c, c*n + l, l})
		}
	}
	//
	return mappings
}

// Hash implementation for Layout interface.
func (p *ParallelRegister) Hash() uint64 {
	return hash.MixAll(hash.Seed("parallel"), p.Base.Hash(), hash.String(p.Spacing.String()),
		uint64(len(p.offsets)))
}

func (p *ParallelRegister) String() string {
	return fmt.Sprintf("%d x %s", p.Clusters(), p.Base.String())
}
