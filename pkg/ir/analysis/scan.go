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
package analysis

import (
	"fmt"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/util/collection/stack"
	"github.com/samber/lo"
)

// Variables summarises the variables used within an IR node.  Each list holds
// names in order of first use, without duplicates.
type Variables struct {
	// Scalars holds the names of unassigned scalar variables.
	Scalars []string
	// Vectors holds the names of unassigned run-time vectors.
	Vectors []string
	// Assigned holds the names of assigned variables and vectors.
	Assigned []string
	// Recorded holds the names of variables introduced by records.
	Recorded []string
}

// Free returns the unassigned scalar variables which are not introduced by any
// record.
func (p *Variables) Free() []string {
	return lo.Without(p.Scalars, p.Recorded...)
}

// Scan determines the variables used within an IR node, which must be a
// scalar, a waveform, a field, a pulse, a sequence or a circuit.
func Scan(node any) *Variables {
	var c collector
	//
	switch n := node.(type) {
	case scalar.Scalar:
		c.scalar(n)
	case waveform.Waveform:
		c.waveform(n)
	case *analog.Field:
		c.field(n)
	case analog.PulseExpr:
		c.pulse(n)
	case analog.SequenceExpr:
		c.sequence(n)
	case *analog.Circuit:
		c.sequence(n.Sequence)
	default:
		panic(fmt.Sprintf("cannot scan %T", node))
	}
	//
	return &Variables{lo.Uniq(c.scalars), lo.Uniq(c.vectors), lo.Uniq(c.assigned), lo.Uniq(c.recorded)}
}

// CheckAssigned checks that an IR node has no unassigned variables (other
// than those introduced by records) and no unassigned vectors.
func CheckAssigned(node any) error {
	vars := Scan(node)
	free := vars.Free()
	//
	if len(free) == 0 && len(vars.Vectors) == 0 {
		return nil
	}
	//
	return &failure.UnboundVariable{Scalars: free, Vectors: vars.Vectors}
}

type collector struct {
	scalars  []string
	vectors  []string
	assigned []string
	recorded []string
}

func (p *collector) scalar(expr scalar.Scalar) {
	scalar.Walk(expr, func(e scalar.Scalar) {
		switch e := e.(type) {
		case *scalar.Variable:
			p.scalars = append(p.scalars, e.Name)
		case *scalar.AssignedVariable:
			p.assigned = append(p.assigned, e.Name)
		}
	})
}

func (p *collector) scalarsOf(exprs ...scalar.Scalar) {
	for _, e := range exprs {
		if e != nil {
			p.scalar(e)
		}
	}
}

func (p *collector) waveform(w waveform.Waveform) {
	waveform.Walk(w, func(node waveform.Waveform) {
		if r, ok := node.(*waveform.Record); ok {
			p.recorded = append(p.recorded, r.Var)
		}
		//
		p.scalarsOf(waveform.Scalars(node)...)
	})
}

func (p *collector) modulation(m analog.SpatialModulation) {
	switch m := m.(type) {
	case *analog.RunTimeVector:
		p.vectors = append(p.vectors, m.Name)
	case *analog.AssignedRunTimeVector:
		p.assigned = append(p.assigned, m.Name)
	case *analog.ScaledLocations:
		for _, l := range m.Locations {
			p.scalar(l.Coeff)
		}
	}
}

func (p *collector) field(f *analog.Field) {
	for _, d := range f.Drives {
		p.modulation(d.Target)
		p.waveform(d.Waveform)
	}
}

func (p *collector) pulse(pulse analog.PulseExpr) {
	worklist := stack.NewStack[analog.PulseExpr]()
	worklist.Push(pulse)
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		switch n := next.(type) {
		case *analog.Pulse:
			for _, name := range n.Names() {
				p.field(n.Fields[name])
			}
		case *analog.SlicePulse:
			p.scalarsOf(n.Interval.Start, n.Interval.Stop)
		}
		//
		worklist.PushReversed(analog.PulseChildren(next))
	}
}

func (p *collector) sequence(seq analog.SequenceExpr) {
	worklist := stack.NewStack[analog.SequenceExpr]()
	worklist.Push(seq)
	//
	for !worklist.IsEmpty() {
		next := worklist.Pop()
		//
		switch n := next.(type) {
		case *analog.Sequence:
			for _, c := range n.Couplings() {
				p.pulse(n.Pulses[c])
			}
		case *analog.SliceSequence:
			p.scalarsOf(n.Interval.Start, n.Interval.Stop)
		}
		//
		worklist.PushReversed(analog.SequenceChildren(next))
	}
}
