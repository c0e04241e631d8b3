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
package compiler

import (
	"slices"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/analysis"
	"github.com/consensys/go-analog/pkg/ir/assign"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Routine is a circuit which is ready to be compiled, together with the
// parameters bound for every batch and the order in which the remaining
// run-time arguments are supplied.
type Routine struct {
	// Circuit being compiled.
	Circuit *analog.Circuit
	// Static bindings shared by every batch.
	Static assign.Bindings
	// Batch bindings, one entry per task.  An empty batch compiles a single
	// task under the static bindings alone.
	Batch []assign.Bindings
	// Args names the scalar variables supplied at run time, in order.
	Args []string
}

// NewRoutine constructs a routine and validates it.
func NewRoutine(circuit *analog.Circuit, static assign.Bindings, batch []assign.Bindings,
	args []string) (*Routine, error) {
	//
	routine := &Routine{circuit, static, batch, args}
	//
	if err := routine.Validate(); err != nil {
		return nil, err
	}
	//
	return routine, nil
}

// Validate checks that the flatten order of this routine is well-formed.
// Specifically, argument names cannot be repeated, cannot refer to run-time
// vectors and cannot be bound already by any static or batch parameter.
// Likewise, no batch can rebind a static parameter.
func (p *Routine) Validate() error {
	vectors := analysis.Scan(p.Circuit).Vectors
	//
	for i, name := range p.Args {
		if slices.Contains(p.Args[:i], name) {
			return errors.Errorf("argument %q given more than once", name)
		} else if slices.Contains(vectors, name) || p.isVector(name) {
			return errors.Errorf("argument %q is a vector", name)
		} else if p.isBound(name) {
			return errors.Errorf("argument %q is already bound", name)
		}
	}
	//
	for i, batch := range p.Batch {
		if _, err := p.Static.Merge(batch); err != nil {
			return errors.Wrapf(err, "batch %d", i)
		}
	}
	//
	return nil
}

// Bindings returns the complete bindings for a given batch entry, under the
// given run-time arguments.
func (p *Routine) Bindings(batch int, args []decimal.Decimal) (assign.Bindings, error) {
	if len(args) != len(p.Args) {
		return assign.Bindings{}, errors.Errorf("expected %d arguments, found %d", len(p.Args), len(args))
	}
	//
	bindings := p.Static
	//
	if batch < len(p.Batch) {
		var err error
		//
		if bindings, err = bindings.Merge(p.Batch[batch]); err != nil {
			return bindings, err
		}
	} else {
		bindings = bindings.Clone()
	}
	//
	for i, name := range p.Args {
		if err := bindings.Bind(name, args[i]); err != nil {
			return bindings, err
		}
	}
	//
	return bindings, nil
}

// Batches returns the number of tasks compiled from this routine.
func (p *Routine) Batches() int {
	return max(1, len(p.Batch))
}

func (p *Routine) isBound(name string) bool {
	if p.Static.Has(name) {
		return true
	}
	//
	for _, b := range p.Batch {
		if b.Has(name) {
			return true
		}
	}
	//
	return false
}

func (p *Routine) isVector(name string) bool {
	if _, ok := p.Static.Vectors[name]; ok {
		return true
	}
	//
	for _, b := range p.Batch {
		if _, ok := b.Vectors[name]; ok {
			return true
		}
	}
	//
	return false
}
