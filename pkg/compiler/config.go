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
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/assign"
	"github.com/consensys/go-analog/pkg/ir/codec"
	"github.com/consensys/go-analog/pkg/register"
	"github.com/consensys/go-analog/pkg/util/source"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Decimal is an exact decimal number read from yaml.  Numbers are read from
// their textual form, hence are never rounded through floating point.
type Decimal struct {
	decimal.Decimal
}

// UnmarshalYAML implementation for yaml.Unmarshaler interface.
func (p *Decimal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: expected number", node.Line)
	}
	//
	value, err := decimal.NewFromString(node.Value)
	if err != nil {
		return errors.Errorf("line %d: invalid number %q", node.Line, node.Value)
	}
	//
	p.Decimal = value
	//
	return nil
}

// Value is the value of a parameter, which is either a single number or (for a
// run-time vector) a list of numbers.
type Value struct {
	Scalar *decimal.Decimal
	Vector []decimal.Decimal
}

// UnmarshalYAML implementation for yaml.Unmarshaler interface.
func (p *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var d Decimal
		//
		if err := node.Decode(&d); err != nil {
			return err
		}
		//
		p.Scalar = &d.Decimal
	case yaml.SequenceNode:
		var ds []Decimal
		//
		if err := node.Decode(&ds); err != nil {
			return err
		}
		//
		for _, d := range ds {
			p.Vector = append(p.Vector, d.Decimal)
		}
	default:
		return errors.Errorf("line %d: expected number or list of numbers", node.Line)
	}
	//
	return nil
}

// Params maps parameter names to their values.
type Params map[string]Value

// Bindings converts these parameters into bindings.
func (p Params) Bindings() assign.Bindings {
	bindings := assign.NewBindings()
	//
	for name, value := range p {
		if value.Scalar != nil {
			bindings.Scalars[name] = *value.Scalar
		} else {
			bindings.Vectors[name] = slices.Clone(value.Vector)
		}
	}
	//
	return bindings
}

// Range is an inclusive interval of permitted values.
type Range struct {
	Min Decimal `yaml:"min"`
	Max Decimal `yaml:"max"`
}

// Contains checks whether a given value lies within this range.
func (p *Range) Contains(value decimal.Decimal) bool {
	return value.GreaterThanOrEqual(p.Min.Decimal) && value.LessThanOrEqual(p.Max.Decimal)
}

// Limits bounds the global drives of a single level coupling.
type Limits struct {
	RabiAmplitude *Range `yaml:"rabi_amplitude,omitempty"`
	Detuning      *Range `yaml:"detuning,omitempty"`
	Phase         *Range `yaml:"phase,omitempty"`
}

// Range returns the permitted range for a given field, or nil if the field is
// unconstrained.
func (p *Limits) Range(field analog.FieldName) *Range {
	switch field {
	case analog.Detuning:
		return p.Detuning
	case analog.RabiAmplitude:
		return p.RabiAmplitude
	default:
		return p.Phase
	}
}

// Area is the rectangular region within which atoms can be placed.
type Area struct {
	Width  Decimal `yaml:"width"`
	Height Decimal `yaml:"height"`
}

// Capabilities describes the limits of a target device.
type Capabilities struct {
	// MaxTime is the maximum duration of a sequence.
	MaxTime *Decimal `yaml:"max_time,omitempty"`
	// Rydberg limits the drives of the rydberg coupling.
	Rydberg *Limits `yaml:"rydberg,omitempty"`
	// Hyperfine limits the drives of the hyperfine coupling.
	Hyperfine *Limits `yaml:"hyperfine,omitempty"`
	// Area within which registers can be tiled.
	Area *Area `yaml:"area,omitempty"`
}

// Limits returns the limits for a given level coupling, or nil if it is
// unconstrained.
func (p *Capabilities) Limits(coupling analog.LevelCoupling) *Limits {
	if p == nil {
		return nil
	} else if coupling == analog.Rydberg {
		return p.Rydberg
	}
	//
	return p.Hyperfine
}

// LoadCapabilities reads a capabilities yaml file.
func LoadCapabilities(path string) (*Capabilities, error) {
	var caps Capabilities
	//
	if err := decodeFile(path, &caps); err != nil {
		return nil, err
	}
	//
	return &caps, nil
}

// Job describes a compilation job: a circuit together with its parameters and
// (optionally) the device it targets.
type Job struct {
	// Program is either the path of a file holding an encoded circuit, or the
	// encoded circuit itself.
	Program string `yaml:"program"`
	// StaticParams are bound for every batch.
	StaticParams Params `yaml:"static_params,omitempty"`
	// BatchParams holds one set of parameters per batch.
	BatchParams []Params `yaml:"batch_params,omitempty"`
	// Args lists names supplied when the compiled routine is run.
	Args []string `yaml:"args,omitempty"`
	// Capabilities is the path of a capabilities file (if any).
	Capabilities string `yaml:"capabilities,omitempty"`
	// ClusterSpacing, when given, tiles the register across the capability
	// area with this spacing between copies.
	ClusterSpacing *Decimal `yaml:"cluster_spacing,omitempty"`
	// Directory against which relative paths are resolved.
	dir string
}

// LoadJob reads a job yaml file.  Relative paths within the job are resolved
// against the directory containing it.
func LoadJob(path string) (*Job, error) {
	var job Job
	//
	if err := decodeFile(path, &job); err != nil {
		return nil, err
	} else if job.Program == "" {
		return nil, errors.Errorf("%s: program is required", path)
	}
	//
	job.dir = filepath.Dir(path)
	//
	return &job, nil
}

// LoadCapabilities reads the capabilities referred to by this job, or returns
// nil if there are none.
func (p *Job) LoadCapabilities() (*Capabilities, error) {
	if p.Capabilities == "" {
		return nil, nil
	}
	//
	return LoadCapabilities(p.resolve(p.Capabilities))
}

// Routine decodes the program of this job, and combines it with the job's
// parameters.
func (p *Job) Routine(caps *Capabilities) (*Routine, error) {
	text := []byte(p.Program)
	name := "<program>"
	// An encoded circuit always begins with a list.
	if !strings.HasPrefix(strings.TrimSpace(p.Program), "(") {
		var err error
		//
		name = p.resolve(p.Program)
		//
		if text, err = os.ReadFile(name); err != nil {
			return nil, errors.Wrapf(err, "reading program")
		}
	}
	//
	circuit, err := codec.DecodeAs[*analog.Circuit](source.NewSourceFile(name, text))
	if err != nil {
		return nil, err
	}
	//
	if p.ClusterSpacing != nil {
		if circuit, err = tile(circuit, p.ClusterSpacing.Decimal, caps); err != nil {
			return nil, err
		}
	}
	//
	batch := make([]assign.Bindings, len(p.BatchParams))
	//
	for i, params := range p.BatchParams {
		batch[i] = params.Bindings()
	}
	//
	return NewRoutine(circuit, p.StaticParams.Bindings(), batch, p.Args)
}

func (p *Job) resolve(path string) string {
	if filepath.IsAbs(path) || p.dir == "" {
		return path
	}
	//
	return filepath.Join(p.dir, path)
}

// Tile the register of a circuit across the area of a device.
func tile(circuit *analog.Circuit, spacing decimal.Decimal, caps *Capabilities) (*analog.Circuit, error) {
	base, ok := circuit.Register.(*register.Register)
	//
	if caps == nil || caps.Area == nil {
		return nil, errors.New("tiling a register requires a capability area")
	} else if !ok {
		return nil, errors.New("register is already tiled")
	}
	//
	tiled, err := register.Parallelize(base, spacing, caps.Area.Width.Decimal, caps.Area.Height.Decimal)
	if err != nil {
		return nil, err
	}
	//
	return analog.NewCircuit(tiled, circuit.Sequence), nil
}

// Decode a yaml file, rejecting unknown fields.
func decodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	//
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	//
	if err := decoder.Decode(out); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	//
	return nil
}
