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
	"context"
	"runtime"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/analysis"
	"github.com/consensys/go-analog/pkg/ir/assign"
	"github.com/consensys/go-analog/pkg/ir/canonical"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/consensys/go-analog/pkg/ir/padding"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/piecewise"
	"github.com/consensys/go-analog/pkg/register"
	"github.com/consensys/go-analog/pkg/util"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Channel is a single lowered channel of a task.
type Channel struct {
	Key analog.ChannelKey
	// Coefficients gives the weight of this channel on every site of the
	// register.
	Coefficients []decimal.Decimal
	// Series is piecewise-constant for the rabi phase, and piecewise-linear
	// otherwise.
	Series piecewise.Series
}

// Task is the result of compiling one batch entry of a routine.
type Task struct {
	// Batch index from which this task was compiled.
	Batch int
	// Bindings under which this task was compiled, including recorded values.
	Bindings assign.Bindings
	// Register sites driven by this task.
	Register []register.Site
	// Decoder relating sites of a tiled register to sites of its base register.
	// This is empty unless the register was tiled.
	Decoder []register.Mapping
	// Duration of the whole task.
	Duration decimal.Decimal
	// Channels in order of coupling, field and then target.
	Channels []Channel
}

// Target returns the series kind to which a given field is lowered.
func Target(field analog.FieldName) string {
	if field == analog.RabiPhase {
		return piecewise.ConstantTarget
	}
	//
	return piecewise.LinearTarget
}

// Compile every batch entry of a routine under the given run-time arguments.
// Batches are compiled concurrently, and the first failure (if any) is
// returned.  Capabilities are optional and, when given, bound the duration and
// drive values of every task.
func Compile(ctx context.Context, routine *Routine, args []decimal.Decimal, caps *Capabilities) ([]*Task, error) {
	stats := util.NewPerfStats()
	defer stats.Log("compilation")
	//
	tasks := make([]*Task, routine.Batches())
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	//
	for i := range tasks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			//
			task, err := compileBatch(routine, i, args, caps)
			if err != nil {
				return errors.Wrapf(err, "batch %d", i)
			}
			//
			tasks[i] = task
			//
			return nil
		})
	}
	//
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	//
	return tasks, nil
}

func compileBatch(routine *Routine, batch int, args []decimal.Decimal, caps *Capabilities) (*Task, error) {
	logger := log.WithField("batch", batch)
	//
	bindings, err := routine.Bindings(batch, args)
	if err != nil {
		return nil, err
	}
	// Thread recorded values through the circuit.
	if bindings, err = assign.Scan(routine.Circuit, bindings); err != nil {
		return nil, err
	}
	//
	circuit, err := assign.Circuit(routine.Circuit, bindings)
	if err != nil {
		return nil, err
	} else if err = analysis.CheckAssigned(circuit); err != nil {
		return nil, err
	} else if circuit, err = canonical.Circuit(circuit); err != nil {
		return nil, err
	}
	//
	seq, err := padding.PadAll(circuit.Sequence, bindings.Scalars)
	if err != nil {
		return nil, err
	} else if seq, err = canonical.Sequence(seq); err != nil {
		return nil, err
	}
	//
	flat := analog.Flatten(seq)
	//
	if caps != nil && caps.MaxTime != nil {
		if err = padding.CheckDuration(flat, caps.MaxTime.Decimal, bindings.Scalars); err != nil {
			return nil, err
		}
	}
	//
	duration, err := scalar.Evaluate(analog.SequenceDuration(flat), bindings.Scalars)
	if err != nil {
		return nil, err
	}
	//
	task := &Task{Batch: batch, Bindings: bindings, Register: circuit.Register.Sites(), Duration: duration}
	//
	if tiled, ok := circuit.Register.(*register.ParallelRegister); ok {
		task.Decoder = tiled.Decoder()
	}
	//
	for _, coupling := range flat.Couplings() {
		pulse := analog.FlattenPulse(flat.Pulses[coupling])
		//
		for _, name := range pulse.Names() {
			for _, drive := range pulse.Fields[name].Drives {
				key := analog.ChannelKey{Coupling: coupling, Field: name, Target: drive.Target}
				//
				channel, err := lower(key, drive.Waveform, circuit.Register, bindings.Scalars)
				if err != nil {
					return nil, errors.Wrapf(err, "channel %s", key.String())
				} else if err = checkBounds(channel, caps.Limits(coupling)); err != nil {
					return nil, err
				}
				//
				logger.WithFields(log.Fields{
					"coupling": coupling.String(),
					"field":    name.String(),
					"target":   drive.Target.String(),
				}).Debugf("lowered to %s", Target(name))
				//
				task.Channels = append(task.Channels, channel)
			}
		}
	}
	//
	logger.Debugf("compiled %d channels over %s", len(task.Channels), duration.String())
	//
	return task, nil
}

// Lower the waveform of a single channel.
func lower(key analog.ChannelKey, w waveform.Waveform, layout register.Layout,
	bindings scalar.Bindings) (Channel, error) {
	var (
		series piecewise.Series
		err    error
	)
	//
	coeffs, err := coefficients(key.Target, layout, bindings)
	if err != nil {
		return Channel{}, err
	}
	//
	if Target(key.Field) == piecewise.ConstantTarget {
		if err = piecewise.ValidateConstant(w, bindings); err == nil {
			series, err = piecewise.LowerConstant(w, bindings)
		}
	} else if err = piecewise.ValidateLinear(w, bindings); err == nil {
		series, err = piecewise.LowerLinear(w, bindings)
	}
	//
	return Channel{key, coeffs, series}, err
}

// Determine the weight of a modulation on every site of a layout.  The sites of
// a tiled register take the weight of their counterpart in the base register.
func coefficients(m analog.SpatialModulation, layout register.Layout,
	bindings scalar.Bindings) ([]decimal.Decimal, error) {
	//
	tiled, ok := layout.(*register.ParallelRegister)
	if !ok {
		return analog.Coefficients(m, layout.Len(), bindings)
	}
	//
	local, err := analog.Coefficients(m, tiled.Base.Len(), bindings)
	if err != nil {
		return nil, err
	}
	//
	coeffs := make([]decimal.Decimal, tiled.Len())
	//
	for _, mapping := range tiled.Decoder() {
		coeffs[mapping.Global] = local[mapping.Local]
	}
	//
	return coeffs, nil
}

// Check the global drive of a channel lies within the limits of the device.
// Local drives are not checked, since their contribution depends upon the
// hardware calibration of each site.
func checkBounds(channel Channel, limits *Limits) error {
	if _, global := channel.Key.Target.(*analog.UniformModulation); limits == nil || !global {
		return nil
	}
	//
	bounds := limits.Range(channel.Key.Field)
	if bounds == nil {
		return nil
	}
	//
	times, values := channel.Series.Breakpoints()
	//
	for i, v := range values {
		if !bounds.Contains(v) {
			return &failure.BoundsViolation{Channel: channel.Key.String(), Time: times[i], Value: v,
				Min: bounds.Min.Decimal, Max: bounds.Max.Decimal}
		}
	}
	//
	return nil
}
