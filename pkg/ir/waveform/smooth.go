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
package waveform

import (
	"math"

	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/shopspring/decimal"
)

// Kernel identifies a smoothing kernel.
type Kernel uint8

// Supported kernels.
const (
	Gaussian Kernel = iota
	Logistic
	Sigmoid
	Triangle
	Uniform
	Parabolic
	Biweight
	Triweight
	Tricube
	Cosine
)

var kernelNames = []string{"gaussian", "logistic", "sigmoid", "triangle", "uniform", "parabolic", "biweight",
	"triweight", "tricube", "cosine"}

func (p Kernel) String() string {
	if int(p) < len(kernelNames) {
		return kernelNames[p]
	}
	//
	return "unknown"
}

// ParseKernel converts a string into a kernel, returning false if this fails.
func ParseKernel(s string) (Kernel, bool) {
	for i, name := range kernelNames {
		if name == s {
			return Kernel(i), true
		}
	}
	//
	return Gaussian, false
}

// Weight returns the weight of this kernel at a given (scaled) distance.
func (p Kernel) Weight(u float64) float64 {
	a := math.Abs(u)
	//
	switch p {
	case Gaussian:
		return math.Exp(-u*u/2) / math.Sqrt(2*math.Pi)
	case Logistic:
		return 1 / (math.Exp(u) + 2 + math.Exp(-u))
	case Sigmoid:
		return 2 / math.Pi / (math.Exp(u) + math.Exp(-u))
	}
	// Remaining kernels have compact support
	if a > 1 {
		return 0
	}
	//
	switch p {
	case Triangle:
		return 1 - a
	case Uniform:
		return 0.5
	case Parabolic:
		return 0.75 * (1 - u*u)
	case Biweight:
		return 15.0 / 16 * math.Pow(1-u*u, 2)
	case Triweight:
		return 35.0 / 32 * math.Pow(1-u*u, 3)
	case Tricube:
		return 70.0 / 81 * math.Pow(1-a*a*a, 3)
	case Cosine:
		return math.Pi / 4 * math.Cos(math.Pi*u/2)
	default:
		return 0
	}
}

// Support returns the (scaled) distance beyond which this kernel's weight is
// zero or negligible.
func (p Kernel) Support() float64 {
	switch p {
	case Gaussian, Logistic, Sigmoid:
		return 4
	default:
		return 1
	}
}

// Number of grid points per radius used when smoothing.
const smoothingResolution = 8

// Smoothing is computed by kernel regression over a regular grid of points
// covering the enclosed waveform.  Since the kernels are transcendental, this
// is the one place where evaluation is approximate.
func (p *Evaluator) smoothAt(w *Smooth, t decimal.Decimal) (decimal.Decimal, error) {
	radius, err := scalar.Evaluate(w.Radius, p.bindings)
	if err != nil {
		return decimal.Zero, err
	} else if !radius.IsPositive() {
		return p.valueAt(w.Waveform, t)
	}
	//
	var (
		duration = p.DurationOf(w.Waveform)
		step     = radius.Div(decimal.NewFromInt(smoothingResolution))
		reach    = radius.Mul(decimal.NewFromFloat(w.Kernel.Support()))
		from     = decimal.Max(decimal.Zero, t.Sub(reach)).Div(step).Floor()
		to       = decimal.Min(duration, t.Add(reach)).Div(step).Ceil()
		r        = radius.InexactFloat64()
		num, den float64
	)
	//
	for j := from; j.LessThanOrEqual(to); j = j.Add(decimal.NewFromInt(1)) {
		x := decimal.Min(duration, j.Mul(step))
		weight := w.Kernel.Weight(t.Sub(x).InexactFloat64() / r)
		//
		if weight == 0 {
			continue
		}
		//
		y, err := p.valueAt(w.Waveform, x)
		if err != nil {
			return decimal.Zero, err
		}
		//
		num += weight * y.InexactFloat64()
		den += weight
	}
	//
	if den == 0 {
		return p.valueAt(w.Waveform, t)
	}
	//
	return decimal.NewFromFloat(num / den), nil
}
