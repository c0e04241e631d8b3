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
package codec

import (
	"fmt"
	"strconv"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/scalar"
	"github.com/consensys/go-analog/pkg/ir/waveform"
	"github.com/consensys/go-analog/pkg/piecewise"
	"github.com/consensys/go-analog/pkg/register"
	"github.com/consensys/go-analog/pkg/util/collection/stack"
	"github.com/consensys/go-analog/pkg/util/source"
	"github.com/consensys/go-analog/pkg/util/source/sexp"
	"github.com/shopspring/decimal"
)

// Symbol marking an absent slice bound.
const absent = "_"

// Decode parses the tagged form of an IR node, as produced by Encode.  Errors
// are reported as syntax errors positioned within the given source file.
func Decode(srcfile *source.File) (any, error) {
	term, srcmap, serr := sexp.Parse(srcfile)
	if serr != nil {
		return nil, serr
	} else if term == nil {
		return nil, srcfile.SyntaxError(source.NewSpan(0, 0), "empty input")
	}
	//
	d := decoder{srcmap}
	//
	return stack.Fold(term, children, d.decode)
}

// DecodeAs parses the tagged form of an IR node of a given kind.
func DecodeAs[T any](srcfile *source.File) (T, error) {
	var empty T
	//
	node, err := Decode(srcfile)
	if err != nil {
		return empty, err
	} else if n, ok := node.(T); ok {
		return n, nil
	}
	//
	return empty, srcfile.SyntaxError(source.NewSpan(0, len(srcfile.Contents())),
		fmt.Sprintf("expected %T, found %T", empty, node))
}

// DecodeString parses the tagged form of an IR node of a given kind from a
// string.
func DecodeString[T any](text string) (T, error) {
	return DecodeAs[T](source.NewSourceFile("<string>", []byte(text)))
}

// A symbol, which only acquires meaning from its enclosing list.
type token string

// A list whose head is a field name or level coupling.
type entry struct {
	name  string
	value any
}

// The decoded elements of an array.
type array []any

type rule func(d *decoder, list *sexp.List, args []any) (any, error)

var rules map[string]rule

func init() {
	rules = map[string]rule{
		// Scalars
		"literal":           decodeLiteral,
		"variable":          decodeVariable,
		"assigned_variable": decodeAssignedVariable,
		"negative":          decodeNegative,
		"add":               decodeBinary(func(l, r scalar.Scalar) scalar.Scalar { return scalar.Sum(l, r) }),
		"mul":               decodeBinary(func(l, r scalar.Scalar) scalar.Scalar { return scalar.Product(l, r) }),
		"div":               decodeBinary(func(l, r scalar.Scalar) scalar.Scalar { return scalar.Quotient(l, r) }),
		"min":               decodeNary(func(es ...scalar.Scalar) scalar.Scalar { return scalar.Minimum(es...) }),
		"max":               decodeNary(func(es ...scalar.Scalar) scalar.Scalar { return scalar.Maximum(es...) }),
		"slice":             decodeScalarSlice,
		// Waveforms
		"constant_waveform": decodeConstant,
		"linear_waveform":   decodeLinear,
		"poly_waveform":     decodePoly,
		"negative_waveform": decodeNegativeWaveform,
		"add_waveform":      decodeAddWaveform,
		"scale_waveform":    decodeScaleWaveform,
		"slice_waveform":    decodeSliceWaveform,
		"append_waveform":   decodeAppendWaveform,
		"record_waveform":   decodeRecordWaveform,
		"sample_waveform":   decodeSampleWaveform,
		"smooth_waveform":   decodeSmoothWaveform,
		"aligned_waveform":  decodeAlignedWaveform,
		// Modulations & fields
		"uniform":                  decodeUniform,
		"run_time_vector":          decodeRunTimeVector,
		"assigned_run_time_vector": decodeAssignedRunTimeVector,
		"scaled_locations":         decodeScaledLocations,
		"location":                 decodeLocation,
		"drive":                    decodeDrive,
		"field":                    decodeField,
		// Pulses & sequences
		"pulse":           decodePulse,
		"append_pulse":    decodeAppendPulse,
		"slice_pulse":     decodeSlicePulse,
		"named_pulse":     decodeNamedPulse,
		"sequence":        decodeSequence,
		"append_sequence": decodeAppendSequence,
		"slice_sequence":  decodeSliceSequence,
		"named_sequence":  decodeNamedSequence,
		"circuit":         decodeCircuit,
		// Registers & series
		"register":           decodeRegister,
		"site":               decodeSite(true),
		"vacant":             decodeSite(false),
		"piecewise_linear":   decodeLinearSeries,
		"piecewise_constant": decodeConstantSeries,
	}
	// Entries of pulses and sequences
	for _, name := range analog.FieldNames {
		rules[name.String()] = decodeEntry
	}
	//
	for _, coupling := range analog.LevelCouplings {
		rules[coupling.String()] = decodeEntry
	}
}

type decoder struct {
	srcmap *source.Map[sexp.SExp]
}

func children(term sexp.SExp) []sexp.SExp {
	switch t := term.(type) {
	case *sexp.List:
		return t.Elements
	case *sexp.Array:
		return t.Elements
	default:
		return nil
	}
}

func (p *decoder) decode(term sexp.SExp, args []any) (any, error) {
	switch t := term.(type) {
	case *sexp.Symbol:
		return token(t.Value), nil
	case *sexp.Array:
		return array(args), nil
	case *sexp.List:
		if t.Len() == 0 {
			return nil, p.error(t, "empty list")
		}
		//
		head, ok := args[0].(token)
		if !ok {
			return nil, p.error(t, "expected tag")
		}
		//
		fn, ok := rules[string(head)]
		if !ok {
			return nil, p.error(t, fmt.Sprintf("unknown tag %s", head))
		}
		//
		return fn(p, t, args[1:])
	default:
		panic(fmt.Sprintf("unknown s-expression encountered: %T", term))
	}
}

func (p *decoder) error(term sexp.SExp, msg string) error {
	return p.srcmap.SyntaxError(term, msg)
}

// ============================================================================
// Scalars
// ============================================================================

func decodeLiteral(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 1); err != nil {
		return nil, err
	}
	//
	value, err := d.number(list, args, 0)
	//
	return scalar.Lit(value), err
}

func decodeVariable(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 1); err != nil {
		return nil, err
	}
	//
	name, err := arg[token](d, list, args, 0, "name")
	//
	return scalar.Var(string(name)), err
}

func decodeAssignedVariable(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	name, err := arg[token](d, list, args, 0, "name")
	if err != nil {
		return nil, err
	}
	//
	value, err := d.number(list, args, 1)
	//
	return scalar.Assigned(string(name), value), err
}

func decodeNegative(d *decoder, list *sexp.List, args []any) (any, error) {
	exprs, err := d.scalars(list, args, 1)
	if err != nil {
		return nil, err
	}
	//
	return scalar.Neg(exprs[0]), nil
}

func decodeBinary(fn func(scalar.Scalar, scalar.Scalar) scalar.Scalar) rule {
	return func(d *decoder, list *sexp.List, args []any) (any, error) {
		exprs, err := d.scalars(list, args, 2)
		if err != nil {
			return nil, err
		}
		//
		return fn(exprs[0], exprs[1]), nil
	}
}

func decodeNary(fn func(...scalar.Scalar) scalar.Scalar) rule {
	return func(d *decoder, list *sexp.List, args []any) (any, error) {
		if len(args) == 0 {
			return nil, d.error(list, "expected at least one operand")
		}
		//
		exprs, err := d.scalars(list, args, len(args))
		if err != nil {
			return nil, err
		}
		//
		return fn(exprs...), nil
	}
}

func decodeScalarSlice(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 3); err != nil {
		return nil, err
	}
	//
	expr, err := arg[scalar.Scalar](d, list, args, 0, "scalar")
	if err != nil {
		return nil, err
	}
	//
	interval, err := d.interval(list, args, 1)
	//
	return scalar.SliceOf(expr, interval), err
}

// ============================================================================
// Waveforms
// ============================================================================

func decodeConstant(d *decoder, list *sexp.List, args []any) (any, error) {
	exprs, err := d.scalars(list, args, 2)
	if err != nil {
		return nil, err
	}
	//
	return waveform.Const(exprs[0], exprs[1]), nil
}

func decodeLinear(d *decoder, list *sexp.List, args []any) (any, error) {
	exprs, err := d.scalars(list, args, 3)
	if err != nil {
		return nil, err
	}
	//
	return waveform.Ramp(exprs[0], exprs[1], exprs[2]), nil
}

func decodePoly(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	items, err := arg[array](d, list, args, 0, "coefficients")
	if err != nil {
		return nil, err
	}
	//
	coeffs := make([]scalar.Scalar, len(items))
	//
	for i, item := range items {
		c, ok := item.(scalar.Scalar)
		if !ok {
			return nil, d.error(list.Get(1).AsArray().Get(i), "expected coefficient")
		}
		//
		coeffs[i] = c
	}
	//
	duration, err := arg[scalar.Scalar](d, list, args, 1, "duration")
	//
	return waveform.Polynomial(coeffs, duration), err
}

func decodeNegativeWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	ws, err := d.waveforms(list, args, 1)
	if err != nil {
		return nil, err
	}
	//
	return waveform.Negate(ws[0]), nil
}

func decodeAddWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	ws, err := d.waveforms(list, args, 2)
	if err != nil {
		return nil, err
	}
	//
	return waveform.Plus(ws[0], ws[1]), nil
}

func decodeScaleWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	factor, err := arg[scalar.Scalar](d, list, args, 0, "scalar")
	if err != nil {
		return nil, err
	}
	//
	w, err := arg[waveform.Waveform](d, list, args, 1, "waveform")
	//
	return waveform.Scaled(factor, w), err
}

func decodeSliceWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 3); err != nil {
		return nil, err
	}
	//
	w, err := arg[waveform.Waveform](d, list, args, 0, "waveform")
	if err != nil {
		return nil, err
	}
	//
	interval, err := d.interval(list, args, 1)
	//
	return waveform.SliceOf(w, interval), err
}

func decodeAppendWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	if len(args) == 0 {
		return nil, d.error(list, "expected at least one waveform")
	}
	//
	ws, err := d.waveforms(list, args, len(args))
	if err != nil {
		return nil, err
	}
	//
	return waveform.Concat(ws...), nil
}

func decodeRecordWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 3); err != nil {
		return nil, err
	}
	//
	name, err := arg[token](d, list, args, 0, "name")
	if err != nil {
		return nil, err
	}
	//
	w, err := arg[waveform.Waveform](d, list, args, 1, "waveform")
	if err != nil {
		return nil, err
	}
	//
	side, err := enum(d, list, args, 2, "side", waveform.ParseSide)
	//
	return waveform.RecordOf(string(name), w, side), err
}

func decodeSampleWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 3); err != nil {
		return nil, err
	}
	//
	w, err := arg[waveform.Waveform](d, list, args, 0, "waveform")
	if err != nil {
		return nil, err
	}
	//
	step, err := arg[scalar.Scalar](d, list, args, 1, "scalar")
	if err != nil {
		return nil, err
	}
	//
	interpolation, err := enum(d, list, args, 2, "interpolation", waveform.ParseInterpolation)
	//
	return waveform.SampleOf(w, step, interpolation), err
}

func decodeSmoothWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 3); err != nil {
		return nil, err
	}
	//
	w, err := arg[waveform.Waveform](d, list, args, 0, "waveform")
	if err != nil {
		return nil, err
	}
	//
	radius, err := arg[scalar.Scalar](d, list, args, 1, "scalar")
	if err != nil {
		return nil, err
	}
	//
	kernel, err := enum(d, list, args, 2, "kernel", waveform.ParseKernel)
	//
	return waveform.SmoothOf(w, radius, kernel), err
}

func decodeAlignedWaveform(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 3); err != nil {
		return nil, err
	}
	//
	w, err := arg[waveform.Waveform](d, list, args, 0, "waveform")
	if err != nil {
		return nil, err
	}
	//
	alignment, err := enum(d, list, args, 1, "side", waveform.ParseSide)
	if err != nil {
		return nil, err
	}
	//
	var value waveform.AlignedValue
	//
	if _, ok := args[2].(token); ok {
		side, err := enum(d, list, args, 2, "side", waveform.ParseSide)
		if err != nil {
			return nil, err
		}
		//
		value = waveform.BoundaryValue(side)
	} else {
		expr, err := arg[scalar.Scalar](d, list, args, 2, "scalar")
		if err != nil {
			return nil, err
		}
		//
		value = waveform.ExplicitValue(expr)
	}
	//
	return waveform.Align(w, alignment, value), nil
}

// ============================================================================
// Modulations & Fields
// ============================================================================

func decodeUniform(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 0); err != nil {
		return nil, err
	}
	//
	return analog.Uniform, nil
}

func decodeRunTimeVector(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 1); err != nil {
		return nil, err
	}
	//
	name, err := arg[token](d, list, args, 0, "name")
	//
	return analog.Vector(string(name)), err
}

func decodeAssignedRunTimeVector(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	name, err := arg[token](d, list, args, 0, "name")
	if err != nil {
		return nil, err
	}
	//
	values, err := d.numbers(list, args, 1)
	//
	return analog.AssignedVector(string(name), values), err
}

func decodeScaledLocations(d *decoder, list *sexp.List, args []any) (any, error) {
	locations := make([]analog.Location, len(args))
	//
	for i := range args {
		var err error
		//
		if locations[i], err = arg[analog.Location](d, list, args, i, "location"); err != nil {
			return nil, err
		}
	}
	//
	return analog.Scaled(locations...), nil
}

func decodeLocation(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	site, err := arg[token](d, list, args, 0, "site")
	if err != nil {
		return nil, err
	}
	//
	index, perr := strconv.ParseUint(string(site), 10, 32)
	if perr != nil {
		return nil, d.error(list.Get(1), "invalid site index")
	}
	//
	coeff, err := arg[scalar.Scalar](d, list, args, 1, "scalar")
	//
	return analog.Location{Site: uint(index), Coeff: coeff}, err
}

func decodeDrive(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	target, err := arg[analog.SpatialModulation](d, list, args, 0, "modulation")
	if err != nil {
		return nil, err
	}
	//
	w, err := arg[waveform.Waveform](d, list, args, 1, "waveform")
	//
	return analog.Drive{Target: target, Waveform: w}, err
}

func decodeField(d *decoder, list *sexp.List, args []any) (any, error) {
	drives := make([]analog.Drive, len(args))
	//
	for i := range args {
		var err error
		//
		if drives[i], err = arg[analog.Drive](d, list, args, i, "drive"); err != nil {
			return nil, err
		}
	}
	//
	return analog.NewField(drives...), nil
}

func decodeEntry(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 1); err != nil {
		return nil, err
	}
	//
	return entry{list.Head(), args[0]}, nil
}

// ============================================================================
// Pulses & Sequences
// ============================================================================

func decodePulse(d *decoder, list *sexp.List, args []any) (any, error) {
	fields := make(map[analog.FieldName]*analog.Field)
	//
	for i := range args {
		e, err := arg[entry](d, list, args, i, "field entry")
		if err != nil {
			return nil, err
		}
		//
		name, ok := analog.ParseFieldName(e.name)
		field, isField := e.value.(*analog.Field)
		//
		switch {
		case !ok:
			return nil, d.error(list.Get(i+1), "expected field name")
		case !isField:
			return nil, d.error(list.Get(i+1), "expected field")
		case fields[name] != nil:
			return nil, d.error(list.Get(i+1), "duplicate field")
		}
		//
		fields[name] = field
	}
	//
	return analog.NewPulse(fields), nil
}

func decodeAppendPulse(d *decoder, list *sexp.List, args []any) (any, error) {
	pulses := make([]analog.PulseExpr, len(args))
	//
	for i := range args {
		var err error
		//
		if pulses[i], err = arg[analog.PulseExpr](d, list, args, i, "pulse"); err != nil {
			return nil, err
		}
	}
	//
	return analog.ConcatPulses(pulses...), nil
}

func decodeSlicePulse(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 3); err != nil {
		return nil, err
	}
	//
	pulse, err := arg[analog.PulseExpr](d, list, args, 0, "pulse")
	if err != nil {
		return nil, err
	}
	//
	interval, err := d.interval(list, args, 1)
	//
	return analog.SlicePulseOf(pulse, interval), err
}

func decodeNamedPulse(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	name, err := arg[token](d, list, args, 0, "name")
	if err != nil {
		return nil, err
	}
	//
	pulse, err := arg[analog.PulseExpr](d, list, args, 1, "pulse")
	//
	return analog.NamePulse(string(name), pulse), err
}

func decodeSequence(d *decoder, list *sexp.List, args []any) (any, error) {
	pulses := make(map[analog.LevelCoupling]analog.PulseExpr)
	//
	for i := range args {
		e, err := arg[entry](d, list, args, i, "coupling entry")
		if err != nil {
			return nil, err
		}
		//
		coupling, ok := analog.ParseLevelCoupling(e.name)
		pulse, isPulse := e.value.(analog.PulseExpr)
		//
		switch {
		case !ok:
			return nil, d.error(list.Get(i+1), "expected level coupling")
		case !isPulse:
			return nil, d.error(list.Get(i+1), "expected pulse")
		case pulses[coupling] != nil:
			return nil, d.error(list.Get(i+1), "duplicate level coupling")
		}
		//
		pulses[coupling] = pulse
	}
	//
	return analog.NewSequence(pulses), nil
}

func decodeAppendSequence(d *decoder, list *sexp.List, args []any) (any, error) {
	seqs := make([]analog.SequenceExpr, len(args))
	//
	for i := range args {
		var err error
		//
		if seqs[i], err = arg[analog.SequenceExpr](d, list, args, i, "sequence"); err != nil {
			return nil, err
		}
	}
	//
	return analog.ConcatSequences(seqs...), nil
}

func decodeSliceSequence(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 3); err != nil {
		return nil, err
	}
	//
	seq, err := arg[analog.SequenceExpr](d, list, args, 0, "sequence")
	if err != nil {
		return nil, err
	}
	//
	interval, err := d.interval(list, args, 1)
	//
	return analog.SliceSequenceOf(seq, interval), err
}

func decodeNamedSequence(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	name, err := arg[token](d, list, args, 0, "name")
	if err != nil {
		return nil, err
	}
	//
	seq, err := arg[analog.SequenceExpr](d, list, args, 1, "sequence")
	//
	return analog.NameSequence(string(name), seq), err
}

func decodeCircuit(d *decoder, list *sexp.List, args []any) (any, error) {
	if err := d.arity(list, args, 2); err != nil {
		return nil, err
	}
	//
	reg, err := arg[*register.Register](d, list, args, 0, "register")
	if err != nil {
		return nil, err
	}
	//
	seq, err := arg[analog.SequenceExpr](d, list, args, 1, "sequence")
	//
	return analog.NewCircuit(reg, seq), err
}

// ============================================================================
// Registers & Series
// ============================================================================

func decodeRegister(d *decoder, list *sexp.List, args []any) (any, error) {
	var (
		positions = make([]register.Position, len(args))
		vacant    []uint
	)
	//
	for i := range args {
		site, err := arg[register.Site](d, list, args, i, "site")
		if err != nil {
			return nil, err
		}
		//
		positions[i] = site.Position
		//
		if !site.Filled {
			vacant = append(vacant, uint(i))
		}
	}
	//
	return register.New(positions...).Vacate(vacant...), nil
}

func decodeSite(filled bool) rule {
	return func(d *decoder, list *sexp.List, args []any) (any, error) {
		if err := d.arity(list, args, 2); err != nil {
			return nil, err
		}
		//
		x, err := d.number(list, args, 0)
		if err != nil {
			return nil, err
		}
		//
		y, err := d.number(list, args, 1)
		//
		return register.Site{Position: register.At(x, y), Filled: filled}, err
	}
}

func decodeLinearSeries(d *decoder, list *sexp.List, args []any) (any, error) {
	times, values, err := d.series(list, args)
	if err != nil {
		return nil, err
	}
	//
	series, err := piecewise.NewLinear(times, values)
	if err != nil {
		return nil, d.error(list, err.Error())
	}
	//
	return series, nil
}

func decodeConstantSeries(d *decoder, list *sexp.List, args []any) (any, error) {
	times, values, err := d.series(list, args)
	if err != nil {
		return nil, err
	}
	//
	series, err := piecewise.NewConstant(times, values)
	if err != nil {
		return nil, d.error(list, err.Error())
	}
	//
	return series, nil
}

// ============================================================================
// Helpers
// ============================================================================

// Extract the ith argument of a list, which must have a given type.
func arg[T any](d *decoder, list *sexp.List, args []any, i int, what string) (T, error) {
	if v, ok := args[i].(T); ok {
		return v, nil
	}
	//
	var empty T
	//
	return empty, d.error(list.Get(i+1), fmt.Sprintf("expected %s", what))
}

// Extract the ith argument of a list as an enumeration value.
func enum[T any](d *decoder, list *sexp.List, args []any, i int, what string, parse func(string) (T, bool)) (T,
	error) {
	var empty T
	//
	name, err := arg[token](d, list, args, i, what)
	if err != nil {
		return empty, err
	} else if v, ok := parse(string(name)); ok {
		return v, nil
	}
	//
	return empty, d.error(list.Get(i+1), fmt.Sprintf("unknown %s %s", what, name))
}

func (p *decoder) arity(list *sexp.List, args []any, n int) error {
	if len(args) != n {
		return p.error(list, fmt.Sprintf("expected %d arguments, found %d", n, len(args)))
	}
	//
	return nil
}

func (p *decoder) scalars(list *sexp.List, args []any, n int) ([]scalar.Scalar, error) {
	if err := p.arity(list, args, n); err != nil {
		return nil, err
	}
	//
	exprs := make([]scalar.Scalar, n)
	//
	for i := range n {
		var err error
		//
		if exprs[i], err = arg[scalar.Scalar](p, list, args, i, "scalar"); err != nil {
			return nil, err
		}
	}
	//
	return exprs, nil
}

func (p *decoder) waveforms(list *sexp.List, args []any, n int) ([]waveform.Waveform, error) {
	if err := p.arity(list, args, n); err != nil {
		return nil, err
	}
	//
	ws := make([]waveform.Waveform, n)
	//
	for i := range n {
		var err error
		//
		if ws[i], err = arg[waveform.Waveform](p, list, args, i, "waveform"); err != nil {
			return nil, err
		}
	}
	//
	return ws, nil
}

// Decode the two bounds of an interval starting at the ith argument.
func (p *decoder) interval(list *sexp.List, args []any, i int) (scalar.Interval, error) {
	var bounds [2]scalar.Scalar
	//
	for j := range bounds {
		if t, ok := args[i+j].(token); ok && t == absent {
			continue
		}
		//
		var err error
		//
		if bounds[j], err = arg[scalar.Scalar](p, list, args, i+j, "bound"); err != nil {
			return scalar.Interval{}, err
		}
	}
	//
	return scalar.NewInterval(bounds[0], bounds[1]), nil
}

func (p *decoder) number(list *sexp.List, args []any, i int) (decimal.Decimal, error) {
	t, err := arg[token](p, list, args, i, "number")
	if err != nil {
		return decimal.Zero, err
	}
	//
	value, derr := decimal.NewFromString(string(t))
	if derr != nil {
		return decimal.Zero, p.error(list.Get(i+1), fmt.Sprintf("invalid number %s", t))
	}
	//
	return value, nil
}

func (p *decoder) numbers(list *sexp.List, args []any, i int) ([]decimal.Decimal, error) {
	items, err := arg[array](p, list, args, i, "array")
	if err != nil {
		return nil, err
	}
	//
	var (
		inner  = list.Get(i + 1).AsArray()
		values = make([]decimal.Decimal, len(items))
	)
	//
	for j, item := range items {
		t, ok := item.(token)
		if !ok {
			return nil, p.error(inner.Get(j), "expected number")
		}
		//
		if values[j], err = decimal.NewFromString(string(t)); err != nil {
			return nil, p.error(inner.Get(j), fmt.Sprintf("invalid number %s", t))
		}
	}
	//
	return values, nil
}

func (p *decoder) series(list *sexp.List, args []any) ([]decimal.Decimal, []decimal.Decimal, error) {
	if err := p.arity(list, args, 2); err != nil {
		return nil, nil, err
	}
	//
	times, err := p.numbers(list, args, 0)
	if err != nil {
		return nil, nil, err
	}
	//
	values, err := p.numbers(list, args, 1)
	//
	return times, values, err
}
