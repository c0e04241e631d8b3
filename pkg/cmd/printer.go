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
package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/consensys/go-analog/pkg/compiler"
	"github.com/consensys/go-analog/pkg/ir/codec"
	"github.com/consensys/go-analog/pkg/util/source/sexp"
	"github.com/consensys/go-analog/pkg/util/termio"
	"github.com/shopspring/decimal"
)

// Printer encapsulates various configuration options useful for printing out
// compiled tasks in human-readable forms.
type Printer struct {
	// Determine maximum width to print
	maxCellWidth uint
	// Enable ANSI
	ansiEscapes bool
}

// NewPrinter constructs a default printer
func NewPrinter() *Printer {
	// Return an empty printer
	return &Printer{math.MaxUint, true}
}

// AnsiEscapes can be used to enable or disable the use of ANSI escape sequences
// (e.g. for showing colour in a terminal, etc)
func (p *Printer) AnsiEscapes(enable bool) *Printer {
	p.ansiEscapes = enable
	return p
}

// MaxCellWidth sets the maximum width to use for the cell data.
func (p *Printer) MaxCellWidth(width uint) *Printer {
	p.maxCellWidth = width
	return p
}

// Print a given task using the configured printer.  Each channel is printed as
// a table of two rows, giving the times and values of its breakpoints.
func (p *Printer) Print(out io.Writer, task *compiler.Task) {
	fmt.Fprintf(out, "batch %d: %d sites, duration %s\n", task.Batch, len(task.Register), task.Duration.String())
	//
	titleEscape := termio.BoldAnsiEscape().FgColour(termio.TERM_BLUE)
	valueEscape := termio.NewAnsiEscape().FgColour(termio.TERM_GREEN)
	//
	for _, channel := range task.Channels {
		times, values := channel.Series.Breakpoints()
		tp := termio.NewTablePrinter(1 + uint(len(times)))
		// Initialise row titles
		header := tp.AddRow(append([]string{channel.Key.String()}, render(times)...)...)
		row := tp.AddRow(append([]string{compiler.Target(channel.Key.Field)}, render(values)...)...)
		//
		tp.SetEscape(0, header, titleEscape)
		tp.SetEscape(0, row, titleEscape)
		// Highlight non-zero values
		for i, v := range values {
			if !v.IsZero() {
				tp.SetEscape(uint(i+1), row, valueEscape)
			}
		}
		//
		tp.SetMaxWidths(p.maxCellWidth)
		tp.AnsiEscapes(p.ansiEscapes)
		tp.Print(out)
	}
}

// Encode a task in its tagged form.
func encodeTask(task *compiler.Task) (sexp.SExp, error) {
	list := sexp.NewTaggedList("task", sexp.NewSymbol(fmt.Sprintf("%d", task.Batch)),
		sexp.NewTaggedList("duration", sexp.NewSymbol(task.Duration.String())))
	//
	for _, channel := range task.Channels {
		target, err := codec.Encode(channel.Key.Target)
		if err != nil {
			return nil, err
		}
		//
		series, err := codec.Encode(channel.Series)
		if err != nil {
			return nil, err
		}
		//
		list.Append(sexp.NewTaggedList("channel", sexp.NewSymbol(channel.Key.Coupling.String()),
			sexp.NewSymbol(channel.Key.Field.String()), target, series))
	}
	//
	return list, nil
}

func render(values []decimal.Decimal) []string {
	result := make([]string, len(values))
	//
	for i, v := range values {
		result[i] = v.String()
	}
	//
	return result
}
