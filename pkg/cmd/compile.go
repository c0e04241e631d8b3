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
	"context"
	"fmt"
	"os"

	"github.com/consensys/go-analog/pkg/compiler"
	"github.com/consensys/go-analog/pkg/util/source/sexp"
	"github.com/consensys/go-analog/pkg/util/termio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] job_file [arg...]",
	Short: "compile a job into breakpoint series.",
	Long: `Compile every batch of a given job into breakpoint series, one per
	channel.  Any trailing arguments give the values of the job's run-time
	arguments, in order.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		width := getUint(cmd, "width")
		job, err := compiler.LoadJob(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		caps, err := job.LoadCapabilities()
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		routine, err := job.Routine(caps)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}
		//
		log.Debugf("compiling %d batch(es) of %s", routine.Batches(), args[0])
		//
		tasks, err := compiler.Compile(context.Background(), routine, parseDecimals(args[1:]), caps)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}
		//
		printer := NewPrinter().MaxCellWidth(getUint(cmd, "max-cell-width")).
			AnsiEscapes(!getFlag(cmd, "no-ansi") && termio.IsTerminal(os.Stdout))
		//
		for _, task := range tasks {
			if !getFlag(cmd, "sexp") {
				printer.Print(os.Stdout, task)
			} else if term, err := encodeTask(task); err != nil {
				reportError(err)
				os.Exit(1)
			} else {
				fmt.Println(sexp.Pretty(term, min(width, termio.Width(os.Stdout, width))))
			}
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("sexp", false, "print tasks in their tagged form")
	compileCmd.Flags().Bool("no-ansi", false, "disable ANSI escapes")
	compileCmd.Flags().Uint("max-cell-width", 16, "set maximum width of any table cell")
}
