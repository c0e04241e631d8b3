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
	"strings"

	"github.com/consensys/go-analog/pkg/compiler"
	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/analysis"
	"github.com/consensys/go-analog/pkg/ir/failure"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] circuit_file",
	Short: "check a circuit can be compiled.",
	Long: `Check a given circuit, reporting its variables and channels.  When
	every variable is assigned (e.g. on the command line), the circuit is also
	compiled to check every channel can be lowered.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		circuit := readCircuitFile(args[0])
		bindings := parseBindings(getStringArray(cmd, "set"))
		vars := analysis.Scan(circuit)
		//
		report("scalars", vars.Free())
		report("vectors", vars.Vectors)
		report("recorded", vars.Recorded)
		//
		var channels []string
		for _, key := range analysis.Channels(circuit.Sequence) {
			channels = append(channels, key.String())
		}
		//
		report("channels", channels)
		fmt.Printf("duration: %s\n", analog.SequenceDuration(circuit.Sequence).String())
		//
		if missing := unbound(vars, bindings.Has); len(missing) > 0 {
			fmt.Printf("skipping lowering (unassigned: %s)\n", strings.Join(missing, ", "))
			return
		}
		//
		routine, err := compiler.NewRoutine(circuit, bindings, nil, nil)
		if err == nil {
			_, err = compiler.Compile(context.Background(), routine, nil, nil)
		}
		//
		if err != nil {
			fmt.Printf("failed (%s): ", failure.KindOf(err).String())
			reportError(err)
			os.Exit(1)
		}
		//
		fmt.Println("ok")
	},
}

func report(title string, names []string) {
	if len(names) > 0 {
		fmt.Printf("%s: %s\n", title, strings.Join(names, ", "))
	}
}

func unbound(vars *analysis.Variables, bound func(string) bool) []string {
	var missing []string
	//
	for _, name := range append(vars.Free(), vars.Vectors...) {
		if !bound(name) {
			missing = append(missing, name)
		}
	}
	//
	return missing
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringArrayP("set", "S", []string{}, "assign a variable (name=value or name=v1,v2,..).")
}
