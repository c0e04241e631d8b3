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
	"os"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/assign"
	"github.com/consensys/go-analog/pkg/ir/canonical"
	"github.com/consensys/go-analog/pkg/ir/codec"
	"github.com/consensys/go-analog/pkg/ir/padding"
	"github.com/consensys/go-analog/pkg/util/source/sexp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var canonicalCmd = &cobra.Command{
	Use:   "canonical [flags] circuit_file",
	Short: "print the canonical form of a circuit.",
	Long: `Print the canonical form of a given circuit, after first assigning any
	variables defined on the command line.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		circuit := readCircuitFile(args[0])
		bindings := parseBindings(getStringArray(cmd, "set"))
		//
		circuit, err := canonicalise(circuit, bindings, getFlag(cmd, "pad"))
		if err != nil {
			reportError(err)
			os.Exit(1)
		}
		//
		term, err := codec.Encode(circuit)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}
		//
		fmt.Println(sexp.Pretty(term, getUint(cmd, "width")))
	},
}

// Assign and canonicalise a circuit, optionally padding every channel.
func canonicalise(circuit *analog.Circuit, bindings assign.Bindings, pad bool) (*analog.Circuit, error) {
	var err error
	//
	if bindings.Len() > 0 {
		log.Debugf("assigning %v", bindings.Names())
		//
		if circuit, err = assign.Circuit(circuit, bindings); err != nil {
			return nil, err
		}
	}
	//
	if circuit, err = canonical.Circuit(circuit); err != nil || !pad {
		return circuit, err
	}
	//
	seq, err := padding.PadAll(circuit.Sequence, bindings.Scalars)
	if err != nil {
		return nil, err
	}
	//
	return canonical.Circuit(circuit.WithSequence(seq))
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(canonicalCmd)
	canonicalCmd.Flags().StringArrayP("set", "S", []string{}, "assign a variable (name=value or name=v1,v2,..).")
	canonicalCmd.Flags().Bool("pad", false, "pad every channel to the duration of its sequence")
}
