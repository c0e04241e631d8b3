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
	"strings"

	"github.com/consensys/go-analog/pkg/ir/analog"
	"github.com/consensys/go-analog/pkg/ir/assign"
	"github.com/consensys/go-analog/pkg/ir/codec"
	"github.com/consensys/go-analog/pkg/util/source"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Get an expected flag, or panic if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected unsigned integer, or panic if an error arises.
func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Get an expected string array, or panic if an error arises.
func getStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// Read and decode a circuit file, reporting any syntax errors in the
// conventional manner.
func readCircuitFile(filename string) *analog.Circuit {
	srcfile, err := source.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	circuit, err := codec.DecodeAs[*analog.Circuit](srcfile)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
	//
	return circuit
}

// Parse definitions of the form "name=value" or "name=v1,v2,...", where the
// latter binds a run-time vector.
func parseBindings(items []string) assign.Bindings {
	bindings := assign.NewBindings()
	//
	for _, item := range items {
		name, value, ok := strings.Cut(item, "=")
		if !ok || name == "" {
			fmt.Printf("malformed definition \"%s\"\n", item)
			os.Exit(2)
		}
		//
		values := parseDecimals(strings.Split(value, ","))
		//
		if len(values) == 1 && !strings.Contains(value, ",") {
			bindings.Scalars[name] = values[0]
		} else {
			bindings.Vectors[name] = values
		}
	}
	//
	return bindings
}

func parseDecimals(items []string) []decimal.Decimal {
	values := make([]decimal.Decimal, len(items))
	//
	for i, item := range items {
		value, err := decimal.NewFromString(strings.TrimSpace(item))
		if err != nil {
			fmt.Printf("invalid number \"%s\"\n", item)
			os.Exit(2)
		}
		//
		values[i] = value
	}
	//
	return values
}

// Report an error, highlighting the offending source text for syntax errors.
func reportError(err error) {
	var serr *source.SyntaxError
	//
	if errors.As(err, &serr) {
		printSyntaxError(serr)
	} else {
		fmt.Println(err.Error())
	}
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	fmt.Println(err.Highlight())
}
