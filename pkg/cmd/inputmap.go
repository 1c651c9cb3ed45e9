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

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/spf13/cobra"
)

var inputMapCmd = &cobra.Command{
	Use:   "inputmap [flags] file",
	Short: "print the input signals of the main component.",
	Long: `Print the name, signal offset and size of every input of the main
	component.  The file is either a bucket bundle or an input map written by
	the compile command.`,
	Run: func(cmd *cobra.Command, args []string) {
		var inputs []circuit.InputSignal
		//
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		ReadConfig(cmd)
		//
		if GetFlag(cmd, "bundle") {
			c := ReadBundleFile(args[0])
			inputs = cgen.InputMap(&c.Producer)
		} else {
			bytes, err := os.ReadFile(args[0])
			if err == nil {
				inputs, err = cgen.ReadInputMap(bytes)
			}
			// Handle error
			if err != nil {
				fmt.Printf("%s: %s\n", args[0], err)
				os.Exit(2)
			}
		}
		//
		for _, input := range inputs {
			fmt.Printf("%s\t%d\t%d\n", input.Name, input.Offset, input.Size)
		}
	},
}

func init() {
	rootCmd.AddCommand(inputMapCmd)
	inputMapCmd.Flags().Bool("bundle", false, "read the inputs from a bucket bundle")
}
