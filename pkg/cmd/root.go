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
	"runtime/debug"
	"strings"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/field"
	rt "github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/runtime"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "witgen",
	Short: "A witness generator compiler for arithmetic circuits.",
	Long: `Translate a resolved circuit program (bucket bundle) into a C++ witness
	generator, along with its data file and runtime support.`,
	Run: func(cmd *cobra.Command, args []string) {
		switch {
		case GetFlag(cmd, "version"):
			fmt.Printf("witgen %s\n", versionString())
		case GetFlag(cmd, "fields"):
			fmt.Print(formatFields(field.FIELDS))
		default:
			fmt.Println(cmd.UsageString())
		}
	},
}

func versionString() string {
	if Version != "" {
		// Built via "make"
		return Version
	} else if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		// Built via "go install"
		return info.Main.Version
	}
	// Unknown, perhaps "go run"
	return "(unknown version)"
}

// formatFields lists the prime fields a circuit can be generated over, one per
// line, marking those for which runtime support files can be emitted.
func formatFields(fields []*field.Field) string {
	var builder strings.Builder
	//
	for _, f := range fields {
		runtime := "no"
		//
		if f.Runtime && rt.HasField(f.Name) {
			runtime = "yes"
		}
		//
		builder.WriteString(fmt.Sprintf("%-10s runtime=%-3s modulus=%s\n", f.Name, runtime, f.Modulus))
	}
	//
	return builder.String()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.Flags().Bool("fields", false, "List the supported prime fields")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().String("config", "", "use the given configuration file (rather than searching for witgen.toml)")
}
