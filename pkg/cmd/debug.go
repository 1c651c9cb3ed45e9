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
	"reflect"
	"slices"
	"strings"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug [flags] bundle_file",
	Short: "print a bucket bundle at various levels.",
	Long: `Print the instructions of a given bucket bundle in order to debug them,
	either directly or as the generated C++ source.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		cfg := ReadConfig(cmd)
		cpp := GetFlag(cmd, "cpp")
		stats := GetFlag(cmd, "stats")
		// Read in bundle
		c := ReadBundleFile(args[0])
		// Print stats (if requested)
		if stats {
			printStats(c)
		}
		//
		if cpp {
			opts := cgen.Options{MaxThreads: cfg.Runtime.MaxThreads}
			//
			if err := cgen.Generate(c, opts, os.Stdout); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		} else if !stats {
			printCircuit(c)
		}
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().Bool("cpp", false, "Print generated C++ source")
	debugCmd.Flags().Bool("stats", false, "Print summary information")
}

func printCircuit(c *circuit.Circuit) {
	for _, f := range c.Functions {
		fmt.Println(f.String())
	}
	//
	for _, t := range c.Templates {
		fmt.Println(t.String())
	}
}

func printStats(c *circuit.Circuit) {
	var counts = make(map[string]uint)
	//
	count := func(insn bucket.Instruction) bool {
		counts[reflect.TypeOf(insn).Elem().Name()]++
		return true
	}
	//
	for _, t := range c.Templates {
		bucket.Walk(t.Body, count)
	}
	//
	for _, f := range c.Functions {
		bucket.Walk(f.Body, count)
	}
	//
	fmt.Printf("templates: %d\n", len(c.Templates))
	fmt.Printf("functions: %d\n", len(c.Functions))
	fmt.Printf("signals: %d\n", c.Producer.TotalSignals)
	fmt.Printf("components: %d\n", c.Producer.NumberOfComponents)
	fmt.Printf("constants: %d\n", len(c.Producer.FieldConstants))
	fmt.Println(formatCounts(counts))
}

// formatCounts renders the number of instructions of each kind, ordered by
// kind.
func formatCounts(counts map[string]uint) string {
	var (
		kinds   = make([]string, 0, len(counts))
		builder strings.Builder
	)
	//
	for kind := range counts {
		kinds = append(kinds, kind)
	}
	//
	slices.Sort(kinds)
	//
	builder.WriteString("instructions:")
	//
	for _, kind := range kinds {
		builder.WriteString(fmt.Sprintf(" %s=%d", kind, counts[kind]))
	}
	//
	return builder.String()
}
