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
	"errors"
	"fmt"
	"os"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/config"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/field"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/termio"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] bundle_file",
	Short: "compile a bucket bundle into a C++ witness generator.",
	Long: `Compile a given bucket bundle into a C++ source unit, along with its data file and
	(optionally) the runtime support files required to build the witness generator.
	Settings are taken from witgen.toml (when found), though flags take precedence.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		var (
			cfg   = ReadConfig(cmd)
			flags = compileFlags{
				output:     GetString(cmd, "output"),
				name:       GetString(cmd, "name"),
				prime:      GetString(cmd, "prime"),
				maxThreads: GetUint(cmd, "max-threads"),
				noRuntime:  GetFlag(cmd, "no-runtime"),
				inputMap:   GetFlag(cmd, "input-map"),
			}
			console = termio.NewConsole(os.Stdout)
		)
		// Read the bundle
		c := ReadBundleFile(args[0])
		//
		target, opts, err := compileTarget(cfg, flags, &c.Producer)
		if err != nil {
			console.Failure("%s", err)
			os.Exit(2)
		}
		//
		written, err := cgen.WriteCircuit(c, target, opts)
		if err != nil {
			console.Failure("%s", err)
			os.Exit(1)
		}
		//
		for _, path := range written {
			console.Success("Written successfully: %s", path)
		}
	},
}

// compileFlags holds the command-line settings of the compile command, which
// override those of the configuration.
type compileFlags struct {
	output     string
	name       string
	prime      string
	maxThreads uint
	noRuntime  bool
	inputMap   bool
}

// compileTarget determines what to generate, and where, from the command-line
// flags, the configuration and (for the field) the bundle itself, in that
// order of precedence.
func compileTarget(cfg *config.Config, flags compileFlags, producer *circuit.Producer) (cgen.Target,
	cgen.Options, error) {
	var (
		target = cgen.Target{
			Dir:      cfg.OutputDir(),
			Name:     cfg.Output.Name,
			Runtime:  cfg.EmitRuntime() && !flags.noRuntime,
			InputMap: cfg.Runtime.InputMap || flags.inputMap,
		}
		opts  = cgen.Options{MaxThreads: cfg.Runtime.MaxThreads}
		prime = producer.Prime
		err   error
	)
	//
	if flags.output != "" {
		target.Dir = flags.output
	}
	//
	if flags.name != "" {
		target.Name = flags.name
	}
	//
	if flags.maxThreads != 0 {
		opts.MaxThreads = flags.maxThreads
	}
	//
	if flags.prime != "" {
		prime = flags.prime
	} else if cfg.Field.Prime != "" {
		prime = cfg.Field.Prime
	}
	//
	if prime == "" {
		return target, opts, errors.New("no prime field given (use --prime)")
	} else if target.Field, err = field.Lookup(prime); err != nil {
		return target, opts, err
	}
	//
	return target, opts, nil
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "specify output directory.")
	compileCmd.Flags().String("name", "", "specify circuit name (which determines file names).")
	compileCmd.Flags().String("prime", "", "specify prime field (e.g. m31, koalabear, babybear, bn128).")
	compileCmd.Flags().Uint("max-threads", 0, "bound the number of parallel components running at once.")
	compileCmd.Flags().Bool("no-runtime", false, "do not write runtime support files.")
	compileCmd.Flags().Bool("input-map", false, "write the input map of the main component.")
}
