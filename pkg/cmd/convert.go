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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/binfile"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/cgen"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util/termio"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] bundle_file",
	Short: "convert a bucket bundle between its JSON and binary forms.",
	Long: `Convert a given bucket bundle into a binary bundle (the default) or into
	JSON.  The bundle is checked before being written.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}
		//
		ReadConfig(cmd)
		//
		var (
			output  = GetString(cmd, "output")
			asJson  = GetFlag(cmd, "json")
			console = termio.NewConsole(os.Stdout)
			c       = ReadBundleFile(args[0])
			bytes   []byte
			err     error
		)
		//
		if asJson {
			bytes, err = binfile.MarshalJson(c)
		} else {
			bytes, err = binaryBundle(c, filepath.Base(args[0]))
		}
		//
		if err == nil {
			err = cgen.AtomicWrite(output, func(out io.Writer) error {
				_, err := out.Write(bytes)
				return err
			})
		}
		//
		if err != nil {
			console.Failure("%s", err)
			os.Exit(1)
		}
		//
		console.Success("Written successfully: %s", output)
	},
}

// binaryBundle serialises a circuit as a binary bundle, recording where it was
// converted from in the header metadata.
func binaryBundle(c *circuit.Circuit, source string) ([]byte, error) {
	metadata, err := json.Marshal(map[string]string{"source": source})
	if err != nil {
		return nil, err
	}
	//
	return binfile.NewBinaryFile(metadata, c).MarshalBinary()
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("output", "o", "a.bucket", "specify output file.")
	convertCmd.Flags().Bool("json", false, "write JSON rather than binary.")
	convertCmd.MarkFlagRequired("output")
}
