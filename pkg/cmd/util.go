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

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/binfile"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/config"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// GetUint gets an expected unsigned integer, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// GetString gets an expected string, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// ReadConfig loads the configuration named by the "--config" flag or, failing
// that, the nearest witgen.toml.  This also configures the log level, where
// "--verbose" overrides the configured level.
func ReadConfig(cmd *cobra.Command) *config.Config {
	var (
		cfg  *config.Config
		err  error
		path = GetString(cmd, "config")
	)
	//
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	log.SetLevel(cfg.LogLevel())
	// Configure log level
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
	//
	return cfg
}

// ReadBundleFile reads a bucket bundle, given either in binary or JSON form,
// exiting if this fails.
func ReadBundleFile(filename string) *circuit.Circuit {
	var stats = util.NewPerfStats()
	//
	bytes, err := os.ReadFile(filename)
	//
	if err == nil {
		var c *circuit.Circuit
		//
		if c, err = binfile.Decode(bytes); err == nil {
			stats.Log("Reading bundle")
			return c
		}
	}
	// Handle error
	fmt.Printf("%s: %s\n", filename, err)
	os.Exit(2)
	// unreachable
	return nil
}
