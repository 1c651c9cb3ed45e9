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
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// FILENAME is the name of the configuration file searched for by FindAndLoad.
const FILENAME = "witgen.toml"

// DEFAULT_MAX_THREADS bounds the number of concurrently running parallel
// components when nothing else is configured.
const DEFAULT_MAX_THREADS uint = 32

// Config represents a witgen.toml build configuration.
type Config struct {
	Output  Output  `toml:"output"`
	Field   Field   `toml:"field"`
	Runtime Runtime `toml:"runtime"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the configuration file (set at load
	// time).  Relative output directories are resolved against it.
	Dir string `toml:"-"`
}

// Output configures where generated files are placed.
type Output struct {
	Dir  string `toml:"dir"`
	Name string `toml:"name"`
}

// Field selects the prime field, overriding the one given by the bundle.
type Field struct {
	Prime string `toml:"prime"`
}

// Runtime configures the C++ support files written alongside the circuit.
type Runtime struct {
	MaxThreads uint `toml:"max-threads"`
	// Emit is a pointer so that an explicit "false" can be told apart from
	// an absent key.
	Emit     *bool `toml:"emit"`
	InputMap bool  `toml:"input-map"`
}

// Log configures the logging level.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no witgen.toml exists.
func Default() *Config {
	var c Config
	//
	c.applyDefaults()
	//
	return &c
}

// Load parses a witgen.toml file from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FILENAME))
}

// LoadFile parses the given configuration file.
func LoadFile(path string) (*Config, error) {
	var c Config
	//
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	//
	meta, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	// Unknown keys are most likely typos
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), path)
	}
	//
	if c.Dir, err = filepath.Abs(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	//
	c.applyDefaults()
	//
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return nil, fmt.Errorf("invalid log level in %s: %w", path, err)
	}
	//
	log.Debugf("loaded configuration from %s", path)
	//
	return &c, nil
}

// FindAndLoad walks up from startDir to find a witgen.toml file, then loads
// and returns it.  When no file is found, the default configuration is
// returned.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	//
	for {
		path := filepath.Join(dir, FILENAME)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}
		//
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		//
		dir = parent
	}
}

// OutputDir returns the output directory, resolved against the directory of
// the configuration file.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.Output.Dir) || c.Dir == "" {
		return c.Output.Dir
	}
	//
	return filepath.Join(c.Dir, c.Output.Dir)
}

// EmitRuntime determines whether the runtime support files are written.
func (c *Config) EmitRuntime() bool {
	return c.Runtime.Emit == nil || *c.Runtime.Emit
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	//
	if err != nil {
		return log.InfoLevel
	}
	//
	return level
}

func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	//
	if c.Output.Name == "" {
		c.Output.Name = "circuit"
	}
	//
	if c.Runtime.MaxThreads == 0 {
		c.Runtime.MaxThreads = DEFAULT_MAX_THREADS
	}
	//
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
