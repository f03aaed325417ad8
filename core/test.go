/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package core

import (
	"errors"
	"time"

	"github.com/spf13/pflag"
)

const testEngineName = "testengine"

// TestEngineConfig defines the configuration for the test engine
type TestEngineConfig struct {
	Key     string              `koanf:"key"`
	Sub     TestEngineSubConfig `koanf:"sub"`
	List    []string            `koanf:"list"`
	Timeout time.Duration       `koanf:"timeout"`
}

// TestEngineSubConfig defines the `sub` configuration for the test engine
type TestEngineSubConfig struct {
	Test string `koanf:"test"`
}

// TestEngine is an engine that can be registered in a System for testing.
type TestEngine struct {
	TestConfig    TestEngineConfig
	Started       bool
	ShutdownError bool
}

// Start does test stuff
func (i *TestEngine) Start() error {
	i.Started = true
	return nil
}

// Shutdown does test stuff
func (i *TestEngine) Shutdown() error {
	if i.ShutdownError {
		return errors.New("failure")
	}
	return nil
}

func (i *TestEngine) Config() interface{} {
	return &i.TestConfig
}

func (i *TestEngine) Name() string {
	return testEngineName
}

func (i *TestEngine) ConfigKey() string {
	return testEngineName
}

func testFlagSet() *pflag.FlagSet {
	flags := FlagSet()
	flags.String("testengine.key", "default", "test key")
	flags.String("testengine.sub.test", "", "sub key")
	flags.StringSlice("testengine.list", []string{"a", "b"}, "list")
	flags.Duration("testengine.timeout", time.Second, "timeout")
	return flags
}

// TestServerConfig returns a new ServerConfig with the given template applied.
func TestServerConfig(template ServerConfig) ServerConfig {
	config := NewServerConfig()
	config.Strictmode = template.Strictmode
	config.Verbosity = "info"
	config.LoggerFormat = "text"
	return *config
}
