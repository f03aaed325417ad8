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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerConfig_Load(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{}))
		cfg := NewServerConfig()

		err := cfg.Load(flags)

		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Verbosity)
		assert.Equal(t, "text", cfg.LoggerFormat)
		assert.True(t, cfg.Strictmode)
	})
	t.Run("environment overrides config file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("verbosity: warn\nstrictmode: false\n"), 0600))
		t.Setenv("IRMABROKER_VERBOSITY", "debug")
		t.Setenv("IRMABROKER_CONFIGFILE", configFile)
		defer logrus.SetLevel(logrus.InfoLevel)
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{}))
		cfg := NewServerConfig()

		err := cfg.Load(flags)

		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Verbosity)
		assert.False(t, cfg.Strictmode)
		assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	})
	t.Run("explicit flag overrides environment", func(t *testing.T) {
		t.Setenv("IRMABROKER_LOGGERFORMAT", "text")
		defer logrus.SetFormatter(&logrus.TextFormatter{})
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--loggerformat", "json"}))
		cfg := NewServerConfig()

		err := cfg.Load(flags)

		require.NoError(t, err)
		assert.Equal(t, "json", cfg.LoggerFormat)
	})
	t.Run("invalid logger format", func(t *testing.T) {
		flags := FlagSet()
		require.NoError(t, flags.Parse([]string{"--loggerformat", "xml"}))
		cfg := NewServerConfig()

		err := cfg.Load(flags)

		assert.EqualError(t, err, "invalid formatter: 'xml'")
	})
}

func TestSystem_Load(t *testing.T) {
	t.Run("injects engine config", func(t *testing.T) {
		t.Setenv("IRMABROKER_TESTENGINE_SUB_TEST", "from-env")
		t.Setenv("IRMABROKER_TESTENGINE_LIST", "x, y")
		flags := testFlagSet()
		require.NoError(t, flags.Parse([]string{"--testengine.timeout", "5s"}))
		engine := &TestEngine{}
		system := NewSystem()
		system.RegisterEngine(engine)

		err := system.Load(flags)

		require.NoError(t, err)
		assert.Equal(t, "default", engine.TestConfig.Key)
		assert.Equal(t, "from-env", engine.TestConfig.Sub.Test)
		assert.Equal(t, []string{"x", "y"}, engine.TestConfig.List)
		assert.Equal(t, 5*time.Second, engine.TestConfig.Timeout)
	})
}

func TestSystem_StartAndShutdown(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		engine := &TestEngine{}
		system := NewSystem()
		system.RegisterEngine(engine)

		require.NoError(t, system.Configure())
		require.NoError(t, system.Start())
		assert.True(t, engine.Started)
		assert.NoError(t, system.Shutdown())
	})
	t.Run("shutdown error", func(t *testing.T) {
		system := NewSystem()
		system.RegisterEngine(&TestEngine{ShutdownError: true})

		assert.EqualError(t, system.Shutdown(), "failure")
	})
}

func TestSystem_VisitEngines(t *testing.T) {
	system := NewSystem()
	system.RegisterEngine(&TestEngine{})
	system.RegisterEngine(&TestEngine{})

	var count int
	system.VisitEngines(func(_ Engine) {
		count++
	})

	assert.Equal(t, 2, count)
}
