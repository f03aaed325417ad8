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

package main

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/nuts-foundation/irma-broker/cmd"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/pflag"
)

const (
	cliDirectory      = "docs/cli"
	serverOptionsFile = "docs/server_options.md"
)

func generateDocs() {
	system := cmd.CreateSystem(func() {})
	generateServerOptions(system)
	generateCLICommands(system)
}

func generateCLICommands(system *core.System) {
	// Clean up first
	for _, fileName := range listDirectory(cliDirectory) {
		_ = os.Remove(path.Join(cliDirectory, fileName))
	}
	if err := os.MkdirAll(cliDirectory, os.ModePerm); err != nil {
		panic(err)
	}
	prepender := func(string) string { return "" }
	linkHandler := func(name string) string { return name }
	if err := doc.GenMarkdownTreeCustom(cmd.CreateCommand(system), cliDirectory, prepender, linkHandler); err != nil {
		panic(err)
	}
}

func generateServerOptions(system *core.System) {
	serverCommand, _, err := cmd.CreateCommand(system).Find([]string{"server"})
	if err != nil {
		panic(err)
	}
	optionsFile, err := os.OpenFile(serverOptionsFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.ModePerm)
	if err != nil {
		panic(err)
	}
	defer optionsFile.Close()
	printMarkdownTable(vals("Key", "Default", "Description"), serverOptions(system, serverCommand.Flags()), optionsFile)
	if err := optionsFile.Sync(); err != nil {
		panic(err)
	}
}

// serverOptions lists the global flags first, followed by the flags of every configurable engine, ordered by engine name.
func serverOptions(system *core.System, globalFlags *pflag.FlagSet) [][]tableValue {
	flags := map[string]*pflag.FlagSet{"": globalFlags}
	system.VisitEngines(func(engine core.Engine) {
		if m, ok := engine.(core.Injectable); ok {
			flagsForEngine := extractFlagsForEngine(m.ConfigKey(), globalFlags)
			if flagsForEngine.HasAvailableFlags() {
				flags[m.Name()] = flagsForEngine
			}
		}
	})

	sortedKeys := make([]string, 0, len(flags))
	for key := range flags {
		sortedKeys = append(sortedKeys, key)
	}
	sort.Strings(sortedKeys)

	values := make([][]tableValue, 0)
	for _, key := range sortedKeys {
		if key != "" {
			values = append(values, []tableValue{{value: key, bold: true}})
		}
		values = append(values, flagsToSortedValues(flags[key])...)
	}
	return values
}

// extractFlagsForEngine moves the flags of the engine with the given config key to a new flag set, hiding them in the input flag set.
func extractFlagsForEngine(configKey string, flagSet *pflag.FlagSet) *pflag.FlagSet {
	result := pflag.NewFlagSet(configKey, pflag.ContinueOnError)
	flagSet.VisitAll(func(current *pflag.Flag) {
		if strings.HasPrefix(current.Name, configKey+".") && !current.Hidden {
			flagCopy := *current
			current.Hidden = true
			result.AddFlag(&flagCopy)
		}
	})
	return result
}

func flagsToSortedValues(flags *pflag.FlagSet) [][]tableValue {
	values := make([][]tableValue, 0)
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		values = append(values, vals(f.Name, f.DefValue, f.Usage))
	})
	// Global properties (the ones without dots) go on top
	sort.SliceStable(values, func(i, j int) bool {
		s1 := values[i][0].value
		s2 := values[j][0].value
		nested1 := strings.Contains(s1, ".")
		nested2 := strings.Contains(s2, ".")
		if nested1 != nested2 {
			return nested2
		}
		return s1 < s2
	})
	return values
}

func listDirectory(targetDirectory string) []string {
	d, err := os.Open(targetDirectory)
	if err != nil {
		return nil
	}
	defer d.Close()
	names, _ := d.Readdirnames(-1)
	sort.Strings(names)
	return names
}
