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
	"fmt"
	"runtime"
)

// Build information, set through the linker, e.g.:
//
//	go build -ldflags "-X github.com/nuts-foundation/irma-broker/core.GitVersion=v1.0.0 -X github.com/nuts-foundation/irma-broker/core.GitCommit=$(git rev-parse HEAD)"
var (
	// GitCommit holds the git commit hash the binary is built from.
	GitCommit string
	// GitVersion holds the git tag the binary is built from.
	GitVersion string
	// GitBranch holds the git branch the binary is built from, used when there's no tag.
	GitBranch = "development"
)

// Version returns the git tag of the build, or the branch if it wasn't built from a tag.
func Version() string {
	if GitVersion == "" || GitVersion == "undefined" {
		return GitBranch
	}
	return GitVersion
}

// OSArch returns the OS and architecture the binary is built for, e.g. linux/amd64.
func OSArch() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// UserAgent returns the HTTP User-Agent used for outbound calls to the IRMA server.
func UserAgent() string {
	return "irma-broker/" + Version()
}

// BuildInfo describes the build, one property per line.
func BuildInfo() string {
	return fmt.Sprintf("Git version: %s\nGit commit: %s\nOS/Arch: %s\nGo version: %s\n",
		Version(), GitCommit, OSArch(), runtime.Version())
}
