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

package status

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/irma-broker/core"
)

const (
	moduleName          = "Status"
	statusEndpoint      = "/status"
	diagnosticsEndpoint = "/status/diagnostics"
)

// status serves the liveness check and the diagnostics of all engines of the system.
type status struct {
	system    *core.System
	startTime time.Time
}

// NewStatusEngine creates the engine reporting the status of the given system.
func NewStatusEngine(system *core.System) core.Engine {
	return &status{
		system:    system,
		startTime: time.Now(),
	}
}

func (s *status) Name() string {
	return moduleName
}

func (s *status) Routes(router core.EchoRouter) {
	router.GET(statusEndpoint, func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "OK")
	})
	router.GET(diagnosticsEndpoint, s.diagnostics)
}

// diagnostics renders the report as plain text, or as JSON object (engine -> name -> value) if the client accepts JSON.
func (s *status) diagnostics(ctx echo.Context) error {
	report := s.collect()
	if strings.Contains(ctx.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		result := make(map[string]map[string]string, len(report))
		for _, section := range report {
			values := make(map[string]string, len(section.results))
			for _, r := range section.results {
				values[r.Name()] = r.String()
			}
			result[section.engine] = values
		}
		return ctx.JSON(http.StatusOK, result)
	}
	var lines []string
	for _, section := range report {
		lines = append(lines, section.engine)
		for _, r := range section.results {
			lines = append(lines, fmt.Sprintf("\t%s: %s", r.Name(), r.String()))
		}
	}
	return ctx.String(http.StatusOK, strings.Join(lines, "\n"))
}

type section struct {
	engine  string
	results []core.DiagnosticResult
}

// collect gathers the diagnostics in order of engine registration.
func (s *status) collect() []section {
	var report []section
	s.system.VisitEngines(func(engine core.Engine) {
		if d, ok := engine.(core.ViewableDiagnostics); ok {
			report = append(report, section{engine: d.Name(), results: d.Diagnostics()})
		}
	})
	return report
}

// Diagnostics reports the registered engines, how long the broker has been running and which build it runs.
func (s *status) Diagnostics() []core.DiagnosticResult {
	var engines []string
	s.system.VisitEngines(func(engine core.Engine) {
		if n, ok := engine.(core.Named); ok {
			engines = append(engines, n.Name())
		}
	})
	return []core.DiagnosticResult{
		&core.GenericDiagnosticResult{Title: "Registered engines", Outcome: strings.Join(engines, ",")},
		&core.GenericDiagnosticResult{Title: "Uptime", Outcome: time.Since(s.startTime).Truncate(time.Second).String()},
		&core.GenericDiagnosticResult{Title: "Version", Outcome: core.Version()},
		&core.GenericDiagnosticResult{Title: "Git commit", Outcome: core.GitCommit},
		&core.GenericDiagnosticResult{Title: "OS/Arch", Outcome: core.OSArch()},
	}
}
