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

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPrefix is the prefix (namespace) for all metrics exposed by the broker.
const MetricsPrefix = "irmabroker"

// NewMetricsEngine creates a new Engine for exposing prometheus metrics via http.
// Metrics are exposed on /metrics, by default the GoCollector and ProcessCollector are enabled.
func NewMetricsEngine() *MetricsEngine {
	return &MetricsEngine{}
}

// MetricsEngine registers the default collectors and exposes the prometheus handler.
type MetricsEngine struct{}

// Name returns the name of the engine.
func (e *MetricsEngine) Name() string {
	return "Metrics"
}

// Configure registers the Go and process collectors.
func (e *MetricsEngine) Configure(_ ServerConfig) error {
	defaultCollectors := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range defaultCollectors {
		if err := RegisterCollector(c); err != nil {
			return err
		}
	}
	return nil
}

// Routes registers the /metrics endpoint.
func (e *MetricsEngine) Routes(router EchoRouter) {
	router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterCollector registers the collector with the default prometheus registry,
// ignoring the error that it was registered before.
func RegisterCollector(c prometheus.Collector) error {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
	}
	return nil
}
