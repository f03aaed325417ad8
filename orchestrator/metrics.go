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

package orchestrator

import (
	"errors"

	"github.com/nuts-foundation/irma-broker/core"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
}

func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	started := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: core.MetricsPrefix,
		Subsystem: "irma",
		Name:      "sessions_started_total",
		Help:      "Number of IRMA sessions started at the IRMA API server",
	}, []string{"kind"})
	finished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: core.MetricsPrefix,
		Subsystem: "irma",
		Name:      "sessions_finished_total",
		Help:      "Number of IRMA sessions that reached a terminal status",
	}, []string{"kind", "status"})
	var err error
	result := &metrics{}
	if result.started, err = registerCounterVec(registerer, started); err != nil {
		return nil, err
	}
	if result.finished, err = registerCounterVec(registerer, finished); err != nil {
		return nil, err
	}
	return result, nil
}

// registerCounterVec registers the collector, or returns the existing one if it was registered before (e.g. by a previous engine instance).
func registerCounterVec(registerer prometheus.Registerer, collector *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, err
}

func (m *metrics) sessionStarted(kind Kind) {
	m.started.WithLabelValues(string(kind)).Inc()
}

func (m *metrics) sessionFinished(kind Kind, status LocalStatus) {
	m.finished.WithLabelValues(string(kind), string(status)).Inc()
}
