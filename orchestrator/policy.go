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
	"fmt"

	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/irma"
	"github.com/nuts-foundation/irma-broker/orchestrator/log"
)

// StatusErrorPolicy decides which remote status to assume when polling the remote status failed.
// Returning an error instead makes Reconcile fail without changing the local status.
type StatusErrorPolicy func(err StatusPollError) (string, error)

// NotFoundOnError treats every status poll failure as if the remote server doesn't know the session.
// The IRMA API server responds with an error for expired sessions, but this policy can't tell those apart from
// transient failures: an unreachable server aborts sessions that are still valid.
func NotFoundOnError(err StatusPollError) (string, error) {
	log.Logger().
		WithError(err.Cause).
		WithField(core.LogFieldSessionID, err.SessionID).
		WithField(core.LogFieldSessionKind, err.Kind).
		Warn("Unable to poll IRMA session status, treating session as not found")
	return irma.StatusNotFound, nil
}

// FailOnError propagates status poll failures, keeping sessions pending.
func FailOnError(err StatusPollError) (string, error) {
	return "", err
}

const (
	notFoundOnErrorPolicy = "notfound"
	failOnErrorPolicy     = "fail"
)

func statusErrorPolicy(name string) (StatusErrorPolicy, error) {
	switch name {
	case notFoundOnErrorPolicy, "":
		return NotFoundOnError, nil
	case failOnErrorPolicy:
		return FailOnError, nil
	default:
		return nil, fmt.Errorf("irma.poll.onerror: unknown policy %q (expected %q or %q)", name, notFoundOnErrorPolicy, failOnErrorPolicy)
	}
}
