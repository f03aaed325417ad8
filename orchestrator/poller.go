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
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/orchestrator/log"
)

var errSessionPending = errors.New("IRMA session is pending")

func (o *Orchestrator) WaitForCompletion(ctx context.Context, kind Kind, sessionID string) (*StatusResult, error) {
	if o.poll.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.poll.Timeout)
		defer cancel()
	}
	result, err := retry.DoWithData(func() (*StatusResult, error) {
		result, err := o.Reconcile(ctx, kind, sessionID)
		if err != nil {
			return nil, err
		}
		if !result.Status.IsTerminal() {
			log.Logger().
				WithField(core.LogFieldSessionID, sessionID).
				WithField(core.LogFieldRemoteStatus, result.RemoteStatus).
				Trace("Waiting for IRMA session")
			return nil, errSessionPending
		}
		return result, nil
	},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(o.poll.Interval),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errSessionPending)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("IRMA session %s did not complete: %w", sessionID, err)
	}
	return result, nil
}
