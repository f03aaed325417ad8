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

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/orchestrator"
	"github.com/nuts-foundation/irma-broker/orchestrator/log"
)

// MissingAttributesResponse is returned by RequireAttributes when the user didn't disclose all required attributes.
type MissingAttributesResponse struct {
	Success            bool     `json:"success"`
	RequiredAttributes []string `json:"requiredAttributes"`
	Message            string   `json:"message"`
}

// RelyingSessionIDFunc extracts the relying session ID of the user from the request. It returns an empty string if there's none.
type RelyingSessionIDFunc func(ctx echo.Context) string

// RelyingSessionIDFromHeader reads the relying session ID from the given request header.
func RelyingSessionIDFromHeader(header string) RelyingSessionIDFunc {
	return func(ctx echo.Context) string {
		return ctx.Request().Header.Get(header)
	}
}

// RequireAttributes only allows requests of users that disclosed all required attributes in their relying session.
// Other requests get a 401 response listing the missing attributes. Requests without relying session are missing all attributes.
// If the relying session can't be read the request is denied with the error.
func RequireAttributes(service orchestrator.Service, relyingSessionID RelyingSessionIDFunc, required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			missing := required
			if id := relyingSessionID(ctx); id != "" {
				var err error
				missing, err = service.GetMissingAttributes(ctx.Request().Context(), id, required)
				if err != nil {
					return err
				}
			}
			if len(missing) == 0 {
				return next(ctx)
			}
			log.Logger().
				WithField(core.LogFieldRelyingSessionID, relyingSessionID(ctx)).
				Debugf("Request denied, missing attributes: %v", missing)
			return ctx.JSON(http.StatusUnauthorized, MissingAttributesResponse{
				Success:            false,
				RequiredAttributes: required,
				Message:            fmt.Sprintf("You are missing attributes: [%s]", strings.Join(missing, ",")),
			})
		}
	}
}
