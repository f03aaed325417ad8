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
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/orchestrator"
	"github.com/nuts-foundation/irma-broker/token"
)

const moduleName = "IRMA"

// RelyingSessionHeader is the default header carrying the relying session ID of the end-user.
const RelyingSessionHeader = "X-Relying-Session-Id"

var _ core.Routable = (*Wrapper)(nil)
var _ core.ErrorStatusCodeResolver = (*Wrapper)(nil)

// Wrapper exposes the orchestrator over HTTP. It's meant for the relying party's backend, not for end-users.
type Wrapper struct {
	Service orchestrator.Service
}

// StartSessionRequest is the body of the start session operation.
type StartSessionRequest struct {
	// Content lists the attributes to disclose. It can also be specified as single Attribute with Label.
	Content   orchestrator.Content `json:"content,omitempty"`
	Attribute string               `json:"attribute,omitempty"`
	Label     string               `json:"label,omitempty"`
	// Message is the message to sign, for signature sessions.
	Message string `json:"message,omitempty"`
	// Credentials are the credentials to issue, for issuance sessions.
	Credentials []orchestrator.Credential `json:"credentials,omitempty"`
	// RelyingSessionID is the relying session the result is added to.
	RelyingSessionID string `json:"relyingSessionId,omitempty"`
}

// RelyingSessionResponse is returned when a relying session is created.
type RelyingSessionResponse struct {
	RelyingSessionID string `json:"relyingSessionId"`
}

// ProofStatusResponse is returned by the proof status operation.
type ProofStatusResponse struct {
	ProofStatus string `json:"proofStatus"`
}

func (w *Wrapper) ResolveStatusCode(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrKindMismatch):
		return http.StatusBadRequest
	case errors.As(err, new(orchestrator.SessionStartError)):
		return http.StatusBadGateway
	case errors.As(err, new(orchestrator.StatusPollError)):
		return http.StatusBadGateway
	case errors.Is(err, orchestrator.ErrResultUnavailable):
		return http.StatusBadGateway
	case errors.As(err, new(token.VerificationError)):
		return http.StatusBadGateway
	case errors.As(err, new(token.ParseError)):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (w *Wrapper) Routes(router core.EchoRouter) {
	operation := func(operationID string, handler echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(core.OperationIDContextKey, operationID)
			ctx.Set(core.ModuleNameContextKey, moduleName)
			ctx.Set(core.StatusCodeResolverContextKey, w)
			return handler(ctx)
		}
	}
	router.POST("/internal/irma/v1/session/:kind", operation("StartSession", w.StartSession))
	router.GET("/internal/irma/v1/session/:kind/:sessionID", operation("GetSessionStatus", w.GetSessionStatus))
	router.POST("/internal/irma/v1/relying-session", operation("CreateRelyingSession", w.CreateRelyingSession))
	router.DELETE("/internal/irma/v1/relying-session/:relyingSessionID", operation("DeleteRelyingSession", w.DeleteRelyingSession))
	router.GET("/internal/irma/v1/relying-session/:relyingSessionID/attributes", operation("GetAttributes", w.GetAttributes))
	router.GET("/internal/irma/v1/relying-session/:relyingSessionID/proofs", operation("GetProofs", w.GetProofs))
	router.GET("/internal/irma/v1/relying-session/:relyingSessionID/proofs/:sessionID", operation("GetProofStatus", w.GetProofStatus))
}

// StartSession starts a disclosure, signature or issuance session.
func (w *Wrapper) StartSession(ctx echo.Context) error {
	kind, err := orchestrator.ParseKind(ctx.Param("kind"))
	if err != nil {
		return core.NotFoundError("%w", err)
	}
	var request StartSessionRequest
	if err = ctx.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request: %w", err)
	}
	content := request.Content
	if len(content) == 0 && request.Attribute != "" {
		content = orchestrator.SingleAttribute(request.Attribute, request.Label)
	}
	switch kind {
	case orchestrator.Issuance:
		if len(request.Credentials) == 0 {
			return core.InvalidInputError("no credentials to issue")
		}
	default:
		if len(content) == 0 {
			return core.InvalidInputError("no attributes requested")
		}
	}
	if kind == orchestrator.Signature && request.Message == "" {
		return core.InvalidInputError("no message to sign")
	}
	result, err := w.Service.Start(ctx.Request().Context(), kind, content, orchestrator.StartOptions{
		CallbackData: request.RelyingSessionID,
		Message:      request.Message,
		Credentials:  request.Credentials,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, result)
}

// GetSessionStatus reconciles the session status with the IRMA API server.
// With the wait query parameter (a duration, e.g. 30s) it waits for the session to reach a terminal status.
func (w *Wrapper) GetSessionStatus(ctx echo.Context) error {
	kind, err := orchestrator.ParseKind(ctx.Param("kind"))
	if err != nil {
		return core.NotFoundError("%w", err)
	}
	sessionID := ctx.Param("sessionID")
	var result *orchestrator.StatusResult
	if wait := ctx.QueryParam("wait"); wait != "" {
		timeout, err := time.ParseDuration(wait)
		if err != nil {
			return core.InvalidInputError("invalid wait duration: %w", err)
		}
		result, err = w.waitForCompletion(ctx, kind, sessionID, timeout)
		if err != nil {
			return err
		}
	} else {
		result, err = w.Service.Reconcile(ctx.Request().Context(), kind, sessionID)
		if err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, result)
}

// waitForCompletion waits at most the given time. A session that's still pending then is reported as such.
func (w *Wrapper) waitForCompletion(ctx echo.Context, kind orchestrator.Kind, sessionID string, timeout time.Duration) (*orchestrator.StatusResult, error) {
	waitCtx, cancel := context.WithTimeout(ctx.Request().Context(), timeout)
	defer cancel()
	result, err := w.Service.WaitForCompletion(waitCtx, kind, sessionID)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Request().Context().Err() == nil {
		return w.Service.Reconcile(ctx.Request().Context(), kind, sessionID)
	}
	return result, err
}

// CreateRelyingSession returns a new relying session ID.
func (w *Wrapper) CreateRelyingSession(ctx echo.Context) error {
	return ctx.JSON(http.StatusCreated, RelyingSessionResponse{RelyingSessionID: w.Service.NewRelyingSession()})
}

// DeleteRelyingSession removes the relying session and its proofs.
func (w *Wrapper) DeleteRelyingSession(ctx echo.Context) error {
	if err := w.Service.RemoveRelyingSession(ctx.Request().Context(), ctx.Param("relyingSessionID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetAttributes returns the attributes disclosed in the relying session.
func (w *Wrapper) GetAttributes(ctx echo.Context) error {
	attributes, err := w.Service.GetAttributes(ctx.Request().Context(), ctx.Param("relyingSessionID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, attributes)
}

// GetProofs returns the proofs stored in the relying session.
func (w *Wrapper) GetProofs(ctx echo.Context) error {
	proofs, err := w.Service.GetProofs(ctx.Request().Context(), ctx.Param("relyingSessionID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, proofs)
}

// GetProofStatus returns the status of the proof of an IRMA session in the relying session.
func (w *Wrapper) GetProofStatus(ctx echo.Context) error {
	status, err := w.Service.GetProofStatus(ctx.Request().Context(), ctx.Param("relyingSessionID"), ctx.Param("sessionID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ProofStatusResponse{ProofStatus: status})
}
