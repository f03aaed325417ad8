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

	"github.com/nuts-foundation/irma-broker/irma"
)

// Service orchestrates IRMA sessions and collects their results in relying sessions.
type Service interface {
	// Start signs the session request for the given kind and starts it at the IRMA API server.
	// Content lists the attributes to disclose; for issuance sessions it's optional.
	// Returns a SessionStartError if the server couldn't be reached or rejected the request.
	Start(ctx context.Context, kind Kind, content Content, options StartOptions) (*StartResult, error)
	// Reconcile merges the local status of the session with the status reported by the IRMA API server.
	// When the server reports the session is done, the result is fetched, verified and stored.
	Reconcile(ctx context.Context, kind Kind, sessionID string) (*StatusResult, error)
	// WaitForCompletion reconciles the session until it reaches a terminal status or the context is done.
	WaitForCompletion(ctx context.Context, kind Kind, sessionID string) (*StatusResult, error)

	// NewRelyingSession returns the ID for a new relying session. The session itself is created on its first proof.
	NewRelyingSession() string
	// GetAttributes returns the values of all attributes disclosed in the valid proofs of the relying session, in the order they were added.
	GetAttributes(ctx context.Context, relyingSessionID string) (map[string][]string, error)
	// GetMissingAttributes returns the required attributes that weren't disclosed in the relying session.
	GetMissingAttributes(ctx context.Context, relyingSessionID string, required []string) ([]string, error)
	// GetProofs returns all proofs stored in the relying session.
	GetProofs(ctx context.Context, relyingSessionID string) ([]ProofEntry, error)
	// GetProofStatus returns the status of the proof of the given IRMA session in the relying session, or NoProofStatus.
	GetProofStatus(ctx context.Context, relyingSessionID string, remoteSessionID string) (string, error)
	// RemoveRelyingSession deletes the relying session and its proofs.
	RemoveRelyingSession(ctx context.Context, relyingSessionID string) error
}

// remoteServer is the part of irma.HTTPClient used by the orchestrator.
type remoteServer interface {
	ServerURL() string
	StartSession(ctx context.Context, endpoint string, signedRequest string) (irma.QRContent, error)
	Status(ctx context.Context, endpoint string, sessionID string) (string, error)
	Result(ctx context.Context, endpoint string, sessionID string, resource string) (string, error)
}

var _ remoteServer = (*irma.HTTPClient)(nil)
