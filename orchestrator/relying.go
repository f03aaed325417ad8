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

	"github.com/google/uuid"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/orchestrator/log"
	"github.com/nuts-foundation/irma-broker/storage"
	"github.com/nuts-foundation/irma-broker/token"
)

func (o *Orchestrator) NewRelyingSession() string {
	return uuid.NewString()
}

func (o *Orchestrator) GetAttributes(ctx context.Context, relyingSessionID string) (map[string][]string, error) {
	session, err := o.loadRelyingSession(ctx, relyingSessionID)
	if err != nil {
		return nil, err
	}
	return aggregateAttributes(session.Proofs), nil
}

// aggregateAttributes merges the attributes of all valid proofs. Values of an attribute disclosed more than once
// are kept in the order the proofs were added.
func aggregateAttributes(proofs []ProofEntry) map[string][]string {
	result := make(map[string][]string)
	for _, entry := range proofs {
		if entry.Proof.Status != ProofStatusValid {
			continue
		}
		for name, value := range entry.Proof.Attributes {
			result[name] = append(result[name], value)
		}
	}
	return result
}

func (o *Orchestrator) GetMissingAttributes(ctx context.Context, relyingSessionID string, required []string) ([]string, error) {
	attributes, err := o.GetAttributes(ctx, relyingSessionID)
	if err != nil {
		return nil, err
	}
	missing := make([]string, 0)
	for _, name := range required {
		if _, ok := attributes[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (o *Orchestrator) GetProofs(ctx context.Context, relyingSessionID string) ([]ProofEntry, error) {
	session, err := o.loadRelyingSession(ctx, relyingSessionID)
	if err != nil {
		return nil, err
	}
	return session.Proofs, nil
}

func (o *Orchestrator) GetProofStatus(ctx context.Context, relyingSessionID string, remoteSessionID string) (string, error) {
	session, err := o.loadRelyingSession(ctx, relyingSessionID)
	if err != nil {
		return "", err
	}
	proof := session.proof(remoteSessionID)
	if proof == nil || proof.Status == "" {
		return NoProofStatus, nil
	}
	return proof.Status, nil
}

func (o *Orchestrator) RemoveRelyingSession(ctx context.Context, relyingSessionID string) error {
	if err := o.relying.Delete(ctx, relyingSessionID); err != nil {
		return fmt.Errorf("unable to delete relying session: %w", err)
	}
	return nil
}

// loadRelyingSession returns the relying session, or an empty one if it doesn't exist (yet).
func (o *Orchestrator) loadRelyingSession(ctx context.Context, relyingSessionID string) (RelyingSession, error) {
	session := RelyingSession{ID: relyingSessionID, Proofs: []ProofEntry{}}
	err := o.relying.Get(ctx, relyingSessionID, &session)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return RelyingSession{}, fmt.Errorf("unable to read relying session: %w", err)
	}
	if session.Proofs == nil {
		session.Proofs = []ProofEntry{}
	}
	return session, nil
}

// addProof adds the proof to the relying session, creating it if it doesn't exist.
// A proof that is already stored for the IRMA session is kept.
func (o *Orchestrator) addProof(ctx context.Context, relyingSessionID string, remoteSessionID string, proof token.Claims) error {
	var session RelyingSession
	err := o.relying.Update(ctx, relyingSessionID, &session, func(exists bool) (bool, error) {
		if !exists {
			session.ID = relyingSessionID
		}
		if session.proof(remoteSessionID) != nil {
			return false, nil
		}
		session.Proofs = append(session.Proofs, ProofEntry{RemoteSessionID: remoteSessionID, Proof: proof})
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("unable to store proof in relying session: %w", err)
	}
	log.Logger().
		WithField(core.LogFieldSessionID, remoteSessionID).
		WithField(core.LogFieldRelyingSessionID, relyingSessionID).
		Debug("Proof added to relying session")
	return nil
}
