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
	"strings"

	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/irma"
	"github.com/nuts-foundation/irma-broker/orchestrator/log"
	"github.com/nuts-foundation/irma-broker/storage"
	"github.com/nuts-foundation/irma-broker/token"
	irmago "github.com/privacybydesign/irmago"
	"github.com/prometheus/client_golang/prometheus"
)

const messageTypeString = "STRING"

// sessionRequest is the envelope of every session request, embedded in the signed JWT.
type sessionRequest struct {
	irmago.RequestorBaseRequest
	// Data is returned by the IRMA API server as jti claim of the result.
	Data    string      `json:"data,omitempty"`
	Request interface{} `json:"request"`
}

type disclosureRequest struct {
	Content Content `json:"content"`
}

type signatureRequest struct {
	Message     string  `json:"message"`
	MessageType string  `json:"messageType"`
	Content     Content `json:"content"`
}

type issuanceRequest struct {
	Credentials []Credential `json:"credentials"`
	Disclose    Content      `json:"disclose"`
}

// Orchestrator is the Service implementation. It's safe for concurrent use.
// Reconciliation of a session is serialized per session ID within the process only: when several processes
// share the session database, status writes of the same session are last-write-wins.
type Orchestrator struct {
	client   remoteServer
	codec    *token.Codec
	kinds    map[Kind]kindSettings
	sessions storage.SessionStore
	relying  storage.SessionStore
	policy   StatusErrorPolicy
	locks    *keyLock
	metrics  *metrics
	poll     PollConfig
}

var _ Service = (*Orchestrator)(nil)

// keyspaces of the session database
const (
	sessionsPrefix  = "irma"
	remoteKeyspace  = "session"
	relyingKeyspace = "relying"
)

func newOrchestrator(config Config, client remoteServer, codec *token.Codec, database storage.SessionDatabase, registerer prometheus.Registerer) (*Orchestrator, error) {
	kinds, err := kindTable(config)
	if err != nil {
		return nil, err
	}
	policy, err := statusErrorPolicy(config.Poll.OnError)
	if err != nil {
		return nil, err
	}
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		client:   client,
		codec:    codec,
		kinds:    kinds,
		sessions: database.GetStore(config.SessionTTL, sessionsPrefix, remoteKeyspace),
		relying:  database.GetStore(config.RelyingSessionTTL, sessionsPrefix, relyingKeyspace),
		policy:   policy,
		locks:    newKeyLock(),
		metrics:  m,
		poll:     config.Poll,
	}, nil
}

func (o *Orchestrator) settings(kind Kind) (kindSettings, error) {
	settings, ok := o.kinds[kind]
	if !ok {
		return kindSettings{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return settings, nil
}

func (o *Orchestrator) Start(ctx context.Context, kind Kind, content Content, options StartOptions) (*StartResult, error) {
	settings, err := o.settings(kind)
	if err != nil {
		return nil, err
	}
	request := sessionRequest{
		RequestorBaseRequest: irmago.RequestorBaseRequest{
			ResultJwtValidity: settings.validity,
			ClientTimeout:     settings.timeout,
		},
		Data:    options.CallbackData,
		Request: settings.buildRequest(content, options),
	}
	signed, err := o.codec.Sign(settings.requestClaim, request, settings.signOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to sign %s session request: %w", kind, err)
	}
	qrContent, err := o.client.StartSession(ctx, settings.endpoint, signed)
	if err != nil {
		return nil, SessionStartError{Kind: kind, Cause: err}
	}
	sessionID := qrContent.SessionToken()
	record := RemoteSession{ID: sessionID, Kind: kind, Status: Pending, CallbackData: options.CallbackData}
	if err = o.sessions.Put(ctx, sessionID, record); err != nil {
		return nil, fmt.Errorf("unable to store IRMA session: %w", err)
	}
	o.metrics.sessionStarted(kind)
	log.Logger().
		WithField(core.LogFieldSessionID, sessionID).
		WithField(core.LogFieldSessionKind, kind).
		Debug("IRMA session started")

	result := irma.QRContent{}
	for key, value := range qrContent {
		result[key] = value
	}
	result["u"] = fmt.Sprintf("%s%s/%s", o.client.ServerURL(), settings.endpoint, sessionID)
	if qrContent.Action() == "" {
		result["irmaqr"] = string(settings.action)
	}
	return &StartResult{RemoteSessionID: sessionID, QRContent: result}, nil
}

// Reconcile holds the per-session lock while reading the local record, querying the IRMA server and writing the
// new status. The lock doesn't span processes: the status is written with a plain Put, so concurrent reconcilers in
// other processes overwrite each other (last write wins). Proofs are stored with an atomic Update and never lost.
func (o *Orchestrator) Reconcile(ctx context.Context, kind Kind, sessionID string) (*StatusResult, error) {
	settings, err := o.settings(kind)
	if err != nil {
		return nil, err
	}
	unlock := o.locks.lock(sessionID)
	defer unlock()

	record, err := o.loadSession(ctx, kind, sessionID)
	if err != nil {
		return nil, err
	}
	// Terminal statuses never change, so the IRMA server isn't consulted.
	if record.Status.IsTerminal() {
		return &StatusResult{Status: record.Status}, nil
	}

	remoteStatus, err := o.client.Status(ctx, settings.endpoint, sessionID)
	if err != nil {
		// a cancelled caller says nothing about the session
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		remoteStatus, err = o.policy(StatusPollError{Kind: kind, SessionID: sessionID, Cause: err})
		if err != nil {
			return nil, err
		}
	}
	logger := log.Logger().
		WithField(core.LogFieldSessionID, sessionID).
		WithField(core.LogFieldSessionKind, kind).
		WithField(core.LogFieldRemoteStatus, remoteStatus)

	switch remoteStatus {
	case irma.StatusDone:
		result, err := o.complete(ctx, settings, record)
		if err != nil {
			return nil, err
		}
		if err = o.setStatus(ctx, record, Completed); err != nil {
			return nil, err
		}
		logger.Info("IRMA session completed")
		result.Status = Completed
		result.RemoteStatus = remoteStatus
		return result, nil
	case irma.StatusCancelled, irma.StatusNotFound:
		if err = o.setStatus(ctx, record, Aborted); err != nil {
			return nil, err
		}
		logger.Info("IRMA session aborted")
		return &StatusResult{Status: Aborted, RemoteStatus: remoteStatus}, nil
	default:
		return &StatusResult{Status: record.Status, RemoteStatus: remoteStatus}, nil
	}
}

// loadSession returns the stored record, or a new pending record if the session isn't known locally.
func (o *Orchestrator) loadSession(ctx context.Context, kind Kind, sessionID string) (RemoteSession, error) {
	var record RemoteSession
	err := o.sessions.Get(ctx, sessionID, &record)
	if errors.Is(err, storage.ErrNotFound) {
		return RemoteSession{ID: sessionID, Kind: kind, Status: Pending}, nil
	}
	if err != nil {
		return RemoteSession{}, fmt.Errorf("unable to read IRMA session: %w", err)
	}
	if record.Kind != "" && record.Kind != kind {
		return RemoteSession{}, fmt.Errorf("%w: session %s is a %s session", ErrKindMismatch, sessionID, record.Kind)
	}
	if record.Status == "" {
		record.Status = Pending
	}
	return record, nil
}

func (o *Orchestrator) setStatus(ctx context.Context, record RemoteSession, status LocalStatus) error {
	record.Status = status
	if err := o.sessions.Put(ctx, record.ID, record); err != nil {
		return fmt.Errorf("unable to store IRMA session status: %w", err)
	}
	o.metrics.sessionFinished(record.Kind, status)
	return nil
}

// complete fetches and verifies the result of a session the IRMA server reported as done,
// and stores it in the relying session it was started for.
func (o *Orchestrator) complete(ctx context.Context, settings kindSettings, record RemoteSession) (*StatusResult, error) {
	if settings.resultResource == "" {
		return &StatusResult{}, nil
	}
	raw, err := o.client.Result(ctx, settings.endpoint, record.ID, settings.resultResource)
	if err != nil {
		return nil, core.WrapError(ErrResultUnavailable, err)
	}
	claims, err := o.codec.Verify(raw, settings.verifyOptions)
	if err != nil {
		return nil, err
	}
	relyingSessionID := claims.ID
	if relyingSessionID == "" {
		relyingSessionID = record.CallbackData
	}
	if relyingSessionID != "" {
		if err = o.addProof(ctx, relyingSessionID, record.ID, *claims); err != nil {
			return nil, err
		}
	}
	result := &StatusResult{
		Proof:       claims,
		ProofStatus: claims.Status,
	}
	if settings.returnsToken {
		result.JWT = strings.TrimSpace(raw)
		result.Message = claims.Message
		result.Attributes = claims.Attributes
	}
	return result, nil
}
