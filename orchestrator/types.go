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
	"fmt"

	"github.com/nuts-foundation/irma-broker/irma"
	"github.com/nuts-foundation/irma-broker/token"
	irmago "github.com/privacybydesign/irmago"
)

// LocalStatus is the status of an IRMA session as tracked by the orchestrator.
type LocalStatus string

const (
	// Pending means the session was started, but the remote server hasn't reported a final status yet.
	Pending LocalStatus = "PENDING"
	// Completed means the session finished and its result (if any) was verified and stored. It's terminal.
	Completed LocalStatus = "COMPLETED"
	// Aborted means the session was cancelled or is unknown to the remote server. It's terminal.
	Aborted LocalStatus = "ABORTED"
)

// IsTerminal returns true if no further transitions leave the status.
func (s LocalStatus) IsTerminal() bool {
	return s == Completed || s == Aborted
}

// ProofStatusValid is the status of a proof that verified correctly on the IRMA API server.
const ProofStatusValid = string(irmago.ProofStatusValid)

// NoProofStatus is returned by GetProofStatus if there's no proof (status) for the session.
const NoProofStatus = "NO_PROOF_STATUS"

// RemoteSession is the record of an IRMA session, keyed by the session ID assigned by the IRMA API server.
type RemoteSession struct {
	ID     string      `json:"remoteSessionId"`
	Kind   Kind        `json:"kind"`
	Status LocalStatus `json:"localStatus"`
	// CallbackData is opaque data supplied when starting the session, e.g. the relying session ID.
	CallbackData string `json:"callbackData,omitempty"`
}

// ProofEntry is a verified proof or signature, stored in a relying session.
type ProofEntry struct {
	RemoteSessionID string       `json:"remoteSessionId"`
	Proof           token.Claims `json:"proof"`
}

// RelyingSession accumulates the proofs of the IRMA sessions of an end-user session at the relying party.
// Proofs are stored as list to retain insertion order.
type RelyingSession struct {
	ID     string       `json:"relyingSessionId"`
	Proofs []ProofEntry `json:"proofs"`
}

// proof returns the proof stored for the given remote session, or nil.
func (r RelyingSession) proof(remoteSessionID string) *token.Claims {
	for i := range r.Proofs {
		if r.Proofs[i].RemoteSessionID == remoteSessionID {
			return &r.Proofs[i].Proof
		}
	}
	return nil
}

// AttributeDisjunction is a set of attributes of which the user must disclose one.
type AttributeDisjunction struct {
	Label      string   `json:"label"`
	Attributes []string `json:"attributes"`
}

// Content is the list of attribute disjunctions requested in a disclosure, signature or issuance session.
type Content []AttributeDisjunction

// SingleAttribute returns content requesting a single attribute, shown to the user with the given label.
func SingleAttribute(attribute string, label string) Content {
	return Content{{Label: label, Attributes: []string{attribute}}}
}

// Credential is a credential to be issued, in the format of the IRMA API server.
type Credential struct {
	Credential string `json:"credential"`
	// Validity is a unix timestamp. The server may reject or floor it if it's not a multiple of a week.
	Validity   int64             `json:"validity,omitempty"`
	Attributes map[string]string `json:"attributes"`
}

// StartOptions holds the kind-specific parameters of a new session.
type StartOptions struct {
	// CallbackData is sent along with the request, the IRMA API server returns it as jti claim of the result.
	// It's used to add the result to the relying session with this ID.
	CallbackData string
	// Message is the message to sign (signature sessions only).
	Message string
	// Credentials are the credentials to issue (issuance sessions only).
	Credentials []Credential
}

// StartResult is returned when a session is started.
type StartResult struct {
	RemoteSessionID string `json:"remoteSessionId"`
	// QRContent is the session pointer to show (as QR code) to the user, its u member is an absolute URL.
	QRContent irma.QRContent `json:"qrContent"`
}

// StatusResult is the result of reconciling the local and remote status of a session.
type StatusResult struct {
	Status       LocalStatus `json:"status"`
	RemoteStatus string      `json:"remoteStatus,omitempty"`
	// Proof and ProofStatus are set when a disclosure or signature session completes.
	Proof       *token.Claims `json:"proof,omitempty"`
	ProofStatus string        `json:"proofStatus,omitempty"`
	// Message, Attributes and JWT are set when a signature session completes.
	Message    string            `json:"message,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	JWT        string            `json:"jwt,omitempty"`
}

// ErrKindMismatch is returned when the status of a session is requested for another kind than it was started with.
var ErrKindMismatch = errors.New("session kind mismatch")

// ErrResultUnavailable is returned when the IRMA server reported a session as done, but its result couldn't be retrieved.
var ErrResultUnavailable = errors.New("IRMA session result is unavailable")

// SessionStartError is returned when a session could not be started at the IRMA API server.
type SessionStartError struct {
	Kind  Kind
	Cause error
}

func (e SessionStartError) Error() string {
	return fmt.Sprintf("error starting IRMA %s session: %s", e.Kind, e.Cause)
}

func (e SessionStartError) Unwrap() error {
	return e.Cause
}

// StatusPollError is returned by the remote status query when the IRMA API server could not be reached or returned an error.
// It's passed to the StatusErrorPolicy, which decides how it's handled.
type StatusPollError struct {
	Kind      Kind
	SessionID string
	Cause     error
}

func (e StatusPollError) Error() string {
	return fmt.Sprintf("unable to poll status of IRMA %s session %s: %s", e.Kind, e.SessionID, e.Cause)
}

func (e StatusPollError) Unwrap() error {
	return e.Cause
}
