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
	"strings"

	"github.com/nuts-foundation/irma-broker/irma"
	"github.com/nuts-foundation/irma-broker/token"
	irmago "github.com/privacybydesign/irmago"
)

// Kind is the kind of IRMA session.
type Kind string

const (
	// Disclosure sessions ask the user to disclose attributes.
	Disclosure Kind = "DISCLOSURE"
	// Signature sessions ask the user to sign a message with attributes (attribute-based signature).
	Signature Kind = "SIGNATURE"
	// Issuance sessions issue credentials to the user.
	Issuance Kind = "ISSUANCE"
)

// ErrUnknownKind is returned when a session kind is not one of Disclosure, Signature or Issuance.
var ErrUnknownKind = errors.New("unknown session kind")

// Kinds lists all session kinds.
var Kinds = []Kind{Disclosure, Signature, Issuance}

// ParseKind parses a session kind, case-insensitive.
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToUpper(value))
	for _, k := range Kinds {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, value)
}

// kindSettings is an entry of the lookup table that makes the orchestrator kind-agnostic.
type kindSettings struct {
	kind Kind
	// endpoint is the path of the session endpoint, relative to the IRMA API server URL.
	endpoint string
	// requestClaim is the claim name under which the session request is embedded in the signed JWT.
	requestClaim string
	// buildRequest creates the kind specific part of the session request.
	buildRequest func(content Content, options StartOptions) interface{}
	// action is the session type in the session pointer (irmaqr member).
	action      irmago.Action
	signOptions token.SignOptions
	// resultResource is the result to fetch on completion, empty if the kind has no result.
	resultResource string
	verifyOptions  token.VerifyOptions
	// returnsToken indicates the raw result token and signed message are part of the completion result.
	returnsToken bool
	validity     int
	timeout      int
}

// kindTable builds the lookup table from the configuration.
func kindTable(config Config) (map[Kind]kindSettings, error) {
	disclosure, err := config.Disclosure.settings(Disclosure, "sprequest", irma.ProofResource, config.ClockSkew)
	if err != nil {
		return nil, err
	}
	disclosure.action = irmago.ActionDisclosing
	disclosure.buildRequest = func(content Content, _ StartOptions) interface{} {
		return disclosureRequest{Content: content}
	}
	signature, err := config.Signature.settings(Signature, "absrequest", irma.SignatureResource, config.ClockSkew)
	if err != nil {
		return nil, err
	}
	signature.action = irmago.ActionSigning
	signature.returnsToken = true
	signature.buildRequest = func(content Content, options StartOptions) interface{} {
		return signatureRequest{Message: options.Message, MessageType: messageTypeString, Content: content}
	}
	issuance, err := config.Issuance.settings(Issuance, "iprequest", "", config.ClockSkew)
	if err != nil {
		return nil, err
	}
	issuance.action = irmago.ActionIssuing
	issuance.buildRequest = func(content Content, options StartOptions) interface{} {
		return issuanceRequest{Credentials: options.Credentials, Disclose: content}
	}
	if err = checkKeyTypes(disclosure, signature, issuance); err != nil {
		return nil, err
	}
	return map[Kind]kindSettings{
		Disclosure: disclosure,
		Signature:  signature,
		Issuance:   issuance,
	}, nil
}

// checkKeyTypes verifies all kinds can use the single signing key and IRMA server key,
// which are loaded for the algorithms of the first kind.
func checkKeyTypes(first kindSettings, others ...kindSettings) error {
	signKeyType := token.KeyType(first.signOptions.Algorithm)
	verifyKeyType := token.KeyType(first.verifyOptions.Algorithm)
	for _, other := range others {
		if keyType := token.KeyType(other.signOptions.Algorithm); keyType != signKeyType {
			return fmt.Errorf("%s: request algorithm %s needs a %s key, but the signing key is loaded as %s key for %s",
				other.kind, other.signOptions.Algorithm, keyType, signKeyType, first.kind)
		}
		if other.resultResource == "" {
			continue
		}
		if keyType := token.KeyType(other.verifyOptions.Algorithm); keyType != verifyKeyType {
			return fmt.Errorf("%s: result algorithm %s needs a %s key, but the IRMA server key is loaded as %s key for %s",
				other.kind, other.verifyOptions.Algorithm, keyType, verifyKeyType, first.kind)
		}
	}
	return nil
}
