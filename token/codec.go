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

package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	statusClaim     = "status"
	attributesClaim = "attributes"
	messageClaim    = "message"
	signatureClaim  = "signature"
)

// SignOptions specifies how an outbound session request is signed.
type SignOptions struct {
	Algorithm jwa.SignatureAlgorithm
	Issuer    string
	Subject   string
}

// VerifyOptions specifies what's expected from an inbound token.
type VerifyOptions struct {
	Algorithm jwa.SignatureAlgorithm
	// Subject is the expected sub claim. It's not checked when empty.
	Subject string
	// ClockSkew is the allowed difference between the local clock and the issuer's when validating iat, nbf and exp.
	ClockSkew time.Duration
}

// Claims holds the verified claims of a disclosure or signature result.
type Claims struct {
	// ID is the jti claim, which carries the data passed when the session was started (e.g. a relying session ID).
	ID        string    `json:"jti,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	Status    string    `json:"status,omitempty"`
	// Attributes maps attribute identifiers to their disclosed value.
	Attributes map[string]string `json:"attributes,omitempty"`
	// Message and Signature are only present in signature results.
	Message   string            `json:"message,omitempty"`
	Signature *SignaturePayload `json:"signature,omitempty"`
}

// Codec signs outbound session requests and verifies inbound results.
type Codec struct {
	signingKey      interface{}
	verificationKey interface{}
}

// NewCodec creates a Codec. The signing key is a jwk.Key parsed from a PEM private key or an HMAC secret ([]byte),
// the verification key is the public key (or HMAC secret) of the remote service. Either may be nil if unused.
func NewCodec(signingKey interface{}, verificationKey interface{}) (*Codec, error) {
	var err error
	if verificationKey != nil {
		if verificationKey, err = publicKeyOf(verificationKey); err != nil {
			return nil, fmt.Errorf("invalid verification key: %w", err)
		}
	}
	return &Codec{signingKey: signingKey, verificationKey: verificationKey}, nil
}

// Sign embeds body under the given claim name and returns the compact serialized JWT.
func (c Codec) Sign(claimName string, body interface{}, options SignOptions) (string, error) {
	if c.signingKey == nil {
		return "", errors.New("no signing key configured")
	}
	builder := jwt.NewBuilder().
		Subject(options.Subject).
		IssuedAt(time.Now()).
		Claim(claimName, body)
	if options.Issuer != "" {
		builder = builder.Issuer(options.Issuer)
	}
	unsigned, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("unable to build token: %w", err)
	}
	signed, err := jwt.Sign(unsigned, jwt.WithKey(options.Algorithm, c.signingKey))
	if err != nil {
		return "", fmt.Errorf("unable to sign token: %w", err)
	}
	return string(signed), nil
}

// Verify checks the signature, algorithm, subject and validity period of the given token and returns its claims.
// Verification failures are returned as VerificationError, an unparsable signature payload as ParseError.
func (c Codec) Verify(token string, options VerifyOptions) (*Claims, error) {
	if c.verificationKey == nil {
		return nil, errors.New("no verification key configured")
	}
	raw := []byte(token)
	message, err := jws.Parse(raw)
	if err != nil {
		return nil, verificationError(ErrMalformedToken, err)
	}
	if len(message.Signatures()) != 1 {
		return nil, verificationError(ErrMalformedToken, errors.New("incorrect amount of signatures in JWT"))
	}
	alg := message.Signatures()[0].ProtectedHeaders().Algorithm()
	if alg != options.Algorithm {
		return nil, verificationError(ErrAlgorithmMismatch, fmt.Errorf("expected %s, got %s", options.Algorithm, alg))
	}
	if _, err = jws.Verify(raw, jws.WithKey(options.Algorithm, c.verificationKey)); err != nil {
		return nil, verificationError(ErrInvalidSignature, err)
	}
	// the signature object contains numbers that don't fit a float64, keep it as raw JSON
	parsed, err := jwt.Parse(raw, jwt.WithVerify(false), jwt.WithValidate(false), jwt.WithTypedClaim(signatureClaim, json.RawMessage{}))
	if err != nil {
		return nil, verificationError(ErrMalformedToken, err)
	}
	if options.Subject != "" && parsed.Subject() != options.Subject {
		return nil, verificationError(ErrSubjectMismatch, fmt.Errorf("expected %s, got %s", options.Subject, parsed.Subject()))
	}
	if err = jwt.Validate(parsed, jwt.WithAcceptableSkew(options.ClockSkew)); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) || errors.Is(err, jwt.ErrTokenNotYetValid()) {
			return nil, verificationError(ErrTokenExpired, err)
		}
		return nil, verificationError(ErrInvalidClaims, err)
	}
	return claimsOf(parsed)
}

func claimsOf(parsed jwt.Token) (*Claims, error) {
	result := &Claims{
		ID:       parsed.JwtID(),
		Issuer:   parsed.Issuer(),
		Subject:  parsed.Subject(),
		IssuedAt: parsed.IssuedAt(),
	}
	private := parsed.PrivateClaims()
	result.Status, _ = private[statusClaim].(string)
	result.Message, _ = private[messageClaim].(string)
	if attributes, ok := private[attributesClaim].(map[string]interface{}); ok {
		result.Attributes = make(map[string]string, len(attributes))
		for name, value := range attributes {
			result.Attributes[name] = attributeValue(value)
		}
	}
	if signature, ok := private[signatureClaim].(json.RawMessage); ok {
		payload, err := ParseSignaturePayload(signature)
		if err != nil {
			return nil, err
		}
		result.Signature = payload
	}
	return result, nil
}

func attributeValue(value interface{}) string {
	if str, ok := value.(string); ok {
		return str
	}
	data, _ := json.Marshal(value)
	return string(data)
}
