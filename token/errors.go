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
	"errors"
	"fmt"
)

var (
	// ErrMalformedToken is returned when the token is not a compact serialized JWS with a JSON payload.
	ErrMalformedToken = errors.New("malformed token")
	// ErrAlgorithmMismatch is returned when the token was signed with another algorithm than expected.
	ErrAlgorithmMismatch = errors.New("algorithm mismatch")
	// ErrInvalidSignature is returned when the token signature doesn't verify with the configured key.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrSubjectMismatch is returned when the token subject (sub claim) differs from the expected subject.
	ErrSubjectMismatch = errors.New("subject mismatch")
	// ErrTokenExpired is returned when the token has expired (or is not valid yet).
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidClaims is returned when the token claims could not be validated for another reason.
	ErrInvalidClaims = errors.New("invalid claims")
)

// VerificationError is returned when an inbound token can't be verified.
// Reason is one of the Err* sentinel errors of this package, use errors.Is to test for it.
type VerificationError struct {
	Reason error
	Cause  error
}

func (e VerificationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("token verification failed: %s", e.Reason)
	}
	return fmt.Sprintf("token verification failed: %s: %s", e.Reason, e.Cause)
}

func (e VerificationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Cause}
}

func verificationError(reason error, cause error) error {
	return VerificationError{Reason: reason, Cause: cause}
}

// ParseError is returned when the signature payload of a signature result can't be parsed.
type ParseError struct {
	Cause error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("unable to parse signature payload: %s", e.Cause)
}

func (e ParseError) Unwrap() error {
	return e.Cause
}
