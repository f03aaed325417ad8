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
	"os"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// ErrUnsupportedAlgorithm is returned when an algorithm is configured that can't be used for signing JWTs.
var ErrUnsupportedAlgorithm = errors.New("unsupported signature algorithm")

// ParseAlgorithm parses a JWS algorithm name (e.g. RS256). The 'none' algorithm is not accepted.
func ParseAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	var alg jwa.SignatureAlgorithm
	if err := alg.Accept(name); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
	if alg == jwa.NoSignature {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	}
	return alg, nil
}

// KeyType returns the type of key the algorithm signs with, or jwa.InvalidKeyType if it's unknown.
func KeyType(alg jwa.SignatureAlgorithm) jwa.KeyType {
	switch alg {
	case jwa.HS256, jwa.HS384, jwa.HS512:
		return jwa.OctetSeq
	case jwa.RS256, jwa.RS384, jwa.RS512, jwa.PS256, jwa.PS384, jwa.PS512:
		return jwa.RSA
	case jwa.ES256, jwa.ES384, jwa.ES512, jwa.ES256K:
		return jwa.EC
	case jwa.EdDSA:
		return jwa.OKP
	default:
		return jwa.InvalidKeyType
	}
}

// ParseKey parses key material for the given algorithm.
// For HMAC algorithms (HS256, HS384, HS512) the data is the shared secret.
// For other algorithms it must be a PEM encoded RSA or EC key (private key for signing, public key for verifying).
func ParseKey(data []byte, alg jwa.SignatureAlgorithm) (interface{}, error) {
	if len(data) == 0 {
		return nil, errors.New("no key material")
	}
	if alg.IsSymmetric() {
		return data, nil
	}
	key, err := jwk.ParseKey(data, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("unable to parse PEM key: %w", err)
	}
	return key, nil
}

// LoadKey reads key material from a file and parses it using ParseKey.
func LoadKey(file string, alg jwa.SignatureAlgorithm) (interface{}, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read key file: %w", err)
	}
	return ParseKey(data, alg)
}

// publicKeyOf returns the key to verify signatures with: private keys are converted to their public key.
func publicKeyOf(key interface{}) (interface{}, error) {
	if jwkKey, ok := key.(jwk.Key); ok {
		return jwk.PublicKeyOf(jwkKey)
	}
	return key, nil
}
