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
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	irmago "github.com/privacybydesign/irmago"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	for _, value := range []string{"disclosure", "DISCLOSURE", "Disclosure"} {
		kind, err := ParseKind(value)

		require.NoError(t, err)
		assert.Equal(t, Disclosure, kind)
	}
	t.Run("unknown", func(t *testing.T) {
		_, err := ParseKind("revocation")

		assert.ErrorIs(t, err, ErrUnknownKind)
		assert.EqualError(t, err, "unknown session kind: revocation")
	})
}

func Test_kindTable(t *testing.T) {
	table, err := kindTable(DefaultConfig())

	require.NoError(t, err)
	disclosure := table[Disclosure]
	assert.Equal(t, "sprequest", disclosure.requestClaim)
	assert.Equal(t, "getproof", disclosure.resultResource)
	assert.Equal(t, jwa.RS256, disclosure.signOptions.Algorithm)
	assert.Equal(t, "diva", disclosure.signOptions.Issuer)
	assert.Equal(t, "verification_request", disclosure.signOptions.Subject)
	assert.Equal(t, "disclosure_result", disclosure.verifyOptions.Subject)
	assert.False(t, disclosure.returnsToken)
	signature := table[Signature]
	assert.Equal(t, "absrequest", signature.requestClaim)
	assert.Equal(t, "getsignature", signature.resultResource)
	assert.Equal(t, "abs_result", signature.verifyOptions.Subject)
	assert.True(t, signature.returnsToken)
	issuance := table[Issuance]
	assert.Equal(t, "iprequest", issuance.requestClaim)
	assert.Empty(t, issuance.resultResource)
	assert.Equal(t, 600, issuance.validity)
	assert.Equal(t, 600, issuance.timeout)

	t.Run("issuance doesn't need a result algorithm", func(t *testing.T) {
		config := DefaultConfig()
		config.Issuance.Result.Algorithm = ""

		_, err := kindTable(config)

		assert.NoError(t, err)
	})
	t.Run("request builders and actions", func(t *testing.T) {
		content := SingleAttribute("irma-demo.MijnOverheid.address.city", "City")
		options := StartOptions{Message: "I agree", Credentials: []Credential{{Credential: "irma-demo.MijnOverheid.root"}}}

		assert.Equal(t, irmago.ActionDisclosing, disclosure.action)
		assert.Equal(t, disclosureRequest{Content: content}, disclosure.buildRequest(content, options))
		assert.Equal(t, irmago.ActionSigning, signature.action)
		assert.Equal(t, signatureRequest{Message: "I agree", MessageType: "STRING", Content: content}, signature.buildRequest(content, options))
		assert.Equal(t, irmago.ActionIssuing, issuance.action)
		assert.Equal(t, issuanceRequest{Credentials: options.Credentials, Disclose: content}, issuance.buildRequest(content, options))
	})
	t.Run("clock skew is applied to result verification", func(t *testing.T) {
		config := DefaultConfig()
		config.ClockSkew = time.Minute

		table, err := kindTable(config)

		require.NoError(t, err)
		assert.Equal(t, time.Minute, table[Disclosure].verifyOptions.ClockSkew)
		assert.Equal(t, time.Minute, table[Signature].verifyOptions.ClockSkew)
	})
	t.Run("request algorithms need different key types", func(t *testing.T) {
		config := DefaultConfig()
		config.Signature.Request.Algorithm = "HS256"

		_, err := kindTable(config)

		assert.EqualError(t, err, "SIGNATURE: request algorithm HS256 needs a oct key, but the signing key is loaded as RSA key for DISCLOSURE")
	})
	t.Run("result algorithms need different key types", func(t *testing.T) {
		config := DefaultConfig()
		config.Signature.Result.Algorithm = "ES256"

		_, err := kindTable(config)

		assert.EqualError(t, err, "SIGNATURE: result algorithm ES256 needs a EC key, but the IRMA server key is loaded as RSA key for DISCLOSURE")
	})
	t.Run("same key type with different algorithms", func(t *testing.T) {
		config := DefaultConfig()
		config.Issuance.Request.Algorithm = "PS512"
		config.Signature.Result.Algorithm = "RS384"

		_, err := kindTable(config)

		assert.NoError(t, err)
	})
	t.Run("issuance result algorithm is ignored", func(t *testing.T) {
		config := DefaultConfig()
		config.Issuance.Result.Algorithm = "HS256"

		_, err := kindTable(config)

		assert.NoError(t, err)
	})
	t.Run("invalid result algorithm", func(t *testing.T) {
		config := DefaultConfig()
		config.Disclosure.Result.Algorithm = "XX256"

		_, err := kindTable(config)

		assert.ErrorContains(t, err, "DISCLOSURE: result: unsupported signature algorithm")
	})
}

func TestSingleAttribute(t *testing.T) {
	content := SingleAttribute("irma-demo.MijnOverheid.address.city", "City")

	assert.Equal(t, Content{{Label: "City", Attributes: []string{"irma-demo.MijnOverheid.address.city"}}}, content)
}

func TestLocalStatus_IsTerminal(t *testing.T) {
	assert.False(t, Pending.IsTerminal())
	assert.True(t, Completed.IsTerminal())
	assert.True(t, Aborted.IsTerminal())
}
