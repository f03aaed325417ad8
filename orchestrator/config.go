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
	"time"

	"github.com/nuts-foundation/irma-broker/token"
)

// ConfigKey is the key of the engine's configuration.
const ConfigKey = "irma"

// Config holds the configuration of the IRMA session orchestrator.
type Config struct {
	// ServerURL is the base URL of the IRMA API server.
	ServerURL string `koanf:"serverurl"`
	// SigningKeyFile contains the key used to sign session requests: a PEM encoded private key, or the shared secret for HS* algorithms.
	SigningKeyFile string `koanf:"signingkeyfile"`
	// PublicKeyFile contains the PEM encoded public key (or shared secret for HS* algorithms) of the IRMA API server.
	PublicKeyFile string `koanf:"publickeyfile"`
	// ClientTimeout is the timeout for calls to the IRMA API server.
	ClientTimeout time.Duration `koanf:"clienttimeout"`
	// ClockSkew is the allowed clock difference with the IRMA API server when validating session results.
	ClockSkew time.Duration `koanf:"clockskew"`
	// SessionTTL is the time IRMA session records are kept, 0 means forever.
	SessionTTL time.Duration `koanf:"sessionttl"`
	// RelyingSessionTTL is the time relying sessions (and their proofs) are kept, 0 means forever.
	RelyingSessionTTL time.Duration `koanf:"relyingsessionttl"`
	Poll              PollConfig    `koanf:"poll"`
	Disclosure        KindConfig    `koanf:"disclosure"`
	Signature         KindConfig    `koanf:"signature"`
	Issuance          KindConfig    `koanf:"issuance"`
}

// PollConfig configures WaitForCompletion.
type PollConfig struct {
	Interval time.Duration `koanf:"interval"`
	Timeout  time.Duration `koanf:"timeout"`
	// OnError names the StatusErrorPolicy applied when polling the remote status fails: "notfound" or "fail".
	OnError string `koanf:"onerror"`
}

// KindConfig holds the configuration for a single session kind.
type KindConfig struct {
	Endpoint string `koanf:"endpoint"`
	// Validity and Timeout (both in seconds) are passed to the IRMA API server in the session request.
	Validity int              `koanf:"validity"`
	Timeout  int              `koanf:"timeout"`
	Request  JWTRequestConfig `koanf:"request"`
	Result   JWTVerifyConfig  `koanf:"result"`
}

// JWTRequestConfig specifies how session requests are signed.
type JWTRequestConfig struct {
	Algorithm string `koanf:"algorithm"`
	Issuer    string `koanf:"issuer"`
	Subject   string `koanf:"subject"`
}

// JWTVerifyConfig specifies how session results are verified.
type JWTVerifyConfig struct {
	Algorithm string `koanf:"algorithm"`
	Subject   string `koanf:"subject"`
}

// DefaultConfig returns the default configuration, compatible with IRMA API server v2.
func DefaultConfig() Config {
	return Config{
		ClientTimeout: 30 * time.Second,
		ClockSkew:     5 * time.Second,
		Poll: PollConfig{
			Interval: time.Second,
			Timeout:  10 * time.Minute,
			OnError:  notFoundOnErrorPolicy,
		},
		Disclosure: KindConfig{
			Endpoint: "/api/v2/verification",
			Validity: 60,
			Timeout:  600,
			Request:  JWTRequestConfig{Algorithm: "RS256", Issuer: "diva", Subject: "verification_request"},
			Result:   JWTVerifyConfig{Algorithm: "RS256", Subject: "disclosure_result"},
		},
		Signature: KindConfig{
			Endpoint: "/api/v2/signature",
			Validity: 60,
			Timeout:  600,
			Request:  JWTRequestConfig{Algorithm: "RS256", Issuer: "diva", Subject: "signature_request"},
			Result:   JWTVerifyConfig{Algorithm: "RS256", Subject: "abs_result"},
		},
		Issuance: KindConfig{
			Endpoint: "/api/v2/issue",
			Validity: 600,
			Timeout:  600,
			Request:  JWTRequestConfig{Algorithm: "RS256", Issuer: "diva", Subject: "issue_request"},
		},
	}
}

func (c Config) validate() error {
	if c.ServerURL == "" {
		return errors.New("irma.serverurl is required")
	}
	if c.SigningKeyFile == "" {
		return errors.New("irma.signingkeyfile is required")
	}
	if c.PublicKeyFile == "" {
		return errors.New("irma.publickeyfile is required")
	}
	if c.ClockSkew < 0 {
		return errors.New("irma.clockskew can't be negative")
	}
	if _, err := statusErrorPolicy(c.Poll.OnError); err != nil {
		return err
	}
	// one key pair serves all kinds, so their algorithms must agree on the key type before keys are loaded
	if _, err := kindTable(c); err != nil {
		return err
	}
	return nil
}

func (k KindConfig) settings(kind Kind, requestClaim string, resultResource string, clockSkew time.Duration) (kindSettings, error) {
	if k.Endpoint == "" {
		return kindSettings{}, fmt.Errorf("%s: endpoint is not configured", kind)
	}
	signAlg, err := token.ParseAlgorithm(k.Request.Algorithm)
	if err != nil {
		return kindSettings{}, fmt.Errorf("%s: request: %w", kind, err)
	}
	result := kindSettings{
		kind:         kind,
		endpoint:     k.Endpoint,
		requestClaim: requestClaim,
		signOptions: token.SignOptions{
			Algorithm: signAlg,
			Issuer:    k.Request.Issuer,
			Subject:   k.Request.Subject,
		},
		resultResource: resultResource,
		validity:       k.Validity,
		timeout:        k.Timeout,
	}
	if resultResource != "" {
		verifyAlg, err := token.ParseAlgorithm(k.Result.Algorithm)
		if err != nil {
			return kindSettings{}, fmt.Errorf("%s: result: %w", kind, err)
		}
		result.verifyOptions = token.VerifyOptions{Algorithm: verifyAlg, Subject: k.Result.Subject, ClockSkew: clockSkew}
	}
	return result, nil
}
