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
	"time"

	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/irma"
	"github.com/nuts-foundation/irma-broker/orchestrator/log"
	"github.com/nuts-foundation/irma-broker/storage"
	"github.com/nuts-foundation/irma-broker/token"
	"github.com/prometheus/client_golang/prometheus"
)

const engineName = "IRMA"

// Engine makes the Orchestrator available as engine: it's configured from the irma config key and stores its
// sessions in the session database of the storage engine.
type Engine struct {
	*Orchestrator
	config        Config
	storageEngine storage.Engine
	registerer    prometheus.Registerer
}

var _ core.Injectable = (*Engine)(nil)
var _ core.Configurable = (*Engine)(nil)
var _ Service = (*Engine)(nil)

// NewEngine creates a new IRMA engine. The storage engine must be configured before this engine.
func NewEngine(storageEngine storage.Engine) *Engine {
	return &Engine{
		config:        DefaultConfig(),
		storageEngine: storageEngine,
		registerer:    prometheus.DefaultRegisterer,
	}
}

func (e *Engine) Name() string {
	return engineName
}

func (e *Engine) ConfigKey() string {
	return ConfigKey
}

func (e *Engine) Config() interface{} {
	return &e.config
}

// Configure loads the keys and sets up the client for the IRMA API server.
func (e *Engine) Configure(serverConfig core.ServerConfig) error {
	if err := e.config.validate(); err != nil {
		return err
	}
	if serverConfig.Strictmode && !strings.HasPrefix(strings.ToLower(e.config.ServerURL), "https://") {
		return errors.New("irma.serverurl must use HTTPS in strictmode")
	}
	codec, err := e.loadCodec()
	if err != nil {
		return err
	}
	httpClient := core.NewStrictHTTPClient(serverConfig.Strictmode, e.config.ClientTimeout, nil)
	client := irma.NewHTTPClient(e.config.ServerURL, httpClient, log.Logger())
	database := e.storageEngine.GetSessionDatabase()
	if database == nil {
		return errors.New("session database is not available")
	}
	e.Orchestrator, err = newOrchestrator(e.config, client, codec, database, e.registerer)
	if err != nil {
		return fmt.Errorf("unable to configure IRMA sessions: %w", err)
	}
	log.Logger().Infof("IRMA API server: %s", client.ServerURL())
	return nil
}

// loadCodec reads the keys for the algorithms of disclosure sessions. Config.validate checks other kinds use the same key types.
func (e *Engine) loadCodec() (*token.Codec, error) {
	signAlg, err := token.ParseAlgorithm(e.config.Disclosure.Request.Algorithm)
	if err != nil {
		return nil, err
	}
	signingKey, err := token.LoadKey(e.config.SigningKeyFile, signAlg)
	if err != nil {
		return nil, fmt.Errorf("unable to load signing key: %w", err)
	}
	verifyAlg, err := token.ParseAlgorithm(e.config.Disclosure.Result.Algorithm)
	if err != nil {
		return nil, err
	}
	publicKey, err := token.LoadKey(e.config.PublicKeyFile, verifyAlg)
	if err != nil {
		return nil, fmt.Errorf("unable to load IRMA API server public key: %w", err)
	}
	return token.NewCodec(signingKey, publicKey)
}

// Diagnostics reports the IRMA API server and how long session data is kept.
func (e *Engine) Diagnostics() []core.DiagnosticResult {
	return []core.DiagnosticResult{
		&core.GenericDiagnosticResult{Title: "IRMA API server", Outcome: e.config.ServerURL},
		&core.GenericDiagnosticResult{Title: "Session TTL", Outcome: ttlString(e.config.SessionTTL)},
		&core.GenericDiagnosticResult{Title: "Relying session TTL", Outcome: ttlString(e.config.RelyingSessionTTL)},
	}
}

func ttlString(ttl time.Duration) string {
	if ttl == 0 {
		return "never expires"
	}
	return ttl.String()
}
