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

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/storage/log"
	"github.com/redis/go-redis/v9"
)

const engineName = "Storage"

// New creates a new instance of the storage engine.
func New() Engine {
	return &engine{
		config: DefaultConfig(),
	}
}

type engine struct {
	config          Config
	sessionDatabase SessionDatabase
	// redisClient is set when Redis is configured, it's pinged on start to fail fast.
	redisClient redis.UniversalClient
}

func (e *engine) Name() string {
	return engineName
}

func (e *engine) ConfigKey() string {
	return "storage"
}

func (e *engine) Config() interface{} {
	return &e.config
}

func (e *engine) GetSessionDatabase() SessionDatabase {
	return e.sessionDatabase
}

// Configure selects the session backend: Redis if configured, memcached if configured, in-memory otherwise.
func (e *engine) Configure(_ core.ServerConfig) error {
	if e.config.Redis.isConfigured() && e.config.Memcached.isConfigured() {
		return errors.New("only one of Redis and memcached can be configured")
	}
	switch {
	case e.config.Redis.isConfigured():
		client, err := createRedisClient(e.config.Redis)
		if err != nil {
			return fmt.Errorf("unable to configure Redis database: %w", err)
		}
		e.redisClient = client
		e.sessionDatabase = NewRedisSessionDatabase(client, e.config.Redis.Database)
		log.Logger().Info("Redis database support enabled.")
	case e.config.Memcached.isConfigured():
		e.sessionDatabase = NewMemcachedSessionDatabase(createMemcachedClient(e.config.Memcached))
		log.Logger().Info("Memcached database support enabled.")
	default:
		e.sessionDatabase = NewInMemorySessionDatabase()
		log.Logger().Info("No session database configured, session data is kept in memory.")
	}
	return nil
}

// Diagnostics reports which session database is in use.
func (e *engine) Diagnostics() []core.DiagnosticResult {
	return []core.DiagnosticResult{
		&core.GenericDiagnosticResult{Title: "Session database", Outcome: e.backendName()},
	}
}

func (e *engine) backendName() string {
	switch {
	case e.sessionDatabase == nil:
		return "none"
	case e.config.Redis.isConfigured():
		return "redis"
	case e.config.Memcached.isConfigured():
		return "memcached"
	default:
		return "in-memory"
	}
}

func (e *engine) Start() error {
	if e.redisClient != nil {
		if err := e.redisClient.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("unable to connect to Redis database: %w", err)
		}
	}
	return nil
}

func (e *engine) Shutdown() error {
	if e.sessionDatabase != nil {
		e.sessionDatabase.Close()
	}
	return nil
}
