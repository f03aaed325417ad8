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
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/storage/log"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// optimisticUpdateAttempts is the number of times a conflicting update is retried before giving up.
var optimisticUpdateAttempts uint = 10

// optimisticUpdateDelay is the delay between retries of a conflicting update.
var optimisticUpdateDelay = 10 * time.Millisecond

// RedisConfig specifies config for Redis databases.
type RedisConfig struct {
	Address  string              `koanf:"address"`
	Username string              `koanf:"username"`
	Password string              `koanf:"password"`
	Database string              `koanf:"database"`
	Sentinel RedisSentinelConfig `koanf:"sentinel"`
}

// isConfigured returns true if config the indicates Redis support should be enabled.
func (r RedisConfig) isConfigured() bool {
	return len(r.Address) > 0
}

func (r RedisConfig) parse() (*redis.Options, error) {
	// if not an address URL, assume simply TCP with host:port
	addr := r.Address
	if !isRedisURL(addr) {
		addr = "redis://" + addr
	}

	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, err
	}

	// Setup user/password auth
	if len(r.Username) > 0 {
		opts.Username = r.Username
	}
	if len(r.Password) > 0 {
		opts.Password = r.Password
	}
	return opts, nil
}

// RedisSentinelConfig specifies properties for connecting to a Redis Sentinel cluster.
type RedisSentinelConfig struct {
	Master   string   `koanf:"master"`
	Nodes    []string `koanf:"nodes"`
	Username string   `koanf:"username"`
	Password string   `koanf:"password"`
}

func (r RedisSentinelConfig) enabled() bool {
	return r.Master != "" || len(r.Nodes) > 0
}

// parse builds redis.FailoverOptions from the given base options and the Sentinel-specific configuration.
func (r RedisSentinelConfig) parse(baseOpts redis.Options) (*redis.FailoverOptions, error) {
	if r.Master == "" {
		return nil, errors.New("master is not configured")
	}
	if len(r.Nodes) == 0 {
		return nil, errors.New("node addresses are not configured")
	}
	return &redis.FailoverOptions{
		MasterName:       r.Master,
		SentinelAddrs:    r.Nodes,
		SentinelUsername: r.Username,
		SentinelPassword: r.Password,
		Username:         baseOpts.Username,
		Password:         baseOpts.Password,
		DB:               baseOpts.DB,
		MaxRetries:       baseOpts.MaxRetries,
		DialTimeout:      baseOpts.DialTimeout,
		ReadTimeout:      baseOpts.ReadTimeout,
		WriteTimeout:     baseOpts.WriteTimeout,
		PoolSize:         baseOpts.PoolSize,
		TLSConfig:        baseOpts.TLSConfig,
	}, nil
}

func isRedisURL(address string) bool {
	return strings.HasPrefix(address, "redis://") ||
		strings.HasPrefix(address, "rediss://") ||
		strings.HasPrefix(address, "unix://")
}

// createRedisClient creates a regular or Sentinel-backed client from the given config.
func createRedisClient(config RedisConfig) (redis.UniversalClient, error) {
	opts, err := config.parse()
	if err != nil {
		return nil, err
	}
	redis.SetLogger(redisLogWriter{logger: log.Logger()})
	if config.Sentinel.enabled() {
		sentinelOpts, err := config.Sentinel.parse(*opts)
		if err != nil {
			return nil, fmt.Errorf("unable to configure Redis Sentinel client: %w", err)
		}
		return redis.NewFailoverClient(sentinelOpts), nil
	}
	return redis.NewClient(opts), nil
}

// NewRedisSessionDatabase creates a SessionDatabase backed by the given Redis client.
// All keys are prefixed with the given prefix (if not empty), so multiple instances can share a Redis database.
func NewRedisSessionDatabase(client redis.UniversalClient, prefix string) SessionDatabase {
	return newSessionDatabase(&redisBackend{client: client, prefix: prefix})
}

type redisBackend struct {
	client redis.UniversalClient
	prefix string
}

func (r *redisBackend) get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *redisBackend) put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, redisExpiration(ttl)).Err()
}

func (r *redisBackend) delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// update uses WATCH/MULTI/EXEC: if the key is modified by another client between reading and writing,
// the transaction fails and fn is called again on the fresh value.
func (r *redisBackend) update(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error {
	fullKey := r.key(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			current = nil
		} else if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, next, redisExpiration(ttl))
			return nil
		})
		return err
	}
	return retry.Do(func() error {
		return r.client.Watch(ctx, txf, fullKey)
	},
		retry.Context(ctx),
		retry.Attempts(optimisticUpdateAttempts),
		retry.Delay(optimisticUpdateDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if errors.Is(err, redis.TxFailedErr) {
				log.Logger().WithField(core.LogFieldStore, fullKey).Debug("Concurrent modification of session entry, retrying")
				return true
			}
			return false
		}),
	)
}

func (r *redisBackend) close() error {
	return r.client.Close()
}

func (r *redisBackend) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + "/" + key
}

// redisExpiration maps a TTL to Redis semantics, where 0 means "no expiration".
func redisExpiration(ttl time.Duration) time.Duration {
	if ttl < 0 {
		return 0
	}
	return ttl
}

// redisLogWriter is a wrapper to redirect redis log to our logger
type redisLogWriter struct {
	logger *logrus.Entry
}

// Printf expects entries in the form:
// redis: sentinel.go:628: sentinel: new master="mymaster" addr="172.20.0.4:6379"
// All logs are written as Warning
func (t redisLogWriter) Printf(_ context.Context, format string, v ...interface{}) {
	t.logger.Warnf(format, v...)
}
