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
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/storage/log"
)

// maxMemcachedRelativeExpiration is the largest expiration memcached interprets as relative (30 days).
// Larger values are interpreted as a unix timestamp.
const maxMemcachedRelativeExpiration = 30 * 24 * time.Hour

// MemcachedConfig specifies config for memcached.
type MemcachedConfig struct {
	Address []string `koanf:"address"`
	// Timeout is the socket read/write timeout, 0 means the client default (500ms).
	Timeout time.Duration `koanf:"timeout"`
}

// createMemcachedClient creates a client for the configured servers.
func createMemcachedClient(config MemcachedConfig) *memcache.Client {
	client := memcache.New(config.Address...)
	if config.Timeout > 0 {
		client.Timeout = config.Timeout
	}
	return client
}

// isConfigured returns true if config the indicates memcached support should be enabled.
func (r MemcachedConfig) isConfigured() bool {
	return len(r.Address) > 0
}

// memcacheClient is the subset of *memcache.Client used by the memcached backend.
type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	CompareAndSwap(item *memcache.Item) error
	Delete(key string) error
	Close() error
}

// NewMemcachedSessionDatabase creates a new SessionDatabase using an initialized memcache.Client.
func NewMemcachedSessionDatabase(client *memcache.Client) SessionDatabase {
	return newSessionDatabase(&memcachedBackend{client: client})
}

type memcachedBackend struct {
	client memcacheClient
}

func (m *memcachedBackend) get(_ context.Context, key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

func (m *memcachedBackend) put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return m.client.Set(&memcache.Item{Key: key, Value: value, Expiration: memcachedExpiration(ttl)})
}

func (m *memcachedBackend) delete(_ context.Context, key string) error {
	err := m.client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// update uses gets/cas for existing entries and add for new ones. Both fail if another client wrote the entry
// in the meantime, in which case fn is called again on the fresh value.
func (m *memcachedBackend) update(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error {
	return retry.Do(func() error {
		item, err := m.client.Get(key)
		var current []byte
		switch {
		case errors.Is(err, memcache.ErrCacheMiss):
			item = nil
		case err != nil:
			return err
		default:
			current = item.Value
		}
		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}
		if item == nil {
			return m.client.Add(&memcache.Item{Key: key, Value: next, Expiration: memcachedExpiration(ttl)})
		}
		item.Value = next
		item.Expiration = memcachedExpiration(ttl)
		return m.client.CompareAndSwap(item)
	},
		retry.Context(ctx),
		retry.Attempts(optimisticUpdateAttempts),
		retry.Delay(optimisticUpdateDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if errors.Is(err, memcache.ErrCASConflict) || errors.Is(err, memcache.ErrNotStored) {
				log.Logger().WithField(core.LogFieldStore, key).Debug("Concurrent modification of session entry, retrying")
				return true
			}
			return false
		}),
	)
}

func (m *memcachedBackend) close() error {
	return m.client.Close()
}

// memcachedExpiration converts a TTL to memcached's expiration in seconds. 0 means no expiration.
func memcachedExpiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > maxMemcachedRelativeExpiration {
		return int32(time.Now().Add(ttl).Unix())
	}
	seconds := int32(ttl / time.Second)
	if seconds == 0 {
		// sub-second TTLs would otherwise mean "never expire"
		seconds = 1
	}
	return seconds
}
