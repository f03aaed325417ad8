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
	"sync"
	"time"

	"github.com/nuts-foundation/irma-broker/storage/log"

	gocache "github.com/patrickmn/go-cache"
)

var sessionStorePruneInterval = 10 * time.Minute

// NewInMemorySessionDatabase creates a new in memory session database.
// Entries do not survive a restart and are not shared between instances.
func NewInMemorySessionDatabase() SessionDatabase {
	return newSessionDatabase(newInMemoryBackend())
}

type inMemoryBackend struct {
	// mux serializes updates, plain reads and writes are handled by go-cache's own locking.
	mux      sync.Mutex
	cache    *gocache.Cache
	cancel   context.CancelFunc
	routines sync.WaitGroup
}

func newInMemoryBackend() *inMemoryBackend {
	result := &inMemoryBackend{
		// go-cache's own janitor can't be stopped, so pruning is done by startPruning
		cache: gocache.New(gocache.NoExpiration, 0),
	}
	var ctx context.Context
	ctx, result.cancel = context.WithCancel(context.Background())
	result.startPruning(ctx, sessionStorePruneInterval)
	return result
}

func (i *inMemoryBackend) startPruning(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	i.routines.Add(1)
	go func() {
		defer i.routines.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				before := i.cache.ItemCount()
				i.cache.DeleteExpired()
				if pruned := before - i.cache.ItemCount(); pruned > 0 {
					log.Logger().Debugf("Pruned %d expired session entries", pruned)
				}
			}
		}
	}()
}

func (i *inMemoryBackend) get(_ context.Context, key string) ([]byte, error) {
	value, ok := i.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return value.([]byte), nil
}

func (i *inMemoryBackend) put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	i.cache.Set(key, value, inMemoryExpiration(ttl))
	return nil
}

func (i *inMemoryBackend) delete(_ context.Context, key string) error {
	i.cache.Delete(key)
	return nil
}

func (i *inMemoryBackend) update(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error {
	i.mux.Lock()
	defer i.mux.Unlock()
	current, err := i.get(ctx, key)
	if err != nil && err != ErrNotFound {
		return err
	}
	next, err := fn(current)
	if err != nil || next == nil {
		return err
	}
	return i.put(ctx, key, next, ttl)
}

func (i *inMemoryBackend) close() error {
	// Signal pruner to stop and wait for it to finish
	i.cancel()
	i.routines.Wait()
	return nil
}

// inMemoryExpiration maps a TTL to go-cache semantics, where 0 means "default expiration".
func inMemoryExpiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}
