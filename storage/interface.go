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

	"github.com/nuts-foundation/irma-broker/core"
)

// ErrNotFound is returned when the requested key does not exist (or has expired).
var ErrNotFound = errors.New("not found")

// Engine defines the interface for the storage engine.
type Engine interface {
	core.Engine
	core.Configurable
	core.Runnable

	// GetSessionDatabase returns the SessionDatabase selected by the configuration.
	GetSessionDatabase() SessionDatabase
}

// SessionDatabase is a database that holds session data on a KV basis.
// Keys are IRMA session IDs, relying party session IDs, etc.
// All entries are stored with a TTL, so they will be removed automatically.
type SessionDatabase interface {
	// GetStore returns a SessionStore with the given keys as key prefixes.
	// The keys are used to logically partition the store, eg: IRMA session status and relying party sessions must not overlap.
	// The TTL is the time-to-live for the entries in the store.
	GetStore(ttl time.Duration, keys ...string) SessionStore
	// Close stops any background processes and closes the database.
	Close()
}

// UpdateFunc is called by SessionStore.Update with the current entry decoded into the target.
// It returns whether the (modified) target must be written back.
type UpdateFunc func(exists bool) (bool, error)

// SessionStore is a key-value store that holds session data.
// The SessionStore is an abstraction for underlying storage, it automatically adds prefixes for logical partitions.
// Values are stored as JSON.
type SessionStore interface {
	// Delete deletes the entry for the given key.
	// It does not return an error if the key does not exist.
	Delete(ctx context.Context, key string) error
	// Exists returns true if the key exists.
	Exists(ctx context.Context, key string) bool
	// Get returns the value for the given key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string, target interface{}) error
	// Put stores the given value for the given key.
	Put(ctx context.Context, key string, value interface{}) error
	// Update reads the entry for the given key into target (which is reset first), calls fn and writes target back
	// if fn returns true. The read-modify-write is atomic with respect to other Update calls on the same key:
	// backends either serialize them or retry fn on a concurrent modification.
	Update(ctx context.Context, key string, target interface{}, fn UpdateFunc) error
}

// sessionBackend is implemented by the concrete storage technologies. It works on raw values and full keys.
type sessionBackend interface {
	get(ctx context.Context, key string) ([]byte, error)
	put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delete(ctx context.Context, key string) error
	// update calls fn with the current value (nil if absent) and stores the result, unless it is nil.
	update(ctx context.Context, key string, ttl time.Duration, fn func(current []byte) ([]byte, error)) error
	close() error
}
