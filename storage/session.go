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
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"
)

var _ SessionDatabase = (*sessionDatabase)(nil)
var _ SessionStore = (*sessionStore)(nil)

// sessionDatabase implements SessionDatabase on top of a sessionBackend.
// Stores returned by GetStore share the backend, only their key prefixes and TTL differ.
type sessionDatabase struct {
	backend sessionBackend
}

func newSessionDatabase(backend sessionBackend) *sessionDatabase {
	return &sessionDatabase{backend: backend}
}

func (s *sessionDatabase) GetStore(ttl time.Duration, keys ...string) SessionStore {
	return sessionStore{
		backend:  s.backend,
		ttl:      ttl,
		prefixes: keys,
	}
}

func (s *sessionDatabase) Close() {
	_ = s.backend.close()
}

type sessionStore struct {
	backend  sessionBackend
	ttl      time.Duration
	prefixes []string
}

func (s sessionStore) Delete(ctx context.Context, key string) error {
	return s.backend.delete(ctx, s.getFullKey(key))
}

func (s sessionStore) Exists(ctx context.Context, key string) bool {
	_, err := s.backend.get(ctx, s.getFullKey(key))
	return err == nil
}

func (s sessionStore) Get(ctx context.Context, key string, target interface{}) error {
	data, err := s.backend.get(ctx, s.getFullKey(key))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func (s sessionStore) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.backend.put(ctx, s.getFullKey(key), data, s.ttl)
}

func (s sessionStore) Update(ctx context.Context, key string, target interface{}, fn UpdateFunc) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.New("update target must be a non-nil pointer")
	}
	return s.backend.update(ctx, s.getFullKey(key), s.ttl, func(current []byte) ([]byte, error) {
		// the backend might call us more than once, so start from a clean target every time
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
		exists := current != nil
		if exists {
			if err := json.Unmarshal(current, target); err != nil {
				return nil, err
			}
		}
		write, err := fn(exists)
		if err != nil || !write {
			return nil, err
		}
		return json.Marshal(target)
	})
}

func (s sessionStore) getFullKey(key string) string {
	return strings.Join(append(append([]string{}, s.prefixes...), key), "/")
}
