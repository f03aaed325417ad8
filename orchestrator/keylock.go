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

import "sync"

// keyLock serializes work per key (e.g. per IRMA session) within this process.
// Entries are removed when no longer held, so it doesn't grow with the number of sessions.
type keyLock struct {
	mux   sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: map[string]*refMutex{}}
}

// lock blocks until the lock for the given key is acquired. The returned function releases it.
func (k *keyLock) lock(key string) func() {
	k.mux.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mux.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mux.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mux.Unlock()
	}
}
