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

// DefaultConfig returns the default configuration for the storage engine.
func DefaultConfig() Config {
	return Config{}
}

// Config specifies config for the storage engine.
// At most one session backend can be configured, if none is configured session data is kept in memory.
type Config struct {
	Redis     RedisConfig     `koanf:"redis"`
	Memcached MemcachedConfig `koanf:"memcached"`
}
