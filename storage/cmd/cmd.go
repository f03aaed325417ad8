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

package cmd

import (
	"github.com/nuts-foundation/irma-broker/storage"
	"github.com/spf13/pflag"
)

// FlagSet contains the flags of the session database backends. At most one backend can be configured.
func FlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("storage", pflag.ContinueOnError)
	defs := storage.DefaultConfig()
	redisFlags(flagSet, defs.Redis)
	memcachedFlags(flagSet, defs.Memcached)
	return flagSet
}

func redisFlags(flagSet *pflag.FlagSet, defs storage.RedisConfig) {
	flagSet.String("storage.redis.address", defs.Address, "Redis server address, either 'host:port' or a Redis connection URL with scheme, auth and other options. "+
		"Setting this property stores session data in Redis.")
	flagSet.String("storage.redis.username", defs.Username, "Redis username, overrides the username in the connection URL.")
	flagSet.String("storage.redis.password", defs.Password, "Redis password, overrides the password in the connection URL.")
	flagSet.String("storage.redis.database", defs.Database, "Prefix for all Redis keys, allows multiple brokers to share one Redis instance.")
	flagSet.String("storage.redis.sentinel.master", defs.Sentinel.Master, "Name of the Redis Sentinel master. Setting this property enables Redis Sentinel.")
	flagSet.StringSlice("storage.redis.sentinel.nodes", defs.Sentinel.Nodes, "Addresses of the Redis Sentinels to connect to initially. Setting this property enables Redis Sentinel.")
	flagSet.String("storage.redis.sentinel.username", defs.Sentinel.Username, "Username for authenticating to Redis Sentinels.")
	flagSet.String("storage.redis.sentinel.password", defs.Sentinel.Password, "Password for authenticating to Redis Sentinels.")
}

func memcachedFlags(flagSet *pflag.FlagSet, defs storage.MemcachedConfig) {
	flagSet.StringSlice("storage.memcached.address", defs.Address, "Memcached server addresses. Setting this property stores session data in memcached.")
	flagSet.Duration("storage.memcached.timeout", defs.Timeout, "Read/write timeout for memcached servers, 0 uses the client default (500ms).")
}
