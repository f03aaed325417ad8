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

package http

// DefaultConfig returns the default configuration for the HTTP engine.
func DefaultConfig() Config {
	return Config{
		Address: ":1323",
		Log:     LogMetadataLevel,
		RateLimit: RateLimitConfig{
			Sessions: 3600,
			Burst:    30,
		},
	}
}

// Config is the config struct for the HTTP interface.
type Config struct {
	// Address holds the interface address the HTTP service must be bound to, in the format of `interface:port` (e.g. localhost:5555).
	Address string `koanf:"address"`
	// CORS holds the configuration for Cross Origin Resource Sharing.
	CORS CORSConfig `koanf:"cors"`
	// Log specifies what should be logged of HTTP requests.
	Log LogLevel `koanf:"log"`
	// RateLimit limits the number of IRMA sessions that can be started through the API.
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

// LogLevel specifies what to log for incoming HTTP traffic.
type LogLevel string

const (
	// LogNothingLevel indicates nothing will be logged for incoming HTTP traffic.
	LogNothingLevel LogLevel = "nothing"
	// LogMetadataLevel indicates that only metadata (HTTP URI, method, response code, etc) will be logged.
	LogMetadataLevel LogLevel = "metadata"
	// LogMetadataAndBodyLevel indicates that metadata and full request/reply bodies will be logged.
	LogMetadataAndBodyLevel LogLevel = "metadata-and-body"
)

// CORSConfig contains configuration for Cross Origin Resource Sharing.
type CORSConfig struct {
	// Origin specifies the AllowOrigin option. If no origins are given CORS is considered to be disabled.
	Origin []string `koanf:"origin"`
}

// Enabled returns whether CORS is enabled according to this configuration.
func (cors CORSConfig) Enabled() bool {
	return len(cors.Origin) > 0
}

// RateLimitConfig contains the configuration of the session start rate limiter.
type RateLimitConfig struct {
	// Sessions is the number of sessions a client (IP address) may start per hour. 0 disables the limiter.
	Sessions int `koanf:"sessions"`
	// Burst is the number of sessions a client may start at once.
	Burst int `koanf:"burst"`
}
