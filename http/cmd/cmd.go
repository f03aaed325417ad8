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
	"fmt"

	"github.com/nuts-foundation/irma-broker/http"
	"github.com/spf13/pflag"
)

// FlagSet defines the set of flags that sets the engine configuration
func FlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("http", pflag.ContinueOnError)

	defs := http.DefaultConfig()
	flags.String("http.address", defs.Address, "Address and port the server will be listening to.")
	flags.String("http.log", string(defs.Log), fmt.Sprintf("What to log about HTTP requests. Options are '%s', '%s' (log request method, URI, IP and response code), and '%s' (log the request and response body, in addition to the metadata).", http.LogNothingLevel, http.LogMetadataLevel, http.LogMetadataAndBodyLevel))
	flags.StringSlice("http.cors.origin", defs.CORS.Origin, "When set, enables CORS for the HTTP interface, allowing the configured origins. A wildcard origin is not allowed in strict mode.")
	flags.Int("http.ratelimit.sessions", defs.RateLimit.Sessions, "Number of IRMA sessions a client (IP address) can start per hour through the API. 0 disables rate limiting.")
	flags.Int("http.ratelimit.burst", defs.RateLimit.Burst, "Number of IRMA sessions a client can start at once, before rate limiting kicks in.")

	return flags
}
