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

package core

const (
	// LogFieldModule is the log field for the module name.
	LogFieldModule = "module"

	// LogFieldStore is the log field key for the name of a store managed by the storage module.
	LogFieldStore = "store"

	// LogFieldSessionID is the log field key for the ID the IRMA server assigned to a session.
	LogFieldSessionID = "sessionID"
	// LogFieldSessionKind is the log field key for the kind of IRMA session (disclosure, signature, issuance).
	LogFieldSessionKind = "sessionKind"
	// LogFieldRelyingSessionID is the log field key for the ID of the relying party session proofs are collected in.
	LogFieldRelyingSessionID = "relyingSessionID"
	// LogFieldRemoteStatus is the log field key for the session status as reported by the IRMA server.
	LogFieldRemoteStatus = "remoteStatus"
	// LogFieldLocalStatus is the log field key for the locally tracked session status.
	LogFieldLocalStatus = "localStatus"
)
