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

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestKeyFiles writes a new RSA signing key (PKCS#8) and an unrelated RSA public key (PKIX) to PEM files,
// usable as irma.signingkeyfile and irma.publickeyfile.
func TestKeyFiles(t testing.TB) (signingKeyFile string, publicKeyFile string) {
	dir := t.TempDir()
	signingKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	serverKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	signingKeyFile = filepath.Join(dir, "broker.pem")
	der, err := x509.MarshalPKCS8PrivateKey(signingKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(signingKeyFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0600))

	publicKeyFile = filepath.Join(dir, "irma.pem")
	der, err = x509.MarshalPKIXPublicKey(&serverKey.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(publicKeyFile, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0600))
	return signingKeyFile, publicKeyFile
}
