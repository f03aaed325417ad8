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

package irma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nuts-foundation/irma-broker/core"
	irmago "github.com/privacybydesign/irmago"
	"github.com/sirupsen/logrus"
)

// Server statuses as reported by the IRMA API server. Any other status means the session is still pending.
const (
	StatusInitialized = string(irmago.ServerStatusInitialized)
	StatusConnected   = string(irmago.ServerStatusConnected)
	StatusCancelled   = string(irmago.ServerStatusCancelled)
	StatusDone        = string(irmago.ServerStatusDone)
	// StatusNotFound is not reported by the server itself: it's used for sessions the server doesn't know (anymore).
	StatusNotFound = "NOT_FOUND"
)

const (
	// ProofResource is the path (relative to the session) of a disclosure proof.
	ProofResource = "getproof"
	// SignatureResource is the path (relative to the session) of an attribute-based signature.
	SignatureResource = "getsignature"
)

// QRContent is the session pointer returned by the IRMA API server when starting a session.
// It's displayed as QR code to the user. The u member holds the session token.
// It's kept as map since irmago.Qr only carries u and irmaqr, while v2 servers also return v and vmax.
type QRContent map[string]interface{}

// Action returns the irmaqr member of the session pointer.
func (q QRContent) Action() irmago.Action {
	action, _ := q["irmaqr"].(string)
	return irmago.Action(action)
}

// SessionToken returns the u member of the session pointer.
func (q QRContent) SessionToken() string {
	token, _ := q["u"].(string)
	return token
}

// HTTPClient calls the session endpoints of an IRMA API server.
type HTTPClient struct {
	serverURL  string
	httpClient core.HTTPRequestDoer
	log        *logrus.Entry
}

// NewHTTPClient creates a new client for the IRMA API server at the given base URL.
func NewHTTPClient(serverURL string, httpClient core.HTTPRequestDoer, log *logrus.Entry) *HTTPClient {
	return &HTTPClient{
		serverURL:  strings.TrimSuffix(serverURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// ServerURL returns the base URL of the IRMA API server.
func (hb HTTPClient) ServerURL() string {
	return hb.serverURL
}

// StartSession posts the signed session request (as text/plain) to the given endpoint and returns the session pointer.
func (hb HTTPClient) StartSession(ctx context.Context, endpoint string, signedRequest string) (QRContent, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, hb.serverURL+endpoint, strings.NewReader(signedRequest))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "text/plain")
	data, err := hb.do(request)
	if err != nil {
		return nil, err
	}
	var result QRContent
	if err = json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unable to unmarshal response: %w, %s", err, string(data))
	}
	if result.SessionToken() == "" {
		return nil, errors.New("response does not contain a session token")
	}
	return result, nil
}

// Status returns the server status of the given session.
func (hb HTTPClient) Status(ctx context.Context, endpoint string, sessionID string) (string, error) {
	data, err := hb.get(ctx, endpoint, sessionID, "status")
	if err != nil {
		return "", err
	}
	return parseStatus(data), nil
}

// Result retrieves a session result (ProofResource or SignatureResource), which is a JWT signed by the server.
func (hb HTTPClient) Result(ctx context.Context, endpoint string, sessionID string, resource string) (string, error) {
	data, err := hb.get(ctx, endpoint, sessionID, resource)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (hb HTTPClient) get(ctx context.Context, endpoint string, sessionID string, resource string) ([]byte, error) {
	requestURL := hb.serverURL + endpoint + "/" + url.PathEscape(sessionID) + "/" + resource
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	return hb.do(request)
}

func (hb HTTPClient) do(request *http.Request) ([]byte, error) {
	response, err := hb.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to call endpoint: %w", err)
	}
	defer response.Body.Close()
	if err = core.TestResponseCodeWithLog(http.StatusOK, response, hb.log); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}
	return data, nil
}

// parseStatus accepts both a bare status and a JSON string (the server responds with "DONE", including quotes).
func parseStatus(data []byte) string {
	status := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(status); err == nil && strings.HasPrefix(status, `"`) {
		return strings.TrimSpace(unquoted)
	}
	return status
}
