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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nuts-foundation/irma-broker/core"
	testhttp "github.com/nuts-foundation/irma-broker/test/http"
	irmago "github.com/privacybydesign/irmago"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_StartSession(t *testing.T) {
	ctx := context.Background()
	t.Run("ok", func(t *testing.T) {
		router := &testhttp.Router{}
		handler := &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: map[string]interface{}{"u": "abc", "v": "2.0", "irmaqr": "disclosing"}}
		router.Handle(http.MethodPost, "/api/v2/verification", handler)
		server := httptest.NewServer(router)
		defer server.Close()
		client := NewHTTPClient(server.URL+"/", http.DefaultClient, nil)

		result, err := client.StartSession(ctx, "/api/v2/verification", "signed.jwt.value")

		require.NoError(t, err)
		assert.Equal(t, "abc", result.SessionToken())
		assert.Equal(t, "disclosing", result["irmaqr"])
		assert.Equal(t, irmago.ActionDisclosing, result.Action())
		assert.Equal(t, "signed.jwt.value", string(handler.RequestData))
		assert.Equal(t, "text/plain", handler.RequestHeaders.Get("Content-Type"))
	})
	t.Run("server error", func(t *testing.T) {
		router := &testhttp.Router{}
		router.Handle(http.MethodPost, "/api/v2/verification", &testhttp.Handler{StatusCode: http.StatusBadRequest, ResponseData: "invalid JWT"})
		server := httptest.NewServer(router)
		defer server.Close()
		client := NewHTTPClient(server.URL, http.DefaultClient, logrus.NewEntry(logrus.StandardLogger()))

		_, err := client.StartSession(ctx, "/api/v2/verification", "signed.jwt.value")

		var httpErr core.HttpError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
		assert.Equal(t, "invalid JWT", string(httpErr.ResponseBody))
	})
	t.Run("response without session token", func(t *testing.T) {
		router := &testhttp.Router{}
		router.Handle(http.MethodPost, "/api/v2/verification", &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: map[string]interface{}{"v": "2.0"}})
		server := httptest.NewServer(router)
		defer server.Close()
		client := NewHTTPClient(server.URL, http.DefaultClient, nil)

		_, err := client.StartSession(ctx, "/api/v2/verification", "signed.jwt.value")

		assert.EqualError(t, err, "response does not contain a session token")
	})
	t.Run("response is not JSON", func(t *testing.T) {
		router := &testhttp.Router{}
		router.Handle(http.MethodPost, "/api/v2/verification", &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: "not JSON"})
		server := httptest.NewServer(router)
		defer server.Close()
		client := NewHTTPClient(server.URL, http.DefaultClient, nil)

		_, err := client.StartSession(ctx, "/api/v2/verification", "signed.jwt.value")

		assert.ErrorContains(t, err, "unable to unmarshal response")
	})
	t.Run("strict mode refuses plain HTTP", func(t *testing.T) {
		client := NewHTTPClient("http://localhost", core.NewStrictHTTPClient(true, 0, nil), nil)

		_, err := client.StartSession(ctx, "/api/v2/verification", "signed.jwt.value")

		assert.ErrorContains(t, err, "strictmode is enabled, but request is not over HTTPS")
	})
}

func TestHTTPClient_Status(t *testing.T) {
	ctx := context.Background()
	router := &testhttp.Router{}
	server := httptest.NewServer(router)
	defer server.Close()
	client := NewHTTPClient(server.URL, http.DefaultClient, nil)

	t.Run("JSON string", func(t *testing.T) {
		router.Handle(http.MethodGet, "/api/v2/signature/abc/status", &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: `"DONE"`})

		status, err := client.Status(ctx, "/api/v2/signature", "abc")

		require.NoError(t, err)
		assert.Equal(t, StatusDone, status)
	})
	t.Run("bare status", func(t *testing.T) {
		router.Handle(http.MethodGet, "/api/v2/signature/abc/status", &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: "CONNECTED\n"})

		status, err := client.Status(ctx, "/api/v2/signature", "abc")

		require.NoError(t, err)
		assert.Equal(t, StatusConnected, status)
	})
	t.Run("unknown session", func(t *testing.T) {
		_, err := client.Status(ctx, "/api/v2/signature", "unknown")

		var httpErr core.HttpError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	})
}

func TestHTTPClient_Result(t *testing.T) {
	router := &testhttp.Router{}
	router.Handle(http.MethodGet, "/api/v2/verification/abc/getproof", &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: "a.b.c\n"})
	server := httptest.NewServer(router)
	defer server.Close()
	client := NewHTTPClient(server.URL, http.DefaultClient, nil)

	result, err := client.Result(context.Background(), "/api/v2/verification", "abc", ProofResource)

	require.NoError(t, err)
	assert.Equal(t, "a.b.c", result)
}

func Test_parseStatus(t *testing.T) {
	assert.Equal(t, "DONE", parseStatus([]byte(`"DONE"`)))
	assert.Equal(t, "DONE", parseStatus([]byte(" DONE \n")))
	assert.Equal(t, `"DONE`, parseStatus([]byte(`"DONE`)))
	assert.Equal(t, "", parseStatus(nil))
}

func TestQRContent_Action(t *testing.T) {
	assert.Equal(t, irmago.ActionSigning, QRContent{"irmaqr": "signing"}.Action())
	assert.Empty(t, QRContent{"u": "abc"}.Action())
	assert.Empty(t, QRContent{"irmaqr": 1}.Action())
}
