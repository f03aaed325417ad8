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

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSkip(_ echo.Context) bool {
	return false
}

func Test_requestLoggerMiddleware(t *testing.T) {
	serve := func(t *testing.T, handler echo.HandlerFunc) *test.Hook {
		logger, hook := test.NewNullLogger()
		e := echo.New()
		request := httptest.NewRequest(http.MethodGet, "/internal/irma/v1/session/disclosure/123", nil)
		request.RemoteAddr = "[::1]:1234"
		c := e.NewContext(request, httptest.NewRecorder())

		_ = requestLoggerMiddleware(noSkip, logger.WithFields(logrus.Fields{}))(handler)(c)

		require.Len(t, hook.Entries, 1)
		return hook
	}

	t.Run("it logs", func(t *testing.T) {
		hook := serve(t, func(c echo.Context) error {
			return c.NoContent(http.StatusNoContent)
		})

		assert.Equal(t, "::1", hook.LastEntry().Data["remote_ip"])
		assert.Equal(t, http.MethodGet, hook.LastEntry().Data["method"])
		assert.Equal(t, http.StatusNoContent, hook.LastEntry().Data["status"])
		assert.Equal(t, "/internal/irma/v1/session/disclosure/123", hook.LastEntry().Data["uri"])
		assert.Contains(t, hook.LastEntry().Data, "latency")
	})
	t.Run("it handles echo.HTTPErrors", func(t *testing.T) {
		hook := serve(t, func(_ echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden)
		})

		assert.Equal(t, http.StatusForbidden, hook.LastEntry().Data["status"])
	})
	t.Run("it handles httpStatusCodeError", func(t *testing.T) {
		hook := serve(t, func(_ echo.Context) error {
			return core.NotFoundError("not found")
		})

		assert.Equal(t, http.StatusNotFound, hook.LastEntry().Data["status"])
	})
	t.Run("it handles go errors", func(t *testing.T) {
		hook := serve(t, func(_ echo.Context) error {
			return errors.New("failed")
		})

		assert.Equal(t, http.StatusInternalServerError, hook.LastEntry().Data["status"])
	})
}

func Test_bodyLoggerMiddleware(t *testing.T) {
	serve := func(t *testing.T, contentType string, requestBody []byte, responseBody []byte) *test.Hook {
		logger, hook := test.NewNullLogger()
		e := echo.New()
		request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(requestBody))
		request.Header.Set("Content-Type", contentType)
		c := e.NewContext(request, httptest.NewRecorder())

		err := bodyLoggerMiddleware(noSkip, logger.WithFields(logrus.Fields{}))(func(c echo.Context) error {
			return c.Blob(http.StatusOK, contentType, responseBody)
		})(c)

		require.NoError(t, err)
		require.Len(t, hook.Entries, 2)
		return hook
	}

	t.Run("it logs", func(t *testing.T) {
		hook := serve(t, "application/json", []byte(`"request"`), []byte(`"response"`))

		assert.Equal(t, `HTTP request body: "request"`, hook.AllEntries()[0].Message)
		assert.Equal(t, `HTTP response body: "response"`, hook.AllEntries()[1].Message)
	})
	t.Run("request and response not loggable", func(t *testing.T) {
		hook := serve(t, "application/octet-stream", []byte{1, 2, 3}, []byte{1, 2, 3})

		assert.Equal(t, `HTTP request body: (not loggable: application/octet-stream)`, hook.AllEntries()[0].Message)
		assert.Equal(t, `HTTP response body: (not loggable: application/octet-stream)`, hook.AllEntries()[1].Message)
	})
}

func Test_loggableBody(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "(empty)", loggableBody("", nil))
	})
	t.Run("truncated", func(t *testing.T) {
		body := bytes.Repeat([]byte("a"), maxLoggedBodySize+1)

		actual := loggableBody("text/plain", body)

		assert.Equal(t, string(body[:maxLoggedBodySize])+"... (truncated, 4097 bytes)", actual)
	})
}

func Test_isLoggableContentType(t *testing.T) {
	assert.True(t, isLoggableContentType("application/json; charset=UTF-8"))
	assert.True(t, isLoggableContentType("application/problem+json"))
	assert.True(t, isLoggableContentType("text/plain"))
	assert.False(t, isLoggableContentType("image/png"))
	assert.False(t, isLoggableContentType(""))
}
