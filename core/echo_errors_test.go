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

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubResolver map[error]int

func (s stubResolver) ResolveStatusCode(err error) int {
	for target, statusCode := range s {
		if errors.Is(err, target) {
			return statusCode
		}
	}
	return 0
}

func TestHttpErrorHandler(t *testing.T) {
	err1 := errors.New("error 1")
	server := echo.New()
	server.HTTPErrorHandler = CreateHTTPErrorHandler()

	serve := func(f echo.HandlerFunc) *httptest.ResponseRecorder {
		server.Add(http.MethodGet, "/", f)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec
	}

	t.Run("is echo HTTPError", func(t *testing.T) {
		rec := serve(func(c echo.Context) error {
			err := errors.New("failed")
			return &echo.HTTPError{
				Code:     http.StatusForbidden,
				Message:  err.Error(),
				Internal: err,
			}
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, problemContentType, rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"detail":"failed","status":403,"title":"Operation failed"}`, rec.Body.String())
	})
	t.Run("error mapping from context", func(t *testing.T) {
		rec := serve(func(c echo.Context) error {
			c.Set(OperationIDContextKey, "test")
			c.Set(StatusCodeResolverContextKey, stubResolver{err1: http.StatusPaymentRequired})
			return err1
		})

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.JSONEq(t, `{"detail":"error 1","status":402,"title":"test failed"}`, rec.Body.String())
	})
	t.Run("unmapped", func(t *testing.T) {
		rec := serve(func(c echo.Context) error {
			c.Set(OperationIDContextKey, "test")
			return errors.New("other error")
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"detail":"internal server error","status":500,"title":"test failed"}`, rec.Body.String())
	})
	t.Run("resolver doesn't know the error", func(t *testing.T) {
		rec := serve(func(c echo.Context) error {
			c.Set(StatusCodeResolverContextKey, stubResolver{err1: http.StatusPaymentRequired})
			return errors.New("other error")
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
	t.Run("wrapped predefined status code", func(t *testing.T) {
		rec := serve(func(c echo.Context) error {
			return fmt.Errorf("lookup: %w", NotFoundError("relying session not found"))
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"lookup: relying session not found","status":404,"title":"Operation failed"}`, rec.Body.String())
	})
	t.Run("predefined status code", func(t *testing.T) {
		rec := serve(func(c echo.Context) error {
			return NotFoundError("session not found")
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_NotFoundError(t *testing.T) {
	cause := errors.New("oops")

	err := NotFoundError("failed: %w", cause).(httpStatusCodeError)

	assert.EqualError(t, err, "failed: oops")
	assert.Equal(t, http.StatusNotFound, err.StatusCode())
	assert.ErrorIs(t, err, NotFoundError(""))
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, InvalidInputError(""))
}

func Test_InvalidInputError(t *testing.T) {
	err := InvalidInputError("failed: %s", "oops").(httpStatusCodeError)
	assert.EqualError(t, err, "failed: oops")
	assert.Equal(t, http.StatusBadRequest, err.statusCode)
	assert.ErrorIs(t, err, InvalidInputError(""))
}
