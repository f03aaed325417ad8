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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestDecodeURIPath(t *testing.T) {
	rawParam := "pbdf.gemeente.personalData.fullname"
	encodedParam := "pbdf%2Egemeente%2EpersonalData%2Efullname"

	serve := func(e *echo.Echo) string {
		e.GET("/proofs/:sessionID", func(context echo.Context) error {
			return context.Blob(http.StatusOK, "text/plain", []byte(context.Param("sessionID")))
		})
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/proofs/"+encodedParam, nil))
		bodyBytes, _ := io.ReadAll(rec.Result().Body)
		return string(bodyBytes)
	}

	t.Run("without middleware, it returns the encoded param", func(t *testing.T) {
		assert.Equal(t, encodedParam, serve(echo.New()))
	})
	t.Run("with middleware, it returns the decoded param", func(t *testing.T) {
		e := echo.New()
		e.Use(DecodeURIPath)

		assert.Equal(t, rawParam, serve(e))
	})
}
