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
	"fmt"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// maxLoggedBodySize limits the logged part of request and response bodies, signed session results can be large.
const maxLoggedBodySize = 4096

// requestLoggerMiddleware returns middleware that logs metadata of HTTP requests.
// It must be the outer middleware to see the status codes of errors handled by other middleware.
func requestLoggerMiddleware(skipper middleware.Skipper, logger *logrus.Entry) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:      skipper,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogError:     true,
		LogValuesFunc: func(_ echo.Context, values middleware.RequestLoggerValues) error {
			logger.WithFields(logrus.Fields{
				"remote_ip": values.RemoteIP,
				"method":    values.Method,
				"uri":       values.URI,
				"route":     values.RoutePath,
				"status":    responseStatus(values),
				"latency":   values.Latency.String(),
			}).Info("HTTP request")
			return nil
		},
	})
}

// responseStatus returns the status code that will be sent for the request. Errors aren't written yet when the logger runs,
// so their status is derived the same way the HTTP error handler does.
func responseStatus(values middleware.RequestLoggerValues) int {
	if values.Error == nil {
		return values.Status
	}
	switch err := values.Error.(type) {
	case interface{ StatusCode() int }:
		return err.StatusCode()
	case *echo.HTTPError:
		return err.Code
	default:
		return http.StatusInternalServerError
	}
}

// bodyLoggerMiddleware returns middleware that logs the bodies of HTTP requests and their responses.
// Only textual bodies are logged, truncated to maxLoggedBodySize bytes.
func bodyLoggerMiddleware(skipper middleware.Skipper, logger *logrus.Entry) echo.MiddlewareFunc {
	return middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: skipper,
		Handler: func(c echo.Context, request []byte, response []byte) {
			logger.Infof("HTTP request body: %s", loggableBody(c.Request().Header.Get(echo.HeaderContentType), request))
			logger.Infof("HTTP response body: %s", loggableBody(c.Response().Header().Get(echo.HeaderContentType), response))
		},
	})
}

func loggableBody(contentType string, body []byte) string {
	switch {
	case len(body) == 0:
		return "(empty)"
	case !isLoggableContentType(contentType):
		return "(not loggable: " + contentType + ")"
	case len(body) > maxLoggedBodySize:
		return fmt.Sprintf("%s... (truncated, %d bytes)", body[:maxLoggedBodySize], len(body))
	default:
		return string(body)
	}
}

func isLoggableContentType(contentType string) bool {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case echo.MIMEApplicationJSON, "application/problem+json", echo.MIMETextPlain:
		return true
	}
	return false
}
