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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Echo context keys set by API wrappers, read by the HTTP error handler.
const (
	// StatusCodeResolverContextKey holds the ErrorStatusCodeResolver of the operation being called.
	StatusCodeResolverContextKey = "!!StatusCodeResolver"
	// OperationIDContextKey holds the name of the operation being called.
	OperationIDContextKey = "!!OperationId"
	// ModuleNameContextKey holds the name of the module that contains the operation being called.
	ModuleNameContextKey = "!!ModuleName"
)

const problemContentType = "application/problem+json"

// internalErrorDetail replaces the detail of HTTP 500 problems, the cause (e.g. a session database error) is only logged.
const internalErrorDetail = "internal server error"

// Problem is an RFC 7807 problem details object, which is returned by the HTTP error handler.
type Problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ErrorStatusCodeResolver resolves the HTTP status code for errors returned by an API operation.
// It returns 0 for errors it doesn't know, which then result in HTTP 500.
type ErrorStatusCodeResolver interface {
	ResolveStatusCode(err error) int
}

// HTTPStatusCodeError is an error that carries the HTTP status code it should be returned with.
type HTTPStatusCodeError interface {
	error
	StatusCode() int
}

// CreateHTTPErrorHandler returns an Echo HTTPErrorHandler that logs the error and returns it as problem.
func CreateHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		// echo.HTTPErrors occur when routing or binding fails, their message is safe to return as-is.
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			err = httpStatusCodeError{msg: fmt.Sprintf("%v", echoErr.Message), statusCode: echoErr.Code, err: echoErr}
		}
		title := "Operation failed"
		if operationID := ctx.Get(OperationIDContextKey); operationID != nil {
			title = fmt.Sprintf("%v failed", operationID)
		}
		statusCode := resolveStatusCode(err, ctx)
		logger := contextLogger(ctx).
			WithField("requestURI", ctx.Request().RequestURI).
			WithError(err)
		if statusCode >= http.StatusInternalServerError {
			logger.Error(title)
		} else {
			logger.Warn(title)
		}
		if ctx.Response().Committed {
			logger.Warn("Unable to send error back to client, response already committed")
			return
		}
		problem := Problem{Title: title, Status: statusCode, Detail: err.Error()}
		if statusCode == http.StatusInternalServerError {
			problem.Detail = internalErrorDetail
		}
		data, _ := json.Marshal(problem) // a Problem only holds strings and ints
		if writeErr := ctx.Blob(statusCode, problemContentType, data); writeErr != nil {
			logger.WithError(writeErr).Error("Unable to write problem")
		}
	}
}

// NotFoundError returns an error that maps to HTTP 404 Not Found. Arguments are formatted with fmt.Errorf, so %w can be used.
func NotFoundError(errStr string, args ...interface{}) error {
	return newHTTPStatusCodeError(http.StatusNotFound, errStr, args...)
}

// InvalidInputError returns an error that maps to HTTP 400 Bad Request. Arguments are formatted with fmt.Errorf, so %w can be used.
func InvalidInputError(errStr string, args ...interface{}) error {
	return newHTTPStatusCodeError(http.StatusBadRequest, errStr, args...)
}

func newHTTPStatusCodeError(statusCode int, errStr string, args ...interface{}) error {
	formatted := fmt.Errorf(errStr, args...)
	return httpStatusCodeError{msg: formatted.Error(), statusCode: statusCode, err: errors.Unwrap(formatted)}
}

type httpStatusCodeError struct {
	msg        string
	statusCode int
	err        error
}

func (e httpStatusCodeError) StatusCode() int {
	return e.statusCode
}

// Is matches other httpStatusCodeErrors with the same status code.
func (e httpStatusCodeError) Is(other error) bool {
	cast, ok := other.(httpStatusCodeError)
	return ok && cast.statusCode == e.statusCode
}

func (e httpStatusCodeError) Unwrap() error {
	return e.err
}

func (e httpStatusCodeError) Error() string {
	return e.msg
}

// resolveStatusCode resolves the status code for the error: a predefined status code (HTTPStatusCodeError) comes first,
// then the resolver of the operation. Everything else is HTTP 500.
func resolveStatusCode(err error, ctx echo.Context) int {
	var predefined HTTPStatusCodeError
	if errors.As(err, &predefined) {
		return predefined.StatusCode()
	}
	if resolver, ok := ctx.Get(StatusCodeResolverContextKey).(ErrorStatusCodeResolver); ok {
		if statusCode := resolver.ResolveStatusCode(err); statusCode != 0 {
			return statusCode
		}
	}
	return http.StatusInternalServerError
}

func contextLogger(ctx echo.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if moduleName := ctx.Get(ModuleNameContextKey); moduleName != nil {
		fields[LogFieldModule] = moduleName
	}
	if operationID := ctx.Get(OperationIDContextKey); operationID != nil {
		fields["operation"] = operationID
	}
	return logrus.StandardLogger().WithFields(fields)
}
