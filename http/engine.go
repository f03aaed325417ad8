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
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/http/log"
	"golang.org/x/time/rate"
)

const moduleName = "HTTP"

const shutdownTimeout = 10 * time.Second

// rateLimitedPaths lists the routes that create state at the IRMA server or in the session stores.
var rateLimitedPaths = map[string][]string{
	http.MethodPost: {
		"/internal/irma/v1/session/:kind",
		"/internal/irma/v1/relying-session",
	},
}

// New returns a new HTTP engine. The callback is called when the HTTP interface shuts down unexpectedly.
func New(serverShutdownCb func()) *Engine {
	return &Engine{
		serverShutdownCb: serverShutdownCb,
		config:           DefaultConfig(),
	}
}

// Engine is the HTTP engine.
type Engine struct {
	server           *echo.Echo
	serverShutdownCb func()
	config           Config
}

// Router returns the router of the HTTP engine, which can be used by other engines to register HTTP handlers.
func (h Engine) Router() core.EchoRouter {
	return h.server
}

// Configure creates the echo server and applies the middleware.
func (h *Engine) Configure(serverConfig core.ServerConfig) error {
	if h.config.Address == "" {
		return errors.New("http.address must be set")
	}
	h.server = echo.New()
	h.server.HideBanner = true
	h.server.HidePort = true
	h.server.HTTPErrorHandler = core.CreateHTTPErrorHandler()
	// Reverse proxies must set the X-Forwarded-For header to the original client IP.
	h.server.IPExtractor = echo.ExtractIPFromXFFHeader()

	// Logging is the outer middleware so it sees the final status
	if h.config.Log != LogNothingLevel {
		h.server.Use(requestLoggerMiddleware(skipLogging, log.Logger()))
	}
	if h.config.Log == LogMetadataAndBodyLevel {
		h.server.Use(bodyLoggerMiddleware(skipLogging, log.Logger()))
	}

	// Use middleware to decode URL encoded path parameters like pbdf%2Egemeente -> pbdf.gemeente
	h.server.Use(core.DecodeURIPath)

	if h.config.CORS.Enabled() {
		if serverConfig.Strictmode {
			for _, origin := range h.config.CORS.Origin {
				if strings.TrimSpace(origin) == "*" {
					return errors.New("wildcard CORS origin is not allowed in strict mode")
				}
			}
		}
		log.Logger().Infof("Enabling CORS for HTTP interface: %s", h.config.Address)
		h.server.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: h.config.CORS.Origin}))
	}

	if h.config.RateLimit.Sessions > 0 {
		if h.config.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid http.ratelimit.burst: %d", h.config.RateLimit.Burst)
		}
		h.server.Use(newSessionRateLimiter(rateLimitedPaths, time.Hour, rate.Limit(h.config.RateLimit.Sessions), h.config.RateLimit.Burst))
	}
	return nil
}

// Name returns the name of the engine.
func (h *Engine) Name() string {
	return moduleName
}

// Config returns the configuration of the HTTP engine.
func (h *Engine) Config() interface{} {
	return &h.config
}

// ConfigKey returns the key of the engine's config section.
func (h *Engine) ConfigKey() string {
	return "http"
}

// Start starts the HTTP engine.
func (h *Engine) Start() error {
	log.Logger().Infof("Starting HTTP interface on %s", h.config.Address)
	go func(server *echo.Echo, address string, cancel func()) {
		if err := server.Start(address); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				log.Logger().
					WithError(err).
					Error("HTTP server stopped due to error")
			}
		}
		cancel()
	}(h.server, h.config.Address, h.serverShutdownCb)
	return nil
}

// Shutdown shuts down the HTTP engine.
func (h *Engine) Shutdown() error {
	if h.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.server.Shutdown(ctx)
}

// skipLogging skips calls to /metrics, /status, and /health
func skipLogging(c echo.Context) bool {
	for _, excludePath := range []string{"/metrics", "/status", "/health"} {
		if matchesPath(c.Request().RequestURI, excludePath) {
			return true
		}
	}
	return false
}

// matchesPath checks whether the request URI path hierarchically matches the given path.
// Examples:
// / matches /
// /foo matches /
// /foo/ matches /
// /foo/bla matches /
// /foo/bla does not match /bla
func matchesPath(requestURI string, path string) bool {
	if path == "/" {
		return true
	}
	if !strings.HasSuffix(requestURI, "/") {
		requestURI += "/"
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return requestURI == path || strings.HasPrefix(requestURI, path)
}
