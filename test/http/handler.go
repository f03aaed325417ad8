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
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// Handler is a custom http handler useful in testing.
// Usage:
//
//	s := httptest.NewServer(&Handler{StatusCode: http.StatusOK, ResponseData: someStruct})
//
// Then s.URL must be configured in the client.
type Handler struct {
	Request        *http.Request
	RequestHeaders http.Header
	RequestQuery   url.Values
	StatusCode     int
	RequestData    []byte
	// ResponseData is written as-is if it's a string, otherwise it's marshalled as JSON.
	ResponseData   interface{}
	ResponseHeader http.Header
	// Calls counts the number of requests served.
	Calls int
}

func (h *Handler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.Request = req
	h.RequestData, _ = io.ReadAll(req.Body)
	h.RequestHeaders = req.Header.Clone()
	h.RequestQuery = req.URL.Query()
	h.Calls++

	var bytes []byte
	if s, ok := h.ResponseData.(string); ok {
		bytes = []byte(s)
	} else {
		writer.Header().Add("Content-Type", "application/json")
		bytes, _ = json.Marshal(h.ResponseData)
	}

	for k, v := range h.ResponseHeader {
		writer.Header().Add(k, v[0])
	}
	writer.WriteHeader(h.StatusCode)
	_, _ = writer.Write(bytes)
}

// Router dispatches requests to a Handler by "METHOD /path", responding 404 for unknown routes.
// Handlers can be replaced while the server is running.
type Router struct {
	mux    sync.Mutex
	routes map[string]*Handler
}

// Handle registers (or replaces) the handler for the given method and path.
func (r *Router) Handle(method string, path string, handler *Handler) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.routes == nil {
		r.routes = map[string]*Handler{}
	}
	r.routes[method+" "+path] = handler
}

// Route returns the handler registered for the given method and path, or nil.
func (r *Router) Route(method string, path string) *Handler {
	r.mux.Lock()
	defer r.mux.Unlock()
	return r.routes[method+" "+path]
}

func (r *Router) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	r.mux.Lock()
	defer r.mux.Unlock()
	handler, ok := r.routes[req.Method+" "+req.URL.Path]
	if !ok {
		writer.WriteHeader(http.StatusNotFound)
		return
	}
	handler.ServeHTTP(writer, req)
}
