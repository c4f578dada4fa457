/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/google/uuid"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
)

type Middleware = func(http.Handler) http.Handler

// ChainHandlers applies each middleware in order to the base router.
func ChainHandlers(base http.Handler, wrappers ...Middleware) http.Handler {
	h := base
	for _, wrap := range wrappers {
		h = wrap(h)
	}
	return h
}

type durationLogger struct {
	http.ResponseWriter
	statusCode int
}

func (d *durationLogger) WriteHeader(statusCode int) {
	d.statusCode = statusCode
	d.ResponseWriter.WriteHeader(statusCode)
}

// LogDuration logs the time taken to complete each request.
func LogDuration() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			d := durationLogger{
				ResponseWriter: w,
			}
			next.ServeHTTP(&d, r)
			slog.Debug("Request completed", "method", r.Method, "url", r.RequestURI, "status", d.statusCode, "duration", time.Since(startTime).String())
		})
	}
}

// UUIDValidator ensures a valid UUID in request parameters
type UUIDValidator struct{}

// Validate checks if a string is a valid UUID
func (v UUIDValidator) Validate(value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return err // nolint: wrapcheck
	}
	return nil
}

// OpenAPIValidation validates all incoming requests against the service's
// OpenAPI document. The document's paths are relative to the base path the
// routes are mounted under, so the servers array is rewritten to match how
// this instance is actually run.
func OpenAPIValidation(swagger *openapi3.T, basePath string) Middleware {
	if basePath == "" || basePath == "/" {
		swagger.Servers = nil
	} else {
		swagger.Servers = openapi3.Servers{&openapi3.Server{URL: basePath}}
	}

	// explicitly enable validation for uuid format
	openapi3.DefineStringFormatValidator("uuid", UUIDValidator{})

	return oapimiddleware.OapiRequestValidatorWithOptions(swagger, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			WriteMessage(w, message, statusCode)
		},
	})
}

// WriteMessage writes an error response in the service's {message} shape.
func WriteMessage(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	out, _ := json.Marshal(map[string]string{"message": message})
	if _, err := w.Write(out); err != nil {
		slog.Error("Failed to write error response", "err", err)
	}
}
