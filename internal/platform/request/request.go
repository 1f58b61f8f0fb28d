// Copyright (c) 2026 Identra. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anhtran-dev/identra/internal/platform/validate"
)

// DecodeJSON reads the request body and decodes it into the target structure.
// It returns validate.ErrInvalidJSON if decoding fails.
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// IntParam retrieves a named URL parameter and parses it as an int64 ID.
// It returns a field-level validation error for non-numeric values.
func IntParam(request *http.Request, name string) (int64, error) {
	raw := chi.URLParam(request, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, validate.RequiredError(name, "Must be a numeric identifier")
	}
	return id, nil
}

// QueryInt64 parses a required int64 query parameter.
// It returns a field-level validation error for non-numeric values.
func QueryInt64(request *http.Request, name string) (int64, error) {
	raw := request.URL.Query().Get(name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, InvalidQueryError(name, "Must be a numeric value")
	}
	return n, nil
}

// InvalidQueryError builds a field-level validation error for a query parameter.
func InvalidQueryError(name, message string) error {
	return validate.RequiredError(name, message)
}

// QueryInt parses an integer query parameter with a fallback default.
func QueryInt(request *http.Request, name string, defaultVal int) int {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return n
}
