// Copyright (c) 2026 Identra. All rights reserved.

// Package pagination parses page-based navigation for Identra's list
// endpoints and builds the metadata block of paginated responses.
//
// Every list endpoint (users, audit events) accepts the same two query
// parameters, "page" (1-indexed) and "limit", and returns the same meta
// shape, so clients page through any collection identically.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPage is the first page; pages are 1-indexed.
	DefaultPage = 1
	// DefaultLimit applies when the request names no limit.
	DefaultLimit = 20
	// MaxLimit caps the page size; larger requests are clamped, not rejected.
	MaxLimit = 100
)

// Params is the sanitized page/limit pair for one list request.
type Params struct {
	Page  int
	Limit int
}

// Offset converts the page number into a SQL OFFSET.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes one page of a collection in the response envelope.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta derives the page count from the collection total and page size.
func NewMeta(page, limit, total int) Meta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
	}
}

// FromRequest reads "page" and "limit" from the query string. Missing or
// unparseable values fall back to the defaults; a limit above MaxLimit is
// clamped to it rather than treated as invalid.
func FromRequest(r *http.Request) Params {
	page := queryInt(r, "page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := queryInt(r, "limit", DefaultLimit)
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
