// Copyright (c) 2026 Identra. All rights reserved.

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anhtran-dev/identra/pkg/pagination"
)

/*
TestFromRequest verifies query parsing, fallback defaults and the MaxLimit
clamp.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		page  int
		limit int
	}{
		{"defaults", "/users", pagination.DefaultPage, pagination.DefaultLimit},
		{"explicit", "/users?page=3&limit=50", 3, 50},
		{"zero_page", "/users?page=0", pagination.DefaultPage, pagination.DefaultLimit},
		{"negative_limit", "/users?limit=-5", pagination.DefaultPage, pagination.DefaultLimit},
		{"oversized_limit_clamps", "/users?limit=5000", pagination.DefaultPage, pagination.MaxLimit},
		{"garbage_values", "/users?page=abc&limit=xyz", pagination.DefaultPage, pagination.DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", tt.url, nil))
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
		})
	}
}

/*
TestOffset verifies the page-to-offset conversion used by the SQL stores.
*/
func TestOffset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, pagination.Params{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, pagination.Params{Page: 0, Limit: 20}.Offset())
}

/*
TestNewMeta verifies the total-pages arithmetic, including partial pages.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(2, 20, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 41, meta.Total)

	assert.Equal(t, 0, pagination.NewMeta(1, 0, 10).TotalPages)
}
