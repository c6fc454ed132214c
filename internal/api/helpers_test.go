// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package api

import (
	"net/http/httptest"
	"testing"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantSkip  int
		wantLimit int
	}{
		{name: "defaults", query: "", wantSkip: 0, wantLimit: defaultLimit},
		{name: "explicit values", query: "skip=20&limit=50", wantSkip: 20, wantLimit: 50},
		{name: "zero limit falls back", query: "limit=0", wantSkip: 0, wantLimit: defaultLimit},
		{name: "negative limit falls back", query: "limit=-5", wantSkip: 0, wantLimit: defaultLimit},
		{name: "negative skip falls back", query: "skip=-1", wantSkip: 0, wantLimit: defaultLimit},
		{name: "limit capped", query: "limit=5000", wantSkip: 0, wantLimit: maxLimit},
		{name: "unparseable", query: "skip=abc&limit=xyz", wantSkip: 0, wantLimit: defaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/users?"+tt.query, nil)
			skip, limit := pagination(req)
			if skip != tt.wantSkip {
				t.Errorf("skip = %d, want %d", skip, tt.wantSkip)
			}
			if limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", limit, tt.wantLimit)
			}
		})
	}
}
