package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckConsistencyRejectsBadParams(t *testing.T) {
	handler := NewConsistencyHandler(nil)

	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{"unknown storage type", "storage_type=TAPE", "storage_type must be CACHE or NAS"},
		{"non-numeric limit", "limit=abc", "limit must be a positive integer"},
		{"zero limit", "limit=0", "limit must be a positive integer"},
		{"negative limit", "limit=-5", "limit must be a positive integer"},
		{"non-numeric offset", "offset=xyz", "offset must be a non-negative integer"},
		{"negative offset", "offset=-1", "offset must be a non-negative integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/consistency/check?"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.CheckConsistency(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
}
