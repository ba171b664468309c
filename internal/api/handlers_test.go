package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newsdesk/newsroom/internal/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("get: %w", domain.ErrNotFound), http.StatusNotFound},
		{"invalid transition", fmt.Errorf("approve: %w", domain.ErrInvalidStateTransition), http.StatusConflict},
		{"access denied", fmt.Errorf("delete: %w", domain.ErrAccessDenied), http.StatusForbidden},
		{"unauthenticated", fmt.Errorf("auth: %w", domain.ErrUnauthenticated), http.StatusUnauthorized},
		{"validation", fmt.Errorf("title: %w", domain.ErrValidation), http.StatusBadRequest},
		{"dependency failure", fmt.Errorf("upload: %w", domain.ErrDependencyFailure), http.StatusBadGateway},
		{"storage", fmt.Errorf("query: %w", domain.ErrStorage), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Message == "" {
				t.Error("error body must carry a message")
			}
		})
	}
}

func TestMutatingEndpointsRequireAuthentication(t *testing.T) {
	// Handlers check the principal before touching any collaborator, so a
	// zero-value server is enough here.
	routes := NewServer(nil, nil).Routes()

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/news"},
		{http.MethodPut, "/api/news/6f1f64ab-07a4-4f9c-bc0b-0c4f4023f1a1"},
		{http.MethodDelete, "/api/news/6f1f64ab-07a4-4f9c-bc0b-0c4f4023f1a1"},
		{http.MethodPatch, "/api/news/6f1f64ab-07a4-4f9c-bc0b-0c4f4023f1a1/submit"},
		{http.MethodPatch, "/api/news/6f1f64ab-07a4-4f9c-bc0b-0c4f4023f1a1/approve"},
		{http.MethodPatch, "/api/news/6f1f64ab-07a4-4f9c-bc0b-0c4f4023f1a1/reject"},
		{http.MethodGet, "/api/news/6f1f64ab-07a4-4f9c-bc0b-0c4f4023f1a1/versions"},
		{http.MethodPost, "/api/news/import"},
	}

	for _, req := range requests {
		t.Run(req.method+" "+req.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			routes.ServeHTTP(rec, httptest.NewRequest(req.method, req.path, nil))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestMalformedArticleIDIsBadRequest(t *testing.T) {
	routes := NewServer(nil, nil).Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/news/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
