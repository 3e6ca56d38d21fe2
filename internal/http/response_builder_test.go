package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"finances/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/1").
		Body(map[string]int{"id": 1}).
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rr.Code)
	}
	if rr.Header().Get("Location") != "/api/transactions/1" {
		t.Errorf("missing custom header")
	}
	if rr.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		t.Errorf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
	var body map[string]int
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["id"] != 1 {
		t.Errorf("unexpected body %q (%v)", rr.Body.String(), err)
	}
}

func TestNoContentHasNoBody(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Body(map[string]string{"ignored": "x"}).Write(rr)
	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestResponseForError(t *testing.T) {
	verr := core.NewValidationError("type", `"GIFT" is not a valid choice`)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", verr, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("add: %w", verr), http.StatusBadRequest},
		{"profile missing", core.ErrProfileNotFound, http.StatusNotFound},
		{"transaction missing", fmt.Errorf("delete: %w", core.ErrTransactionNotFound), http.StatusNotFound},
		{"category missing", core.ErrCategoryNotFound, http.StatusNotFound},
		{"duplicate profile", core.ErrProfileExists, http.StatusConflict},
		{"store failure", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			ResponseForError(tt.err).Write(rr)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestErrorBodies(t *testing.T) {
	rr := httptest.NewRecorder()
	ValidationErrorResponse(core.NewValidationError("amount", "this field is required")).Write(rr)
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["amount"] != "this field is required" || body.Error == "" {
		t.Fatalf("unexpected validation body %+v", body)
	}

	rr = httptest.NewRecorder()
	ResponseForError(errors.New("pq: password authentication failed")).Write(rr)
	body = errorBody{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "internal server error" || body.Fields != nil {
		t.Fatalf("internal errors must not leak details, got %+v", body)
	}

	rr = httptest.NewRecorder()
	UnauthorizedError().Write(rr)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
