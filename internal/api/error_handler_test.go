package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/api/handler"
	"github.com/taskhive/task-api/internal/core/domain"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, body
}

func TestErrorHandler_ValidationError(t *testing.T) {
	rec, body := render(t, &handler.ValidationError{Fields: map[string][]string{
		"title": {"The title field is required."},
	}})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if body["success"] != false || body["message"] != "Validation failed" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	errs := body["errors"].(map[string]any)
	msgs := errs["title"].([]any)
	if len(msgs) != 1 || msgs[0] != "The title field is required." {
		t.Fatalf("unexpected field errors: %v", errs)
	}
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{"invalid task id", domain.ErrInvalidTaskID, http.StatusBadRequest, "Invalid task ID format"},
		{"task not found", domain.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"invalid token", domain.ErrTokenInvalid, http.StatusUnauthorized, "Unauthenticated"},
		{"expired token", domain.ErrTokenExpired, http.StatusUnauthorized, "Unauthenticated"},
		{"revoked token", domain.ErrTokenRevoked, http.StatusUnauthorized, "Unauthenticated"},
		{"unknown user", domain.ErrUserNotFound, http.StatusUnauthorized, "Unauthenticated"},
		{"registration failed", domain.ErrRegistrationFailed, http.StatusInternalServerError, "Registration failed. Please try again."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := render(t, tc.err)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if body["message"] != tc.wantMessage {
				t.Fatalf("expected %q, got %v", tc.wantMessage, body["message"])
			}
			if body["success"] != false {
				t.Fatalf("expected success false, got %v", body)
			}
		})
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	rec, body := render(t, echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body["message"] != "Unauthenticated" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestErrorHandler_UnexpectedErrorIsOpaque(t *testing.T) {
	rec, body := render(t, errors.New("mongo: connection reset by peer"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["message"] != "Internal server error" {
		t.Fatalf("internal cause must not leak: %v", body)
	}
}
