package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// apiResponse is the canonical JSON envelope for every endpoint. Errors is
// only present on validation failures, Meta only on list responses.
type apiResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Meta    *paginationMeta     `json:"meta,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// paginationMeta mirrors the list endpoint's meta block. From and To are
// null for an empty page.
type paginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

func ok(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, apiResponse{Success: true, Message: message, Data: data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, apiResponse{Success: false, Message: message})
}

func failValidation(c echo.Context, errs map[string][]string) error {
	return c.JSON(http.StatusUnprocessableEntity, apiResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// userResponse is the account summary embedded in auth payloads.
type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// tokenResponse is the payload of register, login, and refresh. User is
// omitted on refresh.
type tokenResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresIn int64         `json:"expires_in"`
	User      *userResponse `json:"user,omitempty"`
}

// taskResponse is the external task representation; the identifier is
// exposed as _id to match the document store's convention.
type taskResponse struct {
	ID          string     `json:"_id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
