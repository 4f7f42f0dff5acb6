package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// AuthResult is the payload returned after a successful register, login, or
// refresh. User is nil on refresh.
type AuthResult struct {
	Token     string
	TokenType string
	ExpiresIn int64
	User      *domain.User
}

// AuthService orchestrates registration, login, and the session lifecycle.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Me resolves the caller's current account record by user id.
	Me(ctx context.Context, userID string) (*domain.User, error)
	Refresh(ctx context.Context, rawToken string) (*AuthResult, error)
	Logout(ctx context.Context, rawToken string) error
}
