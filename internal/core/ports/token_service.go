package ports

import (
	"context"
	"time"

	"github.com/taskhive/task-api/internal/core/domain"
)

// TokenClaims is the identity carried by a verified bearer token.
type TokenClaims struct {
	UserID    string
	Email     string
	Name      string
	TokenID   string // jti, the revocation key
	ExpiresAt time.Time
}

// IssuedToken is a freshly signed credential plus its lifetime in seconds.
type IssuedToken struct {
	Token     string
	ExpiresIn int64
}

// TokenService manages the bearer-token lifecycle: issuance, verification,
// refresh, and revocation.
type TokenService interface {
	Issue(ctx context.Context, user *domain.User) (*IssuedToken, error)
	// Verify checks signature, expiry, and the revocation list.
	Verify(ctx context.Context, raw string) (*TokenClaims, error)
	// Refresh exchanges a token for a fresh one. The presented token may be
	// expired as long as it was issued within the refresh window; its jti is
	// revoked so it cannot be replayed.
	Refresh(ctx context.Context, raw string) (*IssuedToken, error)
	// Revoke blacklists the token's jti until its natural expiry.
	Revoke(ctx context.Context, raw string) error
}
