package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

const tokenType = "Bearer"

// AuthService implements registration, login, and the session lifecycle.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenService
	log    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenService, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// Register creates an account and signs the first token. Persistence
// failures — the duplicate-email case included — collapse into a single
// generic ErrRegistrationFailed so the response never reveals whether an
// email is already taken. The real cause is logged server-side.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("registration failed")
		return nil, domain.ErrRegistrationFailed
	}

	token, err := s.tokens.Issue(ctx, created)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", created.ID).Msg("token issuance failed")
		return nil, domain.ErrRegistrationFailed
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	return &ports.AuthResult{
		Token:     token.Token,
		TokenType: tokenType,
		ExpiresIn: token.ExpiresIn,
		User:      created,
	}, nil
}

// Login authenticates by email and password. Unknown email and wrong
// password return the same ErrInvalidCredentials so the two cases cannot be
// told apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.AuthResult{
		Token:     token.Token,
		TokenType: tokenType,
		ExpiresIn: token.ExpiresIn,
		User:      user,
	}, nil
}

// Me resolves the caller's current account record.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// Refresh exchanges the presented token for a fresh one.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*ports.AuthResult, error) {
	token, err := s.tokens.Refresh(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{
		Token:     token.Token,
		TokenType: tokenType,
		ExpiresIn: token.ExpiresIn,
	}, nil
}

// Logout revokes the presented token so it cannot be used again before its
// natural expiry.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	return s.tokens.Revoke(ctx, rawToken)
}
