package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// TokenBlacklist abstracts the revocation store (Redis). Entries expire on
// their own once the token they block would have expired anyway.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenService issues and validates HS256 JWTs. Each token carries a unique
// jti claim; revocation blacklists the jti rather than the token itself.
type TokenService struct {
	secret     string
	tokenTTL   time.Duration
	refreshTTL time.Duration
	blacklist  TokenBlacklist
	log        zerolog.Logger
}

func NewTokenService(secret string, tokenTTL, refreshTTL time.Duration, blacklist TokenBlacklist, log zerolog.Logger) *TokenService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 14 * 24 * time.Hour
	}
	return &TokenService{
		secret:     secret,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
		blacklist:  blacklist,
		log:        log,
	}
}

// Issue signs a fresh token for the given user.
func (s *TokenService) Issue(_ context.Context, user *domain.User) (*ports.IssuedToken, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &ports.IssuedToken{
		Token:     signed,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

// Verify checks signature, expiry, and the revocation list, returning the
// claims on success.
func (s *TokenService) Verify(ctx context.Context, raw string) (*ports.TokenClaims, error) {
	claims, err := s.parse(raw, true)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		// Fail closed: an unreachable blacklist must not let a possibly
		// revoked token through.
		s.log.Warn().Err(err).Msg("token blacklist lookup failed")
		return nil, domain.ErrTokenInvalid
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}

	return claims, nil
}

// Refresh exchanges a token for a fresh one. Expired tokens are accepted as
// long as they were issued within the refresh window; the presented jti is
// revoked so the old token cannot be replayed.
func (s *TokenService) Refresh(ctx context.Context, raw string) (*ports.IssuedToken, error) {
	claims, issuedAt, err := s.parseForRefresh(raw)
	if err != nil {
		return nil, err
	}

	refreshDeadline := issuedAt.Add(s.refreshTTL)
	if time.Now().After(refreshDeadline) {
		return nil, domain.ErrTokenExpired
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		s.log.Warn().Err(err).Msg("token blacklist lookup failed")
		return nil, domain.ErrTokenInvalid
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}

	// Block the old jti for the remainder of the refresh window; beyond that
	// it can no longer be refreshed anyway.
	if err := s.blacklist.Revoke(ctx, claims.TokenID, time.Until(refreshDeadline)); err != nil {
		return nil, err
	}

	return s.Issue(ctx, &domain.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
	})
}

// Revoke blacklists a currently valid token until its natural expiry.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	claims, err := s.parse(raw, true)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return domain.ErrTokenExpired
	}
	return s.blacklist.Revoke(ctx, claims.TokenID, ttl)
}

func (s *TokenService) parse(raw string, validateExpiry bool) (*ports.TokenClaims, error) {
	mc := jwt.MapClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !validateExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	tkn, err := jwt.ParseWithClaims(raw, mc, func(*jwt.Token) (interface{}, error) {
		return []byte(s.secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !tkn.Valid {
		return nil, domain.ErrTokenInvalid
	}

	return mapClaims(mc)
}

// parseForRefresh accepts expired tokens but still requires a valid
// signature and a usable iat.
func (s *TokenService) parseForRefresh(raw string) (*ports.TokenClaims, time.Time, error) {
	claims, err := s.parse(raw, false)
	if err != nil {
		return nil, time.Time{}, err
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err != nil {
		return nil, time.Time{}, domain.ErrTokenInvalid
	}
	iat, ok := mc["iat"].(float64)
	if !ok {
		return nil, time.Time{}, domain.ErrTokenInvalid
	}

	return claims, time.Unix(int64(iat), 0), nil
}

func mapClaims(mc jwt.MapClaims) (*ports.TokenClaims, error) {
	sub, _ := mc["sub"].(string)
	jti, _ := mc["jti"].(string)
	if sub == "" || jti == "" {
		return nil, domain.ErrTokenInvalid
	}

	email, _ := mc["email"].(string)
	name, _ := mc["name"].(string)

	var expiresAt time.Time
	if exp, ok := mc["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0)
	}

	return &ports.TokenClaims{
		UserID:    sub,
		Email:     email,
		Name:      name,
		TokenID:   jti,
		ExpiresAt: expiresAt,
	}, nil
}
