package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/core/domain"
)

const testSecret = "test-secret"

type memBlacklist struct {
	entries map[string]time.Time
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{entries: make(map[string]time.Time)}
}

func (b *memBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	b.entries[tokenID] = time.Now().Add(ttl)
	return nil
}

func (b *memBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	deadline, exists := b.entries[tokenID]
	return exists && time.Now().Before(deadline), nil
}

type failingBlacklist struct{}

func (failingBlacklist) Revoke(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingBlacklist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func testUser() *domain.User {
	return &domain.User{ID: "user_1", Email: "ana@example.com", Name: "Ana"}
}

func TestTokenService_IssueVerifyRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, 0, newMemBlacklist(), zerolog.Nop())

	issued, err := svc.Issue(context.Background(), testUser())
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if issued.ExpiresIn != 3600 {
		t.Fatalf("expected expires_in 3600, got %d", issued.ExpiresIn)
	}

	claims, err := svc.Verify(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "user_1" || claims.Email != "ana@example.com" || claims.Name != "Ana" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.TokenID == "" {
		t.Fatalf("expected jti claim")
	}
}

func TestTokenService_VerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("other-secret", time.Hour, 0, newMemBlacklist(), zerolog.Nop())
	verifier := NewTokenService(testSecret, time.Hour, 0, newMemBlacklist(), zerolog.Nop())

	issued, _ := issuer.Issue(context.Background(), testUser())

	if _, err := verifier.Verify(context.Background(), issued.Token); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, 0, newMemBlacklist(), zerolog.Nop())

	if _, err := svc.Verify(context.Background(), "not.a.token"); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	svc := &TokenService{
		secret:     testSecret,
		tokenTTL:   -time.Hour,
		refreshTTL: 14 * 24 * time.Hour,
		blacklist:  newMemBlacklist(),
		log:        zerolog.Nop(),
	}

	issued, _ := svc.Issue(context.Background(), testUser())

	if _, err := svc.Verify(context.Background(), issued.Token); err != domain.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_VerifyRejectsMissingJTI(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, 0, newMemBlacklist(), zerolog.Nop())

	now := time.Now().UTC()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user_1",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := svc.Verify(context.Background(), raw); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_VerifyFailsClosedOnBlacklistError(t *testing.T) {
	issuer := NewTokenService(testSecret, time.Hour, 0, newMemBlacklist(), zerolog.Nop())
	svc := NewTokenService(testSecret, time.Hour, 0, failingBlacklist{}, zerolog.Nop())

	issued, _ := issuer.Issue(context.Background(), testUser())

	if _, err := svc.Verify(context.Background(), issued.Token); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid when blacklist is unreachable, got %v", err)
	}
}

func TestTokenService_RevokeBlocksToken(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, 0, newMemBlacklist(), zerolog.Nop())

	issued, _ := svc.Issue(context.Background(), testUser())

	if err := svc.Revoke(context.Background(), issued.Token); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}
	if _, err := svc.Verify(context.Background(), issued.Token); err != domain.ErrTokenRevoked {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
}

func TestTokenService_RevokeRejectsExpiredToken(t *testing.T) {
	svc := &TokenService{
		secret:     testSecret,
		tokenTTL:   -time.Hour,
		refreshTTL: 14 * 24 * time.Hour,
		blacklist:  newMemBlacklist(),
		log:        zerolog.Nop(),
	}

	issued, _ := svc.Issue(context.Background(), testUser())

	if err := svc.Revoke(context.Background(), issued.Token); err != domain.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_RefreshIssuesNewAndRevokesOld(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour, 0, newMemBlacklist(), zerolog.Nop())

	old, _ := svc.Issue(context.Background(), testUser())

	fresh, err := svc.Refresh(context.Background(), old.Token)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if fresh.Token == old.Token {
		t.Fatalf("expected a new token")
	}

	claims, err := svc.Verify(context.Background(), fresh.Token)
	if err != nil {
		t.Fatalf("fresh token failed verification: %v", err)
	}
	if claims.UserID != "user_1" || claims.Email != "ana@example.com" {
		t.Fatalf("claims not carried over: %+v", claims)
	}

	// The old token is burned once exchanged.
	if _, err := svc.Verify(context.Background(), old.Token); err != domain.ErrTokenRevoked {
		t.Fatalf("expected old token revoked, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), old.Token); err != domain.ErrTokenRevoked {
		t.Fatalf("expected old token unrefreshable, got %v", err)
	}
}

func TestTokenService_RefreshAcceptsExpiredWithinWindow(t *testing.T) {
	svc := &TokenService{
		secret:     testSecret,
		tokenTTL:   -time.Hour,
		refreshTTL: 14 * 24 * time.Hour,
		blacklist:  newMemBlacklist(),
		log:        zerolog.Nop(),
	}

	expired, _ := svc.Issue(context.Background(), testUser())

	if _, err := svc.Verify(context.Background(), expired.Token); err != domain.ErrTokenExpired {
		t.Fatalf("precondition: token should be expired, got %v", err)
	}

	if _, err := svc.Refresh(context.Background(), expired.Token); err != nil {
		t.Fatalf("Refresh of expired token within window failed: %v", err)
	}
}

func TestTokenService_RefreshRejectsBeyondWindow(t *testing.T) {
	svc := &TokenService{
		secret:     testSecret,
		tokenTTL:   -time.Hour,
		refreshTTL: -time.Minute,
		blacklist:  newMemBlacklist(),
		log:        zerolog.Nop(),
	}

	stale, _ := svc.Issue(context.Background(), testUser())

	if _, err := svc.Refresh(context.Background(), stale.Token); err != domain.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired beyond refresh window, got %v", err)
	}
}

func TestTokenService_RefreshRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("other-secret", time.Hour, 0, newMemBlacklist(), zerolog.Nop())
	svc := NewTokenService(testSecret, time.Hour, 0, newMemBlacklist(), zerolog.Nop())

	issued, _ := issuer.Issue(context.Background(), testUser())

	if _, err := svc.Refresh(context.Background(), issued.Token); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
