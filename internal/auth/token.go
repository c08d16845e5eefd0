package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util/errorutil"
)

var (
	// ErrTokenNotFound marks a lookup of an id that was never issued, was
	// revoked, or has been purged.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired marks a lookup of a token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

const maxIssueAttempts = 3

// TokenStore issues, resolves and revokes opaque tokens. Expiry is checked
// lazily on every Lookup.
type TokenStore struct {
	tokens repository.TokenRepository
	now    func() time.Time
	newID  func() string
}

// TokenStoreOption customizes a TokenStore.
type TokenStoreOption func(*TokenStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenStoreOption {
	return func(s *TokenStore) { s.now = now }
}

// WithIDGenerator overrides token id generation.
func WithIDGenerator(gen func() string) TokenStoreOption {
	return func(s *TokenStore) { s.newID = gen }
}

// NewTokenStore builds a store over the given repository.
func NewTokenStore(tokens repository.TokenRepository, opts ...TokenStoreOption) *TokenStore {
	s := &TokenStore{tokens: tokens, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a fresh token for user scoped to tenantScope.
func (s *TokenStore) Issue(ctx context.Context, user *domain.User, tenantScope string, ttl time.Duration) (*domain.Token, error) {
	if user == nil || user.ID == "" {
		return nil, apperrors.NewInternalError(errors.New("issue token without user"))
	}
	if ttl <= 0 {
		return nil, apperrors.NewInternalError(fmt.Errorf("non-positive token ttl %s", ttl))
	}

	issuedAt := s.now().UTC()
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		token := &domain.Token{
			ID:        s.newID(),
			UserID:    user.ID,
			TenantID:  tenantScope,
			IssuedAt:  issuedAt,
			ExpiresAt: issuedAt.Add(ttl),
			Enabled:   true,
		}
		err := s.tokens.Create(ctx, token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, repository.ToFault(err, "token", nil)
		}
	}
	return nil, apperrors.NewInternalError(errors.New("token id collision retries exhausted"))
}

// Lookup returns the live token for id. Expired tokens are reported as
// ItemNotFound wrapping ErrTokenExpired; unknown ones wrap ErrTokenNotFound.
func (s *TokenStore) Lookup(ctx context.Context, id string) (*domain.Token, error) {
	token, err := s.tokens.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("token", map[string]any{"token_id": id}).Wrap(ErrTokenNotFound)
	}
	if err != nil {
		return nil, repository.ToFault(err, "token", nil)
	}
	if token.Expired(s.now()) {
		return nil, apperrors.NewNotFound("token", map[string]any{"token_id": id}).Wrap(ErrTokenExpired)
	}
	return token, nil
}

// Revoke removes the token. Unknown or purged ids report ItemNotFound.
func (s *TokenStore) Revoke(ctx context.Context, id string) error {
	if err := s.tokens.Delete(ctx, id); err != nil {
		return repository.ToFault(err, "token", map[string]any{"token_id": id})
	}
	return nil
}

// PurgeExpired drops tokens that expired before cutoff.
func (s *TokenStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := s.tokens.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, repository.ToFault(err, "token", nil)
	}
	return n, nil
}
