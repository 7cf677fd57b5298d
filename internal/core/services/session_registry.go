package services

import (
	"context"
	"fmt"
	"time"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/core/ports"
)

// SessionRegistry issues and resolves admin bearer tokens. A ttl of zero keeps
// sessions valid until the backing store is discarded.
type SessionRegistry struct {
	store  ports.SessionStore
	tokens ports.TokenGenerator
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionRegistry(store ports.SessionStore, tokens ports.TokenGenerator, ttl time.Duration) *SessionRegistry {
	if ttl < 0 {
		ttl = 0
	}
	return &SessionRegistry{store: store, tokens: tokens, ttl: ttl, now: time.Now}
}

// Create stores a new session for the admin and returns its token.
func (r *SessionRegistry) Create(ctx context.Context, adminID int64, email string) (string, error) {
	token, err := r.tokens.Token(domain.SessionTokenBytes)
	if err != nil {
		return "", err
	}
	s := domain.Session{
		Token:     token,
		AdminID:   adminID,
		Email:     email,
		CreatedAt: r.now().UTC(),
	}
	if err := r.store.Put(ctx, s, r.ttl); err != nil {
		return "", fmt.Errorf("store session: %w: %w", domain.ErrStore, err)
	}
	return token, nil
}

// Validate returns the session bound to token, or nil when the token is unknown or expired.
func (r *SessionRegistry) Validate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}
	s, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w: %w", domain.ErrStore, err)
	}
	if s == nil {
		return nil, nil
	}
	if s.Expired(r.now(), r.ttl) {
		// best effort; an expired entry is rejected either way
		_ = r.store.Delete(ctx, token)
		return nil, nil
	}
	return s, nil
}

// Authenticate is Validate for guarding privileged operations: a missing
// or unknown token yields domain.ErrUnauthorized.
func (r *SessionRegistry) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	s, err := r.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrUnauthorized
	}
	return s, nil
}

func (r *SessionRegistry) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
