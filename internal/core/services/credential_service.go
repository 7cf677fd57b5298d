package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/core/ports"
	"github.com/poyrazK/keyportal/internal/infrastructure/metrics"
)

type credentialService struct {
	repo   ports.CredentialRepository
	keys   ports.TokenGenerator
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewCredentialService returns the credential lifecycle service. Credentials are
// issued with an expiry of ttl from now, or domain.DefaultCredentialTTL when ttl is zero.
func NewCredentialService(repo ports.CredentialRepository, keys ports.TokenGenerator, ttl time.Duration, logger *slog.Logger) ports.CredentialService {
	if ttl <= 0 {
		ttl = domain.DefaultCredentialTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &credentialService{repo: repo, keys: keys, ttl: ttl, logger: logger, now: time.Now}
}

// GenerateAPIKey returns a fresh key without storing it. The caller submits it later with SubmitUser.
func (s *credentialService) GenerateAPIKey(ctx context.Context) (string, error) {
	key, err := s.keys.Token(domain.APIKeyBytes)
	if err != nil {
		return "", err
	}
	metrics.CredentialsGenerated.Inc()
	return key, nil
}

func (s *credentialService) SubmitUser(ctx context.Context, sub domain.UserSubmission) (*domain.User, error) {
	if err := domain.ValidateSubmission(sub); err != nil {
		return nil, err
	}

	issued := s.now().UTC()
	cred := &domain.Credential{
		APIKey:    sub.APIKey,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(s.ttl),
	}
	user := &domain.User{
		FirstName: sub.FirstName,
		LastName:  sub.LastName,
		Email:     sub.Email,
	}

	if err := s.repo.CreateUserWithCredential(ctx, cred, user); err != nil {
		return nil, storeErr("create user with credential", err)
	}

	metrics.UsersCreated.Inc()
	s.logger.Info("user created", "user_id", user.UserID, "key_id", cred.KeyID)
	return user, nil
}

// ListUsers returns every user with its credential, newest first, each carrying a freshly derived status.
func (s *credentialService) ListUsers(ctx context.Context) ([]domain.UserCredential, error) {
	rows, err := s.repo.ListUserCredentials(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}

	now := s.now()
	out := make([]domain.UserCredential, 0, len(rows))
	for _, r := range rows {
		r.Status = domain.CredentialStatus(r.ExpiresAt, now)
		out = append(out, r)
	}
	return out, nil
}

func (s *credentialService) DeleteUser(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	if err := s.repo.DeleteUserAndCredential(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		return storeErr("delete user", err)
	}

	metrics.UsersDeleted.Inc()
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

func (s *credentialService) HealthCheck(ctx context.Context) map[string]error {
	return map[string]error{"database": s.repo.Ping(ctx)}
}

// storeErr classifies err as a store failure unless it already carries a domain class.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrStore) || errors.Is(err, domain.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
}
