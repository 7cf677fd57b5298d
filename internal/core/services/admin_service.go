package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/core/ports"
	"github.com/poyrazK/keyportal/internal/infrastructure/metrics"
)

type adminService struct {
	repo     ports.AdminRepository
	vault    ports.PasswordVault
	sessions *SessionRegistry
	logger   *slog.Logger
}

// NewAdminService composes the admin directory, password vault and session registry.
func NewAdminService(repo ports.AdminRepository, vault ports.PasswordVault, sessions *SessionRegistry, logger *slog.Logger) ports.AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminService{repo: repo, vault: vault, sessions: sessions, logger: logger}
}

// Register stores a new admin. Email uniqueness is not enforced here.
func (s *adminService) Register(ctx context.Context, email, password string) (*domain.Admin, error) {
	if err := domain.ValidateAdminCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := s.vault.Hash(password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &domain.Admin{Email: email, PasswordHash: hash}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, storeErr("create admin", err)
	}

	metrics.AdminRegistrations.Inc()
	s.logger.Info("admin registered", "admin_id", admin.AdminID)
	return admin, nil
}

// Login checks the email, then the password, and opens a session on success.
// Unknown email and wrong password fail with different errors.
func (s *adminService) Login(ctx context.Context, email, password string) (string, error) {
	if err := domain.ValidateAdminCredentials(email, password); err != nil {
		return "", err
	}

	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.AdminLogins.WithLabelValues("email_not_found").Inc()
		return "", domain.ErrEmailNotFound
	}
	if err != nil {
		return "", storeErr("find admin", err)
	}

	if !s.vault.Verify(password, admin.PasswordHash) {
		metrics.AdminLogins.WithLabelValues("password_mismatch").Inc()
		return "", domain.ErrPasswordMismatch
	}

	token, err := s.sessions.Create(ctx, admin.AdminID, admin.Email)
	if err != nil {
		return "", err
	}

	metrics.AdminLogins.WithLabelValues("success").Inc()
	s.logger.Info("admin logged in", "admin_id", admin.AdminID)
	return token, nil
}

func (s *adminService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.Authenticate(ctx, token)
}
