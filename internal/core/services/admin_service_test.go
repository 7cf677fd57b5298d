package services

import (
	"context"
	"errors"
	"testing"

	"github.com/poyrazK/keyportal/internal/adapters/session"
	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/core/ports"
	"github.com/poyrazK/keyportal/internal/infrastructure/secret"
	"github.com/poyrazK/keyportal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func secretGenerator() ports.TokenGenerator {
	return secret.NewGenerator()
}

func newAdminService(t *testing.T, repo ports.AdminRepository, vault ports.PasswordVault) ports.AdminService {
	t.Helper()
	reg := NewSessionRegistry(session.NewMemoryStore(), secretGenerator(), 0)
	return NewAdminService(repo, vault, reg, nil)
}

func TestAdminRegister(t *testing.T) {
	repo := new(testutil.MockRepo)
	svc := newAdminService(t, repo, testutil.PlainVault{})

	repo.On("CreateAdmin", &domain.Admin{Email: "a@x.com", PasswordHash: "plain:pw123"}).
		Run(func(args mock.Arguments) { args.Get(0).(*domain.Admin).AdminID = 1 }).
		Return(nil).Once()

	admin, err := svc.Register(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), admin.AdminID)
	assert.NotEqual(t, "pw123", admin.PasswordHash)
	repo.AssertExpectations(t)
}

func TestAdminRegister_Failures(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		repo := new(testutil.MockRepo)
		svc := newAdminService(t, repo, testutil.PlainVault{})

		_, err := svc.Register(context.Background(), "", "pw")
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.Register(context.Background(), "a@x.com", "")
		assert.ErrorIs(t, err, domain.ErrValidation)
		repo.AssertNotCalled(t, "CreateAdmin", mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		repo := new(testutil.MockRepo)
		svc := newAdminService(t, repo, testutil.PlainVault{})
		repo.On("CreateAdmin", mock.Anything).Return(errors.New("constraint violation"))

		_, err := svc.Register(context.Background(), "a@x.com", "pw")
		assert.ErrorIs(t, err, domain.ErrStore)
	})

	t.Run("hash failure", func(t *testing.T) {
		repo := new(testutil.MockRepo)
		svc := newAdminService(t, repo, testutil.PlainVault{HashErr: errors.New("boom")})

		_, err := svc.Register(context.Background(), "a@x.com", "pw")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrValidation)
	})
}

func TestAdminLogin(t *testing.T) {
	vault, err := secret.NewBcryptVault(bcrypt.MinCost)
	require.NoError(t, err)
	hash, err := vault.Hash("pw123")
	require.NoError(t, err)

	repo := new(testutil.MockRepo)
	repo.On("GetAdminByEmail", "a@x.com").Return(&domain.Admin{AdminID: 3, Email: "a@x.com", PasswordHash: hash}, nil)
	repo.On("GetAdminByEmail", "ghost@x.com").Return(nil, domain.ErrNotFound)
	repo.On("GetAdminByEmail", "broken@x.com").Return(nil, errors.New("db down"))
	svc := newAdminService(t, repo, vault)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		token, err := svc.Login(ctx, "a@x.com", "pw123")
		require.NoError(t, err)
		assert.Len(t, token, 2*domain.SessionTokenBytes)

		s, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, int64(3), s.AdminID)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost@x.com", "pw123")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.ErrorIs(t, err, domain.ErrEmailNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "a@x.com", "nope")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := svc.Login(ctx, "a@x.com", "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("store failure", func(t *testing.T) {
		_, err := svc.Login(ctx, "broken@x.com", "pw123")
		assert.ErrorIs(t, err, domain.ErrStore)
	})

	t.Run("random token rejected", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "0123456789abcdef")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
