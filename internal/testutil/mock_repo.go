package testutil

import (
	"context"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockRepo is a testify mock of ports.CredentialRepository and ports.AdminRepository.
type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) CreateCredential(ctx context.Context, cred *domain.Credential) error {
	args := m.Called(cred)
	return args.Error(0)
}

func (m *MockRepo) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockRepo) CreateUserWithCredential(ctx context.Context, cred *domain.Credential, user *domain.User) error {
	args := m.Called(cred, user)
	return args.Error(0)
}

func (m *MockRepo) ListUserCredentials(ctx context.Context) ([]domain.UserCredential, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]domain.UserCredential)
	return rows, args.Error(1)
}

func (m *MockRepo) DeleteUserAndCredential(ctx context.Context, userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockRepo) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepo) CreateAdmin(ctx context.Context, admin *domain.Admin) error {
	args := m.Called(admin)
	return args.Error(0)
}

func (m *MockRepo) GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(email)
	admin, _ := args.Get(0).(*domain.Admin)
	return admin, args.Error(1)
}
