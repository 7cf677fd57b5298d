package testutil

import (
	"context"
	"testing"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestMockRepo_Credentials(t *testing.T) {
	m := new(MockRepo)
	cred := &domain.Credential{APIKey: "k"}
	user := &domain.User{FirstName: "a"}

	m.On("CreateCredential", cred).Return(nil)
	m.On("CreateUser", user).Return(nil)
	m.On("CreateUserWithCredential", cred, user).Return(nil)
	m.On("ListUserCredentials").Return([]domain.UserCredential{{UserID: 1}}, nil)
	m.On("DeleteUserAndCredential", int64(1)).Return(nil)
	m.On("Ping").Return(nil)

	ctx := context.Background()
	assert.NoError(t, m.CreateCredential(ctx, cred))
	assert.NoError(t, m.CreateUser(ctx, user))
	assert.NoError(t, m.CreateUserWithCredential(ctx, cred, user))
	rows, err := m.ListUserCredentials(ctx)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NoError(t, m.DeleteUserAndCredential(ctx, 1))
	assert.NoError(t, m.Ping(ctx))
	m.AssertExpectations(t)
}

func TestMockRepo_Admins(t *testing.T) {
	m := new(MockRepo)
	m.On("CreateAdmin", &domain.Admin{Email: "a@x.com"}).Return(nil)
	m.On("GetAdminByEmail", "missing@x.com").Return(nil, domain.ErrNotFound)

	ctx := context.Background()
	assert.NoError(t, m.CreateAdmin(ctx, &domain.Admin{Email: "a@x.com"}))
	admin, err := m.GetAdminByEmail(ctx, "missing@x.com")
	assert.Nil(t, admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
