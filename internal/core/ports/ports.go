package ports

import (
	"context"
	"time"

	"github.com/poyrazK/keyportal/internal/core/domain"
)

// CredentialRepository persists credentials and the users that own them.
type CredentialRepository interface {
	CreateCredential(ctx context.Context, cred *domain.Credential) error
	CreateUser(ctx context.Context, user *domain.User) error
	// CreateUserWithCredential writes both rows in one transaction, assigning both ids.
	CreateUserWithCredential(ctx context.Context, cred *domain.Credential, user *domain.User) error
	// ListUserCredentials returns joined rows ordered by user id, newest first. Status is left empty.
	ListUserCredentials(ctx context.Context) ([]domain.UserCredential, error)
	// DeleteUserAndCredential removes the user, then the credential it references.
	DeleteUserAndCredential(ctx context.Context, userID int64) error
	Ping(ctx context.Context) error
}

// AdminRepository persists administrator accounts.
type AdminRepository interface {
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	// GetAdminByEmail returns domain.ErrNotFound when no admin has that email.
	GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

// SessionStore holds issued sessions keyed by token.
type SessionStore interface {
	// Put stores s. A ttl of zero keeps it until the store is discarded.
	Put(ctx context.Context, s domain.Session, ttl time.Duration) error
	// Get returns nil, nil when the token is unknown.
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	Ping(ctx context.Context) error
}

type TokenGenerator interface {
	Token(byteLength int) (string, error)
}

type PasswordVault interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// CredentialService is the user- and admin-facing credential lifecycle.
type CredentialService interface {
	GenerateAPIKey(ctx context.Context) (string, error)
	SubmitUser(ctx context.Context, sub domain.UserSubmission) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.UserCredential, error)
	DeleteUser(ctx context.Context, userID int64) error
	HealthCheck(ctx context.Context) map[string]error
}

// AdminService registers and authenticates administrators.
type AdminService interface {
	Register(ctx context.Context, email, password string) (*domain.Admin, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}
